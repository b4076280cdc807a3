package service

import (
	"context"
	"errors"
	"testing"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
)

func TestCreateGroupRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUsers(t, "alice", "bob")

	group, err := env.groups.Create(ctx, "alice", "Roommates", "", []string{"bob"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !group.IsAdmin("alice") {
		t.Error("Expected the creator to be admin")
	}
	if !group.HasMember("bob") || group.IsAdmin("bob") {
		t.Error("Expected bob to be a plain member")
	}

	t.Run("unknown member rejected", func(t *testing.T) {
		_, err := env.groups.Create(ctx, "alice", "Ghosts", "", []string{"nobody"})
		var nf *ledger.NotFoundError
		if err == nil {
			t.Fatal("Expected error for unknown member")
		}
		if !errors.As(err, &nf) {
			t.Errorf("Expected NotFoundError, got %v", err)
		}
	})
}

func TestDeleteGroupClearsBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUsers(t, "alice", "bob")

	group, err := env.groups.Create(ctx, "alice", "Trip", "", []string{"bob"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A group expense and the settlement that clears it, so both ledger
	// sides live inside the group.
	if _, err := env.expenses.Record(ctx, "alice", ExpenseInput{
		Description:  "Hotel",
		Amount:       6000,
		PaidBy:       "alice",
		GroupID:      group.ID,
		SplitType:    models.SplitEqual,
		Participants: equalParticipants("alice", "bob"),
	}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := env.settlements.Record(ctx, "bob", SettlementInput{
		FromUserID: "bob", ToUserID: "alice", Amount: 3000, GroupID: group.ID,
	}); err != nil {
		t.Fatalf("Settlement failed: %v", err)
	}

	// Warm both users' global caches before the delete.
	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		if _, err := env.balances.Outstanding(ctx, UserScope(pair[0]), pair[0], pair[1]); err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
	}

	if err := env.groups.Delete(ctx, "alice", group.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The expense and the settlement fall together; neither direction
	// may retain or invent a debt, in the warm cache or from scratch.
	for _, balances := range []*BalanceService{env.balances, NewBalanceService(env.store)} {
		for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
			owed, err := balances.Outstanding(ctx, UserScope(pair[0]), pair[0], pair[1])
			if err != nil {
				t.Fatalf("Outstanding failed: %v", err)
			}
			if owed != 0 {
				t.Errorf("Expected no debt %s -> %s after group delete, got %d", pair[0], pair[1], owed)
			}
		}
	}

	settlements, err := env.store.ListSettlementsByUser(ctx, "bob")
	if err != nil {
		t.Fatalf("ListSettlementsByUser failed: %v", err)
	}
	if len(settlements) != 0 {
		t.Errorf("Expected the group's settlements gone, got %d", len(settlements))
	}
}

func TestDeleteGroupRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUsers(t, "alice", "bob")

	group, err := env.groups.Create(ctx, "alice", "Trip", "", []string{"bob"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = env.groups.Delete(ctx, "bob", group.ID)
	if code := validationCode(t, err); code != ledger.CodePermissionDenied {
		t.Errorf("Expected CodePermissionDenied, got %s", code)
	}
}
