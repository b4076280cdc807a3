package service

import (
	"context"
	"errors"
	"testing"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
)

func TestRecordSettlement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUsers(t, "alice", "bob", "carol")

	// bob and carol each owe alice 3000.
	expense, err := env.expenses.Record(ctx, "alice", ExpenseInput{
		Description:  "Rent",
		Amount:       9000,
		PaidBy:       "alice",
		SplitType:    models.SplitEqual,
		Participants: equalParticipants("alice", "bob", "carol"),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	t.Run("partial settlement reduces the balance", func(t *testing.T) {
		_, err := env.settlements.Record(ctx, "bob", SettlementInput{
			FromUserID: "bob",
			ToUserID:   "alice",
			Amount:     1000,
		})
		if err != nil {
			t.Fatalf("Settlement failed: %v", err)
		}

		owed, err := env.balances.Outstanding(ctx, UserScope("bob"), "bob", "alice")
		if err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
		if owed != 2000 {
			t.Errorf("Expected bob to owe 2000 after partial settlement, got %d", owed)
		}
	})

	t.Run("overpayment is rejected", func(t *testing.T) {
		_, err := env.settlements.Record(ctx, "bob", SettlementInput{
			FromUserID: "bob",
			ToUserID:   "alice",
			Amount:     5000,
		})
		if code := validationCode(t, err); code != ledger.CodeExceedsOutstanding {
			t.Errorf("Expected CodeExceedsOutstanding, got %s", code)
		}
	})

	t.Run("exact settlement clears the pair and marks splits", func(t *testing.T) {
		_, err := env.settlements.Record(ctx, "bob", SettlementInput{
			FromUserID: "bob",
			ToUserID:   "alice",
			Amount:     2000,
		})
		if err != nil {
			t.Fatalf("Settlement failed: %v", err)
		}

		owed, err := env.balances.Outstanding(ctx, UserScope("bob"), "bob", "alice")
		if err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
		if owed != 0 {
			t.Errorf("Expected bob settled up, got %d", owed)
		}

		got, err := env.store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		for _, sp := range got.Splits {
			settled := sp.UserID == "bob"
			if sp.IsSettled != settled {
				t.Errorf("Split of %s: settled=%v, want %v", sp.UserID, sp.IsSettled, settled)
			}
		}
	})

	t.Run("cleared debt does not resurrect", func(t *testing.T) {
		owed, err := env.balances.Outstanding(ctx, UserScope("bob"), "bob", "alice")
		if err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
		if owed != 0 {
			t.Errorf("Expected bob still settled, got %d", owed)
		}

		// carol's debt is untouched by bob's settlements.
		owed, err = env.balances.Outstanding(ctx, UserScope("carol"), "carol", "alice")
		if err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
		if owed != 3000 {
			t.Errorf("Expected carol to still owe 3000, got %d", owed)
		}
	})

	t.Run("opting into overpayment reverses the direction", func(t *testing.T) {
		_, err := env.settlements.Record(ctx, "carol", SettlementInput{
			FromUserID:       "carol",
			ToUserID:         "alice",
			Amount:           4000,
			AllowOverpayment: true,
		})
		if err != nil {
			t.Fatalf("Settlement failed: %v", err)
		}

		owed, err := env.balances.Outstanding(ctx, UserScope("alice"), "alice", "carol")
		if err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
		if owed != 1000 {
			t.Errorf("Expected alice to owe carol 1000 after overpayment, got %d", owed)
		}
	})
}

func TestSettlementValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUsers(t, "alice", "bob", "carol")

	t.Run("amount must be positive", func(t *testing.T) {
		_, err := env.settlements.Record(ctx, "bob", SettlementInput{
			FromUserID: "bob", ToUserID: "alice", Amount: 0,
		})
		if code := validationCode(t, err); code != ledger.CodeAmountNotPositive {
			t.Errorf("Expected CodeAmountNotPositive, got %s", code)
		}
	})

	t.Run("self settlement is rejected", func(t *testing.T) {
		_, err := env.settlements.Record(ctx, "bob", SettlementInput{
			FromUserID: "bob", ToUserID: "bob", Amount: 100,
		})
		if code := validationCode(t, err); code != ledger.CodeSelfSettlement {
			t.Errorf("Expected CodeSelfSettlement, got %s", code)
		}
	})

	t.Run("group settlement requires membership", func(t *testing.T) {
		group := &models.Group{
			Name:      "Flat",
			CreatedBy: "alice",
			Members: []models.GroupMember{
				{UserID: "alice", Role: models.RoleAdmin},
				{UserID: "bob"},
			},
		}
		if err := env.store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		_, err := env.settlements.Record(ctx, "carol", SettlementInput{
			FromUserID: "carol", ToUserID: "alice", Amount: 100, GroupID: group.ID,
		})
		if code := validationCode(t, err); code != ledger.CodeNotGroupMember {
			t.Errorf("Expected CodeNotGroupMember, got %s", code)
		}
	})

	t.Run("settling with no debt is rejected", func(t *testing.T) {
		_, err := env.settlements.Record(ctx, "bob", SettlementInput{
			FromUserID: "bob", ToUserID: "alice", Amount: 100,
		})
		if code := validationCode(t, err); code != ledger.CodeExceedsOutstanding {
			t.Errorf("Expected CodeExceedsOutstanding, got %s", code)
		}
	})
}

func TestGroupScopedBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUsers(t, "alice", "bob")

	group := &models.Group{
		Name:      "Ski trip",
		CreatedBy: "alice",
		Members: []models.GroupMember{
			{UserID: "alice", Role: models.RoleAdmin},
			{UserID: "bob"},
		},
	}
	if err := env.store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// One debt inside the group, one outside.
	_, err := env.expenses.Record(ctx, "alice", ExpenseInput{
		Amount:       4000,
		PaidBy:       "alice",
		GroupID:      group.ID,
		SplitType:    models.SplitEqual,
		Participants: equalParticipants("alice", "bob"),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	_, err = env.expenses.Record(ctx, "alice", ExpenseInput{
		Amount:       1000,
		PaidBy:       "alice",
		SplitType:    models.SplitEqual,
		Participants: equalParticipants("alice", "bob"),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	t.Run("group scope excludes outside expenses", func(t *testing.T) {
		owed, err := env.balances.Outstanding(ctx, GroupScope(group.ID), "bob", "alice")
		if err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
		if owed != 2000 {
			t.Errorf("Expected 2000 in group scope, got %d", owed)
		}
	})

	t.Run("user scope spans both", func(t *testing.T) {
		owed, err := env.balances.Outstanding(ctx, UserScope("bob"), "bob", "alice")
		if err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
		if owed != 2500 {
			t.Errorf("Expected 2500 overall, got %d", owed)
		}
	})

	t.Run("group settlement checks the group balance only", func(t *testing.T) {
		_, err := env.settlements.Record(ctx, "bob", SettlementInput{
			FromUserID: "bob", ToUserID: "alice", Amount: 2500, GroupID: group.ID,
		})
		if code := validationCode(t, err); code != ledger.CodeExceedsOutstanding {
			t.Errorf("Expected CodeExceedsOutstanding, got %s", code)
		}

		if _, err := env.settlements.Record(ctx, "bob", SettlementInput{
			FromUserID: "bob", ToUserID: "alice", Amount: 2000, GroupID: group.ID,
		}); err != nil {
			t.Fatalf("Group settlement failed: %v", err)
		}

		owed, err := env.balances.Outstanding(ctx, GroupScope(group.ID), "bob", "alice")
		if err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
		if owed != 0 {
			t.Errorf("Expected group debt cleared, got %d", owed)
		}

		// The outside 500 survives.
		owed, err = env.balances.Outstanding(ctx, UserScope("bob"), "bob", "alice")
		if err != nil {
			t.Fatalf("Outstanding failed: %v", err)
		}
		if owed != 500 {
			t.Errorf("Expected 500 left outside the group, got %d", owed)
		}
	})
}

func TestAccountSettlementCoversGroupSplits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedUsers(t, "alice", "bob")

	group, err := env.groups.Create(ctx, "alice", "Flat", "", []string{"bob"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// bob owes alice 2000 inside the group and 1000 outside it. An
	// account-wide settlement is measured against both, so paying it
	// off must mark bob's splits in both expenses.
	groupExpense, err := env.expenses.Record(ctx, "alice", ExpenseInput{
		Description:  "Groceries",
		Amount:       4000,
		PaidBy:       "alice",
		GroupID:      group.ID,
		SplitType:    models.SplitEqual,
		Participants: equalParticipants("alice", "bob"),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	soloExpense, err := env.expenses.Record(ctx, "alice", ExpenseInput{
		Description:  "Taxi",
		Amount:       2000,
		PaidBy:       "alice",
		SplitType:    models.SplitEqual,
		Participants: equalParticipants("alice", "bob"),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if _, err := env.settlements.Record(ctx, "bob", SettlementInput{
		FromUserID: "bob", ToUserID: "alice", Amount: 3000,
	}); err != nil {
		t.Fatalf("Settlement failed: %v", err)
	}

	for _, id := range []string{groupExpense.ID, soloExpense.ID} {
		got, err := env.store.GetExpense(ctx, id)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		for _, sp := range got.Splits {
			settled := sp.UserID == "bob"
			if sp.IsSettled != settled {
				t.Errorf("Expense %s, split of %s: settled=%v, want %v", got.Description, sp.UserID, sp.IsSettled, settled)
			}
		}
	}

	// The settled group expense is frozen like any other.
	newDescription := "Groceries (edited)"
	_, err = env.expenses.Edit(ctx, "alice", groupExpense.ID, ExpensePatch{Description: &newDescription})
	var conflict *ledger.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError editing a settled expense, got %v", err)
	}
}
