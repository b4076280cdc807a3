package ledger

import (
	"errors"
	"testing"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

func TestGenerateSplits(t *testing.T) {
	tests := []struct {
		name         string
		total        money.Amount
		splitType    models.SplitType
		participants []Participant
		wantAmounts  map[string]money.Amount
		wantCode     Code
	}{
		{
			name:      "equal split with no remainder",
			total:     9000,
			splitType: models.SplitEqual,
			participants: []Participant{
				{UserID: "a"}, {UserID: "b"}, {UserID: "c"},
			},
			wantAmounts: map[string]money.Amount{"a": 3000, "b": 3000, "c": 3000},
		},
		{
			name:      "equal split remainder goes to first users by id",
			total:     100,
			splitType: models.SplitEqual,
			participants: []Participant{
				// Deliberately unsorted input: order must not matter.
				{UserID: "c"}, {UserID: "a"}, {UserID: "b"},
			},
			wantAmounts: map[string]money.Amount{"a": 34, "b": 33, "c": 33},
		},
		{
			name:      "percentage split sums exactly",
			total:     1000,
			splitType: models.SplitPercentage,
			participants: []Participant{
				{UserID: "a", Percent: 3333},
				{UserID: "b", Percent: 3333},
				{UserID: "c", Percent: 3334},
			},
			wantAmounts: map[string]money.Amount{"a": 333, "b": 333, "c": 334},
		},
		{
			name:      "percentage must sum to 100",
			total:     1000,
			splitType: models.SplitPercentage,
			participants: []Participant{
				{UserID: "a", Percent: 5000},
				{UserID: "b", Percent: 4000},
			},
			wantCode: CodePercentSumMismatch,
		},
		{
			name:      "fixed split uses literal amounts",
			total:     1500,
			splitType: models.SplitFixed,
			participants: []Participant{
				{UserID: "a", Amount: 1000},
				{UserID: "b", Amount: 500},
			},
			wantAmounts: map[string]money.Amount{"a": 1000, "b": 500},
		},
		{
			name:      "fixed split sum mismatch rejected",
			total:     1500,
			splitType: models.SplitFixed,
			participants: []Participant{
				{UserID: "a", Amount: 1000},
				{UserID: "b", Amount: 400},
			},
			wantCode: CodeSplitSumMismatch,
		},
		{
			name:      "shares apportion proportionally",
			total:     700,
			splitType: models.SplitShares,
			participants: []Participant{
				{UserID: "a", Shares: 2},
				{UserID: "b", Shares: 1},
				{UserID: "c", Shares: 4},
			},
			wantAmounts: map[string]money.Amount{"a": 200, "b": 100, "c": 400},
		},
		{
			name:      "shares remainder distributed like equal",
			total:     100,
			splitType: models.SplitShares,
			participants: []Participant{
				{UserID: "a", Shares: 1},
				{UserID: "b", Shares: 1},
				{UserID: "c", Shares: 1},
			},
			wantAmounts: map[string]money.Amount{"a": 34, "b": 33, "c": 33},
		},
		{
			name:      "zero-share participant never charged remainder",
			total:     100,
			splitType: models.SplitShares,
			participants: []Participant{
				{UserID: "a", Shares: 0},
				{UserID: "b", Shares: 1},
				{UserID: "c", Shares: 2},
			},
			wantAmounts: map[string]money.Amount{"a": 0, "b": 34, "c": 66},
		},
		{
			name:      "zero shares rejected",
			total:     100,
			splitType: models.SplitShares,
			participants: []Participant{
				{UserID: "a", Shares: 0},
			},
			wantCode: CodeNoShares,
		},
		{
			name:         "non-positive amount rejected",
			total:        0,
			splitType:    models.SplitEqual,
			participants: []Participant{{UserID: "a"}},
			wantCode:     CodeAmountNotPositive,
		},
		{
			name:         "empty participants rejected",
			total:        100,
			splitType:    models.SplitEqual,
			participants: nil,
			wantCode:     CodeNoParticipants,
		},
		{
			name:      "duplicate participant rejected",
			total:     100,
			splitType: models.SplitEqual,
			participants: []Participant{
				{UserID: "a"}, {UserID: "a"},
			},
			wantCode: CodeDuplicateUser,
		},
		{
			name:         "unknown split type rejected",
			total:        100,
			splitType:    models.SplitType("random"),
			participants: []Participant{{UserID: "a"}},
			wantCode:     CodeUnknownSplitType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := GenerateSplits(tt.total, tt.splitType, tt.participants)
			if tt.wantCode != "" {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("GenerateSplits() error = %v, want ValidationError", err)
				}
				if verr.Code != tt.wantCode {
					t.Errorf("code = %s, want %s", verr.Code, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateSplits() failed: %v", err)
			}

			var sum money.Amount
			got := make(map[string]money.Amount)
			for _, s := range splits {
				got[s.UserID] = s.Amount
				sum += s.Amount
			}
			if sum != tt.total {
				t.Errorf("split sum = %s, want %s", sum, tt.total)
			}
			for user, want := range tt.wantAmounts {
				if got[user] != want {
					t.Errorf("split[%s] = %s, want %s", user, got[user], want)
				}
			}
		})
	}
}

func TestGenerateSplitsDeterministic(t *testing.T) {
	participants := []Participant{
		{UserID: "u3"}, {UserID: "u1"}, {UserID: "u2"},
	}
	first, err := GenerateSplits(1003, models.SplitEqual, participants)
	if err != nil {
		t.Fatalf("GenerateSplits() failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := GenerateSplits(1003, models.SplitEqual, participants)
		if err != nil {
			t.Fatalf("GenerateSplits() failed: %v", err)
		}
		for j := range first {
			if again[j].UserID != first[j].UserID || again[j].Amount != first[j].Amount {
				t.Fatalf("run %d: split %d = %+v, want %+v", i, j, again[j], first[j])
			}
		}
	}
}
