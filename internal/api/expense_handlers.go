package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/service"
)

// participantRequest is one participant's stake. Amounts are minor
// currency units; percent is basis points (10000 = 100%).
type participantRequest struct {
	UserID  string       `json:"user_id"`
	Amount  money.Amount `json:"amount,omitempty"`
	Percent int64        `json:"percent,omitempty"`
	Shares  int64        `json:"shares,omitempty"`
}

type createExpenseRequest struct {
	Description  string               `json:"description"`
	Amount       money.Amount         `json:"amount"`
	PaidBy       string               `json:"paid_by"`
	GroupID      string               `json:"group_id"`
	SplitType    models.SplitType     `json:"split_type"`
	Participants []participantRequest `json:"participants"`
}

type updateExpenseRequest struct {
	Description  *string              `json:"description"`
	Amount       *money.Amount        `json:"amount"`
	SplitType    *models.SplitType    `json:"split_type"`
	Participants []participantRequest `json:"participants"`
}

func toParticipants(reqs []participantRequest) []ledger.Participant {
	if reqs == nil {
		return nil
	}
	out := make([]ledger.Participant, len(reqs))
	for i, p := range reqs {
		out[i] = ledger.Participant{
			UserID:  p.UserID,
			Amount:  p.Amount,
			Percent: p.Percent,
			Shares:  p.Shares,
		}
	}
	return out
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.SplitType == "" {
		req.SplitType = models.SplitEqual
	}

	callerID := middleware.GetUserID(r.Context())
	expense, err := s.expenses.Record(r.Context(), callerID, service.ExpenseInput{
		Description:  req.Description,
		Amount:       req.Amount,
		PaidBy:       req.PaidBy,
		GroupID:      req.GroupID,
		SplitType:    req.SplitType,
		Participants: toParticipants(req.Participants),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	expenses, err := s.expenses.List(r.Context(), callerID, r.URL.Query().Get("group_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	expense, err := s.expenses.Get(r.Context(), callerID, chi.URLParam(r, "expenseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req updateExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	callerID := middleware.GetUserID(r.Context())
	expense, err := s.expenses.Edit(r.Context(), callerID, chi.URLParam(r, "expenseID"), service.ExpensePatch{
		Description:  req.Description,
		Amount:       req.Amount,
		SplitType:    req.SplitType,
		Participants: toParticipants(req.Participants),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	if err := s.expenses.Delete(r.Context(), callerID, chi.URLParam(r, "expenseID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleExpenseSplits(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	splits, err := s.expenses.Splits(r.Context(), callerID, chi.URLParam(r, "expenseID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splits)
}

// scopeFromRequest resolves the balance scope: the group_id query param
// if present (caller must be a member, same as the listing endpoints),
// otherwise the caller's whole account.
func (s *Server) scopeFromRequest(r *http.Request) (service.Scope, error) {
	callerID := middleware.GetUserID(r.Context())
	groupID := r.URL.Query().Get("group_id")
	if groupID == "" {
		return service.UserScope(callerID), nil
	}
	group, err := s.store.GetGroup(r.Context(), groupID)
	if err != nil {
		return service.Scope{}, err
	}
	if !group.HasMember(callerID) {
		return service.Scope{}, ledger.Validationf(ledger.CodePermissionDenied, "you must be a member of this group")
	}
	return service.GroupScope(groupID), nil
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	scope, err := s.scopeFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	callerID := middleware.GetUserID(r.Context())
	balances, err := s.balances.BalancesFor(r.Context(), callerID, scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	scope, err := s.scopeFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	callerID := middleware.GetUserID(r.Context())
	summary, err := s.balances.Summary(r.Context(), callerID, scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
