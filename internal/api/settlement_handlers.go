package api

import (
	"net/http"

	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/service"
)

type createSettlementRequest struct {
	FromUserID       string       `json:"from_user_id"`
	ToUserID         string       `json:"to_user_id"`
	Amount           money.Amount `json:"amount"`
	GroupID          string       `json:"group_id"`
	Note             string       `json:"note"`
	AllowOverpayment bool         `json:"allow_overpayment"`
}

func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req createSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	callerID := middleware.GetUserID(r.Context())
	settlement, err := s.settlements.Record(r.Context(), callerID, service.SettlementInput{
		FromUserID:       req.FromUserID,
		ToUserID:         req.ToUserID,
		Amount:           req.Amount,
		GroupID:          req.GroupID,
		Note:             req.Note,
		AllowOverpayment: req.AllowOverpayment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}

func (s *Server) handleListSettlements(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	settlements, err := s.settlements.List(r.Context(), callerID, r.URL.Query().Get("group_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlements)
}
