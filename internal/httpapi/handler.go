// Package httpapi serves the read-only REST view of group balances.
//
// @title        Payly API
// @version      1.0
// @description  Read-only balance views over Payly groups. Writes go through the Connect RPC services.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MichealAPI/payly/internal/balance"
	"github.com/MichealAPI/payly/internal/currency"
	"github.com/MichealAPI/payly/internal/middleware"
	"github.com/MichealAPI/payly/internal/service"
	"github.com/MichealAPI/payly/pkg/response"
)

// BalanceReader computes a member's view of a group.
type BalanceReader interface {
	GroupBalances(ctx context.Context, groupID, viewerID string) (*service.GroupBalances, error)
}

// Handler handles HTTP requests for balance views
type Handler struct {
	balances BalanceReader
}

// NewHandler creates a new balance handler
func NewHandler(balances BalanceReader) *Handler {
	return &Handler{balances: balances}
}

// Routes returns the router for group balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{groupID}/balances", h.GetBalances)
	r.Get("/{groupID}/debts", h.ListDebts)

	return r
}

// DebtResponse is a transfer with its amount formatted for display.
type DebtResponse struct {
	From     balance.Member `json:"from"`
	To       balance.Member `json:"to"`
	Amount   float64        `json:"amount"`
	Currency string         `json:"currency"`
	Display  string         `json:"display"`
}

// GetBalances handles GET /groups/{groupID}/balances
// @Summary      Get group balances
// @Description  Who the caller owes and who owes the caller, per currency
// @Tags         balances
// @Produce      json
// @Security     BearerAuth
// @Param        groupID path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=service.GroupBalances}
// @Failure      401 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupID}/balances [get]
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	gb, ok := h.load(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, gb)
}

// ListDebts handles GET /groups/{groupID}/debts
// @Summary      List group debts
// @Description  Every simplified transfer that settles the group, in every currency
// @Tags         balances
// @Produce      json
// @Security     BearerAuth
// @Param        groupID path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]DebtResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupID}/debts [get]
func (h *Handler) ListDebts(w http.ResponseWriter, r *http.Request) {
	gb, ok := h.load(w, r)
	if !ok {
		return
	}

	debts := make([]*DebtResponse, len(gb.Debts))
	for i, d := range gb.Debts {
		debts[i] = &DebtResponse{
			From:     d.From,
			To:       d.To,
			Amount:   currency.Round(d.Amount, d.Currency),
			Currency: d.Currency,
			Display:  currency.Format(d.Amount, d.Currency),
		}
	}
	response.JSON(w, http.StatusOK, debts)
}

// load writes the error response itself and reports false when the balances
// could not be computed.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*service.GroupBalances, bool) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")

	gb, err := h.balances.GroupBalances(r.Context(), groupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, service.ErrNotMember):
			response.Forbidden(w, err.Error())
		default:
			slog.Error("Failed to compute balances", "group_id", groupID, "error", err)
			response.InternalError(w, "Failed to compute balances")
		}
		return nil, false
	}
	return gb, true
}
