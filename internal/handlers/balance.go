package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=balance.go -destination=mock_balance.go -package=handlers

// BalanceReader defines the interface that the service must implement.
type BalanceReader interface {
	GetBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
	Reconcile(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
}

// BalanceResponse represents the user's balance
// swagger:model BalanceResponse
type BalanceResponse struct {
	// Exact sum of all transactions
	// default: 70.00
	Balance json.Number `json:"balance" swaggertype:"number"`
}

// NewGetBalanceHandler returns an HTTP handler for fetching the user's balance.
// @Summary Get balance
// @Description Returns the exact sum of the user's transactions. reconcile=true bypasses the cache.
// @Tags transactions
// @Produce json
// @Param reconcile query bool false "Recompute from stored transactions"
// @Success 200 {object} handlers.BalanceResponse "User balance"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 503 {object} handlers.ErrorResponse "Service unavailable"
// @Router /transactions/balance [get]
// @Security BearerAuth
func NewGetBalanceHandler(svc BalanceReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			writeError(w, r, models.ErrUnauthorized)
			return
		}

		reconcile := false
		if v := r.URL.Query().Get("reconcile"); v != "" {
			var err error
			if reconcile, err = strconv.ParseBool(v); err != nil {
				writeError(w, r, models.NewValidationError(map[string]string{"reconcile": "must be a boolean"}))
				return
			}
		}

		var (
			balance decimal.Decimal
			err     error
		)
		if reconcile {
			balance, err = svc.Reconcile(ctx, userID)
		} else {
			balance, err = svc.GetBalance(ctx, userID)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, BalanceResponse{Balance: models.FormatAmount(balance)})
	}
}
