package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=transactions.go -destination=mock_transactions.go -package=handlers

// TransactionCreator defines the interface that the service must implement.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal, category, description string) (*models.Transaction, error)
}

// TransactionLister defines the interface that the service must implement.
type TransactionLister interface {
	ListTransactions(ctx context.Context, ownerID uuid.UUID, filter models.TransactionFilter, page models.Page) (*models.TransactionPage, error)
}

// CreateTransactionRequest represents the JSON body for a new transaction
// swagger:model CreateTransactionRequest
type CreateTransactionRequest struct {
	// Signed amount with at most two fractional digits, as a number or a string
	// required: true
	// default: 100.00
	Amount json.RawMessage `json:"amount" swaggertype:"number"`

	// Category, "general" when empty
	// default: salary
	Category string `json:"category"`

	// Description
	// required: true
	// default: September salary
	Description string `json:"description"`
}

// TransactionResponse is the public view of a transaction
// swagger:model TransactionResponse
type TransactionResponse struct {
	ID          string      `json:"id"`
	Amount      json.Number `json:"amount" swaggertype:"number"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CreateTransactionResponse represents a stored transaction
// swagger:model CreateTransactionResponse
type CreateTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
}

// ListTransactionsResponse represents one page of transactions
// swagger:model ListTransactionsResponse
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	Total        int64                 `json:"total"`

	// Snapshot bound of the listing
	AsOf time.Time `json:"as_of"`

	// Pass back as cursor to fetch the next page, absent on the last page
	NextCursor string `json:"next_cursor,omitempty"`
}

func newTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID.String(),
		Amount:      models.FormatAmount(t.Amount),
		Category:    t.Category,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

// parseAmount accepts a JSON number or a JSON string holding a decimal.
// The value never passes through float64.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, models.NewValidationError(map[string]string{"amount": "required"})
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, models.ErrInvalidAmount
		}
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, models.ErrInvalidAmount
	}
	return amount, nil
}

// NewCreateTransactionHandler returns an HTTP handler that records a transaction
// for the authenticated user.
// @Summary Create a transaction
// @Description Stores a signed amount. Positive amounts are credits, negative amounts are debits.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body handlers.CreateTransactionRequest true "Transaction"
// @Success 201 {object} handlers.CreateTransactionResponse "Transaction stored"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount or input"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 503 {object} handlers.ErrorResponse "Service unavailable"
// @Router /transactions [post]
// @Security BearerAuth
func NewCreateTransactionHandler(svc TransactionCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			writeError(w, r, models.ErrUnauthorized)
			return
		}

		var req CreateTransactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			writeError(w, r, err)
			return
		}

		txn, err := svc.CreateTransaction(ctx, userID, amount, req.Category, req.Description)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreateTransactionResponse{Transaction: newTransactionResponse(txn)})
	}
}

const dateLayout = "2006-01-02"

// parseTime accepts RFC 3339 or a bare date, which is read as midnight UTC.
func parseTime(value string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// parseListQuery reads filter and page parameters. A bare "to" date includes
// that whole day.
func parseListQuery(r *http.Request) (models.TransactionFilter, models.Page, error) {
	var (
		filter models.TransactionFilter
		page   models.Page
		fields = map[string]string{}
	)
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		from, _, err := parseTime(v)
		if err != nil {
			fields["from"] = "must be RFC 3339 or YYYY-MM-DD"
		} else {
			filter.From = &from
		}
	}
	if v := q.Get("to"); v != "" {
		to, dateOnly, err := parseTime(v)
		if err != nil {
			fields["to"] = "must be RFC 3339 or YYYY-MM-DD"
		} else {
			if dateOnly {
				to = to.AddDate(0, 0, 1)
			}
			filter.To = &to
		}
	}
	if v := q.Get("as_of"); v != "" {
		asOf, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			fields["as_of"] = "must be RFC 3339"
		} else {
			page.AsOf = asOf.UTC()
		}
	}
	filter.Category = q.Get("category")

	if v := q.Get("cursor"); v != "" {
		cursor, err := models.DecodeCursor(v)
		switch {
		case err != nil:
			fields["cursor"] = "is invalid"
		case q.Has("page") || q.Has("as_of"):
			fields["cursor"] = "cannot be combined with page or as_of"
		default:
			page.After = &cursor
		}
	}

	for key, dst := range map[string]*int{"page": &page.Number, "page_size": &page.Size} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			fields[key] = "must be an integer"
			continue
		}
		*dst = n
	}

	return filter, page, models.NewValidationError(fields)
}

// NewListTransactionsHandler returns an HTTP handler that lists the
// authenticated user's transactions, newest first.
// @Summary List transactions
// @Description Returns one page of transactions ordered by creation time descending, ties broken by id.
// @Tags transactions
// @Produce json
// @Param from query string false "Inclusive lower bound, RFC 3339 or YYYY-MM-DD"
// @Param to query string false "Exclusive upper bound, RFC 3339 or YYYY-MM-DD (a date includes that day)"
// @Param category query string false "Category"
// @Param page query int false "Page number, from 1"
// @Param page_size query int false "Page size, 1 to 100"
// @Param as_of query string false "Snapshot time, defaults to now"
// @Param cursor query string false "next_cursor of the previous page"
// @Success 200 {object} handlers.ListTransactionsResponse "Transactions"
// @Failure 400 {object} handlers.ErrorResponse "Invalid input"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 503 {object} handlers.ErrorResponse "Service unavailable"
// @Router /transactions [get]
// @Security BearerAuth
func NewListTransactionsHandler(svc TransactionLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, ok := middlewares.UserIDFromContext(ctx)
		if !ok {
			writeError(w, r, models.ErrUnauthorized)
			return
		}

		filter, page, err := parseListQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		result, err := svc.ListTransactions(ctx, userID, filter, page)
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := ListTransactionsResponse{
			Transactions: make([]TransactionResponse, 0, len(result.Transactions)),
			Page:         result.Page,
			PageSize:     result.PageSize,
			Total:        result.Total,
			AsOf:         result.AsOf,
		}
		if result.Next != nil {
			resp.NextCursor = result.Next.Encode()
		}
		for i := range result.Transactions {
			resp.Transactions = append(resp.Transactions, newTransactionResponse(&result.Transactions[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
