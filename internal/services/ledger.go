package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/metrics"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=ledger.go -destination=mock_ledger.go -package=services

// EventTransactionCreated is the type of the event published after an insert.
const EventTransactionCreated = "transaction.created"

// postCommitTimeout bounds the cache and Kafka calls made after an insert has
// committed. They run detached from the caller's cancellation.
const postCommitTimeout = 2 * time.Second

// TransactionWriter appends transactions.
type TransactionWriter interface {
	Save(ctx context.Context, txn *models.Transaction) error
}

// TransactionReader lists transactions and sums balances.
type TransactionReader interface {
	List(ctx context.Context, ownerID uuid.UUID, filter models.TransactionFilter, page models.Page) ([]models.Transaction, int64, error)
	SumByOwner(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error)
}

// BalanceCache stores derived balances tagged with a per-owner generation.
type BalanceCache interface {
	Generation(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Get(ctx context.Context, ownerID uuid.UUID, gen int64) (decimal.Decimal, bool, error)
	Set(ctx context.Context, ownerID uuid.UUID, gen int64, sum decimal.Decimal) error
	Bump(ctx context.Context, ownerID uuid.UUID) error
	Invalidate(ctx context.Context, ownerID uuid.UUID) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// LedgerService records transactions and derives balances from them.
type LedgerService struct {
	writer       TransactionWriter
	reader       TransactionReader
	cache        BalanceCache
	kafkaWriter  KafkaWriter
	retryBackoff time.Duration
	now          func() time.Time

	// untrusted holds owners whose cached balance could not be invalidated
	// after a write. Their cache entries are bypassed until a bump succeeds.
	untrusted sync.Map
}

// NewLedgerService creates a new LedgerService. cache and kafkaWriter are optional.
func NewLedgerService(
	writer TransactionWriter,
	reader TransactionReader,
	cache BalanceCache,
	kafkaWriter KafkaWriter,
	retryBackoff time.Duration,
) *LedgerService {
	return &LedgerService{
		writer:       writer,
		reader:       reader,
		cache:        cache,
		kafkaWriter:  kafkaWriter,
		retryBackoff: retryBackoff,
		now:          time.Now,
	}
}

// CreateTransaction validates and stores one transaction for the owner.
func (s *LedgerService) CreateTransaction(
	ctx context.Context,
	ownerID uuid.UUID,
	amount decimal.Decimal,
	category, description string,
) (*models.Transaction, error) {
	if err := models.ValidateAmount(amount); err != nil {
		return nil, err
	}
	category, description, err := normalizeTransactionText(category, description)
	if err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Amount:      amount,
		Category:    category,
		Description: description,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}

	err = withRetry(ctx, s.retryBackoff, "save transaction", func(ctx context.Context) error {
		return s.writer.Save(ctx, txn)
	})
	if err != nil {
		logger.Log.Errorw("failed to save transaction", "owner_id", ownerID, "error", err)
		return nil, err
	}
	metrics.IncTransactionsCreated(amount.IsPositive())

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postCommitTimeout)
	defer cancel()

	s.invalidateBalance(ctx, ownerID)
	s.publishTransaction(ctx, txn)
	return txn, nil
}

// invalidateBalance makes every balance cached before a write unusable. When
// the generation cannot be bumped the cached sum is deleted and the owner is
// marked untrusted until a later bump succeeds, since a reader that summed
// before the insert may still store its result under the old generation.
func (s *LedgerService) invalidateBalance(ctx context.Context, ownerID uuid.UUID) {
	if s.cache == nil {
		return
	}

	err := s.cache.Bump(ctx, ownerID)
	if err == nil {
		return
	}
	logger.Log.Warnw("failed to bump balance generation", "owner_id", ownerID, "error", err)

	s.untrusted.Store(ownerID, struct{}{})
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		logger.Log.Errorw("failed to drop cached balance", "owner_id", ownerID, "error", err)
	}
}

// trustCache reports whether the owner's cache entries may be used, retrying
// a generation bump that failed after an earlier write.
func (s *LedgerService) trustCache(ctx context.Context, ownerID uuid.UUID) bool {
	if _, ok := s.untrusted.Load(ownerID); !ok {
		return true
	}
	if err := s.cache.Bump(ctx, ownerID); err != nil {
		logger.Log.Warnw("cached balance still untrusted", "owner_id", ownerID, "error", err)
		return false
	}
	s.untrusted.Delete(ownerID)
	return true
}

// ListTransactions returns one page of the owner's transactions, newest first.
// A zero page.AsOf pins the listing to the current time. The returned Next
// cursor continues after the last row, so concurrent inserts never repeat or
// skip a row across pages.
func (s *LedgerService) ListTransactions(
	ctx context.Context,
	ownerID uuid.UUID,
	filter models.TransactionFilter,
	page models.Page,
) (*models.TransactionPage, error) {
	if page.After != nil {
		page.AsOf, page.Number = page.After.AsOf, page.After.Page
	}
	page, err := normalizePage(filter, page)
	if err != nil {
		return nil, err
	}
	if page.AsOf.IsZero() {
		page.AsOf = s.now().UTC().Truncate(time.Microsecond)
	}

	var (
		txns  []models.Transaction
		total int64
	)
	err = withRetry(ctx, s.retryBackoff, "list transactions", func(ctx context.Context) error {
		var err error
		txns, total, err = s.reader.List(ctx, ownerID, filter, page)
		return err
	})
	if err != nil {
		logger.Log.Errorw("failed to list transactions", "owner_id", ownerID, "error", err)
		return nil, err
	}

	result := &models.TransactionPage{
		Transactions: txns,
		Page:         page.Number,
		PageSize:     page.Size,
		Total:        total,
		AsOf:         page.AsOf,
	}
	if len(txns) == page.Size && int64(page.Number*page.Size) < total {
		last := txns[len(txns)-1]
		result.Next = &models.Cursor{
			AsOf:      page.AsOf,
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
			Page:      page.Number + 1,
		}
	}
	return result, nil
}

// GetBalance returns the exact sum of the owner's transactions. A cached value
// is used only while no transaction was added since it was computed.
func (s *LedgerService) GetBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	if s.cache == nil || !s.trustCache(ctx, ownerID) {
		return s.sumByOwner(ctx, ownerID)
	}

	gen, err := s.cache.Generation(ctx, ownerID)
	if err != nil {
		metrics.IncBalanceCacheLookup("error")
		logger.Log.Warnw("failed to read balance generation", "owner_id", ownerID, "error", err)
		return s.sumByOwner(ctx, ownerID)
	}

	cached, ok, err := s.cache.Get(ctx, ownerID, gen)
	switch {
	case err != nil:
		metrics.IncBalanceCacheLookup("error")
		logger.Log.Warnw("failed to read cached balance", "owner_id", ownerID, "error", err)
	case ok:
		metrics.IncBalanceCacheLookup("hit")
		return cached, nil
	default:
		metrics.IncBalanceCacheLookup("miss")
	}

	return s.recompute(ctx, ownerID, gen)
}

// Reconcile recomputes the balance from the stored transactions and
// overwrites any cached value.
func (s *LedgerService) Reconcile(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	if s.cache == nil || !s.trustCache(ctx, ownerID) {
		return s.sumByOwner(ctx, ownerID)
	}

	gen, err := s.cache.Generation(ctx, ownerID)
	if err != nil {
		logger.Log.Warnw("failed to read balance generation", "owner_id", ownerID, "error", err)
		return s.sumByOwner(ctx, ownerID)
	}
	return s.recompute(ctx, ownerID, gen)
}

// recompute reads the sum and caches it under gen, which must have been read
// before the sum so that a concurrent insert leaves the entry unusable.
func (s *LedgerService) recompute(ctx context.Context, ownerID uuid.UUID, gen int64) (decimal.Decimal, error) {
	sum, err := s.sumByOwner(ctx, ownerID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.cache.Set(ctx, ownerID, gen, sum); err != nil {
		logger.Log.Warnw("failed to cache balance", "owner_id", ownerID, "error", err)
	}
	return sum, nil
}

func (s *LedgerService) sumByOwner(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := withRetry(ctx, s.retryBackoff, "sum transactions", func(ctx context.Context) error {
		var err error
		sum, err = s.reader.SumByOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		logger.Log.Errorw("failed to sum transactions", "owner_id", ownerID, "error", err)
		return decimal.Zero, err
	}
	return sum, nil
}

// publishTransaction publishes a transaction event to Kafka. Failures are
// logged and never fail the request.
func (s *LedgerService) publishTransaction(ctx context.Context, txn *models.Transaction) {
	if s.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "transaction_id", txn.ID)
		return
	}

	event := models.TransactionEvent{
		Type:          EventTransactionCreated,
		TransactionID: txn.ID.String(),
		OwnerID:       txn.OwnerID.String(),
		Amount:        txn.Amount.StringFixed(models.AmountScale),
		Category:      txn.Category,
		Timestamp:     txn.CreatedAt.Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal transaction for Kafka", "transaction_id", txn.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(txn.OwnerID.String()),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish transaction to Kafka", "transaction_id", txn.ID, "error", err)
	} else {
		logger.Log.Infow("Transaction published to Kafka", "transaction_id", txn.ID, "amount", event.Amount)
	}
}
