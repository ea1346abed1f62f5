package repositories

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps users and transactions in process memory. It enforces the
// same uniqueness and ownership rules as the Postgres schema and is used for
// local runs and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]models.User
	byUsername   map[string]uuid.UUID
	byEmail      map[string]uuid.UUID
	transactions map[uuid.UUID][]models.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[uuid.UUID]models.User),
		byUsername:   make(map[string]uuid.UUID),
		byEmail:      make(map[string]uuid.UUID),
		transactions: make(map[uuid.UUID][]models.Transaction),
	}
}

// Users returns the identity store view.
func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{store: s}
}

// Transactions returns the ledger store view.
func (s *MemoryStore) Transactions() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{store: s}
}

// PingContext always succeeds.
func (s *MemoryStore) PingContext(ctx context.Context) error {
	return ctx.Err()
}

// MemoryUserRepository implements the user reader and writer over a MemoryStore.
type MemoryUserRepository struct {
	store *MemoryStore
}

func (r *MemoryUserRepository) GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	if username != nil {
		if id, ok := r.store.byUsername[strings.ToLower(*username)]; ok {
			user := r.store.users[id]
			return &user, nil
		}
	}
	if email != nil {
		if id, ok := r.store.byEmail[*email]; ok {
			user := r.store.users[id]
			return &user, nil
		}
	}
	return nil, models.ErrNotFound
}

// Save checks both unique keys and inserts under one lock.
func (r *MemoryUserRepository) Save(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	usernameKey := strings.ToLower(user.Username)
	if _, ok := r.store.byUsername[usernameKey]; ok {
		return models.ErrDuplicateIdentity
	}
	if _, ok := r.store.byEmail[user.Email]; ok {
		return models.ErrDuplicateIdentity
	}
	if _, ok := r.store.users[user.ID]; ok {
		return models.ErrDuplicateIdentity
	}

	r.store.users[user.ID] = *user
	r.store.byUsername[usernameKey] = user.ID
	r.store.byEmail[user.Email] = user.ID
	return nil
}

// MemoryTransactionRepository implements the transaction reader and writer over a MemoryStore.
type MemoryTransactionRepository struct {
	store *MemoryStore
}

func (r *MemoryTransactionRepository) Save(ctx context.Context, txn *models.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[txn.OwnerID]; !ok {
		return models.ErrInvalidOwner
	}
	r.store.transactions[txn.OwnerID] = append(r.store.transactions[txn.OwnerID], *txn)
	return nil
}

func (r *MemoryTransactionRepository) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter models.TransactionFilter,
	page models.Page,
) ([]models.Transaction, int64, error) {
	r.store.mu.RLock()
	matched := make([]models.Transaction, 0)
	for _, txn := range r.store.transactions[ownerID] {
		if matchesFilter(txn, filter, page) {
			matched = append(matched, txn)
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(matched, func(a, b models.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return bytes.Compare(b.ID[:], a.ID[:])
	})

	total := int64(len(matched))
	if page.After != nil {
		matched = slices.DeleteFunc(matched, func(txn models.Transaction) bool {
			return !page.After.Admits(txn)
		})
	}
	start := min(max(page.Offset(), 0), len(matched))
	end := min(start+page.Size, len(matched))
	return slices.Clone(matched[start:end]), total, nil
}

func (r *MemoryTransactionRepository) SumByOwner(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sum := decimal.Zero
	for _, txn := range r.store.transactions[ownerID] {
		sum = sum.Add(txn.Amount)
	}
	return sum, nil
}

func matchesFilter(txn models.Transaction, filter models.TransactionFilter, page models.Page) bool {
	switch {
	case !page.AsOf.IsZero() && txn.CreatedAt.After(page.AsOf):
		return false
	case filter.From != nil && txn.CreatedAt.Before(*filter.From):
		return false
	case filter.To != nil && !txn.CreatedAt.Before(*filter.To):
		return false
	case filter.Category != "" && txn.Category != filter.Category:
		return false
	}
	return true
}
