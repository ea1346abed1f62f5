package services_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/sbilibin2017/gw-ledger/internal/repositories"
	"github.com/sbilibin2017/gw-ledger/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryStack struct {
	auth   *services.AuthService
	ledger *services.LedgerService
}

func newMemoryStack() memoryStack {
	store := repositories.NewMemoryStore()
	users := store.Users()
	txns := store.Transactions()
	tokens := jwt.New(jwt.WithSecretKey("test-secret"), jwt.WithExpiration(time.Hour))

	return memoryStack{
		auth:   services.NewAuthService(users, users, tokens, repositories.NewMemoryRevocationList(), bcrypt.MinCost, time.Millisecond),
		ledger: services.NewLedgerService(txns, txns, nil, nil, time.Millisecond),
	}
}

func TestMemory_DistinctRegistrationsGetUniqueIDs(t *testing.T) {
	stack := newMemoryStack()
	ctx := context.Background()

	alice, _, err := stack.auth.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	bob, _, err := stack.auth.Register(ctx, "bob", "bob@example.com", "s3cretpass")
	require.NoError(t, err)

	assert.NotEqual(t, alice.ID, bob.ID)
}

func TestMemory_ConcurrentDuplicateEmail(t *testing.T) {
	stack := newMemoryStack()
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = stack.auth.Register(ctx, "user"+string(rune('a'+i))+"xyz", "Same@Example.com", "s3cretpass")
		}()
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrDuplicateIdentity):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, dup)
}

func TestMemory_ConcurrentCreatesSumExactly(t *testing.T) {
	stack := newMemoryStack()
	ctx := context.Background()

	user, _, err := stack.auth.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	const count = 10000
	amounts := make([]decimal.Decimal, count)
	expected := decimal.Zero
	for i := range amounts {
		cents := rand.Int64N(2_000_000) - 1_000_000
		if cents == 0 {
			cents = 1
		}
		amounts[i] = decimal.New(cents, -2)
		expected = expected.Add(amounts[i])
	}

	var wg sync.WaitGroup
	errs := make(chan error, count)
	for _, amount := range amounts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := stack.ledger.CreateTransaction(ctx, user.ID, amount, "", "load"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := stack.ledger.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, expected.Equal(balance), "expected %s, got %s", expected, balance)

	page, err := stack.ledger.ListTransactions(ctx, user.ID, models.TransactionFilter{}, models.Page{Size: models.MaxPageSize})
	require.NoError(t, err)
	assert.Equal(t, int64(count), page.Total)
}

func TestMemory_OffsettingAmountsBalanceToZero(t *testing.T) {
	stack := newMemoryStack()
	ctx := context.Background()

	user, _, err := stack.auth.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = stack.ledger.CreateTransaction(ctx, user.ID, decimal.Zero, "", "nothing")
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = stack.ledger.CreateTransaction(ctx, user.ID, decimal.RequireFromString("-50.25"), "", "out")
	require.NoError(t, err)
	_, err = stack.ledger.CreateTransaction(ctx, user.ID, decimal.RequireFromString("50.25"), "", "in")
	require.NoError(t, err)

	balance, err := stack.ledger.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
	assert.Equal(t, "0.00", balance.StringFixed(2))
}

func TestMemory_LogoutRevokesToken(t *testing.T) {
	stack := newMemoryStack()
	ctx := context.Background()

	user, token, err := stack.auth.Register(ctx, "alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	id, err := stack.auth.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	require.NoError(t, stack.auth.Logout(ctx, token))
	_, err = stack.auth.VerifyToken(ctx, token)
	assert.ErrorIs(t, err, models.ErrTokenRevoked)

	fresh, err := stack.auth.Login(ctx, "alice", "s3cretpass")
	require.NoError(t, err)
	_, err = stack.auth.VerifyToken(ctx, fresh)
	assert.NoError(t, err)
}

func TestMemory_UnknownOwner(t *testing.T) {
	stack := newMemoryStack()
	_, err := stack.ledger.CreateTransaction(context.Background(), uuid.New(), decimal.NewFromInt(1), "", "x")
	assert.ErrorIs(t, err, models.ErrInvalidOwner)
}
