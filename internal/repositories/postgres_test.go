package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-ledger/internal/migrations"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// --- Setup Postgres ---
func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_PASSWORD": "secret", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:secret@%s:%s/testdb?sslmode=disable", host, port.Port())
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	require.NoError(t, migrations.Up(ctx, db.DB))
	return db
}

func newTestUser(name string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.User{
		ID:           uuid.New(),
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPostgres_UserRepositories(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	writer := NewUserWriteRepository(db, 3*time.Second)
	reader := NewUserReadRepository(db, 3*time.Second)

	alice := newTestUser("alice")
	require.NoError(t, writer.Save(ctx, alice))

	t.Run("ByUsernameCaseInsensitive", func(t *testing.T) {
		username := "ALICE"
		user, err := reader.GetByUsernameOrEmail(ctx, &username, nil)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)
	})

	t.Run("ByEmail", func(t *testing.T) {
		user, err := reader.GetByUsernameOrEmail(ctx, nil, &alice.Email)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("NotFound", func(t *testing.T) {
		username := "nobody"
		_, err := reader.GetByUsernameOrEmail(ctx, &username, nil)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		dup := newTestUser("Alice")
		dup.Email = "other@example.com"
		assert.ErrorIs(t, writer.Save(ctx, dup), models.ErrDuplicateIdentity)
	})
}

func TestPostgres_ConcurrentDuplicateEmail(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	writer := NewUserWriteRepository(db, 3*time.Second)

	const attempts = 2
	var (
		wg   sync.WaitGroup
		errs = make([]error, attempts)
	)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := newTestUser(fmt.Sprintf("user%d", i))
			user.Email = "same@example.com"
			errs[i] = writer.Save(ctx, user)
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
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
}

func TestPostgres_TransactionRepositories(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	users := NewUserWriteRepository(db, 3*time.Second)
	writer := NewTransactionWriteRepository(db, 3*time.Second)
	reader := NewTransactionReadRepository(db, 3*time.Second)

	owner := newTestUser("ledger")
	require.NoError(t, users.Save(ctx, owner))

	t.Run("UnknownOwner", func(t *testing.T) {
		txn := &models.Transaction{
			ID:          uuid.New(),
			OwnerID:     uuid.New(),
			Amount:      decimal.RequireFromString("1.00"),
			Category:    models.DefaultCategory,
			Description: "orphan",
			CreatedAt:   time.Now().UTC(),
		}
		assert.ErrorIs(t, writer.Save(ctx, txn), models.ErrInvalidOwner)
	})

	t.Run("EmptyBalance", func(t *testing.T) {
		sum, err := reader.SumByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	expected := decimal.Zero
	for i := range 45 {
		amount := decimal.New(int64(i+1)*25, -2)
		if i%2 == 1 {
			amount = amount.Neg()
		}
		expected = expected.Add(amount)

		category := "food"
		if i%3 == 0 {
			category = "rent"
		}
		require.NoError(t, writer.Save(ctx, &models.Transaction{
			ID:          uuid.New(),
			OwnerID:     owner.ID,
			Amount:      amount,
			Category:    category,
			Description: fmt.Sprintf("entry %d", i),
			// every fifth entry shares a timestamp with its neighbour to exercise the id tie-break
			CreatedAt: base.Add(time.Duration(i-i%5/4) * time.Minute),
		}))
	}

	t.Run("Sum", func(t *testing.T) {
		sum, err := reader.SumByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.True(t, expected.Equal(sum), "expected %s, got %s", expected, sum)
	})

	t.Run("PagesCoverAllRows", func(t *testing.T) {
		asOf := time.Now().UTC()
		seen := make(map[uuid.UUID]bool)
		var sizes []int
		var prev *models.Transaction

		for number := 1; number <= 3; number++ {
			txns, total, err := reader.List(ctx, owner.ID, models.TransactionFilter{}, models.Page{Number: number, Size: 20, AsOf: asOf})
			require.NoError(t, err)
			assert.Equal(t, int64(45), total)
			sizes = append(sizes, len(txns))
			for i := range txns {
				assert.False(t, seen[txns[i].ID], "duplicate id %s", txns[i].ID)
				seen[txns[i].ID] = true
				if prev != nil {
					assert.False(t, txns[i].CreatedAt.After(prev.CreatedAt))
				}
				prev = &txns[i]
			}
		}

		assert.Equal(t, []int{20, 20, 5}, sizes)
		assert.Len(t, seen, 45)
	})

	t.Run("CursorPagesCoverAllRows", func(t *testing.T) {
		asOf := time.Now().UTC()
		seen := make(map[uuid.UUID]bool)
		var sizes []int
		page := models.Page{Number: 1, Size: 20, AsOf: asOf}

		for range 3 {
			txns, _, err := reader.List(ctx, owner.ID, models.TransactionFilter{}, page)
			require.NoError(t, err)
			sizes = append(sizes, len(txns))
			for _, txn := range txns {
				assert.False(t, seen[txn.ID], "duplicate id %s", txn.ID)
				seen[txn.ID] = true
			}
			if len(txns) == 0 {
				break
			}
			last := txns[len(txns)-1]
			page.After = &models.Cursor{AsOf: asOf, CreatedAt: last.CreatedAt, ID: last.ID, Page: page.Number + 1}
			page.Number++
		}

		assert.Equal(t, []int{20, 20, 5}, sizes)
		assert.Len(t, seen, 45)
	})

	t.Run("AsOfHidesNewerRows", func(t *testing.T) {
		asOf := time.Now().UTC()
		require.NoError(t, writer.Save(ctx, &models.Transaction{
			ID:          uuid.New(),
			OwnerID:     owner.ID,
			Amount:      decimal.RequireFromString("5.00"),
			Category:    "food",
			Description: "late",
			CreatedAt:   asOf.Add(time.Second),
		}))

		_, total, err := reader.List(ctx, owner.ID, models.TransactionFilter{}, models.Page{Number: 1, Size: 20, AsOf: asOf})
		require.NoError(t, err)
		assert.Equal(t, int64(45), total)
	})

	t.Run("Filters", func(t *testing.T) {
		from := base.Add(10 * time.Minute)
		to := base.Add(20 * time.Minute)
		asOf := time.Now().Add(time.Hour)

		txns, total, err := reader.List(ctx, owner.ID, models.TransactionFilter{From: &from, To: &to}, models.Page{Number: 1, Size: 100, AsOf: asOf})
		require.NoError(t, err)
		assert.Equal(t, int64(len(txns)), total)
		for _, txn := range txns {
			assert.False(t, txn.CreatedAt.Before(from))
			assert.True(t, txn.CreatedAt.Before(to))
		}

		txns, _, err = reader.List(ctx, owner.ID, models.TransactionFilter{Category: "rent"}, models.Page{Number: 1, Size: 100, AsOf: asOf})
		require.NoError(t, err)
		assert.Len(t, txns, 15)
		for _, txn := range txns {
			assert.Equal(t, "rent", txn.Category)
		}
	})
}
