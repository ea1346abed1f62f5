package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sbilibin2017/gw-ledger/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func TestUserReadRepository_GetByUsernameOrEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserReadRepository(db, time.Second)
	ctx := context.Background()

	id := uuid.New()
	now := time.Now().UTC()
	email := "alice@example.com"

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE").
			WithArgs(nil, email).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(id.String(), "alice", email, "hash", now, now))

		user, err := repo.GetByUsernameOrEmail(ctx, nil, &email)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("NotFound", func(t *testing.T) {
		username := "nobody"
		mock.ExpectQuery("SELECT (.+) FROM users WHERE").
			WithArgs(username, nil).
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByUsernameOrEmail(ctx, &username, nil)
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Nil(t, user)
	})

	t.Run("ConnectionLost", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE").
			WillReturnError(sql.ErrConnDone)

		user, err := repo.GetByUsernameOrEmail(ctx, nil, &email)
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
		assert.Nil(t, user)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWriteRepository_Save(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWriteRepository(db, time.Second)
	ctx := context.Background()

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tests := []struct {
		name     string
		execErr  error
		expected error
	}{
		{"Success", nil, nil},
		{"Duplicate", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, models.ErrDuplicateIdentity},
		{"Unavailable", sql.ErrConnDone, models.ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := mock.ExpectExec("INSERT INTO users").
				WithArgs(user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.Save(ctx, user)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}
