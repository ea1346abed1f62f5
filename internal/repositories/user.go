package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-ledger/internal/logger"
	"github.com/sbilibin2017/gw-ledger/internal/models"
)

const userColumns = "id, username, email, password_hash, created_at, updated_at"

// UserReadRepository looks up users in Postgres.
type UserReadRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewUserReadRepository(db *sqlx.DB, timeout time.Duration) *UserReadRepository {
	return &UserReadRepository{db: db, timeout: timeout}
}

// GetByUsernameOrEmail returns models.ErrNotFound when neither key matches.
func (r *UserReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE ($1::VARCHAR IS NOT NULL AND lower(username) = lower($1))
		   OR ($2::VARCHAR IS NOT NULL AND email = $2)
		LIMIT 1
	`

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	err := r.db.GetContext(ctx, &user, query, username, email)

	logger.Log.Infow(
		"query", compactQuery(query),
		"args", []any{username, email},
		"result", user.ID,
		"error", err,
	)

	if err != nil {
		return nil, classifyError(err)
	}
	return &user, nil
}

// UserWriteRepository stores users in Postgres.
type UserWriteRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewUserWriteRepository(db *sqlx.DB, timeout time.Duration) *UserWriteRepository {
	return &UserWriteRepository{db: db, timeout: timeout}
}

// Save inserts a new user. Uniqueness of username and email is enforced by the
// unique indexes, so concurrent registrations of the same identity cannot both
// succeed; the loser gets models.ErrDuplicateIdentity.
func (r *UserWriteRepository) Save(ctx context.Context, user *models.User) error {
	const query = `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", compactQuery(query),
		"args", []any{user.ID, user.Username, user.Email},
		"result", rowsAffected,
		"error", err,
	)

	return classifyError(err)
}
