package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetRepo stores single-use password reset tokens.
type ResetRepo interface {
	// CreatePasswordReset inserts a token valid until expiresAt.
	CreatePasswordReset(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	// ConsumePasswordReset marks a token used and returns its user id (0 if unknown, used or expired).
	ConsumePasswordReset(ctx context.Context, token string) (userID int64, err error)
	// DeleteExpiredTokens removes tokens that expired or were used over 30 days ago.
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

type ResetRepoImpl struct{ pool *pgxpool.Pool }

func NewResetRepo(pool *pgxpool.Pool) *ResetRepoImpl { return &ResetRepoImpl{pool: pool} }

func (r *ResetRepoImpl) CreatePasswordReset(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO password_reset_tokens (user_id, token, expires_at)
         VALUES ($1, $2, $3)`,
		userID, token, expiresAt,
	)
	return err
}

func (r *ResetRepoImpl) ConsumePasswordReset(ctx context.Context, token string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var userID int64
	err := r.pool.QueryRow(ctx, `
UPDATE password_reset_tokens
SET used_at = now()
WHERE token = $1
  AND used_at IS NULL
  AND expires_at > now()
RETURNING user_id
`, token).Scan(&userID)

	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return userID, err
}

func (r *ResetRepoImpl) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
DELETE FROM password_reset_tokens
WHERE (used_at IS NOT NULL AND used_at < now() - interval '30 days')
   OR (used_at IS NULL AND expires_at < now() - interval '30 days')
`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
