package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartcart/api/internal/models"
)

var ErrResetTokenNotFound = errors.New("password reset token not found")

type ResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepository(pool *pgxpool.Pool) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

func (r *ResetTokenRepository) Insert(ctx context.Context, token models.PasswordResetToken) error {
	const query = `
		INSERT INTO password_reset_tokens (
			id, user_id, token, used, created_at, expires_at
		) VALUES (
			$1, $2, $3, FALSE, NOW(), $4
		)
	`
	_, err := r.pool.Exec(ctx, query, token.ID, token.UserID, token.Token, token.ExpiresAt)
	return err
}

// Consume flips used to true and returns the owning user in one conditional
// update, so a token can be spent exactly once. Missing, already-used and
// expired tokens are indistinguishable to the caller.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	const query = `
		UPDATE password_reset_tokens
		SET used = TRUE
		WHERE token = $1 AND used = FALSE AND expires_at > NOW()
		RETURNING user_id
	`

	var userID string
	if err := r.pool.QueryRow(ctx, query, token).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrResetTokenNotFound
		}
		return "", err
	}
	return userID, nil
}

func (r *ResetTokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM password_reset_tokens WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *ResetTokenRepository) DeleteExpiredOrUsed(ctx context.Context) (int64, error) {
	const query = `DELETE FROM password_reset_tokens WHERE used = TRUE OR expires_at <= NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
