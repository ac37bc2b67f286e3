package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smartcart/api/internal/models"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

func (r *RefreshTokenRepository) Insert(ctx context.Context, token models.RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (
			id, user_id, token, device_info, created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, NOW(), $5
		)
	`

	var deviceInfo []byte
	if token.DeviceInfo != nil {
		encoded, err := json.Marshal(token.DeviceInfo)
		if err != nil {
			return fmt.Errorf("encode device info: %w", err)
		}
		deviceInfo = encoded
	}

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		deviceInfo,
		token.ExpiresAt,
	)
	return err
}

// Rotate overwrites the row's token string and expiry in one conditional
// update. The WHERE clause is the arbiter for concurrent rotations of the
// same stale string: only one attempt can observe a matching row.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldToken string, newToken string, expiresAt time.Time) (string, error) {
	const query = `
		UPDATE refresh_tokens
		SET token = $2, expires_at = $3
		WHERE token = $1 AND expires_at > NOW()
		RETURNING user_id
	`

	var userID string
	if err := r.pool.QueryRow(ctx, query, oldToken, newToken, expiresAt).Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrRefreshTokenNotFound
		}
		return "", err
	}
	return userID, nil
}

func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) error {
	const query = `DELETE FROM refresh_tokens WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM refresh_tokens WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// DeleteExpired purges rows whose expiry has passed; run from the scheduler.
func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at <= NOW()`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
