package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"smartcart/api/internal/models"
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Upsert records device presence keyed by (user_id, device_id). Sessions are
// visibility only; nothing authorizes against them.
func (r *SessionRepository) Upsert(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO user_sessions (
			id, user_id, device_id, device_info, ip_address, user_agent, last_activity
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW()
		)
		ON CONFLICT (user_id, device_id)
		DO UPDATE SET
			device_info = EXCLUDED.device_info,
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			last_activity = NOW()
	`

	var deviceInfo []byte
	if session.DeviceInfo != nil {
		encoded, err := json.Marshal(session.DeviceInfo)
		if err != nil {
			return fmt.Errorf("encode device info: %w", err)
		}
		deviceInfo = encoded
	}

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.DeviceID,
		deviceInfo,
		session.IPAddress,
		session.UserAgent,
	)
	return err
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	const query = `
		SELECT id, user_id, device_id, device_info, ip_address, user_agent, last_activity
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY last_activity DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var (
			session    models.Session
			deviceInfo []byte
		)
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.DeviceID,
			&deviceInfo,
			&session.IPAddress,
			&session.UserAgent,
			&session.LastActivity,
		); err != nil {
			return nil, err
		}
		if len(deviceInfo) > 0 {
			session.DeviceInfo = &models.DeviceInfo{}
			if err := json.Unmarshal(deviceInfo, session.DeviceInfo); err != nil {
				return nil, fmt.Errorf("decode device info: %w", err)
			}
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM user_sessions WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
