package service

import (
	"context"
	"time"

	"smartcart/api/internal/models"
)

// The service talks to the external relational store through these narrow
// interfaces; internal/repository provides the pgx implementations.

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
	UpdateLastLogin(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type RefreshTokenStore interface {
	Insert(ctx context.Context, token models.RefreshToken) error
	Rotate(ctx context.Context, oldToken string, newToken string, expiresAt time.Time) (string, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type ResetTokenStore interface {
	Insert(ctx context.Context, token models.PasswordResetToken) error
	Consume(ctx context.Context, token string) (string, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type SessionStore interface {
	Upsert(ctx context.Context, session models.Session) error
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// Mailer is the out-of-band notification collaborator. Delivery mechanics are
// outside this service; implementations must not leak failures to clients.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email string, resetToken string) error
	SendWelcome(ctx context.Context, email string, firstName string) error
}
