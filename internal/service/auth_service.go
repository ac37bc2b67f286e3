package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smartcart/api/internal/config"
	"smartcart/api/internal/ids"
	"smartcart/api/internal/models"
	"smartcart/api/internal/repository"
	"smartcart/api/internal/security"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already registered")
	ErrRefreshTokenInvalid = errors.New("refresh token invalid or expired")
	ErrResetTokenInvalid   = errors.New("reset token invalid or expired")
	ErrUserNotFound        = errors.New("user not found")
)

type AuthService struct {
	users    UserStore
	tokens   RefreshTokenStore
	resets   ResetTokenStore
	sessions SessionStore
	mailer   Mailer
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(
	users UserStore,
	tokens RefreshTokenStore,
	resets ResetTokenStore,
	sessions SessionStore,
	mailer Mailer,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		resets:   resets,
		sessions: sessions,
		mailer:   mailer,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	Phone      *string
	DeviceInfo *models.DeviceInfo
	IPAddress  string
	UserAgent  string
}

type AuthResult struct {
	User         models.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        normalizeEmail(input.Email),
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Preferences:  models.DefaultPreferences(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, err
	}

	result, err := s.issueTokens(ctx, user, input.DeviceInfo, input.IPAddress, input.UserAgent)
	if err != nil {
		return AuthResult{}, err
	}

	// Welcome mail is best effort; registration never fails on it.
	if err := s.mailer.SendWelcome(ctx, user.Email, user.FirstName); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("welcome mail failed")
	}

	return result, nil
}

type LoginInput struct {
	Email      string
	Password   string
	DeviceInfo *models.DeviceInfo
	IPAddress  string
	UserAgent  string
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if !security.VerifyPassword(input.Password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("update last login failed")
	}
	user.LastLoginAt = time.Now()

	return s.issueTokens(ctx, user, input.DeviceInfo, input.IPAddress, input.UserAgent)
}

func (s *AuthService) issueTokens(
	ctx context.Context,
	user models.User,
	deviceInfo *models.DeviceInfo,
	ipAddress string,
	userAgent string,
) (AuthResult, error) {
	pair, err := security.IssueTokenPair(s.cfg.Security.JWTSecret, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	refreshToken := models.RefreshToken{
		ID:         ids.New(),
		UserID:     user.ID,
		Token:      pair.RefreshToken,
		DeviceInfo: deviceInfo,
		ExpiresAt:  time.Now().Add(security.RefreshTokenTTL),
	}
	if err := s.tokens.Insert(ctx, refreshToken); err != nil {
		return AuthResult{}, err
	}

	if deviceInfo != nil && deviceInfo.DeviceID != "" {
		session := models.Session{
			ID:         ids.New(),
			UserID:     user.ID,
			DeviceID:   deviceInfo.DeviceID,
			DeviceInfo: deviceInfo,
			IPAddress:  ipAddress,
			UserAgent:  userAgent,
		}
		if err := s.sessions.Upsert(ctx, session); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("session upsert failed")
		}
	}

	return AuthResult{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(security.AccessTokenTTL.Seconds()),
	}, nil
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Refresh rotates a refresh token in place. The signed claims identify the
// user so a fresh pair can be minted up front; the conditional store update
// then decides whether the presented string is still the live one. Losing a
// concurrent rotation race surfaces exactly like an expired token.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (RefreshResult, error) {
	userID, err := security.VerifyRefreshToken(oldToken, s.cfg.Security.JWTSecret)
	if err != nil {
		return RefreshResult{}, ErrRefreshTokenInvalid
	}

	pair, err := security.IssueTokenPair(s.cfg.Security.JWTSecret, userID)
	if err != nil {
		return RefreshResult{}, err
	}

	expiresAt := time.Now().Add(security.RefreshTokenTTL)
	if _, err := s.tokens.Rotate(ctx, oldToken, pair.RefreshToken, expiresAt); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return RefreshResult{}, ErrRefreshTokenInvalid
		}
		return RefreshResult{}, err
	}

	return RefreshResult{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(security.AccessTokenTTL.Seconds()),
	}, nil
}

// Logout revokes the presented refresh token, or every token the user owns
// when none is given. Errors are logged only: a client logging out always
// succeeds from its point of view.
func (s *AuthService) Logout(ctx context.Context, userID string, refreshToken string) {
	var err error
	if refreshToken != "" {
		err = s.tokens.DeleteByToken(ctx, refreshToken)
	} else {
		err = s.tokens.DeleteByUser(ctx, userID)
	}
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("logout revocation failed")
	}
}

// RequestPasswordReset never reveals whether the email exists: the unknown
// case and the happy case are indistinguishable to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}
		return err
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return err
	}

	reset := models.PasswordResetToken{
		ID:        ids.New(),
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.cfg.Security.ResetTokenTTL),
	}
	if err := s.resets.Insert(ctx, reset); err != nil {
		return err
	}

	// Mail failures are logged, not returned: surfacing them would make the
	// found case distinguishable from the unknown one.
	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("reset mail failed")
	}
	return nil
}

// CompletePasswordReset consumes the token, persists the new password and
// revokes every refresh token the user holds, forcing re-login everywhere.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token string, newPassword string) error {
	userID, err := s.resets.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}

	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("revoke refresh tokens after reset failed")
	}
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) Sessions(ctx context.Context, userID string) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// DeleteAccount cascades over everything the user owns before removing the
// user row itself.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.resets.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
