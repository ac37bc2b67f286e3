package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 7 * 24 * time.Hour
	RefreshTokenTTL = 30 * 24 * time.Hour

	refreshTokenType = "refresh"
)

// ErrInvalidToken covers forged, malformed and expired tokens alike. Callers
// must not be able to tell the cases apart.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IssueTokenPair signs a short-lived access token and a longer-lived refresh
// token for userID with the one shared secret. Nothing beyond the user id and
// the refresh discriminator is embedded.
func IssueTokenPair(secret string, userID string) (TokenPair, error) {
	access, err := sign(secret, userID, "", AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := sign(secret, userID, refreshTokenType, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func sign(secret string, userID string, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken returns the user id carried by an access token. Refresh
// tokens are rejected here; they are only good for rotation.
func VerifyAccessToken(tokenStr string, secret string) (string, error) {
	claims, err := parse(tokenStr, secret)
	if err != nil || claims.TokenType == refreshTokenType {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// VerifyRefreshToken returns the user id carried by a refresh token. The
// database row remains the authority on whether the token is still live.
func VerifyRefreshToken(tokenStr string, secret string) (string, error) {
	claims, err := parse(tokenStr, secret)
	if err != nil || claims.TokenType != refreshTokenType {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func parse(tokenStr string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// GenerateResetToken returns a 256-bit random token, hex encoded.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
