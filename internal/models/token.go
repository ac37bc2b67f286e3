package models

import "time"

type DeviceInfo struct {
	Platform    string `json:"platform"`
	Version     string `json:"version"`
	DeviceID    string `json:"deviceId"`
	AppVersion  string `json:"appVersion"`
	BuildNumber string `json:"buildNumber"`
}

// RefreshToken holds the current token string for one device. Rotation
// overwrites Token and ExpiresAt in place; a row never accumulates history.
type RefreshToken struct {
	ID         string
	UserID     string
	Token      string
	DeviceInfo *DeviceInfo
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// PasswordResetToken is single use: Used flips to true exactly once.
type PasswordResetToken struct {
	ID        string
	UserID    string
	Token     string
	Used      bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Session struct {
	ID           string
	UserID       string
	DeviceID     string
	DeviceInfo   *DeviceInfo
	IPAddress    string
	UserAgent    string
	LastActivity time.Time
}
