package models

import "time"

type NotificationPreferences struct {
	BudgetAlerts      bool `json:"budgetAlerts"`
	PriceAlerts       bool `json:"priceAlerts"`
	ShoppingReminders bool `json:"shoppingReminders"`
	Promotions        bool `json:"promotions"`
}

type PrivacyPreferences struct {
	ShareLocation  bool `json:"shareLocation"`
	ShareUsageData bool `json:"shareUsageData"`
}

type Preferences struct {
	Currency      string                  `json:"currency"`
	Notifications NotificationPreferences `json:"notifications"`
	Privacy       PrivacyPreferences      `json:"privacy"`
	Theme         string                  `json:"theme"`
	Language      string                  `json:"language"`
}

// DefaultPreferences is the preferences document written at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		Currency: "CLP",
		Notifications: NotificationPreferences{
			BudgetAlerts:      true,
			PriceAlerts:       true,
			ShoppingReminders: true,
			Promotions:        false,
		},
		Privacy: PrivacyPreferences{
			ShareLocation:  true,
			ShareUsageData: false,
		},
		Theme:    "system",
		Language: "es",
	}
}

// ProfileUpdate carries optional profile mutations; nil fields stay untouched.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Avatar      *string
	Preferences *Preferences
}

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	Phone        *string
	Avatar       *string
	Preferences  Preferences
	CreatedAt    time.Time
	LastLoginAt  time.Time
}
