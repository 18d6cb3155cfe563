package models

import "time"

// Preference is one key-value pair of per-user client settings
// (onboarding flags, app-lock, reminder time). Writes are upserts.
type Preference struct {
	UserUID   string    `json:"-"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
