package models

import "time"

// PrayerRequest is a journal entry owned by a single user.
// Answered is set once by the answer operation together with AnsweredAt.
type PrayerRequest struct {
	ID          int        `json:"id"`
	UserUID     string     `json:"user_uid"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Answered    bool       `json:"answered"`
	AnsweredAt  *time.Time `json:"answered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DummyPrayer carries the JSON payload for creating or updating a prayer
// request before it is converted into a PrayerRequest.
type DummyPrayer struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
	Category    string `json:"category" validate:"required,max=50"`
}

// PrayerFilter narrows a prayer list request.
type PrayerFilter struct {
	Answered *bool
	Category string
	Limit    int
	Offset   int
}
