package models

import "time"

// Payment records a verified checkout session or webhook-confirmed charge.
type Payment struct {
	ID             int       `json:"id"`
	UserUID        string    `json:"user_uid"`
	SessionID      string    `json:"session_id"`
	SubscriptionID string    `json:"subscription_id"`
	Plan           string    `json:"plan"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}
