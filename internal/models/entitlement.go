package models

import "time"

// EntitlementSnapshot is the derived gating state handed to the client and
// evaluated by the paywall middleware.
type EntitlementSnapshot struct {
	Status            string     `json:"status"`
	DaysRemaining     int        `json:"days_remaining"`
	MessagesUsedToday int        `json:"messages_used_today"`
	MessageQuota      int        `json:"message_quota"`
	Plan              string     `json:"plan,omitempty"`
	PeriodEnd         *time.Time `json:"period_end,omitempty"`
}

// Active reports whether the snapshot grants access to premium-gated routes.
func (e EntitlementSnapshot) Active() bool {
	return e.Status == StatusPremium || e.Status == StatusTrial
}

// ActivationCode is a single-use out-of-band code that unlocks premium
// without going through the checkout flow.
type ActivationCode struct {
	ID          int        `json:"id"`
	Code        string     `json:"code"`
	Plan        string     `json:"plan"`
	GrantMonths int        `json:"grant_months"`
	RedeemedBy  *string    `json:"redeemed_by,omitempty"`
	RedeemedAt  *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
