package models

// Event payloads published to the notifications exchange by the scheduler
// and the API, consumed by the notification sender.

// TrialExpiringEvent is published for users whose trial ends today.
type TrialExpiringEvent struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	TrialEnd string `json:"trial_end"`
}

// PremiumLapsedEvent is published when a periodic re-verify finds a lapsed
// subscription.
type PremiumLapsedEvent struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Plan      string `json:"plan"`
	PeriodEnd string `json:"period_end"`
}

// PasswordResetEvent carries a reset token to be emailed to the user.
type PasswordResetEvent struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}
