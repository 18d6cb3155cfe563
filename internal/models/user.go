// Package models contains the domain structures shared between the storage,
// services and HTTP layers, plus helper request types for JSON payloads.
package models

import "time"

// Entitlement statuses stored on a user row.
const (
	StatusTrial        = "trial"
	StatusTrialExpired = "trial_expired"
	StatusPremium      = "premium"
	StatusCanceled     = "canceled"
)

// Premium plans.
const (
	PlanMonthly = "monthly"
	PlanYearly  = "yearly"
)

// User is the account record backing auth and entitlement decisions.
type User struct {
	UID              string     `json:"uid"`
	Email            string     `json:"email"`
	Username         string     `json:"username"`
	PasswordHash     string     `json:"-"`
	Role             string     `json:"role"`
	Status           string     `json:"status"`
	Plan             string     `json:"plan,omitempty"`
	TrialEndDate     *time.Time `json:"trial_end_date,omitempty"`
	TrialBlocked     bool       `json:"trial_blocked"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	StripeCustomerID string     `json:"-"`
	StripeSubID      string     `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
}
