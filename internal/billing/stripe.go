// Package billing wraps the Stripe API calls the entitlement service needs:
// checkout session verification, subscription re-verification for restore
// calls, and webhook event parsing.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/selah-app/selah-backend/internal/models"
)

// VerifiedCheckout is the subset of a paid checkout session the service
// stores locally.
type VerifiedCheckout struct {
	SessionID         string
	ClientReferenceID string
	CustomerID        string
	SubscriptionID    string
	Plan              string
	Amount            int64
	Currency          string
	PeriodEnd         time.Time
	Paid              bool
}

// SubscriptionState is the result of re-verifying a subscription.
type SubscriptionState struct {
	Active    bool
	Plan      string
	PeriodEnd time.Time
}

// Client talks to Stripe with the configured secret key.
type Client struct {
	webhookSecret string
}

// NewClient wires the Stripe API key and returns a Client.
func NewClient(secretKey, webhookSecret string) *Client {
	stripe.Key = secretKey
	return &Client{webhookSecret: webhookSecret}
}

// VerifyCheckoutSession retrieves a checkout session and reports whether it
// has been paid, along with the plan and period derived from the attached
// subscription.
func (c *Client) VerifyCheckoutSession(ctx context.Context, sessionID string) (*VerifiedCheckout, error) {
	const op = "billing.VerifyCheckoutSession"

	params := &stripe.CheckoutSessionParams{
		Expand: []*string{stripe.String("subscription")},
	}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &VerifiedCheckout{
		SessionID:         sess.ID,
		ClientReferenceID: sess.ClientReferenceID,
		Amount:            sess.AmountTotal,
		Currency:          string(sess.Currency),
		Paid:              sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
	if sess.Customer != nil {
		result.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		result.SubscriptionID = sess.Subscription.ID
		result.Plan = planFromSubscription(sess.Subscription)
		result.PeriodEnd = time.Unix(sess.Subscription.CurrentPeriodEnd, 0).UTC()
	}
	return result, nil
}

// GetSubscription re-verifies a subscription by ID. Used by restore calls and
// the periodic lapse sweep.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionState, error) {
	const op = "billing.GetSubscription"

	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SubscriptionState{
		Active:    sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing,
		Plan:      planFromSubscription(sub),
		PeriodEnd: time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
	}, nil
}

// ConstructWebhookEvent verifies the webhook signature and parses the event.
func (c *Client) ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	const op = "billing.ConstructWebhookEvent"

	event, err := webhook.ConstructEventWithOptions(
		payload,
		sigHeader,
		c.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return event, nil
}

// planFromSubscription maps the Stripe billing interval to a local plan name.
func planFromSubscription(sub *stripe.Subscription) string {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	price := sub.Items.Data[0].Price
	if price == nil || price.Recurring == nil {
		return ""
	}
	switch price.Recurring.Interval {
	case stripe.PriceRecurringIntervalYear:
		return models.PlanYearly
	case stripe.PriceRecurringIntervalMonth:
		return models.PlanMonthly
	default:
		return ""
	}
}
