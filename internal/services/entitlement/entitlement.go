// Package entitlement derives the gating state of a user (trial, trial
// expired, premium, canceled), enforces the daily message quota and applies
// premium transitions coming from checkout verification, restore calls,
// activation codes and billing webhooks.
package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v79"

	"github.com/selah-app/selah-backend/internal/billing"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/lib/streak"
	"github.com/selah-app/selah-backend/internal/metrics"
	"github.com/selah-app/selah-backend/internal/models"
)

var (
	// ErrCheckoutNotPaid is returned when a verified session has no paid status.
	ErrCheckoutNotPaid = errors.New("checkout session is not paid")
	// ErrCheckoutOwnerMismatch is returned when a session's client reference
	// does not name the calling user.
	ErrCheckoutOwnerMismatch = errors.New("checkout session belongs to another user")
	// ErrNothingToRestore is returned when the user has no stored subscription.
	ErrNothingToRestore = errors.New("no subscription to restore")
	// ErrCodeUnavailable is returned when an activation code is unknown or spent.
	ErrCodeUnavailable = errors.New("activation code unavailable")
)

const snapshotTTL = 5 * time.Minute

// Repository describes the storage contract for entitlement state.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ActivatePremium(ctx context.Context, userUID, plan string, periodEnd time.Time, customerID, subscriptionID string) error
	UpdateStatus(ctx context.Context, userUID, status string) error
	ExtendPeriod(ctx context.Context, userUID string, periodEnd time.Time) error
	RedeemActivationCode(ctx context.Context, userUID, code string) (*models.ActivationCode, bool, error)
	GetUserByStripeSubscription(ctx context.Context, subscriptionID string) (*models.User, error)
	SavePayment(ctx context.Context, payment models.Payment) (int, bool, error)
}

// Biller describes the billing backend calls the service performs.
type Biller interface {
	VerifyCheckoutSession(ctx context.Context, sessionID string) (*billing.VerifiedCheckout, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*billing.SubscriptionState, error)
}

// Cache describes the snapshot cache and the quota counters.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
	IncrWithTTL(key string, ttl time.Duration) (int64, error)
	GetCounter(key string) (int64, error)
}

// EntitlementService builds snapshots and applies premium transitions.
type EntitlementService struct {
	log        *slog.Logger
	repo       Repository
	biller     Biller
	cache      Cache
	dailyQuota int
}

// New creates an EntitlementService.
func New(log *slog.Logger, repo Repository, biller Biller, cache Cache, dailyQuota int) *EntitlementService {
	return &EntitlementService{
		log:        log,
		repo:       repo,
		biller:     biller,
		cache:      cache,
		dailyQuota: dailyQuota,
	}
}

// SnapshotKey is the cache key of a user's entitlement snapshot. Exported so
// the scheduler sweeps can invalidate it after a state change.
func SnapshotKey(userUID string) string {
	return "entitlement:" + userUID
}

func quotaKey(userUID string) string {
	return "quota:" + userUID + ":" + time.Now().UTC().Format(streak.DayFormat)
}

// untilEndOfDay returns the time left in the current UTC day. Quota counters
// expire with the day they belong to.
func untilEndOfDay() time.Duration {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return midnight.Sub(now)
}

// Snapshot returns the derived gating state for a user. The user row part is
// cached, the quota counter is always read live.
func (s *EntitlementService) Snapshot(ctx context.Context, userUID string) (*models.EntitlementSnapshot, error) {
	const op = "entitlement.Snapshot"

	var snapshot models.EntitlementSnapshot
	found, err := s.cache.Get(SnapshotKey(userUID), &snapshot)
	if err != nil {
		s.log.Warn("failed to read snapshot cache", sl.Err(err))
	}
	if !found {
		user, err := s.repo.GetUser(ctx, userUID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		snapshot = s.derive(user)
		if err := s.cache.Set(SnapshotKey(userUID), snapshot, snapshotTTL); err != nil {
			s.log.Warn("failed to cache snapshot", sl.Err(err))
		}
	}

	if snapshot.Status != models.StatusPremium {
		used, err := s.cache.GetCounter(quotaKey(userUID))
		if err != nil {
			s.log.Warn("failed to read quota counter", sl.Err(err))
		}
		snapshot.MessagesUsedToday = int(used)
	}
	return &snapshot, nil
}

// derive computes the snapshot from a user row. A trial whose end date has
// passed is reported expired even before the daily sweep has updated the row.
func (s *EntitlementService) derive(user *models.User) models.EntitlementSnapshot {
	snapshot := models.EntitlementSnapshot{
		Status: user.Status,
		Plan:   user.Plan,
	}
	switch user.Status {
	case models.StatusTrial:
		snapshot.MessageQuota = s.dailyQuota
		if user.TrialBlocked {
			snapshot.Status = models.StatusTrialExpired
			break
		}
		if user.TrialEndDate == nil {
			break
		}
		if time.Now().UTC().After(*user.TrialEndDate) {
			snapshot.Status = models.StatusTrialExpired
			break
		}
		// Round up so a freshly started 7 day trial reports 7.
		snapshot.DaysRemaining = int((time.Until(*user.TrialEndDate) + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
	case models.StatusPremium:
		snapshot.PeriodEnd = user.CurrentPeriodEnd
	default:
		snapshot.MessageQuota = s.dailyQuota
	}
	return snapshot
}

// ConsumeMessage counts one message against the daily quota. Premium users are
// not counted. The returned bool reports whether the message is allowed.
func (s *EntitlementService) ConsumeMessage(ctx context.Context, userUID string) (*models.EntitlementSnapshot, bool, error) {
	const op = "entitlement.ConsumeMessage"

	snapshot, err := s.Snapshot(ctx, userUID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if snapshot.Status == models.StatusPremium {
		return snapshot, true, nil
	}
	if !snapshot.Active() {
		return snapshot, false, nil
	}

	used, err := s.cache.IncrWithTTL(quotaKey(userUID), untilEndOfDay())
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	snapshot.MessagesUsedToday = int(used)
	if used > int64(s.dailyQuota) {
		metrics.QuotaDenials.Inc()
		return snapshot, false, nil
	}
	return snapshot, true, nil
}

// VerifyCheckout confirms a checkout session with the billing backend and
// activates premium. The session must name the calling user in its client
// reference. A replayed session is a no-op for the payment record but still
// converges the user to premium.
func (s *EntitlementService) VerifyCheckout(ctx context.Context, userUID, sessionID string) (*models.EntitlementSnapshot, error) {
	const op = "entitlement.VerifyCheckout"

	checkout, err := s.biller.VerifyCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !checkout.Paid {
		return nil, ErrCheckoutNotPaid
	}
	if checkout.ClientReferenceID != userUID {
		s.log.Warn("checkout session claimed by wrong user",
			slog.String("session_id", checkout.SessionID),
			slog.String("user_uid", userUID))
		return nil, ErrCheckoutOwnerMismatch
	}

	_, saved, err := s.repo.SavePayment(ctx, models.Payment{
		UserUID:        userUID,
		SessionID:      checkout.SessionID,
		SubscriptionID: checkout.SubscriptionID,
		Plan:           checkout.Plan,
		Amount:         checkout.Amount,
		Currency:       checkout.Currency,
		Status:         "paid",
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.repo.ActivatePremium(ctx, userUID, checkout.Plan, checkout.PeriodEnd,
		checkout.CustomerID, checkout.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if saved {
		metrics.PremiumActivations.WithLabelValues("checkout").Inc()
	}
	s.invalidate(userUID)

	return s.Snapshot(ctx, userUID)
}

// Restore re-verifies the stored subscription with the billing backend and
// converges the local state to whatever the backend reports.
func (s *EntitlementService) Restore(ctx context.Context, userUID string) (*models.EntitlementSnapshot, error) {
	const op = "entitlement.Restore"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user.StripeSubID == "" {
		return nil, ErrNothingToRestore
	}

	state, err := s.biller.GetSubscription(ctx, user.StripeSubID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if state.Active {
		err = s.repo.ActivatePremium(ctx, userUID, state.Plan, state.PeriodEnd,
			user.StripeCustomerID, user.StripeSubID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		metrics.PremiumActivations.WithLabelValues("restore").Inc()
	} else {
		if err := s.repo.UpdateStatus(ctx, userUID, models.StatusCanceled); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	s.invalidate(userUID)

	return s.Snapshot(ctx, userUID)
}

// RedeemCode redeems a single-use activation code and activates premium for
// the grant period stored on the code.
func (s *EntitlementService) RedeemCode(ctx context.Context, userUID, code string) (*models.EntitlementSnapshot, error) {
	const op = "entitlement.RedeemCode"

	_, ok, err := s.repo.RedeemActivationCode(ctx, userUID, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, ErrCodeUnavailable
	}
	metrics.PremiumActivations.WithLabelValues("activation_code").Inc()
	s.invalidate(userUID)

	return s.Snapshot(ctx, userUID)
}

// HandleWebhookEvent applies a verified billing event. Unknown event types
// are logged and skipped.
func (s *EntitlementService) HandleWebhookEvent(ctx context.Context, event stripe.Event) error {
	const op = "entitlement.HandleWebhookEvent"

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if sess.ClientReferenceID == "" {
			s.log.Warn("checkout session without client reference", slog.String("session_id", sess.ID))
			return nil
		}
		if _, err := s.VerifyCheckout(ctx, sess.ClientReferenceID, sess.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

	case "invoice.payment_succeeded":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if invoice.Subscription == nil {
			return nil
		}
		user, err := s.repo.GetUserByStripeSubscription(ctx, invoice.Subscription.ID)
		if err != nil {
			s.log.Warn("renewal for unknown subscription",
				slog.String("subscription_id", invoice.Subscription.ID))
			return nil
		}
		state, err := s.biller.GetSubscription(ctx, invoice.Subscription.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := s.repo.ExtendPeriod(ctx, user.UID, state.PeriodEnd); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.invalidate(user.UID)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		user, err := s.repo.GetUserByStripeSubscription(ctx, sub.ID)
		if err != nil {
			s.log.Warn("cancellation for unknown subscription", slog.String("subscription_id", sub.ID))
			return nil
		}
		if err := s.repo.UpdateStatus(ctx, user.UID, models.StatusCanceled); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.invalidate(user.UID)

	default:
		s.log.Debug("ignoring billing event", slog.String("type", string(event.Type)))
	}
	return nil
}

func (s *EntitlementService) invalidate(userUID string) {
	if err := s.cache.Invalidate(SnapshotKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate snapshot cache", sl.Err(err))
	}
}
