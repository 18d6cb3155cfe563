// Package scheduler runs the periodic entitlement sweeps: expiring trials
// whose end date has passed and re-verifying premium users whose paid period
// has lapsed.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/selah-app/selah-backend/internal/billing"
	"github.com/selah-app/selah-backend/internal/lib/rabbitmq"
	"github.com/selah-app/selah-backend/internal/lib/sl"
	"github.com/selah-app/selah-backend/internal/lib/streak"
	"github.com/selah-app/selah-backend/internal/models"
	"github.com/selah-app/selah-backend/internal/services/entitlement"
)

// Repository describes the storage calls the sweeps perform.
type Repository interface {
	FindTrialsExpiringToday(ctx context.Context) ([]*models.User, error)
	FindLapsedPremium(ctx context.Context) ([]*models.User, error)
	ExpireTrial(ctx context.Context, userUID string) error
	ExtendPeriod(ctx context.Context, userUID string, periodEnd time.Time) error
	UpdateStatus(ctx context.Context, userUID, status string) error
}

// Biller re-verifies lapsed subscriptions against the billing backend.
type Biller interface {
	GetSubscription(ctx context.Context, subscriptionID string) (*billing.SubscriptionState, error)
}

// Cache invalidates entitlement snapshots after a state change.
type Cache interface {
	Invalidate(key string) error
}

// SchedulerService runs the trial and lapse sweeps.
type SchedulerService struct {
	log    *slog.Logger
	repo   Repository
	biller Biller
	cache  Cache
}

// NewSchedulerService creates a SchedulerService.
func NewSchedulerService(log *slog.Logger, repo Repository, biller Biller, cache Cache) *SchedulerService {
	return &SchedulerService{
		log:    log,
		repo:   repo,
		biller: biller,
		cache:  cache,
	}
}

// RunTrialSweep expires overdue trials once at startup and then on every
// tick until the context is canceled.
func (s *SchedulerService) RunTrialSweep(ctx context.Context, channel *amqp.Channel, interval time.Duration) {
	s.sweepTrials(ctx, channel)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepTrials(ctx, channel)
		}
	}
}

func (s *SchedulerService) sweepTrials(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting trial sweep")
	users, err := s.repo.FindTrialsExpiringToday(ctx)
	if err != nil {
		s.log.Error("failed to find expiring trials", sl.Err(err))
		return
	}
	if len(users) == 0 {
		s.log.Info("no expiring trials found")
		return
	}
	s.log.Info("found expiring trials", "count", len(users))

	for _, user := range users {
		if err := s.repo.ExpireTrial(ctx, user.UID); err != nil {
			s.log.Error("failed to expire trial", slog.String("user_uid", user.UID), sl.Err(err))
			continue
		}
		s.invalidate(user.UID)

		event := models.TrialExpiringEvent{
			Email:    user.Email,
			Username: user.Username,
		}
		if user.TrialEndDate != nil {
			event.TrialEnd = user.TrialEndDate.Format(streak.DayFormat)
		}
		err := rabbitmq.PublishMessage(channel, "notifications", rabbitmq.RoutingKeyTrialExpiring, event)
		if err != nil {
			s.log.Error("failed to publish trial event", sl.Err(err))
		}
	}
}

// RunLapseSweep re-verifies lapsed premium users once at startup and then on
// every tick until the context is canceled.
func (s *SchedulerService) RunLapseSweep(ctx context.Context, channel *amqp.Channel, interval time.Duration) {
	s.sweepLapsed(ctx, channel)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepLapsed(ctx, channel)
		}
	}
}

// sweepLapsed asks the billing backend about every premium user whose stored
// period end has passed. A renewed subscription extends the local period, a
// dead one cancels the user. Webhook delivery is not assumed reliable, the
// sweep is what finally converges the state.
func (s *SchedulerService) sweepLapsed(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting lapse sweep")
	users, err := s.repo.FindLapsedPremium(ctx)
	if err != nil {
		s.log.Error("failed to find lapsed premium users", sl.Err(err))
		return
	}
	if len(users) == 0 {
		s.log.Info("no lapsed premium users found")
		return
	}
	s.log.Info("found lapsed premium users", "count", len(users))

	for _, user := range users {
		if user.StripeSubID == "" {
			// Activated out of band, nothing to verify against.
			continue
		}
		state, err := s.biller.GetSubscription(ctx, user.StripeSubID)
		if err != nil {
			s.log.Error("failed to re-verify subscription",
				slog.String("user_uid", user.UID), sl.Err(err))
			continue
		}
		if state.Active {
			if err := s.repo.ExtendPeriod(ctx, user.UID, state.PeriodEnd); err != nil {
				s.log.Error("failed to extend period", slog.String("user_uid", user.UID), sl.Err(err))
			}
			s.invalidate(user.UID)
			continue
		}

		if err := s.repo.UpdateStatus(ctx, user.UID, models.StatusCanceled); err != nil {
			s.log.Error("failed to cancel user", slog.String("user_uid", user.UID), sl.Err(err))
			continue
		}
		s.invalidate(user.UID)

		event := models.PremiumLapsedEvent{
			Email:    user.Email,
			Username: user.Username,
			Plan:     user.Plan,
		}
		if user.CurrentPeriodEnd != nil {
			event.PeriodEnd = user.CurrentPeriodEnd.Format(streak.DayFormat)
		}
		err = rabbitmq.PublishMessage(channel, "notifications", rabbitmq.RoutingKeyPremiumLapsed, event)
		if err != nil {
			s.log.Error("failed to publish lapse event", sl.Err(err))
		}
	}
}

func (s *SchedulerService) invalidate(userUID string) {
	if err := s.cache.Invalidate(entitlement.SnapshotKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate snapshot cache", sl.Err(err))
	}
}
