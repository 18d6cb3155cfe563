package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selah-app/selah-backend/internal/models"
)

func TestStorage_RegisterAndGetUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	trialEnd := time.Now().UTC().AddDate(0, 0, 7)
	uid, err := storage.RegisterUser(context.Background(), models.User{
		Email:        "grace@example.com",
		Username:     "grace",
		PasswordHash: "hashedpassword",
		Role:         "user",
		Status:       models.StatusTrial,
		TrialEndDate: &trialEnd,
	})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	byName, err := storage.GetUserByUsername(context.Background(), "grace")
	require.NoError(t, err)
	assert.Equal(t, uid, byName.UID)
	assert.Equal(t, models.StatusTrial, byName.Status)
	require.NotNil(t, byName.TrialEndDate)

	byEmail, err := storage.GetUserByEmail(context.Background(), "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, byEmail.UID)
}

func TestStorage_PrayerLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "grace", "grace@example.com", "hashedpassword", "user")

	id, err := storage.CreatePrayer(context.Background(), models.PrayerRequest{
		UserUID:  userUID,
		Title:    "For my family",
		Category: "intercession",
	})
	require.NoError(t, err)

	got, err := storage.ReadPrayer(context.Background(), userUID, id)
	require.NoError(t, err)
	assert.Equal(t, "For my family", got.Title)
	assert.False(t, got.Answered)

	affected, err := storage.MarkPrayerAnswered(context.Background(), userUID, id)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	// Second answer is a no-op.
	affected, err = storage.MarkPrayerAnswered(context.Background(), userUID, id)
	require.NoError(t, err)
	assert.Equal(t, 0, affected)

	got, err = storage.ReadPrayer(context.Background(), userUID, id)
	require.NoError(t, err)
	assert.True(t, got.Answered)
	require.NotNil(t, got.AnsweredAt)

	affected, err = storage.RemovePrayer(context.Background(), userUID, id)
	require.NoError(t, err)
	assert.Equal(t, 1, affected)

	NewTestVerification(storage).VerifyPrayerDeleted(t, id)
}

func TestStorage_ListPrayersFilter(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	otherUID := uuid.New().String()
	factory.CreateUser(t, userUID, "grace", "grace@example.com", "hashedpassword", "user")
	factory.CreateUser(t, otherUID, "other", "other@example.com", "hashedpassword", "user")
	factory.CreatePrayer(t, userUID, "Answered one", "praise", true)
	factory.CreatePrayer(t, userUID, "Open one", "petition", false)
	factory.CreatePrayer(t, otherUID, "Not mine", "petition", false)

	all, err := storage.ListPrayers(context.Background(), userUID, models.PrayerFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	answered := true
	got, err := storage.ListPrayers(context.Background(), userUID, models.PrayerFilter{Answered: &answered, Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Answered one", got[0].Title)

	got, err = storage.ListPrayers(context.Background(), userUID, models.PrayerFilter{Category: "petition", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Open one", got[0].Title)
}

func TestStorage_ToggleProgress(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "grace", "grace@example.com", "hashedpassword", "user")
	planID := factory.CreatePlan(t, "psalms-7", "A Week of Psalms", 7)

	completed, err := storage.ToggleProgress(context.Background(), userUID, planID, 1)
	require.NoError(t, err)
	assert.True(t, completed)

	count, err := storage.CountProgress(context.Background(), userUID, planID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Toggling the same day again removes the completion.
	completed, err = storage.ToggleProgress(context.Background(), userUID, planID, 1)
	require.NoError(t, err)
	assert.False(t, completed)

	count, err = storage.CountProgress(context.Background(), userUID, planID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Days outside the plan are rejected by the foreign key.
	_, err = storage.ToggleProgress(context.Background(), userUID, planID, 8)
	require.Error(t, err)
}

func TestStorage_RedeemActivationCode(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	otherUID := uuid.New().String()
	factory.CreateUser(t, userUID, "grace", "grace@example.com", "hashedpassword", "user")
	factory.CreateUser(t, otherUID, "other", "other@example.com", "hashedpassword", "user")
	factory.CreateActivationCode(t, "GIFT-2026", models.PlanYearly, 12)

	code, ok, err := storage.RedeemActivationCode(context.Background(), userUID, "GIFT-2026")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.PlanYearly, code.Plan)
	assert.Equal(t, 12, code.GrantMonths)

	NewTestVerification(storage).VerifyUserStatus(t, userUID, models.StatusPremium)

	// A spent code is unavailable for everyone, including the redeemer.
	_, ok, err = storage.RedeemActivationCode(context.Background(), otherUID, "GIFT-2026")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = storage.RedeemActivationCode(context.Background(), userUID, "NO-SUCH-CODE")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStorage_SavePaymentIdempotency(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "grace", "grace@example.com", "hashedpassword", "user")

	payment := models.Payment{
		UserUID:        userUID,
		SessionID:      "cs_test_1",
		SubscriptionID: "sub_1",
		Plan:           models.PlanMonthly,
		Amount:         499,
		Currency:       "usd",
		Status:         "paid",
	}

	id, saved, err := storage.SavePayment(context.Background(), payment)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Greater(t, id, 0)

	// Replaying the same session is a no-op.
	_, saved, err = storage.SavePayment(context.Background(), payment)
	require.NoError(t, err)
	assert.False(t, saved)

	payments, err := storage.ListPayments(context.Background(), userUID)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestStorage_ExpireTrialAndSweepQueries(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	expiredUID := uuid.New().String()
	freshUID := uuid.New().String()
	lapsedUID := uuid.New().String()

	pastTrial := time.Now().UTC().AddDate(0, 0, -1)
	futureTrial := time.Now().UTC().AddDate(0, 0, 5)
	pastPeriod := time.Now().UTC().AddDate(0, -1, 0)

	factory.CreateUserWithEntitlement(t, expiredUID, "expired", "expired@example.com",
		models.StatusTrial, "", &pastTrial, nil, "")
	factory.CreateUserWithEntitlement(t, freshUID, "fresh", "fresh@example.com",
		models.StatusTrial, "", &futureTrial, nil, "")
	factory.CreateUserWithEntitlement(t, lapsedUID, "lapsed", "lapsed@example.com",
		models.StatusPremium, models.PlanMonthly, nil, &pastPeriod, "sub_1")

	expiring, err := storage.FindTrialsExpiringToday(context.Background())
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, expiredUID, expiring[0].UID)

	require.NoError(t, storage.ExpireTrial(context.Background(), expiredUID))
	NewTestVerification(storage).VerifyUserStatus(t, expiredUID, models.StatusTrialExpired)

	lapsed, err := storage.FindLapsedPremium(context.Background())
	require.NoError(t, err)
	require.Len(t, lapsed, 1)
	assert.Equal(t, lapsedUID, lapsed[0].UID)

	byStripe, err := storage.GetUserByStripeSubscription(context.Background(), "sub_1")
	require.NoError(t, err)
	assert.Equal(t, lapsedUID, byStripe.UID)
}

func TestStorage_PasswordResetToken(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "grace", "grace@example.com", "hashedpassword", "user")

	token := uuid.New().String()
	err := storage.CreatePasswordResetToken(context.Background(), token, userUID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	gotUID, err := storage.ConsumePasswordResetToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userUID, gotUID)

	// A consumed token cannot be used again.
	_, err = storage.ConsumePasswordResetToken(context.Background(), token)
	require.Error(t, err)
}

func TestStorage_Preferences(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	userUID := uuid.New().String()
	factory.CreateUser(t, userUID, "grace", "grace@example.com", "hashedpassword", "user")

	require.NoError(t, storage.UpsertPreference(context.Background(), models.Preference{
		UserUID: userUID, Key: "reminder_time", Value: "07:30",
	}))
	require.NoError(t, storage.UpsertPreference(context.Background(), models.Preference{
		UserUID: userUID, Key: "reminder_time", Value: "08:00",
	}))
	require.NoError(t, storage.UpsertPreference(context.Background(), models.Preference{
		UserUID: userUID, Key: "app_lock", Value: "on",
	}))

	prefs, err := storage.ListPreferences(context.Background(), userUID)
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, "app_lock", prefs[0].Key)
	assert.Equal(t, "reminder_time", prefs[1].Key)
	assert.Equal(t, "08:00", prefs[1].Value)
}
