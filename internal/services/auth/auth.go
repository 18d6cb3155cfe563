// Package auth contains the business logic for registration, login, token
// refresh and password reset.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/selah-app/selah-backend/internal/lib/jwt"
	"github.com/selah-app/selah-backend/internal/lib/password"
	"github.com/selah-app/selah-backend/internal/models"
)

// ErrInvalidCredentials is returned on a failed login or refresh.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository describes the storage contract for user accounts.
type UserRepository interface {
	// RegisterUser saves a new user and returns the generated UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUsername returns a user by username.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByEmail returns a user by email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userUID, passwordHash string) error
	// CreatePasswordResetToken stores a single-use reset token.
	CreatePasswordResetToken(ctx context.Context, token, userUID string, expiresAt time.Time) error
	// ConsumePasswordResetToken marks a token used and returns its owner.
	ConsumePasswordResetToken(ctx context.Context, token string) (string, error)
}

// ResetPublisher delivers password reset tokens to the notification queue.
type ResetPublisher interface {
	PublishPasswordReset(event models.PasswordResetEvent) error
}

// AuthService handles registration, login and token validation.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	publisher ResetPublisher
	trialDays int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, publisher ResetPublisher, trialDays int) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		publisher: publisher,
		trialDays: trialDays,
	}
}

// Register creates a new user in trial state with a hashed password and the
// default "user" role, and returns the UID.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	trialEndDate := time.Now().UTC().AddDate(0, 0, s.trialDays)
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         "user",
		Status:       models.StatusTrial,
		TrialEndDate: &trialEndDate,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login verifies the password and issues an access and a refresh token.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (*models.User, string, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.Username, user.Role, user.UID)
	if err != nil {
		return nil, "", "", err
	}
	return user, token, refresh, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (string, string, error) {
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil || claims.Kind != "refresh" {
		return "", "", ErrInvalidCredentials
	}
	token, err := s.jwtMaker.GenerateToken(claims.Username, claims.Role, claims.UserUID)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(claims.Username, claims.Role, claims.UserUID)
	if err != nil {
		return "", "", err
	}
	return token, refresh, nil
}

// ValidateToken checks an access token and returns the user identity.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, bool, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, false, err
	}
	if claims.Kind != "access" {
		return nil, false, fmt.Errorf("auth.ValidateToken: not an access token")
	}
	user := &models.User{
		Username: claims.Username,
		Role:     claims.Role,
		UID:      claims.UserUID,
	}
	return user, true, nil
}

// RequestPasswordReset issues a reset token for the account behind email and
// hands it to the notification queue. An unknown email is reported as success
// so the endpoint does not leak which addresses exist.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil
	}

	token := uuid.New().String()
	expiresAt := time.Now().UTC().Add(time.Hour)
	if err := s.users.CreatePasswordResetToken(ctx, token, user.UID, expiresAt); err != nil {
		return err
	}

	return s.publisher.PublishPasswordReset(models.PasswordResetEvent{
		Email:    user.Email,
		Username: user.Username,
		Token:    token,
	})
}

// ConfirmPasswordReset consumes a reset token and stores the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	userUID, err := s.users.ConsumePasswordResetToken(ctx, token)
	if err != nil {
		return ErrInvalidCredentials
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userUID, hashed)
}
