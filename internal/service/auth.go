// Package service contains the business logic layer: validation, auth
// decisions and the browse/pagination state machine. Services speak in
// domain types and apperror values; they know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/gameshelf/internal/apperror"
	"github.com/sakif/gameshelf/internal/auth"
	"github.com/sakif/gameshelf/internal/model"
	"github.com/sakif/gameshelf/internal/repository"
)

// Form limits, matching the signup/login forms.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 15
	MinPasswordLength = 6
	MaxPasswordLength = 20
)

// loginRejected is the single message for every login failure. An attacker
// probing for valid usernames gets the same answer either way.
const loginRejected = "invalid username or password"

// AuthService handles registration, login and account deletion.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register validates the signup input, hashes the password and creates the
// account. A taken username surfaces as a conflict error; the plaintext
// password is hashed before the repository ever sees the user.
func (s *AuthService) Register(ctx context.Context, username, password, imageURL string) (*model.User, error) {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d-%d characters", MinUsernameLength, MaxUsernameLength))
	}
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d-%d characters", MinPasswordLength, MaxPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("registering %s: %w", username, err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		ImageURL:     strings.TrimSpace(imageURL),
	}
	if user.ImageURL == "" {
		user.ImageURL = model.DefaultImageURL
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Duplicate username. The handler re-renders the form with
			// this, the same as a validation failure.
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering %s: %w", username, err)
	}

	s.logger.Info("user registered", slog.String("username", username))
	return user, nil
}

// Login verifies the credentials and returns the account.
//
// Absent user and wrong password take the same exit: the stored-lookup error
// and the hash mismatch both collapse into one opaque rejection. Rejection
// is the expected outcome of a bad login, so it is not logged as an error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(loginRejected)
		}
		s.logger.Error("login lookup failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("logging in %s: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(loginRejected)
	}

	s.logger.Info("user logged in", slog.String("username", username))
	return user, nil
}

// DeleteAccount removes the account; the storage layer cascades the user's
// favorites away with it.
func (s *AuthService) DeleteAccount(ctx context.Context, username string) error {
	if username == "" {
		return apperror.Unauthorized("login required")
	}

	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}

	s.logger.Info("account deleted", slog.String("username", username))
	return nil
}
