package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-task-manager-api/internal/api"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserService = (*UserServiceImpl)(nil)

// UserService covers what an authenticated user can do to their own account.
type UserService interface {
	GetCurrentUser(ctx context.Context, userID string) (*types.User, error)
	UpdateProfile(ctx context.Context, userID string, params types.UpdateProfileParams) (*types.User, error)
	UpdatePassword(ctx context.Context, userID string, req types.ChangePasswordRequest) error
}

// UserServiceImpl provides the implementation for UserService.
type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *UserServiceImpl) GetCurrentUser(ctx context.Context, userID string) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "GetCurrentUser", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetCurrentUser"), slog.String("userID", userID))
	l.DebugContext(ctx, "Fetching current user")

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lookup failed")
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return user, nil
}

// UpdateProfile replaces the user's name and email. Email must be valid and
// not belong to another account.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID string, params types.UpdateProfileParams) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdateProfile", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID))

	name := strings.TrimSpace(params.Name)
	email := api.NormalizeEmail(params.Email)
	if name == "" || !api.IsValidEmail(email) {
		return nil, types.NewValidationError("Valid name and email are required")
	}

	taken, err := s.repo.EmailTakenByOther(ctx, email, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		l.InfoContext(ctx, "Profile update rejected, email in use")
		return nil, fmt.Errorf("email %s: %w", email, types.ErrConflict)
	}

	user, err := s.repo.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) && !errors.Is(err, types.ErrConflict) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "update failed")
		}
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	span.SetStatus(codes.Ok, "profile updated")
	l.InfoContext(ctx, "User profile updated")
	return user, nil
}

// UpdatePassword checks the current password and stores a hash of the new one.
// A wrong current password yields types.ErrInvalidCredentials.
func (s *UserServiceImpl) UpdatePassword(ctx context.Context, userID string, req types.ChangePasswordRequest) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdatePassword", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdatePassword"), slog.String("userID", userID))

	if req.CurrentPassword == "" ||
		api.PasswordTooShort(req.NewPassword) ||
		api.PasswordTooLong(req.NewPassword) {
		return types.NewValidationError("Password invalid or too short")
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("error fetching user: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			l.InfoContext(ctx, "Password change rejected, current password mismatch")
			return types.ErrInvalidCredentials
		}
		span.RecordError(err)
		return fmt.Errorf("error comparing password hash: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), api.BcryptCost)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err = s.repo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "update failed")
		}
		return fmt.Errorf("error updating password: %w", err)
	}

	span.SetStatus(codes.Ok, "password changed")
	l.InfoContext(ctx, "User password changed")
	return nil
}
