package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-task-manager-api/app/observability/metrics"
	"github.com/FACorreiaa/go-task-manager-api/internal/api"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService registers users and logs them in, returning a fresh token.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (string, *types.User, error)
	Login(ctx context.Context, email, password string) (string, *types.User, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	tokens TokenService
}

func NewAuthService(repo AuthRepo, tokens TokenService, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		tokens: tokens,
	}
}

// Register validates the input, rejects taken emails, stores a bcrypt hash
// and issues a token for the new user.
func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (token string, user *types.User, err error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()
	defer func() { metrics.RecordRegister(ctx, err) }()

	l := s.logger.With(slog.String("method", "Register"))

	name = strings.TrimSpace(name)
	email = api.NormalizeEmail(email)
	switch {
	case name == "" || email == "" || password == "":
		return "", nil, types.NewValidationError("Please enter your name, email, and password")
	case !api.IsValidEmail(email):
		return "", nil, types.NewValidationError("Please enter a valid email")
	case api.PasswordTooShort(password):
		return "", nil, types.NewValidationError("Password must be at least 8 characters")
	case api.PasswordTooLong(password):
		return "", nil, types.NewValidationError("Password must be at most 72 bytes")
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		l.InfoContext(ctx, "Registration rejected, email already in use")
		return "", nil, fmt.Errorf("email %s: %w", email, types.ErrConflict)
	case err != nil && !errors.Is(err, types.ErrNotFound):
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return "", nil, fmt.Errorf("error checking existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), api.BcryptCost)
	if err != nil {
		span.RecordError(err)
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err = s.repo.CreateUser(ctx, &types.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return "", nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err = s.tokens.Issue(user.ID)
	if err != nil {
		span.RecordError(err)
		return "", nil, fmt.Errorf("error issuing token: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	span.SetStatus(codes.Ok, "user registered")
	l.InfoContext(ctx, "User registered", slog.String("userID", user.ID))
	return token, user, nil
}

// Login checks the credentials and issues a token. Unknown emails yield
// types.ErrNotRegistered, wrong passwords types.ErrInvalidCredentials.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (token string, user *types.User, err error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()
	defer func() { metrics.RecordLogin(ctx, err) }()

	l := s.logger.With(slog.String("method", "Login"))

	email = api.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, types.NewValidationError("Please fill in all required fields")
	}

	user, err = s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", nil, types.ErrNotRegistered
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return "", nil, fmt.Errorf("error fetching user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			l.InfoContext(ctx, "Login rejected, password mismatch", slog.String("userID", user.ID))
			return "", nil, types.ErrInvalidCredentials
		}
		span.RecordError(err)
		return "", nil, fmt.Errorf("error comparing password hash: %w", err)
	}

	token, err = s.tokens.Issue(user.ID)
	if err != nil {
		span.RecordError(err)
		return "", nil, fmt.Errorf("error issuing token: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	span.SetStatus(codes.Ok, "user logged in")
	l.InfoContext(ctx, "User logged in", slog.String("userID", user.ID))
	return token, user, nil
}
