package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/FACorreiaa/go-task-manager-api/app/observability/metrics"
	"github.com/FACorreiaa/go-task-manager-api/internal/api"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

type contextKey string

const UserIDKey contextKey = "userID"

const bearerPrefix = "Bearer "

// UserLookup resolves the user a token points at.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID string) (*types.User, error)
}

// Authenticate requires "Authorization: Bearer <token>", verifies the token,
// checks the user still exists and stores its id in the request context.
func Authenticate(logger *slog.Logger, tokens TokenService, users UserLookup) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				l.WarnContext(ctx, "Missing or malformed Authorization header")
				metrics.RecordAuthRejection(ctx, "token_missing")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authorized, token missing")
				return
			}

			// The token runs up to the next space; an empty one fails verification.
			tokenString, _, _ := strings.Cut(strings.TrimPrefix(authHeader, bearerPrefix), " ")
			userID, err := tokens.Verify(tokenString)
			if err != nil {
				l.WarnContext(ctx, "Token verification failed", slog.Any("error", err))
				metrics.RecordAuthRejection(ctx, "token_invalid")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Token invalid")
				return
			}

			user, err := users.GetUserByID(ctx, userID)
			if err != nil {
				if errors.Is(err, types.ErrNotFound) {
					l.WarnContext(ctx, "Token refers to unknown user", slog.String("userID", userID))
					metrics.RecordAuthRejection(ctx, "user_not_found")
					api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
					return
				}
				api.InternalError(w, r, l, "Failed to load user for token", err)
				return
			}

			l.DebugContext(ctx, "Authentication successful", slog.String("userID", user.ID))
			next.ServeHTTP(w, r.WithContext(WithUserID(ctx, user.ID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// RequireUserID returns types.ErrUnauthenticated when the request did not
// pass through Authenticate.
func RequireUserID(ctx context.Context) (string, error) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return "", types.ErrUnauthenticated
	}
	return userID, nil
}
