package auth

import (
	"context"

	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

// AuthRepo is the slice of the credential store that registration, login and
// the authentication middleware need. The user repositories implement it.
type AuthRepo interface {
	// GetUserByID returns types.ErrNotFound if no user has that id.
	GetUserByID(ctx context.Context, userID string) (*types.User, error)
	// GetUserByEmail returns types.ErrNotFound if no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	// CreateUser stores a new user and returns it with its id set.
	// Returns types.ErrConflict if the email is already taken.
	CreateUser(ctx context.Context, user *types.User) (*types.User, error)
}
