package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-task-manager-api/internal/api"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandlerImpl(authService AuthService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Register godoc
// @Summary      Register
// @Description  Creates an account and returns a token for it.
// @Tags         Auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body body types.RegisterRequest true "Name, email and password"
// @Success      201 {object} types.AuthResponse
// @Failure      400 {object} types.Response "Invalid input or user already exists"
// @Failure      500 {object} types.Response
// @Router       /api/v1/register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, user, err := h.authService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		var vErr *types.ValidationError
		switch {
		case errors.As(err, &vErr):
			api.ErrorResponse(w, r, http.StatusBadRequest, vErr.Message)
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusBadRequest, "User already exists")
		default:
			api.InternalError(w, r, l, "Registration failed", err)
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, types.AuthResponse{
		Success: true,
		Token:   token,
		User:    user.Public(),
	})
}

// Login godoc
// @Summary      Login
// @Description  Exchanges email and password for a token.
// @Tags         Auth
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body body types.LoginRequest true "Credentials"
// @Success      200 {object} types.AuthResponse
// @Failure      400 {object} types.Response "Missing fields, unknown email or invalid credentials"
// @Failure      500 {object} types.Response
// @Router       /api/v1/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Login"))

	var req types.LoginRequest
	if err := api.DecodeBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, user, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		var vErr *types.ValidationError
		switch {
		case errors.As(err, &vErr):
			api.ErrorResponse(w, r, http.StatusBadRequest, vErr.Message)
		case errors.Is(err, types.ErrNotRegistered):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Please register yourself")
		case errors.Is(err, types.ErrInvalidCredentials):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid credentials")
		default:
			api.InternalError(w, r, l, "Login failed", err)
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.AuthResponse{
		Success: true,
		Token:   token,
		User:    user.Public(),
	})
}
