package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-task-manager-api/internal/api"
	"github.com/FACorreiaa/go-task-manager-api/internal/api/auth"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Me(w http.ResponseWriter, r *http.Request)
	UpdateProfile(w http.ResponseWriter, r *http.Request)
	UpdatePassword(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

// NewHandlerImpl creates a new user HandlerImpl instance.
func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

func (h *HandlerImpl) userID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (string, bool) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		l.ErrorContext(r.Context(), "User ID not found in context", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authorized, token missing")
		return "", false
	}
	return userID, true
}

// Me godoc
// @Summary      Current user
// @Description  Returns the authenticated user.
// @Tags         User
// @Produce      json
// @Success      200 {object} types.UserResponse
// @Failure      400 {object} types.Response "User not found"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /api/v1/me [get]
func (h *HandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "Me"))

	userID, ok := h.userID(w, r, l)
	if !ok {
		return
	}

	user, err := h.userService.GetCurrentUser(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "User not found")
			return
		}
		api.InternalError(w, r, l, "Failed to get current user", err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.UserResponse{
		Success: true,
		User:    user.Public(),
	})
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Replaces the authenticated user's name and email.
// @Tags         User
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        profile body types.UpdateProfileParams true "Name and email"
// @Success      200 {object} types.UserResponse
// @Failure      400 {object} types.Response "Invalid input or user not found"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      409 {object} types.Response "Email already used by another account"
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /api/v1/profile [put]
func (h *HandlerImpl) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateProfile"))

	userID, ok := h.userID(w, r, l)
	if !ok {
		return
	}

	var params types.UpdateProfileParams
	if err := api.DecodeBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.userService.UpdateProfile(ctx, userID, params)
	if err != nil {
		var vErr *types.ValidationError
		switch {
		case errors.As(err, &vErr):
			api.ErrorResponse(w, r, http.StatusBadRequest, vErr.Message)
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Email already used by another account")
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusBadRequest, "User not found")
		default:
			api.InternalError(w, r, l, "Failed to update profile", err)
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.UserResponse{
		Success: true,
		User:    user.Public(),
	})
}

// UpdatePassword godoc
// @Summary      Change password
// @Description  Verifies the current password and stores the new one.
// @Tags         User
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        body body types.ChangePasswordRequest true "Current and new password"
// @Success      200 {object} types.Response
// @Failure      400 {object} types.Response "Invalid password, user not found or wrong current password"
// @Failure      401 {object} types.Response "Unauthorized"
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /api/v1/password [put]
func (h *HandlerImpl) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdatePassword"))

	userID, ok := h.userID(w, r, l)
	if !ok {
		return
	}

	var req types.ChangePasswordRequest
	if err := api.DecodeBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.userService.UpdatePassword(ctx, userID, req); err != nil {
		var vErr *types.ValidationError
		switch {
		case errors.As(err, &vErr):
			api.ErrorResponse(w, r, http.StatusBadRequest, vErr.Message)
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusBadRequest, "User not found")
		case errors.Is(err, types.ErrInvalidCredentials):
			api.ErrorResponse(w, r, http.StatusBadRequest, "Current password is incorrect")
		default:
			api.InternalError(w, r, l, "Failed to change password", err)
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Password changed successfully",
	})
}
