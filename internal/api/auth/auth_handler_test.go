package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

// MockAuthService is a mock implementation of the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (string, *types.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*types.User), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*types.User), args.Error(2)
}

func newTestHandler(svc AuthService) *HandlerImpl {
	return NewAuthHandlerImpl(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandlerRegister(t *testing.T) {
	user := &types.User{ID: "u1", Name: "Ana", Email: "ana@example.com", PasswordHash: "$2a$10$hash"}

	tests := []struct {
		name       string
		body       string
		setup      func(svc *MockAuthService)
		wantStatus int
		wantMsg    string
	}{
		{
			name: "created",
			body: `{"name":"Ana","email":"ana@example.com","password":"secret123"}`,
			setup: func(svc *MockAuthService) {
				svc.On("Register", mock.Anything, "Ana", "ana@example.com", "secret123").Return("tok", user, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "bad json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request payload",
		},
		{
			name: "validation",
			body: `{"name":"Ana","email":"ana@example.com","password":"short"}`,
			setup: func(svc *MockAuthService) {
				svc.On("Register", mock.Anything, "Ana", "ana@example.com", "short").
					Return("", nil, types.NewValidationError("Password must be at least 8 characters")).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Password must be at least 8 characters",
		},
		{
			name: "duplicate",
			body: `{"name":"Ana","email":"ana@example.com","password":"secret123"}`,
			setup: func(svc *MockAuthService) {
				svc.On("Register", mock.Anything, "Ana", "ana@example.com", "secret123").Return("", nil, types.ErrConflict).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "User already exists",
		},
		{
			name: "store failure",
			body: `{"name":"Ana","email":"ana@example.com","password":"secret123"}`,
			setup: func(svc *MockAuthService) {
				svc.On("Register", mock.Anything, "Ana", "ana@example.com", "secret123").Return("", nil, errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			if tt.setup != nil {
				tt.setup(svc)
			}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			newTestHandler(svc).Register(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.wantStatus == http.StatusCreated {
				var resp types.AuthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, "tok", resp.Token)
				assert.Equal(t, user.Public(), resp.User)
				assert.NotContains(t, w.Body.String(), "hash")
			} else {
				var resp types.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.False(t, resp.Success)
				assert.Equal(t, tt.wantMsg, resp.Message)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandlerLogin(t *testing.T) {
	user := &types.User{ID: "u1", Name: "Ana", Email: "ana@example.com"}

	tests := []struct {
		name       string
		setupErr   error
		wantStatus int
		wantMsg    string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"missing fields", types.NewValidationError("Please fill in all required fields"), http.StatusBadRequest, "Please fill in all required fields"},
		{"not registered", types.ErrNotRegistered, http.StatusBadRequest, "Please register yourself"},
		{"bad password", types.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
		{"store failure", errors.New("db down"), http.StatusInternalServerError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			if tt.setupErr == nil {
				svc.On("Login", mock.Anything, "ana@example.com", "secret123").Return("tok", user, nil).Once()
			} else {
				svc.On("Login", mock.Anything, "ana@example.com", "secret123").Return("", nil, tt.setupErr).Once()
			}

			body := `{"email":"ana@example.com","password":"secret123"}`
			req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewBufferString(body))
			w := httptest.NewRecorder()

			newTestHandler(svc).Login(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp types.AuthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, "tok", resp.Token)
				assert.Equal(t, "u1", resp.User.ID)
			} else {
				var resp types.Response
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantMsg, resp.Message)
			}
			svc.AssertExpectations(t)
		})
	}
}
