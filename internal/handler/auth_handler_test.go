package handlers

import (
	"blogCMS/internal/apperrors"
	"blogCMS/internal/models"
	"blogCMS/internal/repository"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler_Success(t *testing.T) {
	th := newTestHandlers()
	user := &models.User{UserID: "user-123", Email: "test@example.com", Name: "Test", Role: models.RoleAuthor}

	th.auth.On("Register", mock.Anything, repository.CreateUserRequest{
		Email:      "test@example.com",
		Password:   "password123",
		Name:       "Test",
		InviteCode: "abc",
	}).Return(user, nil)
	th.auth.On("Login", mock.Anything, "test@example.com", "password123").
		Return(user, "access-token-123", "refresh-token-123", nil)

	rr := httptest.NewRecorder()
	th.Register(rr, newRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":      "test@example.com",
		"password":   "password123",
		"name":       "Test",
		"inviteCode": "abc",
	}, models.Actor{}, nil))

	assert.Equal(t, http.StatusCreated, rr.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "access-token-123", response["accessToken"])
	assert.Equal(t, "refresh-token-123", response["refreshToken"])

	userData, ok := response["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user-123", userData["id"])
	assert.Equal(t, "author", userData["role"])
	assert.NotContains(t, userData, "passwordHash")

	th.auth.AssertExpectations(t)
}

func TestRegisterHandler_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"invalid email", map[string]string{"email": "invalid-email", "password": "password123", "name": "T"}, "email"},
		{"short password", map[string]string{"email": "t@example.com", "password": "123", "name": "T"}, "password"},
		{"missing name", map[string]string{"email": "t@example.com", "password": "password123"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := newTestHandlers()
			rr := httptest.NewRecorder()

			th.Register(rr, newRequest(t, http.MethodPost, "/api/auth/register", tt.body, models.Actor{}, nil))

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			resp := decodeError(t, rr)
			require.Len(t, resp.Details, 1)
			assert.Equal(t, tt.field, resp.Details[0].Field)
			th.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterHandler_EmailAlreadyExists(t *testing.T) {
	th := newTestHandlers()
	th.auth.On("Register", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.KindAlreadyRegistered, "User with this email already exists"))

	rr := httptest.NewRecorder()
	th.Register(rr, newRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "t@example.com", "password": "password123", "name": "T",
	}, models.Actor{}, nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apperrors.KindAlreadyRegistered, decodeError(t, rr).Code)
	th.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterHandler_InvalidJSON(t *testing.T) {
	th := newTestHandlers()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	rr := httptest.NewRecorder()

	th.Register(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid request body", decodeError(t, rr).Error)
}

func TestLoginHandler(t *testing.T) {
	th := newTestHandlers()
	th.auth.On("Login", mock.Anything, "a@example.com", "good").
		Return(&models.User{UserID: "u-1"}, "access", "refresh", nil)
	th.auth.On("Login", mock.Anything, "a@example.com", "bad").
		Return(nil, "", "", apperrors.New(apperrors.KindUnauthenticated, "Invalid email or password"))

	rr := httptest.NewRecorder()
	th.Login(rr, newRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@example.com", "password": "good"}, models.Actor{}, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	th.Login(rr, newRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "a@example.com", "password": "bad"}, models.Actor{}, nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid email or password", decodeError(t, rr).Error)
}

func TestRefreshTokenHandler(t *testing.T) {
	th := newTestHandlers()
	th.auth.On("RefreshTokens", mock.Anything, "stale").
		Return(nil, "", "", apperrors.New(apperrors.KindUnauthenticated, "Refresh token expired or invalid"))

	rr := httptest.NewRecorder()
	th.RefreshToken(rr, newRequest(t, http.MethodPost, "/api/auth/refresh-token",
		map[string]string{"refreshToken": "stale"}, models.Actor{}, nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	th.RefreshToken(rr, newRequest(t, http.MethodPost, "/api/auth/refresh-token",
		map[string]string{}, models.Actor{}, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
