package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-market-api/internal/domain"
	jwtinfra "github.com/go-market-api/internal/infrastructure/jwt"
	"github.com/go-market-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Register(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) RegisterWithSession(ctx context.Context, req domain.CreateUserRequest) (*domain.Session, string, string, error) {
	args := m.Called(ctx, req)
	if s := args.Get(0); s != nil {
		return s.(*domain.Session), args.String(1), args.String(2), args.Error(3)
	}
	return nil, args.String(1), args.String(2), args.Error(3)
}

func (m *mockUserService) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	if us := args.Get(0); us != nil {
		return us.([]domain.User), args.String(1), args.Error(2)
	}
	return nil, args.String(1), args.Error(2)
}

func (m *mockUserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, userID, req)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, currentPassword, newPassword).Error(0)
}

func (m *mockUserService) BindLine(ctx context.Context, userID, lineUserID string) (*domain.User, error) {
	args := m.Called(ctx, userID, lineUserID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) UnbindLine(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserService) SetNotificationPreference(ctx context.Context, userID string, preference int) (*domain.User, error) {
	args := m.Called(ctx, userID, preference)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// userRouter mounts the handler on the routes used in production so that
// chi.URLParam resolves {id}.
func userRouter(h *UserHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/v1/users", h.Register)
	r.Get("/v1/users/{id}", h.Get)
	r.Put("/v1/users/{id}", h.Update)
	r.Put("/v1/users/{id}/line", h.BindLine)
	r.Delete("/v1/users/{id}/line", h.UnbindLine)
	r.Put("/v1/users/{id}/notification-preference", h.SetNotificationPreference)
	return r
}

func withClaims(r *http.Request, userID, role string) *http.Request {
	claims := &jwtinfra.Claims{UserID: userID, Role: role}
	return r.WithContext(context.WithValue(r.Context(), middleware.ClaimsKey, claims))
}

func marketUser() *domain.User {
	return &domain.User{
		UserID:                 "u1",
		Username:               "alice",
		Email:                  "alice@example.com",
		Role:                   domain.RoleUser,
		Nickname:               "小艾",
		District:               "大安區",
		NotificationPreference: domain.NotifyInstant,
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "RegisterWithSession", mock.Anything, mock.Anything)
}

func TestRegister_ValidationFailure(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	// password too short
	body, _ := json.Marshal(map[string]string{
		"username": "alice",
		"password": "short",
		"email":    "alice@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "RegisterWithSession", mock.Anything, mock.Anything)
}

func TestRegister_ReturnsAuthEnvelope(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	sess := &domain.Session{SessionID: "s1", User: marketUser()}
	svc.On("RegisterWithSession", mock.Anything, mock.Anything).Return(sess, "bearer-token", "refresh-token", nil)

	body, _ := json.Marshal(map[string]string{
		"username": "alice",
		"password": "supersecret",
		"email":    "alice@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	var env AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, "bearer-token", env.AccessToken)
	assert.Equal(t, "refresh-token", env.RefreshToken)
	assert.Equal(t, "s1", env.SessionID)
	require.NotNil(t, env.User)
	assert.Equal(t, "alice", env.User.Username)
}

func TestRegister_Conflict(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	svc.On("RegisterWithSession", mock.Anything, mock.Anything).
		Return(nil, "", "", fmt.Errorf("username already taken: %w", domain.ErrConflict))

	body, _ := json.Marshal(map[string]string{
		"username": "alice",
		"password": "supersecret",
		"email":    "alice@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBuffer(body))
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetUser_OwnerSeesFullProfile(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	svc.On("Get", mock.Anything, "u1").Return(marketUser(), nil)

	req := withClaims(httptest.NewRequest(http.MethodGet, "/v1/users/u1", nil), "u1", domain.RoleUser)
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got SafeUser
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, domain.NotifyInstant, got.NotificationPreference)
}

func TestGetUser_StrangerSeesPublicProfile(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	svc.On("Get", mock.Anything, "u1").Return(marketUser(), nil)

	req := withClaims(httptest.NewRequest(http.MethodGet, "/v1/users/u1", nil), "u2", domain.RoleUser)
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "alice", got["username"])
	_, hasEmail := got["email"]
	assert.False(t, hasEmail, "public profile must not expose the email")
}

func TestUpdateUser_ForbiddenForOtherUser(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	body, _ := json.Marshal(map[string]string{"nickname": "新暱稱"})
	req := withClaims(httptest.NewRequest(http.MethodPut, "/v1/users/u1", bytes.NewBuffer(body)), "u2", domain.RoleUser)
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_AdminMayEditAnyone(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	svc.On("Update", mock.Anything, "u1", mock.Anything).Return(marketUser(), nil)

	body, _ := json.Marshal(map[string]string{"nickname": "新暱稱"})
	req := withClaims(httptest.NewRequest(http.MethodPut, "/v1/users/u1", bytes.NewBuffer(body)), "admin-1", domain.RoleAdmin)
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestBindLine_MissingField(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	req := withClaims(httptest.NewRequest(http.MethodPut, "/v1/users/u1/line", bytes.NewBufferString(`{}`)), "u1", domain.RoleUser)
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "BindLine", mock.Anything, mock.Anything, mock.Anything)
}

func TestBindLine_ReportsBoundProfile(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	lineID := "U0047556f2e40dba2456887320ba7c76d"
	bound := marketUser()
	bound.LineUserID = &lineID
	svc.On("BindLine", mock.Anything, "u1", lineID).Return(bound, nil)

	body, _ := json.Marshal(map[string]string{"line_user_id": lineID})
	req := withClaims(httptest.NewRequest(http.MethodPut, "/v1/users/u1/line", bytes.NewBuffer(body)), "u1", domain.RoleUser)
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got SafeUser
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.True(t, got.LineBound)
}

func TestUnbindLine_ReportsUnboundProfile(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	svc.On("UnbindLine", mock.Anything, "u1").Return(marketUser(), nil)

	req := withClaims(httptest.NewRequest(http.MethodDelete, "/v1/users/u1/line", nil), "u1", domain.RoleUser)
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got SafeUser
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.False(t, got.LineBound)
}

func TestSetNotificationPreference_OutOfRange(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	svc.On("SetNotificationPreference", mock.Anything, "u1", 9).
		Return(nil, fmt.Errorf("preference out of range: %w", domain.ErrBadRequest))

	req := withClaims(
		httptest.NewRequest(http.MethodPut, "/v1/users/u1/notification-preference", bytes.NewBufferString(`{"preference":9}`)),
		"u1", domain.RoleUser)
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSetNotificationPreference_Disables(t *testing.T) {
	svc := new(mockUserService)
	h := NewUserHandler(svc)

	disabled := marketUser()
	disabled.NotificationPreference = domain.NotifyDisabled
	svc.On("SetNotificationPreference", mock.Anything, "u1", domain.NotifyDisabled).Return(disabled, nil)

	req := withClaims(
		httptest.NewRequest(http.MethodPut, "/v1/users/u1/notification-preference", bytes.NewBufferString(`{"preference":4}`)),
		"u1", domain.RoleUser)
	rr := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var got SafeUser
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, domain.NotifyDisabled, got.NotificationPreference)
}
