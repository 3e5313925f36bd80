package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpadapter "goaccounts/internal/accounts/adapters/http"
	"goaccounts/internal/accounts/app/dto"
	"goaccounts/internal/accounts/domain/entities"
	"goaccounts/internal/accounts/domain/services"
)

const (
	testAccountID = "11111111-2222-3333-4444-555555555555"
	validToken    = "valid-access-token"
)

type mockAccountUseCase struct {
	mock.Mock
}

func (m *mockAccountUseCase) Register(ctx context.Context, email, password, username, firstName, lastName string) (*entities.Account, error) {
	args := m.Called(ctx, email, password, username, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *mockAccountUseCase) CreateSuperuser(ctx context.Context, email, password string) (*entities.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

type mockAuthUseCase struct {
	mock.Mock
}

func (m *mockAuthUseCase) Login(ctx context.Context, email, password string) (*services.AccessToken, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AccessToken), args.Error(1)
}

type mockProfileUseCase struct {
	mock.Mock
}

func (m *mockProfileUseCase) GetProfile(ctx context.Context, accountID string) (*dto.ProfileView, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProfileView), args.Error(1)
}

func (m *mockProfileUseCase) UpdateProfile(ctx context.Context, accountID string, patch *dto.ProfileUpdate) (*dto.ProfileView, error) {
	args := m.Called(ctx, accountID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProfileView), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateAccessToken(ctx context.Context, accountID string) (string, time.Time, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokenService) ValidateAccessToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type testServer struct {
	app        *fiber.App
	accountSvc *mockAccountUseCase
	authSvc    *mockAuthUseCase
	profileSvc *mockProfileUseCase
	tokenSvc   *mockTokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	srv := &testServer{
		app:        fiber.New(),
		accountSvc: new(mockAccountUseCase),
		authSvc:    new(mockAuthUseCase),
		profileSvc: new(mockProfileUseCase),
		tokenSvc:   new(mockTokenService),
	}
	httpadapter.SetupRouter(srv.app, srv.accountSvc, srv.authSvc, srv.profileSvc, srv.tokenSvc)

	return srv
}

func (s *testServer) allowValidToken() {
	s.tokenSvc.On("ValidateAccessToken", mock.Anything, validToken).Return(testAccountID, nil)
}

func jsonRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("Успешная регистрация возвращает 201 без пароля", func(t *testing.T) {
		srv := newTestServer(t)
		srv.accountSvc.On("Register", mock.Anything, "test@example.com", "password1234", "tester", "Test", "User").
			Return(&entities.Account{
				ID:        testAccountID,
				Email:     "test@example.com",
				Username:  "tester",
				FirstName: "Test",
				LastName:  "User",
				IsActive:  true,
			}, nil)

		resp, err := srv.app.Test(jsonRequest(http.MethodPost, "/create",
			`{"email":"test@example.com","password":"password1234","username":"tester","first_name":"Test","last_name":"User"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, testAccountID, body["id"])
		assert.Equal(t, "test@example.com", body["email"])
		assert.Equal(t, "tester", body["username"])
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "password_hash")

		srv.accountSvc.AssertExpectations(t)
	})

	t.Run("Отсутствующий email дает 400", func(t *testing.T) {
		srv := newTestServer(t)

		resp, err := srv.app.Test(jsonRequest(http.MethodPost, "/create", `{"password":"password1234"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "invalid_request", body["kind"])

		srv.accountSvc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Отсутствующий пароль дает 400", func(t *testing.T) {
		srv := newTestServer(t)

		resp, err := srv.app.Test(jsonRequest(http.MethodPost, "/create", `{"email":"test@example.com"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Некорректный email дает 400 с видом ошибки", func(t *testing.T) {
		srv := newTestServer(t)
		srv.accountSvc.On("Register", mock.Anything, "test@googlecom", "password1234", "", "", "").
			Return(nil, entities.ErrInvalidEmail)

		resp, err := srv.app.Test(jsonRequest(http.MethodPost, "/create",
			`{"email":"test@googlecom","password":"password1234"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "invalid_email", body["kind"])
	})

	t.Run("Короткий пароль дает 400 с видом ошибки", func(t *testing.T) {
		srv := newTestServer(t)
		srv.accountSvc.On("Register", mock.Anything, "test@example.com", "short", "", "", "").
			Return(nil, entities.ErrPasswordTooShort)

		resp, err := srv.app.Test(jsonRequest(http.MethodPost, "/create",
			`{"email":"test@example.com","password":"short"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "password_too_short", body["kind"])
	})

	t.Run("Занятый email дает 400 с видом ошибки", func(t *testing.T) {
		srv := newTestServer(t)
		srv.accountSvc.On("Register", mock.Anything, "taken@example.com", "password1234", "", "", "").
			Return(nil, services.ErrEmailAlreadyExists)

		resp, err := srv.app.Test(jsonRequest(http.MethodPost, "/create",
			`{"email":"taken@example.com","password":"password1234"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "email_already_exists", body["kind"])
	})

	t.Run("Внутренняя ошибка не раскрывается наружу", func(t *testing.T) {
		srv := newTestServer(t)
		srv.accountSvc.On("Register", mock.Anything, "test@example.com", "password1234", "", "", "").
			Return(nil, errors.New("pq: connection refused"))

		resp, err := srv.app.Test(jsonRequest(http.MethodPost, "/create",
			`{"email":"test@example.com","password":"password1234"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "internal_error", body["kind"])
		assert.NotContains(t, body["error"], "connection refused")
	})
}

func TestTokenEndpoint(t *testing.T) {
	t.Run("Успешный вход возвращает токен доступа", func(t *testing.T) {
		srv := newTestServer(t)
		srv.authSvc.On("Login", mock.Anything, "test@example.com", "password1234").
			Return(&services.AccessToken{
				AccountID: testAccountID,
				Token:     "issued-token",
				ExpiresAt: time.Now().Add(15 * time.Minute),
			}, nil)

		resp, err := srv.app.Test(jsonRequest(http.MethodPost, "/token",
			`{"email":"test@example.com","password":"password1234"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "issued-token", body["access"])

		srv.authSvc.AssertExpectations(t)
	})

	t.Run("Неверные учетные данные и отсутствующие поля дают одинаковый статус", func(t *testing.T) {
		srv := newTestServer(t)
		srv.authSvc.On("Login", mock.Anything, "test@example.com", "wrong-password").
			Return(nil, services.ErrInvalidCredentials)

		wrongResp, err := srv.app.Test(jsonRequest(http.MethodPost, "/token",
			`{"email":"test@example.com","password":"wrong-password"}`))
		require.NoError(t, err)
		missingResp, err := srv.app.Test(jsonRequest(http.MethodPost, "/token",
			`{"email":"test@example.com"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, wrongResp.StatusCode)
		assert.Equal(t, wrongResp.StatusCode, missingResp.StatusCode)

		body := decodeBody(t, wrongResp)
		assert.Equal(t, "invalid_credentials", body["kind"])
	})

	t.Run("Несуществующая учетная запись неотличима от неверного пароля", func(t *testing.T) {
		srv := newTestServer(t)
		srv.authSvc.On("Login", mock.Anything, "missing@example.com", "password1234").
			Return(nil, services.ErrInvalidCredentials)
		srv.authSvc.On("Login", mock.Anything, "present@example.com", "wrong-password").
			Return(nil, services.ErrInvalidCredentials)

		missingResp, err := srv.app.Test(jsonRequest(http.MethodPost, "/token",
			`{"email":"missing@example.com","password":"password1234"}`))
		require.NoError(t, err)
		wrongResp, err := srv.app.Test(jsonRequest(http.MethodPost, "/token",
			`{"email":"present@example.com","password":"wrong-password"}`))
		require.NoError(t, err)

		assert.Equal(t, missingResp.StatusCode, wrongResp.StatusCode)
		assert.Equal(t, decodeBody(t, missingResp), decodeBody(t, wrongResp))
	})
}

func TestProfileEndpointAuth(t *testing.T) {
	t.Run("Запрос без заголовка Authorization дает 401", func(t *testing.T) {
		srv := newTestServer(t)

		resp, err := srv.app.Test(jsonRequest(http.MethodGet, "/profile", ""))
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "unauthenticated", body["kind"])
	})

	t.Run("Неверная схема авторизации дает 401", func(t *testing.T) {
		srv := newTestServer(t)

		req := jsonRequest(http.MethodGet, "/profile", "")
		req.Header.Set("Authorization", "Token some-token")
		resp, err := srv.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Недействительный токен дает 401", func(t *testing.T) {
		srv := newTestServer(t)
		srv.tokenSvc.On("ValidateAccessToken", mock.Anything, "bad-token").
			Return("", services.ErrInvalidJWTToken)

		req := jsonRequest(http.MethodGet, "/profile", "")
		req.Header.Set("Authorization", "Bearer bad-token")
		resp, err := srv.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		srv.profileSvc.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	})

	t.Run("Просроченный токен дает 401", func(t *testing.T) {
		srv := newTestServer(t)
		srv.tokenSvc.On("ValidateAccessToken", mock.Anything, "expired-token").
			Return("", services.ErrExpiredJWTToken)

		req := jsonRequest(http.MethodGet, "/profile", "")
		req.Header.Set("Authorization", "Bearer expired-token")
		resp, err := srv.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestGetProfileEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.allowValidToken()
	srv.profileSvc.On("GetProfile", mock.Anything, testAccountID).
		Return(&dto.ProfileView{
			Email:     "test@example.com",
			Username:  "tester",
			FirstName: "Test",
			LastName:  "User",
		}, nil)

	req := jsonRequest(http.MethodGet, "/profile", "")
	req.Header.Set("Authorization", "Bearer "+validToken)
	resp, err := srv.app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)

	// Тело содержит ровно видимые владельцу поля.
	assert.Len(t, body, 4)
	assert.Equal(t, "test@example.com", body["email"])
	assert.Equal(t, "tester", body["username"])
	assert.Equal(t, "Test", body["first_name"])
	assert.Equal(t, "User", body["last_name"])

	srv.profileSvc.AssertExpectations(t)
}

func TestUpdateProfileEndpoint(t *testing.T) {
	t.Run("Частичное обновление передает только присланные поля", func(t *testing.T) {
		srv := newTestServer(t)
		srv.allowValidToken()
		srv.profileSvc.On("UpdateProfile", mock.Anything, testAccountID,
			mock.MatchedBy(func(patch *dto.ProfileUpdate) bool {
				return patch.FirstName != nil && *patch.FirstName == "Updated" &&
					patch.Email == nil && patch.Password == nil &&
					patch.Username == nil && patch.LastName == nil
			})).
			Return(&dto.ProfileView{
				Email:     "test@example.com",
				Username:  "tester",
				FirstName: "Updated",
				LastName:  "User",
			}, nil)

		req := jsonRequest(http.MethodPatch, "/profile", `{"first_name":"Updated"}`)
		req.Header.Set("Authorization", "Bearer "+validToken)
		resp, err := srv.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "Updated", body["first_name"])

		srv.profileSvc.AssertExpectations(t)
	})

	t.Run("Некорректное поле в обновлении дает 400", func(t *testing.T) {
		srv := newTestServer(t)
		srv.allowValidToken()
		srv.profileSvc.On("UpdateProfile", mock.Anything, testAccountID, mock.Anything).
			Return(nil, entities.ErrInvalidEmail)

		req := jsonRequest(http.MethodPatch, "/profile", `{"email":"broken"}`)
		req.Header.Set("Authorization", "Bearer "+validToken)
		resp, err := srv.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "invalid_email", body["kind"])
	})

	t.Run("Смена email на занятый дает 400", func(t *testing.T) {
		srv := newTestServer(t)
		srv.allowValidToken()
		srv.profileSvc.On("UpdateProfile", mock.Anything, testAccountID, mock.Anything).
			Return(nil, services.ErrEmailAlreadyExists)

		req := jsonRequest(http.MethodPatch, "/profile", `{"email":"taken@example.com"}`)
		req.Header.Set("Authorization", "Bearer "+validToken)
		resp, err := srv.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestProfileMethodNotAllowed(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			srv := newTestServer(t)
			srv.allowValidToken()

			req := jsonRequest(method, "/profile", `{}`)
			req.Header.Set("Authorization", "Bearer "+validToken)
			resp, err := srv.app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, "method_not_allowed", body["kind"])
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.app.Test(jsonRequest(http.MethodGet, "/unknown", ""))
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
