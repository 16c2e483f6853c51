package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/cradoe/gopass"
	"github.com/rcampos/loanbook/internal/config"
	"github.com/rcampos/loanbook/internal/helper"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPassword = "S3cure!passw0rd"

func newTestConfig() *config.Config {
	cfg := &config.Config{
		BaseURL:  "http://localhost",
		HttpPort: 4444,
	}
	cfg.Jwt.SecretKey = "test_secret"
	return cfg
}

func newTestHelper(wg *sync.WaitGroup) *helper.HelperRepository {
	baseURL := "http://localhost"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return helper.New(&baseURL, wg, logger)
}

func loginRequest(t *testing.T, username, password string) *http.Request {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	require.NoError(t, err)

	return httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
}

func TestHandleAuthLogin_ValidCredentials(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockActivityRepo := new(MockActivityRepo)

	var wg sync.WaitGroup

	hashedPassword, err := gopass.Hash(testPassword)
	require.NoError(t, err)

	testUser := &models.User{
		ID:             "user-123",
		Username:       "maria",
		HashedPassword: hashedPassword,
		Role:           models.UserRoleLender,
		Status:         models.UserStatusActive,
		DueDay:         10,
	}

	mockUserRepo.On("GetByUsername", "maria").Return(testUser, true, nil)
	mockActivityRepo.On("Insert", mock.Anything).Return(&models.ActivityLog{}, nil)

	h := NewAuthHandler(mockUserRepo, mockActivityRepo, newTestErrorHandler(t), newTestHelper(&wg), newTestConfig())

	rr := httptest.NewRecorder()
	h.HandleAuthLogin(rr, loginRequest(t, "maria", testPassword))

	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			User struct {
				ID       string `json:"id"`
				Username string `json:"username"`
				Role     string `json:"role"`
			} `json:"user"`
			AuthToken   string `json:"auth_token"`
			TokenExpiry string `json:"token_expiry"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	require.True(t, body.Success)
	require.Equal(t, "user-123", body.Data.User.ID)
	require.Equal(t, models.UserRoleLender, body.Data.User.Role)
	require.NotEmpty(t, body.Data.AuthToken)

	mockUserRepo.AssertExpectations(t)
}

func TestHandleAuthLogin_WrongPassword(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockActivityRepo := new(MockActivityRepo)

	var wg sync.WaitGroup

	hashedPassword, err := gopass.Hash(testPassword)
	require.NoError(t, err)

	testUser := &models.User{
		ID:             "user-123",
		Username:       "maria",
		HashedPassword: hashedPassword,
		Status:         models.UserStatusActive,
	}

	mockUserRepo.On("GetByUsername", "maria").Return(testUser, true, nil)
	mockActivityRepo.On("Insert", mock.Anything).Return(&models.ActivityLog{}, nil)

	h := NewAuthHandler(mockUserRepo, mockActivityRepo, newTestErrorHandler(t), newTestHelper(&wg), newTestConfig())

	rr := httptest.NewRecorder()
	h.HandleAuthLogin(rr, loginRequest(t, "maria", "not-the-password"))

	wg.Wait()

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	mockActivityRepo.AssertCalled(t, "Insert", mock.Anything)
}

func TestHandleAuthLogin_UnknownUser(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockActivityRepo := new(MockActivityRepo)

	var wg sync.WaitGroup

	mockUserRepo.On("GetByUsername", "ghost").Return(nil, false, nil)

	h := NewAuthHandler(mockUserRepo, mockActivityRepo, newTestErrorHandler(t), newTestHelper(&wg), newTestConfig())

	rr := httptest.NewRecorder()
	h.HandleAuthLogin(rr, loginRequest(t, "ghost", testPassword))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandleAuthLogin_InactiveAccount(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockActivityRepo := new(MockActivityRepo)

	var wg sync.WaitGroup

	hashedPassword, err := gopass.Hash(testPassword)
	require.NoError(t, err)

	testUser := &models.User{
		ID:             "user-123",
		Username:       "maria",
		HashedPassword: hashedPassword,
		Status:         models.UserStatusInactive,
	}

	mockUserRepo.On("GetByUsername", "maria").Return(testUser, true, nil)

	h := NewAuthHandler(mockUserRepo, mockActivityRepo, newTestErrorHandler(t), newTestHelper(&wg), newTestConfig())

	rr := httptest.NewRecorder()
	h.HandleAuthLogin(rr, loginRequest(t, "maria", testPassword))

	wg.Wait()

	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestHandleAuthLogin_MissingFields(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockActivityRepo := new(MockActivityRepo)

	var wg sync.WaitGroup

	h := NewAuthHandler(mockUserRepo, mockActivityRepo, newTestErrorHandler(t), newTestHelper(&wg), newTestConfig())

	rr := httptest.NewRecorder()
	h.HandleAuthLogin(rr, loginRequest(t, "", ""))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockUserRepo.AssertNotCalled(t, "GetByUsername", mock.Anything)
}
