package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rcampos/loanbook/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleUsersCreate_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepo)

	var inserted *models.User
	mockUserRepo.On("GetByUsername", "pedro").Return(nil, false, nil)
	mockUserRepo.On("Insert", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		inserted = args.Get(0).(*models.User)
	}).Return("user-9", nil)

	h := NewUserHandler(mockUserRepo, new(MockCustomerRepo), newTestErrorHandler(t))

	body, err := json.Marshal(map[string]any{
		"username": "pedro",
		"password": testPassword,
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.HandleUsersCreate(rr, httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)

	require.NotNil(t, inserted)
	require.Equal(t, models.UserRoleLender, inserted.Role)
	require.Equal(t, models.UserStatusActive, inserted.Status)
	require.Equal(t, 10, inserted.DueDay)
	require.NotEqual(t, testPassword, inserted.HashedPassword)
}

func TestHandleUsersCreate_DuplicateUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepo)

	existing := &models.User{ID: "user-1", Username: "pedro"}
	mockUserRepo.On("GetByUsername", "pedro").Return(existing, true, nil)

	h := NewUserHandler(mockUserRepo, new(MockCustomerRepo), newTestErrorHandler(t))

	body, err := json.Marshal(map[string]any{
		"username": "pedro",
		"password": testPassword,
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.HandleUsersCreate(rr, httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body)))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockUserRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestHandleUsersCreate_WeakPassword(t *testing.T) {
	mockUserRepo := new(MockUserRepo)

	h := NewUserHandler(mockUserRepo, new(MockCustomerRepo), newTestErrorHandler(t))

	body, err := json.Marshal(map[string]any{
		"username": "pedro",
		"password": "abc",
	})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.HandleUsersCreate(rr, httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body)))

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockUserRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestHandleUserStatusUpdate(t *testing.T) {
	mockUserRepo := new(MockUserRepo)

	existing := &models.User{ID: "user-1", Username: "pedro", Status: models.UserStatusActive}
	mockUserRepo.On("GetOne", "user-1").Return(existing, true, nil)
	mockUserRepo.On("UpdateStatus", "user-1", models.UserStatusInactive).Return(nil)

	h := NewUserHandler(mockUserRepo, new(MockCustomerRepo), newTestErrorHandler(t))

	body, err := json.Marshal(map[string]string{"status": models.UserStatusInactive})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPatch, "/api/users/user-1/status", bytes.NewReader(body))
	r.SetPathValue("id", "user-1")

	rr := httptest.NewRecorder()
	h.HandleUserStatusUpdate(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	mockUserRepo.AssertCalled(t, "UpdateStatus", "user-1", models.UserStatusInactive)
}

func TestHandleUserStatusUpdate_UnknownUser(t *testing.T) {
	mockUserRepo := new(MockUserRepo)

	mockUserRepo.On("GetOne", "ghost").Return(nil, false, nil)

	h := NewUserHandler(mockUserRepo, new(MockCustomerRepo), newTestErrorHandler(t))

	body, err := json.Marshal(map[string]string{"status": models.UserStatusInactive})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPatch, "/api/users/ghost/status", bytes.NewReader(body))
	r.SetPathValue("id", "ghost")

	rr := httptest.NewRecorder()
	h.HandleUserStatusUpdate(rr, r)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleUserDelete_RefusedWhileOwningCustomers(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockCustomerRepo := new(MockCustomerRepo)

	existing := &models.User{ID: "user-1", Username: "pedro"}
	mockUserRepo.On("GetOne", "user-1").Return(existing, true, nil)
	mockCustomerRepo.On("CountForLender", "user-1").Return(3, nil)

	h := NewUserHandler(mockUserRepo, mockCustomerRepo, newTestErrorHandler(t))

	r := httptest.NewRequest(http.MethodDelete, "/api/users/user-1", nil)
	r.SetPathValue("id", "user-1")

	rr := httptest.NewRecorder()
	h.HandleUserDelete(rr, r)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockUserRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestHandleUserDelete_EmptyBook(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockCustomerRepo := new(MockCustomerRepo)

	existing := &models.User{ID: "user-1", Username: "pedro"}
	mockUserRepo.On("GetOne", "user-1").Return(existing, true, nil)
	mockUserRepo.On("Delete", "user-1").Return(nil)
	mockCustomerRepo.On("CountForLender", "user-1").Return(0, nil)

	h := NewUserHandler(mockUserRepo, mockCustomerRepo, newTestErrorHandler(t))

	r := httptest.NewRequest(http.MethodDelete, "/api/users/user-1", nil)
	r.SetPathValue("id", "user-1")

	rr := httptest.NewRecorder()
	h.HandleUserDelete(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	mockUserRepo.AssertCalled(t, "Delete", "user-1")
}
