package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appcontext "github.com/rcampos/loanbook/internal/context"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleCustomersList_ScopedToAuthenticatedLender(t *testing.T) {
	mockCustomerRepo := new(MockCustomerRepo)

	lenderACustomers := []models.Customer{
		{ID: "customer-1", Name: "Juan Perez", NationalID: "12345678", UserID: "lender-a", CreatedAt: time.Now()},
		{ID: "customer-2", Name: "Ana Lopez", NationalID: "87654321", UserID: "lender-a", CreatedAt: time.Now()},
	}
	mockCustomerRepo.On("AllForLender", "lender-a").Return(lenderACustomers, nil)

	h := NewCustomerHandler(mockCustomerRepo, new(MockLoanRepo), newTestErrorHandler(t), nil, NewMockCache())

	r := authenticatedRequest(http.MethodGet, "/api/customers", nil, testLender())

	rr := httptest.NewRecorder()
	h.HandleCustomersList(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data []customerResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	require.Len(t, body.Data, 2)
	require.Equal(t, "Juan Perez", body.Data[0].Name)

	// The repository must only ever be asked for the authenticated lender's rows.
	mockCustomerRepo.AssertCalled(t, "AllForLender", "lender-a")
	mockCustomerRepo.AssertNotCalled(t, "AllForLender", "lender-b")
}

func TestHandleCustomerShow_IncludesLoans(t *testing.T) {
	mockCustomerRepo := new(MockCustomerRepo)
	mockLoanRepo := new(MockLoanRepo)

	customer := &models.Customer{
		ID:         "customer-1",
		Name:       "Juan Perez",
		NationalID: "12345678",
		UserID:     "lender-a",
		CreatedAt:  time.Now(),
	}
	loans := []models.Loan{
		{ID: "loan-1", CustomerID: "customer-1", OriginalAmount: 1000, CurrentBalance: 1020, InterestRate: 1, Status: models.LoanStatusActive, StartDate: time.Now(), LastInterestUpdate: time.Now()},
	}

	mockCustomerRepo.On("GetOneForLender", "customer-1", "lender-a").Return(customer, true, nil)
	mockLoanRepo.On("AllForCustomer", "customer-1").Return(loans, nil)

	h := NewCustomerHandler(mockCustomerRepo, mockLoanRepo, newTestErrorHandler(t), nil, NewMockCache())

	r := authenticatedRequest(http.MethodGet, "/api/customers/customer-1", nil, testLender())
	r.SetPathValue("id", "customer-1")

	rr := httptest.NewRecorder()
	h.HandleCustomerShow(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data struct {
			Customer customerResponse `json:"customer"`
			Loans    []loanResponse   `json:"loans"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	require.Equal(t, "customer-1", body.Data.Customer.ID)
	require.Len(t, body.Data.Loans, 1)
	require.InDelta(t, 1020.0, body.Data.Loans[0].CurrentBalance, 1e-9)
}

func TestHandleCustomerShow_UnownedCustomerReadsAsNotFound(t *testing.T) {
	mockCustomerRepo := new(MockCustomerRepo)

	mockCustomerRepo.On("GetOneForLender", "customer-of-lender-b", "lender-a").Return(nil, false, nil)

	h := NewCustomerHandler(mockCustomerRepo, new(MockLoanRepo), newTestErrorHandler(t), nil, NewMockCache())

	r := authenticatedRequest(http.MethodGet, "/api/customers/customer-of-lender-b", nil, testLender())
	r.SetPathValue("id", "customer-of-lender-b")

	rr := httptest.NewRecorder()
	h.HandleCustomerShow(rr, r)

	require.Equal(t, http.StatusNotFound, rr.Code)
}

func multipartCustomerRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/customers", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	return appcontext.ContextSetAuthenticatedUser(r, testLender())
}

func TestHandleCustomersCreate_Success(t *testing.T) {
	mockCustomerRepo := new(MockCustomerRepo)
	mockCache := NewMockCache()

	var inserted *models.Customer
	mockCustomerRepo.On("CheckIfNationalIDExist", "12345678").Return(false, nil)
	mockCustomerRepo.On("Insert", mock.AnythingOfType("*models.Customer")).Run(func(args mock.Arguments) {
		inserted = args.Get(0).(*models.Customer)
	}).Return("customer-9", nil)

	h := NewCustomerHandler(mockCustomerRepo, new(MockLoanRepo), newTestErrorHandler(t), nil, mockCache)

	r := multipartCustomerRequest(t, map[string]string{
		"name":        "Juan Perez",
		"national_id": "12345678",
		"phone":       "555-0101",
	})

	rr := httptest.NewRecorder()
	h.HandleCustomersCreate(rr, r)

	require.Equal(t, http.StatusCreated, rr.Code)

	require.NotNil(t, inserted)
	require.Equal(t, "lender-a", inserted.UserID)
	require.Equal(t, sql.NullString{String: "555-0101", Valid: true}, inserted.Phone)

	require.Equal(t, 1, mockCache.Deletes)
}

func TestHandleCustomersCreate_DuplicateNationalID(t *testing.T) {
	mockCustomerRepo := new(MockCustomerRepo)

	mockCustomerRepo.On("CheckIfNationalIDExist", "duplicate-id").Return(true, nil)

	h := NewCustomerHandler(mockCustomerRepo, new(MockLoanRepo), newTestErrorHandler(t), nil, NewMockCache())

	r := multipartCustomerRequest(t, map[string]string{
		"name":        "Juan Perez",
		"national_id": "duplicate-id",
	})

	rr := httptest.NewRecorder()
	h.HandleCustomersCreate(rr, r)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockCustomerRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestHandleCustomersCreate_MissingFields(t *testing.T) {
	mockCustomerRepo := new(MockCustomerRepo)

	h := NewCustomerHandler(mockCustomerRepo, new(MockLoanRepo), newTestErrorHandler(t), nil, NewMockCache())

	r := multipartCustomerRequest(t, map[string]string{"phone": "555-0101"})

	rr := httptest.NewRecorder()
	h.HandleCustomersCreate(rr, r)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockCustomerRepo.AssertNotCalled(t, "Insert", mock.Anything)
}
