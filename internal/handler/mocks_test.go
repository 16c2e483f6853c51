package handler

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/rcampos/loanbook/internal/cache"
	"github.com/rcampos/loanbook/internal/errHandler"
	"github.com/rcampos/loanbook/internal/interest"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/rcampos/loanbook/internal/repository"
	"github.com/stretchr/testify/mock"
)

// newTestErrorHandler builds an error handler that logs nowhere and sends no
// notification emails.
func newTestErrorHandler(t *testing.T) *errHandler.ErrorHandler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return errHandler.New("", nil, logger, nil)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Insert(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepo) GetOne(id string) (*models.User, bool, error) {
	args := m.Called(id)

	var user *models.User
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetByUsername(username string) (*models.User, bool, error) {
	args := m.Called(username)

	var user *models.User
	if args.Get(0) != nil {
		user = args.Get(0).(*models.User)
	}
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) All() ([]models.User, error) {
	args := m.Called()
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepo) UpdateStatus(id, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockUserRepo) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Insert(log *models.ActivityLog) (*models.ActivityLog, error) {
	args := m.Called(log)
	return args.Get(0).(*models.ActivityLog), args.Error(1)
}

type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Insert(customer *models.Customer) (string, error) {
	args := m.Called(customer)
	return args.String(0), args.Error(1)
}

func (m *MockCustomerRepo) AllForLender(lenderID string) ([]models.Customer, error) {
	args := m.Called(lenderID)
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockCustomerRepo) GetOneForLender(id, lenderID string) (*models.Customer, bool, error) {
	args := m.Called(id, lenderID)

	var customer *models.Customer
	if args.Get(0) != nil {
		customer = args.Get(0).(*models.Customer)
	}
	return customer, args.Bool(1), args.Error(2)
}

func (m *MockCustomerRepo) CheckIfNationalIDExist(nationalID string) (bool, error) {
	args := m.Called(nationalID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepo) CountForLender(lenderID string) (int, error) {
	args := m.Called(lenderID)
	return args.Int(0), args.Error(1)
}

type MockLoanRepo struct {
	mock.Mock
}

func (m *MockLoanRepo) Insert(loan *models.Loan) (string, error) {
	args := m.Called(loan)
	return args.String(0), args.Error(1)
}

func (m *MockLoanRepo) AllForLender(lenderID string) ([]models.Loan, error) {
	args := m.Called(lenderID)
	return args.Get(0).([]models.Loan), args.Error(1)
}

func (m *MockLoanRepo) AllForCustomer(customerID string) ([]models.Loan, error) {
	args := m.Called(customerID)
	return args.Get(0).([]models.Loan), args.Error(1)
}

func (m *MockLoanRepo) GetOneForLender(id, lenderID string) (*models.Loan, bool, error) {
	args := m.Called(id, lenderID)

	var loan *models.Loan
	if args.Get(0) != nil {
		loan = args.Get(0).(*models.Loan)
	}
	return loan, args.Bool(1), args.Error(2)
}

func (m *MockLoanRepo) AccrueInterest(id, lenderID string, asOf time.Time) (*interest.AccrualResult, bool, error) {
	args := m.Called(id, lenderID, asOf)

	var result *interest.AccrualResult
	if args.Get(0) != nil {
		result = args.Get(0).(*interest.AccrualResult)
	}
	return result, args.Bool(1), args.Error(2)
}

func (m *MockLoanRepo) SettlePayment(id, lenderID string, amount float64, paymentType string, asOf time.Time) (*repository.SettlementResult, bool, error) {
	args := m.Called(id, lenderID, amount, paymentType, asOf)

	var result *repository.SettlementResult
	if args.Get(0) != nil {
		result = args.Get(0).(*repository.SettlementResult)
	}
	return result, args.Bool(1), args.Error(2)
}

func (m *MockLoanRepo) TotalBalanceForLender(lenderID string) (float64, error) {
	args := m.Called(lenderID)
	return args.Get(0).(float64), args.Error(1)
}

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) HistoryForLender(lenderID, customerID string) ([]models.PaymentHistoryRow, error) {
	args := m.Called(lenderID, customerID)
	return args.Get(0).([]models.PaymentHistoryRow), args.Error(1)
}

func (m *MockPaymentRepo) TotalInterestCollectedForLender(lenderID string) (float64, error) {
	args := m.Called(lenderID)
	return args.Get(0).(float64), args.Error(1)
}

// MockProducer records produced messages instead of talking to Kafka.
type MockProducer struct {
	mu       sync.Mutex
	Messages map[string][]string
}

func NewMockProducer() *MockProducer {
	return &MockProducer{Messages: make(map[string][]string)}
}

func (m *MockProducer) ProduceMessage(topic, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Messages[topic] = append(m.Messages[topic], message)
	return nil
}

func (m *MockProducer) Produced(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Messages[topic])
}

// MockCache is an in-memory stand-in for the redis cache.
type MockCache struct {
	mu      sync.Mutex
	values  map[string]string
	Sets    int
	Deletes int
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]string)}
}

func (m *MockCache) Get(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.values[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return value, nil
}

func (m *MockCache) Set(key, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	m.Sets++
	return nil
}

func (m *MockCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	m.Deletes++
	return nil
}
