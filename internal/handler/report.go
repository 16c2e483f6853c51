package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rcampos/loanbook/internal/cache"
	"github.com/rcampos/loanbook/internal/context"
	"github.com/rcampos/loanbook/internal/errHandler"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/rcampos/loanbook/internal/repository"
	"github.com/rcampos/loanbook/internal/response"
)

const summaryCacheTTL = 30 * time.Second

type reportHandler struct {
	loanRepo     repository.LoanRepository
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
	errHandler   *errHandler.ErrorHandler
	cache        cache.Store
}

func NewReportHandler(loanRepo repository.LoanRepository, paymentRepo repository.PaymentRepository, customerRepo repository.CustomerRepository, errHandler *errHandler.ErrorHandler, cache cache.Store) *reportHandler {
	return &reportHandler{
		loanRepo:     loanRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		errHandler:   errHandler,
		cache:        cache,
	}
}

type paymentHistoryResponse struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	Type         string  `json:"type"`
	Date         string  `json:"date"`
	LoanID       string  `json:"loan_id"`
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	NationalID   string  `json:"national_id"`
}

func newPaymentHistoryResponse(row *models.PaymentHistoryRow) paymentHistoryResponse {
	return paymentHistoryResponse{
		ID:           row.ID,
		Amount:       row.Amount,
		Type:         row.Type,
		Date:         row.CreatedAt.Format(time.RFC3339),
		LoanID:       row.LoanID,
		CustomerID:   row.CustomerID,
		CustomerName: row.CustomerName,
		NationalID:   row.NationalID,
	}
}

func (h *reportHandler) HandlePaymentsReport(w http.ResponseWriter, r *http.Request) {
	lender := context.ContextGetAuthenticatedUser(r)
	customerID := r.URL.Query().Get("customer_id")

	rows, err := h.paymentRepo.HistoryForLender(lender.ID, customerID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := make([]paymentHistoryResponse, 0, len(rows))
	for i := range rows {
		data = append(data, newPaymentHistoryResponse(&rows[i]))
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

type dashboardSummary struct {
	TotalLoaned            float64 `json:"total_loaned"`
	TotalInterestCollected float64 `json:"total_interest_collected"`
	TotalClients           int     `json:"total_clients"`
}

func (h *reportHandler) HandleReportsSummary(w http.ResponseWriter, r *http.Request) {
	lender := context.ContextGetAuthenticatedUser(r)
	key := summaryCacheKey(lender.ID)

	// A stale summary is acceptable for the TTL window; every loan,
	// customer and payment mutation deletes the key anyway.
	if cached, err := h.cache.Get(key); err == nil {
		var summary dashboardSummary
		if err := json.Unmarshal([]byte(cached), &summary); err == nil {
			err = response.JSONOkResponse(w, summary, "", nil)
			if err != nil {
				h.errHandler.ServerError(w, r, err)
			}
			return
		}
	}

	totalLoaned, err := h.loanRepo.TotalBalanceForLender(lender.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	totalInterest, err := h.paymentRepo.TotalInterestCollectedForLender(lender.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	totalClients, err := h.customerRepo.CountForLender(lender.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	summary := dashboardSummary{
		TotalLoaned:            totalLoaned,
		TotalInterestCollected: totalInterest,
		TotalClients:           totalClients,
	}

	if js, err := json.Marshal(summary); err == nil {
		h.cache.Set(key, string(js), summaryCacheTTL)
	}

	err = response.JSONOkResponse(w, summary, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
