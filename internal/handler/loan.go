package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/rcampos/loanbook/internal/cache"
	"github.com/rcampos/loanbook/internal/context"
	"github.com/rcampos/loanbook/internal/errHandler"
	"github.com/rcampos/loanbook/internal/helper"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/rcampos/loanbook/internal/repository"
	"github.com/rcampos/loanbook/internal/request"
	"github.com/rcampos/loanbook/internal/response"
	"github.com/rcampos/loanbook/internal/stream"
	"github.com/rcampos/loanbook/internal/validator"
)

const (
	loanInterestAccruedTopic = "loan.interest.accrued"
	loanPaymentSettledTopic  = "loan.payment.settled"
)

type loanHandler struct {
	loanRepo     repository.LoanRepository
	customerRepo repository.CustomerRepository
	activityRepo repository.ActivityRepository
	errHandler   *errHandler.ErrorHandler
	helper       *helper.HelperRepository
	kafka        stream.Producer
	cache        cache.Store
}

func NewLoanHandler(loanRepo repository.LoanRepository, customerRepo repository.CustomerRepository, activityRepo repository.ActivityRepository, errHandler *errHandler.ErrorHandler, helper *helper.HelperRepository, kafka stream.Producer, cache cache.Store) *loanHandler {
	return &loanHandler{
		loanRepo:     loanRepo,
		customerRepo: customerRepo,
		activityRepo: activityRepo,
		errHandler:   errHandler,
		helper:       helper,
		kafka:        kafka,
		cache:        cache,
	}
}

type loanResponse struct {
	ID                 string  `json:"id"`
	CustomerID         string  `json:"customer_id"`
	OriginalAmount     float64 `json:"original_amount"`
	CurrentBalance     float64 `json:"current_balance"`
	InterestRate       float64 `json:"interest_rate"`
	StartDate          string  `json:"start_date"`
	LastInterestUpdate string  `json:"last_interest_update"`
	Status             string  `json:"status"`
}

func newLoanResponse(loan *models.Loan) loanResponse {
	return loanResponse{
		ID:                 loan.ID,
		CustomerID:         loan.CustomerID,
		OriginalAmount:     loan.OriginalAmount,
		CurrentBalance:     loan.CurrentBalance,
		InterestRate:       loan.InterestRate,
		StartDate:          loan.StartDate.Format(time.RFC3339),
		LastInterestUpdate: loan.LastInterestUpdate.Format(time.RFC3339),
		Status:             loan.Status,
	}
}

// AccruedInterest is the event published after interest has been folded into
// a loan balance. Consumed by the accrual activity worker.
type AccruedInterest struct {
	LoanID        string  `json:"loan_id"`
	LenderID      string  `json:"lender_id"`
	DaysProcessed int     `json:"days_processed"`
	InterestAdded float64 `json:"interest_added"`
	NewBalance    float64 `json:"new_balance"`
	AccruedAt     string  `json:"accrued_at"`
}

// SettledPayment is the event published after a payment has been applied.
// Consumed by the settlement activity worker.
type SettledPayment struct {
	PaymentID  string  `json:"payment_id"`
	LoanID     string  `json:"loan_id"`
	LenderID   string  `json:"lender_id"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	NewBalance float64 `json:"new_balance"`
	Status     string  `json:"status"`
	SettledAt  string  `json:"settled_at"`
}

func (h *loanHandler) HandleLoansList(w http.ResponseWriter, r *http.Request) {
	lender := context.ContextGetAuthenticatedUser(r)

	loans, err := h.loanRepo.AllForLender(lender.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := make([]loanResponse, 0, len(loans))
	for i := range loans {
		data = append(data, newLoanResponse(&loans[i]))
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *loanHandler) HandleLoansCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CustomerID   string              `json:"customer_id"`
		Amount       float64             `json:"amount"`
		InterestRate float64             `json:"interest_rate"`
		Validator    validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.CustomerID), "Customer is required")
	input.Validator.Check(input.Amount > 0, "Amount must be greater than zero")
	input.Validator.Check(input.InterestRate > 0, "Interest rate must be greater than zero")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	lender := context.ContextGetAuthenticatedUser(r)

	// The customer row doubles as the ownership check. Another lender's
	// customer is indistinguishable from a nonexistent one.
	_, found, err := h.customerRepo.GetOneForLender(input.CustomerID, lender.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	createdLoan := &models.Loan{
		CustomerID:     input.CustomerID,
		OriginalAmount: input.Amount,
		CurrentBalance: input.Amount,
		InterestRate:   input.InterestRate,
	}

	loanID, err := h.loanRepo.Insert(createdLoan)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.cache.Delete(summaryCacheKey(lender.ID))

	h.helper.BackgroundTask(r, func() error {
		_, err := h.activityRepo.Insert(&models.ActivityLog{
			UserID:      lender.ID,
			Entity:      repository.ActivityLogLoanEntity,
			EntityId:    loanID,
			Description: LoanActivityLogCreatedDescription,
		})

		if err != nil {
			log.Printf("Error logging loan creation: %v", err)
			return err
		}

		return nil
	})

	data := map[string]any{
		"id":              loanID,
		"customer_id":     input.CustomerID,
		"original_amount": input.Amount,
		"current_balance": input.Amount,
		"interest_rate":   input.InterestRate,
	}

	err = response.JSONCreatedResponse(w, data, "Loan created successfully")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *loanHandler) HandleLoanAccrueInterest(w http.ResponseWriter, r *http.Request) {
	lender := context.ContextGetAuthenticatedUser(r)
	loanID := r.PathValue("id")
	now := time.Now()

	result, found, err := h.loanRepo.AccrueInterest(loanID, lender.ID, now)
	if err != nil {
		if errors.Is(err, repository.ErrLoanNotActive) {
			h.errHandler.BadRequest(w, r, err)
			return
		}
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	data := map[string]any{
		"days_processed": result.DaysProcessed,
		"interest_added": result.InterestAdded,
		"new_balance":    result.NewBalance,
	}

	if result.DaysProcessed == 0 {
		err = response.JSONOkResponse(w, data, "No full day has elapsed since the last update", nil)
		if err != nil {
			h.errHandler.ServerError(w, r, err)
		}
		return
	}

	h.cache.Delete(summaryCacheKey(lender.ID))

	event := &AccruedInterest{
		LoanID:        loanID,
		LenderID:      lender.ID,
		DaysProcessed: result.DaysProcessed,
		InterestAdded: result.InterestAdded,
		NewBalance:    result.NewBalance,
		AccruedAt:     now.Format(time.RFC3339),
	}

	jsonEvent, err := json.Marshal(event)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.helper.BackgroundTask(r, func() error {
		err := h.kafka.ProduceMessage(loanInterestAccruedTopic, string(jsonEvent))
		if err != nil {
			log.Printf("Error producing interest accrued event: %v", err)
			return err
		}
		return nil
	})

	err = response.JSONOkResponse(w, data, "Interest updated", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *loanHandler) HandleLoanPay(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Amount    float64             `json:"amount"`
		Type      string              `json:"type"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.Amount > 0, "Amount must be greater than zero")
	input.Validator.Check(validator.In(input.Type, models.PaymentTypeInterestOnly, models.PaymentTypePrincipalAndInterest), "Type must be INTEREST_ONLY or PRINCIPAL_AND_INTEREST")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	lender := context.ContextGetAuthenticatedUser(r)
	loanID := r.PathValue("id")
	now := time.Now()

	result, found, err := h.loanRepo.SettlePayment(loanID, lender.ID, input.Amount, input.Type, now)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	h.cache.Delete(summaryCacheKey(lender.ID))

	event := &SettledPayment{
		PaymentID:  result.PaymentID,
		LoanID:     loanID,
		LenderID:   lender.ID,
		Amount:     input.Amount,
		Type:       input.Type,
		NewBalance: result.NewBalance,
		Status:     result.Status,
		SettledAt:  now.Format(time.RFC3339),
	}

	jsonEvent, err := json.Marshal(event)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.helper.BackgroundTask(r, func() error {
		err := h.kafka.ProduceMessage(loanPaymentSettledTopic, string(jsonEvent))
		if err != nil {
			log.Printf("Error producing payment settled event: %v", err)
			return err
		}
		return nil
	})

	data := map[string]any{
		"new_balance": result.NewBalance,
		"status":      result.Status,
	}

	err = response.JSONOkResponse(w, data, "Payment successful", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
