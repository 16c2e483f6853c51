package handler

import (
	"database/sql"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rcampos/loanbook/internal/cache"
	"github.com/rcampos/loanbook/internal/context"
	"github.com/rcampos/loanbook/internal/errHandler"
	"github.com/rcampos/loanbook/internal/file"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/rcampos/loanbook/internal/repository"
	"github.com/rcampos/loanbook/internal/response"
	"github.com/rcampos/loanbook/internal/validator"
)

const maxPhotoUploadBytes = 5 << 20

type customerHandler struct {
	customerRepo repository.CustomerRepository
	loanRepo     repository.LoanRepository
	errHandler   *errHandler.ErrorHandler
	uploader     file.Uploader
	cache        cache.Store
}

func NewCustomerHandler(customerRepo repository.CustomerRepository, loanRepo repository.LoanRepository, errHandler *errHandler.ErrorHandler, uploader file.Uploader, cache cache.Store) *customerHandler {
	return &customerHandler{
		customerRepo: customerRepo,
		loanRepo:     loanRepo,
		errHandler:   errHandler,
		uploader:     uploader,
		cache:        cache,
	}
}

type customerResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"national_id"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Photo      string `json:"photo,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func newCustomerResponse(customer *models.Customer) customerResponse {
	return customerResponse{
		ID:         customer.ID,
		Name:       customer.Name,
		NationalID: customer.NationalID,
		Phone:      customer.Phone.String,
		Address:    customer.Address.String,
		Photo:      customer.Photo.String,
		CreatedAt:  customer.CreatedAt.Format(time.RFC3339),
	}
}

func (h *customerHandler) HandleCustomersList(w http.ResponseWriter, r *http.Request) {
	lender := context.ContextGetAuthenticatedUser(r)

	customers, err := h.customerRepo.AllForLender(lender.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := make([]customerResponse, 0, len(customers))
	for i := range customers {
		data = append(data, newCustomerResponse(&customers[i]))
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *customerHandler) HandleCustomerShow(w http.ResponseWriter, r *http.Request) {
	lender := context.ContextGetAuthenticatedUser(r)

	customer, found, err := h.customerRepo.GetOneForLender(r.PathValue("id"), lender.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	loans, err := h.loanRepo.AllForCustomer(customer.ID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	loanData := make([]loanResponse, 0, len(loans))
	for i := range loans {
		loanData = append(loanData, newLoanResponse(&loans[i]))
	}

	data := map[string]any{
		"customer": newCustomerResponse(customer),
		"loans":    loanData,
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *customerHandler) HandleCustomersCreate(w http.ResponseWriter, r *http.Request) {
	lender := context.ContextGetAuthenticatedUser(r)

	err := r.ParseMultipartForm(maxPhotoUploadBytes)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	var input struct {
		Name       string
		NationalID string
		Phone      string
		Address    string
		Validator  validator.Validator
	}

	input.Name = r.FormValue("name")
	input.NationalID = r.FormValue("national_id")
	input.Phone = r.FormValue("phone")
	input.Address = r.FormValue("address")

	input.Validator.Check(validator.NotBlank(input.Name), "Name is required")
	input.Validator.Check(validator.NotBlank(input.NationalID), "National ID is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	found, err := h.customerRepo.CheckIfNationalIDExist(input.NationalID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if found {
		input.Validator.AddError("National ID has already been registered")
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	photoURL, err := h.uploadPhoto(r)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	createdCustomer := &models.Customer{
		Name:       input.Name,
		NationalID: input.NationalID,
		Phone:      sql.NullString{String: input.Phone, Valid: input.Phone != ""},
		Address:    sql.NullString{String: input.Address, Valid: input.Address != ""},
		Photo:      sql.NullString{String: photoURL, Valid: photoURL != ""},
		UserID:     lender.ID,
	}

	customerID, err := h.customerRepo.Insert(createdCustomer)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	h.cache.Delete(summaryCacheKey(lender.ID))

	data := map[string]any{
		"id":          customerID,
		"name":        input.Name,
		"national_id": input.NationalID,
		"phone":       input.Phone,
		"address":     input.Address,
		"photo":       photoURL,
	}

	err = response.JSONCreatedResponse(w, data, "Customer created successfully")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// uploadPhoto stages the optional multipart photo into a temp file and pushes
// it to the CDN. Returns an empty URL when no photo was attached.
func (h *customerHandler) uploadPhoto(r *http.Request) (string, error) {
	upload, header, err := r.FormFile("photo")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer upload.Close()

	tmp, err := os.CreateTemp("", "customer-photo-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, upload)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	return h.uploader.UploadFile(tmp.Name())
}
