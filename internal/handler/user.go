package handler

import (
	"net/http"
	"time"

	"github.com/rcampos/loanbook/internal/errHandler"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/rcampos/loanbook/internal/repository"
	"github.com/rcampos/loanbook/internal/request"
	"github.com/rcampos/loanbook/internal/response"
	"github.com/rcampos/loanbook/internal/validator"

	"github.com/cradoe/gopass"
)

// userHandler covers the admin-only lender management endpoints.
type userHandler struct {
	userRepo     repository.UserRepository
	customerRepo repository.CustomerRepository
	errHandler   *errHandler.ErrorHandler
}

func NewUserHandler(userRepo repository.UserRepository, customerRepo repository.CustomerRepository, errHandler *errHandler.ErrorHandler) *userHandler {
	return &userHandler{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		errHandler:   errHandler,
	}
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	DueDay    int    `json:"due_day"`
	CreatedAt string `json:"created_at"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name.String,
		Role:      user.Role,
		Status:    user.Status,
		DueDay:    user.DueDay,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func (h *userHandler) HandleUsersList(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.All()
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := make([]userResponse, 0, len(users))
	for i := range users {
		data = append(data, newUserResponse(&users[i]))
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *userHandler) HandleUsersCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string              `json:"username"`
		Password  string              `json:"password"`
		Role      string              `json:"role"`
		DueDay    int                 `json:"due_day"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	if input.Role == "" {
		input.Role = models.UserRoleLender
	}
	if input.DueDay == 0 {
		input.DueDay = 10
	}

	_, errs := gopass.Validate(input.Password)
	if errs != nil {
		h.errHandler.FailedValidation(w, r, errs)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Username), "Username is required")
	input.Validator.Check(validator.In(input.Role, models.UserRoleAdmin, models.UserRoleLender), "Role must be admin or lender")
	input.Validator.Check(validator.Between(input.DueDay, 1, 28), "Due day must be between 1 and 28")

	_, found, err := h.userRepo.GetByUsername(input.Username)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	input.Validator.Check(!found, "Username is already in use")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	hashedPassword, err := gopass.Hash(input.Password)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	createdUser := &models.User{
		Username:       input.Username,
		HashedPassword: hashedPassword,
		Role:           input.Role,
		Status:         models.UserStatusActive,
		DueDay:         input.DueDay,
	}

	userID, err := h.userRepo.Insert(createdUser)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := map[string]string{"id": userID}

	err = response.JSONCreatedResponse(w, data, "User created successfully")
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *userHandler) HandleUserStatusUpdate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status    string              `json:"status"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.In(input.Status, models.UserStatusActive, models.UserStatusInactive), "Status must be active or inactive")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	userID := r.PathValue("id")

	_, found, err := h.userRepo.GetOne(userID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	err = h.userRepo.UpdateStatus(userID, input.Status)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, nil, "Status updated", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *userHandler) HandleUserDelete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	_, found, err := h.userRepo.GetOne(userID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.errHandler.NotFound(w, r)
		return
	}

	// Deleting a lender would orphan its book. The account must be
	// emptied (or just disabled) first.
	count, err := h.customerRepo.CountForLender(userID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}
	if count > 0 {
		h.errHandler.FailedValidation(w, r, []string{"User still owns customers and cannot be deleted. Disable the account instead"})
		return
	}

	err = h.userRepo.Delete(userID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, nil, "User deleted", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
