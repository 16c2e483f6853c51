package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/rcampos/loanbook/internal/config"
	"github.com/rcampos/loanbook/internal/errHandler"
	"github.com/rcampos/loanbook/internal/helper"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/rcampos/loanbook/internal/repository"
	"github.com/rcampos/loanbook/internal/request"
	"github.com/rcampos/loanbook/internal/response"
	"github.com/rcampos/loanbook/internal/validator"

	"github.com/cradoe/gopass"
	"github.com/pascaldekloe/jwt"
)

type authHandler struct {
	userRepo     repository.UserRepository
	activityRepo repository.ActivityRepository
	errHandler   *errHandler.ErrorHandler
	helper       *helper.HelperRepository
	config       *config.Config
}

func NewAuthHandler(userRepo repository.UserRepository, activityRepo repository.ActivityRepository, errHandler *errHandler.ErrorHandler, helper *helper.HelperRepository, config *config.Config) *authHandler {
	return &authHandler{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		errHandler:   errHandler,
		helper:       helper,
		config:       config,
	}
}

type authenticatedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	DueDay   int    `json:"due_day"`
}

func (h *authHandler) HandleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username  string              `json:"username"`
		Password  string              `json:"password"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Username), "Username is required")
	input.Validator.Check(validator.NotBlank(input.Password), "Password is required")

	if input.Validator.HasErrors() {
		h.errHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	user, found, err := h.userRepo.GetByUsername(input.Username)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !found {
		h.errHandler.InvalidCredentials(w, r)
		return
	}

	passwordMatches, err := gopass.ComparePasswordAndHash(input.Password, user.HashedPassword)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	if !passwordMatches {
		h.helper.BackgroundTask(r, func() error {
			_, err := h.activityRepo.Insert(&models.ActivityLog{
				UserID:      user.ID,
				Entity:      repository.ActivityLogUserEntity,
				EntityId:    user.ID,
				Description: UserActivityLogFailedLoginDescription,
			})

			if err != nil {
				log.Printf("Error logging failed login action: %v", err)
				return err
			}

			return nil
		})

		h.errHandler.InvalidCredentials(w, r)
		return
	}

	// An admin can switch an account off without deleting it. Correct
	// credentials on a disabled account still get the door shut.
	if user.Status != models.UserStatusActive {
		h.errHandler.Forbidden(w, r, "Account has been disabled. Please contact support")
		return
	}

	h.helper.BackgroundTask(r, func() error {
		_, err := h.activityRepo.Insert(&models.ActivityLog{
			UserID:      user.ID,
			Entity:      repository.ActivityLogUserEntity,
			EntityId:    user.ID,
			Description: UserActivityLogLoginDescription,
		})

		if err != nil {
			log.Printf("Error logging successful login action: %v", err)
			return err
		}

		return nil
	})

	var claims jwt.Claims
	claims.Subject = user.ID

	expiry := time.Now().Add(24 * time.Hour)
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = h.config.BaseURL
	claims.Audiences = []string{h.config.BaseURL}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(h.config.Jwt.SecretKey))
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"user": authenticatedUser{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
			DueDay:   user.DueDay,
		},
		"auth_token":   string(jwtBytes),
		"token_expiry": expiry.Format(time.RFC3339),
	}

	message := "Login successful"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
