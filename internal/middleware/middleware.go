package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rcampos/loanbook/internal/config"
	"github.com/rcampos/loanbook/internal/context"
	"github.com/rcampos/loanbook/internal/errHandler"
	"github.com/rcampos/loanbook/internal/models"
	"github.com/rcampos/loanbook/internal/repository"
	"github.com/rcampos/loanbook/internal/response"

	"github.com/pascaldekloe/jwt"
	"github.com/tomasen/realip"
)

type Middleware struct {
	errHandler *errHandler.ErrorHandler
	logger     *slog.Logger
	UserRepo   repository.UserRepository
	config     *config.Config
}

func New(errHandler *errHandler.ErrorHandler, logger *slog.Logger, userRepo repository.UserRepository, config *config.Config) *Middleware {
	return &Middleware{
		errHandler: errHandler,
		logger:     logger,
		UserRepo:   userRepo,
		config:     config,
	}
}

func (mid *Middleware) RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				mid.errHandler.ServerError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (mid *Middleware) LogAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
		)

		userAttrs := slog.Group("user", "ip", ip)
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount)

		mid.logger.Info("access", userAttrs, requestAttrs, responseAttrs)
	})
}

// Authenticate resolves the caller's identity from a Bearer token. The
// lender id and role always come from the verified token subject and the
// user row it points at, never from request headers the client controls.
func (mid *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")

		if authorizationHeader != "" {
			headerParts := strings.Split(authorizationHeader, " ")

			if len(headerParts) == 2 && headerParts[0] == "Bearer" {
				token := headerParts[1]

				claims, err := jwt.HMACCheck([]byte(token), []byte(mid.config.Jwt.SecretKey))
				if err != nil {
					mid.errHandler.InvalidAuthenticationToken(w, r)
					return
				}

				if !claims.Valid(time.Now()) {
					mid.errHandler.InvalidAuthenticationToken(w, r)
					return
				}

				if claims.Issuer != mid.config.BaseURL {
					mid.errHandler.InvalidAuthenticationToken(w, r)
					return
				}

				if !claims.AcceptAudience(mid.config.BaseURL) {
					mid.errHandler.InvalidAuthenticationToken(w, r)
					return
				}

				userID := claims.Subject

				user, found, err := mid.UserRepo.GetOne(userID)
				if err != nil {
					mid.errHandler.ServerError(w, r, err)
					return
				}

				if found {
					r = context.ContextSetAuthenticatedUser(r, user)
				}
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (mid *Middleware) RequireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticatedUser := context.ContextGetAuthenticatedUser(r)

		if authenticatedUser == nil {
			mid.errHandler.AuthenticationRequired(w, r)
			return
		}

		if authenticatedUser.Status != models.UserStatusActive {
			mid.errHandler.Forbidden(w, r, "Account has been disabled. Please contact support")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (mid *Middleware) RequireAdminUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authenticatedUser := context.ContextGetAuthenticatedUser(r)

		if authenticatedUser == nil {
			mid.errHandler.AuthenticationRequired(w, r)
			return
		}

		if authenticatedUser.Role != models.UserRoleAdmin {
			mid.errHandler.Forbidden(w, r, "Access denied: admins only")
			return
		}

		next.ServeHTTP(w, r)
	})
}
