package app

import (
	"net/http"

	"github.com/rcampos/loanbook/internal/handler"
	"github.com/rcampos/loanbook/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	middlewareRepo := middleware.New(app.ErrorHandler, app.Logger, app.DB.User(), &app.Config)

	healthHandler := handler.NewHealthHandler(app.ErrorHandler)
	authHandler := handler.NewAuthHandler(app.DB.User(), app.DB.Activity(), app.ErrorHandler, app.Helper, &app.Config)
	userHandler := handler.NewUserHandler(app.DB.User(), app.DB.Customer(), app.ErrorHandler)
	customerHandler := handler.NewCustomerHandler(app.DB.Customer(), app.DB.Loan(), app.ErrorHandler, app.FileUploader, app.Cache)
	loanHandler := handler.NewLoanHandler(app.DB.Loan(), app.DB.Customer(), app.DB.Activity(), app.ErrorHandler, app.Helper, app.Kafka, app.Cache)
	reportHandler := handler.NewReportHandler(app.DB.Loan(), app.DB.Payment(), app.DB.Customer(), app.ErrorHandler, app.Cache)

	requireAuth := func(fn http.HandlerFunc) http.Handler {
		return middlewareRepo.RequireAuthenticatedUser(fn)
	}
	requireAdmin := func(fn http.HandlerFunc) http.Handler {
		return middlewareRepo.RequireAuthenticatedUser(middlewareRepo.RequireAdminUser(fn))
	}

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /api/auth/login", authHandler.HandleAuthLogin)

	mux.Handle("GET /api/customers", requireAuth(customerHandler.HandleCustomersList))
	mux.Handle("POST /api/customers", requireAuth(customerHandler.HandleCustomersCreate))
	mux.Handle("GET /api/customers/{id}", requireAuth(customerHandler.HandleCustomerShow))

	mux.Handle("GET /api/loans", requireAuth(loanHandler.HandleLoansList))
	mux.Handle("POST /api/loans", requireAuth(loanHandler.HandleLoansCreate))
	mux.Handle("POST /api/loans/{id}/update-interest", requireAuth(loanHandler.HandleLoanAccrueInterest))
	mux.Handle("POST /api/loans/{id}/pay", requireAuth(loanHandler.HandleLoanPay))

	mux.Handle("GET /api/reports/payments", requireAuth(reportHandler.HandlePaymentsReport))
	mux.Handle("GET /api/reports/summary", requireAuth(reportHandler.HandleReportsSummary))

	mux.Handle("GET /api/users", requireAdmin(userHandler.HandleUsersList))
	mux.Handle("POST /api/users", requireAdmin(userHandler.HandleUsersCreate))
	mux.Handle("PATCH /api/users/{id}/status", requireAdmin(userHandler.HandleUserStatusUpdate))
	mux.Handle("DELETE /api/users/{id}", requireAdmin(userHandler.HandleUserDelete))

	return middlewareRepo.LogAccess(middlewareRepo.RecoverPanic(middlewareRepo.Authenticate(mux)))
}
