package worker

import (
	"context"
	"log/slog"

	"github.com/rcampos/loanbook/internal/repository"
	"github.com/rcampos/loanbook/internal/stream"
)

type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          repository.Database
	Ctx         context.Context
	Logger      *slog.Logger
}

const (
	// loanInterestAccruedGroupID is used for workers that react whenever
	// interest has been folded into a loan balance.
	loanInterestAccruedGroupID = "loan-interest-accrued-group"

	// loanPaymentSettledGroupID is used for workers that react whenever a
	// payment has been applied to a loan.
	loanPaymentSettledGroupID = "loan-payment-settled-group"

	// Topics
	// LoanInterestAccruedTopic carries accrual events published by the
	// update-interest endpoint.
	LoanInterestAccruedTopic = "loan.interest.accrued"

	// LoanPaymentSettledTopic carries settlement events published by the
	// pay endpoint.
	LoanPaymentSettledTopic = "loan.payment.settled"
)

// Our workers typically need access to the database and the kafka event
// stream; worker-specific dependencies can be passed as arguments.
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Ctx:         wk.Ctx,
		Logger:      wk.Logger,
	}
}
