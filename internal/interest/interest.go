// Package interest holds the balance arithmetic for loan accrual and
// payment settlement. The functions are pure so the same computation can be
// driven by a request handler today or a scheduled sweep later.
package interest

import (
	"time"

	"github.com/rcampos/loanbook/internal/models"
)

// PaidThreshold is the residual balance under which a loan counts as settled.
// Balances are stored as floats, so an exact zero comparison would keep loans
// open forever over sub-cent rounding noise.
const PaidThreshold = 0.01

type AccrualResult struct {
	NewBalance    float64
	DaysProcessed int
	InterestAdded float64
}

// Accrue computes simple interest on balance for the whole days elapsed
// between lastUpdate and asOf. The rate is a percentage per day. Interest is
// simple within a single call, but because each call starts from the balance
// produced by the previous one, repeated triggers compound across calls.
//
// Fractional-day remainders are not carried: the caller is expected to
// advance the loan's watermark to asOf exactly whenever DaysProcessed > 0,
// and to leave it untouched otherwise.
func Accrue(balance, dailyRatePercent float64, lastUpdate, asOf time.Time) AccrualResult {
	elapsed := asOf.Sub(lastUpdate)
	if elapsed < 0 {
		elapsed = -elapsed
	}

	days := int(elapsed / (24 * time.Hour))
	if days == 0 {
		return AccrualResult{NewBalance: balance}
	}

	added := balance * (dailyRatePercent / 100) * float64(days)

	return AccrualResult{
		NewBalance:    balance + added,
		DaysProcessed: days,
		InterestAdded: added,
	}
}

// ApplyPayment subtracts a payment from the balance and derives the loan
// status. Both payment types reduce the balance the same way; the type is an
// append-only reporting tag, not an enforcement rule. The balance never goes
// below zero, and anything at or under PaidThreshold marks the loan PAID.
func ApplyPayment(balance, amount float64) (newBalance float64, status string) {
	newBalance = balance - amount

	status = models.LoanStatusActive
	if newBalance <= PaidThreshold {
		status = models.LoanStatusPaid
	}

	if newBalance < 0 {
		newBalance = 0
	}

	return newBalance, status
}
