package models

import (
	"time"
)

const (
	// LoanStatusActive indicates an outstanding balance that still accrues interest.
	LoanStatusActive = "ACTIVE"

	// LoanStatusPaid indicates the balance has been settled down to the paid
	// threshold. A paid loan no longer accrues interest.
	LoanStatusPaid = "PAID"
)

type Loan struct {
	ID             string    `db:"id"`
	CustomerID     string    `db:"customer_id"`
	OriginalAmount float64   `db:"original_amount"`
	CurrentBalance float64   `db:"current_balance"`
	InterestRate   float64   `db:"interest_rate"`
	StartDate      time.Time `db:"start_date"`
	// LastInterestUpdate is the instant up to which interest has already been
	// folded into CurrentBalance.
	LastInterestUpdate time.Time `db:"last_interest_update"`
	Status             string    `db:"status"`
}
