package models

import (
	"time"
)

const (
	PaymentTypeInterestOnly         = "INTEREST_ONLY"
	PaymentTypePrincipalAndInterest = "PRINCIPAL_AND_INTEREST"
)

// Payment is an append-only ledger entry. Rows are never updated or deleted.
type Payment struct {
	ID        string    `db:"id"`
	LoanID    string    `db:"loan_id"`
	Amount    float64   `db:"amount"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}

// PaymentHistoryRow is a payment joined with its loan and customer for reporting.
type PaymentHistoryRow struct {
	ID           string    `db:"id"`
	Amount       float64   `db:"amount"`
	Type         string    `db:"type"`
	CreatedAt    time.Time `db:"created_at"`
	LoanID       string    `db:"loan_id"`
	CustomerID   string    `db:"customer_id"`
	CustomerName string    `db:"customer_name"`
	NationalID   string    `db:"national_id"`
}
