package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rcampos/loanbook/internal/models"
)

// PaymentRepository is read-only. Payment rows are appended by
// LoanRepository.SettlePayment as part of the settlement transaction and are
// never updated or deleted afterwards. Payments carry no lender column, so
// every query walks payment -> loan -> customer to reach the tenant.
type PaymentRepository interface {
	HistoryForLender(lenderID, customerID string) ([]models.PaymentHistoryRow, error)
	TotalInterestCollectedForLender(lenderID string) (float64, error)
}

type PaymentRepositoryImpl struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

// HistoryForLender returns the lender's payments joined with loan and
// customer, newest first. customerID narrows the result to one customer when
// non-empty.
func (repo *PaymentRepositoryImpl) HistoryForLender(lenderID, customerID string) ([]models.PaymentHistoryRow, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var rows []models.PaymentHistoryRow

	query := `
		SELECT
			p.id,
			p.amount,
			p.type,
			p.created_at,
			l.id AS loan_id,
			c.id AS customer_id,
			c.name AS customer_name,
			c.national_id
		FROM payments p
		JOIN loans l ON p.loan_id = l.id
		JOIN customers c ON l.customer_id = c.id
		WHERE c.user_id = $1`

	params := []any{lenderID}

	if customerID != "" {
		query += ` AND c.id = $2`
		params = append(params, customerID)
	}

	query += ` ORDER BY p.created_at DESC`

	err := repo.db.SelectContext(ctx, &rows, query, params...)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (repo *PaymentRepositoryImpl) TotalInterestCollectedForLender(lenderID string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var total float64

	query := `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN loans l ON p.loan_id = l.id
		JOIN customers c ON l.customer_id = c.id
		WHERE c.user_id = $1 AND p.type = $2`

	err := repo.db.GetContext(ctx, &total, query, lenderID, models.PaymentTypeInterestOnly)
	if err != nil {
		return 0, err
	}

	return total, nil
}
