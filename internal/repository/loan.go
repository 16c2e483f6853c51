package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rcampos/loanbook/internal/interest"
	"github.com/rcampos/loanbook/internal/models"
)

// ErrLoanNotActive is returned when interest accrual is attempted on a loan
// that is not in the ACTIVE status.
var ErrLoanNotActive = errors.New("loan is not active")

// SettlementResult is what a completed payment settlement reports back.
type SettlementResult struct {
	PaymentID  string
	NewBalance float64
	Status     string
}

// LoanRepository owns the two money-moving units of work. AccrueInterest and
// SettlePayment each run inside a single transaction holding a row lock on
// the loan, so two concurrent triggers on the same loan serialize instead of
// clobbering each other's balance write. Loan access always joins through
// the owning customer; an unowned loan reads as not found.
type LoanRepository interface {
	Insert(loan *models.Loan) (string, error)
	AllForLender(lenderID string) ([]models.Loan, error)
	AllForCustomer(customerID string) ([]models.Loan, error)
	GetOneForLender(id, lenderID string) (*models.Loan, bool, error)
	AccrueInterest(id, lenderID string, asOf time.Time) (*interest.AccrualResult, bool, error)
	SettlePayment(id, lenderID string, amount float64, paymentType string, asOf time.Time) (*SettlementResult, bool, error)
	TotalBalanceForLender(lenderID string) (float64, error)
}

type LoanRepositoryImpl struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &LoanRepositoryImpl{db: db}
}

func (repo *LoanRepositoryImpl) Insert(loan *models.Loan) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO loans (customer_id, original_amount, current_balance, interest_rate)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		loan.CustomerID,
		loan.OriginalAmount,
		loan.CurrentBalance,
		loan.InterestRate,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *LoanRepositoryImpl) AllForLender(lenderID string) ([]models.Loan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var loans []models.Loan

	query := `
		SELECT l.*
		FROM loans l
		JOIN customers c ON l.customer_id = c.id
		WHERE c.user_id = $1
		ORDER BY l.start_date DESC`

	err := repo.db.SelectContext(ctx, &loans, query, lenderID)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (repo *LoanRepositoryImpl) AllForCustomer(customerID string) ([]models.Loan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var loans []models.Loan

	query := `SELECT * FROM loans WHERE customer_id = $1 ORDER BY start_date DESC`

	err := repo.db.SelectContext(ctx, &loans, query, customerID)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (repo *LoanRepositoryImpl) GetOneForLender(id, lenderID string) (*models.Loan, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var loan models.Loan

	query := `
		SELECT l.*
		FROM loans l
		JOIN customers c ON l.customer_id = c.id
		WHERE l.id = $1 AND c.user_id = $2`

	err := repo.db.GetContext(ctx, &loan, query, id, lenderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &loan, true, err
}

// getOneForUpdate loads a lender's loan inside tx while locking the loan row
// until the transaction ends.
func (repo *LoanRepositoryImpl) getOneForUpdate(ctx context.Context, tx *sqlx.Tx, id, lenderID string) (*models.Loan, bool, error) {
	var loan models.Loan

	query := `
		SELECT l.*
		FROM loans l
		JOIN customers c ON l.customer_id = c.id
		WHERE l.id = $1 AND c.user_id = $2
		FOR UPDATE OF l`

	err := tx.GetContext(ctx, &loan, query, id, lenderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &loan, true, nil
}

func (repo *LoanRepositoryImpl) AccrueInterest(id, lenderID string, asOf time.Time) (*interest.AccrualResult, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	loan, found, err := repo.getOneForUpdate(ctx, tx, id, lenderID)
	if err != nil || !found {
		return nil, found, err
	}

	if loan.Status != models.LoanStatusActive {
		return nil, true, ErrLoanNotActive
	}

	result := interest.Accrue(loan.CurrentBalance, loan.InterestRate, loan.LastInterestUpdate, asOf)

	// No full day has elapsed. The watermark stays where it is so the
	// partial day keeps counting toward the next trigger.
	if result.DaysProcessed == 0 {
		return &result, true, nil
	}

	query := `UPDATE loans SET current_balance = $1, last_interest_update = $2 WHERE id = $3`

	_, err = tx.ExecContext(ctx, query, result.NewBalance, asOf, loan.ID)
	if err != nil {
		return nil, true, err
	}

	if err := tx.Commit(); err != nil {
		return nil, true, err
	}

	return &result, true, nil
}

func (repo *LoanRepositoryImpl) SettlePayment(id, lenderID string, amount float64, paymentType string, asOf time.Time) (*SettlementResult, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	loan, found, err := repo.getOneForUpdate(ctx, tx, id, lenderID)
	if err != nil || !found {
		return nil, found, err
	}

	newBalance, status := interest.ApplyPayment(loan.CurrentBalance, amount)

	var paymentID string
	insertQuery := `
		INSERT INTO payments (loan_id, amount, type, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err = tx.GetContext(ctx, &paymentID, insertQuery, loan.ID, amount, paymentType, asOf)
	if err != nil {
		return nil, true, err
	}

	updateQuery := `UPDATE loans SET current_balance = $1, status = $2 WHERE id = $3`

	_, err = tx.ExecContext(ctx, updateQuery, newBalance, status, loan.ID)
	if err != nil {
		return nil, true, err
	}

	if err := tx.Commit(); err != nil {
		return nil, true, err
	}

	return &SettlementResult{
		PaymentID:  paymentID,
		NewBalance: newBalance,
		Status:     status,
	}, true, nil
}

func (repo *LoanRepositoryImpl) TotalBalanceForLender(lenderID string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var total float64

	query := `
		SELECT COALESCE(SUM(l.current_balance), 0)
		FROM loans l
		JOIN customers c ON l.customer_id = c.id
		WHERE c.user_id = $1`

	err := repo.db.GetContext(ctx, &total, query, lenderID)
	if err != nil {
		return 0, err
	}

	return total, nil
}
