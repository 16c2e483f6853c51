package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rcampos/loanbook/internal/models"
)

// CustomerRepository scopes every read to the owning lender. A customer that
// exists but belongs to a different lender is reported as not found.
type CustomerRepository interface {
	Insert(customer *models.Customer) (string, error)
	AllForLender(lenderID string) ([]models.Customer, error)
	GetOneForLender(id, lenderID string) (*models.Customer, bool, error)
	CheckIfNationalIDExist(nationalID string) (bool, error)
	CountForLender(lenderID string) (int, error)
}

type CustomerRepositoryImpl struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &CustomerRepositoryImpl{db: db}
}

func (repo *CustomerRepositoryImpl) Insert(customer *models.Customer) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO customers (name, national_id, phone, address, photo, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		customer.Name,
		customer.NationalID,
		customer.Phone,
		customer.Address,
		customer.Photo,
		customer.UserID,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *CustomerRepositoryImpl) AllForLender(lenderID string) ([]models.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var customers []models.Customer

	query := `SELECT * FROM customers WHERE user_id = $1 ORDER BY name`

	err := repo.db.SelectContext(ctx, &customers, query, lenderID)
	if err != nil {
		return nil, err
	}

	return customers, nil
}

func (repo *CustomerRepositoryImpl) GetOneForLender(id, lenderID string) (*models.Customer, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var customer models.Customer

	query := `SELECT * FROM customers WHERE id = $1 AND user_id = $2`

	err := repo.db.GetContext(ctx, &customer, query, id, lenderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &customer, true, err
}

func (repo *CustomerRepositoryImpl) CheckIfNationalIDExist(nationalID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE national_id = $1)`

	err := repo.db.GetContext(ctx, &exists, query, nationalID)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (repo *CustomerRepositoryImpl) CountForLender(lenderID string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	query := `SELECT COUNT(*) FROM customers WHERE user_id = $1`

	err := repo.db.GetContext(ctx, &count, query, lenderID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
