package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/rcampos/loanbook/assets"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

const defaultTimeout = 3 * time.Second

// Database interface defines available repositories
type Database interface {
	User() UserRepository
	Customer() CustomerRepository
	Loan() LoanRepository
	Payment() PaymentRepository
	Activity() ActivityRepository

	Close() error
}

// DatabaseImpl implements the Database interface
type DatabaseImpl struct {
	db           *sqlx.DB
	userRepo     UserRepository
	customerRepo CustomerRepository
	loanRepo     LoanRepository
	paymentRepo  PaymentRepository
	activityRepo ActivityRepository

	mu sync.Mutex
}

// New initializes a database connection and runs migrations if enabled
func New(dsn string, automigrate bool) (Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if automigrate {
		iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
		if err != nil {
			return nil, err
		}

		migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
		if err != nil {
			return nil, err
		}

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
	}

	return &DatabaseImpl{db: db}, nil
}

func (d *DatabaseImpl) Close() error {
	return d.db.Close()
}

func (d *DatabaseImpl) User() UserRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userRepo == nil {
		d.userRepo = NewUserRepository(d.db)
	}
	return d.userRepo
}

func (d *DatabaseImpl) Customer() CustomerRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.customerRepo == nil {
		d.customerRepo = NewCustomerRepository(d.db)
	}
	return d.customerRepo
}

func (d *DatabaseImpl) Loan() LoanRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loanRepo == nil {
		d.loanRepo = NewLoanRepository(d.db)
	}
	return d.loanRepo
}

func (d *DatabaseImpl) Payment() PaymentRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.paymentRepo == nil {
		d.paymentRepo = NewPaymentRepository(d.db)
	}
	return d.paymentRepo
}

func (d *DatabaseImpl) Activity() ActivityRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.activityRepo == nil {
		d.activityRepo = NewActivityRepository(d.db)
	}
	return d.activityRepo
}
