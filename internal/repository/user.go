package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rcampos/loanbook/internal/models"
)

type UserRepository interface {
	Insert(user *models.User) (string, error)
	GetOne(id string) (*models.User, bool, error)
	GetByUsername(username string) (*models.User, bool, error)
	All() ([]models.User, error)
	UpdateStatus(id, status string) error
	Delete(id string) error
}

type UserRepositoryImpl struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (repo *UserRepositoryImpl) Insert(user *models.User) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO users (username, hashed_password, role, status, due_day)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repo.db.GetContext(ctx, &id, query,
		user.Username,
		user.HashedPassword,
		user.Role,
		user.Status,
		user.DueDay,
	)
	if err != nil {
		return "", err
	}

	return id, nil
}

func (repo *UserRepositoryImpl) GetOne(id string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE id = $1`

	err := repo.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) GetByUsername(username string) (*models.User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user models.User

	query := `SELECT * FROM users WHERE username = $1`

	err := repo.db.GetContext(ctx, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (repo *UserRepositoryImpl) All() ([]models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var users []models.User

	query := `SELECT * FROM users ORDER BY username`

	err := repo.db.SelectContext(ctx, &users, query)
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (repo *UserRepositoryImpl) UpdateStatus(id, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET status = $1 WHERE id = $2`

	_, err := repo.db.ExecContext(ctx, query, status, id)
	return err
}

func (repo *UserRepositoryImpl) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `DELETE FROM users WHERE id = $1`

	_, err := repo.db.ExecContext(ctx, query, id)
	return err
}
