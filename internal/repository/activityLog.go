package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rcampos/loanbook/internal/models"
)

const (
	ActivityLogUserEntity = "user"
	ActivityLogLoanEntity = "loan"
)

type ActivityRepository interface {
	Insert(log *models.ActivityLog) (*models.ActivityLog, error)
}

type ActivityRepositoryImpl struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

func (repo *ActivityRepositoryImpl) Insert(log *models.ActivityLog) (*models.ActivityLog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		INSERT INTO activity_logs (user_id, entity, entity_id, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := repo.db.QueryRowContext(ctx, query,
		log.UserID,
		log.Entity,
		log.EntityId,
		log.Description,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return nil, err
	}

	return log, nil
}
