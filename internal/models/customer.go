package models

import (
	"database/sql"
	"time"
)

type Customer struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	NationalID string         `db:"national_id"`
	Phone      sql.NullString `db:"phone"`
	Address    sql.NullString `db:"address"`
	Photo      sql.NullString `db:"photo"`
	UserID     string         `db:"user_id"`
	CreatedAt  time.Time      `db:"created_at"`
}
