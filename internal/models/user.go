package models

import (
	"database/sql"
	"time"
)

const (
	// UserRoleAdmin can manage lender accounts but owns no customers itself.
	UserRoleAdmin = "admin"

	// UserRoleLender is a staff account that owns a disjoint set of customers and loans.
	UserRoleLender = "lender"

	// UserStatusActive indicates that the account can log in and operate normally.
	UserStatusActive = "active"

	// UserStatusInactive indicates that the account has been disabled by an admin.
	// An inactive account is refused at login.
	UserStatusInactive = "inactive"
)

type User struct {
	ID             string         `db:"id"`
	Username       string         `db:"username"`
	HashedPassword string         `db:"hashed_password"`
	Name           sql.NullString `db:"name"`
	Image          sql.NullString `db:"image"`
	Role           string         `db:"role"`
	Status         string         `db:"status"`
	DueDay         int            `db:"due_day"`
	CreatedAt      time.Time      `db:"created_at"`
}
