package seeder

import (
	"github.com/rcampos/loanbook/internal/repository"
)

type Seeder struct {
	DB repository.Database

	// AdminPassword is only used when the default admin account has to be
	// created from scratch.
	AdminPassword string
}

func New(db repository.Database, adminPassword string) *Seeder {
	return &Seeder{
		DB:            db,
		AdminPassword: adminPassword,
	}
}

func (seeder *Seeder) Run() error {
	return seeder.seedAdminUser()
}
