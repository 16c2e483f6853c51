package seeder

import (
	"log"

	"github.com/cradoe/gopass"
	"github.com/rcampos/loanbook/internal/models"
)

const defaultAdminUsername = "admin"

// seedAdminUser makes sure a fresh deployment has an administrator to log in
// with. Existing installs are left untouched.
func (seeder *Seeder) seedAdminUser() error {
	_, found, err := seeder.DB.User().GetByUsername(defaultAdminUsername)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	hashedPassword, err := gopass.Hash(seeder.AdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:       defaultAdminUsername,
		HashedPassword: hashedPassword,
		Role:           models.UserRoleAdmin,
		Status:         models.UserStatusActive,
		DueDay:         10,
	}

	_, err = seeder.DB.User().Insert(admin)
	if err != nil {
		return err
	}

	log.Println("Default admin created")
	return nil
}
