// Package migrations registers the schema migrations. Importing the
// package for side effects is enough; the runner picks them up in
// registration order.
package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

type createUsers struct{}

func (createUsers) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (createUsers) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.User{})
}

func init() {
	migration.Register("0001_create_users", createUsers{})
}
