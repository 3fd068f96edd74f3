package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

type createProducts struct{}

func (createProducts) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (createProducts) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Product{})
}

func init() {
	migration.Register("0002_create_products", createProducts{})
}
