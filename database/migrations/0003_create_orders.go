package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

type createOrders struct{}

func (createOrders) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Order{})
}

func (createOrders) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.Order{})
}

func init() {
	migration.Register("0003_create_orders", createOrders{})
}
