package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
)

type createCartItems struct{}

func (createCartItems) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.CartItem{})
}

func (createCartItems) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.CartItem{})
}

func init() {
	migration.Register("0004_create_cart_items", createCartItems{})
}
