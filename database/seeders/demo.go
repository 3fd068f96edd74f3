package seeders

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
)

func init() {
	Register("demo_marketplace", SeedDemoMarketplace)
}

// SeedDemoMarketplace creates a seller, a customer and a few products for
// local development. Idempotent: it skips when the seller already exists.
func SeedDemoMarketplace(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", "seller@bazaar.test").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("password123")
	if err != nil {
		return err
	}

	seller := models.User{Username: "demoseller", Email: "seller@bazaar.test", Password: hash, Role: models.RoleSeller}
	if err := db.Create(&seller).Error; err != nil {
		return err
	}

	customer := models.User{Username: "democustomer", Email: "customer@bazaar.test", Password: hash, Role: models.RoleCustomer}
	if err := db.Create(&customer).Error; err != nil {
		return err
	}

	products := []models.Product{
		{Name: "Laptop", Description: "14-inch ultrabook", Price: 999.99, Stock: 10, SellerID: seller.ID},
		{Name: "Phone", Description: "Budget smartphone", Price: 299.00, Stock: 25, SellerID: seller.ID},
		{Name: "Laptop Stand", Description: "Aluminium stand", Price: 39.50, Stock: 100, SellerID: seller.ID},
	}
	return db.Create(&products).Error
}
