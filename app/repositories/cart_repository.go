package repositories

import (
	"errors"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// CartRepository handles database operations for CartItem.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// AddOrIncrement adds quantity of a product to the user's cart. If the
// product is already in the cart the row's quantity grows; otherwise a new
// row is inserted. The (user, product) unique index backs this up at the
// database level.
func (r *CartRepository) AddOrIncrement(userID, productID uint, quantity int) (models.CartItem, error) {
	var item models.CartItem

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).
			First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
			return tx.Create(&item).Error
		case err != nil:
			return err
		}

		item.Quantity += quantity
		return tx.Model(&item).Update("quantity", item.Quantity).Error
	})

	return item, err
}

// ByUser returns the user's cart with products preloaded.
func (r *CartRepository) ByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.Preload("Product").Where("user_id = ?", userID).Find(&items).Error
	return items, err
}

// Remove deletes one product from the user's cart. Removing an absent
// product is not an error.
func (r *CartRepository) Remove(userID, productID uint) error {
	return r.db.Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}
