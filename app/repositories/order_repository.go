package repositories

import (
	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// OrderRepository handles database operations for Order.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order.
func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// FindByID looks up an order, preloading its product.
func (r *OrderRepository) FindByID(id uint) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Product").First(&order, id).Error
	return order, err
}

// ByUser returns every order placed by the given customer, newest first.
func (r *OrderRepository) ByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Product").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// BySeller returns every order placed against the given seller's products.
func (r *OrderRepository) BySeller(sellerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Product").
		Joins("JOIN products ON products.id = orders.product_id").
		Where("products.seller_id = ?", sellerID).
		Order("orders.created_at DESC").Find(&orders).Error
	return orders, err
}

// UpdateStatus persists a new status for the order.
func (r *OrderRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).
		Update("status", status).Error
}

// CountForUser returns how many orders the user has placed. Used by tests
// to assert that failed placements create nothing.
func (r *OrderRepository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
