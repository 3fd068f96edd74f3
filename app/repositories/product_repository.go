package repositories

import (
	"errors"
	"strings"

	"github.com/shashiranjanraj/bazaar/app/models"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a decrement would take stock below
// zero. Callers treat it as terminal: retrying cannot make stock appear.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create persists a new product.
func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// FindByID looks up a product by primary key.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	return product, err
}

// All returns every product, newest first.
func (r *ProductRepository) All() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("created_at DESC").Find(&products).Error
	return products, err
}

// Search returns products whose name contains term, case-insensitively.
func (r *ProductRepository) Search(term string) ([]models.Product, error) {
	var products []models.Product
	pattern := "%" + strings.ToLower(term) + "%"
	err := r.db.Where("LOWER(name) LIKE ?", pattern).Find(&products).Error
	return products, err
}

// BySeller returns every product listed by the given seller.
func (r *ProductRepository) BySeller(sellerID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("seller_id = ?", sellerID).Find(&products).Error
	return products, err
}

// SetImagePath records where the product's uploaded image lives.
func (r *ProductRepository) SetImagePath(id uint, path string) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).
		Update("image_path", path).Error
}

// DecrementStock atomically subtracts quantity from the product's stock.
// The decrement and the availability check are one UPDATE, so two orders
// racing for the last units cannot both win:
//
//	UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?
//
// Returns ErrInsufficientStock when the guard fails and gorm.ErrRecordNotFound
// when the product does not exist.
func (r *ProductRepository) DecrementStock(id uint, quantity int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}
