package models

import "gorm.io/gorm"

// CartItem is one product in a user's cart. A user has at most one row per
// product: adding the same product again increments Quantity instead of
// inserting a duplicate (see CartRepository.AddOrIncrement).
type CartItem struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int  `gorm:"not null" json:"quantity"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
