package models

import "gorm.io/gorm"

// Product is an item listed for sale by a seller.
//
// Stock must never go negative: every decrement goes through
// ProductRepository.DecrementStock, a single conditional UPDATE that fails
// instead of underflowing when two orders race for the last units.
type Product struct {
	gorm.Model
	Name        string  `gorm:"size:255;not null;index" json:"name"`
	Description string  `gorm:"type:text"              json:"description"`
	Price       float64 `gorm:"not null;default:0"     json:"price"`
	Stock       int     `gorm:"not null;default:0"     json:"stock"`
	SellerID    uint    `gorm:"not null;index"         json:"seller_id"`
	ImagePath   string  `gorm:"size:512"               json:"image_path,omitempty"`
}
