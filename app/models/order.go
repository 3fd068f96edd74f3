package models

import "gorm.io/gorm"

// Order statuses. The transition graph is enforced by CanTransition:
//
//	pending → shipped → delivered
//	pending → cancelled
const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

var transitions = map[string][]string{
	StatusPending: {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered},
}

// Order records a customer buying a quantity of one product.
// TotalPrice is fixed at creation time (quantity × unit price); later price
// changes on the product do not affect existing orders.
type Order struct {
	gorm.Model
	ProductID  uint    `gorm:"not null;index" json:"product_id"`
	UserID     uint    `gorm:"not null;index" json:"user_id"`
	Quantity   int     `gorm:"not null"       json:"quantity"`
	TotalPrice float64 `gorm:"not null"       json:"total_price"`
	Status     string  `gorm:"size:50;default:pending" json:"status"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// ValidStatus reports whether s names a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
// Delivered and cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
