package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/policy"
	"github.com/shashiranjanraj/bazaar/app/repositories"
)

// CartService manages a customer's cart. Adding the same product twice
// merges into one line with the summed quantity.
type CartService struct {
	cart     *repositories.CartRepository
	products *repositories.ProductRepository
	orders   *OrderService
}

func NewCartService(cart *repositories.CartRepository, products *repositories.ProductRepository, orders *OrderService) *CartService {
	return &CartService{cart: cart, products: products, orders: orders}
}

// Add puts quantity units of a product in the actor's cart, incrementing
// the existing line if there is one.
func (s *CartService) Add(actor policy.Actor, productID uint, quantity int) (models.CartItem, error) {
	if err := policy.Authorize(actor, policy.ActionCartAdd, policy.Resource{}); err != nil {
		return models.CartItem{}, err
	}
	if quantity <= 0 {
		return models.CartItem{}, ErrInvalidQuantity
	}

	if _, err := s.products.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CartItem{}, ErrNotFound
		}
		return models.CartItem{}, err
	}

	return s.cart.AddOrIncrement(actor.UserID, productID, quantity)
}

// List returns the cart contents with products preloaded.
func (s *CartService) List(userID uint) ([]models.CartItem, error) {
	return s.cart.ByUser(userID)
}

// Remove drops one product's line from the cart.
func (s *CartService) Remove(userID, productID uint) error {
	return s.cart.Remove(userID, productID)
}

// Checkout places one order per cart line and empties the cart. Lines that
// fail (sold out in the meantime) are reported and left in the cart.
func (s *CartService) Checkout(actor policy.Actor) ([]models.Order, map[uint]error) {
	items, err := s.cart.ByUser(actor.UserID)
	if err != nil {
		return nil, map[uint]error{0: err}
	}

	var placed []models.Order
	failed := make(map[uint]error)
	for _, item := range items {
		order, err := s.orders.Place(actor, item.ProductID, item.Quantity)
		if err != nil {
			failed[item.ProductID] = err
			continue
		}
		placed = append(placed, order)
		if err := s.cart.Remove(actor.UserID, item.ProductID); err != nil {
			failed[item.ProductID] = err
		}
	}
	if len(failed) == 0 {
		failed = nil
	}
	return placed, failed
}
