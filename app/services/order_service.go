package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/policy"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

var (
	// ErrInsufficientStock is returned when an order asks for more units
	// than the product has left.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned for zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// EventOrderStatusUpdated fires after a status change is persisted.
const EventOrderStatusUpdated = "order.status_updated"

// StatusUpdate is the payload of EventOrderStatusUpdated.
type StatusUpdate struct {
	OrderID uint   `json:"order_id"`
	UserID  uint   `json:"user_id"`
	Status  string `json:"status"`
}

// OrderService runs the order workflow: placement, listing and status
// changes. Placement persists the order first and then hands everything
// slow to the queue, so the request path never waits on SMTP, PDF
// rendering or image work.
type OrderService struct {
	orders     *repositories.OrderRepository
	products   *repositories.ProductRepository
	users      *repositories.UserRepository
	dispatcher queue.Dispatcher
}

func NewOrderService(orders *repositories.OrderRepository, products *repositories.ProductRepository, users *repositories.UserRepository, d queue.Dispatcher) *OrderService {
	return &OrderService{orders: orders, products: products, users: users, dispatcher: d}
}

// Place creates a pending order for the customer and dispatches the
// follow-up jobs. The stock check here is advisory; the authoritative
// decrement happens in the ReduceStock job's conditional update.
func (s *OrderService) Place(actor policy.Actor, productID uint, quantity int) (models.Order, error) {
	if err := policy.Authorize(actor, policy.ActionOrderPlace, policy.Resource{}); err != nil {
		return models.Order{}, err
	}
	if quantity <= 0 {
		return models.Order{}, ErrInvalidQuantity
	}

	product, err := s.products.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	if product.Stock < quantity {
		return models.Order{}, ErrInsufficientStock
	}

	user, err := s.users.FindByID(actor.UserID)
	if err != nil {
		return models.Order{}, fmt.Errorf("load customer %d: %w", actor.UserID, err)
	}

	order := models.Order{
		ProductID:  productID,
		UserID:     actor.UserID,
		Quantity:   quantity,
		TotalPrice: product.Price * float64(quantity),
		Status:     models.StatusPending,
	}
	if err := s.orders.Create(&order); err != nil {
		return models.Order{}, err
	}

	s.dispatchOrderJobs(order, product, user)
	return order, nil
}

// dispatchOrderJobs queues the confirmation email, invoice and stock
// decrement. The order stands regardless: a failed dispatch is logged and
// the job is simply missing, not the order.
func (s *OrderService) dispatchOrderJobs(order models.Order, product models.Product, user models.User) {
	queued := []queue.Job{
		&jobs.SendConfirmationEmail{Email: user.Email, OrderID: order.ID},
		&jobs.GenerateInvoice{
			OrderID:       order.ID,
			CustomerEmail: user.Email,
			ProductName:   product.Name,
			Quantity:      order.Quantity,
			TotalPrice:    order.TotalPrice,
		},
		&jobs.ReduceStock{ProductID: product.ID, Quantity: order.Quantity},
	}
	for _, job := range queued {
		if err := s.dispatcher.Dispatch(job); err != nil {
			logger.Error("dispatch order job", "job", job.Name(), "order_id", order.ID, "error", err)
		}
	}
}

// UpdateStatus moves an order along the pending -> shipped -> delivered
// graph (pending may also be cancelled). Only the seller of the ordered
// product may change the status.
func (s *OrderService) UpdateStatus(actor policy.Actor, orderID uint, status string) (models.Order, error) {
	if !models.ValidStatus(status) {
		return models.Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
	}

	order, err := s.orders.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}

	product, err := s.products.FindByID(order.ProductID)
	if err != nil {
		return models.Order{}, fmt.Errorf("load product %d: %w", order.ProductID, err)
	}

	if err := policy.Authorize(actor, policy.ActionOrderUpdateStatus, policy.Resource{OwnerID: product.SellerID}); err != nil {
		return models.Order{}, err
	}

	if !models.CanTransition(order.Status, status) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, status)
	}

	if err := s.orders.UpdateStatus(orderID, status); err != nil {
		return models.Order{}, err
	}
	order.Status = status

	event.Fire(EventOrderStatusUpdated, StatusUpdate{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  status,
	})
	return order, nil
}

// ListForUser returns a customer's own orders, newest first.
func (s *OrderService) ListForUser(userID uint) ([]models.Order, error) {
	return s.orders.ByUser(userID)
}

// ListForSeller returns the orders placed against a seller's products.
func (s *OrderService) ListForSeller(sellerID uint) ([]models.Order, error) {
	return s.orders.BySeller(sellerID)
}
