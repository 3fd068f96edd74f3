package jobs

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
)

// ReduceStock decrements a product's stock after an order is placed.
// The decrement is conditional at the database level, so a product that
// sold out between order placement and job execution fails here instead
// of going negative. Insufficient stock and missing products are terminal:
// retrying cannot make stock appear.
type ReduceStock struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`

	products *repositories.ProductRepository
}

func (ReduceStock) Name() string { return NameReduceStock }

func (j *ReduceStock) Handle() error {
	err := j.products.DecrementStock(j.ProductID, j.Quantity)
	switch {
	case err == nil:
		logger.Info("stock reduced", "product_id", j.ProductID, "quantity", j.Quantity)
		event.Fire(EventStockChanged, j.ProductID)
		return nil
	case errors.Is(err, repositories.ErrInsufficientStock):
		return queue.Terminal(fmt.Errorf("reduce stock for product %d: %w", j.ProductID, err))
	case errors.Is(err, gorm.ErrRecordNotFound):
		return queue.Terminal(fmt.Errorf("reduce stock: product %d not found", j.ProductID))
	default:
		return fmt.Errorf("reduce stock for product %d: %w", j.ProductID, err)
	}
}
