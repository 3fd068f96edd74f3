package services

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const (
	productListCacheKey = "products:all"
	productListCacheTTL = time.Minute
)

// ProductCache is the slice of the cache the catalog uses. *cache.Store
// satisfies it; tests substitute a recording fake.
type ProductCache interface {
	Get(key string, dest interface{}) bool
	Set(key string, value interface{}, ttl time.Duration) error
	Forget(key string) error
}

// CatalogService owns product listing, search and image handling.
type CatalogService struct {
	products   *repositories.ProductRepository
	cache      ProductCache
	disk       storage.Disk
	dispatcher queue.Dispatcher
}

func NewCatalogService(products *repositories.ProductRepository, store ProductCache, disk storage.Disk, d queue.Dispatcher) *CatalogService {
	s := &CatalogService{products: products, cache: store, disk: disk, dispatcher: d}
	// Stock changes happen inside the queue worker, which has no handle on
	// this service. It announces them on the event bus instead and the
	// listing cache is dropped here.
	event.Listen(jobs.EventStockChanged, func(interface{}) { s.invalidateList() })
	return s
}

// Create lists a new product for the given seller.
func (s *CatalogService) Create(sellerID uint, name, description string, price float64, stock int) (models.Product, error) {
	product := models.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		SellerID:    sellerID,
	}
	if err := s.products.Create(&product); err != nil {
		return models.Product{}, err
	}
	s.invalidateList()
	return product, nil
}

// List returns every product, or only those matching term when it is
// non-empty. Matching is case-insensitive on the name. The full listing is
// cached briefly; searches always hit the database.
func (s *CatalogService) List(term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if term != "" {
		return s.products.Search(term)
	}

	var cached []models.Product
	if s.cache != nil && s.cache.Get(productListCacheKey, &cached) {
		return cached, nil
	}

	list, err := s.products.All()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(productListCacheKey, list, productListCacheTTL); err != nil {
			logger.Warn("cache product list", "error", err)
		}
	}
	return list, nil
}

// Find returns one product by id.
func (s *CatalogService) Find(id uint) (models.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	return product, nil
}

// BySeller returns the seller's own listings.
func (s *CatalogService) BySeller(sellerID uint) ([]models.Product, error) {
	return s.products.BySeller(sellerID)
}

// AttachImage stores an uploaded product image, records its path and queues
// thumbnail generation. Only the product's own seller may call it; the
// caller enforces that through the policy.
func (s *CatalogService) AttachImage(productID uint, filename string, data []byte) (models.Product, error) {
	product, err := s.Find(productID)
	if err != nil {
		return models.Product{}, err
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" && ext != ".gif" {
		return models.Product{}, fmt.Errorf("unsupported image type %q", ext)
	}

	imagePath := fmt.Sprintf("products/%d%s", productID, ext)
	if err := s.disk.Put(imagePath, data); err != nil {
		return models.Product{}, fmt.Errorf("store image: %w", err)
	}
	if err := s.products.SetImagePath(productID, imagePath); err != nil {
		return models.Product{}, err
	}
	s.invalidateList()

	thumbPath := fmt.Sprintf("products/%d_thumb%s", productID, ext)
	if err := s.dispatcher.Dispatch(&jobs.CreateThumbnail{
		SourcePath:    imagePath,
		ThumbnailPath: thumbPath,
	}); err != nil {
		logger.Error("dispatch thumbnail job", "product_id", productID, "error", err)
	}

	product.ImagePath = imagePath
	return product, nil
}

func (s *CatalogService) invalidateList() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Forget(productListCacheKey); err != nil {
		logger.Warn("invalidate product list cache", "error", err)
	}
}
