package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
)

type testApp struct {
	db      *gorm.DB
	handler http.Handler
	queued  *recordingDispatcher
}

type recordingDispatcher struct {
	jobs []queue.Job
}

func (d *recordingDispatcher) Dispatch(job queue.Job) error {
	d.jobs = append(d.jobs, job)
	return nil
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Order{}, &models.CartItem{},
	))

	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)
	cart := repositories.NewCartRepository(db)

	dispatcher := &recordingDispatcher{}
	disk := storage.NewLocal(t.TempDir(), "/files")

	authSvc := services.NewAuthService(users)
	catalogSvc := services.NewCatalogService(products, nil, disk, dispatcher)
	orderSvc := services.NewOrderService(orders, products, users, dispatcher)
	cartSvc := services.NewCartService(cart, products, orderSvc)

	mgr := queue.NewManager(queue.NewMemoryDriver())

	r := router.New()
	routes.Register(r, routes.Controllers{
		Auth:    controllers.NewAuthController(authSvc),
		Product: controllers.NewProductController(catalogSvc),
		Cart:    controllers.NewCartController(cartSvc),
		Order:   controllers.NewOrderController(orderSvc),
		Admin:   controllers.NewAdminController(mgr),
	})

	return &testApp{db: db, handler: r.Handler(), queued: dispatcher}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// register creates an account through the API and returns an access token.
func (a *testApp) register(t *testing.T, username, role string) string {
	t.Helper()
	email := username + "@example.com"
	rec := a.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "sup3rsecret",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    email,
		"password": "sup3rsecret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Data struct {
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Data.Tokens.AccessToken)
	return out.Data.Tokens.AccessToken
}

func (a *testApp) createProduct(t *testing.T, token, name string, price float64, stock int) uint {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/products", token, map[string]interface{}{
		"name":  name,
		"price": price,
		"stock": stock,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Data.ID
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "x",
		"email":    "not-an-email",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "customer")

	rec := app.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductCreationRequiresSeller(t *testing.T) {
	app := newTestApp(t)
	customer := app.register(t, "buyer", "customer")

	rec := app.do(t, http.MethodPost, "/api/products", customer, map[string]interface{}{
		"name": "Laptop", "price": 100.0, "stock": 5,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/products", "", map[string]interface{}{
		"name": "Laptop", "price": 100.0, "stock": 5,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBrowseAndSearch(t *testing.T) {
	app := newTestApp(t)
	seller := app.register(t, "vendor", "seller")
	app.createProduct(t, seller, "Laptop", 999.99, 5)
	app.createProduct(t, seller, "Phone", 299, 10)

	rec := app.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/products?search=laptop", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Laptop")
	require.NotContains(t, rec.Body.String(), "Phone")
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)
	seller := app.register(t, "vendor", "seller")
	customer := app.register(t, "buyer", "customer")
	productID := app.createProduct(t, seller, "Laptop", 100, 5)

	// Place.
	rec := app.do(t, http.MethodPost, fmt.Sprintf("/api/products/%d/order", productID), customer,
		map[string]int{"quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, app.queued.jobs, 3)

	var placed struct {
		Data struct {
			ID     uint   `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	require.Equal(t, models.StatusPending, placed.Data.Status)

	// Oversell conflicts.
	rec = app.do(t, http.MethodPost, fmt.Sprintf("/api/products/%d/order", productID), customer,
		map[string]int{"quantity": 99})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Seller ships it.
	rec = app.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", placed.Data.ID), seller,
		map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Customer may not change status.
	rec = app.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", placed.Data.ID), customer,
		map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Skipping backwards is rejected.
	rec = app.do(t, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", placed.Data.ID), seller,
		map[string]string{"status": "pending"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCartFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	seller := app.register(t, "vendor", "seller")
	customer := app.register(t, "buyer", "customer")
	productID := app.createProduct(t, seller, "Laptop", 100, 5)

	rec := app.do(t, http.MethodPost, "/api/cart", customer, map[string]interface{}{
		"product_id": productID, "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/cart", customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Laptop")

	rec = app.do(t, http.MethodPost, "/api/cart/checkout", customer, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/cart", customer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "Laptop")
}

func TestFailedJobsEndpointRequiresSeller(t *testing.T) {
	app := newTestApp(t)
	seller := app.register(t, "vendor", "seller")
	customer := app.register(t, "buyer", "customer")

	rec := app.do(t, http.MethodGet, "/api/admin/failed-jobs", customer, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/admin/failed-jobs", seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
