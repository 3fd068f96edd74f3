// Package server boots the application: config, database, cache, queue,
// routes, and the HTTP listener with graceful shutdown.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/controllers"
	"github.com/shashiranjanraj/bazaar/app/jobs"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/routes"
	"github.com/shashiranjanraj/bazaar/app/services"
	"github.com/shashiranjanraj/bazaar/config"
	_ "github.com/shashiranjanraj/bazaar/database/migrations"
	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/shashiranjanraj/bazaar/pkg/database"
	"github.com/shashiranjanraj/bazaar/pkg/event"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/mail"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/migration"
	"github.com/shashiranjanraj/bazaar/pkg/queue"
	"github.com/shashiranjanraj/bazaar/pkg/reqid"
	"github.com/shashiranjanraj/bazaar/pkg/router"
	"github.com/shashiranjanraj/bazaar/pkg/storage"
	"github.com/shashiranjanraj/bazaar/pkg/ws"
)

// App holds the assembled application.
type App struct {
	DB      *gorm.DB
	Cache   *cache.Store
	Queue   *queue.Manager
	Router  *router.Router
	Hub     *ws.Hub
	workers context.CancelFunc
}

// New builds the whole object graph. Workers are not started yet; call
// Start (or StartWorkers for a worker-only process).
func New() (*App, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	db, err := database.Connect()
	if err != nil {
		return nil, err
	}

	runner := migration.New(db)
	if err := runner.Run(); err != nil {
		return nil, err
	}

	store, err := cache.Connect()
	if err != nil {
		logger.Warn("redis unavailable, cache disabled", "error", err)
	}

	disk, err := storage.FromConfig()
	if err != nil {
		return nil, err
	}

	var driver queue.Driver
	if config.QueueDriver() == "redis" && store != nil && store.Client() != nil {
		driver = queue.NewRedisDriver(store.Client())
	} else {
		driver = queue.NewMemoryDriver()
	}
	manager := queue.NewManager(driver,
		queue.WithMaxRetry(config.QueueMaxRetry()),
		queue.WithDeadLetter(db),
	)

	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	orders := repositories.NewOrderRepository(db)
	cartRepo := repositories.NewCartRepository(db)

	mailer := mail.NewSMTPMailer()
	jobs.RegisterAll(manager, jobs.Deps{
		Mailer:   mailer,
		Disk:     disk,
		Products: products,
	})

	authSvc := services.NewAuthService(users)
	catalogSvc := services.NewCatalogService(products, store, disk, manager)
	orderSvc := services.NewOrderService(orders, products, users, manager)
	cartSvc := services.NewCartService(cartRepo, products, orderSvc)

	hub := ws.NewHub()
	go hub.Run()
	wireOrderEvents(hub)

	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(120, time.Minute),
	)

	routes.Register(r, routes.Controllers{
		Auth:    controllers.NewAuthController(authSvc),
		Product: controllers.NewProductController(catalogSvc),
		Cart:    controllers.NewCartController(cartSvc),
		Order:   controllers.NewOrderController(orderSvc),
		Admin:   controllers.NewAdminController(manager),
		Hub:     hub,
	})

	return &App{
		DB:     db,
		Cache:  store,
		Queue:  manager,
		Router: r,
		Hub:    hub,
	}, nil
}

// wireOrderEvents pushes order status changes to websocket subscribers.
func wireOrderEvents(hub *ws.Hub) {
	event.Listen(services.EventOrderStatusUpdated, func(payload interface{}) {
		msg, err := json.Marshal(payload)
		if err != nil {
			logger.Error("marshal order status event", "error", err)
			return
		}
		hub.Broadcast <- msg
	})
}

// StartWorkers spins up the queue workers.
func (a *App) StartWorkers(n int) {
	ctx, cancel := context.WithCancel(context.Background())
	a.workers = cancel
	a.Queue.StartWorkers(ctx, n)
}

// Start runs workers plus the HTTP server and blocks until SIGINT or
// SIGTERM, then drains in-flight requests and stops the queue.
func (a *App) Start() error {
	a.StartWorkers(config.QueueWorkers())

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           a.Router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		a.Shutdown()
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown", "error", err)
	}

	a.Shutdown()
	return nil
}

// Shutdown stops the workers and waits for in-flight jobs.
func (a *App) Shutdown() {
	if a.workers != nil {
		a.workers()
	}
	a.Queue.Stop()
}
