package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/api/handlers"
	"github.com/viewvault/viewvault/internal/api/middleware"
	"github.com/viewvault/viewvault/internal/config"
	"github.com/viewvault/viewvault/internal/controllers"
	"github.com/viewvault/viewvault/internal/models"
)

// Server represents the HTTP server
type Server struct {
	app    *fiber.App
	port   string
	logger *logrus.Logger
}

// Deps carries everything the routes need
type Deps struct {
	DB           *models.Database
	Duplicates   *controllers.DuplicateController
	TransferCtrl *controllers.TransferController
	BulkCtrl     *controllers.BulkController
	SearchCtrl   *controllers.SearchController
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, deps Deps, logger *logrus.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "viewvault",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	app.Use(middleware.Logging(logger))
	app.Use(middleware.Metrics())

	s := &Server{
		app:    app,
		port:   cfg.ServerPort,
		logger: logger,
	}
	s.setupRoutes(deps)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(deps Deps) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	s.app.Get("/health", healthHandler.Health)

	statusHandler := handlers.NewStatusHandler(deps.DB, s.logger)
	s.app.Get("/status", statusHandler.Status)

	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	listsHandler := handlers.NewListsHandler(deps.DB, s.logger)
	api.Post("/lists", listsHandler.Create)
	api.Get("/lists", listsHandler.List)
	api.Get("/lists/:id", listsHandler.Get)
	api.Put("/lists/:id", listsHandler.Update)
	api.Delete("/lists/:id", listsHandler.Delete)

	itemsHandler := handlers.NewItemsHandler(deps.DB, listsHandler, deps.Duplicates, s.logger)
	api.Get("/lists/:id/items", itemsHandler.GetItems)
	api.Post("/lists/:id/items", itemsHandler.AddItem)
	api.Delete("/lists/:id/items/:itemID", itemsHandler.RemoveItem)
	api.Patch("/lists/:id/items/:itemID", itemsHandler.UpdateItem)

	transferHandler := handlers.NewTransferHandler(deps.DB, deps.TransferCtrl, deps.BulkCtrl, s.logger)
	api.Post("/lists/transfer", transferHandler.Transfer)
	api.Post("/lists/bulk-transfer", transferHandler.BulkTransfer)

	searchHandler := handlers.NewSearchHandler(deps.SearchCtrl, s.logger)
	api.Get("/search", searchHandler.Search)

	notificationsHandler := handlers.NewNotificationsHandler(deps.DB, s.logger)
	api.Get("/notifications", notificationsHandler.List)
	api.Post("/notifications/:id/read", notificationsHandler.MarkRead)
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Test performs an in-process request against the router
func (s *Server) Test(req *http.Request) (*http.Response, error) {
	return s.app.Test(req, -1)
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.port).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(":" + s.port); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithTimeout(10 * time.Second)
}
