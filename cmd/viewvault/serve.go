package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/viewvault/viewvault/internal/api"
	"github.com/viewvault/viewvault/internal/config"
	"github.com/viewvault/viewvault/internal/controllers"
	"github.com/viewvault/viewvault/internal/models"
	"github.com/viewvault/viewvault/internal/scheduler"
	"github.com/viewvault/viewvault/internal/telemetry"
	"github.com/viewvault/viewvault/internal/utils"
)

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting ViewVault")
	logger.WithField("config_dir", filepath.Dir(cfg.DatabaseFile)).Info("Configuration loaded")

	// 3. Setup tracing
	tp := telemetry.Setup("viewvault", version)
	defer func() {
		if err := telemetry.Shutdown(context.Background(), tp); err != nil {
			logger.WithError(err).Warn("Tracer shutdown failed")
		}
	}()

	// 4. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 5. Initialize controllers
	duplicateCtrl := controllers.NewDuplicateController(db, logger)
	expanderCtrl := controllers.NewExpanderController(db, time.Duration(cfg.ExpandCacheTTLMinutes)*time.Minute, logger)
	transferCtrl := controllers.NewTransferController(db, duplicateCtrl, expanderCtrl, logger)
	bulkCtrl := controllers.NewBulkController(db, expanderCtrl, logger)
	searchCtrl := controllers.NewSearchController(db, logger)
	notifyCtrl := controllers.NewNotifyController(db, cfg.NotifyWebhookURL, logger)
	logger.Info("Controllers initialized")

	// 6. Initialize scheduler
	sched := scheduler.NewScheduler(notifyCtrl, cfg.ReleaseCheckCron, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 7. Initialize HTTP server
	server := api.NewServer(cfg, api.Deps{
		DB:           db,
		Duplicates:   duplicateCtrl,
		TransferCtrl: transferCtrl,
		BulkCtrl:     bulkCtrl,
		SearchCtrl:   searchCtrl,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 8. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("ViewVault is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("ViewVault stopped")
	return nil
}
