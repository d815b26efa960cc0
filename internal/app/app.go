// Package app assembles the daemon: config, managers, and lifecycle.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/skysentry/skysentry/internal/log"
	"github.com/skysentry/skysentry/internal/managers"
	"github.com/skysentry/skysentry/internal/safety"
	"github.com/skysentry/skysentry/internal/storage/latest"
	"github.com/skysentry/skysentry/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfgData, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	// The safety evaluator and latest-reading cache are shared between
	// the storage fan-out and the REST controller
	evaluator := safety.NewEvaluator(cfgData.Thresholds, cfgData.Safety)
	cache := latest.New(evaluator)

	// Initialize the storage manager
	storageManager, err := managers.NewStorageManager(ctx, &wg, cfgData, cache)
	if err != nil {
		return err
	}

	// Initialize the sensor manager
	sm, err := managers.NewSensorManager(ctx, &wg, a.configProvider, storageManager.ReadingDistributor, a.logger)
	if err != nil {
		return err
	}
	go sm.StartSensors()

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, a.configProvider, cache, a.logger)
	if err != nil {
		return err
	}
	if err := cm.StartControllers(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
