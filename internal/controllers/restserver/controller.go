// Package restserver serves current and historical sky condition data
// over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/skysentry/skysentry/internal/database"
	"github.com/skysentry/skysentry/internal/log"
	"github.com/skysentry/skysentry/internal/storage/latest"
	"github.com/skysentry/skysentry/pkg/config"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	restConfig     config.RESTServerData
	Server         http.Server
	DB             *database.Client
	DBEnabled      bool
	Cache          *latest.Cache
	Devices        []config.DeviceData
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, rc config.RESTServerData, cache *latest.Cache, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		restConfig:     rc,
		Cache:          cache,
		logger:         logger,
	}

	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	ctrl.Devices = cfgData.Devices

	if rc.PullFromDevice != "" && !ctrl.validatePullFromStation(rc.PullFromDevice) {
		return nil, fmt.Errorf("pull-from-device %q does not exist in the device configuration", rc.PullFromDevice)
	}

	// If a listen address was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest listen-addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	if rc.Port == 0 {
		logger.Info("rest port not provided; defaulting to 8080")
		rc.Port = 8080
	}

	// If a TimescaleDB database was configured, set up a DB client so that
	// the handlers can retrieve historical data
	if cfgData.Storage.TimescaleDB != nil && cfgData.Storage.TimescaleDB.ConnectionString != "" {
		ctrl.DB = database.NewClient(cfgData.Storage.TimescaleDB.ConnectionString, logger)
		if err := ctrl.DB.Connect(); err != nil {
			return nil, fmt.Errorf("REST server could not connect to database: %v", err)
		}
		ctrl.DBEnabled = true
	}

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/latest", c.handlers.GetLatest)
	router.HandleFunc("/safety", c.handlers.GetSafety)
	router.HandleFunc("/span/{span}", c.handlers.GetSpan)

	return router
}

// validatePullFromStation validates that the station name exists in config
func (c *Controller) validatePullFromStation(pullFromDevice string) bool {
	for _, station := range c.Devices {
		if station.Name == pullFromDevice {
			return true
		}
	}
	return false
}
