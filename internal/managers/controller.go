package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/skysentry/skysentry/internal/controllers/restserver"
	"github.com/skysentry/skysentry/internal/storage/latest"
	"github.com/skysentry/skysentry/pkg/config"
	"go.uber.org/zap"
)

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// ControllerManager holds all configured controllers
type ControllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	logger      *zap.SugaredLogger
	controllers []Controller
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, cache *latest.Cache, logger *zap.SugaredLogger) (*ControllerManager, error) {
	cm := &ControllerManager{
		ctx:    ctx,
		wg:     wg,
		logger: logger,
	}

	controllers, err := configProvider.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("error loading controller configuration: %v", err)
	}

	for _, cc := range controllers {
		switch cc.Type {
		case "restserver", "rest":
			if cc.RESTServer == nil {
				return nil, fmt.Errorf("rest controller configured without a rest section")
			}
			controller, err := restserver.NewController(ctx, wg, configProvider, *cc.RESTServer, cache, logger)
			if err != nil {
				return nil, fmt.Errorf("error creating REST controller: %v", err)
			}
			cm.controllers = append(cm.controllers, controller)
		default:
			return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
		}
	}

	return cm, nil
}

// StartControllers starts every configured controller
func (c *ControllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		if err := controller.StartController(); err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}
