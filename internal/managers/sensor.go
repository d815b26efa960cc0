// Package managers wires configured sensors, storage backends, and
// controllers together and owns their lifecycles.
package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/skysentry/skysentry/internal/log"
	"github.com/skysentry/skysentry/internal/sensors"
	"github.com/skysentry/skysentry/internal/sensors/aag"
	"github.com/skysentry/skysentry/internal/types"
	"github.com/skysentry/skysentry/pkg/config"
	"go.uber.org/zap"
)

// SensorManager holds all configured cloud sensors
type SensorManager struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	distributor    chan types.Reading
	logger         *zap.SugaredLogger
	stations       map[string]sensors.CloudSensor
}

// NewSensorManager creates a SensorManager object, populated with all configured sensors
func NewSensorManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, distributor chan types.Reading, logger *zap.SugaredLogger) (*SensorManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	sm := &SensorManager{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		distributor:    distributor,
		logger:         logger,
		stations:       make(map[string]sensors.CloudSensor),
	}

	for _, deviceConfig := range cfgData.Devices {
		station, err := createStationFromConfig(ctx, wg, configProvider, deviceConfig, distributor, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating sensor [%s]: %w", deviceConfig.Name, err)
		}
		sm.stations[deviceConfig.Name] = station
	}

	return sm, nil
}

// StartSensors starts every configured sensor
func (s *SensorManager) StartSensors() error {
	for name, station := range s.stations {
		s.logger.Infof("Starting sensor [%v]...", name)
		if err := station.StartCloudSensor(); err != nil {
			return fmt.Errorf("failed to start sensor [%s]: %w", name, err)
		}
	}
	return nil
}

// createStationFromConfig creates the appropriate sensor driver based on device type
func createStationFromConfig(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, deviceConfig config.DeviceData, distributor chan types.Reading, logger *zap.SugaredLogger) (sensors.CloudSensor, error) {
	switch deviceConfig.Type {
	case "aag", "cloudwatcher":
		log.Infof("Initializing CloudWatcher sensor [%v]", deviceConfig.Name)
		return aag.NewStation(ctx, wg, configProvider, deviceConfig.Name, distributor, logger), nil
	default:
		return nil, fmt.Errorf("unknown sensor type: %s", deviceConfig.Type)
	}
}
