package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Devices     []DeviceYAML     `yaml:"devices"`
		Thresholds  *ThresholdsYAML  `yaml:"thresholds,omitempty"`
		Heater      *HeaterYAML      `yaml:"heater,omitempty"`
		Location    LocationYAML     `yaml:"location,omitempty"`
		Safety      SafetyYAML       `yaml:"safety,omitempty"`
		Storage     StorageYAML      `yaml:"storage,omitempty"`
		Controllers []ControllerYAML `yaml:"controllers,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Devices:     make([]DeviceData, len(yamlConfig.Devices)),
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	// Convert devices
	for i, device := range yamlConfig.Devices {
		config.Devices[i] = DeviceData{
			Name:            device.Name,
			Type:            device.Type,
			Hostname:        device.Hostname,
			Port:            device.Port,
			SerialDevice:    device.SerialDevice,
			Baud:            device.Baud,
			CaptureInterval: device.CaptureInterval,
			Samples:         device.Samples,
		}
		if device.SkyTemp != nil {
			config.Devices[i].SkyTemp = &SkyTempData{
				K1: device.SkyTemp.K1,
				K2: device.SkyTemp.K2,
				K3: device.SkyTemp.K3,
				K4: device.SkyTemp.K4,
				K5: device.SkyTemp.K5,
				K6: device.SkyTemp.K6,
				K7: device.SkyTemp.K7,
			}
		}
	}

	// Convert thresholds and heater tunables
	if yamlConfig.Thresholds != nil {
		config.Thresholds = ThresholdsData{
			Cloudy:     yamlConfig.Thresholds.Cloudy,
			VeryCloudy: yamlConfig.Thresholds.VeryCloudy,
			Windy:      yamlConfig.Thresholds.Windy,
			VeryWindy:  yamlConfig.Thresholds.VeryWindy,
			Gusty:      yamlConfig.Thresholds.Gusty,
			VeryGusty:  yamlConfig.Thresholds.VeryGusty,
			Wet:        yamlConfig.Thresholds.Wet,
			Rainy:      yamlConfig.Thresholds.Rainy,
		}
	}
	if yamlConfig.Heater != nil {
		config.Heater = HeaterData{
			RainThresholdFreq: yamlConfig.Heater.RainThresholdFreq,
			PWMMax:            yamlConfig.Heater.PWMMax,
			PWMMid:            yamlConfig.Heater.PWMMid,
			PWMLow:            yamlConfig.Heater.PWMLow,
			Hysteresis:        yamlConfig.Heater.Hysteresis,
			LowTemp:           yamlConfig.Heater.LowTemp,
			LowDelta:          yamlConfig.Heater.LowDelta,
			HighTemp:          yamlConfig.Heater.HighTemp,
			HighDelta:         yamlConfig.Heater.HighDelta,
			ImpulseTemp:       yamlConfig.Heater.ImpulseTemp,
			ImpulseDuration:   yamlConfig.Heater.ImpulseDuration,
			ImpulseCycle:      yamlConfig.Heater.ImpulseCycle,
			MinPower:          yamlConfig.Heater.MinPower,
		}
	}

	config.Location = LocationData{
		Name:      yamlConfig.Location.Name,
		Latitude:  yamlConfig.Location.Latitude,
		Longitude: yamlConfig.Location.Longitude,
		Elevation: yamlConfig.Location.Elevation,
		Timezone:  yamlConfig.Location.Timezone,
	}

	config.Safety = SafetyData{
		DelayMinutes: yamlConfig.Safety.DelayMinutes,
		Ignore:       yamlConfig.Safety.Ignore,
	}

	// Convert storage
	config.Storage = StorageData{}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}

	// Convert controllers
	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}

		if controller.RESTServer != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				Cert:           controller.RESTServer.Cert,
				Key:            controller.RESTServer.Key,
				Port:           controller.RESTServer.Port,
				ListenAddr:     controller.RESTServer.ListenAddr,
				PullFromDevice: controller.RESTServer.PullFromDevice,
			}
		}
	}

	ApplyDefaults(config)

	y.config = config
	return config, nil
}

// GetDevices returns device configurations
func (y *YAMLProvider) GetDevices() ([]DeviceData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Devices, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// GetControllers returns controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Controllers, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the on-disk format
type DeviceYAML struct {
	Name            string       `yaml:"name"`
	Type            string       `yaml:"type,omitempty"`
	Hostname        string       `yaml:"hostname,omitempty"`
	Port            string       `yaml:"port,omitempty"`
	SerialDevice    string       `yaml:"serialdevice,omitempty"`
	Baud            int          `yaml:"baud,omitempty"`
	CaptureInterval int          `yaml:"capture-interval,omitempty"`
	Samples         int          `yaml:"samples,omitempty"`
	SkyTemp         *SkyTempYAML `yaml:"skytemp,omitempty"`
}

type SkyTempYAML struct {
	K1 float64 `yaml:"k1"`
	K2 float64 `yaml:"k2"`
	K3 float64 `yaml:"k3"`
	K4 float64 `yaml:"k4"`
	K5 float64 `yaml:"k5"`
	K6 float64 `yaml:"k6"`
	K7 float64 `yaml:"k7"`
}

type ThresholdsYAML struct {
	Cloudy     float64 `yaml:"cloudy,omitempty"`
	VeryCloudy float64 `yaml:"very-cloudy,omitempty"`
	Windy      float64 `yaml:"windy,omitempty"`
	VeryWindy  float64 `yaml:"very-windy,omitempty"`
	Gusty      float64 `yaml:"gusty,omitempty"`
	VeryGusty  float64 `yaml:"very-gusty,omitempty"`
	Wet        int     `yaml:"wet,omitempty"`
	Rainy      int     `yaml:"rainy,omitempty"`
}

type HeaterYAML struct {
	RainThresholdFreq float64 `yaml:"rain-threshold-freq,omitempty"`
	PWMMax            float64 `yaml:"pwm-max,omitempty"`
	PWMMid            float64 `yaml:"pwm-mid,omitempty"`
	PWMLow            float64 `yaml:"pwm-low,omitempty"`
	Hysteresis        float64 `yaml:"hysteresis,omitempty"`
	LowTemp           float64 `yaml:"low-temp,omitempty"`
	LowDelta          float64 `yaml:"low-delta,omitempty"`
	HighTemp          float64 `yaml:"high-temp,omitempty"`
	HighDelta         float64 `yaml:"high-delta,omitempty"`
	ImpulseTemp       float64 `yaml:"impulse-temp,omitempty"`
	ImpulseDuration   float64 `yaml:"impulse-duration,omitempty"`
	ImpulseCycle      int     `yaml:"impulse-cycle,omitempty"`
	MinPower          float64 `yaml:"min-power,omitempty"`
}

type LocationYAML struct {
	Name      string  `yaml:"name,omitempty"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Elevation float64 `yaml:"elevation,omitempty"`
	Timezone  string  `yaml:"timezone,omitempty"`
}

type SafetyYAML struct {
	DelayMinutes float64  `yaml:"delay-minutes,omitempty"`
	Ignore       []string `yaml:"ignore,omitempty"`
}

type StorageYAML struct {
	TimescaleDB *TimescaleDBYAML `yaml:"timescaledb,omitempty"`
}

type TimescaleDBYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type ControllerYAML struct {
	Type       string          `yaml:"type,omitempty"`
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
}

type RESTServerYAML struct {
	Cert           string `yaml:"cert,omitempty"`
	Key            string `yaml:"key,omitempty"`
	Port           int    `yaml:"port,omitempty"`
	ListenAddr     string `yaml:"listen-addr,omitempty"`
	PullFromDevice string `yaml:"pull-from-device,omitempty"`
}
