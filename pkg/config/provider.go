package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDevices() ([]DeviceData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Devices     []DeviceData     `json:"devices"`
	Thresholds  ThresholdsData   `json:"thresholds,omitempty"`
	Heater      HeaterData       `json:"heater,omitempty"`
	Location    LocationData     `json:"location,omitempty"`
	Safety      SafetyData       `json:"safety,omitempty"`
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// DeviceData holds configuration specific to cloud sensor devices
type DeviceData struct {
	Name            string       `json:"name"`
	Type            string       `json:"type,omitempty"`
	Hostname        string       `json:"hostname,omitempty"`
	Port            string       `json:"port,omitempty"`
	SerialDevice    string       `json:"serial_device,omitempty"`
	Baud            int          `json:"baud,omitempty"`
	CaptureInterval int          `json:"capture_interval,omitempty"` // seconds between capture cycles
	Samples         int          `json:"samples,omitempty"`          // IR samples aggregated per cycle
	SkyTemp         *SkyTempData `json:"skytemp,omitempty"`
}

// SkyTempData holds the seven drift-model calibration coefficients for a
// sensor unit. A nil SkyTempData on a device means factory defaults.
type SkyTempData struct {
	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
	K3 float64 `json:"k3"`
	K4 float64 `json:"k4"`
	K5 float64 `json:"k5"`
	K6 float64 `json:"k6"`
	K7 float64 `json:"k7"`
}

// ThresholdsData holds the classification and safety boundary values.
// Cloudy and VeryCloudy are corrected sky temperatures in °C; wind values
// are km/h; Wet and Rainy are rain-sensor frequencies.
type ThresholdsData struct {
	Cloudy     float64 `json:"cloudy,omitempty"`
	VeryCloudy float64 `json:"very_cloudy,omitempty"`
	Windy      float64 `json:"windy,omitempty"`
	VeryWindy  float64 `json:"very_windy,omitempty"`
	Gusty      float64 `json:"gusty,omitempty"`
	VeryGusty  float64 `json:"very_gusty,omitempty"`
	Wet        int     `json:"wet,omitempty"`
	Rainy      int     `json:"rainy,omitempty"`
}

// HeaterData holds the rain-sensor heater tunables. The daemon records
// these and hands them to the sensor at connect time; the PWM control
// loop itself runs on the sensor's firmware.
type HeaterData struct {
	RainThresholdFreq float64 `json:"rain_threshold_freq,omitempty"`
	PWMMax            float64 `json:"pwm_max,omitempty"`
	PWMMid            float64 `json:"pwm_mid,omitempty"`
	PWMLow            float64 `json:"pwm_low,omitempty"`
	Hysteresis        float64 `json:"hysteresis,omitempty"`
	LowTemp           float64 `json:"low_temp,omitempty"`
	LowDelta          float64 `json:"low_delta,omitempty"`
	HighTemp          float64 `json:"high_temp,omitempty"`
	HighDelta         float64 `json:"high_delta,omitempty"`
	ImpulseTemp       float64 `json:"impulse_temp,omitempty"`
	ImpulseDuration   float64 `json:"impulse_duration,omitempty"` // seconds
	ImpulseCycle      int     `json:"impulse_cycle,omitempty"`    // seconds
	MinPower          float64 `json:"min_power,omitempty"`        // initial PWM at connect
}

// LocationData holds the observing site coordinates
type LocationData struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"` // meters
	Timezone  string  `json:"timezone,omitempty"`
}

// SafetyData holds the unsafe-condition evaluation settings
type SafetyData struct {
	DelayMinutes float64  `json:"delay_minutes,omitempty"` // safe-hold delay after unsafe
	Ignore       []string `json:"ignore,omitempty"`        // conditions excluded from the verdict
}

// StorageData holds the configuration for various storage backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// ControllerData holds the configuration for various controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

type RESTServerData struct {
	Cert           string `json:"cert,omitempty"`
	Key            string `json:"key,omitempty"`
	Port           int    `json:"port,omitempty"`
	ListenAddr     string `json:"listen_addr,omitempty"`
	PullFromDevice string `json:"pull_from_device,omitempty"`
}
