package config

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	devices, err := s.GetDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to load devices: %w", err)
	}
	config.Devices = devices

	thresholds, heater, location, safety, err := s.getSiteConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}
	config.Thresholds = thresholds
	config.Heater = heater
	config.Location = location
	config.Safety = safety

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	ApplyDefaults(config)

	return config, nil
}

// GetDevices returns device configurations from the database
func (s *SQLiteProvider) GetDevices() ([]DeviceData, error) {
	query := `
		SELECT name, type, hostname, port, serial_device, baud,
		       capture_interval, samples,
		       k1, k2, k3, k4, k5, k6, k7
		FROM devices
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	var devices []DeviceData
	for rows.Next() {
		var d DeviceData
		var hostname, port, serialDevice sql.NullString
		var baud, captureInterval, samples sql.NullInt64
		var k1, k2, k3, k4, k5, k6, k7 sql.NullFloat64

		err := rows.Scan(&d.Name, &d.Type, &hostname, &port, &serialDevice,
			&baud, &captureInterval, &samples,
			&k1, &k2, &k3, &k4, &k5, &k6, &k7)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}

		d.Hostname = hostname.String
		d.Port = port.String
		d.SerialDevice = serialDevice.String
		d.Baud = int(baud.Int64)
		d.CaptureInterval = int(captureInterval.Int64)
		d.Samples = int(samples.Int64)

		// A device row carries calibration only when K1 is set; the
		// remaining coefficients default to zero, which is valid.
		if k1.Valid {
			d.SkyTemp = &SkyTempData{
				K1: k1.Float64,
				K2: k2.Float64,
				K3: k3.Float64,
				K4: k4.Float64,
				K5: k5.Float64,
				K6: k6.Float64,
				K7: k7.Float64,
			}
		}

		devices = append(devices, d)
	}

	return devices, rows.Err()
}

// getSiteConfig loads the single-row sections: thresholds, heater
// tunables, location and safety settings.
func (s *SQLiteProvider) getSiteConfig() (ThresholdsData, HeaterData, LocationData, SafetyData, error) {
	var t ThresholdsData
	var h HeaterData
	var l LocationData
	var sf SafetyData

	query := `
		SELECT cloudy, very_cloudy, windy, very_windy, gusty, very_gusty, wet, rainy,
		       rain_threshold_freq, pwm_max, pwm_mid, pwm_low, hysteresis,
		       low_temp, low_delta, high_temp, high_delta,
		       impulse_temp, impulse_duration, impulse_cycle, min_power,
		       site_name, latitude, longitude, elevation, timezone,
		       safety_delay_minutes, safety_ignore
		FROM site_config
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var siteName, timezone, ignore sql.NullString
	err := s.db.QueryRow(query).Scan(
		&t.Cloudy, &t.VeryCloudy, &t.Windy, &t.VeryWindy, &t.Gusty, &t.VeryGusty, &t.Wet, &t.Rainy,
		&h.RainThresholdFreq, &h.PWMMax, &h.PWMMid, &h.PWMLow, &h.Hysteresis,
		&h.LowTemp, &h.LowDelta, &h.HighTemp, &h.HighDelta,
		&h.ImpulseTemp, &h.ImpulseDuration, &h.ImpulseCycle, &h.MinPower,
		&siteName, &l.Latitude, &l.Longitude, &l.Elevation, &timezone,
		&sf.DelayMinutes, &ignore)
	if err == sql.ErrNoRows {
		// No site row means defaults throughout.
		return t, h, l, sf, nil
	}
	if err != nil {
		return t, h, l, sf, fmt.Errorf("failed to query site config: %w", err)
	}

	l.Name = siteName.String
	l.Timezone = timezone.String
	if ignore.Valid && ignore.String != "" {
		sf.Ignore = strings.Split(ignore.String, ",")
	}

	return t, h, l, sf, nil
}

// GetStorageConfig returns storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}

	var connectionString sql.NullString
	err := s.db.QueryRow(`
		SELECT connection_string FROM storage_timescaledb
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`).Scan(&connectionString)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	}

	if connectionString.Valid && connectionString.String != "" {
		storage.TimescaleDB = &TimescaleDBData{ConnectionString: connectionString.String}
	}

	return storage, nil
}

// GetControllers returns controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT type, rest_cert, rest_key, rest_port, rest_listen_addr, rest_pull_from_device
		FROM controllers
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY type
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var c ControllerData
		var cert, key, listenAddr, pullFrom sql.NullString
		var port sql.NullInt64

		if err := rows.Scan(&c.Type, &cert, &key, &port, &listenAddr, &pullFrom); err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}

		switch c.Type {
		case "rest", "restserver":
			c.RESTServer = &RESTServerData{
				Cert:           cert.String,
				Key:            key.String,
				Port:           int(port.Int64),
				ListenAddr:     listenAddr.String,
				PullFromDevice: pullFrom.String,
			}
		}

		controllers = append(controllers, c)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false since SQLite databases support writes
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
