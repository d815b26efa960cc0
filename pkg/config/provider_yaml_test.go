package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigYAML = `
devices:
  - name: dome-cloudwatcher
    type: aag
    serialdevice: /dev/ttyUSB0
    capture-interval: 20
    samples: 5
    skytemp:
      k1: 33
      k2: 10
      k3: 8
      k4: 100
      k5: 120
      k6: 140
      k7: 40
thresholds:
  cloudy: -20
  very-cloudy: -12
  windy: 40
  very-windy: 60
  gusty: 90
  very-gusty: 110
  wet: 2100
  rainy: 1700
location:
  name: Backyard Observatory
  latitude: 49.054
  longitude: -122.82
  elevation: 60
  timezone: America/Vancouver
safety:
  delay-minutes: 10
  ignore:
    - wind
storage:
  timescaledb:
    connection-string: "host=localhost user=cloud dbname=cloud"
controllers:
  - type: rest
    rest:
      port: 8080
      pull-from-device: dome-cloudwatcher
`

func writeTestConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	provider := NewYAMLProvider(writeTestConfig(t, testConfigYAML))
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(cfg.Devices))
	}
	d := cfg.Devices[0]
	if d.Name != "dome-cloudwatcher" || d.Type != "aag" {
		t.Errorf("unexpected device identity: %+v", d)
	}
	if d.SerialDevice != "/dev/ttyUSB0" {
		t.Errorf("unexpected serial device: %q", d.SerialDevice)
	}
	if d.CaptureInterval != 20 || d.Samples != 5 {
		t.Errorf("unexpected capture settings: interval=%d samples=%d", d.CaptureInterval, d.Samples)
	}
	if d.Baud != 9600 {
		t.Errorf("expected default baud 9600, got %d", d.Baud)
	}
	if d.SkyTemp == nil {
		t.Fatal("expected skytemp coefficients on device")
	}
	if d.SkyTemp.K2 != 10 || d.SkyTemp.K6 != 140 {
		t.Errorf("unexpected coefficients: %+v", d.SkyTemp)
	}

	if cfg.Thresholds.Cloudy != -20 || cfg.Thresholds.VeryCloudy != -12 {
		t.Errorf("unexpected cloud thresholds: %+v", cfg.Thresholds)
	}
	if cfg.Thresholds.Wet != 2100 || cfg.Thresholds.Rainy != 1700 {
		t.Errorf("unexpected rain thresholds: %+v", cfg.Thresholds)
	}

	// Heater section is absent from the file, so stock tunables apply.
	if cfg.Heater.PWMMax != 70 || cfg.Heater.ImpulseCycle != 600 {
		t.Errorf("expected default heater tunables, got %+v", cfg.Heater)
	}

	if cfg.Location.Name != "Backyard Observatory" || cfg.Location.Latitude != 49.054 {
		t.Errorf("unexpected location: %+v", cfg.Location)
	}

	if cfg.Safety.DelayMinutes != 10 {
		t.Errorf("unexpected safety delay: %v", cfg.Safety.DelayMinutes)
	}
	if len(cfg.Safety.Ignore) != 1 || cfg.Safety.Ignore[0] != "wind" {
		t.Errorf("unexpected safety ignore list: %v", cfg.Safety.Ignore)
	}

	if cfg.Storage.TimescaleDB == nil || cfg.Storage.TimescaleDB.ConnectionString == "" {
		t.Error("expected timescaledb storage config")
	}

	if len(cfg.Controllers) != 1 || cfg.Controllers[0].Type != "rest" {
		t.Fatalf("unexpected controllers: %+v", cfg.Controllers)
	}
	if cfg.Controllers[0].RESTServer.Port != 8080 {
		t.Errorf("unexpected REST port: %d", cfg.Controllers[0].RESTServer.Port)
	}
}

func TestYAMLProviderDefaults(t *testing.T) {
	provider := NewYAMLProvider(writeTestConfig(t, "devices:\n  - name: cw\n    type: aag\n    serialdevice: /dev/ttyUSB0\n"))
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Thresholds != DefaultThresholds() {
		t.Errorf("expected default thresholds, got %+v", cfg.Thresholds)
	}
	if cfg.Heater != DefaultHeater() {
		t.Errorf("expected default heater tunables, got %+v", cfg.Heater)
	}
	if cfg.Safety.DelayMinutes != 15 {
		t.Errorf("expected default safety delay 15, got %v", cfg.Safety.DelayMinutes)
	}

	d := cfg.Devices[0]
	if d.Baud != 9600 || d.CaptureInterval != 30 || d.Samples != 10 {
		t.Errorf("expected device defaults, got %+v", d)
	}
	if d.SkyTemp != nil {
		t.Errorf("expected nil skytemp coefficients, got %+v", d.SkyTemp)
	}
}

func TestYAMLProviderPartialThresholds(t *testing.T) {
	// A config that overrides only some fields of a section inherits the
	// stock values for the rest. A partial thresholds section must never
	// leave the cloud boundaries at zero, or an overcast sky would
	// classify as clear.
	partial := `
devices:
  - name: cw
    type: aag
    serialdevice: /dev/ttyUSB0
thresholds:
  windy: 55
heater:
  pwm-max: 80
`
	provider := NewYAMLProvider(writeTestConfig(t, partial))
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Thresholds.Windy != 55 {
		t.Errorf("expected configured windy threshold 55, got %v", cfg.Thresholds.Windy)
	}
	if cfg.Thresholds.Cloudy != -25 || cfg.Thresholds.VeryCloudy != -15 {
		t.Errorf("expected default cloud boundaries -25/-15, got %v/%v",
			cfg.Thresholds.Cloudy, cfg.Thresholds.VeryCloudy)
	}
	if cfg.Thresholds.Wet != 2200 || cfg.Thresholds.Rainy != 1800 {
		t.Errorf("expected default rain thresholds, got %+v", cfg.Thresholds)
	}

	if cfg.Heater.PWMMax != 80 {
		t.Errorf("expected configured pwm-max 80, got %v", cfg.Heater.PWMMax)
	}
	if cfg.Heater.MinPower != 15 || cfg.Heater.ImpulseCycle != 600 {
		t.Errorf("expected default heater tunables alongside override, got %+v", cfg.Heater)
	}
}

func TestYAMLProviderMissingFile(t *testing.T) {
	provider := NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := provider.LoadConfig(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestYAMLProviderIsReadOnly(t *testing.T) {
	if !NewYAMLProvider("x").IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}
}
