// Package aag implements a driver for Lunático AAG CloudWatcher-style
// infrared cloud sensors connected over a serial port or a serial-over-TCP
// bridge.
package aag

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/skysentry/skysentry/internal/aggregate"
	"github.com/skysentry/skysentry/internal/log"
	"github.com/skysentry/skysentry/internal/sensors"
	"github.com/skysentry/skysentry/internal/types"
	"github.com/skysentry/skysentry/pkg/config"
	"github.com/skysentry/skysentry/pkg/skytemp"
	"github.com/skysentry/skysentry/pkg/solar"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

// Station holds our CloudWatcher connection along with some mutexes for
// operation
type Station struct {
	ctx                context.Context
	wg                 *sync.WaitGroup
	netConn            net.Conn
	rwc                io.ReadWriteCloser
	config             config.DeviceData
	coeffs             skytemp.Coefficients
	thresholds         config.ThresholdsData
	heater             config.HeaterData
	location           config.LocationData
	deviceName         string
	ReadingDistributor chan types.Reading
	logger             *zap.SugaredLogger
	connecting         bool
	connectingMu       sync.RWMutex
	connected          bool
	connectedMu        sync.RWMutex
	ioMu               sync.Mutex
}

// NewStation creates a new CloudWatcher station
func NewStation(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, deviceName string, distributor chan types.Reading, logger *zap.SugaredLogger) sensors.CloudSensor {
	station := &Station{
		ctx:                ctx,
		wg:                 wg,
		deviceName:         deviceName,
		ReadingDistributor: distributor,
		logger:             logger,
	}

	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		logger.Fatalf("CloudWatcher station [%s] failed to load config: %v", deviceName, err)
	}

	// Find our device configuration
	var deviceConfig *config.DeviceData
	for _, device := range cfgData.Devices {
		if device.Name == deviceName {
			deviceConfig = &device
			break
		}
	}

	if deviceConfig == nil {
		logger.Fatalf("CloudWatcher station [%s] device not found in configuration", deviceName)
	}

	station.config = *deviceConfig
	station.thresholds = cfgData.Thresholds
	station.heater = cfgData.Heater
	station.location = cfgData.Location

	station.coeffs = skytemp.DefaultCoefficients()
	if deviceConfig.SkyTemp != nil {
		station.coeffs = skytemp.Coefficients{
			K1: deviceConfig.SkyTemp.K1,
			K2: deviceConfig.SkyTemp.K2,
			K3: deviceConfig.SkyTemp.K3,
			K4: deviceConfig.SkyTemp.K4,
			K5: deviceConfig.SkyTemp.K5,
			K6: deviceConfig.SkyTemp.K6,
			K7: deviceConfig.SkyTemp.K7,
		}
	}

	if station.config.SerialDevice == "" && (station.config.Hostname == "" || station.config.Port == "") {
		logger.Fatalf("CloudWatcher station [%s] must define either a serial device or hostname+port", station.config.Name)
	}

	return station
}

func (s *Station) StationName() string {
	return s.config.Name
}

// StartCloudSensor connects to the sensor and launches the capture loop
func (s *Station) StartCloudSensor() error {
	log.Infof("Starting CloudWatcher station [%v]...", s.config.Name)

	s.Connect()

	// Put the rain sensor heater at its configured idle power so the
	// dish does not fog up while we wait for the first cycle.
	if err := s.setHeaterPWM(s.heater.MinPower); err != nil {
		s.logger.Warnf("could not set initial heater power: %v", err)
	}

	s.wg.Add(1)
	go s.captureLoop()

	return nil
}

// captureLoop runs one capture cycle per configured interval until the
// context is cancelled, reconnecting after I/O errors.
func (s *Station) captureLoop() {
	defer s.wg.Done()

	interval := time.Duration(s.config.CaptureInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling captureLoop()")
			return
		case <-ticker.C:
			reading, err := s.capture()
			if err != nil {
				s.logger.Errorf("capture cycle failed: %v", err)
				s.closeConnection()
				s.logger.Info("attempting to reconnect...")
				s.Connect()
				continue
			}

			log.Debugf("CloudWatcher [%s] sending reading to distributor: sky=%.2f°C ambient=%.2f°C state=%s rain=%.0f",
				s.config.Name, reading.SkyTemperature, reading.AmbientTemperature, reading.CloudStateName, reading.RainFrequency)
			s.ReadingDistributor <- reading
		}
	}
}

// capture performs one full measurement cycle: a burst of infrared and
// ambient samples, the slower single-shot channels, then correction and
// classification.
func (s *Station) capture() (types.Reading, error) {
	samples := s.config.Samples

	skySamples := make([]float64, 0, samples)
	ambientSamples := make([]float64, 0, samples)
	for i := 0; i < samples; i++ {
		sky, err := s.queryCenti(cmdSkyTemperature, codeSkyTemp)
		if err != nil {
			return types.Reading{}, fmt.Errorf("sky temperature query: %w", err)
		}
		ambient, err := s.queryCenti(cmdSensorTemp, codeSensorTemp)
		if err != nil {
			return types.Reading{}, fmt.Errorf("ambient temperature query: %w", err)
		}
		skySamples = append(skySamples, sky)
		ambientSamples = append(ambientSamples, ambient)
	}

	rawSky := aggregate.Median(skySamples)
	ambient := aggregate.Median(ambientSamples)

	rainFreq, err := s.queryInt(cmdRainFrequency, codeRainFreq)
	if err != nil {
		return types.Reading{}, fmt.Errorf("rain frequency query: %w", err)
	}

	ldr, rainTemp, err := s.queryValues()
	if err != nil {
		return types.Reading{}, fmt.Errorf("values query: %w", err)
	}

	// Anemometer is an optional add-on; a failed wind query is not a
	// broken sensor.
	wind := 0.0
	if w, err := s.queryInt(cmdWindSpeed, codeWind); err == nil {
		wind = w
	} else {
		log.Debugf("wind query failed (no anemometer?): %v", err)
	}

	pwm := 0.0
	if raw, err := s.queryInt(cmdQueryPWM, codePWM); err == nil {
		pwm = pwmPercent(int(raw))
	}

	corrected := skytemp.Correct(rawSky, ambient, s.coeffs)
	state := skytemp.Classify(corrected, s.thresholds.Cloudy, s.thresholds.VeryCloudy)

	timestamp := time.Now()
	elevation := 0.0
	if s.location.Latitude != 0 || s.location.Longitude != 0 {
		elevation = solar.Elevation(timestamp, s.location.Latitude, s.location.Longitude)
	}

	return types.Reading{
		Timestamp:          timestamp,
		StationName:        s.config.Name,
		StationType:        "aag",
		RawSkyTemperature:  rawSky,
		SkyTemperature:     corrected,
		AmbientTemperature: ambient,
		CloudState:         int(state),
		CloudStateName:     state.String(),
		WindSpeed:          wind,
		RainFrequency:      rainFreq,
		Brightness:         ldr,
		RainSensorTemp:     rainTemp,
		HeaterPWM:          pwm,
		SolarElevation:     elevation,
	}, nil
}

// exchange writes a command and reads response blocks until the device's
// handshake block arrives.
func (s *Station) exchange(cmd string, expectBlocks int) ([]block, error) {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	if s.rwc == nil {
		return nil, fmt.Errorf("not connected")
	}

	if _, err := s.rwc.Write([]byte(cmd)); err != nil {
		return nil, fmt.Errorf("error writing command %q: %w", cmd, err)
	}

	// Every exchange is the expected data blocks plus the handshake.
	raw := make([]byte, (expectBlocks+1)*blockLen)
	if err := s.readResponse(raw); err != nil {
		return nil, fmt.Errorf("error reading response to %q: %w", cmd, err)
	}

	return splitBlocks(raw)
}

// readResponse fills buf from the device. The serial port reports a read
// timeout as a zero-byte read with a nil error; treat that as a dead
// sensor so the caller's reconnect path fires instead of spinning.
func (s *Station) readResponse(buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := s.rwc.Read(buf[total:])
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("read timed out after %d of %d bytes", total, len(buf))
		}
		total += n
	}
	return nil
}

// closeConnection tears down whatever connection state exists so Connect
// can start fresh. Safe to call when the station never connected.
func (s *Station) closeConnection() {
	if s.rwc != nil {
		s.rwc.Close()
	}
	if s.netConn != nil {
		s.netConn.Close()
	}
	s.connectedMu.Lock()
	s.connected = false
	s.connectedMu.Unlock()
}

// queryInt runs a single-block query and returns its numeric payload.
func (s *Station) queryInt(cmd string, code byte) (float64, error) {
	blocks, err := s.exchange(cmd, 1)
	if err != nil {
		return 0, err
	}
	b, err := findBlock(blocks, code)
	if err != nil {
		return 0, err
	}
	v, err := b.intValue()
	if err != nil {
		return 0, err
	}
	return float64(v), nil
}

// queryCenti runs a single-block query whose payload is hundredths of °C.
func (s *Station) queryCenti(cmd string, code byte) (float64, error) {
	blocks, err := s.exchange(cmd, 1)
	if err != nil {
		return 0, err
	}
	b, err := findBlock(blocks, code)
	if err != nil {
		return 0, err
	}
	v, err := b.intValue()
	if err != nil {
		return 0, err
	}
	return centiCelsius(v), nil
}

// queryValues runs the C! multi-block query and returns the LDR reading
// and the rain sensor temperature.
func (s *Station) queryValues() (ldr, rainTemp float64, err error) {
	blocks, err := s.exchange(cmdValues, 3)
	if err != nil {
		return 0, 0, err
	}

	lb, err := findBlock(blocks, codeLDR)
	if err != nil {
		return 0, 0, err
	}
	lv, err := lb.intValue()
	if err != nil {
		return 0, 0, err
	}

	rb, err := findBlock(blocks, codeRainTemp)
	if err != nil {
		return 0, 0, err
	}
	rv, err := rb.intValue()
	if err != nil {
		return 0, 0, err
	}

	return float64(lv), centiCelsius(rv), nil
}

// setHeaterPWM commands the rain sensor heater duty cycle.
func (s *Station) setHeaterPWM(percent float64) error {
	blocks, err := s.exchange(setPWMCommand(percent), 1)
	if err != nil {
		return err
	}
	if _, err := findBlock(blocks, codePWM); err != nil {
		return err
	}
	log.Debugf("heater PWM set to %.0f%%", percent)
	return nil
}

// Connect connects to a CloudWatcher over serial or network
func (s *Station) Connect() {
	if len(s.config.SerialDevice) > 0 {
		s.connectToSerialStation()
	} else if (len(s.config.Hostname) > 0) && (len(s.config.Port) > 0) {
		s.connectToNetworkStation()
	} else {
		s.logger.Fatal("must provide either network hostname+port or serial device in config")
	}
}

// connectToSerialStation connects to a CloudWatcher over a serial port
func (s *Station) connectToSerialStation() {
	var err error

	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		s.logger.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	// A connection attempt is not in progress so we'll start a new one
	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	s.logger.Infof("connecting to %v ...", s.config.SerialDevice)

	for {
		sc := &serial.Config{Name: s.config.SerialDevice, Baud: s.config.Baud, ReadTimeout: 5 * time.Second}
		s.logger.Debugf("attempting to open serial port %s at %d baud", s.config.SerialDevice, s.config.Baud)
		s.rwc, err = serial.OpenPort(sc)

		if err != nil {
			s.logger.Errorf("failed to open serial port %s: %v", s.config.SerialDevice, err)
			s.logger.Error("sleeping 30 seconds and trying again")

			// Use a select to respect cancellation during sleep
			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(30 * time.Second):
				// Continue to next iteration
			}
		} else {
			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			return
		}
	}
}

// connectToNetworkStation connects to a CloudWatcher behind a serial-over-TCP bridge
func (s *Station) connectToNetworkStation() {
	var err error

	console := fmt.Sprint(s.config.Hostname, ":", s.config.Port)

	s.connectingMu.RLock()
	if s.connecting {
		s.connectingMu.RUnlock()
		log.Info("skipping reconnect since a connection attempt is already in progress")
		return
	}

	// A connection attempt is not in progress so we'll start a new one
	s.connectingMu.RUnlock()
	s.connectingMu.Lock()
	s.connecting = true
	s.connectingMu.Unlock()

	log.Info("connecting to:", console)

	for {
		s.netConn, err = net.DialTimeout("tcp", console, 10*time.Second)

		if err != nil {
			log.Errorf("could not connect to %v: %v", console, err)
			log.Error("sleeping 5 seconds and trying again.")

			// Use a select to respect cancellation during sleep
			select {
			case <-s.ctx.Done():
				s.logger.Info("cancellation request received during retry wait")
				s.connectingMu.Lock()
				s.connecting = false
				s.connectingMu.Unlock()
				return
			case <-time.After(5 * time.Second):
				// Continue to next iteration
			}
		} else {
			// Set read deadline after successful connection
			s.netConn.SetReadDeadline(time.Now().Add(time.Second * 30))

			s.connectedMu.Lock()
			defer s.connectedMu.Unlock()
			s.connected = true
			s.connectingMu.Lock()
			defer s.connectingMu.Unlock()
			s.connecting = false

			// Create an io.ReadWriteCloser for our connection
			s.rwc = io.ReadWriteCloser(s.netConn)
			return
		}
	}
}
