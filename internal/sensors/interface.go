// Package sensors defines the interface implemented by cloud sensor
// drivers and the factory contract used by the sensor manager.
package sensors

// CloudSensor is an interface that provides standard methods for various
// cloud sensor backends
type CloudSensor interface {
	StartCloudSensor() error
	StationName() string
}
