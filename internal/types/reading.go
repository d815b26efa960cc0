// Package types holds the reading model shared between sensor drivers,
// storage backends and controllers.
package types

import "time"

// Reading is a single observation from a cloud sensor. SkyTemperature is
// the corrected value produced by the drift model; RawSkyTemperature is
// what the infrared sensor actually reported.
type Reading struct {
	Timestamp          time.Time `gorm:"column:time" json:"timestamp"`
	StationName        string    `gorm:"column:stationname" json:"station_name"`
	StationType        string    `gorm:"column:stationtype" json:"station_type"`
	RawSkyTemperature  float64   `gorm:"column:rawskytemp" json:"raw_sky_temperature"`
	SkyTemperature     float64   `gorm:"column:skytemp" json:"sky_temperature"`
	AmbientTemperature float64   `gorm:"column:ambienttemp" json:"ambient_temperature"`
	CloudState         int       `gorm:"column:cloudstate" json:"cloud_state"`
	CloudStateName     string    `gorm:"column:cloudstatename" json:"cloud_state_name"`
	WindSpeed          float64   `gorm:"column:windspeed" json:"wind_speed"`
	RainFrequency      float64   `gorm:"column:rainfrequency" json:"rain_frequency"`
	Brightness         float64   `gorm:"column:brightness" json:"brightness"`
	RainSensorTemp     float64   `gorm:"column:rainsensortemp" json:"rain_sensor_temperature"`
	HeaterPWM          float64   `gorm:"column:heaterpwm" json:"heater_pwm"`
	SolarElevation     float64   `gorm:"column:solarelevation" json:"solar_elevation"`
}

// TableName implements the GORM Tabler interface for the Reading struct
func (Reading) TableName() string {
	return "cloudwatch"
}
