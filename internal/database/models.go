package database

import "time"

// BucketReading is a row from one of the time-bucketed continuous
// aggregate views.
type BucketReading struct {
	Bucket         time.Time `gorm:"column:bucket" json:"ts"`
	StationName    string    `gorm:"column:stationname" json:"station"`
	StationType    string    `gorm:"column:stationtype" json:"station_type,omitempty"`
	RawSkyTemp     float64   `gorm:"column:rawskytemp" json:"raw_sky_temperature"`
	SkyTemp        float64   `gorm:"column:skytemp" json:"sky_temperature"`
	MinSkyTemp     float64   `gorm:"column:min_skytemp" json:"min_sky_temperature"`
	MaxSkyTemp     float64   `gorm:"column:max_skytemp" json:"max_sky_temperature"`
	AmbientTemp    float64   `gorm:"column:ambienttemp" json:"ambient_temperature"`
	CloudState     int       `gorm:"column:cloudstate" json:"cloud_state"`
	WindSpeed      float64   `gorm:"column:windspeed" json:"wind_speed"`
	MaxWindSpeed   float64   `gorm:"column:max_windspeed" json:"max_wind_speed"`
	RainFrequency  float64   `gorm:"column:rainfrequency" json:"rain_frequency"`
	Brightness     float64   `gorm:"column:brightness" json:"brightness"`
	RainSensorTemp float64   `gorm:"column:rainsensortemp" json:"rain_sensor_temperature"`
	HeaterPWM      float64   `gorm:"column:heaterpwm" json:"heater_pwm"`
	SolarElevation float64   `gorm:"column:solarelevation" json:"solar_elevation"`
}
