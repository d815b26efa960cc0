package config

// Defaults mirror the sensor manufacturer's reference values. Zero-valued
// fields loaded from a configuration source are replaced by these before
// the config is handed to the rest of the application.

// DefaultThresholds returns the stock safety boundary values.
func DefaultThresholds() ThresholdsData {
	return ThresholdsData{
		Cloudy:     -25,
		VeryCloudy: -15,
		Windy:      50,
		VeryWindy:  75,
		Gusty:      100,
		VeryGusty:  125,
		Wet:        2200,
		Rainy:      1800,
	}
}

// DefaultHeater returns the stock rain-sensor heater tunables.
func DefaultHeater() HeaterData {
	return HeaterData{
		RainThresholdFreq: 30,
		PWMMax:            70,
		PWMMid:            40,
		PWMLow:            15,
		Hysteresis:        5,
		LowTemp:           0,
		LowDelta:          6,
		HighTemp:          20,
		HighDelta:         4,
		ImpulseTemp:       10,
		ImpulseDuration:   60,
		ImpulseCycle:      600,
		MinPower:          15,
	}
}

// ApplyDefaults fills unset fields in place. Defaulting is per field, so
// a config may override part of a section and inherit the rest.
func ApplyDefaults(c *ConfigData) {
	t, dt := &c.Thresholds, DefaultThresholds()
	if t.Cloudy == 0 {
		t.Cloudy = dt.Cloudy
	}
	if t.VeryCloudy == 0 {
		t.VeryCloudy = dt.VeryCloudy
	}
	if t.Windy == 0 {
		t.Windy = dt.Windy
	}
	if t.VeryWindy == 0 {
		t.VeryWindy = dt.VeryWindy
	}
	if t.Gusty == 0 {
		t.Gusty = dt.Gusty
	}
	if t.VeryGusty == 0 {
		t.VeryGusty = dt.VeryGusty
	}
	if t.Wet == 0 {
		t.Wet = dt.Wet
	}
	if t.Rainy == 0 {
		t.Rainy = dt.Rainy
	}

	// LowTemp is absent here: its stock value is zero.
	h, dh := &c.Heater, DefaultHeater()
	if h.RainThresholdFreq == 0 {
		h.RainThresholdFreq = dh.RainThresholdFreq
	}
	if h.PWMMax == 0 {
		h.PWMMax = dh.PWMMax
	}
	if h.PWMMid == 0 {
		h.PWMMid = dh.PWMMid
	}
	if h.PWMLow == 0 {
		h.PWMLow = dh.PWMLow
	}
	if h.Hysteresis == 0 {
		h.Hysteresis = dh.Hysteresis
	}
	if h.LowDelta == 0 {
		h.LowDelta = dh.LowDelta
	}
	if h.HighTemp == 0 {
		h.HighTemp = dh.HighTemp
	}
	if h.HighDelta == 0 {
		h.HighDelta = dh.HighDelta
	}
	if h.ImpulseTemp == 0 {
		h.ImpulseTemp = dh.ImpulseTemp
	}
	if h.ImpulseDuration == 0 {
		h.ImpulseDuration = dh.ImpulseDuration
	}
	if h.ImpulseCycle == 0 {
		h.ImpulseCycle = dh.ImpulseCycle
	}
	if h.MinPower == 0 {
		h.MinPower = dh.MinPower
	}

	if c.Safety.DelayMinutes == 0 {
		c.Safety.DelayMinutes = 15
	}
	for i := range c.Devices {
		d := &c.Devices[i]
		if d.Baud == 0 {
			d.Baud = 9600
		}
		if d.CaptureInterval == 0 {
			d.CaptureInterval = 30
		}
		if d.Samples == 0 {
			d.Samples = 10
		}
	}
}
