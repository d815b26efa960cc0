// Package safety composes per-metric threshold checks into a single
// observatory-safe verdict. It consumes corrected readings; it never
// talks to the sensor itself.
package safety

import (
	"sync"
	"time"

	"github.com/skysentry/skysentry/internal/types"
	"github.com/skysentry/skysentry/pkg/config"
	"github.com/skysentry/skysentry/pkg/skytemp"
)

// Condition names a single unsafe trigger. These match the strings
// accepted in the safety ignore list.
const (
	CondCloud = "cloud"
	CondWind  = "wind"
	CondGust  = "gust"
	CondRain  = "rain"
	CondWet   = "wet"
)

// Verdict is the outcome of evaluating one reading.
type Verdict struct {
	Safe      bool      `json:"safe"`
	Unsafe    []string  `json:"unsafe_conditions,omitempty"`
	HoldUntil time.Time `json:"hold_until,omitempty"`
	Evaluated time.Time `json:"evaluated"`
}

// Evaluator tracks unsafe history so that a site must stay clean for the
// configured delay before it flips back to safe. Rain clears in seconds
// on the sensor; clouds that caused a close should keep the roof shut a
// while longer.
type Evaluator struct {
	thresholds config.ThresholdsData
	delay      time.Duration
	ignore     map[string]bool

	mu         sync.Mutex
	lastUnsafe time.Time
	tripped    bool
	gusts      []gustSample
}

// gustWindow is how far back Evaluate looks for the peak wind speed.
const gustWindow = 2 * time.Minute

type gustSample struct {
	at    time.Time
	speed float64
}

// NewEvaluator creates an evaluator from the configured thresholds and
// safety settings.
func NewEvaluator(t config.ThresholdsData, s config.SafetyData) *Evaluator {
	ignore := make(map[string]bool, len(s.Ignore))
	for _, c := range s.Ignore {
		ignore[c] = true
	}
	return &Evaluator{
		thresholds: t,
		delay:      time.Duration(s.DelayMinutes * float64(time.Minute)),
		ignore:     ignore,
	}
}

// peakGust records the wind sample and returns the highest speed seen
// inside the gust window. Caller must hold e.mu.
func (e *Evaluator) peakGust(now time.Time, speed float64) float64 {
	e.gusts = append(e.gusts, gustSample{at: now, speed: speed})
	cutoff := now.Add(-gustWindow)
	for len(e.gusts) > 0 && e.gusts[0].at.Before(cutoff) {
		e.gusts = e.gusts[1:]
	}
	peak := 0.0
	for _, g := range e.gusts {
		if g.speed > peak {
			peak = g.speed
		}
	}
	return peak
}

// conditions returns the unsafe triggers present in a single reading,
// before the ignore list is applied. Caller must hold e.mu.
func (e *Evaluator) conditions(r types.Reading, now time.Time) []string {
	var unsafe []string

	if skytemp.CloudState(r.CloudState) >= skytemp.VeryCloudy {
		unsafe = append(unsafe, CondCloud)
	}
	if r.WindSpeed >= e.thresholds.VeryWindy {
		unsafe = append(unsafe, CondWind)
	}
	if e.peakGust(now, r.WindSpeed) >= e.thresholds.VeryGusty {
		unsafe = append(unsafe, CondGust)
	}

	// Rain frequency drops as the sensor gets wetter.
	if r.RainFrequency > 0 {
		if r.RainFrequency <= float64(e.thresholds.Rainy) {
			unsafe = append(unsafe, CondRain)
		} else if r.RainFrequency <= float64(e.thresholds.Wet) {
			unsafe = append(unsafe, CondWet)
		}
	}

	return unsafe
}

// Evaluate folds a reading into the safety state and returns the verdict
// as of now. Ignored conditions are reported but never make the verdict
// unsafe.
func (e *Evaluator) Evaluate(r types.Reading, now time.Time) Verdict {
	v := Verdict{Evaluated: now}

	e.mu.Lock()
	defer e.mu.Unlock()

	v.Unsafe = e.conditions(r, now)

	effective := false
	for _, c := range v.Unsafe {
		if !e.ignore[c] {
			effective = true
			break
		}
	}

	if effective {
		e.lastUnsafe = now
		e.tripped = true
	}

	if e.tripped {
		holdUntil := e.lastUnsafe.Add(e.delay)
		if now.Before(holdUntil) {
			v.Safe = false
			v.HoldUntil = holdUntil
			return v
		}
		e.tripped = false
	}

	v.Safe = !effective
	return v
}
