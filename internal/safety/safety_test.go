package safety

import (
	"testing"
	"time"

	"github.com/skysentry/skysentry/internal/types"
	"github.com/skysentry/skysentry/pkg/config"
	"github.com/skysentry/skysentry/pkg/skytemp"
)

func testEvaluator(ignore ...string) *Evaluator {
	return NewEvaluator(config.DefaultThresholds(), config.SafetyData{
		DelayMinutes: 15,
		Ignore:       ignore,
	})
}

func clearReading() types.Reading {
	return types.Reading{
		CloudState:    int(skytemp.Clear),
		WindSpeed:     10,
		RainFrequency: 2800,
	}
}

func TestEvaluateSafeReading(t *testing.T) {
	e := testEvaluator()
	v := e.Evaluate(clearReading(), time.Now())
	if !v.Safe {
		t.Errorf("expected safe verdict, got %+v", v)
	}
	if len(v.Unsafe) != 0 {
		t.Errorf("expected no unsafe conditions, got %v", v.Unsafe)
	}
}

func TestEvaluateConditions(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*types.Reading)
		expected string
	}{
		{"very cloudy sky", func(r *types.Reading) { r.CloudState = int(skytemp.VeryCloudy) }, CondCloud},
		{"high wind", func(r *types.Reading) { r.WindSpeed = 80 }, CondWind},
		{"rain", func(r *types.Reading) { r.RainFrequency = 1500 }, CondRain},
		{"wet sensor", func(r *types.Reading) { r.RainFrequency = 2000 }, CondWet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEvaluator()
			r := clearReading()
			tt.mutate(&r)

			v := e.Evaluate(r, time.Now())
			if v.Safe {
				t.Fatalf("expected unsafe verdict, got %+v", v)
			}
			found := false
			for _, c := range v.Unsafe {
				if c == tt.expected {
					found = true
				}
			}
			if !found {
				t.Errorf("expected condition %q in %v", tt.expected, v.Unsafe)
			}
		})
	}
}

func TestEvaluateCloudyIsNotUnsafe(t *testing.T) {
	e := testEvaluator()
	r := clearReading()
	r.CloudState = int(skytemp.Cloudy)

	if v := e.Evaluate(r, time.Now()); !v.Safe {
		t.Errorf("middling cloud cover should not trip safety: %+v", v)
	}
}

func TestEvaluateZeroRainFrequencySkipped(t *testing.T) {
	// A zero frequency means the rain sensor did not answer, not that
	// it is soaked.
	e := testEvaluator()
	r := clearReading()
	r.RainFrequency = 0

	if v := e.Evaluate(r, time.Now()); !v.Safe {
		t.Errorf("missing rain reading should not trip safety: %+v", v)
	}
}

func TestEvaluateHoldDelay(t *testing.T) {
	e := testEvaluator()
	start := time.Now()

	r := clearReading()
	r.RainFrequency = 1500
	if v := e.Evaluate(r, start); v.Safe {
		t.Fatal("rain reading should be unsafe")
	}

	// Conditions clear immediately, but the verdict must hold unsafe
	// until the delay has elapsed.
	v := e.Evaluate(clearReading(), start.Add(5*time.Minute))
	if v.Safe {
		t.Fatal("verdict flipped safe inside the hold delay")
	}
	if v.HoldUntil.IsZero() {
		t.Error("expected HoldUntil to be set during the hold")
	}

	v = e.Evaluate(clearReading(), start.Add(16*time.Minute))
	if !v.Safe {
		t.Errorf("verdict still unsafe after the hold delay: %+v", v)
	}
}

func TestEvaluateUnsafeResetsHold(t *testing.T) {
	e := testEvaluator()
	start := time.Now()

	r := clearReading()
	r.CloudState = int(skytemp.VeryCloudy)
	e.Evaluate(r, start)

	// A second unsafe reading late in the hold restarts the clock.
	e.Evaluate(r, start.Add(14*time.Minute))

	if v := e.Evaluate(clearReading(), start.Add(20*time.Minute)); v.Safe {
		t.Errorf("hold delay should have restarted: %+v", v)
	}
	if v := e.Evaluate(clearReading(), start.Add(30*time.Minute)); !v.Safe {
		t.Errorf("expected safe after restarted hold elapsed: %+v", v)
	}
}

func TestEvaluateIgnoredConditions(t *testing.T) {
	e := testEvaluator(CondWind)
	r := clearReading()
	r.WindSpeed = 90

	v := e.Evaluate(r, time.Now())
	if !v.Safe {
		t.Errorf("ignored wind condition should not make verdict unsafe: %+v", v)
	}
	// The condition is still reported for operators.
	if len(v.Unsafe) == 0 {
		t.Error("ignored condition should still appear in the verdict")
	}
}

func TestEvaluateGustWindow(t *testing.T) {
	e := testEvaluator()
	start := time.Now()

	r := clearReading()
	r.WindSpeed = 130 // above very-gusty
	if v := e.Evaluate(r, start); v.Safe {
		t.Fatal("gust should be unsafe")
	}

	// One minute later the instantaneous speed is calm, but the gust is
	// still inside the window (and the hold delay applies regardless).
	v := e.Evaluate(clearReading(), start.Add(time.Minute))
	for _, c := range v.Unsafe {
		if c == CondGust {
			return
		}
	}
	t.Errorf("expected gust condition within window, got %v", v.Unsafe)
}
