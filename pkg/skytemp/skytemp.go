// Package skytemp converts raw infrared sky-temperature readings into
// drift-corrected values and discrete cloud states. The correction removes
// the ambient-temperature-dependent bias of the sensor housing using the
// manufacturer's seven-coefficient empirical model.
package skytemp

import "math"

// Default classification boundaries in °C. A corrected sky temperature
// below DefaultClearLimit reads as clear sky; above DefaultCloudyLimit,
// heavy overcast.
const (
	DefaultClearLimit  = -17.0
	DefaultCloudyLimit = -8.0
)

// Coefficients holds the seven calibration constants of the drift model.
// Units vary per term: K1/K2 scale and center the linear term, K3-K5
// drive the optional exponential term, K6/K7 the logarithmic far-field
// term. Values are supplied per sensor unit from configuration.
type Coefficients struct {
	K1 float64
	K2 float64
	K3 float64
	K4 float64
	K5 float64
	K6 float64
	K7 float64
}

// DefaultCoefficients returns the factory calibration used when the
// configuration does not override the K-values.
func DefaultCoefficients() Coefficients {
	return Coefficients{K1: 33, K2: 0, K3: 0, K4: 0, K5: 0, K6: 140, K7: 40}
}

// CloudState is a discrete sky-clarity classification. States are ordered:
// a larger value is never less cloudy than a smaller one.
type CloudState int

const (
	Clear CloudState = iota
	Cloudy
	VeryCloudy
)

func (c CloudState) String() string {
	switch c {
	case Clear:
		return "CLEAR"
	case Cloudy:
		return "CLOUDY"
	case VeryCloudy:
		return "VERY_CLOUDY"
	}
	return "UNKNOWN"
}

// driftTerm computes the ambient-dependent correction T_d(T_a).
//
// term1 is a linear ambient bias centered at K2/10. term2 is an optional
// exponential non-linearity, active only when K3 is configured non-zero;
// if the exponential leaves the representable float range the term is
// treated as negligible rather than propagated. t67 is a logarithmic
// far-field correction with a linear fallback inside |K2/10 - ta| < 1,
// which keeps the model clear of log(0).
func driftTerm(ta float64, c Coefficients) float64 {
	term1 := (c.K1 / 100) * (ta - c.K2/10)

	term2 := 0.0
	if c.K3 != 0 {
		t := (c.K3 / 100) * math.Pow(math.Exp(c.K4/1000*ta), c.K5/100)
		if !math.IsInf(t, 0) {
			term2 = t
		}
	}

	var t67 float64
	delta := math.Abs(c.K2/10 - ta)
	if delta < 1 {
		t67 = math.Copysign(delta, c.K6)
	} else {
		sign := 1.0
		if ta < c.K2/10 {
			sign = -1.0
		}
		t67 = (c.K6 / 10) * sign * (math.Log10(delta) + c.K7/100)
	}

	return term1 + term2 + t67
}

// Correct returns the drift-corrected sky temperature in °C for a raw
// infrared sky reading ts and ambient temperature ta, both in °C. The
// function is total and deterministic; NaN inputs propagate per normal
// floating-point semantics.
func Correct(ts, ta float64, c Coefficients) float64 {
	return ts - driftTerm(ta, c)
}

// Classify maps a corrected sky temperature to a CloudState. Values below
// clearLimit are Clear, values above cloudyLimit are VeryCloudy, and
// everything in between, boundaries included, is Cloudy. The limits are
// not validated against each other; an inverted pair still resolves to
// exactly one state.
func Classify(tsky, clearLimit, cloudyLimit float64) CloudState {
	if tsky < clearLimit {
		return Clear
	}
	if tsky > cloudyLimit {
		return VeryCloudy
	}
	return Cloudy
}

// ClassifyDefault classifies using the default boundaries.
func ClassifyDefault(tsky float64) CloudState {
	return Classify(tsky, DefaultClearLimit, DefaultCloudyLimit)
}
