// Package solar computes the apparent elevation of the Sun for the
// observing site. The safety layer uses it to tell day from night, since
// infrared cloud detection is only meaningful against a dark sky dome.
package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

// Civil twilight ends when the Sun drops more than 6 degrees below the
// horizon; astronomical darkness starts at -18.
const (
	CivilTwilightElevation        = -6.0
	AstronomicalDarknessElevation = -18.0
)

// Elevation returns the Sun's apparent elevation in degrees above the
// horizon at time t for the given site coordinates. The result includes
// a fixed refraction correction near the horizon.
func Elevation(t time.Time, lat, lon float64) float64 {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	sunLong := L0 + C
	omega := 125.04 - 1934.136*T
	lambda := sunLong - 0.00569 - 0.00478*math.Sin(degToRad(omega))
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	declRad := math.Asin(math.Sin(degToRad(eps0)) * math.Sin(degToRad(lambda)))

	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	utc := t.UTC()
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60.0
	tst := utcMin + 4*lon + eqTimeMin
	haRad := degToRad(tst/4 - 180)

	latRad := degToRad(lat)
	cosZen := math.Sin(latRad)*math.Sin(declRad) + math.Cos(latRad)*math.Cos(declRad)*math.Cos(haRad)
	return 90 - radToDeg(math.Acos(cosZen)) + 0.5667
}

// IsDark reports whether the site is past civil twilight at time t.
func IsDark(t time.Time, lat, lon float64) bool {
	return Elevation(t, lat, lon) < CivilTwilightElevation
}
