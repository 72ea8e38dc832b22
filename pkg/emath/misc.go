package emath

import "math"

// Some functions that only operate on basic types, that are useful

// https://www.sjbrown.co.uk/posts/gamma-correct-rendering/ - "linear RGB to sRGB"
func GammaExpand_F64(f float64) float64 {
	if f <= 0.0031308 {
		return 12.92 * f
	}
	return 1.055 * math.Pow(f, 1.0/2.4) - 0.055
}

func Deg2Rad(d float64) float64 { return d * math.Pi / 180.0 }
func Rad2Deg(r float64) float64 { return r * 180.0 / math.Pi }

func Sind(d float64) float64 { return math.Sin(Deg2Rad(d)) }
func Cosd(d float64) float64 { return math.Cos(Deg2Rad(d)) }
func Atan2d(y, x float64) float64 { return Rad2Deg(math.Atan2(y, x)) }

// WrapDeg360 maps an angle into [0,360).
func WrapDeg360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	if d >= 360.0 { // -tiny + 360 can round up
		d = 0
	}
	return d
}

// WrapDeg180 maps an angle into [-180,180).
func WrapDeg180(d float64) float64 {
	return WrapDeg360(d + 180.0) - 180.0
}

// AngularSeparation is the great circle distance between two points
// given in radians, using the Vincenty formula (stable at all
// separations, unlike the haversine or cosine forms).
func AngularSeparation(lon1, lat1, lon2, lat2 float64) float64 {
	sdlon := math.Sin(lon2 - lon1)
	cdlon := math.Cos(lon2 - lon1)
	slat1, clat1 := math.Sin(lat1), math.Cos(lat1)
	slat2, clat2 := math.Sin(lat2), math.Cos(lat2)

	num1 := clat2 * sdlon
	num2 := clat1*slat2 - slat1*clat2*cdlon
	denominator := slat1*slat2 + clat1*clat2*cdlon

	return math.Atan2(math.Hypot(num1, num2), denominator)
}

// RoundHalfEven matches numpy's rint: ties go to the even integer.
func RoundHalfEven(f float64) int {
	return int(math.RoundToEven(f))
}

// IsClose is the numpy.allclose test for a single pair, with default tolerances.
func IsClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8 + 1e-5*math.Abs(b)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo { return lo }
	if v > hi { return hi }
	return v
}
