package wcs

// Sky projections, following Calabretta & Greisen 2002, "Representations
// of celestial coordinates in FITS" (paper II). Everything is in degrees;
// (phi, theta) are native spherical coords, (x, y) are on the plane of
// intermediate world coordinates.

import(
	"fmt"
	"math"

	"github.com/abworrall/skyimage/pkg/emath"
)

type projection interface {
	Code() string
	Theta0() float64 // native latitude of the fiducial point; phi0 is always 0 here
	Project(phi, theta float64) (x, y float64, err error)
	Deproject(x, y float64) (phi, theta float64, err error)
}

const r0 = 180.0 / math.Pi

func getProjection(code string) (projection, error) {
	switch code {
	case "CAR": return car{}, nil
	case "AIT": return ait{}, nil
	case "TAN", "SIN", "ARC", "ZEA": return zenithal{code}, nil
	}
	return nil, fmt.Errorf("projection '%s': %w", code, ErrUnknownProjection)
}

// Plate carrée: the plane is just (phi, theta).
type car struct{}

func (car)Code() string    { return "CAR" }
func (car)Theta0() float64 { return 0 }

func (car)Project(phi, theta float64) (float64, float64, error) {
	return emath.WrapDeg180(phi), theta, nil
}

func (car)Deproject(x, y float64) (float64, float64, error) {
	if math.Abs(y) > 90 {
		return 0, 0, fmt.Errorf("CAR y=%f: %w", y, ErrNoSolution)
	}
	return x, y, nil
}

// Hammer-Aitoff.
type ait struct{}

func (ait)Code() string    { return "AIT" }
func (ait)Theta0() float64 { return 0 }

func (ait)Project(phi, theta float64) (float64, float64, error) {
	phi = emath.WrapDeg180(phi)
	gamma := r0 * math.Sqrt(2.0 / (1.0 + emath.Cosd(theta)*emath.Cosd(phi/2.0)))
	return 2.0 * gamma * emath.Cosd(theta) * emath.Sind(phi/2.0), gamma * emath.Sind(theta), nil
}

func (ait)Deproject(x, y float64) (float64, float64, error) {
	zz := 1.0 - math.Pow(x*math.Pi/720.0, 2) - math.Pow(y*math.Pi/360.0, 2)
	if zz < 0.5 {
		return 0, 0, fmt.Errorf("AIT (%f,%f): %w", x, y, ErrNoSolution)
	}
	z := math.Sqrt(zz)
	phi := 2.0 * emath.Atan2d(math.Pi*z*x/360.0, 2.0*zz - 1.0)
	theta := emath.Rad2Deg(math.Asin(emath.Clamp(math.Pi*y*z/180.0, -1, 1)))
	return phi, theta, nil
}

// The zenithal family share everything apart from the radial function.
type zenithal struct {
	code string
}

func (z zenithal)Code() string  { return z.code }
func (zenithal)Theta0() float64 { return 90 }

func (z zenithal)Project(phi, theta float64) (float64, float64, error) {
	var r float64
	switch z.code {
	case "TAN":
		if theta <= 0 {
			return 0, 0, fmt.Errorf("TAN theta=%f: %w", theta, ErrNoSolution)
		}
		r = r0 * emath.Cosd(theta) / emath.Sind(theta)
	case "SIN":
		if theta < 0 {
			return 0, 0, fmt.Errorf("SIN theta=%f: %w", theta, ErrNoSolution)
		}
		r = r0 * emath.Cosd(theta)
	case "ARC":
		r = 90.0 - theta
	case "ZEA":
		r = r0 * math.Sqrt(2.0 * (1.0 - emath.Sind(theta)))
	}
	return r * emath.Sind(phi), -r * emath.Cosd(phi), nil
}

func (z zenithal)Deproject(x, y float64) (float64, float64, error) {
	r := math.Hypot(x, y)
	phi := 0.0
	if r != 0 {
		phi = emath.Atan2d(x, -y)
	}

	var theta float64
	switch z.code {
	case "TAN":
		theta = emath.Atan2d(r0, r)
	case "SIN":
		if r/r0 > 1 {
			return 0, 0, fmt.Errorf("SIN r=%f: %w", r, ErrNoSolution)
		}
		theta = emath.Rad2Deg(math.Acos(r/r0))
	case "ARC":
		if r > 180 {
			return 0, 0, fmt.Errorf("ARC r=%f: %w", r, ErrNoSolution)
		}
		theta = 90.0 - r
	case "ZEA":
		if r/(2*r0) > 1 {
			return 0, 0, fmt.Errorf("ZEA r=%f: %w", r, ErrNoSolution)
		}
		theta = 90.0 - 2.0*emath.Rad2Deg(math.Asin(r/(2*r0)))
	}
	return phi, theta, nil
}
