package sky

// Positions on the celestial sphere, in one of two frames.

import(
	"fmt"
	"math"
	"strings"

	"github.com/abworrall/skyimage/pkg/emath"
)

type Frame int

const(
	ICRS Frame = iota
	Galactic
)

func (f Frame)String() string {
	switch f {
	case ICRS:     return "icrs"
	case Galactic: return "galactic"
	}
	return fmt.Sprintf("frame(%d)", int(f))
}

// ParseFrame accepts astropy-ish names, and the gtbin CEL/GAL names.
func ParseFrame(s string) (Frame, error) {
	switch strings.ToLower(s) {
	case "icrs", "fk5", "cel", "equatorial", "radec": return ICRS, nil
	case "galactic", "gal":                           return Galactic, nil
	}
	return ICRS, fmt.Errorf("unknown frame '%s'", s)
}

func (f Frame)MarshalYAML() (interface{}, error) { return f.String(), nil }

func (f *Frame)UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseFrame(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

var(
	// Rotates ICRS unit vectors into Galactic ones (Hipparcos
	// definition, as used by astropy). The transpose goes the other way.
	icrsToGalactic = emath.Mat3{
		-0.0548755604162154, -0.8734370902348850, -0.4838350155487132,
		 0.4941094278755837, -0.4448296299600112,  0.7469822444972189,
		-0.8676661490190047, -0.1980763734312015,  0.4559837761750669,
	}
)

// A Coord is a position on the sky. Lon is RA or l, Lat is Dec or b;
// both in degrees.
type Coord struct {
	Lon   float64
	Lat   float64
	Frame Frame
}

func New(lon, lat float64, frame Frame) Coord {
	return Coord{Lon: emath.WrapDeg360(lon), Lat: lat, Frame: frame}
}

func NewICRS(ra, dec float64) Coord   { return New(ra, dec, ICRS) }
func NewGalactic(l, b float64) Coord  { return New(l, b, Galactic) }

func (c Coord)String() string {
	if c.Frame == Galactic {
		return fmt.Sprintf("(l,b)=(%.4f, %.4f) deg", c.Lon, c.Lat)
	}
	return fmt.Sprintf("(ra,dec)=(%.4f, %.4f) deg", c.Lon, c.Lat)
}

// Transform returns the same point expressed in another frame.
func (c Coord)Transform(to Frame) Coord {
	if c.Frame == to {
		return c
	}
	v := emath.UnitVector(c.Lon, c.Lat)
	switch to {
	case Galactic:
		v = icrsToGalactic.Apply(v)
	default:
		v = icrsToGalactic.Transpose().Apply(v)
	}
	lon, lat := v.LonLat()
	return Coord{Lon: lon, Lat: lat, Frame: to}
}

// Separation is the great circle distance in degrees.
func (c Coord)Separation(other Coord) float64 {
	o := other.Transform(c.Frame)
	return emath.Rad2Deg(emath.AngularSeparation(
		emath.Deg2Rad(c.Lon), emath.Deg2Rad(c.Lat),
		emath.Deg2Rad(o.Lon), emath.Deg2Rad(o.Lat)))
}

// PositionAngle of `other` relative to c, in degrees east of north, [0,360).
func (c Coord)PositionAngle(other Coord) float64 {
	o := other.Transform(c.Frame)
	lon1, lat1 := emath.Deg2Rad(c.Lon), emath.Deg2Rad(c.Lat)
	lon2, lat2 := emath.Deg2Rad(o.Lon), emath.Deg2Rad(o.Lat)

	dlon := lon2 - lon1
	y := math.Sin(dlon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)
	return emath.WrapDeg360(emath.Rad2Deg(math.Atan2(y, x)))
}

// DirectionalOffsetBy moves along a great circle, starting towards
// `posAngle` (degrees east of north), for `sep` degrees.
func (c Coord)DirectionalOffsetBy(posAngle, sep float64) Coord {
	lat1 := emath.Deg2Rad(c.Lat)
	pa := emath.Deg2Rad(posAngle)
	d := emath.Deg2Rad(sep)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(pa))
	dlon := math.Atan2(math.Sin(pa)*math.Sin(d)*math.Cos(lat1), math.Cos(d) - math.Sin(lat1)*math.Sin(lat2))

	return New(c.Lon + emath.Rad2Deg(dlon), emath.Rad2Deg(lat2), c.Frame)
}
