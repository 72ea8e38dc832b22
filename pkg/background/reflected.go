package background

// Reflected-region background estimation. The OFF regions are copies of
// the ON region, rotated about the pointing position (the camera
// centre), so they all sit at the same offset and see the same
// acceptance. Regions that touch an excluded area are skipped.

import(
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/regions"
	"github.com/abworrall/skyimage/pkg/sky"
	"github.com/abworrall/skyimage/pkg/skyimage"
	"github.com/abworrall/skyimage/pkg/wcs"
)

var(
	ErrRegionCoversCenter = errors.New("ON region contains the pointing position")
	ErrNoOffRegions       = errors.New("no OFF regions found")
)

// Angles are in radians.
type Options struct {
	AngleIncrement   float64 `yaml:"angle_increment"`
	MinDistance      float64 `yaml:"min_distance"`         // between neighbouring OFF regions
	MinDistanceInput float64 `yaml:"min_distance_input"`   // between the ON region and the first/last OFF
	MaxRegionNumber  int     `yaml:"max_region_number"`
	Verbosity        int     `yaml:"-"`
}

func DefaultOptions() Options {
	return Options{
		AngleIncrement: 0.1,
		MinDistance: 0,
		MinDistanceInput: 0.1,
		MaxRegionNumber: 10000,
	}
}

func (o Options)String() string {
	return fmt.Sprintf("reflected{inc=%.3frad, mindist=%.3frad, mindistinput=%.3frad, max=%d}",
		o.AngleIncrement, o.MinDistance, o.MinDistanceInput, o.MaxRegionNumber)
}

// FindReflectedRegions walks around `center`, placing copies of `region`
// at the same offset. A nil mask means nothing is excluded.
func FindReflectedRegions(region regions.CircleSkyRegion, center sky.Coord, mask *skyimage.SkyMask, opts Options) ([]regions.CircleSkyRegion, error) {
	if opts.AngleIncrement <= 0 {
		return nil, fmt.Errorf("reflected: angle increment must be positive, got %f", opts.AngleIncrement)
	}
	if mask == nil {
		var err error
		if mask, err = allowAllMask(region, center); err != nil {
			return nil, err
		}
	}
	w := mask.WCS

	pr, err := region.ToPixel(w)
	if err != nil {
		return nil, fmt.Errorf("reflected: %v", err)
	}
	onPix := pr.(regions.CirclePixelRegion)

	cx, cy, err := w.SkyCoordToPixel(center)
	if err != nil {
		return nil, fmt.Errorf("reflected: center: %v", err)
	}
	centerPix := regions.NewPixCoord(cx, cy)

	offset := centerPix.Separation(onPix.Center)
	if onPix.Radius >= offset {
		return nil, fmt.Errorf("reflected: radius %.2fpix, offset %.2fpix: %w", onPix.Radius, offset, ErrRegionCoversCenter)
	}

	dx, dy := onPix.Center.X - cx, onPix.Center.Y - cy
	angle := math.Atan2(dx, dy)
	minAng := 2.0 * math.Asin(onPix.Radius / offset)
	maxAngle := angle + 2*math.Pi - minAng - opts.MinDistanceInput
	minAng += opts.MinDistance

	distance := mask.DistanceImage()

	if opts.Verbosity > 0 {
		log.Printf("reflected: on %s, offset %.2fpix, %s\n", onPix, offset, opts)
	}

	found := []regions.CircleSkyRegion{}
	for curr := angle + minAng + opts.MinDistanceInput; curr < maxAngle; {
		test := regions.CirclePixelRegion{
			Center: regions.NewPixCoord(cx + offset*math.Sin(curr), cy + offset*math.Cos(curr)),
			Radius: onPix.Radius,
		}

		if isExcluded(test, distance) {
			curr += opts.AngleIncrement
			continue
		}

		off, err := test.ToSky(w)
		if err != nil {
			return nil, fmt.Errorf("reflected: %v", err)
		}
		found = append(found, off)
		if opts.Verbosity > 1 {
			log.Printf("reflected: OFF #%d at %.3frad, %s\n", len(found), curr, off)
		}

		curr += minAng
		if len(found) >= opts.MaxRegionNumber {
			break
		}
	}

	return found, nil
}

// isExcluded looks up the distance to the nearest excluded pixel, at
// the centre of the region. Regions centred off the mask are excluded.
func isExcluded(r regions.CirclePixelRegion, distance *skyimage.SkyImage) bool {
	x, y := emath.RoundHalfEven(r.Center.X), emath.RoundHalfEven(r.Center.Y)
	if !distance.Data.In(x, y) {
		return true
	}
	return distance.Data.Get(x, y) < r.Radius
}

// allowAllMask is an empty mask on a TAN grid around the center, big
// enough to hold every reflected region.
func allowAllMask(region regions.CircleSkyRegion, center sky.Coord) (*skyimage.SkyMask, error) {
	extent := center.Separation(region.Center) + region.Radius
	binsz := 0.01
	if extent / binsz > 500 {
		binsz = extent / 500
	}
	npix := 2*int(math.Ceil(extent / binsz)) + 3

	c := center.Transform(sky.ICRS)
	opts := skyimage.EmptyOptions{
		Name: "allow-all mask",
		GtbinParams: wcs.GtbinParams{
			NXPix: npix,
			NYPix: npix,
			BinSz: binsz,
			XRef: c.Lon,
			YRef: c.Lat,
			Proj: "TAN",
			CoordSys: "CEL",
		},
		Fill: 1,
	}
	si, err := skyimage.Empty(opts)
	if err != nil {
		return nil, fmt.Errorf("reflected: empty mask: %v", err)
	}
	return skyimage.MaskFromImage(si), nil
}

// Result is the outcome of a reflected-regions background estimate.
type Result struct {
	On    regions.CircleSkyRegion
	Off   []regions.CircleSkyRegion
	Alpha float64   // exposure ratio ON/OFF
}

func (r Result)String() string {
	return fmt.Sprintf("reflected: on %s, %d off regions, alpha=%.4f", r.On, len(r.Off), r.Alpha)
}

// Estimate finds the OFF regions for `on`; it is an error to find none.
func Estimate(on regions.CircleSkyRegion, center sky.Coord, mask *skyimage.SkyMask, opts Options) (Result, error) {
	off, err := FindReflectedRegions(on, center, mask, opts)
	if err != nil {
		return Result{}, err
	}
	if len(off) == 0 {
		return Result{}, fmt.Errorf("reflected around %s: %w", center, ErrNoOffRegions)
	}
	return Result{On: on, Off: off, Alpha: 1.0 / float64(len(off))}, nil
}

// Counts sums a counts image over the ON and OFF regions, and gives the
// excess, ON - alpha*OFF.
func (r Result)Counts(counts *skyimage.SkyImage) (non, noff, excess float64, err error) {
	sum := func(reg regions.Region) (float64, error) {
		m, err := counts.RegionMask(reg)
		if err != nil {
			return 0, err
		}
		d := counts.Data.Copy()
		if err := d.Mul(m.Data); err != nil {
			return 0, err
		}
		return d.NaNSum(), nil
	}

	if non, err = sum(r.On); err != nil {
		return 0, 0, 0, err
	}
	for _, off := range r.Off {
		n, err := sum(off)
		if err != nil {
			return 0, 0, 0, err
		}
		noff += n
	}
	return non, noff, non - r.Alpha*noff, nil
}
