package skyimage

// A SkyImage is a grid of values laid out on the sky, via a WCS.

import(
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/fitsheader"
	"github.com/abworrall/skyimage/pkg/regions"
	"github.com/abworrall/skyimage/pkg/sky"
	"github.com/abworrall/skyimage/pkg/wcs"
)

var(
	ErrWCSNotAligned = errors.New("world coordinate systems not aligned; reproject one of the images first")
	ErrInvalidMode   = errors.New("invalid mode")
	ErrShape         = errors.New("bad data shape")
	ErrOutOfBounds   = errors.New("position outside image")
	ErrNoOverlap     = errors.New("no overlap")
)

type SkyImage struct {
	Name string
	Data emath.FloatGrid      // Data.Get(x,y); row y=0 is the bottom of the image
	WCS  *wcs.WCS
	Unit string               // FITS BUNIT string, may be empty
	Meta *fitsheader.Header
}

// EmptyOptions use the Fermi gtbin parameter names.
type EmptyOptions struct {
	Name             string  `yaml:"name"`
	wcs.GtbinParams          `yaml:",inline"`
	Fill             float64 `yaml:"fill"`
	Unit             string  `yaml:"unit"`
}

func DefaultEmptyOptions() EmptyOptions {
	return EmptyOptions{GtbinParams: wcs.DefaultGtbinParams()}
}

// Empty makes an image from scratch, every pixel set to opts.Fill. If
// no reference pixel is given, it sits in the centre of the image.
func Empty(opts EmptyOptions) (*SkyImage, error) {
	hdr, err := wcs.NewGtbinHeader(opts.GtbinParams)
	if err != nil {
		return nil, fmt.Errorf("Empty: %v", err)
	}
	w, err := wcs.FromHeader(hdr)
	if err != nil {
		return nil, fmt.Errorf("Empty: %v", err)
	}

	data := emath.NewFloatGrid(opts.NXPix, opts.NYPix)
	data.Fill(opts.Fill)

	return &SkyImage{
		Name: opts.Name,
		Data: data,
		WCS: w,
		Unit: opts.Unit,
		Meta: hdr,
	}, nil
}

// EmptyLike copies the geometry of `img`, with every pixel set to `fill`.
func EmptyLike(img *SkyImage, fill float64) *SkyImage {
	data := img.Data.NewFromThis()
	data.Fill(fill)
	return &SkyImage{
		Name: img.Name,
		Data: data,
		WCS: img.WCS.Copy(),
		Meta: img.WCS.Header(),
	}
}

// New wraps existing data; it doesn't copy the grid.
func New(name string, data emath.FloatGrid, w *wcs.WCS) *SkyImage {
	return &SkyImage{Name: name, Data: data, WCS: w, Meta: fitsheader.New()}
}

func (si *SkyImage)Copy() *SkyImage {
	si2 := &SkyImage{
		Name: si.Name,
		Data: si.Data.Copy(),
		Unit: si.Unit,
		Meta: si.Meta.Copy(),
	}
	if si.WCS != nil {
		si2.WCS = si.WCS.Copy()
	}
	return si2
}

// derived builds a new image from si, with new data and wcs. The unit
// and name come along; the metadata doesn't, as it probably describes
// the old geometry.
func (si *SkyImage)derived(data emath.FloatGrid, w *wcs.WCS) *SkyImage {
	return &SkyImage{Name: si.Name, Data: data, WCS: w, Unit: si.Unit, Meta: fitsheader.New()}
}

func (si *SkyImage)Nx() int { return si.Data.Dx() }
func (si *SkyImage)Ny() int { return si.Data.Dy() }

func (si *SkyImage)Fill(v float64) {
	si.Data.Fill(v)
}

// CenterPix is the pixel coord of the middle of the image.
func (si *SkyImage)CenterPix() regions.PixCoord {
	return regions.NewPixCoord(0.5 * float64(si.Nx()-1), 0.5 * float64(si.Ny()-1))
}

func (si *SkyImage)Center() (sky.Coord, error) {
	c := si.CenterPix()
	return si.WCS.PixelToSkyCoord(c.X, c.Y)
}

// Coordinate modes
const(
	ModeCenter = "center"
	ModeEdges  = "edges"
	ModeCorner = "corner"
)

// CoordinatesPix returns grids of the pixel x and y coords; either of the
// pixel centres, or (with one more row and column) of the pixel edges.
func (si *SkyImage)CoordinatesPix(mode string) (emath.FloatGrid, emath.FloatGrid, error) {
	nx, ny, off := si.Nx(), si.Ny(), 0.0
	switch mode {
	case ModeCenter:
	case ModeEdges:
		nx, ny, off = nx+1, ny+1, -0.5
	default:
		return emath.FloatGrid{}, emath.FloatGrid{}, fmt.Errorf("coordinates '%s': %w", mode, ErrInvalidMode)
	}

	xs, ys := emath.NewFloatGrid(nx, ny), emath.NewFloatGrid(nx, ny)
	for y:=0; y<ny; y++ {
		for x:=0; x<nx; x++ {
			xs.Set(x, y, float64(x) + off)
			ys.Set(x, y, float64(y) + off)
		}
	}
	return xs, ys, nil
}

// Coordinates returns grids of lon and lat (degrees, in the frame of
// the WCS) for the pixel centres or edges. Positions that can't be
// projected come out as NaN.
func (si *SkyImage)Coordinates(mode string) (emath.FloatGrid, emath.FloatGrid, error) {
	xs, ys, err := si.CoordinatesPix(mode)
	if err != nil {
		return xs, ys, err
	}
	lons, lats := xs.NewFromThis(), xs.NewFromThis()
	for y:=0; y<xs.Dy(); y++ {
		for x:=0; x<xs.Dx(); x++ {
			lon, lat, err := si.WCS.PixelToWorld(xs.Get(x,y), ys.Get(x,y))
			if err != nil {
				lon, lat = math.NaN(), math.NaN()
			}
			lons.Set(x, y, lon)
			lats.Set(x, y, lat)
		}
	}
	return lons, lats, nil
}

// Contains reports whether the position lands within the image. The
// test is 0.5 <= x <= nx+0.5 (and the same for y).
func (si *SkyImage)Contains(c sky.Coord) bool {
	x, y, err := si.WCS.SkyCoordToPixel(c)
	if err != nil {
		return false
	}
	nx, ny := float64(si.Nx()), float64(si.Ny())
	return x >= 0.5 && x <= nx + 0.5 && y >= 0.5 && y <= ny + 0.5
}

type Corner struct {
	Name  string
	Coord sky.Coord
}

// Footprint returns the sky positions of the four corners of the image,
// starting at the lower left and going clockwise. In "center" mode the
// positions are at pixel centres, in "corner" mode at the pixel edges.
func (si *SkyImage)Footprint(mode string) ([]Corner, error) {
	nx, ny := float64(si.Nx()), float64(si.Ny())
	var pix [4][2]float64
	switch mode {
	case ModeCenter:
		pix = [4][2]float64{{0, 0}, {0, ny}, {nx, ny}, {nx, 0}}
	case ModeCorner:
		pix = [4][2]float64{{-0.5, -0.5}, {-0.5, ny + 0.5}, {nx + 0.5, ny + 0.5}, {nx + 0.5, -0.5}}
	default:
		return nil, fmt.Errorf("footprint '%s': %w", mode, ErrInvalidMode)
	}

	names := []string{"lower left", "upper left", "upper right", "lower right"}
	corners := []Corner{}
	for i, p := range pix {
		c, err := si.WCS.PixelToSkyCoord(p[0], p[1])
		if err != nil {
			return nil, fmt.Errorf("footprint %s: %v", names[i], err)
		}
		corners = append(corners, Corner{names[i], c})
	}
	return corners, nil
}

func (si *SkyImage)WCSSkyCoordToPixel(c sky.Coord) (float64, float64, error) {
	return si.WCS.SkyCoordToPixel(c)
}

func (si *SkyImage)WCSPixelToSkyCoord(x, y float64) (sky.Coord, error) {
	return si.WCS.PixelToSkyCoord(x, y)
}

// WCSPixelScale is in degrees; method is "cdelt" or "proj_plane".
func (si *SkyImage)WCSPixelScale(method string) ([2]float64, error) {
	return si.WCS.PixelScales(method)
}

// Lookup returns the value of the pixel nearest to the position.
func (si *SkyImage)Lookup(c sky.Coord) (float64, error) {
	x, y, err := si.WCS.SkyCoordToPixel(c)
	if err != nil {
		return math.NaN(), err
	}
	ix, iy := emath.RoundHalfEven(x), emath.RoundHalfEven(y)
	if !si.Data.In(ix, iy) {
		return math.NaN(), fmt.Errorf("lookup %s -> (%d,%d): %w", c, ix, iy, ErrOutOfBounds)
	}
	return si.Data.Get(ix, iy), nil
}

// LookupMax finds the brightest pixel, optionally just within a region
// (pass nil for the whole image).
func (si *SkyImage)LookupMax(region regions.Region) (sky.Coord, float64, error) {
	data := si.Data.Copy()
	if region != nil {
		mask, err := si.RegionMask(region)
		if err != nil {
			return sky.Coord{}, math.NaN(), err
		}
		if err := data.Mul(mask.Data); err != nil {
			return sky.Coord{}, math.NaN(), err
		}
	}

	x, y, ok := data.NaNArgMax()
	if !ok {
		return sky.Coord{}, math.NaN(), fmt.Errorf("lookup max: all values are NaN")
	}
	c, err := si.WCS.PixelToSkyCoord(float64(x), float64(y))
	if err != nil {
		return sky.Coord{}, math.NaN(), err
	}
	return c, si.Data.Get(x, y), nil
}

// SolidAngle returns an image of the solid angle of each pixel, in
// steradians. Each pixel is approximated as a rectangle, with sides
// given by the separations between its corners.
func (si *SkyImage)SolidAngle() (*SkyImage, error) {
	lons, lats, err := si.Coordinates(ModeEdges)
	if err != nil {
		return nil, err
	}

	rad := func(x, y int) (float64, float64) {
		return emath.Deg2Rad(lons.Get(x, y)), emath.Deg2Rad(lats.Get(x, y))
	}

	omega := si.Data.NewFromThis()
	for y:=0; y<si.Ny(); y++ {
		for x:=0; x<si.Nx(); x++ {
			lon0, lat0 := rad(x, y)
			lonX, latX := rad(x+1, y)
			lonY, latY := rad(x, y+1)
			dx := emath.AngularSeparation(lon0, lat0, lonX, latX)
			dy := emath.AngularSeparation(lon0, lat0, lonY, latY)
			omega.Set(x, y, dx*dy)
		}
	}

	out := si.derived(omega, si.WCS.Copy())
	out.Name = "solid_angle"
	out.Unit = "sr"
	return out, nil
}

// Threshold builds a mask that is 0 where the data exceeds t or is NaN,
// 1 elsewhere.
func (si *SkyImage)Threshold(t float64) *SkyMask {
	mask := si.Data.NewFromThis()
	for y:=0; y<si.Ny(); y++ {
		for x:=0; x<si.Nx(); x++ {
			if v := si.Data.Get(x,y); v > t || math.IsNaN(v) {
				mask.Set(x, y, 0)
			} else {
				mask.Set(x, y, 1)
			}
		}
	}
	return NewSkyMask(mask, si.WCS.Copy())
}

// RegionMask is 1 for the pixels whose centres are inside the region,
// 0 elsewhere. The image data is untouched.
func (si *SkyImage)RegionMask(region regions.Region) (*SkyMask, error) {
	pr, err := region.ToPixel(si.WCS)
	if err != nil {
		return nil, fmt.Errorf("region mask: %v", err)
	}
	return NewSkyMask(pr.PixelMask(si.Nx(), si.Ny()), si.WCS.Copy()), nil
}

func (si *SkyImage)String() string {
	str := fmt.Sprintf("Name: %s\n", si.Name)
	str += fmt.Sprintf("Data shape: (%d, %d)\n", si.Ny(), si.Nx())
	str += fmt.Sprintf("Data unit: %s\n", si.Unit)
	str += fmt.Sprintf("Data mean: %.3e\n", si.Data.NaNMean())
	if si.WCS != nil {
		str += fmt.Sprintf("WCS type: [%s %s]\n", si.WCS.CType[0], si.WCS.CType[1])
	}
	return str
}

// Info logs a summary of the image.
func (si *SkyImage)Info() {
	log.Printf("SkyImage\n%s", si)
}
