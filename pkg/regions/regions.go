package regions

// Circular regions on the pixel grid, and on the sky.

import(
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/sky"
	"github.com/abworrall/skyimage/pkg/wcs"
)

// A Region is anything that can be placed onto the pixel grid of a WCS.
type Region interface {
	ToPixel(w *wcs.WCS) (PixelRegion, error)
}

type PixelRegion interface {
	Region
	Contains(p PixCoord) bool
	BoundingBox() BoundingBox
	PixelMask(nx, ny int) emath.FloatGrid
}

// PixCoord is a 0-based pixel position; integer values are pixel centres.
type PixCoord struct {
	r2.Vec
}

func NewPixCoord(x, y float64) PixCoord { return PixCoord{r2.Vec{X:x, Y:y}} }

func (p PixCoord)String() string { return fmt.Sprintf("pix(%.3f,%.3f)", p.X, p.Y) }

func (p PixCoord)Separation(q PixCoord) float64 { return r2.Norm(r2.Sub(p.Vec, q.Vec)) }

// BoundingBox in pixel indices; the max values are exclusive.
type BoundingBox struct {
	IXMin, IXMax int
	IYMin, IYMax int
}

func (bb BoundingBox)String() string {
	return fmt.Sprintf("bbox[x:%d-%d, y:%d-%d]", bb.IXMin, bb.IXMax, bb.IYMin, bb.IYMax)
}

func (bb BoundingBox)Shape() (int, int) { return bb.IXMax-bb.IXMin, bb.IYMax-bb.IYMin }

// CirclePixelRegion is a circle measured in pixels.
type CirclePixelRegion struct {
	Center PixCoord
	Radius float64
}

func (c CirclePixelRegion)String() string {
	return fmt.Sprintf("circle[%s, r=%.3fpix]", c.Center, c.Radius)
}

func (c CirclePixelRegion)ToPixel(w *wcs.WCS) (PixelRegion, error) { return c, nil }

// Contains is strict; a pixel centre exactly on the edge is outside.
func (c CirclePixelRegion)Contains(p PixCoord) bool {
	return c.Center.Separation(p) < c.Radius
}

func (c CirclePixelRegion)BoundingBox() BoundingBox {
	return BoundingBox{
		IXMin: int(math.Floor(c.Center.X - c.Radius + 0.5)),
		IXMax: int(math.Ceil(c.Center.X + c.Radius + 0.5)),
		IYMin: int(math.Floor(c.Center.Y - c.Radius + 0.5)),
		IYMax: int(math.Ceil(c.Center.Y + c.Radius + 0.5)),
	}
}

// PixelMask is 1 for every pixel whose centre is inside the circle, 0
// elsewhere, on an nx by ny grid.
func (c CirclePixelRegion)PixelMask(nx, ny int) emath.FloatGrid {
	mask := emath.NewFloatGrid(nx, ny)
	bb := c.BoundingBox()
	for y:=max(bb.IYMin, 0); y<min(bb.IYMax, ny); y++ {
		for x:=max(bb.IXMin, 0); x<min(bb.IXMax, nx); x++ {
			if c.Contains(NewPixCoord(float64(x), float64(y))) {
				mask.Set(x, y, 1.0)
			}
		}
	}
	return mask
}

// ToSky measures the radius with the mean proj-plane pixel scale.
func (c CirclePixelRegion)ToSky(w *wcs.WCS) (CircleSkyRegion, error) {
	center, err := w.PixelToSkyCoord(c.Center.X, c.Center.Y)
	if err != nil {
		return CircleSkyRegion{}, fmt.Errorf("ToSky %s: %v", c, err)
	}
	scale, err := meanScale(w)
	if err != nil {
		return CircleSkyRegion{}, err
	}
	return CircleSkyRegion{Center: center, Radius: c.Radius * scale}, nil
}

// CircleSkyRegion is a circle on the sky; Radius is in degrees.
type CircleSkyRegion struct {
	Center sky.Coord `yaml:"center"`
	Radius float64   `yaml:"radius"`
}

func (c CircleSkyRegion)String() string {
	return fmt.Sprintf("circle[%s, r=%.4fdeg]", c.Center, c.Radius)
}

func (c CircleSkyRegion)Contains(coord sky.Coord) bool {
	return c.Center.Separation(coord) < c.Radius
}

func (c CircleSkyRegion)ToPixel(w *wcs.WCS) (PixelRegion, error) {
	x, y, err := w.SkyCoordToPixel(c.Center)
	if err != nil {
		return nil, fmt.Errorf("ToPixel %s: %v", c, err)
	}
	scale, err := meanScale(w)
	if err != nil {
		return nil, err
	}
	return CirclePixelRegion{Center: NewPixCoord(x, y), Radius: c.Radius / scale}, nil
}

func meanScale(w *wcs.WCS) (float64, error) {
	s, err := w.PixelScales(wcs.ScaleProjPlane)
	if err != nil {
		return 0, err
	}
	return (s[0] + s[1]) / 2.0, nil
}
