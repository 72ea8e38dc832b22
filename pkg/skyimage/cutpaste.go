package skyimage

// Cutting, pasting, padding and resampling. All of these keep the WCS
// in step with the pixels, so the sky doesn't move.

import(
	"fmt"
	"math"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/sky"
	"github.com/abworrall/skyimage/pkg/wcs"
)

// Paste methods
const(
	PasteSum     = "sum"
	PasteReplace = "replace"
)

// getBoundaries finds where the edges of `img` land on the pixel grid of
// `ref`, rounded and clipped to ref. With check set, the edges need to
// land exactly on pixel boundaries.
func getBoundaries(ref, img *SkyImage, check bool) (xlo, xhi, ylo, yhi int, err error) {
	corners := [2][2]float64{{0, 0}, {float64(img.Nx()), float64(img.Ny())}}
	var bounds [2][2]float64
	for i, p := range corners {
		c, err := img.WCS.PixelToSkyCoord(p[0], p[1])
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("boundaries: %v", err)
		}
		x, y, err := ref.WCS.SkyCoordToPixel(c)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("boundaries: %v", err)
		}
		bounds[i] = [2]float64{x, y}
	}

	if check {
		for _, b := range bounds {
			for _, v := range b {
				if !emath.IsClose(v, math.RoundToEven(v)) {
					return 0, 0, 0, 0, fmt.Errorf("boundary at %f: %w", v, ErrWCSNotAligned)
				}
			}
		}
	}

	clip := func(v float64, max int) int {
		return emath.RoundHalfEven(emath.Clamp(v, 0, float64(max)))
	}
	xlo, xhi = clip(bounds[0][0], ref.Nx()), clip(bounds[1][0], ref.Nx())
	ylo, yhi = clip(bounds[0][1], ref.Ny()), clip(bounds[1][1], ref.Ny())
	return xlo, xhi, ylo, yhi, nil
}

// Paste adds (or copies) the overlapping part of the smaller image `img`
// into si. The pixel grids of the two images have to line up.
func (si *SkyImage)Paste(img *SkyImage, method string, wcsCheck bool) error {
	if method != PasteSum && method != PasteReplace {
		return fmt.Errorf("paste '%s': %w", method, ErrInvalidMode)
	}

	xlo, xhi, ylo, yhi, err := getBoundaries(si, img, wcsCheck)
	if err != nil {
		return err
	}
	xloC, xhiC, yloC, yhiC, err := getBoundaries(img, si, wcsCheck)
	if err != nil {
		return err
	}

	if xhi <= xlo || yhi <= ylo {
		return nil // nothing overlaps
	}
	if xhi-xlo != xhiC-xloC || yhi-ylo != yhiC-yloC {
		return fmt.Errorf("paste [%d:%d,%d:%d] from [%d:%d,%d:%d]: %w",
			xlo, xhi, ylo, yhi, xloC, xhiC, yloC, yhiC, ErrShape)
	}

	for y:=0; y<yhi-ylo; y++ {
		for x:=0; x<xhi-xlo; x++ {
			v := img.Data.Get(xloC+x, yloC+y)
			if method == PasteSum {
				si.Data.Add(xlo+x, ylo+y, v)
			} else {
				si.Data.Set(xlo+x, ylo+y, v)
			}
		}
	}
	return nil
}

// CutoutSize is in pixels, unless Degrees is set. Angular sizes are
// turned into pixels using the pixel scales at the reference pixel.
type CutoutSize struct {
	Width   float64
	Height  float64
	Degrees bool
}

func PixelSize(nx, ny int) CutoutSize           { return CutoutSize{Width: float64(nx), Height: float64(ny)} }
func AngularSize(width, height float64) CutoutSize { return CutoutSize{width, height, true} }

// Cutout modes, for when the cutout goes off the edge of the image
const(
	CutoutTrim    = "trim"     // return the overlapping part only
	CutoutPartial = "partial"  // full size, NaN where there is no data
	CutoutStrict  = "strict"   // error
)

// Cutout cuts a rectangle centred on `position` out of the image; the
// result is trimmed where it overlaps the edge.
func (si *SkyImage)Cutout(position sky.Coord, size CutoutSize) (*SkyImage, error) {
	return si.CutoutWithMode(position, size, CutoutTrim)
}

func (si *SkyImage)CutoutWithMode(position sky.Coord, size CutoutSize, mode string) (*SkyImage, error) {
	switch mode {
	case CutoutTrim, CutoutPartial, CutoutStrict:
	default:
		return nil, fmt.Errorf("cutout '%s': %w", mode, ErrInvalidMode)
	}

	w, h := size.Width, size.Height
	if size.Degrees {
		scales, err := si.WCS.PixelScales(wcs.ScaleProjPlane)
		if err != nil {
			return nil, err
		}
		w, h = w/scales[0], h/scales[1]
	}
	nx, ny := emath.RoundHalfEven(w), emath.RoundHalfEven(h)
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("cutout %dx%d: %w", nx, ny, ErrShape)
	}

	px, py, err := si.WCS.SkyCoordToPixel(position)
	if err != nil {
		return nil, fmt.Errorf("cutout: %v", err)
	}

	// Where the cutout starts, in the pixels of the big image
	x0 := int(math.Ceil(px - float64(nx)/2.0 - 1e-9))
	y0 := int(math.Ceil(py - float64(ny)/2.0 - 1e-9))

	// The part that overlaps
	xlo, xhi := max(x0, 0), min(x0+nx, si.Nx())
	ylo, yhi := max(y0, 0), min(y0+ny, si.Ny())
	if xhi <= xlo || yhi <= ylo {
		return nil, fmt.Errorf("cutout at %s: %w", position, ErrNoOverlap)
	}
	full := xlo == x0 && ylo == y0 && xhi == x0+nx && yhi == y0+ny
	if !full && mode == CutoutStrict {
		return nil, fmt.Errorf("cutout at %s only partly inside image: %w", position, ErrNoOverlap)
	}

	var data emath.FloatGrid
	ox, oy := x0, y0
	if mode == CutoutPartial {
		data = emath.NewFloatGrid(nx, ny)
		data.Fill(math.NaN())
		for y:=ylo; y<yhi; y++ {
			for x:=xlo; x<xhi; x++ {
				data.Set(x-x0, y-y0, si.Data.Get(x, y))
			}
		}
	} else {
		if data, err = si.Data.SubGrid(xlo, ylo, xhi, yhi); err != nil {
			return nil, err
		}
		ox, oy = xlo, ylo
	}

	return si.derived(data, si.WCS.Shifted(-float64(ox), -float64(oy))), nil
}

// Widths are pixel counts for each edge of the image.
type Widths struct {
	XLo, XHi int
	YLo, YHi int
}

func UniformWidths(n int) Widths { return Widths{n, n, n, n} }

// Pad adds pixels around the edges; see emath.PadMode for the modes.
// `constant` is only used by PadConstant.
func (si *SkyImage)Pad(wd Widths, mode emath.PadMode, constant float64) (*SkyImage, error) {
	data, err := si.Data.Pad(wd.XLo, wd.XHi, wd.YLo, wd.YHi, mode, constant)
	if err != nil {
		return nil, fmt.Errorf("pad: %w", err)
	}
	return si.derived(data, si.WCS.Shifted(float64(wd.XLo), float64(wd.YLo))), nil
}

// Crop removes pixels from the edges; it must leave something behind.
func (si *SkyImage)Crop(wd Widths) (*SkyImage, error) {
	if wd.XLo < 0 || wd.XHi < 0 || wd.YLo < 0 || wd.YHi < 0 {
		return nil, fmt.Errorf("crop %+v: negative width: %w", wd, ErrShape)
	}
	xhi, yhi := si.Nx() - wd.XHi, si.Ny() - wd.YHi
	if xhi <= wd.XLo || yhi <= wd.YLo {
		return nil, fmt.Errorf("crop %+v of %dx%d leaves nothing: %w", wd, si.Nx(), si.Ny(), ErrShape)
	}
	data, err := si.Data.SubGrid(wd.XLo, wd.YLo, xhi, yhi)
	if err != nil {
		return nil, err
	}
	return si.derived(data, si.WCS.Shifted(-float64(wd.XLo), -float64(wd.YLo))), nil
}

// Downsample combines factor x factor blocks of pixels with `fn` (nil
// means nansum). The image must be a multiple of the factor along both
// axes; pad it first if not.
func (si *SkyImage)Downsample(factor int, fn emath.Reducer) (*SkyImage, error) {
	if factor < 1 || si.Nx() % factor != 0 || si.Ny() % factor != 0 {
		return nil, fmt.Errorf("downsample (%d,%d) by %d, pad first: %w", si.Ny(), si.Nx(), factor, ErrShape)
	}
	data, err := si.Data.BlockReduce(factor, fn)
	if err != nil {
		return nil, err
	}
	return si.derived(data, si.WCS.Resampled(float64(factor), true)), nil
}

// Upsample interpolates onto a grid `factor` times finer; order 0 is
// nearest neighbour, order 1 is bilinear.
func (si *SkyImage)Upsample(factor, order int) (*SkyImage, error) {
	data, err := si.Data.Zoom(factor, order)
	if err != nil {
		return nil, fmt.Errorf("upsample: %v", err)
	}
	return si.derived(data, si.WCS.Resampled(float64(factor), false)), nil
}
