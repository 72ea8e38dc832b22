package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// A FloatGrid is a grid of floats, with some operations. Values are
// stored row by row, so (x,y) is column x of row y; for sky images row
// 0 is the bottom of the image, as in FITS.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFloatGridFromValues wraps (does not copy) a row-major slice.
func NewFloatGridFromValues(w, h int, values []float64) (FloatGrid, error) {
	if w < 0 || h < 0 || len(values) != w*h {
		return FloatGrid{}, fmt.Errorf("floatgrid %dx%d: got %d values", w, h, len(values))
	}
	return FloatGrid{stride: w, values: values}, nil
}

func (g1 *FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Add(x, y int, v float64) { fg.values[fg.stride*y + x] += v }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Values() []float64       { return fg.values }
func (fg *FloatGrid)In(x, y int) bool        { return x >= 0 && y >= 0 && x < fg.Dx() && y < fg.Dy() }

func (fg *FloatGrid)Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (g1 FloatGrid)Copy() FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values:make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return g2
}

func (fg *FloatGrid)Fill(v float64) {
	for i := range fg.values {
		fg.values[i] = v
	}
}

// SubGrid copies out the half-open box [xlo,xhi) x [ylo,yhi).
func (fg *FloatGrid)SubGrid(xlo, ylo, xhi, yhi int) (FloatGrid, error) {
	if xlo < 0 || ylo < 0 || xhi > fg.Dx() || yhi > fg.Dy() || xlo > xhi || ylo > yhi {
		return FloatGrid{}, fmt.Errorf("subgrid [%d:%d,%d:%d] outside %dx%d", xlo, xhi, ylo, yhi, fg.Dx(), fg.Dy())
	}
	g2 := NewFloatGrid(xhi-xlo, yhi-ylo)
	for y:=ylo; y<yhi; y++ {
		copy(g2.values[(y-ylo)*g2.stride:(y-ylo+1)*g2.stride], fg.values[y*fg.stride+xlo:y*fg.stride+xhi])
	}
	return g2, nil
}

// Mul multiplies, element by element; the grids must be the same shape.
func (fg *FloatGrid)Mul(other FloatGrid) error {
	if fg.Dx() != other.Dx() || fg.Dy() != other.Dy() {
		return fmt.Errorf("mul: shape %dx%d vs %dx%d", fg.Dx(), fg.Dy(), other.Dx(), other.Dy())
	}
	floats.Mul(fg.values, other.values)
	return nil
}

// NaNArgMax finds the largest non-NaN value. ok is false if every value is NaN.
func (fg *FloatGrid)NaNArgMax() (x, y int, ok bool) {
	best := math.Inf(-1)
	idx := -1
	for i, v := range fg.values {
		if math.IsNaN(v) {
			continue
		}
		if idx < 0 || v > best {
			best, idx = v, i
		}
	}
	if idx < 0 {
		return 0, 0, false
	}
	return idx % fg.stride, idx / fg.stride, true
}

// finite returns the non-NaN, non-Inf values.
func (fg *FloatGrid)finite() []float64 {
	vals := make([]float64, 0, len(fg.values))
	for _, v := range fg.values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	return vals
}

// NaNMean is the mean of the finite values; NaN if there are none.
func (fg *FloatGrid)NaNMean() float64 {
	vals := fg.finite()
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

// NaNSum ignores NaNs, like numpy.nansum.
func (fg *FloatGrid)NaNSum() float64 {
	return NaNSum(fg.values)
}

// Percentiles returns the values at two quantiles (0.0->1.0) of the finite values.
func (fg *FloatGrid)Percentiles(lo, hi float64) (float64, float64) {
	vals := fg.finite()
	if len(vals) == 0 {
		return math.NaN(), math.NaN()
	}
	sort.Float64s(vals)
	return stat.Quantile(lo, stat.Empirical, vals, nil), stat.Quantile(hi, stat.Empirical, vals, nil)
}

func (fg *FloatGrid)Stats() string {
	vals := fg.finite()
	if len(vals) == 0 {
		return fmt.Sprintf("fg[%dx%d, no finite values]", fg.Dx(), fg.Dy())
	}
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), floats.Min(vals), floats.Max(vals))
}

// ToImg renders a colormapped image, scaled between the 1st and 99.5th
// percentiles and gamma scaled to look normal for human vision. Row 0
// of the grid ends up at the bottom of the picture. NaNs come out
// black. Small grids are scaled up so a pixel stays visible; the
// returned context can be drawn on further, with `scale` output pixels
// per grid pixel.
func (fg *FloatGrid)ToImg(title string) (*gg.Context, float64) {
	min, max := fg.Percentiles(0.01, 0.995)
	if !(max > min) {
		max = min + 1
	}

	dark := colorful.Color{R:0, G:0, B:0}
	hot  := colorful.Color{R:1, G:0.85, B:0.3}

	img := image.NewRGBA64(image.Rectangle{Max:image.Point{fg.Dx(), fg.Dy()}})
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			v := fg.Get(x,y)
			if math.IsNaN(v) {
				img.Set(x, fg.Dy()-1-y, color.Black)
				continue
			}
			lum := GammaExpand_F64(Clamp((v - min) / (max - min), 0, 1))
			img.Set(x, fg.Dy()-1-y, dark.BlendLab(hot, lum).Clamped())
		}
	}

	scale := 1
	for fg.Dx()*scale < 400 && fg.Dy()*scale < 400 && scale < 16 {
		scale *= 2
	}
	out := image.NewRGBA(image.Rect(0, 0, fg.Dx()*scale, fg.Dy()*scale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)

	dc := gg.NewContextForImage(out)
	dc.SetRGB(1,1,1)
	dc.DrawString(title, 10, 20)
	return dc, float64(scale)
}
