package emath

import(
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var(
	ErrNotDivisible = errors.New("grid shape not divisible by factor")
	ErrPadMode      = errors.New("unknown pad mode")
)

// A Reducer combines a block of values into one.
type Reducer func([]float64) float64

func NaNSum(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

func NaNMean(vals []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func Sum(vals []float64) float64 { return floats.Sum(vals) }
func Max(vals []float64) float64 { return floats.Max(vals) }
func Min(vals []float64) float64 { return floats.Min(vals) }

// GetReducer looks up a reducer by name; "" is nansum.
func GetReducer(name string) (Reducer, error) {
	switch name {
	case "", "nansum": return NaNSum, nil
	case "nanmean":     return NaNMean, nil
	case "sum":         return Sum, nil
	case "max":         return Max, nil
	case "min":         return Min, nil
	default:
		return nil, fmt.Errorf("no reducer named '%s'", name)
	}
}

// BlockReduce returns a grid that is 1/factor the size on each axis,
// combining each factor x factor block with `fn`. The grid must be an
// exact multiple of the factor; pad it first if not.
func (g1 *FloatGrid)BlockReduce(factor int, fn Reducer) (FloatGrid, error) {
	if factor < 1 {
		return FloatGrid{}, fmt.Errorf("blockreduce: bad factor %d", factor)
	}
	if g1.Dx() % factor != 0 || g1.Dy() % factor != 0 {
		return FloatGrid{}, fmt.Errorf("blockreduce %dx%d by %d: %w", g1.Dx(), g1.Dy(), factor, ErrNotDivisible)
	}
	if fn == nil {
		fn = NaNSum
	}

	width := g1.Dx() / factor
	height := g1.Dy() / factor
	g2 := NewFloatGrid(width, height)
	block := make([]float64, 0, factor*factor)

	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			block = block[:0]
			for j:=0; j<factor; j++ {
				for i:=0; i<factor; i++ {
					block = append(block, g1.Get(factor*x+i, factor*y+j))
				}
			}
			g2.Set(x, y, fn(block))
		}
	}

	return g2, nil
}

// Zoom returns a grid `factor` times as big on each axis. Output pixel
// centres map back onto the input so that pixel edges line up
// (i.e. output pixel o samples input coord (o+0.5)/factor - 0.5).
// Order 0 copies the nearest value into each block; order 1
// interpolates bilinearly, clamping at the edges.
func (A *FloatGrid)Zoom(factor, order int) (FloatGrid, error) {
	if factor < 1 {
		return FloatGrid{}, fmt.Errorf("zoom: bad factor %d", factor)
	}
	if order != 0 && order != 1 {
		return FloatGrid{}, fmt.Errorf("zoom: unsupported interpolation order %d", order)
	}

	awidth  := A.Dx()
	aheight := A.Dy()
	B := NewFloatGrid(awidth*factor, aheight*factor)

	for y:=0; y<B.Dy(); y++ {
		for x:=0; x<B.Dx(); x++ {
			if order == 0 {
				B.Set(x, y, A.Get(x/factor, y/factor))
				continue
			}
			ax := Clamp((float64(x)+0.5)/float64(factor) - 0.5, 0, float64(awidth-1))
			ay := Clamp((float64(y)+0.5)/float64(factor) - 0.5, 0, float64(aheight-1))
			B.Set(x, y, A.Bilinear(ax, ay))
		}
	}

	return B, nil
}

// Bilinear samples the grid at a fractional position, where integer
// positions are pixel centres. Anything further than half a pixel
// outside the grid is NaN; inside that margin, values are clamped to
// the edge pixels.
func (fg *FloatGrid)Bilinear(x, y float64) float64 {
	w, h := float64(fg.Dx()), float64(fg.Dy())
	if math.IsNaN(x) || math.IsNaN(y) || x < -0.5 || y < -0.5 || x > w-0.5 || y > h-0.5 || w == 0 || h == 0 {
		return math.NaN()
	}
	x = Clamp(x, 0, w-1)
	y = Clamp(y, 0, h-1)

	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	x1, y1 := x0+1, y0+1
	if x1 >= fg.Dx() { x1 = x0 }
	if y1 >= fg.Dy() { y1 = y0 }
	fx, fy := x - float64(x0), y - float64(y0)

	v00 := fg.Get(x0, y0)
	v10 := fg.Get(x1, y0)
	v01 := fg.Get(x0, y1)
	v11 := fg.Get(x1, y1)

	return v00*(1-fx)*(1-fy) + v10*fx*(1-fy) + v01*(1-fx)*fy + v11*fx*fy
}

// Nearest samples the pixel whose centre is closest; NaN outside.
func (fg *FloatGrid)Nearest(x, y float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN()
	}
	ix, iy := RoundHalfEven(x), RoundHalfEven(y)
	if !fg.In(ix, iy) {
		return math.NaN()
	}
	return fg.Get(ix, iy)
}

// PadMode names follow numpy.pad.
type PadMode string

const(
	PadConstant  PadMode = "constant"
	PadEdge      PadMode = "edge"
	PadReflect   PadMode = "reflect"   // mirror about the edge pixel: 3 2 | 1 2 3 | 2 1
	PadSymmetric PadMode = "symmetric" // mirror about the edge: 2 1 | 1 2 3 | 3 2
	PadWrap      PadMode = "wrap"
)

// padIndex maps an index outside [0,n) back into it, or -1 for constant padding.
func padIndex(i, n int, mode PadMode) int {
	if i >= 0 && i < n {
		return i
	}
	switch mode {
	case PadEdge:
		if i < 0 { return 0 }
		return n-1
	case PadReflect:
		if n == 1 {
			return 0
		}
		period := 2*(n-1)
		i = ((i % period) + period) % period
		if i >= n {
			i = period - i
		}
		return i
	case PadSymmetric:
		period := 2*n
		i = ((i % period) + period) % period
		if i >= n {
			i = period - 1 - i
		}
		return i
	case PadWrap:
		return ((i % n) + n) % n
	}
	return -1
}

// Pad grows the grid by the given number of pixels on each side.
func (fg *FloatGrid)Pad(xlo, xhi, ylo, yhi int, mode PadMode, constant float64) (FloatGrid, error) {
	switch mode {
	case PadConstant, PadEdge, PadReflect, PadSymmetric, PadWrap:
	default:
		return FloatGrid{}, fmt.Errorf("pad '%s': %w", mode, ErrPadMode)
	}
	if xlo < 0 || xhi < 0 || ylo < 0 || yhi < 0 {
		return FloatGrid{}, fmt.Errorf("pad: negative width (%d,%d,%d,%d)", xlo, xhi, ylo, yhi)
	}
	if (fg.Dx() == 0 || fg.Dy() == 0) && mode != PadConstant {
		return FloatGrid{}, fmt.Errorf("pad: can't %s-pad an empty grid", mode)
	}

	g2 := NewFloatGrid(fg.Dx()+xlo+xhi, fg.Dy()+ylo+yhi)
	for y:=0; y<g2.Dy(); y++ {
		sy := padIndex(y-ylo, fg.Dy(), mode)
		for x:=0; x<g2.Dx(); x++ {
			sx := padIndex(x-xlo, fg.Dx(), mode)
			if sx < 0 || sy < 0 {
				g2.Set(x, y, constant)
			} else {
				g2.Set(x, y, fg.Get(sx, sy))
			}
		}
	}
	return g2, nil
}
