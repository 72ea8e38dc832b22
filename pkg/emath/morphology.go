package emath

import "math"

// BinaryDisk is a (2r+1)x(2r+1) grid with 1.0 for every cell within
// `radius` of the centre, 0.0 elsewhere.
func BinaryDisk(radius int) FloatGrid {
	return BinaryRing(0, radius)
}

// BinaryRing marks the cells whose distance d from the centre has
// rIn <= d <= rOut.
func BinaryRing(rIn, rOut int) FloatGrid {
	n := 2*rOut + 1
	g := NewFloatGrid(n, n)
	for y:=-rOut; y<=rOut; y++ {
		for x:=-rOut; x<=rOut; x++ {
			d2 := x*x + y*y
			if d2 >= rIn*rIn && d2 <= rOut*rOut {
				g.Set(x+rOut, y+rOut, 1)
			}
		}
	}
	return g
}

// Dilate grows the non-zero cells of the grid by the structuring
// element `st` (which must have odd dimensions, centred).
func (fg *FloatGrid)Dilate(st FloatGrid) FloatGrid {
	out := fg.NewFromThis()
	hx, hy := st.Dx()/2, st.Dy()/2
	for y:=0; y<fg.Dy(); y++ {
		for x:=0; x<fg.Dx(); x++ {
			if fg.Get(x, y) == 0 {
				continue
			}
			for j:=0; j<st.Dy(); j++ {
				for i:=0; i<st.Dx(); i++ {
					if st.Get(i, j) == 0 {
						continue
					}
					if xx, yy := x+i-hx, y+j-hy; out.In(xx, yy) {
						out.Set(xx, yy, 1)
					}
				}
			}
		}
	}
	return out
}

// DistanceTransform returns, for each non-zero cell, the euclidean
// distance (in pixels) to the nearest zero cell; zero cells get 0. NaN
// cells count as zero. If the grid has no zero cells at all, every cell
// is +Inf.
//
// Felzenszwalb & Huttenlocher, "Distance Transforms of Sampled
// Functions": a 1-D lower-envelope-of-parabolas pass down the columns,
// then along the rows.
func (fg *FloatGrid)DistanceTransform() FloatGrid {
	w, h := fg.Dx(), fg.Dy()
	out := fg.NewFromThis()
	for i, v := range fg.values {
		if v == 0 || math.IsNaN(v) {
			out.values[i] = 0
		} else {
			out.values[i] = math.Inf(1)
		}
	}

	n := w
	if h > n { n = h }
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x:=0; x<w; x++ {
		for y:=0; y<h; y++ {
			f[y] = out.Get(x, y)
		}
		edt1d(f[:h], d[:h], v, z)
		for y:=0; y<h; y++ {
			out.Set(x, y, d[y])
		}
	}
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			f[x] = out.Get(x, y)
		}
		edt1d(f[:w], d[:w], v, z)
		for x:=0; x<w; x++ {
			out.Set(x, y, math.Sqrt(d[x]))
		}
	}
	return out
}

// edt1d computes squared distances into d, for sampled function f.
func edt1d(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := -1
	for q:=0; q<n; q++ {
		if math.IsInf(f[q], 1) {
			continue
		}
		for k >= 0 {
			p := v[k]
			s := ((f[q] + float64(q*q)) - (f[p] + float64(p*p))) / float64(2*q - 2*p)
			if s > z[k] {
				k++
				v[k] = q
				z[k] = s
				z[k+1] = math.Inf(1)
				break
			}
			k--
		}
		if k < 0 {
			k = 0
			v[0] = q
			z[0] = math.Inf(-1)
			z[1] = math.Inf(1)
		}
	}

	if k < 0 {
		for q:=0; q<n; q++ {
			d[q] = math.Inf(1)
		}
		return
	}

	j := 0
	for q:=0; q<n; q++ {
		for z[j+1] < float64(q) {
			j++
		}
		dq := float64(q - v[j])
		d[q] = dq*dq + f[v[j]]
	}
}
