package skyimage

// A SkyMask is an exclusion mask: 1 where a pixel may be used, 0 where
// it is excluded (e.g. around known sources). NaN pixels, where there
// is no data, are excluded too.

import(
	"fmt"
	"math"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/regions"
	"github.com/abworrall/skyimage/pkg/wcs"
)

type SkyMask struct {
	SkyImage
}

func NewSkyMask(data emath.FloatGrid, w *wcs.WCS) *SkyMask {
	return &SkyMask{*New("mask", data, w)}
}

// MaskFromImage treats any non-zero (and non-NaN) pixel as allowed.
func MaskFromImage(si *SkyImage) *SkyMask {
	data := si.Data.NewFromThis()
	for i, v := range si.Data.Values() {
		if v != 0 && !math.IsNaN(v) {
			data.Values()[i] = 1
		}
	}
	m := NewSkyMask(data, si.WCS.Copy())
	m.Name = si.Name
	m.Meta = si.Meta.Copy()
	return m
}

// ReadMask loads an exclusion mask from the first image HDU of a FITS file.
func ReadMask(filename string) (*SkyMask, error) {
	si, err := Read(filename)
	if err != nil {
		return nil, err
	}
	return MaskFromImage(si), nil
}

func isExcludedValue(v float64) bool { return v == 0 || math.IsNaN(v) }

func (m *SkyMask)NumExcluded() int {
	n := 0
	for _, v := range m.Data.Values() {
		if isExcludedValue(v) {
			n++
		}
	}
	return n
}

// DistanceImage gives, for every pixel, the distance in pixels to the
// nearest excluded pixel; inside excluded areas it is minus the
// distance to the nearest allowed pixel. With nothing excluded, every
// pixel is +Inf.
func (m *SkyMask)DistanceImage() *SkyImage {
	outside := m.Data.DistanceTransform()
	dist := m.Data.NewFromThis()

	if m.NumExcluded() == 0 {
		dist.Fill(math.Inf(1))
	} else {
		inverted := m.inverted()
		inside := inverted.DistanceTransform()
		for i, v := range m.Data.Values() {
			if !isExcludedValue(v) {
				dist.Values()[i] = outside.Values()[i]
			} else {
				dist.Values()[i] = -inside.Values()[i]
			}
		}
	}

	out := New("distance", dist, m.WCS.Copy())
	out.Unit = "pix"
	return out
}

func (m *SkyMask)inverted() emath.FloatGrid {
	inv := m.Data.NewFromThis()
	for i, v := range m.Data.Values() {
		if isExcludedValue(v) {
			inv.Values()[i] = 1
		}
	}
	return inv
}

// IsExcluded is true if any pixel inside the region is excluded, or if
// the region doesn't land on the mask at all.
func (m *SkyMask)IsExcluded(r regions.Region) (bool, error) {
	pr, err := r.ToPixel(m.WCS)
	if err != nil {
		return true, fmt.Errorf("is excluded: %v", err)
	}
	inside := pr.PixelMask(m.Nx(), m.Ny())
	if inside.NaNSum() == 0 {
		return true, nil
	}
	for i, v := range inside.Values() {
		if v != 0 && isExcludedValue(m.Data.Values()[i]) {
			return true, nil
		}
	}
	return false, nil
}

// Dilate grows the excluded areas by `radius` pixels.
func (m *SkyMask)Dilate(radius int) *SkyMask {
	inv := m.inverted()
	grown := inv.Dilate(emath.BinaryDisk(radius))

	data := m.Data.NewFromThis()
	for i, v := range grown.Values() {
		if v == 0 {
			data.Values()[i] = 1
		}
	}
	out := NewSkyMask(data, m.WCS.Copy())
	out.Name = m.Name
	return out
}
