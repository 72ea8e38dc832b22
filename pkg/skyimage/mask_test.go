package skyimage

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/regions"
)

// testMask is 7x7, allowed everywhere except pixel (3,3).
func testMask(t *testing.T) *SkyMask {
	t.Helper()
	si := testImage(t, 7, 7, 1.0)
	si.Fill(1)
	si.Data.Set(3, 3, 0)
	return MaskFromImage(si)
}

func TestMaskFromImage(t *testing.T) {
	si := testImage(t, 4, 1, 1.0)
	copy(si.Data.Values(), []float64{math.NaN(), 0, 2, -1})

	m := MaskFromImage(si)
	assert.Equal(t, []float64{0, 0, 1, 1}, m.Data.Values())
	assert.Equal(t, 2, m.NumExcluded())
}

func TestDistanceImage(t *testing.T) {
	m := testMask(t)
	dist := m.DistanceImage()

	assert.Equal(t, "pix", dist.Unit)
	assert.Equal(t, -1.0, dist.Data.Get(3, 3))
	assert.Equal(t, 1.0, dist.Data.Get(3, 4))
	assert.Equal(t, 2.0, dist.Data.Get(3, 5))
	assert.InDelta(t, math.Sqrt(18), dist.Data.Get(0, 0), 1e-12)

	// Nothing excluded
	si := testImage(t, 5, 5, 1.0)
	si.Fill(1)
	dist = MaskFromImage(si).DistanceImage()
	for _, v := range dist.Data.Values() {
		assert.True(t, math.IsInf(v, 1))
	}
}

func TestDistanceImageInside(t *testing.T) {
	si := testImage(t, 9, 9, 1.0)
	si.Fill(1)
	for y:=2; y<=6; y++ {
		for x:=2; x<=6; x++ {
			si.Data.Set(x, y, 0)
		}
	}
	dist := MaskFromImage(si).DistanceImage()

	assert.Equal(t, -3.0, dist.Data.Get(4, 4))
	assert.Equal(t, -1.0, dist.Data.Get(2, 4))
	assert.Equal(t, 1.0, dist.Data.Get(1, 4))
	assert.Equal(t, 2.0, dist.Data.Get(0, 4))
}

func TestMaskDilate(t *testing.T) {
	m := testMask(t)
	grown := m.Dilate(1)

	assert.Equal(t, 5, grown.NumExcluded())
	assert.Equal(t, 0.0, grown.Data.Get(3, 4))
	assert.Equal(t, 1.0, grown.Data.Get(4, 4))
	// Original untouched
	assert.Equal(t, 1, m.NumExcluded())
}

func TestMaskIsExcluded(t *testing.T) {
	m := testMask(t)

	tests := []struct {
		name   string
		region regions.Region
		want   bool
	}{
		{"covers excluded pixel", regions.CirclePixelRegion{Center: regions.NewPixCoord(3, 3), Radius: 1.5}, true},
		{"touches excluded pixel", regions.CirclePixelRegion{Center: regions.NewPixCoord(3, 5), Radius: 2.5}, true},
		{"clear", regions.CirclePixelRegion{Center: regions.NewPixCoord(0, 0), Radius: 1.2}, false},
		{"off the mask", regions.CirclePixelRegion{Center: regions.NewPixCoord(-20, -20), Radius: 1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.IsExcluded(tc.region)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// A mask with no data (NaN) on its left half, allowed on the right.
func TestMaskNaNIsExcluded(t *testing.T) {
	si := testImage(t, 21, 21, 1.0)
	si.Fill(1)
	for y:=0; y<21; y++ {
		for x:=0; x<10; x++ {
			si.Data.Set(x, y, math.NaN())
		}
	}
	m := NewSkyMask(si.Data.Copy(), si.WCS)

	assert.Equal(t, 210, m.NumExcluded())

	dist := m.DistanceImage()
	assert.InDelta(t, 6.0, dist.Data.Get(15, 10), 1e-9)
	assert.InDelta(t, -5.0, dist.Data.Get(5, 10), 1e-9)

	got, err := m.IsExcluded(regions.CirclePixelRegion{Center: regions.NewPixCoord(5, 10), Radius: 2})
	require.NoError(t, err)
	assert.True(t, got)
	got, err = m.IsExcluded(regions.CirclePixelRegion{Center: regions.NewPixCoord(15, 10), Radius: 2})
	require.NoError(t, err)
	assert.False(t, got)

	grown := m.Dilate(1)
	assert.Equal(t, 0.0, grown.Data.Get(5, 10))
	assert.Equal(t, 0.0, grown.Data.Get(10, 10))
	assert.Equal(t, 1.0, grown.Data.Get(11, 10))
	assert.Equal(t, 231, grown.NumExcluded())
}

func TestMaskFromBinaryDisk(t *testing.T) {
	disk := emath.BinaryDisk(2)
	si := testImage(t, disk.Dx(), disk.Dy(), 1.0)
	m := NewSkyMask(disk, si.WCS)

	// The 13 cells of the disk are allowed, the corners excluded
	assert.Equal(t, 12, m.NumExcluded())
	assert.Equal(t, "mask", m.Name)
}
