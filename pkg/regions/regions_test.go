package regions

import(
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/skyimage/pkg/sky"
	"github.com/abworrall/skyimage/pkg/wcs"
)

func TestCirclePixelMask(t *testing.T) {
	c := CirclePixelRegion{Center: NewPixCoord(2, 1), Radius: 1.1}
	m := c.PixelMask(5, 4)

	want := [][]float64{
		{0, 0, 1, 0, 0},
		{0, 1, 1, 1, 0},
		{0, 0, 1, 0, 0},
		{0, 0, 0, 0, 0},
	}
	for y := range want {
		for x := range want[y] {
			assert.Equal(t, want[y][x], m.Get(x, y), "pixel (%d,%d)", x, y)
		}
	}

	assert.Equal(t, BoundingBox{IXMin: 1, IXMax: 4, IYMin: 0, IYMax: 3}, c.BoundingBox())
}

func TestContainsIsStrict(t *testing.T) {
	c := CirclePixelRegion{Center: NewPixCoord(0, 0), Radius: 1}
	assert.False(t, c.Contains(NewPixCoord(1, 0)))
	assert.True(t, c.Contains(NewPixCoord(0.5, 0.5)))
}

func TestMaskOffTheEdge(t *testing.T) {
	c := CirclePixelRegion{Center: NewPixCoord(-1, -1), Radius: 2}
	m := c.PixelMask(3, 3)
	assert.Equal(t, 1.0, m.Get(0, 0))
	assert.Equal(t, 0.0, m.Get(1, 1))
	assert.Equal(t, 1.0, m.NaNSum())
}

func TestSkyPixelRoundTrip(t *testing.T) {
	p := wcs.DefaultGtbinParams()
	p.NXPix, p.NYPix = 101, 101
	h, err := wcs.NewGtbinHeader(p)
	require.NoError(t, err)
	w, err := wcs.FromHeader(h)
	require.NoError(t, err)

	sr := CircleSkyRegion{Center: sky.NewGalactic(0.2, 0), Radius: 0.1}
	pr, err := sr.ToPixel(w)
	require.NoError(t, err)

	c := pr.(CirclePixelRegion)
	assert.InDelta(t, 40, c.Center.X, 1e-6)
	assert.InDelta(t, 50, c.Center.Y, 1e-6)
	assert.InDelta(t, 5, c.Radius, 1e-9)

	back, err := c.ToSky(w)
	require.NoError(t, err)
	assert.InDelta(t, 0, back.Center.Separation(sr.Center), 1e-9)
	assert.InDelta(t, 0.1, back.Radius, 1e-12)

	assert.True(t, sr.Contains(sky.NewGalactic(0.2, 0.05)))
	assert.False(t, sr.Contains(sky.NewGalactic(0.2, 0.15)))
}
