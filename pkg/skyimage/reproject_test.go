package skyimage

import(
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/skyimage/pkg/sky"
	"github.com/abworrall/skyimage/pkg/wcs"
)

func TestReprojectOntoItself(t *testing.T) {
	si := rampImage(t, 10, 8)

	for _, mode := range []string{ReprojectNearest, ReprojectInterp} {
		out, err := si.Reproject(si, mode)
		require.NoError(t, err, mode)
		require.Equal(t, si.Nx(), out.Nx())
		require.Equal(t, si.Ny(), out.Ny())
		for i, v := range si.Data.Values() {
			assert.InDelta(t, v, out.Data.Values()[i], 1e-6, "%s, pixel %d", mode, i)
		}
	}
}

func TestReprojectGalacticToICRS(t *testing.T) {
	src := testImage(t, 100, 100, 0.1)
	src.Fill(3)
	src.Unit = "ct"

	gc := sky.NewGalactic(0, 0).Transform(sky.ICRS)
	opts := DefaultEmptyOptions()
	opts.NXPix, opts.NYPix, opts.BinSz = 20, 20, 0.1
	opts.XRef, opts.YRef = gc.Lon, gc.Lat
	opts.CoordSys, opts.Proj = "CEL", "TAN"
	ref, err := Empty(opts)
	require.NoError(t, err)

	for _, mode := range []string{ReprojectNearest, ReprojectInterp, ReprojectExact} {
		out, err := src.Reproject(ref, mode)
		require.NoError(t, err, mode)
		assert.Equal(t, "ct", out.Unit)
		assert.Equal(t, ref.WCS.CType, out.WCS.CType)
		for _, v := range out.Data.Values() {
			assert.InDelta(t, 3.0, v, 1e-9, mode)
		}
	}
}

func TestReprojectOffTheEdge(t *testing.T) {
	si := testImage(t, 10, 10, 1.0)
	si.Fill(1)

	// A bigger grid on the same centre; the border has no data
	w := si.WCS.Shifted(5, 5)
	out, err := si.ReprojectTo(w, 20, 20, ReprojectInterp)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(out.Data.Get(0, 0)))
	assert.True(t, math.IsNaN(out.Data.Get(19, 10)))
	assert.InDelta(t, 1.0, out.Data.Get(10, 10), 1e-9)
	assert.InDelta(t, 100.0, out.Data.NaNSum(), 1e-6)
}

func TestReprojectToHeader(t *testing.T) {
	si := rampImage(t, 10, 10)

	p := wcs.DefaultGtbinParams()
	p.NXPix, p.NYPix, p.BinSz = 5, 5, 2.0
	h, err := wcs.NewGtbinHeader(p)
	require.NoError(t, err)

	out, err := si.ReprojectToHeader(h, ReprojectNearest)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Nx())
	assert.Equal(t, 5, out.Ny())

	h.Delete("NAXIS1")
	_, err = si.ReprojectToHeader(h, ReprojectNearest)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestReprojectBadMode(t *testing.T) {
	si := testImage(t, 4, 4, 1.0)
	_, err := si.Reproject(si, "cubic")
	assert.True(t, errors.Is(err, ErrInvalidMode))
}
