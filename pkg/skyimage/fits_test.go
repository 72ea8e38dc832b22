package skyimage

import(
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/skyimage/pkg/emath"
)

func TestWriteRead(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "counts.fits")

	si := rampImage(t, 6, 4)
	si.Name = "counts"
	si.Unit = "ct"
	si.Meta.Set("OBSERVER", "nobody")
	require.NoError(t, si.Write(filename))

	back, err := Read(filename)
	require.NoError(t, err)
	assert.Equal(t, "counts", back.Name)
	assert.Equal(t, "ct", back.Unit)
	assert.Equal(t, 6, back.Nx())
	assert.Equal(t, 4, back.Ny())
	assert.Empty(t, cmp.Diff(si.Data.Values(), back.Data.Values()))
	assert.True(t, back.Meta.Has("OBSERVER"))

	assert.Equal(t, si.WCS.CType, back.WCS.CType)
	assert.Empty(t, cmp.Diff(si.WCS.CRPix, back.WCS.CRPix, cmpopts.EquateApprox(0, 1e-12)))
	assert.Empty(t, cmp.Diff(si.WCS.CDelt, back.WCS.CDelt, cmpopts.EquateApprox(0, 1e-12)))
	assert.Empty(t, cmp.Diff(si.WCS.CRVal, back.WCS.CRVal, cmpopts.EquateApprox(0, 1e-12)))

	m, err := ReadMask(filename)
	require.NoError(t, err)
	assert.Equal(t, 1, m.NumExcluded())
}

func TestWriteUsesCurrentWCS(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "cut.fits")

	// Meta still describes the big image; the cutout's WCS must win
	si := rampImage(t, 10, 10)
	cut, err := si.Cutout(pixelCoord(t, si, 5, 5), PixelSize(4, 4))
	require.NoError(t, err)
	cut.Meta = si.Meta.Copy()
	require.NoError(t, cut.Write(filename))

	back, err := Read(filename)
	require.NoError(t, err)
	assert.InDelta(t, cut.WCS.CRPix[0], back.WCS.CRPix[0], 1e-12)
	assert.InDelta(t, 0.0, pixelCoord(t, back, 0, 0).Separation(pixelCoord(t, si, 3, 3)), 1e-9)
}

func TestCollection(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "collection.fits")

	si := rampImage(t, 5, 5)
	c := NewCollection("test", si.WCS, nil)
	c.Meta.Set("ORIGIN", "tests")
	c.Set("counts", si)

	bkg := emath.NewFloatGrid(5, 5)
	bkg.Fill(0.5)
	require.NoError(t, c.SetData("background", bkg))

	// Replacing keeps the position
	c.Set("counts", si.Copy())
	assert.Equal(t, []string{"counts", "background"}, c.Names())
	assert.Equal(t, 2, c.Len())

	got, ok := c.Get("background")
	require.True(t, ok)
	assert.Equal(t, 12.5, got.Data.NaNSum())
	_, ok = c.Get("exposure")
	assert.False(t, ok)

	require.NoError(t, c.Write(filename))

	back, err := ReadCollection(filename)
	require.NoError(t, err)
	assert.Equal(t, []string{"counts", "background"}, back.Names())

	got, ok = back.Get("background")
	require.True(t, ok)
	assert.Equal(t, 12.5, got.Data.NaNSum())
	assert.True(t, got.Meta.Has("ORIGIN"))

	got, ok = back.Get("counts")
	require.True(t, ok)
	assert.Empty(t, cmp.Diff(si.Data.Values(), got.Data.Values()))

	// The first image is still readable on its own
	first, err := Read(filename)
	require.NoError(t, err)
	assert.Equal(t, "counts", first.Name)
}

func TestCollectionNeedsWCS(t *testing.T) {
	c := NewCollection("nowcs", nil, nil)
	assert.Error(t, c.SetData("x", emath.NewFloatGrid(2, 2)))
}

func TestEvents(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "events.fits")

	opts := DefaultEmptyOptions()
	opts.NXPix, opts.NYPix, opts.BinSz = 10, 10, 0.1
	opts.XRef, opts.YRef = 83.63, 22.01
	opts.CoordSys, opts.Proj = "CEL", "TAN"
	si, err := Empty(opts)
	require.NoError(t, err)

	at := func(x, y float64) Event {
		c := pixelCoord(t, si, x, y)
		return Event{RA: float32(c.Lon), Dec: float32(c.Lat), Energy: 1.5}
	}
	evts := EventList{
		at(4, 5),
		at(4.2, 4.9),
		at(0, 0),
		{RA: 200, Dec: -40, Energy: 10},
	}

	require.NoError(t, evts.Write(filename))
	back, err := ReadEvents(filename)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(evts, back))

	si.FillEvents(back)
	assert.Equal(t, "ct", si.Unit)
	assert.Equal(t, 3.0, si.Data.NaNSum())
	assert.Equal(t, 2.0, si.Data.Get(4, 5))
	assert.Equal(t, 1.0, si.Data.Get(0, 0))
}
