package analysis

import(
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/skyimage/pkg/config"
	"github.com/abworrall/skyimage/pkg/regions"
	"github.com/abworrall/skyimage/pkg/sky"
	"github.com/abworrall/skyimage/pkg/skyimage"
)

var pointing = sky.NewICRS(83.633, 22.0145)

func testConfig(t *testing.T, dir string) config.Config {
	c := config.NewConfig()
	c.Image.Name = "counts"
	c.Image.NXPix, c.Image.NYPix, c.Image.BinSz = 200, 200, 0.02
	c.Image.XRef, c.Image.YRef = pointing.Lon, pointing.Lat
	c.Image.CoordSys, c.Image.Proj = "CEL", "TAN"
	c.Pointing = pointing
	c.OnRegion = regions.CircleSkyRegion{Center: pointing.DirectionalOffsetBy(0, 1.0), Radius: 0.2}
	c.Output.FITS = filepath.Join(dir, "counts.fits")
	c.Output.Quicklook = filepath.Join(dir, "counts.png")
	c.Output.Collection = filepath.Join(dir, "all.fits")
	require.NoError(t, c.Finalize())
	return c
}

func TestAnalysisFromEvents(t *testing.T) {
	dir := t.TempDir()
	a := New()
	a.Config = testConfig(t, dir)

	// A bright blob, well away from the ON region
	src := pointing.DirectionalOffsetBy(180, 1.0)
	for i:=0; i<50; i++ {
		a.Events = append(a.Events, skyimage.Event{RA: float32(src.Lon), Dec: float32(src.Lat), Energy: 1})
	}
	threshold := 10.0
	a.Config.Exclusion.Threshold = &threshold
	a.Config.Exclusion.Dilate = 2
	a.Config.Output.HDR = filepath.Join(dir, "counts.hdr")
	a.Config.Output.Tonemapper = "drago03"

	require.NoError(t, a.BuildCounts())
	assert.Equal(t, 50.0, a.Counts.Data.NaNSum())
	assert.Equal(t, "ct", a.Counts.Unit)
	assert.Equal(t, "counts", a.Counts.Name)

	require.NoError(t, a.BuildMask())
	require.NotNil(t, a.Mask)
	assert.Equal(t, 13, a.Mask.NumExcluded())

	require.NoError(t, a.FindBackground())
	require.NotNil(t, a.Result)
	assert.NotEmpty(t, a.Result.Off)
	for _, off := range a.Result.Off {
		assert.False(t, off.Contains(src))
	}

	require.NoError(t, a.WriteOutputs())
	for _, f := range []string{"counts.fits", "counts.png", "counts.hdr", "all.fits"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, f)
	}

	coll, err := skyimage.ReadCollection(a.Config.Output.Collection)
	require.NoError(t, err)
	assert.Equal(t, []string{"counts", "solid_angle", "exclusion", "distance", "on_mask"}, coll.Names())
}

func TestAnalysisDownsample(t *testing.T) {
	a := New()
	a.Config = testConfig(t, t.TempDir())
	a.Config.Downsample = 4

	require.NoError(t, a.BuildCounts())
	assert.Equal(t, 50, a.Counts.Nx())
	assert.Equal(t, "counts", a.Counts.Name)

	a.Config.Downsample = 3
	assert.Error(t, a.BuildCounts())
}

func TestAnalysisNoOnRegion(t *testing.T) {
	a := New()
	a.Config = testConfig(t, t.TempDir())
	a.Config.OnRegion = regions.CircleSkyRegion{}

	require.NoError(t, a.BuildCounts())
	require.NoError(t, a.BuildMask())
	assert.Nil(t, a.Mask)
	assert.Error(t, a.FindBackground())
}

func TestAnalysisZeroThreshold(t *testing.T) {
	a := New()
	a.Config = testConfig(t, t.TempDir())

	src := pointing.DirectionalOffsetBy(180, 1.0)
	a.Events = skyimage.EventList{{RA: float32(src.Lon), Dec: float32(src.Lat), Energy: 1}}
	zero := 0.0
	a.Config.Exclusion.Threshold = &zero

	require.NoError(t, a.BuildCounts())
	require.NoError(t, a.BuildMask())
	require.NotNil(t, a.Mask)
	assert.Equal(t, 1, a.Mask.NumExcluded())
}
