package skyimage

import(
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/abworrall/skyimage/pkg/regions"
)

func TestHDRImage(t *testing.T) {
	si := rampImage(t, 5, 3)
	si.Data.Set(1, 2, math.NaN())
	si.Data.Set(2, 2, -4)

	img := si.HDRImage()
	assert.Equal(t, 15, img.Size())
	assert.Equal(t, 5, img.Bounds().Dx())

	// Top row of the picture is the last row of the data
	assert.Equal(t, hdrcolor.RGB{R: 20, G: 20, B: 20}, img.HDRAt(0, 0))
	assert.Equal(t, hdrcolor.RGB{R: 4, G: 4, B: 4}, img.HDRAt(4, 2))
	assert.Equal(t, hdrcolor.RGB{R: 0, G: 0, B: 0}, img.HDRAt(1, 0))
	assert.Equal(t, hdrcolor.RGB{R: 0, G: 0, B: 0}, img.HDRAt(2, 0))
}

func TestWriteHDR(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "ramp.hdr")
	require.NoError(t, rampImage(t, 8, 8).WriteHDR(filename))

	st, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Greater(t, st.Size(), int64(64))
}

func TestTonemap(t *testing.T) {
	si := rampImage(t, 8, 6)

	img, err := si.Tonemap("drago03")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())

	_, err = si.Tonemap("fattal02")
	assert.True(t, errors.Is(err, ErrInvalidMode))
	assert.Contains(t, ListTonemappers(), "reinhard05")
}

func TestTonemapCountsMap(t *testing.T) {
	si := testImage(t, 9, 9, 1.0)
	si.Data.Set(4, 4, 200)
	si.Data.Set(1, 1, 1)

	img, err := si.Tonemap("drago03")
	require.NoError(t, err)

	lum := func(x, y int) uint32 {
		r, _, _, _ := img.At(x, 8-y).RGBA()
		return r
	}
	assert.Greater(t, lum(4, 4), lum(7, 7))
	assert.GreaterOrEqual(t, lum(4, 4), lum(1, 1))
	assert.GreaterOrEqual(t, lum(1, 1), lum(7, 7))
}

func TestWriteQuicklookFormats(t *testing.T) {
	dir := t.TempDir()
	si := rampImage(t, 10, 10)
	ov := Overlay{Regions: []regions.Region{regions.CirclePixelRegion{Center: regions.NewPixCoord(5, 5), Radius: 2}}, R: 1}

	require.NoError(t, si.WriteQuicklook(filepath.Join(dir, "ramp.png"), ov))
	require.NoError(t, si.WriteQuicklookTonemapped(filepath.Join(dir, "ramp.tiff"), "linear", ov))

	f, err := os.Open(filepath.Join(dir, "ramp.tiff"))
	require.NoError(t, err)
	defer f.Close()
	img, err := tiff.Decode(f)
	require.NoError(t, err)

	// 10x10 gets blown up by 16
	assert.Equal(t, 160, img.Bounds().Dx())

	assert.Error(t, si.WriteQuicklookTonemapped(filepath.Join(dir, "x.png"), "nope"))
}

func TestCountsHistogram(t *testing.T) {
	si := testImage(t, 4, 4, 1.0)
	si.Data.Set(0, 0, 3)
	si.Data.Set(1, 0, 500)
	si.Data.Set(2, 0, math.NaN())

	h := si.CountsHistogram()
	assert.Equal(t, 64, h.NumBuckets)
}
