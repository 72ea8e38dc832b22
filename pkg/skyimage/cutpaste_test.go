package skyimage

import(
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/skyimage/pkg/emath"
)

func TestCutout(t *testing.T) {
	si := rampImage(t, 10, 10)

	cut, err := si.Cutout(pixelCoord(t, si, 5, 5), PixelSize(4, 3))
	require.NoError(t, err)
	assert.Equal(t, 4, cut.Nx())
	assert.Equal(t, 3, cut.Ny())
	assert.Equal(t, "test", cut.Name)

	// x starts at ceil(5-2)=3, y at ceil(5-1.5)=4
	assert.Equal(t, si.Data.Get(3, 4), cut.Data.Get(0, 0))
	assert.Equal(t, si.Data.Get(6, 6), cut.Data.Get(3, 2))

	// The sky stays put
	assert.InDelta(t, 0.0, pixelCoord(t, cut, 0, 0).Separation(pixelCoord(t, si, 3, 4)), 1e-9)

	// Angular sizes use the pixel scale, here 1 deg
	cut, err = si.Cutout(pixelCoord(t, si, 5, 5), AngularSize(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, cut.Nx())
	assert.Equal(t, 2, cut.Ny())
}

func TestCutoutModes(t *testing.T) {
	si := rampImage(t, 10, 10)
	corner := pixelCoord(t, si, 0, 0)

	trim, err := si.CutoutWithMode(corner, PixelSize(4, 4), CutoutTrim)
	require.NoError(t, err)
	assert.Equal(t, 2, trim.Nx())
	assert.Equal(t, 2, trim.Ny())
	assert.Equal(t, 0.0, trim.Data.Get(0, 0))
	assert.InDelta(t, 0.0, pixelCoord(t, trim, 0, 0).Separation(corner), 1e-9)

	partial, err := si.CutoutWithMode(corner, PixelSize(4, 4), CutoutPartial)
	require.NoError(t, err)
	assert.Equal(t, 4, partial.Nx())
	assert.Equal(t, 4, partial.Ny())
	assert.True(t, math.IsNaN(partial.Data.Get(0, 0)))
	assert.Equal(t, 11.0, partial.Data.Get(3, 3))
	assert.InDelta(t, 0.0, pixelCoord(t, partial, 2, 2).Separation(corner), 1e-9)

	_, err = si.CutoutWithMode(corner, PixelSize(4, 4), CutoutStrict)
	assert.True(t, errors.Is(err, ErrNoOverlap))

	_, err = si.CutoutWithMode(corner, PixelSize(4, 4), "snip")
	assert.True(t, errors.Is(err, ErrInvalidMode))

	_, err = si.Cutout(pixelCoord(t, si, 40, 40), PixelSize(4, 4))
	assert.True(t, errors.Is(err, ErrNoOverlap))
}

func TestPaste(t *testing.T) {
	big := testImage(t, 10, 10, 1.0)

	small, err := big.Cutout(pixelCoord(t, big, 5, 5), PixelSize(4, 4))
	require.NoError(t, err)
	small.Fill(1)

	require.NoError(t, big.Paste(small, PasteSum, true))
	assert.Equal(t, 16.0, big.Data.NaNSum())
	assert.Equal(t, 1.0, big.Data.Get(3, 3))
	assert.Equal(t, 1.0, big.Data.Get(6, 6))
	assert.Equal(t, 0.0, big.Data.Get(7, 7))

	require.NoError(t, big.Paste(small, PasteSum, true))
	assert.Equal(t, 2.0, big.Data.Get(3, 3))

	small.Fill(5)
	require.NoError(t, big.Paste(small, PasteReplace, true))
	assert.Equal(t, 80.0, big.Data.NaNSum())

	assert.True(t, errors.Is(big.Paste(small, "mean", true), ErrInvalidMode))
}

func TestPasteOffTheEdge(t *testing.T) {
	big := testImage(t, 10, 10, 1.0)
	small, err := big.CutoutWithMode(pixelCoord(t, big, 0, 0), PixelSize(4, 4), CutoutPartial)
	require.NoError(t, err)
	small.Fill(1)

	require.NoError(t, big.Paste(small, PasteSum, true))
	assert.Equal(t, 4.0, big.Data.NaNSum())
	assert.Equal(t, 1.0, big.Data.Get(1, 1))
}

func TestPasteNotAligned(t *testing.T) {
	big := testImage(t, 10, 10, 1.0)
	small, err := big.Cutout(pixelCoord(t, big, 5, 5), PixelSize(4, 4))
	require.NoError(t, err)
	small.WCS = small.WCS.Shifted(0.5, 0)

	err = big.Paste(small, PasteSum, true)
	assert.True(t, errors.Is(err, ErrWCSNotAligned))
	assert.Equal(t, 0.0, big.Data.NaNSum())
}

func TestPad(t *testing.T) {
	si := rampImage(t, 10, 13)

	padded, err := si.Pad(UniformWidths(4), emath.PadReflect, 0)
	require.NoError(t, err)
	assert.Equal(t, 18, padded.Nx())
	assert.Equal(t, 21, padded.Ny())
	assert.Equal(t, si.Data.Get(0, 0), padded.Data.Get(4, 4))
	assert.Equal(t, si.Data.Get(1, 0), padded.Data.Get(3, 4))
	assert.InDelta(t, 0.0, pixelCoord(t, padded, 4, 4).Separation(pixelCoord(t, si, 0, 0)), 1e-9)

	padded, err = si.Pad(Widths{XLo: 1}, emath.PadConstant, -1)
	require.NoError(t, err)
	assert.Equal(t, 11, padded.Nx())
	assert.Equal(t, 13, padded.Ny())
	assert.Equal(t, -1.0, padded.Data.Get(0, 5))

	_, err = si.Pad(UniformWidths(1), emath.PadMode("stretch"), 0)
	assert.Error(t, err)
}

func TestCrop(t *testing.T) {
	si := rampImage(t, 10, 13)

	cropped, err := si.Crop(Widths{XLo: 1, XHi: 2, YLo: 3, YHi: 4})
	require.NoError(t, err)
	assert.Equal(t, 7, cropped.Nx())
	assert.Equal(t, 6, cropped.Ny())
	assert.Equal(t, si.Data.Get(1, 3), cropped.Data.Get(0, 0))
	assert.InDelta(t, 0.0, pixelCoord(t, cropped, 0, 0).Separation(pixelCoord(t, si, 1, 3)), 1e-9)

	_, err = si.Crop(Widths{XLo: 5, XHi: 5})
	assert.True(t, errors.Is(err, ErrShape))

	// Pad then crop gets back where we started
	padded, err := si.Pad(UniformWidths(2), emath.PadEdge, 0)
	require.NoError(t, err)
	back, err := padded.Crop(UniformWidths(2))
	require.NoError(t, err)
	assert.Equal(t, si.Data.Values(), back.Data.Values())
	assert.InDelta(t, si.WCS.CRPix[0], back.WCS.CRPix[0], 1e-12)
	assert.InDelta(t, si.WCS.CRPix[1], back.WCS.CRPix[1], 1e-12)
}

func TestDownsample(t *testing.T) {
	si := testImage(t, 10, 10, 0.5)
	si.Fill(1)

	down, err := si.Downsample(2, emath.NaNSum)
	require.NoError(t, err)
	assert.Equal(t, 5, down.Nx())
	assert.Equal(t, 5, down.Ny())
	assert.Equal(t, 4.0, down.Data.Get(2, 2))
	assert.InDelta(t, -1.0, down.WCS.CDelt[0], 1e-12)
	assert.InDelta(t, 1.0, down.WCS.CDelt[1], 1e-12)

	c1, err := si.Center()
	require.NoError(t, err)
	c2, err := down.Center()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, c1.Separation(c2), 1e-9)

	// Pixel edges line up: the corner of the big image is the corner
	// of the small one
	assert.InDelta(t, 0.0, pixelCoord(t, si, -0.5, -0.5).Separation(pixelCoord(t, down, -0.5, -0.5)), 1e-9)

	_, err = si.Downsample(3, nil)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestUpsample(t *testing.T) {
	si := rampImage(t, 10, 10)

	up, err := si.Upsample(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, up.Nx())
	assert.Equal(t, 20, up.Ny())
	assert.Equal(t, si.Data.Get(0, 0), up.Data.Get(1, 1))
	assert.Equal(t, si.Data.Get(3, 2), up.Data.Get(7, 4))
	assert.InDelta(t, -0.5, up.WCS.CDelt[0], 1e-12)

	c1, err := si.Center()
	require.NoError(t, err)
	c2, err := up.Center()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, c1.Separation(c2), 1e-9)

	_, err = si.Upsample(2, 3)
	assert.Error(t, err)
}
