package sky

import(
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestGalacticCenter(t *testing.T) {
	gc := NewGalactic(0, 0).Transform(ICRS)
	assert.InDelta(t, 266.405, gc.Lon, 1e-3)
	assert.InDelta(t, -28.936, gc.Lat, 1e-3)

	back := gc.Transform(Galactic)
	assert.InDelta(t, 0, back.Lat, 1e-9)
	assert.InDelta(t, 0, NewGalactic(0, 0).Separation(back)*3600, 1e-6)
}

func TestCrabInGalactic(t *testing.T) {
	crab := NewICRS(83.633, 22.0145).Transform(Galactic)
	assert.InDelta(t, 184.557, crab.Lon, 1e-2)
	assert.InDelta(t, -5.784, crab.Lat, 1e-2)
}

func TestSeparationAcrossFrames(t *testing.T) {
	a := NewICRS(83.633, 22.0145)
	b := a.Transform(Galactic)
	assert.InDelta(t, 0, a.Separation(b), 1e-9)

	c := NewICRS(83.633, 23.0145)
	assert.InDelta(t, 1.0, a.Separation(c), 1e-9)
	assert.InDelta(t, 1.0, c.Transform(Galactic).Separation(a), 1e-9)
}

func TestOffsetAndPositionAngle(t *testing.T) {
	start := NewICRS(10, 20)
	for _, pa := range []float64{0, 45, 90, 200, 310} {
		end := start.DirectionalOffsetBy(pa, 2.5)
		assert.InDelta(t, 2.5, start.Separation(end), 1e-9)
		assert.InDelta(t, pa, start.PositionAngle(end), 1e-9)
	}

	north := start.DirectionalOffsetBy(0, 1)
	assert.InDelta(t, 10, north.Lon, 1e-12)
	assert.InDelta(t, 21, north.Lat, 1e-12)
}

func TestFrameParsing(t *testing.T) {
	f, err := ParseFrame("GAL")
	require.NoError(t, err)
	assert.Equal(t, Galactic, f)

	_, err = ParseFrame("ecliptic")
	assert.Error(t, err)

	var c Coord
	require.NoError(t, yaml.Unmarshal([]byte("lon: 83.6\nlat: 22\nframe: icrs\n"), &c))
	assert.Equal(t, ICRS, c.Frame)
	assert.Equal(t, 83.6, c.Lon)

	out, err := yaml.Marshal(NewGalactic(1, 2))
	require.NoError(t, err)
	assert.Contains(t, string(out), "frame: galactic")
}
