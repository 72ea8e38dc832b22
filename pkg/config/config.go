package config

import(
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/skyimage/pkg/background"
	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/regions"
	"github.com/abworrall/skyimage/pkg/sky"
	"github.com/abworrall/skyimage/pkg/skyimage"
)

/* Example config file ...

verbosity: 1
image:
  name: counts
  nxpix: 250
  nypix: 250
  binsz: 0.02
  xref: 83.633
  yref: 22.0145
  proj: TAN
  coordsys: CEL
pointing: {lon: 83.633, lat: 22.5145, frame: icrs}
on_region:
  center: {lon: 83.633, lat: 22.0145, frame: icrs}
  radius: 0.3
exclusion:
  threshold: 10
  dilate: 3
reflected:
  angle_increment: 0.1
  min_distance_input: 0.1
  max_region_number: 20
output:
  fits: out.fits
  quicklook: out.png
  tonemapper: drago03
  hdr: out.hdr

*/

var ErrConfig = errors.New("bad config")

type ExclusionConfig struct {
	File      string  `yaml:"file"`       // FITS mask, or an image to threshold
	Threshold *float64 `yaml:"threshold,omitempty"`  // if set, pixels above this are excluded
	Dilate    int     `yaml:"dilate"`     // grow excluded areas by this many pixels
}

type OutputConfig struct {
	FITS       string `yaml:"fits"`
	Quicklook  string `yaml:"quicklook"`
	Collection string `yaml:"collection"`  // all the images, one HDU each
	HDR        string `yaml:"hdr"`         // Radiance .hdr of the counts
	Tonemapper string `yaml:"tonemapper"`  // if set, the quicklook is tonemapped
}

type Config struct {
	Verbosity     int                     `yaml:"verbosity"`

	Image         skyimage.EmptyOptions   `yaml:"image"`
	Downsample    int                     `yaml:"downsample"`
	Reducer       string                  `yaml:"reducer"`
	ReprojectMode string                  `yaml:"reproject_mode"`

	Pointing      sky.Coord               `yaml:"pointing"`
	OnRegion      regions.CircleSkyRegion `yaml:"on_region"`
	Exclusion     ExclusionConfig         `yaml:"exclusion"`
	Reflected     background.Options      `yaml:"reflected"`

	Output        OutputConfig            `yaml:"output"`
}

func NewConfig() Config {
	return Config{
		Image: skyimage.DefaultEmptyOptions(),
		Downsample: 1,
		ReprojectMode: skyimage.ReprojectInterp,
		Reflected: background.DefaultOptions(),
	}
}

func NewConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse config: %v", err)
	}
	return c, c.Finalize()
}

func LoadConfig(filename string) (Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}
	return NewConfigFromYaml(contents)
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// Finalize does sanity checks, and fills in anything left blank.
func (c *Config)Finalize() error {
	if c.Downsample == 0 {
		c.Downsample = 1
	}
	if c.Downsample < 0 {
		return fmt.Errorf("downsample %d: %w", c.Downsample, ErrConfig)
	}
	if _, err := c.GetReducer(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrConfig)
	}
	switch c.ReprojectMode {
	case "":
		c.ReprojectMode = skyimage.ReprojectInterp
	case skyimage.ReprojectInterp, skyimage.ReprojectNearest, skyimage.ReprojectExact:
	default:
		return fmt.Errorf("reproject_mode '%s': %w", c.ReprojectMode, ErrConfig)
	}
	if c.Reflected.AngleIncrement <= 0 {
		return fmt.Errorf("reflected.angle_increment %f: %w", c.Reflected.AngleIncrement, ErrConfig)
	}
	if c.Reflected.MaxRegionNumber <= 0 {
		c.Reflected.MaxRegionNumber = background.DefaultOptions().MaxRegionNumber
	}
	if c.OnRegion.Radius < 0 {
		return fmt.Errorf("on_region radius %f: %w", c.OnRegion.Radius, ErrConfig)
	}
	if c.Output.Tonemapper != "" && !strings.Contains(","+skyimage.ListTonemappers()+",", ","+c.Output.Tonemapper+",") {
		return fmt.Errorf("output.tonemapper '%s', wanted one of %s: %w", c.Output.Tonemapper, skyimage.ListTonemappers(), ErrConfig)
	}
	c.Reflected.Verbosity = c.Verbosity
	return nil
}

func (c Config)GetReducer() (emath.Reducer, error) {
	return emath.GetReducer(c.Reducer)
}

// HasOnRegion is false when no ON region was configured.
func (c Config)HasOnRegion() bool { return c.OnRegion.Radius > 0 }
