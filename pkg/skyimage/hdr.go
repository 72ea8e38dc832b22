package skyimage

// Sky images as HDR pictures. Counts maps span orders of magnitude
// (a bright source next to a faint diffuse background), so besides the
// percentile-stretched quicklook we can hand the raw values to an HDR
// tonemapper, or write them out as a Radiance .hdr file.

import(
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/mdouchement/hdr/tmo"
)

// hdrView presents the data as a grey HDR image, with row 0 at the
// bottom. NaNs and negative values are black.
type hdrView struct {
	si *SkyImage
}

// Implement image.Image
func (v hdrView)ColorModel() color.Model       { return hdrcolor.RGBModel }
func (v hdrView)Bounds() image.Rectangle       { return image.Rect(0, 0, v.si.Nx(), v.si.Ny()) }
func (v hdrView)At(x, y int) color.Color       { return v.HDRAt(x,y) }

// Implement hdr.Image
func (v hdrView)HDRAt(x, y int) hdrcolor.Color {
	f := v.si.Data.Get(x, v.si.Ny()-1-y)
	if math.IsNaN(f) || f < 0 {
		f = 0
	}
	return hdrcolor.RGB{R: f, G: f, B: f}
}
func (v hdrView)Size() int                     { return v.si.Nx() * v.si.Ny() }

// HDRImage wraps the image so it can be fed to the hdr codecs and tonemappers.
func (si *SkyImage)HDRImage() hdr.Image { return hdrView{si} }

// WriteHDR outputs a Radiance RGBE file. You can load this into HDR tools.
func (si *SkyImage)WriteHDR(filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("WriteHDR, open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		err := rgbe.Encode(writer, si.HDRImage())
		if err != nil {
			log.Printf("WriteHDR, encoding RGBE file: %v\n", err)
		}
		return err
	}
}

// Counts maps are mostly empty or a few counts per pixel, with a
// handful of bright pixels at the sources. Only drago03 needs help with
// that; the others run with their stock settings.
var tonemappers = map[string]func(hdr.Image) tmo.ToneMappingOperator{
	"drago03": func(m hdr.Image) tmo.ToneMappingOperator {
		op := tmo.NewDefaultDrago03(m)
		op.Bias = 0.7            // lifts single-count pixels out of the black
		return op
	},
	"durand": func(m hdr.Image) tmo.ToneMappingOperator {
		return tmo.NewDefaultDurand(m)
	},
	"icam06": func(m hdr.Image) tmo.ToneMappingOperator {
		return tmo.NewDefaultICam06(m)
	},
	"linear": func(m hdr.Image) tmo.ToneMappingOperator {
		return tmo.NewLinear(m)
	},
	"reinhard05": func(m hdr.Image) tmo.ToneMappingOperator {
		return tmo.NewDefaultReinhard05(m)
	},
}

func ListTonemappers() string {
	names := []string{}
	for name := range tonemappers {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Tonemap renders the data into an 8-bit picture, north up.
func (si *SkyImage)Tonemap(name string) (image.Image, error) {
	newOp, exists := tonemappers[name]
	if !exists {
		return nil, fmt.Errorf("tonemapper '%s', wanted one of %s: %w", name, ListTonemappers(), ErrInvalidMode)
	}
	return newOp(si.HDRImage()).Perform(), nil
}
