package skyimage

// Reading and writing images as FITS HDUs.

import(
	"fmt"
	"os"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/fitsheader"
	"github.com/abworrall/skyimage/pkg/wcs"
)

// Read loads the first image HDU in the file.
func Read(filename string) (*SkyImage, error) {
	var si *SkyImage
	err := withFitsFile(filename, func(f *fitsio.File) error {
		for _, hdu := range f.HDUs() {
			img, ok := hdu.(fitsio.Image)
			if !ok || len(img.Header().Axes()) < 2 {
				continue
			}
			var err error
			si, err = FromImageHDU(img)
			return err
		}
		return fmt.Errorf("no 2-D image HDU")
	})
	if err != nil {
		return nil, fmt.Errorf("read '%s': %v", filename, err)
	}
	return si, nil
}

func withFitsFile(filename string, fn func(f *fitsio.File) error) error {
	r, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return err
	}
	defer f.Close()

	return fn(f)
}

// FromImageHDU builds an image from an HDU; the header goes into Meta,
// minus the keywords that describe the data layout.
func FromImageHDU(img fitsio.Image) (*SkyImage, error) {
	hdr := convertHeader(img.Header())

	data, err := readImageData(img)
	if err != nil {
		return nil, err
	}
	w, err := wcs.FromHeader(hdr)
	if err != nil {
		return nil, err
	}

	si := &SkyImage{Data: data, WCS: w, Meta: hdr}
	if name, ok := hdr.Str("HDUNAME"); ok {
		si.Name = name
	} else if name, ok := hdr.Str("EXTNAME"); ok {
		si.Name = name
	}
	if unit, ok := hdr.Str("BUNIT"); ok {
		si.Unit = unit
	}
	return si, nil
}

func convertHeader(fh *fitsio.Header) *fitsheader.Header {
	h := fitsheader.New()
	for i := range fh.Keys() {
		c := fh.Card(i)
		if c == nil || c.Name == "" || fitsheader.IsStructural(c.Name) {
			continue
		}
		h.SetWithComment(c.Name, c.Value, c.Comment)
	}
	return h
}

// readImageData converts whatever BITPIX the file uses into float64s,
// applying BSCALE and BZERO to integer data.
func readImageData(img fitsio.Image) (emath.FloatGrid, error) {
	axes := img.Header().Axes()
	if len(axes) < 2 {
		return emath.FloatGrid{}, fmt.Errorf("image has %d axes: %w", len(axes), ErrShape)
	}
	nx, ny := axes[0], axes[1]
	for _, n := range axes[2:] {
		if n != 1 {
			return emath.FloatGrid{}, fmt.Errorf("image axes %v: %w", axes, ErrShape)
		}
	}
	n := nx*ny

	vals := make([]float64, n)
	isInt := true
	switch img.Header().Bitpix() {
	case 8:
		buf := make([]uint8, n)
		if err := img.Read(&buf); err != nil { return emath.FloatGrid{}, err }
		for i, v := range buf { vals[i] = float64(v) }
	case 16:
		buf := make([]int16, n)
		if err := img.Read(&buf); err != nil { return emath.FloatGrid{}, err }
		for i, v := range buf { vals[i] = float64(v) }
	case 32:
		buf := make([]int32, n)
		if err := img.Read(&buf); err != nil { return emath.FloatGrid{}, err }
		for i, v := range buf { vals[i] = float64(v) }
	case 64:
		buf := make([]int64, n)
		if err := img.Read(&buf); err != nil { return emath.FloatGrid{}, err }
		for i, v := range buf { vals[i] = float64(v) }
	case -32:
		isInt = false
		buf := make([]float32, n)
		if err := img.Read(&buf); err != nil { return emath.FloatGrid{}, err }
		for i, v := range buf { vals[i] = float64(v) }
	case -64:
		isInt = false
		if err := img.Read(&vals); err != nil { return emath.FloatGrid{}, err }
	default:
		return emath.FloatGrid{}, fmt.Errorf("unsupported BITPIX %d", img.Header().Bitpix())
	}

	if isInt {
		bscale, bzero := 1.0, 0.0
		if c := img.Header().Get("BSCALE"); c != nil {
			bscale = cardFloat(c, 1.0)
		}
		if c := img.Header().Get("BZERO"); c != nil {
			bzero = cardFloat(c, 0.0)
		}
		if bscale != 1.0 || bzero != 0.0 {
			for i := range vals {
				vals[i] = vals[i]*bscale + bzero
			}
		}
	}

	return emath.NewFloatGridFromValues(nx, ny, vals)
}

func cardFloat(c *fitsio.Card, def float64) float64 {
	h := fitsheader.New()
	h.Set(c.Name, c.Value)
	if f, ok := h.Float(c.Name); ok {
		return f
	}
	return def
}

// ToImageHDU renders the image as a float64 image HDU. The WCS keywords
// take precedence over any stale copies in the metadata.
func (si *SkyImage)ToImageHDU() (fitsio.Image, error) {
	hdr := si.Meta.Copy()
	if si.WCS != nil {
		hdr.Update(si.WCS.Header())
	}
	if si.Unit != "" {
		hdr.Set("BUNIT", si.Unit)
	}
	if si.Name != "" {
		hdr.Set("EXTNAME", si.Name)
		hdr.Set("HDUNAME", si.Name)
	}

	img := fitsio.NewImage(-64, []int{si.Nx(), si.Ny()})
	for _, c := range hdr.Cards() {
		if fitsheader.IsStructural(c.Name) {
			continue
		}
		card := fitsio.Card{Name: c.Name, Value: fitsValue(c.Value), Comment: c.Comment}
		if err := img.Header().Append(card); err != nil {
			return nil, fmt.Errorf("header card %s: %v", c.Name, err)
		}
	}
	if err := img.Write(si.Data.Values()); err != nil {
		return nil, err
	}
	return img, nil
}

// fitsValue narrows values to the types the FITS encoder knows about.
func fitsValue(v interface{}) interface{} {
	switch val := v.(type) {
	case float32: return float64(val)
	case int8:    return int(val)
	case int16:   return int(val)
	case int32:   return int(val)
	case int64:   return int(val)
	case uint8:   return int(val)
	case string:  return strings.TrimRight(val, " ")
	}
	return v
}

// Write saves the image as the primary HDU of a new FITS file.
func (si *SkyImage)Write(filename string) error {
	return writeImages(filename, []*SkyImage{si}, nil)
}

// writeImages writes one HDU per image; `extra` cards are added to
// every HDU.
func writeImages(filename string, imgs []*SkyImage, extra *fitsheader.Header) error {
	w, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	}
	defer w.Close()

	f, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("fits '%s': %v", filename, err)
	}
	defer f.Close()

	for _, si := range imgs {
		out := si
		if extra != nil {
			out = &SkyImage{Name: si.Name, Data: si.Data, WCS: si.WCS, Unit: si.Unit, Meta: si.Meta.Copy()}
			out.Meta.Update(extra)
		}
		hdu, err := out.ToImageHDU()
		if err != nil {
			return fmt.Errorf("write '%s' hdu %s: %v", filename, si.Name, err)
		}
		if err := f.Write(hdu); err != nil {
			return fmt.Errorf("write '%s' hdu %s: %v", filename, si.Name, err)
		}
		hdu.Close()
	}
	return nil
}
