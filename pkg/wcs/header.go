package wcs

// Mapping between a WCS and the FITS header keywords that define it.

import(
	"fmt"
	"math"
	"strings"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/fitsheader"
)

// FromHeader reads the celestial WCS keywords. A CD matrix, or the old
// CROTA2 keyword, is folded into CDELT + PC.
func FromHeader(h *fitsheader.Header) (*WCS, error) {
	if h == nil {
		return nil, fmt.Errorf("FromHeader: no header")
	}

	w := New("", "", [2]float64{0, 0}, [2]float64{0, 0}, [2]float64{1, 1})

	for i:=0; i<2; i++ {
		n := i+1
		ct, ok := h.Str(fmt.Sprintf("CTYPE%d", n))
		if !ok {
			return nil, fmt.Errorf("FromHeader: CTYPE%d missing", n)
		}
		w.CType[i] = strings.ToUpper(ct)
		if cu, ok := h.Str(fmt.Sprintf("CUNIT%d", n)); ok {
			w.CUnit[i] = cu
		}
		w.CRPix[i], _ = h.Float(fmt.Sprintf("CRPIX%d", n))
		w.CRVal[i], _ = h.Float(fmt.Sprintf("CRVAL%d", n))
	}

	if _, hasCD := h.Float("CD1_1"); hasCD {
		cd := [2][2]float64{}
		for i:=0; i<2; i++ {
			for j:=0; j<2; j++ {
				cd[i][j], _ = h.Float(fmt.Sprintf("CD%d_%d", i+1, j+1))
			}
		}
		// Pull the scale out of each row, so PC keeps unit-ish rows
		for i:=0; i<2; i++ {
			s := math.Hypot(cd[i][0], cd[i][1])
			if s == 0 {
				return nil, fmt.Errorf("FromHeader: CD row %d is zero: %w", i+1, ErrSingular)
			}
			if (i == 0 && cd[i][0] < 0) || (i == 1 && cd[i][1] < 0) {
				s = -s
			}
			w.CDelt[i] = s
			w.PC[i][0], w.PC[i][1] = cd[i][0]/s, cd[i][1]/s
		}

	} else {
		for i:=0; i<2; i++ {
			if v, ok := h.Float(fmt.Sprintf("CDELT%d", i+1)); ok {
				w.CDelt[i] = v
			}
		}
		if rot, ok := h.Float("CROTA2"); ok && rot != 0 {
			ratio := w.CDelt[1] / w.CDelt[0]
			w.PC = [2][2]float64{
				{emath.Cosd(rot), -ratio * emath.Sind(rot)},
				{emath.Sind(rot) / ratio, emath.Cosd(rot)},
			}
		}
		for i:=0; i<2; i++ {
			for j:=0; j<2; j++ {
				if v, ok := h.Float(fmt.Sprintf("PC%d_%d", i+1, j+1)); ok {
					w.PC[i][j] = v
				}
			}
		}
	}

	if v, ok := h.Float("LONPOLE"); ok { w.LonPole = v }
	if v, ok := h.Float("LATPOLE"); ok { w.LatPole = v }
	if v, ok := h.Float("EQUINOX"); ok { w.Equinox = v }
	if v, ok := h.Str("RADESYS"); ok { w.RadeSys = v }

	if _, err := w.projection(); err != nil {
		return nil, fmt.Errorf("FromHeader: %w", err)
	}
	if _,ok := w.pixToPlane().Invert(); !ok {
		return nil, fmt.Errorf("FromHeader %s: %w", w, ErrSingular)
	}

	return w, nil
}

// Header renders the WCS as FITS keywords. The PC matrix is only
// written when it isn't the identity.
func (w *WCS)Header() *fitsheader.Header {
	h := fitsheader.New()
	h.Set("WCSAXES", 2)
	for i:=0; i<2; i++ {
		n := i+1
		h.Set(fmt.Sprintf("CTYPE%d", n), w.CType[i])
		if w.CUnit[i] != "" {
			h.Set(fmt.Sprintf("CUNIT%d", n), w.CUnit[i])
		}
		h.Set(fmt.Sprintf("CRPIX%d", n), w.CRPix[i])
		h.Set(fmt.Sprintf("CRVAL%d", n), w.CRVal[i])
		h.Set(fmt.Sprintf("CDELT%d", n), w.CDelt[i])
	}
	if w.PC != [2][2]float64{{1, 0}, {0, 1}} {
		for i:=0; i<2; i++ {
			for j:=0; j<2; j++ {
				h.Set(fmt.Sprintf("PC%d_%d", i+1, j+1), w.PC[i][j])
			}
		}
	}
	if !math.IsNaN(w.LonPole) { h.Set("LONPOLE", w.LonPole) }
	if !math.IsNaN(w.LatPole) { h.Set("LATPOLE", w.LatPole) }
	if w.RadeSys != "" { h.Set("RADESYS", w.RadeSys) }
	if w.Equinox != 0 { h.Set("EQUINOX", w.Equinox) }
	return h
}

// GtbinParams mirror the Fermi-LAT gtbin tool's image parameters. Zero
// values for XRefPix/YRefPix mean "centre of the image".
type GtbinParams struct {
	NXPix    int     `yaml:"nxpix"`
	NYPix    int     `yaml:"nypix"`
	BinSz    float64 `yaml:"binsz"`
	XRef     float64 `yaml:"xref"`
	YRef     float64 `yaml:"yref"`
	Proj     string  `yaml:"proj"`
	CoordSys string  `yaml:"coordsys"`  // CEL or GAL
	XRefPix  float64 `yaml:"xrefpix"`
	YRefPix  float64 `yaml:"yrefpix"`
}

func DefaultGtbinParams() GtbinParams {
	return GtbinParams{
		NXPix: 200,
		NYPix: 200,
		BinSz: 0.02,
		Proj: "CAR",
		CoordSys: "GAL",
	}
}

// NewGtbinHeader builds the image header that gtbin would write, NAXIS
// keywords included.
func NewGtbinHeader(p GtbinParams) (*fitsheader.Header, error) {
	if p.NXPix <= 0 || p.NYPix <= 0 {
		return nil, fmt.Errorf("gtbin header: bad image size %dx%d", p.NXPix, p.NYPix)
	}
	if p.BinSz <= 0 {
		return nil, fmt.Errorf("gtbin header: bad binsz %f", p.BinSz)
	}
	proj := strings.ToUpper(p.Proj)
	if _, err := getProjection(proj); err != nil {
		return nil, fmt.Errorf("gtbin header: %w", err)
	}

	xrefpix, yrefpix := p.XRefPix, p.YRefPix
	if xrefpix == 0 {
		xrefpix = (float64(p.NXPix) + 1.0) / 2.0
	}
	if yrefpix == 0 {
		yrefpix = (float64(p.NYPix) + 1.0) / 2.0
	}

	var ct1, ct2 string
	switch strings.ToUpper(p.CoordSys) {
	case "CEL":
		ct1, ct2 = "RA---", "DEC--"
	case "GAL":
		ct1, ct2 = "GLON-", "GLAT-"
	default:
		return nil, fmt.Errorf("gtbin header: coordsys '%s' is not CEL or GAL", p.CoordSys)
	}

	w := New(ct1+proj, ct2+proj,
		[2]float64{xrefpix, yrefpix},
		[2]float64{p.XRef, p.YRef},
		[2]float64{-p.BinSz, p.BinSz})

	h := fitsheader.New()
	h.Set("NAXIS", 2)
	h.Set("NAXIS1", p.NXPix)
	h.Set("NAXIS2", p.NYPix)
	h.Update(w.Header())
	return h, nil
}
