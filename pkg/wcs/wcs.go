package wcs

// A WCS maps 0-based pixel positions to positions on the sky, for a
// 2-D celestial image. Pixel (0,0) is the centre of the first pixel;
// the FITS keywords themselves stay 1-based (CRPIX).

import(
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/sky"
)

var(
	ErrUnknownProjection = errors.New("unknown projection")
	ErrInvalidMethod     = errors.New("invalid method")
	ErrNoSolution        = errors.New("no solution for coordinate")
	ErrSingular          = errors.New("singular pixel matrix")
)

// Which method to use for pixel scales
const(
	ScaleCDELT     = "cdelt"
	ScaleProjPlane = "proj_plane"
)

type WCS struct {
	CType   [2]string
	CUnit   [2]string
	CRPix   [2]float64     // 1-based, as in the FITS header
	CRVal   [2]float64
	CDelt   [2]float64
	PC      [2][2]float64

	LonPole float64        // NaN means use the default
	LatPole float64        // NaN means use the default
	RadeSys string
	Equinox float64        // 0 if not given
}

// New builds a WCS with an identity PC matrix and default poles.
func New(ctype1, ctype2 string, crpix, crval, cdelt [2]float64) *WCS {
	return &WCS{
		CType:   [2]string{ctype1, ctype2},
		CUnit:   [2]string{"deg", "deg"},
		CRPix:   crpix,
		CRVal:   crval,
		CDelt:   cdelt,
		PC:      [2][2]float64{{1, 0}, {0, 1}},
		LonPole: math.NaN(),
		LatPole: math.NaN(),
	}
}

func (w *WCS)Copy() *WCS {
	w2 := *w
	return &w2
}

func (w *WCS)String() string {
	return fmt.Sprintf("WCS[%s,%s crpix(%.3f,%.3f) crval(%.4f,%.4f) cdelt(%.4g,%.4g)]",
		w.CType[0], w.CType[1], w.CRPix[0], w.CRPix[1], w.CRVal[0], w.CRVal[1], w.CDelt[0], w.CDelt[1])
}

// ProjectionCode is the three letters after the axis name, e.g. "CAR" in "GLON-CAR".
func (w *WCS)ProjectionCode() string {
	ct := strings.TrimSpace(w.CType[0])
	if len(ct) < 8 {
		return ""
	}
	return strings.ToUpper(ct[5:8])
}

func (w *WCS)projection() (projection, error) {
	return getProjection(w.ProjectionCode())
}

// Frame is worked out from the axis names.
func (w *WCS)Frame() sky.Frame {
	if strings.HasPrefix(strings.ToUpper(w.CType[0]), "GLON") {
		return sky.Galactic
	}
	return sky.ICRS
}

// pixToPlane maps 0-based pixel coords onto the intermediate world
// coordinate plane (degrees).
func (w *WCS)pixToPlane() emath.Aff3 {
	m := emath.Linear(
		w.CDelt[0]*w.PC[0][0], w.CDelt[0]*w.PC[0][1],
		w.CDelt[1]*w.PC[1][0], w.CDelt[1]*w.PC[1][1],
	)
	return m.Translate(1.0 - w.CRPix[0], 1.0 - w.CRPix[1])
}

// Pole works out the celestial coords of the native pole (alphaP,
// deltaP) and the native longitude of the celestial pole (phiP).
func (w *WCS)Pole() (alphaP, deltaP, phiP float64, err error) {
	proj, err := w.projection()
	if err != nil {
		return 0, 0, 0, err
	}
	alpha0, delta0 := w.CRVal[0], w.CRVal[1]
	phi0, theta0 := 0.0, proj.Theta0()

	phiP = w.LonPole
	if math.IsNaN(phiP) {
		phiP = 180.0
		if delta0 >= theta0 {
			phiP = 0.0
		}
	}
	latPole := w.LatPole
	if math.IsNaN(latPole) {
		latPole = 90.0
	}

	if theta0 == 90.0 {
		return alpha0, delta0, phiP, nil
	}

	a := emath.Atan2d(emath.Sind(theta0), emath.Cosd(theta0)*emath.Cosd(phiP-phi0))
	denom := math.Sqrt(1.0 - math.Pow(emath.Cosd(theta0)*emath.Sind(phiP-phi0), 2))
	if denom == 0 {
		return 0, 0, 0, fmt.Errorf("pole for %s: %w", w, ErrNoSolution)
	}
	ratio := emath.Sind(delta0) / denom
	if math.Abs(ratio) > 1.0 + 1e-12 {
		return 0, 0, 0, fmt.Errorf("pole for %s: %w", w, ErrNoSolution)
	}
	b := emath.Rad2Deg(math.Acos(emath.Clamp(ratio, -1, 1)))

	found := false
	for _, cand := range []float64{a + b, a - b} {
		cand = emath.WrapDeg180(cand)
		if math.Abs(cand) > 90.0 + 1e-10 {
			continue
		}
		cand = emath.Clamp(cand, -90, 90)
		if !found || math.Abs(cand - latPole) < math.Abs(deltaP - latPole) {
			deltaP = cand
			found = true
		}
	}
	if !found {
		return 0, 0, 0, fmt.Errorf("pole for %s: %w", w, ErrNoSolution)
	}

	// Pick alphaP so the fiducial point lands on CRVAL
	alphaOff := emath.Atan2d(
		-emath.Cosd(theta0)*emath.Sind(phi0-phiP),
		emath.Sind(theta0)*emath.Cosd(deltaP) - emath.Cosd(theta0)*emath.Sind(deltaP)*emath.Cosd(phi0-phiP))
	alphaP = alpha0 - alphaOff

	return alphaP, deltaP, phiP, nil
}

func nativeToCelestial(phi, theta, alphaP, deltaP, phiP float64) (float64, float64) {
	dphi := phi - phiP
	alpha := alphaP + emath.Atan2d(
		-emath.Cosd(theta)*emath.Sind(dphi),
		emath.Sind(theta)*emath.Cosd(deltaP) - emath.Cosd(theta)*emath.Sind(deltaP)*emath.Cosd(dphi))
	delta := emath.Rad2Deg(math.Asin(emath.Clamp(
		emath.Sind(theta)*emath.Sind(deltaP) + emath.Cosd(theta)*emath.Cosd(deltaP)*emath.Cosd(dphi), -1, 1)))
	return emath.WrapDeg360(alpha), delta
}

func celestialToNative(alpha, delta, alphaP, deltaP, phiP float64) (float64, float64) {
	dalpha := alpha - alphaP
	phi := phiP + emath.Atan2d(
		-emath.Cosd(delta)*emath.Sind(dalpha),
		emath.Sind(delta)*emath.Cosd(deltaP) - emath.Cosd(delta)*emath.Sind(deltaP)*emath.Cosd(dalpha))
	theta := emath.Rad2Deg(math.Asin(emath.Clamp(
		emath.Sind(delta)*emath.Sind(deltaP) + emath.Cosd(delta)*emath.Cosd(deltaP)*emath.Cosd(dalpha), -1, 1)))
	return phi, theta
}

// PixelToWorld maps a 0-based pixel position to (lon, lat) in degrees,
// in the frame of the WCS.
func (w *WCS)PixelToWorld(x, y float64) (float64, float64, error) {
	proj, err := w.projection()
	if err != nil {
		return 0, 0, err
	}
	alphaP, deltaP, phiP, err := w.Pole()
	if err != nil {
		return 0, 0, err
	}

	px, py := w.pixToPlane().Apply(x, y)
	phi, theta, err := proj.Deproject(px, py)
	if err != nil {
		return 0, 0, fmt.Errorf("pixel (%f,%f): %w", x, y, err)
	}
	lon, lat := nativeToCelestial(phi, theta, alphaP, deltaP, phiP)
	return lon, lat, nil
}

// WorldToPixel is the inverse of PixelToWorld.
func (w *WCS)WorldToPixel(lon, lat float64) (float64, float64, error) {
	proj, err := w.projection()
	if err != nil {
		return 0, 0, err
	}
	alphaP, deltaP, phiP, err := w.Pole()
	if err != nil {
		return 0, 0, err
	}
	inv, ok := w.pixToPlane().Invert()
	if !ok {
		return 0, 0, fmt.Errorf("%s: %w", w, ErrSingular)
	}

	phi, theta := celestialToNative(lon, lat, alphaP, deltaP, phiP)
	px, py, err := proj.Project(phi, theta)
	if err != nil {
		return 0, 0, fmt.Errorf("world (%f,%f): %w", lon, lat, err)
	}
	x, y := inv.Apply(px, py)
	return x, y, nil
}

func (w *WCS)PixelToSkyCoord(x, y float64) (sky.Coord, error) {
	lon, lat, err := w.PixelToWorld(x, y)
	if err != nil {
		return sky.Coord{}, err
	}
	return sky.Coord{Lon: lon, Lat: lat, Frame: w.Frame()}, nil
}

// SkyCoordToPixel transforms the coord into the WCS frame first.
func (w *WCS)SkyCoordToPixel(c sky.Coord) (float64, float64, error) {
	c = c.Transform(w.Frame())
	return w.WorldToPixel(c.Lon, c.Lat)
}

// PixelScales returns the size of a pixel along each axis, in degrees,
// at the reference pixel. "cdelt" just reads |CDELT|; "proj_plane"
// accounts for the PC matrix.
func (w *WCS)PixelScales(method string) ([2]float64, error) {
	switch method {
	case ScaleCDELT, "":
		return [2]float64{math.Abs(w.CDelt[0]), math.Abs(w.CDelt[1])}, nil
	case ScaleProjPlane:
		sx, sy := w.pixToPlane().ColumnNorms()
		return [2]float64{sx, sy}, nil
	}
	return [2]float64{}, fmt.Errorf("pixel scale '%s': %w", method, ErrInvalidMethod)
}

// Resampled returns the WCS for the image rebinned by `factor` (coarser
// pixels if downsampled, finer if not). Pixel edges stay where they were.
func (w *WCS)Resampled(factor float64, downsampled bool) *WCS {
	w2 := w.Copy()
	if !downsampled {
		factor = 1.0 / factor
	}
	for i:=0; i<2; i++ {
		w2.CDelt[i] *= factor
		w2.CRPix[i] = (w2.CRPix[i] - 0.5) / factor + 0.5
	}
	return w2
}

// Shifted returns the WCS for an image whose pixel (0,0) sits at pixel
// (-dx,-dy) of this one; i.e. it moves the reference pixel by (dx,dy).
func (w *WCS)Shifted(dx, dy float64) *WCS {
	w2 := w.Copy()
	w2.CRPix[0] += dx
	w2.CRPix[1] += dy
	return w2
}
