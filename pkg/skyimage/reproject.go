package skyimage

import(
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/fitsheader"
	"github.com/abworrall/skyimage/pkg/wcs"
)

// Reprojection modes
const(
	ReprojectInterp  = "interp"   // bilinear
	ReprojectNearest = "nearest"
	ReprojectExact   = "exact"    // average over an oversampled grid of each output pixel
)

// Each output pixel in "exact" mode is split into this many sub-pixels per axis
const exactOversample = 4

// Reproject resamples the image onto the pixel grid of `ref`. Output
// pixels that don't land on the input image are NaN.
func (si *SkyImage)Reproject(ref *SkyImage, mode string) (*SkyImage, error) {
	return si.ReprojectTo(ref.WCS, ref.Nx(), ref.Ny(), mode)
}

// ReprojectToHeader takes the output geometry from a FITS header (it
// needs NAXIS1 and NAXIS2 along with the WCS keywords).
func (si *SkyImage)ReprojectToHeader(h *fitsheader.Header, mode string) (*SkyImage, error) {
	nx, okx := h.Int("NAXIS1")
	ny, oky := h.Int("NAXIS2")
	if !okx || !oky {
		return nil, fmt.Errorf("reproject: header has no NAXIS1/NAXIS2: %w", ErrShape)
	}
	w, err := wcs.FromHeader(h)
	if err != nil {
		return nil, fmt.Errorf("reproject: %v", err)
	}
	return si.ReprojectTo(w, nx, ny, mode)
}

type reprojectJob struct {
	Y   int
	Row []float64
}

func (si *SkyImage)ReprojectTo(w *wcs.WCS, nx, ny int, mode string) (*SkyImage, error) {
	var sample func(float64, float64) float64
	switch mode {
	case ReprojectInterp, ReprojectExact:
		sample = si.Data.Bilinear
	case ReprojectNearest:
		sample = si.Data.Nearest
	default:
		return nil, fmt.Errorf("reproject '%s': %w", mode, ErrInvalidMode)
	}
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("reproject to %dx%d: %w", nx, ny, ErrShape)
	}

	// Output pixel -> sky -> input pixel -> value
	at := func(x, y float64) float64 {
		c, err := w.PixelToSkyCoord(x, y)
		if err != nil {
			return math.NaN()
		}
		sx, sy, err := si.WCS.SkyCoordToPixel(c)
		if err != nil {
			return math.NaN()
		}
		return sample(sx, sy)
	}

	out := emath.NewFloatGrid(nx, ny)

	var wg sync.WaitGroup
	jobsChan    := make(chan reprojectJob, ny)
	resultsChan := make(chan reprojectJob, ny)

	// Kick off worker pool; each worker gets its own sampler, as the
	// exact sampler has a scratch buffer
	nWorkers := runtime.NumCPU()
	for i:=0; i<nWorkers; i++ {
		wg.Add(1)
		workerPixel := at
		if mode == ReprojectExact {
			workerPixel = exactSampler(at)
		}

		go func() {
			defer wg.Done()
			for job := range jobsChan {
				for x := range job.Row {
					job.Row[x] = workerPixel(float64(x), float64(job.Y))
				}
				resultsChan<- job
			}
		}()
	}

	// Feed in jobs
	for y:=0; y<ny; y++ {
		jobsChan<- reprojectJob{Y: y, Row: make([]float64, nx)}
	}
	close(jobsChan)

	wg.Wait()
	close(resultsChan)

	for job := range resultsChan {
		copy(out.Values()[job.Y*nx:(job.Y+1)*nx], job.Row)
	}

	return si.derived(out, w.Copy()), nil
}

func exactSampler(at func(float64, float64) float64) func(float64, float64) float64 {
	sub := make([]float64, 0, exactOversample*exactOversample)
	return func(x, y float64) float64 {
		sub = sub[:0]
		for j:=0; j<exactOversample; j++ {
			for i:=0; i<exactOversample; i++ {
				dx := (float64(i) + 0.5) / exactOversample - 0.5
				dy := (float64(j) + 0.5) / exactOversample - 0.5
				sub = append(sub, at(x+dx, y+dy))
			}
		}
		return emath.NaNMean(sub)
	}
}
