package analysis

// An Analysis strings the pieces together: make a counts image, make an
// exclusion mask, find the reflected background regions, and write it
// all out.

import(
	"fmt"
	"log"

	"github.com/abworrall/skyimage/pkg/background"
	"github.com/abworrall/skyimage/pkg/config"
	"github.com/abworrall/skyimage/pkg/regions"
	"github.com/abworrall/skyimage/pkg/skyimage"
)

type Analysis struct {
	config.Inputs

	Counts *skyimage.SkyImage
	Mask   *skyimage.SkyMask
	Result *background.Result
}

func New() *Analysis {
	return &Analysis{Inputs: *config.NewInputs()}
}

func (a *Analysis)String() string {
	str := fmt.Sprintf("Analysis: %d images, %d events\n", len(a.Images), len(a.Events))
	if a.Counts != nil {
		str += a.Counts.String()
	}
	if a.Result != nil {
		str += a.Result.String() + "\n"
	}
	return str
}

// BuildCounts makes the counts image on the configured geometry. Events
// are binned if there are any; otherwise the first loaded image is
// reprojected; otherwise it is left empty.
func (a *Analysis)BuildCounts() error {
	cfg := a.Config
	empty, err := skyimage.Empty(cfg.Image)
	if err != nil {
		return err
	}

	switch {
	case len(a.Events) > 0:
		empty.FillEvents(a.Events)
		a.Counts = empty
		if cfg.Verbosity > 0 {
			log.Printf("Binned %d events, %.0f landed on the image\n", len(a.Events), a.Counts.Data.NaNSum())
		}
		if cfg.Verbosity > 1 {
			log.Printf("Counts per pixel:\n%v\n", a.Counts.CountsHistogram())
		}

	case len(a.Images) > 0:
		if a.Counts, err = a.Images[0].Reproject(empty, cfg.ReprojectMode); err != nil {
			return fmt.Errorf("reproject %s: %v", a.Images[0].Name, err)
		}
		a.Counts.Unit = a.Images[0].Unit

	default:
		log.Printf("No events or images loaded, counts image is empty\n")
		a.Counts = empty
	}
	a.Counts.Name = cfg.Image.Name

	if cfg.Downsample > 1 {
		reducer, err := cfg.GetReducer()
		if err != nil {
			return err
		}
		if a.Counts, err = a.Counts.Downsample(cfg.Downsample, reducer); err != nil {
			return err
		}
		a.Counts.Name = cfg.Image.Name
	}

	if cfg.Verbosity > 0 {
		log.Printf("Counts image:\n%s", a.Counts)
	}
	return nil
}

// BuildMask makes the exclusion mask, on the counts geometry. It comes
// from a mask file if one is given, else from thresholding the counts.
// With neither, a nil mask excludes nothing.
func (a *Analysis)BuildMask() error {
	ex := a.Config.Exclusion

	switch {
	case ex.File != "":
		src, err := skyimage.Read(ex.File)
		if err != nil {
			return err
		}
		if ex.Threshold != nil {
			a.Mask = src.Threshold(*ex.Threshold)
		} else {
			a.Mask = skyimage.MaskFromImage(src)
		}
		// The mask has to share the counts geometry; pixels it doesn't
		// cover come back NaN, i.e. excluded
		if a.Counts != nil {
			onto, err := a.Mask.Reproject(a.Counts, skyimage.ReprojectNearest)
			if err != nil {
				return err
			}
			a.Mask = skyimage.MaskFromImage(onto)
		}

	case ex.Threshold != nil && a.Counts != nil:
		a.Mask = a.Counts.Threshold(*ex.Threshold)

	default:
		return nil
	}

	if ex.Dilate > 0 {
		a.Mask = a.Mask.Dilate(ex.Dilate)
	}
	if a.Config.Verbosity > 0 {
		log.Printf("Exclusion mask: %d of %d pixels excluded\n", a.Mask.NumExcluded(), a.Mask.Nx()*a.Mask.Ny())
	}
	return nil
}

// FindBackground runs the reflected regions estimate for the ON region.
func (a *Analysis)FindBackground() error {
	cfg := a.Config
	if !cfg.HasOnRegion() {
		return fmt.Errorf("no on_region configured")
	}

	res, err := background.Estimate(cfg.OnRegion, cfg.Pointing, a.Mask, cfg.Reflected)
	if err != nil {
		return err
	}
	a.Result = &res
	log.Printf("%s\n", res)
	for i, off := range res.Off {
		log.Printf("  OFF %2d: %s\n", i, off)
	}

	if a.Counts != nil {
		non, noff, excess, err := res.Counts(a.Counts)
		if err != nil {
			return err
		}
		log.Printf("N_on=%.0f, N_off=%.0f, alpha=%.4f, excess=%.1f\n", non, noff, res.Alpha, excess)
	}
	return nil
}

// WriteOutputs writes whichever outputs were configured.
func (a *Analysis)WriteOutputs() error {
	out := a.Config.Output
	if a.Counts == nil {
		return fmt.Errorf("nothing to write, no counts image")
	}

	if out.FITS != "" {
		if err := a.Counts.Write(out.FITS); err != nil {
			return err
		}
		log.Printf("FITS output file written '%s'\n", out.FITS)
	}

	if out.Quicklook != "" {
		overlays := []skyimage.Overlay{}
		if a.Result != nil {
			offs := []regions.Region{}
			for _, off := range a.Result.Off {
				offs = append(offs, off)
			}
			overlays = append(overlays,
				skyimage.Overlay{Regions: []regions.Region{a.Result.On}, R: 0.2, G: 1, B: 0.2},
				skyimage.Overlay{Regions: offs, R: 1, G: 0.2, B: 0.2})
		}
		var err error
		if out.Tonemapper != "" {
			err = a.Counts.WriteQuicklookTonemapped(out.Quicklook, out.Tonemapper, overlays...)
		} else {
			err = a.Counts.WriteQuicklook(out.Quicklook, overlays...)
		}
		if err != nil {
			return err
		}
		log.Printf("Quicklook written '%s'\n", out.Quicklook)
	}

	if out.HDR != "" {
		if err := a.Counts.WriteHDR(out.HDR); err != nil {
			return err
		}
		log.Printf("HDR output file written '%s'\n", out.HDR)
	}

	if out.Collection != "" {
		if err := a.collection().Write(out.Collection); err != nil {
			return err
		}
		log.Printf("Collection written '%s'\n", out.Collection)
	}
	return nil
}

// collection bundles the counts with the images derived from it.
func (a *Analysis)collection() *skyimage.Collection {
	c := skyimage.NewCollection("analysis", a.Counts.WCS, nil)
	c.Meta.Set("ORIGIN", "skyimage")
	c.Set("counts", a.Counts)
	if omega, err := a.Counts.SolidAngle(); err == nil {
		c.Set("solid_angle", omega)
	} else {
		log.Printf("solid angle: %v\n", err)
	}
	if a.Mask != nil {
		c.Set("exclusion", &a.Mask.SkyImage)
		c.Set("distance", a.Mask.DistanceImage())
	}
	if a.Result != nil {
		if m, err := a.Counts.RegionMask(a.Result.On); err == nil {
			c.Set("on_mask", &m.SkyImage)
		}
	}
	return c
}
