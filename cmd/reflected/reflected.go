package main

import(
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/abworrall/skyimage/pkg/analysis"
	"github.com/abworrall/skyimage/pkg/sky"
	"github.com/abworrall/skyimage/pkg/skyimage"
)

var(
	Log *log.Logger

	fVerbosity int
	fQuicklookFilename string
	fCollectionFilename string
	fTonemapper string

	fPointingLon float64
	fPointingLat float64
	fOnLon float64
	fOnLat float64
	fOnRadius float64
	fFrame string

	fExclusionFile string
	fThreshold *float64
	fDilate int

	fAngleIncrement float64
	fMinDistance float64
	fMinDistanceInput float64
	fMaxRegions int
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fQuicklookFilename, "png", "", "name of quicklook PNG file, with the regions drawn on")
	flag.StringVar(&fCollectionFilename, "collection", "", "name of FITS file for all the derived images")
	flag.StringVar(&fTonemapper, "tonemapper", "", "tonemap the quicklook with one of "+skyimage.ListTonemappers())

	flag.Float64Var(&fPointingLon, "pointing.lon", 0, "pointing position, longitude in degrees")
	flag.Float64Var(&fPointingLat, "pointing.lat", 0, "pointing position, latitude in degrees")
	flag.Float64Var(&fOnLon, "on.lon", 0, "centre of the ON region, longitude in degrees")
	flag.Float64Var(&fOnLat, "on.lat", 0, "centre of the ON region, latitude in degrees")
	flag.Float64Var(&fOnRadius, "on.radius", 0, "radius of the ON region, in degrees")
	flag.StringVar(&fFrame, "frame", "icrs", "frame for the positions given on the command line: icrs or galactic")

	flag.StringVar(&fExclusionFile, "exclusion", "", "FITS file with the exclusion mask (0 = excluded)")
	flag.Func("threshold", "exclude pixels above this value", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		fThreshold = &v
		return err
	})
	flag.IntVar(&fDilate, "dilate", -1, "grow excluded areas by this many pixels")

	flag.Float64Var(&fAngleIncrement, "angleinc", 0, "step when skipping past an excluded position, radians")
	flag.Float64Var(&fMinDistance, "mindist", -1, "min gap between OFF regions, radians")
	flag.Float64Var(&fMinDistanceInput, "mindistinput", -1, "min gap between the ON region and the OFF regions, radians")
	flag.IntVar(&fMaxRegions, "maxregions", 0, "max number of OFF regions")
	flag.Parse()

	Log = log.New(os.Stdout,"", log.Ldate|log.Ltime)
	log.Printf("Starting\n")
}

func main() {
	a := analysis.New()
	if err := a.LoadFilesAndDirs(flag.Args()...); err != nil {
		Log.Fatal(err)
	}

	frame, err := sky.ParseFrame(fFrame)
	if err != nil {
		Log.Fatal(err)
	}

	// Override the config file with command line args, if relevant
	cfg := &a.Config
	if fVerbosity > 0 { cfg.Verbosity = fVerbosity }
	if fQuicklookFilename != "" { cfg.Output.Quicklook = fQuicklookFilename }
	if fCollectionFilename != "" { cfg.Output.Collection = fCollectionFilename }
	if fTonemapper != "" { cfg.Output.Tonemapper = fTonemapper }
	if fPointingLon != 0 || fPointingLat != 0 { cfg.Pointing = sky.New(fPointingLon, fPointingLat, frame) }
	if fOnLon != 0 || fOnLat != 0 { cfg.OnRegion.Center = sky.New(fOnLon, fOnLat, frame) }
	if fOnRadius > 0 { cfg.OnRegion.Radius = fOnRadius }
	if fExclusionFile != "" { cfg.Exclusion.File = fExclusionFile }
	if fThreshold != nil { cfg.Exclusion.Threshold = fThreshold }
	if fDilate >= 0 { cfg.Exclusion.Dilate = fDilate }
	if fAngleIncrement > 0 { cfg.Reflected.AngleIncrement = fAngleIncrement }
	if fMinDistance >= 0 { cfg.Reflected.MinDistance = fMinDistance }
	if fMinDistanceInput >= 0 { cfg.Reflected.MinDistanceInput = fMinDistanceInput }
	if fMaxRegions > 0 { cfg.Reflected.MaxRegionNumber = fMaxRegions }

	if err := cfg.Finalize(); err != nil {
		log.Fatal(err)
	}
	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	if err := a.BuildCounts(); err != nil {
		log.Fatalf("BuildCounts failed, err: %v\n", err)
	}
	if err := a.BuildMask(); err != nil {
		log.Fatalf("BuildMask failed, err: %v\n", err)
	}
	if err := a.FindBackground(); err != nil {
		log.Fatalf("FindBackground failed, err: %v\n", err)
	}

	log.Printf("Results: %s", a)

	if err := a.WriteOutputs(); err != nil {
		log.Fatal(err)
	}
}
