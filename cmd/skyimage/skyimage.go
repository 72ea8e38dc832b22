package main

import(
	"flag"
	"log"

	"github.com/abworrall/skyimage/pkg/analysis"
	"github.com/abworrall/skyimage/pkg/skyimage"
)

var(
	fVerbosity int
	fOutputFilename string
	fQuicklookFilename string
	fCollectionFilename string
	fHDRFilename string
	fTonemapper string

	fNXPix int
	fNYPix int
	fBinSz float64
	fXRef float64
	fYRef float64
	fProj string
	fCoordSys string

	fReprojectMode string
	fDownsample int
	fReducer string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fOutputFilename, "o", "", "name of output FITS file")
	flag.StringVar(&fQuicklookFilename, "png", "", "name of quicklook PNG file")
	flag.StringVar(&fCollectionFilename, "collection", "", "name of FITS file for all the derived images")
	flag.StringVar(&fHDRFilename, "hdr", "", "name of Radiance .hdr file for the counts")
	flag.StringVar(&fTonemapper, "tonemapper", "", "tonemap the quicklook with one of "+skyimage.ListTonemappers())

	flag.IntVar(&fNXPix, "nxpix", 0, "image width, in pixels")
	flag.IntVar(&fNYPix, "nypix", 0, "image height, in pixels")
	flag.Float64Var(&fBinSz, "binsz", 0, "pixel size, in degrees")
	flag.Float64Var(&fXRef, "xref", 0, "longitude of the image centre (RA or l), degrees")
	flag.Float64Var(&fYRef, "yref", 0, "latitude of the image centre (Dec or b), degrees")
	flag.StringVar(&fProj, "proj", "", "projection: CAR, AIT, TAN, SIN, ARC, ZEA")
	flag.StringVar(&fCoordSys, "coordsys", "", "CEL or GAL")

	flag.StringVar(&fReprojectMode, "reproject", "", "how to reproject input images: interp, nearest, exact")
	flag.IntVar(&fDownsample, "downsample", 0, "downsample the counts image by this factor")
	flag.StringVar(&fReducer, "reducer", "", "how to combine pixels when downsampling: nansum, nanmean, sum, max, min")
	flag.Parse()

	log.Printf("skyimage starting\n")
}

func main() {
	a := analysis.New()
	if err := a.LoadFilesAndDirs(flag.Args()...); err != nil {
		log.Fatal(err)
	}

	// Override the config file with command line args, if relevant
	cfg := &a.Config
	if fVerbosity > 0 { cfg.Verbosity = fVerbosity }
	if fOutputFilename != "" { cfg.Output.FITS = fOutputFilename }
	if fQuicklookFilename != "" { cfg.Output.Quicklook = fQuicklookFilename }
	if fCollectionFilename != "" { cfg.Output.Collection = fCollectionFilename }
	if fHDRFilename != "" { cfg.Output.HDR = fHDRFilename }
	if fTonemapper != "" { cfg.Output.Tonemapper = fTonemapper }
	if fNXPix > 0 { cfg.Image.NXPix = fNXPix }
	if fNYPix > 0 { cfg.Image.NYPix = fNYPix }
	if fBinSz > 0 { cfg.Image.BinSz = fBinSz }
	if fXRef != 0 { cfg.Image.XRef = fXRef }
	if fYRef != 0 { cfg.Image.YRef = fYRef }
	if fProj != "" { cfg.Image.Proj = fProj }
	if fCoordSys != "" { cfg.Image.CoordSys = fCoordSys }
	if fReprojectMode != "" { cfg.ReprojectMode = fReprojectMode }
	if fDownsample > 0 { cfg.Downsample = fDownsample }
	if fReducer != "" { cfg.Reducer = fReducer }

	if err := cfg.Finalize(); err != nil {
		log.Fatal(err)
	}
	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}
	if cfg.Output.FITS == "" && cfg.Output.Quicklook == "" && cfg.Output.Collection == "" && cfg.Output.HDR == "" {
		cfg.Output.FITS = "out.fits"
	}

	if err := a.BuildCounts(); err != nil {
		log.Fatalf("BuildCounts failed, err: %v\n", err)
	}
	a.Counts.Info()

	if err := a.WriteOutputs(); err != nil {
		log.Fatal(err)
	}
}
