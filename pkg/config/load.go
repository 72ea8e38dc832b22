package config

import(
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/abworrall/skyimage/pkg/skyimage"
)

// Inputs is everything named on the command line: the config, plus any
// images and event lists.
type Inputs struct {
	Config Config
	Images []*skyimage.SkyImage
	Events skyimage.EventList
}

func NewInputs() *Inputs {
	return &Inputs{Config: NewConfig()}
}

func (in *Inputs)LoadFilesAndDirs(args ...string) error {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := os.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := in.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return fmt.Errorf("load %s: %v", arg, err)
				}
			}

		default: // is a file, load it
			if err := in.loadFile(arg); err != nil {
				return fmt.Errorf("loadfile %s: %v", arg, err)
			}
		}
	}

	return nil
}

func (in *Inputs)loadFile(filename string) error {
	ext := filepath.Ext(filename)

	switch strings.ToLower(ext) {

	case ".fits", ".fit", ".fts":
		// Images first; a file without one may hold an event list
		if si, err := skyimage.Read(filename); err == nil {
			in.Images = append(in.Images, si)
			log.Printf("Loaded image %q (%dx%d) from %s\n", si.Name, si.Nx(), si.Ny(), filename)
		} else if evts, err2 := skyimage.ReadEvents(filename); err2 == nil {
			in.Events = append(in.Events, evts...)
			log.Printf("Loaded %d events from %s\n", len(evts), filename)
		} else {
			return fmt.Errorf("Loading %s as FITS failed: %v; %v", filename, err, err2)
		}

	case ".yaml", ".yml":
		cfg, err := LoadConfig(filename)
		if err != nil {
			return fmt.Errorf("Loading %s as config YAML failed: %v", filename, err)
		}
		in.Config = cfg
		log.Printf("Loaded base configuration from %s\n", filename)
	}

	return nil
}
