package skyimage

// A Collection is a set of named images that share a geometry, kept in
// the order they were added; e.g. counts, background and exposure.

import(
	"fmt"
	"log"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/abworrall/skyimage/pkg/emath"
	"github.com/abworrall/skyimage/pkg/fitsheader"
	"github.com/abworrall/skyimage/pkg/wcs"
)

type Collection struct {
	Name string
	WCS  *wcs.WCS              // used for grids added via SetData
	Meta *fitsheader.Header    // added to every HDU on write

	names  []string
	images map[string]*SkyImage
}

func NewCollection(name string, w *wcs.WCS, meta *fitsheader.Header) *Collection {
	if meta == nil {
		meta = fitsheader.New()
	}
	return &Collection{
		Name: name,
		WCS: w,
		Meta: meta,
		names: []string{},
		images: map[string]*SkyImage{},
	}
}

// Set adds (or replaces, keeping its position) a named image.
func (c *Collection)Set(name string, si *SkyImage) {
	if _, exists := c.images[name]; !exists {
		c.names = append(c.names, name)
	}
	c.images[name] = si
}

// SetData wraps a bare grid with the collection's WCS.
func (c *Collection)SetData(name string, data emath.FloatGrid) error {
	if c.WCS == nil {
		return fmt.Errorf("collection %s: can't add '%s' without a WCS", c.Name, name)
	}
	c.Set(name, New(name, data, c.WCS.Copy()))
	return nil
}

func (c *Collection)Get(name string) (*SkyImage, bool) {
	si, exists := c.images[name]
	return si, exists
}

func (c *Collection)Names() []string { return append([]string(nil), c.names...) }
func (c *Collection)Len() int        { return len(c.names) }

// ReadCollection loads every image HDU. Names are lower-cased for
// lookups; the images keep their original names.
func ReadCollection(filename string) (*Collection, error) {
	c := NewCollection("", nil, nil)
	err := withFitsFile(filename, func(f *fitsio.File) error {
		for i, hdu := range f.HDUs() {
			img, ok := hdu.(fitsio.Image)
			if !ok || len(img.Header().Axes()) < 2 {
				continue
			}
			si, err := FromImageHDU(img)
			if err != nil {
				return fmt.Errorf("hdu %d: %v", i, err)
			}
			name := strings.ToLower(si.Name)
			if name == "" {
				name = fmt.Sprintf("hdu%d", i)
			}
			if c.WCS == nil {
				c.WCS = si.WCS.Copy()
			}
			c.Set(name, si)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read collection '%s': %v", filename, err)
	}
	return c, nil
}

// Write puts each image into its own HDU, in order, named by its key
// in the collection.
func (c *Collection)Write(filename string) error {
	imgs := []*SkyImage{}
	for _, name := range c.names {
		si := *c.images[name]
		si.Name = name
		imgs = append(imgs, &si)
	}
	if len(imgs) == 0 {
		log.Printf("collection %s: nothing to write to %s\n", c.Name, filename)
		return nil
	}
	return writeImages(filename, imgs, c.Meta)
}

func (c *Collection)String() string {
	str := fmt.Sprintf("Collection %s, %d images\n", c.Name, len(c.names))
	for _, name := range c.names {
		str += fmt.Sprintf("*** %s ***\n%s", name, c.images[name])
	}
	return str
}

func (c *Collection)Info() {
	log.Printf("%s", c)
}
