package skyimage

// Debug pictures: the image data, with regions drawn on top.

import(
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"github.com/abworrall/skyimage/pkg/regions"
)

// Overlay is a set of regions to draw in one colour (r,g,b in 0..1).
type Overlay struct {
	Regions []regions.Region
	R, G, B float64
}

// WriteQuicklook colormaps the data between its 1st and 99.5th
// percentiles. The format comes from the filename: PNG, or TIFF for
// .tif/.tiff.
func (si *SkyImage)WriteQuicklook(filename string, overlays ...Overlay) error {
	dc, scale := si.Data.ToImg(si.Name)
	si.drawOverlays(dc, scale, overlays)
	return WriteImage(dc.Image(), filename)
}

// WriteQuicklookTonemapped is WriteQuicklook, but with the picture made
// by one of the HDR tonemappers (see ListTonemappers).
func (si *SkyImage)WriteQuicklookTonemapped(filename, tonemapper string, overlays ...Overlay) error {
	img, err := si.Tonemap(tonemapper)
	if err != nil {
		return err
	}
	dc, scale := upscale(img)
	dc.SetRGB(1,1,1)
	dc.DrawString(fmt.Sprintf("%s [%s]", si.Name, tonemapper), 10, 20)
	si.drawOverlays(dc, scale, overlays)
	return WriteImage(dc.Image(), filename)
}

func (si *SkyImage)drawOverlays(dc *gg.Context, scale float64, overlays []Overlay) {
	ny := float64(si.Ny())

	dc.SetLineWidth(2)
	for _, ov := range overlays {
		dc.SetRGB(ov.R, ov.G, ov.B)
		for _, r := range ov.Regions {
			pr, err := r.ToPixel(si.WCS)
			if err != nil {
				log.Printf("quicklook: skipping region: %v\n", err)
				continue
			}
			c, ok := pr.(regions.CirclePixelRegion)
			if !ok {
				continue
			}
			// Grid row 0 is drawn at the bottom
			dc.DrawCircle((c.Center.X+0.5)*scale, (ny-0.5-c.Center.Y)*scale, c.Radius*scale)
			dc.Stroke()
		}
	}
}

// upscale blows small images up so a pixel stays visible.
func upscale(img image.Image) (*gg.Context, float64) {
	b := img.Bounds()
	scale := 1
	for b.Dx()*scale < 400 && b.Dy()*scale < 400 && scale < 16 {
		scale *= 2
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return gg.NewContextForImage(out), float64(scale)
}

func WriteImage(img image.Image, filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".tif", ".tiff":
		return WriteTIFF(img, filename)
	}
	return WritePNG(img, filename)
}

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

func WriteTIFF(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate})
	}
}
