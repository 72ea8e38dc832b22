package skyimage

// Event lists, as written by gamma-ray instruments: one row per photon.

import(
	"fmt"
	"math"
	"os"

	"github.com/astrogo/fitsio"
	"github.com/skypies/util/histogram"

	"github.com/abworrall/skyimage/pkg/sky"
)

type Event struct {
	RA     float32 `fits:"RA"`
	Dec    float32 `fits:"DEC"`
	Energy float32 `fits:"ENERGY"`   // TeV
}

func (e Event)Coord() sky.Coord { return sky.NewICRS(float64(e.RA), float64(e.Dec)) }

type EventList []Event

// ReadEvents loads the EVENTS binary table from a FITS file.
func ReadEvents(filename string) (EventList, error) {
	r, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open '%s': %v", filename, err)
	}
	defer r.Close()

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, fmt.Errorf("fits '%s': %v", filename, err)
	}
	defer f.Close()

	hdu := f.Get("EVENTS")
	if hdu == nil {
		return nil, fmt.Errorf("'%s' has no EVENTS table", filename)
	}
	tbl, ok := hdu.(*fitsio.Table)
	if !ok {
		return nil, fmt.Errorf("'%s': EVENTS is not a table", filename)
	}

	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, fmt.Errorf("read EVENTS: %v", err)
	}
	defer rows.Close()

	evts := EventList{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan EVENTS: %v", err)
		}
		evts = append(evts, e)
	}
	return evts, rows.Err()
}

// WriteEvents writes an empty primary HDU, then the EVENTS table.
func (el EventList)Write(filename string) error {
	w, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	}
	defer w.Close()

	f, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer f.Close()

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return err
	}
	if err := f.Write(phdu); err != nil {
		return err
	}

	cols := []fitsio.Column{
		{Name: "RA", Format: "E", Unit: "deg"},
		{Name: "DEC", Format: "E", Unit: "deg"},
		{Name: "ENERGY", Format: "E", Unit: "TeV"},
	}
	tbl, err := fitsio.NewTable("EVENTS", cols, fitsio.BINARY_TBL)
	if err != nil {
		return err
	}
	defer tbl.Close()

	for i := range el {
		if err := tbl.Write(&el[i]); err != nil {
			return fmt.Errorf("write event %d: %v", i, err)
		}
	}
	return f.Write(tbl)
}

// FillEvents replaces the data with a counts image of the events; each
// event lands in the pixel whose centre is nearest. Events off the
// image are dropped.
func (si *SkyImage)FillEvents(evts EventList) {
	counts := si.Data.NewFromThis()
	for _, e := range evts {
		x, y, err := si.WCS.SkyCoordToPixel(e.Coord())
		if err != nil {
			continue
		}
		ix, iy := int(math.Floor(x + 0.5)), int(math.Floor(y + 0.5))
		if counts.In(ix, iy) {
			counts.Add(ix, iy, 1)
		}
	}
	si.Data = counts
	si.Unit = "ct"
}

// CountsHistogram tallies how many pixels hold each count, from 0 to 63;
// anything higher goes in the last bucket, NaNs are skipped.
func (si *SkyImage)CountsHistogram() *histogram.Histogram {
	h := histogram.Histogram{NumBuckets:64, ValMin:0, ValMax:64}
	for _, v := range si.Data.Values() {
		if math.IsNaN(v) {
			continue
		}
		n := int(math.Max(0, math.Min(63, math.Floor(v))))
		h.Add(histogram.ScalarVal(n))
	}
	return &h
}
