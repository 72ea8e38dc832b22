package fitsheader

// An ordered set of FITS header keywords. Image metadata travels around
// in one of these, and it maps onto the cards of a FITS HDU when we
// read and write files.
//
// Spec here:   https://fits.gsfc.nasa.gov/standard40/fits_standard40aa-le.pdf

import(
	"fmt"
	"strconv"
	"strings"
)

type Card struct {
	Name    string
	Value   interface{}
	Comment string
}

type Header struct {
	cards []Card
}

func New() *Header {
	return &Header{cards: []Card{}}
}

// Structural keywords describe the data layout; they are regenerated
// on write, so never copied across from metadata.
var structural = map[string]bool{
	"SIMPLE": true, "XTENSION": true, "BITPIX": true, "NAXIS": true, "NAXIS1": true, "NAXIS2": true,
	"NAXIS3": true, "EXTEND": true, "PCOUNT": true, "GCOUNT": true, "END": true,
	"BSCALE": true, "BZERO": true,
}

func IsStructural(name string) bool { return structural[strings.ToUpper(name)] }

func (h *Header)index(name string) int {
	name = strings.ToUpper(name)
	for i, c := range h.cards {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (h *Header)Len() int { return len(h.cards) }

func (h *Header)Has(name string) bool { return h.index(name) >= 0 }

// Set replaces the value of an existing keyword (keeping its position),
// or appends a new one. HISTORY and COMMENT always append.
func (h *Header)Set(name string, v interface{}) {
	h.SetWithComment(name, v, "")
}

func (h *Header)SetWithComment(name string, v interface{}, comment string) {
	name = strings.ToUpper(name)
	if name != "HISTORY" && name != "COMMENT" {
		if i := h.index(name); i >= 0 {
			h.cards[i].Value = v
			if comment != "" {
				h.cards[i].Comment = comment
			}
			return
		}
	}
	h.cards = append(h.cards, Card{Name: name, Value: v, Comment: comment})
}

func (h *Header)Delete(name string) {
	if i := h.index(name); i >= 0 {
		h.cards = append(h.cards[:i], h.cards[i+1:]...)
	}
}

func (h *Header)Get(name string) (interface{}, bool) {
	if i := h.index(name); i >= 0 {
		return h.cards[i].Value, true
	}
	return nil, false
}

// Float reads a numeric keyword, whatever type it was stored as.
func (h *Header)Float(name string) (float64, bool) {
	v, exists := h.Get(name)
	if !exists {
		return 0, false
	}
	switch val := v.(type) {
	case float64: return val, true
	case float32: return float64(val), true
	case int:     return float64(val), true
	case int8:    return float64(val), true
	case int16:   return float64(val), true
	case int32:   return float64(val), true
	case int64:   return float64(val), true
	case uint8:   return float64(val), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func (h *Header)Int(name string) (int, bool) {
	f, ok := h.Float(name)
	return int(f), ok
}

func (h *Header)Str(name string) (string, bool) {
	v, exists := h.Get(name)
	if !exists {
		return "", false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s), true
	}
	return fmt.Sprintf("%v", v), true
}

func (h *Header)Keys() []string {
	keys := make([]string, 0, len(h.cards))
	for _, c := range h.cards {
		keys = append(keys, c.Name)
	}
	return keys
}

// Cards returns a copy of the cards, in order.
func (h *Header)Cards() []Card {
	return append([]Card(nil), h.cards...)
}

// Update sets every card from `other` into h. A nil `other` is a no-op.
func (h *Header)Update(other *Header) {
	if other == nil {
		return
	}
	for _, c := range other.cards {
		h.SetWithComment(c.Name, c.Value, c.Comment)
	}
}

func (h *Header)Copy() *Header {
	if h == nil {
		return New()
	}
	return &Header{cards: append([]Card(nil), h.cards...)}
}

func (h Header)String() string {
	str := ""
	for _, c := range h.cards {
		str += fmt.Sprintf("%-8s= %v", c.Name, c.Value)
		if c.Comment != "" {
			str += " / " + c.Comment
		}
		str += "\n"
	}
	return str
}
