package fitsheader

import(
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSetKeepsOrder(t *testing.T) {
	h := New()
	h.Set("ctype1", "GLON-CAR")
	h.Set("CRPIX1", 100.5)
	h.Set("HISTORY", "made")
	h.Set("HISTORY", "cropped")
	h.Set("CTYPE1", "GLON-TAN")

	want := []Card{
		{Name: "CTYPE1", Value: "GLON-TAN"},
		{Name: "CRPIX1", Value: 100.5},
		{Name: "HISTORY", Value: "made"},
		{Name: "HISTORY", Value: "cropped"},
	}
	if diff := cmp.Diff(want, h.Cards()); diff != "" {
		t.Errorf("cards mismatch (-want +got):\n%s", diff)
	}
}

func TestTypedGetters(t *testing.T) {
	h := New()
	h.Set("NAXIS1", 200)
	h.Set("CDELT1", "-0.02")
	h.Set("BUNIT", " ct ")

	n, ok := h.Int("NAXIS1")
	assert.True(t, ok)
	assert.Equal(t, 200, n)

	f, ok := h.Float("cdelt1")
	assert.True(t, ok)
	assert.Equal(t, -0.02, f)

	s, ok := h.Str("BUNIT")
	assert.True(t, ok)
	assert.Equal(t, "ct", s)

	_, ok = h.Float("BUNIT")
	assert.False(t, ok)
	_, ok = h.Float("MISSING")
	assert.False(t, ok)
}

func TestUpdateCopyDelete(t *testing.T) {
	a := New()
	a.Set("A", 1)
	b := New()
	b.Set("B", 2)
	b.Set("A", 3)

	c := a.Copy()
	c.Update(b)
	c.Update(nil)
	assert.Equal(t, []string{"A", "B"}, c.Keys())
	v, _ := c.Get("A")
	assert.Equal(t, 3, v)

	v, _ = a.Get("A")
	assert.Equal(t, 1, v, "copy must not alias")

	c.Delete("A")
	assert.False(t, c.Has("A"))
	assert.True(t, IsStructural("naxis2"))
	assert.False(t, IsStructural("CRPIX1"))
}
