package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_PlainMainSequence(t *testing.T) {
	c := Parse("M5V")
	assert.Equal(t, Class{Temp: "M", Sub: "5", Lum: "V"}, c)
}

func TestParse_DefaultLuminosity(t *testing.T) {
	// No luminosity sequence means main sequence.
	c := Parse("K2")
	assert.Equal(t, Class{Temp: "K", Sub: "2", Lum: "V"}, c)
}

func TestParse_OldDwarfNotation(t *testing.T) {
	// Leading lowercase d marks a dwarf; the trailing colon is ignored.
	c := Parse("dM3:")
	assert.Equal(t, Class{Temp: "M", Sub: "3", Lum: "V"}, c)
}

func TestParse_GiantWithTrailingText(t *testing.T) {
	// Luminosity capture stops at the first non-Roman character.
	c := Parse("K2-IIIbCa-1")
	assert.Equal(t, "K", c.Temp)
	assert.Equal(t, "2", c.Sub)
	assert.Equal(t, "III", c.Lum)
}

func TestParse_DecimalSubclass(t *testing.T) {
	c := Parse("M3.51")
	assert.Equal(t, "M", c.Temp)
	assert.Equal(t, "3.5", c.Sub)
	// The stray trailing digit is not a luminosity character.
	assert.Equal(t, "V", c.Lum)
}

func TestParse_MultiComponentRejected(t *testing.T) {
	assert.Equal(t, Unknown, Parse("M5.0V+M9"))
}

func TestParse_NonMainSequenceLetter(t *testing.T) {
	// White dwarfs are out of scope for the calibration.
	assert.Equal(t, Unknown, Parse("DA2.9"))
	assert.Equal(t, Unknown, Parse("sdB"))
}

func TestParse_HyphenTolerance(t *testing.T) {
	c := Parse("K-2V")
	assert.Equal(t, Class{Temp: "K", Sub: "2", Lum: "V"}, c)

	c = Parse("K2-V")
	assert.Equal(t, Class{Temp: "K", Sub: "2", Lum: "V"}, c)
}

func TestParse_Subgiant(t *testing.T) {
	c := Parse("G8IV")
	assert.Equal(t, Class{Temp: "G", Sub: "8", Lum: "IV"}, c)
}

func TestParse_Empty(t *testing.T) {
	assert.Equal(t, Unknown, Parse(""))
	assert.Equal(t, Unknown, Parse("   "))
}

func TestString_RoundTrip(t *testing.T) {
	for _, s := range []string{"M5V", "M3.5V", "K2III", "G8IV", "O9V"} {
		assert.Equal(t, s, Parse(s).String(), "round-trip of %s", s)
	}
}

func TestString_Unknown(t *testing.T) {
	assert.Equal(t, "?", Unknown.String())
}
