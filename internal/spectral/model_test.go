package spectral

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

const testGrid = `SpT,Teff,R_Rsun,Msun
G2V,5770,1.0,1.0
K2V,5040,0.76,0.78
M3V,3410,0.36,0.36
M3.5V,3250,0.30,0.27
M5V,3050,0.20,0.16
M9V,2400, ..., ....
`

func loadTestGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := LoadGrid(strings.NewReader(testGrid))
	require.NoError(t, err)
	require.Equal(t, 6, g.Len())
	return g
}

func TestLoadGrid_Placeholders(t *testing.T) {
	g := loadTestGrid(t)

	last := g.Entries()[5]
	assert.Equal(t, "M9V", last.SpT)
	assert.Equal(t, 2400.0, last.Teff)
	assert.True(t, catalog.IsNullFloat(last.Radius))
	assert.True(t, catalog.IsNullFloat(last.Mass))
}

func TestMatch_TwoCharPrefix(t *testing.T) {
	g := loadTestGrid(t)

	e, ok := g.Match(Parse("K2III"))
	require.True(t, ok)
	// Luminosity does not participate in the prefix match.
	assert.Equal(t, "K2V", e.SpT)
	assert.Equal(t, 5040.0, e.Teff)
}

func TestMatch_HalfSubclass(t *testing.T) {
	g := loadTestGrid(t)

	e, ok := g.Match(Parse("M3.5V"))
	require.True(t, ok)
	assert.Equal(t, "M3.5V", e.SpT)
	assert.Equal(t, 0.27, e.Mass)

	// The plain integer subclass must not fall onto the half row.
	e, ok = g.Match(Parse("M3V"))
	require.True(t, ok)
	assert.Equal(t, "M3V", e.SpT)
}

func TestMatch_NoRow(t *testing.T) {
	g := loadTestGrid(t)

	_, ok := g.Match(Parse("A0V"))
	assert.False(t, ok)
}

func TestMatch_Unparseable(t *testing.T) {
	g := loadTestGrid(t)

	_, ok := g.Match(Parse("M5.0V+M9"))
	assert.False(t, ok)
	_, ok = g.Match(Unknown)
	assert.False(t, ok)
}

func TestParse_GridRoundTrip(t *testing.T) {
	// Every calibration entry must decompose and re-concatenate to itself.
	g := loadTestGrid(t)
	for _, e := range g.Entries() {
		assert.Equal(t, e.SpT, Parse(e.SpT).String(), "round-trip of %s", e.SpT)
	}
}
