package spectral

import (
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

// ModelBibcode is the reference for modeled stellar parameters
// interpolated from the Pecaut & Mamajek calibration.
const ModelBibcode = "2013ApJS..208....9P"

// gridRow is one calibration row as serialized in the reference CSV.
// Missing model values are the literal placeholders " ..." or " ....".
type gridRow struct {
	SpT  string `csv:"SpT"`
	Teff string `csv:"Teff"`
	R    string `csv:"R_Rsun"`
	M    string `csv:"Msun"`
}

// Entry is one usable calibration point.
type Entry struct {
	SpT    string
	Teff   float64
	Radius float64
	Mass   float64
}

// Grid is the loaded calibration table.
type Grid struct {
	entries []Entry
}

// LoadGrid decodes the calibration CSV. Placeholder cells map to the float
// null sentinel.
func LoadGrid(r io.Reader) (*Grid, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "spectral: read calibration csv")
	}

	var rows []gridRow
	if err := csvutil.Unmarshal(raw, &rows); err != nil {
		return nil, eris.Wrap(err, "spectral: decode calibration csv")
	}

	g := &Grid{entries: make([]Entry, 0, len(rows))}
	for _, row := range rows {
		g.entries = append(g.entries, Entry{
			SpT:    strings.TrimSpace(row.SpT),
			Teff:   gridValue(row.Teff),
			Radius: gridValue(row.R),
			Mass:   gridValue(row.M),
		})
	}
	return g, nil
}

// gridValue parses a model cell, mapping the "no model value" placeholders
// to the null sentinel.
func gridValue(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" || t == "..." || t == "...." {
		return catalog.NullFloat
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return catalog.NullFloat
	}
	return f
}

// Match finds the calibration entry for a parsed spectral class. The match
// is on the first two characters of the re-concatenated type; half
// subclasses ("3.5") match on the first four for precision. The first
// matching row is the nearest; ok is false when no row matches or every
// modeled value of the match is null.
func (g *Grid) Match(c Class) (Entry, bool) {
	if c.Temp == unknown || c.Sub == unknown {
		return Entry{}, false
	}

	key := c.String()
	n := 2
	if strings.Contains(c.Sub, ".5") {
		n = 4
	}
	if len(key) < n {
		return Entry{}, false
	}
	prefix := key[:n]

	for _, e := range g.entries {
		if len(e.SpT) < n || e.SpT[:n] != prefix {
			continue
		}
		if catalog.IsNullFloat(e.Teff) && catalog.IsNullFloat(e.Radius) && catalog.IsNullFloat(e.Mass) {
			return Entry{}, false
		}
		return e, true
	}
	return Entry{}, false
}

// Len returns the number of calibration points.
func (g *Grid) Len() int { return len(g.entries) }

// Entries exposes the calibration points, used by the parser round-trip
// checks in tests.
func (g *Grid) Entries() []Entry { return g.entries }
