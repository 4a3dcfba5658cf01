// Package catalog defines the relational schema of the LIFE target database:
// table names, typed row records, null sentinels, and the quality scale.
package catalog

// Table names in the final database. The order is the serialization order.
const (
	TableSources     = "sources"
	TableObjects     = "objects"
	TableProvider    = "provider"
	TableIdent       = "ident"
	TableHLink       = "h_link"
	TableBestHLink   = "best_h_link"
	TableStarBasic   = "star_basic"
	TablePlanetBasic = "planet_basic"
	TableDiskBasic   = "disk_basic"
	TableMesMassPl   = "mes_mass_pl"
	TableMesTeffSt   = "mes_teff_st"
	TableMesRadiusSt = "mes_radius_st"
	TableMesMassSt   = "mes_mass_st"
	TableMesBinary   = "mes_binary"
	TableMesSepAng   = "mes_sep_ang"
)

// AllTables lists every published table in serialization order.
var AllTables = []string{
	TableSources,
	TableObjects,
	TableProvider,
	TableIdent,
	TableHLink,
	TableBestHLink,
	TableStarBasic,
	TablePlanetBasic,
	TableDiskBasic,
	TableMesMassPl,
	TableMesTeffSt,
	TableMesRadiusSt,
	TableMesMassSt,
	TableMesBinary,
	TableMesSepAng,
}

// Null sentinels. These are uniform across every table and are consumed by
// the merger and the best-parameter selector as-is.
const (
	NullText  = "?"
	NullInt   = int64(999999)
	NullFloat = 1e20
)

// IsNullText reports whether s is the textual null sentinel or empty.
func IsNullText(s string) bool { return s == "" || s == NullText }

// IsNullInt reports whether n is the integer null sentinel.
func IsNullInt(n int64) bool { return n == NullInt }

// IsNullFloat reports whether f is the float null sentinel.
func IsNullFloat(f float64) bool { return f >= NullFloat }

// NormalizeText maps empty strings and foreign null spellings to the
// textual sentinel.
func NormalizeText(s string) string {
	switch s {
	case "", "?", "N", "N/A", "None", "none", "nan", "NaN":
		return NullText
	}
	return s
}

// Object types.
const (
	TypeStar   = "st"
	TypePlanet = "pl"
	TypeDisk   = "di"
	TypeSystem = "sy"
)

// Boolean flags are stored as text so the unknown sentinel fits the column.
const (
	FlagTrue  = "True"
	FlagFalse = "False"
)
