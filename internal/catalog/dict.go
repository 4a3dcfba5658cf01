package catalog

// Dict is a fixed-keyed provider dictionary: one slice per internal table.
// Each adapter returns one; the merger consumes them in provider order and
// produces the final Dict. Empty tables are fine everywhere.
type Dict struct {
	Sources     []Source
	Objects     []Object
	Provider    []Provider
	Ident       []Ident
	HLink       []HLink
	BestHLink   []HLink
	StarBasic   []StarBasic
	PlanetBasic []PlanetBasic
	DiskBasic   []DiskBasic
	MesMassPl   []MesMassPl
	MesTeffSt   []MesTeff
	MesRadiusSt []MesRadius
	MesMassSt   []MesMass
	MesBinary   []MesBinary
	MesSepAng   []MesSepAng
}

// ProviderName returns the name from the provider metadata row, or empty
// when the dictionary carries none.
func (d *Dict) ProviderName() string {
	if len(d.Provider) == 0 {
		return ""
	}
	return d.Provider[0].Name
}

// Bibcode returns the provider bibcode, the default reference for columns
// whose foreign reference string is blank.
func (d *Dict) Bibcode() string {
	if len(d.Provider) == 0 {
		return NullText
	}
	return d.Provider[0].Bibcode
}

// Table returns the rows of the named table as a pointer to the underlying
// slice, for the generic staging codec. Unknown names return nil.
func (d *Dict) Table(name string) any {
	switch name {
	case TableSources:
		return &d.Sources
	case TableObjects:
		return &d.Objects
	case TableProvider:
		return &d.Provider
	case TableIdent:
		return &d.Ident
	case TableHLink:
		return &d.HLink
	case TableBestHLink:
		return &d.BestHLink
	case TableStarBasic:
		return &d.StarBasic
	case TablePlanetBasic:
		return &d.PlanetBasic
	case TableDiskBasic:
		return &d.DiskBasic
	case TableMesMassPl:
		return &d.MesMassPl
	case TableMesTeffSt:
		return &d.MesTeffSt
	case TableMesRadiusSt:
		return &d.MesRadiusSt
	case TableMesMassSt:
		return &d.MesMassSt
	case TableMesBinary:
		return &d.MesBinary
	case TableMesSepAng:
		return &d.MesSepAng
	}
	return nil
}

// Len returns the row count of the named table.
func (d *Dict) Len(name string) int {
	switch name {
	case TableSources:
		return len(d.Sources)
	case TableObjects:
		return len(d.Objects)
	case TableProvider:
		return len(d.Provider)
	case TableIdent:
		return len(d.Ident)
	case TableHLink:
		return len(d.HLink)
	case TableBestHLink:
		return len(d.BestHLink)
	case TableStarBasic:
		return len(d.StarBasic)
	case TablePlanetBasic:
		return len(d.PlanetBasic)
	case TableDiskBasic:
		return len(d.DiskBasic)
	case TableMesMassPl:
		return len(d.MesMassPl)
	case TableMesTeffSt:
		return len(d.MesTeffSt)
	case TableMesRadiusSt:
		return len(d.MesRadiusSt)
	case TableMesMassSt:
		return len(d.MesMassSt)
	case TableMesBinary:
		return len(d.MesBinary)
	case TableMesSepAng:
		return len(d.MesSepAng)
	}
	return 0
}
