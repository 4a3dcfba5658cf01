package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

func teffRow(mainID string, value float64, qual string) catalog.MesTeff {
	m := catalog.NewRow[catalog.MesTeff]()
	m.MainID = mainID
	m.Value = value
	m.Qual = qual
	return m
}

func teffID(m catalog.MesTeff) string   { return m.MainID }
func teffQual(m catalog.MesTeff) string { return m.Qual }

func TestBestByQuality_PicksBestLetter(t *testing.T) {
	rows := []catalog.MesTeff{
		teffRow("HD 1", 5000, "C"),
		teffRow("HD 1", 5100, "B"),
		teffRow("HD 1", 5200, "D"),
	}

	out := BestByQuality(rows, teffID, teffQual)
	require.Len(t, out, 1)
	assert.Equal(t, 5100.0, out[0].Value)
}

func TestBestByQuality_FirstRowWinsAtSameLevel(t *testing.T) {
	rows := []catalog.MesTeff{
		teffRow("HD 1", 5000, "B"),
		teffRow("HD 1", 5100, "B"),
	}

	out := BestByQuality(rows, teffID, teffQual)
	require.Len(t, out, 1)
	assert.Equal(t, 5000.0, out[0].Value)
}

func TestBestByQuality_OutOfScaleNeverPicked(t *testing.T) {
	// A quality outside the letter scale contributes no row at all.
	rows := []catalog.MesTeff{
		teffRow("HD 1", 5000, "Z"),
		teffRow("HD 2", 4000, "E"),
	}

	out := BestByQuality(rows, teffID, teffQual)
	require.Len(t, out, 1)
	assert.Equal(t, "HD 2", out[0].MainID)
}

func TestBestByQuality_UnknownStillSelectable(t *testing.T) {
	rows := []catalog.MesTeff{teffRow("HD 1", 5000, "?")}

	out := BestByQuality(rows, teffID, teffQual)
	require.Len(t, out, 1)
}

func TestBestByQuality_Idempotent(t *testing.T) {
	rows := []catalog.MesTeff{
		teffRow("HD 1", 5000, "C"),
		teffRow("HD 1", 5100, "B"),
		teffRow("HD 2", 4000, "A"),
	}

	once := BestByQuality(rows, teffID, teffQual)
	twice := BestByQuality(once, teffID, teffQual)
	assert.Equal(t, once, twice)
}

func TestBestByQuality_SelectedIsNoWorseThanAnyCandidate(t *testing.T) {
	rows := []catalog.MesTeff{
		teffRow("HD 1", 1, "D"),
		teffRow("HD 1", 2, "B"),
		teffRow("HD 1", 3, "E"),
		teffRow("HD 1", 4, "C"),
	}

	out := BestByQuality(rows, teffID, teffQual)
	require.Len(t, out, 1)
	chosen := catalog.Quality(out[0].Qual)
	for _, r := range rows {
		assert.False(t, catalog.Quality(r.Qual).BetterThan(chosen))
	}
}

func hlink(child, parent string, membership int64) catalog.HLink {
	h := catalog.NewRow[catalog.HLink]()
	h.ChildMainID = child
	h.ParentMainID = parent
	h.Membership = membership
	return h
}

func TestBestHLinks_MaxMembership(t *testing.T) {
	links := []catalog.HLink{
		hlink("* alf Cen A", "* alf Cen", 80),
		hlink("* alf Cen A", "* alf Cen", 95),
		hlink("* alf Cen A", "* alf Cen", catalog.NullInt),
	}

	out := BestHLinks(links)
	require.Len(t, out, 1)
	assert.Equal(t, int64(95), out[0].Membership)
}

func TestBestHLinks_AllNullKeepsFirst(t *testing.T) {
	first := hlink("HD 1b", "HD 1", catalog.NullInt)
	first.Ref = "ref1"
	second := hlink("HD 1b", "HD 1", catalog.NullInt)
	second.Ref = "ref2"

	out := BestHLinks([]catalog.HLink{first, second})
	require.Len(t, out, 1)
	assert.Equal(t, "ref1", out[0].Ref)
}

func TestBestHLinks_DistinctPairsSurvive(t *testing.T) {
	links := []catalog.HLink{
		hlink("A", "S", 50),
		hlink("B", "S", 60),
	}
	assert.Len(t, BestHLinks(links), 2)
}

func TestBestIdents_PriorityOrder(t *testing.T) {
	canonical := []catalog.Ident{
		{MainID: "HD 1", Alias: "GJ 1", Ref: "canonical"},
	}
	foreign := []catalog.Ident{
		{MainID: "HD 1", Alias: "GJ 1", Ref: "foreign"},
		{MainID: "HD 1", Alias: "TIC 1", Ref: "foreign"},
	}

	out := BestIdents(canonical, foreign)
	require.Len(t, out, 2)
	assert.Equal(t, "canonical", out[0].Ref)
	assert.Equal(t, "TIC 1", out[1].Alias)
}

func TestApply_OverwritesStarColumns(t *testing.T) {
	star := catalog.NewRow[catalog.StarBasic]()
	star.MainID = "HD 1"

	d := &catalog.Dict{
		StarBasic: []catalog.StarBasic{star},
		MesTeffSt: []catalog.MesTeff{
			teffRow("HD 1", 5000, "C"),
			teffRow("HD 1", 5700, "B"),
		},
		HLink: []catalog.HLink{hlink("HD 1b", "HD 1", 90)},
	}

	Apply(d)

	assert.Equal(t, 5700.0, d.StarBasic[0].Teff)
	assert.Equal(t, "B", d.StarBasic[0].TeffQual)
	require.Len(t, d.BestHLink, 1)
	// Raw measurements stay untouched.
	assert.Len(t, d.MesTeffSt, 2)
}

func TestApply_PlanetMass(t *testing.T) {
	planet := catalog.NewRow[catalog.PlanetBasic]()
	planet.MainID = "HD 1 b"

	massRow := catalog.NewRow[catalog.MesMassPl]()
	massRow.MainID = "HD 1 b"
	massRow.Value = 1.8
	massRow.Rel = "="
	massRow.Qual = "B"
	massRow.SiniFlag = catalog.FlagFalse

	d := &catalog.Dict{
		PlanetBasic: []catalog.PlanetBasic{planet},
		MesMassPl:   []catalog.MesMassPl{massRow},
	}

	Apply(d)

	assert.Equal(t, 1.8, d.PlanetBasic[0].Mass)
	assert.Equal(t, "=", d.PlanetBasic[0].MassRel)
	assert.Equal(t, catalog.FlagFalse, d.PlanetBasic[0].MassSiniFlag)
}
