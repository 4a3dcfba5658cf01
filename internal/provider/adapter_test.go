package provider

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/config"
	"github.com/life-td/targetdb-cli/internal/spectral"
	"github.com/life-td/targetdb-cli/internal/votable"
)

type fakeFetcher struct {
	body string
}

func (f fakeFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.body)), nil
}

type fakeResolver struct {
	m map[string]string
}

func (r fakeResolver) Resolve(ctx context.Context, keys []string, numeric bool) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := r.m[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

const sdbVOTable = `<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.4">
 <RESOURCE>
  <TABLE name="sdb">
   <FIELD name="id" datatype="char" arraysize="*"/>
   <FIELD name="main_id" datatype="char" arraysize="*"/>
   <FIELD name="plx_value" datatype="double"/>
   <FIELD name="rdisk_bb" datatype="double"/>
   <FIELD name="e_rdisk_bb" datatype="double"/>
   <DATA><TABLEDATA>
    <TR><TD>sdb-1</TD><TD>HD 1</TD><TD>50</TD><TD>12.5</TD><TD>0.5</TD></TR>
    <TR><TD>sdb-2</TD><TD>HD 1b</TD><TD>48</TD><TD>30</TD><TD>2</TD></TR>
    <TR><TD>sdb-3</TD><TD>HD 2</TD><TD>10</TD><TD>5</TD><TD>1</TD></TR>
    <TR><TD>sdb-4</TD><TD>HD 3</TD><TD>60</TD><TD></TD><TD></TD></TR>
   </TABLEDATA></DATA>
  </TABLE>
 </RESOURCE>
</VOTABLE>`

func sdbDeps() *Deps {
	return &Deps{
		Cfg: &config.Config{
			DistanceCutPc: 30,
			Files:         config.FilesConfig{SdbVOTable: "sdb.xml"},
		},
		Fetch: fakeFetcher{body: sdbVOTable},
		// Both aliases of the first host resolve to the same star, so its
		// two disks get letter suffixes. HD 3 is unknown to the canonical
		// catalog and drops out.
		Resolver: fakeResolver{m: map[string]string{"HD 1": "HD 1", "HD 1b": "HD 1"}},
		Now:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSDBBuild(t *testing.T) {
	d, err := SDB{}.Build(context.Background(), sdbDeps())
	require.NoError(t, err)

	// HD 2 fails the parallax cut, HD 3 the membership check.
	require.Len(t, d.Objects, 2)
	assert.Equal(t, "HD 1 disk a", d.Objects[0].MainID)
	assert.Equal(t, "HD 1 disk b", d.Objects[1].MainID)
	for _, o := range d.Objects {
		assert.Equal(t, catalog.TypeDisk, o.Type)
	}

	require.Len(t, d.HLink, 2)
	assert.Equal(t, "HD 1", d.HLink[0].ParentMainID)
	assert.Equal(t, "HD 1 disk a", d.HLink[0].ChildMainID)

	require.Len(t, d.Ident, 2)
	assert.Equal(t, "sdb-1", d.Ident[0].Alias)

	require.Len(t, d.DiskBasic, 2)
	assert.InDelta(t, 12.5, d.DiskBasic[0].RDisk, 1e-9)
	assert.Equal(t, "=", d.DiskBasic[0].RDiskRel)
	assert.Equal(t, "B", d.DiskBasic[0].RDiskQual)
	assert.Equal(t, sdbBibcode, d.DiskBasic[0].RDiskRef)

	require.Len(t, d.Sources, 1)
	assert.Equal(t, sdbBibcode, d.Sources[0].Ref)
	assert.Equal(t, sdbName, d.Sources[0].Provider)
}

func TestSDBBuild_SingleDiskKeepsPlainName(t *testing.T) {
	deps := sdbDeps()
	deps.Resolver = fakeResolver{m: map[string]string{"HD 1": "HD 1"}}

	d, err := SDB{}.Build(context.Background(), deps)
	require.NoError(t, err)

	require.Len(t, d.Objects, 1)
	assert.Equal(t, "HD 1 disk", d.Objects[0].MainID)
}

const lifeGridCSV = `SpT,Teff,R_Rsun,Msun
M5V,3060,0.200,0.162
K2V,5040,0.74,0.78
`

func TestLifeBuild(t *testing.T) {
	grid, err := spectral.LoadGrid(strings.NewReader(lifeGridCSV))
	require.NoError(t, err)

	star := catalog.NewRow[catalog.StarBasic]()
	star.MainID = "GJ 551"
	star.RA, star.Dec = 217.39, -62.67
	star.Plx, star.PlxErr, star.PlxQual = 768.5, 0.2, "A"
	star.SpType = "M5V"

	bare := catalog.NewRow[catalog.StarBasic]()
	bare.MainID = "Unnamed 1"

	deps := &Deps{
		Canonical: &catalog.Dict{StarBasic: []catalog.StarBasic{star, bare}},
		Grid:      grid,
		Now:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	d, err := Life{}.Build(context.Background(), deps)
	require.NoError(t, err)
	require.Len(t, d.StarBasic, 2)

	s := d.StarBasic[0]
	assert.False(t, catalog.IsNullFloat(s.GalL))
	assert.False(t, catalog.IsNullFloat(s.GalB))
	assert.Equal(t, lifeBibcode, s.GalRef)

	assert.InDelta(t, 1000/768.5, s.Dist, 1e-9)
	assert.InDelta(t, 1000*0.2/(768.5*768.5), s.DistErr, 1e-12)
	assert.Equal(t, "A", s.DistQual)

	assert.Equal(t, "M", s.ClassTemp)
	assert.Equal(t, "5", s.ClassTempNr)
	assert.Equal(t, "V", s.ClassLum)

	// The second star has no coordinates, parallax, or spectral type.
	b := d.StarBasic[1]
	assert.True(t, catalog.IsNullFloat(b.Dist))
	assert.True(t, catalog.IsNullFloat(b.GalL))
	assert.Equal(t, catalog.NullText, b.ClassTemp)

	require.Len(t, d.MesTeffSt, 1)
	assert.InDelta(t, 3060, d.MesTeffSt[0].Value, 1e-9)
	assert.Equal(t, "D", d.MesTeffSt[0].Qual)
	assert.Equal(t, spectral.ModelBibcode, d.MesTeffSt[0].Ref)
	require.Len(t, d.MesRadiusSt, 1)
	require.Len(t, d.MesMassSt, 1)
	assert.InDelta(t, 0.162, d.MesMassSt[0].Value, 1e-9)
}

func TestStagingRoundTrip(t *testing.T) {
	dir := t.TempDir()

	d := &catalog.Dict{
		Provider: []catalog.Provider{{Name: "sdb", Bibcode: sdbBibcode}},
		Objects:  []catalog.Object{{Type: catalog.TypeDisk, MainID: "HD 1 disk", IDs: "HD 1 disk"}},
	}
	disk := catalog.NewRow[catalog.DiskBasic]()
	disk.MainID = "HD 1 disk"
	disk.RDisk = 12.5
	d.DiskBasic = append(d.DiskBasic, disk)

	require.NoError(t, StageDict(dir, "sdb", d))

	got, err := LoadStaged(dir, "sdb")
	require.NoError(t, err)
	require.Len(t, got.Objects, 1)
	assert.Equal(t, "HD 1 disk", got.Objects[0].MainID)
	require.Len(t, got.DiskBasic, 1)
	assert.InDelta(t, 12.5, got.DiskBasic[0].RDisk, 1e-9)
	// Masked columns survive the round trip as sentinels.
	assert.True(t, catalog.IsNullFloat(got.DiskBasic[0].RDiskErr))

	_, err = LoadStaged(dir, "wds")
	assert.Error(t, err)
}

func TestWriteAndLoadFinal(t *testing.T) {
	dir := t.TempDir()

	d := &catalog.Dict{
		Objects: []catalog.Object{{Type: catalog.TypeStar, MainID: "HD 1", IDs: "HD 1"}},
	}
	require.NoError(t, WriteFinal(dir, d))

	got, err := LoadFinal(dir)
	require.NoError(t, err)
	require.Len(t, got.Objects, 1)
	assert.Equal(t, "HD 1", got.Objects[0].MainID)
	assert.Empty(t, got.StarBasic)
}

type fakeQuerier struct {
	table *votable.Table
}

func (q fakeQuerier) Query(ctx context.Context, adql string, uploads map[string]*votable.Table) (*votable.Table, error) {
	return q.table, nil
}

func TestWDSBuild(t *testing.T) {
	rows := []wdsRow{
		{Name: "00001+0001", Comp: "", Obs1: 1905, Obs2: 2015, Sep1: 1.2, Sep2: 1.4},
		{Name: "12345+6789", Comp: "AB", Obs1: 1930, Obs2: 2010, Sep1: 3.0, Sep2: 2.8},
	}
	table, err := votable.MarshalRows("wds", rows)
	require.NoError(t, err)

	// Only the first pair is in the canonical sample; its primary is an
	// alias of a canonical star whose parent is already known.
	canonical := &catalog.Dict{
		Objects: []catalog.Object{
			{Type: catalog.TypeStar, MainID: "HD 1", IDs: "HD 1|WDS J00001+0001A"},
			{Type: catalog.TypeSystem, MainID: "HD 1 system", IDs: "HD 1 system"},
		},
		Ident: []catalog.Ident{
			{MainID: "HD 1", Alias: "HD 1"},
			{MainID: "HD 1", Alias: "WDS J00001+0001A"},
		},
		HLink: []catalog.HLink{{ChildMainID: "HD 1", ParentMainID: "HD 1 system"}},
	}

	deps := &Deps{
		Wds:       fakeQuerier{table: table},
		Canonical: canonical,
		Now:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	d, err := WDS{}.Build(context.Background(), deps)
	require.NoError(t, err)

	// System, primary (rewritten to the canonical id), secondary.
	require.Len(t, d.Objects, 3)
	mains := make([]string, 0, 3)
	for _, o := range d.Objects {
		mains = append(mains, o.MainID)
	}
	// The canonical hierarchy overrides the synthesized system name.
	assert.ElementsMatch(t, []string{"HD 1 system", "HD 1", "WDS J00001+0001B"}, mains)

	require.Len(t, d.HLink, 2)
	for _, h := range d.HLink {
		assert.Equal(t, "HD 1 system", h.ParentMainID)
	}

	require.Len(t, d.MesBinary, 1)
	assert.Equal(t, "HD 1 system", d.MesBinary[0].MainID)
	assert.Equal(t, catalog.FlagTrue, d.MesBinary[0].Flag)
	assert.Equal(t, "C", d.MesBinary[0].Qual)

	require.Len(t, d.MesSepAng, 2)
	assert.InDelta(t, 1.4, d.MesSepAng[0].Value, 1e-9)
	assert.Equal(t, "C", d.MesSepAng[0].Qual)
	assert.Equal(t, int64(2015), d.MesSepAng[0].ObsDate)
	assert.InDelta(t, 1.2, d.MesSepAng[1].Value, 1e-9)
	assert.Equal(t, "B", d.MesSepAng[1].Qual)
}

func TestExoBuild(t *testing.T) {
	rows := []exoRow{
		{Host: "HD 1", Letter: "b", Mass: 2.0, MassMax: 0.3, MassMin: 0.1,
			Msini: 1.8, MsiniMax: 0.2, MsiniMin: 0.2, BestMass: "mass"},
		{Host: "HD 99", Letter: "b", Mass: 5.0}, // host outside the sample
	}
	table, err := votable.MarshalRows("exomercat", rows)
	require.NoError(t, err)

	canonical := &catalog.Dict{
		Objects: []catalog.Object{{Type: catalog.TypeStar, MainID: "HD 1", IDs: "HD 1"}},
	}
	deps := &Deps{
		Exo:       fakeQuerier{table: table},
		Resolver:  fakeResolver{m: map[string]string{}},
		Canonical: canonical,
		Now:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	d, err := Exo{}.Build(context.Background(), deps)
	require.NoError(t, err)

	require.Len(t, d.Objects, 1)
	assert.Equal(t, catalog.TypePlanet, d.Objects[0].Type)
	assert.Equal(t, "HD 1 b", d.Objects[0].MainID)

	require.Len(t, d.HLink, 1)
	assert.Equal(t, "HD 1", d.HLink[0].ParentMainID)

	require.Len(t, d.MesMassPl, 2)
	mass, msini := d.MesMassPl[0], d.MesMassPl[1]
	assert.Equal(t, catalog.FlagFalse, mass.SiniFlag)
	assert.Equal(t, "B", mass.Qual)
	// bestmass designates the true mass; the msini row is demoted below it.
	assert.Equal(t, catalog.FlagTrue, msini.SiniFlag)
	assert.Equal(t, "C", msini.Qual)
}

func TestGaiaBuild(t *testing.T) {
	rows := []gaiaRow{
		{SourceID: 42, Plx: 100, TeffPhot: 3100, TeffSpec: 3050, SpecFlags: "0000",
			Radius: 0.2, Mass: 0.16, NSSID: catalog.NullInt},
		{SourceID: 7, Plx: 80, TeffPhot: 5000, NSSID: 7,
			TeffSpec: catalog.NullFloat, Radius: catalog.NullFloat, Mass: catalog.NullFloat},
	}
	table, err := votable.MarshalRows("gaia", rows)
	require.NoError(t, err)

	deps := &Deps{
		Cfg:      &config.Config{DistanceCutPc: 30},
		Gaia:     fakeQuerier{table: table},
		Resolver: fakeResolver{m: map[string]string{"Gaia DR3 42": "GJ 551"}},
		Now:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	d, err := Gaia{}.Build(context.Background(), deps)
	require.NoError(t, err)

	require.Len(t, d.Objects, 2)
	assert.Equal(t, "GJ 551", d.Objects[0].MainID)
	assert.Equal(t, catalog.TypeStar, d.Objects[0].Type)
	// Unresolved sources keep the Gaia designator; a non-single-star
	// solution types the object as a system.
	assert.Equal(t, "Gaia DR3 7", d.Objects[1].MainID)
	assert.Equal(t, catalog.TypeSystem, d.Objects[1].Type)

	// Photometric and spectroscopic Teff rows for the first source.
	require.Len(t, d.MesTeffSt, 3)
	assert.Equal(t, "B", d.MesTeffSt[0].Qual)
	assert.Equal(t, "A", d.MesTeffSt[1].Qual)

	require.Len(t, d.MesBinary, 2)
	assert.Equal(t, catalog.FlagFalse, d.MesBinary[0].Flag)
	assert.Equal(t, "E", d.MesBinary[0].Qual)
	assert.Equal(t, catalog.FlagTrue, d.MesBinary[1].Flag)
	assert.Equal(t, "B", d.MesBinary[1].Qual)
}

type fakeAdapter struct {
	name  string
	build func(ctx context.Context, deps *Deps) (*catalog.Dict, error)
}

func (a fakeAdapter) Name() string { return a.name }

func (a fakeAdapter) Info(now time.Time) catalog.Provider {
	return catalog.Provider{Name: a.name, AccessDate: now.Format("2006-01-02")}
}

func (a fakeAdapter) Build(ctx context.Context, deps *Deps) (*catalog.Dict, error) {
	return a.build(ctx, deps)
}

func canonicalTestDict() *catalog.Dict {
	d := &catalog.Dict{
		Provider: []catalog.Provider{{Name: simbadName, Bibcode: simbadBibcode}},
		Objects:  []catalog.Object{{Type: catalog.TypeStar, MainID: "HD 1", IDs: "HD 1"}},
	}
	ident := catalog.NewRow[catalog.Ident]()
	ident.MainID = "HD 1"
	ident.Alias = "HD 1"
	ident.Ref = simbadBibcode
	d.Ident = append(d.Ident, ident)

	star := catalog.NewRow[catalog.StarBasic]()
	star.MainID = "HD 1"
	star.Plx = 100
	star.PlxRef = simbadBibcode
	d.StarBasic = append(d.StarBasic, star)
	d.Sources = BuildSources(d)
	return d
}

func engineRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

func TestEngineRun(t *testing.T) {
	dir := t.TempDir()
	deps := &Deps{Cfg: &config.Config{StagingDir: dir}, Now: time.Now().UTC()}

	canonical := fakeAdapter{name: simbadName, build: func(ctx context.Context, d *Deps) (*catalog.Dict, error) {
		return canonicalTestDict(), nil
	}}
	sawCanonical := false
	other := fakeAdapter{name: "other", build: func(ctx context.Context, d *Deps) (*catalog.Dict, error) {
		sawCanonical = d.Canonical != nil
		return &catalog.Dict{Provider: []catalog.Provider{{Name: "other"}}}, nil
	}}

	eng := NewEngine(engineRegistry(canonical, other), deps, nil)
	final, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, sawCanonical, "canonical dictionary should be visible to later adapters")
	require.Len(t, final.Objects, 1)
	assert.Equal(t, "HD 1", final.Objects[0].MainID)

	// The final tables land in the staging directory.
	got, err := LoadFinal(dir)
	require.NoError(t, err)
	assert.Len(t, got.Objects, 1)
}

func TestEngineRun_StagedFallback(t *testing.T) {
	dir := t.TempDir()
	deps := &Deps{Cfg: &config.Config{StagingDir: dir}, Now: time.Now().UTC()}

	// Stage a prior run of the flaky provider.
	staged := &catalog.Dict{Provider: []catalog.Provider{{Name: "other"}}}
	ident := catalog.NewRow[catalog.Ident]()
	ident.MainID = "HD 1"
	ident.Alias = "2MASS J00000000+0000000"
	staged.Ident = append(staged.Ident, ident)
	require.NoError(t, StageDict(dir, "other", staged))

	canonical := fakeAdapter{name: simbadName, build: func(ctx context.Context, d *Deps) (*catalog.Dict, error) {
		return canonicalTestDict(), nil
	}}
	other := fakeAdapter{name: "other", build: func(ctx context.Context, d *Deps) (*catalog.Dict, error) {
		return nil, eris.New("service unavailable")
	}}

	eng := NewEngine(engineRegistry(canonical, other), deps, nil)
	final, err := eng.Run(context.Background())
	require.NoError(t, err)

	// The staged alias made it into the merged identifier table.
	aliases := make([]string, 0, len(final.Ident))
	for _, id := range final.Ident {
		aliases = append(aliases, id.Alias)
	}
	assert.Contains(t, aliases, "2MASS J00000000+0000000")
}

func TestMergeStaged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, StageDict(dir, simbadName, canonicalTestDict()))

	staged := &catalog.Dict{Provider: []catalog.Provider{{Name: "other"}}}
	ident := catalog.NewRow[catalog.Ident]()
	ident.MainID = "HD 1"
	ident.Alias = "2MASS J00000000+0000000"
	staged.Ident = append(staged.Ident, ident)
	require.NoError(t, StageDict(dir, "other", staged))

	// "unstaged" has no staged copy and must be skipped, not abort.
	final, err := MergeStaged(dir, engineRegistry(
		fakeAdapter{name: simbadName},
		fakeAdapter{name: "other"},
		fakeAdapter{name: "unstaged"},
	))
	require.NoError(t, err)

	require.Len(t, final.Objects, 1)
	assert.Equal(t, "HD 1", final.Objects[0].MainID)
	aliases := make([]string, 0, len(final.Ident))
	for _, id := range final.Ident {
		aliases = append(aliases, id.Alias)
	}
	assert.Contains(t, aliases, "2MASS J00000000+0000000")

	// The remerged final tables land in the staging directory.
	got, err := LoadFinal(dir)
	require.NoError(t, err)
	assert.Len(t, got.Objects, 1)
}

func TestMergeStaged_MissingCanonical(t *testing.T) {
	dir := t.TempDir()
	_, err := MergeStaged(dir, engineRegistry(fakeAdapter{name: simbadName}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canonical")
}

func TestEngineRun_CanonicalFailureAborts(t *testing.T) {
	dir := t.TempDir()
	deps := &Deps{Cfg: &config.Config{StagingDir: dir}, Now: time.Now().UTC()}

	canonical := fakeAdapter{name: simbadName, build: func(ctx context.Context, d *Deps) (*catalog.Dict, error) {
		return nil, eris.New("service unavailable")
	}}

	eng := NewEngine(engineRegistry(canonical), deps, nil)
	_, err := eng.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canonical")
}
