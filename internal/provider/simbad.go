package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/votable"
)

// Simbad is the canonical adapter. Its object set defines the universe of
// the build: main identifiers, types, hierarchy, spectral types,
// coordinates, parallaxes, magnitudes, and alias lists. Every other
// adapter's distance cut gates on this adapter's output.
type Simbad struct{}

const (
	simbadName    = "simbad"
	simbadBibcode = "2000A&AS..143....9W"
)

func (Simbad) Name() string { return simbadName }

func (Simbad) Info(now time.Time) catalog.Provider {
	return catalog.Provider{
		Name:       simbadName,
		URL:        "https://simbad.cds.unistra.fr/simbad/sim-tap",
		Bibcode:    simbadBibcode,
		AccessDate: now.Format("2006-01-02"),
	}
}

type simbadRow struct {
	MainID      string  `vot:"main_id"`
	OID         int64   `vot:"oid"`
	OTypes      string  `vot:"otypes"`
	RA          float64 `vot:"ra"`
	Dec         float64 `vot:"dec"`
	CooErrAngle float64 `vot:"coo_err_angle"`
	CooErrMaj   float64 `vot:"coo_err_maj"`
	CooErrMin   float64 `vot:"coo_err_min"`
	CooQual     string  `vot:"coo_qual"`
	CooBibcode  string  `vot:"coo_bibcode"`
	Plx         float64 `vot:"plx_value"`
	PlxErr      float64 `vot:"plx_err"`
	PlxQual     string  `vot:"plx_qual"`
	PlxBibcode  string  `vot:"plx_bibcode"`
	SpType      string  `vot:"sp_type"`
	SpBibcode   string  `vot:"sp_bibcode"`
	MagI        float64 `vot:"mag_i"`
	MagJ        float64 `vot:"mag_j"`
	MagK        float64 `vot:"mag_k"`
	IDs         string  `vot:"ids"`
}

type simbadLink struct {
	ChildOID   int64  `vot:"child_oid"`
	ParentOID  int64  `vot:"parent_oid"`
	Membership int64  `vot:"membership"`
	Ref        string `vot:"link_bibcode"`
}

const simbadColumns = `b.main_id AS main_id, b.oid AS oid, ot.otypes AS otypes,
 b.ra AS ra, b.dec AS dec,
 b.coo_err_angle AS coo_err_angle, b.coo_err_maj AS coo_err_maj, b.coo_err_min AS coo_err_min,
 b.coo_qual AS coo_qual, b.coo_bibcode AS coo_bibcode,
 b.plx_value AS plx_value, b.plx_err AS plx_err, b.plx_qual AS plx_qual, b.plx_bibcode AS plx_bibcode,
 b.sp_type AS sp_type, b.sp_bibcode AS sp_bibcode,
 f.I AS mag_i, f.J AS mag_j, f.K AS mag_k,
 id.ids AS ids`

const simbadJoins = `FROM basic AS b
JOIN alltypes AS ot ON ot.oidref = b.oid
JOIN ids AS id ON id.oidref = b.oid
LEFT JOIN allfluxes AS f ON f.oidref = b.oid`

// simbadSampleADQL selects the distance-limited sample.
var simbadSampleADQL = `SELECT ` + simbadColumns + `
` + simbadJoins + `
WHERE b.plx_value >= %g`

// simbadParentsADQL selects parents with null parallax whose children are
// in the sample.
var simbadParentsADQL = `SELECT ` + simbadColumns + `
` + simbadJoins + `
JOIN h_link AS h ON h.parent = b.oid
JOIN basic AS c ON c.oid = h.child
WHERE b.plx_value IS NULL AND c.plx_value >= %g`

// simbadChildrenADQL selects children with null parallax whose parents
// are in the sample.
var simbadChildrenADQL = `SELECT ` + simbadColumns + `
` + simbadJoins + `
JOIN h_link AS h ON h.child = b.oid
JOIN basic AS p ON p.oid = h.parent
WHERE b.plx_value IS NULL AND p.plx_value >= %g`

// simbadLinksADQL selects every hierarchy edge touching the sample.
const simbadLinksADQL = `SELECT h.child AS child_oid, h.parent AS parent_oid,
 h.membership AS membership, h.link_bibcode AS link_bibcode
FROM h_link AS h
JOIN basic AS c ON c.oid = h.child
JOIN basic AS p ON p.oid = h.parent
WHERE c.plx_value >= %g OR p.plx_value >= %g`

// Build implements Adapter.
func (s Simbad) Build(ctx context.Context, deps *Deps) (*catalog.Dict, error) {
	log := zap.L().With(zap.String("provider", simbadName))
	log.Info("creating simbad tables", zap.Float64("distance_cut_pc", deps.Cfg.DistanceCutPc))

	cut := PlxCutMas(deps.Cfg.DistanceCutPc)

	var sample, parents, children []simbadRow
	var links []simbadLink

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return simbadQuery(gctx, deps, fmt.Sprintf(simbadSampleADQL, cut), &sample)
	})
	g.Go(func() error {
		return simbadQuery(gctx, deps, fmt.Sprintf(simbadParentsADQL, cut), &parents)
	})
	g.Go(func() error {
		return simbadQuery(gctx, deps, fmt.Sprintf(simbadChildrenADQL, cut), &children)
	})
	g.Go(func() error {
		return simbadQuery(gctx, deps, fmt.Sprintf(simbadLinksADQL, cut, cut), &links)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]simbadRow, 0, len(sample)+len(parents)+len(children))
	rows = append(rows, sample...)
	rows = append(rows, parents...)
	rows = append(rows, children...)

	// Classify, then remove duplicate rows from the multiple-parent joins.
	type entry struct {
		row simbadRow
		typ string
	}
	byMain := make(map[string]*entry, len(rows))
	var order []string
	droppedOType := 0
	for _, r := range rows {
		typ := classifyOType(r.OTypes)
		if typ == "" {
			droppedOType++
			log.Debug("object type outside scope", zap.String("main_id", r.MainID), zap.String("otypes", r.OTypes))
			continue
		}
		if _, seen := byMain[r.MainID]; seen {
			continue
		}
		byMain[r.MainID] = &entry{row: r, typ: typ}
		order = append(order, r.MainID)
	}
	if droppedOType > 0 {
		log.Info("rows dropped by object type", zap.Int("count", droppedOType))
	}

	oidToMain := make(map[int64]string, len(byMain))
	starSet := make(map[string]struct{})
	for _, id := range order {
		e := byMain[id]
		oidToMain[e.row.OID] = id
		if e.typ == catalog.TypeStar || e.typ == catalog.TypeSystem {
			starSet[id] = struct{}{}
		}
	}

	hlinks, err := s.buildLinks(ctx, deps, links, oidToMain, starSet)
	if err != nil {
		return nil, err
	}

	// Children of the retained hierarchy, for the binary flag and the
	// multiple-system correction.
	isChild := make(map[string]struct{}, len(hlinks))
	hasChild := make(map[string]struct{}, len(hlinks))
	for _, l := range hlinks {
		isChild[l.ChildMainID] = struct{}{}
		hasChild[l.ParentMainID] = struct{}{}
	}

	// A system with no child and a single-component spectral type is a
	// plain star that SIMBAD typed sy through a multiple-parent row.
	for _, id := range order {
		e := byMain[id]
		if e.typ != catalog.TypeSystem {
			continue
		}
		_, child := hasChild[id]
		if !child && !strings.Contains(e.row.SpType, "+") {
			e.typ = catalog.TypeStar
		}
	}

	d := &catalog.Dict{Provider: []catalog.Provider{s.Info(deps.Now)}}

	for _, id := range order {
		e := byMain[id]
		d.Objects = append(d.Objects, catalog.Object{
			Type:   e.typ,
			MainID: id,
			IDs:    e.row.IDs,
		})
		for _, alias := range strings.Split(e.row.IDs, "|") {
			if alias = strings.TrimSpace(alias); alias == "" {
				continue
			}
			ident := catalog.NewRow[catalog.Ident]()
			ident.MainID = id
			ident.Alias = alias
			ident.Ref = simbadBibcode
			d.Ident = append(d.Ident, ident)
		}

		if e.typ != catalog.TypeStar && e.typ != catalog.TypeSystem {
			continue
		}

		_, binary := isChild[id]
		d.StarBasic = append(d.StarBasic, simbadStarBasic(e.row, binary))

		mb := catalog.NewRow[catalog.MesBinary]()
		mb.MainID = id
		mb.Ref = simbadBibcode
		if binary {
			mb.Flag, mb.Qual = catalog.FlagTrue, string(catalog.QualityC)
		} else {
			mb.Flag, mb.Qual = catalog.FlagFalse, string(catalog.QualityE)
		}
		d.MesBinary = append(d.MesBinary, mb)
	}

	d.HLink = hlinks
	d.Sources = BuildSources(d)

	log.Info("simbad tables created",
		zap.Int("objects", len(d.Objects)),
		zap.Int("star_basic", len(d.StarBasic)),
		zap.Int("h_link", len(d.HLink)),
	)
	return d, nil
}

// buildLinks retains hierarchy edges whose parent is a star or system of
// the sample, resolving parent oids outside the local maps through the
// canonical resolver.
func (Simbad) buildLinks(ctx context.Context, deps *Deps, links []simbadLink, oidToMain map[int64]string, starSet map[string]struct{}) ([]catalog.HLink, error) {
	var unknown []string
	for _, l := range links {
		if _, ok := oidToMain[l.ParentOID]; !ok {
			unknown = append(unknown, strconv.FormatInt(l.ParentOID, 10))
		}
	}
	resolved := map[string]string{}
	if len(unknown) > 0 {
		var err error
		resolved, err = deps.Resolver.Resolve(ctx, unknown, true)
		if err != nil {
			return nil, eris.Wrap(err, "simbad: resolve parent oids")
		}
	}

	parentMain := func(oid int64) (string, bool) {
		if id, ok := oidToMain[oid]; ok {
			return id, true
		}
		id, ok := resolved[strconv.FormatInt(oid, 10)]
		return id, ok
	}

	var out []catalog.HLink
	dropped := 0
	for _, l := range links {
		child, childOK := oidToMain[l.ChildOID]
		parent, parentOK := parentMain(l.ParentOID)
		if !childOK || !parentOK {
			dropped++
			continue
		}
		// Cluster and association parents are pruned here.
		if _, star := starSet[parent]; !star {
			dropped++
			continue
		}
		h := catalog.NewRow[catalog.HLink]()
		h.ChildMainID = child
		h.ParentMainID = parent
		h.Membership = l.Membership
		h.Ref = DefaultRef(l.Ref, simbadBibcode)
		out = append(out, h)
	}
	if dropped > 0 {
		zap.L().Info("hierarchy edges dropped", zap.String("provider", simbadName), zap.Int("count", dropped))
	}
	return catalog.Unique(out), nil
}

func simbadStarBasic(r simbadRow, binary bool) catalog.StarBasic {
	s := catalog.NewRow[catalog.StarBasic]()
	s.MainID = r.MainID

	s.RA, s.Dec = r.RA, r.Dec
	s.CooErrAngle, s.CooErrMaj, s.CooErrMin = r.CooErrAngle, r.CooErrMaj, r.CooErrMin
	s.CooQual = catalog.NormalizeText(r.CooQual)
	s.CooRef = DefaultRef(r.CooBibcode, simbadBibcode)

	s.Plx, s.PlxErr = r.Plx, r.PlxErr
	s.PlxQual = catalog.NormalizeText(r.PlxQual)
	s.PlxRef = DefaultRef(r.PlxBibcode, simbadBibcode)

	if !catalog.IsNullText(r.SpType) {
		s.SpType = r.SpType
		s.SpTypeRef = DefaultRef(r.SpBibcode, simbadBibcode)
	}

	if !catalog.IsNullFloat(r.MagI) {
		s.MagI, s.MagIRef = r.MagI, simbadBibcode
	}
	if !catalog.IsNullFloat(r.MagJ) {
		s.MagJ, s.MagJRef = r.MagJ, simbadBibcode
	}
	if !catalog.IsNullFloat(r.MagK) {
		s.MagK, s.MagKRef = r.MagK, simbadBibcode
	}

	if binary {
		s.BinaryFlag, s.BinaryQual = catalog.FlagTrue, string(catalog.QualityC)
	} else {
		s.BinaryFlag, s.BinaryQual = catalog.FlagFalse, string(catalog.QualityE)
	}
	s.BinaryRef = simbadBibcode

	return s
}

// classifyOType maps the concatenated otype string onto the internal
// object type. The planet marker wins over the double-star marker, which
// wins over the plain star marker; anything else is out of scope.
func classifyOType(otypes string) string {
	switch {
	case strings.Contains(otypes, "Pl"):
		return catalog.TypePlanet
	case strings.Contains(otypes, "**"):
		return catalog.TypeSystem
	case strings.Contains(otypes, "*"):
		return catalog.TypeStar
	default:
		return ""
	}
}

func simbadQuery[T any](ctx context.Context, deps *Deps, adql string, dst *[]T) error {
	table, err := deps.Simbad.Query(ctx, adql, nil)
	if err != nil {
		return eris.Wrap(err, "simbad: query")
	}
	return votable.UnmarshalRows(table, dst)
}
