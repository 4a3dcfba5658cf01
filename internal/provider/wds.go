package provider

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/votable"
)

// WDS ingests the Washington Double Star catalog. Each row yields a
// synthesized system plus its two components, hierarchy edges, a
// multiplicity flag, and up to two angular-separation measurements.
type WDS struct{}

const (
	wdsName    = "wds"
	wdsBibcode = "2001AJ....122.3466M"
)

func (WDS) Name() string { return wdsName }

func (WDS) Info(now time.Time) catalog.Provider {
	return catalog.Provider{
		Name:       wdsName,
		URL:        "http://tapvizier.u-strasbg.fr/TAPVizieR/tap",
		Bibcode:    wdsBibcode,
		AccessDate: now.Format("2006-01-02"),
	}
}

type wdsRow struct {
	Name string  `vot:"wds_name"`
	Comp string  `vot:"wds_comp"`
	Obs1 int64   `vot:"wds_obs1"`
	Obs2 int64   `vot:"wds_obs2"`
	Sep1 float64 `vot:"wds_sep1"`
	Sep2 float64 `vot:"wds_sep2"`
}

const wdsADQL = `SELECT wds.WDS AS wds_name, wds.Comp AS wds_comp,
 wds.Obs1 AS wds_obs1, wds.Obs2 AS wds_obs2,
 wds.sep1 AS wds_sep1, wds.sep2 AS wds_sep2
FROM "B/wds/wds" AS wds`

// wdsTriple is the synthesized (system, primary, secondary) designators of
// one catalog row, after canonical rewriting.
type wdsTriple struct {
	system, primary, secondary string
}

// Build implements Adapter.
func (w WDS) Build(ctx context.Context, deps *Deps) (*catalog.Dict, error) {
	log := zap.L().With(zap.String("provider", wdsName))
	log.Info("creating wds tables")

	table, err := deps.Wds.Query(ctx, wdsADQL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "wds: query catalog")
	}
	var rows []wdsRow
	if err := votable.UnmarshalRows(table, &rows); err != nil {
		return nil, eris.Wrap(err, "wds: decode catalog")
	}

	// The catalog has no parallax column. Distance-cut against the
	// canonical membership on any of the three synthesized names.
	members := MembershipSet(deps.Canonical)
	alias := canonicalAliasMap(deps.Canonical)

	// Parents already known to the canonical hierarchy win over the
	// synthesized system designator.
	parentOf := map[string]string{}
	for _, h := range deps.Canonical.HLink {
		if _, ok := parentOf[h.ChildMainID]; !ok {
			parentOf[h.ChildMainID] = h.ParentMainID
		}
	}

	d := &catalog.Dict{Provider: []catalog.Provider{w.Info(deps.Now)}}

	seenObj := map[string]struct{}{}
	addObject := func(mainID, typ string) {
		if _, ok := seenObj[mainID]; ok {
			return
		}
		seenObj[mainID] = struct{}{}
		d.Objects = append(d.Objects, catalog.Object{Type: typ, MainID: mainID, IDs: mainID})
	}
	addIdent := func(mainID, name string) {
		ident := catalog.NewRow[catalog.Ident]()
		ident.MainID = mainID
		ident.Alias = name
		ident.Ref = wdsBibcode
		d.Ident = append(d.Ident, ident)
	}
	addLink := func(child, parent string) {
		h := catalog.NewRow[catalog.HLink]()
		h.ChildMainID = child
		h.ParentMainID = parent
		h.Ref = wdsBibcode
		d.HLink = append(d.HLink, h)
	}

	droppedCut := 0
	for _, r := range rows {
		if catalog.IsNullText(r.Name) {
			continue
		}
		comp1, comp2 := splitComponents(r.Comp)
		base := "WDS J" + strings.TrimSpace(r.Name)
		t := wdsTriple{
			system:    base,
			primary:   base + comp1,
			secondary: base + comp2,
		}

		_, sysIn := members[t.system]
		_, priIn := members[t.primary]
		_, secIn := members[t.secondary]
		if !sysIn && !priIn && !secIn {
			droppedCut++
			continue
		}

		// Synthesized designators that the canonical identifier table
		// already knows are rewritten to the canonical main id.
		sysName, priName, secName := t.system, t.primary, t.secondary
		if id, ok := alias[t.system]; ok {
			sysName = id
		}
		if id, ok := alias[t.primary]; ok {
			priName = id
		}
		if id, ok := alias[t.secondary]; ok {
			secName = id
		}
		if parent, ok := parentOf[priName]; ok {
			sysName = parent
		} else if parent, ok := parentOf[secName]; ok {
			sysName = parent
		}

		addObject(sysName, catalog.TypeSystem)
		addObject(priName, catalog.TypeStar)
		addObject(secName, catalog.TypeStar)
		addIdent(sysName, t.system)
		addIdent(priName, t.primary)
		addIdent(secName, t.secondary)
		addLink(priName, sysName)
		addLink(secName, sysName)

		mb := catalog.NewRow[catalog.MesBinary]()
		mb.MainID = sysName
		mb.Flag = catalog.FlagTrue
		mb.Qual = string(catalog.QualityC)
		mb.Ref = wdsBibcode
		d.MesBinary = append(d.MesBinary, mb)

		if !catalog.IsNullFloat(r.Sep2) {
			d.MesSepAng = append(d.MesSepAng, wdsSepAng(sysName, r.Sep2, r.Obs2, catalog.QualityC))
		}
		if !catalog.IsNullFloat(r.Sep1) {
			d.MesSepAng = append(d.MesSepAng, wdsSepAng(sysName, r.Sep1, r.Obs1, catalog.QualityB))
		}
	}
	if droppedCut > 0 {
		log.Info("rows outside canonical sample dropped", zap.Int("count", droppedCut))
	}

	d.Ident = catalog.Unique(d.Ident)
	d.HLink = catalog.Unique(d.HLink)
	d.MesBinary = catalog.Unique(d.MesBinary)
	d.MesSepAng = catalog.Unique(d.MesSepAng)
	d.Sources = BuildSources(d)

	log.Info("wds tables created",
		zap.Int("objects", len(d.Objects)),
		zap.Int("mes_sep_ang", len(d.MesSepAng)),
	)
	return d, nil
}

func wdsSepAng(mainID string, sep float64, obs int64, qual catalog.Quality) catalog.MesSepAng {
	m := catalog.NewRow[catalog.MesSepAng]()
	m.MainID = mainID
	m.Value = sep
	m.ObsDate = obs
	m.Qual = string(qual)
	if catalog.IsNullInt(obs) {
		// Without an observation epoch the measurement is unvetted.
		m.Qual = string(catalog.QualityE)
	}
	m.Ref = wdsBibcode
	return m
}

// splitComponents expands the catalog component field into the two
// component suffixes. An empty field means the default AB pair; a comma
// separates explicit pairs; otherwise the first character is the primary
// and the remainder the secondary.
func splitComponents(comp string) (string, string) {
	comp = strings.TrimSpace(comp)
	if comp == "" || catalog.IsNullText(comp) {
		return "A", "B"
	}
	if i := strings.IndexByte(comp, ','); i >= 0 {
		return strings.TrimSpace(comp[:i]), strings.TrimSpace(comp[i+1:])
	}
	return comp[:1], comp[1:]
}

// canonicalAliasMap inverts the canonical identifier table to alias →
// main id.
func canonicalAliasMap(d *catalog.Dict) map[string]string {
	out := make(map[string]string, len(d.Ident))
	for _, id := range d.Ident {
		if _, ok := out[id.Alias]; !ok {
			out[id.Alias] = id.MainID
		}
	}
	return out
}
