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

// Exo ingests the exoplanet aggregation catalog. Planets are composed
// from host + binary component + planet letter and gated on the canonical
// sample through their host.
type Exo struct{}

const (
	exoName    = "exo"
	exoBibcode = "2020A&C....3100370A"
)

func (Exo) Name() string { return exoName }

func (Exo) Info(now time.Time) catalog.Provider {
	return catalog.Provider{
		Name:       exoName,
		URL:        "http://archives.ia2.inaf.it/vo/tap/projects",
		Bibcode:    exoBibcode,
		AccessDate: now.Format("2006-01-02"),
	}
}

type exoRow struct {
	Host     string  `vot:"main_id"`
	Binary   string  `vot:"binary"`
	Letter   string  `vot:"letter"`
	Mass     float64 `vot:"mass"`
	MassMax  float64 `vot:"mass_max"`
	MassMin  float64 `vot:"mass_min"`
	Msini    float64 `vot:"msini"`
	MsiniMax float64 `vot:"msini_max"`
	MsiniMin float64 `vot:"msini_min"`
	BestMass string  `vot:"bestmass"`
}

const exoADQL = `SELECT main_id, binary, letter,
 mass, mass_max, mass_min,
 msini, msini_max, msini_min,
 bestmass
FROM exomercat.exomercat`

// Build implements Adapter.
func (e Exo) Build(ctx context.Context, deps *Deps) (*catalog.Dict, error) {
	log := zap.L().With(zap.String("provider", exoName))
	log.Info("creating exo tables")

	table, err := deps.Exo.Query(ctx, exoADQL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "exo: query catalog")
	}
	var rows []exoRow
	if err := votable.UnmarshalRows(table, &rows); err != nil {
		return nil, eris.Wrap(err, "exo: decode catalog")
	}

	// No parallax in the catalog: planets enter iff their host is in the
	// canonical sample.
	members := MembershipSet(deps.Canonical)
	kept := rows[:0]
	dropped := 0
	for _, r := range rows {
		if _, ok := members[r.Host]; ok && !catalog.IsNullText(r.Host) {
			kept = append(kept, r)
		} else {
			dropped++
		}
	}
	log.Info("host membership cut applied", zap.Int("kept", len(kept)), zap.Int("dropped", dropped))

	composed := make([]string, 0, len(kept))
	for _, r := range kept {
		composed = append(composed, composePlanetID(r))
	}
	resolved, err := deps.Resolver.Resolve(ctx, catalog.Unique(composed), false)
	if err != nil {
		return nil, eris.Wrap(err, "exo: resolve planets")
	}

	d := &catalog.Dict{Provider: []catalog.Provider{e.Info(deps.Now)}}

	seen := map[string]struct{}{}
	for i, r := range kept {
		// A planet unknown to the canonical service keeps its composed name.
		mainID := composed[i]
		if id, ok := resolved[mainID]; ok {
			mainID = id
		}
		if _, dup := seen[mainID]; dup {
			continue
		}
		seen[mainID] = struct{}{}

		d.Objects = append(d.Objects, catalog.Object{
			Type:   catalog.TypePlanet,
			MainID: mainID,
			IDs:    composed[i],
		})

		ident := catalog.NewRow[catalog.Ident]()
		ident.MainID = mainID
		ident.Alias = composed[i]
		ident.Ref = exoBibcode
		d.Ident = append(d.Ident, ident)

		h := catalog.NewRow[catalog.HLink]()
		h.ChildMainID = mainID
		h.ParentMainID = r.Host
		h.Ref = exoBibcode
		d.HLink = append(d.HLink, h)

		mass, hasMass := exoMassRow(mainID, r.Mass, r.MassMax, r.MassMin, false)
		msini, hasMsini := exoMassRow(mainID, r.Msini, r.MsiniMax, r.MsiniMin, true)

		// The catalog's own best-mass pick demotes the other row so the
		// selector prefers the designated one.
		switch strings.ToLower(strings.TrimSpace(r.BestMass)) {
		case "mass":
			msini.Qual = demoteBelow(msini.Qual, mass.Qual)
		case "msini":
			mass.Qual = demoteBelow(mass.Qual, msini.Qual)
		}
		if hasMass {
			d.MesMassPl = append(d.MesMassPl, mass)
		}
		if hasMsini {
			d.MesMassPl = append(d.MesMassPl, msini)
		}
	}

	d.Sources = BuildSources(d)

	log.Info("exo tables created",
		zap.Int("objects", len(d.Objects)),
		zap.Int("mes_mass_pl", len(d.MesMassPl)),
	)
	return d, nil
}

// composePlanetID builds "<host> <binary> <letter>", skipping the binary
// component when absent or marking a single star.
func composePlanetID(r exoRow) string {
	parts := []string{strings.TrimSpace(r.Host)}
	if b := strings.TrimSpace(r.Binary); b != "" && b != "S" && !catalog.IsNullText(b) {
		parts = append(parts, b)
	}
	if l := strings.TrimSpace(r.Letter); l != "" && !catalog.IsNullText(l) {
		parts = append(parts, l)
	}
	return strings.Join(parts, " ")
}

// exoMassRow folds the asymmetric error bounds of one mass measurement
// into (value, larger error, relation, quality). Both bounds finite means
// a symmetric-enough measurement (B); one bound makes the value a limit
// (C); none leaves relation and error masked. The second return is false
// when there is no value at all.
func exoMassRow(mainID string, value, errMax, errMin float64, sini bool) (catalog.MesMassPl, bool) {
	m := catalog.NewRow[catalog.MesMassPl]()
	m.MainID = mainID
	m.Value = value
	m.Ref = exoBibcode
	m.SiniFlag = catalog.FlagFalse
	if sini {
		m.SiniFlag = catalog.FlagTrue
	}
	if catalog.IsNullFloat(value) {
		return m, false
	}

	hasMax := !catalog.IsNullFloat(errMax)
	hasMin := !catalog.IsNullFloat(errMin)
	switch {
	case hasMax && hasMin:
		m.Err = max(errMax, errMin)
		m.Rel = "="
		m.Qual = string(catalog.QualityB)
	case hasMax:
		m.Err = errMax
		m.Rel = "<"
		m.Qual = string(catalog.QualityC)
	case hasMin:
		m.Err = errMin
		m.Rel = ">"
		m.Qual = string(catalog.QualityC)
	default:
		m.Qual = string(catalog.QualityUnknown)
	}
	return m, true
}

// demoteBelow lowers qual until it ranks strictly worse than best, so the
// selector cannot pick it ahead of the designated row.
func demoteBelow(qual, best string) string {
	q, b := catalog.Quality(qual), catalog.Quality(best)
	for q.Rank() <= b.Rank() && q != catalog.QualityUnknown {
		q = q.Lower()
	}
	return string(q)
}
