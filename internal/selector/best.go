// Package selector collapses multi-measurement tables into one
// authoritative row per object. Parameters are picked by the ordered
// quality scale; identifiers by provider priority; membership links by
// maximum likelihood.
package selector

import (
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

// BestByQuality returns one row per object: iterating quality levels
// best-first, the first row of the object at the first populated level
// wins. Rows whose quality sits outside the scale are never picked, so an
// object can end with no row at all. Output order follows the first
// appearance of each object in the input.
func BestByQuality[T any](rows []T, mainID func(T) string, qual func(T) string) []T {
	grouped := make(map[string][]T)
	var order []string
	for _, r := range rows {
		id := mainID(r)
		if _, seen := grouped[id]; !seen {
			order = append(order, id)
		}
		grouped[id] = append(grouped[id], r)
	}

	out := make([]T, 0, len(order))
	for _, id := range order {
		candidates := grouped[id]
	levels:
		for _, level := range catalog.QualityOrder {
			for _, c := range candidates {
				if qual(c) == string(level) {
					out = append(out, c)
					break levels
				}
			}
		}
	}
	return out
}

// BestHLinks keeps one link per (child, parent) pair: the row with the
// maximum non-null membership likelihood, or the first row when every
// likelihood is null.
func BestHLinks(links []catalog.HLink) []catalog.HLink {
	type key struct{ child, parent string }
	best := make(map[key]catalog.HLink)
	var order []key

	for _, l := range links {
		k := key{child: l.ChildMainID, parent: l.ParentMainID}
		cur, seen := best[k]
		if !seen {
			order = append(order, k)
			best[k] = l
			continue
		}
		if catalog.IsNullInt(l.Membership) {
			continue
		}
		if catalog.IsNullInt(cur.Membership) || l.Membership > cur.Membership {
			best[k] = l
		}
	}

	out := make([]catalog.HLink, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

// BestIdents merges identifier claims across providers. The slices arrive
// in provider priority order, canonical first; an alias already claimed
// for an object is not claimed again by a lower-priority provider.
func BestIdents(byProvider ...[]catalog.Ident) []catalog.Ident {
	type key struct{ mainID, alias string }
	seen := make(map[key]struct{})

	var out []catalog.Ident
	for _, idents := range byProvider {
		for _, id := range idents {
			k := key{mainID: id.MainID, alias: id.Alias}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Apply runs the best-parameter selection over the merged dictionary: it
// overwrites the corresponding star_basic and planet_basic columns and
// fills best_h_link. The merged mes_* tables stay untouched so every raw
// measurement survives into the product.
func Apply(d *catalog.Dict) {
	log := zap.L().With(zap.String("component", "selector"))

	stars := make(map[string]*catalog.StarBasic, len(d.StarBasic))
	for i := range d.StarBasic {
		stars[d.StarBasic[i].MainID] = &d.StarBasic[i]
	}

	teff := BestByQuality(d.MesTeffSt,
		func(m catalog.MesTeff) string { return m.MainID },
		func(m catalog.MesTeff) string { return m.Qual })
	for _, m := range teff {
		s, ok := stars[m.MainID]
		if !ok {
			continue
		}
		s.Teff, s.TeffErr, s.TeffQual = m.Value, m.Err, m.Qual
		s.TeffRef, s.TeffSourceIDRef = m.Ref, m.SourceIDRef
	}

	radius := BestByQuality(d.MesRadiusSt,
		func(m catalog.MesRadius) string { return m.MainID },
		func(m catalog.MesRadius) string { return m.Qual })
	for _, m := range radius {
		s, ok := stars[m.MainID]
		if !ok {
			continue
		}
		s.Radius, s.RadiusErr, s.RadiusQual = m.Value, m.Err, m.Qual
		s.RadiusRef, s.RadiusSourceIDRef = m.Ref, m.SourceIDRef
	}

	mass := BestByQuality(d.MesMassSt,
		func(m catalog.MesMass) string { return m.MainID },
		func(m catalog.MesMass) string { return m.Qual })
	for _, m := range mass {
		s, ok := stars[m.MainID]
		if !ok {
			continue
		}
		s.Mass, s.MassErr, s.MassQual = m.Value, m.Err, m.Qual
		s.MassRef, s.MassSourceIDRef = m.Ref, m.SourceIDRef
	}

	binary := BestByQuality(d.MesBinary,
		func(m catalog.MesBinary) string { return m.MainID },
		func(m catalog.MesBinary) string { return m.Qual })
	for _, m := range binary {
		s, ok := stars[m.MainID]
		if !ok {
			continue
		}
		s.BinaryFlag, s.BinaryQual = m.Flag, m.Qual
		s.BinaryRef, s.BinarySourceIDRef = m.Ref, m.SourceIDRef
	}

	sep := BestByQuality(d.MesSepAng,
		func(m catalog.MesSepAng) string { return m.MainID },
		func(m catalog.MesSepAng) string { return m.Qual })
	for _, m := range sep {
		s, ok := stars[m.MainID]
		if !ok {
			continue
		}
		s.SepAng, s.SepAngErr, s.SepAngObsDate = m.Value, m.Err, m.ObsDate
		s.SepAngQual, s.SepAngRef, s.SepAngSourceIDRef = m.Qual, m.Ref, m.SourceIDRef
	}

	planets := make(map[string]*catalog.PlanetBasic, len(d.PlanetBasic))
	for i := range d.PlanetBasic {
		planets[d.PlanetBasic[i].MainID] = &d.PlanetBasic[i]
	}
	massPl := BestByQuality(d.MesMassPl,
		func(m catalog.MesMassPl) string { return m.MainID },
		func(m catalog.MesMassPl) string { return m.Qual })
	for _, m := range massPl {
		p, ok := planets[m.MainID]
		if !ok {
			continue
		}
		p.Mass, p.MassErr, p.MassRel, p.MassQual = m.Value, m.Err, m.Rel, m.Qual
		p.MassSiniFlag, p.MassRef, p.MassSourceIDRef = m.SiniFlag, m.Ref, m.SourceIDRef
	}

	d.BestHLink = BestHLinks(d.HLink)

	log.Info("best parameters selected",
		zap.Int("teff", len(teff)),
		zap.Int("radius", len(radius)),
		zap.Int("mass", len(mass)),
		zap.Int("binary", len(binary)),
		zap.Int("sep_ang", len(sep)),
		zap.Int("mass_pl", len(massPl)),
		zap.Int("best_h_link", len(d.BestHLink)),
	)
}
