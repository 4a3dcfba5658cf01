// Package merge assembles the final table set from the per-provider
// dictionaries. It outer-joins records across providers, unions alias
// lists, assigns the stable integer source and object ids, resolves
// reference strings to source ids, and unifies null spellings.
package merge

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/selector"
)

// Run merges the provider dictionaries, which must arrive in provider
// priority order with the canonical provider first. The returned
// dictionary holds every emitted row; the best-parameter selector runs
// afterwards over it.
func Run(dicts []*catalog.Dict) (*catalog.Dict, error) {
	log := zap.L().With(zap.String("component", "merge"))
	final := &catalog.Dict{}

	log.Info("building sources table")
	srcIndex := mergeSources(dicts, final)

	log.Info("building objects table")
	objIndex := mergeObjects(dicts, final)

	for _, d := range dicts {
		final.Provider = append(final.Provider, d.Provider...)
	}

	log.Info("building ident table")
	mergeIdents(dicts, final, srcIndex, objIndex)

	log.Info("building h_link table")
	mergeHLinks(dicts, final, srcIndex, objIndex)

	log.Info("building measurement tables")
	mergeMeasurements(dicts, final, srcIndex, objIndex)

	log.Info("building star_basic table")
	mergeStarBasic(dicts, final, srcIndex)

	log.Info("building planet_basic table")
	seedPlanetBasic(final)

	log.Info("building disk_basic table")
	mergeDiskBasic(dicts, final, srcIndex, objIndex)

	log.Info("unifying null values")
	unify(final)

	return final, nil
}

type sourceKey struct{ provider, ref string }

// mergeSources outer-joins the per-provider sources on (ref, provider),
// deduplicates, and assigns ids 1..N in row order. The order is stable
// within a build.
func mergeSources(dicts []*catalog.Dict, final *catalog.Dict) map[sourceKey]int64 {
	index := make(map[sourceKey]int64)
	var next int64 = 1
	for _, d := range dicts {
		for _, s := range d.Sources {
			k := sourceKey{provider: s.Provider, ref: s.Ref}
			if _, dup := index[k]; dup {
				continue
			}
			index[k] = next
			final.Sources = append(final.Sources, catalog.Source{ID: next, Ref: s.Ref, Provider: s.Provider})
			next++
		}
	}
	return index
}

// mergeObjects joins objects on main identifier: alias lists union and the
// type-merge rule keeps the later provider's type when it is present and
// not the literal "None". Object ids are assigned after deduplication.
func mergeObjects(dicts []*catalog.Dict, final *catalog.Dict) map[string]int64 {
	byMain := make(map[string]int) // main_id -> index in final.Objects
	for _, d := range dicts {
		for _, o := range d.Objects {
			if catalog.IsNullText(o.MainID) {
				continue // null in a key drops the row
			}
			i, seen := byMain[o.MainID]
			if !seen {
				byMain[o.MainID] = len(final.Objects)
				final.Objects = append(final.Objects, catalog.Object{
					Type:   o.Type,
					MainID: o.MainID,
					IDs:    joinAliases(splitAliases(o.IDs)),
				})
				continue
			}
			merged := &final.Objects[i]
			merged.IDs = unionAliases(merged.IDs, o.IDs)
			if o.Type != "" && o.Type != "None" {
				merged.Type = o.Type
			}
		}
	}

	index := make(map[string]int64, len(final.Objects))
	for i := range final.Objects {
		final.Objects[i].ID = int64(i + 1)
		index[final.Objects[i].MainID] = final.Objects[i].ID
	}
	return index
}

// identPriority ranks the identifier namespaces for alias deduplication.
// The canonical provider claims first, then the providers whose aliases
// carry the most identity information; unknown providers rank last.
var identPriority = map[string]int{
	"simbad": 0,
	"life":   1,
	"exo":    2,
	"wds":    3,
	"sdb":    4,
	"gaia":   5,
}

func mergeIdents(dicts []*catalog.Dict, final *catalog.Dict, src map[sourceKey]int64, obj map[string]int64) {
	type group struct {
		provider string
		idents   []catalog.Ident
	}
	groups := make([]group, 0, len(dicts))
	for _, d := range dicts {
		idents := make([]catalog.Ident, 0, len(d.Ident))
		for _, id := range d.Ident {
			if catalog.IsNullText(id.MainID) || catalog.IsNullText(id.Alias) {
				continue
			}
			id.SourceIDRef = resolveSource(src, d.ProviderName(), id.Ref)
			idents = append(idents, id)
		}
		groups = append(groups, group{provider: d.ProviderName(), idents: idents})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return identRank(groups[i].provider) < identRank(groups[j].provider)
	})
	byProvider := make([][]catalog.Ident, 0, len(groups))
	for _, g := range groups {
		byProvider = append(byProvider, g.idents)
	}

	merged := selector.BestIdents(byProvider...)
	kept := merged[:0]
	dropped := 0
	for _, id := range merged {
		oid, ok := obj[id.MainID]
		if !ok {
			dropped++
			continue
		}
		id.ObjectIDRef = oid
		kept = append(kept, id)
	}
	if dropped > 0 {
		zap.L().Info("ident rows without a matching object dropped", zap.Int("count", dropped))
	}
	final.Ident = catalog.Unique(kept)
}

func identRank(provider string) int {
	if r, ok := identPriority[provider]; ok {
		return r
	}
	return len(identPriority)
}

// mergeHLinks resolves both ends of every link against the object table
// and drops rows whose parent cannot be resolved.
func mergeHLinks(dicts []*catalog.Dict, final *catalog.Dict, src map[sourceKey]int64, obj map[string]int64) {
	dropped := 0
	for _, d := range dicts {
		for _, l := range d.HLink {
			childID, childOK := obj[l.ChildMainID]
			parentID, parentOK := obj[l.ParentMainID]
			if !childOK || !parentOK {
				dropped++
				continue
			}
			l.ChildIDRef = childID
			l.ParentIDRef = parentID
			l.SourceIDRef = resolveSource(src, d.ProviderName(), l.Ref)
			final.HLink = append(final.HLink, l)
		}
	}
	if dropped > 0 {
		zap.L().Info("h_link rows with unresolvable endpoints dropped", zap.Int("count", dropped))
	}
	final.HLink = catalog.Unique(final.HLink)
}

// mergeMeasurements keeps every raw measurement row. A row whose main
// identifier has no object gets the null object id rather than a silent 0.
func mergeMeasurements(dicts []*catalog.Dict, final *catalog.Dict, src map[sourceKey]int64, obj map[string]int64) {
	for _, d := range dicts {
		p := d.ProviderName()

		for _, m := range d.MesTeffSt {
			m.SourceIDRef = resolveSource(src, p, m.Ref)
			m.ObjectIDRef = objectIDOrNull(obj, m.MainID)
			final.MesTeffSt = append(final.MesTeffSt, m)
		}
		for _, m := range d.MesRadiusSt {
			m.SourceIDRef = resolveSource(src, p, m.Ref)
			m.ObjectIDRef = objectIDOrNull(obj, m.MainID)
			final.MesRadiusSt = append(final.MesRadiusSt, m)
		}
		for _, m := range d.MesMassSt {
			m.SourceIDRef = resolveSource(src, p, m.Ref)
			m.ObjectIDRef = objectIDOrNull(obj, m.MainID)
			final.MesMassSt = append(final.MesMassSt, m)
		}
		for _, m := range d.MesMassPl {
			m.SourceIDRef = resolveSource(src, p, m.Ref)
			m.ObjectIDRef = objectIDOrNull(obj, m.MainID)
			final.MesMassPl = append(final.MesMassPl, m)
		}
		for _, m := range d.MesBinary {
			m.SourceIDRef = resolveSource(src, p, m.Ref)
			m.ObjectIDRef = objectIDOrNull(obj, m.MainID)
			final.MesBinary = append(final.MesBinary, m)
		}
		for _, m := range d.MesSepAng {
			m.SourceIDRef = resolveSource(src, p, m.Ref)
			m.ObjectIDRef = objectIDOrNull(obj, m.MainID)
			final.MesSepAng = append(final.MesSepAng, m)
		}
	}

	final.MesTeffSt = catalog.Unique(final.MesTeffSt)
	final.MesRadiusSt = catalog.Unique(final.MesRadiusSt)
	final.MesMassSt = catalog.Unique(final.MesMassSt)
	final.MesMassPl = catalog.Unique(final.MesMassPl)
	final.MesBinary = catalog.Unique(final.MesBinary)
	final.MesSepAng = catalog.Unique(final.MesSepAng)
}

// mergeStarBasic seeds one row per star-or-system object, then outer-joins
// the provider star rows onto the seeds column group by column group,
// first non-null value winning in provider order.
func mergeStarBasic(dicts []*catalog.Dict, final *catalog.Dict, src map[sourceKey]int64) {
	byMain := make(map[string]int)
	for _, o := range final.Objects {
		if o.Type != catalog.TypeStar && o.Type != catalog.TypeSystem {
			continue
		}
		row := catalog.NewRow[catalog.StarBasic]()
		row.MainID = o.MainID
		row.ObjectIDRef = o.ID
		byMain[o.MainID] = len(final.StarBasic)
		final.StarBasic = append(final.StarBasic, row)
	}

	for _, d := range dicts {
		p := d.ProviderName()
		for _, s := range d.StarBasic {
			i, ok := byMain[s.MainID]
			if !ok {
				continue // provider star row without a star object
			}
			resolveStarRefs(&s, src, p)
			overlayStarBasic(&final.StarBasic[i], &s)
		}
	}
}

func seedPlanetBasic(final *catalog.Dict) {
	for _, o := range final.Objects {
		if o.Type != catalog.TypePlanet {
			continue
		}
		row := catalog.NewRow[catalog.PlanetBasic]()
		row.MainID = o.MainID
		row.ObjectIDRef = o.ID
		final.PlanetBasic = append(final.PlanetBasic, row)
	}
}

func mergeDiskBasic(dicts []*catalog.Dict, final *catalog.Dict, src map[sourceKey]int64, obj map[string]int64) {
	for _, d := range dicts {
		p := d.ProviderName()
		for _, disk := range d.DiskBasic {
			id, ok := obj[disk.MainID]
			if !ok {
				continue
			}
			disk.ObjectIDRef = id
			disk.RDiskSourceIDRef = resolveSource(src, p, disk.RDiskRef)
			final.DiskBasic = append(final.DiskBasic, disk)
		}
	}
	final.DiskBasic = catalog.Unique(final.DiskBasic)
}

func unify(final *catalog.Dict) {
	catalog.UnifyNulls(final.Sources)
	catalog.UnifyNulls(final.Objects)
	catalog.UnifyNulls(final.Provider)
	catalog.UnifyNulls(final.Ident)
	catalog.UnifyNulls(final.HLink)
	catalog.UnifyNulls(final.StarBasic)
	catalog.UnifyNulls(final.PlanetBasic)
	catalog.UnifyNulls(final.DiskBasic)
	catalog.UnifyNulls(final.MesTeffSt)
	catalog.UnifyNulls(final.MesRadiusSt)
	catalog.UnifyNulls(final.MesMassSt)
	catalog.UnifyNulls(final.MesMassPl)
	catalog.UnifyNulls(final.MesBinary)
	catalog.UnifyNulls(final.MesSepAng)
}

// objectIDOrNull looks up the object id, substituting the null sentinel
// when the identifier resolves to no object.
func objectIDOrNull(obj map[string]int64, mainID string) int64 {
	if id, ok := obj[mainID]; ok {
		return id
	}
	return catalog.NullInt
}

// resolveSource maps a reference string to its integer source id within
// the provider's source namespace.
func resolveSource(src map[sourceKey]int64, provider, ref string) int64 {
	if id, ok := src[sourceKey{provider: provider, ref: ref}]; ok {
		return id
	}
	return catalog.NullInt
}

func splitAliases(s string) []string {
	var out []string
	for _, a := range strings.Split(s, "|") {
		if a = strings.TrimSpace(a); a != "" && a != catalog.NullText {
			out = append(out, a)
		}
	}
	return out
}

func joinAliases(aliases []string) string {
	if len(aliases) == 0 {
		return catalog.NullText
	}
	return strings.Join(aliases, "|")
}

// unionAliases merges two pipe-delimited alias lists, dropping empties and
// duplicates while keeping first-seen order. The operation is commutative
// and associative on the produced alias sets.
func unionAliases(a, b string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, alias := range append(splitAliases(a), splitAliases(b)...) {
		if _, dup := seen[alias]; dup {
			continue
		}
		seen[alias] = struct{}{}
		out = append(out, alias)
	}
	return joinAliases(out)
}
