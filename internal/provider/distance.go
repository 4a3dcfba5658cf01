package provider

import (
	"github.com/life-td/targetdb-cli/internal/catalog"
)

// PlxCutMas converts the distance cutoff in parsec to the parallax
// threshold in milliarcseconds, slackened by 10% to tolerate boundary
// uncertainty.
func PlxCutMas(distanceCutPc float64) float64 {
	return 1000 / distanceCutPc * 0.9
}

// MembershipSet collects every identifier under which a canonical object
// is known: main identifiers plus all aliases. Sources without distance
// data filter against this set, making canonical-catalog membership the
// transitive gatekeeper for the parallax cut.
func MembershipSet(canonical *catalog.Dict) map[string]struct{} {
	if canonical == nil {
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(canonical.Objects)+len(canonical.Ident))
	for _, o := range canonical.Objects {
		set[o.MainID] = struct{}{}
	}
	for _, id := range canonical.Ident {
		set[id.Alias] = struct{}{}
	}
	return set
}

// FilterByMembership keeps rows whose key is in the canonical membership
// set and returns the dropped count.
func FilterByMembership[T any](rows []T, key func(T) string, set map[string]struct{}) ([]T, int) {
	kept := make([]T, 0, len(rows))
	dropped := 0
	for _, r := range rows {
		if _, ok := set[key(r)]; ok {
			kept = append(kept, r)
		} else {
			dropped++
		}
	}
	return kept, dropped
}
