package provider

import (
	"reflect"
	"strings"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

// BuildSources scans every reference-bearing column of the dictionary and
// produces the deduplicated sources record set tagged with the provider
// name. Blank references were already defaulted to the provider bibcode
// by the adapter, so here every non-null reference becomes a source row.
func BuildSources(d *catalog.Dict) []catalog.Source {
	provider := d.ProviderName()
	seen := make(map[string]struct{})
	var sources []catalog.Source

	add := func(ref string) {
		if catalog.IsNullText(ref) {
			return
		}
		if _, dup := seen[ref]; dup {
			return
		}
		seen[ref] = struct{}{}
		sources = append(sources, catalog.Source{Ref: ref, Provider: provider})
	}

	for _, name := range catalog.AllTables {
		rows := d.Table(name)
		if rows == nil {
			continue
		}
		collectRefs(rows, add)
	}
	return sources
}

// collectRefs walks a row slice and feeds every column whose vot tag ends
// in "_ref" (the reference-string columns of the schema) to add.
func collectRefs(rowsPtr any, add func(string)) {
	v := reflect.Indirect(reflect.ValueOf(rowsPtr))
	if v.Kind() != reflect.Slice {
		return
	}
	st := v.Type().Elem()
	if st.Kind() != reflect.Struct {
		return
	}

	var refFields []int
	for i := 0; i < st.NumField(); i++ {
		tag := st.Field(i).Tag.Get("vot")
		if strings.HasSuffix(tag, "_ref") && st.Field(i).Type.Kind() == reflect.String {
			refFields = append(refFields, i)
		}
	}

	for r := 0; r < v.Len(); r++ {
		row := v.Index(r)
		for _, i := range refFields {
			add(row.Field(i).String())
		}
	}
}

// DefaultRef returns ref, or the provider bibcode when ref is blank.
// Absent reference strings default to the provider's own citation.
func DefaultRef(ref, bibcode string) string {
	if catalog.IsNullText(strings.TrimSpace(ref)) {
		return bibcode
	}
	return strings.TrimSpace(ref)
}
