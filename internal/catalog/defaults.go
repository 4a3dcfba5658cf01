package catalog

import "reflect"

// NewRow returns a row of type T with every column at its null sentinel:
// text "?", integers 999999, floats 1e20. Adapters start from this and set
// only the columns their source actually carries.
func NewRow[T any]() T {
	var t T
	v := reflect.ValueOf(&t).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		switch f.Kind() {
		case reflect.String:
			f.SetString(NullText)
		case reflect.Int64:
			f.SetInt(NullInt)
		case reflect.Float64:
			f.SetFloat(NullFloat)
		}
	}
	return t
}

// Unique drops exact-duplicate rows, preserving first occurrence order.
func Unique[T comparable](rows []T) []T {
	seen := make(map[T]struct{}, len(rows))
	out := rows[:0:0]
	for _, r := range rows {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// UnifyNulls normalizes every string column of a row slice in place,
// mapping foreign null spellings onto the textual sentinel.
func UnifyNulls[T any](rows []T) {
	for i := range rows {
		v := reflect.ValueOf(&rows[i]).Elem()
		for j := 0; j < v.NumField(); j++ {
			f := v.Field(j)
			if f.Kind() == reflect.String {
				f.SetString(NormalizeText(f.String()))
			}
		}
	}
}
