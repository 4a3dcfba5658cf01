package votable

import (
	"reflect"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cast"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

// The row codec maps struct fields carrying a `vot:"column"` tag onto
// VOTable FIELDs. Supported field kinds are string, int64, and float64,
// matching the semantic types of the catalog schema.

// Columns returns the vot-tagged column names of the struct type behind
// rows, which must be a slice of structs (or a pointer to one).
func Columns(rows any) ([]string, error) {
	st, err := elemStruct(rows)
	if err != nil {
		return nil, err
	}
	var cols []string
	for i := 0; i < st.NumField(); i++ {
		if tag := st.Field(i).Tag.Get("vot"); tag != "" {
			cols = append(cols, tag)
		}
	}
	return cols, nil
}

// MarshalRows converts a slice of tagged structs into a named Table.
func MarshalRows(name string, rows any) (*Table, error) {
	st, err := elemStruct(rows)
	if err != nil {
		return nil, err
	}

	t := &Table{Name: name}
	var idx []int
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		tag := f.Tag.Get("vot")
		if tag == "" {
			continue
		}
		idx = append(idx, i)
		t.Fields = append(t.Fields, fieldFor(tag, f.Type.Kind()))
	}

	v := reflect.Indirect(reflect.ValueOf(rows))
	for r := 0; r < v.Len(); r++ {
		rv := v.Index(r)
		row := Row{Cells: make([]string, 0, len(idx))}
		for _, i := range idx {
			row.Cells = append(row.Cells, cellString(rv.Field(i)))
		}
		t.Data.TableData.Rows = append(t.Data.TableData.Rows, row)
	}
	return t, nil
}

// UnmarshalRows fills dst, a pointer to a slice of tagged structs, from the
// table. Empty numeric cells become the schema null sentinels; columns
// absent from the table leave their fields at the zero value.
func UnmarshalRows(t *Table, dst any) error {
	pv := reflect.ValueOf(dst)
	if pv.Kind() != reflect.Pointer || pv.Elem().Kind() != reflect.Slice {
		return eris.New("votable: destination must be a pointer to a slice")
	}
	st, err := elemStruct(dst)
	if err != nil {
		return err
	}

	// Map struct field index -> table column index.
	type binding struct{ field, col int }
	var binds []binding
	for i := 0; i < st.NumField(); i++ {
		tag := st.Field(i).Tag.Get("vot")
		if tag == "" {
			continue
		}
		if c := t.ColumnIndex(tag); c >= 0 {
			binds = append(binds, binding{field: i, col: c})
		}
	}

	sl := pv.Elem()
	for _, row := range t.Data.TableData.Rows {
		ev := reflect.New(st).Elem()
		for _, b := range binds {
			if b.col >= len(row.Cells) {
				continue
			}
			if err := setCell(ev.Field(b.field), row.Cells[b.col]); err != nil {
				return eris.Wrapf(err, "votable: column %q", t.Fields[b.col].Name)
			}
		}
		sl = reflect.Append(sl, ev)
	}
	pv.Elem().Set(sl)
	return nil
}

func elemStruct(rows any) (reflect.Type, error) {
	t := reflect.TypeOf(rows)
	for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, eris.New("votable: rows must be a slice of structs")
	}
	return t, nil
}

func fieldFor(name string, k reflect.Kind) Field {
	switch k {
	case reflect.Int64:
		return Field{Name: name, Datatype: "long"}
	case reflect.Float64:
		return Field{Name: name, Datatype: "double"}
	default:
		return Field{Name: name, Datatype: "char", Arraysize: "*"}
	}
}

func cellString(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	default:
		return v.String()
	}
}

// setCell writes one cell into a struct field. Empty numeric cells become
// the schema null sentinels.
func setCell(v reflect.Value, cell string) error {
	switch v.Kind() {
	case reflect.Int64:
		if cell == "" {
			v.SetInt(catalog.NullInt)
			return nil
		}
		n, err := cast.ToInt64E(cell)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Float64:
		if cell == "" {
			v.SetFloat(catalog.NullFloat)
			return nil
		}
		f, err := cast.ToFloat64E(cell)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		v.SetString(cell)
	}
	return nil
}
