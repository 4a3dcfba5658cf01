package db

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

// EnsureSchema creates the target schema and one table per published
// table name. Column names and types derive from the row structs, so the
// database layout always matches the serialized layout.
func EnsureSchema(ctx context.Context, pool Pool, schema string) error {
	ddl := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{schema}.Sanitize())
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return eris.Wrapf(err, "db: create schema %s", schema)
	}

	d := &catalog.Dict{}
	for _, table := range catalog.AllTables {
		rowType, err := tableRowType(d, table)
		if err != nil {
			return err
		}
		var cols []string
		for _, f := range votFields(rowType) {
			cols = append(cols, fmt.Sprintf("%s %s",
				pgx.Identifier{f.column}.Sanitize(), sqlType(f.kind)))
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (%s)",
			pgx.Identifier{schema}.Sanitize(), pgx.Identifier{table}.Sanitize(),
			strings.Join(cols, ", "))
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return eris.Wrapf(err, "db: create table %s", table)
		}
	}
	return nil
}

// Load truncates and reloads every published table from the final
// dictionary. Null sentinels become SQL NULLs.
func Load(ctx context.Context, pool Pool, schema string, d *catalog.Dict) (map[string]int64, error) {
	log := zap.L().With(zap.String("component", "db.loader"), zap.String("schema", schema))

	loaded := map[string]int64{}
	for _, table := range catalog.AllTables {
		rowsVal, rowType, err := tableRows(d, table)
		if err != nil {
			return nil, err
		}
		fields := votFields(rowType)

		columns := make([]string, len(fields))
		for i, f := range fields {
			columns[i] = f.column
		}

		truncate := fmt.Sprintf("TRUNCATE %s.%s",
			pgx.Identifier{schema}.Sanitize(), pgx.Identifier{table}.Sanitize())
		if _, err := pool.Exec(ctx, truncate); err != nil {
			return nil, eris.Wrapf(err, "db: truncate %s", table)
		}

		rows := make([][]any, rowsVal.Len())
		for i := 0; i < rowsVal.Len(); i++ {
			row := rowsVal.Index(i)
			vals := make([]any, len(fields))
			for j, f := range fields {
				vals[j] = sqlValue(row.Field(f.index))
			}
			rows[i] = vals
		}

		n, err := CopyInto(ctx, pool, schema, table, columns, rows)
		if err != nil {
			return nil, err
		}
		loaded[table] = n
		log.Info("table loaded", zap.String("table", table), zap.Int64("rows", n))
	}
	return loaded, nil
}

type votField struct {
	index  int
	column string
	kind   reflect.Kind
}

func votFields(t reflect.Type) []votField {
	var out []votField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("vot")
		if tag == "" || tag == "-" {
			continue
		}
		out = append(out, votField{index: i, column: tag, kind: f.Type.Kind()})
	}
	return out
}

func sqlType(k reflect.Kind) string {
	switch k {
	case reflect.Int64:
		return "BIGINT"
	case reflect.Float64:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// sqlValue converts one struct field to a COPY value, mapping the null
// sentinels to NULL.
func sqlValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.String:
		s := v.String()
		if catalog.IsNullText(s) {
			return nil
		}
		return s
	case reflect.Int64:
		n := v.Int()
		if catalog.IsNullInt(n) {
			return nil
		}
		return n
	case reflect.Float64:
		f := v.Float()
		if catalog.IsNullFloat(f) {
			return nil
		}
		return f
	default:
		return v.Interface()
	}
}

func tableRows(d *catalog.Dict, table string) (reflect.Value, reflect.Type, error) {
	ptr := d.Table(table)
	if ptr == nil {
		return reflect.Value{}, nil, eris.Errorf("db: unknown table %q", table)
	}
	slice := reflect.ValueOf(ptr).Elem()
	return slice, slice.Type().Elem(), nil
}

func tableRowType(d *catalog.Dict, table string) (reflect.Type, error) {
	_, t, err := tableRows(d, table)
	return t, err
}
