package db

import (
	"context"
	"reflect"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE SCHEMA IF NOT EXISTS "life_td"`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	for range catalog.AllTables {
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "life_td"\.`).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, EnsureSchema(context.Background(), mock, "life_td"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	d := &catalog.Dict{
		Objects: []catalog.Object{{Type: catalog.TypeStar, MainID: "HD 1", IDs: "HD 1|GJ 1"}},
	}
	ident := catalog.NewRow[catalog.Ident]()
	ident.MainID = "HD 1"
	ident.Alias = "GJ 1"
	d.Ident = append(d.Ident, ident)

	populated := map[string]int64{
		catalog.TableObjects: 1,
		catalog.TableIdent:   1,
	}

	for _, table := range catalog.AllTables {
		mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE "life_td"."` + table + `"`)).
			WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
		n, ok := populated[table]
		if !ok {
			continue // empty tables skip the COPY entirely
		}
		_, rowType, err := tableRows(d, table)
		require.NoError(t, err)
		var columns []string
		for _, f := range votFields(rowType) {
			columns = append(columns, f.column)
		}
		mock.ExpectCopyFrom(pgx.Identifier{"life_td", table}, columns).
			WillReturnResult(n)
	}

	loaded, err := Load(context.Background(), mock, "life_td", d)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded[catalog.TableObjects])
	assert.Equal(t, int64(1), loaded[catalog.TableIdent])
	assert.Equal(t, int64(0), loaded[catalog.TableStarBasic])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLValueMapsSentinels(t *testing.T) {
	ident := catalog.NewRow[catalog.Ident]()
	ident.MainID = "HD 1"

	v := reflect.ValueOf(ident)
	byName := func(name string) any {
		f, ok := reflect.TypeOf(ident).FieldByName(name)
		require.True(t, ok)
		return sqlValue(v.FieldByIndex(f.Index))
	}

	assert.Equal(t, "HD 1", byName("MainID"))
	assert.Nil(t, byName("Alias"))       // text sentinel
	assert.Nil(t, byName("ObjectIDRef")) // int sentinel
	assert.Nil(t, byName("SourceIDRef")) // int sentinel
}

func TestSQLType(t *testing.T) {
	assert.Equal(t, "BIGINT", sqlType(reflect.Int64))
	assert.Equal(t, "DOUBLE PRECISION", sqlType(reflect.Float64))
	assert.Equal(t, "TEXT", sqlType(reflect.String))
}
