package votable

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

type testRow struct {
	Name  string  `vot:"main_id"`
	Count int64   `vot:"count"`
	Value float64 `vot:"value"`
	Extra string  // untagged, stays out of the codec
}

const sampleVOTable = `<?xml version="1.0" encoding="UTF-8"?>
<VOTABLE version="1.4">
 <RESOURCE>
  <TABLE name="results">
   <FIELD name="main_id" datatype="char" arraysize="*"/>
   <FIELD name="count" datatype="long"/>
   <FIELD name="value" datatype="double"/>
   <DATA><TABLEDATA>
    <TR><TD>HD 1</TD><TD>3</TD><TD>1.5</TD></TR>
    <TR><TD>GJ 699</TD><TD></TD><TD></TD></TR>
   </TABLEDATA></DATA>
  </TABLE>
 </RESOURCE>
</VOTABLE>`

func TestParseAndUnmarshal(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleVOTable))
	require.NoError(t, err)

	table, err := doc.First()
	require.NoError(t, err)
	assert.Equal(t, 2, table.NumRows())

	var rows []testRow
	require.NoError(t, UnmarshalRows(table, &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, testRow{Name: "HD 1", Count: 3, Value: 1.5}, rows[0])
	// Empty numeric cells become the null sentinels.
	assert.Equal(t, "GJ 699", rows[1].Name)
	assert.True(t, catalog.IsNullInt(rows[1].Count))
	assert.True(t, catalog.IsNullFloat(rows[1].Value))
}

func TestMarshalRoundTrip(t *testing.T) {
	in := []testRow{
		{Name: "HD 1", Count: 3, Value: 1.5},
		{Name: "GJ 2", Count: catalog.NullInt, Value: catalog.NullFloat},
	}

	table, err := MarshalRows("stars", in)
	require.NoError(t, err)
	assert.Equal(t, "stars", table.Name)
	require.Len(t, table.Fields, 3)
	assert.Equal(t, "long", table.Fields[1].Datatype)
	assert.Equal(t, "double", table.Fields[2].Datatype)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Document{Resource: Resource{Tables: []Table{*table}}}))
	assert.Contains(t, buf.String(), `<?xml version="1.0" encoding="UTF-8"?>`)

	doc, err := Parse(&buf)
	require.NoError(t, err)
	parsed, err := doc.First()
	require.NoError(t, err)

	var out []testRow
	require.NoError(t, UnmarshalRows(parsed, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshal_MissingColumnLeavesZero(t *testing.T) {
	table := &Table{
		Fields: []Field{{Name: "main_id", Datatype: "char"}},
		Data:   Data{TableData: TableData{Rows: []Row{{Cells: []string{"HD 1"}}}}},
	}

	var rows []testRow
	require.NoError(t, UnmarshalRows(table, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "HD 1", rows[0].Name)
	assert.Zero(t, rows[0].Count)
}

func TestUnmarshal_BadDestination(t *testing.T) {
	var rows []testRow
	err := UnmarshalRows(&Table{}, rows)
	assert.Error(t, err)
}

func TestColumns(t *testing.T) {
	cols, err := Columns([]testRow{})
	require.NoError(t, err)
	assert.Equal(t, []string{"main_id", "count", "value"}, cols)
}

func TestFirst_Empty(t *testing.T) {
	doc := &Document{}
	_, err := doc.First()
	assert.Error(t, err)
}
