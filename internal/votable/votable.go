// Package votable reads and writes VOTable XML documents and maps their
// TABLEDATA rows onto tagged Go structs.
package votable

import (
	"encoding/xml"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// Document is a minimal VOTable: one RESOURCE holding one or more TABLEs.
type Document struct {
	XMLName  xml.Name `xml:"VOTABLE"`
	Version  string   `xml:"version,attr"`
	Resource Resource `xml:"RESOURCE"`
}

// Resource groups the tables of a VOTable document.
type Resource struct {
	Tables []Table `xml:"TABLE"`
}

// Table is a named column set with TABLEDATA rows. Cells are kept as
// strings; typed access goes through UnmarshalRows.
type Table struct {
	Name   string  `xml:"name,attr"`
	Fields []Field `xml:"FIELD"`
	Data   Data    `xml:"DATA"`
}

// Field describes one column.
type Field struct {
	Name      string `xml:"name,attr"`
	Datatype  string `xml:"datatype,attr"`
	Arraysize string `xml:"arraysize,attr,omitempty"`
}

// Data wraps the TABLEDATA serialization.
type Data struct {
	TableData TableData `xml:"TABLEDATA"`
}

// TableData holds the rows.
type TableData struct {
	Rows []Row `xml:"TR"`
}

// Row is one table row of string cells.
type Row struct {
	Cells []string `xml:"TD"`
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.Data.TableData.Rows) }

// ColumnIndex returns the position of the named field, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Parse decodes a VOTable document. Foreign charsets declared in the XML
// prolog are decoded via the HTML index, the way external services such as
// VizieR commonly serve them.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "votable: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "votable: decode document")
	}
	return &doc, nil
}

// First returns the first table of the document, or an error when the
// document carries none.
func (d *Document) First() (*Table, error) {
	if len(d.Resource.Tables) == 0 {
		return nil, eris.New("votable: document has no table")
	}
	return &d.Resource.Tables[0], nil
}

// Write serializes a document with the standard XML header.
func Write(w io.Writer, doc *Document) error {
	if doc.Version == "" {
		doc.Version = "1.4"
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return eris.Wrap(err, "votable: write header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return eris.Wrap(err, "votable: encode document")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "votable: close encoder")
	}
	_, err := io.WriteString(w, "\n")
	return err
}
