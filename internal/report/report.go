// Package report renders a build-summary workbook: per-table row counts,
// per-provider source counts, and best-parameter coverage of the star
// table.
package report

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/life-td/targetdb-cli/internal/catalog"
)

// Write renders the workbook for a final dictionary to path.
func Write(d *catalog.Dict, path string) error {
	f := xlsx.NewFile()

	if err := tablesSheet(f, d); err != nil {
		return err
	}
	if err := providersSheet(f, d); err != nil {
		return err
	}
	if err := coverageSheet(f, d); err != nil {
		return err
	}

	return eris.Wrap(f.Save(path), "report: save workbook")
}

func tablesSheet(f *xlsx.File, d *catalog.Dict) error {
	sheet, err := f.AddSheet("tables")
	if err != nil {
		return eris.Wrap(err, "report: add tables sheet")
	}
	header(sheet, "table", "rows")
	for _, table := range catalog.AllTables {
		row := sheet.AddRow()
		row.AddCell().SetString(table)
		row.AddCell().SetInt(d.Len(table))
	}
	return nil
}

func providersSheet(f *xlsx.File, d *catalog.Dict) error {
	sheet, err := f.AddSheet("providers")
	if err != nil {
		return eris.Wrap(err, "report: add providers sheet")
	}
	header(sheet, "provider", "bibcode", "sources")

	perProvider := map[string]int{}
	for _, s := range d.Sources {
		perProvider[s.Provider]++
	}
	for _, p := range d.Provider {
		row := sheet.AddRow()
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Bibcode)
		row.AddCell().SetInt(perProvider[p.Name])
	}
	return nil
}

// coverageSheet counts stars with a chosen best value per parameter.
func coverageSheet(f *xlsx.File, d *catalog.Dict) error {
	sheet, err := f.AddSheet("coverage")
	if err != nil {
		return eris.Wrap(err, "report: add coverage sheet")
	}
	header(sheet, "parameter", "stars with value", "of")

	var teff, radius, mass, binary, sep int
	for _, s := range d.StarBasic {
		if !catalog.IsNullFloat(s.Teff) {
			teff++
		}
		if !catalog.IsNullFloat(s.Radius) {
			radius++
		}
		if !catalog.IsNullFloat(s.Mass) {
			mass++
		}
		if !catalog.IsNullText(s.BinaryFlag) {
			binary++
		}
		if !catalog.IsNullFloat(s.SepAng) {
			sep++
		}
	}

	total := strconv.Itoa(len(d.StarBasic))
	for _, c := range []struct {
		name string
		n    int
	}{
		{"teff_st", teff},
		{"radius_st", radius},
		{"mass_st", mass},
		{"binary", binary},
		{"sep_ang", sep},
	} {
		row := sheet.AddRow()
		row.AddCell().SetString(c.name)
		row.AddCell().SetInt(c.n)
		row.AddCell().SetString(total)
	}
	return nil
}

func header(sheet *xlsx.Sheet, cols ...string) {
	row := sheet.AddRow()
	for _, c := range cols {
		row.AddCell().SetString(c)
	}
}
