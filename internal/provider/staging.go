package provider

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/votable"
)

// StageDict writes every table of a provider dictionary to the staging
// directory as <provider>_<table>.xml. The staged files back partial
// reruns: when an adapter fails or is skipped, its prior outputs are
// reloaded and the merge proceeds unchanged.
func StageDict(dir, provider string, d *catalog.Dict) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "staging: create dir %s", dir)
	}
	for _, name := range catalog.AllTables {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.xml", provider, name))
		if err := writeTable(path, name, d.Table(name)); err != nil {
			return err
		}
	}
	return nil
}

// LoadStaged reads a previously staged provider dictionary. Missing files
// leave their tables empty.
func LoadStaged(dir, provider string) (*catalog.Dict, error) {
	d := &catalog.Dict{}
	found := false
	for _, name := range catalog.AllTables {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.xml", provider, name))
		ok, err := readTable(path, d.Table(name))
		if err != nil {
			return nil, err
		}
		found = found || ok
	}
	if !found {
		return nil, eris.Errorf("staging: no staged tables for provider %s in %s", provider, dir)
	}
	return d, nil
}

// WriteFinal serializes the final dictionary as <table>.xml files.
func WriteFinal(dir string, d *catalog.Dict) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "staging: create dir %s", dir)
	}
	for _, name := range catalog.AllTables {
		path := filepath.Join(dir, name+".xml")
		if err := writeTable(path, name, d.Table(name)); err != nil {
			return err
		}
	}
	return nil
}

// LoadFinal reads the final table set back from dir, used by the
// publication loader and the summary report.
func LoadFinal(dir string) (*catalog.Dict, error) {
	d := &catalog.Dict{}
	for _, name := range catalog.AllTables {
		path := filepath.Join(dir, name+".xml")
		if _, err := readTable(path, d.Table(name)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func writeTable(path, name string, rowsPtr any) error {
	table, err := votable.MarshalRows(name, rowsPtr)
	if err != nil {
		return eris.Wrapf(err, "staging: marshal table %s", name)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "staging: create %s", path)
	}
	defer f.Close()
	doc := &votable.Document{Resource: votable.Resource{Tables: []votable.Table{*table}}}
	if err := votable.Write(f, doc); err != nil {
		return eris.Wrapf(err, "staging: write %s", path)
	}
	return nil
}

// readTable fills rowsPtr from a staged file; returns false when the file
// does not exist.
func readTable(path string, rowsPtr any) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "staging: open %s", path)
	}
	defer f.Close()

	doc, err := votable.Parse(f)
	if err != nil {
		return false, eris.Wrapf(err, "staging: parse %s", path)
	}
	table, err := doc.First()
	if err != nil {
		return false, eris.Wrapf(err, "staging: %s", path)
	}
	if err := votable.UnmarshalRows(table, rowsPtr); err != nil {
		return false, eris.Wrapf(err, "staging: decode %s", path)
	}
	return true, nil
}
