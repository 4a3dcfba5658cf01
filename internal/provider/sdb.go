package provider

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/votable"
)

// SDB ingests the infrared-excess disk catalog from a local VOTable file.
// Disks become objects of type di, linked child-to-parent onto their host
// star.
type SDB struct{}

const (
	sdbName    = "sdb"
	sdbBibcode = "2014MNRAS.444.3164K"
)

func (SDB) Name() string { return sdbName }

func (SDB) Info(now time.Time) catalog.Provider {
	return catalog.Provider{
		Name:       sdbName,
		URL:        "http://drgmk.com/sdb/",
		Bibcode:    sdbBibcode,
		AccessDate: now.Format("2006-01-02"),
	}
}

type sdbRow struct {
	ID       string  `vot:"id"`
	Host     string  `vot:"main_id"`
	Plx      float64 `vot:"plx_value"`
	RDisk    float64 `vot:"rdisk_bb"`
	RDiskErr float64 `vot:"e_rdisk_bb"`
}

// Build implements Adapter.
func (s SDB) Build(ctx context.Context, deps *Deps) (*catalog.Dict, error) {
	log := zap.L().With(zap.String("provider", sdbName))
	log.Info("creating sdb tables", zap.String("file", deps.Cfg.Files.SdbVOTable))

	rc, err := deps.Fetch.Download(ctx, deps.Cfg.Files.SdbVOTable)
	if err != nil {
		return nil, eris.Wrap(err, "sdb: fetch disk catalog")
	}
	defer rc.Close()

	doc, err := votable.Parse(rc)
	if err != nil {
		return nil, eris.Wrap(err, "sdb: parse disk catalog")
	}
	table, err := doc.First()
	if err != nil {
		return nil, eris.Wrap(err, "sdb: disk catalog")
	}
	var rows []sdbRow
	if err := votable.UnmarshalRows(table, &rows); err != nil {
		return nil, eris.Wrap(err, "sdb: decode disk catalog")
	}

	cut := PlxCutMas(deps.Cfg.DistanceCutPc)
	kept := rows[:0]
	for _, r := range rows {
		if !catalog.IsNullFloat(r.Plx) && r.Plx >= cut {
			kept = append(kept, r)
		}
	}
	log.Info("parallax cut applied", zap.Int("kept", len(kept)), zap.Int("total", len(rows)))

	// Host identifiers are foreign aliases; align them to canonical main ids.
	hostKeys := make([]string, 0, len(kept))
	for _, r := range kept {
		if !catalog.IsNullText(r.Host) {
			hostKeys = append(hostKeys, r.Host)
		}
	}
	resolved, err := deps.Resolver.Resolve(ctx, catalog.Unique(hostKeys), false)
	if err != nil {
		return nil, eris.Wrap(err, "sdb: resolve hosts")
	}

	d := &catalog.Dict{Provider: []catalog.Provider{s.Info(deps.Now)}}

	hostCount := map[string]int{}
	for _, r := range kept {
		if host, ok := resolved[r.Host]; ok {
			hostCount[host]++
		}
	}
	for host, n := range hostCount {
		if n > 2 {
			log.Warn("more than two disks on one host", zap.String("host", host), zap.Int("count", n))
		}
	}

	perHost := map[string]int{}
	droppedHost := 0
	for _, r := range kept {
		host, ok := resolved[r.Host]
		if !ok || catalog.IsNullText(r.Host) {
			droppedHost++
			continue
		}

		diskID := host + " disk"
		if hostCount[host] > 1 {
			// Same host id twice: the disks become "... disk a", "... disk b".
			diskID += " " + string(rune('a'+perHost[host]))
		}
		perHost[host]++

		d.Objects = append(d.Objects, catalog.Object{
			Type:   catalog.TypeDisk,
			MainID: diskID,
			IDs:    diskID,
		})

		ident := catalog.NewRow[catalog.Ident]()
		ident.MainID = diskID
		ident.Alias = r.ID
		ident.Ref = sdbBibcode
		d.Ident = append(d.Ident, ident)

		h := catalog.NewRow[catalog.HLink]()
		h.ChildMainID = diskID
		h.ParentMainID = host
		h.Ref = sdbBibcode
		d.HLink = append(d.HLink, h)

		disk := catalog.NewRow[catalog.DiskBasic]()
		disk.MainID = diskID
		disk.RDisk = r.RDisk
		disk.RDiskErr = r.RDiskErr
		if !catalog.IsNullFloat(r.RDisk) {
			disk.RDiskRel = "="
			disk.RDiskQual = string(catalog.QualityB)
		}
		disk.RDiskRef = sdbBibcode
		d.DiskBasic = append(d.DiskBasic, disk)
	}
	if droppedHost > 0 {
		log.Info("unresolved hosts dropped", zap.Int("count", droppedHost))
	}

	d.Sources = BuildSources(d)

	log.Info("sdb tables created",
		zap.Int("objects", len(d.Objects)),
		zap.Int("disk_basic", len(d.DiskBasic)),
	)
	return d, nil
}
