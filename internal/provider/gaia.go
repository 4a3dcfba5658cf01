package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/votable"
)

// Gaia ingests astrophysical parameters and non-single-star solutions
// from the Gaia archive.
type Gaia struct{}

const (
	gaiaName    = "gaia"
	gaiaBibcode = "2016A&A...595A...1G"
)

func (Gaia) Name() string { return gaiaName }

func (Gaia) Info(now time.Time) catalog.Provider {
	return catalog.Provider{
		Name:       gaiaName,
		URL:        "https://gea.esac.esa.int/tap-server/tap",
		Bibcode:    gaiaBibcode,
		AccessDate: now.Format("2006-01-02"),
	}
}

type gaiaRow struct {
	SourceID  int64   `vot:"source_id"`
	Plx       float64 `vot:"parallax"`
	TeffPhot  float64 `vot:"teff_gspphot"`
	TeffSpec  float64 `vot:"teff_gspspec"`
	SpecFlags string  `vot:"flags_gspspec"`
	Radius    float64 `vot:"radius_gspphot"`
	Mass      float64 `vot:"mass_flame"`
	NSSID     int64   `vot:"nss_id"`
}

const gaiaADQL = `SELECT s.source_id AS source_id, s.parallax AS parallax,
 ap.teff_gspphot AS teff_gspphot, ap.teff_gspspec AS teff_gspspec,
 ap.flags_gspspec AS flags_gspspec,
 ap.radius_gspphot AS radius_gspphot, ap.mass_flame AS mass_flame,
 nss.source_id AS nss_id
FROM gaiadr3.gaia_source AS s
JOIN gaiadr3.astrophysical_parameters AS ap ON ap.source_id = s.source_id
LEFT JOIN gaiadr3.nss_two_body_orbit AS nss ON nss.source_id = s.source_id
WHERE s.parallax >= %g`

// Build implements Adapter.
func (g Gaia) Build(ctx context.Context, deps *Deps) (*catalog.Dict, error) {
	log := zap.L().With(zap.String("provider", gaiaName))
	log.Info("creating gaia tables")

	cut := PlxCutMas(deps.Cfg.DistanceCutPc)
	table, err := deps.Gaia.Query(ctx, fmt.Sprintf(gaiaADQL, cut), nil)
	if err != nil {
		return nil, eris.Wrap(err, "gaia: query archive")
	}
	var rows []gaiaRow
	if err := votable.UnmarshalRows(table, &rows); err != nil {
		return nil, eris.Wrap(err, "gaia: decode archive")
	}

	gaiaIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		gaiaIDs = append(gaiaIDs, "Gaia DR3 "+strconv.FormatInt(r.SourceID, 10))
	}
	resolved, err := deps.Resolver.Resolve(ctx, catalog.Unique(gaiaIDs), false)
	if err != nil {
		return nil, eris.Wrap(err, "gaia: resolve identifiers")
	}

	d := &catalog.Dict{Provider: []catalog.Provider{g.Info(deps.Now)}}

	seen := map[string]struct{}{}
	for i, r := range rows {
		// Sources outside the canonical service keep the Gaia identifier.
		mainID := gaiaIDs[i]
		if id, ok := resolved[mainID]; ok {
			mainID = id
		}
		if _, dup := seen[mainID]; dup {
			continue
		}
		seen[mainID] = struct{}{}

		binary := !catalog.IsNullInt(r.NSSID)
		typ := catalog.TypeStar
		if binary {
			typ = catalog.TypeSystem
		}
		d.Objects = append(d.Objects, catalog.Object{Type: typ, MainID: mainID, IDs: gaiaIDs[i]})

		ident := catalog.NewRow[catalog.Ident]()
		ident.MainID = mainID
		ident.Alias = gaiaIDs[i]
		ident.Ref = gaiaBibcode
		d.Ident = append(d.Ident, ident)

		if !catalog.IsNullFloat(r.TeffPhot) {
			d.MesTeffSt = append(d.MesTeffSt, gaiaTeff(mainID, r.TeffPhot, catalog.QualityB))
		}
		if !catalog.IsNullFloat(r.TeffSpec) {
			d.MesTeffSt = append(d.MesTeffSt, gaiaTeff(mainID, r.TeffSpec, gspspecQuality(r.SpecFlags)))
		}
		if !catalog.IsNullFloat(r.Radius) {
			m := catalog.NewRow[catalog.MesRadius]()
			m.MainID = mainID
			m.Value = r.Radius
			m.Qual = string(catalog.QualityB)
			m.Ref = gaiaBibcode
			d.MesRadiusSt = append(d.MesRadiusSt, m)
		}
		if !catalog.IsNullFloat(r.Mass) {
			m := catalog.NewRow[catalog.MesMass]()
			m.MainID = mainID
			m.Value = r.Mass
			m.Qual = string(catalog.QualityB)
			m.Ref = gaiaBibcode
			d.MesMassSt = append(d.MesMassSt, m)
		}

		mb := catalog.NewRow[catalog.MesBinary]()
		mb.MainID = mainID
		mb.Ref = gaiaBibcode
		if binary {
			// A non-single-star solution is direct evidence.
			mb.Flag, mb.Qual = catalog.FlagTrue, string(catalog.QualityB)
		} else {
			mb.Flag, mb.Qual = catalog.FlagFalse, string(catalog.QualityE)
		}
		d.MesBinary = append(d.MesBinary, mb)
	}

	d.Sources = BuildSources(d)

	log.Info("gaia tables created",
		zap.Int("objects", len(d.Objects)),
		zap.Int("mes_teff", len(d.MesTeffSt)),
	)
	return d, nil
}

func gaiaTeff(mainID string, value float64, qual catalog.Quality) catalog.MesTeff {
	m := catalog.NewRow[catalog.MesTeff]()
	m.MainID = mainID
	m.Value = value
	m.Qual = string(qual)
	m.Ref = gaiaBibcode
	return m
}

// gspspecQuality bins the spectroscopic quality-flag string onto the
// letter scale. Each flag character contributes its digit value; the sum
// is binned into five equal intervals across the theoretical maximum, a
// low summed deviation mapping to A and a high one to E.
func gspspecQuality(flags string) catalog.Quality {
	if catalog.IsNullText(flags) || len(flags) == 0 {
		return catalog.QualityUnknown
	}
	sum := 0
	for _, c := range flags {
		if c >= '0' && c <= '9' {
			sum += int(c - '0')
		}
	}
	bin := sum * 5 / (9 * len(flags))
	if bin > 4 {
		bin = 4
	}
	return catalog.QualityOrder[bin]
}
