package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/astro"
	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/spectral"
)

// Life derives parameters from the canonical star table: galactic
// coordinates, distance from parallax, the parsed spectral class, and
// modeled Teff/radius/mass from the calibration grid.
type Life struct{}

const (
	lifeName    = "life"
	lifeBibcode = "2022A&A...664A..21Q"
)

func (Life) Name() string { return lifeName }

func (Life) Info(now time.Time) catalog.Provider {
	return catalog.Provider{
		Name:       lifeName,
		URL:        "https://www.life-space-mission.com/",
		Bibcode:    lifeBibcode,
		AccessDate: now.Format("2006-01-02"),
	}
}

// Build implements Adapter. It consumes the canonical dictionary instead
// of an external service.
func (l Life) Build(ctx context.Context, deps *Deps) (*catalog.Dict, error) {
	_ = ctx
	log := zap.L().With(zap.String("provider", lifeName))
	log.Info("creating life tables", zap.Int("stars", len(deps.Canonical.StarBasic)))

	d := &catalog.Dict{Provider: []catalog.Provider{l.Info(deps.Now)}}

	modeled := 0
	for _, src := range deps.Canonical.StarBasic {
		s := catalog.NewRow[catalog.StarBasic]()
		s.MainID = src.MainID

		if !catalog.IsNullFloat(src.RA) && !catalog.IsNullFloat(src.Dec) {
			gl, gb := astro.ICRSToGalactic(src.RA, src.Dec)
			s.GalL, s.GalB = gl, gb
			// The transform does not propagate the error ellipse; -1
			// marks the untransformed errors.
			s.GalErrAngle, s.GalErrMaj, s.GalErrMin = -1, -1, -1
			s.GalQual = string(catalog.QualityUnknown)
			s.GalRef = lifeBibcode
		}

		if !catalog.IsNullFloat(src.Plx) && src.Plx != 0 {
			s.Dist = 1000 / src.Plx
			if !catalog.IsNullFloat(src.PlxErr) {
				s.DistErr = 1000 * src.PlxErr / (src.Plx * src.Plx)
			}
			s.DistQual = catalog.NormalizeText(src.PlxQual)
			s.DistRef = lifeBibcode
		}

		cls := spectral.Parse(src.SpType)
		s.ClassTemp = cls.Temp
		s.ClassTempNr = cls.Sub
		s.ClassLum = cls.Lum
		s.ClassRef = lifeBibcode

		d.StarBasic = append(d.StarBasic, s)

		entry, ok := deps.Grid.Match(cls)
		if !ok {
			continue
		}
		modeled++
		if !catalog.IsNullFloat(entry.Teff) {
			m := catalog.NewRow[catalog.MesTeff]()
			m.MainID = src.MainID
			m.Value = entry.Teff
			m.Qual = string(catalog.QualityD)
			m.Ref = spectral.ModelBibcode
			d.MesTeffSt = append(d.MesTeffSt, m)
		}
		if !catalog.IsNullFloat(entry.Radius) {
			m := catalog.NewRow[catalog.MesRadius]()
			m.MainID = src.MainID
			m.Value = entry.Radius
			m.Qual = string(catalog.QualityD)
			m.Ref = spectral.ModelBibcode
			d.MesRadiusSt = append(d.MesRadiusSt, m)
		}
		if !catalog.IsNullFloat(entry.Mass) {
			m := catalog.NewRow[catalog.MesMass]()
			m.MainID = src.MainID
			m.Value = entry.Mass
			m.Qual = string(catalog.QualityD)
			m.Ref = spectral.ModelBibcode
			d.MesMassSt = append(d.MesMassSt, m)
		}
	}

	d.Sources = BuildSources(d)

	log.Info("life tables created",
		zap.Int("star_basic", len(d.StarBasic)),
		zap.Int("modeled", modeled),
	)
	return d, nil
}
