// Package provider implements the per-source ingestion adapters and the
// engine that runs them. Each adapter normalizes one external catalog into
// the internal schema, attaches provenance, and stages its dictionary for
// the merger.
package provider

import (
	"context"
	"time"

	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/config"
	"github.com/life-td/targetdb-cli/internal/fetch"
	"github.com/life-td/targetdb-cli/internal/spectral"
	"github.com/life-td/targetdb-cli/internal/tap"
)

// Adapter defines the interface each data source must implement.
type Adapter interface {
	// Name returns the unique provider name (e.g. "simbad", "wds").
	Name() string

	// Info returns the one-row provider metadata record.
	Info(now time.Time) catalog.Provider

	// Build ingests the source and returns its provider dictionary.
	Build(ctx context.Context, deps *Deps) (*catalog.Dict, error)
}

// Deps carries the collaborators adapters work against. Canonical is the
// canonical adapter's dictionary; the engine sets it before any consumer
// runs, so downstream adapters can apply the distance cut and reuse the
// canonical hierarchy.
type Deps struct {
	Cfg      *config.Config
	Simbad   tap.Querier
	Gaia     tap.Querier
	Exo      tap.Querier
	Wds      tap.Querier
	Fetch    fetch.Fetcher
	Resolver Resolver
	Grid     *spectral.Grid

	Canonical *catalog.Dict
	Now       time.Time
}

// NewDeps wires the default collaborators from configuration.
func NewDeps(cfg *config.Config) *Deps {
	simbad := tap.NewClient(cfg.Simbad.URL,
		tap.WithMaxRec(cfg.TAP.MaxRec), tap.WithRateLimit(cfg.TAP.RPS))
	return &Deps{
		Cfg:      cfg,
		Simbad:   simbad,
		Gaia:     tap.NewClient(cfg.Gaia.URL, tap.WithMaxRec(cfg.TAP.MaxRec), tap.WithRateLimit(cfg.TAP.RPS)),
		Exo:      tap.NewClient(cfg.Exo.URL, tap.WithMaxRec(cfg.TAP.MaxRec), tap.WithRateLimit(cfg.TAP.RPS)),
		Wds:      tap.NewClient(cfg.Wds.URL, tap.WithMaxRec(cfg.TAP.MaxRec), tap.WithRateLimit(cfg.TAP.RPS)),
		Fetch:    fetch.New(),
		Resolver: NewTAPResolver(simbad),
		Now:      time.Now().UTC(),
	}
}
