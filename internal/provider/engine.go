package provider

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/life-td/targetdb-cli/internal/buildlog"
	"github.com/life-td/targetdb-cli/internal/catalog"
	"github.com/life-td/targetdb-cli/internal/merge"
	"github.com/life-td/targetdb-cli/internal/selector"
)

// Engine orchestrates a full build: run every adapter in registry order,
// stage each dictionary, merge, select best parameters, and write the
// final tables. Adapter failures fall back to previously staged outputs;
// only the canonical adapter with no staged copy aborts the build.
type Engine struct {
	reg   *Registry
	deps  *Deps
	store *buildlog.Store
}

// NewEngine creates a build engine. store may be nil to skip build-log
// recording.
func NewEngine(reg *Registry, deps *Deps, store *buildlog.Store) *Engine {
	return &Engine{reg: reg, deps: deps, store: store}
}

// Run executes the build and returns the final dictionary.
func (e *Engine) Run(ctx context.Context) (*catalog.Dict, error) {
	log := zap.L().With(zap.String("component", "provider.engine"))
	dir := e.deps.Cfg.StagingDir

	buildID, err := e.startBuild(ctx)
	if err != nil {
		return nil, err
	}

	var dicts []*catalog.Dict
	for _, name := range e.reg.Order() {
		select {
		case <-ctx.Done():
			return nil, e.failBuild(ctx, buildID, ctx.Err())
		default:
		}

		adapter, err := e.reg.Get(name)
		if err != nil {
			return nil, e.failBuild(ctx, buildID, err)
		}

		d, err := e.runAdapter(ctx, buildID, adapter)
		if err != nil {
			return nil, e.failBuild(ctx, buildID, err)
		}

		dicts = append(dicts, d)
		if name == simbadName {
			e.deps.Canonical = d
		}
	}

	log.Info("merging provider dictionaries", zap.Int("providers", len(dicts)))
	final, err := merge.Run(dicts)
	if err != nil {
		return nil, e.failBuild(ctx, buildID, err)
	}
	selector.Apply(final)

	if err := WriteFinal(dir, final); err != nil {
		return nil, e.failBuild(ctx, buildID, err)
	}

	e.completeBuild(ctx, buildID, final)
	log.Info("build complete", zap.String("build_id", buildID))
	return final, nil
}

// MergeStaged rebuilds the final tables from staged provider outputs
// without contacting any provider. Providers with no staged copy are
// skipped, except the canonical provider, which is required.
func MergeStaged(dir string, reg *Registry) (*catalog.Dict, error) {
	log := zap.L().With(zap.String("component", "provider.engine"))

	var dicts []*catalog.Dict
	for _, name := range reg.Order() {
		d, err := LoadStaged(dir, name)
		if err != nil {
			if name == simbadName {
				return nil, eris.Wrap(err, "engine: canonical provider has no staged copy")
			}
			log.Warn("skipping provider with no staged copy", zap.String("provider", name))
			continue
		}
		dicts = append(dicts, d)
	}

	log.Info("merging staged dictionaries", zap.Int("providers", len(dicts)))
	final, err := merge.Run(dicts)
	if err != nil {
		return nil, err
	}
	selector.Apply(final)

	if err := WriteFinal(dir, final); err != nil {
		return nil, err
	}
	return final, nil
}

// runAdapter builds one provider dictionary, staging it on success and
// reloading the prior staged copy on failure.
func (e *Engine) runAdapter(ctx context.Context, buildID string, adapter Adapter) (*catalog.Dict, error) {
	name := adapter.Name()
	log := zap.L().With(zap.String("component", "provider.engine"), zap.String("provider", name))
	dir := e.deps.Cfg.StagingDir

	var runID string
	if e.store != nil {
		var err error
		runID, err = e.store.StartProvider(ctx, buildID, name)
		if err != nil {
			log.Warn("build log unavailable", zap.Error(err))
		}
	}

	start := time.Now()
	d, err := adapter.Build(ctx, e.deps)
	if err == nil {
		if err := StageDict(dir, name, d); err != nil {
			return nil, eris.Wrapf(err, "engine: stage %s", name)
		}
		e.recordProvider(ctx, runID, nil, false)
		log.Info("provider built", zap.Duration("elapsed", time.Since(start)))
		return d, nil
	}

	log.Error("provider build failed, trying staged outputs", zap.Error(err))
	staged, loadErr := LoadStaged(dir, name)
	if loadErr != nil {
		e.recordProvider(ctx, runID, err, false)
		if name == simbadName {
			return nil, eris.Wrap(err, "engine: canonical provider failed with no staged copy")
		}
		return nil, eris.Wrapf(err, "engine: provider %s failed with no staged copy", name)
	}

	e.recordProvider(ctx, runID, nil, true)
	log.Warn("using previously staged outputs")
	return staged, nil
}

func (e *Engine) startBuild(ctx context.Context) (string, error) {
	if e.store == nil {
		return "", nil
	}
	id, err := e.store.StartBuild(ctx, e.deps.Cfg.DistanceCutPc)
	if err != nil {
		zap.L().Warn("build log unavailable", zap.Error(err))
		return "", nil
	}
	return id, nil
}

func (e *Engine) failBuild(ctx context.Context, buildID string, cause error) error {
	if e.store != nil && buildID != "" {
		if err := e.store.FailBuild(ctx, buildID, cause.Error()); err != nil {
			zap.L().Warn("failed to record build failure", zap.Error(err))
		}
	}
	return cause
}

func (e *Engine) completeBuild(ctx context.Context, buildID string, final *catalog.Dict) {
	if e.store == nil || buildID == "" {
		return
	}
	counts := map[string]int{}
	for _, table := range catalog.AllTables {
		counts[table] = final.Len(table)
	}
	if err := e.store.RecordCounts(ctx, buildID, counts); err != nil {
		zap.L().Warn("failed to record table counts", zap.Error(err))
	}
	if err := e.store.CompleteBuild(ctx, buildID); err != nil {
		zap.L().Warn("failed to record build completion", zap.Error(err))
	}
}

func (e *Engine) recordProvider(ctx context.Context, runID string, cause error, staged bool) {
	if e.store == nil || runID == "" {
		return
	}
	var err error
	if cause != nil {
		err = e.store.FailProvider(ctx, runID, cause.Error())
	} else {
		err = e.store.CompleteProvider(ctx, runID, staged)
	}
	if err != nil {
		zap.L().Warn("failed to record provider run", zap.Error(err))
	}
}
