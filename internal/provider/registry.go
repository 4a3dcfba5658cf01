package provider

import "github.com/rotisserie/eris"

// Registry maps provider names to their adapters. The registration order
// is the run order and encodes the adapter dependencies: the canonical
// adapter first, then the consumers of its object set and hierarchy, with
// the derived adapter before the Gaia adapter so it only models the
// canonical sample.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry creates a registry populated with every adapter.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	r.Register(Simbad{})
	r.Register(SDB{})
	r.Register(WDS{})
	r.Register(Exo{})
	r.Register(Life{})
	r.Register(Gaia{})
	return r
}

// Register adds an adapter to the registry.
func (r *Registry) Register(a Adapter) {
	name := a.Name()
	r.adapters[name] = a
	r.order = append(r.order, name)
}

// Get returns an adapter by name.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[name]
	if !ok {
		return nil, eris.Errorf("provider: unknown provider %q", name)
	}
	return a, nil
}

// Order returns the provider names in run order.
func (r *Registry) Order() []string { return append([]string(nil), r.order...) }
