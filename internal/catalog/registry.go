// Package catalog names ready-made bond graph models: a few hand-wired
// mechanical/electrical circuits plus every reaction network known to the
// configuration.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/san-kum/bondgraph/internal/bondgraph"
	"github.com/san-kum/bondgraph/internal/config"
	"github.com/san-kum/bondgraph/internal/library"
	"github.com/san-kum/bondgraph/internal/reaction"
)

var ErrUnknownModel = errors.New("catalog: unknown model")

// Builder wires a model from registry components.
type Builder func(lib *library.Registry) (*bondgraph.Model, error)

type Registry struct {
	cfg       *config.Config
	lib       *library.Registry
	logger    *slog.Logger
	observers []bondgraph.AssemblyObserver
	models    map[string]Builder
}

type Option func(*Registry)

// WithLibrary supplies the component registry. The configured library
// becomes its default.
func WithLibrary(lib *library.Registry) Option { return func(r *Registry) { r.lib = lib } }

func WithLogger(l *slog.Logger) Option { return func(r *Registry) { r.logger = l } }

// WithObserver attaches o to every model the registry hands out.
func WithObserver(o bondgraph.AssemblyObserver) Option {
	return func(r *Registry) { r.observers = append(r.observers, o) }
}

func NewRegistry(cfg *config.Config, opts ...Option) *Registry {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	r := &Registry{
		cfg:    cfg,
		logger: slog.Default(),
		models: make(map[string]Builder),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.lib == nil {
		r.lib = library.NewRegistry()
		r.lib.SetLogger(r.logger)
	}
	if err := r.lib.SetDefault(cfg.Library); err != nil {
		r.logger.Warn("configured library ignored", "library", cfg.Library, "err", err)
	}

	r.models["rlc"] = RLC
	r.models["driven_rlc"] = DrivenRLC
	r.models["tf_lc"] = TransformerLC
	r.models["se_c"] = SourceCapacitor
	return r
}

// Register adds or replaces a hand-wired model.
func (r *Registry) Register(name string, b Builder) { r.models[name] = b }

// GetModel builds a hand-wired model, or the bond graph of a reaction
// network when no such model exists.
func (r *Registry) GetModel(name string) (*bondgraph.Model, error) {
	var (
		m   *bondgraph.Model
		err error
	)
	if fn, ok := r.models[name]; ok {
		m, err = fn(r.lib)
	} else {
		var n *reaction.Network
		if n, err = r.GetNetwork(name); err == nil {
			m, err = n.AsNetworkModel(r.cfg.Normalised)
		}
	}
	if err != nil {
		return nil, err
	}
	m.SetName(name)
	m.SetLogger(r.logger)
	for _, o := range r.observers {
		m.Observe(o)
	}
	return m, nil
}

// GetNetwork parses a configured or preset reaction network.
func (r *Registry) GetNetwork(name string) (*reaction.Network, error) {
	rs, ok := r.cfg.Network(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	n, err := reaction.FromReactions(name, rs,
		reaction.WithRegistry(r.lib),
		reaction.WithLogger(r.logger),
		reaction.WithThermodynamics(r.cfg.GasConstant, r.cfg.Temperature),
	)
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", name, err)
	}
	return n, nil
}

// ListModels returns hand-wired models followed by reaction networks.
func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range r.ListNetworks() {
		if _, ok := r.models[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

func (r *Registry) ListNetworks() []string { return r.cfg.NetworkNames() }
