// Package library resolves type tags into bond graph components.
package library

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"sort"

	"github.com/san-kum/bondgraph/internal/bondgraph"
	"github.com/san-kum/bondgraph/internal/symbolic"
)

var (
	ErrUnknownComponent = errors.New("library: unknown component")
	ErrInvalidValue     = errors.New("library: invalid value")
)

type Registry struct {
	libraries map[string]map[string]bondgraph.Definition
	preferred string
	logger    *slog.Logger
}

// NewRegistry returns a registry with the base and BioChem libraries.
func NewRegistry() *Registry {
	r := &Registry{
		libraries: make(map[string]map[string]bondgraph.Definition),
		preferred: Base,
		logger:    slog.Default(),
	}
	for _, d := range baseDefinitions {
		d.Library = Base
		r.Register(d)
	}
	for _, d := range bioChemDefinitions {
		d.Library = BioChem
		r.Register(d)
	}
	return r
}

// SetLogger replaces the logger used for debug tracing.
func (r *Registry) SetLogger(l *slog.Logger) {
	if l != nil {
		r.logger = l
	}
}

// SetDefault makes name the library searched first when New is called
// without WithLibrary.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.libraries[name]; !ok {
		return fmt.Errorf("%w: no library %q", ErrUnknownComponent, name)
	}
	r.preferred = name
	return nil
}

// Register adds or replaces a definition. An empty library means Base.
func (r *Registry) Register(def bondgraph.Definition) {
	if def.Library == "" {
		def.Library = Base
	}
	lib, ok := r.libraries[def.Library]
	if !ok {
		lib = make(map[string]bondgraph.Definition)
		r.libraries[def.Library] = lib
	}
	lib[def.Type] = def
}

// Definition looks a type up in one library.
func (r *Registry) Definition(library, typ string) (bondgraph.Definition, bool) {
	d, ok := r.libraries[library][typ]
	return d, ok
}

// Libraries lists the library names.
func (r *Registry) Libraries() []string {
	out := make([]string, 0, len(r.libraries))
	for name := range r.libraries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Types lists the type tags of one library.
func (r *Registry) Types(library string) []string {
	out := make([]string, 0, len(r.libraries[library]))
	for typ := range r.libraries[library] {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

type options struct {
	library string
	name    string
	value   any
	set     bool
}

type Option func(*options)

// WithLibrary selects the library. Without it the default library (Base
// unless SetDefault changed it) is searched first, then any library that
// uniquely defines the type.
func WithLibrary(name string) Option { return func(o *options) { o.library = name } }

// WithName names the component.
func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithValue assigns parameter values. Accepted forms: a scalar, string or
// symbolic.Expr for the first parameter; a slice for positional values; a
// map for named values. A nil element leaves that parameter a control.
func WithValue(v any) Option {
	return func(o *options) {
		o.value = v
		o.set = true
	}
}

// New builds a component of the given type.
func (r *Registry) New(typ string, opts ...Option) (*bondgraph.Component, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	def, err := r.lookup(typ, o.library)
	if err != nil {
		return nil, err
	}
	c, err := bondgraph.NewComponent(def)
	if err != nil {
		return nil, err
	}
	c.SetName(o.name)
	if o.set {
		if err := assign(c, def.Params, o.value); err != nil {
			return nil, err
		}
	}
	r.logger.Debug("component created", "type", typ, "library", def.Library, "name", o.name)
	return c, nil
}

func (r *Registry) lookup(typ, library string) (bondgraph.Definition, error) {
	if library != "" {
		if _, ok := r.libraries[library]; !ok {
			return bondgraph.Definition{}, fmt.Errorf("%w: no library %q", ErrUnknownComponent, library)
		}
		if d, ok := r.Definition(library, typ); ok {
			return d, nil
		}
		return bondgraph.Definition{}, fmt.Errorf("%w: %s/%s", ErrUnknownComponent, library, typ)
	}
	if d, ok := r.Definition(r.preferred, typ); ok {
		return d, nil
	}
	var found []bondgraph.Definition
	for _, name := range r.Libraries() {
		if d, ok := r.Definition(name, typ); ok {
			found = append(found, d)
		}
	}
	switch len(found) {
	case 0:
		return bondgraph.Definition{}, fmt.Errorf("%w: %s", ErrUnknownComponent, typ)
	case 1:
		return found[0], nil
	}
	return bondgraph.Definition{}, fmt.Errorf("%w: %s is defined by several libraries, use WithLibrary", ErrUnknownComponent, typ)
}

func assign(c *bondgraph.Component, params []string, value any) error {
	set := func(name string, v any) error {
		e, err := ToExpr(v)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", c.Type(), name, err)
		}
		return c.SetParam(name, e)
	}

	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return assignNamed(c, v, set)
	case map[string]float64:
		return assignNamed(c, v, set)
	case map[string]int:
		return assignNamed(c, v, set)
	case []any:
		return assignPositional(c, params, v, set)
	case []float64:
		return assignPositional(c, params, v, set)
	case []int:
		return assignPositional(c, params, v, set)
	case []string:
		return assignPositional(c, params, v, set)
	}
	if len(params) == 0 {
		return fmt.Errorf("%w: %s takes no parameters", ErrInvalidValue, c.Type())
	}
	return set(params[0], value)
}

func assignNamed[V any](c *bondgraph.Component, values map[string]V, set func(string, any) error) error {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if _, ok := c.Param(k); !ok {
			return fmt.Errorf("%w: %s has no parameter %q", ErrInvalidValue, c.Type(), k)
		}
		if err := set(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

func assignPositional[V any](c *bondgraph.Component, params []string, values []V, set func(string, any) error) error {
	if len(values) > len(params) {
		return fmt.Errorf("%w: %s takes %d parameters, got %d", ErrInvalidValue, c.Type(), len(params), len(values))
	}
	for i, v := range values {
		if err := set(params[i], v); err != nil {
			return err
		}
	}
	return nil
}

// ToExpr converts a scalar value specification into an expression. nil
// yields nil, meaning the parameter stays a control.
func ToExpr(v any) (symbolic.Expr, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case symbolic.Expr:
		return x, nil
	case int:
		return symbolic.Int(int64(x)), nil
	case int64:
		return symbolic.Int(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, x)
		}
		return symbolic.Float(x), nil
	case *big.Rat:
		return symbolic.NewNum(x), nil
	case string:
		e, err := symbolic.Parse(x)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		return e, nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, v)
}
