// Package reaction turns chemical reaction networks into bond graphs.
package reaction

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/bondgraph/internal/bondgraph"
	"github.com/san-kum/bondgraph/internal/library"
	"github.com/san-kum/bondgraph/internal/symbolic"
)

// Default thermodynamic constants for non-normalised models.
const (
	DefaultGasConstant = 8.314
	DefaultTemperature = 300.0
)

// Reaction is one reversible reaction.
type Reaction struct {
	Name      string
	Text      string
	Reactants []Term
	Products  []Term
	// Rate is the reaction rate constant; nil makes it a control.
	Rate symbolic.Expr
}

// Network is a set of reactions over species numbered in first-seen order.
type Network struct {
	name        string
	species     []string
	index       map[string]int
	reactions   []Reaction
	gasConstant float64
	temperature float64
	registry    *library.Registry
	logger      *slog.Logger
}

type Option func(*Network)

// WithThermodynamics sets R and T used when the model is not normalised.
func WithThermodynamics(gasConstant, temperature float64) Option {
	return func(n *Network) {
		n.gasConstant = gasConstant
		n.temperature = temperature
	}
}

// WithRegistry sets the component registry used by AsNetworkModel.
func WithRegistry(r *library.Registry) Option {
	return func(n *Network) { n.registry = r }
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(n *Network) { n.logger = l }
}

// NewNetwork returns an empty network.
func NewNetwork(name string, opts ...Option) *Network {
	n := &Network{
		name:        name,
		index:       make(map[string]int),
		gasConstant: DefaultGasConstant,
		temperature: DefaultTemperature,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.registry == nil {
		n.registry = library.NewRegistry()
	}
	return n
}

// FromReactions builds a network and adds every reaction.
func FromReactions(name string, reactions []string, opts ...Option) (*Network, error) {
	n := NewNetwork(name, opts...)
	for _, r := range reactions {
		if err := n.AddReaction(r); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (n *Network) Name() string { return n.name }

type ReactionOption func(*Reaction)

// Named names the reaction component.
func Named(name string) ReactionOption {
	return func(r *Reaction) { r.Name = name }
}

// Rate fixes the rate constant.
func Rate(v symbolic.Expr) ReactionOption {
	return func(r *Reaction) { r.Rate = v }
}

// AddReaction parses text and appends the reaction. Nothing changes on
// error.
func (n *Network) AddReaction(text string, opts ...ReactionOption) error {
	reactants, products, err := Parse(text)
	if err != nil {
		return err
	}
	r := Reaction{Text: text, Reactants: reactants, Products: products}
	for _, opt := range opts {
		opt(&r)
	}
	for _, side := range [][]Term{reactants, products} {
		for _, t := range side {
			if _, ok := n.index[t.Species]; !ok {
				n.index[t.Species] = len(n.species)
				n.species = append(n.species, t.Species)
			}
		}
	}
	n.reactions = append(n.reactions, r)
	n.logger.Debug("reaction added", "network", n.name, "reaction", text, "species", len(n.species))
	return nil
}

// Species returns the species in first-seen order.
func (n *Network) Species() []string { return append([]string(nil), n.species...) }

// SpeciesIndex returns the row of a species in the stoichiometric matrices.
func (n *Network) SpeciesIndex(name string) (int, bool) {
	i, ok := n.index[name]
	return i, ok
}

// Reactions returns the reactions in insertion order.
func (n *Network) Reactions() []Reaction { return append([]Reaction(nil), n.reactions...) }

func (n *Network) matrix(side func(Reaction) []Term) *symbolic.Matrix {
	m := symbolic.NewMatrix(len(n.species), len(n.reactions))
	for j, r := range n.reactions {
		for _, t := range side(r) {
			m.Set(n.index[t.Species], j, symbolic.Int(int64(t.Coeff)))
		}
	}
	return m
}

// ForwardStoichiometry holds the product-side coefficients, one column
// per reaction.
func (n *Network) ForwardStoichiometry() *symbolic.Matrix {
	return n.matrix(func(r Reaction) []Term { return r.Products })
}

// ReverseStoichiometry holds the reactant-side coefficients.
func (n *Network) ReverseStoichiometry() *symbolic.Matrix {
	return n.matrix(func(r Reaction) []Term { return r.Reactants })
}

// Stoichiometry is the net production, forward minus reverse.
func (n *Network) Stoichiometry() *symbolic.Matrix {
	net, _ := n.ForwardStoichiometry().Sub(n.ReverseStoichiometry())
	return net
}

// AsNetworkModel builds the bond graph: a Ce per species, an Re per
// reaction and a Y junction on each side of every reaction with port
// weights equal to the coefficients. Species used more than once are
// anchored on a 0-junction. Normalised models use R = T = 1.
func (n *Network) AsNetworkModel(normalised bool) (*bondgraph.Model, error) {
	gas, temp := any(n.gasConstant), any(n.temperature)
	if normalised {
		gas, temp = 1, 1
	}
	thermo := map[string]any{"R": gas, "T": temp}

	m := bondgraph.NewModel(n.name)
	m.SetLogger(n.logger)

	uses := make(map[string]int)
	for _, r := range n.reactions {
		for _, t := range r.Reactants {
			uses[t.Species]++
		}
		for _, t := range r.Products {
			uses[t.Species]++
		}
	}

	anchors := make(map[string]bondgraph.Endpoint, len(n.species))
	for _, s := range n.species {
		ce, err := n.registry.New("Ce", library.WithLibrary(library.BioChem), library.WithName(s), library.WithValue(thermo))
		if err != nil {
			return nil, err
		}
		m.Add(ce)
		anchors[s] = bondgraph.Implicit(ce)
		if uses[s] < 2 {
			continue
		}
		j, err := n.registry.New("0", library.WithName("0_"+s))
		if err != nil {
			return nil, err
		}
		m.Add(j)
		if err := m.Connect(bondgraph.Implicit(ce), bondgraph.Implicit(j)); err != nil {
			return nil, err
		}
		anchors[s] = bondgraph.Implicit(j)
	}

	for _, r := range n.reactions {
		values := map[string]any{"R": gas, "T": temp}
		if r.Rate != nil {
			values["r"] = r.Rate
		}
		re, err := n.registry.New("Re", library.WithLibrary(library.BioChem), library.WithName(r.Name), library.WithValue(values))
		if err != nil {
			return nil, err
		}
		m.Add(re)
		for port, side := range [][]Term{r.Reactants, r.Products} {
			y, err := n.registry.New("Y", library.WithLibrary(library.BioChem))
			if err != nil {
				return nil, err
			}
			m.Add(y)
			if err := m.Connect(bondgraph.At(re, port), bondgraph.At(y, 0)); err != nil {
				return nil, err
			}
			for i, t := range side {
				if err := y.DeclarePort(i+1, symbolic.Int(int64(t.Coeff))); err != nil {
					return nil, err
				}
				if err := m.Connect(bondgraph.At(y, i+1), anchors[t.Species]); err != nil {
					return nil, fmt.Errorf("reaction %q: %w", r.Text, err)
				}
			}
		}
	}
	return m, nil
}
