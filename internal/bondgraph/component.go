package bondgraph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/san-kum/bondgraph/internal/symbolic"
)

// Kind is the closed set of component variants.
type Kind int

const (
	Atomic Kind = iota
	ZeroJunction
	OneJunction
	StoichiometricJunction
)

func (k Kind) String() string {
	switch k {
	case ZeroJunction:
		return "0-junction"
	case OneJunction:
		return "1-junction"
	case StoichiometricJunction:
		return "stoichiometric junction"
	}
	return "atomic"
}

// IsJunction reports whether ports are created on demand.
func (k Kind) IsJunction() bool { return k != Atomic }

// Port is a component port. Weight is only meaningful on junctions.
type Port struct {
	Index  int
	Name   string
	Weight symbolic.Expr
	Fixed  bool
}

// Parameter is a named constant. A parameter without a value is a control
// variable whose local name is the parameter name.
type Parameter struct {
	Name  string
	Value symbolic.Expr
}

// Definition describes a primitive type. Relations are written over
// e_i, f_i, x_i, dx_i and the parameter names.
type Definition struct {
	Type        string
	Library     string
	Description string
	Kind        Kind
	Ports       []Port
	Params      []string
	States      int
	Relations   []string
}

// Component is a typed node of a bond graph.
type Component struct {
	id        uuid.UUID
	typ       string
	library   string
	desc      string
	kind      Kind
	name      string
	states    int
	ports     map[int]*Port
	params    []Parameter
	relations []symbolic.Expr
}

// NewComponent instantiates a definition with every parameter unset.
func NewComponent(def Definition) (*Component, error) {
	c := &Component{
		id:      uuid.New(),
		typ:     def.Type,
		library: def.Library,
		desc:    def.Description,
		kind:    def.Kind,
		states:  def.States,
		ports:   make(map[int]*Port, len(def.Ports)),
		params:  make([]Parameter, len(def.Params)),
	}
	for _, p := range def.Ports {
		p := p
		p.Fixed = true
		if p.Weight == nil {
			p.Weight = symbolic.Int(1)
		}
		c.ports[p.Index] = &p
	}
	for i, name := range def.Params {
		c.params[i] = Parameter{Name: name}
	}
	for _, rel := range def.Relations {
		e, err := symbolic.Parse(rel)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, def.Type, err)
		}
		c.relations = append(c.relations, e)
	}
	return c, nil
}

func (c *Component) ID() uuid.UUID       { return c.id }
func (c *Component) Type() string        { return c.typ }
func (c *Component) Library() string     { return c.library }
func (c *Component) Description() string { return c.desc }
func (c *Component) Kind() Kind          { return c.kind }
func (c *Component) Name() string        { return c.name }

// SetName sets the component name. Models name unnamed components on insertion.
func (c *Component) SetName(name string) { c.name = name }

func (c *Component) String() string {
	if c.name == "" {
		return c.typ
	}
	return c.name
}

// Ports returns the ports in index order.
func (c *Component) Ports() []Port {
	out := make([]Port, 0, len(c.ports))
	for _, i := range c.portIndices() {
		out = append(out, *c.ports[i])
	}
	return out
}

// Port returns the port with index i.
func (c *Component) Port(i int) (Port, bool) {
	p, ok := c.ports[i]
	if !ok {
		return Port{}, false
	}
	return *p, true
}

func (c *Component) portIndices() []int {
	idx := make([]int, 0, len(c.ports))
	for i := range c.ports {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// DeclarePort creates or reweights a dynamic port of a junction before it
// is connected.
func (c *Component) DeclarePort(index int, weight symbolic.Expr) error {
	if !c.kind.IsJunction() {
		return &PortError{Endpoint: portLabel(c, index), Reason: "ports of " + c.kind.String() + " components are fixed"}
	}
	if index < 0 {
		return &PortError{Endpoint: portLabel(c, index), Reason: "negative port index"}
	}
	if p, ok := c.ports[index]; ok && p.Fixed {
		return &PortError{Endpoint: portLabel(c, index), Reason: "port is fixed"}
	}
	if weight == nil {
		weight = symbolic.Int(1)
	}
	c.ports[index] = &Port{Index: index, Weight: weight}
	return nil
}

func (c *Component) createPort(index int) {
	if _, ok := c.ports[index]; !ok {
		c.ports[index] = &Port{Index: index, Weight: symbolic.Int(1)}
	}
}

// Params returns the parameters in declaration order.
func (c *Component) Params() []Parameter {
	return append([]Parameter(nil), c.params...)
}

// Param returns the value of a parameter; nil means it is a control.
func (c *Component) Param(name string) (symbolic.Expr, bool) {
	for _, p := range c.params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// SetParam assigns a value. A nil value turns the parameter into a control.
func (c *Component) SetParam(name string, value symbolic.Expr) error {
	for i := range c.params {
		if c.params[i].Name == name {
			c.params[i].Value = value
			return nil
		}
	}
	return fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParameter, c, name)
}

// StateVars returns the local state names x_0, x_1, ...
func (c *Component) StateVars() []string {
	out := make([]string, c.states)
	for i := range out {
		out[i] = "x_" + strconv.Itoa(i)
	}
	return out
}

// ControlVars returns the names of parameters without a value.
func (c *Component) ControlVars() []string {
	var out []string
	for _, p := range c.params {
		if p.Value == nil {
			out = append(out, p.Name)
		}
	}
	return out
}

// LocalRelations returns the relations over local names with parameter
// values substituted.
func (c *Component) LocalRelations() []symbolic.Expr {
	if c.kind.IsJunction() {
		return c.junctionRelations()
	}
	values := make(map[string]symbolic.Expr)
	for _, p := range c.params {
		if p.Value != nil {
			values[p.Name] = p.Value
		}
	}
	out := make([]symbolic.Expr, len(c.relations))
	for i, r := range c.relations {
		out[i] = symbolic.Subs(r, values)
	}
	return out
}

// ConstitutiveRelations returns the simplified local relations, each read
// as "= 0".
func (c *Component) ConstitutiveRelations() []symbolic.Expr {
	rels := c.LocalRelations()
	for i, r := range rels {
		rels[i] = symbolic.Simplify(r)
	}
	return rels
}

func (c *Component) junctionRelations() []symbolic.Expr {
	idx := c.portIndices()
	if len(idx) == 0 {
		return nil
	}
	e := func(i int) symbolic.Expr { return symbolic.Sym("e_" + strconv.Itoa(i)) }
	f := func(i int) symbolic.Expr { return symbolic.Sym("f_" + strconv.Itoa(i)) }
	w := func(i int) symbolic.Expr {
		if c.kind == OneJunction {
			return symbolic.Int(1)
		}
		return c.ports[i].Weight
	}

	var rels, sum []symbolic.Expr
	p0 := idx[0]
	switch c.kind {
	case ZeroJunction:
		for _, i := range idx[1:] {
			rels = append(rels, symbolic.Sub(e(p0), e(i)))
		}
		for _, i := range idx {
			sum = append(sum, f(i))
		}
	default:
		for _, i := range idx {
			sum = append(sum, symbolic.Mul(w(i), e(i)))
		}
		for _, i := range idx[1:] {
			rels = append(rels, symbolic.Sub(symbolic.Mul(w(p0), f(i)), symbolic.Mul(w(i), f(p0))))
		}
	}
	return append([]symbolic.Expr{symbolic.Add(sum...)}, rels...)
}

// isLocal reports whether name is one of the component's own variables.
func (c *Component) isLocal(name string) bool {
	for _, prefix := range []string{"dx_", "x_", "e_", "f_"} {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		i, err := strconv.Atoi(rest)
		if err != nil {
			return false
		}
		if prefix == "e_" || prefix == "f_" {
			_, ok := c.ports[i]
			return ok
		}
		return i < c.states
	}
	for _, u := range c.ControlVars() {
		if u == name {
			return true
		}
	}
	return false
}

// BasisVectors returns the component's own variables under local names.
func (c *Component) BasisVectors() Basis {
	var b Basis
	for _, x := range c.StateVars() {
		b.States = append(b.States, StateVar{
			X: symbolic.Sym(x), DX: symbolic.Sym("d" + x),
			Owner: c.id, OwnerName: c.String(), Local: x,
		})
	}
	for _, i := range c.portIndices() {
		b.Ports = append(b.Ports, PortVar{
			E: symbolic.Sym("e_" + strconv.Itoa(i)), F: symbolic.Sym("f_" + strconv.Itoa(i)),
			Owner: c.id, OwnerName: c.String(), Port: i,
		})
	}
	for _, u := range c.ControlVars() {
		b.Controls = append(b.Controls, ControlVar{
			U: symbolic.Sym(u), Owner: c.id, OwnerName: c.String(), Local: u,
		})
	}
	return b
}

// Relations maps every local relation into the coordinates described by m
// and decomposes it into linear and nonlinear parts.
func (c *Component) Relations(m Mappings, coords []symbolic.Expr) ([]Relation, error) {
	index := m.Local(c.id)
	rels := c.LocalRelations()
	out := make([]Relation, 0, len(rels))
	for _, r := range rels {
		for _, s := range symbolic.Symbols(r) {
			if _, ok := index[s]; !ok && c.isLocal(s) {
				return nil, &ConsistencyError{
					Model:    c.String(),
					Relation: r.String(),
					Reason:   fmt.Sprintf("variable %s has no coordinate", s),
				}
			}
		}
		lin, nl := ExtractCoefficients(r, index, coords)
		out = append(out, Relation{Linear: lin, Nonlinear: nl})
	}
	return out, nil
}

func portLabel(c *Component, port int) string {
	return fmt.Sprintf("(%s, %d)", c, port)
}
