package bondgraph

import (
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/san-kum/bondgraph/internal/symbolic"
)

// Part is anything that can be composed into a model.
type Part interface {
	isPart()
}

func (*Component) isPart() {}
func (*Model) isPart()     {}

// Model is a bond graph: an arena of components, the bonds between their
// ports and a registry of exposed ports.
type Model struct {
	id         uuid.UUID
	name       string
	components []*Component
	members    map[uuid.UUID]int
	bonds      []Bond
	ports      int
	links      map[Endpoint]Endpoint
	inner      map[*Model]bool
	observers  []AssemblyObserver
	logger     *slog.Logger
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{
		id:      uuid.New(),
		name:    name,
		members: make(map[uuid.UUID]int),
		links:   make(map[Endpoint]Endpoint),
		inner:   make(map[*Model]bool),
		logger:  slog.Default(),
	}
}

// Compose returns a new model holding every part. Models are flattened with
// their bonds. Their exposed ports become private connection points: the
// outer model accepts inner.Exposed(i) in Connect and bonds it to whatever
// the port was bonded to inside. Only MakePort adds ports to the result.
func Compose(parts ...Part) *Model {
	m := NewModel("")
	m.Add(parts...)
	return m
}

func (m *Model) ID() uuid.UUID { return m.id }
func (m *Model) Name() string  { return m.name }

func (m *Model) SetName(name string) { m.name = name }

func (m *Model) String() string {
	if m.name == "" {
		return "model"
	}
	return m.name
}

// SetLogger replaces the logger used for debug tracing.
func (m *Model) SetLogger(l *slog.Logger) {
	if l != nil {
		m.logger = l
	}
}

// Observe registers an observer notified after every assembly.
func (m *Model) Observe(o AssemblyObserver) {
	m.observers = append(m.observers, o)
}

// Add appends parts in place. Components already in the model are skipped,
// so existing global indices never move.
func (m *Model) Add(parts ...Part) {
	for _, p := range parts {
		switch v := p.(type) {
		case *Component:
			m.addComponent(v)
		case *Model:
			m.merge(v)
		}
	}
}

func (m *Model) addComponent(c *Component) {
	if c == nil {
		return
	}
	if _, ok := m.members[c.id]; ok {
		return
	}
	if c.name == "" {
		c.name = m.freshName(c.typ)
	}
	m.members[c.id] = len(m.components)
	m.components = append(m.components, c)
	m.logger.Debug("component added", "model", m.String(), "component", c.name, "type", c.typ)
}

func (m *Model) freshName(typ string) string {
	used := make(map[string]bool, len(m.components))
	for _, c := range m.components {
		used[c.name] = true
	}
	for n := 0; ; n++ {
		name := typ + "_" + strconv.Itoa(n)
		if !used[name] {
			return name
		}
	}
}

func (m *Model) merge(o *Model) {
	if o == nil || o == m || m.inner[o] {
		return
	}
	for _, c := range o.components {
		m.addComponent(c)
	}
	m.inner[o] = true
	for k := range o.inner {
		m.inner[k] = true
	}
	for k, v := range o.links {
		m.links[k] = v
	}
	for _, b := range o.bonds {
		switch {
		case b.A.model == o && b.B.model == o:
			// Wired straight through; neither side has a component to stand in.
			m.links[b.A] = b.B
			m.links[b.B] = b.A
		case b.A.model == o:
			m.links[b.A] = b.B
		case b.B.model == o:
			m.links[b.B] = b.A
		case !m.hasBond(b):
			m.bonds = append(m.bonds, b)
		}
	}
}

func (m *Model) hasBond(b Bond) bool {
	for _, x := range m.bonds {
		if (x.A.same(b.A) && x.B.same(b.B)) || (x.A.same(b.B) && x.B.same(b.A)) {
			return true
		}
	}
	return false
}

// Components returns the components in insertion order.
func (m *Model) Components() []*Component {
	return append([]*Component(nil), m.components...)
}

// Component looks a component up by name.
func (m *Model) Component(name string) (*Component, bool) {
	for _, c := range m.components {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Contains reports whether c is part of the model.
func (m *Model) Contains(c *Component) bool {
	_, ok := m.members[c.id]
	return ok
}

// Bonds returns the bonds in connection order.
func (m *Model) Bonds() []Bond {
	return append([]Bond(nil), m.bonds...)
}

// MakePort allocates a new exposed port and returns its index.
func (m *Model) MakePort() int {
	i := m.ports
	m.ports++
	return i
}

// Exposed refers to exposed port i of the model.
func (m *Model) Exposed(i int) Endpoint { return Endpoint{model: m, port: i} }

// Ports returns the exposed port indices.
func (m *Model) Ports() []int {
	out := make([]int, m.ports)
	for i := range out {
		out[i] = i
	}
	return out
}

// Connect bonds two endpoints. Both are validated before anything changes.
func (m *Model) Connect(a, b Endpoint) error {
	ra, err := m.resolve(a, nil)
	if err != nil {
		return err
	}
	rb, err := m.resolve(b, &ra)
	if err != nil {
		return err
	}
	if ra.same(rb) {
		return &PortError{Endpoint: ra.String(), Reason: "cannot bond a port to itself"}
	}
	for _, ep := range []Endpoint{ra, rb} {
		if ep.comp != nil {
			ep.comp.createPort(ep.port)
		}
	}
	m.bonds = append(m.bonds, Bond{A: ra, B: rb})
	m.logger.Debug("bond connected", "model", m.String(), "a", ra.String(), "b", rb.String())
	return nil
}

// Disconnect removes the bond between a and b. Dynamic ports persist.
func (m *Model) Disconnect(a, b Endpoint) error {
	a, b = m.follow(a), m.follow(b)
	for i, x := range m.bonds {
		if (a.matches(x.A) && b.matches(x.B)) || (a.matches(x.B) && b.matches(x.A)) {
			m.bonds = append(m.bonds[:i:i], m.bonds[i+1:]...)
			m.logger.Debug("bond removed", "model", m.String(), "bond", x.String())
			return nil
		}
	}
	return &PortError{Endpoint: a.String() + " -- " + b.String(), Reason: "no such bond"}
}

// follow replaces an exposed port of a merged model by its inner partner.
func (m *Model) follow(ep Endpoint) Endpoint {
	if ep.model == nil || ep.model == m {
		return ep
	}
	if t, ok := m.links[Endpoint{model: ep.model, port: ep.port}]; ok && t.model == nil {
		return t
	}
	return ep
}

func (m *Model) occupied(ep Endpoint) bool {
	for _, b := range m.bonds {
		if b.touches(ep) {
			return true
		}
	}
	return false
}

// resolve validates ep and picks a concrete port. taken is the endpoint
// already chosen for the other side of the same connect.
func (m *Model) resolve(ep Endpoint, taken *Endpoint) (Endpoint, error) {
	free := func(r Endpoint) bool {
		return !m.occupied(r) && (taken == nil || !taken.same(r))
	}

	if ep.model != nil && ep.model != m {
		if !m.inner[ep.model] {
			return Endpoint{}, &PortError{Endpoint: ep.String(), Reason: "port belongs to another model"}
		}
		t, ok := m.links[Endpoint{model: ep.model, port: ep.port}]
		switch {
		case !ok:
			return Endpoint{}, &PortError{Endpoint: ep.String(), Reason: "port is not bonded inside " + ep.model.String()}
		case t.model != nil:
			return Endpoint{}, &PortError{Endpoint: ep.String(), Reason: "port is wired straight to " + t.String()}
		case !free(t):
			return Endpoint{}, &PortError{Endpoint: ep.String(), Reason: "port is already bonded"}
		}
		return t, nil
	}
	if ep.model != nil {
		switch {
		case ep.port < 0 || ep.port >= m.ports:
			return Endpoint{}, &PortError{Endpoint: ep.String(), Reason: "no such exposed port"}
		case !free(ep):
			return Endpoint{}, &PortError{Endpoint: ep.String(), Reason: "port is already bonded"}
		}
		return ep, nil
	}

	c := ep.comp
	if c == nil {
		return Endpoint{}, &PortError{Endpoint: "<nil>", Reason: "no component"}
	}
	if !m.Contains(c) {
		return Endpoint{}, &PortError{Endpoint: ep.String(), Reason: "component is not part of " + m.String()}
	}

	if ep.implicit {
		idx := c.portIndices()
		if !c.kind.IsJunction() {
			if len(idx) != 1 {
				return Endpoint{}, &PortError{
					Endpoint: ep.String(),
					Reason:   "component has " + strconv.Itoa(len(idx)) + " ports, name one explicitly",
				}
			}
			r := At(c, idx[0])
			if !free(r) {
				return Endpoint{}, &PortError{Endpoint: r.String(), Reason: "port is already bonded"}
			}
			return r, nil
		}
		next := 0
		for _, i := range idx {
			if r := At(c, i); free(r) {
				return r, nil
			}
			next = i + 1
		}
		if taken != nil && taken.comp == c && taken.port >= next {
			next = taken.port + 1
		}
		return At(c, next), nil
	}

	if _, ok := c.ports[ep.port]; !ok && (!c.kind.IsJunction() || ep.port < 0) {
		return Endpoint{}, &PortError{Endpoint: ep.String(), Reason: "no such port"}
	}
	if !free(ep) {
		return Endpoint{}, &PortError{Endpoint: ep.String(), Reason: "port is already bonded"}
	}
	return At(c, ep.port), nil
}

// Param is a parameter whose value involves free symbols.
type Param struct {
	Component *Component
	Name      string
	Value     symbolic.Expr
}

// Params lists symbolic parameter values. A value is listed when it
// introduces a free symbol no earlier value carried, so r and 2*r on two
// components yield a single entry.
func (m *Model) Params() []Param {
	var out []Param
	seen := make(map[string]bool)
	for _, c := range m.components {
		for _, p := range c.params {
			if p.Value == nil {
				continue
			}
			fresh := false
			for _, s := range symbolic.Symbols(p.Value) {
				if !seen[s] {
					seen[s] = true
					fresh = true
				}
			}
			if fresh {
				out = append(out, Param{Component: c, Name: p.Name, Value: p.Value})
			}
		}
	}
	return out
}

// BasisVectors numbers states x_i and controls u_i by component insertion
// order then local order, and exposed ports by creation order.
func (m *Model) BasisVectors() Basis {
	var b Basis
	for _, c := range m.components {
		for _, x := range c.StateVars() {
			k := strconv.Itoa(len(b.States))
			b.States = append(b.States, StateVar{
				X: symbolic.Sym("x_" + k), DX: symbolic.Sym("dx_" + k),
				Owner: c.id, OwnerName: c.name, Local: x,
			})
		}
	}
	for i := 0; i < m.ports; i++ {
		b.Ports = append(b.Ports, PortVar{
			E: symbolic.Sym(varName("e", i)), F: symbolic.Sym(varName("f", i)),
			Owner: m.id, OwnerName: m.String(), Port: i,
		})
	}
	for _, c := range m.components {
		for _, u := range c.ControlVars() {
			b.Controls = append(b.Controls, ControlVar{
				U: symbolic.Sym(varName("u", len(b.Controls))), Owner: c.id, OwnerName: c.name, Local: u,
			})
		}
	}
	return b
}

// StateVars returns the global state names.
func (m *Model) StateVars() []string {
	var out []string
	for _, s := range m.BasisVectors().States {
		out = append(out, s.X.Name())
	}
	return out
}

// ControlVars returns the global control names.
func (m *Model) ControlVars() []string {
	var out []string
	for _, u := range m.BasisVectors().Controls {
		out = append(out, u.U.Name())
	}
	return out
}
