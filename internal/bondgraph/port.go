package bondgraph

import (
	"fmt"
	"strconv"
)

// Endpoint identifies one side of a bond: a component port, a component
// whose port is chosen on connect, or one of a model's exposed ports.
type Endpoint struct {
	comp     *Component
	model    *Model
	port     int
	implicit bool
}

// Implicit refers to the only port of an atomic component, or to the next
// free port of a junction.
func Implicit(c *Component) Endpoint { return Endpoint{comp: c, implicit: true} }

// At refers to port i of c.
func At(c *Component, i int) Endpoint { return Endpoint{comp: c, port: i} }

// Component returns the owning component, nil for an exposed port.
func (ep Endpoint) Component() *Component { return ep.comp }

// Port returns the port index. It is meaningless for unresolved implicit endpoints.
func (ep Endpoint) Port() int { return ep.port }

// IsExposed reports whether the endpoint is a model port.
func (ep Endpoint) IsExposed() bool { return ep.model != nil }

func (ep Endpoint) String() string {
	switch {
	case ep.model != nil:
		return fmt.Sprintf("(%s, %d)", ep.model, ep.port)
	case ep.implicit:
		return ep.comp.String()
	}
	return portLabel(ep.comp, ep.port)
}

func (ep Endpoint) same(o Endpoint) bool {
	return ep.comp == o.comp && ep.model == o.model && ep.port == o.port
}

// matches compares against a resolved endpoint, treating implicit as any port.
func (ep Endpoint) matches(o Endpoint) bool {
	if ep.implicit {
		return ep.comp == o.comp && o.model == nil
	}
	return ep.same(o)
}

// Bond joins two resolved endpoints: e_A = e_B and f_A + f_B = 0.
type Bond struct {
	A, B Endpoint
}

func (b Bond) String() string { return b.A.String() + " -- " + b.B.String() }

func (b Bond) touches(ep Endpoint) bool { return b.A.same(ep) || b.B.same(ep) }

// varName returns the local name of an endpoint variable.
func varName(prefix string, port int) string { return prefix + "_" + strconv.Itoa(port) }
