package bondgraph

import (
	"github.com/google/uuid"
	"github.com/san-kum/bondgraph/internal/symbolic"
)

// StateVar is a state variable and its derivative.
type StateVar struct {
	X, DX     *symbolic.Symbol
	Owner     uuid.UUID
	OwnerName string
	Local     string
}

// PortVar is an effort/flow pair at a port.
type PortVar struct {
	E, F      *symbolic.Symbol
	Owner     uuid.UUID
	OwnerName string
	Port      int
}

// ControlVar is an input.
type ControlVar struct {
	U         *symbolic.Symbol
	Owner     uuid.UUID
	OwnerName string
	Local     string
}

// Basis holds the ordered state, port and control variables.
type Basis struct {
	States   []StateVar
	Ports    []PortVar
	Controls []ControlVar
}

// Equal reports whether two bases list the same variables in the same order.
func (b Basis) Equal(o Basis) bool {
	if len(b.States) != len(o.States) || len(b.Ports) != len(o.Ports) || len(b.Controls) != len(o.Controls) {
		return false
	}
	for i, s := range b.States {
		t := o.States[i]
		if s.X.Name() != t.X.Name() || s.DX.Name() != t.DX.Name() || s.Owner != t.Owner || s.Local != t.Local {
			return false
		}
	}
	for i, p := range b.Ports {
		q := o.Ports[i]
		if p.E.Name() != q.E.Name() || p.F.Name() != q.F.Name() || p.Owner != q.Owner || p.Port != q.Port {
			return false
		}
	}
	for i, u := range b.Controls {
		v := o.Controls[i]
		if u.U.Name() != v.U.Name() || u.Owner != v.Owner || u.Local != v.Local {
			return false
		}
	}
	return true
}
