package bondgraph

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/san-kum/bondgraph/internal/symbolic"
)

// LocalVar is one local name of one owner.
type LocalVar struct {
	Owner uuid.UUID
	Name  string
}

// Mappings relates the local variables of every owner to coordinate indices.
type Mappings struct {
	index map[LocalVar]int
}

func newMappings() Mappings {
	return Mappings{index: make(map[LocalVar]int)}
}

func (m Mappings) set(owner uuid.UUID, local string, i int) {
	m.index[LocalVar{Owner: owner, Name: local}] = i
}

// Index returns the coordinate of a local variable.
func (m Mappings) Index(owner uuid.UUID, local string) (int, bool) {
	i, ok := m.index[LocalVar{Owner: owner, Name: local}]
	return i, ok
}

// Local returns the local name to coordinate map of one owner.
func (m Mappings) Local(owner uuid.UUID) map[string]int {
	out := make(map[string]int)
	for k, i := range m.index {
		if k.Owner == owner {
			out[k.Name] = i
		}
	}
	return out
}

// Inverse returns, per coordinate, the local variables mapped onto it.
func (m Mappings) Inverse() map[int][]LocalVar {
	out := make(map[int][]LocalVar)
	for k, i := range m.index {
		out[i] = append(out[i], k)
	}
	for _, vs := range out {
		sort.Slice(vs, func(a, b int) bool {
			if vs[a].Owner != vs[b].Owner {
				return vs[a].Owner.String() < vs[b].Owner.String()
			}
			return vs[a].Name < vs[b].Name
		})
	}
	return out
}

// Len returns the number of mapped local variables.
func (m Mappings) Len() int { return len(m.index) }

// shift returns a copy with every coordinate moved by n.
func (m Mappings) shift(n int) Mappings {
	out := newMappings()
	for k, i := range m.index {
		out.index[k] = i + n
	}
	return out
}

// InverseCoordMaps lays out the coordinates of a basis as
// [dx..., e_0, f_0, ..., x..., u...] and maps every owner's local names
// onto them.
func InverseCoordMaps(b Basis) (Mappings, []symbolic.Expr) {
	m := newMappings()
	coords := make([]symbolic.Expr, 0, 2*len(b.States)+2*len(b.Ports)+len(b.Controls))

	for _, s := range b.States {
		m.set(s.Owner, "d"+s.Local, len(coords))
		coords = append(coords, s.DX)
	}
	for _, p := range b.Ports {
		n := strconv.Itoa(p.Port)
		m.set(p.Owner, "e_"+n, len(coords))
		coords = append(coords, p.E)
		m.set(p.Owner, "f_"+n, len(coords))
		coords = append(coords, p.F)
	}
	for _, s := range b.States {
		m.set(s.Owner, s.Local, len(coords))
		coords = append(coords, s.X)
	}
	for _, u := range b.Controls {
		m.set(u.Owner, u.Local, len(coords))
		coords = append(coords, u.U)
	}
	return m, coords
}
