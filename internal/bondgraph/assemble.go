package bondgraph

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/bondgraph/internal/symbolic"
)

// System is the reduced equation system of a model: for each row i,
// Σ_j Linear[i][j]*Coords[j] + Nonlinear[i] = 0.
type System struct {
	Coords    []symbolic.Expr
	Mappings  Mappings
	Linear    *symbolic.Matrix
	Nonlinear []symbolic.Expr
}

// IsLinear reports whether every nonlinear residual is zero.
func (s *System) IsLinear() bool {
	for _, n := range s.Nonlinear {
		if !symbolic.IsZero(n) {
			return false
		}
	}
	return true
}

// Relations returns the rows as expressions. A row whose leading
// coefficient is 1 is expanded, so dx_0 - x_1/c stays a sum; other rows are
// brought over a common denominator.
func (s *System) Relations() []symbolic.Expr {
	out := make([]symbolic.Expr, len(s.Nonlinear))
	for i := range out {
		terms := []symbolic.Expr{s.Nonlinear[i]}
		for j, c := range s.Coords {
			terms = append(terms, symbolic.Mul(s.Linear.At(i, j), c))
		}
		if s.unitPivot(i) {
			out[i] = symbolic.Expand(symbolic.Add(terms...))
		} else {
			out[i] = symbolic.Simplify(symbolic.Add(terms...))
		}
	}
	return out
}

func (s *System) unitPivot(i int) bool {
	for j := range s.Coords {
		if c := s.Linear.At(i, j); !symbolic.IsZero(c) {
			return symbolic.Equal(symbolic.Simplify(c), symbolic.Int(1))
		}
	}
	return false
}

// row is one equation during reduction.
type row struct {
	lin []symbolic.Expr
	nl  symbolic.Expr
}

func newRow(n int) row {
	r := row{lin: make([]symbolic.Expr, n), nl: symbolic.Int(0)}
	for i := range r.lin {
		r.lin[i] = symbolic.Int(0)
	}
	return r
}

func (r row) expr(coords []symbolic.Expr) symbolic.Expr {
	terms := []symbolic.Expr{r.nl}
	for j, c := range coords {
		terms = append(terms, symbolic.Mul(r.lin[j], c))
	}
	return symbolic.Add(terms...)
}

func (r row) isZero() bool {
	for _, v := range r.lin {
		if !symbolic.IsZero(v) {
			return false
		}
	}
	return symbolic.IsZero(r.nl)
}

// assembly holds the coordinates of one SystemRep call. The first
// internal coordinates are the component port variables.
type assembly struct {
	model    *Model
	coords   []symbolic.Expr
	names    map[string]int
	mappings Mappings
	internal int
}

func (a *assembly) decompose(e symbolic.Expr) row {
	lin, nl := ExtractCoefficients(e, a.names, a.coords)
	r := newRow(len(a.coords))
	for i, v := range lin {
		r.lin[i] = v
	}
	r.nl = nl
	return r
}

func (a *assembly) fromRelation(rel Relation) row {
	r := newRow(len(a.coords))
	for i, v := range rel.Linear {
		r.lin[i] = v
	}
	r.nl = rel.Nonlinear
	return r
}

func (a *assembly) touchesInternal(r row) bool {
	for j := 0; j < a.internal; j++ {
		if !symbolic.IsZero(r.lin[j]) {
			return true
		}
	}
	for _, s := range symbolic.Symbols(r.nl) {
		if i, ok := a.names[s]; ok && i < a.internal {
			return true
		}
	}
	return false
}

// AssemblyStats describes one SystemRep call.
type AssemblyStats struct {
	Model      string
	Components int
	Bonds      int
	Internal   int
	Eliminated int
	Iterations int
	Relations  int
	Nonlinear  int
	Duration   time.Duration
	Err        error
}

// AssemblyObserver is notified after every assembly attempt.
type AssemblyObserver interface {
	OnAssembly(stats AssemblyStats)
}

// SystemRep assembles the model into its reduced coordinates
// [dx, exposed ports, x, u].
func (m *Model) SystemRep() (*System, error) {
	start := time.Now()
	stats := AssemblyStats{Model: m.String(), Components: len(m.components), Bonds: len(m.bonds)}
	sys, err := m.systemRep(&stats)
	stats.Duration = time.Since(start)
	stats.Err = err
	if err == nil {
		stats.Relations = len(sys.Nonlinear)
		for _, n := range sys.Nonlinear {
			if !symbolic.IsZero(n) {
				stats.Nonlinear++
			}
		}
	}
	for _, o := range m.observers {
		o.OnAssembly(stats)
	}
	if err != nil {
		m.logger.Debug("assembly failed", "model", m.String(), "err", err)
		return nil, err
	}
	m.logger.Debug("assembly finished",
		"model", m.String(),
		"relations", stats.Relations,
		"eliminated", stats.Eliminated,
		"iterations", stats.Iterations,
		"duration", stats.Duration)
	return sys, nil
}

// ConstitutiveRelations returns the reduced relations of the model, each
// read as "= 0", in pivot order with purely nonlinear rows last.
func (m *Model) ConstitutiveRelations() ([]symbolic.Expr, error) {
	sys, err := m.SystemRep()
	if err != nil {
		return nil, err
	}
	return sys.Relations(), nil
}

func (m *Model) systemRep(stats *AssemblyStats) (*System, error) {
	basis := m.BasisVectors()
	outer, coords := InverseCoordMaps(basis)

	// Component ports become private coordinates in front of the outer ones.
	var internal []symbolic.Expr
	type portKey struct{ comp, port int }
	portCoord := make(map[portKey]int)
	for ci, c := range m.components {
		for _, p := range c.portIndices() {
			tag := c.name + "#" + strconv.Itoa(ci) + "."
			portCoord[portKey{ci, p}] = len(internal)
			internal = append(internal, symbolic.Sym(tag+varName("e", p)), symbolic.Sym(tag+varName("f", p)))
		}
	}
	ni := len(internal)
	stats.Internal = ni

	a := &assembly{
		model:    m,
		coords:   append(append([]symbolic.Expr(nil), internal...), coords...),
		names:    make(map[string]int),
		mappings: outer.shift(ni),
		internal: ni,
	}
	for i, c := range a.coords {
		a.names[c.String()] = i
	}
	for ci, c := range m.components {
		for _, p := range c.portIndices() {
			k := portCoord[portKey{ci, p}]
			a.mappings.set(c.id, varName("e", p), k)
			a.mappings.set(c.id, varName("f", p), k+1)
		}
	}

	var rows []row
	for _, c := range m.components {
		rels, err := c.Relations(a.mappings, a.coords)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			rows = append(rows, a.fromRelation(rel))
		}
	}
	effort := func(ep Endpoint) int {
		if ep.model != nil {
			i, _ := a.mappings.Index(m.id, varName("e", ep.port))
			return i
		}
		i, _ := a.mappings.Index(ep.comp.id, varName("e", ep.port))
		return i
	}
	for _, b := range m.bonds {
		ea, eb := effort(b.A), effort(b.B)
		re, rf := newRow(len(a.coords)), newRow(len(a.coords))
		re.lin[ea], re.lin[eb] = symbolic.Int(1), symbolic.Int(-1)
		rf.lin[ea+1], rf.lin[eb+1] = symbolic.Int(1), symbolic.Int(1)
		rows = append(rows, re, rf)
	}

	rows, err := a.eliminate(rows, stats)
	if err != nil {
		return nil, err
	}

	// Drop the private columns; only outer coordinates remain.
	for i := range rows {
		rows[i].lin = rows[i].lin[ni:]
	}
	outerNames := make(map[string]int, len(coords))
	for i, c := range coords {
		outerNames[c.String()] = i
	}
	rows = append(rows, indexReduce(rows, basis, coords, outerNames)...)

	pivots := rref(rows, len(coords))
	var kept []row
	for i, r := range rows {
		if pivots[i] >= 0 {
			kept = append(kept, r)
			continue
		}
		if symbolic.IsZero(r.nl) {
			continue
		}
		if _, ok := symbolic.IsNumber(symbolic.Simplify(r.nl)); ok {
			return nil, &ConsistencyError{Model: m.String(), Relation: r.nl.String(), Reason: "contradictory constraints"}
		}
		kept = append(kept, r)
	}

	sys := &System{
		Coords:    coords,
		Mappings:  outer,
		Linear:    symbolic.NewMatrix(len(kept), len(coords)),
		Nonlinear: make([]symbolic.Expr, len(kept)),
	}
	for i, r := range kept {
		for j, v := range r.lin {
			sys.Linear.Set(i, j, v)
		}
		sys.Nonlinear[i] = r.nl
	}
	return sys, nil
}

// eliminate removes the private coordinates. Rows that pivot on a private
// coordinate are solved for it and substituted into every other row until
// no private coordinate is left.
func (a *assembly) eliminate(rows []row, stats *AssemblyStats) ([]row, error) {
	for {
		stats.Iterations++
		pivots := rref(rows, len(a.coords))
		dropped := make([]bool, len(rows))
		solved := 0

		for i, r := range rows {
			p := pivots[i]
			if p < 0 {
				if symbolic.IsZero(r.nl) {
					dropped[i] = true
				} else if _, ok := symbolic.IsNumber(symbolic.Simplify(r.nl)); ok {
					return nil, &ConsistencyError{Model: a.model.String(), Relation: r.nl.String(), Reason: "contradictory constraints"}
				}
				continue
			}
			if p >= a.internal {
				continue
			}
			name := a.coords[p].String()
			if symbolic.Contains(rows[i].nl, name) {
				continue
			}
			terms := []symbolic.Expr{rows[i].nl}
			for j, c := range a.coords {
				if j != p {
					terms = append(terms, symbolic.Mul(rows[i].lin[j], c))
				}
			}
			sub := map[string]symbolic.Expr{name: symbolic.Neg(symbolic.Add(terms...))}
			for k := range rows {
				if k != i && !dropped[k] {
					rows[k].nl = symbolic.Expand(symbolic.Subs(rows[k].nl, sub))
				}
			}
			dropped[i] = true
			solved++
		}
		stats.Eliminated += solved

		var kept []row
		remaining := false
		for i, r := range rows {
			if dropped[i] {
				continue
			}
			r = a.decompose(r.expr(a.coords))
			if a.touchesInternal(r) {
				remaining = true
			}
			kept = append(kept, r)
		}
		if !remaining {
			return kept, nil
		}
		if solved == 0 {
			return nil, &ConsistencyError{
				Model:  a.model.String(),
				Reason: "cannot eliminate " + strings.Join(a.unresolved(kept), ", "),
			}
		}
		rows = kept
	}
}

func (a *assembly) unresolved(rows []row) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, r := range rows {
		for j := 0; j < a.internal; j++ {
			if !symbolic.IsZero(r.lin[j]) {
				add(a.coords[j].String())
			}
		}
		for _, s := range symbolic.Symbols(r.nl) {
			if i, ok := a.names[s]; ok && i < a.internal {
				add(s)
			}
		}
	}
	return out
}

// indexReduce differentiates algebraic constraints on the states alone,
// so x_0 - 1 = 0 also yields dx_0 = 0.
func indexReduce(rows []row, basis Basis, coords []symbolic.Expr, names map[string]int) []row {
	ns := len(basis.States)
	xStart := ns + 2*len(basis.Ports)
	isState := func(j int) bool { return j >= xStart && j < xStart+ns }

	var out []row
	for _, r := range rows {
		algebraic := true
		for j, v := range r.lin {
			if !isState(j) && !symbolic.IsZero(v) {
				algebraic = false
				break
			}
		}
		if !algebraic {
			continue
		}
		for _, s := range symbolic.Symbols(r.nl) {
			if j, ok := names[s]; ok && !isState(j) {
				algebraic = false
				break
			}
		}
		if !algebraic || r.isZero() {
			continue
		}
		e := r.expr(coords)
		var terms []symbolic.Expr
		for _, s := range basis.States {
			d := symbolic.Diff(e, s.X.Name())
			if !symbolic.IsZero(d) {
				terms = append(terms, symbolic.Mul(d, s.DX))
			}
		}
		if len(terms) == 0 {
			continue
		}
		lin, nl := ExtractCoefficients(symbolic.Add(terms...), names, coords)
		d := newRow(len(coords))
		for i, v := range lin {
			d.lin[i] = v
		}
		d.nl = nl
		out = append(out, d)
	}
	return out
}

// rref brings rows into reduced row echelon form over the first n columns,
// carrying the nonlinear residuals along. It returns the pivot column of
// every row, -1 for rows without one; pivot rows come first in column order.
func rref(rows []row, n int) []int {
	pivots := make([]int, len(rows))
	for i := range pivots {
		pivots[i] = -1
	}
	r := 0
	for col := 0; col < n && r < len(rows); col++ {
		p := -1
		for i := r; i < len(rows); i++ {
			if !symbolic.IsZero(rows[i].lin[col]) {
				p = i
				break
			}
		}
		if p < 0 {
			continue
		}
		rows[r], rows[p] = rows[p], rows[r]
		pr := rows[r]
		if piv := symbolic.Simplify(pr.lin[col]); !symbolic.Equal(piv, symbolic.Int(1)) {
			inv := symbolic.Div(symbolic.Int(1), piv)
			for j := range pr.lin {
				pr.lin[j] = symbolic.Simplify(symbolic.Mul(inv, pr.lin[j]))
			}
			rows[r].nl = symbolic.Expand(symbolic.Mul(inv, pr.nl))
		}
		pr.lin[col] = symbolic.Int(1)
		for i := range rows {
			if i == r {
				continue
			}
			f := rows[i].lin[col]
			if symbolic.IsZero(f) {
				rows[i].lin[col] = symbolic.Int(0)
				continue
			}
			for j := range rows[i].lin {
				rows[i].lin[j] = symbolic.Simplify(symbolic.Sub(rows[i].lin[j], symbolic.Mul(f, pr.lin[j])))
			}
			rows[i].nl = symbolic.Expand(symbolic.Sub(rows[i].nl, symbolic.Mul(f, rows[r].nl)))
		}
		pivots[r] = col
		r++
	}
	return pivots
}

func (s *System) String() string {
	var b strings.Builder
	for i, rel := range s.Relations() {
		fmt.Fprintf(&b, "%d: %s = 0\n", i, rel)
	}
	return b.String()
}
