package bondgraph

import (
	"sort"

	"github.com/san-kum/bondgraph/internal/symbolic"
)

// Coefficients maps coordinate indices to linear coefficients.
type Coefficients map[int]symbolic.Expr

// Equal compares by value; a missing index equals a zero coefficient.
func (c Coefficients) Equal(o Coefficients) bool {
	for i, v := range c {
		w, ok := o[i]
		if !ok {
			w = symbolic.Int(0)
		}
		if !symbolic.Equivalent(v, w) {
			return false
		}
	}
	for i, w := range o {
		if _, ok := c[i]; !ok && !symbolic.IsZero(w) {
			return false
		}
	}
	return true
}

// Indices returns the coordinate indices in ascending order.
func (c Coefficients) Indices() []int {
	out := make([]int, 0, len(c))
	for i := range c {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Relation is one equation Σ Linear[i]*coords[i] + Nonlinear = 0.
type Relation struct {
	Linear    Coefficients
	Nonlinear symbolic.Expr
}

// IsLinear reports whether the nonlinear residual is zero.
func (r Relation) IsLinear() bool { return symbolic.IsZero(r.Nonlinear) }

// Expr rebuilds the equation over coords.
func (r Relation) Expr(coords []symbolic.Expr) symbolic.Expr {
	terms := []symbolic.Expr{r.Nonlinear}
	for _, i := range r.Linear.Indices() {
		terms = append(terms, symbolic.Mul(r.Linear[i], coords[i]))
	}
	return symbolic.Add(terms...)
}

// ExtractCoefficients splits expr into coefficients of single coordinates
// and a residual. index maps the local names that stand for coordinates to
// positions in coords. A term is linear when exactly one of its factors
// involves a coordinate and that factor is the coordinate itself; every
// other term, constants included, stays in the residual with local names
// replaced by their coordinates.
func ExtractCoefficients(expr symbolic.Expr, index map[string]int, coords []symbolic.Expr) (Coefficients, symbolic.Expr) {
	rename := make(map[string]symbolic.Expr, len(index))
	for name, i := range index {
		rename[name] = coords[i]
	}
	bears := func(f symbolic.Expr) bool {
		for _, s := range symbolic.Symbols(f) {
			if _, ok := index[s]; ok {
				return true
			}
		}
		return false
	}

	acc := make(map[int][]symbolic.Expr)
	var residual []symbolic.Expr
	for _, t := range symbolic.Terms(symbolic.Expand(expr)) {
		c, fs := symbolic.Factors(t)
		pos := -1
		for k, f := range fs {
			if !bears(f) {
				continue
			}
			if pos >= 0 {
				pos = -2
				break
			}
			pos = k
		}
		if pos >= 0 {
			if s, ok := fs[pos].(*symbolic.Symbol); ok {
				rest := []symbolic.Expr{c}
				rest = append(rest, fs[:pos]...)
				rest = append(rest, fs[pos+1:]...)
				i := index[s.Name()]
				acc[i] = append(acc[i], symbolic.Mul(rest...))
				continue
			}
		}
		residual = append(residual, t)
	}

	coeffs := make(Coefficients, len(acc))
	for i, parts := range acc {
		v := symbolic.Simplify(symbolic.Add(parts...))
		if n, ok := symbolic.IsNumber(v); ok && n.Sign() == 0 {
			continue
		}
		coeffs[i] = v
	}
	return coeffs, symbolic.Subs(symbolic.Add(residual...), rename)
}
