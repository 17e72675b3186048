package symbolic

import (
	"math/big"
	"sort"
	"strconv"

	"github.com/njchilds90/gosymbol"
)

// canon rebuilds a backend result in canonical form. gosymbol's Simplify
// leaves like terms and repeated bases apart, and writes powers with
// symbolic exponents that this package keeps as exponentials.
func canon(g gosymbol.Expr) gosymbol.Expr {
	switch v := g.(type) {
	case *gosymbol.Add:
		return sum(canonAll(v.Terms()))
	case *gosymbol.Mul:
		return product(canonAll(v.Factors()), nil)
	case *gosymbol.Pow:
		b, x := canon(v.Base()), canon(v.ExpExpr())
		if r, ok := ratOf(x); ok {
			return power(b, r)
		}
		return expOf(product([]gosymbol.Expr{x, logOf(b)}, nil))
	case *gosymbol.Func:
		arg := canon(v.Arg())
		switch v.FuncName() {
		case "exp":
			return expOf(arg)
		case "ln":
			return logOf(arg)
		}
	}
	return g
}

func canonAll(gs []gosymbol.Expr) []gosymbol.Expr {
	out := make([]gosymbol.Expr, len(gs))
	for i, g := range gs {
		out[i] = canon(g)
	}
	return out
}

// Terms returns the summands of e in print order. Zero has no terms.
func Terms(e Expr) []Expr {
	switch v := e.node().(type) {
	case *gosymbol.Add:
		ts := sortedTerms(v)
		out := make([]Expr, len(ts))
		for i, t := range ts {
			out[i] = wrap(t)
		}
		return out
	case *gosymbol.Num:
		if v.IsZero() {
			return nil
		}
	}
	return []Expr{e}
}

// Factors splits a term into its numeric coefficient and remaining factors.
func Factors(e Expr) (*Num, []Expr) {
	switch v := e.node().(type) {
	case *gosymbol.Num:
		return &Num{n: v}, nil
	case *gosymbol.Mul:
		c, fs := splitFactors(v)
		out := make([]Expr, len(fs))
		for i, f := range fs {
			out[i] = wrap(f)
		}
		return NewNum(c), out
	}
	return Int(1), []Expr{e}
}

// Subs replaces symbols by expressions. All replacements happen at once, so
// swapping two names through a single map is well defined.
func Subs(e Expr, m map[string]Expr) Expr {
	g := e.node()
	free := gosymbol.FreeSymbols(g)
	names := make([]string, 0, len(m))
	for name := range m {
		if _, ok := free[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return e
	}
	sort.Strings(names)

	// Two passes through placeholders that no parsed name can spell.
	for i, name := range names {
		g = gosymbol.Sub(g, name, gosymbol.S(placeholder(i)))
	}
	for i, name := range names {
		g = gosymbol.Sub(g, placeholder(i), m[name].node())
	}
	return wrap(canon(g))
}

func placeholder(i int) string { return "\x00" + strconv.Itoa(i) }

// Expand distributes products over sums and raises sums to small positive
// integer powers. Function arguments are expanded too.
func Expand(e Expr) Expr { return wrap(expand(e.node())) }

func expand(g gosymbol.Expr) gosymbol.Expr {
	return canon(gosymbol.Expand(expandArgs(g)))
}

// expandArgs expands inside exp and log, which gosymbol.Expand leaves alone.
func expandArgs(g gosymbol.Expr) gosymbol.Expr {
	switch v := g.(type) {
	case *gosymbol.Add:
		ts := v.Terms()
		out := make([]gosymbol.Expr, len(ts))
		for i, t := range ts {
			out[i] = expandArgs(t)
		}
		return sum(out)
	case *gosymbol.Mul:
		fs := v.Factors()
		out := make([]gosymbol.Expr, len(fs))
		for i, f := range fs {
			out[i] = expandArgs(f)
		}
		return product(out, nil)
	case *gosymbol.Pow:
		if r, ok := ratOf(v.ExpExpr()); ok {
			return power(expandArgs(v.Base()), r)
		}
	case *gosymbol.Func:
		switch v.FuncName() {
		case "exp":
			return expOf(expand(v.Arg()))
		case "ln":
			return logOf(expand(v.Arg()))
		}
	}
	return g
}

// Diff returns the partial derivative of e with respect to the named symbol.
func Diff(e Expr, name string) Expr {
	if !Contains(e, name) {
		return Int(0)
	}
	return wrap(canon(gosymbol.Diff(e.node(), name)))
}

// Symbols returns the distinct symbol names in e in natural order.
func Symbols(e Expr) []string {
	free := gosymbol.FreeSymbols(e.node())
	out := make([]string, 0, len(free))
	for n := range free {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return naturalLess(out[i], out[j]) })
	return out
}

// Contains reports whether the named symbol occurs in e.
func Contains(e Expr, name string) bool {
	_, ok := gosymbol.FreeSymbols(e.node())[name]
	return ok
}

// Together rewrites e as a single fraction over the product of the
// denominators found in its expanded terms.
func Together(e Expr) Expr { return wrap(together(e.node())) }

func together(g gosymbol.Expr) gosymbol.Expr {
	g = expand(g)
	terms := []gosymbol.Expr{g}
	if s, ok := g.(*gosymbol.Add); ok {
		terms = s.Terms()
	}

	exps := make(map[string]*big.Rat)
	bases := make(map[string]gosymbol.Expr)
	var order []string
	for _, t := range terms {
		fs := []gosymbol.Expr{t}
		if m, ok := t.(*gosymbol.Mul); ok {
			fs = m.Factors()
		}
		for _, f := range fs {
			p, ok := f.(*gosymbol.Pow)
			if !ok {
				continue
			}
			x, ok := ratOf(p.ExpExpr())
			if !ok || x.Sign() >= 0 {
				continue
			}
			k := format(p.Base())
			neg := x.Neg(x)
			if cur, ok := exps[k]; ok {
				if neg.Cmp(cur) > 0 {
					cur.Set(neg)
				}
				continue
			}
			exps[k] = neg
			bases[k] = p.Base()
			order = append(order, k)
		}
	}
	if len(order) == 0 {
		return g
	}

	dens := make([]gosymbol.Expr, len(order))
	for i, k := range order {
		dens[i] = power(bases[k], exps[k])
	}
	den := product(dens, nil)
	nums := make([]gosymbol.Expr, len(terms))
	for i, t := range terms {
		nums[i] = product([]gosymbol.Expr{t, den}, nil)
	}
	n := expand(sum(nums))
	if r, ok := ratOf(n); ok && r.Sign() == 0 {
		return gosymbol.N(0)
	}
	return product([]gosymbol.Expr{n, power(den, big.NewRat(-1, 1))}, nil)
}

// Simplify returns the canonical simplified form of e: expanded when e has
// no denominators, otherwise a single fraction with an expanded numerator.
func Simplify(e Expr) Expr { return Together(e) }

// IsZero reports whether e simplifies to zero.
func IsZero(e Expr) bool {
	r, ok := ratOf(together(e.node()))
	return ok && r.Sign() == 0
}

// IsNumber reports whether e is a number, returning it.
func IsNumber(e Expr) (*Num, bool) {
	n, ok := e.(*Num)
	return n, ok
}

// Equal reports structural equality of two canonical expressions.
func Equal(a, b Expr) bool { return a.String() == b.String() }

// Equivalent reports whether a - b simplifies to zero.
func Equivalent(a, b Expr) bool { return IsZero(Sub(a, b)) }
