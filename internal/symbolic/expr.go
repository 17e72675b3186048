package symbolic

import (
	"math/big"
	"strconv"

	"github.com/njchilds90/gosymbol"
)

// Expr is an immutable expression in canonical form. The tree itself is a
// gosymbol expression; see [Backend].
type Expr interface {
	String() string
	node() gosymbol.Expr
}

// Num is an exact rational number.
type Num struct{ n *gosymbol.Num }

// Symbol is a named variable.
type Symbol struct{ s *gosymbol.Sym }

// term is any compound expression: a sum, product, power or function.
type term struct{ g gosymbol.Expr }

func (n *Num) node() gosymbol.Expr    { return n.n }
func (s *Symbol) node() gosymbol.Expr { return s.s }
func (t *term) node() gosymbol.Expr   { return t.g }

func (n *Num) String() string    { return ratString(n.n.Rat()) }
func (s *Symbol) String() string { return s.s.Name() }
func (t *term) String() string   { return format(t.g) }

func wrap(g gosymbol.Expr) Expr {
	switch v := g.(type) {
	case *gosymbol.Num:
		return &Num{n: v}
	case *gosymbol.Sym:
		return &Symbol{s: v}
	}
	return &term{g: g}
}

// Backend returns the gosymbol tree behind e.
func Backend(e Expr) gosymbol.Expr { return e.node() }

var ratOne = big.NewRat(1, 1)

// num converts r into a backend number. Rationals beyond int64 go through
// the backend's decimal reader.
func num(r *big.Rat) *gosymbol.Num {
	if r.Num().IsInt64() && r.Denom().IsInt64() {
		return gosymbol.F(r.Num().Int64(), r.Denom().Int64())
	}
	g, err := gosymbol.FromJSON(map[string]interface{}{"type": "num", "value": r.RatString()})
	if err != nil {
		panic("symbolic: " + err.Error())
	}
	return g.(*gosymbol.Num)
}

func ratOf(g gosymbol.Expr) (*big.Rat, bool) {
	n, ok := g.(*gosymbol.Num)
	if !ok {
		return nil, false
	}
	return n.Rat(), true
}

func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}

// Int returns the integer n.
func Int(n int64) *Num { return &Num{n: gosymbol.N(n)} }

// Rat returns the fraction p/q. q must be non-zero.
func Rat(p, q int64) *Num { return &Num{n: gosymbol.F(p, q)} }

// NewNum copies r into a number.
func NewNum(r *big.Rat) *Num { return &Num{n: num(r)} }

// Float converts f using its shortest decimal representation, so 0.1 becomes
// 1/10 rather than the nearest binary fraction.
func Float(f float64) *Num {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		r = new(big.Rat).SetFloat64(f)
	}
	return NewNum(r)
}

// Rat returns a copy of the underlying rational.
func (n *Num) Rat() *big.Rat { return n.n.Rat() }

// Sign returns -1, 0 or +1.
func (n *Num) Sign() int { return n.n.Rat().Sign() }

// IsInt reports whether n is an integer.
func (n *Num) IsInt() bool { return n.n.IsInteger() }

// Int64 returns n when n is an integer that fits.
func (n *Num) Int64() (int64, bool) {
	r := n.n.Rat()
	if !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

// Float64 returns the nearest float64.
func (n *Num) Float64() float64 { return n.n.Float64() }

// Sym returns the symbol with the given name.
func Sym(name string) *Symbol { return &Symbol{s: gosymbol.S(name)} }

// Name returns the symbol name.
func (s *Symbol) Name() string { return s.s.Name() }

func nodes(es []Expr) []gosymbol.Expr {
	out := make([]gosymbol.Expr, len(es))
	for i, e := range es {
		out[i] = e.node()
	}
	return out
}

// Add returns the canonical sum of terms.
func Add(terms ...Expr) Expr { return wrap(sum(nodes(terms))) }

// Mul returns the canonical product of factors.
func Mul(factors ...Expr) Expr { return wrap(product(nodes(factors), nil)) }

// Pow returns base**exp. Non-numeric exponents are rewritten as
// exp(exp*log(base)).
func Pow(base, exp Expr) Expr {
	if r, ok := ratOf(exp.node()); ok {
		return wrap(power(base.node(), r))
	}
	return wrap(expOf(product([]gosymbol.Expr{exp.node(), logOf(base.node())}, nil)))
}

// Exp returns exp(x).
func Exp(x Expr) Expr { return wrap(expOf(x.node())) }

// Log returns the natural logarithm of x.
func Log(x Expr) Expr { return wrap(logOf(x.node())) }

// Neg returns -x.
func Neg(x Expr) Expr { return Mul(Int(-1), x) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return Add(a, Neg(b)) }

// Div returns a / b.
func Div(a, b Expr) Expr {
	return wrap(product([]gosymbol.Expr{a.node(), power(b.node(), big.NewRat(-1, 1))}, nil))
}

// sum collects like terms. gosymbol only merges bare symbols, so 2*x*y and
// -2*x*y would otherwise survive side by side.
func sum(terms []gosymbol.Expr) gosymbol.Expr {
	constant := new(big.Rat)
	coeffs := make(map[string]*big.Rat)
	rests := make(map[string]gosymbol.Expr)
	var order []string

	var collect func(gosymbol.Expr)
	collect = func(t gosymbol.Expr) {
		switch v := t.(type) {
		case *gosymbol.Add:
			for _, s := range v.Terms() {
				collect(s)
			}
		case *gosymbol.Num:
			constant.Add(constant, v.Rat())
		default:
			c, rest := splitCoeff(t)
			k := format(rest)
			if cur, ok := coeffs[k]; ok {
				cur.Add(cur, c)
				return
			}
			coeffs[k] = new(big.Rat).Set(c)
			rests[k] = rest
			order = append(order, k)
		}
	}
	for _, t := range terms {
		collect(t)
	}

	out := make([]gosymbol.Expr, 0, len(order)+1)
	for _, k := range order {
		if coeffs[k].Sign() != 0 {
			out = append(out, scale(coeffs[k], rests[k]))
		}
	}
	if constant.Sign() != 0 {
		out = append(out, num(constant))
	}
	switch len(out) {
	case 0:
		return gosymbol.N(0)
	case 1:
		return out[0]
	}
	return gosymbol.AddOf(out...)
}

// product merges repeated bases into powers and all exponentials into one
// argument, which is then split again term by term: exp(a)*exp(-a) cancels
// and exp(log(x)+log(y)) = x*y. expArgs are extra exponentials to merge.
func product(factors, expArgs []gosymbol.Expr) gosymbol.Expr {
	return mul(factors, expArgs, true)
}

func mul(factors, expArgs []gosymbol.Expr, regroup bool) gosymbol.Expr {
	coeff := big.NewRat(1, 1)
	exps := make(map[string]*big.Rat)
	bases := make(map[string]gosymbol.Expr)
	var order []string

	addBase := func(base gosymbol.Expr, e *big.Rat) {
		k := format(base)
		if cur, ok := exps[k]; ok {
			cur.Add(cur, e)
			return
		}
		exps[k] = new(big.Rat).Set(e)
		bases[k] = base
		order = append(order, k)
	}

	var collect func(gosymbol.Expr)
	collect = func(f gosymbol.Expr) {
		switch v := f.(type) {
		case *gosymbol.Num:
			coeff.Mul(coeff, v.Rat())
		case *gosymbol.Mul:
			for _, g := range v.Factors() {
				collect(g)
			}
		case *gosymbol.Pow:
			if r, ok := ratOf(v.ExpExpr()); ok {
				addBase(v.Base(), r)
				return
			}
			addBase(f, ratOne)
		case *gosymbol.Func:
			if v.FuncName() == "exp" {
				expArgs = append(expArgs, v.Arg())
				return
			}
			addBase(f, ratOne)
		default:
			addBase(f, ratOne)
		}
	}
	for _, f := range factors {
		collect(f)
	}
	if coeff.Sign() == 0 {
		return gosymbol.N(0)
	}

	if len(expArgs) > 0 {
		arg := sum(expArgs)
		argTerms := []gosymbol.Expr{arg}
		if s, ok := arg.(*gosymbol.Add); ok {
			argTerms = s.Terms()
		}
		for _, t := range argTerms {
			if r, ok := ratOf(t); ok {
				if r.Sign() != 0 {
					collect(gosymbol.ExpOf(t))
				}
				continue
			}
			c, rest := splitCoeff(t)
			if fn, ok := rest.(*gosymbol.Func); ok && fn.FuncName() == "ln" {
				collect(power(fn.Arg(), c))
				continue
			}
			addBase(gosymbol.ExpOf(t), ratOne)
		}
	}

	var out []gosymbol.Expr
	nested := false
	for _, k := range order {
		e := exps[k]
		if e.Sign() == 0 {
			continue
		}
		switch p := power(bases[k], e).(type) {
		case *gosymbol.Num:
			coeff.Mul(coeff, p.Rat())
		case *gosymbol.Mul:
			nested = true
			out = append(out, p)
		default:
			out = append(out, p)
		}
	}
	if coeff.Sign() == 0 {
		return gosymbol.N(0)
	}
	if nested && regroup {
		return mul(append([]gosymbol.Expr{num(coeff)}, out...), nil, false)
	}

	switch {
	case len(out) == 0:
		return num(coeff)
	case len(out) == 1 && coeff.Cmp(ratOne) == 0:
		return out[0]
	case len(out) == 1:
		if s, ok := out[0].(*gosymbol.Add); ok {
			terms := make([]gosymbol.Expr, 0, len(s.Terms()))
			for _, t := range s.Terms() {
				terms = append(terms, product([]gosymbol.Expr{num(coeff), t}, nil))
			}
			return sum(terms)
		}
	}
	return gosymbol.MulOf(append([]gosymbol.Expr{num(coeff)}, out...)...)
}

// power raises base to a rational exponent.
func power(base gosymbol.Expr, e *big.Rat) gosymbol.Expr {
	if e.Sign() == 0 {
		return gosymbol.N(1)
	}
	if e.Cmp(ratOne) == 0 {
		return base
	}
	switch b := base.(type) {
	case *gosymbol.Num:
		r := b.Rat()
		if e.IsInt() && e.Num().IsInt64() {
			if p, ok := ratPow(r, e.Num().Int64()); ok {
				return num(p)
			}
			return gosymbol.PowOf(b, num(e))
		}
		if r.Cmp(ratOne) == 0 {
			return gosymbol.N(1)
		}
		if r.Sign() == 0 && e.Sign() > 0 {
			return gosymbol.N(0)
		}
	case *gosymbol.Pow:
		if x, ok := ratOf(b.ExpExpr()); ok {
			return power(b.Base(), new(big.Rat).Mul(x, e))
		}
	case *gosymbol.Mul:
		if e.IsInt() {
			fs := make([]gosymbol.Expr, 0, len(b.Factors()))
			for _, f := range b.Factors() {
				fs = append(fs, power(f, e))
			}
			return product(fs, nil)
		}
	case *gosymbol.Func:
		if b.FuncName() == "exp" {
			return expOf(product([]gosymbol.Expr{num(e), b.Arg()}, nil))
		}
	}
	return gosymbol.PowOf(base, num(e))
}

// ratPow raises r to an integer power; it fails for 0 to a negative power.
func ratPow(r *big.Rat, n int64) (*big.Rat, bool) {
	if n < 0 {
		if r.Sign() == 0 {
			return nil, false
		}
		r = new(big.Rat).Inv(r)
		n = -n
	}
	e := big.NewInt(n)
	nu := new(big.Int).Exp(r.Num(), e, nil)
	de := new(big.Int).Exp(r.Denom(), e, nil)
	return new(big.Rat).SetFrac(nu, de), true
}

// expOf returns exp(x) split into one factor per term of x. The backend
// evaluates the exponential of a numeral in floating point.
func expOf(x gosymbol.Expr) gosymbol.Expr { return product(nil, []gosymbol.Expr{x}) }

func logOf(x gosymbol.Expr) gosymbol.Expr {
	switch v := x.(type) {
	case *gosymbol.Num:
		if v.IsOne() {
			return gosymbol.N(0)
		}
	case *gosymbol.Func:
		if v.FuncName() == "exp" {
			return v.Arg()
		}
	}
	return gosymbol.LnOf(x)
}

// splitCoeff separates the rational coefficient from the rest of a term.
// For numbers the rest is 1.
func splitCoeff(g gosymbol.Expr) (*big.Rat, gosymbol.Expr) {
	switch v := g.(type) {
	case *gosymbol.Num:
		return v.Rat(), gosymbol.N(1)
	case *gosymbol.Mul:
		fs := v.Factors()
		c, ok := ratOf(fs[0])
		if !ok {
			return ratOne, g
		}
		if len(fs) == 2 {
			return c, fs[1]
		}
		return c, gosymbol.MulOf(fs[1:]...)
	}
	return ratOne, g
}

func scale(c *big.Rat, rest gosymbol.Expr) gosymbol.Expr {
	if c.Cmp(ratOne) == 0 {
		return rest
	}
	if r, ok := ratOf(rest); ok {
		return num(new(big.Rat).Mul(c, r))
	}
	return gosymbol.MulOf(num(c), rest)
}
