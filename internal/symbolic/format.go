package symbolic

import (
	"math/big"
	"sort"
	"strings"

	"github.com/njchilds90/gosymbol"
)

// format prints g in canonical order: terms by their non-numeric part with
// the constant last, factors numbers first, then symbols, then functions.
// gosymbol's own String keeps construction order and writes x + -1*y.
func format(g gosymbol.Expr) string {
	switch v := g.(type) {
	case *gosymbol.Num:
		return ratString(v.Rat())
	case *gosymbol.Sym:
		return v.Name()
	case *gosymbol.Add:
		return formatSum(v)
	case *gosymbol.Mul:
		c, fs := splitFactors(v)
		return formatProduct(c, fs)
	case *gosymbol.Pow:
		if _, ok := ratOf(v.ExpExpr()); !ok {
			return "(" + format(v.Base()) + ")**(" + format(v.ExpExpr()) + ")"
		}
		return formatProduct(ratOne, []gosymbol.Expr{v})
	case *gosymbol.Func:
		name := v.FuncName()
		if name == "ln" {
			name = "log"
		}
		return name + "(" + format(v.Arg()) + ")"
	}
	return g.String()
}

// sortedTerms returns the terms of a sum in print order.
func sortedTerms(s *gosymbol.Add) []gosymbol.Expr {
	type keyed struct {
		t     gosymbol.Expr
		key   string
		isNum bool
	}
	ks := make([]keyed, 0, len(s.Terms()))
	for _, t := range s.Terms() {
		_, rest := splitCoeff(t)
		_, isNum := t.(*gosymbol.Num)
		ks = append(ks, keyed{t: t, key: format(rest), isNum: isNum})
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].isNum != ks[j].isNum {
			return ks[j].isNum
		}
		return naturalLess(ks[i].key, ks[j].key)
	})
	out := make([]gosymbol.Expr, len(ks))
	for i, k := range ks {
		out[i] = k.t
	}
	return out
}

// splitFactors returns the coefficient and the non-numeric factors of a
// product in print order.
func splitFactors(m *gosymbol.Mul) (*big.Rat, []gosymbol.Expr) {
	c := big.NewRat(1, 1)
	var fs []gosymbol.Expr
	for _, f := range m.Factors() {
		if r, ok := ratOf(f); ok {
			c.Mul(c, r)
			continue
		}
		fs = append(fs, f)
	}
	sort.SliceStable(fs, func(i, j int) bool { return factorLess(fs[i], fs[j]) })
	return c, fs
}

func formatSum(s *gosymbol.Add) string {
	var b strings.Builder
	for i, t := range sortedTerms(s) {
		if i == 0 {
			b.WriteString(format(t))
			continue
		}
		c, rest := splitCoeff(t)
		if c.Sign() < 0 {
			b.WriteString(" - ")
			b.WriteString(formatTerm(new(big.Rat).Neg(c), rest))
		} else {
			b.WriteString(" + ")
			b.WriteString(format(t))
		}
	}
	return b.String()
}

func formatTerm(c *big.Rat, rest gosymbol.Expr) string {
	if r, ok := ratOf(rest); ok {
		return ratString(new(big.Rat).Mul(c, r))
	}
	if m, ok := rest.(*gosymbol.Mul); ok {
		k, fs := splitFactors(m)
		return formatProduct(k.Mul(k, c), fs)
	}
	return formatProduct(c, []gosymbol.Expr{rest})
}

func formatProduct(coeff *big.Rat, factors []gosymbol.Expr) string {
	var nums, dens []string
	c := new(big.Rat).Abs(coeff)
	if c.Num().Cmp(big.NewInt(1)) != 0 {
		nums = append(nums, c.Num().String())
	}
	if !c.IsInt() {
		dens = append(dens, c.Denom().String())
	}
	for _, f := range factors {
		if p, ok := f.(*gosymbol.Pow); ok {
			if e, ok := ratOf(p.ExpExpr()); ok {
				if e.Sign() < 0 {
					dens = append(dens, formatPower(p.Base(), e.Neg(e)))
				} else {
					nums = append(nums, formatPower(p.Base(), e))
				}
				continue
			}
		}
		nums = append(nums, formatFactor(f))
	}
	s := strings.Join(nums, "*")
	if s == "" {
		s = "1"
	}
	if len(dens) > 0 {
		d := strings.Join(dens, "*")
		if len(dens) > 1 {
			d = "(" + d + ")"
		}
		s += "/" + d
	}
	if coeff.Sign() < 0 {
		s = "-" + s
	}
	return s
}

func formatFactor(f gosymbol.Expr) string {
	if _, ok := f.(*gosymbol.Add); ok {
		return "(" + format(f) + ")"
	}
	return format(f)
}

func formatPower(base gosymbol.Expr, e *big.Rat) string {
	if e.Cmp(ratOne) == 0 {
		return formatFactor(base)
	}
	b := format(base)
	switch v := base.(type) {
	case *gosymbol.Add, *gosymbol.Mul, *gosymbol.Pow:
		b = "(" + b + ")"
	case *gosymbol.Num:
		if r := v.Rat(); !r.IsInt() || r.Sign() < 0 {
			b = "(" + b + ")"
		}
	}
	if e.IsInt() {
		return b + "**" + e.Num().String()
	}
	return b + "**(" + e.RatString() + ")"
}

func factorRank(f gosymbol.Expr) int {
	if p, ok := f.(*gosymbol.Pow); ok {
		f = p.Base()
	}
	switch f.(type) {
	case *gosymbol.Num:
		return 0
	case *gosymbol.Sym:
		return 1
	case *gosymbol.Func:
		return 2
	}
	return 3
}

func factorLess(a, b gosymbol.Expr) bool {
	ra, rb := factorRank(a), factorRank(b)
	if ra != rb {
		return ra < rb
	}
	ba, ea := a, ratOne
	if p, ok := a.(*gosymbol.Pow); ok {
		ba = p.Base()
		if r, ok := ratOf(p.ExpExpr()); ok {
			ea = r
		}
	}
	bb, eb := b, ratOne
	if p, ok := b.(*gosymbol.Pow); ok {
		bb = p.Base()
		if r, ok := ratOf(p.ExpExpr()); ok {
			eb = r
		}
	}
	sa, sb := format(ba), format(bb)
	if sa != sb {
		return naturalLess(sa, sb)
	}
	return ea.Cmp(eb) < 0
}

// naturalLess orders strings with embedded integers numerically, so x_2
// sorts before x_10.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		if da && db {
			na, ra := digitRun(a)
			nb, rb := digitRun(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			a, b = ra, rb
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func digitRun(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}
