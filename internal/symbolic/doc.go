// Package symbolic is the algebra layer used by the bond graph assembler.
//
// Expression trees, differentiation, substitution, expansion and matrices
// come from github.com/njchilds90/gosymbol. This package keeps every tree in
// a canonical form on top of it: sums have like terms collected, products
// have repeated bases merged into rational powers, and exponentials are
// split into one factor per term of their argument. Two expressions built
// from the same mathematical content in any order therefore print
// identically, which is what [Equal] relies on.
//
// The vocabulary is small: exact rationals ([Num]), named variables
// ([Symbol]), sums, products, rational powers, exp and log.
//
// # Simplification
//
// Constructors apply local rewrite rules (exp(log(a)) = a, exp(a+b) =
// exp(a)*exp(b), x*x**-1 = 1, ...). [Simplify] additionally brings an
// expression over a common denominator, expands the numerator and cancels
// numeric or monomial denominators. [IsZero] is defined through [Simplify].
// The exponential or logarithm of a bare numeral is evaluated by gosymbol
// in floating point.
//
// # Example
//
//	eq, _ := symbolic.Parse("dx_0 - x_1")
//	eq = symbolic.Subs(eq, map[string]symbolic.Expr{"x_1": symbolic.Int(2)})
//	fmt.Println(eq) // dx_0 - 2
package symbolic
