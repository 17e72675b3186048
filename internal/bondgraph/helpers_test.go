package bondgraph

import (
	"testing"

	"github.com/san-kum/bondgraph/internal/symbolic"
)

var testDefs = map[string]Definition{
	"R":  {Type: "R", Kind: Atomic, Ports: []Port{{Index: 0}}, Params: []string{"r"}, Relations: []string{"e_0 - r*f_0"}},
	"C":  {Type: "C", Kind: Atomic, Ports: []Port{{Index: 0}}, Params: []string{"C"}, States: 1, Relations: []string{"x_0 - C*e_0", "dx_0 - f_0"}},
	"I":  {Type: "I", Kind: Atomic, Ports: []Port{{Index: 0}}, Params: []string{"L"}, States: 1, Relations: []string{"x_0 - L*f_0", "dx_0 - e_0"}},
	"Se": {Type: "Se", Kind: Atomic, Ports: []Port{{Index: 0}}, Params: []string{"e"}, Relations: []string{"e_0 - e"}},
	"Sf": {Type: "Sf", Kind: Atomic, Ports: []Port{{Index: 0}}, Params: []string{"f"}, Relations: []string{"f_0 + f"}},
	"TF": {Type: "TF", Kind: Atomic, Ports: []Port{{Index: 0}, {Index: 1}}, Params: []string{"r"}, Relations: []string{"e_1 - r*e_0", "f_0 + r*f_1"}},
	"GY": {Type: "GY", Kind: Atomic, Ports: []Port{{Index: 0}, {Index: 1}}, Params: []string{"r"}, Relations: []string{"e_1 + r*f_0", "e_0 - r*f_1"}},
	"0":  {Type: "0", Kind: ZeroJunction},
	"1":  {Type: "1", Kind: OneJunction},
	"Ce": {Type: "Ce", Library: "BioChem", Kind: Atomic, Ports: []Port{{Index: 0}}, Params: []string{"k", "R", "T"}, States: 1,
		Relations: []string{"e_0 - R*T*log(k*x_0)", "f_0 - dx_0"}},
	"Re": {Type: "Re", Library: "BioChem", Kind: Atomic, Ports: []Port{{Index: 0}, {Index: 1}}, Params: []string{"r", "R", "T"},
		Relations: []string{"f_0 + f_1", "f_0 - r*(exp(e_0/(R*T)) - exp(e_1/(R*T)))"}},
	"Y": {Type: "Y", Library: "BioChem", Kind: StoichiometricJunction,
		Ports: []Port{{Index: 0, Name: "Complex", Weight: symbolic.Int(-1)}}},
}

// newTest builds a component from testDefs and assigns values in
// parameter order.
func newTest(t *testing.T, typ string, values ...any) *Component {
	t.Helper()
	c, err := NewComponent(testDefs[typ])
	if err != nil {
		t.Fatalf("NewComponent(%s): %v", typ, err)
	}
	for i, v := range values {
		var e symbolic.Expr
		switch x := v.(type) {
		case int:
			e = symbolic.Int(int64(x))
		case float64:
			e = symbolic.Float(x)
		case string:
			e = symbolic.MustParse(x)
		case symbolic.Expr:
			e = x
		}
		if err := c.SetParam(c.params[i].Name, e); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func mustConnect(t *testing.T, m *Model, a, b Endpoint) {
	t.Helper()
	if err := m.Connect(a, b); err != nil {
		t.Fatalf("Connect(%s, %s): %v", a, b, err)
	}
}

func rlc(t *testing.T) *Model {
	t.Helper()
	r := newTest(t, "R", 1)
	l := newTest(t, "I", 1)
	c := newTest(t, "C", 1)
	kvl := newTest(t, "0")
	m := Compose(r, l, c, kvl)
	mustConnect(t, m, Implicit(r), Implicit(kvl))
	mustConnect(t, m, Implicit(l), Implicit(kvl))
	mustConnect(t, m, Implicit(c), Implicit(kvl))
	return m
}

// hasRelation reports whether some relation equals want up to sign.
func hasRelation(want string, got []symbolic.Expr) bool {
	w := symbolic.MustParse(want)
	for _, g := range got {
		if symbolic.Equivalent(w, g) || symbolic.Equivalent(w, symbolic.Neg(g)) {
			return true
		}
	}
	return false
}

// sameRelations compares relation lists as sets of canonical expressions.
func sameRelations(t *testing.T, want []string, got []symbolic.Expr) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("got %d relations %v, want %d %v", len(got), got, len(want), want)
	}
	for _, w := range want {
		found := false
		for _, g := range got {
			if symbolic.Equivalent(symbolic.MustParse(w), g) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("relation %s missing from %v", w, got)
		}
	}
}
