package symbolic

import (
	"errors"
	"testing"

	"github.com/njchilds90/gosymbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonicalString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dx_0 - x_1", "dx_0 - x_1"},
		{"x_1 + dx_1 + x_0", "dx_1 + x_0 + x_1"},
		{"r*exp(e_1) - r*exp(e_0)", "-r*exp(e_0) + r*exp(e_1)"},
		{"0.5*x", "x/2"},
		{"x/(2*y)", "x/(2*y)"},
		{"x*x", "x**2"},
		{"(x + 1)^2", "(x + 1)**2"},
		{"1 + x", "x + 1"},
		{"x - 0.5*y", "x - y/2"},
		{"3 - 5", "-2"},
		{"x_10 + x_2", "x_2 + x_10"},
		{"e_0 = 1", "e_0 - 1"},
		{"log(exp(x))", "x"},
		{"exp(log(x) + log(y))", "x*y"},
		{"exp(a)*exp(-a)", "1"},
		{"2*(x + y)", "2*x + 2*y"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"x +", "(x", "foo(x)", "x $ y", "x / 0", ""} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, in, se.Input)
		})
	}
}

func TestParseZeroToNegativePower(t *testing.T) {
	for _, in := range []string{"0**-1", "x + 0^-2", "(1 - 1)**-3"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}

	e, err := Parse("0**2 + x")
	require.NoError(t, err)
	assert.Equal(t, "x", e.String())
}

func TestParseNonASCII(t *testing.T) {
	_, err := Parse("x € y")
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "unexpected character '€'", se.Msg)
	assert.Equal(t, 2, se.Pos)

	e, err := Parse("2*é - é")
	require.NoError(t, err)
	assert.Equal(t, "é", e.String())
}

func TestParseList(t *testing.T) {
	es, err := ParseList("dx_0 - x_1, dx_1 + f_0 + x_0 + x_1, e_0 - x_1")
	require.NoError(t, err)
	require.Len(t, es, 3)
	assert.Equal(t, "dx_1 + f_0 + x_0 + x_1", es[1].String())

	es, err = ParseList("exp(x), y")
	require.NoError(t, err)
	assert.Len(t, es, 2)

	_, err = ParseList("x, +")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestFloat(t *testing.T) {
	assert.Equal(t, "1/10", Float(0.1).String())
	assert.Equal(t, "4157/500", Float(8.314).String())
	assert.Equal(t, "300", Float(300).String())
}

func TestNumAccessors(t *testing.T) {
	n := Rat(6, 3)
	assert.True(t, n.IsInt())
	v, ok := n.Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(2), v)
	assert.Equal(t, -1, Int(-4).Sign())
	assert.InDelta(t, 0.25, Rat(1, 4).Float64(), 1e-12)

	_, ok = Rat(1, 2).Int64()
	assert.False(t, ok)
}

func TestPowRules(t *testing.T) {
	x := Sym("x")
	assert.Equal(t, "1", Pow(x, Int(0)).String())
	assert.Equal(t, "x", Pow(Pow(x, Int(2)), Rat(1, 2)).String())
	assert.Equal(t, "1/8", Pow(Int(2), Int(-3)).String())
	assert.Equal(t, "exp(2*x)", Pow(Exp(x), Int(2)).String())
	assert.Equal(t, "x**2*y**2", Pow(Mul(x, Sym("y")), Int(2)).String())
	assert.Equal(t, "0", Log(Int(1)).String())
}

func TestBackendTree(t *testing.T) {
	e := MustParse("2*x*y - x")
	_, ok := Backend(e).(*gosymbol.Add)
	assert.True(t, ok)
	_, ok = Backend(Sym("x")).(*gosymbol.Sym)
	assert.True(t, ok)

	// Trees handed back from gosymbol are brought into canonical form.
	d := Diff(e, "x")
	assert.Equal(t, "2*y - 1", d.String())
	assert.Equal(t, "1", Exp(Int(0)).String())
}
