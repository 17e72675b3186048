package reaction

import (
	"testing"

	"github.com/san-kum/bondgraph/internal/bondgraph"
	"github.com/san-kum/bondgraph/internal/symbolic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sameRelations(t *testing.T, want []string, got []symbolic.Expr) {
	t.Helper()
	require.Len(t, got, len(want), "%v", got)
	for _, w := range want {
		found := false
		for _, g := range got {
			if symbolic.Equivalent(symbolic.MustParse(w), g) {
				found = true
				break
			}
		}
		assert.True(t, found, "relation %s missing from %v", w, got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		text      string
		reactants []Term
		products  []Term
	}{
		{"A=B", []Term{{"A", 1}}, []Term{{"B", 1}}},
		{"2A + B = C", []Term{{"A", 2}, {"B", 1}}, []Term{{"C", 1}}},
		{"E+S=ES", []Term{{"E", 1}, {"S", 1}}, []Term{{"ES", 1}}},
		{"A + A = A_2", []Term{{"A", 2}}, []Term{{"A_2", 1}}},
		{"10H2 = 5H4", []Term{{"H2", 10}}, []Term{{"H4", 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r, p, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.reactants, r)
			assert.Equal(t, tt.products, p)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, text := range []string{"", "A", "A=B=C", "=B", "A=", "A+=B", "0A=B", "A=2", "A-B=C", "A=B*"} {
		t.Run(text, func(t *testing.T) {
			_, _, err := Parse(text)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, text, pe.Input)
		})
	}
}

func TestAddReactionLeavesNetworkOnError(t *testing.T) {
	n := NewNetwork("bad")
	require.NoError(t, n.AddReaction("A=B"))
	require.Error(t, n.AddReaction("B=>C"))
	assert.Equal(t, []string{"A", "B"}, n.Species())
	assert.Len(t, n.Reactions(), 1)
}

func TestStoichiometry(t *testing.T) {
	n := NewNetwork("abc")
	require.NoError(t, n.AddReaction("A+B=C"))

	assert.Equal(t, []string{"A", "B", "C"}, n.Species())
	assert.True(t, n.ReverseStoichiometry().Equal(symbolic.MatrixFromInts([][]int64{{1}, {1}, {0}})))
	assert.True(t, n.ForwardStoichiometry().Equal(symbolic.MatrixFromInts([][]int64{{0}, {0}, {1}})))
	assert.Equal(t, "[[-1], [-1], [1]]", n.Stoichiometry().String())
}

func TestStoichiometryCoefficients(t *testing.T) {
	n, err := FromReactions("dimer", []string{"2A = A2", "A2 + B = C"})
	require.NoError(t, err)

	want := symbolic.MatrixFromInts([][]int64{
		{-2, 0},
		{1, -1},
		{0, -1},
		{0, 1},
	})
	assert.True(t, n.Stoichiometry().Equal(want), n.Stoichiometry().String())
}

func TestMassActionModel(t *testing.T) {
	n := NewNetwork("abc")
	require.NoError(t, n.AddReaction("A+B=C"))

	m, err := n.AsNetworkModel(true)
	require.NoError(t, err)

	assert.Len(t, m.StateVars(), 3)
	assert.Len(t, m.ControlVars(), 4)

	for _, name := range []string{"A", "B", "C"} {
		c, ok := m.Component(name)
		require.True(t, ok, name)
		assert.Equal(t, "Ce", c.Type())
	}
	for _, c := range m.Components() {
		if c.Type() != "Y" {
			continue
		}
		for _, p := range c.Ports() {
			if p.Index == 0 {
				continue
			}
			assert.Equal(t, "1", p.Weight.String(), "%s port %d", c.Name(), p.Index)
		}
	}

	rels, err := m.ConstitutiveRelations()
	require.NoError(t, err)
	sameRelations(t, []string{
		"dx_0 + u_0*u_1*u_3*x_0*x_1 - u_2*u_3*x_2",
		"dx_1 + u_0*u_1*u_3*x_0*x_1 - u_2*u_3*x_2",
		"dx_2 - u_0*u_1*u_3*x_0*x_1 + u_2*u_3*x_2",
	}, rels)
}

func TestFixedRateAndThermodynamics(t *testing.T) {
	n := NewNetwork("ab", WithThermodynamics(DefaultGasConstant, DefaultTemperature))
	require.NoError(t, n.AddReaction("A=B", Rate(symbolic.Int(2)), Named("R1")))

	m, err := n.AsNetworkModel(false)
	require.NoError(t, err)

	re, ok := m.Component("R1")
	require.True(t, ok)
	r, _ := re.Param("r")
	assert.Equal(t, "2", r.String())
	gas, _ := re.Param("R")
	assert.Equal(t, "4157/500", gas.String())

	assert.Len(t, m.ControlVars(), 2)
	rels, err := m.ConstitutiveRelations()
	require.NoError(t, err)
	sameRelations(t, []string{
		"dx_0 + 2*u_0*x_0 - 2*u_1*x_1",
		"dx_1 - 2*u_0*x_0 + 2*u_1*x_1",
	}, rels)
}

func TestCatalysedNetwork(t *testing.T) {
	n, err := FromReactions("mm", []string{"E + S = ES", "ES = E + P"})
	require.NoError(t, err)

	i, ok := n.SpeciesIndex("ES")
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Len(t, n.Reactions(), 2)

	m, err := n.AsNetworkModel(true)
	require.NoError(t, err)

	var junctions int
	for _, c := range m.Components() {
		if c.Kind() == bondgraph.ZeroJunction {
			junctions++
		}
	}
	assert.Equal(t, 2, junctions)
	assert.Len(t, m.StateVars(), 4)

	rels, err := m.ConstitutiveRelations()
	require.NoError(t, err)
	assert.Len(t, rels, 4)
}
