package catalog

import (
	"testing"

	"github.com/san-kum/bondgraph/internal/bondgraph"
	"github.com/san-kum/bondgraph/internal/config"
	"github.com/san-kum/bondgraph/internal/library"
	"github.com/san-kum/bondgraph/internal/symbolic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct{ runs []bondgraph.AssemblyStats }

func (c *countingObserver) OnAssembly(s bondgraph.AssemblyStats) { c.runs = append(c.runs, s) }

func relations(t *testing.T, r *Registry, name string) []string {
	t.Helper()
	m, err := r.GetModel(name)
	require.NoError(t, err)
	rels, err := m.ConstitutiveRelations()
	require.NoError(t, err)
	out := make([]string, len(rels))
	for i, e := range rels {
		out[i] = e.String()
	}
	return out
}

func equivalentSet(t *testing.T, want, got []string) {
	t.Helper()
	require.Len(t, got, len(want), "%v", got)
	for _, w := range want {
		found := false
		for _, g := range got {
			if symbolic.Equivalent(symbolic.MustParse(w), symbolic.MustParse(g)) {
				found = true
				break
			}
		}
		assert.True(t, found, "relation %s missing from %v", w, got)
	}
}

func TestBuiltinModels(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name string
		want []string
	}{
		{"rlc", []string{"dx_0 - x_1", "dx_1 + x_0 + x_1"}},
		{"driven_rlc", []string{"dx_0 - x_1", "dx_1 + f_0 + x_0 + x_1", "e_0 - x_1"}},
		{"se_c", []string{"dx_0", "x_0 - 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			equivalentSet(t, tt.want, relations(t, r, tt.name))
		})
	}
}

func TestConfiguredLibrary(t *testing.T) {
	tests := []struct {
		name    string
		library string
		want    []string
	}{
		{"base", library.Base, []string{"dx_0", "x_0 - 1"}},
		{"custom", "Lab", []string{"dx_0", "x_0 - 2"}},
		{"unknown falls back to base", "Optics", []string{"dx_0", "x_0 - 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := library.NewRegistry()
			lib.Register(bondgraph.Definition{
				Type: "C", Library: "Lab", Ports: []bondgraph.Port{{Index: 0}},
				Params: []string{"C"}, States: 1,
				Relations: []string{"x_0 - 2*C*e_0", "dx_0 - f_0"},
			})
			cfg := config.DefaultConfig()
			cfg.Library = tt.library
			equivalentSet(t, tt.want, relations(t, NewRegistry(cfg, WithLibrary(lib)), "se_c"))
		})
	}
}

func TestDrivenRLCOrder(t *testing.T) {
	got := relations(t, NewRegistry(nil), "driven_rlc")
	assert.Equal(t, []string{"dx_0 - x_1", "dx_1 + f_0 + x_0 + x_1", "e_0 - x_1"}, got)
}

func TestTransformerLCIsLinear(t *testing.T) {
	m, err := NewRegistry(nil).GetModel("tf_lc")
	require.NoError(t, err)
	sys, err := m.SystemRep()
	require.NoError(t, err)
	assert.True(t, sys.IsLinear())
	assert.Equal(t, 2, sys.Linear.Rows())
}

func TestNetworkModels(t *testing.T) {
	want := []string{
		"dx_0 + u_0*u_2*x_0 - u_1*u_2*x_1",
		"dx_1 - u_0*u_2*x_0 + u_1*u_2*x_1",
	}
	for _, normalised := range []bool{true, false} {
		cfg := config.DefaultConfig()
		cfg.Normalised = normalised
		equivalentSet(t, want, relations(t, NewRegistry(cfg), "a_to_b"))
	}
}

func TestConfiguredNetworkOverridesPreset(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Networks = map[string][]string{"a_to_b": {"A = 2B"}}
	r := NewRegistry(cfg)

	n, err := r.GetNetwork("a_to_b")
	require.NoError(t, err)
	assert.Equal(t, "[[-1], [2]]", n.Stoichiometry().String())

	equivalentSet(t, []string{
		"dx_0 + u_0*u_2*x_0 - u_1**2*u_2*x_1**2",
		"dx_1 - 2*u_0*u_2*x_0 + 2*u_1**2*u_2*x_1**2",
	}, relations(t, r, "a_to_b"))
}

func TestMichaelisMenten(t *testing.T) {
	m, err := NewRegistry(nil).GetModel("michaelis_menten")
	require.NoError(t, err)
	assert.Equal(t, "michaelis_menten", m.Name())
	assert.Len(t, m.StateVars(), 4)

	rels, err := m.ConstitutiveRelations()
	require.NoError(t, err)
	assert.Len(t, rels, 4)
}

func TestUnknownModel(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.GetModel("warp_drive")
	assert.ErrorIs(t, err, ErrUnknownModel)

	cfg := config.DefaultConfig()
	cfg.Networks = map[string][]string{"broken": {"A => B"}}
	_, err = NewRegistry(cfg).GetModel("broken")
	assert.Error(t, err)
}

func TestObserversAttached(t *testing.T) {
	obs := &countingObserver{}
	r := NewRegistry(nil, WithObserver(obs))

	relations(t, r, "rlc")
	relations(t, r, "ab_to_c")
	require.Len(t, obs.runs, 2)
	assert.Equal(t, "rlc", obs.runs[0].Model)
	assert.Equal(t, "ab_to_c", obs.runs[1].Model)
	assert.Equal(t, 2, obs.runs[0].Relations)
}

func TestListModels(t *testing.T) {
	r := NewRegistry(nil)
	r.Register("empty", func(lib *library.Registry) (*bondgraph.Model, error) {
		return bondgraph.NewModel(""), nil
	})

	names := r.ListModels()
	assert.Equal(t, []string{"driven_rlc", "empty", "rlc", "se_c", "tf_lc"}, names[:5])
	assert.Contains(t, names, "michaelis_menten")
	assert.Len(t, names, 5+len(config.Presets))
}
