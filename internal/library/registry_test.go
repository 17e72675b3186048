package library

import (
	"math"
	"testing"

	"github.com/san-kum/bondgraph/internal/bondgraph"
	"github.com/san-kum/bondgraph/internal/symbolic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValueSpecs(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name     string
		typ      string
		opts     []Option
		want     map[string]string
		controls []string
	}{
		{"scalar", "R", []Option{WithValue(2)}, map[string]string{"r": "2"}, nil},
		{"float", "TF", []Option{WithValue(0.5)}, map[string]string{"r": "1/2"}, nil},
		{"symbol", "C", []Option{WithValue(symbolic.Sym("c"))}, map[string]string{"C": "c"}, nil},
		{"expression string", "I", []Option{WithValue("2*l")}, map[string]string{"L": "2*l"}, nil},
		{"no value", "Se", nil, map[string]string{}, []string{"e"}},
		{"positional", "Ce", []Option{WithLibrary(BioChem), WithValue([]int{1, 1, 1})}, map[string]string{"k": "1", "R": "1", "T": "1"}, nil},
		{"partial positional", "Ce", []Option{WithValue([]any{nil, 8.314, 300})}, map[string]string{"R": "4157/500", "T": "300"}, []string{"k"}},
		{"named", "Re", []Option{WithLibrary(BioChem), WithValue(map[string]any{"R": 1, "T": 1})}, map[string]string{"R": "1", "T": "1"}, []string{"r"}},
		{"named floats", "Re", []Option{WithValue(map[string]float64{"r": 1, "R": 1, "T": 1})}, map[string]string{"r": "1"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := reg.New(tt.typ, tt.opts...)
			require.NoError(t, err)
			for name, want := range tt.want {
				v, ok := c.Param(name)
				require.True(t, ok, name)
				require.NotNil(t, v, name)
				assert.Equal(t, want, v.String(), name)
			}
			assert.Equal(t, tt.controls, c.ControlVars())
		})
	}
}

func TestNewErrors(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		typ  string
		opts []Option
		err  error
	}{
		{"unknown type", "Q", nil, ErrUnknownComponent},
		{"unknown library", "R", []Option{WithLibrary("Optics")}, ErrUnknownComponent},
		{"type not in library", "Ce", []Option{WithLibrary(Base)}, ErrUnknownComponent},
		{"too many values", "R", []Option{WithValue([]int{1, 2})}, ErrInvalidValue},
		{"unknown parameter", "Re", []Option{WithValue(map[string]int{"q": 1})}, ErrInvalidValue},
		{"bad expression", "R", []Option{WithValue("r +")}, ErrInvalidValue},
		{"nan", "R", []Option{WithValue(math.NaN())}, ErrInvalidValue},
		{"unsupported", "R", []Option{WithValue(struct{}{})}, ErrInvalidValue},
		{"junction value", "0", []Option{WithValue(1)}, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.New(tt.typ, tt.opts...)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRegistryListing(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{BioChem, Base}, reg.Libraries())
	assert.Equal(t, []string{"Ce", "Re", "Y"}, reg.Types(BioChem))
	assert.Contains(t, reg.Types(Base), "TF")

	reg.Register(bondgraph.Definition{Type: "Ce", Library: "Extra"})
	_, err := reg.New("Ce")
	assert.ErrorIs(t, err, ErrUnknownComponent)
	_, err = reg.New("Ce", WithLibrary(BioChem))
	assert.NoError(t, err)
}

func TestDefaultLibrary(t *testing.T) {
	tests := []struct {
		name    string
		library string
		typ     string
		want    string
		err     error
	}{
		{"base", Base, "C", Base, nil},
		{"shadowing library", "Extra", "C", "Extra", nil},
		{"falls back to unique type", "Extra", "R", Base, nil},
		{"resolves ambiguity", BioChem, "Ce", BioChem, nil},
		{"unknown library", "Optics", "C", Base, ErrUnknownComponent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			reg.Register(bondgraph.Definition{Type: "C", Library: "Extra", Ports: []bondgraph.Port{{Index: 0}}})
			reg.Register(bondgraph.Definition{Type: "Ce", Library: "Extra", Ports: []bondgraph.Port{{Index: 0}}})

			err := reg.SetDefault(tt.library)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			c, err := reg.New(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Library())
		})
	}
}

func TestNewYJunction(t *testing.T) {
	y, err := NewRegistry().New("Y", WithLibrary(BioChem), WithName("Y_in"))
	require.NoError(t, err)
	assert.Equal(t, "Y_in", y.Name())
	assert.Equal(t, bondgraph.StoichiometricJunction, y.Kind())

	p, ok := y.Port(0)
	require.True(t, ok)
	assert.Equal(t, "Complex", p.Name)
	assert.Equal(t, "-1", p.Weight.String())
}

func TestBaseDefinitionsParse(t *testing.T) {
	reg := NewRegistry()
	for _, lib := range reg.Libraries() {
		for _, typ := range reg.Types(lib) {
			_, err := reg.New(typ, WithLibrary(lib))
			assert.NoError(t, err, "%s/%s", lib, typ)
		}
	}
}

func TestGyratorRelations(t *testing.T) {
	gy, err := NewRegistry().New("GY", WithValue(3))
	require.NoError(t, err)
	rels := gy.ConstitutiveRelations()
	require.Len(t, rels, 2)
	assert.Equal(t, "e_1 + 3*f_0", rels[0].String())
	assert.Equal(t, "e_0 - 3*f_1", rels[1].String())
}
