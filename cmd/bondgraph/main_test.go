package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"raw relations", []string{"relations", "--format", "raw", "rlc"}, []string{"dx_0 - x_1\n", "dx_1 + x_0 + x_1\n"}},
		{"styled relations", []string{"relations", "driven_rlc"}, []string{"driven_rlc", "e_0 - x_1 = 0"}},
		{"basis", []string{"basis", "driven_rlc"}, []string{"VAR", "x_0", "e_0, f_0", "port 0"}},
		{"reaction", []string{"reaction", "A + B = C"}, []string{"A, B, C", "x_2 = [C]"}},
		{"stoichiometry", []string{"stoichiometry", "michaelis_menten"}, []string{"forward", "reverse", "net", "E + S = ES"}},
		{"presets", []string{"presets"}, []string{"michaelis_menten", "E + S = ES; ES = E + P"}},
		{"models", []string{"models"}, []string{"rlc\n", "se_c\n"}},
		{"library", []string{"library", "BioChem"}, []string{"Ce", "Stoichiometric junction"}},
		{"json", []string{"relations", "--format", "json", "se_c"}, []string{`"model": "se_c"`, `"x_0 - 1"`}},
		{"csv", []string{"relations", "--format", "csv", "se_c"}, []string{"dx_0,x_0,nonlinear\n", "0,1,-1\n"}},
		{"check", []string{"check"}, []string{"MODEL", "michaelis_menten", "ok"}},
		{"metrics", []string{"--metrics", "relations", "se_c"}, []string{`bondgraph_assemblies_total{model="se_c",status="success"} 1`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown model", []string{"relations", "warp_drive"}},
		{"bad reaction", []string{"reaction", "A => B"}},
		{"bad log level", []string{"--log-level", "loud", "presets"}},
		{"check unknown", []string{"check", "rlc", "warp_drive"}},
		{"bad format", []string{"relations", "--format", "xml", "rlc"}},
		{"unknown library", []string{"library", "Optics"}},
		{"missing config", []string{"--config", "/nonexistent/bondgraph.yaml", "presets"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestConfigNetworks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bondgraph.yaml")
	yaml := "networks:\n  decay:\n    - A = B\n    - B = C\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	out, err := run(t, "--config", path, "stoichiometry", "decay")
	require.NoError(t, err)
	assert.Contains(t, out, "B = C")

	out, err = run(t, "--config", path, "relations", "--format", "raw", "decay")
	require.NoError(t, err)
	assert.Contains(t, out, "dx_0")
}
