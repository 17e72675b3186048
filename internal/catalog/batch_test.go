package catalog

import (
	"context"
	"testing"

	"github.com/san-kum/bondgraph/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleAll(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Networks = map[string][]string{"broken": {"A = = B"}}
	r := NewRegistry(cfg)

	names := append(r.ListModels(), "missing")
	results, err := r.AssembleAll(context.Background(), names)
	require.NoError(t, err)
	require.Len(t, results, len(names))

	for i, res := range results {
		assert.Equal(t, names[i], res.Name)
		switch res.Name {
		case "broken", "missing":
			assert.Error(t, res.Err, res.Name)
			assert.Nil(t, res.System)
		default:
			require.NoError(t, res.Err, res.Name)
			assert.NotEmpty(t, res.System.Relations(), res.Name)
		}
	}
}

func TestAssembleAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRegistry(nil).AssembleAll(ctx, []string{"rlc", "se_c"})
	assert.ErrorIs(t, err, context.Canceled)
}
