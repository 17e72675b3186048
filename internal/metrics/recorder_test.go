package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/bondgraph/internal/bondgraph"
)

func TestOnAssemblySuccess(t *testing.T) {
	r := NewRecorder()
	r.OnAssembly(bondgraph.AssemblyStats{
		Model: "rlc", Eliminated: 12, Iterations: 2, Relations: 3, Nonlinear: 1,
		Duration: 5 * time.Millisecond,
	})

	counter, err := r.AssembliesTotal.GetMetricWithLabelValues("rlc", "success")
	require.NoError(t, err)
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	assert.Equal(t, 1.0, metric.Counter.GetValue())

	elim, err := r.Eliminated.GetMetricWithLabelValues("rlc")
	require.NoError(t, err)
	metric.Reset()
	require.NoError(t, elim.Write(&metric))
	assert.Equal(t, 12.0, metric.Counter.GetValue())

	lin, err := r.Relations.GetMetricWithLabelValues("rlc", "linear")
	require.NoError(t, err)
	metric.Reset()
	require.NoError(t, lin.Write(&metric))
	assert.Equal(t, 2.0, metric.Gauge.GetValue())
}

func TestOnAssemblyFailure(t *testing.T) {
	r := NewRecorder()
	r.OnAssembly(bondgraph.AssemblyStats{Model: "bad", Err: errors.New("boom")})

	families, err := r.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["bondgraph_assemblies_total"])
	assert.True(t, names["bondgraph_assembly_duration_seconds"])
	assert.False(t, names["bondgraph_relations"])
}

func TestWriteText(t *testing.T) {
	r := NewRecorder()
	r.OnAssembly(bondgraph.AssemblyStats{Model: "se_c", Iterations: 1, Relations: 2})

	var b strings.Builder
	require.NoError(t, r.WriteText(&b))
	out := b.String()
	assert.Contains(t, out, `bondgraph_assemblies_total{model="se_c",status="success"} 1`)
	assert.Contains(t, out, `bondgraph_elimination_passes_count{model="se_c"} 1`)
	assert.Contains(t, out, `bondgraph_relations{kind="linear",model="se_c"} 2`)
}

func TestRecorderObservesModel(t *testing.T) {
	r := NewRecorder()
	m := bondgraph.NewModel("empty")
	m.Observe(r)
	_, err := m.SystemRep()
	require.NoError(t, err)

	counter, err := r.AssembliesTotal.GetMetricWithLabelValues("empty", "success")
	require.NoError(t, err)
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	assert.Equal(t, 1.0, metric.Counter.GetValue())
}
