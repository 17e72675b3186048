// Package metrics records model assembly statistics in Prometheus form.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/san-kum/bondgraph/internal/bondgraph"
)

// Recorder is a bondgraph.AssemblyObserver backed by its own registry.
type Recorder struct {
	AssembliesTotal *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
	Eliminated      *prometheus.CounterVec
	Iterations      *prometheus.HistogramVec
	Relations       *prometheus.GaugeVec

	registry *prometheus.Registry
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	return &Recorder{
		registry: reg,
		AssembliesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bondgraph_assemblies_total",
				Help: "Total number of model assemblies",
			},
			[]string{"model", "status"},
		),
		Duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bondgraph_assembly_duration_seconds",
				Help:    "Assembly duration in seconds",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
			},
			[]string{"model"},
		),
		Eliminated: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "bondgraph_eliminated_coordinates_total",
				Help: "Internal coordinates eliminated during assembly",
			},
			[]string{"model"},
		),
		Iterations: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bondgraph_elimination_passes",
				Help:    "Substitution passes per assembly",
				Buckets: []float64{1, 2, 4, 8, 16, 32},
			},
			[]string{"model"},
		),
		Relations: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bondgraph_relations",
				Help: "Relations in the last assembled system",
			},
			[]string{"model", "kind"},
		),
	}
}

func (r *Recorder) OnAssembly(s bondgraph.AssemblyStats) {
	status := "success"
	if s.Err != nil {
		status = "error"
	}
	r.AssembliesTotal.WithLabelValues(s.Model, status).Inc()
	r.Duration.WithLabelValues(s.Model).Observe(s.Duration.Seconds())
	if s.Err != nil {
		return
	}
	r.Eliminated.WithLabelValues(s.Model).Add(float64(s.Eliminated))
	r.Iterations.WithLabelValues(s.Model).Observe(float64(s.Iterations))
	r.Relations.WithLabelValues(s.Model, "linear").Set(float64(s.Relations - s.Nonlinear))
	r.Relations.WithLabelValues(s.Model, "nonlinear").Set(float64(s.Nonlinear))
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) Gather() ([]*dto.MetricFamily, error) { return r.registry.Gather() }

// WriteText prints one line per sample. Histograms are reduced to their
// count and sum.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name, labels := mf.GetName(), formatLabels(m.GetLabel())
			var lines []string
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				lines = append(lines, fmt.Sprintf("%s%s %g", name, labels, m.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				lines = append(lines, fmt.Sprintf("%s%s %g", name, labels, m.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				lines = append(lines,
					fmt.Sprintf("%s_count%s %d", name, labels, h.GetSampleCount()),
					fmt.Sprintf("%s_sum%s %g", name, labels, h.GetSampleSum()))
			}
			for _, l := range lines {
				if _, err := fmt.Fprintln(w, l); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
