// SPDX-License-Identifier: MIT

package resolution

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("sseq.resolution")

type metrics struct {
	computed   prometheus.Counter
	loaded     prometheus.Counter
	duration   prometheus.Histogram
	generators *prometheus.GaugeVec
}

// newMetrics builds the collectors; a nil registerer leaves them unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)

	return &metrics{
		computed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "sseq",
			Name:      "bidegrees_computed_total",
			Help:      "Bidegrees computed by the resolution builder.",
		}),
		loaded: f.NewCounter(prometheus.CounterOpts{
			Namespace: "sseq",
			Name:      "bidegrees_loaded_total",
			Help:      "Bidegrees restored from checkpoints.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sseq",
			Name:      "step_duration_seconds",
			Help:      "Time spent on one bidegree.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		generators: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sseq",
			Name:      "generators",
			Help:      "Generators committed per homological degree.",
		}, []string{"s"}),
	}
}

func (m *metrics) addGenerators(s, n int) {
	m.generators.WithLabelValues(strconv.Itoa(s)).Add(float64(n))
}
