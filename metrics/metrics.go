// Package metrics defines the prometheus collectors exported by this
// module, following the same promauto-at-init pattern caddy uses for its
// own admin API metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "streamciphers"
)

// Collectors is the set of metrics tracked for cluster runs. It is
// registered once at package init, before any Encrypt call can run.
var Collectors = struct {
	RoundsTotal    *prometheus.CounterVec
	BytesProcessed *prometheus.CounterVec
	AbortsTotal    prometheus.Counter
}{}

func init() {
	Collectors.RoundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dmabuf",
		Name:      "advance_rounds_total",
		Help:      "Number of DmaBuf.Advance rounds completed, by core.",
	}, []string{"core"})

	Collectors.BytesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "shard",
		Name:      "bytes_encrypted_total",
		Help:      "Bytes passed through ApplyKeystream, by core.",
	}, []string{"core"})

	Collectors.AbortsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "clusterwrap",
		Name:      "aborts_total",
		Help:      "Number of fatal aborts raised by cluster-internal code.",
	})
}
