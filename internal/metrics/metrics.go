package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder holds the service's Prometheus collectors. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	storeWrites *prometheus.CounterVec
	storeReads  *prometheus.CounterVec
	reconciles  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "squadline_store_writes_total",
			Help: "Document store writes by collection, operation and outcome",
		}, []string{"collection", "op", "outcome"}),
		storeReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "squadline_store_reads_total",
			Help: "Document store reads by collection, operation and outcome",
		}, []string{"collection", "op", "outcome"}),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "squadline_reconciles_total",
			Help: "Optimistic updates discarded in favour of a re-fetch",
		}, []string{"subsystem"}),
	}
	if reg != nil {
		reg.MustRegister(r.storeWrites, r.storeReads, r.reconciles)
	}
	return r
}

func (r *Recorder) ObserveWrite(collection, op string, err error) {
	if r == nil {
		return
	}
	r.storeWrites.WithLabelValues(collection, op, outcome(err)).Inc()
}

func (r *Recorder) ObserveRead(collection, op string, err error) {
	if r == nil {
		return
	}
	r.storeReads.WithLabelValues(collection, op, outcome(err)).Inc()
}

func (r *Recorder) ObserveReconcile(subsystem string) {
	if r == nil {
		return
	}
	r.reconciles.WithLabelValues(subsystem).Inc()
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
