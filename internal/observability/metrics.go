package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "analog"

// Metrics holds the session persistence collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	sessionsSaved prometheus.Counter
	saveFailures  prometheus.Counter
	filesSkipped  prometheus.Counter
	restoredGauge prometheus.Gauge
	saveDuration  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// Pass nil to create unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessionsSaved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_saved_total",
				Help:      "Total session snapshots written.",
			},
		),
		saveFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_save_failures_total",
				Help:      "Total session snapshots that failed to persist.",
			},
		),
		filesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_files_skipped_total",
				Help:      "Total session files skipped because they could not be decoded.",
			},
		),
		restoredGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_restored",
				Help:      "Number of sessions restored by the last listing.",
			},
		),
		saveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "session_save_duration_seconds",
				Help:      "Session save duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.sessionsSaved,
			m.saveFailures,
			m.filesSkipped,
			m.restoredGauge,
			m.saveDuration,
		)
	}

	return m
}

// RecordSave records the outcome of one save.
func (m *Metrics) RecordSave(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.saveDuration.Observe(d.Seconds())
	if err != nil {
		m.saveFailures.Inc()
		return
	}
	m.sessionsSaved.Inc()
}

// RecordSkipped counts one undecodable session file.
func (m *Metrics) RecordSkipped() {
	if m == nil {
		return
	}
	m.filesSkipped.Inc()
}

// SetRestored records how many sessions the last listing decoded.
func (m *Metrics) SetRestored(n int) {
	if m == nil {
		return
	}
	m.restoredGauge.Set(float64(n))
}

// Handler exposes the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve serves /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
