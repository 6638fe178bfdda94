// Package metrics exposes job counters for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
)

// Metrics holds the collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	JobsTotal        *prometheus.CounterVec
	StageTransitions *prometheus.CounterVec
	ActiveJobs       prometheus.Gauge
	TargetBitrate    prometheus.Histogram
}

// New builds and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		JobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tubeshift",
			Name:      "jobs_total",
			Help:      "Finished jobs by terminal status.",
		}, []string{"status"}),
		StageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tubeshift",
			Name:      "stage_transitions_total",
			Help:      "Job status transitions by the status entered.",
		}, []string{"stage"}),
		ActiveJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tubeshift",
			Name:      "active_jobs",
			Help:      "Jobs currently held by a worker.",
		}),
		TargetBitrate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tubeshift",
			Name:      "target_bitrate_mbit",
			Help:      "Video bitrate chosen for re-encoded jobs, in Mbit/s.",
			Buckets:   []float64{4, 6, 8, 12, 16, 24, 32, 50, 80},
		}),
	}
	m.Registry.MustRegister(m.JobsTotal, m.StageTransitions, m.ActiveJobs, m.TargetBitrate)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Serve listens on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Reporter records job events and forwards them to Next.
type Reporter struct {
	m    *Metrics
	next progress.Reporter

	mu     sync.Mutex
	stages map[string]model.Status
}

// Wrap decorates next with metric recording. A nil next is treated as Nop.
func (m *Metrics) Wrap(next progress.Reporter) *Reporter {
	if next == nil {
		next = progress.Nop{}
	}
	return &Reporter{m: m, next: next, stages: make(map[string]model.Status)}
}

func (r *Reporter) Update(u progress.Update) {
	r.mu.Lock()
	prev, seen := r.stages[u.JobID]
	if !seen || model.CanAdvance(prev, u.Stage) {
		r.stages[u.JobID] = u.Stage
		r.m.StageTransitions.WithLabelValues(string(u.Stage)).Inc()
		switch {
		case u.Stage.Active() && !prev.Active():
			r.m.ActiveJobs.Inc()
		case !u.Stage.Active() && prev.Active():
			r.m.ActiveJobs.Dec()
		}
	}
	r.mu.Unlock()
	r.next.Update(u)
}

func (r *Reporter) Log(l progress.Log) { r.next.Log(l) }

func (r *Reporter) Result(res progress.Result) {
	r.mu.Lock()
	if prev, ok := r.stages[res.JobID]; ok && prev.Active() {
		r.m.ActiveJobs.Dec()
	}
	delete(r.stages, res.JobID)
	r.mu.Unlock()

	r.m.JobsTotal.WithLabelValues(string(res.Status)).Inc()
	if res.Decision.Reencode() && res.Decision.TargetMbit > 0 {
		r.m.TargetBitrate.Observe(float64(res.Decision.TargetMbit))
	}
	r.next.Result(res)
}
