package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thehopecrystal/verify-properties/internal/models"
)

// Metrics owns its registry so several servers can live in one process.
type Metrics struct {
	registry      *prometheus.Registry
	notifications *prometheus.CounterVec
	requests      *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: `verify_notifications_total`,
			Help: `Notifications emitted by state-changing operations.`,
		}, []string{`level`, `message`}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: `verify_http_requests_total`,
			Help: `HTTP requests by route and status code.`,
		}, []string{`route`, `method`, `code`}),
	}

	registry.MustRegister(
		m.notifications,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Notify counts notifications. Messages are a small fixed set apart from the
// status names they embed, so the label stays bounded.
func (m *Metrics) Notify(_ context.Context, n models.Notification) {
	m.notifications.WithLabelValues(string(n.Level), n.Message).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests by their route template, not the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := `unmatched`
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
	})
}
