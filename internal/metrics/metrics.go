package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/reto21d/internal/models"
)

// Metrics holds the collectors of one server, registered on their own registry
type Metrics struct {
	Registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	authRejections       *prometheus.CounterVec
	pointsAwarded        *prometheus.CounterVec
	pointsTotal          prometheus.Gauge
	achievementsUnlocked *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reto21d_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reto21d_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		authRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reto21d_auth_rejections_total",
				Help: "Total number of unauthorized requests",
			},
			[]string{"reason"},
		),
		pointsAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reto21d_points_awarded_total",
				Help: "Points awarded, by action",
			},
			[]string{"action"},
		),
		pointsTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reto21d_points_balance",
			Help: "Current points total",
		}),
		achievementsUnlocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reto21d_achievements_unlocked_total",
				Help: "Achievements unlocked, by key",
			},
			[]string{"key"},
		),
	}
	m.Registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.authRejections,
		m.pointsAwarded,
		m.pointsTotal,
		m.achievementsUnlocked,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies. Paths are labelled with
// the mux route template to keep ids out of the label set.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{w, http.StatusOK}

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		m.httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(ww.statusCode)).Inc()
		m.httpRequestDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())

		switch ww.statusCode {
		case http.StatusUnauthorized:
			m.authRejections.WithLabelValues("401_unauthorized").Inc()
		case http.StatusForbidden:
			m.authRejections.WithLabelValues("403_forbidden").Inc()
		case http.StatusTooManyRequests:
			m.authRejections.WithLabelValues("429_rate_limited").Inc()
		}
	})
}

// PointsAwarded observes the points ledger
func (m *Metrics) PointsAwarded(action models.PointsAction, points, total int) {
	m.pointsAwarded.WithLabelValues(string(action)).Add(float64(points))
	m.pointsTotal.Set(float64(total))
}

// SetPointsTotal seeds the balance gauge at startup
func (m *Metrics) SetPointsTotal(total int) {
	m.pointsTotal.Set(float64(total))
}

// AchievementUnlocked observes the achievement engine
func (m *Metrics) AchievementUnlocked(a models.Achievement) {
	m.achievementsUnlocked.WithLabelValues(a.Key).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
