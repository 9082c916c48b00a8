package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated    prometheus.Counter
	UsersUpdated    prometheus.Counter
	UsersDeleted    prometheus.Counter
	Logins          *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		UsersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "userdir_users_created_total",
			Help: "Total number of users created",
		}),
		UsersUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "userdir_users_updated_total",
			Help: "Total number of users updated",
		}),
		UsersDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "userdir_users_deleted_total",
			Help: "Total number of delete requests served",
		}),
		Logins: f.NewCounterVec(prometheus.CounterOpts{
			Name: "userdir_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userdir_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route", "status"}),
	}
}

// The helpers below tolerate a nil receiver so handlers can run without metrics.

func (m *Metrics) IncrementUsersCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}

func (m *Metrics) IncrementUsersUpdated() {
	if m != nil {
		m.UsersUpdated.Inc()
	}
}

func (m *Metrics) IncrementUsersDeleted() {
	if m != nil {
		m.UsersDeleted.Inc()
	}
}

// IncrementLogin records a login attempt; result is "success" or "not_found".
func (m *Metrics) IncrementLogin(result string) {
	if m != nil {
		m.Logins.WithLabelValues(result).Inc()
	}
}

// ObserveRequest records a request duration measured from start.
func (m *Metrics) ObserveRequest(method, route, status string, start time.Time) {
	if m != nil {
		m.RequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	}
}
