package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CredentialsGenerated counts API keys handed out by /generate
	CredentialsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keyportal_credentials_generated_total",
		Help: "Total number of API keys generated",
	})

	// UsersCreated counts user+credential pairs persisted
	UsersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keyportal_users_created_total",
		Help: "Total number of users stored together with their credential",
	})

	// UsersDeleted counts user+credential pairs removed by administrators
	UsersDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keyportal_users_deleted_total",
		Help: "Total number of users deleted together with their credential",
	})

	AdminRegistrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "keyportal_admin_registrations_total",
		Help: "Total number of administrator accounts registered",
	})

	// AdminLogins tracks login attempts by result (success, email_not_found, password_mismatch)
	AdminLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "keyportal_admin_logins_total",
		Help: "Total number of administrator login attempts by result",
	}, []string{"result"})

	// SessionsActive tracks sessions held by the in-memory store
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "keyportal_sessions_active",
		Help: "Number of admin sessions held in memory",
	})

	// RequestDuration tracks HTTP handling time per route pattern
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "keyportal_http_request_duration_seconds",
		Help:    "Histogram of HTTP request handling duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
