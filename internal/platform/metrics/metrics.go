package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the gateway.
type Metrics struct {
	GateRedirects      *prometheus.CounterVec
	SessionValidations *prometheus.CounterVec
	Logins             *prometheus.CounterVec
}

// New creates and registers all gateway metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		GateRedirects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicgate_gate_redirects_total",
			Help: "Navigations redirected by the edge filter or route guard, by reason.",
		}, []string{"layer", "reason"}),
		SessionValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicgate_session_validations_total",
			Help: "Backend session validations performed by the route guard, by result.",
		}, []string{"result"}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicgate_logins_total",
			Help: "Login attempts through the session API, by result.",
		}, []string{"result"}),
	}
}

// Nop returns metrics backed by an isolated registry, for tests that do not
// want to touch the default registry.
func Nop() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		GateRedirects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicgate_gate_redirects_total",
			Help: "Navigations redirected by the edge filter or route guard, by reason.",
		}, []string{"layer", "reason"}),
		SessionValidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicgate_session_validations_total",
			Help: "Backend session validations performed by the route guard, by result.",
		}, []string{"result"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicgate_logins_total",
			Help: "Login attempts through the session API, by result.",
		}, []string{"result"}),
	}
}
