package op

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters of the internal stat endpoint. Each
// provider carries its own registry, so tests never collide on
// duplicate registrations.
type Metrics struct {
	registry *prometheus.Registry

	CodesIssued        prometheus.Counter
	CodesConsumed      prometheus.Counter
	SessionsCreated    prometheus.Counter
	SessionsTerminated prometheus.Counter
	TokensIssued       *prometheus.CounterVec
	Introspections     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CodesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auric",
			Name:      "authorization_codes_issued_total",
			Help:      "Number of authorization codes issued.",
		}),
		CodesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auric",
			Name:      "authorization_codes_consumed_total",
			Help:      "Number of authorization codes exchanged for tokens.",
		}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auric",
			Name:      "sessions_created_total",
			Help:      "Number of end-user sessions created.",
		}),
		SessionsTerminated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "auric",
			Name:      "sessions_terminated_total",
			Help:      "Number of end-user sessions terminated.",
		}),
		TokensIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auric",
			Name:      "tokens_issued_total",
			Help:      "Number of token responses, by grant type.",
		}, []string{"grant_type"}),
		Introspections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auric",
			Name:      "introspections_total",
			Help:      "Number of introspection responses, by token activity.",
		}, []string{"active"}),
	}
	m.registry.MustRegister(
		m.CodesIssued, m.CodesConsumed,
		m.SessionsCreated, m.SessionsTerminated,
		m.TokensIssued, m.Introspections,
	)
	return m
}

// Handler exposes the metrics in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statHandler guards the metrics behind a bearer token carrying the
// configured stat scope.
func statHandler(o *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "Stat")
		r = r.WithContext(ctx)
		defer span.End()

		if _, err := RequireTokenScope(ctx, r, o, o.Config().StatScope); err != nil {
			RequestError(w, r, err, o.Logger())
			return
		}
		o.Metrics().Handler().ServeHTTP(w, r)
	}
}
