package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pairchat/internal/domain"
)

// Relay results recorded on MessagesRelayed.
const (
	ResultDelivered   = "delivered"
	ResultSealed      = "sealed"
	ResultDecodeError = "decode_error"
	ResultInvalidUTF8 = "invalid_utf8"
	ResultNoSession   = "no_session"
)

// Metrics groups the collectors of one server instance. Each instance owns
// its registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	// Business metrics
	PairsFormed     prometheus.Counter
	SessionsEnded   prometheus.Counter
	SessionDuration prometheus.Histogram
	MessagesRelayed *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New builds the collectors. When stats is non-nil the queue length and
// active pair count are reported from it at scrape time.
func New(stats func() domain.Stats) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	m := &Metrics{
		Registry: reg,
		PairsFormed: f.NewCounter(prometheus.CounterOpts{
			Name: "pairchat_pairs_formed_total",
			Help: "Total pairs formed",
		}),
		SessionsEnded: f.NewCounter(prometheus.CounterOpts{
			Name: "pairchat_sessions_ended_total",
			Help: "Total sessions ended by a leave request",
		}),
		SessionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pairchat_session_duration_seconds",
			Help:    "Lifetime of ended sessions",
			Buckets: []float64{1, 10, 30, 60, 300, 900, 1800, 3600},
		}),
		MessagesRelayed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairchat_messages_relayed_total",
				Help: "Inbound text messages by relay result",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairchat_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairchat_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),
	}

	if stats != nil {
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pairchat_queue_length",
			Help: "Identities waiting for a partner",
		}, func() float64 { return float64(stats().Queued) })
		f.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pairchat_active_pairs",
			Help: "Active two-party sessions",
		}, func() float64 { return float64(stats().Pairs) })
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
