package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration *prometheus.HistogramVec

	ProxyRequestsTotal    *prometheus.CounterVec
	ProxyRequestsInFlight prometheus.Gauge

	DownloadsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		SearchRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixquery_search_requests_total",
				Help: "Total number of photo search requests by provider and outcome",
			},
			[]string{"provider", "status"},
		),
		SearchRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pixquery_search_request_duration_seconds",
				Help:    "Photo search request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider"},
		),

		ProxyRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixquery_proxy_requests_total",
				Help: "Total number of proxy HTTP requests by route and code",
			},
			[]string{"route", "code"},
		),
		ProxyRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pixquery_proxy_requests_in_flight",
				Help: "Number of proxy requests currently being served",
			},
		),

		DownloadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixquery_downloads_total",
				Help: "Total number of image downloads by outcome",
			},
			[]string{"status"},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordSearch(provider, status string, duration time.Duration) {
	m.SearchRequestsTotal.WithLabelValues(provider, status).Inc()
	m.SearchRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordProxyRequest(route, code string) {
	m.ProxyRequestsTotal.WithLabelValues(route, code).Inc()
}

func (m *Metrics) RecordDownload(status string) {
	m.DownloadsTotal.WithLabelValues(status).Inc()
}
