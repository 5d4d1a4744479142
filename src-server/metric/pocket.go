package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pocketRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pocketbot_pocket_request_seconds",
		Help:    "Latency of Pocket API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"code", "method"})
	pocketRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pocketbot_pocket_requests_inflight",
		Help: "Pocket API calls currently waiting for a response",
	})
)

// PocketTransport instruments next with Pocket API latency and concurrency.
func PocketTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperInFlight(pocketRequestsInFlight,
		promhttp.InstrumentRoundTripperDuration(pocketRequestDuration, next),
	)
}
