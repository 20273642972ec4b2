package proxmox

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pvelist",
		Name:      "api_requests_total",
		Help:      "Proxmox API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pvelist",
		Name:      "api_request_duration_seconds",
		Help:      "Latency of Proxmox API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// outcome maps an error to its metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrHTTP):
		return "http"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrAuthDataMissing):
		return "auth_data_missing"
	default:
		return "error"
	}
}
