// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricPrefix = "gridpulse_"

var (
	// HTTPRequests counts API requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "http_requests_total",
		Help: "API requests by route and status",
	}, []string{"route", "status"})

	// RecordsSkipped counts malformed raw records dropped during parsing.
	RecordsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "records_skipped_total",
		Help: "Malformed raw price records skipped during reconstruction",
	})

	// SpikesDetected counts spikes surviving deduplication.
	SpikesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: metricPrefix + "spikes_detected_total",
		Help: "Price spikes detected after deduplication",
	})

	// BidsSettled counts settled bids by outcome.
	BidsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: metricPrefix + "bids_settled_total",
		Help: "Bids settled by outcome",
	}, []string{"outcome"})
)
