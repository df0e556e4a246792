package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus instrumentation of the API server. A
// private registry keeps the /metrics output limited to detector
// series plus the standard Go collectors.
type metrics struct {
	registry *prometheus.Registry

	detectionRuns  prometheus.Counter
	hostsProcessed prometheus.Counter
	zombiesFound   prometheus.Counter
	zombiesKilled  prometheus.Counter
	requestErrors  *prometheus.CounterVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)
	return &metrics{
		registry: registry,
		detectionRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "zombie_detector_detection_runs_total",
			Help: "Number of detection batches processed.",
		}),
		hostsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "zombie_detector_hosts_processed_total",
			Help: "Number of host records classified.",
		}),
		zombiesFound: factory.NewCounter(prometheus.CounterOpts{
			Name: "zombie_detector_zombies_detected_total",
			Help: "Number of hosts classified as zombies.",
		}),
		zombiesKilled: factory.NewCounter(prometheus.CounterOpts{
			Name: "zombie_detector_zombies_killed_total",
			Help: "Number of hosts that left the zombie set.",
		}),
		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zombie_detector_request_errors_total",
			Help: "Number of API requests answered with an error status.",
		}, []string{"endpoint", "status"}),
	}
}
