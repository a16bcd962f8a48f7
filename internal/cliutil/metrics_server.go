package cliutil

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// metricsAddr is the fixed local address the optional /metrics endpoint is
// served on; it is ambient instrumentation, not part of the transfer CLI
// surface, so it is never read from an argument or environment variable.
const metricsAddr = "127.0.0.1:9109"

// StartMetricsServer creates a fresh registry and serves it over HTTP in the
// background, returning the registry for the session to register its
// per-transfer gauges against. A bind failure (e.g. the port is already in
// use by another concurrent run) is logged and otherwise ignored — metrics
// are an observability nicety, never a transfer precondition.
func StartMetricsServer() prometheus.Registerer {
	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	go func() {
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logrus.WithError(err).Debug("metrics server not started")
		}
	}()

	return reg
}
