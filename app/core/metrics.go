package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opencurrent/opencurrent/pkg/metrics"
)

type Metrics struct {
	apiResponseTime   *prometheus.HistogramVec
	apiErrorCounter   *prometheus.CounterVec
	modelRequestTime  *prometheus.HistogramVec
	ingestTaskCounter *prometheus.CounterVec
	retrievalTime     *prometheus.HistogramVec
}

func NewMetrics(ns, system string) *Metrics {
	metrics.SetupMetricsManager(ns, system, prometheus.DefaultRegisterer.(*prometheus.Registry))

	m := &Metrics{
		apiResponseTime:   metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:   metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		modelRequestTime:  metrics.NewHistogramVec("model_request_time", []string{"target"}),
		ingestTaskCounter: metrics.NewCounterVec("ingest_task", []string{"status"}),
		retrievalTime:     metrics.NewHistogramVec("retrieval_time", []string{"kind"}),
	}

	return m
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) ModelRequestTimer(target string) *prometheus.Timer {
	return prometheus.NewTimer(m.modelRequestTime.WithLabelValues(target))
}

func (m *Metrics) IngestTaskInc(status string) {
	m.ingestTaskCounter.WithLabelValues(status).Inc()
}

func (m *Metrics) RetrievalTimer(kind string) *prometheus.Timer {
	return prometheus.NewTimer(m.retrievalTime.WithLabelValues(kind))
}
