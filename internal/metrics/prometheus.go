package metrics

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	defaultCollector *MetricsCollector
	once             sync.Once
)

// GetMetricsCollector returns the singleton metrics collector instance
func GetMetricsCollector(namespace, appName string) *MetricsCollector {
	once.Do(func() {
		defaultCollector = NewMetricsCollector(namespace, appName)
	})
	return defaultCollector
}

type MetricsCollector struct {
	AppName         string
	RequestDuration *prometheus.HistogramVec
	RequestCounter  *prometheus.CounterVec
	ErrorCounter    *prometheus.CounterVec
	ActiveRequests  prometheus.Gauge
	RecordedCalls   *prometheus.CounterVec
}

type MetricsResponse struct {
	AppName   string                 `json:"app_name"`
	Timestamp time.Time              `json:"timestamp"`
	Metrics   map[string]interface{} `json:"metrics"`
}

func NewMetricsCollector(namespace, appName string) *MetricsCollector {
	return &MetricsCollector{
		AppName: appName,
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"app", "method", "path", "status"},
		),

		RequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"app", "method", "path", "status"},
		),

		ErrorCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors",
			},
			[]string{"app", "type"},
		),

		ActiveRequests: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_requests",
				Help:      "Number of active requests",
				ConstLabels: prometheus.Labels{
					"app": appName,
				},
			},
		),

		RecordedCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recorded_calls_total",
				Help:      "Total number of call records written",
			},
			[]string{"app", "source"},
		),
	}
}

func (m *MetricsCollector) IncActiveRequests() {
	m.ActiveRequests.Inc()
}

func (m *MetricsCollector) DecActiveRequests() {
	m.ActiveRequests.Dec()
}

func (m *MetricsCollector) LogError(errorType string, err error) {
	m.ErrorCounter.With(prometheus.Labels{
		"app":  m.AppName,
		"type": errorType,
	}).Inc()
}

// IncRecordedCalls counts a persisted call record by its origin: "track"
// for explicit track requests, "auto" for middleware-captured ones.
func (m *MetricsCollector) IncRecordedCalls(source string) {
	m.RecordedCalls.With(prometheus.Labels{
		"app":    m.AppName,
		"source": source,
	}).Inc()
}

// IncRequestCounter increments the request counter with given labels
func (m *MetricsCollector) IncRequestCounter(method, path, status string) {
	m.RequestCounter.With(prometheus.Labels{
		"app":    m.AppName,
		"method": method,
		"path":   path,
		"status": status,
	}).Inc()
}

// ObserveRequestDuration observes the request duration
func (m *MetricsCollector) ObserveRequestDuration(method, path, status string, duration time.Duration) {
	m.RequestDuration.With(prometheus.Labels{
		"app":    m.AppName,
		"method": method,
		"path":   path,
		"status": status,
	}).Observe(duration.Seconds())
}

// GetMetricsJSON returns metrics in JSON format
func (m *MetricsCollector) GetMetricsJSON() ([]byte, error) {
	metrics := MetricsResponse{
		AppName:   m.AppName,
		Timestamp: time.Now(),
		Metrics: map[string]interface{}{
			"request_duration": m.getHistogramMetrics(m.RequestDuration),
			"requests_total":   m.getCounterMetrics(m.RequestCounter),
			"errors_total":     m.getCounterMetrics(m.ErrorCounter),
			"recorded_calls":   m.getCounterMetrics(m.RecordedCalls),
			"active_requests":  m.getGaugeValue(m.ActiveRequests),
		},
	}

	return json.Marshal(metrics)
}

func (m *MetricsCollector) getHistogramMetrics(vec *prometheus.HistogramVec) map[string]float64 {
	metrics := make(map[string]float64)
	ch := make(chan prometheus.Metric, 1000)
	vec.Collect(ch)
	close(ch)

	for metric := range ch {
		dtoMetric := &dto.Metric{}
		metric.Write(dtoMetric)
		hist := dtoMetric.GetHistogram()

		for _, bucket := range hist.GetBucket() {
			metrics[fmt.Sprintf("bucket_%.2f", bucket.GetUpperBound())] = float64(bucket.GetCumulativeCount())
		}
		metrics["sum"] = hist.GetSampleSum()
		metrics["count"] = float64(hist.GetSampleCount())
	}

	return metrics
}

func (m *MetricsCollector) getCounterMetrics(vec *prometheus.CounterVec) map[string]float64 {
	metrics := make(map[string]float64)
	ch := make(chan prometheus.Metric, 1000)
	vec.Collect(ch)
	close(ch)

	for metric := range ch {
		dtoMetric := &dto.Metric{}
		metric.Write(dtoMetric)
		counter := dtoMetric.GetCounter()
		metrics[getMetricName(metric)] = counter.GetValue()
	}

	return metrics
}

func (m *MetricsCollector) getGaugeValue(gauge prometheus.Gauge) float64 {
	ch := make(chan prometheus.Metric, 1)
	gauge.Collect(ch)
	close(ch)

	metric := <-ch
	dtoMetric := &dto.Metric{}
	metric.Write(dtoMetric)
	return dtoMetric.GetGauge().GetValue()
}

func getMetricName(metric prometheus.Metric) string {
	dtoMetric := &dto.Metric{}
	metric.Write(dtoMetric)

	var labels []string
	for _, label := range dtoMetric.GetLabel() {
		labels = append(labels, fmt.Sprintf("%s=%s", label.GetName(), label.GetValue()))
	}

	return strings.Join(labels, ",")
}
