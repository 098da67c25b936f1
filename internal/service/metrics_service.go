package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	gridLoads       prometheus.Counter
	cellWrites      *prometheus.CounterVec
	saveConflicts   prometheus.Counter
	exportTotal     *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	gridLoads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_grid_loads_total",
		Help: "Total month grid loads",
	})

	cellWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_cell_writes_total",
		Help: "Cell writes by outcome",
	}, []string{"outcome"})

	saveConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_save_conflicts_total",
		Help: "Writes rejected because another write was in flight",
	})

	exportTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exports_total",
		Help: "Rendered export downloads by kind and format",
	}, []string{"kind", "format"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, gridLoads, cellWrites, saveConflicts, exportTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		gridLoads:       gridLoads,
		cellWrites:      cellWrites,
		saveConflicts:   saveConflicts,
		exportTotal:     exportTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordGridLoad counts a month grid load.
func (m *MetricsService) RecordGridLoad() {
	if m == nil {
		return
	}
	m.gridLoads.Inc()
}

// RecordCellWrite counts a cell write by outcome ("saved", "cleared",
// "rolled_back").
func (m *MetricsService) RecordCellWrite(outcome string) {
	if m == nil {
		return
	}
	m.cellWrites.WithLabelValues(outcome).Inc()
}

// RecordSaveConflict counts a write rejected by the in-flight guard.
func (m *MetricsService) RecordSaveConflict() {
	if m == nil {
		return
	}
	m.saveConflicts.Inc()
}

// RecordExport counts a rendered download.
func (m *MetricsService) RecordExport(kind, format string) {
	if m == nil {
		return
	}
	m.exportTotal.WithLabelValues(kind, format).Inc()
}
