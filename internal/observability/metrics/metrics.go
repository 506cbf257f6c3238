package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures the metrics registry labels.
type Config struct {
	ServiceName string
	Environment string
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics exposes cost model domain instruments.
type Metrics struct {
	modelsCreated  prometheus.Counter
	modelsDeleted  prometheus.Counter
	worksUpdated   *prometheus.CounterVec
	worksDeleted   prometheus.Counter
	recalculations prometheus.Counter
	templateErrors prometheus.Counter
	storeModels    prometheus.Gauge
	storeWorks     prometheus.Gauge
}

// New registers the domain instruments on reg.
func New(cfg Config, reg *prometheus.Registry) (*Metrics, error) {
	labels := constLabels(cfg)
	m := &Metrics{
		modelsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "costmodel_models_created_total",
			Help:        "Cost models created.",
			ConstLabels: labels,
		}),
		modelsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "costmodel_models_deleted_total",
			Help:        "Cost models deleted together with their works.",
			ConstLabels: labels,
		}),
		worksUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "costmodel_measured_works_updated_total",
			Help:        "Measured work updates by whether the line total was recomputed.",
			ConstLabels: labels,
		}, []string{"cost_changed"}),
		worksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "costmodel_measured_works_deleted_total",
			Help:        "Measured works deleted individually.",
			ConstLabels: labels,
		}),
		recalculations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "costmodel_recalculations_total",
			Help:        "Cost model total recalculations.",
			ConstLabels: labels,
		}),
		templateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "costmodel_nrm2_template_errors_total",
			Help:        "Failed NRM2 template loads.",
			ConstLabels: labels,
		}),
		storeModels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "costmodel_store_models",
			Help:        "Cost models currently held in memory.",
			ConstLabels: labels,
		}),
		storeWorks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "costmodel_store_measured_works",
			Help:        "Measured works currently held in memory.",
			ConstLabels: labels,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.modelsCreated, m.modelsDeleted, m.worksUpdated, m.worksDeleted,
		m.recalculations, m.templateErrors, m.storeModels, m.storeWorks,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) RecordModelCreated() {
	if m == nil {
		return
	}
	m.modelsCreated.Inc()
}

func (m *Metrics) RecordModelDeleted() {
	if m == nil {
		return
	}
	m.modelsDeleted.Inc()
}

func (m *Metrics) RecordWorkUpdated(costChanged bool) {
	if m == nil {
		return
	}
	m.worksUpdated.WithLabelValues(strconv.FormatBool(costChanged)).Inc()
}

func (m *Metrics) RecordWorkDeleted() {
	if m == nil {
		return
	}
	m.worksDeleted.Inc()
}

func (m *Metrics) RecordRecalculation() {
	if m == nil {
		return
	}
	m.recalculations.Inc()
}

func (m *Metrics) RecordTemplateError() {
	if m == nil {
		return
	}
	m.templateErrors.Inc()
}

// ObserveStore sets the in-memory collection size gauges.
func (m *Metrics) ObserveStore(models, works int) {
	if m == nil {
		return
	}
	m.storeModels.Set(float64(models))
	m.storeWorks.Set(float64(works))
}

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(cfg Config, reg *prometheus.Registry) (*HTTPMetrics, error) {
	labels := constLabels(cfg)
	h := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "costmodel_http_requests_total",
			Help:        "HTTP requests by method, route and status code.",
			ConstLabels: labels,
		}, []string{"method", "route", "status_code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "costmodel_http_request_duration_seconds",
			Help:        "HTTP request latency by method and route.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if err := reg.Register(h.requests); err != nil {
		return nil, err
	}
	if err := reg.Register(h.duration); err != nil {
		return nil, err
	}
	return h, nil
}

// GinMiddleware observes every request after the handler chain completes.
func (h *HTTPMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method
		h.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		h.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func constLabels(cfg Config) prometheus.Labels {
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "costmodel"
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = "unknown"
	}
	return prometheus.Labels{"service": service, "env": env}
}
