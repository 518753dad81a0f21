package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	whatsappMessages  *prometheus.CounterVec
	modelTrainings    prometheus.Counter
	forecastsComputed prometheus.Counter
}

func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		whatsappMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "whatsapp_messages_total",
			Help: "Total count of WhatsApp messages by delivery outcome.",
		}, []string{"outcome"}),
		modelTrainings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "segmentation_trainings_total",
			Help: "Total count of segmentation model trainings.",
		}),
		forecastsComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forecasts_computed_total",
			Help: "Total count of forecasts computed.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.whatsappMessages,
		m.modelTrainings,
		m.forecastsComputed,
	)

	return m, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(duration)
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) MessagesObserved(sent, failed int) {
	if m == nil {
		return
	}
	m.whatsappMessages.WithLabelValues("sent").Add(float64(sent))
	m.whatsappMessages.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) ModelTrained() {
	if m == nil {
		return
	}
	m.modelTrainings.Inc()
}

func (m *Metrics) ForecastComputed() {
	if m == nil {
		return
	}
	m.forecastsComputed.Inc()
}
