package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "brandlink"

// Metrics набор метрик сервиса в собственном реестре.
// Методы безопасны для nil получателя, чтобы сервисы работали без метрик в тестах.
type Metrics struct {
	registry *prometheus.Registry

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	OTPIssued     *prometheus.CounterVec
	OTPVerified   *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	ChannelLinks  *prometheus.CounterVec

	WSConnections prometheus.Gauge
}

// New создаёт и регистрирует метрики.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		OTPIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "otp",
				Name:      "issued_total",
				Help:      "OTP challenges requested from the SMS provider",
			},
			[]string{"result"},
		),
		OTPVerified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "otp",
				Name:      "verifications_total",
				Help:      "OTP verification attempts",
			},
			[]string{"result"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registration",
				Name:      "completed_total",
				Help:      "Completed registration attempts",
			},
			[]string{"result"},
		),
		ChannelLinks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "channel",
				Name:      "links_total",
				Help:      "OAuth channel link callbacks",
			},
			[]string{"platform", "result"},
		),
		WSConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ws",
				Name:      "connections",
				Help:      "Open websocket connections",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCount,
		m.RequestDuration,
		m.OTPIssued,
		m.OTPVerified,
		m.Registrations,
		m.ChannelLinks,
		m.WSConnections,
	)

	return m
}

// Handler обработчик эндпоинта /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware собирает метрики HTTP запросов по шаблону маршрута.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestCount.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveOTPIssued учитывает попытку отправки кода.
func (m *Metrics) ObserveOTPIssued(result string) {
	if m == nil {
		return
	}
	m.OTPIssued.WithLabelValues(result).Inc()
}

// ObserveOTPVerified учитывает попытку проверки кода.
func (m *Metrics) ObserveOTPVerified(result string) {
	if m == nil {
		return
	}
	m.OTPVerified.WithLabelValues(result).Inc()
}

// ObserveRegistration учитывает завершение регистрации.
func (m *Metrics) ObserveRegistration(result string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(result).Inc()
}

// ObserveChannelLink учитывает результат привязки канала.
func (m *Metrics) ObserveChannelLink(platform, result string) {
	if m == nil {
		return
	}
	m.ChannelLinks.WithLabelValues(platform, result).Inc()
}

// WSConnected и WSDisconnected отслеживают число открытых сокетов.
func (m *Metrics) WSConnected() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

func (m *Metrics) WSDisconnected() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}
