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

const namespace = "hrms"

// Metrics owns a private registry so tests can build as many instances as
// they need. All recording methods are safe on a nil receiver.
type Metrics struct {
	registry         *prometheus.Registry
	httpReqCnt       *prometheus.CounterVec
	httpDur          *prometheus.HistogramVec
	httpInfl         *prometheus.GaugeVec
	leaveTransitions *prometheus.CounterVec
	attendanceEvents *prometheus.CounterVec
	payrollGenerated *prometheus.CounterVec
	outboxPublished  *prometheus.CounterVec
	notifications    prometheus.Counter
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Buckets: prometheus.DefBuckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "http_requests_inflight"}, []string{"route"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl)

	leaveTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "leave_transitions_total"}, []string{"status"})
	attendanceEvents := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "attendance_events_total"}, []string{"kind"})
	payrollGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "payroll_records_total"}, []string{"result"})
	outboxPublished := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "outbox_events_total"}, []string{"status"})
	notifications := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "notifications_persisted_total"})
	r.MustRegister(leaveTransitions, attendanceEvents, payrollGenerated, outboxPublished, notifications)

	return &Metrics{
		registry:         r,
		httpReqCnt:       httpReqCnt,
		httpDur:          httpDur,
		httpInfl:         httpInfl,
		leaveTransitions: leaveTransitions,
		attendanceEvents: attendanceEvents,
		payrollGenerated: payrollGenerated,
		outboxPublished:  outboxPublished,
		notifications:    notifications,
	}
}

func (m *Metrics) LeaveTransition(status string) {
	if m == nil {
		return
	}
	m.leaveTransitions.WithLabelValues(status).Inc()
}

// AttendanceEvent records a check_in, check_out or mark_absent.
func (m *Metrics) AttendanceEvent(kind string) {
	if m == nil {
		return
	}
	m.attendanceEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) PayrollGenerated(created, skipped int) {
	if m == nil {
		return
	}
	m.payrollGenerated.WithLabelValues("created").Add(float64(created))
	m.payrollGenerated.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *Metrics) OutboxPublished(status string, n int) {
	if m == nil {
		return
	}
	m.outboxPublished.WithLabelValues(status).Add(float64(n))
}

func (m *Metrics) NotificationPersisted() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for assertions in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
