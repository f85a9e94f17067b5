package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry     *prometheus.Registry
	namespace    string
	monitorCalls *prometheus.CounterVec
	fabricEvents *prometheus.CounterVec
	errorReports *prometheus.CounterVec
	results      *prometheus.CounterVec
	fabrics      prometheus.Gauge
	feedbackDrop prometheus.Counter
	rtpPackets   *prometheus.CounterVec
	rtpBytes     *prometheus.CounterVec
	rtpLost      *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	ns := namespace
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	monitorCalls := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "monitor_calls_total", Help: "Calls issued to the monitoring integration."}, []string{"call"})
	fabricEvents := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "fabric_events_total", Help: "Fabric events sent, by event."}, []string{"event"})
	errorReports := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "error_reports_total", Help: "Error reports sent, by attributed function."}, []string{"function"})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "monitor_results_total", Help: "Asynchronous monitor call results."}, []string{"call", "status"})
	fabrics := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: "fabrics_registered", Help: "Fabrics registered in this process."})
	feedbackDrop := prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: "feedback_rate_limited_total", Help: "Feedback submissions rejected by the rate limiter."})
	rtpPackets := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "rtp_packets_received_total", Help: "Inbound RTP packets, by media kind."}, []string{"kind"})
	rtpBytes := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "rtp_bytes_received_total", Help: "Inbound RTP bytes, by media kind."}, []string{"kind"})
	rtpLost := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: ns, Name: "rtp_packets_lost_total", Help: "Inbound RTP packets missing from the sequence, by media kind."}, []string{"kind"})
	r.MustRegister(monitorCalls, fabricEvents, errorReports, results, fabrics, feedbackDrop, rtpPackets, rtpBytes, rtpLost)

	return &Metrics{
		registry:     r,
		namespace:    ns,
		monitorCalls: monitorCalls,
		fabricEvents: fabricEvents,
		errorReports: errorReports,
		results:      results,
		fabrics:      fabrics,
		feedbackDrop: feedbackDrop,
		rtpPackets:   rtpPackets,
		rtpBytes:     rtpBytes,
		rtpLost:      rtpLost,
	}
}

func (m *Metrics) MonitorCall(call string) {
	m.monitorCalls.WithLabelValues(call).Inc()
}

func (m *Metrics) FabricAdded() {
	m.fabrics.Inc()
}

func (m *Metrics) FabricEvent(event string) {
	m.fabricEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) ErrorReport(function string) {
	m.errorReports.WithLabelValues(function).Inc()
}

func (m *Metrics) Result(call string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.results.WithLabelValues(call, status).Inc()
}

func (m *Metrics) FeedbackRateLimited() {
	m.feedbackDrop.Inc()
}

func (m *Metrics) RTPReceived(kind string, bytes int) {
	m.rtpPackets.WithLabelValues(kind).Inc()
	m.rtpBytes.WithLabelValues(kind).Add(float64(bytes))
}

func (m *Metrics) RTPLost(kind string, n int) {
	m.rtpLost.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
