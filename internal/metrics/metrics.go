// Package metrics exports the sender's live congestion- and transport-state
// as Prometheus gauges, in the spirit of runZeroInc/sockstats which turns
// kernel TCP_INFO counters into a Prometheus scrape target. This system has
// no kernel TCP socket to read from — the counters instead come straight
// from the sender driver and congestion controller running in-process.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Session bundles the gauges/counters for one sender-side transfer. Callers
// register it with a prometheus.Registerer of their choosing (the sender
// commands pass the fresh registry from cliutil.StartMetricsServer, which
// serves it over a fixed loopback /metrics listener).
type Session struct {
	SendWindow      prometheus.Gauge
	BytesInFlight   prometheus.Gauge
	SRTT            prometheus.Gauge
	RTO             prometheus.Gauge
	Base            prometheus.Gauge
	NextSeq         prometheus.Gauge
	Retransmits     prometheus.Counter
	FastRetransmits prometheus.Counter
	Timeouts        prometheus.Counter
	DuplicateAcks   prometheus.Counter
	BBRMaxBandwidth prometheus.Gauge
	BBRMinRTT       prometheus.Gauge
}

// NewSession creates and registers a Session's metrics, labelled with the
// given session id so multiple transfers (even sequential ones within the
// same process, e.g. across test runs) don't collide in a shared registry.
func NewSession(reg prometheus.Registerer, sessionID string) *Session {
	constLabels := prometheus.Labels{"session_id": sessionID}

	s := &Session{
		SendWindow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reliudp_send_window_bytes", Help: "Current effective send window.", ConstLabels: constLabels,
		}),
		BytesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reliudp_bytes_in_flight", Help: "Bytes sent but not yet cumulatively acknowledged.", ConstLabels: constLabels,
		}),
		SRTT: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reliudp_srtt_seconds", Help: "Smoothed round-trip time.", ConstLabels: constLabels,
		}),
		RTO: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reliudp_rto_seconds", Help: "Current retransmission timeout.", ConstLabels: constLabels,
		}),
		Base: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reliudp_base_offset_bytes", Help: "Lowest unacknowledged byte offset.", ConstLabels: constLabels,
		}),
		NextSeq: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reliudp_next_seq_offset_bytes", Help: "Next byte offset to transmit.", ConstLabels: constLabels,
		}),
		Retransmits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reliudp_retransmits_total", Help: "Segments retransmitted for any reason.", ConstLabels: constLabels,
		}),
		FastRetransmits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reliudp_fast_retransmits_total", Help: "Retransmissions triggered by triple duplicate ACK.", ConstLabels: constLabels,
		}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reliudp_timeouts_total", Help: "Retransmissions triggered by RTO expiry.", ConstLabels: constLabels,
		}),
		DuplicateAcks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reliudp_duplicate_acks_total", Help: "Duplicate ACKs observed.", ConstLabels: constLabels,
		}),
		BBRMaxBandwidth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reliudp_bbr_max_bandwidth_bytes_per_second", Help: "BBR filtered max delivery rate.", ConstLabels: constLabels,
		}),
		BBRMinRTT: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "reliudp_bbr_min_rtt_seconds", Help: "BBR filtered min RTT.", ConstLabels: constLabels,
		}),
	}

	if reg != nil {
		for _, c := range s.collectors() {
			reg.MustRegister(c)
		}
	}
	return s
}

func (s *Session) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		s.SendWindow, s.BytesInFlight, s.SRTT, s.RTO, s.Base, s.NextSeq,
		s.Retransmits, s.FastRetransmits, s.Timeouts, s.DuplicateAcks,
		s.BBRMaxBandwidth, s.BBRMinRTT,
	}
}

// Unregister removes this session's metrics from the registry they were
// registered with, so sequential sessions in one process don't accumulate
// stale series.
func (s *Session) Unregister(reg prometheus.Registerer) {
	if reg == nil {
		return
	}
	for _, c := range s.collectors() {
		reg.Unregister(c)
	}
}
