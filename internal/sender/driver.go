// Package sender implements the sender-side send-window driver: a
// single-threaded loop alternating fill, receive, timeout-sweep and
// termination actions over an in-flight table, working in plain byte
// offsets rather than TCP sequence numbers, and driven by a pluggable
// congestion.Controller rather than one hard-wired algorithm.
package sender

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/YaoZengzeng/reliudp/internal/congestion"
	"github.com/YaoZengzeng/reliudp/internal/errs"
	"github.com/YaoZengzeng/reliudp/internal/metrics"
	"github.com/YaoZengzeng/reliudp/internal/rttest"
	"github.com/YaoZengzeng/reliudp/internal/wire"
)

// Link is the minimal datagram interface the driver needs; the session
// orchestrator implements it over a net.PacketConn, and tests implement it
// over an in-memory channel pair.
type Link interface {
	Send(b []byte) error
	// Recv waits up to timeout for one inbound datagram. ok is false (with
	// a nil error) when the timeout elapses with nothing to read.
	Recv(timeout time.Duration) (b []byte, ok bool, err error)
}

const (
	pollInterval = time.Millisecond
	eofPause     = 100 * time.Millisecond
	eofRepeats   = 5

	// noProgressBudget bounds how long the sender waits for the in-flight
	// table to drain before declaring the peer silent.
	noProgressBudget = 30 * time.Second

	// progressLogInterval caps the per-transfer throughput/cwnd line to at
	// most once a second.
	progressLogInterval = time.Second
)

type inflightEntry struct {
	payload       []byte
	sendTime      time.Time
	retransmitted bool
}

// Driver runs the sender's event loop for a single transfer of data.
type Driver struct {
	link       Link
	data       []byte
	controller congestion.Controller
	rtt        *rttest.Estimator
	log        *logrus.Entry
	metrics    *metrics.Session

	base    uint32
	nextSeq uint32

	order    []uint32
	inflight map[uint32]*inflightEntry

	dupAckCount int

	lastProgress    time.Time
	lastProgressLog time.Time
}

// New creates a Driver for transferring data over link, driven by the given
// congestion controller and RTT profile.
func New(link Link, data []byte, controller congestion.Controller, profile rttest.Profile, log *logrus.Entry, m *metrics.Session) *Driver {
	return &Driver{
		link:       link,
		data:       data,
		controller: controller,
		rtt:        rttest.New(profile),
		log:        log,
		metrics:    m,
		inflight:   make(map[uint32]*inflightEntry),
	}
}

// Run drives the sender loop to completion, returning nil on a successful
// EOF handshake, ctx.Err() if ctx is cancelled, or errs.ErrSessionStalled if
// no cumulative ACK arrives within noProgressBudget.
func (d *Driver) Run(ctx context.Context) error {
	d.lastProgress = time.Now()
	total := uint32(len(d.data))

	for d.base < total {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		d.fill(total)

		if err := d.receiveOnce(); err != nil {
			return err
		}

		d.sweepTimeouts()
		d.reportMetrics()
		d.logProgress(total)

		if time.Since(d.lastProgress) > noProgressBudget {
			return errs.ErrSessionStalled
		}
	}

	return d.sendEOFHandshake()
}

func (d *Driver) fill(total uint32) {
	window := uint32(d.controller.EffectiveWindow())
	for d.nextSeq < total && (d.nextSeq-d.base) < window {
		end := d.nextSeq + wire.DataSize
		if end > total {
			end = total
		}
		payload := d.data[d.nextSeq:end]

		d.transmit(d.nextSeq, payload, false)
		d.nextSeq = end
	}
}

func (d *Driver) transmit(offset uint32, payload []byte, retransmit bool) {
	raw := wire.EncodeData(offset, payload)
	if err := d.link.Send(raw); err != nil {
		d.log.WithError(err).WithField("offset", offset).Warn("send failed, will retry on next sweep")
		if _, ok := d.inflight[offset]; !ok {
			// Track a failed first send so the timeout sweep retransmits it.
			d.order = append(d.order, offset)
			d.inflight[offset] = &inflightEntry{payload: payload, sendTime: time.Now(), retransmitted: true}
		}
		return
	}

	now := time.Now()
	if e, ok := d.inflight[offset]; ok {
		e.sendTime = now
		e.retransmitted = true
		return
	}
	d.order = append(d.order, offset)
	d.inflight[offset] = &inflightEntry{payload: payload, sendTime: now, retransmitted: retransmit}
}

func (d *Driver) receiveOnce() error {
	raw, ok, err := d.link.Recv(pollInterval)
	if err != nil {
		return errs.Wrap(errs.ErrPeerSilence, err)
	}
	if !ok {
		return nil
	}

	ack, ok := wire.DecodeHeader(raw)
	if !ok {
		return nil // undecodable ACK, silently ignored
	}

	switch {
	case ack > d.base:
		d.onNewAck(ack)
	case ack == d.base:
		d.onDuplicateAck(ack)
	default:
		// ack < base: stale, ignored.
	}
	return nil
}

func (d *Driver) onNewAck(ack uint32) {
	now := time.Now()
	oldBase := d.base
	ackedBytes := int(ack - oldBase)

	var rttSample time.Duration
	hasRTT := false
	if e, ok := d.inflight[oldBase]; ok && !e.retransmitted {
		rttSample = now.Sub(e.sendTime)
		hasRTT = true
		d.rtt.Sample(rttSample)
	}

	d.removeAcked(ack)
	d.base = ack
	d.dupAckCount = 0
	d.lastProgress = now

	d.controller.OnNewAck(congestion.AckEvent{
		AckedBytes: ackedBytes,
		RTTSample:  rttSample,
		HasRTT:     hasRTT,
		Ack:        ack,
		NextSeq:    d.nextSeq,
		InFlight:   int(d.nextSeq - d.base),
		Now:        now,
	})

	d.log.WithFields(logrus.Fields{
		"base": d.base, "cwnd": d.controller.EffectiveWindow(), "mode": d.controller.Mode(),
	}).Trace("new cumulative ack")
}

func (d *Driver) onDuplicateAck(ack uint32) {
	d.dupAckCount++
	if d.metrics != nil {
		d.metrics.DuplicateAcks.Inc()
	}

	if d.dupAckCount == 3 {
		if e, ok := d.inflight[d.base]; ok {
			d.transmit(d.base, e.payload, true)
		}
		d.controller.OnFastRetransmit(d.nextSeq)
		if d.metrics != nil {
			d.metrics.FastRetransmits.Inc()
			d.metrics.Retransmits.Inc()
		}
		d.log.WithField("base", d.base).Info("fast retransmit")
	}

	d.controller.OnDuplicateAck(d.dupAckCount)
}

func (d *Driver) sweepTimeouts() {
	if len(d.order) == 0 {
		return
	}
	offset := d.order[0]
	e, ok := d.inflight[offset]
	if !ok {
		return
	}
	if time.Since(e.sendTime) <= d.rtt.RTO() {
		return
	}

	d.transmit(offset, e.payload, true)
	d.controller.OnTimeout()
	if d.metrics != nil {
		d.metrics.Timeouts.Inc()
		d.metrics.Retransmits.Inc()
	}
	d.log.WithFields(logrus.Fields{"offset": offset, "rto": d.rtt.RTO()}).Info("timeout retransmit")
}

// removeAcked drops every in-flight entry with offset < ack, preserving the
// invariant that all remaining keys satisfy base <= k < next_seq.
func (d *Driver) removeAcked(ack uint32) {
	i := 0
	for ; i < len(d.order); i++ {
		if d.order[i] >= ack {
			break
		}
		delete(d.inflight, d.order[i])
	}
	d.order = d.order[i:]
}

func (d *Driver) sendEOFHandshake() error {
	for i := 0; i < eofRepeats; i++ {
		raw := wire.EncodeEOF(d.base)
		if err := d.link.Send(raw); err != nil {
			return errs.Wrap(errs.ErrPeerSilence, err)
		}
		if i < eofRepeats-1 {
			time.Sleep(eofPause)
		}
	}
	d.log.WithField("total_bytes", d.base).Info("transfer complete")
	return nil
}

// logProgress prints a throughput/cwnd line at most once a second, the way
// the original course senders printed their running transfer status.
func (d *Driver) logProgress(total uint32) {
	now := time.Now()
	if now.Sub(d.lastProgressLog) < progressLogInterval {
		return
	}
	d.lastProgressLog = now

	d.log.WithFields(logrus.Fields{
		"bytes_acked": d.base,
		"total_bytes": total,
		"cwnd":        d.controller.EffectiveWindow(),
		"mode":        d.controller.Mode(),
		"srtt":        d.rtt.SRTT(),
	}).Info("transfer progress")
}

func (d *Driver) reportMetrics() {
	if d.metrics == nil {
		return
	}
	d.metrics.SendWindow.Set(float64(d.controller.EffectiveWindow()))
	d.metrics.BytesInFlight.Set(float64(d.nextSeq - d.base))
	d.metrics.SRTT.Set(d.rtt.SRTT().Seconds())
	d.metrics.RTO.Set(d.rtt.RTO().Seconds())
	d.metrics.Base.Set(float64(d.base))
	d.metrics.NextSeq.Set(float64(d.nextSeq))
	if b, ok := d.controller.(*congestion.BBR); ok {
		d.metrics.BBRMaxBandwidth.Set(b.MaxBandwidth())
		d.metrics.BBRMinRTT.Set(b.MinRTT().Seconds())
	}
}
