// Package congestion implements the sender's pluggable window controller: a
// strategy interface with four concrete implementations (Fixed, Reno,
// CUBIC, BBR-style), chosen once at session start and owned by the sender.
package congestion

import (
	"time"

	"github.com/YaoZengzeng/reliudp/internal/wire"
)

// MSS is the maximum segment size used by every controller's arithmetic.
const MSS = wire.DataSize

// AckEvent carries everything a controller may need to react to a new
// cumulative ACK. RTTSample is the zero Duration when Karn's rule forbids a
// sample (the acknowledged segment was retransmitted at least once).
type AckEvent struct {
	AckedBytes int
	RTTSample  time.Duration
	HasRTT     bool

	// Ack is the cumulative next-expected offset carried by this ACK.
	Ack uint32

	// NextSeq is the sender's next_seq at the moment this ACK was
	// processed; BBR uses it to detect round completion.
	NextSeq uint32

	// InFlight is bytes sent but not yet acknowledged, after this ACK has
	// been applied; BBR uses it for the DRAIN -> PROBE_BW transition.
	InFlight int

	Now time.Time
}

// Controller is the pluggable congestion strategy the sender drives through
// its four events and one query.
type Controller interface {
	// OnNewAck is invoked for every cumulative ACK that advances base.
	OnNewAck(ev AckEvent)

	// OnDuplicateAck is invoked with the running duplicate-ACK count for
	// the current base, including the third (fast-retransmit-triggering)
	// and any later ones.
	OnDuplicateAck(count int)

	// OnTimeout is invoked when the RTO sweep retransmits a segment.
	OnTimeout()

	// OnFastRetransmit is invoked once, at the moment the third duplicate
	// ACK triggers a retransmission. nextSeq is the sender's next_seq at
	// that moment, used by Reno to capture the fast-recovery exit point.
	OnFastRetransmit(nextSeq uint32)

	// EffectiveWindow returns the current send window in bytes.
	EffectiveWindow() int

	// Mode names the controller's current internal state, for logging and
	// metrics (e.g. "slow_start", "congestion_avoidance", "PROBE_BW").
	Mode() string
}
