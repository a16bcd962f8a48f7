package congestion

// Reno implements TCP-NewReno-style slow start, congestion avoidance and
// fast recovery.
type Reno struct {
	cwnd      int
	ssthresh  int
	slowStart bool

	inFastRecovery bool
	recover        uint32
}

// NewReno creates a Reno controller with cwnd = MSS and a large initial
// ssthresh.
func NewReno() *Reno {
	return &Reno{
		cwnd:      MSS,
		ssthresh:  128 * MSS,
		slowStart: true,
	}
}

func (r *Reno) OnNewAck(ev AckEvent) {
	if r.inFastRecovery {
		if ev.Ack >= r.recover {
			// Leaving fast recovery.
			r.cwnd = r.ssthresh
			r.inFastRecovery = false
		}
		// A partial ack inside recovery grows nothing further; NewReno's
		// partial-ack deflation is out of scope for this controller.
		return
	}

	if r.slowStart {
		r.cwnd += MSS
		if r.cwnd >= r.ssthresh {
			r.slowStart = false
		}
		return
	}

	// Congestion avoidance: additive increase of roughly one MSS per RTT.
	r.cwnd += (MSS * MSS) / r.cwnd
}

func (r *Reno) OnDuplicateAck(count int) {
	if count >= 4 && r.inFastRecovery {
		// Window inflation: the peer has delivered another segment out
		// of the pipe, so one more MSS of room opens up.
		r.cwnd += MSS
	}
}

func (r *Reno) OnFastRetransmit(nextSeq uint32) {
	r.ssthresh = max(r.cwnd/2, 2*MSS)
	r.cwnd = r.ssthresh + 3*MSS
	r.inFastRecovery = true
	r.recover = nextSeq
}

func (r *Reno) OnTimeout() {
	r.ssthresh = max(r.cwnd/2, 2*MSS)
	r.cwnd = MSS
	r.slowStart = true
	r.inFastRecovery = false
}

func (r *Reno) EffectiveWindow() int { return r.cwnd }

func (r *Reno) Mode() string {
	switch {
	case r.inFastRecovery:
		return "fast_recovery"
	case r.slowStart:
		return "slow_start"
	default:
		return "congestion_avoidance"
	}
}
