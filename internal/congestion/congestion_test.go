package congestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFixedWindowIgnoresEvents(t *testing.T) {
	f := NewFixed(4096)
	f.OnNewAck(AckEvent{AckedBytes: 1000})
	f.OnDuplicateAck(3)
	f.OnFastRetransmit(100)
	f.OnTimeout()
	require.Equal(t, 4096, f.EffectiveWindow())
}

func TestRenoSlowStartThenCongestionAvoidance(t *testing.T) {
	r := NewReno()
	require.Equal(t, MSS, r.EffectiveWindow())
	require.Equal(t, "slow_start", r.Mode())

	for i := 0; i < 200; i++ {
		r.OnNewAck(AckEvent{AckedBytes: MSS})
		if r.Mode() == "congestion_avoidance" {
			break
		}
	}
	require.Equal(t, "congestion_avoidance", r.Mode())
}

func TestRenoFastRetransmitScenario(t *testing.T) {
	// cwnd reached 32*MSS before the drop.
	r := &Reno{cwnd: 32 * MSS, ssthresh: 128 * MSS}
	r.OnFastRetransmit(1_000_000)
	require.Equal(t, 16*MSS, r.ssthresh)
	require.Equal(t, 19*MSS, r.cwnd)
	require.True(t, r.inFastRecovery)

	r.OnDuplicateAck(4)
	require.Equal(t, 20*MSS, r.cwnd)

	r.OnNewAck(AckEvent{Ack: 1_000_001})
	require.False(t, r.inFastRecovery)
	require.Equal(t, 16*MSS, r.cwnd)
}

func TestRenoTimeoutResetsToSlowStart(t *testing.T) {
	r := &Reno{cwnd: 40 * MSS, ssthresh: 16 * MSS}
	r.OnTimeout()
	require.Equal(t, MSS, r.cwnd)
	require.Equal(t, 20*MSS, r.ssthresh)
	require.Equal(t, "slow_start", r.Mode())
}

func TestCubicGrowsConcavelyTowardWMaxAfterLoss(t *testing.T) {
	c := NewCubic()
	c.slowStart = false
	c.cwnd = 50 * MSS
	c.wMax = 100 * MSS

	now := time.Now()
	prev := c.cwnd
	for i := 0; i < 500; i++ {
		now = now.Add(10 * time.Millisecond)
		c.OnNewAck(AckEvent{AckedBytes: MSS, Now: now})
		require.GreaterOrEqual(t, c.cwnd, prev)
		prev = c.cwnd
	}
	require.Greater(t, c.cwnd, 50*MSS)
}

func TestCubicFastRetransmitRecordsWMax(t *testing.T) {
	c := NewCubic()
	c.slowStart = false
	c.cwnd = 64 * MSS
	c.OnFastRetransmit(0)
	require.Equal(t, float64(64*MSS), c.wMax)
	require.Equal(t, max(int(cubicBeta*64*MSS), 2*MSS), c.ssthresh)
}

func TestCubicTimeoutReentersSlowStart(t *testing.T) {
	c := NewCubic()
	c.slowStart = false
	c.cwnd = 64 * MSS
	c.OnTimeout()
	require.True(t, c.slowStart)
	require.Equal(t, MSS, c.cwnd)
}

func TestBBRModeTransitionsStartupDrainProbeBW(t *testing.T) {
	now := time.Now()
	b := NewBBR(now)

	// Simulate many rounds of acks with a stable, high bandwidth and low
	// RTT so the pipe is detected full and BBR transitions STARTUP ->
	// DRAIN -> PROBE_BW.
	var ack uint32
	for i := 0; i < 40; i++ {
		now = now.Add(20 * time.Millisecond)
		ack += 125_000 // 125 kB per 20ms round, ~50Mbps
		// One round's worth of data is still in flight, so every ack covers
		// the previous ack's NextSeq and closes a round.
		nextSeq := ack + 125_000
		b.OnNewAck(AckEvent{
			AckedBytes: 125_000,
			RTTSample:  20 * time.Millisecond,
			HasRTT:     true,
			Ack:        ack,
			NextSeq:    nextSeq,
			Now:        now,
		})
	}
	require.Contains(t, []string{"DRAIN", "PROBE_BW"}, b.Mode())
}

func TestBBRDoesNotCutCwndOnLoss(t *testing.T) {
	b := NewBBR(time.Now())
	b.cwnd = 10 * MSS
	b.OnFastRetransmit(0)
	b.OnTimeout()
	require.Equal(t, 10*MSS, b.EffectiveWindow())
}
