package congestion

import (
	"math"
	"time"
)

// cubicC and cubicBeta are the standard CUBIC constants.
const (
	cubicC    = 0.4
	cubicBeta = 0.7
)

// Cubic implements slow start followed by the CUBIC window growth function,
// with TCP-friendliness and fast convergence on loss: separate slow-start
// and congestion-avoidance phases, a loss handler that distinguishes fast
// retransmit from timeout, and a per-ack growth counter, with a
// byte-counted cwnd rather than a packet-counted one.
type Cubic struct {
	cwnd      int
	ssthresh  int
	slowStart bool

	wMax        float64
	epochStart  time.Time
	kCubic      time.Duration
	origin      float64
	wTCP        float64
	wTCPAckCnt  int
	bytesAcked  int
}

// NewCubic creates a CUBIC controller with the same initial cwnd/ssthresh
// as Reno.
func NewCubic() *Cubic {
	return &Cubic{
		cwnd:      MSS,
		ssthresh:  128 * MSS,
		slowStart: true,
	}
}

func (c *Cubic) OnNewAck(ev AckEvent) {
	if c.slowStart {
		c.cwnd += MSS
		if c.cwnd >= c.ssthresh {
			c.slowStart = false
		}
		return
	}

	if c.epochStart.IsZero() {
		c.epochStart = ev.Now
		c.wTCP = float64(c.cwnd)
		c.wTCPAckCnt = 0
		if c.wMax <= float64(c.cwnd) {
			c.kCubic = 0
			c.origin = float64(c.cwnd)
		} else {
			c.kCubic = cubeRootDuration((c.wMax - float64(c.cwnd)) / (cubicC * MSS))
			c.origin = c.wMax
		}
	}

	t := ev.Now.Sub(c.epochStart).Seconds()
	shifted := t - c.kCubic.Seconds()
	target := c.origin + cubicC*MSS*shifted*shifted*shifted

	// TCP-friendliness: w_tcp grows by one MSS per cwnd/MSS acks.
	c.wTCPAckCnt++
	segsInCwnd := max(c.cwnd/MSS, 1)
	if c.wTCPAckCnt >= segsInCwnd {
		c.wTCP += MSS
		c.wTCPAckCnt = 0
	}
	if c.wTCP > target {
		target = c.wTCP
	}

	cwndSeg := float64(c.cwnd) / MSS
	targetSeg := target / MSS
	var cnt float64
	if targetSeg > cwndSeg {
		cnt = cwndSeg / (targetSeg - cwndSeg)
	} else {
		cnt = 100 * cwndSeg
	}
	cntBytes := cnt * MSS

	c.bytesAcked += ev.AckedBytes
	if float64(c.bytesAcked) >= cntBytes {
		c.cwnd += MSS
		c.bytesAcked = 0
	}
}

func (c *Cubic) OnDuplicateAck(int) {}

func (c *Cubic) OnFastRetransmit(uint32) {
	if c.cwnd < int(c.wMax) {
		c.wMax = float64(c.cwnd) * (1 + cubicBeta) / 2
	} else {
		c.wMax = float64(c.cwnd)
	}
	c.ssthresh = max(int(cubicBeta*float64(c.cwnd)), 2*MSS)
	c.cwnd = c.ssthresh + 3*MSS
	c.epochStart = time.Time{}
}

func (c *Cubic) OnTimeout() {
	c.ssthresh = max(c.cwnd/2, 2*MSS)
	c.wMax = float64(c.cwnd)
	c.cwnd = MSS
	c.slowStart = true
	c.epochStart = time.Time{}
}

func (c *Cubic) EffectiveWindow() int { return c.cwnd }

func (c *Cubic) Mode() string {
	if c.slowStart {
		return "slow_start"
	}
	return "congestion_avoidance"
}

func cubeRootDuration(secs float64) time.Duration {
	if secs <= 0 {
		return 0
	}
	return time.Duration(math.Cbrt(secs) * float64(time.Second))
}

