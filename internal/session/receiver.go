package session

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/YaoZengzeng/reliudp/internal/errs"
	"github.com/YaoZengzeng/reliudp/internal/reassembly"
	"github.com/YaoZengzeng/reliudp/internal/wire"
)

const (
	requestTimeout   = 2 * time.Second
	requestRetries   = 5
	receiverPoll     = 50 * time.Millisecond
	idleAckInterval  = 200 * time.Millisecond
	idleCheckpoint   = 500 * time.Millisecond
	maxIdleIntervals = 20
)

// ReceiverConfig configures one receiver session.
type ReceiverConfig struct {
	Host string
	Port int
}

// RunReceiver implements the receiver half of the transfer: issue the
// request datagram (retrying up to 5 times at 2s each), then drive the
// reassembly loop to EOF or idle-termination. It returns the contiguous
// bytes delivered on wire-level success; committing them to storage is the
// caller's responsibility — an unwritable output is its own failure mode,
// distinct from wire-level success.
func RunReceiver(ctx context.Context, cfg ReceiverConfig) ([]byte, error) {
	sessionID := xid.New().String()
	log := logrus.WithField("session_id", sessionID).WithField("role", "receiver")

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	peerAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port)))
	if err != nil {
		return nil, err
	}
	link := newPacketLink(conn, peerAddr)

	first, err := sendRequest(ctx, link, log)
	if err != nil {
		return nil, err
	}

	r := reassembly.New()
	lastData := time.Now()
	lastIdleAck := time.Time{}
	idleIntervals := 0
	idleCheckpointAt := time.Now()

	apply := func(raw []byte) (bool, error) {
		seg, ok := wire.Decode(raw)
		if !ok {
			return false, nil
		}
		out := r.HandleSegment(seg)
		ackRaw := wire.EncodeAck(out.Ack)
		repeats := 1
		if out.Terminated {
			repeats = 5
		}
		for i := 0; i < repeats; i++ {
			if err := link.Send(ackRaw); err != nil {
				return false, err
			}
		}
		return out.Terminated, nil
	}

	if first != nil {
		terminated, err := apply(first)
		if err != nil {
			return nil, err
		}
		if terminated {
			log.Info("transfer complete")
			return r.Delivered(), nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		raw, ok, err := link.Recv(receiverPoll)
		if err != nil {
			return nil, err
		}
		now := time.Now()

		if ok {
			lastData = now
			idleIntervals = 0
			idleCheckpointAt = now

			terminated, err := apply(raw)
			if err != nil {
				return nil, err
			}
			if terminated {
				log.Info("transfer complete")
				return r.Delivered(), nil
			}
			continue
		}

		if now.Sub(lastData) >= idleAckInterval && now.Sub(lastIdleAck) >= idleAckInterval {
			if err := link.Send(wire.EncodeAck(r.Expected())); err != nil {
				return nil, err
			}
			lastIdleAck = now
			log.Trace("idle prompting ack sent")
		}

		if now.Sub(idleCheckpointAt) >= idleCheckpoint {
			idleIntervals++
			idleCheckpointAt = now
			if idleIntervals >= maxIdleIntervals {
				return nil, errs.ErrSessionStalled
			}
		}
	}
}

// sendRequest resends the single-octet request datagram up to
// requestRetries times, 2s apart, returning the first inbound datagram as
// confirmation of connection.
func sendRequest(ctx context.Context, link *packetLink, log *logrus.Entry) ([]byte, error) {
	for attempt := 0; attempt < requestRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		log.WithField("attempt", attempt+1).Debug("sending request")
		if err := link.Send(wire.Request); err != nil {
			return nil, err
		}

		raw, ok, err := link.Recv(requestTimeout)
		if err != nil {
			return nil, err
		}
		if ok {
			return raw, nil
		}
		log.WithField("attempt", attempt+1).Warn("request timed out")
	}
	return nil, errs.ErrPeerSilence
}
