package session

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/YaoZengzeng/reliudp/internal/congestion"
	"github.com/YaoZengzeng/reliudp/internal/errs"
	"github.com/YaoZengzeng/reliudp/internal/metrics"
	"github.com/YaoZengzeng/reliudp/internal/rttest"
	"github.com/YaoZengzeng/reliudp/internal/sender"
	"github.com/YaoZengzeng/reliudp/internal/wire"
)

// Mode selects which congestion controller a sender session runs.
type Mode int

const (
	ModeFixed Mode = iota
	ModeReno
	ModeCubic
	ModeBBR
)

// SenderConfig configures one sender session.
type SenderConfig struct {
	Host string
	Port int
	Mode Mode

	// SWS is the fixed send window in bytes; only meaningful when Mode ==
	// ModeFixed.
	SWS int

	InputFile string

	// Metrics, if non-nil, receives per-session Prometheus gauges.
	Metrics prometheus.Registerer
}

// RunSender implements the sender half of the transfer: refuse up front if
// the source file cannot be read, bind, wait for the single-octet request
// datagram, then run the send-window driver to completion.
func RunSender(ctx context.Context, cfg SenderConfig) error {
	sessionID := xid.New().String()
	log := logrus.WithField("session_id", sessionID).WithField("role", "sender")

	data, err := os.ReadFile(cfg.InputFile)
	if err != nil {
		return errs.Wrap(errs.ErrInputUnavailable, err)
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.WithField("addr", addr).Info("waiting for request datagram")
	link := newPacketLink(conn, nil)

	if err := awaitRequest(ctx, link); err != nil {
		return err
	}
	log.WithField("peer", link.Peer()).Info("request received, starting transfer")

	controller, profile := newController(cfg.Mode, cfg.SWS)

	var m *metrics.Session
	if cfg.Metrics != nil {
		m = metrics.NewSession(cfg.Metrics, sessionID)
		defer m.Unregister(cfg.Metrics)
	}

	d := sender.New(link, data, controller, profile, log, m)
	return d.Run(ctx)
}

// awaitRequest blocks until a decodable single-octet 'G' request arrives, or
// ctx is cancelled.
func awaitRequest(ctx context.Context, link *packetLink) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		raw, ok, err := link.Recv(time.Second)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if wire.IsRequest(raw) {
			return nil
		}
		// Any other datagram before the handshake is malformed for this
		// phase and is silently dropped; its source is forgotten so the
		// peer is learned from the request itself.
		link.peer = nil
	}
}

func newController(mode Mode, sws int) (congestion.Controller, rttest.Profile) {
	switch mode {
	case ModeReno:
		return congestion.NewReno(), rttest.ProfileRenoCubic
	case ModeCubic:
		return congestion.NewCubic(), rttest.ProfileRenoCubic
	case ModeBBR:
		return congestion.NewBBR(time.Now()), rttest.ProfileBBR
	default:
		return congestion.NewFixed(sws), rttest.ProfileRenoCubic
	}
}
