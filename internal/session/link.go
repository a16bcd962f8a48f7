// Package session implements the transfer orchestrator: bind and await the
// request datagram, construct the congestion controller, run the sender
// driver or the receiver reassembly loop, and drive the EOF handshake /
// teardown.
package session

import (
	"net"
	"time"
)

// packetLink adapts a net.PacketConn plus a fixed peer address to the
// narrow send/receive interface the sender and receiver loops need. Both
// sides use the same adapter once the peer's address is known: the sender
// learns it from the inbound request datagram, the receiver is configured
// with it directly from the CLI.
type packetLink struct {
	conn net.PacketConn
	peer net.Addr
}

func newPacketLink(conn net.PacketConn, peer net.Addr) *packetLink {
	return &packetLink{conn: conn, peer: peer}
}

// Send implements sender.Link.
func (l *packetLink) Send(b []byte) error {
	_, err := l.conn.WriteTo(b, l.peer)
	return err
}

// Recv implements sender.Link: it waits up to timeout for a datagram from
// the configured peer, silently discarding datagrams from any other source
// (this protocol serves exactly one peer per session).
func (l *packetLink) Recv(timeout time.Duration) ([]byte, bool, error) {
	buf := make([]byte, 2*1024)
	deadline := time.Now().Add(timeout)

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false, nil
		}
		if err := l.conn.SetReadDeadline(time.Now().Add(remaining)); err != nil {
			return nil, false, err
		}
		n, addr, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, false, nil
			}
			return nil, false, err
		}
		if l.peer != nil && addr.String() != l.peer.String() {
			continue // datagram from an unrelated source; ignore
		}
		if l.peer == nil {
			l.peer = addr
		}
		out := make([]byte, n)
		copy(out, buf[:n])
		return out, true, nil
	}
}

// Peer returns the address this link is bound to, which may have been
// learned on the first Recv rather than supplied at construction.
func (l *packetLink) Peer() net.Addr { return l.peer }
