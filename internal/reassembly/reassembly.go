// Package reassembly implements the receiver side of the transfer: a
// cumulative-ACK reassembly buffer keyed by byte offset, holding the next
// expected contiguous offset plus a reorder buffer for out-of-order
// segments, along with an explicit EOF marker.
package reassembly

import "github.com/YaoZengzeng/reliudp/internal/wire"

// Outcome describes what HandleSegment observed, so the caller (the
// receiver's orchestrator loop) knows whether to ACK, and how many times.
type Outcome struct {
	// Ack is the cumulative next-expected offset to acknowledge.
	Ack uint32

	// Terminated is true once the EOF marker has been processed; the
	// caller must emit the EOF handshake's five ACKs and commit Delivered.
	Terminated bool
}

// Reassembler holds the receiver's reassembly state: the next expected
// contiguous byte offset and the out-of-order reorder buffer.
type Reassembler struct {
	expected uint32
	delivered []byte
	reorder  map[uint32][]byte

	terminated bool
}

// New creates a Reassembler starting at stream offset 0.
func New() *Reassembler {
	return &Reassembler{reorder: make(map[uint32][]byte)}
}

// HandleSegment applies the three-way branch (duplicate, in-order,
// out-of-order) plus the EOF case, and returns the ACK to send.
func (r *Reassembler) HandleSegment(seg wire.Segment) Outcome {
	if r.terminated {
		return Outcome{Ack: r.expected, Terminated: true}
	}

	if wire.IsEOF(seg.Payload) {
		r.terminated = true
		r.drain()
		return Outcome{Ack: r.expected, Terminated: true}
	}

	switch {
	case seg.Offset < r.expected:
		// Duplicate data; buffers are not mutated.
	case seg.Offset == r.expected:
		r.deliver(seg.Payload)
		r.drain()
	default:
		if _, present := r.reorder[seg.Offset]; !present {
			r.reorder[seg.Offset] = seg.Payload
		}
	}

	return Outcome{Ack: r.expected}
}

func (r *Reassembler) deliver(payload []byte) {
	r.delivered = append(r.delivered, payload...)
	r.expected += uint32(len(payload))
}

// drain moves any contiguous prefix now available in the reorder buffer
// into delivered, advancing expected by len(payload) each time — never by a
// fixed chunk size, which would overshoot on the final, short segment.
func (r *Reassembler) drain() {
	for {
		payload, ok := r.reorder[r.expected]
		if !ok {
			return
		}
		delete(r.reorder, r.expected)
		r.deliver(payload)
	}
}

// Expected returns the current cumulative next-expected offset.
func (r *Reassembler) Expected() uint32 { return r.expected }

// Delivered returns the contiguous bytes delivered so far. The slice is
// owned by the Reassembler; callers must copy before the next call if they
// intend to retain or mutate it independently.
func (r *Reassembler) Delivered() []byte { return r.delivered }

// Terminated reports whether the EOF marker has been processed.
func (r *Reassembler) Terminated() bool { return r.terminated }

// ReorderSize reports how many out-of-order segments are currently buffered,
// for tests and metrics.
func (r *Reassembler) ReorderSize() int { return len(r.reorder) }
