package reassembly

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/YaoZengzeng/reliudp/internal/wire"
)

func TestInOrderDelivery(t *testing.T) {
	r := New()
	out := r.HandleSegment(wire.Segment{Offset: 0, Payload: []byte("ABCDE")})
	require.Equal(t, uint32(5), out.Ack)
	require.Equal(t, "ABCDE", string(r.Delivered()))
}

func TestDuplicateBelowExpectedDoesNotMutate(t *testing.T) {
	r := New()
	r.HandleSegment(wire.Segment{Offset: 0, Payload: []byte("ABCDE")})
	out := r.HandleSegment(wire.Segment{Offset: 0, Payload: []byte("ABCDE")})
	require.Equal(t, uint32(5), out.Ack)
	require.Equal(t, "ABCDE", string(r.Delivered()))
}

func TestOutOfOrderArrivalScenario(t *testing.T) {
	// Three 1180-byte segments arriving out of order: 0, 2360, 1180.
	r := New()
	payload0 := make([]byte, 1180)
	payload1 := make([]byte, 1180)
	payload2 := make([]byte, 1180)

	out0 := r.HandleSegment(wire.Segment{Offset: 0, Payload: payload0})
	require.Equal(t, uint32(1180), out0.Ack)

	out2 := r.HandleSegment(wire.Segment{Offset: 2360, Payload: payload2})
	require.Equal(t, uint32(1180), out2.Ack) // still waiting on 1180
	require.Equal(t, 1, r.ReorderSize())

	out1 := r.HandleSegment(wire.Segment{Offset: 1180, Payload: payload1})
	require.Equal(t, uint32(3540), out1.Ack)
	require.Equal(t, 0, r.ReorderSize())
}

func TestShortFinalChunkAdvancesByActualLength(t *testing.T) {
	r := New()
	r.HandleSegment(wire.Segment{Offset: 0, Payload: make([]byte, 1180)})
	out := r.HandleSegment(wire.Segment{Offset: 1180, Payload: make([]byte, 37)})
	require.Equal(t, uint32(1217), out.Ack)
}

func TestEOFTerminatesAndFlushesReorderBuffer(t *testing.T) {
	r := New()
	r.HandleSegment(wire.Segment{Offset: 1180, Payload: make([]byte, 1180)}) // buffered, out of order
	r.HandleSegment(wire.Segment{Offset: 0, Payload: make([]byte, 1180)})    // drains both
	out := r.HandleSegment(wire.Segment{Offset: 2360, Payload: wire.EOF})
	require.True(t, out.Terminated)
	require.Equal(t, uint32(2360), out.Ack)
	require.Len(t, r.Delivered(), 2360)
}

func TestEmptyFileYieldsEmptyDelivered(t *testing.T) {
	r := New()
	out := r.HandleSegment(wire.Segment{Offset: 0, Payload: wire.EOF})
	require.True(t, out.Terminated)
	require.Equal(t, uint32(0), out.Ack)
	require.Empty(t, r.Delivered())
}

func TestAcksAreMonotonicallyNonDecreasing(t *testing.T) {
	r := New()
	var last uint32
	offsets := []uint32{0, 0, 1180, 1180, 2360}
	for _, off := range offsets {
		out := r.HandleSegment(wire.Segment{Offset: off, Payload: make([]byte, 1180)})
		require.GreaterOrEqual(t, out.Ack, last)
		last = out.Ack
	}
}
