package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeAckRoundTrip(t *testing.T) {
	raw := EncodeAck(4096)
	seg, ok := Decode(raw)
	require.True(t, ok)
	require.Equal(t, uint32(4096), seg.Offset)
	require.Empty(t, seg.Payload)
}

func TestEncodeDecodeDataRoundTrip(t *testing.T) {
	payload := []byte("ABCDE")
	raw := EncodeData(128, payload)
	seg, ok := Decode(raw)
	require.True(t, ok)
	require.Equal(t, uint32(128), seg.Offset)
	require.Equal(t, payload, seg.Payload)
}

func TestEncodeEOF(t *testing.T) {
	raw := EncodeEOF(3600)
	seg, ok := Decode(raw)
	require.True(t, ok)
	require.Equal(t, uint32(3600), seg.Offset)
	require.True(t, IsEOF(seg.Payload))
}

func TestDecodeUndecodable(t *testing.T) {
	_, ok := Decode(make([]byte, HeaderSize-1))
	require.False(t, ok)

	_, ok = DecodeHeader([]byte{0, 1, 2})
	require.False(t, ok)
}

func TestIsRequest(t *testing.T) {
	require.True(t, IsRequest(Request))
	require.False(t, IsRequest([]byte("GG")))
}

func TestHeaderReservedOctetsAreZero(t *testing.T) {
	raw := EncodeData(1, []byte("x"))
	for i := 4; i < HeaderSize; i++ {
		if raw[i] != 0 {
			t.Fatalf("reserved octet %d = %d, want 0", i, raw[i])
		}
	}
}
