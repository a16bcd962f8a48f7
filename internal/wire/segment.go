// Package wire implements the on-the-wire segment codec: a fixed 20-octet
// header carrying a single big-endian byte offset, followed by up to
// DataSize octets of payload. There is no magic number and no checksum; the
// datagram substrate is assumed to drop corrupted packets itself.
package wire

import "encoding/binary"

const (
	// HeaderSize is the length, in octets, of the segment header.
	HeaderSize = 20

	// MaxPayload is the largest datagram this protocol ever sends.
	MaxPayload = 1200

	// DataSize is the largest payload a data segment may carry.
	DataSize = MaxPayload - HeaderSize
)

// EOF is the literal three-octet payload that marks the end of a stream.
var EOF = []byte{'E', 'O', 'F'}

// Request is the single-octet payload a receiver sends to start a transfer.
var Request = []byte{'G'}

// Segment is a decoded wire unit: an offset and its payload. For a data
// segment, Offset is the byte offset of Payload[0] in the stream. For an ACK
// segment, Offset is the cumulative next-expected byte offset and Payload is
// empty.
type Segment struct {
	Offset  uint32
	Payload []byte
}

// EncodeData builds the wire bytes for a data segment carrying payload at
// the given stream offset. payload must be at most DataSize octets.
func EncodeData(offset uint32, payload []byte) []byte {
	return encode(offset, payload)
}

// EncodeAck builds the wire bytes for a cumulative ACK segment.
func EncodeAck(nextExpected uint32) []byte {
	return encode(nextExpected, nil)
}

// EncodeEOF builds the wire bytes for the EOF marker segment sent at the
// given offset (the byte offset at which the stream ends).
func EncodeEOF(offset uint32) []byte {
	return encode(offset, EOF)
}

func encode(offset uint32, payload []byte) []byte {
	seg := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(seg[0:4], offset)
	copy(seg[HeaderSize:], payload)
	return seg
}

// Decode parses a raw datagram into a Segment. It returns ok=false if the
// datagram is shorter than HeaderSize and therefore undecodable; callers
// must silently drop such datagrams rather than treat them as fatal.
func Decode(raw []byte) (seg Segment, ok bool) {
	if len(raw) < HeaderSize {
		return Segment{}, false
	}
	seg.Offset = binary.BigEndian.Uint32(raw[0:4])
	if len(raw) > HeaderSize {
		seg.Payload = raw[HeaderSize:]
	}
	return seg, true
}

// DecodeHeader parses only the offset field, returning ok=false for an
// undecodable (too-short) datagram.
func DecodeHeader(raw []byte) (offset uint32, ok bool) {
	if len(raw) < HeaderSize {
		return 0, false
	}
	return binary.BigEndian.Uint32(raw[0:4]), true
}

// IsEOF reports whether payload is the three-octet EOF marker.
func IsEOF(payload []byte) bool {
	return len(payload) == len(EOF) && payload[0] == EOF[0] && payload[1] == EOF[1] && payload[2] == EOF[2]
}

// IsRequest reports whether payload is the single-octet request datagram.
func IsRequest(payload []byte) bool {
	return len(payload) == 1 && payload[0] == Request[0]
}
