package dnswire

import (
	"encoding/binary"
	"fmt"
)

// DefaultTTL is the answer TTL used when no TTL is configured.
const DefaultTTL = 128

// IPv4Length is the RDATA length of an A record.
const IPv4Length = 4

// answerPrefixSize covers the fixed answer fields before RDATA:
// name pointer (2) + type (2) + class (2) + TTL (4) + RDLENGTH (2).
const answerPrefixSize = 12

// compressionPointer points at the first question's name, which always
// starts immediately after the 12-byte header (RFC 1035 Section 4.1.4:
// high bits 11, offset 0x00C).
var compressionPointer = [2]byte{0xC0, 0x0C}

// BuildReply encodes an outbound reply datagram.
//
// The header carries the request's transaction ID and echoes len(questions)
// as QDCount. With answer non-nil the flags are FlagsAnswer and exactly one
// A record is appended after the echoed questions: the two-byte name pointer
// to offset 12, type A, class IN, the TTL (32-bit big-endian), RDLENGTH 4,
// and the four address bytes. With answer nil the flags are FlagsNXDomain
// and the payload is the questions alone.
//
// answer must be nil or exactly 4 bytes (a packed IPv4 address).
func BuildReply(id uint16, questions []RawQuestion, answer []byte, ttl uint32) ([]byte, error) {
	if answer != nil && len(answer) != IPv4Length {
		return nil, fmt.Errorf("%w: answer RDATA must be %d bytes, got %d", ErrMalformedMessage, IPv4Length, len(answer))
	}

	h := Header{
		ID:      id,
		Flags:   FlagsNXDomain,
		QDCount: uint16(len(questions)),
	}
	size := HeaderSize
	for _, q := range questions {
		size += len(q)
	}
	if answer != nil {
		h.Flags = FlagsAnswer
		h.ANCount = 1
		size += answerPrefixSize + IPv4Length
	}

	out := make([]byte, 0, size)
	out = append(out, h.Marshal()...)
	for _, q := range questions {
		out = append(out, q...)
	}
	if answer != nil {
		out = append(out, compressionPointer[:]...)
		out = append(out, 0x00, 0x01) // TYPE A
		out = append(out, 0x00, 0x01) // CLASS IN
		out = binary.BigEndian.AppendUint32(out, ttl)
		out = append(out, 0x00, IPv4Length) // RDLENGTH
		out = append(out, answer...)
	}
	return out, nil
}
