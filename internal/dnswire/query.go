package dnswire

import (
	"bytes"
	"fmt"
	"strings"
)

// questionTrailerSize is the fixed tail of a question record:
// QTYPE (2 bytes) + QCLASS (2 bytes), following the name's zero terminator.
const questionTrailerSize = 4

// maxLabelLength is the RFC 1035 limit for a single label.
const maxLabelLength = 63

// RawQuestion holds the exact wire bytes of one question record: the
// length-prefixed label sequence, its zero terminator, and the four
// type+class trailer bytes. It is preserved verbatim for echo in replies.
type RawQuestion []byte

// Query is the inbound view of a DNS query datagram: the parsed header and
// the question records as opaque slices into the datagram. The slices alias
// the input buffer and are only valid while it is.
type Query struct {
	Header    Header
	Questions []RawQuestion
}

// ParseQuery parses an inbound DNS query datagram.
//
// For each of the header's QDCount questions the payload is scanned forward
// to the first zero byte (the terminating root label), then advanced four
// more bytes past the type+class trailer; the inclusive slice is one opaque
// question record.
//
// Fails with ErrMalformedMessage when the datagram is shorter than the
// 12-byte header, QDCount is zero, a zero terminator is not found before the
// buffer ends, or the trailer would exceed the buffer.
func ParseQuery(msg []byte) (Query, error) {
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Query{}, err
	}
	if h.QDCount == 0 {
		return Query{}, fmt.Errorf("%w: query has no questions", ErrMalformedMessage)
	}

	payload := msg[off:]
	questions := make([]RawQuestion, 0, h.QDCount)
	for range h.QDCount {
		zero := bytes.IndexByte(payload, 0)
		if zero < 0 {
			return Query{}, fmt.Errorf("%w: question name missing zero terminator", ErrMalformedMessage)
		}
		end := zero + 1 + questionTrailerSize
		if end > len(payload) {
			return Query{}, fmt.Errorf("%w: question truncated before type and class", ErrMalformedMessage)
		}
		questions = append(questions, RawQuestion(payload[:end]))
		payload = payload[end:]
	}

	return Query{Header: h, Questions: questions}, nil
}

// Domain decodes the question's name as a dot-joined ASCII string.
//
// Each length byte N in [1,63] is followed by N label bytes; the sequence
// terminates at a zero byte. Fails with ErrMalformedName on a label length
// above 63 or on a label truncated by the end of the question.
func (q RawQuestion) Domain() (string, error) {
	labels := make([]string, 0, 6)
	off := 0
	for {
		if off >= len(q) {
			return "", fmt.Errorf("%w: name truncated before zero terminator", ErrMalformedName)
		}
		length := int(q[off])
		off++
		if length == 0 {
			break
		}
		if length > maxLabelLength {
			return "", fmt.Errorf("%w: label length %d exceeds 63", ErrMalformedName, length)
		}
		if off+length > len(q) {
			return "", fmt.Errorf("%w: label truncated", ErrMalformedName)
		}
		labels = append(labels, string(q[off:off+length]))
		off += length
	}
	return strings.Join(labels, "."), nil
}
