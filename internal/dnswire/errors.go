// Package dnswire parses inbound DNS query datagrams and encodes outbound
// replies (RFC 1035 Section 4.1).
//
// The package deliberately keeps questions as opaque wire slices: the server
// echoes question bytes verbatim into replies and only ever decodes the first
// question's name, so there is no general record model here. Inbound question
// names are expected to be uncompressed, which is standard for client queries;
// compression pointers are only ever written, never resolved.
//
// Error Handling:
//
// All errors wrap one of the sentinel errors below using
// fmt.Errorf("...: %w", err), preserving error chains while adding context.
package dnswire

import "errors"

var (
	// ErrMalformedMessage indicates a datagram that cannot be parsed as a
	// DNS query: truncated header, zero questions, or question bytes that
	// run past the end of the buffer.
	ErrMalformedMessage = errors.New("malformed dns message")

	// ErrMalformedName indicates a question name with an oversized label
	// or a label sequence truncated before its zero terminator.
	ErrMalformedName = errors.New("malformed dns name")
)
