package server

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/overdns/overdns/internal/dnswire"
	"github.com/overdns/overdns/internal/resolvers"
)

// fakeResolver returns a canned result or error.
type fakeResolver struct {
	res resolvers.Result
	err error
}

func (f *fakeResolver) Resolve(context.Context, dnswire.Query) (resolvers.Result, error) {
	return f.res, f.err
}

func (f *fakeResolver) Close() error { return nil }

// fakeForwarder records the forwarded bytes and returns a canned reply.
type fakeForwarder struct {
	resp   []byte
	err    error
	called bool
	got    []byte
}

func (f *fakeForwarder) Forward(_ context.Context, query []byte) ([]byte, error) {
	f.called = true
	f.got = append([]byte(nil), query...)
	return f.resp, f.err
}

func (f *fakeForwarder) Close() error { return nil }

// dottedQuery is a single-question query for example.com, ID 0xABCD.
func dottedQuery() []byte {
	return []byte{
		0xAB, 0xCD, 0x01, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0,
		7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0,
		0x00, 0x01, 0x00, 0x01,
	}
}

// undottedQuery is a single-label query for localhost, ID 0x0102.
func undottedQuery() []byte {
	return []byte{
		0x01, 0x02, 0x01, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0,
		9, 'l', 'o', 'c', 'a', 'l', 'h', 'o', 's', 't', 0,
		0x00, 0x01, 0x00, 0x01,
	}
}

func TestHandleOverrideHit(t *testing.T) {
	hit := resolvers.Result{ResponseBytes: []byte("local-answer"), Source: "override"}
	fwd := &fakeForwarder{}
	h := &QueryHandler{
		Overrides: &fakeResolver{res: hit},
		Forwarder: fwd,
		Stats:     NewStats(),
	}

	resp := h.Handle(context.Background(), "test", dottedQuery())
	assert.Equal(t, []byte("local-answer"), resp)
	assert.False(t, fwd.called, "a hit must not reach the forwarder")
	assert.Equal(t, uint64(1), h.Stats.Snapshot().OverrideHits)
}

func TestHandleDottedMissForwards(t *testing.T) {
	fwd := &fakeForwarder{resp: []byte("upstream-answer")}
	h := &QueryHandler{
		Overrides: &fakeResolver{err: resolvers.ErrNoOverride},
		Forwarder: fwd,
		Stats:     NewStats(),
	}

	req := dottedQuery()
	resp := h.Handle(context.Background(), "test", req)

	require.True(t, fwd.called)
	assert.Equal(t, req, fwd.got, "the original datagram must be forwarded verbatim")
	assert.Equal(t, []byte("upstream-answer"), resp)
	assert.Equal(t, uint64(1), h.Stats.Snapshot().Forwarded)
}

func TestHandleUndottedMissAnswersNXDomain(t *testing.T) {
	fwd := &fakeForwarder{}
	h := &QueryHandler{
		Overrides: &fakeResolver{err: resolvers.ErrNoOverride},
		Forwarder: fwd,
		Stats:     NewStats(),
	}

	resp := h.Handle(context.Background(), "test", undottedQuery())
	require.NotNil(t, resp)
	assert.False(t, fwd.called, "undotted names never go upstream")

	off := 0
	hdr, err := dnswire.ParseHeader(resp, &off)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), hdr.ID)
	assert.Equal(t, dnswire.FlagsNXDomain, hdr.Flags)
	assert.Equal(t, uint16(1), hdr.QDCount)
	assert.Equal(t, uint16(0), hdr.ANCount)
	assert.Equal(t, undottedQuery()[12:], resp[12:], "question must be echoed")
	assert.Equal(t, uint64(1), h.Stats.Snapshot().ResponsesNX)
}

func TestHandleUpstreamSilenceDrops(t *testing.T) {
	fwd := &fakeForwarder{err: errors.New("i/o timeout")}
	h := &QueryHandler{
		Overrides: &fakeResolver{err: resolvers.ErrNoOverride},
		Forwarder: fwd,
		Stats:     NewStats(),
	}

	resp := h.Handle(context.Background(), "test", dottedQuery())
	assert.Nil(t, resp)
	assert.Equal(t, uint64(1), h.Stats.Snapshot().Drops)
}

func TestHandleParseFailureDrops(t *testing.T) {
	h := &QueryHandler{
		Overrides: &fakeResolver{err: resolvers.ErrNoOverride},
		Forwarder: &fakeForwarder{},
		Stats:     NewStats(),
	}

	assert.Nil(t, h.Handle(context.Background(), "test", []byte{0x01, 0x02, 0x03}))
	assert.Nil(t, h.Handle(context.Background(), "test", nil))
	assert.Equal(t, uint64(2), h.Stats.Snapshot().Drops)
}

func TestHandleResolverFailureDrops(t *testing.T) {
	// A resolver error that is not ErrNoOverride means the reply could not
	// be built; the query is dropped rather than mis-answered.
	fwd := &fakeForwarder{resp: []byte("x")}
	h := &QueryHandler{
		Overrides: &fakeResolver{err: errors.New("broken reply")},
		Forwarder: fwd,
		Stats:     NewStats(),
	}

	assert.Nil(t, h.Handle(context.Background(), "test", dottedQuery()))
	assert.False(t, fwd.called)
}

func TestHandleNilStats(t *testing.T) {
	h := &QueryHandler{
		Overrides: &fakeResolver{err: resolvers.ErrNoOverride},
		Forwarder: &fakeForwarder{resp: []byte("up")},
	}

	assert.Equal(t, []byte("up"), h.Handle(context.Background(), "test", dottedQuery()))
}
