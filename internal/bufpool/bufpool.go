// Package bufpool recycles fixed-size receive buffers for UDP datagrams,
// reducing allocations on the hot receive path.
package bufpool

import (
	"sync"

	"github.com/overdns/overdns/internal/dnswire"
)

var pool = sync.Pool{
	New: func() any {
		buf := make([]byte, dnswire.MaxDatagramSize)
		return &buf
	},
}

// Get retrieves a datagram-sized buffer.
func Get() *[]byte {
	return pool.Get().(*[]byte)
}

// Put returns a buffer for reuse. The caller must not touch the buffer
// afterwards.
func Put(buf *[]byte) {
	pool.Put(buf)
}
