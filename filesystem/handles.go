package filesystem

import (
	"fmt"
	"sync/atomic"

	"github.com/brettbedarf/riddlefs"
	"github.com/puzpuzpuz/xsync/v4"
)

// ErrHandlesExhausted is returned by [Handles.Open] when every handle is in use
var ErrHandlesExhausted = fmt.Errorf("no free file handle: %w", riddlefs.ErrNotSupported)

// Handles hands out FUSE file handles and remembers which ino each one was
// opened on, so Release reaches the node that saw the Open
type Handles struct {
	max    uint64
	lastFH atomic.Uint64
	open   *xsync.Map[uint64, uint64] // fh -> ino
}

func NewHandles(maxFH int) *Handles {
	return &Handles{
		max:  uint64(max(maxFH, 1)),
		open: xsync.NewMap[uint64, uint64](),
	}
}

// Open allocates an unused fh in 1..maxFH for ino. It gives up with
// [ErrHandlesExhausted] after trying maxFH candidates.
func (h *Handles) Open(ino uint64) (uint64, error) {
	for range h.max {
		fh := (h.lastFH.Add(1)-1)%h.max + 1
		if _, loaded := h.open.LoadOrStore(fh, ino); !loaded {
			return fh, nil
		}
	}
	return 0, ErrHandlesExhausted
}

// Lookup returns the ino fh was opened on
func (h *Handles) Lookup(fh uint64) (uint64, bool) {
	return h.open.Load(fh)
}

// Release frees fh and returns the ino it was opened on
func (h *Handles) Release(fh uint64) (uint64, bool) {
	return h.open.LoadAndDelete(fh)
}

// Len returns the number of open handles
func (h *Handles) Len() int {
	return h.open.Size()
}
