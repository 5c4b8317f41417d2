package filesystem

import (
	"sync"
	"sync/atomic"

	"github.com/brettbedarf/riddlefs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// RootIno is the ino of the root directory
const RootIno = fuse.FUSE_ROOT_ID

// Table maps inos to nodes. A single mutex guards the map and every node in
// it; all access goes through a [TableContext] obtained from [Table.Lock].
type Table struct {
	mu      sync.Mutex
	entries map[uint64]*entry
	lastIno atomic.Uint64 // Last ino handed out; never reused
}

// NewTable creates a table holding only root at [RootIno]
func NewTable(root riddlefs.Directory) *Table {
	t := &Table{entries: make(map[uint64]*entry)}
	t.entries[RootIno] = &entry{kind: riddlefs.KindDir, node: root}
	t.lastIno.Store(RootIno)
	return t
}

// NextIno allocates a fresh ino. It does not need the table lock.
func (t *Table) NextIno() uint64 {
	return t.lastIno.Add(1)
}

// Lock acquires the table and returns the context to operate on it.
// The caller must Close the context exactly once.
func (t *Table) Lock() *TableContext {
	t.mu.Lock()
	ctx := &TableContext{table: t}
	ctx.AddClose(t.mu.Unlock)
	return ctx
}

// Len returns the number of live inos
func (t *Table) Len() int {
	ctx := t.Lock()
	defer ctx.Close()
	return len(t.entries)
}
