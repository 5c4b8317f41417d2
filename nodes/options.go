// Package nodes provides the generic node kinds the filesystem engine builds
// on: directories, writable buffer files, one-shot trigger files, open
// counters and links. Content modules compose them or implement the
// riddlefs contracts directly.
package nodes

import (
	"os"

	"code.cloudfoundry.org/clock"
	"github.com/brettbedarf/riddlefs"
)

// DefaultPerm is the permission set given to nodes created without [WithPerm]
const DefaultPerm = 0o777

// DefaultMaxSize is the largest a buffer file may grow without [WithMaxSize]
const DefaultMaxSize = 1 << 30

type options struct {
	perm    uint32
	owner   riddlefs.Owner
	clock   clock.Clock
	sandbox bool
	maxSize int64
}

// Option customizes a node at construction
type Option func(*options)

// WithPerm sets the initial permission bits
func WithPerm(perm uint32) Option {
	return func(o *options) { o.perm = perm }
}

// WithOwner sets the initial owning user and group
func WithOwner(owner riddlefs.Owner) Option {
	return func(o *options) { o.owner = owner }
}

// WithClock sets the clock used for timestamps
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// WithSandbox flags a directory as a sandbox. Ignored by other kinds.
func WithSandbox(sandbox bool) Option {
	return func(o *options) { o.sandbox = sandbox }
}

// WithMaxSize caps the size of a buffer file. Ignored by other kinds.
func WithMaxSize(n int64) Option {
	return func(o *options) { o.maxSize = max(n, 0) }
}

// ProcessOwner returns the uid/gid of the running process
func ProcessOwner() riddlefs.Owner {
	return riddlefs.Owner{Uid: uint32(os.Getuid()), Gid: uint32(os.Getgid())}
}

func newOptions(opts []Option) options {
	o := options{
		perm:    DefaultPerm,
		owner:   ProcessOwner(),
		clock:   clock.NewClock(),
		maxSize: DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// base holds the name and attributes every node kind carries
type base struct {
	name  string
	attr  riddlefs.Attr
	clock clock.Clock
}

func newBase(kind riddlefs.Kind, name string, o options) base {
	return base{
		name:  name,
		attr:  riddlefs.NewAttr(kind, o.perm, o.owner.Uid, o.owner.Gid, o.clock.Now()),
		clock: o.clock,
	}
}

func (b *base) Name() string {
	return b.name
}

// rename applies the sandbox convention shared by all renamable kinds
func (b *base) rename(newName string, inSandbox bool) error {
	if !riddlefs.CanCreate(inSandbox, newName) {
		return riddlefs.ErrPermissionDenied
	}
	b.name = newName
	b.attr.Ctime = b.clock.Now()
	return nil
}

func (b *base) touch() {
	now := b.clock.Now()
	b.attr.Mtime = now
	b.attr.Ctime = now
}

// ReadAt returns the slice of data covering [offset, offset+size).
// Out-of-range requests yield an empty slice.
func ReadAt(data []byte, offset int64, size int) []byte {
	if offset < 0 || offset >= int64(len(data)) || size <= 0 {
		return []byte{}
	}
	end := min(offset+int64(size), int64(len(data)))
	return data[offset:end]
}
