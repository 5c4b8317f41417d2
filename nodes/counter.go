package nodes

import (
	"github.com/brettbedarf/riddlefs"
)

// OpenCounter is a read-only file that counts its concurrent openers. Once
// at least threshold handles are open, reads return the unlocked payload and
// the callback fires exactly once.
type OpenCounter struct {
	base
	locked    []byte
	unlocked  []byte
	threshold int
	opens     int
	fired     bool
	onUnlock  func()
}

var (
	_ riddlefs.RegularFile = (*OpenCounter)(nil)
	_ riddlefs.Opener      = (*OpenCounter)(nil)
	_ riddlefs.Releaser    = (*OpenCounter)(nil)
)

// NewOpenCounter creates an open counter. A nil onUnlock is treated as a no-op.
func NewOpenCounter(name string, locked, unlocked []byte, threshold int, onUnlock func(), opts ...Option) *OpenCounter {
	if onUnlock == nil {
		onUnlock = func() {}
	}
	return &OpenCounter{
		base:      newBase(riddlefs.KindFile, name, newOptions(opts)),
		locked:    append([]byte(nil), locked...),
		unlocked:  append([]byte(nil), unlocked...),
		threshold: threshold,
		onUnlock:  onUnlock,
	}
}

func (c *OpenCounter) Attr() riddlefs.Attr {
	attr := c.attr
	attr.Size = uint64(len(c.payload()))
	return attr
}

func (c *OpenCounter) SetAttr(riddlefs.SetAttrRequest) error {
	return riddlefs.ErrPermissionDenied
}

func (c *OpenCounter) Rename(newName string, inSandbox bool) error {
	return c.rename(newName, inSandbox)
}

func (c *OpenCounter) Delete() error {
	return riddlefs.ErrPermissionDenied
}

func (c *OpenCounter) Read(offset int64, size int) ([]byte, error) {
	if c.Unlocked() && !c.fired {
		c.fired = true
		c.onUnlock()
	}
	return ReadAt(c.payload(), offset, size), nil
}

func (c *OpenCounter) Write(int64, []byte) (int, error) {
	return 0, riddlefs.ErrPermissionDenied
}

func (c *OpenCounter) Open() error {
	c.opens++
	return nil
}

// Release never takes the count below zero
func (c *OpenCounter) Release() error {
	if c.opens > 0 {
		c.opens--
	}
	return nil
}

// Opens returns the number of currently open handles
func (c *OpenCounter) Opens() int {
	return c.opens
}

// Unlocked reports whether enough handles are open
func (c *OpenCounter) Unlocked() bool {
	return c.opens >= c.threshold
}

func (c *OpenCounter) payload() []byte {
	if c.Unlocked() {
		return c.unlocked
	}
	return c.locked
}
