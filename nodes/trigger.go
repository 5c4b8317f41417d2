package nodes

import (
	"github.com/brettbedarf/riddlefs"
)

// TriggerFile is a read-only file that calls its callback on the first
// successful read. Every read succeeds, so a zero-byte read at EOF fires too.
//
// The callback runs under the engine's table lock: it may only call the
// non-blocking [riddlefs.Mutator] methods.
type TriggerFile struct {
	base
	data      []byte
	triggered bool
	onRead    func()
}

var _ riddlefs.RegularFile = (*TriggerFile)(nil)

// NewTriggerFile creates a trigger file with a copy of data as its payload.
// A nil onRead is treated as a no-op.
func NewTriggerFile(name string, data []byte, onRead func(), opts ...Option) *TriggerFile {
	if onRead == nil {
		onRead = func() {}
	}
	return &TriggerFile{
		base:   newBase(riddlefs.KindFile, name, newOptions(opts)),
		data:   append([]byte(nil), data...),
		onRead: onRead,
	}
}

// NewTextFile creates a static read-only text file
func NewTextFile(name, text string, opts ...Option) *TriggerFile {
	return NewTriggerFile(name, []byte(text), nil, opts...)
}

func (f *TriggerFile) Attr() riddlefs.Attr {
	attr := f.attr
	attr.Size = uint64(len(f.data))
	return attr
}

func (f *TriggerFile) SetAttr(riddlefs.SetAttrRequest) error {
	return riddlefs.ErrPermissionDenied
}

func (f *TriggerFile) Rename(newName string, inSandbox bool) error {
	return f.rename(newName, inSandbox)
}

func (f *TriggerFile) Delete() error {
	return riddlefs.ErrPermissionDenied
}

func (f *TriggerFile) Read(offset int64, size int) ([]byte, error) {
	out := ReadAt(f.data, offset, size)
	if !f.triggered {
		f.triggered = true
		f.onRead()
	}
	return out, nil
}

func (f *TriggerFile) Write(int64, []byte) (int, error) {
	return 0, riddlefs.ErrPermissionDenied
}

// Triggered reports whether the callback has fired
func (f *TriggerFile) Triggered() bool {
	return f.triggered
}
