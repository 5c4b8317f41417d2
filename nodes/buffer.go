package nodes

import (
	"github.com/brettbedarf/riddlefs"
)

// BufferFile is a writable file backed by a growable, zero-filled byte buffer.
// It is what mknod creates. Growing past its maximum size is refused with
// [riddlefs.ErrNotSupported].
type BufferFile struct {
	base
	data    []byte
	maxSize int64
}

var _ riddlefs.RegularFile = (*BufferFile)(nil)

// NewBufferFile creates a file holding a copy of content
func NewBufferFile(name string, content []byte, opts ...Option) *BufferFile {
	o := newOptions(opts)
	return &BufferFile{
		base:    newBase(riddlefs.KindFile, name, o),
		data:    append([]byte(nil), content...),
		maxSize: o.maxSize,
	}
}

func (f *BufferFile) Attr() riddlefs.Attr {
	attr := f.attr
	attr.Size = uint64(len(f.data))
	return attr
}

// SetAttr truncates or zero-extends the buffer when a size is given
func (f *BufferFile) SetAttr(req riddlefs.SetAttrRequest) error {
	if req.Size != nil {
		if *req.Size > uint64(f.maxSize) {
			return riddlefs.ErrNotSupported
		}
		f.resize(int(*req.Size))
		f.touch()
	}
	f.attr.Apply(req, f.clock.Now())
	return nil
}

func (f *BufferFile) Rename(newName string, inSandbox bool) error {
	return f.rename(newName, inSandbox)
}

func (f *BufferFile) Delete() error {
	return nil
}

func (f *BufferFile) Read(offset int64, size int) ([]byte, error) {
	return ReadAt(f.data, offset, size), nil
}

// Write copies data at offset, zero-filling any gap past the current end
func (f *BufferFile) Write(offset int64, data []byte) (int, error) {
	if offset < 0 || offset > f.maxSize-int64(len(data)) {
		return 0, riddlefs.ErrNotSupported
	}
	if end := int(offset) + len(data); end > len(f.data) {
		f.resize(end)
	}
	n := copy(f.data[offset:], data)
	f.touch()
	return n, nil
}

// Bytes returns a copy of the current contents
func (f *BufferFile) Bytes() []byte {
	return append([]byte(nil), f.data...)
}

func (f *BufferFile) resize(n int) {
	if n <= len(f.data) {
		f.data = f.data[:n:n]
		return
	}
	f.data = append(f.data, make([]byte, n-len(f.data))...)
}
