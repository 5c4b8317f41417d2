package nodes

import (
	"slices"

	"github.com/brettbedarf/riddlefs"
)

// Dir is the generic directory node. Children are kept in insertion order.
type Dir struct {
	base
	children []uint64
	sandbox  bool
}

var _ riddlefs.Directory = (*Dir)(nil)

// NewDir creates an empty directory
func NewDir(name string, opts ...Option) *Dir {
	o := newOptions(opts)
	return &Dir{
		base:    newBase(riddlefs.KindDir, name, o),
		sandbox: o.sandbox,
	}
}

// NewDefaultDir creates the kind of directory materialized for missing path
// components: not a sandbox and [DefaultPerm]. Perm and sandbox options are
// ignored.
func NewDefaultDir(name string, opts ...Option) *Dir {
	return NewDir(name, append(opts, WithPerm(DefaultPerm), WithSandbox(false))...)
}

func (d *Dir) Attr() riddlefs.Attr {
	attr := d.attr
	attr.Size = uint64(len(d.children))
	return attr
}

// SetAttr rejects size changes with [riddlefs.ErrNotSupported]
func (d *Dir) SetAttr(req riddlefs.SetAttrRequest) error {
	if req.Size != nil {
		return riddlefs.ErrNotSupported
	}
	d.attr.Apply(req, d.clock.Now())
	return nil
}

// Rename follows the sandbox convention. A renamed directory always ends up a
// sandbox since the move was only allowed into a sandbox or under an escaped name.
func (d *Dir) Rename(newName string, inSandbox bool) error {
	if err := d.rename(newName, inSandbox); err != nil {
		return err
	}
	d.sandbox = true
	return nil
}

func (d *Dir) Delete() error {
	if len(d.children) > 0 {
		return riddlefs.ErrNotEmpty
	}
	return nil
}

func (d *Dir) IsSandbox() bool {
	return d.sandbox
}

func (d *Dir) AddChild(ino uint64) error {
	d.children = append(d.children, ino)
	d.touch()
	return nil
}

func (d *Dir) InsertChild(index int, ino uint64) error {
	index = min(max(index, 0), len(d.children))
	d.children = slices.Insert(d.children, index, ino)
	d.touch()
	return nil
}

func (d *Dir) RemoveChild(ino uint64) error {
	i := slices.Index(d.children, ino)
	if i < 0 {
		return nil
	}
	d.children = slices.Delete(d.children, i, i+1)
	d.touch()
	return nil
}

func (d *Dir) Child(index int) (uint64, bool) {
	if index < 0 || index >= len(d.children) {
		return 0, false
	}
	return d.children[index], true
}

// LookupChild returns the first child whose current name matches
func (d *Dir) LookupChild(name string, names riddlefs.Namer) (uint64, error) {
	for _, ino := range d.children {
		if n, ok := names.NameOf(ino); ok && n == name {
			return ino, nil
		}
	}
	return 0, riddlefs.ErrNotFound
}
