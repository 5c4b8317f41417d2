package nodes

import (
	"github.com/brettbedarf/riddlefs"
)

// Link is a symbolic link. Only its name can change.
type Link struct {
	base
	target string
}

var _ riddlefs.Link = (*Link)(nil)

func NewLink(name, target string, opts ...Option) *Link {
	return &Link{
		base:   newBase(riddlefs.KindLink, name, newOptions(opts)),
		target: target,
	}
}

func (l *Link) Attr() riddlefs.Attr {
	attr := l.attr
	attr.Size = uint64(len(l.target))
	return attr
}

func (l *Link) SetAttr(riddlefs.SetAttrRequest) error {
	return riddlefs.ErrNotSupported
}

// Rename is always allowed
func (l *Link) Rename(newName string, _ bool) error {
	l.name = newName
	l.attr.Ctime = l.clock.Now()
	return nil
}

func (l *Link) Delete() error {
	return riddlefs.ErrNotSupported
}

func (l *Link) Target() string {
	return l.target
}
