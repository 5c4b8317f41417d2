package filesystem

import (
	"github.com/brettbedarf/riddlefs"
)

// entry is a table slot: the node plus its kind tag, computed once at registration
type entry struct {
	kind riddlefs.Kind
	node riddlefs.Node
}

func newEntry(node riddlefs.Node) (*entry, error) {
	switch node.(type) {
	case riddlefs.Directory:
		return &entry{kind: riddlefs.KindDir, node: node}, nil
	case riddlefs.RegularFile:
		return &entry{kind: riddlefs.KindFile, node: node}, nil
	case riddlefs.Link:
		return &entry{kind: riddlefs.KindLink, node: node}, nil
	default:
		return nil, riddlefs.ErrNotSupported
	}
}

func (e *entry) dir() (riddlefs.Directory, bool) {
	if e.kind != riddlefs.KindDir {
		return nil, false
	}
	return e.node.(riddlefs.Directory), true
}

func (e *entry) file() (riddlefs.RegularFile, bool) {
	if e.kind != riddlefs.KindFile {
		return nil, false
	}
	return e.node.(riddlefs.RegularFile), true
}

func (e *entry) link() (riddlefs.Link, bool) {
	if e.kind != riddlefs.KindLink {
		return nil, false
	}
	return e.node.(riddlefs.Link), true
}

// attr reports the node's attributes stamped with its table identity
func (e *entry) attr(ino uint64) riddlefs.Attr {
	attr := e.node.Attr()
	attr.Ino = ino
	attr.Kind = e.kind
	return attr
}
