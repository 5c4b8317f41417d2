package filesystem

import (
	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/internal/util"
)

// TableContext wraps a locked [Table].
// Calling TableContext.Close() unwinds all unlocking/cleanup callbacks in reverse order.
// Node methods may be called freely while the context is open; the table
// lock is the only lock protecting them.
//
// NOTE: TableContext itself is **not** thread-safe meaning references
// to it should not be shared between goroutines
type TableContext struct {
	table    *Table
	closeFns []func()
}

var _ riddlefs.Namer = (*TableContext)(nil)

// AddClose pushes a cleanup callback (e.g., unlock) onto the end of the stack.
func (ctx *TableContext) AddClose(fn func()) {
	ctx.closeFns = append(ctx.closeFns, fn)
}

// Close unwinds all cleanup callbacks in reverse order.
// Safe to call even if ctx is nil; it is a no-op in that case, so you can
// `defer ctx.Close()` unconditionally.
//
// Example:
//
//	ctx := table.Lock()
//	defer ctx.Close()
func (ctx *TableContext) Close() {
	if ctx == nil {
		return
	}
	for i := len(ctx.closeFns) - 1; i >= 0; i-- {
		ctx.closeFns[i]()
	}
	ctx.closeFns = nil
}

func (ctx *TableContext) get(ino uint64) (*entry, error) {
	e, ok := ctx.table.entries[ino]
	if !ok {
		return nil, riddlefs.ErrNotFound
	}
	return e, nil
}

// Get returns the node at ino
func (ctx *TableContext) Get(ino uint64) (riddlefs.Node, error) {
	e, err := ctx.get(ino)
	if err != nil {
		return nil, err
	}
	return e.node, nil
}

// Attr returns the attributes of ino with Ino and Kind filled in
func (ctx *TableContext) Attr(ino uint64) (riddlefs.Attr, error) {
	e, err := ctx.get(ino)
	if err != nil {
		return riddlefs.Attr{}, err
	}
	return e.attr(ino), nil
}

// Dir returns the directory at ino; [riddlefs.ErrNotSupported] if it is not one
func (ctx *TableContext) Dir(ino uint64) (riddlefs.Directory, error) {
	e, err := ctx.get(ino)
	if err != nil {
		return nil, err
	}
	dir, ok := e.dir()
	if !ok {
		return nil, riddlefs.ErrNotSupported
	}
	return dir, nil
}

// File returns the regular file at ino; [riddlefs.ErrNotSupported] if it is not one
func (ctx *TableContext) File(ino uint64) (riddlefs.RegularFile, error) {
	e, err := ctx.get(ino)
	if err != nil {
		return nil, err
	}
	file, ok := e.file()
	if !ok {
		return nil, riddlefs.ErrNotSupported
	}
	return file, nil
}

// Link returns the link at ino; [riddlefs.ErrNotSupported] if it is not one
func (ctx *TableContext) Link(ino uint64) (riddlefs.Link, error) {
	e, err := ctx.get(ino)
	if err != nil {
		return nil, err
	}
	link, ok := e.link()
	if !ok {
		return nil, riddlefs.ErrNotSupported
	}
	return link, nil
}

// Register stores node under ino. It does not link it anywhere.
func (ctx *TableContext) Register(ino uint64, node riddlefs.Node) error {
	e, err := newEntry(node)
	if err != nil {
		return err
	}
	ctx.table.entries[ino] = e
	return nil
}

// RegisterChild stores node under a fresh ino and links it into parent
func (ctx *TableContext) RegisterChild(parent uint64, node riddlefs.Node) (uint64, error) {
	dir, err := ctx.Dir(parent)
	if err != nil {
		return 0, err
	}
	ino := ctx.table.NextIno()
	if err := ctx.Register(ino, node); err != nil {
		return 0, err
	}
	if err := dir.AddChild(ino); err != nil {
		ctx.Forget(ino)
		return 0, err
	}
	return ino, nil
}

// Forget drops ino from the table
func (ctx *TableContext) Forget(ino uint64) {
	delete(ctx.table.entries, ino)
}

// ForgetTree drops ino and, for directories, every descendant
func (ctx *TableContext) ForgetTree(ino uint64) {
	e, ok := ctx.table.entries[ino]
	if !ok {
		return
	}
	if dir, ok := e.dir(); ok {
		for i := 0; ; i++ {
			child, ok := dir.Child(i)
			if !ok {
				break
			}
			ctx.ForgetTree(child)
		}
	}
	ctx.Forget(ino)
}

// NameOf returns the current name of ino
func (ctx *TableContext) NameOf(ino uint64) (string, bool) {
	e, ok := ctx.table.entries[ino]
	if !ok {
		logger := util.GetLogger("Table.NameOf")
		logger.Error().Uint64("ino", ino).Msg("Dangling child ino")
		return "", false
	}
	return e.node.Name(), true
}

// ResolveChild resolves name inside the directory parent
func (ctx *TableContext) ResolveChild(parent uint64, name string) (uint64, error) {
	dir, err := ctx.Dir(parent)
	if err != nil {
		return 0, err
	}
	return dir.LookupChild(name, ctx)
}

// ChildIndex returns the listing position of ino in dir or -1
func (ctx *TableContext) ChildIndex(dir riddlefs.Directory, ino uint64) int {
	for i := 0; ; i++ {
		child, ok := dir.Child(i)
		if !ok {
			return -1
		}
		if child == ino {
			return i
		}
	}
}

// IsAncestor reports whether ino is anc or lies somewhere below it
func (ctx *TableContext) IsAncestor(anc, ino uint64) bool {
	if anc == ino {
		return true
	}
	e, ok := ctx.table.entries[anc]
	if !ok {
		return false
	}
	dir, ok := e.dir()
	if !ok {
		return false
	}
	for i := 0; ; i++ {
		child, ok := dir.Child(i)
		if !ok {
			return false
		}
		if ctx.IsAncestor(child, ino) {
			return true
		}
	}
}
