package filesystem

import (
	"bytes"

	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/internal/util"
	"github.com/brettbedarf/riddlefs/nodes"
)

// DirEntry is a single directory listing result
type DirEntry struct {
	Ino  uint64
	Off  uint64 // Position to resume the listing after this entry
	Name string
	Attr riddlefs.Attr
}

// StatFs summarizes the table for statfs
type StatFs struct {
	Files   uint64 // Live inos
	Bytes   uint64 // Sum of file sizes
	Bsize   uint32
	NameLen uint32
}

// MaxNameLen is the longest name reported by statfs
const MaxNameLen = 255

// Lookup resolves name inside parent and returns the child's attributes
func (fs *FileSystem) Lookup(parent uint64, name string) (riddlefs.Attr, error) {
	logger := util.GetLogger("FS.Lookup")
	logger.Trace().Uint64("parent", parent).Str("name", name).Msg("Lookup called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	ino, err := ctx.ResolveChild(parent, name)
	if err != nil {
		return riddlefs.Attr{}, err
	}
	return ctx.Attr(ino)
}

func (fs *FileSystem) GetAttr(ino uint64) (riddlefs.Attr, error) {
	ctx := fs.table.Lock()
	defer ctx.Close()
	return ctx.Attr(ino)
}

// SetAttr forwards req to the node and returns the updated attributes
func (fs *FileSystem) SetAttr(ino uint64, req riddlefs.SetAttrRequest) (riddlefs.Attr, error) {
	logger := util.GetLogger("FS.SetAttr")
	logger.Trace().Uint64("ino", ino).Interface("req", req).Msg("SetAttr called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	node, err := ctx.Get(ino)
	if err != nil {
		return riddlefs.Attr{}, err
	}
	if err := node.SetAttr(req); err != nil {
		logger.Debug().Err(err).Uint64("ino", ino).Msg("Node refused setattr")
		return riddlefs.Attr{}, err
	}
	return ctx.Attr(ino)
}

// Mknod creates an empty writable file owned by caller
func (fs *FileSystem) Mknod(parent uint64, name string, perm uint32, caller riddlefs.Owner) (riddlefs.Attr, error) {
	logger := util.GetLogger("FS.Mknod")
	logger.Trace().Uint64("parent", parent).Str("name", name).Msg("Mknod called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	dir, err := ctx.Dir(parent)
	if err != nil {
		return riddlefs.Attr{}, err
	}
	if !riddlefs.CanCreate(dir.IsSandbox(), name) {
		return riddlefs.Attr{}, riddlefs.ErrPermissionDenied
	}

	file := nodes.NewBufferFile(name, nil,
		nodes.WithPerm(perm),
		nodes.WithOwner(caller),
		nodes.WithClock(fs.clock),
		nodes.WithMaxSize(fs.cfg.MaxFileSize),
	)
	ino, err := ctx.RegisterChild(parent, file)
	if err != nil {
		return riddlefs.Attr{}, err
	}
	logger.Debug().Uint64("ino", ino).Str("name", name).Msg("Created file")
	return ctx.Attr(ino)
}

// Mkdir creates an empty directory owned by caller. The new directory is a
// sandbox if its parent is one or its name is escaped.
func (fs *FileSystem) Mkdir(parent uint64, name string, perm uint32, caller riddlefs.Owner) (riddlefs.Attr, error) {
	logger := util.GetLogger("FS.Mkdir")
	logger.Trace().Uint64("parent", parent).Str("name", name).Msg("Mkdir called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	dir, err := ctx.Dir(parent)
	if err != nil {
		return riddlefs.Attr{}, err
	}
	if !riddlefs.CanCreate(dir.IsSandbox(), name) {
		return riddlefs.Attr{}, riddlefs.ErrPermissionDenied
	}

	child := nodes.NewDir(name,
		nodes.WithPerm(perm),
		nodes.WithOwner(caller),
		nodes.WithSandbox(dir.IsSandbox() || riddlefs.IsEscaped(name)),
		nodes.WithClock(fs.clock),
	)
	ino, err := ctx.RegisterChild(parent, child)
	if err != nil {
		return riddlefs.Attr{}, err
	}
	logger.Debug().Uint64("ino", ino).Str("name", name).Msg("Created directory")
	return ctx.Attr(ino)
}

// Unlink removes name from parent. If the node refuses deletion it is linked
// back and the refusal is returned.
func (fs *FileSystem) Unlink(parent uint64, name string) error {
	logger := util.GetLogger("FS.Unlink")
	logger.Trace().Uint64("parent", parent).Str("name", name).Msg("Unlink called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	dir, err := ctx.Dir(parent)
	if err != nil {
		return err
	}
	ino, err := dir.LookupChild(name, ctx)
	if err != nil {
		return err
	}
	node, err := ctx.Get(ino)
	if err != nil {
		return err
	}

	pos := ctx.ChildIndex(dir, ino)
	if err := dir.RemoveChild(ino); err != nil {
		return err
	}
	if err := node.Delete(); err != nil {
		if lerr := dir.InsertChild(pos, ino); lerr != nil {
			logger.Error().Err(lerr).Uint64("ino", ino).Msg("Failed to relink refused node")
		}
		logger.Debug().Err(err).Uint64("ino", ino).Msg("Node refused delete")
		return err
	}
	ctx.ForgetTree(ino)
	return nil
}

// Rmdir removes the empty directory name from parent
func (fs *FileSystem) Rmdir(parent uint64, name string) error {
	logger := util.GetLogger("FS.Rmdir")
	logger.Trace().Uint64("parent", parent).Str("name", name).Msg("Rmdir called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	dir, err := ctx.Dir(parent)
	if err != nil {
		return err
	}
	ino, err := dir.LookupChild(name, ctx)
	if err != nil {
		return err
	}
	child, err := ctx.Dir(ino)
	if err != nil {
		return err
	}
	if err := child.Delete(); err != nil {
		return err
	}
	if err := dir.RemoveChild(ino); err != nil {
		return err
	}
	ctx.Forget(ino)
	return nil
}

// Rename moves name in parent to newName in newParent. The name change is
// judged against the destination's sandbox flag. Moving a directory into
// itself or one of its descendants is refused.
func (fs *FileSystem) Rename(parent uint64, name string, newParent uint64, newName string) error {
	logger := util.GetLogger("FS.Rename")
	logger.Trace().
		Uint64("parent", parent).Str("name", name).
		Uint64("newParent", newParent).Str("newName", newName).
		Msg("Rename called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	oldDir, err := ctx.Dir(parent)
	if err != nil {
		return err
	}
	ino, err := oldDir.LookupChild(name, ctx)
	if err != nil {
		return err
	}
	newDir, err := ctx.Dir(newParent)
	if err != nil {
		return err
	}
	node, err := ctx.Get(ino)
	if err != nil {
		return err
	}
	if _, isDir := node.(riddlefs.Directory); isDir && ctx.IsAncestor(ino, newParent) {
		logger.Debug().Uint64("ino", ino).Uint64("newParent", newParent).Msg("Refusing to move directory below itself")
		return riddlefs.ErrNotSupported
	}

	if err := node.Rename(newName, newDir.IsSandbox()); err != nil {
		return err
	}
	pos := ctx.ChildIndex(oldDir, ino)
	if err := oldDir.RemoveChild(ino); err != nil {
		return err
	}
	if err := newDir.AddChild(ino); err != nil {
		if rerr := oldDir.InsertChild(pos, ino); rerr != nil {
			logger.Error().Err(rerr).Uint64("ino", ino).Msg("Failed to relink renamed node")
		}
		return err
	}
	return nil
}

// Read returns a copy of up to size bytes of ino starting at offset
func (fs *FileSystem) Read(ino uint64, offset int64, size int) ([]byte, error) {
	logger := util.GetLogger("FS.Read")
	logger.Trace().Uint64("ino", ino).Int64("offset", offset).Int("size", size).Msg("Read called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	file, err := ctx.File(ino)
	if err != nil {
		return nil, err
	}
	data, err := file.Read(offset, size)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(data), nil
}

func (fs *FileSystem) Write(ino uint64, offset int64, data []byte) (int, error) {
	logger := util.GetLogger("FS.Write")
	logger.Trace().Uint64("ino", ino).Int64("offset", offset).Int("size", len(data)).Msg("Write called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	file, err := ctx.File(ino)
	if err != nil {
		return 0, err
	}
	return file.Write(offset, data)
}

// ReadDir lists ino from position offset, calling emit for each child until
// the children run out or emit returns false
func (fs *FileSystem) ReadDir(ino uint64, offset uint64, emit func(DirEntry) bool) error {
	logger := util.GetLogger("FS.ReadDir")
	logger.Trace().Uint64("ino", ino).Uint64("offset", offset).Msg("ReadDir called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	dir, err := ctx.Dir(ino)
	if err != nil {
		return err
	}
	for pos := int(offset); ; pos++ {
		child, ok := dir.Child(pos)
		if !ok {
			return nil
		}
		attr, err := ctx.Attr(child)
		if err != nil {
			logger.Error().Uint64("ino", ino).Uint64("child", child).Msg("Dangling child ino")
			continue
		}
		name, _ := ctx.NameOf(child)
		if !emit(DirEntry{Ino: child, Off: uint64(pos + 1), Name: name, Attr: attr}) {
			return nil
		}
	}
}

// OpenDir checks that ino is a directory
func (fs *FileSystem) OpenDir(ino uint64) error {
	ctx := fs.table.Lock()
	defer ctx.Close()
	_, err := ctx.Dir(ino)
	return err
}

// Open runs the node's open hook, if any, and returns a new file handle
func (fs *FileSystem) Open(ino uint64) (uint64, error) {
	logger := util.GetLogger("FS.Open")
	logger.Trace().Uint64("ino", ino).Msg("Open called")

	ctx := fs.table.Lock()
	defer ctx.Close()

	file, err := ctx.File(ino)
	if err != nil {
		return 0, err
	}
	fh, err := fs.handles.Open(ino)
	if err != nil {
		logger.Warn().Err(err).Uint64("ino", ino).Msg("Cannot allocate file handle")
		return 0, err
	}
	if opener, ok := file.(riddlefs.Opener); ok {
		if err := opener.Open(); err != nil {
			fs.handles.Release(fh)
			return 0, err
		}
	}
	logger.Debug().Uint64("ino", ino).Uint64("fh", fh).Msg("Opened")
	return fh, nil
}

// Release frees fh and runs the release hook of the node it was opened on.
// Unknown handles and nodes removed since the open are ignored.
func (fs *FileSystem) Release(fh uint64) error {
	logger := util.GetLogger("FS.Release")
	logger.Trace().Uint64("fh", fh).Msg("Release called")

	ino, ok := fs.handles.Release(fh)
	if !ok {
		logger.Debug().Uint64("fh", fh).Msg("Unknown file handle")
		return nil
	}

	ctx := fs.table.Lock()
	defer ctx.Close()

	node, err := ctx.Get(ino)
	if err != nil {
		logger.Debug().Uint64("fh", fh).Uint64("ino", ino).Msg("Node gone before release")
		return nil
	}
	if releaser, ok := node.(riddlefs.Releaser); ok {
		return releaser.Release()
	}
	return nil
}

// Readlink returns the target of the link at ino
func (fs *FileSystem) Readlink(ino uint64) (string, error) {
	ctx := fs.table.Lock()
	defer ctx.Close()

	link, err := ctx.Link(ino)
	if err != nil {
		return "", err
	}
	return link.Target(), nil
}

func (fs *FileSystem) StatFs() StatFs {
	ctx := fs.table.Lock()
	defer ctx.Close()

	st := StatFs{
		Files:   uint64(len(fs.table.entries)),
		Bsize:   riddlefs.DefaultBlksize,
		NameLen: MaxNameLen,
	}
	for ino, e := range fs.table.entries {
		if e.kind == riddlefs.KindFile {
			st.Bytes += e.attr(ino).Size
		}
	}
	return st
}
