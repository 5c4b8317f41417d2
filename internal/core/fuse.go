package core

import (
	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/filesystem"
	"github.com/brettbedarf/riddlefs/internal/util"
	"github.com/hanwen/go-fuse/v2/fuse"
	"golang.org/x/sys/unix"
)

// FuseRaw implements the low-level FUSE wire protocol
// It serves as protocol adapter between the FUSE and core filesystem
// See https://www.man7.org/linux//man-pages/man4/fuse.4.html
type FuseRaw struct {
	fuse.RawFileSystem
	fs     *filesystem.FileSystem
	server *fuse.Server
}

func NewFuseRaw(fs *filesystem.FileSystem) *FuseRaw {
	return &FuseRaw{
		RawFileSystem: fuse.NewDefaultRawFileSystem(),
		fs:            fs,
	}
}

func (r *FuseRaw) Init(s *fuse.Server) {
	logger := util.GetLogger("Fuse.Init")
	logger.Debug().Msg("FUSE initialized")
	r.server = s
}

func (r *FuseRaw) OnUnmount() {
	logger := util.GetLogger("Fuse.OnUnmount")
	logger.Info().Msg("FUSE unmounted")
}

func (r *FuseRaw) String() string {
	return "FuseRaw"
}

// status maps a dispatcher error to the wire. Errors outside the taxonomy can
// only come from third party nodes; they are logged and reported as ENOTSUP.
func status(logger *util.Logger, err error) fuse.Status {
	errno, ok := riddlefs.Errno(err)
	if !ok {
		logger.Warn().Err(err).Msg("Node returned an unexpected error")
	}
	return fuse.Status(errno)
}

func (r *FuseRaw) fillEntry(attr riddlefs.Attr, out *fuse.EntryOut) {
	cfg := r.fs.Config()
	out.NodeId = attr.Ino
	fillAttr(attr, &out.Attr)
	out.SetEntryTimeout(seconds(cfg.EntryTimeout))
	out.SetAttrTimeout(seconds(cfg.AttrTimeout))
}

// Access is always granted. The sandbox convention is the only access control.
func (r *FuseRaw) Access(cancel <-chan struct{}, input *fuse.AccessIn) fuse.Status {
	return fuse.OK
}

// Lookup is called by the kernel when the VFS wants to know
// about a file inside a directory.
func (r *FuseRaw) Lookup(cancel <-chan struct{}, header *fuse.InHeader, name string, out *fuse.EntryOut) fuse.Status {
	logger := util.GetLogger("Fuse.Lookup")
	logger.Trace().Uint64("parent", header.NodeId).Str("name", name).Msg("Lookup called")

	attr, err := r.fs.Lookup(header.NodeId, name)
	if err != nil {
		return status(&logger, err)
	}
	r.fillEntry(attr, out)
	return fuse.OK
}

// Forget is a no-op: inos stay valid for as long as their node is linked,
// independent of the kernel's dentry cache
func (r *FuseRaw) Forget(nodeid, nlookup uint64) {
	logger := util.GetLogger("Fuse.Forget")
	logger.Trace().Uint64("ino", nodeid).Uint64("nlookup", nlookup).Msg("Forget called")
}

func (r *FuseRaw) GetAttr(cancel <-chan struct{}, input *fuse.GetAttrIn, out *fuse.AttrOut) fuse.Status {
	logger := util.GetLogger("Fuse.GetAttr")
	logger.Trace().Uint64("ino", input.NodeId).Msg("GetAttr called")

	attr, err := r.fs.GetAttr(input.NodeId)
	if err != nil {
		return status(&logger, err)
	}
	fillAttr(attr, &out.Attr)
	out.SetTimeout(seconds(r.fs.Config().AttrTimeout))
	return fuse.OK
}

func (r *FuseRaw) SetAttr(cancel <-chan struct{}, input *fuse.SetAttrIn, out *fuse.AttrOut) fuse.Status {
	logger := util.GetLogger("Fuse.SetAttr")
	logger.Trace().Uint64("ino", input.NodeId).Uint32("valid", input.Valid).Msg("SetAttr called")

	attr, err := r.fs.SetAttr(input.NodeId, setAttrRequest(input))
	if err != nil {
		return status(&logger, err)
	}
	fillAttr(attr, &out.Attr)
	out.SetTimeout(seconds(r.fs.Config().AttrTimeout))
	return fuse.OK
}

// Mknod only creates regular files
func (r *FuseRaw) Mknod(cancel <-chan struct{}, input *fuse.MknodIn, name string, out *fuse.EntryOut) fuse.Status {
	logger := util.GetLogger("Fuse.Mknod")
	logger.Trace().Uint64("parent", input.NodeId).Str("name", name).Uint32("mode", input.Mode).Msg("Mknod called")

	if typ := input.Mode & unix.S_IFMT; typ != 0 && typ != unix.S_IFREG {
		return fuse.ENOTSUP
	}
	owner := riddlefs.Owner{Uid: input.Uid, Gid: input.Gid}
	attr, err := r.fs.Mknod(input.NodeId, name, requestPerm(input.Mode, input.Umask), owner)
	if err != nil {
		return status(&logger, err)
	}
	r.fillEntry(attr, out)
	return fuse.OK
}

func (r *FuseRaw) Mkdir(cancel <-chan struct{}, input *fuse.MkdirIn, name string, out *fuse.EntryOut) fuse.Status {
	logger := util.GetLogger("Fuse.Mkdir")
	logger.Trace().Uint64("parent", input.NodeId).Str("name", name).Uint32("mode", input.Mode).Msg("Mkdir called")

	owner := riddlefs.Owner{Uid: input.Uid, Gid: input.Gid}
	attr, err := r.fs.Mkdir(input.NodeId, name, requestPerm(input.Mode, input.Umask), owner)
	if err != nil {
		return status(&logger, err)
	}
	r.fillEntry(attr, out)
	return fuse.OK
}

func (r *FuseRaw) Unlink(cancel <-chan struct{}, header *fuse.InHeader, name string) fuse.Status {
	logger := util.GetLogger("Fuse.Unlink")
	logger.Trace().Uint64("parent", header.NodeId).Str("name", name).Msg("Unlink called")

	return status(&logger, r.fs.Unlink(header.NodeId, name))
}

func (r *FuseRaw) Rmdir(cancel <-chan struct{}, header *fuse.InHeader, name string) fuse.Status {
	logger := util.GetLogger("Fuse.Rmdir")
	logger.Trace().Uint64("parent", header.NodeId).Str("name", name).Msg("Rmdir called")

	return status(&logger, r.fs.Rmdir(header.NodeId, name))
}

// Rename treats RENAME_NOREPLACE like a plain rename since duplicate names
// are allowed. RENAME_EXCHANGE and RENAME_WHITEOUT are not supported.
func (r *FuseRaw) Rename(cancel <-chan struct{}, input *fuse.RenameIn, oldName string, newName string) fuse.Status {
	logger := util.GetLogger("Fuse.Rename")
	logger.Trace().
		Uint64("parent", input.NodeId).Str("name", oldName).
		Uint64("newParent", input.Newdir).Str("newName", newName).
		Uint32("flags", input.Flags).
		Msg("Rename called")

	if input.Flags&^unix.RENAME_NOREPLACE != 0 {
		return fuse.ENOTSUP
	}
	return status(&logger, r.fs.Rename(input.NodeId, oldName, input.Newdir, newName))
}

func (r *FuseRaw) Readlink(cancel <-chan struct{}, header *fuse.InHeader) ([]byte, fuse.Status) {
	logger := util.GetLogger("Fuse.Readlink")
	logger.Trace().Uint64("ino", header.NodeId).Msg("Readlink called")

	target, err := r.fs.Readlink(header.NodeId)
	if err != nil {
		return nil, status(&logger, err)
	}
	return []byte(target), fuse.OK
}

func (r *FuseRaw) Open(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	logger := util.GetLogger("Fuse.Open")
	logger.Trace().Uint64("ino", input.NodeId).Uint32("flags", input.Flags).Msg("Open called")

	fh, err := r.fs.Open(input.NodeId)
	if err != nil {
		return status(&logger, err)
	}
	out.Fh = fh
	if r.fs.Config().DirectIO {
		out.OpenFlags |= fuse.FOPEN_DIRECT_IO
	}
	return fuse.OK
}

func (r *FuseRaw) Read(cancel <-chan struct{}, input *fuse.ReadIn, buf []byte) (fuse.ReadResult, fuse.Status) {
	logger := util.GetLogger("Fuse.Read")
	logger.Trace().Uint64("ino", input.NodeId).Uint64("offset", input.Offset).Uint32("size", input.Size).Msg("Read called")

	data, err := r.fs.Read(input.NodeId, int64(input.Offset), int(input.Size))
	if err != nil {
		return nil, status(&logger, err)
	}
	return fuse.ReadResultData(data), fuse.OK
}

func (r *FuseRaw) Write(cancel <-chan struct{}, input *fuse.WriteIn, data []byte) (uint32, fuse.Status) {
	logger := util.GetLogger("Fuse.Write")
	logger.Trace().Uint64("ino", input.NodeId).Uint64("offset", input.Offset).Int("size", len(data)).Msg("Write called")

	n, err := r.fs.Write(input.NodeId, int64(input.Offset), data)
	if err != nil {
		return 0, status(&logger, err)
	}
	return uint32(n), fuse.OK
}

func (r *FuseRaw) Release(cancel <-chan struct{}, input *fuse.ReleaseIn) {
	logger := util.GetLogger("Fuse.Release")
	logger.Trace().Uint64("ino", input.NodeId).Uint64("fh", input.Fh).Msg("Release called")

	if err := r.fs.Release(input.Fh); err != nil {
		logger.Debug().Err(err).Uint64("fh", input.Fh).Msg("Release hook failed")
	}
}

func (r *FuseRaw) OpenDir(cancel <-chan struct{}, input *fuse.OpenIn, out *fuse.OpenOut) fuse.Status {
	logger := util.GetLogger("Fuse.OpenDir")
	logger.Trace().Uint64("ino", input.NodeId).Msg("OpenDir called")

	return status(&logger, r.fs.OpenDir(input.NodeId))
}

// ReadDir lists children only; there are no "." and ".." entries
func (r *FuseRaw) ReadDir(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	logger := util.GetLogger("Fuse.ReadDir")
	logger.Trace().Uint64("ino", input.NodeId).Uint64("offset", input.Offset).Msg("ReadDir called")

	err := r.fs.ReadDir(input.NodeId, input.Offset, func(e filesystem.DirEntry) bool {
		return out.AddDirEntry(fuse.DirEntry{
			Mode: kindMode(e.Attr.Kind),
			Name: e.Name,
			Ino:  e.Ino,
			Off:  e.Off,
		})
	})
	return status(&logger, err)
}

func (r *FuseRaw) ReadDirPlus(cancel <-chan struct{}, input *fuse.ReadIn, out *fuse.DirEntryList) fuse.Status {
	logger := util.GetLogger("Fuse.ReadDirPlus")
	logger.Trace().Uint64("ino", input.NodeId).Uint64("offset", input.Offset).Msg("ReadDirPlus called")

	err := r.fs.ReadDir(input.NodeId, input.Offset, func(e filesystem.DirEntry) bool {
		entry := out.AddDirLookupEntry(fuse.DirEntry{
			Mode: kindMode(e.Attr.Kind),
			Name: e.Name,
			Ino:  e.Ino,
			Off:  e.Off,
		})
		if entry == nil {
			return false
		}
		r.fillEntry(e.Attr, entry)
		return true
	})
	return status(&logger, err)
}

func (r *FuseRaw) ReleaseDir(input *fuse.ReleaseIn) {}

func (r *FuseRaw) StatFs(cancel <-chan struct{}, input *fuse.InHeader, out *fuse.StatfsOut) fuse.Status {
	st := r.fs.StatFs()
	out.Bsize = st.Bsize
	out.Frsize = st.Bsize
	out.Blocks = (st.Bytes + uint64(st.Bsize) - 1) / uint64(st.Bsize)
	out.Files = st.Files
	out.NameLen = st.NameLen
	return fuse.OK
}
