package riddlefs

import (
	"strings"
	"time"
)

// DefaultBlksize is the preferred I/O size reported for every node
const DefaultBlksize = 4096

// SandboxEscape is the leading name character that allows creating or
// renaming into a non-sandbox directory
const SandboxEscape = '_'

// Kind tags the three node variants the inode table can hold
type Kind uint8

const (
	KindDir Kind = iota + 1
	KindFile
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindFile:
		return "file"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// Attr is the protocol-independent attribute record of a node.
// It is translated to the FUSE wire format by the protocol adapter.
type Attr struct {
	// Ino is stamped by the inode table when attributes are reported;
	// nodes may leave it zero
	Ino     uint64
	Kind    Kind
	Size    uint64
	Perm    uint32 // Permission bits i.e. 0755, including setuid/setgid/sticky
	Nlink   uint32
	Uid     uint32
	Gid     uint32
	Flags   uint32
	Atime   time.Time // Last accessed at
	Mtime   time.Time // Last modified at
	Ctime   time.Time // Last status change at
	Blksize uint32
}

// NewAttr returns the attributes of a freshly created node with all timestamps set to now
func NewAttr(kind Kind, perm, uid, gid uint32, now time.Time) Attr {
	return Attr{
		Kind:    kind,
		Perm:    perm & PermMask,
		Nlink:   1,
		Uid:     uid,
		Gid:     gid,
		Atime:   now,
		Mtime:   now,
		Ctime:   now,
		Blksize: DefaultBlksize,
	}
}

// PermMask selects the permission bits of a mode, dropping the file type
const PermMask = 0o7777

// Apply copies the mode/owner/flags fields set in req onto the attributes and
// bumps Ctime if anything changed. Size is left to the caller since only the
// node knows how to back it.
func (a *Attr) Apply(req SetAttrRequest, now time.Time) {
	changed := false
	if req.Mode != nil {
		a.Perm = *req.Mode & PermMask
		changed = true
	}
	if req.Uid != nil {
		a.Uid = *req.Uid
		changed = true
	}
	if req.Gid != nil {
		a.Gid = *req.Gid
		changed = true
	}
	if req.Flags != nil {
		a.Flags = *req.Flags
		changed = true
	}
	if changed {
		a.Ctime = now
	}
}

// IsEscaped reports whether name starts with [SandboxEscape]
func IsEscaped(name string) bool {
	return strings.HasPrefix(name, string(SandboxEscape))
}

// CanCreate implements the sandbox convention: a name may be created in (or
// renamed into) a directory iff that directory is a sandbox or the name starts
// with [SandboxEscape].
func CanCreate(sandbox bool, name string) bool {
	return sandbox || IsEscaped(name)
}
