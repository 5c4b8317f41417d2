package core

import (
	"syscall"

	"github.com/brettbedarf/riddlefs"
)

type SysAttrType uint32

const (
	DirAttr     SysAttrType = syscall.S_IFDIR
	FileAttr    SysAttrType = syscall.S_IFREG
	SymlinkAttr SysAttrType = syscall.S_IFLNK
)

// kindMode returns the S_IF* file type bits for kind
func kindMode(kind riddlefs.Kind) uint32 {
	switch kind {
	case riddlefs.KindDir:
		return uint32(DirAttr)
	case riddlefs.KindLink:
		return uint32(SymlinkAttr)
	default:
		return uint32(FileAttr)
	}
}

// requestPerm extracts the permission bits from a create request's mode
func requestPerm(mode, umask uint32) uint32 {
	return mode & riddlefs.PermMask &^ umask
}
