package core

import (
	"time"

	"github.com/brettbedarf/riddlefs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// fillAttr translates a node's attributes to the wire format
func fillAttr(a riddlefs.Attr, out *fuse.Attr) {
	out.Ino = a.Ino
	out.Size = a.Size
	out.Blocks = (a.Size + 511) / 512
	out.Mode = kindMode(a.Kind) | a.Perm
	out.Nlink = a.Nlink
	out.Uid = a.Uid
	out.Gid = a.Gid
	out.Blksize = a.Blksize
	out.SetTimes(&a.Atime, &a.Mtime, &a.Ctime)
}

// setAttrRequest collects the fields the kernel asked to change. Times are
// not settable and are ignored.
func setAttrRequest(in *fuse.SetAttrIn) riddlefs.SetAttrRequest {
	var req riddlefs.SetAttrRequest
	if mode, ok := in.GetMode(); ok {
		req.Mode = &mode
	}
	if uid, ok := in.GetUID(); ok {
		req.Uid = &uid
	}
	if gid, ok := in.GetGID(); ok {
		req.Gid = &gid
	}
	if size, ok := in.GetSize(); ok {
		req.Size = &size
	}
	return req
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
