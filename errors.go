package riddlefs

import (
	"errors"
	"syscall"
)

// Error taxonomy shared by every node and filesystem operation. Each value is
// the errno reported to the kernel for that failure.
var (
	// ErrNotFound is returned when a child or path element does not exist
	ErrNotFound = syscall.ENOENT
	// ErrNotSupported is returned when an operation is not meaningful for the node kind
	ErrNotSupported = syscall.ENOTSUP
	// ErrPermissionDenied is returned on sandbox convention violations
	ErrPermissionDenied = syscall.EACCES
	// ErrNotEmpty is returned when deleting a directory that still has children
	ErrNotEmpty = syscall.ENOTEMPTY
)

// Errno folds err into the error taxonomy. The second return value is false
// when err is not one of the four taxonomy errors, in which case ENOTSUP is
// returned so the kernel still gets a well-defined answer.
// A nil err maps to 0.
func Errno(err error) (syscall.Errno, bool) {
	if err == nil {
		return 0, true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case ErrNotFound, ErrNotSupported, ErrPermissionDenied, ErrNotEmpty:
			return errno, true
		}
	}
	return ErrNotSupported, false
}
