// Package riddlefs contains the core domain types and capability contracts for
// the riddlefs filesystem. Content modules implement these contracts and hand
// the nodes to a [Mutator]; the filesystem engine does the rest.
package riddlefs

// Node is the capability set shared by every node variant.
//
// The engine only ever calls node methods while holding its table lock, so
// implementations need no locking of their own. They must not block and must
// not call back into the engine synchronously; a [Mutator] is safe to call
// since it defers the work.
type Node interface {
	// Name returns the node's display name (last path component)
	Name() string

	// Attr returns a snapshot of the node's attributes
	Attr() Attr

	// SetAttr applies an attribute update
	SetAttr(req SetAttrRequest) error

	// Rename changes the node's name. inSandbox reports whether the
	// destination directory is a sandbox; see [CanCreate].
	Rename(newName string, inSandbox bool) error

	// Delete is asked before the node is dropped by an unlink or rmdir.
	// Returning an error keeps the node linked.
	Delete() error
}

// Directory is implemented by nodes that own an ordered list of child inos
type Directory interface {
	Node

	// IsSandbox reports whether unrestricted creation is allowed inside
	IsSandbox() bool

	// AddChild appends a child ino; insertion order is listing order
	AddChild(ino uint64) error

	// InsertChild links a child ino at the zero-based index, shifting later
	// children. Indexes past the end append.
	InsertChild(index int, ino uint64) error

	// RemoveChild unlinks a child ino. Removing a non-member is not an error.
	RemoveChild(ino uint64) error

	// Child returns the child at the zero-based index or false past the end
	Child(index int) (uint64, bool)

	// LookupChild resolves a child by name using names to get each child's
	// current name. Returns [ErrNotFound] if no child matches.
	LookupChild(name string, names Namer) (uint64, error)
}

// RegularFile is implemented by nodes holding byte content
type RegularFile interface {
	Node

	// Read returns up to size bytes starting at offset. Out-of-range reads
	// return an empty result, never an error.
	// The returned slice may alias internal state and is copied by the engine.
	Read(offset int64, size int) ([]byte, error)

	// Write writes data at offset and returns the number of bytes written
	Write(offset int64, data []byte) (int, error)
}

// Link is the degenerate, effectively immutable variant. It only exists for
// rename and identity purposes.
type Link interface {
	Node

	// Target returns the path the link points to
	Target() string
}
