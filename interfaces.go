package riddlefs

// Mutator is the module-facing API for growing and shrinking the tree.
// Both methods return immediately; the mutation happens in the background and
// failures are never reported back to the caller.
type Mutator interface {
	// Insert links node under the directory at dirPath, creating any missing
	// directories along the way. An empty dirPath is the root.
	Insert(dirPath string, node Node)

	// Remove unlinks and drops the node at path along with any descendants
	Remove(path string)
}

// Namer resolves the current name of a live ino
type Namer interface {
	NameOf(ino uint64) (string, bool)
}

// Opener is optionally implemented by nodes that react to being opened
type Opener interface {
	Open() error
}

// Releaser is optionally implemented by nodes that react to the last close of
// a handle returned from open
type Releaser interface {
	Release() error
}
