package filesystem

import (
	"code.cloudfoundry.org/clock"
	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/config"
	"github.com/brettbedarf/riddlefs/nodes"
)

// FileSystem is the operation dispatcher. Every method takes the table lock
// once for its whole duration.
type FileSystem struct {
	cfg     *config.Config
	table   *Table
	handles *Handles
	clock   clock.Clock
}

// Option customizes a FileSystem
type Option func(*FileSystem)

// WithClock sets the clock used to stamp nodes the filesystem creates
func WithClock(clk clock.Clock) Option {
	return func(fs *FileSystem) { fs.clock = clk }
}

// NewFS creates a filesystem holding only the root directory
func NewFS(cfg *config.Config, opts ...Option) *FileSystem {
	fs := &FileSystem{
		cfg:     cfg,
		handles: NewHandles(cfg.MaxFH),
		clock:   clock.NewClock(),
	}
	for _, opt := range opts {
		opt(fs)
	}
	root := nodes.NewDir("root", nodes.WithPerm(cfg.DirPerm), nodes.WithClock(fs.clock))
	fs.table = NewTable(root)
	return fs
}

// Table exposes the inode table backing the filesystem
func (fs *FileSystem) Table() *Table {
	return fs.table
}

// Handles exposes the open file handle registry
func (fs *FileSystem) Handles() *Handles {
	return fs.handles
}

func (fs *FileSystem) Config() *config.Config {
	return fs.cfg
}

func (fs *FileSystem) newDefaultDir(name string) riddlefs.Directory {
	return nodes.NewDefaultDir(name, nodes.WithClock(fs.clock))
}
