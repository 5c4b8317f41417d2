package server

import (
	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/config"
	"github.com/brettbedarf/riddlefs/filesystem"
	"github.com/brettbedarf/riddlefs/internal/core"
	"github.com/brettbedarf/riddlefs/internal/util"
)

// RiddleFs contains the core filesystem state and operations with abstractions
// over the underlying FUSE wire protocol implementation.
// Content modules mutate the tree through its [riddlefs.Mutator] methods.
type RiddleFs struct {
	*filesystem.FileSystem
	sched  *filesystem.Scheduler
	cfg    *config.Config
	server *core.Server
}

var _ riddlefs.Mutator = (*RiddleFs)(nil)

// New creates a RiddleFs instance given your config.
func New(cfg *config.Config, opts ...filesystem.Option) *RiddleFs {
	fs := filesystem.NewFS(cfg, opts...)
	return &RiddleFs{
		FileSystem: fs,
		sched:      filesystem.NewScheduler(fs, cfg.Workers),
		cfg:        cfg,
	}
}

// Insert schedules node to be linked under dirPath
func (fs *RiddleFs) Insert(dirPath string, node riddlefs.Node) {
	fs.sched.Insert(dirPath, node)
}

// Remove schedules the node at path to be unlinked
func (fs *RiddleFs) Remove(path string) {
	fs.sched.Remove(path)
}

// Settle blocks until every scheduled mutation has been applied
func (fs *RiddleFs) Settle() {
	fs.sched.Wait()
}

// Serve mounts and serves the filesystem at the given mountPoint.
func (fs *RiddleFs) Serve(mountPoint string) error {
	logger := util.GetLogger("Server.Serve")

	srv, err := core.Mount(core.NewFuseRaw(fs.FileSystem), mountPoint, fs.cfg)
	if err != nil {
		return err
	}
	fs.server = srv
	logger.Debug().Str("mountpoint", mountPoint).Msg("FUSE server created")

	return srv.Serve()
}

func (fs *RiddleFs) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- fs.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the filesystem is unmounted. Returns immediately if it
// was never mounted.
func (fs *RiddleFs) Wait() {
	if fs.server == nil {
		return
	}
	fs.server.Wait()
}

// Unmount cleanly unmounts the filesystem.
func (fs *RiddleFs) Unmount() error {
	if fs.server == nil {
		return nil
	}
	return fs.server.Unmount()
}

// Close stops accepting mutations, waits for the ones in flight and
// unmounts the filesystem.
func (fs *RiddleFs) Close() error {
	fs.sched.Close()
	return fs.Unmount()
}
