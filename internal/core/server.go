package core

import (
	"github.com/brettbedarf/riddlefs/config"
	"github.com/brettbedarf/riddlefs/internal/util"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// Server wraps the underlying fuse.Server.
type Server struct {
	server *fuse.Server
}

// NewMountOptions translates the mount configuration to go-fuse options.
// go-fuse debug output is routed through the logger at debug level.
func NewMountOptions(cfg *config.Config) *fuse.MountOptions {
	opts := cfg.MountOptions
	fuseOpts := &fuse.MountOptions{
		AllowOther: opts.AllowOther,
		FsName:     opts.FsName,
		Name:       opts.Name,
		Debug:      opts.Debug || cfg.LogLvl == util.TraceLevel,
		Logger:     util.NewLogLogger("Fuse.Server", util.DebugLevel),
		MaxWrite:   cfg.MaxWrite,
	}
	if opts.AutoUnmount {
		fuseOpts.Options = append(fuseOpts.Options, "auto_unmount")
	}
	if opts.Exec {
		fuseOpts.Options = append(fuseOpts.Options, "exec")
	} else {
		fuseOpts.Options = append(fuseOpts.Options, "noexec")
	}
	if opts.NoAtime {
		fuseOpts.Options = append(fuseOpts.Options, "noatime")
	}
	return fuseOpts
}

// Mount mounts raw at mountPoint according to cfg.
// Returns a Server you can Serve() and Unmount().
func Mount(raw *FuseRaw, mountPoint string, cfg *config.Config) (*Server, error) {
	srv, err := fuse.NewServer(raw, mountPoint, NewMountOptions(cfg))
	if err != nil {
		return nil, err
	}
	return &Server{server: srv}, nil
}

// Serve starts serving and waits until the filesystem is mounted.
func (s *Server) Serve() error {
	go s.server.Serve()
	return s.server.WaitMount()
}

// Wait blocks until the filesystem is unmounted
func (s *Server) Wait() {
	s.server.Wait()
}

// Unmount cleanly unmounts the filesystem.
func (s *Server) Unmount() error {
	return s.server.Unmount()
}
