package filesystem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/internal/util"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

var errRemoveRoot = fmt.Errorf("cannot remove the root: %w", riddlefs.ErrNotSupported)

// Scheduler runs tree mutations in the background. Insert and Remove return
// immediately; each becomes a task that locks the table once. Task failures
// are logged and never reported to the caller.
type Scheduler struct {
	fs  *FileSystem
	sem *semaphore.Weighted

	mu     sync.Mutex // Protects closed and wg.Add
	closed bool
	wg     sync.WaitGroup
}

var _ riddlefs.Mutator = (*Scheduler)(nil)

// NewScheduler creates a scheduler running at most workers tasks at once
func NewScheduler(fs *FileSystem, workers int) *Scheduler {
	return &Scheduler{
		fs:  fs,
		sem: semaphore.NewWeighted(int64(max(workers, 1))),
	}
}

// Insert links node under dirPath, creating missing directories on the way
func (s *Scheduler) Insert(dirPath string, node riddlefs.Node) {
	s.spawn("Scheduler.Insert", dirPath, func(ctx *TableContext) error {
		parent, err := s.walk(ctx, pathComponents(dirPath), true)
		if err != nil {
			return err
		}
		_, err = ctx.RegisterChild(parent, node)
		return err
	})
}

// Remove unlinks the node at path and drops it and its descendants from the
// table. The node's Delete hook is not consulted.
func (s *Scheduler) Remove(path string) {
	s.spawn("Scheduler.Remove", path, func(ctx *TableContext) error {
		comps := pathComponents(path)
		if len(comps) == 0 {
			return errRemoveRoot
		}
		parent, err := s.walk(ctx, comps[:len(comps)-1], false)
		if err != nil {
			return err
		}
		dir, err := ctx.Dir(parent)
		if err != nil {
			return err
		}
		child, err := dir.LookupChild(comps[len(comps)-1], ctx)
		if err != nil {
			return err
		}
		if err := dir.RemoveChild(child); err != nil {
			return err
		}
		ctx.ForgetTree(child)
		return nil
	})
}

// Wait blocks until every task spawned so far has finished
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// Close stops accepting new tasks and waits for the running ones
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) spawn(op, path string, task func(ctx *TableContext) error) {
	id := uuid.New()
	logger := util.GetLogger(op).With().
		Str("task", id.String()).
		Str("path", path).
		Logger()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		logger.Warn().Msg("Scheduler closed; dropping task")
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := s.sem.Acquire(context.Background(), 1); err != nil {
			logger.Error().Err(err).Msg("Failed to acquire worker")
			return
		}
		defer s.sem.Release(1)

		ctx := s.fs.table.Lock()
		err := task(ctx)
		ctx.Close()

		if err != nil {
			logger.Warn().Err(err).Msg("Task failed")
			return
		}
		logger.Debug().Msg("Task done")
	}()
}

// walk descends from the root through comps and returns the ino of the last
// directory. With create set, missing components become default directories;
// otherwise they fail the walk.
func (s *Scheduler) walk(ctx *TableContext, comps []string, create bool) (uint64, error) {
	cur := uint64(RootIno)
	for _, name := range comps {
		child, err := ctx.ResolveChild(cur, name)
		switch {
		case err == nil:
			if _, err := ctx.Dir(child); err != nil {
				return 0, fmt.Errorf("%q is not a directory: %w", name, err)
			}
		case create && errors.Is(err, riddlefs.ErrNotFound):
			child, err = ctx.RegisterChild(cur, s.fs.newDefaultDir(name))
			if err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("resolve %q: %w", name, err)
		}
		cur = child
	}
	return cur, nil
}

// pathComponents splits p into its normal components, dropping empty, "."
// and ".." elements
func pathComponents(p string) []string {
	var comps []string
	for _, c := range strings.Split(p, "/") {
		if c == "" || c == "." || c == ".." {
			continue
		}
		comps = append(comps, c)
	}
	return comps
}
