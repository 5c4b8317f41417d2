package filesystem

import (
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/config"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var caller = riddlefs.Owner{Uid: 1000, Gid: 1000}

func createTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Workers = 4
	return cfg
}

// newTestFS returns a filesystem on a fake clock plus a scheduler that is
// closed when the test ends
func newTestFS(t *testing.T) (*FileSystem, *Scheduler, *fakeclock.FakeClock) {
	t.Helper()
	clk := fakeclock.NewFakeClock(testEpoch)
	fs := NewFS(createTestConfig(), WithClock(clk))
	sched := NewScheduler(fs, fs.Config().Workers)
	t.Cleanup(sched.Close)
	return fs, sched, clk
}

// lookupPath resolves a slash separated path from the root
func lookupPath(t *testing.T, fs *FileSystem, p string) riddlefs.Attr {
	t.Helper()
	attr, err := fs.GetAttr(RootIno)
	require.NoError(t, err)
	for _, name := range pathComponents(p) {
		attr, err = fs.Lookup(attr.Ino, name)
		require.NoError(t, err, "lookup %q in %q", name, p)
	}
	return attr
}

// listNames returns the names in ino in listing order
func listNames(t *testing.T, fs *FileSystem, ino uint64) []string {
	t.Helper()
	var names []string
	err := fs.ReadDir(ino, 0, func(e DirEntry) bool {
		names = append(names, e.Name)
		return true
	})
	require.NoError(t, err)
	return names
}

// danglingChildren returns every child ino linked from a live directory but
// missing from the table. Safe to call from any goroutine.
func danglingChildren(fs *FileSystem) []uint64 {
	ctx := fs.table.Lock()
	defer ctx.Close()

	var dangling []uint64
	for _, e := range fs.table.entries {
		dir, ok := e.dir()
		if !ok {
			continue
		}
		for i := 0; ; i++ {
			child, ok := dir.Child(i)
			if !ok {
				break
			}
			if _, live := fs.table.entries[child]; !live {
				dangling = append(dangling, child)
			}
		}
	}
	return dangling
}

// requireReachable checks that every child of every live directory is itself
// live in the table
func requireReachable(t *testing.T, fs *FileSystem) {
	t.Helper()
	require.Empty(t, danglingChildren(fs), "dangling child inos")
}
