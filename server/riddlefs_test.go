package server

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/config"
	"github.com/brettbedarf/riddlefs/filesystem"
	"github.com/brettbedarf/riddlefs/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.AllowOther = false
	cfg.AutoUnmount = false
	cfg.Workers = 2
	return cfg
}

func TestRiddleFs_Mutator(t *testing.T) {
	t.Parallel()

	fs := New(createTestConfig())
	t.Cleanup(func() { assert.NoError(t, fs.Close()) })

	fs.Insert("Bathroom/Toilet", nodes.NewBufferFile("Plunger", []byte("x")))
	fs.Settle()

	dir, err := fs.Lookup(filesystem.RootIno, "Bathroom")
	require.NoError(t, err)
	assert.Equal(t, riddlefs.KindDir, dir.Kind)

	fs.Remove("Bathroom")
	fs.Settle()

	_, err = fs.Lookup(filesystem.RootIno, "Bathroom")
	assert.ErrorIs(t, err, riddlefs.ErrNotFound)
}

func TestRiddleFs_UnmountWithoutMount(t *testing.T) {
	t.Parallel()

	fs := New(createTestConfig())
	assert.NoError(t, fs.Unmount())
	fs.Wait()
	assert.NoError(t, fs.Close())
}

// mount serves a fresh filesystem in a temp dir. Skips when FUSE is not
// available in the environment.
func mount(t *testing.T) (*RiddleFs, string) {
	t.Helper()

	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("FUSE is not available")
	}

	mnt := t.TempDir()
	fs := New(createTestConfig())
	if err := fs.Serve(mnt); err != nil {
		fs.Close() // nolint:errcheck
		t.Skipf("cannot mount: %v", err)
	}
	t.Cleanup(func() {
		assert.NoError(t, fs.Close())
	})
	return fs, mnt
}

func TestMount_ReadSeeded(t *testing.T) {
	fs, mnt := mount(t)

	fs.Insert("docs", nodes.NewTextFile("readme", "hello from the tree"))
	fs.Settle()

	data, err := os.ReadFile(filepath.Join(mnt, "docs", "readme"))
	require.NoError(t, err)
	assert.Equal(t, "hello from the tree", string(data))

	err = os.WriteFile(filepath.Join(mnt, "docs", "readme"), []byte("nope"), 0o644)
	assert.True(t, errors.Is(err, syscall.EACCES), "got %v", err)
}

func TestMount_SandboxConvention(t *testing.T) {
	_, mnt := mount(t)

	err := os.Mkdir(filepath.Join(mnt, "plain"), 0o755)
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.EACCES), "got %v", err)

	box := filepath.Join(mnt, "_box")
	require.NoError(t, os.Mkdir(box, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(box, "notes"), []byte("anything goes"), 0o644))

	data, err := os.ReadFile(filepath.Join(box, "notes"))
	require.NoError(t, err)
	assert.Equal(t, "anything goes", string(data))

	entries, err := os.ReadDir(box)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "notes", entries[0].Name())

	require.NoError(t, os.Rename(filepath.Join(box, "notes"), filepath.Join(box, "moved")))
	require.NoError(t, os.Remove(filepath.Join(box, "moved")))
	require.NoError(t, os.Remove(box))
}

func TestMount_TriggerReveals(t *testing.T) {
	fs, mnt := mount(t)

	fs.Insert("", nodes.NewTriggerFile("Welcome", []byte("hi"), func() {
		fs.Insert("", nodes.NewTextFile("Welcome?", "you found it"))
	}))
	fs.Settle()

	_, err := os.Stat(filepath.Join(mnt, "Welcome?"))
	require.True(t, os.IsNotExist(err))

	_, err = os.ReadFile(filepath.Join(mnt, "Welcome"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(mnt, "Welcome?"))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}
