package requests

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brettbedarf/riddlefs"
	"github.com/brettbedarf/riddlefs/config"
	"github.com/brettbedarf/riddlefs/filesystem"
	"github.com/brettbedarf/riddlefs/internal/mocks"
	"github.com/brettbedarf/riddlefs/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
- name: Welcome
  type: trigger
  content: hello
  reveal:
    - name: Welcome?
      type: text
      content: you found it
- path: Bathroom/Toilet
  name: Plunger
  type: buffer
  content: ab
  size: 4
- name: _box
  type: dir
  sandbox: true
  perm: 0o700
- name: shortcut
  type: link
  target: Bathroom
- name: Crowd
  type: counter
  threshold: 2
  content: lonely
  unlocked: party
  reveal:
    - path: Party
      name: Cake
      type: text
      content: lie
`

func newBuiltinRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

func seedFS(t *testing.T) (*filesystem.FileSystem, *filesystem.Scheduler) {
	t.Helper()

	defs, err := UnmarshalDefs([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, defs, 5)

	fs := filesystem.NewFS(config.NewDefaultConfig())
	sched := filesystem.NewScheduler(fs, 2)
	t.Cleanup(sched.Close)

	n, err := newBuiltinRegistry().Apply(defs, sched)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	sched.Wait()
	return fs, sched
}

func lookup(fs *filesystem.FileSystem, names ...string) (riddlefs.Attr, error) {
	ino := uint64(filesystem.RootIno)
	var attr riddlefs.Attr
	for _, name := range names {
		var err error
		attr, err = fs.Lookup(ino, name)
		if err != nil {
			return attr, err
		}
		ino = attr.Ino
	}
	return attr, nil
}

func TestApply_Seed(t *testing.T) {
	t.Parallel()

	fs, _ := seedFS(t)

	t.Run("buffer", func(t *testing.T) {
		attr, err := lookup(fs, "Bathroom", "Toilet", "Plunger")
		require.NoError(t, err)
		assert.Equal(t, uint64(4), attr.Size)

		data, err := fs.Read(attr.Ino, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, []byte{'a', 'b', 0, 0}, data)
	})

	t.Run("dir", func(t *testing.T) {
		attr, err := lookup(fs, "_box")
		require.NoError(t, err)
		assert.Equal(t, riddlefs.KindDir, attr.Kind)
		assert.Equal(t, uint32(0o700), attr.Perm)
	})

	t.Run("link", func(t *testing.T) {
		attr, err := lookup(fs, "shortcut")
		require.NoError(t, err)
		target, err := fs.Readlink(attr.Ino)
		require.NoError(t, err)
		assert.Equal(t, "Bathroom", target)
	})
}

func TestApply_TriggerReveals(t *testing.T) {
	t.Parallel()

	fs, _ := seedFS(t)

	_, err := lookup(fs, "Welcome?")
	require.ErrorIs(t, err, riddlefs.ErrNotFound)

	attr, err := lookup(fs, "Welcome")
	require.NoError(t, err)
	data, err := fs.Read(attr.Ino, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	assert.Eventually(t, func() bool {
		_, err := lookup(fs, "Welcome?")
		return err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestApply_CounterReveals(t *testing.T) {
	t.Parallel()

	fs, _ := seedFS(t)

	attr, err := lookup(fs, "Crowd")
	require.NoError(t, err)

	data, err := fs.Read(attr.Ino, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, "lonely", string(data))

	for range 2 {
		_, err := fs.Open(attr.Ino)
		require.NoError(t, err)
	}
	data, err = fs.Read(attr.Ino, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, "party", string(data))

	assert.Eventually(t, func() bool {
		_, err := lookup(fs, "Party", "Cake")
		return err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestBuiltins_Validation(t *testing.T) {
	t.Parallel()

	r := newBuiltinRegistry()
	reveal := []NodeRequestDTO{{Name: "x", Type: TextNodeType}}
	size := uint64(1)
	huge := uint64(1 << 62)

	tests := []struct {
		desc string
		dto  NodeRequestDTO
	}{
		{"counter without threshold", NodeRequestDTO{Name: "c", Type: CounterNodeType}},
		{"link without target", NodeRequestDTO{Name: "l", Type: LinkNodeType}},
		{"buffer smaller than content", NodeRequestDTO{Name: "b", Type: BufferNodeType, Content: "abc", Size: &size}},
		{"buffer larger than the cap", NodeRequestDTO{Name: "b", Type: BufferNodeType, Size: &huge}},
		{"text cannot reveal", NodeRequestDTO{Name: "t", Type: TextNodeType, Reveal: reveal}},
		{"dir cannot reveal", NodeRequestDTO{Name: "d", Type: DirNodeType, Reveal: reveal}},
		{"unknown type", NodeRequestDTO{Name: "u", Type: "socket"}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := r.Build(&tt.dto, &mocks.MockMutator{})
			assert.Error(t, err)
		})
	}
}

func TestBuiltins_Owner(t *testing.T) {
	t.Parallel()

	uid := uint32(4242)
	node, err := newBuiltinRegistry().Build(
		&NodeRequestDTO{Name: "t", Type: TextNodeType, OwnerUID: &uid},
		&mocks.MockMutator{},
	)
	require.NoError(t, err)

	attr := node.Attr()
	assert.Equal(t, uid, attr.Uid)
	assert.Equal(t, nodes.ProcessOwner().Gid, attr.Gid)
	assert.Equal(t, uint32(nodes.DefaultPerm), attr.Perm)
}

func TestRegisterBuiltins_Subset(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	RegisterBuiltins(r, TextNodeType)

	_, err := r.GetFactory(TextNodeType)
	assert.NoError(t, err)
	_, err = r.GetFactory(DirNodeType)
	assert.Error(t, err)
}

func TestLoadDefsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "nodes.json")
		data := `[{"path": "a/b", "name": "f", "type": "text", "content": "hi", "perm": 420}]`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		defs, err := LoadDefsFile(path)
		require.NoError(t, err)
		require.Len(t, defs, 1)
		assert.Equal(t, "a/b", defs[0].Path)
		assert.Equal(t, TextNodeType, defs[0].Type)
		require.NotNil(t, defs[0].Perm)
		assert.Equal(t, uint32(0o644), *defs[0].Perm)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "nodes.yml")
		require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

		defs, err := LoadDefsFile(path)
		require.NoError(t, err)
		require.Len(t, defs, 5)
		assert.Len(t, defs[0].Reveal, 1)
		assert.Equal(t, 2, defs[4].Threshold)
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := filepath.Join(dir, "nodes.toml")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		_, err := LoadDefsFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDefsFile(filepath.Join(dir, "absent.yaml"))
		assert.Error(t, err)
	})
}
