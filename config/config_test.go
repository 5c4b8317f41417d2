package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/brettbedarf/riddlefs/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with all default values
// when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil)

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values when no config provided")
}

func TestNewConfig_WithAllOverride(t *testing.T) {
	t.Parallel()

	override := createOverride()
	override.LogLvl = util.Pointer(TraceVerbose)
	cfg := NewConfig(override)

	expCfg := &Config{
		MountOptions: MountOptions{
			FsName:      "test_fs",
			Name:        "test_name",
			Debug:       true,
			AllowOther:  !DefaultAllowOther,
			AutoUnmount: !DefaultAutoUnmount,
			Exec:        !DefaultExec,
			NoAtime:     !DefaultNoAtime,
		},
		LogLvl:       util.TraceLevel,
		Workers:      *override.Workers,
		DirPerm:      *override.DirPerm,
		MaxFH:        *override.MaxFH,
		MaxFileSize:  *override.MaxFileSize,
		MaxWrite:     *override.MaxWrite,
		AttrTimeout:  *override.AttrTimeout,
		EntryTimeout: *override.EntryTimeout,
		DirectIO:     *override.DirectIO,
	}
	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields")
}

func TestConfig_Merge_LogLvlConversion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		verboseValue  int
		expectedLevel util.LogLevel
	}{
		{"verbose_1_error", 1, util.ErrorLevel},
		{"verbose_2_warn", 2, util.WarnLevel},
		{"verbose_3_info", 3, util.InfoLevel},
		{"verbose_4_debug", 4, util.DebugLevel},
		{"verbose_5_trace", 5, util.TraceLevel},
		{"verbose_0_clamped_to_1", 0, util.ErrorLevel},
		{"verbose_100_clamped_to_5", 100, util.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			override := &ConfigOverride{
				LogLvl: &tt.verboseValue,
			}

			cfg := NewConfig(override)

			assert.Equal(t, tt.expectedLevel, cfg.LogLvl,
				"CLI verbose %d should map to util.LogLevel %v", tt.verboseValue, tt.expectedLevel)
		})
	}
}

func TestConfig_Merge_NilOverrideVals(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(&ConfigOverride{})

	require.NotNil(t, cfg)
	assert.Equal(t, createDefaultCfg(), cfg, "must use default values for nil override fields")
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		FsName:  util.Pointer("test_fs"),
		Workers: util.Pointer(DefaultWorkers + 1),
	}
	cfg := NewConfig(override)

	expCfg := createDefaultCfg()
	expCfg.FsName = "test_fs"
	expCfg.Workers = DefaultWorkers + 1

	require.NotNil(t, cfg)
	assert.Equal(t, expCfg, cfg, "must override all provided fields and leave rest default")
}

func TestConfig_Merge_WorkersFloor(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(&ConfigOverride{Workers: util.Pointer(0)})
	assert.Equal(t, 1, cfg.Workers, "the scheduler needs at least one permit")
}

func TestLoadConfigOverrideFile_Valid(t *testing.T) {
	t.Parallel()

	type tc struct {
		ext   string
		build func() (*ConfigOverride, []byte)
	}

	cases := []tc{
		{
			ext: ".yaml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".yml",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := yaml.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
		{
			ext: ".json",
			build: func() (*ConfigOverride, []byte) {
				o := createOverride()
				b, err := json.Marshal(o)
				require.NoError(t, err)
				return o, b
			},
		},
	}

	for _, c := range cases {
		name := "valid" + c.ext
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			override, data := c.build()
			dir := t.TempDir()
			path := filepath.Join(dir, "override"+c.ext)
			require.NoError(t, os.WriteFile(path, data, 0o600))

			loaded, err := LoadConfigOverrideFile(path)

			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, *override, *loaded)
		})
	}
}

func TestLoadConfigOverrideFile_HandWritten(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "riddlefs.yaml")
	data := "verbosity: 4\nworkers: 2\nallow_other: false\nfs_name: puzzles\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := NewConfigFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, util.DebugLevel, cfg.LogLvl)
	assert.Equal(t, 2, cfg.Workers)
	assert.False(t, cfg.AllowOther)
	assert.Equal(t, "puzzles", cfg.FsName)
	assert.Equal(t, DefaultName, cfg.Name)
	assert.True(t, cfg.NoAtime)
}

// TestLoadConfigOverrideFile_NonExistentFile tests error handling
// when trying to load a file that doesn't exist.
func TestLoadConfigOverrideFile_NonExistentFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "does_not_exist.yaml")

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err), "expected not exist error, got %v", err)
}

// TestLoadConfigOverrideFile_UnsupportedExtension tests error handling
// for file extensions that aren't supported (.txt, .xml, etc).
func TestLoadConfigOverrideFile_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "override.txt")
	require.NoError(t, os.WriteFile(path, []byte("workers: 1"), 0o600))

	_, err := LoadConfigOverrideFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config file extension")
}

func TestNewConfigFromFile_FileError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := NewConfigFromFile(path)
	require.Error(t, err)
}

func createDefaultCfg() *Config {
	return &Config{
		MountOptions: MountOptions{
			FsName:      DefaultFsName,
			Name:        DefaultName,
			AllowOther:  DefaultAllowOther,
			AutoUnmount: DefaultAutoUnmount,
			Exec:        DefaultExec,
			NoAtime:     DefaultNoAtime,
		},
		LogLvl:       DefaultLogLvl,
		Workers:      DefaultWorkers,
		DirPerm:      DefaultDirPerm,
		MaxFH:        DefaultMaxFH,
		MaxFileSize:  DefaultMaxFileSize,
		MaxWrite:     DefaultMaxWrite,
		AttrTimeout:  DefaultAttrTimeout,
		EntryTimeout: DefaultEntryTimeout,
		DirectIO:     DefaultDirectIO,
	}
}

// createOverride makes a ConfigOverride with all non-default values
func createOverride() *ConfigOverride {
	testLogVerbose := TraceVerbose
	if DefaultLogLvl == util.TraceLevel {
		testLogVerbose = DebugVerbose
	}
	return &ConfigOverride{
		Workers:      util.Pointer(DefaultWorkers + 1),
		DirPerm:      util.Pointer(uint32(0o755)),
		MaxFH:        util.Pointer(1),
		MaxFileSize:  util.Pointer(int64(DefaultMaxFileSize / 2)),
		MaxWrite:     util.Pointer(DefaultMaxWrite + 1),
		AttrTimeout:  util.Pointer(float64(DefaultAttrTimeout + 1)),
		EntryTimeout: util.Pointer(float64(DefaultEntryTimeout + 1)),
		DirectIO:     util.Pointer(!DefaultDirectIO),
		LogLvl:       util.Pointer(testLogVerbose),
		FsName:       util.Pointer("test_fs"),
		Name:         util.Pointer("test_name"),
		Debug:        util.Pointer(true),
		AllowOther:   util.Pointer(!DefaultAllowOther),
		AutoUnmount:  util.Pointer(!DefaultAutoUnmount),
		Exec:         util.Pointer(!DefaultExec),
		NoAtime:      util.Pointer(!DefaultNoAtime),
	}
}
