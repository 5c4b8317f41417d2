package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/riddlefs/internal/util"
	"gopkg.in/yaml.v3"
)

// Config contains runtime configuration values for the filesystem.
type Config struct {
	MountOptions
	LogLvl  util.LogLevel
	Workers int    // Number of background mutation tasks running at once (Default 8)
	DirPerm uint32 // Permission bits of the root directory (Default 0777)
	// NOTE: Low-level FUSE config (strongly recommend defaults unless you really know what you're doing):

	MaxFH        int     // Maximum file handle value for FUSE compatibility (Default 2147483647)
	MaxFileSize  int64   // Largest size a file created through mknod may grow to (Default 1GB)
	MaxWrite     int     // Maximum write size per FUSE request (Default 1MB)
	AttrTimeout  float64 // Attribute cache timeout in seconds (Default 0)
	EntryTimeout float64 // Directory entry cache timeout in seconds (Default 0)
	DirectIO     bool    // Whether to bypass the page cache (Default true)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a CLI style verbosity 1 (error) to 5 (trace)
	LogLvl       *int     `yaml:"verbosity,omitempty" json:"verbosity,omitempty"`
	FsName       *string  `yaml:"fs_name,omitempty" json:"fs_name,omitempty"`
	Name         *string  `yaml:"name,omitempty" json:"name,omitempty"`
	Debug        *bool    `yaml:"debug,omitempty" json:"debug,omitempty"`
	AllowOther   *bool    `yaml:"allow_other,omitempty" json:"allow_other,omitempty"`
	AutoUnmount  *bool    `yaml:"auto_unmount,omitempty" json:"auto_unmount,omitempty"`
	Exec         *bool    `yaml:"exec,omitempty" json:"exec,omitempty"`
	NoAtime      *bool    `yaml:"noatime,omitempty" json:"noatime,omitempty"`
	Workers      *int     `yaml:"workers,omitempty" json:"workers,omitempty"`
	DirPerm      *uint32  `yaml:"dir_perm,omitempty" json:"dir_perm,omitempty"`
	MaxFileSize  *int64   `yaml:"max_file_size,omitempty" json:"max_file_size,omitempty"`
	MaxFH        *int     `yaml:"max_fh,omitempty" json:"max_fh,omitempty"`
	MaxWrite     *int     `yaml:"max_write,omitempty" json:"max_write,omitempty"`
	AttrTimeout  *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`
	DirectIO     *bool    `yaml:"direct_io,omitempty" json:"direct_io,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		MountOptions: defaultMountOptions(),
		LogLvl:       DefaultLogLvl,
		Workers:      DefaultWorkers,
		DirPerm:      DefaultDirPerm,
		MaxFileSize:  DefaultMaxFileSize,
		MaxFH:        DefaultMaxFH,
		MaxWrite:     DefaultMaxWrite,
		AttrTimeout:  DefaultAttrTimeout,
		EntryTimeout: DefaultEntryTimeout,
		DirectIO:     DefaultDirectIO,
	}
}

// NewConfig returns the default config with override applied. A nil
// override yields the defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = verbosityToLevel(*override.LogLvl)
	}
	if override.FsName != nil {
		c.FsName = *override.FsName
	}
	if override.Name != nil {
		c.Name = *override.Name
	}
	if override.Debug != nil {
		c.Debug = *override.Debug
	}
	if override.AllowOther != nil {
		c.AllowOther = *override.AllowOther
	}
	if override.AutoUnmount != nil {
		c.AutoUnmount = *override.AutoUnmount
	}
	if override.Exec != nil {
		c.Exec = *override.Exec
	}
	if override.NoAtime != nil {
		c.NoAtime = *override.NoAtime
	}
	if override.Workers != nil {
		c.Workers = max(*override.Workers, 1)
	}
	if override.DirPerm != nil {
		c.DirPerm = *override.DirPerm
	}
	if override.MaxFileSize != nil {
		c.MaxFileSize = max(*override.MaxFileSize, 0)
	}
	if override.MaxFH != nil {
		c.MaxFH = *override.MaxFH
	}
	if override.MaxWrite != nil {
		c.MaxWrite = *override.MaxWrite
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
	if override.DirectIO != nil {
		c.DirectIO = *override.DirectIO
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return NewConfig(override), nil
}
