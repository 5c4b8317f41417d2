package config

import "github.com/brettbedarf/riddlefs/internal/util"

// CLI verbosity values accepted by [ConfigOverride.LogLvl]. Out-of-range
// values are clamped.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl = util.InfoLevel

	// Uses 31 bits (2^31 - 1 = 2,147,483,647) to ensure compatibility with libfuse
	// and avoid signed integer overflow.
	DefaultMaxFH = (1 << 31) - 1

	// DefaultWorkers is the number of mutation tasks allowed to wait on the table at once
	DefaultWorkers = 8

	// DefaultDirPerm is the permission set of the root directory
	DefaultDirPerm = 0o777

	// DefaultMaxWrite is the maximum write size per FUSE request
	DefaultMaxWrite = 1 * MB

	// DefaultMaxFileSize caps files created through mknod
	DefaultMaxFileSize = 1024 * MB

	// The tree changes behind the kernel's back so nothing may be cached
	DefaultAttrTimeout  = 0.0
	DefaultEntryTimeout = 0.0

	// DefaultDirectIO bypasses the page cache so every read reaches the nodes
	DefaultDirectIO = true

	DefaultFsName      = "riddlefs"
	DefaultName        = "riddlefs"
	DefaultAllowOther  = true
	DefaultAutoUnmount = true
	DefaultExec        = true
	DefaultNoAtime     = true
)

// Bytes per MB
const MB = 1024 * 1024

// verbosityToLevel maps CLI verbosity 1..5 onto log levels error..trace
func verbosityToLevel(v int) util.LogLevel {
	return util.ErrorLevel - (util.Clamp(v, ErrorVerbose, TraceVerbose) - ErrorVerbose)
}
