package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/brettbedarf/riddlefs/config"
	"github.com/brettbedarf/riddlefs/internal/util"
	"github.com/brettbedarf/riddlefs/requests"
	"github.com/brettbedarf/riddlefs/server"
	"github.com/spf13/pflag"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		nodesDef   string
		verbose    int
		umount     bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file (.yaml, .yml or .json)")
	pflag.StringVarP(&nodesDef, "nodes", "n", "", "Path to node definitions file (.yaml, .yml or .json)")
	pflag.BoolVarP(&umount, "umount", "u", false,
		"Unmount the fs first if needed before mounting again. Useful for debuggers that don't exit properly.")
	pflag.IntVarP(&verbose, "verbose", "v", 3, "Log verbosity level between 1 (error) and 5 (trace)")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <mountpoint>\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	// Load config; an explicit -v wins over the file
	override := &config.ConfigOverride{}
	if configPath != "" {
		fileOverride, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config %s: %v\n", configPath, err)
			os.Exit(1)
		}
		override = fileOverride
	}
	if pflag.CommandLine.Changed("verbose") || override.LogLvl == nil {
		override.LogLvl = &verbose
	}
	cfg := config.NewConfig(override)

	// Initialize logger
	util.InitializeLogger(cfg.LogLvl)
	logger := util.GetLogger("main")

	mnt := pflag.Arg(0)
	logger.Info().
		Str("config", configPath).
		Str("nodes", nodesDef).
		Str("mnt", mnt).
		Int("workers", cfg.Workers).
		Msg("RiddleFS server initializing")
	// Check if mount point is provided
	if mnt == "" {
		pflag.Usage()
		logger.Fatal().Msg("Mount point not specified; it must be passed as the argument")
	}
	// Try unmount if requested
	if umount { // send cli command
		cmd := exec.Command("fusermount", "-u", mnt)
		// we ignore error here if not already mounted
		cmd.Run() // nolint:errcheck
	}

	// Register all built-in node types
	registry := requests.NewRegistry()
	requests.RegisterBuiltins(registry)

	// Load definitions before mounting so bad input fails fast
	var defs []requests.NodeRequestDTO
	if nodesDef != "" {
		var err error
		defs, err = requests.LoadDefsFile(nodesDef)
		if err != nil {
			logger.Fatal().Err(err).Str("nodes", nodesDef).Msg("Failed to read node definitions")
		}
		logger.Debug().Str("nodes", nodesDef).Int("count", len(defs)).Msg("Node definitions loaded successfully")
	} else {
		logger.Warn().Msg("No node definitions file provided")
	}

	// Init the fs
	fs := server.New(cfg)

	// Serve
	if err := fs.Serve(mnt); err != nil {
		logger.Fatal().Err(err).Msg("Failed to mount filesystem")
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

	// Seed the tree
	if len(defs) > 0 {
		added, err := registry.Apply(defs, fs)
		if err != nil {
			logger.Error().Err(err).Msg("Some node definitions were skipped")
		}
		logger.Info().Int("nodes", added).Msg("Scheduled seed nodes")
	}

	// Wait for termination signal or an external unmount
	unmounted := make(chan struct{})
	go func() {
		fs.Wait()
		close(unmounted)
	}()

	select {
	case sig := <-signalChan:
		logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")
	case <-unmounted:
		logger.Info().Msg("Filesystem was unmounted externally")
	}

	// Drain mutations and unmount the filesystem
	if err := fs.Close(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
	} else {
		logger.Info().Msg("Filesystem unmounted successfully")
	}
}
