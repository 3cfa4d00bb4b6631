package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/augtree/internal/cli"
	"github.com/aretw0/augtree/internal/config"
	"github.com/aretw0/augtree/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "augtree",
	Short: "augtree edits configuration files as a tree",
	Long: `augtree runs blocks of set, rm, match, lensmatch, ins, transform and load
commands against a tree of configuration files. Files are parsed through lenses
and written back only when every command of a block succeeds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Failures already written as a report only set the exit code.
		if !errors.Is(err, cli.ErrFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (.yaml, .toml or .json)")
	flags.String("root", "", "Filesystem root files are read from and written to (default $AUGEAS_ROOT or /)")
	flags.String("loadpath", "", "Extra directories to search for lenses")
	flags.String("backend", "", "Where nodes no lens owns are kept: memory, file or redis")
	flags.String("snapshot", "", "Snapshot name free nodes are saved under")
	flags.String("redis", "", "Redis address for the redis backend")
	flags.Bool("debug", false, "Enable debug logging on stderr")
}

// loadConfig reads --config (or the defaults) and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root, _ = flags.GetString("root")
	}
	if flags.Changed("loadpath") {
		cfg.LoadPath, _ = flags.GetString("loadpath")
	}
	if flags.Changed("backend") {
		cfg.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("snapshot") {
		cfg.Snapshot, _ = flags.GetString("snapshot")
	}
	if flags.Changed("redis") {
		cfg.Redis.Addr, _ = flags.GetString("redis")
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newStack loads the configuration and wires the engine it describes.
func newStack(cmd *cobra.Command, hooks ...domain.LifecycleHooks) (*cli.Stack, *config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := cli.NewLogger(cfg.Debug)
	stack, err := cli.NewStack(cfg, logger, hooks...)
	if err != nil {
		return nil, nil, nil, err
	}
	return stack, cfg, logger, nil
}
