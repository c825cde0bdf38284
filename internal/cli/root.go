// Package cli implements the cortex-refactor command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cortex-refactor/internal/config"
	"github.com/mvp-joe/cortex-refactor/internal/engine"
)

var (
	rootDir string
	verbose bool

	// appConfig and logger are set before any subcommand runs.
	appConfig *config.Config
	logger    *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cortex-refactor",
	Short: "Structural navigation and refactoring for TypeScript and JavaScript",
	Long: `cortex-refactor parses a TypeScript, TSX or JavaScript file and answers
structural questions about it: which element is under the cursor, what the
members of the enclosing scope are, and how to move, sort or extract them.

Edit commands print an edit plan as JSON. Pass --write to apply it to the
file in place.

Positions are byte offsets (--at 120) or 1-based LINE:COL (--at 12:5).

Configuration is read from .cortex/refactor.yml in the project directory or
the home directory, with CORTEX_REFACTOR_* environment overrides.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "dir", "", "project directory holding .cortex/refactor.yml (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}

// initConfig loads configuration and builds the logger.
func initConfig(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
	)
	if rootDir != "" {
		cfg, err = config.LoadConfigFromDir(rootDir)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}

	appConfig = cfg
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// currentConfig returns the loaded configuration, or defaults when a
// command runs without the root pre-run (tests).
func currentConfig() *config.Config {
	if appConfig == nil {
		return config.Default()
	}
	return appConfig
}

func currentLogger() *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

func newEngine() *engine.Engine {
	return engine.New(currentConfig().EngineOptions(currentLogger())...)
}
