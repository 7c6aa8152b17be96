package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Virtual DOM reconciliation engine tools",
		Long: `reconcile drives the VDOM reconciliation engine from the command line.

  • diff    render fixture scripts and print the host operations
  • serve   run the live demo over a WebSocket host adapter
  • version print build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stderr.Fd())) {
				errors.DisableColors()
				plain = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: reconcile.{json,yaml,toml} in the working directory)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override log.level")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Override log.format")

	rootCmd.AddCommand(
		diffCmd(&flags),
		serveCmd(&flags),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// loadConfig reads the config named by --config, or the one in the
// working directory. A missing default config yields the defaults.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load(".")
		var re *errors.ReconcileError
		if stderrors.As(err, &re) && re.Code == "C120" {
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from cfg. Validate has already
// checked the level.
func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	return logging.New(os.Stderr, level, cfg.Log.Format)
}

// plain disables ANSI styling in the output helpers.
var plain bool

func styled(code, text string) string {
	if plain {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("%s %s\n", styled("32", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("%s %s\n", styled("33", "⚠"), fmt.Sprintf(format, args...))
}
