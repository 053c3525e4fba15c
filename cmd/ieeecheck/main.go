// Command ieeecheck checks PDF papers against the IEEE formatting rules using
// a remote analysis service.
//
// Usage:
//
//	ieeecheck [tui] [paper.pdf]                 interactive checker
//	ieeecheck check paper.pdf [--format json]   one check, exit code for CI
//	ieeecheck history [show <id> | prune]       past checks
//	ieeecheck init                              write a config file
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ieeecheck/ieeecheck/internal/config"
	"github.com/ieeecheck/ieeecheck/internal/history"
	"github.com/ieeecheck/ieeecheck/pkg/analysis"
	"github.com/ieeecheck/ieeecheck/pkg/buildinfo"
)

// historyTimeout bounds one history write from the check command.
const historyTimeout = 5 * time.Second

// CheckExitError carries a process exit code out of a command.
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	baseURL    string
	timeout    string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if exitErr, ok := err.(*CheckExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "ieeecheck [paper.pdf]",
		Short: "Check PDF papers against the IEEE formatting rules",
		Long: `ieeecheck uploads a PDF paper to an IEEE compliance analysis service and
shows which formatting rules it passes and fails.

Without a subcommand it opens the interactive checker.`,
		Version:       buildinfo.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts, args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	flags.StringVar(&opts.baseURL, "base-url", "", "analysis service base URL (overrides base_url)")
	flags.StringVar(&opts.timeout, "timeout", "", "request timeout, e.g. 90s (overrides timeout)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and state changes to stderr")

	rootCmd.AddCommand(tuiCmd(opts))
	rootCmd.AddCommand(checkCmd(opts))
	rootCmd.AddCommand(historyCmd(opts))
	rootCmd.AddCommand(initCmd(opts))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.baseURL != "" {
		if err := config.ValidateBaseURL(opts.baseURL); err != nil {
			return nil, fmt.Errorf("--base-url: %w", err)
		}
		cfg.BaseURL = opts.baseURL
	}
	if opts.timeout != "" {
		if err := config.ValidateDuration(opts.timeout); err != nil {
			return nil, fmt.Errorf("--timeout: %w", err)
		}
		cfg.Timeout = opts.timeout
	}
	return cfg, nil
}

// requireBaseURL fails with a hint when no service is configured.
func requireBaseURL(cfg *config.Config) error {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("no analysis service configured: set base_url with 'ieeecheck init', --base-url, or %s_BASE_URL", config.EnvPrefix)
	}
	return nil
}

func newClient(cfg *config.Config, logger *log.Logger) *analysis.Client {
	opts := []analysis.Option{analysis.WithLogger(logger)}
	if d := cfg.TimeoutDuration(); d > 0 {
		opts = append(opts, analysis.WithTimeout(d))
	}
	return analysis.NewClient(cfg.BaseURL, opts...)
}

// openHistory opens the history store, or returns nil when history is off.
func openHistory(cfg *config.Config) (*history.SQLiteStore, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, fmt.Errorf("history path: %w", err)
	}
	return history.NewSQLiteStore(path)
}

func stderrLogger(verbose bool) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "[ieeecheck] ", log.LstdFlags)
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "ieeecheck version %s\n", buildinfo.Version)
			}
		},
	}
	return cmd
}
