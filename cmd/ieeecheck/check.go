package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ieeecheck/ieeecheck/internal/config"
	"github.com/ieeecheck/ieeecheck/internal/headless"
	"github.com/ieeecheck/ieeecheck/internal/history"
	"github.com/ieeecheck/ieeecheck/internal/printer"
	"github.com/ieeecheck/ieeecheck/internal/workflow"
)

type checkOptions struct {
	format     string
	noProgress bool
	noHistory  bool
}

func checkCmd(opts *globalOptions) *cobra.Command {
	copts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check <paper.pdf>",
		Short: "Check one PDF and exit with its compliance status",
		Long: `Upload one PDF to the analysis service, print the report, and exit.

Exit codes:
  0  the document is IEEE compliant
  1  the document fails at least one rule
  2  the check could not be completed (bad file, service error, bad config)
  3  the service evaluated no rules

Examples:
  ieeecheck check paper.pdf
  ieeecheck check paper.pdf --format json > report.json
  IEEECHECK_BASE_URL=https://checker.example.org ieeecheck check paper.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, copts, args[0])
		},
	}

	cmd.Flags().StringVarP(&copts.format, "format", "f", "text", "output format: text, json, or yaml")
	cmd.Flags().BoolVar(&copts.noProgress, "no-progress", false, "do not draw a progress bar")
	cmd.Flags().BoolVar(&copts.noHistory, "no-history", false, "do not record this check in history")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *globalOptions, copts *checkOptions, path string) error {
	format, err := printer.ParseFormat(copts.format)
	if err != nil {
		return &CheckExitError{Code: headless.ExitError, Message: err.Error()}
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return &CheckExitError{Code: headless.ExitError, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}
	if err := requireBaseURL(cfg); err != nil {
		return &CheckExitError{Code: headless.ExitError, Message: err.Error()}
	}

	logger := stderrLogger(opts.verbose)
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := headless.Run(ctx, path, headless.Options{
		Workflow: workflow.Config{
			Uploader: newClient(cfg, logger),
			Progress: cfg.Progress.Workflow(),
		},
		Progress: headless.NewReporter(!copts.noProgress, os.Stderr),
		Logger:   logger,
	})
	if err != nil {
		return &CheckExitError{Code: headless.ExitError, Message: err.Error()}
	}

	if res.Attempt != nil && !copts.noHistory {
		recordCheck(cfg, res.Attempt, logger.Printf)
	}

	if res.State != workflow.StateComplete || res.View == nil {
		return &CheckExitError{Code: res.ExitCode(), Message: res.Message()}
	}

	if err := printer.New(cmd.OutOrStdout(), format).Report(res.File.Name, *res.View); err != nil {
		return &CheckExitError{Code: headless.ExitError, Message: fmt.Sprintf("write report: %v", err)}
	}
	if code := res.ExitCode(); code != headless.ExitCompliant {
		return &CheckExitError{Code: code}
	}
	return nil
}

// recordCheck saves a finished attempt. History failures never change the
// check's exit code.
func recordCheck(cfg *config.Config, msg *workflow.AttemptFinishedMsg, logf func(string, ...interface{})) {
	store, err := openHistory(cfg)
	if err != nil {
		logf("history disabled: %v", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	entry := history.FromAttempt(*msg)
	if err := store.Record(ctx, entry); err != nil {
		logf("record history: %v", err)
		return
	}
	if cfg.History.Keep > 0 {
		if _, err := store.Prune(ctx, cfg.History.Keep); err != nil {
			logf("prune history: %v", err)
		}
	}
}
