package main

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ieeecheck/ieeecheck/internal/config"
	"github.com/ieeecheck/ieeecheck/internal/tui/upload"
	"github.com/ieeecheck/ieeecheck/internal/workflow"
)

func tuiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [paper.pdf]",
		Short: "Open the interactive checker (default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts, args)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *globalOptions, args []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := requireBaseURL(cfg); err != nil {
		return err
	}

	// The screen belongs to the UI; logs only go to a file.
	logger := log.New(io.Discard, "", 0)
	logPath, err := cfg.LogPath()
	if err != nil {
		return fmt.Errorf("log path: %w", err)
	}
	if logPath != "" {
		f, err := tea.LogToFile(logPath, "ieeecheck")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = log.Default()
	}

	uopts := uploadOptions(cfg, logger)
	if len(args) == 1 {
		uopts.InitialPath = args[0]
	}

	store, err := openHistory(cfg)
	if err != nil {
		// History is optional; the checker still works without it.
		logger.Printf("history disabled: %v", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: history disabled: %v\n", err)
	} else if store != nil {
		defer store.Close()
		uopts.History = store
	}

	p := tea.NewProgram(upload.New(uopts), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interactive checker: %w", err)
	}
	return nil
}

func uploadOptions(cfg *config.Config, logger *log.Logger) upload.Options {
	return upload.Options{
		Workflow: workflow.Config{
			Uploader: newClient(cfg, logger),
			Progress: cfg.Progress.Workflow(),
			Logger:   logger,
		},
		ServiceURL:  cfg.BaseURL,
		HistoryKeep: cfg.History.Keep,
		Logger:      logger,
	}
}
