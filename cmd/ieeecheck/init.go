package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ieeecheck/ieeecheck/internal/config"
)

func initCmd(opts *globalOptions) *cobra.Command {
	var (
		force       bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an ieeecheck configuration file",
		Long: `Write a configuration file with the default settings.

Examples:
  # Write ~/.config/ieeecheck/config.yaml pointing at a service
  ieeecheck init --base-url https://checker.example.org

  # Guided setup
  ieeecheck init -i

  # Custom location, replacing an existing file
  ieeecheck init --config ./ieeecheck.yaml --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ResolvePath(opts.configPath)
			if err != nil {
				return err
			}

			cfg := config.NewDefaultConfig()
			if opts.baseURL != "" {
				cfg.BaseURL = opts.baseURL
			}
			if opts.timeout != "" {
				cfg.Timeout = opts.timeout
			}

			if interactive {
				if err := runInteractiveSetup(cfg, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists. Use --force to overwrite", path)
				}
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.WriteConfig(path, cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			if cfg.BaseURL == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "\nSet base_url in that file before running 'ieeecheck check'.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "\nRun 'ieeecheck check paper.pdf' to check a document.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "guided setup")
	return cmd
}

func runInteractiveSetup(cfg *config.Config, in io.Reader, out io.Writer) error {
	stdin := io.NopCloser(in)
	stdout := nopWriteCloser{out}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "ieeecheck Configuration Setup")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintln(out)

	urlPrompt := promptui.Prompt{
		Label:    "Analysis service base URL",
		Default:  cfg.BaseURL,
		Validate: config.ValidateBaseURL,
		Stdin:    stdin,
		Stdout:   stdout,
	}
	baseURL, err := urlPrompt.Run()
	if err != nil {
		return fmt.Errorf("base URL input cancelled: %w", err)
	}
	cfg.BaseURL = baseURL

	timeoutPrompt := promptui.Prompt{
		Label:    "Request timeout",
		Default:  cfg.Timeout,
		Validate: config.ValidateDuration,
		Stdin:    stdin,
		Stdout:   stdout,
	}
	if cfg.Timeout, err = timeoutPrompt.Run(); err != nil {
		return fmt.Errorf("timeout input cancelled: %w", err)
	}

	logPrompt := promptui.Prompt{
		Label:    "Log file for the interactive checker (empty for none)",
		Default:  cfg.LogFile,
		Validate: config.ValidateLogFile,
		Stdin:    stdin,
		Stdout:   stdout,
	}
	logFile, err := logPrompt.Run()
	if err != nil {
		return fmt.Errorf("log file input cancelled: %w", err)
	}
	cfg.LogFile = strings.TrimSpace(logFile)

	historyChoices := []struct {
		Label       string
		Description string
		Enabled     bool
	}{
		{"Keep history (recommended)", "Record every check in a local database", true},
		{"No history", "Nothing is stored on this machine", false},
	}
	historyPrompt := promptui.Select{
		Label: "Should past checks be recorded?",
		Items: historyChoices,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
			Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
		Stdin:  stdin,
		Stdout: stdout,
	}
	idx, _, err := historyPrompt.Run()
	if err != nil {
		return fmt.Errorf("history selection cancelled: %w", err)
	}
	cfg.History.Enabled = historyChoices[idx].Enabled

	if cfg.History.Enabled {
		keepPrompt := promptui.Prompt{
			Label:    "Checks to keep (0 for all)",
			Default:  strconv.Itoa(cfg.History.Keep),
			Validate: config.ValidateKeep,
			Stdin:    stdin,
			Stdout:   stdout,
		}
		keep, err := keepPrompt.Run()
		if err != nil {
			return fmt.Errorf("history size input cancelled: %w", err)
		}
		cfg.History.Keep, _ = strconv.Atoi(strings.TrimSpace(keep))
	}

	fmt.Fprintln(out)
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
