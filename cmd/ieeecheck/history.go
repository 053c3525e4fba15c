package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ieeecheck/ieeecheck/internal/config"
	"github.com/ieeecheck/ieeecheck/internal/history"
	"github.com/ieeecheck/ieeecheck/internal/printer"
)

func historyCmd(opts *globalOptions) *cobra.Command {
	var (
		state  string
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch state {
			case "", "complete", "failed":
			default:
				return fmt.Errorf("--state must be complete or failed, got %q", state)
			}
			p, err := newPrinter(cmd, format)
			if err != nil {
				return err
			}
			store, err := requireHistory(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), history.Filter{State: state, Limit: limit})
			if err != nil {
				return err
			}
			return p.History(entries)
		},
	}
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "output format: text, json, or yaml")
	cmd.Flags().StringVar(&state, "state", "", "only show checks in this state (complete or failed)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of checks to list (0 for all)")

	cmd.AddCommand(historyShowCmd(opts, &format))
	cmd.AddCommand(historyDeleteCmd(opts))
	cmd.AddCommand(historyPruneCmd(opts))
	return cmd
}

func historyShowCmd(opts *globalOptions, format *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the report of a past check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd, *format)
			if err != nil {
				return err
			}
			store, err := requireHistory(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			entry, err := findEntry(cmd, store, args[0])
			if err != nil {
				return err
			}
			return p.Entry(entry)
		},
	}
}

func historyDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a past check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := requireHistory(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			entry, err := findEntry(cmd, store, args[0])
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), entry.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", entry.ID, entry.FileName)
			return nil
		},
	}
}

func historyPruneCmd(opts *globalOptions) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return fmt.Errorf("--keep must not be negative")
			}
			store, err := requireHistory(opts)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d checks\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 100, "number of newest checks to keep")
	return cmd
}

func newPrinter(cmd *cobra.Command, format string) (*printer.Printer, error) {
	f, err := printer.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return printer.New(cmd.OutOrStdout(), f), nil
}

func requireHistory(opts *globalOptions) (history.Store, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return openRequiredHistory(cfg)
}

func openRequiredHistory(cfg *config.Config) (history.Store, error) {
	store, err := openHistory(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.New("history is disabled (history.enabled: false)")
	}
	return store, nil
}

// findEntry resolves a full id or the short prefix shown by 'history'.
func findEntry(cmd *cobra.Command, store history.Store, id string) (*history.Entry, error) {
	entry, err := store.Get(cmd.Context(), id)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, history.ErrNotFound) {
		return nil, err
	}

	all, err := store.List(cmd.Context(), history.Filter{})
	if err != nil {
		return nil, err
	}
	var match *history.Entry
	for i := range all {
		if len(id) >= 4 && len(all[i].ID) >= len(id) && all[i].ID[:len(id)] == id {
			if match != nil {
				return nil, fmt.Errorf("id %q is ambiguous", id)
			}
			match = &all[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no check with id %q", id)
	}
	return match, nil
}
