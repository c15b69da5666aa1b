package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kalambet/newsetl/internal/config"
	"github.com/kalambet/newsetl/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openLedger()
		if err != nil {
			return err
		}
		defer store.Close()

		return listRuns(store, limit, time.Now())
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the per-user outcomes of one run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLedger()
		if err != nil {
			return err
		}
		defer store.Close()

		return showRun(store, args[0])
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.AddCommand(historyShowCmd)
}

func openLedger() (*storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return store, nil
}

func listRuns(store *storage.Store, limit int, now time.Time) error {
	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No runs recorded.")
		return nil
	}

	for _, r := range runs {
		state := r.State
		switch state {
		case "Done":
			state = colorize(styleSuccess, state)
		case "Aborted":
			state = colorize(styleError, state)
		}
		fmt.Fprintf(stdout, "%s  %s  %-8s  %d/%d updated  (%d ids)\n",
			colorize(styleStep, r.ID),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			state,
			r.Updated, r.Fetched, r.Attempted,
		)
		if r.Error != "" {
			fmt.Fprintf(stdout, "    %s\n", r.Error)
		}
	}
	return nil
}

func showRun(store *storage.Store, id string) error {
	r, err := store.GetRun(id)
	if err != nil {
		return fmt.Errorf("run %s: %w", id, err)
	}

	printStatus("Run", "%s", r.ID)
	printStatus("Started", "%s", r.StartedAt.Local().Format(time.DateTime))
	if !r.FinishedAt.IsZero() {
		printStatus("Finished", "%s", r.FinishedAt.Local().Format(time.DateTime))
	}
	printStatus("State", "%s", r.State)
	printStatus("Updated", "%d/%d", r.Updated, r.Fetched)
	if r.ReportPath != "" {
		printStatus("Report", "%s", r.ReportPath)
	}
	if r.Error != "" {
		printStatus("Error", "%s", r.Error)
	}

	events, err := store.ListRunEvents(r.ID)
	if err != nil {
		return err
	}
	for _, e := range events {
		user := "-"
		if e.UserID != 0 {
			user = fmt.Sprint(e.UserID)
		}
		fmt.Fprintf(stdout, "%-8s  %-6s  %-15s  %s\n", e.Stage, user, e.Outcome, e.Detail)
	}
	return nil
}
