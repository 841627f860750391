package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/httpui/packages/core/config"
	"github.com/abdul-hamid-achik/httpui/packages/history"
	"github.com/abdul-hamid-achik/httpui/packages/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyDBFlag     string
	historyLimitFlag  int
	historyClearFlag  bool
	historyOutputFlag string
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show requests recorded by send --history",
	Long: `Show the requests recorded in a history database, most recent first.
With an id, print that exchange including its response body.

Examples:
  httpui history --db history.db
  httpui history --db history.db --limit 5 --output json
  httpui history --db history.db 0b5d3c9e-...
  httpui history --db history.db --clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", getEnvString("HTTPUI_HISTORY", ""), "SQLite history database (env: HTTPUI_HISTORY)")
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", getEnvInt("HTTPUI_HISTORY_LIMIT", 20), "Number of entries to show, 0 for all (env: HTTPUI_HISTORY_LIMIT)")
	historyCmd.Flags().BoolVar(&historyClearFlag, "clear", false, "Delete every recorded entry")
	historyCmd.Flags().StringVarP(&historyOutputFlag, "output", "o", "console", "Output format: console, json")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cfg = cfg.Merge(&config.Config{HistoryDB: historyDBFlag})
	path := cfg.HistoryDB
	if path == "" {
		return withExitCode(ExitConfigError, fmt.Errorf("no history database: pass --db or set historyDB in the config file"))
	}

	store, err := history.Open(path)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer store.Close()

	ctx := context.Background()

	if historyClearFlag {
		n, err := store.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries\n", n)
		return nil
	}

	if len(args) == 1 {
		entry, err := store.Get(ctx, args[0])
		if errors.Is(err, history.ErrNotFound) {
			return withExitCode(ExitUsageError, fmt.Errorf("%w: %s", err, args[0]))
		}
		if err != nil {
			return err
		}
		if historyOutputFlag == "json" {
			return writeJSON(cmd, entry)
		}
		printEntry(cmd, entry, true)
		return nil
	}

	entries, err := store.List(ctx, historyLimitFlag)
	if err != nil {
		return err
	}
	if historyOutputFlag == "json" {
		return writeJSON(cmd, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history entries")
		return nil
	}
	for i := range entries {
		printEntry(cmd, &entries[i], false)
	}
	return nil
}

func printEntry(cmd *cobra.Command, e *history.Entry, full bool) {
	if noColorFlag {
		color.NoColor = true
	}
	faint := color.New(color.Faint).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	status := e.Status
	if e.Error != "" {
		status = red(e.Error)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  %s  %s %s  %s %s\n",
		faint(e.CreatedAt.Format("2006-01-02 15:04:05")), faint(shortID(e.ID)),
		e.Method, e.URL, status, cyan(fmt.Sprintf("(%dms)", e.DurationMs)))

	if full {
		fmt.Fprintf(w, "id:   %s\n", e.ID)
		if e.File != "" {
			fmt.Fprintf(w, "file: %s\n", e.File)
		}
		if body := strings.TrimSpace(e.ResponseBody); body != "" {
			fmt.Fprintf(w, "\n%s\n", output.PrettyBody(body))
		}
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
