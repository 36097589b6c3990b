package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/termfolio/internal/analytics"
	"github.com/verte-zerg/termfolio/internal/fetch"
	"github.com/verte-zerg/termfolio/internal/server"
	"github.com/verte-zerg/termfolio/internal/terminal"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <command...>",
		Short: "Run one terminal command and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRunCmd,
	}
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	r := newScriptRunner(a, cmd.OutOrStdout())
	defer r.saveRecall(ctx)
	return r.exec(ctx, strings.Join(args, " "))
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the recall list",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().BoolVar(&historyClear, "clear", false, "empty the recall list")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if historyClear {
		a.recall.Clear()
		if err := terminal.SaveRecall(ctx, a.store, a.recall); err != nil {
			return err
		}
		return writeLines(cmd, []string{"History cleared."})
	}
	items := a.recall.Items()
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{strconv.Itoa(i + 1), item}
	}
	return writeLines(cmd, terminal.FormatTable(nil, rows, map[int]bool{0: true}))
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show usage counters",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	c := a.tracker.Counters()
	started := "-"
	if !c.SessionStart.IsZero() {
		started = c.SessionStart.Format("2006-01-02 15:04")
	}
	rows := [][]string{
		{"Visits", strconv.Itoa(c.Visits)},
		{"Commands", strconv.Itoa(c.Commands)},
		{"Questions", strconv.Itoa(c.Questions)},
		{"Session start", started},
		{"Last command", orDash(c.LastCommand)},
	}
	lines := append([]string{"Local"}, terminal.FormatTable(nil, rows, nil)...)

	if analyticsEndpoint != "" {
		remote, err := fetchSummary(ctx, analyticsEndpoint)
		if err != nil {
			a.logger.Warn("failed to fetch remote analytics", zap.Error(err))
			lines = append(lines, "", fmt.Sprintf("Remote: unavailable (%v)", err))
		} else {
			lines = append(lines, "", "Remote")
			lines = append(lines, summaryLines(remote)...)
		}
	}
	return writeLines(cmd, lines)
}

var summaryRetry = fetch.RetryPolicy{Attempts: 3, BaseDelay: 200 * time.Millisecond, MaxDelay: time.Second}

func fetchSummary(ctx context.Context, endpoint string) (server.Summary, error) {
	client := fetch.New(endpoint)
	return fetch.WithRetry(ctx, summaryRetry, func(ctx context.Context) (server.Summary, error) {
		var sum server.Summary
		err := client.GetJSON(ctx, analytics.Path, &sum)
		return sum, err
	})
}

func summaryLines(sum server.Summary) []string {
	rows := make([][]string, 0, len(sum.Totals))
	for _, t := range sum.Totals {
		rows = append(rows, []string{t.Event, strconv.FormatInt(t.Count, 10)})
	}
	lines := terminal.FormatTable([]string{"Event", "Count"}, rows, map[int]bool{1: true})
	if len(sum.Commands) == 0 {
		return lines
	}
	cmdRows := make([][]string, 0, len(sum.Commands))
	for _, u := range sum.Commands {
		cmdRows = append(cmdRows, []string{u.Command, strconv.FormatInt(u.Count, 10), u.LastUsedAt.Format("2006-01-02 15:04")})
	}
	lines = append(lines, "")
	lines = append(lines, terminal.FormatTable([]string{"Command", "Count", "Last used"}, cmdRows, map[int]bool{1: true})...)
	return lines
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeLines(cmd *cobra.Command, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
