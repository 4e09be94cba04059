package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Larshalvorhansen/termType/internal/config"
	"github.com/Larshalvorhansen/termType/internal/historyui"
	"github.com/Larshalvorhansen/termType/internal/model"
	"github.com/Larshalvorhansen/termType/internal/stats"
	"github.com/Larshalvorhansen/termType/internal/store"
)

const defaultCurveWindow = 10

var (
	historySource      string
	historySince       string
	historyLast        int
	historyCurveWindow int
	historyPlain       bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySource, "source", "", "source filter (random, file, extreme, verse)")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().IntVar(&historyCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&historyPlain, "plain", false, "print a text table instead of the interactive view")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := historyConfig(historySource, historySince, historyLast, historyCurveWindow)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	stdout := int(os.Stdout.Fd())
	if historyPlain || !term.IsTerminal(stdout) {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		width := 0
		if w, _, err := term.GetSize(stdout); err == nil {
			width = w
		}
		return stats.RenderRuns(cmd.OutOrStdout(), report.Runs, cfg.CurveWindow, width)
	}

	m := historyui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func historyConfig(source, since string, last, window int) (model.HistoryConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.HistoryConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if window < 1 {
		return model.HistoryConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.HistoryConfig{
		Source:      source,
		Since:       sinceTime,
		Last:        last,
		CurveWindow: window,
	}, nil
}
