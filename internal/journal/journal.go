// Package journal appends human-readable session results to a text file.
package journal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/Larshalvorhansen/termType/internal/model"
	"github.com/Larshalvorhansen/termType/internal/stats"
)

const previewWidth = 30

// Journal appends one block per finished session.
type Journal struct {
	path string
}

// New returns a journal writing to path.
func New(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the file the journal appends to.
func (j *Journal) Path() string {
	return j.path
}

// Record appends the report. Reports without completed lines are skipped.
func (j *Journal) Record(ctx context.Context, report model.SessionReport) (err error) {
	if len(report.Lines) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close journal: %w", cerr)
		}
	}()
	if err := Write(file, report); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

// Write renders one report block.
func Write(w io.Writer, report model.SessionReport) error {
	var b strings.Builder
	header := fmt.Sprintf("%s | %d lines", report.EndedAt.Local().Format(time.ANSIC), len(report.Lines))
	if report.Aborted {
		header += " (quit early)"
	}
	b.WriteString(header + "\n")
	for _, line := range report.Lines {
		m := stats.ForLine(line)
		fmt.Fprintf(&b, "  \"%s\" | WPM: %d | Acc: %d%% | Time: %ss\n",
			Preview(line.Text), m.WPM, m.Accuracy, formatSeconds(m.Seconds))
	}
	totals := stats.Aggregate(report.Lines)
	fmt.Fprintf(&b, "  → Total WPM: %d, Accuracy: %d%%\n\n", totals.WPM, totals.Accuracy)
	_, err := io.WriteString(w, b.String())
	return err
}

// Preview shortens text to the journal preview width, marking the cut with "...".
func Preview(text string) string {
	if runewidth.StringWidth(text) <= previewWidth {
		return text
	}
	return truncate.String(text, previewWidth) + "..."
}

// formatSeconds prints the shortest form of seconds, keeping at least one decimal.
func formatSeconds(seconds float64) string {
	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
