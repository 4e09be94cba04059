// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/Larshalvorhansen/termType/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Metrics are the rounded figures shown to the user for a line or a run.
type Metrics struct {
	WPM      int
	Accuracy int
	Seconds  float64
}

// Totals sums line results and carries metrics computed from the sums.
type Totals struct {
	Lines    int
	Chars    int
	Mistakes int
	Elapsed  time.Duration
	Metrics
}

// Compute derives wpm, accuracy and duration from raw counters.
// Zero time or zero keystrokes yield 0 instead of dividing.
func Compute(chars, mistakes int, elapsed time.Duration) Metrics {
	seconds := elapsed.Seconds()
	m := Metrics{Seconds: roundTo(seconds, 2)}
	if seconds > 0 {
		minutes := seconds / 60
		m.WPM = int(math.RoundToEven((float64(chars) / 5) / minutes))
	}
	if den := chars + mistakes; den > 0 {
		m.Accuracy = int(math.RoundToEven(float64(chars) / float64(den) * 100))
	}
	return m
}

// ForLine computes metrics for a single line result.
func ForLine(r model.LineResult) Metrics {
	return Compute(r.Chars, r.Mistakes, r.Elapsed)
}

// Aggregate sums all results and applies the per-line formulas to the sums,
// so long lines weigh more than short ones.
func Aggregate(results []model.LineResult) Totals {
	var t Totals
	for _, r := range results {
		t.Chars += r.Chars
		t.Mistakes += r.Mistakes
		t.Elapsed += r.Elapsed
	}
	t.Lines = len(results)
	t.Metrics = Compute(t.Chars, t.Mistakes, t.Elapsed)
	return t
}

// ForRuns aggregates stored runs the same way Aggregate does for lines.
func ForRuns(runs []model.RunAggregate) Totals {
	var t Totals
	for _, r := range runs {
		t.Lines += r.Lines
		t.Chars += r.Chars
		t.Mistakes += r.Mistakes
		t.Elapsed += time.Duration(r.DurationMs) * time.Millisecond
	}
	t.Metrics = Compute(t.Chars, t.Mistakes, t.Elapsed)
	return t
}

// RunMetrics computes metrics for one stored run.
func RunMetrics(r model.RunAggregate) Metrics {
	return Compute(r.Chars, r.Mistakes, time.Duration(r.DurationMs)*time.Millisecond)
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// WPMCurve returns the moving-average WPM series of the runs.
func WPMCurve(runs []model.RunAggregate, window int) []float64 {
	values := make([]float64, len(runs))
	for i, r := range runs {
		values[i] = float64(RunMetrics(r).WPM)
	}
	return MovingAverage(values, window)
}

// FormatSeconds renders a duration the way the summary and the journal show it.
func FormatSeconds(seconds float64) string {
	return fmt.Sprintf("%.2fs", seconds)
}

// RenderRuns prints a plain summary and a table of runs. The trend line keeps
// the most recent runs that fit in width; width <= 0 keeps all of them.
func RenderRuns(w io.Writer, runs []model.RunAggregate, window, width int) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	totals := ForRuns(runs)
	if _, err := fmt.Fprintf(w, "Runs: %d  Lines: %d  WPM: %d  Accuracy: %d%%  Time: %s\n",
		len(runs), totals.Lines, totals.WPM, totals.Accuracy, FormatSeconds(totals.Seconds)); err != nil {
		return err
	}
	curve := WPMCurve(runs, window)
	if room := width - len("Trend: "); width > 0 && room > 0 && len(curve) > room {
		curve = curve[len(curve)-room:]
	}
	if _, err := fmt.Fprintf(w, "Trend: %s\n\n", Sparkline(curve)); err != nil {
		return err
	}

	headers := []string{"Ended", "Source", "Lines", "WPM", "Accuracy", "Time", "Status"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		m := RunMetrics(r)
		status := "done"
		if r.Aborted {
			status = "quit"
		}
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			fmt.Sprintf("%d/%d", r.Lines, r.TotalLines),
			fmt.Sprintf("%d", m.WPM),
			fmt.Sprintf("%d%%", m.Accuracy),
			FormatSeconds(m.Seconds),
			status,
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
