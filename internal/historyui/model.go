// Package historyui provides the Bubble Tea run history interface.
package historyui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Larshalvorhansen/termType/internal/journal"
	"github.com/Larshalvorhansen/termType/internal/model"
	"github.com/Larshalvorhansen/termType/internal/stats"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	sparkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Store is the run history the UI reads from.
type Store interface {
	stats.RunLister
	ListLines(ctx context.Context, runID string) ([]model.LineResult, error)
}

// Model implements the Bubble Tea history UI.
type Model struct {
	store Store
	cfg   model.HistoryConfig

	report stats.Report
	errMsg string

	runs  table.Model
	lines table.Model

	detail    bool
	detailRun model.RunAggregate

	width  int
	height int
}

// NewModel constructs a history UI model and loads the first report.
func NewModel(st Store, cfg model.HistoryConfig) *Model {
	if cfg.CurveWindow < 1 {
		cfg.CurveWindow = 1
	}
	m := &Model{
		store: st,
		cfg:   cfg,
		runs:  newTable(runColumns()),
		lines: newTable(lineColumns()),
	}
	m.runs.Focus()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.detail {
			return m.updateDetail(msg)
		}
		switch msg.String() {
		case "enter":
			return m.openDetail()
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.report.Curve = stats.WPMCurve(m.report.Runs, m.cfg.CurveWindow)
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.report.Curve = stats.WPMCurve(m.report.Runs, m.cfg.CurveWindow)
			return m, nil
		case "g", "home":
			m.runs.GotoTop()
			return m, nil
		case "G", "end":
			m.runs.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.runs, cmd = m.runs.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyBackspace:
		m.detail = false
		m.lines.Blur()
		m.runs.Focus()
		return m, tea.ClearScreen
	}
	var cmd tea.Cmd
	m.lines, cmd = m.lines.Update(msg)
	return m, cmd
}

func (m *Model) openDetail() (tea.Model, tea.Cmd) {
	runs := m.report.Runs
	if len(runs) == 0 {
		return m, nil
	}
	// Rows are newest first.
	idx := len(runs) - 1 - m.runs.Cursor()
	if idx < 0 || idx >= len(runs) {
		return m, nil
	}
	run := runs[idx]
	lines, err := m.store.ListLines(context.Background(), run.ID)
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.errMsg = ""
	m.detail = true
	m.detailRun = run
	m.lines.SetRows(lineRows(lines))
	m.lines.GotoTop()
	m.runs.Blur()
	m.lines.Focus()
	return m, tea.ClearScreen
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	_, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, 1)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = maxInt(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.runs.SetWidth(m.width)
	m.runs.SetHeight(maxInt(1, bodyHeight-lipgloss.Height(m.renderOverviewTop())-1))
	m.lines.SetWidth(m.width)
	m.lines.SetHeight(maxInt(1, bodyHeight-2))
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.runs.SetRows(runRows(report.Runs))
	m.runs.GotoTop()
}

func (m *Model) renderHeader() string {
	source := m.cfg.Source
	if source == "" {
		source = "any"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("History: source=%s  since=%s  last=%s  window=%d", source, since, last, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	help := "Scroll: up/down  Open run: enter  Window: -/=  Quit: q"
	if m.detail {
		help = "Scroll: up/down  Back: esc  Quit: q"
	}
	if m.errMsg != "" {
		return headerStyle.Render(help) + "\n" + errorStyle.Render(m.errMsg)
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody() string {
	if m.detail {
		return m.renderDetail()
	}
	if len(m.report.Runs) == 0 {
		return "No runs found."
	}
	return m.renderOverviewTop() + "\n" + tableMutedStyle.Render(m.runs.View())
}

func (m *Model) renderOverviewTop() string {
	if len(m.report.Runs) == 0 {
		return ""
	}
	cards := renderSummaryCards(m.report, m.width)
	trend := sparkStyle.Render(stats.Sparkline(lastN(m.report.Curve, maxInt(1, m.width-7))))
	return cards + "\n" + headerStyle.Render("Trend: ") + trend
}

func (m *Model) renderDetail() string {
	run := m.detailRun
	metrics := stats.RunMetrics(run)
	status := "completed"
	if run.Aborted {
		status = "quit early"
	}
	title := fmt.Sprintf("%s  %s  %d/%d lines  %d WPM  %d%%  %s",
		run.EndedAt.Local().Format("2006-01-02 15:04"), run.Source, run.Lines, run.TotalLines,
		metrics.WPM, metrics.Accuracy, status)
	return titleStyle.Render(truncateLine(title, m.width)) + "\n\n" + tableMutedStyle.Render(m.lines.View())
}

func renderSummaryCards(report stats.Report, width int) string {
	best := 0
	for _, r := range report.Runs {
		best = max(best, stats.RunMetrics(r).WPM)
	}
	t := report.Totals
	cards := []string{
		metricCard("Runs", strconv.Itoa(len(report.Runs))),
		metricCard("Lines", strconv.Itoa(t.Lines)),
		metricCard("WPM", strconv.Itoa(t.WPM)),
		metricCard("Best WPM", strconv.Itoa(best)),
		metricCard("Accuracy", fmt.Sprintf("%d%%", t.Accuracy)),
		metricCard("Time", stats.FormatSeconds(t.Seconds)),
	}
	if width < 80 {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func runColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Source", Width: 8},
		{Title: "Lines", Width: 7},
		{Title: "WPM", Width: 5},
		{Title: "Accuracy", Width: 9},
		{Title: "Time", Width: 10},
		{Title: "Status", Width: 6},
	}
}

func lineColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Line", Width: 34},
		{Title: "WPM", Width: 5},
		{Title: "Accuracy", Width: 9},
		{Title: "Mistakes", Width: 9},
		{Title: "Time", Width: 10},
	}
}

func runRows(runs []model.RunAggregate) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		m := stats.RunMetrics(r)
		status := "done"
		if r.Aborted {
			status = "quit"
		}
		rows = append(rows, table.Row{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			fmt.Sprintf("%d/%d", r.Lines, r.TotalLines),
			strconv.Itoa(m.WPM),
			fmt.Sprintf("%d%%", m.Accuracy),
			stats.FormatSeconds(m.Seconds),
			status,
		})
	}
	return rows
}

func lineRows(lines []model.LineResult) []table.Row {
	rows := make([]table.Row, 0, len(lines))
	for i, l := range lines {
		m := stats.ForLine(l)
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			journal.Preview(l.Text),
			strconv.Itoa(m.WPM),
			fmt.Sprintf("%d%%", m.Accuracy),
			strconv.Itoa(l.Mistakes),
			stats.FormatSeconds(m.Seconds),
		})
	}
	return rows
}

func newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func lastN(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
