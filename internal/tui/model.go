// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Larshalvorhansen/termType/internal/engine"
	"github.com/Larshalvorhansen/termType/internal/model"
	statsPkg "github.com/Larshalvorhansen/termType/internal/stats"
)

// Recorder consumes a finished session report.
type Recorder interface {
	Record(ctx context.Context, report model.SessionReport) error
}

// History provides earlier runs for the footer.
type History interface {
	ListRuns(ctx context.Context, cfg model.HistoryConfig) ([]model.RunAggregate, error)
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	session   *engine.Session
	recorders []Recorder
	savedNote string

	width  int
	height int

	finished bool
	report   model.SessionReport
	totals   statsPkg.Totals
	saveErrs []string

	lastWPM int
	lastAcc int
	hasLast bool

	allWPM int
	allAcc int
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	previewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")).Faint(true)
	progressStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	summaryStyle   = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
)

// NewModel constructs a typing TUI model around a session. history may be nil.
// savedNote is shown on the summary panel after recorders ran.
func NewModel(session *engine.Session, history History, savedNote string, recorders ...Recorder) *Model {
	m := &Model{
		session:   session,
		recorders: recorders,
		savedNote: savedNote,
	}
	m.loadFooterStats(history)
	return m
}

// Init implements tea.Model. The first line is about to be drawn, so its
// clock starts here rather than when the session was built.
func (m *Model) Init() tea.Cmd {
	m.session.Start()
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.session.Resize(m.width)
		return m, nil
	case tea.KeyMsg:
		if m.finished {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.session.Active().State()
	outcome := m.session.Handle(msg)
	log.Printf("key=%q action=%s line=%d state=%s outcome=%s",
		msg.String(), engine.Classify(msg).Kind, m.session.Current().Index, m.session.Active().State(), outcome)
	if outcome != engine.OutcomeRunning {
		m.finish()
		return m, tea.ClearScreen
	}
	if before == engine.StateAwaitingQuitConfirmation && m.session.Active().State() == engine.StateTyping {
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m *Model) finish() {
	m.finished = true
	m.report = m.session.Report()
	m.totals = statsPkg.Aggregate(m.report.Lines)
	if len(m.report.Lines) == 0 {
		return
	}
	ctx := context.Background()
	for _, r := range m.recorders {
		if err := r.Record(ctx, m.report); err != nil {
			m.saveErrs = append(m.saveErrs, err.Error())
			logErrf("failed to save session: %v\n", err)
		}
	}
}

// Report returns the session report once the session has finished.
func (m *Model) Report() (model.SessionReport, bool) {
	return m.report, m.finished
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch {
	case m.finished:
		content = m.renderSummary()
	case m.session.Active().State() == engine.StateAwaitingQuitConfirmation:
		content = QuitFrame().Render()
	default:
		content = m.currentFrame().Render()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := ""
	if !m.finished {
		footer = m.renderFooter()
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) currentFrame() Frame {
	line := m.session.Active()
	current := m.session.Current()
	next, _ := m.session.Next()
	return BuildFrame(line.Target(), line.Typed(), next.Text, current.Index, current.Total, m.width)
}

func (m *Model) loadFooterStats(history History) {
	if history == nil {
		return
	}
	runs, err := history.ListRuns(context.Background(), model.HistoryConfig{})
	if err != nil {
		logErrf("failed to load run history: %v\n", err)
		return
	}
	if len(runs) == 0 {
		return
	}
	last := statsPkg.RunMetrics(runs[len(runs)-1])
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true

	all := statsPkg.ForRuns(runs)
	m.allWPM = all.WPM
	m.allAcc = all.Accuracy
}

func (m *Model) renderFooter() string {
	line := m.session.Active()
	target := len(line.Target())
	if target == 0 {
		return ""
	}
	progress := int(float64(len(line.Typed())) / float64(target) * 100)
	segments := []string{
		fmt.Sprintf("Progress %d%%", progress),
		fmt.Sprintf("Mistakes %d", line.Mistakes()),
	}
	if m.hasLast {
		segments = append(segments,
			fmt.Sprintf("Last %d WPM · %d%%", m.lastWPM, m.lastAcc),
			fmt.Sprintf("All-time %d WPM · %d%%", m.allWPM, m.allAcc))
	}
	segments = append(segments, "esc to quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderSummary() string {
	title := "Typing complete."
	if m.report.Aborted {
		title = "Quitting early."
	}
	t := m.totals
	lines := []string{
		summaryTitleStyle.Render(title),
		"",
		fmt.Sprintf("Lines typed:    %d/%d", t.Lines, m.report.TotalLines),
		fmt.Sprintf("Total time:     %s", statsPkg.FormatSeconds(t.Seconds)),
		fmt.Sprintf("Total chars:    %d", t.Chars),
		fmt.Sprintf("Total mistakes: %d", t.Mistakes),
		fmt.Sprintf("Overall WPM:    %d", t.WPM),
		fmt.Sprintf("Accuracy:       %d%%", t.Accuracy),
		"",
	}
	switch {
	case len(m.saveErrs) > 0:
		lines = append(lines, incorrectStyle.Render("Failed to save stats: "+strings.Join(m.saveErrs, "; ")))
	case t.Lines == 0:
		lines = append(lines, "Nothing to save.")
	case m.savedNote != "":
		lines = append(lines, m.savedNote)
	}
	lines = append(lines, "Press any key to exit.")
	return summaryStyle.Render(strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
