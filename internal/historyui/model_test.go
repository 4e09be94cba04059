package historyui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Larshalvorhansen/termType/internal/model"
)

type fakeStore struct {
	runs    []model.RunAggregate
	lines   map[string][]model.LineResult
	lineErr error
	asked   []string
}

func (f *fakeStore) ListRuns(context.Context, model.HistoryConfig) ([]model.RunAggregate, error) {
	return f.runs, nil
}

func (f *fakeStore) ListLines(_ context.Context, runID string) ([]model.LineResult, error) {
	f.asked = append(f.asked, runID)
	return f.lines[runID], f.lineErr
}

func newFakeStore() *fakeStore {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return &fakeStore{
		runs: []model.RunAggregate{
			{ID: "old", Source: "random", EndedAt: base, Lines: 2, TotalLines: 2, Chars: 50, DurationMs: 60000},
			{ID: "new", Source: "file", EndedAt: base.Add(time.Hour), Lines: 1, TotalLines: 3, Aborted: true, Chars: 100, Mistakes: 5, DurationMs: 60000},
		},
		lines: map[string][]model.LineResult{
			"new": {{Text: "the quick brown fox", Chars: 100, Mistakes: 5, Elapsed: time.Minute}},
		},
	}
}

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestViewShowsCardsAndRuns(t *testing.T) {
	m := sized(NewModel(newFakeStore(), model.HistoryConfig{}))
	view := m.View()
	for _, want := range []string{"Runs", "Best WPM", "Trend:", "random", "file", "quit"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestEnterOpensNewestRunFirst(t *testing.T) {
	st := newFakeStore()
	m := sized(NewModel(st, model.HistoryConfig{}))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected clear screen command")
	}
	if !m.detail {
		t.Fatalf("expected detail view")
	}
	if len(st.asked) != 1 || st.asked[0] != "new" {
		t.Fatalf("expected newest run to be opened, got %v", st.asked)
	}
	view := m.View()
	if !strings.Contains(view, "the quick brown fox") || !strings.Contains(view, "quit early") {
		t.Fatalf("detail view missing line data:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.detail {
		t.Fatalf("expected esc to return to runs")
	}
}

func TestEnterShowsLineError(t *testing.T) {
	st := newFakeStore()
	st.lineErr = errors.New("db locked")
	m := sized(NewModel(st, model.HistoryConfig{}))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.detail {
		t.Fatalf("expected to stay on runs")
	}
	if !strings.Contains(m.View(), "db locked") {
		t.Fatalf("expected error in view")
	}
}

func TestCurveWindowKeys(t *testing.T) {
	m := NewModel(newFakeStore(), model.HistoryConfig{CurveWindow: 1})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", m.cfg.CurveWindow)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	if m.cfg.CurveWindow != 1 {
		t.Fatalf("expected window 1, got %d", m.cfg.CurveWindow)
	}
}

func TestQuitKey(t *testing.T) {
	m := NewModel(newFakeStore(), model.HistoryConfig{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}

func TestEmptyHistory(t *testing.T) {
	m := sized(NewModel(&fakeStore{}, model.HistoryConfig{}))
	if !strings.Contains(m.View(), "No runs found.") {
		t.Fatalf("expected empty message")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("expected no command without runs")
	}
}
