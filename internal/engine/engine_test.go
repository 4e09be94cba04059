package engine

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func typeText(l *Line, text string, now time.Time) {
	for _, r := range text {
		l.Handle(keyMsg(string(r)), now)
	}
}

// fakeClock advances by step on every reading.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Action
	}{
		{"letter", keyMsg("a"), Action{Kind: ActionCharacter, Char: 'a'}},
		{"space", keyMsg(" "), Action{Kind: ActionCharacter, Char: ' '}},
		{"unicode", keyMsg("ø"), Action{Kind: ActionCharacter, Char: 'ø'}},
		{"backspace", keyMsg("backspace"), Action{Kind: ActionBackspace}},
		{"ctrl+h", tea.KeyMsg{Type: tea.KeyCtrlH}, Action{Kind: ActionBackspace}},
		{"delete", tea.KeyMsg{Type: tea.KeyDelete}, Action{Kind: ActionBackspace}},
		{"esc", keyMsg("esc"), Action{Kind: ActionQuit}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, Action{Kind: ActionQuit}},
		{"enter", keyMsg("enter"), Action{Kind: ActionIgnored}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, Action{Kind: ActionIgnored}},
		{"arrow", tea.KeyMsg{Type: tea.KeyLeft}, Action{Kind: ActionIgnored}},
		{"alt rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a"), Alt: true}, Action{Kind: ActionIgnored}},
		{"paste", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc"), Paste: true}, Action{Kind: ActionIgnored}},
		{"multi rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")}, Action{Kind: ActionIgnored}},
		{"control rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'\x07'}}, Action{Kind: ActionIgnored}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.msg))
		})
	}
}

func TestActionsSplitsBatchedRunes(t *testing.T) {
	got := Actions(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a b")})
	assert.Equal(t, []Action{
		{Kind: ActionCharacter, Char: 'a'},
		{Kind: ActionCharacter, Char: ' '},
		{Kind: ActionCharacter, Char: 'b'},
	}, got)

	assert.Equal(t, []Action{{Kind: ActionIgnored}},
		Actions(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc"), Paste: true}))
	assert.Equal(t, []Action{{Kind: ActionQuit}}, Actions(keyMsg("esc")))
	assert.Equal(t, []Action{{Kind: ActionCharacter, Char: 'x'}}, Actions(keyMsg("x")))
}

func TestLineBatchedRunes(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("the", now)
	assert.Equal(t, StateTyping, l.Handle(keyMsg("th"), now))
	assert.Equal(t, "th", string(l.Typed()))
	assert.Equal(t, StateLineComplete, l.Handle(keyMsg("e"), now))
	assert.Equal(t, 0, l.Mistakes())
}

func TestLineBatchStopsAtCompletion(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("ab", now)
	assert.Equal(t, StateLineComplete, l.Handle(keyMsg("abcd"), now))
	assert.Equal(t, "ab", string(l.Typed()))
	assert.Equal(t, 0, l.Mistakes())
}

func TestLineCorrectTyping(t *testing.T) {
	start := time.Unix(100, 0)
	l := NewLine("abc", start)
	typeText(l, "ab", start.Add(time.Second))
	assert.Equal(t, StateTyping, l.State())

	state := l.Handle(keyMsg("c"), start.Add(3*time.Second))
	require.Equal(t, StateLineComplete, state)

	result, ok := l.Result()
	require.True(t, ok)
	assert.Equal(t, "abc", result.Text)
	assert.Equal(t, 3, result.Chars)
	assert.Equal(t, 0, result.Mistakes)
	assert.Equal(t, 3*time.Second, result.Elapsed)
}

func TestLineBackspaceRoundTrip(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("the", now)
	typeText(l, "te", now)
	l.Handle(keyMsg("backspace"), now)
	assert.Equal(t, []rune("t"), l.Typed())
	typeText(l, "he", now)

	assert.Equal(t, StateLineComplete, l.State())
	assert.Equal(t, "the", string(l.Typed()))
	assert.Equal(t, 1, l.Mistakes())
}

func TestLineTwoBackspacesAfterTransposition(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("the", now)
	typeText(l, "teh", now)
	assert.Equal(t, StateLineComplete, l.State(), "a full-length buffer completes the line")
	assert.Equal(t, 2, l.Mistakes())

	l.Handle(keyMsg("backspace"), now)
	l.Handle(keyMsg("backspace"), now)
	typeText(l, "he", now)
	assert.Equal(t, "teh", string(l.Typed()), "keys after completion are ignored")
	assert.Equal(t, 2, l.Mistakes())
}

func TestLineBackspaceBeforeLastKey(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("the", now)
	typeText(l, "te", now)
	l.Handle(keyMsg("backspace"), now)
	l.Handle(keyMsg("backspace"), now)
	assert.Empty(t, l.Typed())
	typeText(l, "the", now)

	assert.Equal(t, StateLineComplete, l.State())
	assert.Equal(t, "the", string(l.Typed()))
	assert.Equal(t, 1, l.Mistakes())
}

func TestLineBufferBounds(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("ab", now)
	for i := 0; i < 3; i++ {
		l.Handle(keyMsg("backspace"), now)
	}
	assert.Empty(t, l.Typed())
	assert.Equal(t, StateTyping, l.State())

	typeText(l, "xyz", now)
	assert.Len(t, l.Typed(), 2)
	assert.Equal(t, StateLineComplete, l.State())
	assert.Equal(t, 2, l.Mistakes(), "input after completion is ignored")
}

func TestLineMistakesNeverDecrease(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("abcd", now)
	last := 0
	for _, k := range []string{"x", "backspace", "y", "backspace", "a", "z", "backspace", "backspace", "a", "b"} {
		l.Handle(keyMsg(k), now)
		require.GreaterOrEqual(t, l.Mistakes(), last)
		require.LessOrEqual(t, len(l.Typed()), 4)
		last = l.Mistakes()
	}
	assert.Equal(t, 3, l.Mistakes())
	assert.Equal(t, "ab", string(l.Typed()))
}

func TestLineCompletesExactlyOnce(t *testing.T) {
	start := time.Unix(0, 0)
	l := NewLine("ok", start)
	typeText(l, "ok", start.Add(2*time.Second))
	first, ok := l.Result()
	require.True(t, ok)

	l.Handle(keyMsg("backspace"), start.Add(time.Minute))
	l.Handle(keyMsg("!"), start.Add(time.Minute))
	second, ok := l.Result()
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, "ok", string(l.Typed()))
}

func TestLineIgnoredKeys(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("a", now)
	l.Handle(keyMsg("enter"), now)
	l.Handle(tea.KeyMsg{Type: tea.KeyUp}, now)
	assert.Empty(t, l.Typed())
	assert.Equal(t, StateTyping, l.State())
}

func TestLineQuitDeclinePreservesState(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("hello", now)
	typeText(l, "hx", now)
	typed, mistakes := l.Typed(), l.Mistakes()

	assert.Equal(t, StateAwaitingQuitConfirmation, l.Handle(keyMsg("esc"), now))
	_, ok := l.Result()
	assert.False(t, ok)

	assert.Equal(t, StateTyping, l.Handle(keyMsg("n"), now))
	assert.Equal(t, typed, l.Typed())
	assert.Equal(t, mistakes, l.Mistakes())
	assert.Len(t, l.Typed(), 2, "the declining key is not typed")
}

func TestLineQuitConfirm(t *testing.T) {
	for _, confirm := range []string{"y", "Y"} {
		now := time.Unix(0, 0)
		l := NewLine("hello", now)
		l.Handle(keyMsg("h"), now)
		l.Handle(keyMsg("esc"), now)
		assert.Equal(t, StateAborted, l.Handle(keyMsg(confirm), now))
		_, ok := l.Result()
		assert.False(t, ok)
		assert.Equal(t, StateAborted, l.Handle(keyMsg("e"), now))
	}
}

func TestLineQuitDeclinedByControlKey(t *testing.T) {
	now := time.Unix(0, 0)
	l := NewLine("hi", now)
	l.Handle(keyMsg("esc"), now)
	assert.Equal(t, StateTyping, l.Handle(keyMsg("esc"), now))
	assert.Equal(t, StateAwaitingQuitConfirmation, l.Handle(keyMsg("esc"), now))
	assert.Equal(t, StateTyping, l.Handle(keyMsg("enter"), now))
}

func TestLineElapsedIncludesConfirmation(t *testing.T) {
	start := time.Unix(0, 0)
	l := NewLine("ab", start)
	l.Handle(keyMsg("a"), start.Add(time.Second))
	l.Handle(keyMsg("esc"), start.Add(2*time.Second))
	l.Handle(keyMsg("n"), start.Add(10*time.Second))
	l.Handle(keyMsg("b"), start.Add(11*time.Second))

	result, ok := l.Result()
	require.True(t, ok)
	assert.Equal(t, 11*time.Second, result.Elapsed)
}

func TestConfirmQuit(t *testing.T) {
	assert.True(t, ConfirmQuit(keyMsg("y")))
	assert.True(t, ConfirmQuit(keyMsg("Y")))
	assert.False(t, ConfirmQuit(keyMsg("n")))
	assert.False(t, ConfirmQuit(keyMsg("yes")))
	assert.False(t, ConfirmQuit(keyMsg("enter")))
	assert.False(t, ConfirmQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y"), Alt: true}))
}

func TestNewSessionRejectsEmptyInput(t *testing.T) {
	_, err := NewSession(nil)
	assert.ErrorIs(t, err, ErrNoLines)

	_, err = NewSession([]string{"ok", ""})
	assert.ErrorIs(t, err, ErrEmptyLine)
}

func TestSessionCompletesAllLines(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Second}
	s, err := NewSession([]string{"ab", "c"}, WithClock(clock.Now), WithSource("file"))
	require.NoError(t, err)

	assert.Equal(t, "ab", s.Current().Text)
	assert.Equal(t, 1, s.Current().Index)
	next, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, "c", next.Text)

	assert.Equal(t, OutcomeRunning, s.Handle(keyMsg("a")))
	assert.Equal(t, OutcomeRunning, s.Handle(keyMsg("b")))
	assert.Equal(t, 2, s.Current().Index)
	_, ok = s.Next()
	assert.False(t, ok)

	assert.Equal(t, OutcomeCompleted, s.Handle(keyMsg("x")))
	assert.Equal(t, OutcomeCompleted, s.Handle(keyMsg("c")), "input after completion is ignored")

	report := s.Report()
	assert.False(t, report.Aborted)
	assert.Equal(t, "file", report.Source)
	assert.Equal(t, 2, report.TotalLines)
	assert.NotEmpty(t, report.ID)
	require.Len(t, report.Lines, 2)
	assert.Equal(t, 2, report.Lines[0].Chars)
	assert.Equal(t, 1, report.Lines[1].Mistakes)
	// Clock readings: session start 0, line 1 shown 1, keys 2 and 3, line 2 shown 4, key 5.
	assert.Equal(t, 2*time.Second, report.Lines[0].Elapsed)
	assert.Equal(t, time.Second, report.Lines[1].Elapsed)
}

func TestSessionBatchedRunesAcrossKeys(t *testing.T) {
	s, err := NewSession([]string{"the", "end"})
	require.NoError(t, err)
	s.Handle(keyMsg("th"))
	assert.Equal(t, OutcomeRunning, s.Handle(keyMsg("e")))
	assert.Equal(t, 2, s.Current().Index)
	require.Len(t, s.Results(), 1)
	assert.Equal(t, 0, s.Results()[0].Mistakes)
}

func TestSessionStartRestartsFirstLineClock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Second}
	s, err := NewSession([]string{"a"}, WithClock(clock.Now))
	require.NoError(t, err)
	// Readings 0 and 1 were taken while building the session.
	clock.t = clock.t.Add(10 * time.Second)
	s.Start()
	assert.Equal(t, OutcomeCompleted, s.Handle(keyMsg("a")))

	report := s.Report()
	assert.Equal(t, time.Unix(12, 0), report.StartedAt)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, time.Second, report.Lines[0].Elapsed)
}

func TestSessionStartIgnoredAfterTyping(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Second}
	s, err := NewSession([]string{"ab"}, WithClock(clock.Now))
	require.NoError(t, err)
	s.Handle(keyMsg("a"))
	s.Start()
	s.Handle(keyMsg("b"))
	// Line shown at 1, keys at 2 and 3; Start did not read the clock.
	assert.Equal(t, 2*time.Second, s.Report().Lines[0].Elapsed)
}

func TestSessionQuitMidSecondLine(t *testing.T) {
	s, err := NewSession([]string{"one", "two", "three"})
	require.NoError(t, err)
	for _, r := range "one" {
		s.Handle(keyMsg(string(r)))
	}
	s.Handle(keyMsg("t"))
	s.Handle(keyMsg("esc"))
	assert.Equal(t, OutcomeRunning, s.Outcome())
	assert.Equal(t, OutcomeAborted, s.Handle(keyMsg("y")))

	report := s.Report()
	assert.True(t, report.Aborted)
	assert.Equal(t, 3, report.TotalLines)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, "one", report.Lines[0].Text)
}

func TestSessionTruncatesToWidth(t *testing.T) {
	s, err := NewSession([]string{"abcdef", "ghijkl"}, WithWidth(4))
	require.NoError(t, err)
	assert.Equal(t, "abcd", s.Current().Text)
	for _, r := range "abcd" {
		s.Handle(keyMsg(string(r)))
	}
	assert.Equal(t, "ghij", s.Current().Text)

	s.Resize(5)
	assert.Equal(t, "ghijk", s.Current().Text)

	s.Handle(keyMsg("g"))
	s.Resize(2)
	assert.Equal(t, "ghijk", s.Current().Text, "a line in progress keeps its target")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 0))
	assert.Equal(t, "hel", Truncate("hello", 3))
	assert.Equal(t, "日", Truncate("日本語", 3))
	assert.Equal(t, "日", Truncate("日本語", 1), "keeps at least one rune")
}
