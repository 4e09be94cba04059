package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/Larshalvorhansen/termType/internal/model"
)

var (
	// ErrNoLines is returned when a session is requested for an empty line sequence.
	ErrNoLines = errors.New("no practice lines")
	// ErrEmptyLine is returned when one of the lines has nothing to type.
	ErrEmptyLine = errors.New("empty practice line")
)

// Outcome is the state of a whole session.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	OutcomeCompleted
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeAborted:
		return "aborted"
	default:
		return "running"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithWidth truncates lines to the given display width as they become active.
func WithWidth(width int) Option {
	return func(s *Session) {
		s.width = width
	}
}

// WithSource labels the report with the name of the line source.
func WithSource(name string) Option {
	return func(s *Session) {
		s.source = name
	}
}

// Session drives one Line at a time over an ordered sequence of practice lines.
type Session struct {
	id        string
	source    string
	lines     []string
	index     int
	active    *Line
	results   []model.LineResult
	outcome   Outcome
	width     int
	now       func() time.Time
	startedAt time.Time
	endedAt   time.Time
}

// NewSession creates a session and shows its first line.
func NewSession(lines []string, opts ...Option) (*Session, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	for i, line := range lines {
		if line == "" {
			return nil, fmt.Errorf("line %d: %w", i+1, ErrEmptyLine)
		}
	}
	s := &Session{
		id:    uuid.New().String(),
		lines: append([]string(nil), lines...),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now()
	s.activate(0)
	return s, nil
}

func (s *Session) activate(index int) {
	s.index = index
	s.active = NewLine(Truncate(s.lines[index], s.width), s.now())
}

// Start restarts the session clock and the first line's clock at the moment the
// first line is actually shown. It does nothing once any key reached the line.
func (s *Session) Start() {
	if s.outcome != OutcomeRunning || s.index != 0 || len(s.active.typed) > 0 || s.active.mistakes > 0 {
		return
	}
	now := s.now()
	s.startedAt = now
	s.active.startedAt = now
}

// Resize changes the display width. A line with nothing typed yet is
// re-truncated; a line in progress keeps its target.
func (s *Session) Resize(width int) {
	s.width = width
	if s.outcome != OutcomeRunning || len(s.active.typed) > 0 {
		return
	}
	s.active.target = []rune(Truncate(s.lines[s.index], width))
}

// Handle feeds one key event to the active line and advances the session.
func (s *Session) Handle(msg tea.KeyMsg) Outcome {
	if s.outcome != OutcomeRunning {
		return s.outcome
	}
	now := s.now()
	switch s.active.Handle(msg, now) {
	case StateLineComplete:
		result, _ := s.active.Result()
		s.results = append(s.results, result)
		if s.index+1 >= len(s.lines) {
			s.finish(OutcomeCompleted, now)
			break
		}
		s.activate(s.index + 1)
	case StateAborted:
		s.finish(OutcomeAborted, now)
	}
	return s.outcome
}

func (s *Session) finish(outcome Outcome, now time.Time) {
	s.outcome = outcome
	s.endedAt = now
}

// Outcome returns the session outcome so far.
func (s *Session) Outcome() Outcome {
	return s.outcome
}

// Active returns the line currently being typed.
func (s *Session) Active() *Line {
	return s.active
}

// Current returns the active practice line.
func (s *Session) Current() model.PracticeLine {
	return model.PracticeLine{
		Text:  string(s.active.target),
		Index: s.index + 1,
		Total: len(s.lines),
	}
}

// Next returns the line after the active one, if any.
func (s *Session) Next() (model.PracticeLine, bool) {
	i := s.index + 1
	if i >= len(s.lines) {
		return model.PracticeLine{}, false
	}
	return model.PracticeLine{Text: s.lines[i], Index: i + 1, Total: len(s.lines)}, true
}

// Results returns the results of completed lines.
func (s *Session) Results() []model.LineResult {
	return append([]model.LineResult(nil), s.results...)
}

// Report builds the session report from the results gathered so far.
func (s *Session) Report() model.SessionReport {
	ended := s.endedAt
	if ended.IsZero() {
		ended = s.now()
	}
	return model.SessionReport{
		ID:         s.id,
		Source:     s.source,
		StartedAt:  s.startedAt,
		EndedAt:    ended,
		TotalLines: len(s.lines),
		Aborted:    s.outcome == OutcomeAborted,
		Lines:      s.Results(),
	}
}

// Truncate cuts text to the given display width. Non-positive widths leave
// the text untouched. The first rune is always kept, even when it is wider
// than width, so a line never becomes empty and impossible to complete.
func Truncate(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	var b strings.Builder
	used := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if used+w > width && used > 0 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String()
}
