package engine

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Larshalvorhansen/termType/internal/model"
)

// State is the state of a single line.
type State int

const (
	StateTyping State = iota
	StateAwaitingQuitConfirmation
	StateLineComplete
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateTyping:
		return "typing"
	case StateAwaitingQuitConfirmation:
		return "awaiting-quit-confirmation"
	case StateLineComplete:
		return "line-complete"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the line accepts no further input.
func (s State) Terminal() bool {
	return s == StateLineComplete || s == StateAborted
}

// Line tracks typing progress for one target line.
type Line struct {
	target    []rune
	typed     []rune
	mistakes  int
	state     State
	startedAt time.Time
	endedAt   time.Time
}

// NewLine starts a line whose clock begins at startedAt, the moment it is shown.
func NewLine(target string, startedAt time.Time) *Line {
	return &Line{
		target:    []rune(target),
		typed:     make([]rune, 0, len(target)),
		state:     StateTyping,
		startedAt: startedAt,
	}
}

// Handle is the transition function: it applies one key event at time now
// and returns the resulting state. Batched runes are applied one by one until
// the line leaves StateTyping; the rest of the batch is dropped.
func (l *Line) Handle(msg tea.KeyMsg, now time.Time) State {
	switch l.state {
	case StateTyping:
		for _, a := range Actions(msg) {
			if l.Apply(a, now) != StateTyping {
				break
			}
		}
	case StateAwaitingQuitConfirmation:
		if ConfirmQuit(msg) {
			l.state = StateAborted
		} else {
			l.state = StateTyping
		}
	}
	return l.state
}

// Apply applies a classified action while typing. In other states it is a no-op.
func (l *Line) Apply(a Action, now time.Time) State {
	if l.state != StateTyping {
		return l.state
	}
	switch a.Kind {
	case ActionCharacter:
		pos := len(l.typed)
		if pos >= len(l.target) {
			return l.state
		}
		if a.Char != l.target[pos] {
			l.mistakes++
		}
		l.typed = append(l.typed, a.Char)
		if len(l.typed) == len(l.target) {
			l.state = StateLineComplete
			l.endedAt = now
		}
	case ActionBackspace:
		if len(l.typed) > 0 {
			l.typed = l.typed[:len(l.typed)-1]
		}
	case ActionQuit:
		l.state = StateAwaitingQuitConfirmation
	}
	return l.state
}

// State returns the current state.
func (l *Line) State() State {
	return l.state
}

// Target returns a copy of the target runes.
func (l *Line) Target() []rune {
	return append([]rune(nil), l.target...)
}

// Typed returns a copy of the typed buffer.
func (l *Line) Typed() []rune {
	return append([]rune(nil), l.typed...)
}

// Mistakes returns the number of mismatched keystrokes so far.
func (l *Line) Mistakes() int {
	return l.mistakes
}

// Result returns the line result once the line is complete.
func (l *Line) Result() (model.LineResult, bool) {
	if l.state != StateLineComplete {
		return model.LineResult{}, false
	}
	return model.LineResult{
		Text:     string(l.target),
		Chars:    len(l.target),
		Mistakes: l.mistakes,
		Elapsed:  l.endedAt.Sub(l.startedAt),
	}, true
}
