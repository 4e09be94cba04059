// Package engine implements the typing session: key classification, the
// per-line state machine and the session orchestrator.
package engine

import (
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ActionKind is the semantic meaning of a key event.
type ActionKind int

const (
	ActionIgnored ActionKind = iota
	ActionCharacter
	ActionBackspace
	ActionQuit
)

func (k ActionKind) String() string {
	switch k {
	case ActionCharacter:
		return "character"
	case ActionBackspace:
		return "backspace"
	case ActionQuit:
		return "quit"
	default:
		return "ignored"
	}
}

// Action is a classified key event. Char is set for ActionCharacter only.
type Action struct {
	Kind ActionKind
	Char rune
}

type keyMap struct {
	Quit      key.Binding
	Backspace key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
	Backspace: key.NewBinding(
		key.WithKeys("backspace", "ctrl+h", "delete"),
		key.WithHelp("backspace", "delete last character"),
	),
}

// Actions classifies every rune of a key event. Bubble Tea can deliver several
// typed runes in one KeyRunes message when input arrives faster than it is read;
// each becomes its own action, in order. Pasted and alt-modified runes stay ignored.
func Actions(msg tea.KeyMsg) []Action {
	if msg.Type != tea.KeyRunes || msg.Paste || msg.Alt || len(msg.Runes) <= 1 {
		return []Action{Classify(msg)}
	}
	actions := make([]Action, 0, len(msg.Runes))
	for _, r := range msg.Runes {
		actions = append(actions, Classify(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}))
	}
	return actions
}

// Classify maps a single key event to an action. Multi-rune events are
// ignored here; use Actions to split them. It has no side effects.
func Classify(msg tea.KeyMsg) Action {
	switch {
	case key.Matches(msg, keys.Quit):
		return Action{Kind: ActionQuit}
	case key.Matches(msg, keys.Backspace):
		return Action{Kind: ActionBackspace}
	}
	if msg.Alt || msg.Paste {
		return Action{Kind: ActionIgnored}
	}
	switch msg.Type {
	case tea.KeySpace:
		return Action{Kind: ActionCharacter, Char: ' '}
	case tea.KeyRunes:
		if len(msg.Runes) != 1 || !unicode.IsPrint(msg.Runes[0]) {
			return Action{Kind: ActionIgnored}
		}
		return Action{Kind: ActionCharacter, Char: msg.Runes[0]}
	default:
		return Action{Kind: ActionIgnored}
	}
}
