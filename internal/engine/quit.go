package engine

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// QuitPrompt is shown while a quit request awaits confirmation.
const QuitPrompt = "Do you wish to quit? (Y to quit, any key to continue)"

// ConfirmQuit interprets the single key read after a quit request.
// Only y or Y confirms.
func ConfirmQuit(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyRunes && !msg.Alt && strings.EqualFold(string(msg.Runes), "y")
}
