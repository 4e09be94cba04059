package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Larshalvorhansen/termType/internal/engine"
)

// CellStyle is how one target position is drawn.
type CellStyle int

const (
	CellPending CellStyle = iota
	CellCorrect
	CellIncorrect
)

// Cell is one drawn target position.
type Cell struct {
	Rune  rune
	Style CellStyle
}

// Frame is everything needed to draw one typing screen. It holds no state
// beyond what it was built from, so it can be rebuilt after every key.
type Frame struct {
	Progress string
	Cells    []Cell
	Preview  string
	// Cursor is the first untyped column, or -1 once the line is fully typed.
	Cursor int
	Prompt string
}

// BuildFrame lays out the target line, typed prefix and next-line preview.
// Lines wider than width are cut to width first; width <= 0 disables cutting.
func BuildFrame(target, typed []rune, next string, index, total, width int) Frame {
	visible := []rune(engine.Truncate(string(target), width))
	cells := make([]Cell, 0, len(visible))
	for i, want := range visible {
		cell := Cell{Rune: want, Style: CellPending}
		if i < len(typed) {
			switch {
			case want == ' ' && typed[i] != ' ':
				cell.Rune = '•'
				cell.Style = CellIncorrect
			case typed[i] == want:
				cell.Style = CellCorrect
			default:
				cell.Style = CellIncorrect
			}
		}
		cells = append(cells, cell)
	}
	cursor := -1
	if len(typed) < len(visible) {
		cursor = len(typed)
	}
	return Frame{
		Progress: fmt.Sprintf("[%d/%d]", index, total),
		Cells:    cells,
		Preview:  engine.Truncate(next, width),
		Cursor:   cursor,
	}
}

// QuitFrame is drawn while a quit request awaits confirmation.
func QuitFrame() Frame {
	return Frame{Cursor: -1, Prompt: engine.QuitPrompt}
}

// Render draws the frame with the typing styles.
func (f Frame) Render() string {
	if f.Prompt != "" {
		return promptStyle.Render(f.Prompt)
	}
	var b strings.Builder
	for i, cell := range f.Cells {
		style := styleFor(cell.Style)
		if i == f.Cursor {
			style = style.Underline(true)
		}
		b.WriteString(style.Render(string(cell.Rune)))
	}
	lines := []string{progressStyle.Render(f.Progress), "", b.String()}
	if f.Preview != "" {
		lines = append(lines, "", previewStyle.Render(f.Preview))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func styleFor(s CellStyle) lipgloss.Style {
	switch s {
	case CellCorrect:
		return correctStyle
	case CellIncorrect:
		return incorrectStyle
	default:
		return pendingStyle
	}
}
