package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"blupr/internal/domain"
)

// Terminal dibuja el barcode como bloques de color ANSI.
type Terminal struct {
	CellWidth  int
	Height     int
	Background lipgloss.Color
}

func NewTerminal() *Terminal {
	return &Terminal{CellWidth: 4, Height: 2, Background: lipgloss.Color("#0A0A0A")}
}

func (t *Terminal) Render(patches []domain.Patch) (string, error) {
	width := t.CellWidth
	if width <= 0 {
		width = 1
	}
	height := t.Height
	if height <= 0 {
		height = 1
	}
	cell := strings.Repeat(" ", width)
	empty := lipgloss.NewStyle().Background(t.Background)

	var row strings.Builder
	for _, p := range patches {
		style := empty
		if p.Present {
			style = lipgloss.NewStyle().Background(lipgloss.Color(p.Color.Hex()))
		}
		row.WriteString(style.Render(cell))
	}
	line := row.String()
	lines := make([]string, height)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n"), nil
}
