package render

import (
	"fmt"
	"strings"

	"blupr/internal/domain"
)

// SVG genera una tira vectorial: un rect por patch presente sobre fondo oscuro.
type SVG struct {
	CellWidth  int
	Height     int
	Background string
}

func NewSVG() *SVG {
	return &SVG{CellWidth: 60, Height: 120, Background: "#0A0A0A"}
}

func (s *SVG) Render(patches []domain.Patch) (string, error) {
	if s.CellWidth <= 0 || s.Height <= 0 {
		return "", fmt.Errorf("svg renderer: invalid size %dx%d", s.CellWidth, s.Height)
	}
	width := s.CellWidth * len(patches)
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, s.Height, width, s.Height)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, width, s.Height, s.Background)
	for _, p := range patches {
		if !p.Present {
			continue
		}
		fmt.Fprintf(&b, `<rect x="%d" y="0" width="%d" height="%d" fill="%s"/>`, p.Index*s.CellWidth, s.CellWidth, s.Height, p.Color.Hex())
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}
