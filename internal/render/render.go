// Package render convierte los patches del encoder en un barcode visible.
package render

import "blupr/internal/domain"

// Renderer produce la representacion visual de una tira de patches. Los patches con
// Present=false se dejan como fondo.
type Renderer interface {
	Render(patches []domain.Patch) (string, error)
}
