// Package catalog carga y valida el cuestionario fijo de una instalacion.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"blupr/internal/domain"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrEmptyCatalog = errors.New("catalog has no questions")
	ErrInvalidEntry = errors.New("invalid catalog entry")
	ErrSizeMismatch = errors.New("catalog size mismatch")
	ErrDuplicateID  = errors.New("duplicate question id")
)

// Catalog es la lista ordenada e inmutable de preguntas. Segura para uso concurrente
// porque nunca se modifica despues de New.
type Catalog struct {
	questions []domain.Question
	index     map[int]int
}

// New valida las preguntas y construye el catalogo respetando el orden recibido.
func New(questions []domain.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		questions: make([]domain.Question, len(questions)),
		index:     make(map[int]int, len(questions)),
	}
	for i, q := range questions {
		if q.ID <= 0 {
			return nil, fmt.Errorf("%w: position %d has id %d", ErrInvalidEntry, i, q.ID)
		}
		if _, dup := c.index[q.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, q.ID)
		}
		q.Text = strings.TrimSpace(q.Text)
		q.Trait = strings.TrimSpace(q.Trait)
		if q.Text == "" || q.Trait == "" {
			return nil, fmt.Errorf("%w: question %d needs text and trait", ErrInvalidEntry, q.ID)
		}
		q.Intensity = domain.ParseIntensity(string(q.Intensity))
		c.questions[i] = q
		c.index[q.ID] = i
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.questions) }

// At devuelve la pregunta en la posicion i (orden del catalogo).
func (c *Catalog) At(i int) domain.Question { return c.questions[i] }

// Questions devuelve una copia de las preguntas en orden.
func (c *Catalog) Questions() []domain.Question {
	out := make([]domain.Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// IndexOf devuelve la posicion de la pregunta con ese id.
func (c *Catalog) IndexOf(questionID int) (int, bool) {
	i, ok := c.index[questionID]
	return i, ok
}

func (c *Catalog) Has(questionID int) bool {
	_, ok := c.index[questionID]
	return ok
}

// UnknownIntensities devuelve los ids de las preguntas con una intensidad no reconocida.
func (c *Catalog) UnknownIntensities() []int {
	var ids []int
	for _, q := range c.questions {
		if !q.Intensity.Known() {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// RequireSize falla si el catalogo no tiene exactamente n preguntas. n <= 0 no exige nada.
func (c *Catalog) RequireSize(n int) error {
	if n > 0 && c.Len() != n {
		return fmt.Errorf("%w: expected %d questions, got %d", ErrSizeMismatch, n, c.Len())
	}
	return nil
}

type fileEntry struct {
	ID        int    `yaml:"id"`
	Text      string `yaml:"text"`
	Trait     string `yaml:"trait"`
	ColorName string `yaml:"color_name"`
	HexColor  string `yaml:"hex_color"`
	Intensity string `yaml:"intensity"`
}

type file struct {
	Questions []fileEntry `yaml:"questions"`
}

// Parse lee un catalogo YAML.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	questions := make([]domain.Question, 0, len(f.Questions))
	for i, e := range f.Questions {
		color, err := domain.ParseHex(e.HexColor)
		if err != nil {
			return nil, fmt.Errorf("%w: position %d (id %d): %v", ErrInvalidEntry, i, e.ID, err)
		}
		questions = append(questions, domain.Question{
			ID:        e.ID,
			Text:      e.Text,
			Trait:     e.Trait,
			ColorName: strings.TrimSpace(e.ColorName),
			BaseColor: color,
			Intensity: domain.Intensity(e.Intensity),
		})
	}
	return New(questions)
}

// Load lee el catalogo desde un archivo. Si path esta vacio usa el catalogo embebido.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Default devuelve el cuestionario base de 10 preguntas.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}
