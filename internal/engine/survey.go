package engine

import (
	"errors"
	"fmt"
	"time"

	"blupr/internal/catalog"
	"blupr/internal/domain"
)

var (
	ErrInvalidScore         = errors.New("score must be between 1 and 5")
	ErrUnknownQuestion      = errors.New("unknown question")
	ErrSurveyComplete       = errors.New("survey already complete")
	ErrOnboardingIncomplete = errors.New("onboarding not complete")
	ErrInvalidTarget        = errors.New("invalid onboarding target")
)

type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseComplete   Phase = "complete"
)

type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// ParseDirection acepta "next"/"previous" (y "prev").
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "next":
		return Next, true
	case "previous", "prev":
		return Previous, true
	}
	return 0, false
}

// State es el progreso de un encuestado. Lo guarda el llamador y se pasa en cada llamada;
// las transiciones devuelven un State nuevo sin modificar el recibido.
type State struct {
	Responses domain.ResponseSet `json:"responses"`
	Cursor    int                `json:"cursor"`
	// Saved marca que el perfil ya fue persistido para esta sesion.
	Saved bool `json:"saved"`
}

func NewState() State {
	return State{Responses: domain.NewResponseSet()}
}

// Survey aplica las reglas de avance sobre un catalogo: onboarding de tamanio fijo y,
// opcionalmente, pulsos recurrentes despues.
type Survey struct {
	catalog *catalog.Catalog
	target  int
	pulse   PulseGate
}

// NewSurvey usa target <= 0 como "todo el catalogo".
func NewSurvey(c *catalog.Catalog, target int, pulse PulseGate) (*Survey, error) {
	if target <= 0 {
		target = c.Len()
	}
	if target > c.Len() {
		return nil, fmt.Errorf("%w: %d exceeds catalog size %d", ErrInvalidTarget, target, c.Len())
	}
	if err := pulse.Validate(); err != nil {
		return nil, err
	}
	return &Survey{catalog: c, target: target, pulse: pulse}, nil
}

func (s *Survey) Catalog() *catalog.Catalog { return s.catalog }
func (s *Survey) Target() int               { return s.target }
func (s *Survey) Pulse() PulseGate          { return s.pulse }

func (s *Survey) Phase(st State) Phase {
	if st.Responses.Len() >= s.target {
		return PhaseComplete
	}
	return PhaseCollecting
}

func (s *Survey) IsComplete(st State) bool {
	return s.Phase(st) == PhaseComplete
}

// Answer registra una respuesta de onboarding. No avanza el cursor.
func (s *Survey) Answer(st State, questionID, score int) (State, error) {
	if s.IsComplete(st) {
		return st, ErrSurveyComplete
	}
	if err := s.validate(questionID, score); err != nil {
		return st, err
	}
	next := st
	next.Responses = st.Responses.With(questionID, score)
	return next, nil
}

// AnswerPulse registra una respuesta posterior al onboarding, sujeta a la cuota de la ventana
// actual. records son las respuestas ya persistidas del encuestado.
func (s *Survey) AnswerPulse(st State, records []domain.ResponseRecord, questionID, score int, now time.Time) (State, error) {
	if !s.IsComplete(st) {
		return st, ErrOnboardingIncomplete
	}
	if !s.pulse.Enabled() {
		return st, ErrSurveyComplete
	}
	if err := s.validate(questionID, score); err != nil {
		return st, err
	}
	if s.pulse.Remaining(records, s.target, now) <= 0 {
		return st, ErrBatchQuotaReached
	}
	next := st
	next.Responses = st.Responses.With(questionID, score)
	return next, nil
}

// Submit despacha a Answer o AnswerPulse segun la fase.
func (s *Survey) Submit(st State, records []domain.ResponseRecord, questionID, score int, now time.Time) (State, error) {
	if s.IsComplete(st) {
		return s.AnswerPulse(st, records, questionID, score, now)
	}
	return s.Answer(st, questionID, score)
}

// PulseRemaining devuelve cuantas respuestas acepta todavia la ventana actual.
// Cero si el onboarding no termino o si no hay modo recurrente.
func (s *Survey) PulseRemaining(st State, records []domain.ResponseRecord, now time.Time) int {
	if !s.IsComplete(st) || !s.pulse.Enabled() {
		return 0
	}
	return s.pulse.Remaining(records, s.target, now)
}

func (s *Survey) validate(questionID, score int) error {
	if !s.catalog.Has(questionID) {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	if !domain.ValidScore(score) {
		return fmt.Errorf("%w: got %d", ErrInvalidScore, score)
	}
	return nil
}

// Move desplaza el cursor de presentacion. Pasarse de [0, N-1] no hace nada.
func (s *Survey) Move(st State, dir Direction) State {
	next := st
	next.Cursor = s.clampCursor(st.Cursor)
	target := next.Cursor + int(dir)
	if target < 0 || target > s.catalog.Len()-1 {
		return next
	}
	next.Cursor = target
	return next
}

// Current devuelve la pregunta bajo el cursor.
func (s *Survey) Current(st State) domain.Question {
	return s.catalog.At(s.clampCursor(st.Cursor))
}

// NextUnanswered devuelve la primera pregunta sin respuesta en orden de catalogo.
func (s *Survey) NextUnanswered(st State) (domain.Question, bool) {
	for i := 0; i < s.catalog.Len(); i++ {
		q := s.catalog.At(i)
		if _, ok := st.Responses.Get(q.ID); !ok {
			return q, true
		}
	}
	return domain.Question{}, false
}

// Progress es respondidas/target, acotado a 1.
func (s *Survey) Progress(st State) float64 {
	p := float64(st.Responses.Len()) / float64(s.target)
	if p > 1 {
		return 1
	}
	return p
}

func (s *Survey) clampCursor(cursor int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > s.catalog.Len()-1 {
		return s.catalog.Len() - 1
	}
	return cursor
}
