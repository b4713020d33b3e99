package engine

import (
	"errors"
	"fmt"
	"time"

	"blupr/internal/domain"
)

var (
	ErrBatchQuotaReached = errors.New("answer quota for the current window reached")
	ErrInvalidPulse      = errors.New("invalid pulse configuration")
)

type WindowKind string

const (
	// WindowCalendarDay va de medianoche a medianoche en Location.
	WindowCalendarDay WindowKind = "calendar_day"
	// WindowRolling24h cubre (now-24h, now].
	WindowRolling24h WindowKind = "rolling_24h"
)

// PulseGate limita las respuestas posteriores al onboarding a BatchSize por ventana.
// BatchSize == 0 desactiva el modo recurrente.
type PulseGate struct {
	BatchSize int
	Window    WindowKind
	Location  *time.Location
}

func (g PulseGate) Enabled() bool { return g.BatchSize > 0 }

func (g PulseGate) Validate() error {
	if g.BatchSize < 0 {
		return fmt.Errorf("%w: batch size %d", ErrInvalidPulse, g.BatchSize)
	}
	if !g.Enabled() {
		return nil
	}
	switch g.Window {
	case WindowCalendarDay, WindowRolling24h:
		return nil
	}
	return fmt.Errorf("%w: unknown window %q", ErrInvalidPulse, g.Window)
}

// Bounds devuelve la ventana que contiene now como [start, end).
func (g PulseGate) Bounds(now time.Time) (time.Time, time.Time) {
	if g.Window == WindowRolling24h {
		return now.Add(-24 * time.Hour), now
	}
	loc := g.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func (g PulseGate) contains(t, now time.Time) bool {
	start, end := g.Bounds(now)
	if g.Window == WindowRolling24h {
		return t.After(start) && !t.After(end)
	}
	return !t.Before(start) && t.Before(end)
}

// Used cuenta las respuestas posteriores al onboarding que caen en la ventana actual.
// El onboarding termina en el registro con el que se alcanzan target preguntas distintas;
// ese registro y los anteriores no cuentan.
func (g PulseGate) Used(records []domain.ResponseRecord, target int, now time.Time) int {
	seen := make(map[int]struct{}, target)
	onboarded := false
	used := 0
	for _, rec := range domain.SortRecords(records) {
		if !onboarded {
			seen[rec.QuestionID] = struct{}{}
			if len(seen) >= target {
				onboarded = true
			}
			continue
		}
		if g.contains(rec.AnsweredAt, now) {
			used++
		}
	}
	return used
}

func (g PulseGate) Remaining(records []domain.ResponseRecord, target int, now time.Time) int {
	left := g.BatchSize - g.Used(records, target, now)
	if left < 0 {
		return 0
	}
	return left
}
