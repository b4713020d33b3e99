package engine

import (
	"errors"
	"fmt"
	"math"

	"blupr/internal/domain"
)

var (
	ErrDimensionMismatch = errors.New("belief vector dimension mismatch")
	ErrEmptyVector       = errors.New("belief vector is empty")
)

// Similarity devuelve (1 - d/sqrt(N)) * 100 con d la distancia euclidea.
// No es transitiva; los llamadores no deben asumir desigualdad triangular sobre el score.
func Similarity(a, b domain.BeliefVector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, ErrEmptyVector
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	distance := math.Sqrt(sum)
	maxDistance := math.Sqrt(float64(len(a)))
	score := (1 - distance/maxDistance) * 100
	return clamp(score, 0, 100), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
