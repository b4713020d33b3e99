package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"blupr/internal/domain"
)

var ErrInvalidThresholds = errors.New("invalid cohort thresholds")

// Candidate es un encuestado contra el cual se compara el vector objetivo.
type Candidate struct {
	Identity    string
	DisplayName string
	Vector      domain.BeliefVector
}

// Rank ordena por similitud descendente. Los empates conservan el orden de entrada.
func Rank(target domain.BeliefVector, candidates []Candidate) ([]domain.MatchResult, error) {
	matches := make([]domain.MatchResult, 0, len(candidates))
	for _, c := range candidates {
		sim, err := Similarity(target, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", c.Identity, err)
		}
		matches = append(matches, domain.MatchResult{
			Identity:    c.Identity,
			DisplayName: c.DisplayName,
			Similarity:  sim,
		})
	}
	sortMatches(matches)
	return matches, nil
}

func sortMatches(matches []domain.MatchResult) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
}

// Classifier asigna clan y estado "unlocked". Son dos reglas independientes:
// clan usa top > CohortThreshold; unlocked usa count(sim >= UnlockThreshold) > 0.
type Classifier struct {
	CohortThreshold float64
	UnlockThreshold float64
	CohortAbove     string
	CohortBelow     string
}

func DefaultClassifier() Classifier {
	return Classifier{
		CohortThreshold: 85,
		UnlockThreshold: 90,
		CohortAbove:     "Kindred",
		CohortBelow:     "Wanderer",
	}
}

func (c Classifier) Validate() error {
	for _, v := range []float64{c.CohortThreshold, c.UnlockThreshold} {
		if math.IsNaN(v) || v < 0 || v > 100 {
			return fmt.Errorf("%w: %v outside [0,100]", ErrInvalidThresholds, v)
		}
	}
	if c.CohortAbove == "" || c.CohortBelow == "" || c.CohortAbove == c.CohortBelow {
		return fmt.Errorf("%w: cohort labels must be distinct and non-empty", ErrInvalidThresholds)
	}
	return nil
}

// Cohort: el valor exacto del umbral pertenece al clan de abajo.
func (c Classifier) Cohort(topSimilarity float64) string {
	if topSimilarity > c.CohortThreshold {
		return c.CohortAbove
	}
	return c.CohortBelow
}

// UnlockedCount cuenta los matches con similitud >= UnlockThreshold.
func (c Classifier) UnlockedCount(matches []domain.MatchResult) int {
	n := 0
	for _, m := range matches {
		if m.Similarity >= c.UnlockThreshold {
			n++
		}
	}
	return n
}

func (c Classifier) Unlocked(matches []domain.MatchResult) bool {
	return c.UnlockedCount(matches) > 0
}

type Classification struct {
	Cohort        string  `json:"cohort"`
	TopSimilarity float64 `json:"top_similarity"`
	UnlockedCount int     `json:"unlocked_count"`
	Unlocked      bool    `json:"unlocked"`
}

// Classify no exige que matches venga ordenado. Sin matches => clan de abajo, no unlocked.
func (c Classifier) Classify(matches []domain.MatchResult) Classification {
	top := 0.0
	for i, m := range matches {
		if i == 0 || m.Similarity > top {
			top = m.Similarity
		}
	}
	count := c.UnlockedCount(matches)
	return Classification{
		Cohort:        c.Cohort(top),
		TopSimilarity: top,
		UnlockedCount: count,
		Unlocked:      count > 0,
	}
}
