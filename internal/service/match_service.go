package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"blupr/internal/domain"
	"blupr/internal/engine"
	"blupr/internal/repository"
)

// MatchService rankea un blueprint contra los perfiles guardados y clasifica el clan.
type MatchService struct {
	logger     *zap.Logger
	encoder    *engine.Encoder
	classifier engine.Classifier
	profiles   repository.ProfileRepository
	poolSize   int
}

type MatchReport struct {
	Matches        []domain.MatchResult  `json:"matches"`
	Classification engine.Classification `json:"classification"`
}

func NewMatchService(
	logger *zap.Logger,
	encoder *engine.Encoder,
	classifier engine.Classifier,
	profiles repository.ProfileRepository,
	poolSize int,
) *MatchService {
	if poolSize <= 0 {
		poolSize = 200
	}
	return &MatchService{
		logger:     logger,
		encoder:    encoder,
		classifier: classifier,
		profiles:   profiles,
		poolSize:   poolSize,
	}
}

// Match compara responses contra los poolSize perfiles más cercanos (pgvector) y rankea con
// vectores recalculados desde las respuestas guardadas. La clasificación usa todo el pool;
// limit > 0 sólo recorta la lista devuelta.
func (s *MatchService) Match(ctx context.Context, identity string, responses domain.ResponseSet, limit int) (MatchReport, error) {
	if s == nil || s.profiles == nil || s.encoder == nil {
		return MatchReport{}, ErrServiceNotConfigured
	}
	target := s.encoder.Encode(responses)
	pool, err := s.profiles.Nearest(ctx, target, identity, s.poolSize)
	if err != nil {
		return MatchReport{}, fmt.Errorf("%w: load candidates: %v", ErrPersistence, err)
	}

	candidates := make([]engine.Candidate, 0, len(pool))
	for _, p := range pool {
		candidates = append(candidates, engine.Candidate{
			Identity:    p.Identity,
			DisplayName: p.DisplayName,
			Vector:      s.encoder.Encode(p.Responses),
		})
	}
	matches, err := engine.Rank(target, candidates)
	if err != nil {
		return MatchReport{}, err
	}
	report := MatchReport{
		Matches:        matches,
		Classification: s.classifier.Classify(matches),
	}
	if limit > 0 && len(report.Matches) > limit {
		report.Matches = report.Matches[:limit]
	}
	if s.logger != nil {
		s.logger.Debug("matches ranked",
			zap.String("identity", identity),
			zap.Int("candidates", len(candidates)),
			zap.String("cohort", report.Classification.Cohort),
		)
	}
	return report, nil
}
