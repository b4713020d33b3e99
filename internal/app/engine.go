package app

import (
	"fmt"

	"go.uber.org/zap"

	"blupr/internal/catalog"
	"blupr/internal/config"
	"blupr/internal/engine"
)

// Engine agrupa las piezas del motor construidas a partir de la configuración.
type Engine struct {
	Catalog    *catalog.Catalog
	Survey     *engine.Survey
	Encoder    *engine.Encoder
	Classifier engine.Classifier
}

// NewEngine carga el catálogo, verifica su tamaño y arma encuesta, encoder y clasificador.
func NewEngine(cfg config.EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if cfg.CatalogSize > 0 {
		if err := c.RequireSize(cfg.CatalogSize); err != nil {
			return nil, err
		}
	}
	gate, err := cfg.PulseGate()
	if err != nil {
		return nil, err
	}
	survey, err := engine.NewSurvey(c, cfg.OnboardingTarget, gate)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Catalog:    c,
		Survey:     survey,
		Encoder:    engine.NewEncoder(c, cfg.Floors()),
		Classifier: cfg.Classifier(),
	}, nil
}

// LogCatalog reporta el catálogo cargado y avisa por cada intensidad desconocida,
// que el encoder trata con el piso por defecto.
func (e *Engine) LogCatalog(logger *zap.Logger) {
	if logger == nil {
		return
	}
	logger.Info("catalog loaded", zap.Int("questions", e.Catalog.Len()), zap.Int("onboarding_target", e.Survey.Target()))
	for _, id := range e.Catalog.UnknownIntensities() {
		q, _ := e.Catalog.IndexOf(id)
		logger.Warn("unknown intensity, using default floor",
			zap.Int("question_id", id),
			zap.String("intensity", string(e.Catalog.At(q).Intensity)),
		)
	}
}

// Candidates convierte la población de ejemplo en candidatos para el ranking.
func (e *Engine) Candidates(demos []catalog.DemoProfile) []engine.Candidate {
	out := make([]engine.Candidate, 0, len(demos))
	for _, d := range demos {
		out = append(out, engine.Candidate{
			Identity:    d.Identity,
			DisplayName: d.Name,
			Vector:      e.Encoder.Encode(d.Responses),
		})
	}
	return out
}
