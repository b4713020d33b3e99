package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"blupr/internal/catalog"
	"blupr/internal/config"
	"blupr/internal/engine"
)

func TestNewEngine_Defaults(t *testing.T) {
	e, err := NewEngine(config.Defaults())
	require.NoError(t, err)
	assert.Equal(t, 10, e.Catalog.Len())
	assert.Equal(t, 10, e.Survey.Target())
	assert.False(t, e.Survey.Pulse().Enabled())
	assert.Equal(t, "Kindred", e.Classifier.CohortAbove)

	candidates := e.Candidates(catalog.DemoProfiles())
	require.Len(t, candidates, 5)
	for _, c := range candidates {
		assert.Len(t, c.Vector, 10)
	}
}

func TestNewEngine_CatalogSizeMismatch(t *testing.T) {
	cfg := config.Defaults()
	cfg.CatalogSize = 12
	cfg.OnboardingTarget = 0
	_, err := NewEngine(cfg)
	assert.True(t, errors.Is(err, catalog.ErrSizeMismatch), "got %v", err)
}

func TestNewEngine_CustomCatalogAndTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `questions:
  - {id: 7, text: "a", trait: "A", hex_color: "#FF0000", intensity: high}
  - {id: 9, text: "b", trait: "B", hex_color: "#00FF00", intensity: low}
  - {id: 11, text: "c", trait: "C", hex_color: "#0000FF", intensity: weird}
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg := config.Defaults()
	cfg.CatalogPath = path
	cfg.CatalogSize = 3
	cfg.OnboardingTarget = 2
	cfg.PulseBatchSize = 1
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Survey.Target())

	st := engine.NewState()
	st, err = e.Survey.Answer(st, 7, 5)
	require.NoError(t, err)
	st, err = e.Survey.Answer(st, 11, 3)
	require.NoError(t, err)
	assert.True(t, e.Survey.IsComplete(st))

	core, logs := observer.New(zap.WarnLevel)
	e.LogCatalog(zap.New(core))
	warnings := logs.FilterMessage("unknown intensity, using default floor").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(11), warnings[0].ContextMap()["question_id"])
	assert.Equal(t, "weird", warnings[0].ContextMap()["intensity"])
}
