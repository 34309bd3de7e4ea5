package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmerrors "github.com/codemap-dev/codemap/internal/errors"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.True(t, cfg.Signals.BM25F)
	assert.True(t, cfg.Signals.Heuristic)
	assert.Equal(t, 60, cfg.Fusion.RRFConstant)
	assert.Equal(t, int64(10*1024*1024), cfg.Performance.MaxFileSize)
}

func TestLoad_ReadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := `
version: 1
paths:
  exclude:
    - "generated/**"
signals:
  bm25f: true
  heuristic: true
  centrality: false
  recency: false
budget:
  max_tokens: 8000
  min_score: 0.01
fusion:
  rrf_constant: 30
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.False(t, cfg.Signals.Centrality)
	assert.Equal(t, int64(8000), cfg.Budget.MaxTokens)
	assert.Equal(t, 30, cfg.Fusion.RRFConstant)
	assert.Equal(t, []string{"generated/**"}, cfg.Paths.Exclude)
}

func TestLoad_MalformedYAMLIsFatal(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("budget: ["), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, cmerrors.IsFatal(err))
	assert.Equal(t, cmerrors.ErrCodeConfigInvalid, cmerrors.GetCode(err))
}

func TestValidate_RejectsNegativeBudget(t *testing.T) {
	cfg := Default()
	cfg.Budget.MaxBytes = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, cmerrors.IsFatal(err))
}

func TestValidate_RejectsNonPositiveRRFConstant(t *testing.T) {
	cfg := Default()
	cfg.Fusion.RRFConstant = 0

	require.Error(t, cfg.Validate())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CODEMAP_RRF_CONSTANT", "10")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Fusion.RRFConstant)
}
