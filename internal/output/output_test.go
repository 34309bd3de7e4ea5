package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemap-dev/codemap/pkg/engine"
)

func sample() []engine.ScoredFile {
	return []engine.ScoredFile{
		{
			Path: "auth/login.go", Score: 0.0421, Size: 1536, Tokens: 384,
			Language: "go", Role: "impl",
			Signals:  map[string]float64{"bm25f": 2.4510, "heuristic": 0.6500},
			Ranks:    map[string]int{"bm25f": 1, "heuristic": 2},
		},
		{Path: "util/math.go", Score: 0.0135, Size: 80, Tokens: 20, Language: "go", Role: "impl"},
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sample(), false))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "auth/login.go", records[0]["path"])
	assert.Equal(t, "go", records[0]["language"])
	assert.Equal(t, "impl", records[0]["role"])
	assert.Equal(t, float64(384), records[0]["tokens"])
	assert.NotContains(t, records[0], "signals")
	assert.NotContains(t, records[0], "ranks")
}

func TestRender_JSONExplain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sample(), true))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	assert.Contains(t, records[0], "signals")
	assert.Contains(t, records[0], "ranks")
	signals := records[0]["signals"].(map[string]any)
	assert.InDelta(t, 2.4510, signals["bm25f"], 1e-9)
}

func TestRender_JSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSONL, sample(), false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
	}
}

func TestRender_Human(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatHuman, sample(), true))

	out := buf.String()
	assert.Contains(t, out, "auth/login.go")
	assert.Contains(t, out, "1.5KB")
	assert.Contains(t, out, "go/impl")
	assert.Contains(t, out, "bm25f=2.4510(#1)  heuristic=0.6500(#2)")
}

func TestRender_HumanEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatHuman, nil, false))
	assert.Contains(t, buf.String(), "no results")
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "80B", humanSize(80))
	assert.Equal(t, "1.5KB", humanSize(1536))
	assert.Equal(t, "2.0MB", humanSize(2<<20))
}
