package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codemap-dev/codemap/internal/index"
	"github.com/codemap-dev/codemap/internal/scanner"
)

func testState() *index.State {
	s := index.NewState()
	add := func(path string, role scanner.Role, size int64, terms map[string]index.FieldFreq) {
		e := &index.FileEntry{
			Info:  scanner.FileInfo{Path: path, Size: size, Role: role},
			Terms: terms,
		}
		for _, f := range terms {
			e.DocLength += f.Weighted()
		}
		s.Files[path] = e
		s.TotalDocLength += e.DocLength
		for term := range terms {
			s.DocFreq[term]++
		}
	}

	add("auth/login.go", scanner.RoleImplementation, 900, map[string]index.FieldFreq{
		"auth":  {Filename: 1, Body: 3},
		"login": {Filename: 1, Symbols: 1, Body: 5},
		"user":  {Body: 4},
	})
	add("auth/session_test.go", scanner.RoleTest, 1200, map[string]index.FieldFreq{
		"auth":    {Filename: 1, Body: 2},
		"session": {Filename: 1, Symbols: 1, Body: 6},
		"login":   {Body: 1},
	})
	add("util/math.go", scanner.RoleImplementation, 400, map[string]index.FieldFreq{
		"util": {Filename: 1, Body: 1},
		"math": {Filename: 1, Body: 2},
		"add":  {Symbols: 1, Body: 3},
	})
	return s
}

func scoreOf(scores []FileScore, path string) float64 {
	for _, s := range scores {
		if s.Path == path {
			return s.Score
		}
	}
	return -1
}

func TestBM25F_RanksMatchingFileFirst(t *testing.T) {
	state := testState()
	scores := BM25F("login auth", state)
	require.Len(t, scores, 3)

	login := scoreOf(scores, "auth/login.go")
	test := scoreOf(scores, "auth/session_test.go")
	math := scoreOf(scores, "util/math.go")

	assert.Greater(t, login, test)
	assert.Greater(t, test, math)
	assert.Zero(t, math)
}

func TestBM25F_EmptyQueryScoresZero(t *testing.T) {
	scores := BM25F("", testState())
	require.Len(t, scores, 3)
	for _, s := range scores {
		assert.Zero(t, s.Score)
	}
}

func TestBM25F_EmptyIndex(t *testing.T) {
	scores := BM25F("anything", index.NewState())
	assert.Empty(t, scores)
}

func TestBM25F_FilenameOutweighsBody(t *testing.T) {
	s := index.NewState()
	s.Files["a/query.go"] = &index.FileEntry{
		Info:      scanner.FileInfo{Path: "a/query.go"},
		Terms:     map[string]index.FieldFreq{"query": {Filename: 1}},
		DocLength: 5,
	}
	s.Files["b/other.go"] = &index.FileEntry{
		Info:      scanner.FileInfo{Path: "b/other.go"},
		Terms:     map[string]index.FieldFreq{"query": {Body: 1}},
		DocLength: 5,
	}
	s.DocFreq["query"] = 2
	s.TotalDocLength = 10

	scores := BM25F("query", s)
	assert.Greater(t, scoreOf(scores, "a/query.go"), scoreOf(scores, "b/other.go"))
}

func TestHeuristic_ImplementationBeatsTest(t *testing.T) {
	scores := Heuristic("", testState())

	impl := scoreOf(scores, "auth/login.go")
	test := scoreOf(scores, "auth/session_test.go")
	assert.Greater(t, impl, test)
}

func TestHeuristic_KeywordOverlapLifts(t *testing.T) {
	with := Heuristic("login", testState())
	without := Heuristic("zzz", testState())

	assert.Greater(t, scoreOf(with, "auth/login.go"), scoreOf(without, "auth/login.go"))
}

func TestHeuristic_ScoresClamped(t *testing.T) {
	for _, s := range Heuristic("auth login util math", testState()) {
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 1.0)
	}
}

func TestRecency_LogNormalized(t *testing.T) {
	state := testState()
	counts := map[string]int{
		"auth/login.go": 7,
		"util/math.go":  1,
	}

	scores := Recency(counts, state)
	require.NotNil(t, scores)

	assert.InDelta(t, 1.0, scoreOf(scores, "auth/login.go"), 1e-9)
	assert.Greater(t, scoreOf(scores, "util/math.go"), 0.0)
	assert.Less(t, scoreOf(scores, "util/math.go"), 1.0)
	assert.Zero(t, scoreOf(scores, "auth/session_test.go"))
}

func TestRecency_NoHistoryDisablesSignal(t *testing.T) {
	assert.Nil(t, Recency(nil, testState()))
	assert.Nil(t, Recency(map[string]int{"gone.go": 3}, testState()))
}

func TestCentralityScores_ReadsCache(t *testing.T) {
	state := testState()
	state.Centrality["auth/login.go"] = 1.0
	state.Centrality["util/math.go"] = 0.4

	scores := CentralityScores(state)
	require.NotNil(t, scores)
	assert.InDelta(t, 1.0, scoreOf(scores, "auth/login.go"), 1e-9)
	assert.Zero(t, scoreOf(scores, "auth/session_test.go"))
}

func TestCentralityScores_EmptyCache(t *testing.T) {
	assert.Nil(t, CentralityScores(testState()))
}

func TestSortDescending_TiesByPath(t *testing.T) {
	scores := []FileScore{
		{Path: "b.go", Score: 0.5},
		{Path: "a.go", Score: 0.5},
		{Path: "c.go", Score: 0.9},
	}
	SortDescending(scores)
	assert.Equal(t, "c.go", scores[0].Path)
	assert.Equal(t, "a.go", scores[1].Path)
	assert.Equal(t, "b.go", scores[2].Path)
}
