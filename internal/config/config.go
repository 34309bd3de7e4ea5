// Package config loads and validates codemap project configuration.
//
// Configuration is read from .codemap.yaml at the project root, with
// environment variable overrides (CODEMAP_*) applied on top. Validation
// happens before any indexing or scoring work begins; a malformed config
// is a fatal error.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	cmerrors "github.com/codemap-dev/codemap/internal/errors"
)

// ConfigFileName is the per-project configuration file.
const ConfigFileName = ".codemap.yaml"

// DataDirName is the directory under the project root holding the
// persisted index. It is always excluded from scanning.
const DataDirName = ".codemap"

// Config is the complete codemap configuration.
type Config struct {
	Version     int               `yaml:"version"`
	Paths       PathsConfig       `yaml:"paths"`
	Signals     SignalsConfig     `yaml:"signals"`
	Budget      BudgetConfig      `yaml:"budget"`
	Fusion      FusionConfig      `yaml:"fusion"`
	Performance PerformanceConfig `yaml:"performance"`
}

// PathsConfig configures which paths to include and exclude.
type PathsConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// SignalsConfig toggles individual ranking signals.
type SignalsConfig struct {
	BM25F      bool `yaml:"bm25f"`
	Heuristic  bool `yaml:"heuristic"`
	Centrality bool `yaml:"centrality"`
	Recency    bool `yaml:"recency"`
}

// BudgetConfig constrains the final selection.
// Zero values mean "no limit" for MaxBytes/MaxTokens and "no threshold"
// for MinScore.
type BudgetConfig struct {
	MaxBytes  int64   `yaml:"max_bytes"`
	MaxTokens int64   `yaml:"max_tokens"`
	MinScore  float64 `yaml:"min_score"`
}

// FusionConfig configures rank fusion.
type FusionConfig struct {
	// RRFConstant is the RRF smoothing parameter k. Default: 60.
	RRFConstant int `yaml:"rrf_constant"`
}

// PerformanceConfig tunes the indexing worker pool.
type PerformanceConfig struct {
	// Workers is the number of concurrent extraction workers (0 = NumCPU).
	Workers int `yaml:"workers"`
	// MaxFileSize is the largest file to index, in bytes (0 = 10MB).
	MaxFileSize int64 `yaml:"max_file_size"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Version: 1,
		Signals: SignalsConfig{
			BM25F:      true,
			Heuristic:  true,
			Centrality: true,
			Recency:    true,
		},
		Fusion: FusionConfig{RRFConstant: 60},
		Performance: PerformanceConfig{
			MaxFileSize: 10 * 1024 * 1024,
		},
	}
}

// Load reads configuration for the given project root.
// A missing config file yields defaults; a malformed one is fatal.
func Load(root string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, cfg.Validate()
		}
		return nil, cmerrors.ConfigError("cannot read "+ConfigFileName, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, cmerrors.ConfigError("malformed "+ConfigFileName, err)
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies CODEMAP_* environment overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CODEMAP_RRF_CONSTANT"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Fusion.RRFConstant = k
		}
	}
	if v := os.Getenv("CODEMAP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Performance.Workers = n
		}
	}
}

// Validate checks invariants that must hold before any work begins.
func (c *Config) Validate() error {
	if c.Budget.MaxBytes < 0 {
		return cmerrors.ConfigError("budget.max_bytes must be >= 0", nil)
	}
	if c.Budget.MaxTokens < 0 {
		return cmerrors.ConfigError("budget.max_tokens must be >= 0", nil)
	}
	if c.Budget.MinScore < 0 {
		return cmerrors.ConfigError("budget.min_score must be >= 0", nil)
	}
	if c.Fusion.RRFConstant <= 0 {
		return cmerrors.ConfigError("fusion.rrf_constant must be > 0", nil)
	}
	if c.Performance.Workers < 0 {
		return cmerrors.ConfigError("performance.workers must be >= 0", nil)
	}
	if c.Performance.MaxFileSize < 0 {
		return cmerrors.ConfigError("performance.max_file_size must be >= 0", nil)
	}
	return nil
}
