package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	InputDir string `toml:"input_dir"`
	LogDir   string `toml:"log_dir"`
}

// Reference points at externally maintained lookup tables. Empty alias paths
// keep the tables bundled with the binary.
type Reference struct {
	OutletAliasesPath string `toml:"outlet_aliases_path"`
	CriticAliasesPath string `toml:"critic_aliases_path"`
	OverridesPath     string `toml:"overrides_path"`
}

// Matching tunes near-duplicate detection.
type Matching struct {
	MaxEditDistance       int     `toml:"max_edit_distance"`
	MinNameLength         int     `toml:"min_name_length"`
	MergeConfidenceFloor  float64 `toml:"merge_confidence_floor"`
	PartialNameConfidence float64 `toml:"partial_name_confidence"`
}

// Scoring holds signal anchors and bucket boundaries.
type Scoring struct {
	DisagreementDelta int `toml:"disagreement_delta"`
	ThumbUp           int `toml:"thumb_up"`
	ThumbMeh          int `toml:"thumb_meh"`
	ThumbDown         int `toml:"thumb_down"`
	RatingFloor       int `toml:"rating_floor"`
	RatingCeiling     int `toml:"rating_ceiling"`
	Rave              int `toml:"rave"`
	Positive          int `toml:"positive"`
	Mixed             int `toml:"mixed"`
	Negative          int `toml:"negative"`
}

// Audit holds release-gate thresholds.
type Audit struct {
	MaxAmbiguousClusterRatio float64 `toml:"max_ambiguous_cluster_ratio"`
	MaxHighDisagreementRatio float64 `toml:"max_high_disagreement_ratio"`
	MaxLowConfidenceRatio    float64 `toml:"max_low_confidence_ratio"`
	AffinityMinReviews       int     `toml:"affinity_min_reviews"`
	AffinityMinShare         float64 `toml:"affinity_min_share"`
}

// Workflow controls pipeline concurrency.
type Workflow struct {
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for marquee.
//
// Configuration sections by subsystem:
//   - Paths: input, data, and log directories
//   - Reference: alias tables and the human override table
//   - Matching: similarity bounds and the merge floor
//   - Scoring: signal anchors, disagreement delta, bucket bounds
//   - Audit: gate thresholds and critic affinity
//   - Workflow: per-show worker count
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Reference Reference `toml:"reference"`
	Matching  Matching  `toml:"matching"`
	Scoring   Scoring   `toml:"scoring"`
	Audit     Audit     `toml:"audit"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// StorePath is the canonical review database location.
func (c *Config) StorePath() string {
	return filepath.Join(c.Paths.DataDir, "canonical.db")
}

// AuditReportPath is where the latest audit report is written.
func (c *Config) AuditReportPath() string {
	return filepath.Join(c.Paths.DataDir, "audit_report.json")
}

// RegistryPath is where the latest critic registry is written.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.DataDir, "critic_registry.json")
}

// LockPath is the run lock guarding the data directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "marquee.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
