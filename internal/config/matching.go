package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical matching defaults file.
const DefaultConfigPath = "config/matching.defaults.json"

// MatchingConfig holds the tunable parameters for landmark targets and the
// objective that combines them. Every field is optional; the Get* methods
// supply defaults for anything left unset, so partial files are safe.
type MatchingConfig struct {
	// Target params
	DefaultWeight    *float64 `json:"default_weight,omitempty"`
	DefaultBandwidth *float64 `json:"default_bandwidth,omitempty"`
	PopulateGrid     *bool    `json:"populate_grid,omitempty"`
	GridQueryRadius  *float64 `json:"grid_query_radius,omitempty"`

	// Objective params
	MaxConcurrency    *int    `json:"max_concurrency,omitempty"`
	EvaluationTimeout *string `json:"evaluation_timeout,omitempty"` // duration string like "30s"
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyMatchingConfig returns a MatchingConfig with all fields set to nil.
func EmptyMatchingConfig() *MatchingConfig {
	return &MatchingConfig{}
}

// DefaultMatchingConfig returns a MatchingConfig with every field populated
// with its default.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		DefaultWeight:     ptrFloat64(1.0),
		DefaultBandwidth:  ptrFloat64(0),
		PopulateGrid:      ptrBool(false),
		GridQueryRadius:   ptrFloat64(1.0),
		MaxConcurrency:    ptrInt(0),
		EvaluationTimeout: ptrString("0s"),
	}
}

// LoadMatchingConfig loads a MatchingConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadMatchingConfig(path string) (*MatchingConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyMatchingConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *MatchingConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadMatchingConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

func nonNegative(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return fmt.Errorf("%s must be a finite non-negative number, got %f", name, *v)
	}
	return nil
}

// Validate checks that the configuration values are valid.
func (c *MatchingConfig) Validate() error {
	if err := nonNegative("default_weight", c.DefaultWeight); err != nil {
		return err
	}
	if err := nonNegative("default_bandwidth", c.DefaultBandwidth); err != nil {
		return err
	}
	if err := nonNegative("grid_query_radius", c.GridQueryRadius); err != nil {
		return err
	}

	if c.MaxConcurrency != nil && *c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative, got %d", *c.MaxConcurrency)
	}

	if c.EvaluationTimeout != nil && *c.EvaluationTimeout != "" {
		d, err := time.ParseDuration(*c.EvaluationTimeout)
		if err != nil {
			return fmt.Errorf("invalid evaluation_timeout '%s': %w", *c.EvaluationTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("evaluation_timeout must be non-negative, got %s", d)
		}
	}

	return nil
}

// GetDefaultWeight returns the default_weight value or the default.
func (c *MatchingConfig) GetDefaultWeight() float64 {
	if c.DefaultWeight == nil {
		return 1.0
	}
	return *c.DefaultWeight
}

// GetDefaultBandwidth returns the default_bandwidth value or the default.
func (c *MatchingConfig) GetDefaultBandwidth() float64 {
	if c.DefaultBandwidth == nil {
		return 0
	}
	return *c.DefaultBandwidth
}

// GetPopulateGrid returns the populate_grid value or the default.
func (c *MatchingConfig) GetPopulateGrid() bool {
	if c.PopulateGrid == nil {
		return false
	}
	return *c.PopulateGrid
}

// GetGridQueryRadius returns the grid_query_radius value or the default.
func (c *MatchingConfig) GetGridQueryRadius() float64 {
	if c.GridQueryRadius == nil {
		return 1.0
	}
	return *c.GridQueryRadius
}

// GetMaxConcurrency returns the max_concurrency value or the default.
// Zero means no limit beyond GOMAXPROCS.
func (c *MatchingConfig) GetMaxConcurrency() int {
	if c.MaxConcurrency == nil {
		return 0
	}
	return *c.MaxConcurrency
}

// GetEvaluationTimeout parses and returns the EvaluationTimeout.
// Zero disables the timeout.
func (c *MatchingConfig) GetEvaluationTimeout() time.Duration {
	if c.EvaluationTimeout == nil || *c.EvaluationTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.EvaluationTimeout)
	if err != nil {
		return 0 // default on parse error
	}
	return d
}
