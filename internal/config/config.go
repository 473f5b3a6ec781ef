// Package config holds the explicit configuration value consumed by the
// pipeline. There is no process-wide state; a Config is built once per run
// and passed down, so Process stays safely callable multiple times.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mzzb-project/animerank/internal/apperr"
	"github.com/mzzb-project/animerank/internal/model"
	"gopkg.in/yaml.v3"
)

// weightTolerance absorbs float drift when checking that weights sum to 1.0.
const weightTolerance = 1e-9

// Weights holds the per-platform contribution to the composite score.
// The four weights must sum to 1.0.
type Weights struct {
	Bangumi     float64 `yaml:"bangumi"`
	Anilist     float64 `yaml:"anilist"`
	MyAnimeList float64 `yaml:"myanimelist"`
	Filmarks    float64 `yaml:"filmarks"`
}

// Of returns the weight for p.
func (w Weights) Of(p model.Platform) float64 {
	switch p {
	case model.Bangumi:
		return w.Bangumi
	case model.Anilist:
		return w.Anilist
	case model.MyAnimeList:
		return w.MyAnimeList
	case model.Filmarks:
		return w.Filmarks
	default:
		return 0
	}
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.Bangumi + w.Anilist + w.MyAnimeList + w.Filmarks
}

// Validate checks the weights are non-negative and sum to 1.0.
func (w Weights) Validate() error {
	for _, p := range model.Platforms {
		if w.Of(p) < 0 {
			return apperr.Configf("weight for %s is negative: %v", p, w.Of(p))
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return apperr.Configf("weights must sum to 1.0, got %v", w.Sum())
	}
	return nil
}

// Config is the full configuration surface for one processing run.
type Config struct {
	Weights          Weights  `yaml:"weights"`
	ExclusionMarkers []string `yaml:"exclusion_markers"`

	// SheetName selects the worksheet; empty means the first sheet.
	SheetName string `yaml:"sheet"`
	// HeaderRow is the 1-based row holding the column headers. The row
	// above it (the title banner in the stock layout) is ignored.
	HeaderRow int `yaml:"header_row"`

	// OutputPath overrides the derived output file name.
	OutputPath string `yaml:"output"`
}

// Default returns the stock configuration matching the published sheet
// layout and weighting.
func Default() *Config {
	return &Config{
		Weights: Weights{
			Bangumi:     0.5,
			Anilist:     0.2,
			MyAnimeList: 0.1,
			Filmarks:    0.2,
		},
		ExclusionMarkers: []string{"*时长不足", "*数据不足"},
		HeaderRow:        2,
	}
}

// Load reads a YAML config file, filling unset fields from Default. An
// empty path means no config file and yields the defaults; a path that was
// given but cannot be read is an error, so a typoed path never silently
// ranks with stock weights.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.IO(path, err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperr.Configf("failed to parse config file %s: %v", path, err)
	}
	if cfg.HeaderRow <= 0 {
		cfg.HeaderRow = Default().HeaderRow
	}
	return cfg, nil
}

// Validate checks the config before any I/O happens.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if len(c.ExclusionMarkers) == 0 {
		return apperr.Configf("exclusion marker set is empty")
	}
	if c.HeaderRow <= 0 {
		return apperr.Configf("header row must be positive, got %d", c.HeaderRow)
	}
	return nil
}

// ResolveOutput returns the output path for inputPath: the configured
// OutputPath when set, otherwise "<stem>_ranked.xlsx" next to the input.
// The output is always distinct from the input so the run is retryable.
func (c *Config) ResolveOutput(inputPath string) string {
	if c.OutputPath != "" {
		return c.OutputPath
	}
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(inputPath, ext)
	if ext == "" {
		ext = ".xlsx"
	}
	return fmt.Sprintf("%s_ranked%s", stem, ext)
}
