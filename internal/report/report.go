// Package report renders a YAML summary of one processing run so data
// quality and ranking outcomes can be reviewed without opening the
// spreadsheet.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mzzb-project/animerank/internal/apperr"
	"github.com/mzzb-project/animerank/internal/config"
	"github.com/mzzb-project/animerank/internal/model"
	"github.com/mzzb-project/animerank/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// RunConfig is the configuration section of the report.
type RunConfig struct {
	Input            string         `yaml:"input"`
	Output           string         `yaml:"output"`
	Weights          config.Weights `yaml:"weights"`
	ExclusionMarkers []string       `yaml:"exclusion_markers"`
	Timestamp        string         `yaml:"timestamp"`
}

// RecordResult is one ranked record in the report.
type RecordResult struct {
	Row             int      `yaml:"row"`
	OriginalTitle   string   `yaml:"original_title"`
	TranslatedTitle string   `yaml:"translated_title,omitempty"`
	CompositeScore  *float64 `yaml:"composite_score,omitempty"`
	CompositeRank   int      `yaml:"composite_rank,omitempty"`

	PlatformRanks map[string]int `yaml:"platform_ranks,omitempty"`
}

// Summary aggregates run counts.
type Summary struct {
	Processed int `yaml:"processed"`
	Eligible  int `yaml:"eligible"`
	Excluded  int `yaml:"excluded"`
	Warnings  int `yaml:"warnings"`
}

// Report is the complete YAML document.
type Report struct {
	Config   RunConfig        `yaml:"config"`
	Summary  Summary          `yaml:"summary"`
	Results  []RecordResult   `yaml:"results"`
	Warnings []apperr.Warning `yaml:"warnings,omitempty"`
}

// Save writes the run report to dir as <input-stem>-<timestamp>.yaml and
// returns the written path.
func Save(inputPath string, cfg *config.Config, res *pipeline.Result, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	rep := Report{
		Config: RunConfig{
			Input:            inputPath,
			Output:           res.OutputPath,
			Weights:          cfg.Weights,
			ExclusionMarkers: cfg.ExclusionMarkers,
			Timestamp:        timestamp,
		},
		Summary: Summary{
			Processed: res.Processed,
			Eligible:  res.Eligible,
			Excluded:  res.Excluded,
			Warnings:  len(res.Warnings),
		},
		Results:  make([]RecordResult, 0, len(res.Ranked)),
		Warnings: res.Warnings,
	}

	for i := range res.Ranked {
		rep.Results = append(rep.Results, recordResult(&res.Ranked[i]))
	}

	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", stem, timestamp))

	data, err := yaml.Marshal(&rep)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

func recordResult(r *model.RankedRecord) RecordResult {
	res := RecordResult{
		Row:             r.Row,
		OriginalTitle:   r.OriginalTitle,
		TranslatedTitle: r.TranslatedTitle,
		CompositeRank:   r.CompositeRank,
	}
	if r.Composite.Valid {
		v := r.Composite.Value
		res.CompositeScore = &v
	}
	for _, p := range model.Platforms {
		if rank := r.PlatformRank(p); rank > 0 {
			if res.PlatformRanks == nil {
				res.PlatformRanks = make(map[string]int)
			}
			res.PlatformRanks[p.String()] = rank
		}
	}
	return res
}
