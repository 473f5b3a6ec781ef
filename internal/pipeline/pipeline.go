// Package pipeline wires the read -> filter -> rank -> write stages into
// the single Process entry point exposed to callers. The pipeline never
// prints; all outcomes travel back as the Result value or a structured
// error.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/mzzb-project/animerank/internal/apperr"
	"github.com/mzzb-project/animerank/internal/config"
	"github.com/mzzb-project/animerank/internal/model"
	"github.com/mzzb-project/animerank/internal/ranking"
	"github.com/mzzb-project/animerank/internal/sheet"
)

// Result summarizes one processing run.
type Result struct {
	OutputPath string
	Processed  int // rows parsed from the input
	Eligible   int // rows that received ranks
	Excluded   int // rows passed through unranked
	Ranked     []model.RankedRecord
	Warnings   []apperr.Warning
	Elapsed    time.Duration
}

// Process runs the full pipeline on inputPath with cfg and returns the
// output file path and run summary. Configuration is validated before any
// I/O; recovered per-cell data issues accumulate as warnings on the result
// and never abort the batch.
func Process(inputPath string, cfg *config.Config, opts ...ranking.Option) (*Result, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("reading workbook", "path", inputPath)
	sh, err := sheet.Read(inputPath, cfg)
	if err != nil {
		return nil, err
	}

	eligible := ranking.Filter(sh.Records, cfg.ExclusionMarkers)
	slog.Info("records filtered",
		"processed", len(sh.Records),
		"eligible", len(eligible),
		"excluded", len(sh.Records)-len(eligible))

	ranked := ranking.Rank(eligible, cfg.Weights, opts...)

	outPath, err := sheet.Write(sh, ranked, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("workbook written", "path", outPath)

	return &Result{
		OutputPath: outPath,
		Processed:  len(sh.Records),
		Eligible:   len(eligible),
		Excluded:   len(sh.Records) - len(eligible),
		Ranked:     ranked,
		Warnings:   sh.Warnings,
		Elapsed:    time.Since(start),
	}, nil
}
