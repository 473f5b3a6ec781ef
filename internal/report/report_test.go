package report

import (
	"os"
	"testing"

	"github.com/mzzb-project/animerank/internal/apperr"
	"github.com/mzzb-project/animerank/internal/config"
	"github.com/mzzb-project/animerank/internal/model"
	"github.com/mzzb-project/animerank/internal/pipeline"
	"gopkg.in/yaml.v3"
)

func TestSave(t *testing.T) {
	ranked := []model.RankedRecord{
		{
			AnimeRecord:   model.AnimeRecord{Row: 3, OriginalTitle: "作品A", TranslatedTitle: "A"},
			Composite:     model.Score{Value: 8.5, Valid: true},
			CompositeRank: 1,
		},
		{
			AnimeRecord:   model.AnimeRecord{Row: 4, OriginalTitle: "作品B"},
			Composite:     model.Score{Value: 7.2, Valid: true},
			CompositeRank: 2,
		},
	}
	ranked[0].PlatformRanks[model.Bangumi] = 1

	res := &pipeline.Result{
		OutputPath: "out.xlsx",
		Processed:  3,
		Eligible:   2,
		Excluded:   1,
		Ranked:     ranked,
		Warnings:   []apperr.Warning{{Row: 5, Column: "Anilist", Msg: "malformed rating"}},
	}

	dir := t.TempDir()
	path, err := Save("mzzb.xlsx", config.Default(), res, dir)
	if err != nil {
		t.Fatalf("Expected save to succeed, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var rep Report
	if err := yaml.Unmarshal(data, &rep); err != nil {
		t.Fatalf("Expected valid yaml, got %v", err)
	}

	if rep.Summary.Processed != 3 || rep.Summary.Eligible != 2 || rep.Summary.Excluded != 1 {
		t.Errorf("Unexpected summary: %+v", rep.Summary)
	}
	if rep.Summary.Warnings != 1 || len(rep.Warnings) != 1 {
		t.Errorf("Expected 1 warning in report, got %+v", rep.Warnings)
	}
	if len(rep.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(rep.Results))
	}
	if rep.Results[0].OriginalTitle != "作品A" || rep.Results[0].CompositeRank != 1 {
		t.Errorf("Unexpected first result: %+v", rep.Results[0])
	}
	if rep.Results[0].CompositeScore == nil || *rep.Results[0].CompositeScore != 8.5 {
		t.Errorf("Expected composite score 8.5, got %v", rep.Results[0].CompositeScore)
	}
	if rep.Results[0].PlatformRanks["Bangumi"] != 1 {
		t.Errorf("Expected Bangumi rank 1, got %v", rep.Results[0].PlatformRanks)
	}
	if rep.Config.Weights != config.Default().Weights {
		t.Errorf("Expected default weights in config section, got %+v", rep.Config.Weights)
	}
}
