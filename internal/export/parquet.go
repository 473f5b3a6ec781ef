// Package export writes ranked records to a Parquet file for downstream
// analysis tooling.
package export

import (
	"fmt"
	"os"

	"github.com/mzzb-project/animerank/internal/model"
	"github.com/parquet-go/parquet-go"
)

// Row is the flat Parquet schema for one ranked record. Zero ranks and
// scores mean the value was absent in the source.
type Row struct {
	SheetRow        int32   `parquet:"sheet_row"`
	OriginalTitle   string  `parquet:"original_title"`
	TranslatedTitle string  `parquet:"translated_title"`
	Notes           string  `parquet:"notes"`

	BangumiScore     float64 `parquet:"bangumi_score"`
	BangumiVotes     int64   `parquet:"bangumi_votes"`
	BangumiRank      int32   `parquet:"bangumi_rank"`
	AnilistScore     float64 `parquet:"anilist_score"`
	AnilistVotes     int64   `parquet:"anilist_votes"`
	AnilistRank      int32   `parquet:"anilist_rank"`
	MyAnimeListScore float64 `parquet:"myanimelist_score"`
	MyAnimeListVotes int64   `parquet:"myanimelist_votes"`
	MyAnimeListRank  int32   `parquet:"myanimelist_rank"`
	FilmarksScore    float64 `parquet:"filmarks_score"`
	FilmarksVotes    int64   `parquet:"filmarks_votes"`
	FilmarksRank     int32   `parquet:"filmarks_rank"`

	CompositeScore float64 `parquet:"composite_score"`
	CompositeRank  int32   `parquet:"composite_rank"`
}

// WriteParquet writes ranked records to path.
func WriteParquet(path string, ranked []model.RankedRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	w := parquet.NewGenericWriter[Row](file)
	rows := make([]Row, 0, len(ranked))
	for i := range ranked {
		rows = append(rows, toRow(&ranked[i]))
	}
	if _, err := w.Write(rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		file.Close()
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return file.Close()
}

func toRow(r *model.RankedRecord) Row {
	row := Row{
		SheetRow:        int32(r.Row),
		OriginalTitle:   r.OriginalTitle,
		TranslatedTitle: r.TranslatedTitle,
		Notes:           r.Notes,
		CompositeRank:   int32(r.CompositeRank),
	}
	if r.Composite.Valid {
		row.CompositeScore = r.Composite.Value
	}

	set := func(p model.Platform, score *float64, votes *int64, rank *int32) {
		if s := r.Rating(p); s.Valid {
			*score = s.Value
		}
		if v := r.VoteCounts[p]; v.Valid {
			*votes = int64(v.Count)
		}
		*rank = int32(r.PlatformRank(p))
	}
	set(model.Bangumi, &row.BangumiScore, &row.BangumiVotes, &row.BangumiRank)
	set(model.Anilist, &row.AnilistScore, &row.AnilistVotes, &row.AnilistRank)
	set(model.MyAnimeList, &row.MyAnimeListScore, &row.MyAnimeListVotes, &row.MyAnimeListRank)
	set(model.Filmarks, &row.FilmarksScore, &row.FilmarksVotes, &row.FilmarksRank)
	return row
}
