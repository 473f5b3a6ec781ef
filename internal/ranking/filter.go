package ranking

import (
	"strings"

	"github.com/mzzb-project/animerank/internal/model"
)

// Filter returns the subset of records eligible for ranking, preserving
// input order. A record is dropped when its notes contain any exclusion
// marker (substring match, case-sensitive) or when no platform carries a
// usable rating. Pure function; the input slice is not modified.
func Filter(records []model.AnimeRecord, markers []string) []model.AnimeRecord {
	eligible := make([]model.AnimeRecord, 0, len(records))
	for _, r := range records {
		if Excluded(r, markers) {
			continue
		}
		eligible = append(eligible, r)
	}
	return eligible
}

// Excluded reports whether a single record is ineligible for ranking.
func Excluded(r model.AnimeRecord, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(r.Notes, m) {
			return true
		}
	}
	return !r.HasAnyRating()
}
