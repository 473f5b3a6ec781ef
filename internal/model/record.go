// Package model defines the in-memory records flowing through the ranking
// pipeline. All types are plain data; nothing here touches the spreadsheet
// library or survives past a single run.
package model

// Platform identifies one of the rating platforms aggregated into the
// composite score.
type Platform int

const (
	Bangumi Platform = iota
	Anilist
	MyAnimeList
	Filmarks
)

const platformCount = 4

// Platforms lists all platforms in canonical column order.
var Platforms = []Platform{Bangumi, Anilist, MyAnimeList, Filmarks}

func (p Platform) String() string {
	switch p {
	case Bangumi:
		return "Bangumi"
	case Anilist:
		return "Anilist"
	case MyAnimeList:
		return "MyAnimeList"
	case Filmarks:
		return "Filmarks"
	default:
		return "unknown"
	}
}

// Score is an optional decimal rating. Valid is false when the cell was
// blank or unparseable.
type Score struct {
	Value float64
	Valid bool
}

// Votes is an optional non-negative vote count.
type Votes struct {
	Count int
	Valid bool
}

// AnimeRecord is one sheet row. Row is the 1-based physical row in the input
// sheet and serves as the record identity, since titles may repeat.
type AnimeRecord struct {
	Row             int
	OriginalTitle   string
	TranslatedTitle string
	Notes           string
	Ratings         [platformCount]Score
	VoteCounts      [platformCount]Votes
}

// Rating returns the raw rating for p.
func (r *AnimeRecord) Rating(p Platform) Score { return r.Ratings[p] }

// SetRating records a rating for p.
func (r *AnimeRecord) SetRating(p Platform, v float64) {
	r.Ratings[p] = Score{Value: v, Valid: true}
}

// SetVotes records a vote count for p.
func (r *AnimeRecord) SetVotes(p Platform, n int) {
	r.VoteCounts[p] = Votes{Count: n, Valid: true}
}

// PlatformScore returns the rating used for ranking on p. A rating without
// its vote count, or a vote count without a rating, counts as missing for
// that platform only. Negative ratings also count as missing; an exact
// zero is a valid rating.
func (r *AnimeRecord) PlatformScore(p Platform) (float64, bool) {
	s, v := r.Ratings[p], r.VoteCounts[p]
	if !s.Valid || !v.Valid || s.Value < 0 {
		return 0, false
	}
	return s.Value, true
}

// HasAnyRating reports whether at least one platform carries a positive
// rating. A record whose only ratings are zero does not clear the bar for
// ranking, even though a zero rating still contributes to the composite of
// a record that does.
func (r *AnimeRecord) HasAnyRating() bool {
	for _, p := range Platforms {
		if v, ok := r.PlatformScore(p); ok && v > 0 {
			return true
		}
	}
	return false
}

// RankedRecord is an AnimeRecord with its computed composite score and rank
// assignments. A rank of zero means no rank (left blank in the output).
type RankedRecord struct {
	AnimeRecord
	Composite     Score
	PlatformRanks [platformCount]int
	CompositeRank int
}

// PlatformRank returns the assigned rank for p, zero when unranked.
func (r *RankedRecord) PlatformRank(p Platform) int { return r.PlatformRanks[p] }
