// Package ranking computes weighted composite scores and competition ranks
// over eligible records. Rankers here are stateless: records in, ranked
// records out, no retained state between calls.
package ranking

import (
	"sort"

	"github.com/mzzb-project/animerank/internal/config"
	"github.com/mzzb-project/animerank/internal/model"
)

// Candidate is one record under rank assignment, carrying the score being
// ranked (a platform rating or the composite score).
type Candidate struct {
	Score  float64
	Record *model.AnimeRecord
}

// Comparator orders two candidates for rank assignment. Negative means a
// ranks ahead of b, zero means they tie and share a rank.
type Comparator func(a, b Candidate) int

// ByScoreDesc is the default comparator: higher score ranks first, equal
// scores tie. No secondary key is applied, matching the source sheets where
// equal ratings always share a rank regardless of vote counts.
func ByScoreDesc(a, b Candidate) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	default:
		return 0
	}
}

// Option customizes rank computation.
type Option func(*options)

type options struct {
	cmp Comparator
}

// WithComparator replaces the tie-break comparator used for every rank
// column. Candidates comparing equal share a rank (competition ranking).
func WithComparator(cmp Comparator) Option {
	return func(o *options) { o.cmp = cmp }
}

// Rank computes per-platform and composite competition ranks for the given
// eligible records. The returned slice preserves input order; rank fields
// hold zero where a record has no usable score for that column.
//
// The composite score is the weighted sum over present platforms divided by
// the sum of their weights, so records missing a platform are not penalized
// for the absence itself. Weights are assumed validated by the caller.
func Rank(records []model.AnimeRecord, weights config.Weights, opts ...Option) []model.RankedRecord {
	o := options{cmp: ByScoreDesc}
	for _, opt := range opts {
		opt(&o)
	}

	ranked := make([]model.RankedRecord, len(records))
	for i, r := range records {
		ranked[i] = model.RankedRecord{AnimeRecord: r}
		if score, ok := Composite(&r, weights); ok {
			ranked[i].Composite = model.Score{Value: score, Valid: true}
		}
	}

	for _, p := range model.Platforms {
		assign(ranked, o.cmp,
			func(r *model.RankedRecord) (float64, bool) { return r.PlatformScore(p) },
			func(r *model.RankedRecord, rank int) { r.PlatformRanks[p] = rank },
		)
	}
	assign(ranked, o.cmp,
		func(r *model.RankedRecord) (float64, bool) { return r.Composite.Value, r.Composite.Valid },
		func(r *model.RankedRecord, rank int) { r.CompositeRank = rank },
	)

	return ranked
}

// Composite returns the renormalized weighted score for r, or false when no
// platform contributes (zero total weight included).
func Composite(r *model.AnimeRecord, weights config.Weights) (float64, bool) {
	var sum, totalWeight float64
	for _, p := range model.Platforms {
		score, ok := r.PlatformScore(p)
		if !ok {
			continue
		}
		w := weights.Of(p)
		sum += score * w
		totalWeight += w
	}
	if totalWeight <= 0 {
		return 0, false
	}
	return sum / totalWeight, true
}

// assign computes standard competition ranks (ties share the minimum rank,
// following ranks skip, e.g. 1,2,2,4) for every record whose score is
// present, writing zero for the rest.
func assign(ranked []model.RankedRecord, cmp Comparator, score func(*model.RankedRecord) (float64, bool), set func(*model.RankedRecord, int)) {
	type entry struct {
		idx  int
		cand Candidate
	}
	entries := make([]entry, 0, len(ranked))
	for i := range ranked {
		v, ok := score(&ranked[i])
		if !ok {
			set(&ranked[i], 0)
			continue
		}
		entries = append(entries, entry{idx: i, cand: Candidate{Score: v, Record: &ranked[i].AnimeRecord}})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return cmp(entries[a].cand, entries[b].cand) < 0
	})

	rank := 0
	for i, e := range entries {
		if i == 0 || cmp(entries[i-1].cand, e.cand) != 0 {
			rank = i + 1
		}
		set(&ranked[e.idx], rank)
	}
}
