package sheet

import "github.com/mzzb-project/animerank/internal/model"

// Logical column names discovered from the header row. Column order in the
// sheet is not fixed; everything is located by name.
const (
	ColOriginalTitle   = "原名"
	ColTranslatedTitle = "译名"
	ColNotes           = "Notes"
	ColCompositeScore  = "综合评分"
	ColCompositeRank   = "排名"
	ColXScore          = "X"
	ColXFan            = "X_fan"
)

// ScoreColumn returns the header name of p's rating column.
func ScoreColumn(p model.Platform) string { return p.String() }

// TotalColumn returns the header name of p's vote-count column.
func TotalColumn(p model.Platform) string { return p.String() + "_total" }

// RankColumn returns the header name of p's rank column.
func RankColumn(p model.Platform) string { return p.String() + "_Rank" }

// URLColumn returns the header name of p's hyperlink column.
func URLColumn(p model.Platform) string { return p.String() + "_url" }

// requiredColumns are the headers that must be structurally present.
// Values inside them may still be blank per row.
func requiredColumns() []string {
	required := []string{ColOriginalTitle, ColNotes}
	for _, p := range model.Platforms {
		required = append(required, ScoreColumn(p), TotalColumn(p))
	}
	return required
}

// family groups columns that share one background tint in the output.
type family struct {
	name    string
	color   string // RGB hex, no alpha
	columns []string
}

// styleFamilies returns the column grouping applied to data cells. Tints
// follow the published sheet: one pastel per logical column family.
func styleFamilies() []family {
	families := []family{
		{name: "titles", color: "E8F4FD", columns: []string{ColOriginalTitle, ColTranslatedTitle}},
		{name: "Bangumi", color: "E8F8E8", columns: platformColumns(model.Bangumi)},
		{name: "Anilist", color: "FFF2E8", columns: platformColumns(model.Anilist)},
		{name: "MyAnimeList", color: "F8E8F8", columns: platformColumns(model.MyAnimeList)},
		{name: "Filmarks", color: "F8F8E8", columns: platformColumns(model.Filmarks)},
		{name: "composite", color: "E8E8F8", columns: []string{ColCompositeScore, ColCompositeRank}},
		{name: "x", color: "F0F0F0", columns: []string{ColXScore, ColXFan}},
		{name: "notes", color: "FFF8E8", columns: []string{ColNotes}},
	}
	links := family{name: "links", color: "E8F8F0"}
	for _, p := range model.Platforms {
		links.columns = append(links.columns, URLColumn(p))
	}
	return append(families, links)
}

func platformColumns(p model.Platform) []string {
	return []string{ScoreColumn(p), TotalColumn(p), RankColumn(p)}
}
