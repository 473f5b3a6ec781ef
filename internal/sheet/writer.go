package sheet

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/mzzb-project/animerank/internal/apperr"
	"github.com/mzzb-project/animerank/internal/config"
	"github.com/mzzb-project/animerank/internal/model"
	"github.com/xuri/excelize/v2"
)

// Write produces the output workbook: the input workbook with rank columns
// inserted next to their platform columns, composite score and rank filled
// in, and the captured styles and hyperlinks replayed at their shifted
// positions. Rows keep their input order; rows absent from ranked pass
// through with rank cells blank. The file is written to a temporary path
// and renamed on success, and the input file is never touched.
func Write(sh *Sheet, ranked []model.RankedRecord, cfg *config.Config) (string, error) {
	outPath := cfg.ResolveOutput(sh.Path)
	if sameFile(outPath, sh.Path) {
		return "", apperr.Configf("output path %s would overwrite the input file", outPath)
	}

	f, err := excelize.OpenFile(sh.Path)
	if err != nil {
		return "", apperr.IO(sh.Path, err, "failed to reopen workbook")
	}
	defer f.Close()

	plan := planColumns(sh.Layout)
	if err := plan.apply(f, sh.Name, sh.Layout.HeaderRow); err != nil {
		return "", err
	}

	if err := writeRanks(f, sh, plan, ranked); err != nil {
		return "", err
	}
	if err := replayHyperlinks(f, sh, plan); err != nil {
		return "", err
	}
	if err := applyStyles(f, sh, plan); err != nil {
		return "", err
	}

	if err := saveAtomic(f, outPath); err != nil {
		return "", err
	}

	slog.Debug("workbook written",
		"path", outPath,
		"inserted_columns", len(plan.inserted),
		"ranked_rows", len(ranked))

	return outPath, nil
}

// columnPlan is the final column arrangement: where every original column
// lands after insertion, and where each inserted column goes. All captured
// snapshot positions are translated through shift before replay.
type columnPlan struct {
	origToFinal map[int]int
	inserted    map[string]int // new header name -> final column
	headerFinal map[string]int // every header name -> final column
}

// colSlot is one column in the final left-to-right arrangement.
type colSlot struct {
	orig   int // original column index, 0 for inserted columns
	header string
}

// planColumns decides the final column order. Each platform gains a rank
// column immediately after its vote-count column; composite score and rank
// columns follow the rightmost platform block. Headers already present in
// the input are reused rather than inserted again, which keeps a re-run on
// ranked output from growing the sheet.
func planColumns(layout ColumnLayout) *columnPlan {
	headerAt := make(map[int]string, len(layout.Columns))
	for name, col := range layout.Columns {
		headerAt[col] = name
	}

	slots := make([]colSlot, 0, layout.MaxCol()+2*len(model.Platforms))
	for col := 1; col <= layout.MaxCol(); col++ {
		slots = append(slots, colSlot{orig: col, header: headerAt[col]})
	}

	for _, p := range model.Platforms {
		if _, exists := layout.Col(RankColumn(p)); exists {
			continue
		}
		slots = insertAfter(slots, TotalColumn(p), colSlot{header: RankColumn(p)})
	}

	// Composite columns land after the rightmost platform rank column.
	lastPlatform := ""
	for i := len(slots) - 1; i >= 0; i-- {
		if isPlatformRank(slots[i].header) {
			lastPlatform = slots[i].header
			break
		}
	}
	if _, exists := layout.Col(ColCompositeScore); !exists {
		slots = insertAfter(slots, lastPlatform, colSlot{header: ColCompositeScore})
	}
	if _, exists := layout.Col(ColCompositeRank); !exists {
		slots = insertAfter(slots, ColCompositeScore, colSlot{header: ColCompositeRank})
	}

	plan := &columnPlan{
		origToFinal: make(map[int]int),
		inserted:    make(map[string]int),
		headerFinal: make(map[string]int),
	}
	for i, s := range slots {
		final := i + 1
		if s.orig > 0 {
			plan.origToFinal[s.orig] = final
		} else {
			plan.inserted[s.header] = final
		}
		if s.header != "" {
			plan.headerFinal[s.header] = final
		}
	}
	return plan
}

func insertAfter(slots []colSlot, header string, slot colSlot) []colSlot {
	for i, s := range slots {
		if s.header == header {
			out := make([]colSlot, 0, len(slots)+1)
			out = append(out, slots[:i+1]...)
			out = append(out, slot)
			return append(out, slots[i+1:]...)
		}
	}
	return append(slots, slot)
}

func isPlatformRank(header string) bool {
	for _, p := range model.Platforms {
		if header == RankColumn(p) {
			return true
		}
	}
	return false
}

// shift translates an original column position into its final position.
func (p *columnPlan) shift(origCol int) int {
	if final, ok := p.origToFinal[origCol]; ok {
		return final
	}
	return origCol
}

// apply executes the planned insertions on the workbook and writes the new
// header cells. Insertions run right to left so that each insertion point
// is unaffected by the ones still pending.
func (p *columnPlan) apply(f *excelize.File, sheetName string, headerRow int) error {
	type pending struct {
		header string
		final  int
	}
	order := make([]pending, 0, len(p.inserted))
	for header, final := range p.inserted {
		order = append(order, pending{header: header, final: final})
	}
	sort.Slice(order, func(a, b int) bool { return order[a].final < order[b].final })

	for i := len(order) - 1; i >= 0; i-- {
		// With the i columns to its left not yet inserted, the insertion
		// point sits i positions left of the final one.
		at := order[i].final - i
		colName, err := excelize.ColumnNumberToName(at)
		if err != nil {
			return fmt.Errorf("failed to resolve column %d: %w", at, err)
		}
		if err := f.InsertCols(sheetName, colName, 1); err != nil {
			return fmt.Errorf("failed to insert column %q: %w", order[i].header, err)
		}
	}

	for _, ins := range order {
		cell, err := excelize.CoordinatesToCellName(ins.final, headerRow)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, ins.header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", ins.header, err)
		}
	}
	return nil
}

// writeRanks fills rank and composite cells for ranked rows and blanks them
// for pass-through rows, so stale values from a previous run never survive.
func writeRanks(f *excelize.File, sh *Sheet, plan *columnPlan, ranked []model.RankedRecord) error {
	byRow := make(map[int]*model.RankedRecord, len(ranked))
	for i := range ranked {
		byRow[ranked[i].Row] = &ranked[i]
	}

	rankCols := make(map[model.Platform]int, len(model.Platforms))
	for _, p := range model.Platforms {
		rankCols[p] = plan.headerFinal[RankColumn(p)]
	}
	scoreCol := plan.headerFinal[ColCompositeScore]
	rankCol := plan.headerFinal[ColCompositeRank]

	for i := range sh.Records {
		row := sh.Records[i].Row
		rec := byRow[row]

		for _, p := range model.Platforms {
			var v any
			if rec != nil && rec.PlatformRank(p) > 0 {
				v = rec.PlatformRank(p)
			}
			if err := setCell(f, sh.Name, rankCols[p], row, v); err != nil {
				return err
			}
		}

		var score, compRank any
		if rec != nil && rec.Composite.Valid {
			score = rec.Composite.Value
		}
		if rec != nil && rec.CompositeRank > 0 {
			compRank = rec.CompositeRank
		}
		if err := setCell(f, sh.Name, scoreCol, row, score); err != nil {
			return err
		}
		if err := setCell(f, sh.Name, rankCol, row, compRank); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheetName string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to build cell name (%d,%d): %w", col, row, err)
	}
	if err := f.SetCellValue(sheetName, cell, v); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", cell, err)
	}
	return nil
}

// replayHyperlinks re-targets every captured hyperlink to its shifted cell.
// Refs are replayed in row/column order so repeated runs produce identical
// relationship tables in the output file.
func replayHyperlinks(f *excelize.File, sh *Sheet, plan *columnPlan) error {
	refs := make([]CellRef, 0, len(sh.Snapshot.Hyperlinks))
	for ref := range sh.Snapshot.Hyperlinks {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(a, b int) bool {
		if refs[a].Row != refs[b].Row {
			return refs[a].Row < refs[b].Row
		}
		return refs[a].Col < refs[b].Col
	})

	for _, ref := range refs {
		target := sh.Snapshot.Hyperlinks[ref]
		cell, err := excelize.CoordinatesToCellName(plan.shift(ref.Col), ref.Row)
		if err != nil {
			return fmt.Errorf("failed to build cell name for hyperlink: %w", err)
		}
		if err := f.SetCellHyperLink(sh.Name, cell, target, "External"); err != nil {
			return fmt.Errorf("failed to set hyperlink on %s: %w", cell, err)
		}
	}
	return nil
}

// cellStyle is the resolved style for one data cell: the family tint or the
// cell's captured fill, plus the captured font and number format if any.
type cellStyle struct {
	fill   string
	font   *FontSpec
	numFmt *NumFmtSpec
}

// key dedupes equal styles in the writer's cache.
func (s cellStyle) key() string {
	k := s.fill
	if s.font != nil {
		k += fmt.Sprintf("|f:%v", *s.font)
	}
	if s.numFmt != nil {
		k += fmt.Sprintf("|n:%v", *s.numFmt)
	}
	return k
}

// applyStyles paints the data region: every cell in a column family gets its
// family tint (or the cell's captured fill, which wins so round-tripped
// colors are preserved exactly), left/center alignment, and thin borders.
// Captured fonts and number formats are merged in, so bold or colored cells
// come through the rewrite unchanged.
func applyStyles(f *excelize.File, sh *Sheet, plan *columnPlan) error {
	finalToOrig := make(map[int]int, len(plan.origToFinal))
	for orig, final := range plan.origToFinal {
		finalToOrig[final] = orig
	}

	styleCache := make(map[string]int)
	dataStart := sh.Layout.HeaderRow + 1

	// Families and columns are walked in declaration order so repeated runs
	// build an identical style table, keeping the output deterministic.
	for _, fam := range styleFamilies() {
		for _, header := range fam.columns {
			final, ok := plan.headerFinal[header]
			if !ok {
				continue
			}
			orig := finalToOrig[final] // 0 for inserted columns

			for row := dataStart; row <= sh.LastRow; row++ {
				cs := cellStyle{fill: fam.color}
				if orig > 0 {
					ref := CellRef{Row: row, Col: orig}
					if captured, ok := sh.Snapshot.Fills[ref]; ok {
						cs.fill = captured
					}
					if font, ok := sh.Snapshot.Fonts[ref]; ok {
						cs.font = &font
					}
					if nf, ok := sh.Snapshot.NumFmts[ref]; ok {
						cs.numFmt = &nf
					}
				}
				styleID, err := dataStyle(f, styleCache, cs)
				if err != nil {
					return err
				}
				cell, err := excelize.CoordinatesToCellName(final, row)
				if err != nil {
					return fmt.Errorf("failed to build cell name (%d,%d): %w", final, row, err)
				}
				if err := f.SetCellStyle(sh.Name, cell, cell, styleID); err != nil {
					return fmt.Errorf("failed to style cell %s: %w", cell, err)
				}
			}
		}
	}
	return nil
}

// dataStyle returns (creating once per distinct cellStyle) the data-cell
// style: solid fill, left horizontal and center vertical alignment, thin
// borders, and the cell's captured font and number format when present.
func dataStyle(f *excelize.File, cache map[string]int, cs cellStyle) (int, error) {
	key := cs.key()
	if id, ok := cache[key]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{cs.fill}},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		},
	}
	if cs.font != nil {
		style.Font = &excelize.Font{
			Bold:      cs.font.Bold,
			Italic:    cs.font.Italic,
			Strike:    cs.font.Strike,
			Underline: cs.font.Underline,
			Family:    cs.font.Family,
			Size:      cs.font.Size,
			Color:     cs.font.Color,
		}
	}
	if cs.numFmt != nil {
		if cs.numFmt.Custom != "" {
			custom := cs.numFmt.Custom
			style.CustomNumFmt = &custom
		} else {
			style.NumFmt = cs.numFmt.ID
		}
	}

	id, err := f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create style for fill %s: %w", cs.fill, err)
	}
	cache[key] = id
	return id, nil
}

// saveAtomic writes the workbook to a temporary file in the target
// directory and renames it into place, so a failed run leaves no partial
// output behind.
func saveAtomic(f *excelize.File, outPath string) error {
	dir := filepath.Dir(outPath)
	tmp, err := os.CreateTemp(dir, ".animerank-*.xlsx")
	if err != nil {
		return apperr.IO(outPath, err, "failed to create temporary output file")
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperr.IO(tmpPath, err, "failed to close temporary output file")
	}

	if err := f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return apperr.IO(outPath, err, "failed to save workbook")
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return apperr.IO(outPath, err, "failed to move output into place")
	}
	return nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
