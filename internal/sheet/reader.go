// Package sheet reads and writes the rating workbook. The reader parses
// records and captures a StyleSnapshot; the writer inserts rank columns and
// replays the snapshot onto the shifted layout. The ranking logic never sees
// the spreadsheet library.
package sheet

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mzzb-project/animerank/internal/apperr"
	"github.com/mzzb-project/animerank/internal/config"
	"github.com/mzzb-project/animerank/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet is everything captured from one input workbook: parsed records, the
// style/hyperlink snapshot, the discovered column layout, and any per-cell
// data warnings recovered during parsing.
type Sheet struct {
	Path     string
	Name     string
	Records  []model.AnimeRecord
	Snapshot StyleSnapshot
	Layout   ColumnLayout
	Warnings []apperr.Warning

	// LastRow is the last used row in the sheet, bounding style application.
	LastRow int
}

// Read parses the workbook at path into records, capturing styles and
// hyperlinks for later replay. Malformed numeric cells degrade to missing
// values and are reported as warnings; a structurally missing column is a
// schema error.
func Read(path string, cfg *config.Config) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperr.IO(path, err, "failed to open workbook")
	}
	defer f.Close()

	name := cfg.SheetName
	if name == "" {
		name = f.GetSheetName(0)
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, apperr.Configf("worksheet %q not found in %s: %v", name, path, err)
	}
	if len(rows) < cfg.HeaderRow {
		return nil, apperr.Schemaf("", "header row %d not present (%d rows in sheet)", cfg.HeaderRow, len(rows))
	}

	layout := parseLayout(rows[cfg.HeaderRow-1], cfg.HeaderRow)
	if err := layout.Require(requiredColumns()...); err != nil {
		return nil, err
	}

	sh := &Sheet{
		Path:     path,
		Name:     name,
		Snapshot: newStyleSnapshot(),
		Layout:   layout,
		LastRow:  len(rows),
	}

	sh.parseRecords(rows, cfg.HeaderRow)
	if err := sh.captureSnapshot(f, len(rows)); err != nil {
		return nil, err
	}

	slog.Debug("workbook read",
		"path", path,
		"sheet", name,
		"records", len(sh.Records),
		"hyperlinks", len(sh.Snapshot.Hyperlinks),
		"warnings", len(sh.Warnings))

	return sh, nil
}

// parseLayout maps header names to 1-based column positions.
func parseLayout(header []string, headerRow int) ColumnLayout {
	layout := ColumnLayout{HeaderRow: headerRow, Columns: make(map[string]int)}
	for i, v := range header {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, dup := layout.Columns[name]; dup {
			continue // first occurrence wins
		}
		layout.Columns[name] = i + 1
	}
	return layout
}

func (sh *Sheet) parseRecords(rows [][]string, headerRow int) {
	titleCol, _ := sh.Layout.Col(ColOriginalTitle)
	notesCol, _ := sh.Layout.Col(ColNotes)
	translatedCol, hasTranslated := sh.Layout.Col(ColTranslatedTitle)

	for i := headerRow; i < len(rows); i++ {
		rowNum := i + 1
		title := strings.TrimSpace(cellAt(rows, rowNum, titleCol))
		if title == "" {
			// Blank padding rows are tolerated anywhere in the data region.
			continue
		}

		rec := model.AnimeRecord{
			Row:           rowNum,
			OriginalTitle: title,
			Notes:         strings.TrimSpace(cellAt(rows, rowNum, notesCol)),
		}
		if hasTranslated {
			rec.TranslatedTitle = strings.TrimSpace(cellAt(rows, rowNum, translatedCol))
		}

		for _, p := range model.Platforms {
			sh.parsePlatform(rows, rowNum, p, &rec)
		}
		sh.Records = append(sh.Records, rec)
	}
}

func (sh *Sheet) parsePlatform(rows [][]string, rowNum int, p model.Platform, rec *model.AnimeRecord) {
	scoreCol, _ := sh.Layout.Col(ScoreColumn(p))
	totalCol, _ := sh.Layout.Col(TotalColumn(p))

	if raw := strings.TrimSpace(cellAt(rows, rowNum, scoreCol)); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			sh.warn(rowNum, ScoreColumn(p), fmt.Sprintf("malformed rating %q, treated as missing", raw))
		} else {
			rec.SetRating(p, v)
		}
	}

	if raw := strings.TrimSpace(cellAt(rows, rowNum, totalCol)); raw != "" {
		// Counts sometimes arrive as floats ("1234.0") from upstream tools.
		v, err := strconv.ParseFloat(raw, 64)
		switch {
		case err != nil:
			sh.warn(rowNum, TotalColumn(p), fmt.Sprintf("malformed vote count %q, treated as missing", raw))
		case v < 0:
			sh.warn(rowNum, TotalColumn(p), fmt.Sprintf("negative vote count %q, treated as missing", raw))
		default:
			rec.SetVotes(p, int(v))
		}
	}
}

func (sh *Sheet) warn(row int, column, msg string) {
	sh.Warnings = append(sh.Warnings, apperr.Warning{Row: row, Column: column, Msg: msg})
	slog.Warn("cell skipped", "row", row, "column", column, "reason", msg)
}

// captureSnapshot records every cell's hyperlink target, solid fill color,
// font, and number format, keyed by absolute position, so the writer can
// replay them after the column set changes shape.
func (sh *Sheet) captureSnapshot(f *excelize.File, maxRow int) error {
	maxCol := sh.Layout.MaxCol()
	for row := 1; row <= maxRow; row++ {
		for col := 1; col <= maxCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return fmt.Errorf("failed to build cell name (%d,%d): %w", col, row, err)
			}
			ref := CellRef{Row: row, Col: col}

			if ok, target, err := f.GetCellHyperLink(sh.Name, cell); err == nil && ok && target != "" {
				sh.Snapshot.Hyperlinks[ref] = target
			}

			styleID, err := f.GetCellStyle(sh.Name, cell)
			if err != nil || styleID == 0 {
				continue
			}
			style, err := f.GetStyle(styleID)
			if err != nil || style == nil {
				continue
			}
			if color := solidFillColor(style); color != "" {
				sh.Snapshot.Fills[ref] = color
			}
			if style.Font != nil {
				sh.Snapshot.Fonts[ref] = FontSpec{
					Bold:      style.Font.Bold,
					Italic:    style.Font.Italic,
					Strike:    style.Font.Strike,
					Underline: style.Font.Underline,
					Family:    style.Font.Family,
					Size:      style.Font.Size,
					Color:     style.Font.Color,
				}
			}
			if style.CustomNumFmt != nil && *style.CustomNumFmt != "" {
				sh.Snapshot.NumFmts[ref] = NumFmtSpec{Custom: *style.CustomNumFmt}
			} else if style.NumFmt != 0 {
				sh.Snapshot.NumFmts[ref] = NumFmtSpec{ID: style.NumFmt}
			}
		}
	}
	return nil
}

// solidFillColor extracts the RGB fill color from a style, stripping any
// alpha prefix, or returns "" when the cell has no solid pattern fill.
func solidFillColor(style *excelize.Style) string {
	if style.Fill.Type != "pattern" || len(style.Fill.Color) == 0 {
		return ""
	}
	color := strings.ToUpper(style.Fill.Color[0])
	if len(color) == 8 {
		color = color[2:]
	}
	return color
}

// cellAt returns the raw value at 1-based (row, col), empty for cells
// beyond the row's stored extent.
func cellAt(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) {
		return ""
	}
	r := rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return r[col-1]
}
