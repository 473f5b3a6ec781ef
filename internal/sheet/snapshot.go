package sheet

import (
	"github.com/mzzb-project/animerank/internal/apperr"
)

// CellRef addresses a cell by 1-based row and column in the input sheet.
type CellRef struct {
	Row int
	Col int
}

// FontSpec is a cell's captured font state as plain data.
type FontSpec struct {
	Bold      bool
	Italic    bool
	Strike    bool
	Underline string
	Family    string
	Size      float64
	Color     string
}

// NumFmtSpec is a cell's number format: a builtin format id or a custom
// format code. Custom wins when both are set.
type NumFmtSpec struct {
	ID     int
	Custom string
}

// StyleSnapshot is the formatting state captured from the input workbook,
// as plain data with no ties to the spreadsheet library. It is produced by
// Read, replayed once by Write onto the shifted column positions, and then
// discarded.
type StyleSnapshot struct {
	// Fills maps cells to their solid background color (RGB hex, no alpha).
	Fills map[CellRef]string
	// Fonts maps cells to their font, so bold/colored cells survive the
	// rewrite intact.
	Fonts map[CellRef]FontSpec
	// NumFmts maps cells to their number format.
	NumFmts map[CellRef]NumFmtSpec
	// Hyperlinks maps cells to their link target.
	Hyperlinks map[CellRef]string
}

func newStyleSnapshot() StyleSnapshot {
	return StyleSnapshot{
		Fills:      make(map[CellRef]string),
		Fonts:      make(map[CellRef]FontSpec),
		NumFmts:    make(map[CellRef]NumFmtSpec),
		Hyperlinks: make(map[CellRef]string),
	}
}

// ColumnLayout maps logical header names to physical column positions in
// the input sheet.
type ColumnLayout struct {
	HeaderRow int
	Columns   map[string]int
}

// Col returns the 1-based column index for a header name.
func (l ColumnLayout) Col(name string) (int, bool) {
	c, ok := l.Columns[name]
	return c, ok
}

// Require fails with a schema error naming the first missing column.
func (l ColumnLayout) Require(names ...string) error {
	for _, name := range names {
		if _, ok := l.Columns[name]; !ok {
			return apperr.Schemaf(name, "required column missing from header row %d", l.HeaderRow)
		}
	}
	return nil
}

// MaxCol returns the rightmost mapped column index.
func (l ColumnLayout) MaxCol() int {
	max := 0
	for _, c := range l.Columns {
		if c > max {
			max = c
		}
	}
	return max
}
