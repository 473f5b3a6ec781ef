package sheet

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/mzzb-project/animerank/internal/apperr"
	"github.com/mzzb-project/animerank/internal/config"
	"github.com/mzzb-project/animerank/internal/model"
	"github.com/mzzb-project/animerank/internal/ranking"
	"github.com/xuri/excelize/v2"
)

const testSheet = "Sheet1"

var testHeader = []any{
	"原名", "译名",
	"Bangumi", "Bangumi_total",
	"Anilist", "Anilist_total",
	"MyAnimeList", "MyAnimeList_total",
	"Filmarks", "Filmarks_total",
	"Notes", "Bangumi_url",
}

// buildWorkbook writes a small input workbook in the stock layout: banner
// on row 1, headers on row 2, data from row 3. Row 3 carries a hyperlink,
// a custom fill, a bold red font, and a number format so the round-trip
// tests can check preservation.
func buildWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()

	if err := f.SetCellValue(testSheet, "A1", "2026年1月新番评分"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(testSheet, "A2", &testHeader); err != nil {
		t.Fatal(err)
	}

	rows := [][]any{
		{"葬送のフリーレン", "Frieren", 8.5, 1000, nil, nil, nil, nil, nil, nil, nil, "https://bgm.tv/subject/1"},
		{"薬屋のひとりごと", "Apothecary", 8.5, 500, nil, nil, nil, nil, nil, nil, nil, nil},
		{"普通の番組", "SomeShow", 7.0, 300, 8.0, 400, nil, nil, nil, nil, nil, nil},
		{"短編", "Short", 9.9, 50, nil, nil, nil, nil, nil, nil, "*数据不足", nil},
		{"破損データ", "BadData", "abc", 100, nil, nil, nil, nil, 3.0, 10, nil, nil},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow(testSheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}

	if err := f.SetCellHyperLink(testSheet, "A3", "https://bgm.tv/subject/1", "External"); err != nil {
		t.Fatal(err)
	}
	styleID, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
		Font: &excelize.Font{Bold: true, Color: "FF0000"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellStyle(testSheet, "A3", "A3", styleID); err != nil {
		t.Fatal(err)
	}
	ratingStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellStyle(testSheet, "C3", "C3", ratingStyle); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "mzzb.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.OutputPath = filepath.Join(t.TempDir(), "out.xlsx")
	return cfg
}

func TestReadParsesRecords(t *testing.T) {
	path := buildWorkbook(t)
	sh, err := Read(path, testConfig(t))
	if err != nil {
		t.Fatalf("Expected read to succeed, got %v", err)
	}

	if len(sh.Records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(sh.Records))
	}

	first := sh.Records[0]
	if first.Row != 3 {
		t.Errorf("Expected first record at row 3, got %d", first.Row)
	}
	if first.OriginalTitle != "葬送のフリーレン" || first.TranslatedTitle != "Frieren" {
		t.Errorf("Unexpected titles: %q / %q", first.OriginalTitle, first.TranslatedTitle)
	}
	if v, ok := first.PlatformScore(model.Bangumi); !ok || v != 8.5 {
		t.Errorf("Expected Bangumi score 8.5, got %v (ok=%v)", v, ok)
	}

	excluded := sh.Records[3]
	if excluded.Notes != "*数据不足" {
		t.Errorf("Expected exclusion note, got %q", excluded.Notes)
	}
}

func TestReadMalformedCellIsWarning(t *testing.T) {
	path := buildWorkbook(t)
	sh, err := Read(path, testConfig(t))
	if err != nil {
		t.Fatalf("Expected read to succeed, got %v", err)
	}

	if len(sh.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d: %v", len(sh.Warnings), sh.Warnings)
	}
	w := sh.Warnings[0]
	if w.Row != 7 || w.Column != "Bangumi" {
		t.Errorf("Expected warning at row 7 column Bangumi, got row %d column %q", w.Row, w.Column)
	}

	// The malformed platform is missing for that record only; its other
	// platform and the other records are unaffected.
	bad := sh.Records[4]
	if _, ok := bad.PlatformScore(model.Bangumi); ok {
		t.Error("Expected malformed Bangumi rating to be missing")
	}
	if v, ok := bad.PlatformScore(model.Filmarks); !ok || v != 3.0 {
		t.Errorf("Expected Filmarks score 3.0, got %v (ok=%v)", v, ok)
	}
	if _, ok := sh.Records[0].PlatformScore(model.Bangumi); !ok {
		t.Error("Expected other records to keep their Bangumi rating")
	}
}

func TestReadMissingRequiredColumn(t *testing.T) {
	f := excelize.NewFile()
	header := []any{"原名", "Bangumi", "Bangumi_total"} // no Notes, missing platforms
	if err := f.SetSheetRow(testSheet, "A2", &header); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "partial.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	_, err := Read(path, testConfig(t))
	if !apperr.IsKind(err, apperr.KindSchema) {
		t.Fatalf("Expected schema error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Notes") {
		t.Errorf("Expected the missing column to be named, got %q", err.Error())
	}
}

func TestReadMissingInput(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.xlsx"), testConfig(t))
	if !apperr.IsKind(err, apperr.KindIO) {
		t.Fatalf("Expected io error, got %v", err)
	}
}

func TestReadCapturesSnapshot(t *testing.T) {
	path := buildWorkbook(t)
	sh, err := Read(path, testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	if target := sh.Snapshot.Hyperlinks[CellRef{Row: 3, Col: 1}]; target != "https://bgm.tv/subject/1" {
		t.Errorf("Expected captured hyperlink, got %q", target)
	}
	if color := sh.Snapshot.Fills[CellRef{Row: 3, Col: 1}]; color != "FFFF00" {
		t.Errorf("Expected captured fill FFFF00, got %q", color)
	}
	if font, ok := sh.Snapshot.Fonts[CellRef{Row: 3, Col: 1}]; !ok || !font.Bold {
		t.Errorf("Expected captured bold font, got %+v (ok=%v)", font, ok)
	}
	if nf, ok := sh.Snapshot.NumFmts[CellRef{Row: 3, Col: 3}]; !ok || nf.ID != 2 {
		t.Errorf("Expected captured number format 2, got %+v (ok=%v)", nf, ok)
	}
}

// process runs read -> filter -> rank -> write and returns the output path.
func process(t *testing.T, path string, cfg *config.Config) string {
	t.Helper()
	sh, err := Read(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	eligible := ranking.Filter(sh.Records, cfg.ExclusionMarkers)
	ranked := ranking.Rank(eligible, cfg.Weights)
	out, err := Write(sh, ranked, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestWriteInsertsRankColumns(t *testing.T) {
	path := buildWorkbook(t)
	cfg := testConfig(t)
	out := process(t, path, cfg)

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	wantHeaders := []string{
		"原名", "译名",
		"Bangumi", "Bangumi_total", "Bangumi_Rank",
		"Anilist", "Anilist_total", "Anilist_Rank",
		"MyAnimeList", "MyAnimeList_total", "MyAnimeList_Rank",
		"Filmarks", "Filmarks_total", "Filmarks_Rank",
		"综合评分", "排名",
		"Notes", "Bangumi_url",
	}
	for i, want := range wantHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		got, err := f.GetCellValue(testSheet, cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Expected header %q at %s, got %q", want, cell, got)
		}
	}
}

func TestWriteRankValues(t *testing.T) {
	path := buildWorkbook(t)
	cfg := testConfig(t)
	out := process(t, path, cfg)

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Bangumi_Rank is column E, 排名 is column P after insertion.
	tests := []struct {
		cell string
		want string
	}{
		{"E3", "1"}, // tied at 8.5
		{"E4", "1"},
		{"E5", "3"}, // competition skip
		{"E6", ""},  // excluded by note
		{"E7", ""},  // malformed Bangumi cell
		{"P3", "1"},
		{"P4", "1"},
		{"P5", "3"},
		{"P6", ""},
		{"P7", "4"}, // ranked by Filmarks-only composite
	}
	for _, tt := range tests {
		got, err := f.GetCellValue(testSheet, tt.cell)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Expected %q at %s, got %q", tt.want, tt.cell, got)
		}
	}

	// Composite score for the Filmarks-only record renormalizes to its
	// single rating.
	got, err := f.GetCellValue(testSheet, "O7")
	if err != nil {
		t.Fatal(err)
	}
	if got != "3" {
		t.Errorf("Expected composite score 3 at O7, got %q", got)
	}
}

func TestWritePreservesHyperlinkAndFill(t *testing.T) {
	path := buildWorkbook(t)
	cfg := testConfig(t)
	out := process(t, path, cfg)

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// Column A gains no inserts to its left, so the link stays at A3.
	ok, target, err := f.GetCellHyperLink(testSheet, "A3")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || target != "https://bgm.tv/subject/1" {
		t.Errorf("Expected hyperlink preserved at A3, got ok=%v target=%q", ok, target)
	}

	// The custom fill beats the family tint.
	styleID, err := f.GetCellStyle(testSheet, "A3")
	if err != nil {
		t.Fatal(err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatal(err)
	}
	if len(style.Fill.Color) == 0 || !strings.HasSuffix(strings.ToUpper(style.Fill.Color[0]), "FFFF00") {
		t.Errorf("Expected fill FFFF00 preserved at A3, got %v", style.Fill.Color)
	}

	// A family-tinted cell right of the insertions: Notes moved K -> Q.
	notesStyle, err := f.GetCellStyle(testSheet, "Q3")
	if err != nil {
		t.Fatal(err)
	}
	ns, err := f.GetStyle(notesStyle)
	if err != nil {
		t.Fatal(err)
	}
	if len(ns.Fill.Color) == 0 || !strings.HasSuffix(strings.ToUpper(ns.Fill.Color[0]), "FFF8E8") {
		t.Errorf("Expected notes family tint at Q3, got %v", ns.Fill.Color)
	}
}

func TestWritePreservesFontAndNumberFormat(t *testing.T) {
	path := buildWorkbook(t)
	cfg := testConfig(t)
	out := process(t, path, cfg)

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	// The bold red title font survives the rewrite.
	styleID, err := f.GetCellStyle(testSheet, "A3")
	if err != nil {
		t.Fatal(err)
	}
	style, err := f.GetStyle(styleID)
	if err != nil {
		t.Fatal(err)
	}
	if style.Font == nil || !style.Font.Bold {
		t.Fatalf("Expected bold font preserved at A3, got %+v", style.Font)
	}
	if !strings.HasSuffix(strings.ToUpper(style.Font.Color), "FF0000") {
		t.Errorf("Expected red font color preserved at A3, got %q", style.Font.Color)
	}

	// The rating cell keeps its two-decimal number format; Bangumi gains
	// no inserts to its left, so the cell stays at C3.
	ratingID, err := f.GetCellStyle(testSheet, "C3")
	if err != nil {
		t.Fatal(err)
	}
	ratingStyle, err := f.GetStyle(ratingID)
	if err != nil {
		t.Fatal(err)
	}
	if ratingStyle.NumFmt != 2 {
		t.Errorf("Expected number format 2 preserved at C3, got %d", ratingStyle.NumFmt)
	}
	if got, err := f.GetCellValue(testSheet, "C3"); err != nil || got != "8.50" {
		t.Errorf("Expected formatted rating 8.50 at C3, got %q (err %v)", got, err)
	}
}

func TestWriteHyperlinkShiftsWithColumn(t *testing.T) {
	// Put a link on the Bangumi_url column (L), which lands at R after the
	// six insertions.
	f := excelize.NewFile()
	if err := f.SetSheetRow(testSheet, "A2", &testHeader); err != nil {
		t.Fatal(err)
	}
	row := []any{"作品", "Title", 7.5, 100, nil, nil, nil, nil, nil, nil, nil, "bgm"}
	if err := f.SetSheetRow(testSheet, "A3", &row); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellHyperLink(testSheet, "L3", "https://bgm.tv/subject/42", "External"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "links.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	out := process(t, path, cfg)

	got, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatal(err)
	}
	defer got.Close()

	ok, target, err := got.GetCellHyperLink(testSheet, "R3")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || target != "https://bgm.tv/subject/42" {
		t.Errorf("Expected hyperlink shifted to R3, got ok=%v target=%q", ok, target)
	}
}

func TestWriteRefusesToOverwriteInput(t *testing.T) {
	path := buildWorkbook(t)
	cfg := config.Default()
	cfg.OutputPath = path

	sh, err := Read(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Write(sh, nil, cfg)
	if !apperr.IsKind(err, apperr.KindConfig) {
		t.Fatalf("Expected config error, got %v", err)
	}
}

func TestWriteReusesExistingRankColumns(t *testing.T) {
	// Running over an already-ranked workbook must not grow the sheet.
	path := buildWorkbook(t)
	cfg := testConfig(t)
	first := process(t, path, cfg)

	cfg2 := config.Default()
	cfg2.OutputPath = filepath.Join(t.TempDir(), "second.xlsx")
	second := process(t, first, cfg2)

	f1, err := excelize.OpenFile(first)
	if err != nil {
		t.Fatal(err)
	}
	defer f1.Close()
	f2, err := excelize.OpenFile(second)
	if err != nil {
		t.Fatal(err)
	}
	defer f2.Close()

	r1, err := f1.GetRows(testSheet)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := f2.GetRows(testSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(r1[1]) != len(r2[1]) {
		t.Errorf("Expected stable header width on re-run, got %d then %d", len(r1[1]), len(r2[1]))
	}
}
