package questionbank

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// headerMarker starts the first cell of the header row. Everything below it
// is question data.
const headerMarker = "n°identifiant"

// numberPrefix matches the "123 - " numbering artifact some question texts
// carry in front of the real statement.
var numberPrefix = regexp.MustCompile(`^\s*\d+\s*-\s*`)

// CleanQuestionText trims a question statement and strips a leading
// "<number> - " prefix if present.
func CleanQuestionText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(numberPrefix.ReplaceAllString(s, ""))
}

// fold lowercases and strips diacritics so header detection survives the
// accent variations seen in real workbooks.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Extract reads every question row from the named sheet of an xlsx workbook.
// A missing file or sheet is an error; malformed rows are skipped.
func Extract(path, sheet string) ([]Question, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	return extract(f, sheet)
}

func extract(f *excelize.File, sheet string) ([]Question, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}

	marker := fold(headerMarker)
	start := 0
	for i, row := range rows {
		if len(row) > 0 && strings.HasPrefix(fold(row[0]), marker) {
			start = i + 1
			break
		}
	}

	var questions []Question
	ids := make(map[int]bool)
	for r := start; r < len(rows); r++ {
		row := rows[r]
		if len(row) == 0 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		text := CleanQuestionText(cellAt(row, 1))
		if text == "" {
			continue
		}
		if ids[id] {
			slog.Warn("skipping duplicate question id", "id", id, "row", r+1)
			continue
		}
		ids[id] = true

		q := Question{ID: id, Text: text, CorrectIdx: -1}
		for i := 0; i < 3; i++ {
			q.Options[i] = strings.TrimSpace(cellAt(row, 2+i))
			if q.CorrectIdx == -1 && IsCorrectHighlight(fillColorAt(f, sheet, 3+i, r+1)) {
				q.CorrectIdx = i
			}
		}
		questions = append(questions, q)
	}

	return questions, nil
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// fillColorAt reads the pattern fill of a cell (1-based coordinates). Any
// style lookup failure yields an empty descriptor, which never matches.
func fillColorAt(f *excelize.File, sheet string, col, row int) FillColor {
	fc := FillColor{Indexed: -1}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fc
	}
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return fc
	}
	style, err := f.GetStyle(styleID)
	if err == nil && style != nil && len(style.Fill.Color) > 0 {
		fc.RGB = style.Fill.Color[0]
	}

	// GetStyle resolves RGB and theme fills but drops the raw indexed
	// attribute old workbooks use, so that is read from the style sheet.
	ss := f.Styles
	if ss == nil || ss.CellXfs == nil || styleID < 0 || styleID >= len(ss.CellXfs.Xf) {
		return fc
	}
	fillID := ss.CellXfs.Xf[styleID].FillID
	if fillID == nil || ss.Fills == nil || *fillID < 0 || *fillID >= len(ss.Fills.Fill) {
		return fc
	}
	fill := ss.Fills.Fill[*fillID]
	if fill == nil || fill.PatternFill == nil || fill.PatternFill.FgColor == nil {
		return fc
	}
	if idx := fill.PatternFill.FgColor.Indexed; idx > 0 {
		fc.Indexed = idx
	}
	if fc.RGB == "" {
		fc.RGB = fill.PatternFill.FgColor.RGB
	}
	return fc
}
