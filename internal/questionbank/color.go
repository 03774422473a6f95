package questionbank

import "strings"

// The correct option is marked in the source workbook by a yellow-ish cell
// fill. These are the exact RGB codes the bank's authors have used over the
// years, plus the legacy indexed-palette slots older workbooks carry.
var (
	highlightRGB = []string{"FFEB9C", "FFFF00", "FFFDEB", "FFF2CC", "FFFFFF00"}

	legacyIndexed = map[int]bool{5: true, 6: true, 13: true, 27: true, 44: true}
)

// FillColor describes a cell's pattern fill as read from the workbook.
// RGB may carry a leading '#' or an alpha prefix; Indexed is the legacy
// palette slot, -1 when the fill is not indexed.
type FillColor struct {
	RGB     string
	Indexed int
}

// IsCorrectHighlight reports whether a fill marks its cell as the correct
// option. Matching is substring-based on the uppercased hex so ARGB variants
// of the same color are accepted.
func IsCorrectHighlight(c FillColor) bool {
	rgb := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c.RGB), "#"))
	if rgb != "" {
		for _, pat := range highlightRGB {
			if strings.Contains(rgb, pat) {
				return true
			}
		}
	}
	return legacyIndexed[c.Indexed]
}
