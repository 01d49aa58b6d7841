package lineutil

import (
	"golang.org/x/text/width"
)

// runeWidth returns the display cell width of a rune: 2 for East Asian wide
// and fullwidth forms, 1 for everything else.
func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// DisplayWidth returns the display cell width of a string, counting East
// Asian wide characters as two cells. Japanese dish names are mostly
// fullwidth, so a rune count alone misjudges how much room a label takes.
func DisplayWidth(s string) int {
	var w int
	for _, r := range s {
		w += runeWidth(r)
	}
	return w
}

// TruncateDisplayWidth truncates a string to at most maxWidth display
// cells, appending "…" (one cell is reserved for it) when truncation
// occurs. Never splits a rune.
func TruncateDisplayWidth(s string, maxWidth int) string {
	if DisplayWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 1 {
		return "…"
	}

	budget := maxWidth - 1 // room for the ellipsis
	var w int
	for i, r := range s {
		rw := runeWidth(r)
		if w+rw > budget {
			return s[:i] + "…"
		}
		w += rw
	}
	return s
}
