package common

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// PlainText makes untrusted text safe to print as a single table cell.
// Line breaks and tabs become spaces, escape sequences and other control
// characters are dropped. Markup such as "<b>x</b>" is kept literally.
func PlainText(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Truncate cuts s to width terminal cells, marking the cut with an ellipsis.
// A non-positive width leaves s untouched.
func Truncate(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

func joinHelp(parts []string) string {
	return strings.Join(parts, " • ")
}
