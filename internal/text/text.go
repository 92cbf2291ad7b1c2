// Package text holds the line utilities the editor core treats as opaque:
// whitespace normalization and rendered display width.
package text

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// trims the line and collapses internal whitespace runs to one space
func Normalize(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// rendered cell width of a normalized line; wide runes count as two cells
// and terminal escape sequences count as zero
func Width(line string) int {
	return lipgloss.Width(Normalize(line))
}
