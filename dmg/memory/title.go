package memory

import (
	"strings"
	"unicode"
)

// cleanTitle turns the raw header title into a printable string. The title
// ends at the first NUL, anything non printable becomes '?'.
func cleanTitle(raw []uint8) string {
	runes := make([]rune, 0, len(raw))

	for _, b := range raw {
		if b == 0 {
			break
		}
		r := rune(b)
		if b > unicode.MaxASCII || !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}

	return title
}
