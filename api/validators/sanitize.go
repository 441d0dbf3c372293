package validators

import (
	"strings"
	"unicode"
)

// SanitizeString collapses runs of whitespace, drops control characters and
// truncates to maxLen runes. Names such as "Ingeniería  Civil" keep their
// accents intact.
func SanitizeString(input string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(input))
	count := 0
	pendingSpace := false
	for _, r := range input {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = count > 0
			continue
		case unicode.IsControl(r):
			continue
		}
		if pendingSpace {
			if maxLen > 0 && count+1 >= maxLen {
				break
			}
			b.WriteRune(' ')
			count++
			pendingSpace = false
		}
		if maxLen > 0 && count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
