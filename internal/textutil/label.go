package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayLabel turns a canonical class name such as "z-line" or
// "barretts_short_segment" into a title-cased label for tables.
func DisplayLabel(class string) string {
	var b strings.Builder
	prevSpace := false
	for _, r := range class {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				b.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	label := strings.TrimSpace(b.String())
	if label == "" {
		return "Unknown"
	}
	return cases.Title(language.Und).String(label)
}
