package schema

import (
	"fmt"
	"strings"
	"unicode"
)

// momentTokens maps moment-style tokens to Go layout elements, longest
// tokens first so that YYYY wins over YY.
var momentTokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"DD", "02"},
	{"D", "2"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"HH", "15"},
	{"H", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"SSS", "000"},
	{"SS", "00"},
	{"S", "0"},
	{"A", "PM"},
	{"a", "pm"},
	{"ZZ", "-0700"},
	{"Z", "-07:00"},
}

// Tokens moment understands that have no Go layout equivalent.
const unsupportedMoment = "QWwEeXxkGgNdo"

// Sequences Go would read as layout elements if they appeared as literals.
var goLayoutWords = []string{"Jan", "Mon", "MST", "PM", "pm"}

// MomentLayout translates a moment-style date format into a Go time layout.
// Text inside [brackets] is literal.
func MomentLayout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("empty date format")
	}
	b := &strings.Builder{}
	literal := &strings.Builder{}
	flush := func() error {
		lit := literal.String()
		literal.Reset()
		for _, r := range lit {
			if unicode.IsDigit(r) {
				return fmt.Errorf("literal %q cannot be expressed as a Go layout", lit)
			}
		}
		for _, w := range goLayoutWords {
			if strings.Contains(lit, w) {
				return fmt.Errorf("literal %q cannot be expressed as a Go layout", lit)
			}
		}
		b.WriteString(lit)
		return nil
	}
	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i:], ']')
			if end < 0 {
				return "", fmt.Errorf("unterminated literal in %q", format)
			}
			literal.WriteString(format[i+1 : i+end])
			i += end + 1
			continue
		}
		matched := false
		for _, t := range momentTokens {
			if strings.HasPrefix(format[i:], t.token) {
				if err := flush(); err != nil {
					return "", err
				}
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if strings.IndexByte(unsupportedMoment, format[i]) >= 0 {
			return "", fmt.Errorf("unsupported token %q in %q", format[i:i+1], format)
		}
		literal.WriteByte(format[i])
		i++
	}
	if err := flush(); err != nil {
		return "", err
	}
	return b.String(), nil
}
