package schema

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var formatValidator = validator.New()

func varOK(value, tag string) bool { return formatValidator.Var(value, tag) == nil }

func isAlphanum(s string) bool   { return varOK(s, "alphanum") }
func isEmail(s string) bool      { return varOK(s, "email") }
func isCreditCard(s string) bool { return varOK(s, "credit_card") }
func isURI(s string) bool        { return varOK(s, "uri") }

// Hostnames follow RFC 1123; bare IP addresses are accepted as well.
func isHostname(s string) bool {
	return varOK(s, "hostname_rfc1123") || varOK(s, "ip")
}

var (
	tokenRe = regexp.MustCompile(`^\w+$`)

	isoDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:[T ](\d{2}):(\d{2})(?::(\d{2})(?:[.,]\d+)?)?(Z|[+-]\d{2}(?::?\d{2})?)?)?$`)

	isoDurationRe = regexp.MustCompile(`^P(?:\d+Y)?(?:\d+M)?(?:\d+W)?(?:\d+D)?(?:T(?:\d+H)?(?:\d+M)?(?:\d+S)?)?$`)
)

func isToken(s string) bool { return tokenRe.MatchString(s) }

// isISODate accepts calendar dates with an optional time and zone:
// 2020-02-29, 2020-02-29T10:30, 2020-02-29T10:30:00.123+09:00.
func isISODate(s string) bool {
	m := isoDateRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	if _, err := time.Parse("2006-01-02", m[1]); err != nil {
		return false
	}
	if m[2] != "" && (m[2] > "23" || m[3] > "59" || (m[4] != "" && m[4] > "59")) {
		return false
	}
	return true
}

// isISODuration accepts durations such as P3Y6M4DT12H30M5S or PT10M. At least
// one component is required, and a T must be followed by a time component.
func isISODuration(s string) bool {
	if s == "P" || !isoDurationRe.MatchString(s) {
		return false
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 && i == len(s)-1 {
		return false
	}
	return true
}

// parseISODate parses strings accepted by isISODate.
func parseISODate(s string) (time.Time, bool) {
	if !isISODate(s) {
		return time.Time{}, false
	}
	s = strings.Replace(s, " ", "T", 1)
	s = strings.Replace(s, ",", ".", 1)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04Z07",
	"2006-01-02T15:04",
	"2006-01-02",
}
