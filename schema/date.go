package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type dateFlags struct {
	iso    bool
	format string // moment-style tokens, e.g. YYYY-MM-DD
	layout string // Go layout translated from format
}

// Date accepts time.Time values. With convert, strings (see ParseDate) and
// epoch milliseconds are parsed.
func Date() *Schema { return newSchema(TypeDate) }

// ISO restricts string input to ISO 8601 dates.
func (s *Schema) ISO() *Schema {
	if e := s.expect(TypeDate, "iso"); e != nil {
		return e
	}
	c := s.clone()
	c.date.iso = true
	return c
}

// Format restricts string input to the given moment-style format such as
// "YYYY-MM-DD" or "DD/MM/YYYY HH:mm".
func (s *Schema) Format(format string) *Schema {
	if e := s.expect(TypeDate, "format"); e != nil {
		return e
	}
	layout, err := MomentLayout(format)
	if err != nil {
		return s.withErr("format(%q): %v", format, err)
	}
	c := s.clone()
	c.date.format = format
	c.date.layout = layout
	return c
}

func (s *Schema) coerceDate(st *state, v any) (any, *failure) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		if !st.prefs.convert {
			return nil, fail(CodeDateBase)
		}
		switch {
		case s.date.iso:
			if t, ok := parseISODate(x); ok {
				return t, nil
			}
			return nil, fail(CodeDateFormat, "format", "ISO 8601 date")
		case s.date.layout != "":
			if t, err := time.Parse(s.date.layout, x); err == nil {
				return t, nil
			}
			return nil, fail(CodeDateFormat, "format", "["+s.date.format+"]")
		}
		if t, ok := ParseDate(x); ok {
			return t, nil
		}
	default:
		if f, ok := numberOf(v); ok && st.prefs.convert && !s.date.iso && s.date.layout == "" {
			return time.UnixMilli(int64(f)).UTC(), nil
		}
	}
	return nil, fail(CodeDateBase)
}

// lenientLayouts are tried in order by ParseDate.
var lenientLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01-02-2006",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RubyDate,
	time.UnixDate,
	time.ANSIC,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate parses a date string leniently: ISO 8601, RFC 1123, US-style
// month/day/year and a few common textual forms. Numeric strings are epoch
// milliseconds.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseFloat(s, 64); err == nil {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	if t, ok := parseISODate(s); ok {
		return t, true
	}
	// JavaScript Date.toString() appends the zone name in parentheses.
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}
	for _, layout := range lenientLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// resolveDateLimit converts a limit into a function yielding the limit at
// validation time. "now" is evaluated on every call.
func resolveDateLimit(limit any, layout string) (func() time.Time, error) {
	switch x := Normalize(limit).(type) {
	case time.Time:
		return func() time.Time { return x }, nil
	case string:
		if x == "now" {
			return time.Now, nil
		}
		if layout != "" {
			if t, err := time.Parse(layout, x); err == nil {
				return func() time.Time { return t }, nil
			}
		}
		t, ok := ParseDate(x)
		if !ok {
			return nil, fmt.Errorf("cannot parse date limit %q", x)
		}
		return func() time.Time { return t }, nil
	default:
		if f, ok := numberOf(x); ok {
			t := time.UnixMilli(int64(f)).UTC()
			return func() time.Time { return t }, nil
		}
	}
	return nil, fmt.Errorf("unsupported date limit %T", limit)
}

func (s *Schema) dateLimit(name, code string, limit any, ok func(t, lim int64) bool) *Schema {
	at, err := resolveDateLimit(limit, s.date.layout)
	if err != nil {
		return s.withErr("%s(): %v", name, err)
	}
	arg := Normalize(limit)
	return s.addRule(rule{name: name, args: map[string]any{"limit": arg}, check: func(_ *state, v any) (any, *failure) {
		t := v.(time.Time)
		lim := at()
		if ok(t.UnixMilli(), lim.UnixMilli()) {
			return v, nil
		}
		return nil, fail(code, "limit", lim)
	}})
}
