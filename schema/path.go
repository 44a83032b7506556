package schema

import (
	"strconv"
	"strings"
)

// Pointer renders path segments as a JSON Pointer, escaping '~' and '/'.
func Pointer(segments []any) string {
	if len(segments) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range segments {
		b.WriteByte('/')
		switch v := s.(type) {
		case int:
			b.WriteString(strconv.Itoa(v))
		case string:
			b.WriteString(strings.ReplaceAll(strings.ReplaceAll(v, "~", "~0"), "/", "~1"))
		}
	}
	return b.String()
}

// Label renders path segments the way messages refer to them:
// favoriteColors[1], address.city. The root is labelled "value".
func Label(segments []any) string {
	if len(segments) == 0 {
		return "value"
	}
	b := &strings.Builder{}
	for i, s := range segments {
		switch v := s.(type) {
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		}
	}
	return b.String()
}
