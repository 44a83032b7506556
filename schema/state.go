package schema

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/metaskema/i18n"
)

// state is the per-node validation context.
type state struct {
	ctx    context.Context
	prefs  prefs
	async  bool
	path   []any
	parent map[string]any
	fatal  error
	root   *state
}

func (st *state) top() *state {
	if st.root != nil {
		return st.root
	}
	return st
}

func (st *state) withPrefs(o Options) *state {
	c := *st
	c.prefs = st.prefs.apply(o)
	c.root = st.top()
	return &c
}

func (st *state) child(seg any, parent map[string]any) *state {
	c := *st
	c.path = append(slices.Clone(st.path), seg)
	c.parent = parent
	c.root = st.top()
	return &c
}

func (st *state) setFatal(err error) {
	t := st.top()
	if t.fatal == nil {
		t.fatal = err
	}
}

func (st *state) issue(s *Schema, code string, value any, args map[string]any) Issue {
	label := s.label
	if label == "" {
		label = Label(st.path)
	}
	ctx := map[string]any{"label": label, "value": value}
	if n := len(st.path); n > 0 {
		ctx["key"] = st.path[n-1]
	}
	for k, v := range args {
		ctx[k] = v
	}
	data := make(map[string]string, len(ctx))
	for k, v := range ctx {
		data[k] = formatArg(v)
	}
	return Issue{
		Path:     Pointer(st.path),
		Segments: slices.Clone(st.path),
		Code:     code,
		Message:  i18n.T(code, data),
		Context:  ctx,
	}
}

// formatArg renders rule arguments for message templates.
func formatArg(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []any:
		parts := make([]string, 0, len(x))
		for _, it := range x {
			if s, ok := it.(string); ok {
				parts = append(parts, strconv.Quote(s))
				continue
			}
			parts = append(parts, formatArg(it))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return "[" + strings.Join(x, ", ") + "]"
	}
	return fmt.Sprint(v)
}

// containsValue compares with numeric and time awareness: 1, int64(1) and
// json.Number("1") are the same value.
func containsValue(list []any, v any) bool {
	for _, it := range list {
		if sameValue(it, v) {
			return true
		}
	}
	return false
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := numberOf(a); ok {
		fb, ok := numberOf(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}
