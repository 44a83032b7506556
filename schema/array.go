package schema

// Array accepts lists. Items sets the schema every element must satisfy.
func Array() *Schema { return newSchema(TypeArray) }

// Items validates each element against item. Element issues carry the index
// in their path (tags/2).
func (s *Schema) Items(item *Schema) *Schema {
	if e := s.expect(TypeArray, "items"); e != nil {
		return e
	}
	if item == nil {
		return s.withErr("items() requires a schema")
	}
	c := s.clone()
	c.items = item
	if c.err == nil && item.err != nil {
		c.err = item.err
	}
	return c
}

func (s *Schema) arrayLength(name, code string, limit any, ok func(n, lim int) bool) *Schema {
	lim, valid := lengthLimit(limit)
	if !valid {
		return s.withErr("%s() limit must be a non-negative integer, got %v", name, limit)
	}
	return s.addRule(rule{name: name, args: map[string]any{"limit": lim}, check: func(_ *state, v any) (any, *failure) {
		if ok(len(v.([]any)), lim) {
			return v, nil
		}
		return nil, fail(code, "limit", lim)
	}})
}

func (s *Schema) runArray(st *state, v any) (any, Issues) {
	list, ok := v.([]any)
	if !ok {
		return v, Issues{st.issue(s, CodeArrayBase, v, nil)}
	}
	if s.items == nil {
		return list, nil
	}
	out := make([]any, len(list))
	var iss Issues
	for i, it := range list {
		r, ci := s.items.run(st.child(i, nil), it, true)
		if len(ci) > 0 {
			iss = append(iss, ci...)
			if st.prefs.abortEarly {
				return v, iss
			}
			out[i] = it
			continue
		}
		out[i] = r
	}
	if len(iss) > 0 {
		return v, iss
	}
	return out, nil
}
