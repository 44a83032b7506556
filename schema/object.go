package schema

// Object accepts maps with string keys. Without Keys any key is accepted;
// once keys are declared, undeclared keys report object.unknown unless
// allowed or stripped.
func Object() *Schema { return newSchema(TypeObject) }

// bare supplies an unlabelled schema for issues raised on behalf of a key
// that has no schema of its own.
var bare = Any()

// Keys declares child schemas. Calling Keys again adds to the existing set;
// Keys(nil) declares an object that allows no keys.
func (s *Schema) Keys(keys map[string]*Schema) *Schema {
	if e := s.expect(TypeObject, "keys"); e != nil {
		return e
	}
	c := s.clone()
	if c.keys == nil {
		c.keys = make(map[string]*Schema, len(keys))
	}
	c.hasKey = true
	for _, k := range sortedKeys(keys) {
		child := keys[k]
		if child == nil {
			child = Any()
		}
		c.keys[k] = child
		if c.err == nil && child.err != nil {
			c.err = child.err
		}
	}
	return c
}

// Key declares a single child schema.
func (s *Schema) Key(name string, child *Schema) *Schema {
	return s.Keys(map[string]*Schema{name: child})
}

// Unknown controls undeclared keys for this object regardless of the
// AllowUnknown and StripUnknown options. Unknown() allows them.
func (s *Schema) Unknown(allow ...bool) *Schema {
	if e := s.expect(TypeObject, "unknown"); e != nil {
		return e
	}
	v := len(allow) == 0 || allow[0]
	c := s.clone()
	c.unk = &v
	return c
}

// KeyNames lists the declared keys in sorted order.
func (s *Schema) KeyNames() []string { return sortedKeys(s.keys) }

// KeySchema returns the schema declared for key.
func (s *Schema) KeySchema(key string) (*Schema, bool) {
	c, ok := s.keys[key]
	return c, ok
}

func (s *Schema) runObject(st *state, v any) (any, Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, Issues{st.issue(s, CodeObjectBase, v, nil)}
	}
	if !s.hasKey {
		return m, nil
	}
	out := make(map[string]any, len(m))
	var iss Issues
	for _, k := range sortedKeys(s.keys) {
		val, present := m[k]
		r, ci := s.keys[k].run(st.child(k, m), val, present)
		if len(ci) > 0 {
			iss = append(iss, ci...)
			if st.prefs.abortEarly {
				return v, iss
			}
			continue
		}
		if present {
			out[k] = r
		}
	}
	for _, k := range sortedKeys(m) {
		if _, known := s.keys[k]; known {
			continue
		}
		switch {
		case s.unk != nil && *s.unk:
			out[k] = m[k]
		case s.unk == nil && st.prefs.stripUnknown:
		case s.unk == nil && st.prefs.allowUnknown:
			out[k] = m[k]
		default:
			iss = append(iss, st.child(k, m).issue(bare, CodeObjectUnknown, m[k], nil))
			if st.prefs.abortEarly {
				return v, iss
			}
		}
	}
	if len(iss) > 0 {
		return v, iss
	}
	return out, nil
}
