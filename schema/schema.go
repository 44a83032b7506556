package schema

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Schema types.
const (
	TypeAny     = "any"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeLink    = "link"
)

type presence int

const (
	presenceDefault presence = iota
	presenceRequired
	presenceOptional
)

// ExternalFunc is an asynchronous rule run by ValidateAsync after all other
// rules passed. A non-nil error becomes an any.external issue; the returned
// value replaces the validated value unless it is nil.
type ExternalFunc func(ctx context.Context, value any) (any, error)

// failure is what a rule reports: a code plus its context arguments.
type failure struct {
	code string
	args map[string]any
}

func fail(code string, kv ...any) *failure {
	f := &failure{code: code}
	if len(kv) > 0 {
		f.args = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			f.args[kv[i].(string)] = kv[i+1]
		}
	}
	return f
}

type rule struct {
	name  string
	args  map[string]any
	check func(st *state, v any) (any, *failure)
}

// Schema is an immutable validation schema. Every modifier returns a new
// Schema, so a compiled schema can be shared and further adjusted without
// affecting other holders.
type Schema struct {
	typ       string
	presence  presence
	only      bool
	allow     []any
	invalid   []any
	rules     []rule
	prefs     *Options
	label     string
	externals []ExternalFunc
	whens     []when
	err       error

	// type specific state
	num    numberFlags
	date   dateFlags
	keys   map[string]*Schema
	hasKey bool
	unk    *bool
	items  *Schema
	link   *lazyRef
}

func newSchema(typ string) *Schema { return &Schema{typ: typ} }

// Any accepts every value, including null.
func Any() *Schema { return newSchema(TypeAny) }

func (s *Schema) clone() *Schema {
	c := *s
	c.allow = slices.Clone(s.allow)
	c.invalid = slices.Clone(s.invalid)
	c.rules = slices.Clone(s.rules)
	c.externals = slices.Clone(s.externals)
	c.whens = slices.Clone(s.whens)
	c.keys = maps.Clone(s.keys)
	return &c
}

// Type returns the schema type (string, number, object, ...).
func (s *Schema) Type() string { return s.typ }

// Err returns the configuration error recorded while building the schema.
// Validation of a schema with a configuration error always fails with it.
func (s *Schema) Err() error { return s.err }

func (s *Schema) withErr(format string, args ...any) *Schema {
	c := s.clone()
	if c.err == nil {
		c.err = fmt.Errorf("schema: "+format, args...)
	}
	return c
}

func (s *Schema) expect(typ, method string) *Schema {
	if s.typ == typ {
		return nil
	}
	return s.withErr("%s() is not available on %s schemas", method, s.typ)
}

func (s *Schema) addRule(r rule) *Schema {
	c := s.clone()
	c.rules = append(c.rules, r)
	return c
}

// Required marks the value as mandatory: absence reports any.required.
func (s *Schema) Required() *Schema {
	c := s.clone()
	c.presence = presenceRequired
	return c
}

// Optional allows the value to be absent.
func (s *Schema) Optional() *Schema {
	c := s.clone()
	c.presence = presenceOptional
	return c
}

// Allow adds values that are accepted as-is before any type check. Allow(nil)
// makes the schema nullable.
func (s *Schema) Allow(values ...any) *Schema {
	c := s.clone()
	for _, v := range values {
		c.allow = append(c.allow, Normalize(v))
	}
	return c
}

// Valid restricts the schema to the given values: anything else reports
// any.only.
func (s *Schema) Valid(values ...any) *Schema {
	c := s.Allow(values...)
	c.only = true
	return c
}

// Invalid rejects the given values with any.invalid.
func (s *Schema) Invalid(values ...any) *Schema {
	c := s.clone()
	for _, v := range values {
		c.invalid = append(c.invalid, Normalize(v))
	}
	return c
}

// Prefs attaches validation options that override the caller's options for
// this schema and everything below it.
func (s *Schema) Prefs(o Options) *Schema {
	c := s.clone()
	merged := o
	if s.prefs != nil {
		merged = s.prefs.Merge(o)
	}
	c.prefs = &merged
	return c
}

// Label overrides the label used in messages.
func (s *Schema) Label(name string) *Schema {
	c := s.clone()
	c.label = name
	return c
}

// External appends an asynchronous rule. Schemas with externals can only be
// run through ValidateAsync.
func (s *Schema) External(fn ExternalFunc) *Schema {
	c := s.clone()
	c.externals = append(c.externals, fn)
	return c
}

// Concat merges the rules of other into s. Both schemas must have the same
// type, or one of them must be Any. Keys of objects are merged, with other
// winning on conflicts.
func (s *Schema) Concat(other *Schema) *Schema {
	if other == nil {
		return s
	}
	if s.typ != other.typ && s.typ != TypeAny && other.typ != TypeAny {
		return s.withErr("cannot concat %s schema with %s schema", s.typ, other.typ)
	}
	c := s.clone()
	if c.typ == TypeAny {
		c.typ = other.typ
		c.num, c.date, c.items, c.link = other.num, other.date, other.items, other.link
	}
	if other.presence != presenceDefault {
		c.presence = other.presence
	}
	c.only = c.only || other.only
	c.allow = append(c.allow, other.allow...)
	c.invalid = append(c.invalid, other.invalid...)
	c.rules = append(c.rules, other.rules...)
	c.externals = append(c.externals, other.externals...)
	c.whens = append(c.whens, other.whens...)
	if other.prefs != nil {
		c = c.Prefs(*other.prefs)
	}
	if other.label != "" {
		c.label = other.label
	}
	if other.hasKey {
		if c.keys == nil {
			c.keys = map[string]*Schema{}
		}
		for k, v := range other.keys {
			c.keys[k] = v
		}
		c.hasKey = true
	}
	if other.unk != nil {
		c.unk = other.unk
	}
	if other.items != nil {
		c.items = other.items
	}
	if c.err == nil {
		c.err = other.err
	}
	return c
}

// Validate runs the schema synchronously. Go structs are normalized first
// (see Normalize). The returned value carries conversions (numeric strings,
// rounding, date parsing, stripped keys).
func (s *Schema) Validate(value any, opts ...Options) Result {
	out, iss, err := s.validate(context.Background(), value, false, opts)
	if err != nil {
		return Result{Value: value, Error: err}
	}
	if len(iss) > 0 {
		return Result{Value: value, Error: &ValidationError{Details: iss, Original: value}}
	}
	return Result{Value: out}
}

// ValidateAsync runs the schema including external rules. Violations are
// returned as *ValidationError carrying the original input.
func (s *Schema) ValidateAsync(ctx context.Context, value any, opts ...Options) (any, error) {
	out, iss, err := s.validate(ctx, value, true, opts)
	if err != nil {
		return nil, err
	}
	if len(iss) > 0 {
		return nil, &ValidationError{Details: iss, Original: value}
	}
	return out, nil
}

func (s *Schema) validate(ctx context.Context, value any, async bool, opts []Options) (any, Issues, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	p := defaultPrefs
	for _, o := range opts {
		p = p.apply(o)
	}
	st := &state{ctx: ctx, prefs: p, async: async}
	out, iss := s.run(st, Normalize(value), true)
	if st.fatal != nil {
		return nil, nil, st.fatal
	}
	return out, iss, nil
}

// run validates v at the current state. present is false for keys missing
// from their parent object.
func (s *Schema) run(st *state, v any, present bool) (any, Issues) {
	if s.prefs != nil {
		st = st.withPrefs(*s.prefs)
	}
	branch := s.branch(st)

	if !present {
		if s.isRequired(st) || (branch != nil && branch.presence == presenceRequired) {
			return nil, Issues{st.issue(s, CodeAnyRequired, nil, nil)}
		}
		return nil, nil
	}

	if containsValue(s.allow, v) {
		return v, nil
	}
	if s.only {
		return v, Issues{st.issue(s, CodeAnyOnly, v, map[string]any{"valids": s.allow})}
	}
	if containsValue(s.invalid, v) {
		return v, Issues{st.issue(s, CodeAnyInvalid, v, map[string]any{"invalids": s.invalid})}
	}

	if s.link != nil {
		target, err := s.link.resolve()
		if err != nil {
			return v, Issues{st.issue(s, CodeAnyLink, v, map[string]any{"reason": err.Error()})}
		}
		return target.run(st, v, true)
	}

	out, iss := s.coerce(st, v)
	if len(iss) > 0 {
		return v, iss
	}
	for _, r := range s.rules {
		next, f := r.check(st, out)
		if f != nil {
			iss = append(iss, st.issue(s, f.code, out, f.args))
			if st.prefs.abortEarly {
				return v, iss
			}
			continue
		}
		out = next
	}
	if len(iss) > 0 {
		return v, iss
	}

	if branch != nil {
		var biss Issues
		out, biss = branch.run(st, out, true)
		if len(biss) > 0 {
			return v, biss
		}
	}

	if len(s.externals) > 0 {
		if !st.async {
			st.setFatal(ErrExternalRequiresAsync)
			return v, nil
		}
		for _, fn := range s.externals {
			next, err := fn(st.ctx, out)
			if err != nil {
				return v, Issues{st.issue(s, CodeAnyExternal, out, map[string]any{"reason": err.Error()})}
			}
			if next != nil {
				out = next
			}
		}
	}
	return out, nil
}

func (s *Schema) isRequired(st *state) bool {
	switch s.presence {
	case presenceRequired:
		return true
	case presenceOptional:
		return false
	}
	return st.prefs.presence == PresenceRequired
}

// coerce performs the type check, converting the value when allowed.
func (s *Schema) coerce(st *state, v any) (any, Issues) {
	var (
		out any
		f   *failure
	)
	switch s.typ {
	case TypeAny:
		return v, nil
	case TypeString:
		out, f = s.coerceString(st, v)
	case TypeNumber:
		out, f = s.coerceNumber(st, v)
	case TypeBoolean:
		out, f = coerceBoolean(st, v)
	case TypeDate:
		out, f = s.coerceDate(st, v)
	case TypeArray:
		return s.runArray(st, v)
	case TypeObject:
		return s.runObject(st, v)
	default:
		return v, nil
	}
	if f != nil {
		return v, Issues{st.issue(s, f.code, v, f.args)}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
