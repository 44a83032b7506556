package compiler

import (
	"fmt"
	"sync"

	"github.com/reoring/metaskema/meta"
	"github.com/reoring/metaskema/schema"
)

// session is one Compile call. It remembers the object schemas it built so
// that a type referenced again, or recursively, is compiled once.
type session struct {
	resolver *meta.Resolver
	building map[meta.Key]bool

	mu      sync.Mutex
	objects map[meta.Key]*schema.Schema
}

func newSession(r *meta.Resolver) *session {
	return &session{resolver: r, building: map[meta.Key]bool{}, objects: map[meta.Key]*schema.Schema{}}
}

func (s *session) root(key meta.Key) (*schema.Schema, error) {
	desc, ok := s.resolver.Resolve(key)
	if !ok {
		return schema.Object(), nil
	}
	obj, err := s.object(key, desc)
	if err != nil {
		return nil, err
	}
	if desc.Global != nil {
		obj = desc.Global.Apply(obj)
		if obj == nil {
			return nil, &ConfigError{Type: key.String(), Reason: "global constraint produced no schema"}
		}
	}
	if err := obj.Err(); err != nil {
		return nil, &ConfigError{Type: key.String(), Reason: err.Error()}
	}
	return obj, nil
}

// object builds the keyed composite of key with the type's options applied.
func (s *session) object(key meta.Key, desc meta.TypeDescriptor) (*schema.Schema, error) {
	s.building[key] = true
	defer delete(s.building, key)

	keys := make(map[string]*schema.Schema, len(desc.Fields))
	for _, name := range desc.FieldNames() {
		fs, err := s.field(key, name, desc.Fields[name])
		if err != nil {
			return nil, err
		}
		keys[name] = fs
	}
	obj := schema.Object().Keys(keys)
	if desc.Options != nil {
		obj = obj.Prefs(*desc.Options)
	}
	s.mu.Lock()
	s.objects[key] = obj
	s.mu.Unlock()
	return obj, nil
}

func (s *session) built(key meta.Key) (*schema.Schema, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// nested returns the object schema of a composite field together with the
// nested type's global constraint. A type still being built is referenced
// lazily.
func (s *session) nested(ref meta.TypeRef) (*schema.Schema, meta.SchemaArg, error) {
	if ref.Key == nil {
		return schema.Object(), nil, nil
	}
	key := canonical(ref.Key)
	desc, ok := s.resolver.Resolve(key)
	if !ok {
		return schema.Object(), nil, nil
	}
	if obj, ok := s.built(key); ok {
		return obj, desc.Global, nil
	}
	if s.building[key] {
		return schema.Lazy(func() (*schema.Schema, error) {
			if obj, ok := s.built(key); ok {
				return obj, nil
			}
			return nil, fmt.Errorf("compiler: %s was never compiled", key)
		}), desc.Global, nil
	}
	obj, err := s.object(key, desc)
	return obj, desc.Global, err
}

// field compiles one field: the kind specific schema followed by the
// conditional, null allowance, allowed values, presence, custom schema and
// the nested type's global constraint, in that order.
func (s *session) field(owner meta.Key, name string, f meta.FieldDescriptor) (*schema.Schema, error) {
	fs, global, err := s.dispatch(owner, name, f)
	if err != nil {
		return nil, err
	}
	if c := f.Conditional; c != nil {
		fs = fs.When(c.Predicate, c.Then, c.Otherwise)
	}
	if f.IsNullable() {
		fs = fs.Allow(nil)
	}
	if f.AllowedValues != nil {
		fs = fs.Valid(f.AllowedValues...)
	}
	if f.IsRequired() {
		fs = fs.Required()
	} else {
		fs = fs.Optional()
	}
	if f.CustomSchema != nil {
		fs = f.CustomSchema.Apply(fs)
	}
	if global != nil && fs != nil {
		fs = global.Apply(fs)
	}
	if fs == nil {
		return nil, &ConfigError{Type: owner.String(), Field: name, Reason: "custom schema produced no schema"}
	}
	if err := fs.Err(); err != nil {
		return nil, &ConfigError{Type: owner.String(), Field: name, Reason: err.Error()}
	}
	return fs, nil
}

func (s *session) dispatch(owner meta.Key, name string, f meta.FieldDescriptor) (*schema.Schema, meta.SchemaArg, error) {
	kind := effectiveKind(f)
	if u, ok := misplaced(kind, f); ok {
		return nil, nil, &ConfigError{Type: owner.String(), Field: name, Reason: fmt.Sprintf("%s is not applicable to %s fields", u, kind)}
	}
	bad := func(reason string) error { return &ConfigError{Type: owner.String(), Field: name, Reason: reason} }

	switch kind {
	case meta.KindString:
		sc, reason := stringSchema(f)
		if reason != "" {
			return nil, nil, bad(reason)
		}
		return sc, nil, nil
	case meta.KindNumber:
		return numberSchema(f), nil, nil
	case meta.KindBoolean:
		return schema.Boolean(), nil, nil
	case meta.KindDate:
		return dateSchema(f), nil, nil
	case meta.KindArray:
		item := schema.Any()
		if f.ItemType != nil {
			var err error
			item, err = s.field(owner, name+"[]", meta.FieldDescriptor{Name: name, DesignType: *f.ItemType})
			if err != nil {
				return nil, nil, err
			}
		}
		lo, hi, reason := lengths(f)
		if reason != "" {
			return nil, nil, bad(reason)
		}
		sc := schema.Array().Items(item)
		if lo > 0 {
			sc = sc.Min(lo)
		}
		if hi >= 0 {
			sc = sc.Max(hi)
		}
		return sc, nil, nil
	case meta.KindObject:
		return s.nested(f.DesignType)
	case meta.KindAny, meta.KindUnset:
		return schema.Any(), nil, nil
	}
	return nil, nil, bad(fmt.Sprintf("unknown design kind %s", kind))
}
