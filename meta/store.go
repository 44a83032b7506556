package meta

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/reoring/metaskema/schema"
)

// Store holds, per type, the constraints declared on that type itself.
// Ancestor constraints are never copied in; see Resolver. Entries are never
// evicted. A Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	own     map[Key]*TypeDescriptor
	parents map[Key]Key
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{own: map[Key]*TypeDescriptor{}, parents: map[Key]Key{}}
}

// GetOwn returns a copy of the type's own descriptor, or false when the
// type was never annotated.
func (s *Store) GetOwn(key Key) (TypeDescriptor, bool) {
	key = normalizeKey(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.own[key]
	if !ok {
		return TypeDescriptor{}, false
	}
	return d.Clone(), true
}

// MergeOwn merges patch into the type's own descriptor, creating it when
// absent. Field patches merge property by property into existing entries.
func (s *Store) MergeOwn(key Key, patch TypeDescriptor) {
	s.update(key, func(d *TypeDescriptor) { d.merge(patch) })
}

func (s *Store) update(key Key, fn func(d *TypeDescriptor)) {
	key = normalizeKey(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.own[key]
	if !ok {
		d = &TypeDescriptor{Fields: map[string]FieldDescriptor{}}
		s.own[key] = d
	}
	fn(d)
}

// Extend registers parent as the immediate ancestor of child. It overrides
// the ancestor derived from struct embedding and rejects cycles.
func (s *Store) Extend(child, parent Key) error {
	child, parent = normalizeKey(child), normalizeKey(parent)
	if child == nil || parent == nil {
		return fmt.Errorf("meta: extend requires two keys")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[Key]bool{child: true}
	for k, ok := parent, true; ok; k, ok = s.parentLocked(k) {
		if seen[k] {
			return fmt.Errorf("meta: extending %s with %s creates a cycle", child, parent)
		}
		seen[k] = true
	}
	s.parents[child] = parent
	return nil
}

// Parent returns the immediate ancestor of key: the one registered with
// Extend or, for struct types, the first embedded struct field.
func (s *Store) Parent(key Key) (Key, bool) {
	key = normalizeKey(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parentLocked(key)
}

func (s *Store) parentLocked(key Key) (Key, bool) {
	if p, ok := s.parents[key]; ok {
		return p, true
	}
	t, ok := key.(reflect.Type)
	if !ok || t.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < t.NumField(); i++ {
		if ft, ok := schema.EmbeddedStruct(t.Field(i)); ok && ft != t {
			return ft, true
		}
	}
	return nil, false
}

// Keys lists the annotated types sorted by name.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0, len(s.own))
	for k := range s.own {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Lookup finds an annotated type by name (Key.String()).
func (s *Store) Lookup(name string) (Key, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k := range s.own {
		if k.String() == name {
			return k, true
		}
	}
	if _, ok := s.parents[Named(name)]; ok {
		return Named(name), true
	}
	return nil, false
}
