package meta

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Kind is the design kind of a field.
type Kind int

const (
	KindUnset Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindDate
	KindArray
	KindObject
	KindAny
)

var kindNames = [...]string{"", "string", "number", "boolean", "date", "array", "object", "any"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && k >= 0 {
		if k == KindUnset {
			return "unset"
		}
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a kind name (case-insensitive) to a Kind.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, kn := range kindNames {
		if kn != "" && kn == n {
			return Kind(i), nil
		}
	}
	return KindUnset, fmt.Errorf("meta: unknown kind %q", name)
}

// Key identifies a described type. Go types are keyed by their reflect.Type
// (see KeyOf); declarative types use Named.
type Key interface {
	String() string
}

// Named keys a type that only exists as a descriptor, for example one loaded
// from a manifest.
type Named string

func (n Named) String() string { return string(n) }

// KeyOf returns the key of T. Pointer types are keyed by their element type.
func KeyOf[T any]() Key { return TypeKey(reflect.TypeFor[T]()) }

// TypeKey returns the key of t, dereferencing pointer types.
func TypeKey(t reflect.Type) Key {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil
	}
	return t
}

func normalizeKey(k Key) Key {
	if t, ok := k.(reflect.Type); ok {
		return TypeKey(t)
	}
	return k
}

// TypeRef is a design type: a kind plus, for objects (and array items of
// object kind), the key of the nested type.
type TypeRef struct {
	Kind Kind
	Key  Key
}

func (r TypeRef) String() string {
	if r.Key != nil {
		return fmt.Sprintf("%s(%s)", r.Kind, r.Key)
	}
	return r.Kind.String()
}

// IsZero reports whether no design type is recorded.
func (r TypeRef) IsZero() bool { return r.Kind == KindUnset && r.Key == nil }

// MarshalYAML renders the reference in its String form.
func (r TypeRef) MarshalYAML() (any, error) { return r.String(), nil }

var timeType = reflect.TypeFor[time.Time]()

// RefOf derives the design type of a Go type: strings, numbers, booleans and
// time.Time map to their scalar kinds, slices and arrays to KindArray,
// structs to KindObject keyed by the struct type, maps to a keyless
// KindObject and interfaces to KindAny.
func RefOf(t reflect.Type) TypeRef {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return TypeRef{Kind: KindDate}
	}
	if t.Kind() == reflect.String && t.Name() == "Number" && strings.HasSuffix(t.PkgPath(), "json") {
		return TypeRef{Kind: KindNumber}
	}
	switch t.Kind() {
	case reflect.String:
		return TypeRef{Kind: KindString}
	case reflect.Bool:
		return TypeRef{Kind: KindBoolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypeRef{Kind: KindNumber}
	case reflect.Slice, reflect.Array:
		return TypeRef{Kind: KindArray}
	case reflect.Struct:
		return TypeRef{Kind: KindObject, Key: t}
	case reflect.Map:
		return TypeRef{Kind: KindObject}
	}
	return TypeRef{Kind: KindAny}
}

// itemRefOf derives the item type of a slice or array. Interface elements
// yield no item type.
func itemRefOf(t reflect.Type) *TypeRef {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Slice && t.Kind() != reflect.Array {
		return nil
	}
	if t.Elem().Kind() == reflect.Interface {
		return nil
	}
	ref := RefOf(t.Elem())
	return &ref
}
