package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// FieldKey resolves the external key of a struct field.
// Priority: skema:"name=..." > json tag name > field name. skip is true for
// "-" and unexported fields; omitEmpty reflects the json omitempty option.
func FieldKey(sf reflect.StructField) (name string, omitEmpty, skip bool) {
	if !sf.IsExported() && !sf.Anonymous {
		return "", false, true
	}
	jt := sf.Tag.Get("json")
	if jt == "-" {
		return "", false, true
	}
	jname, jopts, _ := strings.Cut(jt, ",")
	omitEmpty = strings.Contains(","+jopts+",", ",omitempty,")
	name = sf.Name
	if jname != "" {
		name = jname
	}
	if st := sf.Tag.Get("skema"); st != "" {
		for _, p := range strings.Split(st, ",") {
			p = strings.TrimSpace(p)
			if p == "-" {
				return "", false, true
			}
			if v, ok := strings.CutPrefix(p, "name="); ok {
				name = v
			}
		}
	}
	return name, omitEmpty, false
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
)

// Normalize converts Go values into the generic shape schemas validate:
// structs and string-keyed maps become map[string]any, slices and arrays
// become []any, named scalar types become their base kinds, pointers are
// dereferenced (nil becomes null). time.Time and json.Number are kept.
// Struct fields honor FieldKey, omitempty and embedded struct promotion; a
// struct field holding a nil pointer or interface is left out.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, string, bool, float64, int, int64, time.Time, json.Number:
		return x
	}
	return normalizeValue(reflect.ValueOf(v))
}

func normalizeValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}
	t := rv.Type()
	switch t {
	case timeType:
		if !rv.CanInterface() {
			return nil
		}
		return rv.Interface()
	case jsonNumberType:
		return json.Number(rv.String())
	}
	if t.Kind() == reflect.String && t.Name() == "Number" && strings.HasSuffix(t.PkgPath(), "json") {
		return json.Number(rv.String())
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalizeValue(rv.Elem())
	case reflect.Struct:
		out := map[string]any{}
		normalizeStruct(rv, out)
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			key := fmt.Sprint(normalizeValue(k))
			out[key] = normalizeValue(iter.Value())
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalizeValue(rv.Index(i))
		}
		return out
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	if rv.CanInterface() {
		return rv.Interface()
	}
	return nil
}

// EmbeddedStruct reports whether sf is an embedded struct (or pointer to one)
// whose fields are flattened into the outer object, and returns that struct
// type. Embeddings carrying a json or skema tag stay nested under their key;
// time.Time is never flattened.
func EmbeddedStruct(sf reflect.StructField) (reflect.Type, bool) {
	if !sf.Anonymous || sf.Tag.Get("json") != "" || sf.Tag.Get("skema") != "" {
		return nil, false
	}
	ft := sf.Type
	if ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	if ft.Kind() != reflect.Struct || ft == timeType {
		return nil, false
	}
	return ft, true
}

// normalizeStruct writes the fields of rv into out. Direct fields are
// written before promoted ones, and a promoted field never overwrites a key
// that is already set.
func normalizeStruct(rv reflect.Value, out map[string]any) {
	t := rv.Type()
	var embedded []reflect.Value
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		fv := rv.Field(i)
		if _, ok := EmbeddedStruct(sf); ok {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			embedded = append(embedded, fv)
			continue
		}
		name, omitEmpty, skip := FieldKey(sf)
		if skip || !sf.IsExported() {
			continue
		}
		if omitEmpty && isEmptyValue(fv) {
			continue
		}
		// A nil pointer or interface field is absent, not null.
		if k := fv.Kind(); (k == reflect.Pointer || k == reflect.Interface) && fv.IsNil() {
			continue
		}
		out[name] = normalizeValue(fv)
	}
	for _, ev := range embedded {
		inner := map[string]any{}
		normalizeStruct(ev, inner)
		for k, v := range inner {
			if _, taken := out[k]; !taken {
				out[k] = v
			}
		}
	}
}

// isEmptyValue mirrors encoding/json's omitempty rule.
func isEmptyValue(fv reflect.Value) bool {
	switch fv.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return fv.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return fv.IsZero()
	}
	return false
}
