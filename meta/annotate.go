package meta

import (
	"fmt"
	"reflect"

	"github.com/reoring/metaskema/schema"
)

// Constraint records one property on a field descriptor.
type Constraint func(f *FieldDescriptor)

// TypeConstraint records one property on a type descriptor.
type TypeConstraint func(d *TypeDescriptor)

// Field annotates the field name of T. name is either the Go field name or
// its wire key; see FieldOf.
func Field[T any](s *Store, name string, cs ...Constraint) error {
	return FieldOf(s, KeyOf[T](), name, cs...)
}

// FieldOf annotates a field of the type identified by key.
//
// For Go struct types, name may be the Go field name or the wire key
// (skema name, json name, Go name), and promoted fields of embedded structs
// are found too. On first annotation the design type is derived from the Go
// field type unless a constraint set it. For Named keys, name is the wire
// key and the design type must come from DesignType.
//
// Only the lookup can fail; constraints are not checked until compilation.
func FieldOf(s *Store, key Key, name string, cs ...Constraint) error {
	key = normalizeKey(key)
	patch := FieldDescriptor{}
	for _, c := range cs {
		c(&patch)
	}

	wire := name
	var derived TypeRef
	var derivedItem *TypeRef
	if t, ok := key.(reflect.Type); ok {
		sf, found := findField(t, name)
		if !found {
			return fmt.Errorf("meta: %s has no field %q", t, name)
		}
		wire, _, _ = schema.FieldKey(sf)
		derived = RefOf(sf.Type)
		derivedItem = itemRefOf(sf.Type)
	}
	patch.Name = wire

	s.update(key, func(d *TypeDescriptor) {
		cur := d.Fields[wire]
		if cur.DesignType.IsZero() && patch.DesignType.IsZero() {
			patch.DesignType = derived
		}
		if cur.ItemType == nil && patch.ItemType == nil && derivedItem != nil {
			patch.ItemType = derivedItem
		}
		d.merge(TypeDescriptor{Fields: map[string]FieldDescriptor{wire: patch}})
	})
	return nil
}

func findField(t reflect.Type, name string) (reflect.StructField, bool) {
	if t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	var byWire *reflect.StructField
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous && !sf.IsExported() {
			continue
		}
		if !promoted(t, sf.Index) {
			continue
		}
		wire, _, skip := schema.FieldKey(sf)
		if skip {
			continue
		}
		if sf.Name == name {
			return sf, true
		}
		if wire == name && byWire == nil {
			f := sf
			byWire = &f
		}
	}
	if byWire != nil {
		return *byWire, true
	}
	return reflect.StructField{}, false
}

// promoted reports whether the field at index is reachable at the top level
// of t's wire object, that is every embedding on its path is flattened.
func promoted(t reflect.Type, index []int) bool {
	cur := t
	for _, i := range index[:len(index)-1] {
		ft, ok := schema.EmbeddedStruct(cur.Field(i))
		if !ok {
			return false
		}
		cur = ft
	}
	return true
}

// Type annotates T itself.
func Type[T any](s *Store, cs ...TypeConstraint) {
	TypeOf(s, KeyOf[T](), cs...)
}

// TypeOf annotates the type identified by key.
func TypeOf(s *Store, key Key, cs ...TypeConstraint) {
	patch := TypeDescriptor{}
	for _, c := range cs {
		c(&patch)
	}
	s.MergeOwn(key, patch)
}

// SchemaOptions attaches validation options to the type's compiled schema.
func SchemaOptions(o schema.Options) TypeConstraint {
	return func(d *TypeDescriptor) { d.Options = &o }
}

// Global attaches a replacement or transform applied to the type's whole
// compiled schema.
func Global(arg SchemaArg) TypeConstraint {
	return func(d *TypeDescriptor) { d.Global = arg }
}

func enabled(flags []bool) *bool {
	v := len(flags) == 0 || flags[0]
	return &v
}

// DesignType overrides the derived design type. nested names the type of an
// object field.
func DesignType(kind Kind, nested ...Key) Constraint {
	ref := TypeRef{Kind: kind}
	if len(nested) > 0 {
		ref.Key = normalizeKey(nested[0])
	}
	return func(f *FieldDescriptor) { f.DesignType = ref }
}

// Required marks the field as mandatory. Required(false) makes it optional.
func Required(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Required = v }
}

// Optional is Required(false).
func Optional() Constraint { return Required(false) }

// Nullable admits null.
func Nullable(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Nullable = v }
}

// Allow restricts the field to the given values.
func Allow(values ...any) Constraint {
	vals := make([]any, 0, len(values))
	for _, v := range values {
		vals = append(vals, schema.Normalize(v))
	}
	return func(f *FieldDescriptor) { f.AllowedValues = vals }
}

// Custom replaces or transforms the field's compiled schema.
func Custom(arg SchemaArg) Constraint {
	return func(f *FieldDescriptor) { f.CustomSchema = arg }
}

// When applies then or otherwise on top of the field schema depending on
// pred, evaluated over the sibling values.
func When(pred schema.Predicate, then, otherwise *schema.Schema) Constraint {
	c := &Conditional{Predicate: pred, Then: then, Otherwise: otherwise}
	return func(f *FieldDescriptor) { f.Conditional = c }
}

// Alphanum allows only ASCII letters and digits.
func Alphanum(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Alphanum = v }
}

// Token allows only letters, digits and underscores.
func Token(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Token = v }
}

// Email requires a valid email address.
func Email(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Email = v }
}

// Hostname requires a valid hostname or IP address.
func Hostname(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Hostname = v }
}

// ISODate requires an ISO 8601 date string.
func ISODate(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.ISODate = v }
}

// ISODuration requires an ISO 8601 duration string.
func ISODuration(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.ISODuration = v }
}

// CreditCard requires a Luhn-valid card number.
func CreditCard(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.CreditCard = v }
}

// NonEmpty requires at least one character or item.
func NonEmpty(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.NonEmpty = v }
}

// MinLength bounds string length or item count from below.
func MinLength(n int, exclusive ...bool) Constraint {
	b := &Bound{Value: float64(n), Exclusive: len(exclusive) > 0 && exclusive[0]}
	return func(f *FieldDescriptor) { f.MinLength = b }
}

// MaxLength bounds string length or item count from above.
func MaxLength(n int, exclusive ...bool) Constraint {
	b := &Bound{Value: float64(n), Exclusive: len(exclusive) > 0 && exclusive[0]}
	return func(f *FieldDescriptor) { f.MaxLength = b }
}

// MinItems is MinLength for arrays.
func MinItems(n int) Constraint { return MinLength(n) }

// MaxItems is MaxLength for arrays.
func MaxItems(n int) Constraint { return MaxLength(n) }

// Unsafe accepts numbers outside the safe integer range.
func Unsafe(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Unsafe = v }
}

// Integer rejects numbers with a fractional part.
func Integer(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Integer = v }
}

// Port requires an integer between 0 and 65535.
func Port(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Port = v }
}

// Positive requires a number greater than zero.
func Positive(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Positive = v }
}

// Negative requires a number less than zero.
func Negative(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.Negative = v }
}

// Precision limits the number of decimal places.
func Precision(places int) Constraint {
	return func(f *FieldDescriptor) { f.Precision = &places }
}

// MultipleOf requires a multiple of base.
func MultipleOf(base float64) Constraint {
	return func(f *FieldDescriptor) { f.MultipleOf = &base }
}

// Min is an inclusive lower numeric bound.
func Min(v float64) Constraint { return MinValue(Bound{Value: v}) }

// Max is an inclusive upper numeric bound.
func Max(v float64) Constraint { return MaxValue(Bound{Value: v}) }

// MinValue sets the lower numeric bound.
func MinValue(b Bound) Constraint {
	return func(f *FieldDescriptor) { f.MinValue = &b }
}

// MaxValue sets the upper numeric bound.
func MaxValue(b Bound) Constraint {
	return func(f *FieldDescriptor) { f.MaxValue = &b }
}

// DateString compiles the field as a date even though its Go type is a
// string.
func DateString(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.DateString = v }
}

// ISO restricts date input to ISO 8601 strings.
func ISO(on ...bool) Constraint {
	v := enabled(on)
	return func(f *FieldDescriptor) { f.ISO = v }
}

// DateFormat restricts date input to a moment-style format (YYYY-MM-DD).
func DateFormat(format string) Constraint {
	return func(f *FieldDescriptor) { f.DateFormat = &format }
}

// DateMin sets the earliest date: "now", a time.Time, a date string or epoch
// milliseconds.
func DateMin(limit any) Constraint {
	return func(f *FieldDescriptor) { f.MinDate = limit }
}

// DateMax sets the latest date; see DateMin.
func DateMax(limit any) Constraint {
	return func(f *FieldDescriptor) { f.MaxDate = limit }
}

// Items sets the kind of array elements. nested names the element type for
// KindObject.
func Items(kind Kind, nested ...Key) Constraint {
	ref := TypeRef{Kind: kind}
	if len(nested) > 0 {
		ref.Key = normalizeKey(nested[0])
	}
	return func(f *FieldDescriptor) { f.ItemType = &ref }
}

// ItemType derives the array element type from T.
func ItemType[T any]() Constraint {
	ref := RefOf(reflect.TypeFor[T]())
	return func(f *FieldDescriptor) { f.ItemType = &ref }
}
