package meta

import (
	"reflect"
	"slices"
	"sort"

	"github.com/reoring/metaskema/schema"
)

// Bound is a numeric or length limit. Exclusive bounds are open.
type Bound struct {
	Value     float64 `yaml:"value"`
	Exclusive bool    `yaml:"exclusive,omitempty"`
}

// SchemaArg adjusts a compiled schema. It is either a Replace (the schema is
// discarded in favor of another) or a Transform (the schema is rewritten).
type SchemaArg interface {
	Apply(*schema.Schema) *schema.Schema
}

// Replace substitutes the compiled schema entirely.
type Replace struct{ Schema *schema.Schema }

func (r Replace) Apply(*schema.Schema) *schema.Schema { return r.Schema }

// Transform rewrites the compiled schema.
type Transform func(*schema.Schema) *schema.Schema

func (f Transform) Apply(s *schema.Schema) *schema.Schema { return f(s) }

// Conditional picks Then or Otherwise depending on a predicate over the
// sibling values of the field.
type Conditional struct {
	Predicate schema.Predicate
	Then      *schema.Schema
	Otherwise *schema.Schema
}

// FieldDescriptor holds the constraints recorded for one field. Every
// property is optional: nil (or the zero TypeRef) means unset, so that
// descriptors can be merged property by property.
type FieldDescriptor struct {
	Name       string   `yaml:"name,omitempty"`
	DesignType TypeRef  `yaml:"designType,omitempty"`
	ItemType   *TypeRef `yaml:"itemType,omitempty"`

	Required      *bool        `yaml:"required,omitempty"`
	Nullable      *bool        `yaml:"nullable,omitempty"`
	AllowedValues []any        `yaml:"allowedValues,omitempty"`
	CustomSchema  SchemaArg    `yaml:"-"`
	Conditional   *Conditional `yaml:"-"`

	// strings; MinLength and MaxLength also bound arrays
	Alphanum    *bool  `yaml:"alphanum,omitempty"`
	Token       *bool  `yaml:"token,omitempty"`
	Email       *bool  `yaml:"email,omitempty"`
	Hostname    *bool  `yaml:"hostname,omitempty"`
	ISODate     *bool  `yaml:"isoDate,omitempty"`
	ISODuration *bool  `yaml:"isoDuration,omitempty"`
	CreditCard  *bool  `yaml:"creditCard,omitempty"`
	NonEmpty    *bool  `yaml:"nonEmpty,omitempty"`
	MinLength   *Bound `yaml:"minLength,omitempty"`
	MaxLength   *Bound `yaml:"maxLength,omitempty"`

	// numbers
	Unsafe     *bool    `yaml:"unsafe,omitempty"`
	Integer    *bool    `yaml:"integer,omitempty"`
	Port       *bool    `yaml:"port,omitempty"`
	Positive   *bool    `yaml:"positive,omitempty"`
	Negative   *bool    `yaml:"negative,omitempty"`
	Precision  *int     `yaml:"precision,omitempty"`
	MultipleOf *float64 `yaml:"multipleOf,omitempty"`
	MinValue   *Bound   `yaml:"minValue,omitempty"`
	MaxValue   *Bound   `yaml:"maxValue,omitempty"`

	// dates
	DateString *bool   `yaml:"dateString,omitempty"`
	ISO        *bool   `yaml:"iso,omitempty"`
	DateFormat *string `yaml:"dateFormat,omitempty"`
	MinDate    any     `yaml:"minDate,omitempty"`
	MaxDate    any     `yaml:"maxDate,omitempty"`
}

// Merge overlays every property set on patch onto f and returns the result.
// Properties patch leaves unset keep f's value.
func (f FieldDescriptor) Merge(patch FieldDescriptor) FieldDescriptor {
	out := f
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(patch)
	for i := 0; i < src.NumField(); i++ {
		if v := src.Field(i); !v.IsZero() {
			dst.Field(i).Set(v)
		}
	}
	out.AllowedValues = slices.Clone(out.AllowedValues)
	return out
}

func isTrue(b *bool) bool { return b != nil && *b }

// IsRequired reports whether Required is set to true.
func (f FieldDescriptor) IsRequired() bool { return isTrue(f.Required) }

// IsNullable reports whether Nullable is set to true.
func (f FieldDescriptor) IsNullable() bool { return isTrue(f.Nullable) }

// TypeDescriptor holds the constraints recorded for one type.
type TypeDescriptor struct {
	Fields  map[string]FieldDescriptor `yaml:"fields,omitempty"`
	Options *schema.Options            `yaml:"options,omitempty"`
	Global  SchemaArg                  `yaml:"-"`
}

// Clone returns a copy whose Fields map can be modified independently.
func (d TypeDescriptor) Clone() TypeDescriptor {
	out := TypeDescriptor{Fields: make(map[string]FieldDescriptor, len(d.Fields)), Global: d.Global}
	for k, f := range d.Fields {
		f.AllowedValues = slices.Clone(f.AllowedValues)
		out.Fields[k] = f
	}
	if d.Options != nil {
		o := *d.Options
		out.Options = &o
	}
	return out
}

// FieldNames lists the fields in sorted order.
func (d TypeDescriptor) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for k := range d.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// merge overlays patch onto d in place: options and global replace when set,
// fields merge property by property.
func (d *TypeDescriptor) merge(patch TypeDescriptor) {
	if d.Fields == nil {
		d.Fields = map[string]FieldDescriptor{}
	}
	for name, pf := range patch.Fields {
		cur, ok := d.Fields[name]
		if !ok {
			cur = FieldDescriptor{Name: name}
		}
		d.Fields[name] = cur.Merge(pf)
	}
	if patch.Options != nil {
		o := *patch.Options
		d.Options = &o
	}
	if patch.Global != nil {
		d.Global = patch.Global
	}
}
