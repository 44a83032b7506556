// Package manifest loads declarative type descriptors from YAML or JSON and
// registers them into a meta.Store under meta.Named keys.
//
//	types:
//	  Base:
//	    options: {allowUnknown: true}
//	    fields:
//	      id: {kind: number, integer: true, required: true}
//	  User:
//	    extends: Base
//	    fields:
//	      email: {kind: string, email: true}
//	      score: {kind: number, min: {value: 3, exclusive: true}}
//	      tags: {kind: array, items: string, minLength: 1}
//	      address: {kind: object, type: Address}
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/reoring/metaskema/meta"
	"github.com/reoring/metaskema/schema"
)

// Manifest is a set of named type declarations.
type Manifest struct {
	Types map[string]TypeSpec `yaml:"types"`
}

// TypeSpec declares one type.
type TypeSpec struct {
	Extends string               `yaml:"extends,omitempty"`
	Options *schema.Options      `yaml:"options,omitempty"`
	Fields  map[string]FieldSpec `yaml:"fields,omitempty"`
}

// FieldSpec declares the constraints of one field. Kind names a meta.Kind;
// Type names the nested type of an object field.
type FieldSpec struct {
	Kind  string    `yaml:"kind,omitempty"`
	Type  string    `yaml:"type,omitempty"`
	Items *ItemSpec `yaml:"items,omitempty"`

	Required *bool `yaml:"required,omitempty"`
	Nullable *bool `yaml:"nullable,omitempty"`
	Allow    []any `yaml:"allow,omitempty"`

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

	Unsafe     *bool    `yaml:"unsafe,omitempty"`
	Integer    *bool    `yaml:"integer,omitempty"`
	Port       *bool    `yaml:"port,omitempty"`
	Positive   *bool    `yaml:"positive,omitempty"`
	Negative   *bool    `yaml:"negative,omitempty"`
	Precision  *int     `yaml:"precision,omitempty"`
	MultipleOf *float64 `yaml:"multipleOf,omitempty"`
	Min        *Bound   `yaml:"min,omitempty"`
	Max        *Bound   `yaml:"max,omitempty"`

	DateString *bool   `yaml:"dateString,omitempty"`
	ISO        *bool   `yaml:"iso,omitempty"`
	Format     *string `yaml:"format,omitempty"`
	MinDate    any     `yaml:"minDate,omitempty"`
	MaxDate    any     `yaml:"maxDate,omitempty"`
}

// Bound is a limit written either as a bare number (inclusive) or as
// {value, exclusive}.
type Bound meta.Bound

func (b *Bound) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := n.Decode(&v); err != nil {
			return fmt.Errorf("line %d: bound must be a number: %w", n.Line, err)
		}
		*b = Bound{Value: v}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Value     *float64 `yaml:"value"`
			Exclusive bool     `yaml:"exclusive"`
		}
		if err := n.Decode(&raw); err != nil {
			return err
		}
		if raw.Value == nil {
			return fmt.Errorf("line %d: bound requires a value", n.Line)
		}
		*b = Bound{Value: *raw.Value, Exclusive: raw.Exclusive}
		return nil
	}
	return fmt.Errorf("line %d: bound must be a number or a mapping", n.Line)
}

// ItemSpec is the element type of an array field: a kind name or
// {kind, type}.
type ItemSpec struct {
	Kind string `yaml:"kind"`
	Type string `yaml:"type,omitempty"`
}

func (it *ItemSpec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		it.Kind = n.Value
		return nil
	}
	type plain ItemSpec
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*it = ItemSpec(p)
	return nil
}

// Parse decodes a manifest. JSON input is accepted as YAML. Duplicate keys
// and unknown properties are errors.
func Parse(data []byte) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if err := checkDuplicates(&root); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	m := &Manifest{}
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	if err := m.check(); err != nil {
		return nil, err
	}
	return m, nil
}

// TypeNames lists the declared types in sorted order.
func (m *Manifest) TypeNames() []string {
	names := make([]string, 0, len(m.Types))
	for k := range m.Types {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) check() error {
	for _, name := range m.TypeNames() {
		ts := m.Types[name]
		if ts.Extends != "" {
			if _, ok := m.Types[ts.Extends]; !ok {
				return fmt.Errorf("manifest: %s extends undeclared type %q", name, ts.Extends)
			}
		}
		for _, fname := range sortedFields(ts.Fields) {
			if err := m.checkField(ts.Fields[fname]); err != nil {
				return fmt.Errorf("manifest: %s.%s: %w", name, fname, err)
			}
		}
	}
	return nil
}

func (m *Manifest) checkField(f FieldSpec) error {
	kind, err := parseKind(f.Kind)
	if err != nil {
		return err
	}
	if err := m.checkRef(kind, f.Type); err != nil {
		return err
	}
	if f.Items != nil {
		if kind != meta.KindArray {
			return fmt.Errorf("items requires kind array, got %s", kind)
		}
		ik, err := parseKind(f.Items.Kind)
		if err != nil {
			return fmt.Errorf("items: %w", err)
		}
		if err := m.checkRef(ik, f.Items.Type); err != nil {
			return fmt.Errorf("items: %w", err)
		}
	}
	return nil
}

func (m *Manifest) checkRef(kind meta.Kind, typ string) error {
	if typ == "" {
		return nil
	}
	if kind != meta.KindObject {
		return fmt.Errorf("type %q requires kind object, got %s", typ, kind)
	}
	if _, ok := m.Types[typ]; !ok {
		return fmt.Errorf("undeclared type %q", typ)
	}
	return nil
}

func parseKind(name string) (meta.Kind, error) {
	if name == "" {
		return meta.KindUnset, nil
	}
	return meta.ParseKind(name)
}

func sortedFields(fields map[string]FieldSpec) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
