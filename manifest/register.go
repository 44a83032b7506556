package manifest

import (
	"fmt"

	"github.com/reoring/metaskema/meta"
)

// Register records every declared type in s under meta.Named(name). Types
// are annotated in sorted order; ancestors are linked with Store.Extend.
func (m *Manifest) Register(s *meta.Store) error {
	for _, name := range m.TypeNames() {
		ts := m.Types[name]
		key := meta.Named(name)
		if ts.Extends != "" {
			if err := s.Extend(key, meta.Named(ts.Extends)); err != nil {
				return fmt.Errorf("manifest: %w", err)
			}
		}
		var tcs []meta.TypeConstraint
		if ts.Options != nil {
			tcs = append(tcs, meta.SchemaOptions(*ts.Options))
		}
		meta.TypeOf(s, key, tcs...)
		for _, fname := range sortedFields(ts.Fields) {
			cs, err := ts.Fields[fname].constraints()
			if err != nil {
				return fmt.Errorf("manifest: %s.%s: %w", name, fname, err)
			}
			if err := meta.FieldOf(s, key, fname, cs...); err != nil {
				return fmt.Errorf("manifest: %w", err)
			}
		}
	}
	return nil
}

// Load parses data and registers it into s.
func Load(s *meta.Store, data []byte) (*Manifest, error) {
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := m.Register(s); err != nil {
		return nil, err
	}
	return m, nil
}

func flag(dst []meta.Constraint, v *bool, c func(...bool) meta.Constraint) []meta.Constraint {
	if v == nil {
		return dst
	}
	return append(dst, c(*v))
}

func ref(kind meta.Kind, typ string) meta.TypeRef {
	r := meta.TypeRef{Kind: kind}
	if typ != "" {
		r.Key = meta.Named(typ)
	}
	return r
}

func (f FieldSpec) constraints() ([]meta.Constraint, error) {
	kind, err := parseKind(f.Kind)
	if err != nil {
		return nil, err
	}
	var cs []meta.Constraint
	if kind != meta.KindUnset {
		r := ref(kind, f.Type)
		cs = append(cs, func(fd *meta.FieldDescriptor) { fd.DesignType = r })
	}
	if f.Items != nil {
		ik, err := parseKind(f.Items.Kind)
		if err != nil {
			return nil, err
		}
		r := ref(ik, f.Items.Type)
		cs = append(cs, func(fd *meta.FieldDescriptor) { fd.ItemType = &r })
	}

	cs = flag(cs, f.Required, meta.Required)
	cs = flag(cs, f.Nullable, meta.Nullable)
	if f.Allow != nil {
		cs = append(cs, meta.Allow(f.Allow...))
	}

	cs = flag(cs, f.Alphanum, meta.Alphanum)
	cs = flag(cs, f.Token, meta.Token)
	cs = flag(cs, f.Email, meta.Email)
	cs = flag(cs, f.Hostname, meta.Hostname)
	cs = flag(cs, f.ISODate, meta.ISODate)
	cs = flag(cs, f.ISODuration, meta.ISODuration)
	cs = flag(cs, f.CreditCard, meta.CreditCard)
	cs = flag(cs, f.NonEmpty, meta.NonEmpty)
	if b := f.MinLength; b != nil {
		v := meta.Bound(*b)
		cs = append(cs, func(fd *meta.FieldDescriptor) { fd.MinLength = &v })
	}
	if b := f.MaxLength; b != nil {
		v := meta.Bound(*b)
		cs = append(cs, func(fd *meta.FieldDescriptor) { fd.MaxLength = &v })
	}

	cs = flag(cs, f.Unsafe, meta.Unsafe)
	cs = flag(cs, f.Integer, meta.Integer)
	cs = flag(cs, f.Port, meta.Port)
	cs = flag(cs, f.Positive, meta.Positive)
	cs = flag(cs, f.Negative, meta.Negative)
	if f.Precision != nil {
		cs = append(cs, meta.Precision(*f.Precision))
	}
	if f.MultipleOf != nil {
		cs = append(cs, meta.MultipleOf(*f.MultipleOf))
	}
	if f.Min != nil {
		cs = append(cs, meta.MinValue(meta.Bound(*f.Min)))
	}
	if f.Max != nil {
		cs = append(cs, meta.MaxValue(meta.Bound(*f.Max)))
	}

	cs = flag(cs, f.DateString, meta.DateString)
	cs = flag(cs, f.ISO, meta.ISO)
	if f.Format != nil {
		cs = append(cs, meta.DateFormat(*f.Format))
	}
	if f.MinDate != nil {
		cs = append(cs, meta.DateMin(f.MinDate))
	}
	if f.MaxDate != nil {
		cs = append(cs, meta.DateMax(f.MaxDate))
	}
	return cs, nil
}
