package schema

import (
	"slices"

	json "github.com/goccy/go-json"
)

// Description is a serializable view of a schema's rules.
type Description struct {
	Type        string                  `json:"type"`
	Flags       map[string]any          `json:"flags,omitempty"`
	Preferences *Options                `json:"preferences,omitempty"`
	Allow       []any                   `json:"allow,omitempty"`
	Invalid     []any                   `json:"invalid,omitempty"`
	Rules       []RuleDescription       `json:"rules,omitempty"`
	Keys        map[string]*Description `json:"keys,omitempty"`
	Items       []*Description          `json:"items,omitempty"`
	Whens       []WhenDescription       `json:"whens,omitempty"`
	Externals   int                     `json:"externals,omitempty"`
}

// RuleDescription names a rule and its arguments.
type RuleDescription struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// WhenDescription describes the branches of a conditional. The predicate
// itself is opaque.
type WhenDescription struct {
	Then      *Description `json:"then,omitempty"`
	Otherwise *Description `json:"otherwise,omitempty"`
}

// Describe returns the description of s. Lazy schemas are described as
// "link" without following the reference.
func (s *Schema) Describe() *Description {
	d := &Description{Type: s.typ}
	flags := map[string]any{}
	switch s.presence {
	case presenceRequired:
		flags["presence"] = "required"
	case presenceOptional:
		flags["presence"] = "optional"
	}
	if s.only {
		flags["only"] = true
	}
	if s.label != "" {
		flags["label"] = s.label
	}
	if s.num.unsafe {
		flags["unsafe"] = true
	}
	if s.date.iso {
		flags["format"] = "iso"
	}
	if s.date.format != "" {
		flags["format"] = s.date.format
	}
	if s.unk != nil {
		flags["unknown"] = *s.unk
	}
	if len(flags) > 0 {
		d.Flags = flags
	}
	if s.prefs != nil {
		p := *s.prefs
		d.Preferences = &p
	}
	d.Allow = slices.Clone(s.allow)
	d.Invalid = slices.Clone(s.invalid)
	for _, r := range s.rules {
		d.Rules = append(d.Rules, RuleDescription{Name: r.name, Args: r.args})
	}
	if s.hasKey {
		d.Keys = make(map[string]*Description, len(s.keys))
		for k, c := range s.keys {
			d.Keys[k] = c.Describe()
		}
	}
	if s.items != nil {
		d.Items = []*Description{s.items.Describe()}
	}
	for _, w := range s.whens {
		wd := WhenDescription{}
		if w.then != nil {
			wd.Then = w.then.Describe()
		}
		if w.otherwise != nil {
			wd.Otherwise = w.otherwise.Describe()
		}
		d.Whens = append(d.Whens, wd)
	}
	d.Externals = len(s.externals)
	return d
}

// JSON renders the description as indented JSON.
func (d *Description) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Rule returns the first rule with the given name.
func (d *Description) Rule(name string) (RuleDescription, bool) {
	for _, r := range d.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return RuleDescription{}, false
}
