package manifest_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/metaskema/manifest"
	"github.com/reoring/metaskema/meta"
	"github.com/reoring/metaskema/schema"
)

const users = `
types:
  Address:
    fields:
      city: {kind: string, required: true}
  Base:
    options: {allowUnknown: true}
    fields:
      id: {kind: number, integer: true, required: true}
  User:
    extends: Base
    fields:
      email: {kind: string, email: true}
      score: {kind: number, min: {value: 3, exclusive: true}, max: 10}
      tags: {kind: array, items: string, minLength: 1}
      homes: {kind: array, items: {kind: object, type: Address}}
      address: {kind: object, type: Address, nullable: true}
      born: {kind: date, format: YYYY-MM-DD, maxDate: now}
      role: {kind: string, allow: [admin, member]}
`

var refEqual = cmp.Comparer(func(a, b meta.TypeRef) bool { return a == b })

func ptr[T any](v T) *T { return &v }

func TestRegister_Descriptors(t *testing.T) {
	s := meta.NewStore()
	if _, err := manifest.Load(s, []byte(users)); err != nil {
		t.Fatalf("load: %v", err)
	}

	user, ok := meta.NewResolver(s).Resolve(meta.Named("User"))
	if !ok {
		t.Fatalf("expected User to resolve")
	}
	if user.Options == nil || user.Options.AllowUnknown == nil || !*user.Options.AllowUnknown {
		t.Fatalf("expected options inherited from Base, got %+v", user.Options)
	}
	want := map[string]meta.FieldDescriptor{
		"id":    {Name: "id", DesignType: meta.TypeRef{Kind: meta.KindNumber}, Integer: ptr(true), Required: ptr(true)},
		"email": {Name: "email", DesignType: meta.TypeRef{Kind: meta.KindString}, Email: ptr(true)},
		"score": {
			Name: "score", DesignType: meta.TypeRef{Kind: meta.KindNumber},
			MinValue: &meta.Bound{Value: 3, Exclusive: true}, MaxValue: &meta.Bound{Value: 10},
		},
		"tags": {
			Name: "tags", DesignType: meta.TypeRef{Kind: meta.KindArray},
			ItemType: &meta.TypeRef{Kind: meta.KindString}, MinLength: &meta.Bound{Value: 1},
		},
		"homes": {
			Name: "homes", DesignType: meta.TypeRef{Kind: meta.KindArray},
			ItemType: &meta.TypeRef{Kind: meta.KindObject, Key: meta.Named("Address")},
		},
		"address": {
			Name: "address", DesignType: meta.TypeRef{Kind: meta.KindObject, Key: meta.Named("Address")},
			Nullable: ptr(true),
		},
		"born": {
			Name: "born", DesignType: meta.TypeRef{Kind: meta.KindDate},
			DateFormat: ptr("YYYY-MM-DD"), MaxDate: "now",
		},
		"role": {Name: "role", DesignType: meta.TypeRef{Kind: meta.KindString}, AllowedValues: []any{"admin", "member"}},
	}
	if diff := cmp.Diff(want, user.Fields, refEqual); diff != "" {
		t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSON(t *testing.T) {
	m, err := manifest.Parse([]byte(`{"types": {"T": {"fields": {"n": {"kind": "number", "precision": 2}}}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := m.TypeNames(); len(got) != 1 || got[0] != "T" {
		t.Fatalf("unexpected types %v", got)
	}
	if p := m.Types["T"].Fields["n"].Precision; p == nil || *p != 2 {
		t.Fatalf("expected precision 2, got %v", p)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown kind":     "types: {T: {fields: {a: {kind: tuple}}}}",
		"unknown property": "types: {T: {fields: {a: {kind: string, shiny: true}}}}",
		"undeclared type":  "types: {T: {fields: {a: {kind: object, type: Missing}}}}",
		"type on scalar":   "types: {T: {fields: {a: {kind: string, type: T}}}}",
		"items on string":  "types: {T: {fields: {a: {kind: string, items: string}}}}",
		"bad extends":      "types: {T: {extends: Nope}}",
		"bad bound":        "types: {T: {fields: {a: {kind: number, min: {exclusive: true}}}}}",
		"bound sequence":   "types: {T: {fields: {a: {kind: number, min: [1]}}}}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := manifest.Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParse_DuplicateKeys(t *testing.T) {
	doc := "types:\n  T:\n    fields:\n      a: {kind: string}\n      a: {kind: number}\n"
	_, err := manifest.Parse([]byte(doc))
	var dup *manifest.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Key != "a" || dup.Line != 5 || dup.FirstLine != 4 {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestRegister_ExtendCycle(t *testing.T) {
	doc := "types:\n  A: {extends: B}\n  B: {extends: A}\n"
	m, err := manifest.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := m.Register(meta.NewStore()); err == nil {
		t.Fatalf("expected cycle error")
	}
}

func TestRegister_EmptyType(t *testing.T) {
	s := meta.NewStore()
	if _, err := manifest.Load(s, []byte("types: {Empty: {}}")); err != nil {
		t.Fatalf("load: %v", err)
	}
	d, ok := s.GetOwn(meta.Named("Empty"))
	if !ok || len(d.Fields) != 0 {
		t.Fatalf("expected an empty descriptor, got %+v %v", d, ok)
	}
	if _, ok := s.Lookup("Empty"); !ok {
		t.Fatalf("expected lookup by name")
	}
}

func TestDocumentReader(t *testing.T) {
	in := "a: 1\nb: [true, 2.5, x]\n---\n{\"c\": null}\n"
	docs, err := manifest.NewDocumentReader(strings.NewReader(in)).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []any{
		map[string]any{"a": int64(1), "b": []any{true, 2.5, "x"}},
		map[string]any{"c": nil},
	}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Fatalf("documents mismatch (-want +got):\n%s", diff)
	}

	r := manifest.NewDocumentReader(strings.NewReader("a: 1\na: 2\n"))
	var dup *manifest.DuplicateKeyError
	if _, err := r.Next(); !errors.As(err, &dup) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	empty := manifest.NewDocumentReader(strings.NewReader(""))
	if _, err := empty.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	m, err := manifest.Parse([]byte("types: {T: {options: {convert: false, presence: required}}}"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := m.Types["T"].Options
	want := &schema.Options{Convert: schema.Bool(false), Presence: schema.PresenceRequired}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}
