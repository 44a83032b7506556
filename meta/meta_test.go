package meta_test

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/metaskema/meta"
	"github.com/reoring/metaskema/schema"
)

var refEqual = cmp.Comparer(func(a, b meta.TypeRef) bool { return a == b })

type Address struct {
	City string `json:"city"`
}

type Base struct {
	Code    string `json:"code"`
	Created time.Time
}

type Derived struct {
	Base
	Tags    []string  `json:"tags"`
	Home    *Address  `json:"home"`
	Extra   map[string]any
	Any     any
	Scores  []float64 `skema:"name=points"`
	Friends []Address
}

func ptr[T any](v T) *T { return &v }

func TestField_DerivesDesignType(t *testing.T) {
	s := meta.NewStore()
	for _, name := range []string{"code", "Created", "tags", "Home", "Extra", "Any", "points", "Friends"} {
		if err := meta.Field[Derived](s, name); err != nil {
			t.Fatalf("annotate %s: %v", name, err)
		}
	}
	own, ok := s.GetOwn(meta.KeyOf[Derived]())
	if !ok {
		t.Fatalf("expected own descriptor")
	}
	addr := meta.KeyOf[Address]()
	want := map[string]meta.FieldDescriptor{
		"code":    {Name: "code", DesignType: meta.TypeRef{Kind: meta.KindString}},
		"Created": {Name: "Created", DesignType: meta.TypeRef{Kind: meta.KindDate}},
		"tags":    {Name: "tags", DesignType: meta.TypeRef{Kind: meta.KindArray}, ItemType: &meta.TypeRef{Kind: meta.KindString}},
		"home":    {Name: "home", DesignType: meta.TypeRef{Kind: meta.KindObject, Key: addr}},
		"Extra":   {Name: "Extra", DesignType: meta.TypeRef{Kind: meta.KindObject}},
		"Any":     {Name: "Any", DesignType: meta.TypeRef{Kind: meta.KindAny}},
		"points":  {Name: "points", DesignType: meta.TypeRef{Kind: meta.KindArray}, ItemType: &meta.TypeRef{Kind: meta.KindNumber}},
		"Friends": {Name: "Friends", DesignType: meta.TypeRef{Kind: meta.KindArray}, ItemType: &meta.TypeRef{Kind: meta.KindObject, Key: addr}},
	}
	if diff := cmp.Diff(want, own.Fields, refEqual); diff != "" {
		t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestField_UnknownField(t *testing.T) {
	s := meta.NewStore()
	if err := meta.Field[Derived](s, "nope", meta.Required()); err == nil {
		t.Fatalf("expected lookup error")
	}
	if _, ok := s.GetOwn(meta.KeyOf[Derived]()); ok {
		t.Fatalf("failed annotation must not create a descriptor")
	}
}

func TestField_MergesPerProperty(t *testing.T) {
	s := meta.NewStore()
	key := meta.Named("User")
	_ = meta.FieldOf(s, key, "name", meta.DesignType(meta.KindString), meta.MinLength(3))
	_ = meta.FieldOf(s, key, "name", meta.Required())
	_ = meta.FieldOf(s, key, "name", meta.MaxLength(10), meta.Required(false))

	own, _ := s.GetOwn(key)
	want := meta.FieldDescriptor{
		Name:       "name",
		DesignType: meta.TypeRef{Kind: meta.KindString},
		Required:   ptr(false),
		MinLength:  &meta.Bound{Value: 3},
		MaxLength:  &meta.Bound{Value: 10},
	}
	if diff := cmp.Diff(want, own.Fields["name"], refEqual); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}
}

func TestField_ExplicitDesignTypeWins(t *testing.T) {
	s := meta.NewStore()
	_ = meta.Field[Base](s, "code", meta.DesignType(meta.KindDate), meta.ISO())
	_ = meta.Field[Base](s, "code", meta.Required())
	own, _ := s.GetOwn(meta.KeyOf[Base]())
	if got := own.Fields["code"].DesignType.Kind; got != meta.KindDate {
		t.Fatalf("expected the explicit kind to stick, got %s", got)
	}
}

func TestGetOwn_ReturnsCopy(t *testing.T) {
	s := meta.NewStore()
	_ = meta.FieldOf(s, meta.Named("T"), "a", meta.Allow("x"))
	own, _ := s.GetOwn(meta.Named("T"))
	own.Fields["b"] = meta.FieldDescriptor{}
	own.Fields["a"].AllowedValues[0] = "mutated"

	again, _ := s.GetOwn(meta.Named("T"))
	if _, ok := again.Fields["b"]; ok || again.Fields["a"].AllowedValues[0] != "x" {
		t.Fatalf("store was mutated through a copy: %+v", again)
	}
}

func TestResolve_PerPropertyAcrossChain(t *testing.T) {
	s := meta.NewStore()
	r := meta.NewResolver(s)
	_ = meta.Field[Base](s, "code", meta.Alphanum())
	_ = meta.Field[Derived](s, "code", meta.Required())
	_ = meta.Field[Derived](s, "tags", meta.NonEmpty())

	got, ok := r.Resolve(meta.KeyOf[Derived]())
	if !ok {
		t.Fatalf("expected resolved descriptor")
	}
	code := got.Fields["code"]
	if !code.IsRequired() || code.Alphanum == nil || !*code.Alphanum {
		t.Fatalf("expected alphanum and required on code, got %+v", code)
	}
	if _, ok := got.Fields["tags"]; !ok {
		t.Fatalf("expected own field tags")
	}

	// the ancestor is untouched
	base, _ := r.Resolve(meta.KeyOf[Base]())
	if base.Fields["code"].Required != nil {
		t.Fatalf("ancestor picked up derived property")
	}
	if _, ok := base.Fields["tags"]; ok {
		t.Fatalf("ancestor picked up derived field")
	}
}

func TestResolve_RequiredOverridesBothWays(t *testing.T) {
	s := meta.NewStore()
	r := meta.NewResolver(s)
	parent, child := meta.Named("P"), meta.Named("C")
	if err := s.Extend(child, parent); err != nil {
		t.Fatalf("extend: %v", err)
	}
	_ = meta.FieldOf(s, parent, "a", meta.DesignType(meta.KindString), meta.Optional())
	_ = meta.FieldOf(s, parent, "b", meta.DesignType(meta.KindString), meta.Required())
	_ = meta.FieldOf(s, child, "a", meta.Required())
	_ = meta.FieldOf(s, child, "b", meta.Optional())

	got, _ := r.Resolve(child)
	if !got.Fields["a"].IsRequired() || got.Fields["b"].IsRequired() {
		t.Fatalf("derived presence did not win: %+v", got.Fields)
	}
}

func TestResolve_OptionsAndGlobalFallThrough(t *testing.T) {
	s := meta.NewStore()
	r := meta.NewResolver(s)
	a, b, c := meta.Named("A"), meta.Named("B"), meta.Named("C")
	_ = s.Extend(b, a)
	_ = s.Extend(c, b)
	opts := schema.Options{AllowUnknown: schema.Bool(true)}
	meta.TypeOf(s, a, meta.SchemaOptions(opts), meta.Global(meta.Transform(func(x *schema.Schema) *schema.Schema { return x })))
	_ = meta.FieldOf(s, b, "x", meta.DesignType(meta.KindNumber))
	meta.TypeOf(s, c, meta.SchemaOptions(schema.Options{Convert: schema.Bool(false)}))

	got, ok := r.Resolve(c)
	if !ok {
		t.Fatalf("expected resolved descriptor")
	}
	if got.Options == nil || got.Options.Convert == nil || got.Options.AllowUnknown != nil {
		t.Fatalf("expected the nearest options as a whole, got %+v", got.Options)
	}
	if got.Global == nil {
		t.Fatalf("expected global from the root ancestor")
	}
	if _, ok := got.Fields["x"]; !ok {
		t.Fatalf("expected field x from B")
	}

	if got := r.Chain(c); len(got) != 3 || got[2] != a {
		t.Fatalf("unexpected chain %v", got)
	}
}

func TestResolve_Absent(t *testing.T) {
	s := meta.NewStore()
	r := meta.NewResolver(s)
	if _, ok := r.Resolve(meta.KeyOf[Derived]()); ok {
		t.Fatalf("expected absent descriptor")
	}
	_ = s.Extend(meta.Named("X"), meta.Named("Y"))
	if _, ok := r.Resolve(meta.Named("X")); ok {
		t.Fatalf("expected absent descriptor for an unannotated chain")
	}
}

func TestExtend_RejectsCycles(t *testing.T) {
	s := meta.NewStore()
	a, b := meta.Named("A"), meta.Named("B")
	if err := s.Extend(a, b); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if err := s.Extend(b, a); err == nil {
		t.Fatalf("expected cycle error")
	}
	if err := s.Extend(a, a); err == nil {
		t.Fatalf("expected self cycle error")
	}
}

func TestParent_Embedding(t *testing.T) {
	s := meta.NewStore()
	p, ok := s.Parent(meta.KeyOf[*Derived]())
	if !ok || p != reflect.TypeFor[Base]() {
		t.Fatalf("expected Base as ancestor, got %v", p)
	}
	if _, ok := s.Parent(meta.KeyOf[Base]()); ok {
		t.Fatalf("time.Time must not count as an ancestor")
	}
	_ = s.Extend(meta.KeyOf[Derived](), meta.Named("Other"))
	if p, _ := s.Parent(meta.KeyOf[Derived]()); p != meta.Named("Other") {
		t.Fatalf("explicit ancestor must win, got %v", p)
	}
}

type Tagged struct {
	Base `json:"base"`
	Note string `json:"note"`
}

func TestParent_TaggedEmbeddingStaysNested(t *testing.T) {
	s := meta.NewStore()
	if p, ok := s.Parent(meta.KeyOf[Tagged]()); ok {
		t.Fatalf("tagged embedding must not count as an ancestor, got %v", p)
	}
	if err := meta.Field[Tagged](s, "code"); err == nil {
		t.Fatalf("expected error for a field behind a tagged embedding")
	}
	if err := meta.Field[Tagged](s, "base"); err != nil {
		t.Fatalf("annotate base: %v", err)
	}
	d, _ := s.GetOwn(meta.KeyOf[Tagged]())
	want := meta.TypeRef{Kind: meta.KindObject, Key: meta.KeyOf[Base]()}
	if got := d.Fields["base"].DesignType; got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestStore_ConcurrentAnnotation(t *testing.T) {
	s := meta.NewStore()
	key := meta.Named("T")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = meta.FieldOf(s, key, "f", meta.DesignType(meta.KindNumber), meta.Min(float64(i)))
			_, _ = s.GetOwn(key)
		}(i)
	}
	wg.Wait()
	own, _ := s.GetOwn(key)
	if own.Fields["f"].MinValue == nil {
		t.Fatalf("expected a min value")
	}
	if keys := s.Keys(); len(keys) != 1 || keys[0] != key {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestParseKind(t *testing.T) {
	k, err := meta.ParseKind("Number")
	if err != nil || k != meta.KindNumber {
		t.Fatalf("got %v %v", k, err)
	}
	if _, err := meta.ParseKind("tuple"); err == nil {
		t.Fatalf("expected error")
	}
}
