package schema_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	s "github.com/reoring/metaskema/schema"
)

func TestArray_ItemsAndLength(t *testing.T) {
	arr := s.Array().Items(s.String()).Min(1).Max(3)

	v := expectOK(t, arr.Validate([]string{"red", "green"}))
	if diff := cmp.Diff([]any{"red", "green"}, v); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}

	it := expectCode(t, arr.Validate([]any{"red", 1}), s.CodeStringBase)
	if it.Path != "/1" || it.Message != `"[1]" must be a string` {
		t.Fatalf("unexpected issue %+v", it)
	}

	expectCode(t, arr.Validate([]any{}), s.CodeArrayMin)
	expectCode(t, arr.Validate([]any{"a", "b", "c", "d"}), s.CodeArrayMax)
	expectCode(t, arr.Validate("red"), s.CodeArrayBase)

	// no item schema accepts anything
	expectOK(t, s.Array().Validate([]any{1, "x", nil}))
}

func TestArray_NestedLabel(t *testing.T) {
	obj := s.Object().Keys(map[string]*s.Schema{
		"favoriteColors": s.Array().Items(s.String()),
	})
	it := expectCode(t, obj.Validate(map[string]any{"favoriteColors": []any{"red", 1}}), s.CodeStringBase)
	if it.Message != `"favoriteColors[1]" must be a string` {
		t.Fatalf("unexpected message %q", it.Message)
	}
	if diff := cmp.Diff([]any{"favoriteColors", 1}, it.Segments); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}
	if it.Context["key"] != 1 {
		t.Fatalf("expected index key, got %v", it.Context["key"])
	}
}

func TestObject_UnknownKeys(t *testing.T) {
	obj := s.Object().Keys(map[string]*s.Schema{"a": s.Number()})
	in := map[string]any{"a": 1, "extra": true}

	it := expectCode(t, obj.Validate(in), s.CodeObjectUnknown)
	if it.Path != "/extra" || it.Message != `"extra" is not allowed` {
		t.Fatalf("unexpected issue %+v", it)
	}

	v := expectOK(t, obj.Validate(in, s.Options{AllowUnknown: s.Bool(true)}))
	if _, ok := v.(map[string]any)["extra"]; !ok {
		t.Fatalf("expected extra to be kept, got %v", v)
	}

	v = expectOK(t, obj.Validate(in, s.Options{StripUnknown: s.Bool(true)}))
	if _, ok := v.(map[string]any)["extra"]; ok {
		t.Fatalf("expected extra to be stripped, got %v", v)
	}

	expectOK(t, obj.Unknown().Validate(in))
	expectCode(t, obj.Unknown(false).Validate(in, s.Options{AllowUnknown: s.Bool(true)}), s.CodeObjectUnknown)

	// an object without declared keys takes anything
	expectOK(t, s.Object().Validate(in))
	// an object with an empty key set takes nothing
	expectCode(t, s.Object().Keys(nil).Validate(in), s.CodeObjectUnknown)
}

func TestObject_NestedPathsAndLabels(t *testing.T) {
	obj := s.Object().Keys(map[string]*s.Schema{
		"address": s.Object().Keys(map[string]*s.Schema{
			"city": s.String().Required(),
		}),
	})
	it := expectCode(t, obj.Validate(map[string]any{"address": map[string]any{}}), s.CodeAnyRequired)
	if it.Path != "/address/city" || it.Message != `"address.city" is required` {
		t.Fatalf("unexpected issue %+v", it)
	}
	expectCode(t, obj.Validate(map[string]any{"address": "x"}), s.CodeObjectBase)
}

func TestObject_AbsentKeysStayAbsent(t *testing.T) {
	obj := s.Object().Keys(map[string]*s.Schema{"a": s.String(), "b": s.Number()})
	v := expectOK(t, obj.Validate(map[string]any{"b": "2"}))
	if diff := cmp.Diff(map[string]any{"b": 2.0}, v); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestWhen_SiblingCondition(t *testing.T) {
	isCompany := func(sib map[string]any) bool { return sib["kind"] == "company" }
	obj := s.Object().Keys(map[string]*s.Schema{
		"kind":  s.String().Valid("person", "company"),
		"vatId": s.String().When(isCompany, s.Any().Required(), nil),
	})
	expectCode(t, obj.Validate(map[string]any{"kind": "company"}), s.CodeAnyRequired)
	expectOK(t, obj.Validate(map[string]any{"kind": "person"}))
	expectOK(t, obj.Validate(map[string]any{"kind": "company", "vatId": "DE1"}))

	limit := s.Number().When(isCompany, s.Number().Max(10), s.Number().Max(5))
	obj2 := s.Object().Keys(map[string]*s.Schema{"kind": s.String(), "seats": limit})
	expectOK(t, obj2.Validate(map[string]any{"kind": "company", "seats": 8}))
	expectCode(t, obj2.Validate(map[string]any{"kind": "person", "seats": 8}), s.CodeNumberMax)
}

func TestLazy_Recursive(t *testing.T) {
	var node *s.Schema
	node = s.Object().Keys(map[string]*s.Schema{
		"name":     s.String().Required(),
		"children": s.Array().Items(s.Lazy(func() (*s.Schema, error) { return node, nil })),
	})
	in := map[string]any{
		"name": "root",
		"children": []any{
			map[string]any{"name": "a", "children": []any{map[string]any{"name": "a1"}}},
			map[string]any{"name": "b"},
		},
	}
	expectOK(t, node.Validate(in))

	bad := map[string]any{"name": "root", "children": []any{map[string]any{"children": []any{}}}}
	it := expectCode(t, node.Validate(bad), s.CodeAnyRequired)
	if it.Path != "/children/0/name" {
		t.Fatalf("unexpected path %s", it.Path)
	}

	broken := s.Lazy(func() (*s.Schema, error) { return nil, errors.New("boom") })
	expectCode(t, broken.Validate(1), s.CodeAnyLink)
}
