package schema_test

import (
	"regexp"
	"testing"

	json "github.com/goccy/go-json"

	s "github.com/reoring/metaskema/schema"
)

func TestString_Rules(t *testing.T) {
	cases := []struct {
		name   string
		schema *s.Schema
		ok     []string
		bad    []string
		code   string
	}{
		{"alphanum", s.String().Alphanum(), []string{"abc123"}, []string{"abc-123", "a b"}, s.CodeStringAlphanum},
		{"token", s.String().Token(), []string{"a_b_1"}, []string{"a-b"}, s.CodeStringToken},
		{"min", s.String().Min(3), []string{"abc", "日本語"}, []string{"ab"}, s.CodeStringMin},
		{"max", s.String().Max(3), []string{"abc"}, []string{"abcd"}, s.CodeStringMax},
		{"length", s.String().Length(2), []string{"ab"}, []string{"abc"}, s.CodeStringLength},
		{"email", s.String().Email(), []string{"john@example.com"}, []string{"john@", "john.example.com"}, s.CodeStringEmail},
		{"hostname", s.String().Hostname(), []string{"example.com", "localhost", "10.0.0.1"}, []string{"exa mple.com", "-bad-.com"}, s.CodeStringHostname},
		{"isoDate", s.String().ISODate(), []string{"2020-02-29", "2020-02-29T10:30:00Z", "2020-02-29T10:30:00.123+09:00"}, []string{"2019-02-29", "20-02-2020", "2020-02-29T25:00"}, s.CodeStringISODate},
		{"isoDuration", s.String().ISODuration(), []string{"P3Y6M4DT12H30M5S", "PT10M", "P1W"}, []string{"P", "PT", "P1H", "3D"}, s.CodeStringISODuration},
		{"creditCard", s.String().CreditCard(), []string{"4111111111111111"}, []string{"4111111111111112"}, s.CodeStringCreditCard},
		{"pattern", s.String().Pattern(regexp.MustCompile(`^[a-z]+$`)), []string{"abc"}, []string{"ABC"}, s.CodeStringPattern},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, v := range tc.ok {
				if res := tc.schema.Validate(v); res.Error != nil {
					t.Fatalf("%q: unexpected err: %v", v, res.Error)
				}
			}
			for _, v := range tc.bad {
				expectCode(t, tc.schema.Validate(v), tc.code)
			}
		})
	}
}

func TestString_NoConversion(t *testing.T) {
	expectCode(t, s.String().Validate(12), s.CodeStringBase)
}

func TestString_MinMessage(t *testing.T) {
	it := expectCode(t, s.String().Min(3).Label("name").Validate("ab"), s.CodeStringMin)
	if it.Message != `"name" length must be at least 3 characters long` {
		t.Fatalf("unexpected message %q", it.Message)
	}
	if it.Context["limit"] != 3 {
		t.Fatalf("expected limit in context, got %v", it.Context)
	}
}

func TestNumber_Conversion(t *testing.T) {
	v := expectOK(t, s.Number().Validate("13"))
	if v != 13.0 {
		t.Fatalf("expected 13, got %#v", v)
	}
	it := expectCode(t, s.Number().Validate("13", s.Options{Convert: s.Bool(false)}), s.CodeNumberBase)
	if it.Message != `"value" must be a number` {
		t.Fatalf("unexpected message %q", it.Message)
	}
	expectCode(t, s.Number().Validate("abc"), s.CodeNumberBase)
	expectCode(t, s.Number().Validate(" "), s.CodeNumberBase)
	expectCode(t, s.Number().Validate(true), s.CodeNumberBase)

	// json.Number is a number in both modes
	expectOK(t, s.Number().Validate(json.Number("4.5"), s.Options{Convert: s.Bool(false)}))
	if v := expectOK(t, s.Number().Validate(json.Number("4.5"))); v != 4.5 {
		t.Fatalf("expected float64 4.5, got %#v", v)
	}
	// sized integer kinds are widened by normalization
	if v := expectOK(t, s.Number().Integer().Validate(int32(7))); v != int64(7) {
		t.Fatalf("expected int64 7, got %#v", v)
	}
}

func TestNumber_Unsafe(t *testing.T) {
	big := float64(s.MaxSafeInteger) * 4
	expectCode(t, s.Number().Validate(big), s.CodeNumberUnsafe)
	expectOK(t, s.Number().Unsafe().Validate(big))
	expectOK(t, s.Number().Validate(float64(s.MaxSafeInteger)))
	expectCode(t, s.Number().Validate("1e400"), s.CodeNumberInfinity)
}

func TestNumber_Precision(t *testing.T) {
	p := s.Number().Precision(2)
	v := expectOK(t, p.Validate(1.234))
	if v != 1.23 {
		t.Fatalf("expected rounding to 1.23, got %#v", v)
	}
	expectOK(t, p.Validate(1.2, s.Options{Convert: s.Bool(false)}))
	it := expectCode(t, p.Validate(1.234, s.Options{Convert: s.Bool(false)}), s.CodeNumberPrecision)
	if it.Message != `"value" must have no more than 2 decimal places` {
		t.Fatalf("unexpected message %q", it.Message)
	}
}

func TestNumber_Rules(t *testing.T) {
	expectCode(t, s.Number().Integer().Validate(1.5), s.CodeNumberInteger)
	expectCode(t, s.Number().Min(3).Validate(2), s.CodeNumberMin)
	expectOK(t, s.Number().Min(3).Validate(3))
	expectCode(t, s.Number().Greater(3).Validate(3), s.CodeNumberGreater)
	expectCode(t, s.Number().Max(3).Validate(4), s.CodeNumberMax)
	expectCode(t, s.Number().Less(3).Validate(3), s.CodeNumberLess)
	expectCode(t, s.Number().Positive().Validate(0), s.CodeNumberPositive)
	expectCode(t, s.Number().Negative().Validate(0), s.CodeNumberNegative)
	expectOK(t, s.Number().MultipleOf(0.1).Validate(0.3))
	expectCode(t, s.Number().MultipleOf(3).Validate(10), s.CodeNumberMultiple)

	port := s.Number().Port()
	expectOK(t, port.Validate(0))
	expectOK(t, port.Validate(65535))
	expectCode(t, port.Validate(65536), s.CodeNumberPort)
	expectCode(t, port.Validate(80.5), s.CodeNumberPort)
	expectCode(t, port.Validate(-1), s.CodeNumberPort)

	it := expectCode(t, s.Number().Greater(3).Label("score").Validate(1), s.CodeNumberGreater)
	if it.Message != `"score" must be greater than 3` {
		t.Fatalf("unexpected message %q", it.Message)
	}
}

func TestBoolean(t *testing.T) {
	expectOK(t, s.Boolean().Validate(false))
	if v := expectOK(t, s.Boolean().Validate("TRUE")); v != true {
		t.Fatalf("expected true, got %#v", v)
	}
	expectCode(t, s.Boolean().Validate("true", s.Options{Convert: s.Bool(false)}), s.CodeBooleanBase)
	expectCode(t, s.Boolean().Validate("yes"), s.CodeBooleanBase)
	expectCode(t, s.Boolean().Validate(1), s.CodeBooleanBase)
}

func TestAny(t *testing.T) {
	for _, v := range []any{nil, 1, "x", map[string]any{"a": 1}} {
		expectOK(t, s.Any().Validate(v))
	}
}
