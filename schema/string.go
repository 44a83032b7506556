package schema

import (
	"regexp"
	"unicode/utf8"
)

// String accepts non-empty strings. Allow("") admits the empty string.
func String() *Schema { return newSchema(TypeString) }

func (s *Schema) coerceString(_ *state, v any) (any, *failure) {
	str, ok := v.(string)
	if !ok {
		return nil, fail(CodeStringBase)
	}
	if str == "" {
		return nil, fail(CodeStringEmpty)
	}
	return str, nil
}

func (s *Schema) stringRule(name, code string, args map[string]any, ok func(string) bool) *Schema {
	if e := s.expect(TypeString, name); e != nil {
		return e
	}
	return s.addRule(rule{name: name, args: args, check: func(_ *state, v any) (any, *failure) {
		if ok(v.(string)) {
			return v, nil
		}
		return nil, &failure{code: code, args: args}
	}})
}

func (s *Schema) stringLength(name, code string, limit any, ok func(n, lim int) bool) *Schema {
	lim, valid := lengthLimit(limit)
	if !valid {
		return s.withErr("%s() limit must be a non-negative integer, got %v", name, limit)
	}
	return s.stringRule(name, code, map[string]any{"limit": lim}, func(str string) bool {
		return ok(utf8.RuneCountInString(str), lim)
	})
}

// Length requires exactly n characters.
func (s *Schema) Length(n int) *Schema {
	return s.stringLength("length", CodeStringLength, n, func(n, lim int) bool { return n == lim })
}

// Alphanum allows only ASCII letters and digits.
func (s *Schema) Alphanum() *Schema {
	return s.stringRule("alphanum", CodeStringAlphanum, nil, isAlphanum)
}

// Token allows letters, digits and underscores.
func (s *Schema) Token() *Schema {
	return s.stringRule("token", CodeStringToken, nil, isToken)
}

// Email requires a valid email address.
func (s *Schema) Email() *Schema {
	return s.stringRule("email", CodeStringEmail, nil, isEmail)
}

// Hostname requires an RFC 1123 hostname or an IP address.
func (s *Schema) Hostname() *Schema {
	return s.stringRule("hostname", CodeStringHostname, nil, isHostname)
}

// ISODate requires an ISO 8601 date string. The value stays a string.
func (s *Schema) ISODate() *Schema {
	return s.stringRule("isoDate", CodeStringISODate, nil, isISODate)
}

// ISODuration requires an ISO 8601 duration such as P1DT2H.
func (s *Schema) ISODuration() *Schema {
	return s.stringRule("isoDuration", CodeStringISODuration, nil, isISODuration)
}

// CreditCard requires a number passing the Luhn checksum.
func (s *Schema) CreditCard() *Schema {
	return s.stringRule("creditCard", CodeStringCreditCard, nil, isCreditCard)
}

// URI requires an absolute URI.
func (s *Schema) URI() *Schema {
	return s.stringRule("uri", CodeStringURI, nil, isURI)
}

// Pattern requires the value to match re.
func (s *Schema) Pattern(re *regexp.Regexp) *Schema {
	if re == nil {
		return s.withErr("pattern() requires a regular expression")
	}
	return s.stringRule("pattern", CodeStringPattern, map[string]any{"regex": re.String()}, re.MatchString)
}
