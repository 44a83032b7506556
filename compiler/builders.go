package compiler

import (
	"math"

	"github.com/reoring/metaskema/meta"
	"github.com/reoring/metaskema/schema"
)

func isTrue(b *bool) bool { return b != nil && *b }

// effectiveKind is the design kind, except that date flags on a string (or
// untyped) field compile it as a date. DateString forces a date.
func effectiveKind(f meta.FieldDescriptor) meta.Kind {
	kind := f.DesignType.Kind
	if isTrue(f.DateString) {
		return meta.KindDate
	}
	if kind == meta.KindString || kind == meta.KindUnset {
		if isTrue(f.ISO) || f.DateFormat != nil || f.MinDate != nil || f.MaxDate != nil {
			return meta.KindDate
		}
	}
	return kind
}

var (
	stringKinds = []meta.Kind{meta.KindString}
	numberKinds = []meta.Kind{meta.KindNumber}
	dateKinds   = []meta.Kind{meta.KindDate}
	lengthKinds = []meta.Kind{meta.KindString, meta.KindArray}
	arrayKinds  = []meta.Kind{meta.KindArray}
)

type usage struct {
	name  string
	set   bool
	kinds []meta.Kind
}

// misplaced returns the first constraint recorded for a kind other than the
// field's.
func misplaced(kind meta.Kind, f meta.FieldDescriptor) (string, bool) {
	uses := []usage{
		{"alphanum", isTrue(f.Alphanum), stringKinds},
		{"token", isTrue(f.Token), stringKinds},
		{"email", isTrue(f.Email), stringKinds},
		{"hostname", isTrue(f.Hostname), stringKinds},
		{"isoDate", isTrue(f.ISODate), stringKinds},
		{"isoDuration", isTrue(f.ISODuration), stringKinds},
		{"creditCard", isTrue(f.CreditCard), stringKinds},
		{"nonEmpty", isTrue(f.NonEmpty), lengthKinds},
		{"minLength", f.MinLength != nil, lengthKinds},
		{"maxLength", f.MaxLength != nil, lengthKinds},
		{"unsafe", isTrue(f.Unsafe), numberKinds},
		{"integer", isTrue(f.Integer), numberKinds},
		{"port", isTrue(f.Port), numberKinds},
		{"positive", isTrue(f.Positive), numberKinds},
		{"negative", isTrue(f.Negative), numberKinds},
		{"precision", f.Precision != nil, numberKinds},
		{"multipleOf", f.MultipleOf != nil, numberKinds},
		{"minValue", f.MinValue != nil, numberKinds},
		{"maxValue", f.MaxValue != nil, numberKinds},
		{"iso", isTrue(f.ISO), dateKinds},
		{"dateFormat", f.DateFormat != nil, dateKinds},
		{"minDate", f.MinDate != nil, dateKinds},
		{"maxDate", f.MaxDate != nil, dateKinds},
		{"itemType", f.ItemType != nil, arrayKinds},
	}
	for _, u := range uses {
		if !u.set {
			continue
		}
		ok := false
		for _, k := range u.kinds {
			if k == kind {
				ok = true
				break
			}
		}
		if !ok {
			return u.name, true
		}
	}
	return "", false
}

func wholeLength(v float64) (int, bool) {
	if v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// lengths maps the length bounds onto inclusive limits: an exclusive minimum
// n becomes n+1, an exclusive maximum n becomes n-1 and NonEmpty raises the
// minimum to 1. max is -1 when unbounded.
func lengths(f meta.FieldDescriptor) (lo, hi int, reason string) {
	hi = -1
	if b := f.MinLength; b != nil {
		n, ok := wholeLength(b.Value)
		if !ok {
			return 0, 0, "minLength must be a non-negative integer"
		}
		if b.Exclusive {
			n++
		}
		lo = n
	}
	if isTrue(f.NonEmpty) && lo < 1 {
		lo = 1
	}
	if b := f.MaxLength; b != nil {
		n, ok := wholeLength(b.Value)
		if !ok {
			return 0, 0, "maxLength must be a non-negative integer"
		}
		if b.Exclusive {
			n--
		}
		if n < 0 {
			return 0, 0, "exclusive maxLength 0 admits nothing"
		}
		hi = n
	}
	if hi >= 0 && lo > hi {
		return 0, 0, "minLength exceeds maxLength"
	}
	return lo, hi, ""
}

func stringSchema(f meta.FieldDescriptor) (*schema.Schema, string) {
	sc := schema.String()
	if isTrue(f.Alphanum) {
		sc = sc.Alphanum()
	}
	if isTrue(f.Token) {
		sc = sc.Token()
	}
	lo, hi, reason := lengths(f)
	if reason != "" {
		return nil, reason
	}
	if lo > 0 {
		sc = sc.Min(lo)
	}
	if hi >= 0 {
		sc = sc.Max(hi)
	}
	if isTrue(f.Email) {
		sc = sc.Email()
	}
	if isTrue(f.Hostname) {
		sc = sc.Hostname()
	}
	if isTrue(f.ISODate) {
		sc = sc.ISODate()
	}
	if isTrue(f.ISODuration) {
		sc = sc.ISODuration()
	}
	if isTrue(f.CreditCard) {
		sc = sc.CreditCard()
	}
	return sc, ""
}

func numberSchema(f meta.FieldDescriptor) *schema.Schema {
	sc := schema.Number()
	if isTrue(f.Unsafe) {
		sc = sc.Unsafe()
	}
	if isTrue(f.Integer) {
		sc = sc.Integer()
	}
	if f.Precision != nil {
		sc = sc.Precision(*f.Precision)
	}
	if isTrue(f.Port) {
		sc = sc.Port()
	}
	if b := f.MinValue; b != nil {
		if b.Exclusive {
			sc = sc.Greater(b.Value)
		} else {
			sc = sc.Min(b.Value)
		}
	}
	if b := f.MaxValue; b != nil {
		if b.Exclusive {
			sc = sc.Less(b.Value)
		} else {
			sc = sc.Max(b.Value)
		}
	}
	if isTrue(f.Positive) {
		sc = sc.Positive()
	}
	if isTrue(f.Negative) {
		sc = sc.Negative()
	}
	if f.MultipleOf != nil {
		sc = sc.MultipleOf(*f.MultipleOf)
	}
	return sc
}

func dateSchema(f meta.FieldDescriptor) *schema.Schema {
	sc := schema.Date()
	if isTrue(f.ISO) {
		sc = sc.ISO()
	}
	if f.DateFormat != nil {
		sc = sc.Format(*f.DateFormat)
	}
	if f.MaxDate != nil {
		sc = sc.Max(f.MaxDate)
	}
	if f.MinDate != nil {
		sc = sc.Min(f.MinDate)
	}
	return sc
}
