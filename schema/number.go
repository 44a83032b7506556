package schema

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// MaxSafeInteger is the largest integer a float64 holds exactly.
const MaxSafeInteger = 1<<53 - 1

type numberFlags struct {
	unsafe bool
}

// Number accepts numeric values within the safe integer range. With convert,
// numeric strings are parsed.
func Number() *Schema { return newSchema(TypeNumber) }

// numberOf extracts a float64 from numeric Go values without string
// conversion.
func numberOf(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		return f, err == nil
	}
	return 0, false
}

func (s *Schema) coerceNumber(st *state, v any) (any, *failure) {
	f, ok := numberOf(v)
	out := v
	if _, isNum := v.(json.Number); isNum && ok && st.prefs.convert {
		out = f
	}
	if !ok {
		str, isStr := v.(string)
		if !isStr || !st.prefs.convert {
			return nil, fail(CodeNumberBase)
		}
		t := strings.TrimSpace(str)
		if t == "" {
			return nil, fail(CodeNumberBase)
		}
		p, err := strconv.ParseFloat(t, 64)
		if err != nil && !math.IsInf(p, 0) {
			return nil, fail(CodeNumberBase)
		}
		f, out = p, p
	}
	if math.IsNaN(f) {
		return nil, fail(CodeNumberBase)
	}
	if math.IsInf(f, 0) {
		return nil, fail(CodeNumberInfinity)
	}
	if !s.num.unsafe && math.Abs(f) > MaxSafeInteger {
		return nil, fail(CodeNumberUnsafe)
	}
	return out, nil
}

func (s *Schema) numberRule(name string, args map[string]any, check func(st *state, f float64, v any) (any, *failure)) *Schema {
	if e := s.expect(TypeNumber, name); e != nil {
		return e
	}
	return s.addRule(rule{name: name, args: args, check: func(st *state, v any) (any, *failure) {
		f, _ := numberOf(v)
		return check(st, f, v)
	}})
}

func (s *Schema) numberLimit(name, code string, limit any, ok func(f, lim float64) bool) *Schema {
	lim, isNum := numberOf(Normalize(limit))
	if !isNum {
		return s.withErr("%s() limit must be a number, got %T", name, limit)
	}
	return s.numberRule(name, map[string]any{"limit": lim}, func(_ *state, f float64, v any) (any, *failure) {
		if ok(f, lim) {
			return v, nil
		}
		return nil, fail(code, "limit", lim)
	})
}

// Greater requires the value to be strictly above limit (number.greater).
func (s *Schema) Greater(limit any) *Schema {
	return s.numberLimit("greater", CodeNumberGreater, limit, func(f, lim float64) bool { return f > lim })
}

// Less requires the value to be strictly below limit (number.less).
func (s *Schema) Less(limit any) *Schema {
	return s.numberLimit("less", CodeNumberLess, limit, func(f, lim float64) bool { return f < lim })
}

// Integer rejects values with a fractional part.
func (s *Schema) Integer() *Schema {
	return s.numberRule("integer", nil, func(_ *state, f float64, v any) (any, *failure) {
		if f == math.Trunc(f) {
			return v, nil
		}
		return nil, fail(CodeNumberInteger)
	})
}

// Precision limits the number of decimal places. With convert the value is
// rounded to the allowed places; without it, extra places report
// number.precision.
func (s *Schema) Precision(places int) *Schema {
	if places < 0 {
		return s.withErr("precision() places must not be negative, got %d", places)
	}
	return s.numberRule("precision", map[string]any{"limit": places}, func(st *state, f float64, v any) (any, *failure) {
		if decimalPlaces(f) <= places {
			return v, nil
		}
		if st.prefs.convert {
			r, _ := strconv.ParseFloat(strconv.FormatFloat(f, 'f', places, 64), 64)
			return r, nil
		}
		return nil, fail(CodeNumberPrecision, "limit", places)
	})
}

func decimalPlaces(f float64) int {
	str := strconv.FormatFloat(f, 'f', -1, 64)
	if i := strings.IndexByte(str, '.'); i >= 0 {
		return len(str) - i - 1
	}
	return 0
}

// MultipleOf requires the value to be a multiple of base.
func (s *Schema) MultipleOf(base any) *Schema {
	b, ok := numberOf(Normalize(base))
	if !ok || b <= 0 {
		return s.withErr("multiple() base must be a positive number, got %v", base)
	}
	return s.numberRule("multiple", map[string]any{"base": b}, func(_ *state, f float64, v any) (any, *failure) {
		q := f / b
		if math.Abs(q-math.Round(q)) < 1e-9 {
			return v, nil
		}
		return nil, fail(CodeNumberMultiple, "multiple", b)
	})
}

// Positive requires a value above zero.
func (s *Schema) Positive() *Schema {
	return s.numberRule("sign", map[string]any{"sign": "positive"}, func(_ *state, f float64, v any) (any, *failure) {
		if f > 0 {
			return v, nil
		}
		return nil, fail(CodeNumberPositive)
	})
}

// Negative requires a value below zero.
func (s *Schema) Negative() *Schema {
	return s.numberRule("sign", map[string]any{"sign": "negative"}, func(_ *state, f float64, v any) (any, *failure) {
		if f < 0 {
			return v, nil
		}
		return nil, fail(CodeNumberNegative)
	})
}

// Port requires an integer between 0 and 65535.
func (s *Schema) Port() *Schema {
	return s.numberRule("port", nil, func(_ *state, f float64, v any) (any, *failure) {
		if f == math.Trunc(f) && f >= 0 && f <= 65535 {
			return v, nil
		}
		return nil, fail(CodeNumberPort)
	})
}

// Unsafe accepts numbers outside the safe integer range.
func (s *Schema) Unsafe() *Schema {
	if e := s.expect(TypeNumber, "unsafe"); e != nil {
		return e
	}
	c := s.clone()
	c.num.unsafe = true
	return c
}
