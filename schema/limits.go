package schema

import "math"

// Min sets the lower limit. Its meaning depends on the schema type: minimum
// length for strings, minimum item count for arrays, inclusive minimum for
// numbers and earliest date for dates.
func (s *Schema) Min(limit any) *Schema {
	switch s.typ {
	case TypeString:
		return s.stringLength("min", CodeStringMin, limit, func(n, lim int) bool { return n >= lim })
	case TypeArray:
		return s.arrayLength("min", CodeArrayMin, limit, func(n, lim int) bool { return n >= lim })
	case TypeNumber:
		return s.numberLimit("min", CodeNumberMin, limit, func(f, lim float64) bool { return f >= lim })
	case TypeDate:
		return s.dateLimit("min", CodeDateMin, limit, func(t, lim int64) bool { return t >= lim })
	}
	return s.withErr("min() is not available on %s schemas", s.typ)
}

// Max sets the upper limit; see Min.
func (s *Schema) Max(limit any) *Schema {
	switch s.typ {
	case TypeString:
		return s.stringLength("max", CodeStringMax, limit, func(n, lim int) bool { return n <= lim })
	case TypeArray:
		return s.arrayLength("max", CodeArrayMax, limit, func(n, lim int) bool { return n <= lim })
	case TypeNumber:
		return s.numberLimit("max", CodeNumberMax, limit, func(f, lim float64) bool { return f <= lim })
	case TypeDate:
		return s.dateLimit("max", CodeDateMax, limit, func(t, lim int64) bool { return t <= lim })
	}
	return s.withErr("max() is not available on %s schemas", s.typ)
}

// lengthLimit accepts non-negative integral numbers of any Go numeric type.
func lengthLimit(limit any) (int, bool) {
	f, ok := numberOf(Normalize(limit))
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
