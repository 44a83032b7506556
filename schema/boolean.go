package schema

import "strings"

// Boolean accepts true and false; with convert, also the strings "true" and
// "false" in any letter case.
func Boolean() *Schema { return newSchema(TypeBoolean) }

func coerceBoolean(st *state, v any) (any, *failure) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		if st.prefs.convert {
			switch strings.ToLower(x) {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
	}
	return nil, fail(CodeBooleanBase)
}
