// Package schema is the validation engine behind metaskema.
//
// A *Schema is built from constructors (String, Number, Boolean, Date, Array,
// Object, Any, Lazy) and modifiers. Schemas are immutable: every modifier
// returns a copy, so compiled schemas can be cached and shared.
//
//	s := schema.Object().Keys(map[string]*schema.Schema{
//		"id":   schema.Number().Integer().Required(),
//		"name": schema.String().Max(32),
//	})
//	res := s.Validate(map[string]any{"id": 1.5})
//	// res.Error: "id" must be an integer
//
// Validation reports Issues with a JSON Pointer path, a "<type>.<rule>" code,
// a message rendered by the i18n package and a context carrying the key,
// label and offending value. Defaults follow Options: abort on the first
// issue, convert compatible input (numeric strings, "true"/"false", date
// strings), reject undeclared object keys and reject empty strings.
package schema
