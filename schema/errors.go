package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes. Each code names the schema type and the rule that failed.
const (
	CodeAnyRequired = "any.required"
	CodeAnyOnly     = "any.only"
	CodeAnyInvalid  = "any.invalid"
	CodeAnyExternal = "any.external"
	CodeAnyLink     = "any.link"

	CodeStringBase        = "string.base"
	CodeStringEmpty       = "string.empty"
	CodeStringMin         = "string.min"
	CodeStringMax         = "string.max"
	CodeStringLength      = "string.length"
	CodeStringAlphanum    = "string.alphanum"
	CodeStringToken       = "string.token"
	CodeStringEmail       = "string.email"
	CodeStringHostname    = "string.hostname"
	CodeStringISODate     = "string.isoDate"
	CodeStringISODuration = "string.isoDuration"
	CodeStringCreditCard  = "string.creditCard"
	CodeStringURI         = "string.uri"
	CodeStringPattern     = "string.pattern.base"

	CodeNumberBase      = "number.base"
	CodeNumberInfinity  = "number.infinity"
	CodeNumberUnsafe    = "number.unsafe"
	CodeNumberInteger   = "number.integer"
	CodeNumberPrecision = "number.precision"
	CodeNumberPort      = "number.port"
	CodeNumberMin       = "number.min"
	CodeNumberMax       = "number.max"
	CodeNumberGreater   = "number.greater"
	CodeNumberLess      = "number.less"
	CodeNumberPositive  = "number.positive"
	CodeNumberNegative  = "number.negative"
	CodeNumberMultiple  = "number.multiple"

	CodeBooleanBase = "boolean.base"

	CodeDateBase   = "date.base"
	CodeDateFormat = "date.format"
	CodeDateMin    = "date.min"
	CodeDateMax    = "date.max"

	CodeArrayBase = "array.base"
	CodeArrayMin  = "array.min"
	CodeArrayMax  = "array.max"

	CodeObjectBase    = "object.base"
	CodeObjectUnknown = "object.unknown"
)

// ErrExternalRequiresAsync is returned by Validate when the schema carries
// external rules, which only run under ValidateAsync.
var ErrExternalRequiresAsync = errors.New("schema: schema with external rules must use ValidateAsync")

// Issue represents a single violated rule.
type Issue struct {
	Path     string // JSON Pointer (for example: /items/2/price).
	Segments []any  // Path as keys (string) and indices (int).
	Code     string // One of the codes listed above.
	Message  string
	// Context carries the key, label and offending value plus the rule
	// arguments (limit, valids, format, ...).
	Context map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. number.integer at /id
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Codes lists the issue codes in order, mostly useful in tests and logs.
func (iss Issues) Codes() []string {
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		out = append(out, it.Code)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally. A
// *ValidationError yields its details.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Details, true
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ValidationError is returned by ValidateAsync and carried by Result when the
// value violates the schema.
type ValidationError struct {
	Details  Issues
	Original any // The input as passed by the caller.
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Details))
	for _, it := range e.Details {
		msgs = append(msgs, it.Message)
	}
	return strings.Join(msgs, ". ")
}

// Unwrap exposes the details so errors.As(err, &Issues{}) works.
func (e *ValidationError) Unwrap() error { return e.Details }

// Result is the outcome of a synchronous validation. Error is a
// *ValidationError for rule violations and a plain error for schema
// configuration problems.
type Result struct {
	Value any
	Error error
}

// Issues returns the violation details, or nil when the value is valid.
func (r Result) Issues() Issues {
	iss, _ := AsIssues(r.Error)
	return iss
}
