package metaskema

import "github.com/reoring/metaskema/schema"

type (
	Options         = schema.Options
	Result          = schema.Result
	Issue           = schema.Issue
	Issues          = schema.Issues
	ValidationError = schema.ValidationError
	Description     = schema.Description
)

// Bool returns a pointer to b, for filling Options literals.
func Bool(b bool) *bool { return &b }
