package metaskema

import "github.com/reoring/metaskema/schema"

// CallOption adjusts a single Validate, ValidateAsync, Describe or Schema
// call.
type CallOption func(*call)

type call struct {
	useCache bool
	opts     schema.Options
}

func newCall(opts []CallOption) call {
	c := call{useCache: true}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func (c call) options() []schema.Options {
	if c.opts.IsZero() {
		return nil
	}
	return []schema.Options{c.opts}
}

// NoCache compiles from the current descriptors without reading or
// writing the schema cache.
func NoCache() CallOption {
	return func(c *call) { c.useCache = false }
}

// WithOptions sets validation options for this call. Options attached to
// the type with meta.SchemaOptions take precedence. Repeated calls merge.
func WithOptions(o schema.Options) CallOption {
	return func(c *call) { c.opts = c.opts.Merge(o) }
}
