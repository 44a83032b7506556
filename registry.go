package metaskema

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reoring/metaskema/compiler"
	"github.com/reoring/metaskema/meta"
	"github.com/reoring/metaskema/schema"
)

// Registry owns a descriptor store and the compiler built on it. It is the
// entry point for validating instances of annotated types. A Registry is
// safe for concurrent use.
type Registry struct {
	store    *meta.Store
	resolver *meta.Resolver
	compiler *compiler.Compiler
	log      zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger shared by the registry and its compiler.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithStore makes the registry read descriptors from s instead of a new
// store.
func WithStore(s *meta.Store) Option {
	return func(r *Registry) { r.store = s }
}

// New returns a registry with an empty store unless WithStore is given.
func New(opts ...Option) *Registry {
	r := &Registry{log: zerolog.Nop()}
	for _, o := range opts {
		o(r)
	}
	if r.store == nil {
		r.store = meta.NewStore()
	}
	r.resolver = meta.NewResolver(r.store)
	r.compiler = compiler.New(r.store, compiler.WithLogger(r.log))
	return r
}

// Store returns the descriptor store to annotate.
func (r *Registry) Store() *meta.Store { return r.store }

// Compiler returns the registry's compiler, for cache control.
func (r *Registry) Compiler() *compiler.Compiler { return r.compiler }

// Schema compiles the schema of key. Call options other than NoCache are
// ignored; they apply to validation only.
func (r *Registry) Schema(key meta.Key, opts ...CallOption) (*schema.Schema, error) {
	c := newCall(opts)
	return r.compiler.Compile(key, c.useCache)
}

// Validate compiles key and validates instance synchronously. instance may
// be a Go struct (normalized with schema.Normalize), a map or a decoded
// JSON/YAML value. A compile failure is reported in Result.Error.
func (r *Registry) Validate(key meta.Key, instance any, opts ...CallOption) schema.Result {
	c := newCall(opts)
	sc, err := r.compiler.Compile(key, c.useCache)
	if err != nil {
		return schema.Result{Value: instance, Error: err}
	}
	res := sc.Validate(instance, c.options()...)
	if res.Error != nil {
		r.log.Debug().Str("type", key.String()).Err(res.Error).Msg("validation failed")
	}
	return res
}

// ValidateAsync is Validate for schemas with external rules. It returns the
// validated value, or a *schema.ValidationError carrying the issues and the
// original instance.
func (r *Registry) ValidateAsync(ctx context.Context, key meta.Key, instance any, opts ...CallOption) (any, error) {
	c := newCall(opts)
	sc, err := r.compiler.Compile(key, c.useCache)
	if err != nil {
		return nil, err
	}
	out, err := sc.ValidateAsync(ctx, instance, c.options()...)
	if err != nil {
		r.log.Debug().Str("type", key.String()).Err(err).Msg("async validation failed")
		return nil, err
	}
	return out, nil
}

// Describe returns the description of the compiled schema of key.
func (r *Registry) Describe(key meta.Key, opts ...CallOption) (*schema.Description, error) {
	c := newCall(opts)
	return r.compiler.Describe(key, c.useCache)
}

// Resolve returns the fully resolved descriptor of key, or false when no
// type in its chain was annotated.
func (r *Registry) Resolve(key meta.Key) (meta.TypeDescriptor, bool) {
	return r.resolver.Resolve(key)
}

// Validate validates instance against the schema of T.
func Validate[T any](r *Registry, instance T, opts ...CallOption) schema.Result {
	return r.Validate(meta.KeyOf[T](), instance, opts...)
}

// ValidateAsync validates instance against the schema of T, running
// external rules.
func ValidateAsync[T any](ctx context.Context, r *Registry, instance T, opts ...CallOption) (any, error) {
	return r.ValidateAsync(ctx, meta.KeyOf[T](), instance, opts...)
}

// Describe describes the schema of T.
func Describe[T any](r *Registry, opts ...CallOption) (*schema.Description, error) {
	return r.Describe(meta.KeyOf[T](), opts...)
}

// Resolve returns the resolved descriptor of T.
func Resolve[T any](r *Registry) (meta.TypeDescriptor, bool) {
	return r.Resolve(meta.KeyOf[T]())
}
