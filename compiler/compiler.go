package compiler

import (
	"errors"
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	"github.com/reoring/metaskema/meta"
	"github.com/reoring/metaskema/schema"
)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for compile and cache events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Compiler) { c.log = l }
}

// Compiler turns resolved descriptors into schemas and caches them per type.
//
// The cache is never invalidated by annotation changes. Callers that
// annotate after compiling must compile with useCache=false, or call
// Invalidate.
type Compiler struct {
	store    *meta.Store
	resolver *meta.Resolver
	log      zerolog.Logger

	mu    sync.Mutex
	cache map[meta.Key]*schema.Schema
}

// New returns a compiler reading descriptors from store.
func New(store *meta.Store, opts ...Option) *Compiler {
	c := &Compiler{
		store:    store,
		resolver: meta.NewResolver(store),
		log:      zerolog.Nop(),
		cache:    map[meta.Key]*schema.Schema{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Store returns the descriptor store the compiler reads from.
func (c *Compiler) Store() *meta.Store { return c.store }

// Compile returns the schema of the type identified by key.
//
// With useCache the cached schema is returned when present, otherwise the
// freshly compiled schema is stored. Without useCache the type is compiled
// from the current descriptors and the cache is neither read nor written.
// A type with no descriptor anywhere in its chain compiles to an object
// schema accepting any keys.
func (c *Compiler) Compile(key meta.Key, useCache bool) (*schema.Schema, error) {
	key = canonical(key)
	if key == nil {
		return nil, errors.New("compiler: nil type key")
	}
	if useCache {
		c.mu.Lock()
		s, ok := c.cache[key]
		c.mu.Unlock()
		if ok {
			c.log.Debug().Str("type", key.String()).Msg("schema cache hit")
			return s, nil
		}
	}

	s, err := newSession(c.resolver).root(key)
	if err != nil {
		c.log.Debug().Err(err).Str("type", key.String()).Msg("compile failed")
		return nil, err
	}
	if useCache {
		c.mu.Lock()
		if cached, ok := c.cache[key]; ok {
			s = cached
		} else {
			c.cache[key] = s
		}
		c.mu.Unlock()
	}
	c.log.Debug().Str("type", key.String()).Bool("cached", useCache).Msg("compiled schema")
	return s, nil
}

// Describe compiles key and returns the description of the schema's rules.
func (c *Compiler) Describe(key meta.Key, useCache bool) (*schema.Description, error) {
	s, err := c.Compile(key, useCache)
	if err != nil {
		return nil, err
	}
	return s.Describe(), nil
}

// Invalidate drops the cached schema of key.
func (c *Compiler) Invalidate(key meta.Key) {
	key = canonical(key)
	c.mu.Lock()
	delete(c.cache, key)
	c.mu.Unlock()
}

// Reset empties the cache.
func (c *Compiler) Reset() {
	c.mu.Lock()
	clear(c.cache)
	c.mu.Unlock()
}

// Cached reports whether a schema is cached for key.
func (c *Compiler) Cached(key meta.Key) bool {
	key = canonical(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.cache[key]
	return ok
}

func canonical(k meta.Key) meta.Key {
	if t, ok := k.(reflect.Type); ok {
		return meta.TypeKey(t)
	}
	return k
}
