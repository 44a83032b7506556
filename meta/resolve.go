package meta

// Resolver merges a type's own descriptor with those of its ancestors.
type Resolver struct {
	store *Store
}

// NewResolver returns a resolver reading from s.
func NewResolver(s *Store) *Resolver { return &Resolver{store: s} }

// Resolve returns the effective descriptor of key. Fields are the union of
// the chain's fields; for a field present at several levels the most
// derived value of each property wins. Options and Global come from the
// nearest type that sets them. Resolve reports false when no type in the
// chain was annotated.
func (r *Resolver) Resolve(key Key) (TypeDescriptor, bool) {
	return r.resolve(normalizeKey(key), map[Key]bool{})
}

func (r *Resolver) resolve(key Key, seen map[Key]bool) (TypeDescriptor, bool) {
	seen[key] = true
	own, hasOwn := r.store.GetOwn(key)
	parent, hasParent := r.store.Parent(key)
	if !hasParent || seen[parent] {
		return own, hasOwn
	}
	anc, hasAnc := r.resolve(parent, seen)
	if !hasOwn {
		return anc, hasAnc
	}
	if !hasAnc {
		return own, true
	}
	for name, f := range own.Fields {
		if af, ok := anc.Fields[name]; ok {
			anc.Fields[name] = af.Merge(f)
			continue
		}
		anc.Fields[name] = f
	}
	if own.Options != nil {
		anc.Options = own.Options
	}
	if own.Global != nil {
		anc.Global = own.Global
	}
	return anc, true
}

// Chain lists key followed by its ancestors, nearest first.
func (r *Resolver) Chain(key Key) []Key {
	key = normalizeKey(key)
	chain := []Key{key}
	seen := map[Key]bool{key: true}
	for {
		p, ok := r.store.Parent(key)
		if !ok || seen[p] {
			return chain
		}
		chain = append(chain, p)
		seen[p] = true
		key = p
	}
}
