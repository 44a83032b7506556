package schema

import (
	"errors"
	"sync"
)

// Predicate inspects the sibling values of the key being validated. At the
// root, siblings is nil.
type Predicate func(siblings map[string]any) bool

type when struct {
	pred      Predicate
	then      *Schema
	otherwise *Schema
}

// When applies then or otherwise on top of s depending on pred. Either
// branch may be nil. With several conditions the first one yielding a
// branch is used.
func (s *Schema) When(pred Predicate, then, otherwise *Schema) *Schema {
	if pred == nil {
		return s.withErr("when() requires a predicate")
	}
	c := s.clone()
	c.whens = append(c.whens, when{pred: pred, then: then, otherwise: otherwise})
	for _, b := range []*Schema{then, otherwise} {
		if b != nil && b.err != nil && c.err == nil {
			c.err = b.err
		}
	}
	return c
}

func (s *Schema) branch(st *state) *Schema {
	for _, w := range s.whens {
		if w.pred(st.parent) {
			if w.then != nil {
				return w.then
			}
			continue
		}
		if w.otherwise != nil {
			return w.otherwise
		}
	}
	return nil
}

// Lazy defers schema construction to first use, which allows recursive
// types. resolve runs at most once; its result is shared by every copy of
// the returned schema.
func Lazy(resolve func() (*Schema, error)) *Schema {
	s := newSchema(TypeLink)
	s.link = &lazyRef{fn: resolve}
	return s
}

type lazyRef struct {
	once   sync.Once
	fn     func() (*Schema, error)
	target *Schema
	err    error
}

func (l *lazyRef) resolve() (*Schema, error) {
	l.once.Do(func() {
		if l.fn == nil {
			l.err = errors.New("lazy schema has no resolver")
			return
		}
		l.target, l.err = l.fn()
		if l.err == nil && l.target == nil {
			l.err = errors.New("lazy schema resolved to nil")
		}
		if l.err == nil && l.target.err != nil {
			l.err = l.target.err
		}
	})
	return l.target, l.err
}
