// Package forms holds the field state of the resource creation screens.
//
// Each form validates its own fields and derives the ordered workflow step
// labels shown while the resource is provisioned.
package forms

import (
	"fmt"
	"slices"

	"github.com/chazuruo/aoss-console/internal/errors"
)

// Option is one tile in a mutually exclusive group.
type Option[T comparable] struct {
	Value       T
	Label       string
	Description string
	Disabled    bool
}

// Selection is a group of tiles with exactly one active at all times.
type Selection[T comparable] struct {
	options  []Option[T]
	selected int
}

// NewSelection returns a selection with def active. It panics if def is not
// an enabled option, which is always a programming error.
func NewSelection[T comparable](def T, options ...Option[T]) Selection[T] {
	s := Selection[T]{options: slices.Clone(options)}
	if err := s.Select(def); err != nil {
		panic(fmt.Sprintf("forms: default %v: %v", def, err))
	}
	return s
}

// Selected returns the active value.
func (s Selection[T]) Selected() T { return s.options[s.selected].Value }

// SelectedOption returns the active tile.
func (s Selection[T]) SelectedOption() Option[T] { return s.options[s.selected] }

// Index returns the position of the active tile.
func (s Selection[T]) Index() int { return s.selected }

// Options returns the tiles in display order.
func (s Selection[T]) Options() []Option[T] { return slices.Clone(s.options) }

// Select activates v. Unknown and disabled values are rejected and the
// previous choice stays active.
func (s *Selection[T]) Select(v T) error {
	i := slices.IndexFunc(s.options, func(o Option[T]) bool { return o.Value == v })
	if i < 0 {
		return errors.Invalidf("%v is not an option", v)
	}
	if s.options[i].Disabled {
		return errors.Invalidf("%s is not available", s.options[i].Label)
	}
	s.selected = i
	return nil
}

// Next activates the following enabled tile, wrapping around.
func (s *Selection[T]) Next() { s.step(1) }

// Prev activates the preceding enabled tile, wrapping around.
func (s *Selection[T]) Prev() { s.step(-1) }

func (s *Selection[T]) step(dir int) {
	n := len(s.options)
	for i := 1; i < n; i++ {
		j := ((s.selected+dir*i)%n + n) % n
		if !s.options[j].Disabled {
			s.selected = j
			return
		}
	}
}
