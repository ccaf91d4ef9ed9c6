// Package lockable provides an ordered list that can be locked against
// further mutation.
//
// A List is not safe for concurrent mutation. The owner mutates it from a
// single goroutine and publishes a locked Snapshot that any number of
// readers may share.
package lockable

import (
	"fmt"
	"iter"
	"slices"

	"tomapper/maperr"
)

// List is an ordered collection which rejects mutation once locked.
type List[T any] struct {
	items  []T
	locked bool
}

// New creates an unlocked list holding items.
func New[T any](items ...T) *List[T] {
	return &List[T]{items: slices.Clone(items)}
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// At returns the item at index i.
func (l *List[T]) At(i int) T {
	return l.items[i]
}

// Items returns a copy of the items.
func (l *List[T]) Items() []T {
	if l == nil {
		return nil
	}
	return slices.Clone(l.items)
}

// All iterates the items in order.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if l == nil {
			return
		}
		for i, v := range l.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Backward iterates the items from last to first.
func (l *List[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if l == nil {
			return
		}
		for i := len(l.items) - 1; i >= 0; i-- {
			if !yield(i, l.items[i]) {
				return
			}
		}
	}
}

// Add appends items.
func (l *List[T]) Add(items ...T) error {
	if err := l.checkWritable("add"); err != nil {
		return err
	}
	l.items = append(l.items, items...)
	return nil
}

// Insert places item at index i, shifting the rest.
func (l *List[T]) Insert(i int, item T) error {
	if err := l.checkWritable("insert"); err != nil {
		return err
	}
	if i < 0 || i > len(l.items) {
		return fmt.Errorf("insert index %d out of range [0,%d]", i, len(l.items))
	}
	l.items = slices.Insert(l.items, i, item)
	return nil
}

// Remove deletes the item at index i.
func (l *List[T]) Remove(i int) error {
	if err := l.checkWritable("remove"); err != nil {
		return err
	}
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("remove index %d out of range [0,%d)", i, len(l.items))
	}
	l.items = slices.Delete(l.items, i, i+1)
	return nil
}

// RemoveFunc deletes every item for which del returns true.
func (l *List[T]) RemoveFunc(del func(T) bool) error {
	if err := l.checkWritable("remove"); err != nil {
		return err
	}
	l.items = slices.DeleteFunc(l.items, del)
	return nil
}

// Clear removes all items.
func (l *List[T]) Clear() error {
	if err := l.checkWritable("clear"); err != nil {
		return err
	}
	l.items = nil
	return nil
}

// Lock marks the list read-only and returns it.
func (l *List[T]) Lock() *List[T] {
	l.locked = true
	return l
}

// Locked reports whether the list rejects mutation.
func (l *List[T]) Locked() bool {
	return l.locked
}

// Snapshot returns a locked copy of the list.
func (l *List[T]) Snapshot() *List[T] {
	return (&List[T]{items: l.Items()}).Lock()
}

func (l *List[T]) checkWritable(op string) error {
	if l.locked {
		return maperr.New(maperr.PhaseConfig, maperr.KindReadOnly).
			Detail(op + " on a locked list").
			Build()
	}
	return nil
}
