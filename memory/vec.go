package memory

import (
	"fmt"
	"reflect"

	"github.com/arloliu/chunkframe/errs"
	"github.com/cockroachdb/errors"
)

// span is the typed backing of a Vec.
type span interface {
	len() int
	slice(start, end int) span
	get(i int) any
	set(i int, v any) bool
	elemType() reflect.Type
}

type typedSpan[T any] []T

func (s typedSpan[T]) len() int { return len(s) }

func (s typedSpan[T]) slice(start, end int) span { return s[start:end] }

func (s typedSpan[T]) get(i int) any { return s[i] }

func (s typedSpan[T]) set(i int, v any) bool {
	tv, ok := v.(T)
	if !ok {
		return false
	}
	s[i] = tv

	return true
}

func (s typedSpan[T]) elemType() reflect.Type { return reflect.TypeFor[T]() }

// Vec is an untyped view over a contiguous run of elements.
//
// A Vec carries no ownership: it stays valid only while the Source it was
// taken from holds at least one pin. The zero Vec is empty and has no type.
type Vec struct {
	data span
}

// VecOf creates a Vec over s without copying.
func VecOf[T any](s []T) Vec {
	return Vec{data: typedSpan[T](s)}
}

// Elems returns the typed slice behind v.
//
// Returns false if v was not created over a []T.
func Elems[T any](v Vec) ([]T, bool) {
	s, ok := v.data.(typedSpan[T])
	return s, ok
}

// Len returns the number of elements.
func (v Vec) Len() int {
	if v.data == nil {
		return 0
	}

	return v.data.len()
}

// Type returns the element type, nil for the zero Vec.
func (v Vec) Type() reflect.Type {
	if v.data == nil {
		return nil
	}

	return v.data.elemType()
}

// IsZero reports whether v is the zero Vec.
func (v Vec) IsZero() bool {
	return v.data == nil
}

// Slice returns the sub-view [start, start+length).
//
// Returns ErrOutOfRange if the window does not fit.
func (v Vec) Slice(start, length int) (Vec, error) {
	n := v.Len()
	if start < 0 || length < 0 || start > n || length > n-start {
		return Vec{}, fmt.Errorf("slice [%d:+%d] of %d elements: %w", start, length, n, errs.ErrOutOfRange)
	}
	if v.data == nil {
		return Vec{}, nil
	}

	return Vec{data: v.data.slice(start, start+length)}, nil
}

// Get returns the element at i, boxed.
func (v Vec) Get(i int) (any, error) {
	if uint(i) >= uint(v.Len()) {
		return nil, fmt.Errorf("index %d of %d elements: %w", i, v.Len(), errs.ErrOutOfRange)
	}

	return v.data.get(i), nil
}

// Set stores value at i.
//
// Returns ErrOutOfRange for a bad index and ErrTypeMismatch if value does
// not have the element type.
func (v Vec) Set(i int, value any) error {
	if uint(i) >= uint(v.Len()) {
		return fmt.Errorf("index %d of %d elements: %w", i, v.Len(), errs.ErrOutOfRange)
	}
	if !v.data.set(i, value) {
		return fmt.Errorf("set %T into %s vector: %w", value, v.Type(), errs.ErrTypeMismatch)
	}

	return nil
}

// DangerousGet returns the element at i without a bounds check beyond the
// one the Go runtime performs.
func (v Vec) DangerousGet(i int) any {
	return v.data.get(i)
}

// DangerousSet stores value at i without validating the index.
// Panics if value does not have the element type.
func (v Vec) DangerousSet(i int, value any) {
	if !v.data.set(i, value) {
		panic(errors.AssertionFailedf("memory: set %T into %s vector", value, v.Type()))
	}
}

// SameType reports whether a and b have the same element type.
func SameType(a, b Vec) bool {
	return a.Type() == b.Type()
}
