// Package opt provides a small optional value type with explicit presence.
package opt

import "strings"

// Value holds a T that may be absent. The zero Value is absent.
type Value[T any] struct {
	v  T
	ok bool
}

// Some returns a present Value.
func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

// None returns an absent Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Get returns the held value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

// Present reports whether a value is held.
func (o Value[T]) Present() bool {
	return o.ok
}

// OrElse returns the held value or fallback when absent.
func (o Value[T]) OrElse(fallback T) T {
	if o.ok {
		return o.v
	}
	return fallback
}

// FromPtr converts a nil-able pointer into a Value.
func FromPtr[T any](p *T) Value[T] {
	if p == nil {
		return Value[T]{}
	}
	return Some(*p)
}

// NonBlank returns a present Value holding the trimmed string, or absent
// when the pointer is nil or the string is blank.
func NonBlank(p *string) Value[string] {
	if p == nil {
		return Value[string]{}
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return Value[string]{}
	}
	return Some(s)
}
