// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pointer provides generic helpers for the optional fields of rows and
patches (nullable parent ids, image references, partial updates).

Key Functions:
  - To: Creates a pointer from a value literal.
  - Clone: Copies the pointee so two rows never share it.
  - Val: Safely dereferences a pointer, returning the zero value if nil.
*/
package pointer

// To returns a pointer to the provided value.
// It is useful when you need to pass a literal to a field that expects a
// pointer (e.g. Patch{Title: pointer.To("Goa")}).
func To[T any](v T) *T {
	return &v
}

// Clone returns a pointer to a copy of *p, or nil.
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Val safely dereferences a pointer.
// If the pointer is nil, it returns the zero value of the underlying type.
func Val[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
