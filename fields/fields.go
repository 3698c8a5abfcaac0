// MIT License
//
// Copyright (c) 2023-2026 Objverse Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package fields implements the field type system of the versioned object
// model: coercion, primitive round-tripping and equality for scalar and
// container value kinds, and the Field wrapper that adds nullability,
// defaults and read-only enforcement on top of a type.
//
// Every Type must round-trip through primitives: FromPrimitive(ToPrimitive(v))
// compares equal to v under the type's own Equal. Coercion rejects values
// outside the type's domain but performs safe widening (int-like strings into
// Integer, numbers into String) because source systems commonly send
// weakly-typed values.
package fields

import (
	"github.com/objverse/objverse/errors"
)

// Type is the stateless strategy a Field delegates to. Implementations are
// immutable after construction and safe for concurrent use; the only
// exception is the registry binding of object-bearing types, which happens
// once at registration time before traffic begins.
type Type interface {
	// Coerce converts a value being assigned into the type's natural form,
	// or fails when the value lies outside the type's domain. attr names the
	// field being set and is used in error messages only.
	Coerce(attr string, value any) (any, error)

	// ToPrimitive converts a natural-form value into its wire-safe primitive
	// form (Go scalars, []any, map[string]any).
	ToPrimitive(attr string, value any) (any, error)

	// FromPrimitive converts a primitive produced by ToPrimitive back into
	// the natural form.
	FromPrimitive(attr string, value any) (any, error)

	// Equal compares two natural-form values for equality.
	Equal(a, b any) bool

	// Tag returns the stable type tag consumed by the object fingerprint.
	Tag() string

	// Stringify returns a short human-readable rendering of a value.
	Stringify(value any) string
}

// Field composes a Type with nullability, an optional default and read-only
// enforcement. Fields are declared once per object type and shared across
// instances; they hold no per-instance state.
type Field struct {
	typ          Type
	nullable     bool
	readOnly     bool
	hasDefault   bool
	defaultValue any
	defaultFunc  func() any
}

// Option is the interface that applies a configuration option to a Field.
type Option interface {
	// Apply sets the Option value of a Field.
	Apply(*Field)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Field)

func (f OptionFunc) Apply(field *Field) {
	f(field)
}

// AsNullable allows the field to hold nil.
func AsNullable() Option {
	return OptionFunc(func(f *Field) {
		f.nullable = true
	})
}

// AsReadOnly fixes the field on first assignment; a subsequent assignment
// with a differing coerced value fails.
func AsReadOnly() Option {
	return OptionFunc(func(f *Field) {
		f.readOnly = true
	})
}

// WithDefault sets the value returned when the field is read before being
// assigned. The default is coerced on every read so it is validated against
// the field's type.
func WithDefault(value any) Option {
	return OptionFunc(func(f *Field) {
		f.hasDefault = true
		f.defaultValue = value
		f.defaultFunc = nil
	})
}

// WithDefaultFunc sets a deferred default factory, called on every read of
// the unset field. Use it for mutable defaults (slices, maps, nested
// objects) so instances never share state.
func WithDefaultFunc(fn func() any) Option {
	return OptionFunc(func(f *Field) {
		f.hasDefault = true
		f.defaultValue = nil
		f.defaultFunc = fn
	})
}

// New creates a Field over the given type.
func New(t Type, opts ...Option) *Field {
	f := &Field{typ: t}
	for _, opt := range opts {
		opt.Apply(f)
	}
	return f
}

// Type returns the field's underlying type.
func (f *Field) Type() Type {
	return f.typ
}

// Nullable reports whether the field may hold nil.
func (f *Field) Nullable() bool {
	return f.nullable
}

// ReadOnly reports whether the field is fixed after its first assignment.
func (f *Field) ReadOnly() bool {
	return f.readOnly
}

// HasDefault reports whether the field declares a default.
func (f *Field) HasDefault() bool {
	return f.hasDefault
}

// Default realizes the field's default for the named attribute. The deferred
// factory, when declared, runs on every call so mutable defaults are never
// shared between instances.
func (f *Field) Default(attr string) (any, error) {
	if !f.hasDefault {
		return nil, errors.NewNotSetError(attr)
	}
	value := f.defaultValue
	if f.defaultFunc != nil {
		value = f.defaultFunc()
	}
	return f.Coerce(attr, value)
}

// Coerce converts a value being assigned to the field. nil is a value only
// nullable fields accept; a declared default is realized on read, never
// substituted at assignment time.
func (f *Field) Coerce(attr string, value any) (any, error) {
	if value == nil {
		if f.nullable {
			return nil, nil
		}
		return nil, errors.NewCoercionError(attr, nil, "a non-nil value")
	}
	return f.typ.Coerce(attr, value)
}

// ToPrimitive serializes a natural-form value held by the field.
func (f *Field) ToPrimitive(attr string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return f.typ.ToPrimitive(attr, value)
}

// FromPrimitive deserializes a primitive into the field's natural form.
func (f *Field) FromPrimitive(attr string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	return f.typ.FromPrimitive(attr, value)
}

// Equal compares two natural-form values under the field's type, treating
// nil as equal only to nil.
func (f *Field) Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return f.typ.Equal(a, b)
}

// Stringify returns a short rendering of a value held by the field.
func (f *Field) Stringify(value any) string {
	if value == nil {
		return "nil"
	}
	return f.typ.Stringify(value)
}
