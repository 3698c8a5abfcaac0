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

// Package errors defines the error kinds surfaced by the object model.
//
// Every failure mode has a sentinel that callers can match with errors.Is,
// and the richer failure modes additionally carry a typed error with the
// offending field, value or version attached.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrCoercion is returned when a value lies outside a field type's domain
	// and cannot be safely widened into it.
	ErrCoercion = errors.New("value cannot be coerced")

	// ErrValueNotAllowed is returned when an enum field is assigned a value
	// outside its declared set.
	ErrValueNotAllowed = errors.New("value is not in the allowed set")

	// ErrTypeMismatch is returned when an object-reference field is assigned
	// an object of the wrong declared type.
	ErrTypeMismatch = errors.New("object type mismatch")

	// ErrReadOnlyField is returned when a read-only field that already holds
	// a value is assigned a different one.
	ErrReadOnlyField = errors.New("field is read-only")

	// ErrNotSet is returned when reading a field that has no assigned value,
	// no default, and is not nullable.
	ErrNotSet = errors.New("field is not set")

	// ErrUnknownField is returned when an object is asked about a field its
	// schema does not declare.
	ErrUnknownField = errors.New("field is not declared")

	// ErrIncompatibleObjectVersion is returned when no downgrade path exists
	// between two versions of an object type, or when the requested target
	// version is newer than the object's native version.
	ErrIncompatibleObjectVersion = errors.New("incompatible object version")

	// ErrUnknownObject is returned on a registry lookup for a type name that
	// was never registered.
	ErrUnknownObject = errors.New("object type is not registered")

	// ErrUnknownVersion is returned on a registry lookup for a known type at
	// a version that was never registered.
	ErrUnknownVersion = errors.New("object version is not registered")

	// ErrDuplicateRegistration is returned when a (type, version) pair is
	// re-registered with a different schema.
	ErrDuplicateRegistration = errors.New("conflicting registration")

	// ErrRegistrySealed is returned when registering after Seal.
	ErrRegistrySealed = errors.New("registry is sealed")

	// ErrInvalidDocument is returned when a serialized document is missing
	// its type or version header, or a header has the wrong shape.
	ErrInvalidDocument = errors.New("invalid object document")

	// ErrInvalidVersion is returned when a version string cannot be parsed
	// as "major.minor".
	ErrInvalidVersion = errors.New("invalid version string")

	// ErrUnknownMethod is returned when calling a method the object's schema
	// does not declare.
	ErrUnknownMethod = errors.New("method is not declared")

	// ErrNoIndirection is returned when a call must route out of process but
	// no indirection backend is configured.
	ErrNoIndirection = errors.New("no indirection backend configured")

	// ErrNotHydrated is returned when serializing a stub object that has not
	// been hydrated from its locator.
	ErrNotHydrated = errors.New("object is not hydrated")
)

// CoercionError reports the field and value that failed coercion.
type CoercionError struct {
	Field string
	Value any
	want  string
}

// enforce compilation error
var _ error = (*CoercionError)(nil)

// NewCoercionError creates an instance of CoercionError
func NewCoercionError(field string, value any, want string) *CoercionError {
	return &CoercionError{Field: field, Value: value, want: want}
}

// Error implements the standard error interface
func (e *CoercionError) Error() string {
	return fmt.Sprintf("%s: field %s requires %s, got %T", ErrCoercion, e.Field, e.want, e.Value)
}

// Unwrap returns the underlying sentinel
func (e *CoercionError) Unwrap() error {
	return ErrCoercion
}

// IncompatibleObjectVersionError names the type and the versions between
// which no downgrade path exists.
type IncompatibleObjectVersionError struct {
	ObjectType string
	Native     string
	Target     string
}

// enforce compilation error
var _ error = (*IncompatibleObjectVersionError)(nil)

// NewIncompatibleObjectVersionError creates an instance of IncompatibleObjectVersionError
func NewIncompatibleObjectVersionError(objectType, native, target string) *IncompatibleObjectVersionError {
	return &IncompatibleObjectVersionError{ObjectType: objectType, Native: native, Target: target}
}

// Error implements the standard error interface
func (e *IncompatibleObjectVersionError) Error() string {
	return fmt.Sprintf("%s: %s has no path from %s to %s", ErrIncompatibleObjectVersion, e.ObjectType, e.Native, e.Target)
}

// Unwrap returns the underlying sentinel
func (e *IncompatibleObjectVersionError) Unwrap() error {
	return ErrIncompatibleObjectVersion
}

// ReadOnlyFieldError reports an attempted mutation of a fixed read-only field.
type ReadOnlyFieldError struct {
	Field string
}

// enforce compilation error
var _ error = (*ReadOnlyFieldError)(nil)

// NewReadOnlyFieldError creates an instance of ReadOnlyFieldError
func NewReadOnlyFieldError(field string) *ReadOnlyFieldError {
	return &ReadOnlyFieldError{Field: field}
}

// Error implements the standard error interface
func (e *ReadOnlyFieldError) Error() string {
	return fmt.Sprintf("%s: %s already holds a different value", ErrReadOnlyField, e.Field)
}

// Unwrap returns the underlying sentinel
func (e *ReadOnlyFieldError) Unwrap() error {
	return ErrReadOnlyField
}

// NewValueNotAllowedError wraps ErrValueNotAllowed with the offending field and value.
func NewValueNotAllowedError(field string, value any) error {
	return fmt.Errorf("%w: field %s rejects %v", ErrValueNotAllowed, field, value)
}

// NewTypeMismatchError wraps ErrTypeMismatch with the declared and actual object types.
func NewTypeMismatchError(field, want, got string) error {
	return fmt.Errorf("%w: field %s requires an object of type %s, got %q", ErrTypeMismatch, field, want, got)
}

// NewNotSetError wraps ErrNotSet with the field name.
func NewNotSetError(field string) error {
	return fmt.Errorf("%w: %s", ErrNotSet, field)
}

// NewUnknownFieldError wraps ErrUnknownField with the type and field names.
func NewUnknownFieldError(objectType, field string) error {
	return fmt.Errorf("%w: %s has no field %s", ErrUnknownField, objectType, field)
}

// NewUnknownObjectError wraps ErrUnknownObject with the type name.
func NewUnknownObjectError(objectType string) error {
	return fmt.Errorf("%w: %s", ErrUnknownObject, objectType)
}

// NewUnknownVersionError wraps ErrUnknownVersion with the type name and version.
func NewUnknownVersionError(objectType, version string) error {
	return fmt.Errorf("%w: %s at %s", ErrUnknownVersion, objectType, version)
}

// NewDuplicateRegistrationError wraps ErrDuplicateRegistration with the type name and version.
func NewDuplicateRegistrationError(objectType, version string) error {
	return fmt.Errorf("%w: %s at %s", ErrDuplicateRegistration, objectType, version)
}

// NewInvalidDocumentError wraps ErrInvalidDocument with the reason the
// envelope was rejected.
func NewInvalidDocumentError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidDocument, reason)
}

// NewUnknownMethodError wraps ErrUnknownMethod with the type and method names.
func NewUnknownMethodError(objectType, method string) error {
	return fmt.Errorf("%w: %s has no method %s", ErrUnknownMethod, objectType, method)
}
