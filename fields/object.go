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

package fields

import (
	"fmt"

	"github.com/objverse/objverse/errors"
)

// ObjectHandle is the view of a versioned object this package needs in order
// to nest objects inside fields without importing the object package.
type ObjectHandle interface {
	// ObjectType returns the stable type name, independent of version.
	ObjectType() string
	// ObjectVersion returns the "major.minor" version string.
	ObjectVersion() string
	// Document serializes the object at its native version.
	Document() (map[string]any, error)
	// EqualObject compares two objects under object equality.
	EqualObject(other ObjectHandle) bool
}

// Resolver rebuilds an object from its serialized document. The object
// registry implements it and is bound into object-bearing field types at
// registration time.
type Resolver interface {
	ResolveDocument(doc map[string]any) (ObjectHandle, error)
}

// resolverBinder is implemented by types that hold (directly or through
// their elements) an object reference in need of a registry.
type resolverBinder interface {
	bindResolver(Resolver)
}

// BindResolver wires a registry into every object-bearing type reachable
// from t. Types without object references ignore the call. Binding happens
// once per registration; an object-bearing type belongs to a single
// registry.
func BindResolver(t Type, r Resolver) {
	if b, ok := t.(resolverBinder); ok {
		b.bindResolver(r)
	}
}

// RewriteFunc rewrites one embedded object document.
type RewriteFunc func(doc map[string]any) (map[string]any, error)

// documentRewriter is implemented by types whose primitive form can embed
// object documents.
type documentRewriter interface {
	rewriteDocuments(value any, fn RewriteFunc) (any, error)
}

// RewriteDocuments applies fn to every object document embedded in the
// primitive value v as described by type t, returning the rewritten
// primitive. Types that cannot embed documents return v unchanged. The
// compatibility engine uses this to recurse into nested objects.
func RewriteDocuments(t Type, v any, fn RewriteFunc) (any, error) {
	return rewriteDocuments(t, v, fn)
}

func rewriteDocuments(t Type, v any, fn RewriteFunc) (any, error) {
	if v == nil {
		return nil, nil
	}
	if rw, ok := t.(documentRewriter); ok {
		return rw.rewriteDocuments(v, fn)
	}
	return v, nil
}

type objectType struct {
	name     string
	resolver Resolver
}

// Object returns the type holding a nested versioned object of the named
// type. Assignment validates the value's type name; the nested object's own
// version is tracked independently of its parent.
func Object(name string) Type {
	return &objectType{name: name}
}

func (t *objectType) Coerce(attr string, value any) (any, error) {
	handle, ok := value.(ObjectHandle)
	if !ok {
		return nil, errors.NewTypeMismatchError(attr, t.name, fmt.Sprintf("%T", value))
	}
	if handle.ObjectType() != t.name {
		return nil, errors.NewTypeMismatchError(attr, t.name, handle.ObjectType())
	}
	return handle, nil
}

func (t *objectType) ToPrimitive(attr string, value any) (any, error) {
	handle, ok := value.(ObjectHandle)
	if !ok {
		return nil, errors.NewTypeMismatchError(attr, t.name, fmt.Sprintf("%T", value))
	}
	return handle.Document()
}

func (t *objectType) FromPrimitive(attr string, value any) (any, error) {
	// Objects already hydrated upstream pass through unchanged.
	if handle, ok := value.(ObjectHandle); ok {
		return t.Coerce(attr, handle)
	}
	doc, ok := toStringMap(value)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "an object document")
	}
	if t.resolver == nil {
		return nil, fmt.Errorf("object field %s of type %s is not bound to a registry", attr, t.name)
	}
	handle, err := t.resolver.ResolveDocument(doc)
	if err != nil {
		return nil, err
	}
	return t.Coerce(attr, handle)
}

func (t *objectType) Equal(a, b any) bool {
	ha, ok := a.(ObjectHandle)
	if !ok {
		return false
	}
	hb, ok := b.(ObjectHandle)
	if !ok {
		return false
	}
	return ha.EqualObject(hb)
}

func (t *objectType) Tag() string {
	return fmt.Sprintf("Object<%s>", t.name)
}

func (t *objectType) Stringify(value any) string {
	if handle, ok := value.(ObjectHandle); ok {
		return fmt.Sprintf("%s@%s", handle.ObjectType(), handle.ObjectVersion())
	}
	return fmt.Sprint(value)
}

func (t *objectType) bindResolver(r Resolver) {
	t.resolver = r
}

func (t *objectType) rewriteDocuments(value any, fn RewriteFunc) (any, error) {
	doc, ok := toStringMap(value)
	if !ok {
		return value, nil
	}
	return fn(doc)
}
