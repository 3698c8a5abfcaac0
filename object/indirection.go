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

package object

import (
	"context"
	"fmt"

	"github.com/objverse/objverse/errors"
)

// Indirection is the contract a remote backend must satisfy so that objects
// too large to inline, or methods that must execute with their side effects
// elsewhere, can be reached through indirection instead of operating
// locally.
//
// The core calls this interface and never assumes a particular transport.
// Both methods may perform network I/O and therefore block; cancellation and
// timeout policy belongs entirely to the surrounding transport through the
// supplied context. The core never retries a failed call.
type Indirection interface {
	// Fetch retrieves the full serialized document of the object identified
	// by the locator, at the requested type and version.
	Fetch(ctx context.Context, objectType, objectVersion, locator string) (Document, error)

	// ExecuteRemote runs a method of the named type out of process and
	// returns its result.
	ExecuteRemote(ctx context.Context, objectType, method string, args []any) (any, error)
}

// NewStub creates an unhydrated instance carrying only a locator. Method
// calls on a stub route through the indirection backend; Hydrate pulls the
// full document when field access is needed.
func NewStub(schema *Schema, locator string) *Object {
	obj := New(schema)
	obj.locator = locator
	return obj
}

// Locator returns the stub locator, empty for objects built from full data.
func (o *Object) Locator() string {
	return o.locator
}

// SetLocator attaches the identity the indirection backend can fetch this
// object by. The object keeps the data it already holds; the locator only
// changes how it serializes when its schema's indirection policy applies.
func (o *Object) SetLocator(locator string) {
	o.locator = locator
	o.hydrated = true
}

// Hydrated reports whether the object holds its data rather than only a
// locator. A legitimate remote document may carry zero set fields, so
// hydration is tracked explicitly instead of inferred from the values.
func (o *Object) Hydrated() bool {
	return o.locator == "" || o.hydrated
}

// Hydrate fetches the stub's full document through the indirection backend
// and populates the object in place. Hydrating a non-stub or an
// already-hydrated object is a no-op.
func (o *Object) Hydrate(ctx context.Context) error {
	if o.Hydrated() {
		return nil
	}
	registry := o.schema.registry
	if registry == nil || registry.backend == nil {
		return fmt.Errorf("%w: cannot hydrate %s", errors.ErrNoIndirection, o.schema.name)
	}
	doc, err := registry.backend.Fetch(ctx, o.schema.name, o.schema.version.String(), o.locator)
	if err != nil {
		return err
	}
	name, ver, err := header(doc)
	if err != nil {
		return err
	}
	if name != o.schema.name || ver.String() != o.schema.version.String() {
		return errors.NewInvalidDocumentError(fmt.Sprintf(
			"fetched %s@%s while hydrating %s@%s", name, ver, o.schema.name, o.schema.version))
	}
	if _, stub := doc[KeyLocator]; stub {
		return errors.NewInvalidDocumentError(fmt.Sprintf(
			"fetched a stub envelope while hydrating %s@%s", o.schema.name, o.schema.version))
	}
	hydrated, err := registry.Deserialize(doc)
	if err != nil {
		return err
	}
	o.values = hydrated.values
	o.changed = hydrated.changed
	o.hydrated = true
	return nil
}

// Call dispatches a declared method. Local entries run their handler
// in-process; remotable entries, any call on an unhydrated stub, and every
// call on an indirect-only type route through the indirection backend.
func (o *Object) Call(ctx context.Context, method string, args ...any) (any, error) {
	spec, ok := o.schema.methods[method]
	if !ok {
		return nil, errors.NewUnknownMethodError(o.schema.name, method)
	}
	remote := spec.Remotable || o.schema.indirectOnly || !o.Hydrated()
	if remote {
		registry := o.schema.registry
		if registry == nil || registry.backend == nil {
			return nil, fmt.Errorf("%w: cannot call %s.%s", errors.ErrNoIndirection, o.schema.name, method)
		}
		return registry.backend.ExecuteRemote(ctx, o.schema.name, method, args)
	}
	if spec.Handler == nil {
		return nil, errors.NewUnknownMethodError(o.schema.name, method)
	}
	return spec.Handler(ctx, o, args)
}
