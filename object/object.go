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
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/objverse/objverse/errors"
	"github.com/objverse/objverse/fields"
	"github.com/objverse/objverse/version"
)

// Object is one instance of a versioned type: a shared schema plus this
// instance's assigned values and the set of field names assigned since
// construction or the last change reset.
//
// An Object is not safe for concurrent mutation; serialize, compare and
// downgrade operations never mutate it.
type Object struct {
	schema   *Schema
	values   map[string]any
	changed  mapset.Set[string]
	locator  string
	hydrated bool
}

// enforce compilation error
var _ fields.ObjectHandle = (*Object)(nil)

// New creates an empty instance of the schema's type.
func New(schema *Schema) *Object {
	return &Object{
		schema:  schema,
		values:  map[string]any{},
		changed: mapset.NewSet[string](),
	}
}

// NewWithValues creates an instance and assigns the given fields, tracking
// each as changed.
func NewWithValues(schema *Schema, values map[string]any) (*Object, error) {
	obj := New(schema)
	for name, value := range values {
		if err := obj.Set(name, value); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// Schema returns the shared type declaration backing this instance.
func (o *Object) Schema() *Schema {
	return o.schema
}

// ObjectType returns the stable type name, independent of version.
func (o *Object) ObjectType() string {
	return o.schema.name
}

// ObjectVersion returns the instance's "major.minor" version string.
func (o *Object) ObjectVersion() string {
	return o.schema.version.String()
}

// Set assigns a field. The value is coerced through the field's type; the
// field name joins the changed set on success. Assigning a differing value
// to a read-only field that already holds one fails.
func (o *Object) Set(name string, value any) error {
	f, ok := o.schema.fields[name]
	if !ok {
		return errors.NewUnknownFieldError(o.schema.name, name)
	}
	coerced, err := f.Coerce(name, value)
	if err != nil {
		return err
	}
	if f.ReadOnly() {
		if existing, assigned := o.values[name]; assigned && !f.Equal(existing, coerced) {
			return errors.NewReadOnlyFieldError(name)
		}
	}
	o.values[name] = coerced
	o.changed.Add(name)
	return nil
}

// Get reads a field. An unassigned field resolves to its default, realized
// on every read, then to nil when nullable; a default-less, non-nullable
// unassigned field fails.
func (o *Object) Get(name string) (any, error) {
	f, ok := o.schema.fields[name]
	if !ok {
		return nil, errors.NewUnknownFieldError(o.schema.name, name)
	}
	if value, assigned := o.values[name]; assigned {
		return value, nil
	}
	if f.HasDefault() {
		return f.Default(name)
	}
	if f.Nullable() {
		return nil, nil
	}
	return nil, errors.NewNotSetError(name)
}

// IsSet reports whether the field holds an assigned value. Defaults do not
// count as assigned.
func (o *Object) IsSet(name string) bool {
	_, assigned := o.values[name]
	return assigned
}

// WhatChanged returns a copy of the set of field names assigned since
// construction or the last ResetChanges.
func (o *Object) WhatChanged() mapset.Set[string] {
	return o.changed.Clone()
}

// ResetChanges clears the changed set. Assigned values are kept.
func (o *Object) ResetChanges() {
	o.changed = mapset.NewSet[string]()
}

// Clone returns an instance with the same schema, assigned values and
// changed set. Values are copied by reference; nested containers are shared
// until reassigned.
func (o *Object) Clone() *Object {
	values := make(map[string]any, len(o.values))
	for k, v := range o.values {
		values[k] = v
	}
	return &Object{
		schema:   o.schema,
		values:   values,
		changed:  o.changed.Clone(),
		locator:  o.locator,
		hydrated: o.hydrated,
	}
}

// Equal reports object equality: same type name, same version, and every
// field assigned on either side assigned on both and comparing equal under
// its type. Fields unset on both sides are skipped.
func (o *Object) Equal(other *Object) bool {
	if other == nil {
		return false
	}
	if o.schema.name != other.schema.name || !o.schema.version.Equal(other.schema.version) {
		return false
	}
	for name, value := range o.values {
		otherValue, assigned := other.values[name]
		if !assigned {
			return false
		}
		if !o.schema.fields[name].Equal(value, otherValue) {
			return false
		}
	}
	for name := range other.values {
		if _, assigned := o.values[name]; !assigned {
			return false
		}
	}
	return true
}

// EqualObject implements fields.ObjectHandle.
func (o *Object) EqualObject(other fields.ObjectHandle) bool {
	obj, ok := other.(*Object)
	if !ok {
		return false
	}
	return o.Equal(obj)
}

// String returns a short rendering of the object for logs and errors.
func (o *Object) String() string {
	return fmt.Sprintf("%s@%s", o.schema.name, o.schema.version)
}

// Serialize produces the object's primitive tree at its native version. It
// is a read-only snapshot: the changed set is not mutated.
//
// Instances of an indirect-only type, and instances whose estimated data
// size exceeds the schema's indirection threshold, never inline: they
// serialize as a locator stub envelope the receiver resolves through the
// indirection backend. Such an instance must carry a locator; one without an
// identity to fetch by fails rather than leaking the data inline.
func (o *Object) Serialize() (Document, error) {
	if o.schema.indirectOnly {
		if o.locator == "" {
			return nil, fmt.Errorf("%w: %s is indirect-only and has no locator to serialize as",
				errors.ErrNoIndirection, o.schema.name)
		}
		return o.stubDocument(), nil
	}
	if o.locator != "" && !o.hydrated {
		return nil, fmt.Errorf("%w: %s stub %q", errors.ErrNotHydrated, o.schema.name, o.locator)
	}
	data := make(map[string]any, len(o.values))
	for _, name := range o.schema.names {
		value, assigned := o.values[name]
		if !assigned {
			continue
		}
		prim, err := o.schema.fields[name].ToPrimitive(name, value)
		if err != nil {
			return nil, err
		}
		data[name] = prim
	}
	if o.schema.threshold > 0 && primitiveSize(data) > o.schema.threshold {
		if o.locator == "" {
			return nil, fmt.Errorf("%w: %s data exceeds the indirection threshold and has no locator to serialize as",
				errors.ErrNoIndirection, o.schema.name)
		}
		return o.stubDocument(), nil
	}
	changes := o.changed.ToSlice()
	sort.Strings(changes)
	return Document{
		KeyType:      o.schema.name,
		KeyVersion:   o.schema.version.String(),
		KeyChanges:   changes,
		KeyData:      data,
		KeyNamespace: o.schema.namespace,
	}, nil
}

// stubDocument is the locator envelope of an object too large or too
// indirect to inline.
func (o *Object) stubDocument() Document {
	return Document{
		KeyType:      o.schema.name,
		KeyVersion:   o.schema.version.String(),
		KeyLocator:   o.locator,
		KeyNamespace: o.schema.namespace,
	}
}

// SerializeAt produces the primitive tree downgraded to the given target
// version. The object is first serialized at its native version, then the
// tree is rewritten by the compatibility engine; serializing at the native
// version is the identity.
func (o *Object) SerializeAt(target string) (Document, error) {
	doc, err := o.Serialize()
	if err != nil {
		return nil, err
	}
	targetVersion, err := version.Parse(target)
	if err != nil {
		return nil, err
	}
	if targetVersion.Equal(o.schema.version) {
		return doc, nil
	}
	if o.schema.registry == nil {
		return nil, errors.NewUnknownObjectError(o.schema.name)
	}
	return o.schema.registry.Downgrade(doc, target)
}

// Document implements fields.ObjectHandle by serializing at the native
// version.
func (o *Object) Document() (map[string]any, error) {
	return o.Serialize()
}
