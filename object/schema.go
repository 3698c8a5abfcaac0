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
	"sort"

	"github.com/objverse/objverse/errors"
	"github.com/objverse/objverse/fields"
	"github.com/objverse/objverse/version"
)

// Transform is a downgrade rule body: a pure rewrite of a serialized
// object_data mapping into the immediately older version's shape. It may
// rename, drop or recompute fields and must not consult external state.
type Transform func(data map[string]any) (map[string]any, error)

// DowngradeRule rewrites a serialized object one step down the version
// chain.
type DowngradeRule struct {
	// To is the version this rule downgrades to.
	To string
	// Transform rewrites object_data into the To version's shape.
	Transform Transform
	// Renames maps field names the transform renames, newer name to older,
	// so a renamed field's changed marker follows its value instead of
	// being dropped with the old name.
	Renames map[string]string
	// Children is the manifest of the minimum nested-type versions the
	// parent supports at To, keyed by object type name. Nested objects of
	// types absent from the manifest travel at their own version.
	Children map[string]string
}

// Handler executes a declared method against an object in-process.
type Handler func(ctx context.Context, obj *Object, args []any) (any, error)

// MethodSpec is one entry of a type version's method table. Dispatch is a
// lookup plus a branch: local entries run their Handler, remotable entries
// route through the registry's indirection backend.
type MethodSpec struct {
	// Name is the method name used for dispatch.
	Name string
	// Signature is the stable textual signature folded into the type
	// fingerprint for remotable methods.
	Signature string
	// Remotable marks methods that must execute out of process.
	Remotable bool
	// Handler runs the method locally. It is ignored for remotable methods.
	Handler Handler
}

// Schema is the immutable declaration of an object type at one version: its
// field descriptors, downgrade rules and method table. One Schema is shared
// by every instance of the (type, version) pair; per-instance state lives on
// Object.
type Schema struct {
	name         string
	version      version.Version
	namespace    string
	fields       map[string]*fields.Field
	names        []string
	rules        map[string]*DowngradeRule
	methods      map[string]*MethodSpec
	indirectOnly bool
	threshold    int
	registry     *Registry
}

// SchemaOption is the interface that applies a configuration option to a
// Schema under construction.
type SchemaOption interface {
	// Apply sets the SchemaOption value of a Schema.
	Apply(*Schema)
}

// enforce compilation error
var _ SchemaOption = SchemaOptionFunc(nil)

// SchemaOptionFunc implements the SchemaOption interface.
type SchemaOptionFunc func(*Schema)

func (f SchemaOptionFunc) Apply(s *Schema) {
	f(s)
}

// WithNamespace overrides the namespace stamped on serialized documents.
func WithNamespace(namespace string) SchemaOption {
	return SchemaOptionFunc(func(s *Schema) {
		s.namespace = namespace
	})
}

// WithRule registers a downgrade rule on the schema.
func WithRule(rule DowngradeRule) SchemaOption {
	return SchemaOptionFunc(func(s *Schema) {
		s.rules[rule.To] = &rule
	})
}

// WithMethod adds an entry to the schema's method table.
func WithMethod(spec MethodSpec) SchemaOption {
	return SchemaOptionFunc(func(s *Schema) {
		s.methods[spec.Name] = &spec
	})
}

// WithIndirectOnly marks the type as too side-effectful to operate on
// inline: every method call on its instances routes through the indirection
// backend, and instances carrying a locator always serialize as a stub
// envelope.
func WithIndirectOnly() SchemaOption {
	return SchemaOptionFunc(func(s *Schema) {
		s.indirectOnly = true
	})
}

// WithIndirectionThreshold sets the size, in estimated wire bytes, above
// which an instance's data is too large to inline: serializing such an
// instance emits a locator stub envelope the receiver resolves through the
// indirection backend. Zero, the default, always inlines.
func WithIndirectionThreshold(bytes int) SchemaOption {
	return SchemaOptionFunc(func(s *Schema) {
		s.threshold = bytes
	})
}

// NewSchema declares an object type at a version. The field map is captured
// as-is and must not be mutated afterwards; instances share it.
func NewSchema(name, ver string, flds map[string]*fields.Field, opts ...SchemaOption) (*Schema, error) {
	if name == "" {
		return nil, errors.NewInvalidDocumentError("schema requires a type name")
	}
	parsed, err := version.Parse(ver)
	if err != nil {
		return nil, err
	}
	s := &Schema{
		name:      name,
		version:   parsed,
		namespace: DefaultNamespace,
		fields:    flds,
		rules:     map[string]*DowngradeRule{},
		methods:   map[string]*MethodSpec{},
	}
	for _, opt := range opts {
		opt.Apply(s)
	}
	if s.threshold < 0 {
		return nil, errors.NewInvalidDocumentError(
			fmt.Sprintf("%s indirection threshold must not be negative", name))
	}
	for to, rule := range s.rules {
		target, err := version.Parse(to)
		if err != nil {
			return nil, err
		}
		if !target.Older(parsed) {
			return nil, fmt.Errorf("%w: %s rule target %s is not older than %s",
				errors.ErrIncompatibleObjectVersion, name, to, parsed)
		}
		if rule.Transform == nil {
			return nil, fmt.Errorf("%w: %s rule to %s has no transform",
				errors.ErrIncompatibleObjectVersion, name, to)
		}
		for child, childVer := range rule.Children {
			if _, err := version.Parse(childVer); err != nil {
				return nil, fmt.Errorf("%s manifest entry %s: %w", name, child, err)
			}
		}
	}
	s.names = make([]string, 0, len(flds))
	for fname := range flds {
		s.names = append(s.names, fname)
	}
	sort.Strings(s.names)
	return s, nil
}

// MustSchema is NewSchema for declarations, panicking on invalid input.
func MustSchema(name, ver string, flds map[string]*fields.Field, opts ...SchemaOption) *Schema {
	s, err := NewSchema(name, ver, flds, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the stable type name, independent of version.
func (s *Schema) Name() string {
	return s.name
}

// Version returns the declared "major.minor" version string.
func (s *Schema) Version() string {
	return s.version.String()
}

// Namespace returns the namespace stamped on serialized documents.
func (s *Schema) Namespace() string {
	return s.namespace
}

// Field returns the named field descriptor.
func (s *Schema) Field(name string) (*fields.Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// FieldNames returns the declared field names in sorted order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Method returns the named method table entry.
func (s *Schema) Method(name string) (*MethodSpec, bool) {
	m, ok := s.methods[name]
	return m, ok
}

// Rule returns the downgrade rule targeting the given version, when one is
// registered.
func (s *Schema) Rule(to string) (*DowngradeRule, bool) {
	r, ok := s.rules[to]
	return r, ok
}
