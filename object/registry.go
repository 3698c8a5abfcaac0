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
	"sync"
	"sync/atomic"

	"github.com/objverse/objverse/errors"
	"github.com/objverse/objverse/fields"
	"github.com/objverse/objverse/internal/xsync"
	"github.com/objverse/objverse/log"
	"github.com/objverse/objverse/version"
)

// Registry resolves (object type, version) pairs to their schemas. Multiple
// versions of the same type may be registered simultaneously, which rolling
// upgrades rely on.
//
// Registration is expected to complete during process startup; reads are
// lock-free with respect to each other afterwards. Seal makes the
// startup-then-freeze discipline explicit: once sealed, further registration
// fails rather than changing the source of truth underneath readers.
type Registry struct {
	mu      sync.Mutex
	entries *xsync.Map[string, *registryEntry]
	sealed  atomic.Bool
	backend Indirection
	logger  log.Logger
}

// registryEntry is the immutable per-type view stored in the entries map.
// Registration replaces the whole entry instead of mutating it in place.
type registryEntry struct {
	versions map[string]*Schema
	ordered  []version.Version
}

// RegistryOption is the interface that applies a configuration option to a
// Registry.
type RegistryOption interface {
	// Apply sets the RegistryOption value of a Registry.
	Apply(*Registry)
}

// enforce compilation error
var _ RegistryOption = RegistryOptionFunc(nil)

// RegistryOptionFunc implements the RegistryOption interface.
type RegistryOptionFunc func(*Registry)

func (f RegistryOptionFunc) Apply(r *Registry) {
	f(r)
}

// WithLogger sets the logger registration events are reported through.
func WithLogger(logger log.Logger) RegistryOption {
	return RegistryOptionFunc(func(r *Registry) {
		r.logger = logger
	})
}

// WithIndirection sets the backend remotable method calls and stub fetches
// route through.
func WithIndirection(backend Indirection) RegistryOption {
	return RegistryOptionFunc(func(r *Registry) {
		r.backend = backend
	})
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: xsync.NewMap[string, *registryEntry](),
		logger:  log.DiscardLogger,
	}
	for _, opt := range opts {
		opt.Apply(r)
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// enforce compilation error
var _ fields.Resolver = (*Registry)(nil)

// Register adds a schema to the registry. Registering the identical schema
// for an already-registered (type, version) pair is a no-op; registering a
// different schema for that pair fails. Registration binds the registry into
// the schema's object-bearing fields so nested documents can be resolved.
func (r *Registry) Register(s *Schema) error {
	if r.sealed.Load() {
		return fmt.Errorf("%w: cannot register %s at %s", errors.ErrRegistrySealed, s.name, s.Version())
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	verString := s.Version()
	existing, ok := r.entries.Get(s.name)
	if ok {
		if registered, found := existing.versions[verString]; found {
			if registered == s {
				return nil
			}
			return errors.NewDuplicateRegistrationError(s.name, verString)
		}
	}

	next := &registryEntry{versions: map[string]*Schema{}}
	if ok {
		for v, schema := range existing.versions {
			next.versions[v] = schema
		}
	}
	next.versions[verString] = s
	next.ordered = make([]version.Version, 0, len(next.versions))
	for _, schema := range next.versions {
		next.ordered = append(next.ordered, schema.version)
	}
	sort.Slice(next.ordered, func(i, j int) bool {
		return next.ordered[i].Older(next.ordered[j])
	})

	s.registry = r
	for _, f := range s.fields {
		fields.BindResolver(f.Type(), r)
	}

	r.entries.Set(s.name, next)
	r.logger.Debugf("registered object type %s at version %s", s.name, verString)
	return nil
}

// Seal freezes the registry. Call it after startup registration completes
// and before serving concurrent traffic.
func (r *Registry) Seal() {
	r.sealed.Store(true)
	r.logger.Debugf("registry sealed with %d object types", r.entries.Len())
}

// Sealed reports whether the registry has been sealed.
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Lookup resolves a (type, version) pair. A type never seen and a version
// never seen for a known type fail distinctly.
func (r *Registry) Lookup(name, ver string) (*Schema, error) {
	entry, ok := r.entries.Get(name)
	if !ok {
		return nil, errors.NewUnknownObjectError(name)
	}
	parsed, err := version.Parse(ver)
	if err != nil {
		return nil, err
	}
	s, ok := entry.versions[parsed.String()]
	if !ok {
		return nil, errors.NewUnknownVersionError(name, parsed.String())
	}
	return s, nil
}

// LatestVersion returns the newest registered version of a type.
func (r *Registry) LatestVersion(name string) (string, error) {
	entry, ok := r.entries.Get(name)
	if !ok {
		return "", errors.NewUnknownObjectError(name)
	}
	return entry.ordered[len(entry.ordered)-1].String(), nil
}

// Versions returns the registered versions of a type in ascending order.
func (r *Registry) Versions(name string) ([]string, error) {
	entry, ok := r.entries.Get(name)
	if !ok {
		return nil, errors.NewUnknownObjectError(name)
	}
	out := make([]string, len(entry.ordered))
	for i, v := range entry.ordered {
		out[i] = v.String()
	}
	return out, nil
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	names := r.entries.Keys()
	sort.Strings(names)
	return names
}

// Indirection returns the configured indirection backend, when any.
func (r *Registry) Indirection() Indirection {
	return r.backend
}

// Deserialize reconstructs an object from its primitive tree. The document's
// exact version must be registered: receivers that only know an older
// version must be sent an explicitly downgraded tree, never coerce on
// ingestion. Unknown extra keys inside object_data are tolerated and
// ignored; a missing or unparseable envelope header is not. A stub envelope
// yields an unhydrated stub whose data is fetched on Hydrate.
func (r *Registry) Deserialize(doc Document) (*Object, error) {
	name, ver, err := header(doc)
	if err != nil {
		return nil, err
	}
	schema, err := r.Lookup(name, ver.String())
	if err != nil {
		return nil, err
	}
	if rawLocator, ok := doc[KeyLocator]; ok {
		locator, ok := rawLocator.(string)
		if !ok || locator == "" {
			return nil, errors.NewInvalidDocumentError(KeyLocator + " must be a non-empty string")
		}
		// stub envelope: the data lives behind the indirection backend
		return NewStub(schema, locator), nil
	}
	data, err := documentData(doc)
	if err != nil {
		return nil, err
	}

	obj := New(schema)
	for fname, prim := range data {
		f, ok := schema.fields[fname]
		if !ok {
			// unknown-extra from a newer minor version
			continue
		}
		natural, err := f.FromPrimitive(fname, prim)
		if err != nil {
			return nil, err
		}
		obj.values[fname] = natural
	}
	for _, fname := range documentChanges(doc) {
		if _, ok := schema.fields[fname]; ok {
			obj.changed.Add(fname)
		}
	}
	return obj, nil
}

// ResolveDocument implements fields.Resolver so nested object documents can
// be rebuilt during field deserialization.
func (r *Registry) ResolveDocument(doc map[string]any) (fields.ObjectHandle, error) {
	obj, err := r.Deserialize(doc)
	if err != nil {
		return nil, err
	}
	return obj, nil
}
