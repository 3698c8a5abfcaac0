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

	"github.com/objverse/objverse/errors"
	"github.com/objverse/objverse/fields"
	"github.com/objverse/objverse/version"
)

// Downgrade rewrites a serialized document so a receiver that only knows the
// target version can consume it. The walk goes newest-to-oldest over the
// type's registered version sequence: a hop across a major boundary requires
// a downgrade rule on the newer schema, a hop within a major is an identity
// copy unless a rule is explicitly registered for it. Fields the target
// version does not declare are left on the wire; receivers tolerate them as
// unknown extras.
//
// The rewrite is all-or-nothing: it operates on copies and on any failure
// returns the single terminal error with the input untouched. Downgrading to
// the document's own version is the identity.
func (r *Registry) Downgrade(doc Document, target string) (Document, error) {
	name, native, err := header(doc)
	if err != nil {
		return nil, err
	}
	targetVersion, err := version.Parse(target)
	if err != nil {
		return nil, err
	}
	if targetVersion.Equal(native) {
		return doc, nil
	}
	if targetVersion.Newer(native) {
		return nil, errors.NewIncompatibleObjectVersionError(name, native.String(), targetVersion.String())
	}

	entry, ok := r.entries.Get(name)
	if !ok {
		return nil, errors.NewUnknownObjectError(name)
	}
	if _, ok := entry.versions[native.String()]; !ok {
		return nil, errors.NewUnknownVersionError(name, native.String())
	}
	targetSchema, ok := entry.versions[targetVersion.String()]
	if !ok {
		// nothing registered to land on
		return nil, errors.NewIncompatibleObjectVersionError(name, native.String(), targetVersion.String())
	}

	rawData, err := documentData(doc)
	if err != nil {
		return nil, err
	}
	data := deepCopyMap(rawData)
	manifest := map[string]string{}
	changed := append([]string(nil), documentChanges(doc)...)

	chain := versionChain(entry.ordered, native, targetVersion)
	for i := 0; i < len(chain)-1; i++ {
		current, next := chain[i], chain[i+1]
		currentSchema := entry.versions[current.String()]
		rule, hasRule := currentSchema.rules[next.String()]
		switch {
		case hasRule:
			data, err = rule.Transform(data)
			if err != nil {
				return nil, fmt.Errorf("downgrading %s from %s to %s: %w", name, current, next, err)
			}
			if data == nil {
				data = map[string]any{}
			}
			for j, fname := range changed {
				if older, renamed := rule.Renames[fname]; renamed {
					changed[j] = older
				}
			}
			for child, childVersion := range rule.Children {
				manifest[child] = childVersion
			}
		case current.SameMajor(next):
			// minor bumps are additive-only by convention
		default:
			return nil, errors.NewIncompatibleObjectVersionError(name, native.String(), targetVersion.String())
		}
	}

	if len(manifest) > 0 {
		if err := r.downgradeChildren(targetSchema, data, manifest); err != nil {
			return nil, err
		}
	}

	changes := make([]string, 0)
	for _, fname := range changed {
		if _, survived := data[fname]; survived {
			changes = append(changes, fname)
		}
	}

	out := Document{
		KeyType:      name,
		KeyVersion:   targetVersion.String(),
		KeyChanges:   changes,
		KeyData:      data,
		KeyNamespace: targetSchema.namespace,
	}
	if ns, ok := doc[KeyNamespace]; ok {
		out[KeyNamespace] = ns
	}
	if locator, ok := doc[KeyLocator]; ok {
		out[KeyLocator] = locator
	}
	return out, nil
}

// downgradeChildren recurses into the nested object documents embedded in
// data, downgrading each to the version the parent's manifest requires at
// the target. Types absent from the manifest travel untouched.
func (r *Registry) downgradeChildren(targetSchema *Schema, data map[string]any, manifest map[string]string) error {
	rewrite := func(child map[string]any) (map[string]any, error) {
		childName, _, err := header(child)
		if err != nil {
			return nil, err
		}
		want, pinned := manifest[childName]
		if !pinned {
			return child, nil
		}
		return r.Downgrade(child, want)
	}
	for fname, f := range targetSchema.fields {
		value, present := data[fname]
		if !present || value == nil {
			continue
		}
		rewritten, err := fields.RewriteDocuments(f.Type(), value, rewrite)
		if err != nil {
			return err
		}
		data[fname] = rewritten
	}
	return nil
}

// versionChain returns the registered versions from native down to target,
// inclusive on both ends, newest first. ordered is the type's ascending
// registered version sequence.
func versionChain(ordered []version.Version, native, target version.Version) []version.Version {
	chain := make([]version.Version, 0, len(ordered))
	for i := len(ordered) - 1; i >= 0; i-- {
		v := ordered[i]
		if v.Newer(native) || v.Older(target) {
			continue
		}
		chain = append(chain, v)
	}
	return chain
}
