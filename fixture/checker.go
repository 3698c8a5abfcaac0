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

// Package fixture guards object declarations against silent drift. A test
// records the fingerprints of every registered type version once; the
// checker then fails whenever a field or remotable signature changes without
// the version being bumped alongside it.
package fixture

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/objverse/objverse/object"
)

// Checker computes and compares the type fingerprints of a registry.
type Checker struct {
	registry *object.Registry
}

// NewChecker creates a checker over the given registry.
func NewChecker(registry *object.Registry) *Checker {
	return &Checker{registry: registry}
}

// Fingerprints returns the digest of every registered type version, keyed by
// "Type@major.minor". Use it to produce the expectation map a test pins.
func (c *Checker) Fingerprints() (map[string]string, error) {
	out := map[string]string{}
	for _, name := range c.registry.Types() {
		versions, err := c.registry.Versions(name)
		if err != nil {
			return nil, err
		}
		for _, ver := range versions {
			digest, err := c.registry.Fingerprint(name, ver)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprintf("%s@%s", name, ver)] = digest
		}
	}
	return out, nil
}

// Check compares the registry against a pinned expectation map and returns
// every discrepancy at once: changed digests, registered versions the
// expectations never pinned, and pinned versions no longer registered. A nil
// return means the declarations are exactly as recorded.
func (c *Checker) Check(expected map[string]string) error {
	actual, err := c.Fingerprints()
	if err != nil {
		return err
	}

	var errs error
	keys := make([]string, 0, len(actual))
	for key := range actual {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		want, pinned := expected[key]
		if !pinned {
			errs = multierr.Append(errs, fmt.Errorf("%s is registered but has no pinned fingerprint", key))
			continue
		}
		if want != actual[key] {
			errs = multierr.Append(errs, fmt.Errorf(
				"%s drifted: fingerprint %s does not match pinned %s; bump the version or revert the change",
				key, actual[key], want))
		}
	}

	missing := make([]string, 0)
	for key := range expected {
		if _, ok := actual[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	for _, key := range missing {
		errs = multierr.Append(errs, fmt.Errorf("%s is pinned but no longer registered", key))
	}
	return errs
}
