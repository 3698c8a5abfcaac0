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
	"strings"

	"github.com/objverse/objverse/hash"
)

// Fingerprint digests the declared surface of a registered schema: every
// field with its type tag, nullability and mutability, plus every remotable
// method signature. The digest is stable across processes, so recording it
// and comparing later detects schema drift that was not accompanied by a
// version bump.
//
// Renaming a field, changing its type or flags, or touching a remotable
// signature all change the digest. Local-only method bodies do not.
func (r *Registry) Fingerprint(name, ver string) (string, error) {
	schema, err := r.Lookup(name, ver)
	if err != nil {
		return "", err
	}
	return schema.fingerprint(), nil
}

func (s *Schema) fingerprint() string {
	var b strings.Builder
	for _, name := range s.names {
		f := s.fields[name]
		fmt.Fprintf(&b, "%s:%s:nullable=%t:readonly=%t;",
			name, f.Type().Tag(), f.Nullable(), f.ReadOnly())
	}
	methods := make([]string, 0, len(s.methods))
	for name, spec := range s.methods {
		if spec.Remotable {
			methods = append(methods, fmt.Sprintf("method:%s(%s);", name, spec.Signature))
		}
	}
	sort.Strings(methods)
	for _, m := range methods {
		b.WriteString(m)
	}
	return hash.DefaultHasher().HexCode([]byte(b.String()))
}
