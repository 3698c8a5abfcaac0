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
	"github.com/objverse/objverse/errors"
	"github.com/objverse/objverse/version"
)

// Document is the primitive tree an object serializes to. Its envelope keys
// are a compatibility-relevant wire format and must not change.
type Document = map[string]any

// Envelope keys of the serialized form.
const (
	// KeyType carries the stable type name.
	KeyType = "object_type"
	// KeyVersion carries the "major.minor" version string.
	KeyVersion = "object_version"
	// KeyChanges carries the names of the fields tracked as changed.
	KeyChanges = "object_changes"
	// KeyData carries the field name to primitive value mapping.
	KeyData = "object_data"
	// KeyNamespace carries the project namespace the type belongs to.
	KeyNamespace = "object_namespace"
	// KeyLocator marks a stub envelope: the document carries a locator to
	// fetch the full data through the indirection backend instead of
	// inlining it.
	KeyLocator = "object_locator"
)

// DefaultNamespace is the namespace stamped on documents of schemas that do
// not declare their own.
const DefaultNamespace = "objverse"

// header extracts and validates the type and version headers of a document.
// A missing or unparseable header is always a hard failure; everything else
// in the document is tolerated.
func header(doc Document) (string, version.Version, error) {
	rawName, ok := doc[KeyType]
	if !ok {
		return "", version.Version{}, errors.NewInvalidDocumentError("missing " + KeyType)
	}
	name, ok := rawName.(string)
	if !ok || name == "" {
		return "", version.Version{}, errors.NewInvalidDocumentError(KeyType + " must be a non-empty string")
	}
	rawVersion, ok := doc[KeyVersion]
	if !ok {
		return "", version.Version{}, errors.NewInvalidDocumentError("missing " + KeyVersion)
	}
	verString, ok := rawVersion.(string)
	if !ok {
		return "", version.Version{}, errors.NewInvalidDocumentError(KeyVersion + " must be a string")
	}
	ver, err := version.Parse(verString)
	if err != nil {
		return "", version.Version{}, err
	}
	return name, ver, nil
}

// documentData returns the object_data mapping of a document, treating a
// missing mapping as empty.
func documentData(doc Document) (map[string]any, error) {
	raw, ok := doc[KeyData]
	if !ok || raw == nil {
		return map[string]any{}, nil
	}
	data, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.NewInvalidDocumentError(KeyData + " must be a mapping")
	}
	return data, nil
}

// documentChanges returns the object_changes listing of a document. Both
// []string and []any forms are accepted since generic codecs produce the
// latter.
func documentChanges(doc Document) []string {
	switch raw := doc[KeyChanges].(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// primitiveSize estimates the wire footprint of a primitive value in bytes.
// The estimate is codec-independent: string and byte payloads count their
// length, every other scalar counts a fixed word. It only has to be
// monotonic in payload size, since it feeds the indirection threshold.
func primitiveSize(v any) int {
	switch x := v.(type) {
	case string:
		return len(x)
	case []byte:
		return len(x)
	case map[string]any:
		size := 0
		for k, item := range x {
			size += len(k) + primitiveSize(item)
		}
		return size
	case []any:
		size := 0
		for _, item := range x {
			size += primitiveSize(item)
		}
		return size
	default:
		return 8
	}
}

// deepCopyMap copies a primitive mapping so transformations never alias
// their input.
func deepCopyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopySlice(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return deepCopyMap(x)
	case []any:
		return deepCopySlice(x)
	default:
		// primitive scalars are immutable
		return v
	}
}
