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

package codec

import (
	"fmt"
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/objverse/objverse/errors"
	"github.com/objverse/objverse/object"
)

// CBOR is the compact binary document codec. Documents are string-keyed all
// the way down, so decoding forces map[string]any as the default map type
// and rejects non-string keys instead of producing map[any]any trees the
// object layer cannot consume.
type CBOR struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

// enforce compilation error
var _ Codec = (*CBOR)(nil)

// NewCBOR creates a CBOR codec.
func NewCBOR() (*CBOR, error) {
	encMode, err := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("building CBOR encoder: %w", err)
	}
	decMode, err := cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any{}),
		MaxNestedLevels: 64,
		IndefLength:     cbor.IndefLengthForbidden,
		UTF8:            cbor.UTF8RejectInvalid,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("building CBOR decoder: %w", err)
	}
	return &CBOR{encMode: encMode, decMode: decMode}, nil
}

// MustCBOR is NewCBOR panicking on failure, for package-level codec values.
func MustCBOR() *CBOR {
	c, err := NewCBOR()
	if err != nil {
		panic(err)
	}
	return c
}

// Marshal implements Codec.
func (c *CBOR) Marshal(doc object.Document) ([]byte, error) {
	data, err := c.encMode.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document to CBOR: %w", err)
	}
	return data, nil
}

// Unmarshal implements Codec.
func (c *CBOR) Unmarshal(data []byte) (object.Document, error) {
	var raw map[string]any
	if err := c.decMode.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewInvalidDocumentError(err.Error())
	}
	return normalizeCBORMap(raw), nil
}

// normalizeCBORMap rewrites decoded uint64 values into int64 so both codecs
// hand the object layer the same integer kind.
func normalizeCBORMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeCBORValue(v)
	}
	return out
}

func normalizeCBORValue(v any) any {
	switch x := v.(type) {
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
		return x
	case map[string]any:
		return normalizeCBORMap(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeCBORValue(item)
		}
		return out
	default:
		return v
	}
}
