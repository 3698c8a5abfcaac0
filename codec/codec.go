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

// Package codec carries serialized object documents across process
// boundaries. A codec is a pure bytes transform: it neither inspects the
// envelope nor consults the registry, so any primitive tree the object layer
// produces survives a round-trip bit-for-bit at the primitive level.
//
// Integer handling is the one place codecs must be careful: a generic
// decoder that rehydrates every number as float64 silently corrupts large
// integers. Both implementations normalize decoded numbers so integral
// values come back as int64.
package codec

import (
	"github.com/objverse/objverse/object"
)

// Codec encodes and decodes object documents. Implementations are stateless
// and safe for concurrent use.
type Codec interface {
	// Marshal encodes a serialized document into bytes.
	Marshal(doc object.Document) ([]byte, error)

	// Unmarshal decodes bytes produced by Marshal back into a document.
	Unmarshal(data []byte) (object.Document, error)
}
