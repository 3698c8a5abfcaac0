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

// Package hash provides the hashing seam used by the object fingerprint.
package hash

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hasher defines the digest generator interface.
type Hasher interface {
	// HashCode is responsible for generating an unsigned, 64-bit hash of the provided byte slice
	HashCode(key []byte) uint64
	// HexCode renders the hash of the provided byte slice as a fixed-width hex string
	HexCode(key []byte) string
}

type xhasher struct{}

var _ Hasher = xhasher{}

// HashCode implementation
func (x xhasher) HashCode(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// HexCode implementation
func (x xhasher) HexCode(key []byte) string {
	return fmt.Sprintf("%016x", x.HashCode(key))
}

// DefaultHasher returns the default hasher
func DefaultHasher() Hasher {
	return xhasher{}
}
