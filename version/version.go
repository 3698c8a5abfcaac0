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

// Package version implements the "major.minor" version values carried by
// versioned objects on the wire.
//
// A major bump marks a breaking shape change that requires an explicit
// downgrade rule; a minor bump is additive and backward-compatible by
// convention. Ordering follows semantic versioning restricted to the two
// components this model uses.
package version

import (
	"fmt"

	semver "github.com/blang/semver/v4"

	"github.com/objverse/objverse/errors"
)

// Version is a parsed "major.minor" object version. The zero value is "0.0"
// and is never produced by Parse for a valid wire version, so it can serve
// as a "no version" sentinel.
type Version struct {
	Major uint64
	Minor uint64
}

// Parse parses a "major.minor" string. A patch component is tolerated on
// input for robustness against hand-written versions but is never emitted.
func Parse(s string) (Version, error) {
	sv, err := semver.ParseTolerant(s)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", errors.ErrInvalidVersion, s)
	}
	if len(sv.Pre) > 0 || len(sv.Build) > 0 {
		return Version{}, fmt.Errorf("%w: %q carries pre-release or build metadata", errors.ErrInvalidVersion, s)
	}
	return Version{Major: sv.Major, Minor: sv.Minor}, nil
}

// MustParse parses a "major.minor" string and panics on failure. It is meant
// for version literals in schema declarations, where a malformed version is
// a programming error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the version exactly as it appears on the wire.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0 or 1 when v is respectively older than, equal to or
// newer than other.
func (v Version) Compare(other Version) int {
	a := semver.Version{Major: v.Major, Minor: v.Minor}
	b := semver.Version{Major: other.Major, Minor: other.Minor}
	return a.Compare(b)
}

// Equal reports whether both components match.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// Older reports whether v precedes other.
func (v Version) Older(other Version) bool {
	return v.Compare(other) < 0
}

// Newer reports whether v succeeds other.
func (v Version) Newer(other Version) bool {
	return v.Compare(other) > 0
}

// SameMajor reports whether a hop between the two versions is additive-only,
// meaning no downgrade rule is required to cross it.
func (v Version) SameMajor(other Version) bool {
	return v.Major == other.Major
}
