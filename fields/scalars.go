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

package fields

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/objverse/objverse/errors"
)

type integerType struct{}

// Integer returns the type holding 64-bit signed integers. Coercion widens
// safely from all Go integer kinds, integral floats and int-like strings.
func Integer() Type {
	return integerType{}
}

func (integerType) Coerce(attr string, value any) (any, error) {
	if n, ok := toInt64(value); ok {
		return n, nil
	}
	return nil, errors.NewCoercionError(attr, value, "an integer")
}

func (t integerType) ToPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (t integerType) FromPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (integerType) Equal(a, b any) bool {
	return a == b
}

func (integerType) Tag() string {
	return "Integer"
}

func (integerType) Stringify(value any) string {
	return fmt.Sprint(value)
}

type floatType struct{}

// Float returns the type holding 64-bit floating point values.
func Float() Type {
	return floatType{}
}

func (floatType) Coerce(attr string, value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		}
	default:
		if n, ok := toInt64(value); ok {
			return float64(n), nil
		}
	}
	return nil, errors.NewCoercionError(attr, value, "a float")
}

func (t floatType) ToPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (t floatType) FromPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (floatType) Equal(a, b any) bool {
	return a == b
}

func (floatType) Tag() string {
	return "Float"
}

func (floatType) Stringify(value any) string {
	return fmt.Sprint(value)
}

type booleanType struct{}

// Boolean returns the type holding booleans. String forms accepted by
// strconv.ParseBool are widened.
func Boolean() Type {
	return booleanType{}
}

func (booleanType) Coerce(attr string, value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
	}
	return nil, errors.NewCoercionError(attr, value, "a boolean")
}

func (t booleanType) ToPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (t booleanType) FromPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (booleanType) Equal(a, b any) bool {
	return a == b
}

func (booleanType) Tag() string {
	return "Boolean"
}

func (booleanType) Stringify(value any) string {
	return fmt.Sprint(value)
}

type stringType struct{}

// String returns the type holding text. Numbers and timestamps are widened
// to their text rendering; arbitrary values are rejected.
func String() Type {
	return stringType{}
}

func (stringType) Coerce(attr string, value any) (any, error) {
	if s, ok := toString(value); ok {
		return s, nil
	}
	return nil, errors.NewCoercionError(attr, value, "a string")
}

func (t stringType) ToPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (t stringType) FromPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (stringType) Equal(a, b any) bool {
	return a == b
}

func (stringType) Tag() string {
	return "String"
}

func (stringType) Stringify(value any) string {
	return fmt.Sprintf("'%v'", value)
}

type enumType struct {
	values mapset.Set[string]
	tag    string
}

// Enum returns a string type restricted to the given set of values. It
// panics when no values are declared, since an empty enum is a schema
// programming error.
func Enum(values ...string) Type {
	if len(values) == 0 {
		panic("fields: an enum requires at least one valid value")
	}
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	return enumType{
		values: mapset.NewSet(values...),
		tag:    fmt.Sprintf("Enum[%s]", strings.Join(sorted, ",")),
	}
}

func (t enumType) Coerce(attr string, value any) (any, error) {
	s, ok := toString(value)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a string")
	}
	if !t.values.Contains(s) {
		return nil, errors.NewValueNotAllowedError(attr, s)
	}
	return s, nil
}

func (t enumType) ToPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (t enumType) FromPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (enumType) Equal(a, b any) bool {
	return a == b
}

func (t enumType) Tag() string {
	return t.tag
}

func (enumType) Stringify(value any) string {
	return fmt.Sprintf("'%v'", value)
}

type uuidType struct{}

// UUID returns the type holding UUIDs in canonical string form. Assignment
// validates the value, unlike free-form strings.
func UUID() Type {
	return uuidType{}
}

func (uuidType) Coerce(attr string, value any) (any, error) {
	switch v := value.(type) {
	case uuid.UUID:
		return v.String(), nil
	case string:
		parsed, err := uuid.Parse(v)
		if err == nil {
			return parsed.String(), nil
		}
	}
	return nil, errors.NewCoercionError(attr, value, "a UUID")
}

func (t uuidType) ToPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (t uuidType) FromPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (uuidType) Equal(a, b any) bool {
	return a == b
}

func (uuidType) Tag() string {
	return "UUID"
}

func (uuidType) Stringify(value any) string {
	return fmt.Sprint(value)
}

type dateTimeType struct{}

// DateTime returns the type holding timestamps. Values are normalized to
// UTC on assignment and travel as RFC 3339 strings.
func DateTime() Type {
	return dateTimeType{}
}

func (dateTimeType) Coerce(attr string, value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return ts.UTC(), nil
		}
	}
	return nil, errors.NewCoercionError(attr, value, "a timestamp")
}

func (dateTimeType) ToPrimitive(attr string, value any) (any, error) {
	ts, ok := value.(time.Time)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a timestamp")
	}
	return ts.UTC().Format(time.RFC3339Nano), nil
}

func (t dateTimeType) FromPrimitive(attr string, value any) (any, error) {
	return t.Coerce(attr, value)
}

func (dateTimeType) Equal(a, b any) bool {
	ta, ok := a.(time.Time)
	if !ok {
		return false
	}
	tb, ok := b.(time.Time)
	if !ok {
		return false
	}
	return ta.Equal(tb)
}

func (dateTimeType) Tag() string {
	return "DateTime"
}

func (dateTimeType) Stringify(value any) string {
	if ts, ok := value.(time.Time); ok {
		return ts.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprint(value)
}

// toInt64 widens any Go integer kind, integral float or int-like string into
// an int64, reporting whether the conversion was lossless.
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), uint64(v) <= math.MaxInt64
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), v <= math.MaxInt64
	case float32:
		return toInt64(float64(v))
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt64 && v <= math.MaxInt64 {
			return int64(v), true
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// toString widens strings, numbers and timestamps into text.
func toString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case float32, float64:
		return fmt.Sprint(v), true
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano), true
	}
	if n, ok := toInt64(value); ok {
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}
