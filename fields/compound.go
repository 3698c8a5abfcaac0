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
	"reflect"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/objverse/objverse/errors"
)

type listType struct {
	elem Type
}

// List returns the type holding an ordered sequence of elem values. Any Go
// slice or array is accepted on assignment; the natural form is []any with
// every element coerced.
func List(elem Type) Type {
	return &listType{elem: elem}
}

func (t *listType) Coerce(attr string, value any) (any, error) {
	items, ok := toSlice(value)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a list")
	}
	out := make([]any, len(items))
	for i, item := range items {
		coerced, err := t.elem.Coerce(fmt.Sprintf("%s[%d]", attr, i), item)
		if err != nil {
			return nil, err
		}
		out[i] = coerced
	}
	return out, nil
}

func (t *listType) ToPrimitive(attr string, value any) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a list")
	}
	out := make([]any, len(items))
	for i, item := range items {
		prim, err := t.elem.ToPrimitive(fmt.Sprintf("%s[%d]", attr, i), item)
		if err != nil {
			return nil, err
		}
		out[i] = prim
	}
	return out, nil
}

func (t *listType) FromPrimitive(attr string, value any) (any, error) {
	items, ok := toSlice(value)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a list")
	}
	out := make([]any, len(items))
	for i, item := range items {
		natural, err := t.elem.FromPrimitive(fmt.Sprintf("%s[%d]", attr, i), item)
		if err != nil {
			return nil, err
		}
		out[i] = natural
	}
	return out, nil
}

func (t *listType) Equal(a, b any) bool {
	la, ok := a.([]any)
	if !ok {
		return false
	}
	lb, ok := b.([]any)
	if !ok {
		return false
	}
	if len(la) != len(lb) {
		return false
	}
	for i := range la {
		if !t.elem.Equal(la[i], lb[i]) {
			return false
		}
	}
	return true
}

func (t *listType) Tag() string {
	return fmt.Sprintf("List<%s>", t.elem.Tag())
}

func (t *listType) Stringify(value any) string {
	items, ok := value.([]any)
	if !ok {
		return fmt.Sprint(value)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = t.elem.Stringify(item)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ","))
}

func (t *listType) bindResolver(r Resolver) {
	BindResolver(t.elem, r)
}

func (t *listType) rewriteDocuments(value any, fn RewriteFunc) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return value, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		rewritten, err := rewriteDocuments(t.elem, item, fn)
		if err != nil {
			return nil, err
		}
		out[i] = rewritten
	}
	return out, nil
}

type setType struct {
	elem Type
}

// Set returns the type holding an unordered collection of distinct elem
// values. The natural form is a mapset set; serialization emits a
// deterministically sorted slice so identical sets always produce identical
// wire bytes.
func Set(elem Type) Type {
	return &setType{elem: elem}
}

func (t *setType) Coerce(attr string, value any) (any, error) {
	var items []any
	switch v := value.(type) {
	case mapset.Set[any]:
		items = v.ToSlice()
	default:
		slice, ok := toSlice(value)
		if !ok {
			return nil, errors.NewCoercionError(attr, value, "a set")
		}
		items = slice
	}
	out := mapset.NewSet[any]()
	for _, item := range items {
		coerced, err := t.elem.Coerce(fmt.Sprintf("%s[%v]", attr, item), item)
		if err != nil {
			return nil, err
		}
		out.Add(coerced)
	}
	return out, nil
}

func (t *setType) ToPrimitive(attr string, value any) (any, error) {
	set, ok := value.(mapset.Set[any])
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a set")
	}
	out := make([]any, 0, set.Cardinality())
	for _, item := range set.ToSlice() {
		prim, err := t.elem.ToPrimitive(attr, item)
		if err != nil {
			return nil, err
		}
		out = append(out, prim)
	}
	sort.Slice(out, func(i, j int) bool {
		return fmt.Sprint(out[i]) < fmt.Sprint(out[j])
	})
	return out, nil
}

func (t *setType) FromPrimitive(attr string, value any) (any, error) {
	items, ok := toSlice(value)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a set")
	}
	out := mapset.NewSet[any]()
	for _, item := range items {
		natural, err := t.elem.FromPrimitive(attr, item)
		if err != nil {
			return nil, err
		}
		out.Add(natural)
	}
	return out, nil
}

func (t *setType) Equal(a, b any) bool {
	sa, ok := a.(mapset.Set[any])
	if !ok {
		return false
	}
	sb, ok := b.(mapset.Set[any])
	if !ok {
		return false
	}
	return sa.Equal(sb)
}

func (t *setType) Tag() string {
	return fmt.Sprintf("Set<%s>", t.elem.Tag())
}

func (t *setType) Stringify(value any) string {
	set, ok := value.(mapset.Set[any])
	if !ok {
		return fmt.Sprint(value)
	}
	parts := make([]string, 0, set.Cardinality())
	for _, item := range set.ToSlice() {
		parts = append(parts, t.elem.Stringify(item))
	}
	sort.Strings(parts)
	return fmt.Sprintf("set([%s])", strings.Join(parts, ","))
}

func (t *setType) bindResolver(r Resolver) {
	BindResolver(t.elem, r)
}

func (t *setType) rewriteDocuments(value any, fn RewriteFunc) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return value, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		rewritten, err := rewriteDocuments(t.elem, item, fn)
		if err != nil {
			return nil, err
		}
		out[i] = rewritten
	}
	return out, nil
}

type dictType struct {
	value Type
}

// Dict returns the type holding a string-keyed mapping of value entries.
func Dict(value Type) Type {
	return &dictType{value: value}
}

func (t *dictType) Coerce(attr string, value any) (any, error) {
	entries, ok := toStringMap(value)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a string-keyed map")
	}
	out := make(map[string]any, len(entries))
	for k, v := range entries {
		coerced, err := t.value.Coerce(fmt.Sprintf("%s[%q]", attr, k), v)
		if err != nil {
			return nil, err
		}
		out[k] = coerced
	}
	return out, nil
}

func (t *dictType) ToPrimitive(attr string, value any) (any, error) {
	entries, ok := value.(map[string]any)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a string-keyed map")
	}
	out := make(map[string]any, len(entries))
	for k, v := range entries {
		prim, err := t.value.ToPrimitive(fmt.Sprintf("%s[%q]", attr, k), v)
		if err != nil {
			return nil, err
		}
		out[k] = prim
	}
	return out, nil
}

func (t *dictType) FromPrimitive(attr string, value any) (any, error) {
	entries, ok := toStringMap(value)
	if !ok {
		return nil, errors.NewCoercionError(attr, value, "a string-keyed map")
	}
	out := make(map[string]any, len(entries))
	for k, v := range entries {
		natural, err := t.value.FromPrimitive(fmt.Sprintf("%s[%q]", attr, k), v)
		if err != nil {
			return nil, err
		}
		out[k] = natural
	}
	return out, nil
}

func (t *dictType) Equal(a, b any) bool {
	ma, ok := a.(map[string]any)
	if !ok {
		return false
	}
	mb, ok := b.(map[string]any)
	if !ok {
		return false
	}
	if len(ma) != len(mb) {
		return false
	}
	for k, va := range ma {
		vb, ok := mb[k]
		if !ok || !t.value.Equal(va, vb) {
			return false
		}
	}
	return true
}

func (t *dictType) Tag() string {
	return fmt.Sprintf("Dict<%s>", t.value.Tag())
}

func (t *dictType) Stringify(value any) string {
	entries, ok := value.(map[string]any)
	if !ok {
		return fmt.Sprint(value)
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, t.value.Stringify(entries[k]))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ","))
}

func (t *dictType) bindResolver(r Resolver) {
	BindResolver(t.value, r)
}

func (t *dictType) rewriteDocuments(value any, fn RewriteFunc) (any, error) {
	entries, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}
	out := make(map[string]any, len(entries))
	for k, v := range entries {
		rewritten, err := rewriteDocuments(t.value, v, fn)
		if err != nil {
			return nil, err
		}
		out[k] = rewritten
	}
	return out, nil
}

// toSlice normalizes any slice or array value into []any.
func toSlice(value any) ([]any, bool) {
	if items, ok := value.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toStringMap normalizes any string-keyed map value into map[string]any.
func toStringMap(value any) (map[string]any, bool) {
	if entries, ok := value.(map[string]any); ok {
		return entries, true
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	for _, key := range rv.MapKeys() {
		out[key.String()] = rv.MapIndex(key).Interface()
	}
	return out, true
}
