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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objverse/objverse/errors"
	"github.com/objverse/objverse/fields"
)

func TestDowngrade(t *testing.T) {
	t.Run("With_rule_dropping_a_field_across_a_major_hop", func(t *testing.T) {
		registry, _, widget2 := widgetSchemas(t)
		obj := New(widget2)
		require.NoError(t, obj.Set("name", "x"))
		require.NoError(t, obj.Set("color", "blue"))

		doc, err := obj.SerializeAt("1.0")
		require.NoError(t, err)
		assert.Equal(t, "Widget", doc[KeyType])
		assert.Equal(t, "1.0", doc[KeyVersion])
		assert.Equal(t, map[string]any{"name": "x"}, doc[KeyData])
		assert.Equal(t, []string{"name"}, doc[KeyChanges])

		back, err := registry.Deserialize(doc)
		require.NoError(t, err)
		got, err := back.Get("name")
		require.NoError(t, err)
		assert.Equal(t, "x", got)
		assert.Equal(t, "1.0", back.ObjectVersion())

		// the newer reader sees the dropped field come back as its default
		fresh := New(widget2)
		require.NoError(t, fresh.Set("name", "x"))
		color, err := fresh.Get("color")
		require.NoError(t, err)
		assert.Equal(t, "red", color)
	})

	t.Run("With_native_target_as_identity", func(t *testing.T) {
		_, _, widget2 := widgetSchemas(t)
		obj := New(widget2)
		require.NoError(t, obj.Set("name", "x"))
		require.NoError(t, obj.Set("color", "blue"))

		native, err := obj.Serialize()
		require.NoError(t, err)
		at, err := obj.SerializeAt("2.0")
		require.NoError(t, err)
		assert.Equal(t, native, at)
	})

	t.Run("With_newer_target_rejected", func(t *testing.T) {
		_, widget1, _ := widgetSchemas(t)
		obj := New(widget1)
		require.NoError(t, obj.Set("name", "x"))

		_, err := obj.SerializeAt("2.0")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrIncompatibleObjectVersion)
	})

	t.Run("With_minor_hop_as_identity", func(t *testing.T) {
		gadget10 := MustSchema("Gadget", "1.0", map[string]*fields.Field{
			"count": fields.New(fields.Integer()),
		})
		gadget11 := MustSchema("Gadget", "1.1", map[string]*fields.Field{
			"count": fields.New(fields.Integer()),
			"label": fields.New(fields.String(), fields.AsNullable()),
		})
		registry := NewRegistry()
		require.NoError(t, registry.Register(gadget10))
		require.NoError(t, registry.Register(gadget11))

		obj := New(gadget11)
		require.NoError(t, obj.Set("count", 7))
		require.NoError(t, obj.Set("label", "spare"))

		doc, err := obj.SerializeAt("1.0")
		require.NoError(t, err)
		assert.Equal(t, "1.0", doc[KeyVersion])
		// additive fields stay on the wire as tolerated extras
		assert.Equal(t, map[string]any{"count": int64(7), "label": "spare"}, doc[KeyData])
		assert.ElementsMatch(t, []string{"count", "label"}, doc[KeyChanges])

		back, err := registry.Deserialize(doc)
		require.NoError(t, err)
		got, err := back.Get("count")
		require.NoError(t, err)
		assert.Equal(t, int64(7), got)
	})

	t.Run("With_missing_rule_across_a_major_hop", func(t *testing.T) {
		registry, _, _ := widgetSchemas(t)
		widget3 := MustSchema("Widget", "3.0", map[string]*fields.Field{
			"name":  fields.New(fields.String()),
			"color": fields.New(fields.Enum("red", "blue")),
		})
		require.NoError(t, registry.Register(widget3))

		obj := New(widget3)
		require.NoError(t, obj.Set("name", "x"))

		_, err := obj.SerializeAt("2.0")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrIncompatibleObjectVersion)

		var incompatible *errors.IncompatibleObjectVersionError
		require.ErrorAs(t, err, &incompatible)
		assert.Equal(t, "Widget", incompatible.ObjectType)
		assert.Equal(t, "3.0", incompatible.Native)
		assert.Equal(t, "2.0", incompatible.Target)

		// the failed attempt leaves the object untouched
		doc, err := obj.Serialize()
		require.NoError(t, err)
		assert.Equal(t, "3.0", doc[KeyVersion])
		assert.True(t, obj.WhatChanged().Contains("name"))
	})

	t.Run("With_unregistered_target_version", func(t *testing.T) {
		registry, _, widget2 := widgetSchemas(t)
		obj := New(widget2)
		require.NoError(t, obj.Set("name", "x"))
		doc, err := obj.Serialize()
		require.NoError(t, err)

		_, err = registry.Downgrade(doc, "1.5")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrIncompatibleObjectVersion)
	})

	t.Run("With_unknown_type_and_version", func(t *testing.T) {
		registry, _, _ := widgetSchemas(t)

		_, err := registry.Downgrade(Document{
			KeyType:    "Doohickey",
			KeyVersion: "2.0",
		}, "1.0")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnknownObject)

		_, err = registry.Downgrade(Document{
			KeyType:    "Widget",
			KeyVersion: "4.0",
		}, "1.0")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnknownVersion)
	})

	t.Run("With_input_document_never_mutated", func(t *testing.T) {
		registry, _, widget2 := widgetSchemas(t)
		obj := New(widget2)
		require.NoError(t, obj.Set("name", "x"))
		require.NoError(t, obj.Set("color", "blue"))
		doc, err := obj.Serialize()
		require.NoError(t, err)

		_, err = registry.Downgrade(doc, "1.0")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"name": "x", "color": "blue"}, doc[KeyData])
		assert.Equal(t, "2.0", doc[KeyVersion])
	})

	t.Run("With_transform_failure_surfaced_with_context", func(t *testing.T) {
		thing1 := MustSchema("Thing", "1.0", map[string]*fields.Field{
			"name": fields.New(fields.String()),
		})
		thing2 := MustSchema("Thing", "2.0", map[string]*fields.Field{
			"name": fields.New(fields.String()),
		}, WithRule(DowngradeRule{
			To: "1.0",
			Transform: func(data map[string]any) (map[string]any, error) {
				return nil, errors.NewInvalidDocumentError("name is not representable")
			},
		}))
		registry := NewRegistry()
		require.NoError(t, registry.Register(thing1))
		require.NoError(t, registry.Register(thing2))

		obj := New(thing2)
		require.NoError(t, obj.Set("name", "x"))

		_, err := obj.SerializeAt("1.0")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidDocument)
		assert.Contains(t, err.Error(), "downgrading Thing from 2.0 to 1.0")
	})

	t.Run("With_namespace_of_the_input_preserved", func(t *testing.T) {
		registry, _, widget2 := widgetSchemas(t)
		obj := New(widget2)
		require.NoError(t, obj.Set("name", "x"))
		doc, err := obj.Serialize()
		require.NoError(t, err)
		doc[KeyNamespace] = "acme"

		out, err := registry.Downgrade(doc, "1.0")
		require.NoError(t, err)
		assert.Equal(t, "acme", out[KeyNamespace])
	})
}

func TestDowngradeChain(t *testing.T) {
	// Sensor grows a calibration field at 1.5 and renames reading to value
	// at 2.0; the 2.0 rule undoes the rename on the way down.
	newSensorRegistry := func(t *testing.T) *Registry {
		t.Helper()
		sensor10 := MustSchema("Sensor", "1.0", map[string]*fields.Field{
			"reading": fields.New(fields.Float()),
		})
		sensor15 := MustSchema("Sensor", "1.5", map[string]*fields.Field{
			"reading":     fields.New(fields.Float()),
			"calibration": fields.New(fields.Float(), fields.AsNullable()),
		})
		sensor20 := MustSchema("Sensor", "2.0", map[string]*fields.Field{
			"value":       fields.New(fields.Float()),
			"calibration": fields.New(fields.Float(), fields.AsNullable()),
		}, WithRule(DowngradeRule{
			To: "1.5",
			Transform: func(data map[string]any) (map[string]any, error) {
				if v, ok := data["value"]; ok {
					data["reading"] = v
					delete(data, "value")
				}
				return data, nil
			},
			Renames: map[string]string{"value": "reading"},
		}))
		registry := NewRegistry()
		require.NoError(t, registry.Register(sensor10))
		require.NoError(t, registry.Register(sensor15))
		require.NoError(t, registry.Register(sensor20))
		return registry
	}

	t.Run("With_the_walk_crossing_every_registered_hop", func(t *testing.T) {
		registry := newSensorRegistry(t)
		schema, err := registry.Lookup("Sensor", "2.0")
		require.NoError(t, err)

		obj := New(schema)
		require.NoError(t, obj.Set("value", 3.5))
		require.NoError(t, obj.Set("calibration", 0.1))

		doc, err := obj.SerializeAt("1.0")
		require.NoError(t, err)
		assert.Equal(t, "1.0", doc[KeyVersion])
		assert.Equal(t, map[string]any{"reading": 3.5, "calibration": 0.1}, doc[KeyData])
	})

	t.Run("With_changed_markers_following_renamed_fields", func(t *testing.T) {
		registry := newSensorRegistry(t)
		schema, err := registry.Lookup("Sensor", "2.0")
		require.NoError(t, err)

		obj := New(schema)
		require.NoError(t, obj.Set("value", 3.5))

		doc, err := obj.SerializeAt("1.0")
		require.NoError(t, err)
		assert.Equal(t, []string{"reading"}, doc[KeyChanges])

		back, err := registry.Deserialize(doc)
		require.NoError(t, err)
		assert.True(t, back.WhatChanged().Contains("reading"))
	})

	t.Run("With_stepwise_downgrade_matching_the_direct_one", func(t *testing.T) {
		registry := newSensorRegistry(t)
		schema, err := registry.Lookup("Sensor", "2.0")
		require.NoError(t, err)

		obj := New(schema)
		require.NoError(t, obj.Set("value", 3.5))
		require.NoError(t, obj.Set("calibration", 0.1))
		native, err := obj.Serialize()
		require.NoError(t, err)

		direct, err := registry.Downgrade(native, "1.0")
		require.NoError(t, err)

		middle, err := registry.Downgrade(native, "1.5")
		require.NoError(t, err)
		stepwise, err := registry.Downgrade(middle, "1.0")
		require.NoError(t, err)

		assert.Equal(t, direct[KeyData], stepwise[KeyData])
		assert.Equal(t, direct[KeyVersion], stepwise[KeyVersion])
		assert.ElementsMatch(t, direct[KeyChanges], stepwise[KeyChanges])
	})
}

func TestDowngradeNestedObjects(t *testing.T) {
	t.Run("With_child_versions_pinned_by_the_manifest", func(t *testing.T) {
		registry, _, widget2 := widgetSchemas(t)
		carton1 := MustSchema("Carton", "1.0", map[string]*fields.Field{
			"label":   fields.New(fields.String()),
			"content": fields.New(fields.Object("Widget")),
		})
		carton2 := MustSchema("Carton", "2.0", map[string]*fields.Field{
			"label":   fields.New(fields.String()),
			"content": fields.New(fields.Object("Widget")),
			"sealed":  fields.New(fields.Boolean(), fields.AsNullable()),
		}, WithRule(DowngradeRule{
			To: "1.0",
			Transform: func(data map[string]any) (map[string]any, error) {
				delete(data, "sealed")
				return data, nil
			},
			Children: map[string]string{"Widget": "1.0"},
		}))
		require.NoError(t, registry.Register(carton1))
		require.NoError(t, registry.Register(carton2))

		inner := New(widget2)
		require.NoError(t, inner.Set("name", "x"))
		require.NoError(t, inner.Set("color", "blue"))

		outer := New(carton2)
		require.NoError(t, outer.Set("label", "gift"))
		require.NoError(t, outer.Set("sealed", true))
		require.NoError(t, outer.Set("content", inner))

		doc, err := outer.SerializeAt("1.0")
		require.NoError(t, err)
		assert.Equal(t, "1.0", doc[KeyVersion])

		data := doc[KeyData].(map[string]any)
		child := data["content"].(map[string]any)
		assert.Equal(t, "1.0", child[KeyVersion])
		assert.Equal(t, map[string]any{"name": "x"}, child[KeyData])

		back, err := registry.Deserialize(doc)
		require.NoError(t, err)
		got, err := back.Get("content")
		require.NoError(t, err)
		assert.Equal(t, "1.0", got.(*Object).ObjectVersion())
	})

	t.Run("With_children_in_containers_downgraded_too", func(t *testing.T) {
		registry, _, widget2 := widgetSchemas(t)
		pallet1 := MustSchema("Pallet", "1.0", map[string]*fields.Field{
			"items": fields.New(fields.List(fields.Object("Widget"))),
		})
		pallet2 := MustSchema("Pallet", "2.0", map[string]*fields.Field{
			"items": fields.New(fields.List(fields.Object("Widget"))),
		}, WithRule(DowngradeRule{
			To: "1.0",
			Transform: func(data map[string]any) (map[string]any, error) {
				return data, nil
			},
			Children: map[string]string{"Widget": "1.0"},
		}))
		require.NoError(t, registry.Register(pallet1))
		require.NoError(t, registry.Register(pallet2))

		first := New(widget2)
		require.NoError(t, first.Set("name", "a"))
		require.NoError(t, first.Set("color", "red"))
		second := New(widget2)
		require.NoError(t, second.Set("name", "b"))
		require.NoError(t, second.Set("color", "blue"))

		outer := New(pallet2)
		require.NoError(t, outer.Set("items", []any{first, second}))

		doc, err := outer.SerializeAt("1.0")
		require.NoError(t, err)
		items := doc[KeyData].(map[string]any)["items"].([]any)
		require.Len(t, items, 2)
		for _, raw := range items {
			child := raw.(map[string]any)
			assert.Equal(t, "1.0", child[KeyVersion])
			data := child[KeyData].(map[string]any)
			_, present := data["color"]
			assert.False(t, present)
		}
	})

	t.Run("With_types_absent_from_the_manifest_untouched", func(t *testing.T) {
		registry, _, widget2 := widgetSchemas(t)
		rack1 := MustSchema("Rack", "1.0", map[string]*fields.Field{
			"content": fields.New(fields.Object("Widget")),
		})
		rack2 := MustSchema("Rack", "2.0", map[string]*fields.Field{
			"content": fields.New(fields.Object("Widget")),
		}, WithRule(DowngradeRule{
			To: "1.0",
			Transform: func(data map[string]any) (map[string]any, error) {
				return data, nil
			},
			Children: map[string]string{"Gizmo": "1.0"},
		}))
		require.NoError(t, registry.Register(rack1))
		require.NoError(t, registry.Register(rack2))

		inner := New(widget2)
		require.NoError(t, inner.Set("name", "x"))
		require.NoError(t, inner.Set("color", "blue"))
		outer := New(rack2)
		require.NoError(t, outer.Set("content", inner))

		doc, err := outer.SerializeAt("1.0")
		require.NoError(t, err)
		child := doc[KeyData].(map[string]any)["content"].(map[string]any)
		assert.Equal(t, "2.0", child[KeyVersion])
		assert.Equal(t, map[string]any{"name": "x", "color": "blue"}, child[KeyData])
	})
}
