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
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objverse/objverse/errors"
	"github.com/objverse/objverse/fields"
)

// fakeBackend records indirection traffic and replays canned answers.
type fakeBackend struct {
	fetchDoc   Document
	fetchErr   error
	remoteOut  any
	remoteErr  error
	fetches    []string
	executions []string
}

// enforce compilation error
var _ Indirection = (*fakeBackend)(nil)

func (b *fakeBackend) Fetch(_ context.Context, objectType, objectVersion, locator string) (Document, error) {
	b.fetches = append(b.fetches, fmt.Sprintf("%s@%s:%s", objectType, objectVersion, locator))
	return b.fetchDoc, b.fetchErr
}

func (b *fakeBackend) ExecuteRemote(_ context.Context, objectType, method string, _ []any) (any, error) {
	b.executions = append(b.executions, objectType+"."+method)
	return b.remoteOut, b.remoteErr
}

func TestStubHydration(t *testing.T) {
	t.Run("With_a_stub_carrying_only_a_locator", func(t *testing.T) {
		_, _, widget2 := widgetSchemas(t)
		stub := NewStub(widget2, "w-42")

		assert.Equal(t, "w-42", stub.Locator())
		assert.False(t, stub.Hydrated())

		_, err := stub.Serialize()
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNotHydrated)
	})

	t.Run("With_hydration_populating_the_stub", func(t *testing.T) {
		backend := &fakeBackend{
			fetchDoc: Document{
				KeyType:    "Widget",
				KeyVersion: "2.0",
				KeyData:    map[string]any{"name": "x", "color": "blue"},
			},
		}
		_, _, widget2 := widgetSchemas(t, WithIndirection(backend))
		stub := NewStub(widget2, "w-42")

		require.NoError(t, stub.Hydrate(context.TODO()))
		assert.True(t, stub.Hydrated())
		assert.Equal(t, []string{"Widget@2.0:w-42"}, backend.fetches)

		got, err := stub.Get("name")
		require.NoError(t, err)
		assert.Equal(t, "x", got)

		// re-hydration is a no-op
		require.NoError(t, stub.Hydrate(context.TODO()))
		assert.Len(t, backend.fetches, 1)
	})

	t.Run("With_an_empty_remote_document_still_counting_as_hydrated", func(t *testing.T) {
		backend := &fakeBackend{
			fetchDoc: Document{
				KeyType:    "Widget",
				KeyVersion: "2.0",
				KeyData:    map[string]any{},
			},
		}
		_, _, widget2 := widgetSchemas(t, WithIndirection(backend))
		stub := NewStub(widget2, "w-42")

		require.NoError(t, stub.Hydrate(context.TODO()))
		assert.True(t, stub.Hydrated())
		assert.Len(t, backend.fetches, 1)

		// hydration sticks even with zero set fields
		require.NoError(t, stub.Hydrate(context.TODO()))
		assert.Len(t, backend.fetches, 1)

		doc, err := stub.Serialize()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{}, doc[KeyData])
	})

	t.Run("With_the_backend_returning_a_stub_envelope", func(t *testing.T) {
		backend := &fakeBackend{
			fetchDoc: Document{
				KeyType:    "Widget",
				KeyVersion: "2.0",
				KeyLocator: "w-43",
			},
		}
		_, _, widget2 := widgetSchemas(t, WithIndirection(backend))
		stub := NewStub(widget2, "w-42")

		err := stub.Hydrate(context.TODO())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidDocument)
		assert.False(t, stub.Hydrated())
	})

	t.Run("With_no_backend_configured", func(t *testing.T) {
		_, _, widget2 := widgetSchemas(t)
		stub := NewStub(widget2, "w-42")

		err := stub.Hydrate(context.TODO())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNoIndirection)
	})

	t.Run("With_the_backend_returning_the_wrong_document", func(t *testing.T) {
		backend := &fakeBackend{
			fetchDoc: Document{
				KeyType:    "Gizmo",
				KeyVersion: "1.0",
				KeyData:    map[string]any{},
			},
		}
		_, _, widget2 := widgetSchemas(t, WithIndirection(backend))
		stub := NewStub(widget2, "w-42")

		err := stub.Hydrate(context.TODO())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidDocument)
		assert.False(t, stub.Hydrated())
	})

	t.Run("With_the_backend_failing", func(t *testing.T) {
		backend := &fakeBackend{fetchErr: errors.NewUnknownObjectError("Widget")}
		_, _, widget2 := widgetSchemas(t, WithIndirection(backend))
		stub := NewStub(widget2, "w-42")

		err := stub.Hydrate(context.TODO())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnknownObject)
	})
}

func TestIndirectionPolicy(t *testing.T) {
	t.Run("With_indirect_only_instances_serializing_as_stub_envelopes", func(t *testing.T) {
		blob := MustSchema("Blob", "1.0", map[string]*fields.Field{
			"payload": fields.New(fields.String()),
		}, WithIndirectOnly())
		registry := NewRegistry()
		require.NoError(t, registry.Register(blob))

		obj := New(blob)
		require.NoError(t, obj.Set("payload", strings.Repeat("x", 1<<20)))
		obj.SetLocator("blob-1")

		doc, err := obj.Serialize()
		require.NoError(t, err)
		assert.Equal(t, "Blob", doc[KeyType])
		assert.Equal(t, "1.0", doc[KeyVersion])
		assert.Equal(t, "blob-1", doc[KeyLocator])
		// the payload never travels inline
		_, inlined := doc[KeyData]
		assert.False(t, inlined)
	})

	t.Run("With_indirect_only_instances_refusing_to_inline_without_a_locator", func(t *testing.T) {
		blob := MustSchema("Blob", "1.0", map[string]*fields.Field{
			"payload": fields.New(fields.String()),
		}, WithIndirectOnly())
		registry := NewRegistry()
		require.NoError(t, registry.Register(blob))

		obj := New(blob)
		require.NoError(t, obj.Set("payload", strings.Repeat("x", 1<<20)))

		_, err := obj.Serialize()
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNoIndirection)
	})

	t.Run("With_data_above_the_threshold_serializing_as_a_stub", func(t *testing.T) {
		report := MustSchema("Report", "1.0", map[string]*fields.Field{
			"body": fields.New(fields.String()),
		}, WithIndirectionThreshold(1024))
		registry := NewRegistry()
		require.NoError(t, registry.Register(report))

		obj := New(report)
		require.NoError(t, obj.Set("body", strings.Repeat("x", 4096)))
		obj.SetLocator("report-7")

		doc, err := obj.Serialize()
		require.NoError(t, err)
		assert.Equal(t, "report-7", doc[KeyLocator])
		_, inlined := doc[KeyData]
		assert.False(t, inlined)
	})

	t.Run("With_data_below_the_threshold_inlining_as_usual", func(t *testing.T) {
		report := MustSchema("Report", "1.0", map[string]*fields.Field{
			"body": fields.New(fields.String()),
		}, WithIndirectionThreshold(1024))
		registry := NewRegistry()
		require.NoError(t, registry.Register(report))

		obj := New(report)
		require.NoError(t, obj.Set("body", "short"))
		obj.SetLocator("report-8")

		doc, err := obj.Serialize()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"body": "short"}, doc[KeyData])
		_, stub := doc[KeyLocator]
		assert.False(t, stub)
	})

	t.Run("With_data_above_the_threshold_refusing_to_inline_without_a_locator", func(t *testing.T) {
		report := MustSchema("Report", "1.0", map[string]*fields.Field{
			"body": fields.New(fields.String()),
		}, WithIndirectionThreshold(1024))
		registry := NewRegistry()
		require.NoError(t, registry.Register(report))

		obj := New(report)
		require.NoError(t, obj.Set("body", strings.Repeat("x", 4096)))

		_, err := obj.Serialize()
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNoIndirection)
	})

	t.Run("With_stub_envelopes_deserializing_and_hydrating_round_trip", func(t *testing.T) {
		backend := &fakeBackend{
			fetchDoc: Document{
				KeyType:    "Report",
				KeyVersion: "1.0",
				KeyData:    map[string]any{"body": strings.Repeat("x", 4096)},
			},
		}
		report := MustSchema("Report", "1.0", map[string]*fields.Field{
			"body": fields.New(fields.String()),
		}, WithIndirectionThreshold(1024))
		registry := NewRegistry(WithIndirection(backend))
		require.NoError(t, registry.Register(report))

		obj := New(report)
		require.NoError(t, obj.Set("body", strings.Repeat("x", 4096)))
		obj.SetLocator("report-9")

		doc, err := obj.Serialize()
		require.NoError(t, err)

		received, err := registry.Deserialize(doc)
		require.NoError(t, err)
		assert.False(t, received.Hydrated())
		assert.Equal(t, "report-9", received.Locator())

		require.NoError(t, received.Hydrate(context.TODO()))
		assert.Equal(t, []string{"Report@1.0:report-9"}, backend.fetches)
		got, err := received.Get("body")
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("x", 4096), got)
	})

	t.Run("With_malformed_locator_envelopes_rejected", func(t *testing.T) {
		registry, _, _ := widgetSchemas(t)

		_, err := registry.Deserialize(Document{
			KeyType:    "Widget",
			KeyVersion: "2.0",
			KeyLocator: 7,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidDocument)
	})

	t.Run("With_negative_thresholds_rejected_at_declaration", func(t *testing.T) {
		_, err := NewSchema("Report", "1.0", map[string]*fields.Field{
			"body": fields.New(fields.String()),
		}, WithIndirectionThreshold(-1))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidDocument)
	})
}

func TestMethodDispatch(t *testing.T) {
	newRobotSchema := func(opts ...SchemaOption) *Schema {
		base := []SchemaOption{
			WithMethod(MethodSpec{
				Name:      "rename",
				Signature: "name string",
				Handler: func(_ context.Context, obj *Object, args []any) (any, error) {
					if err := obj.Set("name", args[0]); err != nil {
						return nil, err
					}
					return obj.Get("name")
				},
			}),
			WithMethod(MethodSpec{
				Name:      "provision",
				Signature: "",
				Remotable: true,
			}),
		}
		return MustSchema("Robot", "1.0", map[string]*fields.Field{
			"name": fields.New(fields.String()),
		}, append(base, opts...)...)
	}

	t.Run("With_local_methods_running_in_process", func(t *testing.T) {
		backend := &fakeBackend{}
		registry := NewRegistry(WithIndirection(backend))
		robot := newRobotSchema()
		require.NoError(t, registry.Register(robot))

		obj := New(robot)
		require.NoError(t, obj.Set("name", "r2"))

		out, err := obj.Call(context.TODO(), "rename", "r3")
		require.NoError(t, err)
		assert.Equal(t, "r3", out)
		assert.Empty(t, backend.executions)
	})

	t.Run("With_remotable_methods_routed_through_the_backend", func(t *testing.T) {
		backend := &fakeBackend{remoteOut: "ok"}
		registry := NewRegistry(WithIndirection(backend))
		robot := newRobotSchema()
		require.NoError(t, registry.Register(robot))

		obj := New(robot)
		require.NoError(t, obj.Set("name", "r2"))

		out, err := obj.Call(context.TODO(), "provision")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, []string{"Robot.provision"}, backend.executions)
	})

	t.Run("With_every_call_remote_on_indirect_only_types", func(t *testing.T) {
		backend := &fakeBackend{remoteOut: "remote"}
		registry := NewRegistry(WithIndirection(backend))
		robot := newRobotSchema(WithIndirectOnly())
		require.NoError(t, registry.Register(robot))

		obj := New(robot)
		require.NoError(t, obj.Set("name", "r2"))

		out, err := obj.Call(context.TODO(), "rename", "r3")
		require.NoError(t, err)
		assert.Equal(t, "remote", out)
		assert.Equal(t, []string{"Robot.rename"}, backend.executions)
	})

	t.Run("With_hydrated_stubs_dispatching_locally", func(t *testing.T) {
		backend := &fakeBackend{
			fetchDoc: Document{
				KeyType:    "Robot",
				KeyVersion: "1.0",
				KeyData:    map[string]any{},
			},
		}
		registry := NewRegistry(WithIndirection(backend))
		robot := newRobotSchema()
		require.NoError(t, registry.Register(robot))

		stub := NewStub(robot, "r-1")
		require.NoError(t, stub.Hydrate(context.TODO()))

		out, err := stub.Call(context.TODO(), "rename", "r3")
		require.NoError(t, err)
		assert.Equal(t, "r3", out)
		assert.Empty(t, backend.executions)
	})

	t.Run("With_calls_on_unhydrated_stubs_going_remote", func(t *testing.T) {
		backend := &fakeBackend{remoteOut: "remote"}
		registry := NewRegistry(WithIndirection(backend))
		robot := newRobotSchema()
		require.NoError(t, registry.Register(robot))

		stub := NewStub(robot, "r-1")
		out, err := stub.Call(context.TODO(), "rename", "r3")
		require.NoError(t, err)
		assert.Equal(t, "remote", out)
		assert.Equal(t, []string{"Robot.rename"}, backend.executions)
	})

	t.Run("With_undeclared_methods_rejected", func(t *testing.T) {
		registry := NewRegistry()
		robot := newRobotSchema()
		require.NoError(t, registry.Register(robot))

		obj := New(robot)
		_, err := obj.Call(context.TODO(), "explode")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnknownMethod)
	})

	t.Run("With_remote_dispatch_requiring_a_backend", func(t *testing.T) {
		registry := NewRegistry()
		robot := newRobotSchema()
		require.NoError(t, registry.Register(robot))

		obj := New(robot)
		_, err := obj.Call(context.TODO(), "provision")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNoIndirection)
	})
}
