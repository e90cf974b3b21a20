package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("typed handlers come before wildcard", func(t *testing.T) {
		r := NewHandlerRegistry()
		typed := newTestHandler()
		wildcard := newTestHandler()
		r.Register(wildcard)
		r.Register(typed, "schedule.created", "schedule.updated")

		handlers := r.GetHandlers("schedule.created")
		assert.Len(t, handlers, 2)
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[1])

		assert.Len(t, r.GetHandlers("schedule.deleted"), 1)
		assert.Equal(t, 2, r.Len())
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h, "schedule.created")
		r.Register(h, "schedule.created")

		assert.Len(t, r.GetHandlers("schedule.created"), 1)
	})

	t.Run("unregister removes every registration", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		other := newTestHandler()
		r.Register(h, "schedule.created", "schedule.updated")
		r.Register(h)
		r.Register(other, "schedule.created")

		r.Unregister(h)

		assert.Equal(t, 1, r.Len())
		assert.Len(t, r.GetHandlers("schedule.updated"), 0)
		assert.Len(t, r.GetHandlers("schedule.created"), 1)
	})

	t.Run("returned slice is a snapshot", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newTestHandler()
		r.Register(h, "schedule.created")

		snapshot := r.GetHandlers("schedule.created")
		r.Unregister(h)

		assert.Len(t, snapshot, 1)
	})
}
