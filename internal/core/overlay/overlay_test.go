package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlay(t *testing.T) {
	t.Run("starts empty", func(t *testing.T) {
		o := New()
		assert.False(t, o.IsToggled("a"))
		assert.False(t, o.IsDeleted("a"))
	})

	t.Run("mark and unmark toggled", func(t *testing.T) {
		o := New()

		o.MarkToggled("a")
		assert.True(t, o.IsToggled("a"))
		assert.False(t, o.IsToggled("b"))

		o.UnmarkToggled("a")
		assert.False(t, o.IsToggled("a"))
	})

	t.Run("flip toggled twice is identity", func(t *testing.T) {
		o := New()

		o.FlipToggled("a")
		assert.True(t, o.IsToggled("a"))

		o.FlipToggled("a")
		assert.False(t, o.IsToggled("a"))
	})

	t.Run("mark toggled is idempotent", func(t *testing.T) {
		o := New()

		o.MarkToggled("a")
		o.MarkToggled("a")
		assert.True(t, o.IsToggled("a"))

		o.UnmarkToggled("a")
		assert.False(t, o.IsToggled("a"))
	})

	t.Run("deleted is independent of toggled", func(t *testing.T) {
		o := New()

		o.MarkDeleted("a")
		assert.True(t, o.IsDeleted("a"))
		assert.False(t, o.IsToggled("a"))
	})

	t.Run("clear wipes both sets", func(t *testing.T) {
		o := New()

		o.MarkToggled("a")
		o.MarkDeleted("b")
		o.Clear()

		assert.False(t, o.IsToggled("a"))
		assert.False(t, o.IsDeleted("b"))
	})
}
