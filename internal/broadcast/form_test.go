package broadcast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleContact(t *testing.T) {
	state := NewFormState().ToggleContact("a").ToggleContact("b")
	assert.Equal(t, []string{"a", "b"}, state.ContactIDs)

	state = state.ToggleContact("a")
	assert.Equal(t, []string{"b"}, state.ContactIDs)

	state = state.ToggleContact("a")
	assert.Equal(t, []string{"b", "a"}, state.ContactIDs)
}

func TestSelectAllToggles(t *testing.T) {
	all := []string{"a", "b", "c"}

	state := NewFormState().SelectAll(all)
	assert.Len(t, state.ContactIDs, 3)

	// All selected, toggling one off leaves total-1.
	state = state.ToggleContact("b")
	assert.Len(t, state.ContactIDs, 2)

	// Select-all twice in a row ends empty.
	state = NewFormState().SelectAll(all).SelectAll(all)
	assert.Empty(t, state.ContactIDs)
}

func TestUpdatesDoNotMutatePreviousSnapshot(t *testing.T) {
	base := NewFormState().WithVariable("1", "Alice").ToggleContact("a")

	next := base.WithVariable("1", "Bob").ToggleContact("b")

	assert.Equal(t, "Alice", base.Variables["1"])
	assert.Equal(t, []string{"a"}, base.ContactIDs)
	assert.Equal(t, "Bob", next.Variables["1"])
	assert.Equal(t, []string{"a", "b"}, next.ContactIDs)
}

func TestWithRateLimit(t *testing.T) {
	assert.Equal(t, DefaultRateLimit, NewFormState().RateLimit)
	assert.Equal(t, 250, NewFormState().WithRateLimit(250).RateLimit)
	assert.Equal(t, MaxRateLimit, NewFormState().WithRateLimit(99999).RateLimit)
	assert.Equal(t, DefaultRateLimit, NewFormState().WithRateLimit(0).RateLimit)
}
