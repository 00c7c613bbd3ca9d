package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsOneControllerPerHotel(t *testing.T) {
	sched := &fakeScheduler{}
	r := NewRegistry(newFakeQuerier(), WithScheduler(sched))

	a := r.Get(1)
	assert.Same(t, a, r.Get(1))
	assert.NotSame(t, a, r.Get(2))
	assert.Equal(t, 2, r.Len())

	got, ok := r.Lookup(1)
	require.True(t, ok)
	assert.Same(t, a, got)
	_, ok = r.Lookup(9)
	assert.False(t, ok)
}

func TestRegistryCloseAllStopsPendingQueries(t *testing.T) {
	sched := &fakeScheduler{}
	q := newFakeQuerier()
	r := NewRegistry(q, WithScheduler(sched))

	c := r.Get(1)
	c.Edit(form("2024-06-01", "2024-06-03", 1))
	r.CloseAll()

	sched.Advance(time.Minute)
	assert.Empty(t, sched.Fired())
	assert.Len(t, q.calls, 0)
	assert.Equal(t, 0, r.Len())
	assert.NotSame(t, c, r.Get(1), "a fresh controller after logout")
}

func TestRegistryViewDoesNotCreateControllers(t *testing.T) {
	r := NewRegistry(newFakeQuerier(), WithScheduler(&fakeScheduler{}))

	v := r.View(42)
	assert.Equal(t, int64(42), v.HotelID)
	assert.Equal(t, StateIncomplete, v.State)
	assert.Empty(t, v.Rooms)
	assert.Equal(t, 0, r.Len())

	r.Get(42).Edit(form("2024-06-01", "", 1))
	assert.Equal(t, "2024-06-01", r.View(42).Form.CheckIn)
	assert.Equal(t, 1, r.Len())
}
