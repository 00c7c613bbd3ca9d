package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserKeepsUnknownFields(t *testing.T) {
	in := `{"id":7,"name":"Sara","loyalty":{"tier":"gold"}}`
	var u User
	require.NoError(t, json.Unmarshal([]byte(in), &u))
	assert.Equal(t, int64(7), u.ID)

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	out, err = json.Marshal(User{ID: 8, Name: "Ali"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":8,"name":"Ali"}`, string(out))
}

func TestSessionAuthenticated(t *testing.T) {
	assert.False(t, Session{User: &User{ID: 7}}.Authenticated())
	assert.True(t, Session{AccessToken: "A1"}.Authenticated())
	assert.True(t, Session{}.Empty())
	assert.False(t, Session{RefreshToken: "R1"}.Empty())
}

func TestStayFormQuery(t *testing.T) {
	_, ok := StayForm{CheckIn: "2024-06-01"}.Query()
	assert.False(t, ok)

	q, ok := StayForm{CheckIn: "2024-06-01", CheckOut: "2024-06-03"}.Query()
	require.True(t, ok)
	assert.Equal(t, 1, q.Guests)
	assert.Equal(t, 1, q.Rooms)
	assert.Equal(t, 2, q.Nights())
}

func TestNights(t *testing.T) {
	cases := []struct {
		in, out string
		want    int
	}{
		{"2024-06-01", "2024-06-02", 1},
		{"2024-02-28", "2024-03-01", 2},
		{"2024-06-03", "2024-06-01", 0},
		{"2024-06-01", "2024-06-01", 0},
		{"bad", "2024-06-01", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AvailabilityQuery{CheckIn: tc.in, CheckOut: tc.out}.Nights(), tc.in+".."+tc.out)
	}
}

func TestHotelHelpers(t *testing.T) {
	h := Hotel{Rooms: []Room{{Name: "Twin", Price: 120}, {Name: "Single", Price: 80}, {Name: "Suite", Price: 300}, {Name: "Family", Price: 150}}}
	assert.Equal(t, float64(80), h.MinPrice())
	assert.Equal(t, "", h.CityName())

	names, more := h.RoomPreview(3)
	assert.Equal(t, []string{"Twin", "Single", "Suite"}, names)
	assert.Equal(t, 1, more)

	names, more = Hotel{}.RoomPreview(3)
	assert.Empty(t, names)
	assert.Zero(t, more)
}

func TestBookingDraftTotal(t *testing.T) {
	d := BookingDraft{
		Room:  Room{Price: 100},
		Query: AvailabilityQuery{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Rooms: 2},
	}
	assert.Equal(t, float64(600), d.Total())
}

func TestMessageText(t *testing.T) {
	assert.Equal(t, "nope", MessageText(json.RawMessage(`"nope"`)))
	assert.Equal(t, "", MessageText(json.RawMessage(`{"paymentId":"x"}`)))
	assert.Equal(t, "", MessageText(nil))
}
