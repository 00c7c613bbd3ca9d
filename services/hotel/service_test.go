package hotel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"luxstay/models"
	"luxstay/services/api"
	"luxstay/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalog = `{"result":true,"data":[
	{"id":1,"name":"zagros palace","average_rating":4.1,"city":{"name":"Erbil"},"rooms":[{"id":11,"name":"Twin","price":120}]},
	{"id":2,"name":"Baghdad Grand","average_rating":4.8,"city":{"name":"Baghdad"},"rooms":[{"id":21,"name":"Suite","price":300},{"id":22,"name":"Single","price":80}]},
	{"id":3,"name":"Tigris Inn","average_rating":3.2,"rooms":[]}
]}`

func newService(t *testing.T, h http.HandlerFunc) (*DefaultHotelService, session.Store) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	return NewHotelService(api.NewClient(srv.URL, store)), store
}

func names(hotels []models.Hotel) []string {
	out := make([]string, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, h.Name)
	}
	return out
}

func TestListSortsAndFilters(t *testing.T) {
	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/guest/hotels", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(catalog))
	})
	ctx := context.Background()

	got, err := svc.List(ctx, "", SortName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Baghdad Grand", "Tigris Inn", "zagros palace"}, names(got))

	got, err = svc.List(ctx, "", SortRating)
	require.NoError(t, err)
	assert.Equal(t, []string{"Baghdad Grand", "zagros palace", "Tigris Inn"}, names(got))

	got, err = svc.List(ctx, "", SortPrice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tigris Inn", "zagros palace", "Baghdad Grand"}, names(got), "first room price, missing counts as 0")

	got, err = svc.List(ctx, "", "unknown")
	require.NoError(t, err)
	assert.Equal(t, []string{"zagros palace", "Baghdad Grand", "Tigris Inn"}, names(got))

	got, err = svc.List(ctx, "ERBIL", SortName)
	require.NoError(t, err)
	assert.Equal(t, []string{"zagros palace"}, names(got))

	got, err = svc.List(ctx, "inn", SortName)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tigris Inn"}, names(got))
}

func TestListFailures(t *testing.T) {
	t.Run("rejected", func(t *testing.T) {
		svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"result":false,"message":"maintenance"}`))
		})
		_, err := svc.List(context.Background(), "", "")
		require.Error(t, err)
		assert.Equal(t, MsgListRejected, api.UserMessage(err, ""))
	})
	t.Run("malformed", func(t *testing.T) {
		svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})
		_, err := svc.List(context.Background(), "", "")
		require.ErrorIs(t, err, api.ErrMalformedResponse)
		assert.Equal(t, MsgListError, api.UserMessage(err, ""))
	})
}

func TestGet(t *testing.T) {
	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/guest/hotel/2":
			_, _ = w.Write([]byte(`{"result":true,"data":{"id":2,"name":"Baghdad Grand","images":[{"path":"a.jpg"}],"rooms":[{"id":21,"price":300,"guest":2,"beds":1,"bath":1}]}}`))
		default:
			_, _ = w.Write([]byte(`{"result":false}`))
		}
	})

	h, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Baghdad Grand", h.Name)
	require.Len(t, h.Rooms, 1)
	assert.Equal(t, 2, h.Rooms[0].Capacity)
	assert.Equal(t, float64(300), h.MinPrice())

	_, err = svc.Get(context.Background(), 9)
	assert.Equal(t, MsgDetailRejected, api.UserMessage(err, ""))
}

func TestQueryRoomsIsAuthenticated(t *testing.T) {
	var body models.AvailabilityQuery
	svc, store := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/book/hotel/4", r.URL.Path)
		assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"result":true,"data":{"rooms":[{"id":7,"name":"Deluxe","price":99.5,"available_units_count":3}]}}`))
	})
	require.NoError(t, store.Save(context.Background(), models.Session{AccessToken: "A1"}))

	q := models.AvailabilityQuery{CheckIn: "2024-06-01", CheckOut: "2024-06-03", Rooms: 1, Guests: 2}
	rooms, err := svc.QueryRooms(context.Background(), 4, q)
	require.NoError(t, err)
	assert.Equal(t, q, body)
	require.Len(t, rooms, 1)
	assert.Equal(t, 3, rooms[0].AvailableUnitCount)
}

func TestQueryRoomsPassesRejectionThrough(t *testing.T) {
	svc, store := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":false,"message":"Sold out"}`))
	})
	require.NoError(t, store.Save(context.Background(), models.Session{AccessToken: "A1"}))

	_, err := svc.QueryRooms(context.Background(), 4, models.AvailabilityQuery{CheckIn: "2024-06-01", CheckOut: "2024-06-02"})
	var rejected *api.RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Sold out", rejected.Message)
}
