package booking

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"luxstay/models"
	"luxstay/services/api"
	"luxstay/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, h http.HandlerFunc) *DefaultBookingService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), models.Session{AccessToken: "A1", RefreshToken: "R1"}))
	return NewBookingService(api.NewClient(srv.URL, store), nil)
}

func draft() models.BookingDraft {
	return models.BookingDraft{
		HotelID: 3,
		Room:    models.Room{ID: 8, Price: 100},
		Query:   models.AvailabilityQuery{CheckIn: "2024-06-01", CheckOut: "2024-06-04", Rooms: 2, Guests: 3},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(draft())
	assert.Equal(t, Summary{Nights: 3, PricePerNight: 100, Rooms: 2, Total: 600}, s)

	incomplete := draft()
	incomplete.Query.CheckOut = ""
	assert.Equal(t, 0, Nights(incomplete.Query))
	assert.Zero(t, Summarize(incomplete).Total)

	reversed := models.AvailabilityQuery{CheckIn: "2024-06-04", CheckOut: "2024-06-01"}
	assert.Equal(t, 0, Nights(reversed))
}

func TestInitiatePaymentSendsJSON(t *testing.T) {
	var got models.AvailabilityQuery
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fib/hotel/3/8", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"paymentId":"pay-1","personalAppLink":"https://fib.example/pay-1"}}`))
	})

	p, err := svc.InitiatePayment(context.Background(), draft())
	require.NoError(t, err)
	assert.Equal(t, "pay-1", p.PaymentID)
	assert.Equal(t, "https://fib.example/pay-1", p.PersonalAppLink)
	assert.Equal(t, draft().Query, got)
}

func TestInitiatePaymentSendsMultipartWithAttachments(t *testing.T) {
	type part struct{ name, filename, contentType, body string }
	var parts []part
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)
		mr := multipart.NewReader(r.Body, params["boundary"])
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, _ := io.ReadAll(p)
			parts = append(parts, part{p.FormName(), p.FileName(), p.Header.Get("Content-Type"), string(data)})
		}
		_, _ = w.Write([]byte(`{"message":{"paymentId":"pay-2"}}`))
	})

	d := draft()
	d.Attachments = []models.Attachment{{Filename: "passport.pdf", Content: []byte("%PDF-1.4\n%test")}}
	_, err := svc.InitiatePayment(context.Background(), d)
	require.NoError(t, err)

	require.Len(t, parts, 5)
	assert.Equal(t, part{"check_in", "", "", "2024-06-01"}, parts[0])
	assert.Equal(t, "rooms", parts[2].name)
	assert.Equal(t, "2", parts[2].body)
	assert.Equal(t, DocumentsField, parts[4].name)
	assert.Equal(t, "passport.pdf", parts[4].filename)
	assert.Equal(t, "application/pdf", parts[4].contentType)
}

func TestInitiatePaymentKeepsIdempotencyKeyAcrossRetry(t *testing.T) {
	var mu sync.Mutex
	var keys []string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == api.RefreshPath {
			_, _ = w.Write([]byte(`{"result":true,"data":{"access_token":"A2"}}`))
			return
		}
		mu.Lock()
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer A2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"message":{"paymentId":"pay-3"}}`))
	})

	_, err := svc.InitiatePayment(context.Background(), draft())
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
}

func TestInitiatePaymentFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message string", http.StatusOK, `{"message":"Room no longer available"}`, "Payment failed: Room no longer available"},
		{"no message", http.StatusOK, `{}`, "Payment failed: " + MsgNoDetails},
		{"object without id", http.StatusOK, `{"message":{"status":"DECLINED"}}`, "Payment failed: " + MsgNoDetails},
		{"server error with message", http.StatusBadRequest, `{"message":"Invalid dates"}`, "Payment error: Invalid dates"},
		{"server error without message", http.StatusInternalServerError, `oops`, "Payment error: " + MsgTryAgain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := svc.InitiatePayment(context.Background(), draft())
			require.Error(t, err)
			assert.Equal(t, tc.want, api.UserMessage(err, ""))
		})
	}
}

func TestInitiatePaymentRequiresRoomAndDates(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	d := draft()
	d.Room = models.Room{}
	_, err := svc.InitiatePayment(context.Background(), d)
	assert.ErrorIs(t, err, ErrNoRoomSelected)
	assert.Equal(t, MsgNoRoom, api.UserMessage(err, ""))

	d = draft()
	d.Query.CheckIn = ""
	_, err = svc.InitiatePayment(context.Background(), d)
	assert.ErrorIs(t, err, ErrIncompleteStay)
}

func TestList(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"bookings":{"data":[
			{"id":1,"hotel":{"name":"Zagros","city":{"name":"Erbil"}},"room":{"price":120},"start_time":"2024-06-01 14:00:00","end_time":"2024-06-03T11:00:00Z","payment_status":"paid"},
			{"id":2,"hotel":{"name":"Tigris"},"room":{"price":80},"start_time":"2024-07-01","payment_status":"pending"}
		]}}`))
	})

	bookings, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "Completed", bookings[0].Status())
	assert.Equal(t, "Upcoming", bookings[1].Status())

	in, ok := bookings[0].CheckIn()
	require.True(t, ok)
	assert.Equal(t, 14, in.Hour())
	_, ok = bookings[1].CheckOut()
	assert.False(t, ok)
}

func TestListMissingBookings(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":true}`))
	})
	_, err := svc.List(context.Background())
	assert.Equal(t, MsgBookingsMissing, api.UserMessage(err, ""))

	svc = newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 10)))
	})
	_, err = svc.List(context.Background())
	assert.Equal(t, MsgBookingsError, api.UserMessage(err, ""))
}
