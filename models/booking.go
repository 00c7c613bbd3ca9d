package models

import "time"

// BookingHotel is the hotel summary embedded in a booking.
type BookingHotel struct {
	Name   string  `json:"name"`
	City   *City   `json:"city,omitempty"`
	Images []Image `json:"images,omitempty"`
}

// BookingRoom is the room summary embedded in a booking.
type BookingRoom struct {
	Price float64 `json:"price"`
}

// Booking is an entry of the guest's booking history.
type Booking struct {
	ID            int64        `json:"id"`
	Hotel         BookingHotel `json:"hotel"`
	Room          BookingRoom  `json:"room"`
	StartTime     string       `json:"start_time"`
	EndTime       string       `json:"end_time"`
	PaymentStatus string       `json:"payment_status"`
}

// Completed is true once the booking has been paid.
func (b Booking) Completed() bool {
	return b.PaymentStatus == "paid"
}

// Status is the label shown next to a booking.
func (b Booking) Status() string {
	if b.Completed() {
		return "Completed"
	}
	return "Upcoming"
}

// CheckIn parses start_time. ok is false when the server sent a format
// we do not know.
func (b Booking) CheckIn() (time.Time, bool) {
	return parseServerTime(b.StartTime)
}

// CheckOut parses end_time.
func (b Booking) CheckOut() (time.Time, bool) {
	return parseServerTime(b.EndTime)
}

var serverTimeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", DateLayout}

func parseServerTime(s string) (time.Time, bool) {
	for _, layout := range serverTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BookingsPage is the body of GET /bookings.
type BookingsPage struct {
	Bookings *struct {
		Data []Booking `json:"data"`
	} `json:"bookings"`
}

// Attachment is an identity document uploaded with a payment request.
type Attachment struct {
	Filename string
	Content  []byte
}

// BookingDraft is what the guest submits once to start a payment. It is
// never persisted.
type BookingDraft struct {
	HotelID     int64
	Room        Room
	Query       AvailabilityQuery
	Attachments []Attachment
	// IdempotencyKey is sent with every attempt of the same draft.
	IdempotencyKey string
}

// Total is price x nights x rooms.
func (d BookingDraft) Total() float64 {
	return d.Room.Price * float64(d.Query.Nights()) * float64(d.Query.Rooms)
}
