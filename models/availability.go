package models

import (
	"math"
	"time"
)

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

// StayForm holds the raw, user-edited stay inputs. Dates may be empty while
// the guest is still filling the form in.
type StayForm struct {
	CheckIn  string `json:"check_in" validate:"omitempty,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	Guests   int    `json:"guests" validate:"gte=0,lte=20"`
	Rooms    int    `json:"rooms" validate:"gte=0,lte=10"`
}

// Complete is true once both dates are present.
func (f StayForm) Complete() bool {
	return f.CheckIn != "" && f.CheckOut != ""
}

// Query converts the form into an AvailabilityQuery. ok is false while a
// date is missing. Occupancy below one is raised to one.
func (f StayForm) Query() (q AvailabilityQuery, ok bool) {
	if !f.Complete() {
		return AvailabilityQuery{}, false
	}
	q = AvailabilityQuery{CheckIn: f.CheckIn, CheckOut: f.CheckOut, Guests: f.Guests, Rooms: f.Rooms}
	if q.Guests < 1 {
		q.Guests = 1
	}
	if q.Rooms < 1 {
		q.Rooms = 1
	}
	return q, true
}

// AvailabilityQuery is the body of POST /book/hotel/{id}.
type AvailabilityQuery struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Rooms    int    `json:"rooms"`
	Guests   int    `json:"guests"`
}

// Nights counts the nights between check-in and check-out, rounding a
// partial day up. It is 0 for unparsable or reversed dates.
func (q AvailabilityQuery) Nights() int {
	in, err := time.Parse(DateLayout, q.CheckIn)
	if err != nil {
		return 0
	}
	out, err := time.Parse(DateLayout, q.CheckOut)
	if err != nil {
		return 0
	}
	d := out.Sub(in)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// AvailabilityData is the data payload of POST /book/hotel/{id}.
type AvailabilityData struct {
	Rooms []Room `json:"rooms"`
}
