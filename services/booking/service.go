// Package booking starts payments for a selected room and lists the
// guest's bookings.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"luxstay/models"
	"luxstay/services/api"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgBookingsMissing = "Failed to load bookings."
	MsgBookingsError   = "Error loading bookings."
	MsgNoRoom          = "Please select a room first!"
	MsgNoDates         = "Please choose check-in and check-out dates."
	MsgNoDetails       = "No details provided"
	MsgTryAgain        = "Please try again."

	// DocumentsField is the multipart field identity documents are sent under.
	DocumentsField = "documents[]"
)

var (
	ErrNoRoomSelected = errors.New("booking: no room selected")
	ErrIncompleteStay = errors.New("booking: stay dates missing")
	ErrPaymentFailed  = errors.New("booking: payment was not initiated")
)

// BookingService defines the booking operations.
type BookingService interface {
	InitiatePayment(ctx context.Context, draft models.BookingDraft) (*models.PaymentInitiation, error)
	List(ctx context.Context) ([]models.Booking, error)
}

// DefaultBookingService talks to the remote API.
type DefaultBookingService struct {
	Client *api.Client
	Logger *zap.Logger
}

func NewBookingService(client *api.Client, logger *zap.Logger) *DefaultBookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{Client: client, Logger: logger}
}

// Summary is the price breakdown shown before paying.
type Summary struct {
	Nights        int     `json:"nights"`
	PricePerNight float64 `json:"pricePerNight"`
	Rooms         int     `json:"rooms"`
	Total         float64 `json:"total"`
}

// Nights counts the nights of a stay, 0 while it is incomplete or reversed.
func Nights(q models.AvailabilityQuery) int {
	return q.Nights()
}

// Summarize computes price x nights x rooms for the draft.
func Summarize(draft models.BookingDraft) Summary {
	return Summary{
		Nights:        Nights(draft.Query),
		PricePerNight: draft.Room.Price,
		Rooms:         draft.Query.Rooms,
		Total:         draft.Total(),
	}
}

// InitiatePayment asks the payment provider to start a payment for the
// draft. Drafts with attachments are sent as a multipart form. Success
// requires a payment id in the response.
func (s *DefaultBookingService) InitiatePayment(ctx context.Context, draft models.BookingDraft) (*models.PaymentInitiation, error) {
	if draft.Room.ID == 0 {
		return nil, &api.UserError{Message: MsgNoRoom, Err: ErrNoRoomSelected}
	}
	if draft.Query.CheckIn == "" || draft.Query.CheckOut == "" {
		return nil, &api.UserError{Message: MsgNoDates, Err: ErrIncompleteStay}
	}

	req, err := paymentRequest(draft)
	if err != nil {
		return nil, err
	}
	key := draft.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	req.Header.Set("Idempotency-Key", key)
	req.Authenticated().Named("/fib/hotel/{id}/{roomId}")

	resp, err := s.Client.Do(ctx, req)
	if err != nil {
		if errors.Is(err, api.ErrSessionInvalid) {
			return nil, api.Fail(err, "")
		}
		return nil, &api.UserError{Message: "Payment error: " + api.UserMessage(err, MsgTryAgain), Err: err}
	}

	var body models.PaymentResponse
	if err := resp.JSON(&body); err != nil {
		return nil, &api.UserError{Message: "Payment error: " + MsgTryAgain, Err: err}
	}
	var initiation models.PaymentInitiation
	if err := json.Unmarshal(body.Message, &initiation); err == nil && initiation.PaymentID != "" {
		s.Logger.Info("Payment initiated",
			zap.Int64("hotelID", draft.HotelID),
			zap.Int64("roomID", draft.Room.ID),
			zap.String("paymentID", initiation.PaymentID),
			zap.String("idempotencyKey", key))
		return &initiation, nil
	}

	msg := models.MessageText(body.Message)
	if msg == "" {
		msg = MsgNoDetails
	}
	s.Logger.Warn("Payment not initiated", zap.Int64("hotelID", draft.HotelID), zap.String("reason", msg))
	return nil, &api.UserError{Message: "Payment failed: " + msg, Err: ErrPaymentFailed}
}

func paymentRequest(draft models.BookingDraft) (*api.Request, error) {
	path := fmt.Sprintf("/fib/hotel/%d/%d", draft.HotelID, draft.Room.ID)
	if len(draft.Attachments) == 0 {
		return api.NewRequest(http.MethodPost, path, draft.Query)
	}

	fields := [][2]string{
		{"check_in", draft.Query.CheckIn},
		{"check_out", draft.Query.CheckOut},
		{"rooms", strconv.Itoa(draft.Query.Rooms)},
		{"guests", strconv.Itoa(draft.Query.Guests)},
	}
	files := make([]api.File, 0, len(draft.Attachments))
	for _, a := range draft.Attachments {
		files = append(files, api.File{Field: DocumentsField, Filename: a.Filename, Content: a.Content})
	}
	return api.NewMultipartRequest(http.MethodPost, path, fields, files)
}

// List returns the guest's bookings.
func (s *DefaultBookingService) List(ctx context.Context) ([]models.Booking, error) {
	req, err := api.NewRequest(http.MethodGet, "/bookings", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(ctx, req.Authenticated())
	if err != nil {
		return nil, api.Fail(err, MsgBookingsError)
	}
	var page models.BookingsPage
	if err := resp.JSON(&page); err != nil {
		return nil, &api.UserError{Message: MsgBookingsError, Err: err}
	}
	if page.Bookings == nil || page.Bookings.Data == nil {
		return nil, &api.UserError{Message: MsgBookingsMissing, Err: api.ErrMalformedResponse}
	}
	return page.Bookings.Data, nil
}
