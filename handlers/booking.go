package handlers

import (
	"net/http"
	"strings"

	"luxstay/models"
	"luxstay/services/availability"
	"luxstay/services/booking"
	"luxstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxPaymentFormBytes = 32 << 20

// BookingHandler starts payments and lists bookings.
type BookingHandler struct {
	Bookings booking.BookingService
	Views    *availability.Registry
}

func NewBookingHandler(bookings booking.BookingService, views *availability.Registry) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Views: views}
}

type paymentInput struct {
	IdempotencyKey string `json:"idempotencyKey" form:"idempotencyKey"`
}

// InitiatePaymentHandler pays for a room from the hotel's current
// availability. The stay comes from the availability view; identity
// documents may be uploaded as a multipart form under "documents[]".
func (h *BookingHandler) InitiatePaymentHandler(c *gin.Context) {
	logger := getLogger(c)
	hotelID, ok := paramID(c, "id")
	if !ok {
		return
	}
	roomID, ok := paramID(c, "roomId")
	if !ok {
		return
	}

	view := h.Views.View(hotelID)
	room, found := findRoom(view.Rooms, roomID)
	if !found {
		utils.JSONError(c, http.StatusBadRequest, booking.MsgNoRoom, "room is not in the current availability")
		return
	}
	query, complete := view.Form.Query()
	if !complete {
		utils.JSONError(c, http.StatusBadRequest, booking.MsgNoDates, "")
		return
	}

	draft := models.BookingDraft{HotelID: hotelID, Room: room, Query: query}
	var input paymentInput
	if strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		form, err := c.MultipartForm()
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid upload", err.Error())
			return
		}
		if draft.Attachments, err = readAttachments(form, booking.DocumentsField); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid upload", err.Error())
			return
		}
		input.IdempotencyKey = c.PostForm("idempotencyKey")
	} else if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
			return
		}
	}
	draft.IdempotencyKey = input.IdempotencyKey

	payment, err := h.Bookings.InitiatePayment(c.Request.Context(), draft)
	if err != nil {
		respondError(c, err, http.StatusBadGateway, "Payment error: "+booking.MsgTryAgain)
		return
	}
	logger.Info("Payment initiated", zap.Int64("hotelID", hotelID), zap.Int64("roomID", roomID))
	c.JSON(http.StatusOK, gin.H{
		"payment": payment,
		"summary": booking.Summarize(draft),
	})
}

type bookingCard struct {
	models.Booking
	StatusLabel string `json:"status"`
}

// ListBookingsHandler returns the guest's bookings.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	bookings, err := h.Bookings.List(c.Request.Context())
	if err != nil {
		respondError(c, err, http.StatusBadGateway, booking.MsgBookingsError)
		return
	}
	cards := make([]bookingCard, 0, len(bookings))
	for _, b := range bookings {
		cards = append(cards, bookingCard{Booking: b, StatusLabel: b.Status()})
	}
	c.JSON(http.StatusOK, gin.H{"bookings": cards})
}

func findRoom(rooms []models.Room, id int64) (models.Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return models.Room{}, false
}
