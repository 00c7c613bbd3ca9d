package handlers

import (
	"luxstay/services/auth"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Gate *auth.Gate

	// Session endpoints
	LoginHandler   gin.HandlerFunc
	LogoutHandler  gin.HandlerFunc
	SessionHandler gin.HandlerFunc

	// Catalog endpoints
	ListHotelsHandler gin.HandlerFunc
	GetHotelHandler   gin.HandlerFunc
	EditStayHandler   gin.HandlerFunc
	RoomsHandler      gin.HandlerFunc

	// Booking endpoints
	InitiatePaymentHandler gin.HandlerFunc
	ListBookingsHandler    gin.HandlerFunc
}
