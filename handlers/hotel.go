package handlers

import (
	"net/http"

	"luxstay/models"
	"luxstay/services/availability"
	"luxstay/services/hotel"
	"luxstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// roomPreviewSize is how many room names a listing card shows.
const roomPreviewSize = 3

// HotelHandler serves the listing, the detail view and its availability
// state.
type HotelHandler struct {
	Hotels hotel.HotelService
	Views  *availability.Registry
}

func NewHotelHandler(hotels hotel.HotelService, views *availability.Registry) *HotelHandler {
	return &HotelHandler{Hotels: hotels, Views: views}
}

type hotelCard struct {
	models.Hotel
	CityLabel string   `json:"cityName"`
	FromPrice float64  `json:"minPrice"`
	RoomNames []string `json:"roomNames"`
	MoreRooms int      `json:"moreRooms"`
}

// ListHotelsHandler is the main view: GET /main?search=&sort=.
func (h *HotelHandler) ListHotelsHandler(c *gin.Context) {
	hotels, err := h.Hotels.List(c.Request.Context(), c.Query("search"), c.DefaultQuery("sort", hotel.SortName))
	if err != nil {
		respondError(c, err, http.StatusBadGateway, hotel.MsgListError)
		return
	}
	cards := make([]hotelCard, 0, len(hotels))
	for _, ht := range hotels {
		names, more := ht.RoomPreview(roomPreviewSize)
		cards = append(cards, hotelCard{
			Hotel:     ht,
			CityLabel: ht.CityName(),
			FromPrice: ht.MinPrice(),
			RoomNames: names,
			MoreRooms: more,
		})
	}
	c.JSON(http.StatusOK, gin.H{"hotels": cards})
}

// GetHotelHandler returns the hotel and the current availability view.
func (h *HotelHandler) GetHotelHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ht, err := h.Hotels.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, http.StatusBadGateway, hotel.MsgDetailError)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hotel":        ht,
		"availability": h.Views.View(id),
	})
}

// EditStayHandler applies an edit of the stay form. The availability query
// itself runs after the quiet period; poll RoomsHandler for the result.
func (h *HotelHandler) EditStayHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var form models.StayForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid stay", err.Error())
		return
	}
	if err := utils.Validator().Struct(form); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid stay", err.Error())
		return
	}

	ctrl := h.Views.Get(id)
	ctrl.Edit(form)
	getLogger(c).Debug("Stay edited",
		zap.Int64("hotelID", id),
		zap.String("checkIn", form.CheckIn),
		zap.String("checkOut", form.CheckOut))
	c.JSON(http.StatusAccepted, gin.H{"availability": ctrl.View()})
}

// RoomsHandler returns the current availability view.
func (h *HotelHandler) RoomsHandler(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view := h.Views.View(id)
	if view.SessionInvalid {
		utils.SessionExpired(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": view})
}
