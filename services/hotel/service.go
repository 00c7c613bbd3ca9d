// Package hotel reads the public hotel catalog and queries room
// availability for a stay.
package hotel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"luxstay/models"
	"luxstay/services/api"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	MsgListRejected   = "Failed to load hotels."
	MsgListError      = "Something went wrong while fetching hotels."
	MsgDetailRejected = "Failed to load hotel details."
	MsgDetailError    = "Error loading hotel details."
)

// Sort keys accepted by List.
const (
	SortName   = "name"
	SortRating = "rating"
	SortPrice  = "price"
)

// HotelService defines the catalog operations.
type HotelService interface {
	List(ctx context.Context, search, sortBy string) ([]models.Hotel, error)
	Get(ctx context.Context, id int64) (*models.Hotel, error)
	QueryRooms(ctx context.Context, hotelID int64, q models.AvailabilityQuery) ([]models.Room, error)
}

// DefaultHotelService talks to the remote API.
type DefaultHotelService struct {
	Client *api.Client
}

func NewHotelService(client *api.Client) *DefaultHotelService {
	return &DefaultHotelService{Client: client}
}

// List fetches every hotel, keeps those whose name or city contains search
// (case-insensitive) and orders them by sortBy. An unknown sort key keeps
// the server order.
func (s *DefaultHotelService) List(ctx context.Context, search, sortBy string) ([]models.Hotel, error) {
	req, err := api.NewRequest(http.MethodGet, "/guest/hotels", nil)
	if err != nil {
		return nil, err
	}
	var hotels []models.Hotel
	if err := s.Client.DoEnvelope(ctx, req, &hotels); err != nil {
		var rejected *api.RejectedError
		if errors.As(err, &rejected) {
			return nil, &api.UserError{Message: MsgListRejected, Err: err}
		}
		return nil, api.Fail(err, MsgListError)
	}
	hotels = Filter(hotels, search)
	Sort(hotels, sortBy)
	return hotels, nil
}

// Get fetches one hotel with its rooms and images.
func (s *DefaultHotelService) Get(ctx context.Context, id int64) (*models.Hotel, error) {
	req, err := api.NewRequest(http.MethodGet, fmt.Sprintf("/guest/hotel/%d", id), nil)
	if err != nil {
		return nil, err
	}
	req.Named("/guest/hotel/{id}")
	var h models.Hotel
	if err := s.Client.DoEnvelope(ctx, req, &h); err != nil {
		var rejected *api.RejectedError
		if errors.As(err, &rejected) {
			return nil, &api.UserError{Message: MsgDetailRejected, Err: err}
		}
		return nil, api.Fail(err, MsgDetailError)
	}
	return &h, nil
}

// QueryRooms asks which rooms of the hotel can host the stay. Errors are
// returned unwrapped; the availability controller decides what to show.
func (s *DefaultHotelService) QueryRooms(ctx context.Context, hotelID int64, q models.AvailabilityQuery) ([]models.Room, error) {
	req, err := api.NewRequest(http.MethodPost, fmt.Sprintf("/book/hotel/%d", hotelID), q)
	if err != nil {
		return nil, err
	}
	req.Authenticated().Named("/book/hotel/{id}")
	var data models.AvailabilityData
	if err := s.Client.DoEnvelope(ctx, req, &data); err != nil {
		return nil, err
	}
	return data.Rooms, nil
}

// Filter keeps hotels whose name or city name contains search, ignoring
// case. An empty search keeps everything.
func Filter(hotels []models.Hotel, search string) []models.Hotel {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return hotels
	}
	out := make([]models.Hotel, 0, len(hotels))
	for _, h := range hotels {
		if strings.Contains(strings.ToLower(h.Name), needle) ||
			strings.Contains(strings.ToLower(h.CityName()), needle) {
			out = append(out, h)
		}
	}
	return out
}

// Sort orders hotels in place. Names compare with English collation,
// ratings descending, prices by the first listed room ascending with a
// missing room counting as 0.
func Sort(hotels []models.Hotel, sortBy string) {
	switch sortBy {
	case SortName:
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(hotels, func(i, j int) bool {
			return c.CompareString(hotels[i].Name, hotels[j].Name) < 0
		})
	case SortRating:
		sort.SliceStable(hotels, func(i, j int) bool {
			return hotels[i].AverageRating > hotels[j].AverageRating
		})
	case SortPrice:
		sort.SliceStable(hotels, func(i, j int) bool {
			return firstRoomPrice(hotels[i]) < firstRoomPrice(hotels[j])
		})
	}
}

func firstRoomPrice(h models.Hotel) float64 {
	if len(h.Rooms) == 0 {
		return 0
	}
	return h.Rooms[0].Price
}
