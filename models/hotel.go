package models

// City is the location a hotel belongs to.
type City struct {
	Name string `json:"name"`
}

// Image is a hotel picture.
type Image struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Room is a bookable room type.
type Room struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Price              float64 `json:"price"`
	Capacity           int     `json:"guest"`
	BedCount           int     `json:"beds"`
	BathCount          int     `json:"bath"`
	AvailableUnitCount int     `json:"available_units_count"`
}

// Hotel is a listing entry or a detail page payload.
type Hotel struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	AverageRating float64 `json:"average_rating"`
	City          *City   `json:"city,omitempty"`
	Images        []Image `json:"images,omitempty"`
	Rooms         []Room  `json:"rooms,omitempty"`
}

// CityName is empty when the hotel has no city.
func (h Hotel) CityName() string {
	if h.City == nil {
		return ""
	}
	return h.City.Name
}

// MinPrice is the cheapest nightly room price, 0 without rooms.
func (h Hotel) MinPrice() float64 {
	if len(h.Rooms) == 0 {
		return 0
	}
	min := h.Rooms[0].Price
	for _, r := range h.Rooms[1:] {
		if r.Price < min {
			min = r.Price
		}
	}
	return min
}

// RoomPreview returns up to n room names and how many were left out.
func (h Hotel) RoomPreview(n int) ([]string, int) {
	if n < 0 {
		n = 0
	}
	names := make([]string, 0, n)
	for i, r := range h.Rooms {
		if i >= n {
			break
		}
		names = append(names, r.Name)
	}
	return names, len(h.Rooms) - len(names)
}
