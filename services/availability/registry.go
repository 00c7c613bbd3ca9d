package availability

import "sync"

// Registry keeps one controller per hotel view. Controllers are created by
// the first stay edit and all closed together on logout.
type Registry struct {
	querier Querier
	opts    []Option

	mu          sync.Mutex
	controllers map[int64]*Controller
}

func NewRegistry(querier Querier, opts ...Option) *Registry {
	return &Registry{
		querier:     querier,
		opts:        opts,
		controllers: make(map[int64]*Controller),
	}
}

// Get returns the controller for hotelID, creating it when needed.
func (r *Registry) Get(hotelID int64) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[hotelID]
	if !ok {
		c = NewController(hotelID, r.querier, r.opts...)
		r.controllers[hotelID] = c
	}
	return c
}

// Lookup returns the controller for hotelID without creating one.
func (r *Registry) Lookup(hotelID int64) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[hotelID]
	return c, ok
}

// View returns the availability view of hotelID. A hotel nobody has edited
// a stay for reads as the initial incomplete view and gets no controller.
func (r *Registry) View(hotelID int64) View {
	if c, ok := r.Lookup(hotelID); ok {
		return c.View()
	}
	return View{HotelID: hotelID, State: StateIncomplete}
}

// Len is the number of open controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// CloseAll closes and forgets every controller.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	controllers := r.controllers
	r.controllers = make(map[int64]*Controller)
	r.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
