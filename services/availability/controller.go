// Package availability turns a guest's edits of the stay form into
// debounced room availability queries for one hotel.
package availability

import (
	"context"
	"errors"
	"sync"
	"time"

	"luxstay/models"
	"luxstay/services/api"

	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period between the last edit and the query.
const DefaultDebounce = 500 * time.Millisecond

const (
	MsgNoRooms    = "No rooms available for selected dates."
	MsgFetchError = "Error fetching room availability."
)

// State is the single display state of a controller.
type State string

const (
	StateIncomplete State = "incomplete"
	StateLoading    State = "loading"
	StateError      State = "error"
	StateEmpty      State = "empty"
	StatePopulated  State = "populated"
)

// Querier fetches the rooms available for a stay.
type Querier interface {
	QueryRooms(ctx context.Context, hotelID int64, q models.AvailabilityQuery) ([]models.Room, error)
}

// View is a snapshot of a controller.
type View struct {
	HotelID        int64           `json:"hotelId"`
	Form           models.StayForm `json:"form"`
	State          State           `json:"state"`
	Rooms          []models.Room   `json:"rooms"`
	Error          string          `json:"error,omitempty"`
	SessionInvalid bool            `json:"sessionInvalid,omitempty"`
	Nights         int             `json:"nights"`
	// Version increases with every change so observers can drop stale
	// snapshots delivered out of order.
	Version uint64 `json:"version"`
}

type Option func(*Controller)

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delay = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// Controller owns the availability state of one hotel view.
type Controller struct {
	hotelID int64
	querier Querier
	sched   Scheduler
	delay   time.Duration
	logger  *zap.Logger
	metrics *Metrics

	mu             sync.Mutex
	form           models.StayForm
	state          State
	rooms          []models.Room
	errMsg         string
	sessionInvalid bool
	version        uint64

	timer     Timer
	pending   uint64 // identifies the scheduled timer; a stale callback sees a newer value
	issued    uint64 // generation of the most recently issued query
	cancel    context.CancelFunc
	closed    bool
	listeners []func(View)
}

func NewController(hotelID int64, querier Querier, opts ...Option) *Controller {
	c := &Controller{
		hotelID: hotelID,
		querier: querier,
		sched:   RealScheduler,
		delay:   DefaultDebounce,
		logger:  zap.NewNop(),
		metrics: NewMetrics(nil),
		state:   StateIncomplete,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers fn to receive a snapshot after every state change.
// fn runs outside the controller's lock.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.listeners = append(c.listeners, fn)
	}
}

// View returns the current snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Edit applies the full stay form. With a date missing the rooms are
// cleared at once and nothing is queried; otherwise a query is scheduled
// after the quiet period, restarting any pending one.
func (c *Controller) Edit(form models.StayForm) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.form = form
	c.stopTimer()

	if !form.Complete() {
		c.supersede()
		c.rooms = nil
		c.errMsg = ""
		c.sessionInvalid = false
		c.state = StateIncomplete
		c.notifyLocked()
		return
	}

	c.pending++
	token := c.pending
	c.timer = c.sched.AfterFunc(c.delay, func() { c.fire(token) })
	c.version++
	view, listeners := c.snapshot(), c.listeners
	c.mu.Unlock()
	deliver(listeners, view)
}

// Close stops the timer and cancels in-flight work. Later edits are
// ignored and late responses discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimer()
	c.supersede()
	c.listeners = nil
}

func (c *Controller) fire(token uint64) {
	c.mu.Lock()
	if c.closed || token != c.pending {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	q, ok := c.form.Query()
	if !ok {
		c.mu.Unlock()
		return
	}

	c.supersede()
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	gen := c.issued

	c.state = StateLoading
	c.errMsg = ""
	c.sessionInvalid = false
	c.notifyLocked()

	c.logger.Debug("Querying availability",
		zap.Int64("hotelID", c.hotelID),
		zap.Uint64("generation", gen),
		zap.String("checkIn", q.CheckIn),
		zap.String("checkOut", q.CheckOut))
	go c.run(ctx, gen, q)
}

func (c *Controller) run(ctx context.Context, gen uint64, q models.AvailabilityQuery) {
	rooms, err := c.querier.QueryRooms(ctx, c.hotelID, q)

	c.mu.Lock()
	if c.closed || gen != c.issued {
		c.mu.Unlock()
		c.metrics.superseded.Inc()
		c.logger.Debug("Discarding superseded availability response",
			zap.Int64("hotelID", c.hotelID), zap.Uint64("generation", gen))
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	var rejected *api.RejectedError
	switch {
	case errors.Is(err, api.ErrSessionInvalid):
		c.fail(api.UserMessage(err, MsgFetchError))
		c.sessionInvalid = true
		c.metrics.queries.WithLabelValues("session_invalid").Inc()
	case errors.As(err, &rejected):
		msg := rejected.Message
		if msg == "" {
			msg = MsgNoRooms
		}
		c.fail(msg)
		c.metrics.queries.WithLabelValues("rejected").Inc()
	case err != nil:
		c.logger.Warn("Availability query failed", zap.Int64("hotelID", c.hotelID), zap.Error(err))
		c.fail(MsgFetchError)
		c.metrics.queries.WithLabelValues("error").Inc()
	case len(rooms) == 0:
		c.rooms = nil
		c.state = StateEmpty
		c.metrics.queries.WithLabelValues("empty").Inc()
	default:
		c.rooms = rooms
		c.state = StatePopulated
		c.metrics.queries.WithLabelValues("populated").Inc()
	}
	c.notifyLocked()
}

// fail clears the rooms and keeps the dates.
func (c *Controller) fail(msg string) {
	c.rooms = nil
	c.errMsg = msg
	c.state = StateError
}

// supersede invalidates whatever query is in flight.
func (c *Controller) supersede() {
	c.issued++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending++
}

// notifyLocked bumps the version, releases the lock and delivers the
// snapshot.
func (c *Controller) notifyLocked() {
	c.version++
	view, listeners := c.snapshot(), c.listeners
	c.mu.Unlock()
	deliver(listeners, view)
}

func (c *Controller) snapshot() View {
	v := View{
		HotelID:        c.hotelID,
		Form:           c.form,
		State:          c.state,
		Error:          c.errMsg,
		SessionInvalid: c.sessionInvalid,
		Version:        c.version,
	}
	if len(c.rooms) > 0 {
		v.Rooms = append([]models.Room(nil), c.rooms...)
	}
	if q, ok := c.form.Query(); ok {
		v.Nights = q.Nights()
	}
	return v
}

func deliver(listeners []func(View), v View) {
	for _, fn := range listeners {
		fn(v)
	}
}
