package auth

import (
	"context"
	"sync"
	"time"

	"luxstay/models"
	"luxstay/services/session"

	"go.uber.org/zap"
)

// GateState is the outcome of evaluating the session for a protected view.
type GateState string

const (
	GateLoading         GateState = "loading"
	GateAuthenticated   GateState = "authenticated"
	GateUnauthenticated GateState = "unauthenticated"
)

const defaultLoadTimeout = 2 * time.Second

// Gate evaluates the session store before a protected view mounts.
type Gate struct {
	store       session.Store
	logger      *zap.Logger
	loadTimeout time.Duration
}

func NewGate(store session.Store, logger *zap.Logger, loadTimeout time.Duration) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}
	return &Gate{store: store, logger: logger, loadTimeout: loadTimeout}
}

// Mount is one evaluation of the gate. It leaves the loading state at most
// once.
type Mount struct {
	once sync.Once
	done chan struct{}

	mu    sync.RWMutex
	state GateState
	sess  models.Session
}

// Mount loads the session and waits until the load completes, the load
// timeout elapses or ctx ends. In the latter two cases the mount is still
// loading.
func (g *Gate) Mount(ctx context.Context) *Mount {
	m := &Mount{state: GateLoading, done: make(chan struct{})}
	ctx, cancel := context.WithTimeout(ctx, g.loadTimeout)

	go func() {
		defer cancel()
		sess, err := g.store.Load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			g.logger.Warn("Session store unavailable, treating guest as signed out", zap.Error(err))
		}
		m.resolve(sess)
	}()

	select {
	case <-m.done:
	case <-ctx.Done():
	}
	return m
}

func (m *Mount) resolve(sess models.Session) {
	m.once.Do(func() {
		m.mu.Lock()
		m.sess = sess
		if sess.Authenticated() {
			m.state = GateAuthenticated
		} else {
			m.state = GateUnauthenticated
		}
		m.mu.Unlock()
		close(m.done)
	})
}

// State is the current gate state.
func (m *Mount) State() GateState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Session is the loaded session; empty until the mount resolves.
func (m *Mount) Session() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess
}

// Done is closed once the mount leaves the loading state.
func (m *Mount) Done() <-chan struct{} {
	return m.done
}
