package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"luxstay/models"
	"luxstay/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingStore struct {
	session.Store
	release chan struct{}
}

func (b *blockingStore) Load(ctx context.Context) (models.Session, error) {
	select {
	case <-b.release:
		return models.Session{AccessToken: "A1"}, nil
	case <-ctx.Done():
		return models.Session{}, ctx.Err()
	}
}

type failingStore struct{ session.Store }

func (failingStore) Load(context.Context) (models.Session, error) {
	return models.Session{}, errors.New("connection refused")
}

func TestGateStates(t *testing.T) {
	store := session.NewMemoryStore()
	gate := NewGate(store, nil, time.Second)

	m := gate.Mount(context.Background())
	assert.Equal(t, GateUnauthenticated, m.State())

	require.NoError(t, store.Save(context.Background(), models.Session{User: &models.User{ID: 7}, AccessToken: "A1"}))
	m = gate.Mount(context.Background())
	assert.Equal(t, GateAuthenticated, m.State())
	assert.Equal(t, int64(7), m.Session().User.ID)
}

func TestGateRequiresAccessTokenNotJustUser(t *testing.T) {
	store := session.NewMemoryStore()
	gate := NewGate(store, nil, time.Second)
	m := &Mount{state: GateLoading, done: make(chan struct{})}
	m.resolve(models.Session{User: &models.User{ID: 7}})
	assert.Equal(t, GateUnauthenticated, m.State())
	assert.Equal(t, GateUnauthenticated, gate.Mount(context.Background()).State())
}

func TestGateStaysLoadingWhenLoadDoesNotComplete(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	defer close(store.release)
	gate := NewGate(store, nil, 20*time.Millisecond)

	m := gate.Mount(context.Background())
	assert.Equal(t, GateLoading, m.State())
	select {
	case <-m.Done():
		t.Fatal("mount resolved without a completed load")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, GateLoading, m.State())
}

func TestGateLeavesLoadingOnce(t *testing.T) {
	m := &Mount{state: GateLoading, done: make(chan struct{})}
	m.resolve(models.Session{AccessToken: "A1"})
	m.resolve(models.Session{})
	assert.Equal(t, GateAuthenticated, m.State())
	assert.Equal(t, "A1", m.Session().AccessToken)
}

func TestGateTreatsUnreachableStoreAsSignedOut(t *testing.T) {
	gate := NewGate(failingStore{}, nil, time.Second)
	assert.Equal(t, GateUnauthenticated, gate.Mount(context.Background()).State())
}
