// Package session persists the guest's credentials between runs.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"luxstay/config"
	"luxstay/database"
	"luxstay/models"
	"luxstay/utils"

	"go.uber.org/zap"
)

var (
	// ErrNoAccessToken is returned by Save for a session without an access
	// token. Use Clear to drop credentials.
	ErrNoAccessToken = errors.New("session: access token is required")
	// ErrUnknownBackend is returned by Open for an unsupported SESSION_BACKEND.
	ErrUnknownBackend = errors.New("session: unknown backend")
)

// Store is the only way components read or write session state.
//
// Load never fails on malformed persisted data; it returns the empty
// session instead. An error from Load means the backend itself could not be
// reached, and the returned session is empty.
type Store interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, s models.Session) error
	Clear(ctx context.Context) error
	// Rotate swaps in the tokens of next only while the stored session still
	// holds refreshToken, keeping the stored refresh token when next carries
	// none. It returns the session stored after the call and whether the
	// tokens were written. A cleared or replaced session is left untouched.
	Rotate(ctx context.Context, refreshToken string, next models.TokenPair) (models.Session, bool, error)
}

func checkSave(s models.Session) error {
	if s.AccessToken == "" {
		return ErrNoAccessToken
	}
	return nil
}

// rotated applies next to current when current still holds refreshToken.
func rotated(current models.Session, refreshToken string, next models.TokenPair) (models.Session, bool) {
	if current.AccessToken == "" || refreshToken == "" || current.RefreshToken != refreshToken || next.AccessToken == "" {
		return current, false
	}
	current.AccessToken = next.AccessToken
	if next.RefreshToken != "" {
		current.RefreshToken = next.RefreshToken
	}
	return current, true
}

// Open builds the store selected by cfg.SessionBackend.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, error) {
	switch strings.ToLower(cfg.SessionBackend) {
	case "", "file":
		return NewFileStore(cfg.SessionFile, cfg.SessionEncryptionKey, logger)
	case "memory":
		return NewMemoryStore(), nil
	case "redis":
		client, err := utils.GetSessionCacheClient()
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.SessionKey, logger), nil
	case "mongo":
		client, err := database.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(client.Database(cfg.MongoDatabase), cfg.SessionKey, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.SessionBackend)
	}
}
