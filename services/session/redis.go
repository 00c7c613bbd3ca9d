package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"luxstay/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Hash fields of a persisted session.
const (
	FieldUser         = "user"
	FieldAccessToken  = "access_token"
	FieldRefreshToken = "refresh_token"
)

// RedisStore keeps the session in a Redis hash. Save replaces the whole
// hash inside MULTI/EXEC so no reader sees a partial write.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, key string, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

func (r *RedisStore) Load(ctx context.Context) (models.Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return r.decode(fields), nil
}

func (r *RedisStore) decode(fields map[string]string) models.Session {
	if len(fields) == 0 {
		return models.Session{}
	}
	s := models.Session{
		AccessToken:  fields[FieldAccessToken],
		RefreshToken: fields[FieldRefreshToken],
	}
	if raw, ok := fields[FieldUser]; ok && raw != "" {
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			r.logger.Warn("Discarding malformed session", zap.String("key", r.key), zap.Error(err))
			return models.Session{}
		}
		s.User = &u
	}
	return s
}

func (r *RedisStore) Save(ctx context.Context, s models.Session) error {
	if err := checkSave(s); err != nil {
		return err
	}
	values := map[string]interface{}{FieldAccessToken: s.AccessToken}
	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("failed to marshal session user: %w", err)
		}
		values[FieldUser] = string(data)
	}
	if s.RefreshToken != "" {
		values[FieldRefreshToken] = s.RefreshToken
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		pipe.HSet(ctx, r.key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Rotate watches the session key so a Clear or Save landing between the
// read and the write aborts the swap.
func (r *RedisStore) Rotate(ctx context.Context, refreshToken string, next models.TokenPair) (models.Session, bool, error) {
	var (
		result models.Session
		ok     bool
	)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, r.key).Result()
		if err != nil {
			return err
		}
		current := r.decode(fields)
		result, ok = rotated(current, refreshToken, next)
		if !ok {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.key, FieldAccessToken, result.AccessToken, FieldRefreshToken, result.RefreshToken)
			return nil
		})
		return err
	}, r.key)
	if errors.Is(err, redis.TxFailedErr) {
		current, lerr := r.Load(ctx)
		return current, false, lerr
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("failed to rotate session tokens: %w", err)
	}
	return result, ok, nil
}
