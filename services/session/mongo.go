package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"luxstay/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const sessionCollection = "sessions"

type sessionDocument struct {
	ID           string    `bson:"_id"`
	User         string    `bson:"user,omitempty"`
	AccessToken  string    `bson:"access_token"`
	RefreshToken string    `bson:"refresh_token,omitempty"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// MongoStore keeps the session as one document replaced on every save.
type MongoStore struct {
	coll   *mongo.Collection
	key    string
	logger *zap.Logger
}

func NewMongoStore(db *mongo.Database, key string, logger *zap.Logger) *MongoStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoStore{coll: db.Collection(sessionCollection), key: key, logger: logger}
}

func (m *MongoStore) Load(ctx context.Context) (models.Session, error) {
	var doc sessionDocument
	err := m.coll.FindOne(ctx, bson.M{"_id": m.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return m.fromDocument(doc), nil
}

func (m *MongoStore) fromDocument(doc sessionDocument) models.Session {
	s := models.Session{AccessToken: doc.AccessToken, RefreshToken: doc.RefreshToken}
	if doc.User != "" {
		var u models.User
		if err := json.Unmarshal([]byte(doc.User), &u); err != nil {
			m.logger.Warn("Discarding malformed session", zap.String("key", m.key), zap.Error(err))
			return models.Session{}
		}
		s.User = &u
	}
	return s
}

func (m *MongoStore) Save(ctx context.Context, s models.Session) error {
	if err := checkSave(s); err != nil {
		return err
	}
	doc := sessionDocument{
		ID:           m.key,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UpdatedAt:    time.Now().UTC(),
	}
	if s.User != nil {
		data, err := json.Marshal(s.User)
		if err != nil {
			return fmt.Errorf("failed to marshal session user: %w", err)
		}
		doc.User = string(data)
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := m.coll.ReplaceOne(ctx, bson.M{"_id": m.key}, doc, opts); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (m *MongoStore) Clear(ctx context.Context) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": m.key}); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Rotate filters on the refresh token so the update only matches the
// session the tokens were issued for.
func (m *MongoStore) Rotate(ctx context.Context, refreshToken string, next models.TokenPair) (models.Session, bool, error) {
	if refreshToken == "" || next.AccessToken == "" {
		current, err := m.Load(ctx)
		return current, false, err
	}
	set := bson.M{"access_token": next.AccessToken, "updated_at": time.Now().UTC()}
	if next.RefreshToken != "" {
		set["refresh_token"] = next.RefreshToken
	}
	filter := bson.M{"_id": m.key, "refresh_token": refreshToken, "access_token": bson.M{"$ne": ""}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc sessionDocument
	err := m.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, lerr := m.Load(ctx)
		return current, false, lerr
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("failed to rotate session tokens: %w", err)
	}
	return m.fromDocument(doc), true, nil
}
