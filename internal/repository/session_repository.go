package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/cache"
)

type sessionDocument struct {
	SessionID string    `bson:"session_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// SessionRepository is a cache.Store backed by MongoDB. Expiry is handled by
// the TTL index on updated_at.
type SessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(collection *mongo.Collection) *SessionRepository {
	return &SessionRepository{collection: collection}
}

func (r *SessionRepository) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var doc sessionDocument
	err := r.collection.FindOne(ctx, bson.M{"session_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, cache.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (r *SessionRepository) Put(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	update := bson.M{"$set": sessionDocument{
		SessionID: key,
		Data:      value,
		UpdatedAt: time.Now().UTC(),
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"session_id": key}, update, options.Update().SetUpsert(true))
	return err
}

func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"session_id": key})
	return err
}
