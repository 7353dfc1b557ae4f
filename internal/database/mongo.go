package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	ProductsCollection     = "products"
	CategoriesCollection   = "categories"
	CartSessionsCollection = "cart_sessions"
)

// Connect opens a client and pings the primary before returning.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the indexes reads depend on: the text index behind
// the "q" search, lookup indexes for category filtering and name resolution,
// and the expiring session index when carts live in MongoDB.
func EnsureIndexes(ctx context.Context, db *mongo.Database, cartTTL time.Duration) error {
	productIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "brand", Value: "text"}},
			Options: options.Index().SetName("product_text").
				SetWeights(bson.D{{Key: "name", Value: 10}, {Key: "brand", Value: 5}, {Key: "description", Value: 1}}),
		},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "is_deleted", Value: 1}}},
		{Keys: bson.D{{Key: "is_deleted", Value: 1}, {Key: "published", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := db.Collection(ProductsCollection).Indexes().CreateMany(ctx, productIndexes); err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}

	categoryIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "is_deleted", Value: 1}}},
	}
	if _, err := db.Collection(CategoriesCollection).Indexes().CreateMany(ctx, categoryIndexes); err != nil {
		return fmt.Errorf("create category indexes: %w", err)
	}

	sessionIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if cartTTL > 0 {
		sessionIndexes = append(sessionIndexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(cartTTL.Seconds())),
		})
	}
	if _, err := db.Collection(CartSessionsCollection).Indexes().CreateMany(ctx, sessionIndexes); err != nil {
		return fmt.Errorf("create cart session indexes: %w", err)
	}

	return nil
}
