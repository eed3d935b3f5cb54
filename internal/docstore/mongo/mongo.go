// Package mongo stores daybook documents in a MongoDB collection, one
// document per key.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"daybook/internal/docstore"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultDatabase   = "daybook"
	DefaultCollection = "documents"
)

// Collection is the subset of *mongo.Collection the store needs, so tests can fake the driver.
type Collection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

type document struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

var _ docstore.Store = (*Store)(nil)

type Store struct {
	coll   Collection
	client *mongo.Client
	now    func() time.Time
}

// New wraps an existing collection.
func New(coll Collection) *Store {
	return &Store{coll: coll, now: time.Now}
}

// Connect dials uri, pings the server and returns a store over database/collection.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	slog.DebugContext(ctx, "Attempting to connect to MongoDB", "database", database, "collection", collection)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	slog.InfoContext(ctx, "Connected to MongoDB document store", "database", database, "collection", collection)

	s := New(client.Database(database).Collection(collection))
	s.client = client
	return s, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find document %s: %w", key, err)
	}
	return []byte(doc.Value), true, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	doc := document{Key: key, Value: string(value), UpdatedAt: s.now().UTC()}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace document %s: %w", key, err)
	}
	return nil
}

// Close disconnects the client when the store owns it.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
