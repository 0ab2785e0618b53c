// Package mongo stores topology documents in MongoDB.
//
// Each document is one record in a collection, keyed by content hash:
//
//	{_id: <sha256>, name, nodes, edges, size, created_at, data: <bytes>}
//
// List projects the data field away.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/netdraw/pkg/storage"
)

// Config selects the server and collection.
type Config struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// DefaultCollection is used when Config.Collection is empty.
const DefaultCollection = "documents"

// connectTimeout bounds the initial ping.
const connectTimeout = 10 * time.Second

// Store is a [storage.DocumentStore] backed by a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, fmt.Errorf("mongo: uri and database are required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return New(client, cfg.Database, cfg.Collection), nil
}

// New wraps a connected client.
func New(client *mongo.Client, database, collection string) *Store {
	return &Store{client: client, coll: client.Database(database).Collection(collection)}
}

func (s *Store) Put(ctx context.Context, name string, data []byte) (storage.Info, error) {
	_, info, err := storage.Prepare(name, data)
	if err != nil {
		return storage.Info{}, err
	}

	_, err = s.coll.InsertOne(ctx, storage.Document{Info: info, Data: data})
	if mongo.IsDuplicateKeyError(err) {
		existing, err := s.Get(ctx, info.Hash)
		if err != nil {
			return storage.Info{}, err
		}
		return existing.Info, nil
	}
	if err != nil {
		return storage.Info{}, fmt.Errorf("mongo put %s: %w", info.Hash, err)
	}
	return info, nil
}

func (s *Store) Get(ctx context.Context, hash string) (*storage.Document, error) {
	var d storage.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": hash}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get %s: %w", hash, err)
	}
	return &d, nil
}

func (s *Store) List(ctx context.Context) ([]storage.Info, error) {
	opts := options.Find().
		SetProjection(bson.M{"data": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	defer cur.Close(ctx)

	out := []storage.Info{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	return out, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ storage.DocumentStore = (*Store)(nil)
