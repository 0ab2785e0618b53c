// Package storage keeps uploaded topology documents.
//
// Documents are content-addressed: the key is the SHA-256 of the raw bytes
// (see [cache.Hash]), the same hash viewer sessions and cache keys refer to.
// Putting the same bytes twice is a no-op that returns the existing entry.
//
// [MemoryStore] is the default; package storage/mongo keeps documents in a
// MongoDB collection.
//
// [cache.Hash]: github.com/matzehuels/netdraw/pkg/cache.Hash
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/netdraw/pkg/cache"
	"github.com/matzehuels/netdraw/pkg/graph"
)

// ErrNotFound is returned when no document has the requested hash.
var ErrNotFound = errors.New("document not found")

// Info describes a stored document.
type Info struct {
	Hash      string    `json:"hash" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	Edges     int       `json:"edges" bson:"edges"`
	Size      int       `json:"size" bson:"size"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Document is a stored document with its raw bytes.
type Document struct {
	Info `bson:",inline"`
	Data []byte `json:"-" bson:"data"`
}

// DocumentStore is the interface for document storage backends.
type DocumentStore interface {
	// Put stores data under its content hash.
	Put(ctx context.Context, name string, data []byte) (Info, error)

	// Get returns the document with the given hash or [ErrNotFound].
	Get(ctx context.Context, hash string) (*Document, error)

	// List returns all documents, newest first.
	List(ctx context.Context) ([]Info, error)

	Close() error
}

// Prepare decodes data and returns the document together with the Info
// to store. Invalid documents are rejected with INVALID_DOCUMENT.
func Prepare(name string, data []byte) (*graph.Document, Info, error) {
	doc, err := graph.UnmarshalDocument(data)
	if err != nil {
		return nil, Info{}, err
	}
	return doc, Info{
		Hash:      cache.Hash(data),
		Name:      name,
		Nodes:     len(doc.Nodes),
		Edges:     len(doc.Edges),
		Size:      len(data),
		CreatedAt: time.Now().UTC(),
	}, nil
}
