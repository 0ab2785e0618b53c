package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/netdraw/pkg/storage"
)

func TestRecordShape(t *testing.T) {
	rec := storage.Document{
		Info: storage.Info{Hash: "abc", Name: "lab.json", Nodes: 2, Edges: 2, Size: 4, CreatedAt: time.Unix(0, 0).UTC()},
		Data: []byte("{}\n "),
	}
	raw, err := bson.Marshal(rec)
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}

	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"_id", "name", "nodes", "edges", "size", "created_at", "data"} {
		if _, ok := m[key]; !ok {
			t.Errorf("record missing %q: %v", key, m)
		}
	}
	if m["_id"] != "abc" {
		t.Errorf("_id = %v, want abc", m["_id"])
	}
}

func TestConnectConfig(t *testing.T) {
	if _, err := Connect(context.Background(), Config{}); err == nil {
		t.Error("Connect(empty config) succeeded")
	}
}

// TestStore runs against a real server when NETDRAW_MONGO_URI is set.
func TestStore(t *testing.T) {
	uri := os.Getenv("NETDRAW_MONGO_URI")
	if uri == "" {
		t.Skip("NETDRAW_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := Connect(ctx, Config{URI: uri, Database: "netdraw_test", Collection: "documents_" + time.Now().Format("150405")})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		s.Close()
	}()

	data := []byte(`{"type":"tree","partitions":[],"hwloctopos":[],"nodes":[],"edges":[],"links":[]}`)
	info, err := s.Put(ctx, "empty.json", data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Put(ctx, "again.json", data); err != nil {
		t.Fatalf("Put(again) error = %v", err)
	}

	got, err := s.Get(ctx, info.Hash)
	if err != nil || string(got.Data) != string(data) || got.Name != "empty.json" {
		t.Fatalf("Get() = %+v, %v", got, err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want %v", err, storage.ErrNotFound)
	}
	list, err := s.List(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("List() = %+v, %v", list, err)
	}
}
