package session

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/netdraw/pkg/color"
	"github.com/matzehuels/netdraw/pkg/view"
)

func snapshot() view.Snapshot {
	return view.Snapshot{
		DocumentHash: "abc",
		Partition:    view.AllPartitions,
		ColorMode:    color.Hwloc,
		Log: []view.Op{
			{Kind: view.OpDraw, Partition: view.AllPartitions},
			{Kind: view.OpColor, Mode: color.Hwloc},
			{Kind: view.OpExpand, ID: "agg", Partition: view.AllPartitions},
		},
		SelectedNodes: []string{"s1"},
	}
}

func TestNew(t *testing.T) {
	sess := New(snapshot(), time.Hour)

	if err := ValidateID(sess.ID); err != nil {
		t.Errorf("ValidateID(%q) error = %v", sess.ID, err)
	}
	if sess.DocumentHash != "abc" {
		t.Errorf("DocumentHash = %q, want abc", sess.DocumentHash)
	}
	if sess.IsExpired() {
		t.Error("new session is expired")
	}
	if New(snapshot(), time.Hour).ID == sess.ID {
		t.Error("New() reused an id")
	}
}

func TestUpdate(t *testing.T) {
	sess := New(snapshot(), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if !sess.IsExpired() {
		t.Fatal("session did not expire")
	}

	snap := snapshot()
	snap.Log = append(snap.Log, view.Op{Kind: view.OpCollapse, ID: "agg"})
	sess.Update(snap, time.Hour)
	if sess.IsExpired() {
		t.Error("Update() did not extend the expiry")
	}
	if len(sess.Snapshot.Log) != 4 {
		t.Errorf("len(Log) = %d, want 4", len(sess.Snapshot.Log))
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"7d444840-9dc0-11d1-b245-5ffdce74fad2", false},
		{"", true},
		{"../../etc/passwd", true},
		{"local-session", true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if err := ValidateID(tt.id); (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

// exercise runs the shared Store contract against st.
func exercise(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	sess := New(snapshot(), time.Hour)
	if got, err := st.Get(ctx, sess.ID); err != nil || got != nil {
		t.Fatalf("Get(absent) = %v, %v, want nil, nil", got, err)
	}
	if _, err := MustGet(ctx, st, sess.ID); err != ErrNotFound {
		t.Errorf("MustGet(absent) error = %v, want %v", err, ErrNotFound)
	}

	if err := st.Set(ctx, sess); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := MustGet(ctx, st, sess.ID)
	if err != nil {
		t.Fatalf("MustGet() error = %v", err)
	}
	if got.DocumentHash != "abc" || len(got.Snapshot.Log) != 3 || got.Snapshot.ColorMode != color.Hwloc {
		t.Errorf("Get() = %+v", got)
	}
	if !slices.Equal(got.Snapshot.Expansions(), []string{"agg"}) {
		t.Errorf("Expansions() = %v, want [agg]", got.Snapshot.Expansions())
	}

	if err := st.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ := st.Get(ctx, sess.ID); got != nil {
		t.Error("Get() after Delete() returned a session")
	}
	if err := st.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore()
	exercise(t, st)

	ctx := context.Background()
	old := New(snapshot(), time.Nanosecond)
	if err := st.Set(ctx, old); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if err := st.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if st.Len() != 0 {
		t.Errorf("Len() after Cleanup() = %d, want 0", st.Len())
	}
}

func TestFileStore(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	exercise(t, st)

	if _, err := st.Get(context.Background(), "../escape"); err != ErrInvalidID {
		t.Errorf("Get(../escape) error = %v, want %v", err, ErrInvalidID)
	}
}

func TestFileStoreExpired(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	sess := New(snapshot(), time.Nanosecond)
	if err := st.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if got, err := st.Get(ctx, sess.ID); err != nil || got != nil {
		t.Errorf("Get(expired) = %v, %v, want nil, nil", got, err)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	st := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	defer st.Close()

	exercise(t, st)

	ctx := context.Background()
	sess := New(snapshot(), time.Minute)
	if err := st.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("test:session:" + sess.ID) {
		t.Errorf("key test:session:%s not set", sess.ID)
	}
	mr.FastForward(2 * time.Minute)
	if got, _ := st.Get(ctx, sess.ID); got != nil {
		t.Error("Get() returned a session past its redis ttl")
	}
}

func TestFileStoreCleanup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	live := New(snapshot(), time.Hour)
	dead := New(snapshot(), time.Nanosecond)
	for _, sess := range []*Session{live, dead} {
		if err := st.Set(ctx, sess); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	if err := st.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	want := []string{live.ID + ".json", "notes.txt"}
	slices.Sort(want)
	if !slices.Equal(names, want) {
		t.Errorf("files after Cleanup() = %v, want %v", names, want)
	}
	if st.Dir() != dir {
		t.Errorf("Dir() = %s, want %s", st.Dir(), dir)
	}
}
