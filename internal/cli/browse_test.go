package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"testing"

	"github.com/matzehuels/netdraw/pkg/pipeline"
	"github.com/matzehuels/netdraw/pkg/session"
	"github.com/matzehuels/netdraw/pkg/view"
)

func TestBrowseSaveAndResume(t *testing.T) {
	ctx := context.Background()
	doc := writeDocument(t)
	c := New(io.Discard, LogInfo)
	opts := pipeline.Options{Path: doc, Partition: view.AllPartitions}

	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	s, sess, err := c.browseView(ctx, opts, browseFlags{noCache: true}, store)
	if err != nil {
		t.Fatalf("browseView() error: %v", err)
	}
	if sess != nil {
		t.Error("a fresh view should not have a session")
	}
	if _, err := s.Expand("agg"); err != nil {
		t.Fatal(err)
	}
	saved, err := saveBrowseSession(ctx, store, nil, s)
	if err != nil {
		t.Fatalf("saveBrowseSession() error: %v", err)
	}

	resumed, got, err := c.browseView(ctx, opts, browseFlags{noCache: true, resume: saved.ID}, store)
	if err != nil {
		t.Fatalf("browseView(resume) error: %v", err)
	}
	if got == nil || got.ID != saved.ID {
		t.Errorf("resumed session = %+v, want id %s", got, saved.ID)
	}
	nodes := resumed.ShownNodes()
	slices.Sort(nodes)
	if want := []string{"core", "leaf", "s1", "s2"}; !slices.Equal(nodes, want) {
		t.Errorf("resumed nodes = %v, want %v", nodes, want)
	}
}

func TestBrowseResumeErrors(t *testing.T) {
	ctx := context.Background()
	doc := writeDocument(t)
	c := New(io.Discard, LogInfo)
	opts := pipeline.Options{Path: doc, Partition: view.AllPartitions}

	store, err := session.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	missing := session.New(view.Snapshot{}, session.DefaultTTL).ID
	if _, _, err := c.browseView(ctx, opts, browseFlags{noCache: true, resume: missing}, store); err == nil {
		t.Error("resuming an unknown session should fail")
	}

	s, err := c.openView(ctx, opts, true)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := saveBrowseSession(ctx, store, nil, s)
	if err != nil {
		t.Fatal(err)
	}

	// A different document version under the same path.
	data, err := os.ReadFile(doc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(doc, append(data, '\n'), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.browseView(ctx, opts, browseFlags{noCache: true, resume: saved.ID}, store); err == nil {
		t.Error("resuming against a changed document should fail")
	}
}

func TestBrowseNeedsTerminal(t *testing.T) {
	if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		t.Skip("running on a terminal")
	}
	if _, err := run(t, "browse", writeDocument(t)); !errors.Is(err, errNoTerminal) {
		t.Errorf("browse error = %v, want %v", err, errNoTerminal)
	}
}
