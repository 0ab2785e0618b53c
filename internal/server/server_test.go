package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netdraw/pkg/buildinfo"
	apperr "github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/search"
	"github.com/matzehuels/netdraw/pkg/session"
	"github.com/matzehuels/netdraw/pkg/storage"
	"github.com/matzehuels/netdraw/pkg/topology/topotest"
	"github.com/matzehuels/netdraw/pkg/view"
)

func document(t *testing.T) []byte {
	t.Helper()
	b := topotest.New("compute", "io").
		Switch("core", 0, 1).
		Switch("agg", 0).
		Host("s1", 0).
		Host("s2", 0).
		Host("leaf", 1).
		Connect("core", "agg", 100).
		Connect("core", "leaf", 10).
		Connect("s1", "s2", 25).
		Aggregate("agg", "s1", "s2")
	data, err := graph.MarshalDocument(b.Document())
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestServer(t *testing.T, opts Options) (*Server, http.Handler) {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}
	s := New(opts)
	return s, s.Handler()
}

// do sends a request and decodes a JSON response into out when out is set.
func do(t *testing.T, h http.Handler, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) apperr.Code {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error.Code
}

func upload(t *testing.T, h http.Handler) storage.Info {
	t.Helper()
	var info storage.Info
	rec := do(t, h, http.MethodPost, "/api/documents?name=cluster.json", document(t), &info)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/documents = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	return info
}

func createSession(t *testing.T, h http.Handler, req createSessionRequest) sessionResponse {
	t.Helper()
	var resp sessionResponse
	rec := do(t, h, http.MethodPost, "/api/sessions", req, &resp)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/sessions = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body)
	}
	return resp
}

func nodeIDs(l graph.Layout) []string {
	ids := make([]string, len(l.Nodes))
	for i, n := range l.Nodes {
		ids[i] = n.ID
	}
	slices.Sort(ids)
	return ids
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t, Options{})
	var body map[string]any
	rec := do(t, h, http.MethodGet, "/healthz", nil, &body)
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("GET /healthz = %d %v, want 200 ok", rec.Code, body)
	}
	if build, _ := body["build"].(map[string]any); build["version"] != buildinfo.Version {
		t.Errorf("GET /healthz build = %v, want version %s", body["build"], buildinfo.Version)
	}
}

func TestMetricsRoute(t *testing.T) {
	_, h := newTestServer(t, Options{})
	if rec := do(t, h, http.MethodGet, "/metrics", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET /metrics without handler = %d, want 404", rec.Code)
	}

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "ok") })
	_, h = newTestServer(t, Options{Metrics: metrics})
	if rec := do(t, h, http.MethodGet, "/metrics", nil, nil); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET /metrics = %d %q, want 200 ok", rec.Code, rec.Body)
	}
}

func TestDocuments(t *testing.T) {
	_, h := newTestServer(t, Options{})
	info := upload(t, h)
	if info.Name != "cluster.json" || info.Nodes != 5 {
		t.Errorf("Put() = %+v, want name cluster.json with 5 nodes", info)
	}

	var list []storage.Info
	do(t, h, http.MethodGet, "/api/documents", nil, &list)
	if len(list) != 1 || list[0].Hash != info.Hash {
		t.Errorf("GET /api/documents = %v, want [%s]", list, info.Hash)
	}

	rec := do(t, h, http.MethodGet, "/api/documents/"+info.Hash, nil, nil)
	if rec.Code != http.StatusOK || !bytes.Equal(rec.Body.Bytes(), document(t)) {
		t.Errorf("GET /api/documents/{hash} = %d, want the uploaded bytes", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/documents/missing", nil, nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != apperr.ErrCodeDocumentNotFound {
		t.Errorf("GET unknown document = %d %s, want 404 %s", rec.Code, rec.Body, apperr.ErrCodeDocumentNotFound)
	}

	rec = do(t, h, http.MethodPost, "/api/documents", []byte("{not json"), nil)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != apperr.ErrCodeInvalidDocument {
		t.Errorf("POST invalid document = %d %s, want 400 %s", rec.Code, rec.Body, apperr.ErrCodeInvalidDocument)
	}
}

func TestSessionLifecycle(t *testing.T) {
	_, h := newTestServer(t, Options{})
	info := upload(t, h)

	created := createSession(t, h, createSessionRequest{Document: info.Hash})
	if got, want := nodeIDs(*created.Frame), []string{"agg", "core", "leaf"}; !slices.Equal(got, want) {
		t.Errorf("initial frame nodes = %v, want %v", got, want)
	}
	if len(created.Options.Partitions) != 3 || created.Options.Partitions[0].Value != view.AllPartitions {
		t.Errorf("Options.Partitions = %v, want All followed by 2 partitions", created.Options.Partitions)
	}
	base := "/api/sessions/" + created.Session.ID

	var expanded instructionsResponse
	if rec := do(t, h, http.MethodPost, base+"/expand", expandRequest{ID: "agg"}, &expanded); rec.Code != http.StatusOK {
		t.Fatalf("POST expand = %d: %s", rec.Code, rec.Body)
	}
	if len(expanded.Instructions) == 0 {
		t.Error("expand returned no instructions")
	}

	var frame graph.Layout
	do(t, h, http.MethodGet, base+"/frame", nil, &frame)
	if got, want := nodeIDs(frame), []string{"core", "leaf", "s1", "s2"}; !slices.Equal(got, want) {
		t.Errorf("frame after expand = %v, want %v", got, want)
	}

	var got sessionResponse
	do(t, h, http.MethodGet, base, nil, &got)
	if exp := got.Session.Snapshot.Expansions(); !slices.Equal(exp, []string{"agg"}) {
		t.Errorf("persisted Expansions() = %v, want [agg]", exp)
	}

	if rec := do(t, h, http.MethodPost, base+"/collapse", expandRequest{ID: "agg"}, nil); rec.Code != http.StatusOK {
		t.Fatalf("POST collapse = %d: %s", rec.Code, rec.Body)
	}
	do(t, h, http.MethodGet, base+"/frame", nil, &frame)
	if got, want := nodeIDs(frame), []string{"agg", "core", "leaf"}; !slices.Equal(got, want) {
		t.Errorf("frame after collapse = %v, want %v", got, want)
	}

	p := 1
	do(t, h, http.MethodPost, base+"/draw", drawRequest{Partition: &p, ColorMode: "partition"}, &frame)
	if got, want := nodeIDs(frame), []string{"core", "leaf"}; !slices.Equal(got, want) {
		t.Errorf("frame of partition io = %v, want %v", got, want)
	}

	if rec := do(t, h, http.MethodDelete, base, nil, nil); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE session = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if rec := do(t, h, http.MethodGet, base, nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted session = %d, want 404", rec.Code)
	}
}

func TestSessionCreateWithExpansions(t *testing.T) {
	_, h := newTestServer(t, Options{})
	info := upload(t, h)
	created := createSession(t, h, createSessionRequest{Document: info.Hash, Expand: []string{"agg"}})
	if got, want := nodeIDs(*created.Frame), []string{"core", "leaf", "s1", "s2"}; !slices.Equal(got, want) {
		t.Errorf("frame = %v, want %v", got, want)
	}
}

func TestSessionRehydrate(t *testing.T) {
	docs := storage.NewMemoryStore()
	sessions := session.NewMemoryStore()

	_, a := newTestServer(t, Options{Documents: docs, Sessions: sessions})
	info := upload(t, a)
	created := createSession(t, a, createSessionRequest{Document: info.Hash})
	base := "/api/sessions/" + created.Session.ID
	do(t, a, http.MethodPost, base+"/expand", expandRequest{ID: "agg"}, nil)

	_, b := newTestServer(t, Options{Documents: docs, Sessions: sessions})
	var frame graph.Layout
	if rec := do(t, b, http.MethodGet, base+"/frame", nil, &frame); rec.Code != http.StatusOK {
		t.Fatalf("GET frame on second server = %d: %s", rec.Code, rec.Body)
	}
	if got, want := nodeIDs(frame), []string{"core", "leaf", "s1", "s2"}; !slices.Equal(got, want) {
		t.Errorf("rehydrated frame = %v, want %v", got, want)
	}
}

func TestSessionErrors(t *testing.T) {
	_, h := newTestServer(t, Options{})
	info := upload(t, h)
	base := "/api/sessions/" + createSession(t, h, createSessionRequest{Document: info.Hash}).Session.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   apperr.Code
	}{
		{"invalid id", http.MethodGet, "/api/sessions/not-a-uuid", nil, 400, apperr.ErrCodeInvalidInput},
		{"unknown session", http.MethodGet, "/api/sessions/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil, 404, apperr.ErrCodeSessionNotFound},
		{"no document", http.MethodPost, "/api/sessions", createSessionRequest{}, 400, apperr.ErrCodeInvalidInput},
		{"unknown document", http.MethodPost, "/api/sessions", createSessionRequest{Document: "abc"}, 404, apperr.ErrCodeDocumentNotFound},
		{"bad color mode", http.MethodPost, "/api/sessions", createSessionRequest{Document: info.Hash, ColorMode: "rainbow"}, 400, apperr.ErrCodeInvalidColorMode},
		{"unknown field in body", http.MethodPost, base + "/expand", map[string]string{"node": "agg"}, 400, apperr.ErrCodeInvalidInput},
		{"expand unknown node", http.MethodPost, base + "/expand", expandRequest{ID: "ghost"}, 404, apperr.ErrCodeNodeNotFound},
		{"expand plain node", http.MethodPost, base + "/expand", expandRequest{ID: "leaf"}, 409, apperr.ErrCodeNotAggregate},
		{"collapse unexpanded", http.MethodPost, base + "/collapse", expandRequest{ID: "agg"}, 409, apperr.ErrCodeNotExpanded},
		{"empty collapse id", http.MethodPost, base + "/collapse", expandRequest{}, 400, apperr.ErrCodeInvalidInput},
		{"unknown event", http.MethodPost, base + "/events", eventRequest{Kind: "double_click"}, 400, apperr.ErrCodeInvalidInput},
		{"bad partition", http.MethodPost, base + "/draw", map[string]int{"partition": 7}, 400, apperr.ErrCodeInvalidPartition},
		{"bad pattern", http.MethodGet, base + "/search?field=id&pattern=%5B", nil, 400, apperr.ErrCodeInvalidPattern},
		{"bad field", http.MethodGet, base + "/search?field=Bad&pattern=x", nil, 400, apperr.ErrCodeInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body, nil)
			if rec.Code != tt.status {
				t.Fatalf("%s %s = %d, want %d: %s", tt.method, tt.path, rec.Code, tt.status, rec.Body)
			}
			if got := errorCode(t, rec); got != tt.code {
				t.Errorf("error code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestEventsSearchAndSummary(t *testing.T) {
	_, h := newTestServer(t, Options{})
	info := upload(t, h)
	base := "/api/sessions/" + createSession(t, h, createSessionRequest{Document: info.Hash}).Session.ID

	var ev instructionsResponse
	if rec := do(t, h, http.MethodPost, base+"/events", eventRequest{Kind: "node_selected", Nodes: []string{"core"}}, &ev); rec.Code != http.StatusOK {
		t.Fatalf("POST events = %d: %s", rec.Code, rec.Body)
	}

	var m search.Match
	do(t, h, http.MethodGet, base+"/search?field=id&pattern=%5El", nil, &m)
	if !slices.Equal(m.Nodes, []string{"leaf"}) {
		t.Errorf("search id ^l = %v, want [leaf]", m.Nodes)
	}

	var sum summaryResponse
	do(t, h, http.MethodGet, base+"/summary", nil, &sum)
	if len(sum.Nodes.Nodes) != 1 || sum.Nodes.Nodes[0].ID != "leaf" {
		t.Errorf("summary nodes = %+v, want the searched leaf", sum.Nodes.Nodes)
	}

	var d search.Description
	do(t, h, http.MethodGet, base+"/description", nil, &d)
	if d.Nodes != 3 || d.Hosts != 1 || d.Switches != 2 {
		t.Errorf("description = %+v, want 3 nodes (1 host, 2 switches)", d)
	}
}

func TestRenderSVG(t *testing.T) {
	_, h := newTestServer(t, Options{})
	info := upload(t, h)
	base := "/api/sessions/" + createSession(t, h, createSessionRequest{Document: info.Hash}).Session.ID

	rec := do(t, h, http.MethodGet, base+"/render.svg?labels=true", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET render.svg = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("render.svg body is not an SVG document")
	}
}

func TestStream(t *testing.T) {
	s, h := newTestServer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Hub().Run(ctx)

	ts := httptest.NewServer(h)
	defer ts.Close()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	lines := bufio.NewScanner(resp.Body)
	if !lines.Scan() || lines.Text() != ": connected" {
		t.Fatalf("first line = %q, want : connected", lines.Text())
	}

	s.Hub().Broadcast(Event{Type: EventDocumentReloaded, Document: "abc"})
	var got []string
	for lines.Scan() {
		if lines.Text() == "" {
			if len(got) > 0 {
				break
			}
			continue
		}
		got = append(got, lines.Text())
	}
	want := []string{
		"event: document_reloaded",
		`data: {"type":"document_reloaded","document":"abc"}`,
	}
	if !slices.Equal(got, want) {
		t.Errorf("stream = %q, want %q", got, want)
	}
}

func TestWatch(t *testing.T) {
	docs := storage.NewMemoryStore()
	s, _ := newTestServer(t, Options{Documents: docs})

	path := filepath.Join(t.TempDir(), "cluster.json")
	if err := os.WriteFile(path, document(t), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx, path) }()
	defer func() {
		cancel()
		<-done
	}()

	waitFor := func(n int) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if list, _ := docs.List(ctx); len(list) >= n {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		list, _ := docs.List(ctx)
		t.Fatalf("stored documents = %d, want %d", len(list), n)
	}
	waitFor(1)

	changed := topotest.New().Switch("core").Host("h").Connect("core", "h", 10)
	data, err := graph.MarshalDocument(changed.Document())
	if err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(2)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		code   apperr.Code
		status int
	}{
		{session.ErrInvalidID, apperr.ErrCodeInvalidInput, 400},
		{session.ErrNotFound, apperr.ErrCodeSessionNotFound, 404},
		{storage.ErrNotFound, apperr.ErrCodeDocumentNotFound, 404},
		{apperr.New(apperr.ErrCodeInvalidFormat, "x"), apperr.ErrCodeInvalidFormat, 400},
		{apperr.New(apperr.ErrCodeNotExpanded, "x"), apperr.ErrCodeNotExpanded, 409},
		{apperr.New(apperr.ErrCodeUnsupported, "x"), apperr.ErrCodeUnsupported, 501},
		{io.ErrUnexpectedEOF, apperr.ErrCodeInternal, 500},
	}
	for _, tt := range tests {
		code, status := classify(tt.err)
		if code != tt.code || status != tt.status {
			t.Errorf("classify(%v) = %s, %d, want %s, %d", tt.err, code, status, tt.code, tt.status)
		}
	}
}
