package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/netdraw/pkg/buildinfo"
	"github.com/matzehuels/netdraw/pkg/color"
	apperr "github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/observability"
	"github.com/matzehuels/netdraw/pkg/pipeline"
	"github.com/matzehuels/netdraw/pkg/search"
	"github.com/matzehuels/netdraw/pkg/session"
	"github.com/matzehuels/netdraw/pkg/view"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type createSessionRequest struct {
	Document  string   `json:"document"`
	Partition *int     `json:"partition,omitempty"`
	ColorMode string   `json:"color_mode,omitempty"`
	Expand    []string `json:"expand,omitempty"`
}

type drawRequest struct {
	Partition *int   `json:"partition,omitempty"`
	ColorMode string `json:"color_mode,omitempty"`
}

type expandRequest struct {
	ID       string `json:"id,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

type eventRequest struct {
	Kind  string   `json:"kind"`
	Nodes []string `json:"nodes,omitempty"`
	Edges []string `json:"edges,omitempty"`
}

// viewOptions lists the choices a viewer offers for the session's graph.
type viewOptions struct {
	Partitions []view.PartitionOption `json:"partitions"`
	ColorModes []color.Mode           `json:"color_modes"`
}

type sessionResponse struct {
	Session *session.Session `json:"session"`
	Options viewOptions      `json:"options"`
	Frame   *graph.Layout    `json:"frame,omitempty"`
}

type instructionsResponse struct {
	Instructions []view.Instruction `json:"instructions"`
}

type summaryResponse struct {
	Nodes search.NodeReport `json:"nodes"`
	Edges search.EdgeReport `json:"edges"`
}

func optionsOf(gs *view.GraphSession) viewOptions {
	return viewOptions{
		Partitions: view.PartitionOptions(gs.Graph()),
		ColorModes: color.Modes(gs.Graph()),
	}
}

func instructions(in []view.Instruction) instructionsResponse {
	if in == nil {
		in = []view.Instruction{}
	}
	return instructionsResponse{Instructions: in}
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"stream_clients": s.hub.ClientCount(),
		"build":          buildinfo.Current(),
	})
}

// =============================================================================
// Documents
// =============================================================================

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read document"))
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload"
	}
	info, err := s.docs.Put(r.Context(), name, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	infos, err := s.docs.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.Get(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", strconv.Quote(doc.Hash))
	_, _ = w.Write(doc.Data)
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Document == "" {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "document is required"))
		return
	}
	doc, err := s.docs.Get(r.Context(), req.Document)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		Data:      doc.Data,
		Partition: view.AllPartitions,
		ColorMode: req.ColorMode,
		Expand:    req.Expand,
	}
	if req.Partition != nil {
		opts.Partition = *req.Partition
	}
	l, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	gs, err := s.runner.Session(l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := session.New(gs.Snapshot(), s.ttl)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	s.live[sess.ID] = &liveSession{sess: sess, view: gs}
	s.mu.Unlock()
	s.logger.Info("created session", "session", sess.ID, "document", doc.Hash, "nodes", len(gs.ShownNodes()))

	frame := gs.Frame()
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess, Options: optionsOf(gs), Frame: &frame})
}

// lockSession opens the live session named in the URL and locks it. On
// failure the error has been written and ok is false; otherwise the caller
// must unlock ls.mu.
func (s *Server) lockSession(w http.ResponseWriter, r *http.Request) (ls *liveSession, ok bool) {
	ls, err := s.open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	ls.mu.Lock()
	return ls, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusOK, sessionResponse{Session: ls.sess, Options: optionsOf(ls.view)})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := session.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.forget(id)
	s.hub.Broadcast(Event{Type: EventSessionDeleted, Session: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusOK, ls.view.Frame())
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var mode color.Mode
	if req.ColorMode != "" {
		m, err := color.ParseMode(req.ColorMode)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		mode = m
	}

	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	partition := ls.view.Partition()
	if req.Partition != nil {
		partition = *req.Partition
	}
	if err := ls.view.Draw(partition); err != nil {
		s.writeError(w, r, err)
		return
	}
	if mode != "" && mode != ls.view.ColorMode() {
		if err := ls.view.SetColorMode(mode); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if err := s.persist(r.Context(), ls); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ls.view.Frame())
}

func (s *Server) handleExpand(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.Selected {
		if err := apperr.ValidateID(req.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	var (
		out []view.Instruction
		err error
	)
	if req.Selected {
		out, err = ls.view.ExpandSelected()
	} else {
		out, err = ls.view.Expand(req.ID)
	}
	observability.Session().OnExpand(r.Context(), req.ID, len(out), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.persist(r.Context(), ls); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instructions(out))
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	var req expandRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := apperr.ValidateID(req.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	out, err := ls.view.Collapse(req.ID)
	observability.Session().OnCollapse(r.Context(), req.ID, len(out), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.persist(r.Context(), ls); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instructions(out))
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ev, err := view.ParseEvent(req.Kind, req.Nodes, req.Edges)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	out := ls.view.Handle(ev)
	observability.Session().OnEvent(r.Context(), string(ev.Kind()), len(out))
	if err := s.persist(r.Context(), ls); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, instructions(out))
}

// handleSearch selects the matching shown records, like the viewer's search
// box, and returns the match.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field, pattern := q.Get("field"), q.Get("pattern")

	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	m, err := search.Select(ls.view.Graph(), ls.view.ShownNodeIndices(), ls.view.ShownEdgeIndices(), field, pattern)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ls.view.Select(m.Nodes, m.Edges)
	if err := s.persist(r.Context(), ls); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusOK, search.Describe(ls.view.Graph(), ls.view.ShownNodeIndices(), ls.view.ShownEdgeIndices()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	defer ls.mu.Unlock()

	g := ls.view.Graph()
	nodes, edges := ls.view.Selection()
	writeJSON(w, http.StatusOK, summaryResponse{
		Nodes: search.SummarizeNodes(g, nodes),
		Edges: search.SummarizeEdges(g, edges, len(nodes) > 0),
	})
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	labels, _ := strconv.ParseBool(r.URL.Query().Get("labels"))

	ls, ok := s.lockSession(w, r)
	if !ok {
		return
	}
	frame := ls.view.Frame()
	ls.mu.Unlock()

	artifacts, err := s.runner.Render(r.Context(), frame, pipeline.Options{
		Formats: []string{pipeline.FormatSVG},
		Labels:  labels,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(artifacts[pipeline.FormatSVG])
}
