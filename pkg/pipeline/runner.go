package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netdraw/pkg/cache"
	"github.com/matzehuels/netdraw/pkg/color"
	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/observability"
	"github.com/matzehuels/netdraw/pkg/render/nodelink"
	"github.com/matzehuels/netdraw/pkg/topology"
	"github.com/matzehuels/netdraw/pkg/view"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Loaded is a decoded document together with its graph model.
type Loaded struct {
	Hash     string
	Document *graph.Document
	Graph    *topology.Graph
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	// Stage 1: Load
	start := time.Now()
	l, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Document, result.Graph, result.DocumentHash = l.Document, l.Graph, l.Hash
	result.Stats.LoadTime = time.Since(start)
	result.Stats.NodeCount = l.Graph.NodeCount()
	result.Stats.EdgeCount = l.Graph.EdgeCount()
	result.CacheInfo.LoadHit = hit

	r.Logger.Info("loaded topology",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	start = time.Now()
	frame, hit, err := r.LayoutWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = frame
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.Rings = rings(frame)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"nodes", len(frame.Nodes),
		"edges", len(frame.Edges),
		"rings", result.Stats.Rings,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, frame, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo decodes the document and builds the graph model.
// The decoded document is cached under its content hash.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (l *Loaded, hit bool, err error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	source := opts.Path
	if len(opts.Data) > 0 || source == "" {
		source = "<data>"
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()
	defer func() {
		n := 0
		if l != nil {
			n = l.Graph.NodeCount()
		}
		hooks.OnLoadComplete(ctx, source, n, time.Since(start), err)
	}()

	data := opts.Data
	if len(data) == 0 {
		data, err = os.ReadFile(opts.Path)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", opts.Path)
		}
	}
	hash := cache.Hash(data)
	key := r.Keyer.DocumentKey(hash)

	var doc *graph.Document
	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, key, "document"); ok {
			if d, err := graph.UnmarshalDocument(cached); err == nil {
				doc, hit = d, true
			}
		}
	}
	if doc == nil {
		if doc, err = graph.UnmarshalDocument(data); err != nil {
			return nil, false, err
		}
	}

	g, err := topology.Load(doc)
	if err != nil {
		return nil, false, err
	}
	if !hit {
		if canon, err := graph.MarshalDocument(doc); err == nil {
			r.store(ctx, key, "document", canon, cache.TTLDocument)
		}
	}
	return &Loaded{Hash: hash, Document: doc, Graph: g}, hit, nil
}

// Load is LoadWithCacheInfo without the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*Loaded, error) {
	l, _, err := r.LoadWithCacheInfo(ctx, opts)
	return l, err
}

// Session draws a fresh view of the loaded document: the partition, then the
// color mode, then each expansion or collapse in order. Sessions change the
// merged state of their graph, so each one gets its own graph built from
// l.Document; l.Graph is never modified.
func (r *Runner) Session(l *Loaded, opts Options) (*view.GraphSession, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	mode, _ := color.ParseMode(opts.ColorMode)
	g, err := topology.Load(l.Document)
	if err != nil {
		return nil, err
	}

	s := view.New(g, view.WithDocumentHash(l.Hash), view.WithColorMode(mode))
	if err := s.Draw(opts.Partition); err != nil {
		return nil, err
	}
	for _, id := range opts.Expand {
		var err error
		if target, ok := strings.CutPrefix(id, "-"); ok {
			_, err = s.Collapse(target)
		} else {
			_, err = s.Expand(id)
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// LayoutWithCacheInfo computes the frame of the view described by opts.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, l *Loaded, opts Options) (frame graph.Layout, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	key := r.Keyer.LayoutKey(l.Hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, key, "layout"); ok {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				return cached, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, l.Graph.NodeCount())
	start := time.Now()
	defer func() { hooks.OnLayoutComplete(ctx, rings(frame), time.Since(start), err) }()

	s, err := r.Session(l, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}
	frame = s.Frame()
	opts.Logger.Debug("drew view", "partition", opts.Partition, "mode", opts.ColorMode, "expansions", len(opts.Expand))

	if data, err := graph.MarshalLayout(frame); err == nil {
		r.store(ctx, key, "layout", data, cache.TTLLayout)
	}
	return frame, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit info.
func (r *Runner) Layout(ctx context.Context, l *Loaded, opts Options) (graph.Layout, error) {
	frame, _, err := r.LayoutWithCacheInfo(ctx, l, opts)
	return frame, err
}

// RenderWithCacheInfo produces every requested format from the frame.
// hit is true only when all formats came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, frame graph.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	raw, err := graph.MarshalLayout(frame)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	frameHash := cache.Hash(raw)

	artifacts = make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			data, ok := r.lookup(ctx, r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format)), "artifact")
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	for _, format := range opts.Formats {
		if _, ok := artifacts[format]; ok {
			continue
		}
		data, err := renderFormat(ctx, frame, raw, format, opts)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		r.store(ctx, r.Keyer.ArtifactKey(frameHash, opts.ArtifactKeyOpts(format)), "artifact", data, cache.TTLArtifact)
	}
	return artifacts, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, frame graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, frame, opts)
	return artifacts, err
}

func renderFormat(ctx context.Context, frame graph.Layout, raw []byte, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return raw, nil
	case FormatYAML:
		return graph.MarshalLayoutYAML(frame)
	}
	return nodelink.Render(ctx, frame, format, nodelink.Options{Labels: opts.Labels}, opts.Scale)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key and reports hit or miss to the cache hooks.
func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes key. Failures are logged, never returned.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// rings returns the number of layout rings in a frame.
func rings(frame graph.Layout) int {
	n := 0
	for _, node := range frame.Nodes {
		n = max(n, node.Ring+1)
	}
	return n
}
