// Package pipeline provides the load → layout → render pipeline shared by
// the CLI and the server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: decode a topology document and build the graph model
//  2. Layout: draw a view (partition, color mode, expansions) and take its frame
//  3. Render: produce artifacts (SVG, PNG, PDF, DOT, JSON, YAML) from the frame
//
// Each stage can be run on its own and is cached through a [cache.Cache].
// Keys are derived from content hashes, so cached products are never stale.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:      "cluster.json",
//	    Partition: view.AllPartitions,
//	    Formats:   []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netdraw/pkg/cache"
	"github.com/matzehuels/netdraw/pkg/color"
	"github.com/matzehuels/netdraw/pkg/errors"
	"github.com/matzehuels/netdraw/pkg/graph"
	"github.com/matzehuels/netdraw/pkg/topology"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
	FormatYAML: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options. Data takes precedence over Path.
	Path string `json:"path,omitempty"`
	Data []byte `json:"-"`

	// Layout options. Partition is an index into the document's partitions
	// or view.AllPartitions.
	Partition int      `json:"partition"`
	ColorMode string   `json:"color_mode,omitempty"`
	Expand    []string `json:"expand,omitempty"` // In order; "-id" collapses

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh bypasses cache lookups (results are still stored).
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Document     *graph.Document
	Graph        *topology.Graph
	DocumentHash string
	Layout       graph.Layout
	Artifacts    map[string][]byte
	Stats        Stats
	CacheInfo    CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	Rings      int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit   bool
	LayoutHit bool
	RenderHit bool // All artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	return errors.ValidateFormats(formats, ValidFormats)
}

// ValidateAndSetDefaults checks the options and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a document source is given.
func (o *Options) ValidateForLoad() error {
	if len(o.Data) == 0 && o.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a document path or data is required")
	}
	o.setLogger()
	return nil
}

// ValidateForLayout checks the color mode and the expansion ids.
// Partition bounds depend on the document and are checked by the draw.
func (o *Options) ValidateForLayout() error {
	if o.ColorMode == "" {
		o.ColorMode = string(color.Normal)
	}
	if _, err := color.ParseMode(o.ColorMode); err != nil {
		return err
	}
	for _, id := range o.Expand {
		if err := errors.ValidateID(id); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// ValidateForRender checks the formats and applies render defaults.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Partition:  o.Partition,
		ColorMode:  o.ColorMode,
		Expansions: o.Expand,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Labels: o.Labels}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
