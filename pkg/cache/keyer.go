package cache

import "fmt"

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs give equal keys.
type Keyer interface {
	DocumentKey(docHash string) string
	LayoutKey(docHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the view settings a frame depends on.
type LayoutKeyOpts struct {
	Partition  int      `json:"partition"`
	ColorMode  string   `json:"color_mode"`
	Expansions []string `json:"expansions,omitempty"` // In order; "-id" is a collapse
}

// ArtifactKeyOpts are the render settings an artifact depends on.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Labels bool    `json:"labels"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DocumentKey returns "doc:<hash>".
func (DefaultKeyer) DocumentKey(docHash string) string {
	return fmt.Sprintf("doc:%s", docHash)
}

// LayoutKey hashes the document hash together with the view settings.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey hashes the frame hash together with the render settings.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
