// Package color assigns display colors to topology nodes and edges.
//
// A [Scheme] binds a [Mode] to a graph and answers, per node or edge, which
// color to paint. Palettes come from [Palette], which mirrors the browser
// viewer's palette sizes so that the same document colors the same way in
// every front end.
package color

import (
	"fmt"
	"math"
)

// Fixed colors.
const (
	HostColor      = "red"
	SwitchColor    = "grey"
	EdgeColor      = "grey"
	EdgeHighlight  = "blue"
	DefaultColor   = "black"
	unpaletteColor = "red"
)

var (
	palette9  = []string{"blue", "orange", "green", "pink", "brown", "purple", "yellow", "red", "gray"}
	palette11 = []string{
		"#a6cee3", "#1f78b4", "#b2df8a", "#33a02c", "#fb9a99", "#e31a1c",
		"#fdbf6f", "#ff7f00", "#cab2d6", "#6a3d9a", "#ffff99",
	}
)

// Palette returns an ordered list of colors for size categories.
//
// Up to 11 categories come from fixed qualitative palettes. Larger sizes walk
// an RGB cube of side ceil(cbrt(size+1)), skipping black, so the result has
// at least size+1 entries.
func Palette(size int) []string {
	switch {
	case size <= 0:
		return []string{unpaletteColor}
	case size <= len(palette9):
		return palette9[:min(size+1, len(palette9))]
	case size <= len(palette11):
		return palette11[:min(size+1, len(palette11))]
	}

	v := int(math.Ceil(math.Cbrt(float64(size + 1))))
	step := 255 / float64(v)
	out := make([]string, 0, v*v*v-1)
	for r := range v {
		for g := range v {
			for b := range v {
				if r == 0 && g == 0 && b == 0 {
					continue
				}
				out = append(out, fmt.Sprintf("rgb(%d, %d, %d)",
					int(math.Round(float64(r)*step)),
					int(math.Round(float64(g)*step)),
					int(math.Round(float64(b)*step))))
			}
		}
	}
	return out
}

// pick returns palette[i], or DefaultColor when i is out of range.
func pick(palette []string, i int) string {
	if i < 0 || i >= len(palette) {
		return DefaultColor
	}
	return palette[i]
}
