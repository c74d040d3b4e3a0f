package analyzer

import (
	"fmt"
	"image"
	"sort"
)

const (
	// colorSampleStride skips pixels between samples; sampling every pixel
	// adds nothing to the ranking and dominates analysis cost on large
	// surfaces
	colorSampleStride = 8
	// maxDominantColors bounds the returned palette
	maxDominantColors = 3
)

// DominantColors samples the surface at a fixed stride and returns up to
// three hex colors ranked by raw frequency. Ties rank by first-encountered
// color. An empty or degenerate surface is an unrecoverable error: the
// caller cannot produce a complete analysis without pixel data.
func DominantColors(surface image.Image) ([]string, error) {
	if surface == nil {
		return nil, fmt.Errorf("dominant colors: nil surface")
	}
	bounds := surface.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("dominant colors: empty surface %v", bounds)
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y += colorSampleStride {
		for x := bounds.Min.X; x < bounds.Max.X; x += colorSampleStride {
			r, g, b, _ := surface.At(x, y).RGBA()
			hex := fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
			if _, seen := counts[hex]; !seen {
				firstSeen[hex] = order
				order++
			}
			counts[hex]++
		}
	}

	ranked := make([]string, 0, len(counts))
	for hex := range counts {
		ranked = append(ranked, hex)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})

	if len(ranked) > maxDominantColors {
		ranked = ranked[:maxDominantColors]
	}
	return ranked, nil
}
