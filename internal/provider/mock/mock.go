// Package mock provides deterministic in-process capability providers for
// development and tests. Results are derived from image content so repeated
// runs over the same photo stay stable.
package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"image"

	"go-photo-insight/internal/vision"
)

// Provider implements every vision capability with canned, deterministic
// output
type Provider struct{}

// New creates a mock provider
func New() *Provider {
	return &Provider{}
}

var (
	_ vision.ObjectDetector  = (*Provider)(nil)
	_ vision.SceneClassifier = (*Provider)(nil)
	_ vision.FaceAnalyzer    = (*Provider)(nil)
	_ vision.TextRecognizer  = (*Provider)(nil)
)

var objectCatalog = []string{"dog", "cat", "person", "bicycle", "car", "tree"}

var sceneCatalog = []string{"park", "beach", "city", "forest", "indoor"}

// Detect reports one or two pseudo-random objects seeded by image content
func (p *Provider) Detect(ctx context.Context, surface image.Image) ([]vision.Detection, error) {
	seed := imageSeed(surface)
	primary := objectCatalog[seed%uint64(len(objectCatalog))]
	detections := []vision.Detection{
		{Category: primary, Score: 0.9},
	}
	if seed%3 == 0 {
		secondary := objectCatalog[(seed/7)%uint64(len(objectCatalog))]
		if secondary != primary {
			detections = append(detections, vision.Detection{Category: secondary, Score: 0.65})
		}
	}
	return detections, nil
}

// Classify reports a single scene label seeded by image content
func (p *Provider) Classify(ctx context.Context, surface image.Image) ([]vision.SceneLabel, error) {
	seed := imageSeed(surface)
	return []vision.SceneLabel{
		{Label: sceneCatalog[seed%uint64(len(sceneCatalog))], Probability: 0.7},
		{Label: sceneCatalog[(seed/3)%uint64(len(sceneCatalog))], Probability: 0.2},
	}, nil
}

// DetectFaces reports one centered face for every third image seed and no
// faces otherwise
func (p *Provider) DetectFaces(ctx context.Context, surface image.Image) ([]vision.RawFace, error) {
	seed := imageSeed(surface)
	if seed%3 != 0 {
		return nil, nil
	}

	bounds := surface.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	return []vision.RawFace{
		{
			Box:               vision.RawBox{X: w * 0.4, Y: h * 0.3, Width: w * 0.2, Height: h * 0.3},
			Age:               20 + float64(seed%40),
			Gender:            "male",
			GenderProbability: 0.93,
			Expressions: map[string]float64{
				"happy":   0.8,
				"neutral": 0.15,
				"sad":     0.05,
			},
		},
	}, nil
}

// Recognize returns no text; the mock set has no OCR capability
func (p *Provider) Recognize(ctx context.Context, surface image.Image, languageHint string) (string, error) {
	return "", nil
}

// imageSeed hashes a sparse pixel sample into a stable seed
func imageSeed(surface image.Image) uint64 {
	bounds := surface.Bounds()
	hasher := sha256.New()
	buf := make([]byte, 4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += 37 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 37 {
			r, g, b, _ := surface.At(x, y).RGBA()
			binary.LittleEndian.PutUint32(buf, uint32(r>>8)<<16|uint32(g>>8)<<8|uint32(b>>8))
			hasher.Write(buf)
		}
	}
	sum := hasher.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}
