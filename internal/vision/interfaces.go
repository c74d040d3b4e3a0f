package vision

import (
	"context"
	"image"
)

// Detection is one raw object detection as reported by a provider
type Detection struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// SceneLabel is one scene classification, providers return them sorted by
// descending probability
type SceneLabel struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// RawBox is a provider-reported rectangle in normalized-surface pixels
type RawBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RawFace is one detected face before normalization: bounding box, optional
// landmark points, age estimate, gender with probability and an emotion
// probability distribution
type RawFace struct {
	Box               RawBox             `json:"box"`
	Landmarks         []image.Point      `json:"landmarks,omitempty"`
	Age               float64            `json:"age"`
	Gender            string             `json:"gender"`
	GenderProbability float64            `json:"gender_probability"`
	Expressions       map[string]float64 `json:"expressions"`
}

// ObjectDetector finds labeled objects in the normalized surface
type ObjectDetector interface {
	Detect(ctx context.Context, surface image.Image) ([]Detection, error)
}

// SceneClassifier ranks scene labels for the normalized surface
type SceneClassifier interface {
	Classify(ctx context.Context, surface image.Image) ([]SceneLabel, error)
}

// FaceAnalyzer detects faces with age, gender and expression estimates
type FaceAnalyzer interface {
	DetectFaces(ctx context.Context, surface image.Image) ([]RawFace, error)
}

// TextRecognizer extracts text from the normalized surface
type TextRecognizer interface {
	Recognize(ctx context.Context, surface image.Image, languageHint string) (string, error)
}

// ProviderSet bundles the four capability providers consumed by the
// aggregator. Individual providers may be nil; the adapter layer treats a
// missing provider the same as a degraded one.
type ProviderSet struct {
	Objects ObjectDetector
	Scenes  SceneClassifier
	Faces   FaceAnalyzer
	Text    TextRecognizer
}
