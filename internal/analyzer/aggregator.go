package analyzer

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	apperrors "go-photo-insight/internal/errors"
	"go-photo-insight/internal/logger"
	"go-photo-insight/internal/vision"
	"go-photo-insight/pkg/models"
)

// Options tunes one analysis pass
type Options struct {
	Language Language
	// ExpectedText, when set, enables match scoring of recognized text
	ExpectedText string
}

// Aggregator is the merging engine: it runs every visual signal over one
// shared normalized surface and folds the heterogeneous outputs into a
// single immutable ImageAnalysis snapshot.
type Aggregator struct {
	adapters     *vision.Adapters
	maxDimension int
}

// NewAggregator creates an aggregator over the given adapter layer. The
// normalized surface is bounded so its longer edge never exceeds
// maxDimension, keeping inference cost consistent across input resolutions.
func NewAggregator(adapters *vision.Adapters, maxDimension int) *Aggregator {
	if maxDimension <= 0 {
		maxDimension = 800
	}
	return &Aggregator{adapters: adapters, maxDimension: maxDimension}
}

// Analyze produces one complete analysis snapshot or fails entirely; a
// partially constructed result is never returned. Individual signals may
// degrade to empty defaults without failing the call.
func (a *Aggregator) Analyze(ctx context.Context, source image.Image, opts Options) (*models.ImageAnalysis, error) {
	surface, err := a.normalize(source)
	if err != nil {
		return nil, apperrors.NewAnalysisError("could not prepare image for analysis", err)
	}
	if opts.Language == "" {
		opts.Language = LanguageEnglish
	}

	// Every signal settles independently; the slowest one bounds the pass,
	// capped by the adapter layer's per-signal timeout
	var (
		wg         sync.WaitGroup
		detections []vision.Detection
		scenes     []vision.SceneLabel
		rawFaces   []vision.RawFace
		text       string
		colors     []string
		colorsErr  error
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		detections = a.adapters.DetectObjects(ctx, surface)
	}()
	go func() {
		defer wg.Done()
		scenes = a.adapters.ClassifyScene(ctx, surface)
	}()
	go func() {
		defer wg.Done()
		rawFaces = a.adapters.DetectFaces(ctx, surface)
	}()
	go func() {
		defer wg.Done()
		text = a.adapters.RecognizeText(ctx, surface, string(opts.Language))
	}()
	go func() {
		defer wg.Done()
		colors, colorsErr = DominantColors(surface)
	}()
	wg.Wait()

	if colorsErr != nil {
		// The color summarizer reads the surface directly; its failure means
		// the surface itself is unusable
		return nil, apperrors.NewAnalysisError("could not sample image colors", colorsErr)
	}

	scene, confidence := topScene(opts.Language, scenes)
	objects := displayObjects(opts.Language, detections)
	faces := buildFaces(rawFaces, float64(surface.Bounds().Dx()))
	ageEstimate, emotionEstimate := legacySummaries(opts.Language, faces)

	analysis := &models.ImageAnalysis{
		Objects:         objects,
		Scenery:         titleCase(scene),
		Labels:          labelUnion(scene, objects),
		Description:     buildDescription(opts.Language, scene, lowercased(objects), faces),
		Confidence:      confidence,
		Colors:          colors,
		Faces:           faces,
		AgeEstimate:     ageEstimate,
		EmotionEstimate: emotionEstimate,
	}

	if text != "" || opts.ExpectedText != "" {
		if opts.ExpectedText != "" {
			analysis.OCR = scoreTextMatch(opts.ExpectedText, text)
		} else {
			analysis.OCR = &models.OCRResult{ExtractedText: text}
		}
	}

	if len(faces) > 0 {
		overlay, overlayErr := renderOverlay(surface, faces, rawFaces)
		if overlayErr != nil {
			// Overlay is a presentation extra; losing it never fails the call
			logger.WithError(overlayErr).Warn("Face overlay rendering failed, omitting marked-up image")
		} else {
			analysis.MarkedUpImageURL = overlay
		}
	}

	logger.WithFields(logrus.Fields{
		"objects": len(objects),
		"faces":   len(faces),
		"scene":   scene,
		"colors":  len(colors),
	}).Debug("Analysis snapshot assembled")

	return analysis, nil
}

// normalize resizes the source so its longer edge is at most the configured
// maximum, preserving aspect ratio. Every downstream signal and the overlay
// operate on this one surface so boxes and samples stay mutually consistent.
func (a *Aggregator) normalize(source image.Image) (image.Image, error) {
	if source == nil {
		return nil, fmt.Errorf("nil source image")
	}
	bounds := source.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid source dimensions: %dx%d", width, height)
	}

	if width <= a.maxDimension && height <= a.maxDimension {
		return source, nil
	}
	if width >= height {
		return imaging.Resize(source, a.maxDimension, 0, imaging.Lanczos), nil
	}
	return imaging.Resize(source, 0, a.maxDimension, imaging.Lanczos), nil
}

// topScene picks the highest-probability scene label; its probability doubles
// as the analysis confidence. A degraded scene signal yields an empty scene
// and zero confidence.
func topScene(language Language, scenes []vision.SceneLabel) (string, float64) {
	if len(scenes) == 0 {
		return "", 0
	}
	top := scenes[0]
	return translateScene(language, top.Label), clamp01(top.Probability)
}

// displayObjects translates, deduplicates and title-cases raw detections,
// preserving first-reported order
func displayObjects(language Language, detections []vision.Detection) []string {
	seen := make(map[string]bool, len(detections))
	objects := make([]string, 0, len(detections))
	for _, detection := range detections {
		display := titleCase(translateObject(language, detection.Category))
		if display == "" || seen[display] {
			continue
		}
		seen[display] = true
		objects = append(objects, display)
	}
	return objects
}

// labelUnion deduplicates and title-cases the union of the scene label and
// the object labels, scene first
func labelUnion(scene string, objects []string) []string {
	seen := make(map[string]bool, len(objects)+1)
	labels := make([]string, 0, len(objects)+1)
	if display := titleCase(scene); display != "" {
		seen[display] = true
		labels = append(labels, display)
	}
	for _, object := range objects {
		if object == "" || seen[object] {
			continue
		}
		seen[object] = true
		labels = append(labels, object)
	}
	return labels
}

func lowercased(labels []string) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = strings.ToLower(label)
	}
	return out
}
