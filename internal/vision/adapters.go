package vision

import (
	"context"
	"image"
	"time"

	apperrors "go-photo-insight/internal/errors"
	"go-photo-insight/internal/logger"

	"github.com/sirupsen/logrus"
)

// Adapters wraps a ProviderSet behind degrade-on-failure semantics: a failed
// or missing signal yields its empty value and the other signals carry on.
// Every call is bounded by the per-signal timeout so one slow provider
// cannot stall a whole batch.
type Adapters struct {
	providers     ProviderSet
	signalTimeout time.Duration
}

// NewAdapters creates the adapter layer over a provider set
func NewAdapters(providers ProviderSet, signalTimeout time.Duration) *Adapters {
	if signalTimeout <= 0 {
		signalTimeout = 20 * time.Second
	}
	return &Adapters{providers: providers, signalTimeout: signalTimeout}
}

// DetectObjects returns raw detections, or an empty slice when the provider
// is missing, fails or times out
func (a *Adapters) DetectObjects(ctx context.Context, surface image.Image) []Detection {
	if a.providers.Objects == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.signalTimeout)
	defer cancel()

	detections, err := a.providers.Objects.Detect(ctx, surface)
	if err != nil {
		a.logDegraded("objects", err)
		return nil
	}
	return detections
}

// ClassifyScene returns ranked scene labels, or an empty slice on failure
func (a *Adapters) ClassifyScene(ctx context.Context, surface image.Image) []SceneLabel {
	if a.providers.Scenes == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.signalTimeout)
	defer cancel()

	labels, err := a.providers.Scenes.Classify(ctx, surface)
	if err != nil {
		a.logDegraded("scene", err)
		return nil
	}
	return labels
}

// DetectFaces returns raw faces. A provider failure is reported as a photo
// with no faces, never as an analysis-level error.
func (a *Adapters) DetectFaces(ctx context.Context, surface image.Image) []RawFace {
	if a.providers.Faces == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.signalTimeout)
	defer cancel()

	faces, err := a.providers.Faces.DetectFaces(ctx, surface)
	if err != nil {
		a.logDegraded("faces", err)
		return nil
	}
	return faces
}

// RecognizeText returns extracted text, or an empty string on failure
func (a *Adapters) RecognizeText(ctx context.Context, surface image.Image, languageHint string) string {
	if a.providers.Text == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, a.signalTimeout)
	defer cancel()

	text, err := a.providers.Text.Recognize(ctx, surface, languageHint)
	if err != nil {
		a.logDegraded("text", err)
		return ""
	}
	return text
}

func (a *Adapters) logDegraded(signal string, err error) {
	degraded := apperrors.NewDegradedError(signal, err)
	logger.WithError(degraded).WithFields(logrus.Fields{
		"signal": signal,
	}).Warn("Visual signal degraded to empty result")
}
