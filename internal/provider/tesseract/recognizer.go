// Package tesseract backs the text-recognition capability with a local
// Tesseract installation via gosseract.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"go-photo-insight/internal/vision"
)

// languageHints maps the service language selector onto Tesseract language
// codes; unknown hints fall back to the configured default
var languageHints = map[string]string{
	"en": "eng",
	"pl": "pol",
}

// Recognizer implements vision.TextRecognizer over gosseract. Tesseract
// clients are not safe for concurrent use, so calls are serialized.
type Recognizer struct {
	mu              sync.Mutex
	defaultLanguage string
}

var _ vision.TextRecognizer = (*Recognizer)(nil)

// New creates a recognizer with the given default Tesseract language string
// (e.g. "eng" or "eng+pol")
func New(defaultLanguage string) *Recognizer {
	if defaultLanguage == "" {
		defaultLanguage = "eng"
	}
	return &Recognizer{defaultLanguage: defaultLanguage}
}

// Recognize runs OCR over the surface and returns the extracted text
func (r *Recognizer) Recognize(ctx context.Context, surface image.Image, languageHint string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, surface); err != nil {
		return "", fmt.Errorf("encode surface for ocr: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	client := gosseract.NewClient()
	defer client.Close()

	language := r.defaultLanguage
	if hint, ok := languageHints[languageHint]; ok {
		language = hint
	}
	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("set ocr language %q: %w", language, err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("load surface into ocr: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr failed: %w", err)
	}
	return text, nil
}
