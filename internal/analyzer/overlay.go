package analyzer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"go-photo-insight/internal/vision"
	"go-photo-insight/pkg/models"
)

var (
	overlayBoxColor      = color.NRGBA{R: 0, G: 200, B: 120, A: 255}
	overlayLandmarkColor = color.NRGBA{R: 255, G: 80, B: 80, A: 255}
)

const (
	overlayBoxThickness  = 2
	overlayLandmarkSize  = 2
	overlayJpegQuality   = 85
	overlayDataURLPrefix = "data:image/jpeg;base64,"
)

// renderOverlay draws face boxes and landmark points onto a copy of the
// normalized surface and returns it as a base64 data URL. Failures here are
// non-fatal for the analysis; the caller simply omits the field.
func renderOverlay(surface image.Image, faces []models.FaceDetail, rawFaces []vision.RawFace) (string, error) {
	if len(faces) == 0 {
		return "", nil
	}

	// Clone so the shared surface stays untouched for other signals
	canvas := imaging.Clone(surface)
	bounds := canvas.Bounds()

	for _, face := range faces {
		drawRect(canvas, face.Box, bounds)
	}
	for _, raw := range rawFaces {
		for _, point := range raw.Landmarks {
			drawDot(canvas, point, bounds)
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(overlayJpegQuality)); err != nil {
		return "", fmt.Errorf("encode overlay: %w", err)
	}
	return overlayDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func drawRect(canvas *image.NRGBA, box models.BoundingBox, bounds image.Rectangle) {
	x0, y0 := int(box.X), int(box.Y)
	x1, y1 := int(box.X+box.Width), int(box.Y+box.Height)

	for t := 0; t < overlayBoxThickness; t++ {
		for x := x0; x <= x1; x++ {
			setPixel(canvas, x, y0+t, bounds, overlayBoxColor)
			setPixel(canvas, x, y1-t, bounds, overlayBoxColor)
		}
		for y := y0; y <= y1; y++ {
			setPixel(canvas, x0+t, y, bounds, overlayBoxColor)
			setPixel(canvas, x1-t, y, bounds, overlayBoxColor)
		}
	}
}

func drawDot(canvas *image.NRGBA, point image.Point, bounds image.Rectangle) {
	for dy := -overlayLandmarkSize; dy <= overlayLandmarkSize; dy++ {
		for dx := -overlayLandmarkSize; dx <= overlayLandmarkSize; dx++ {
			setPixel(canvas, point.X+dx, point.Y+dy, bounds, overlayLandmarkColor)
		}
	}
}

func setPixel(canvas *image.NRGBA, x, y int, bounds image.Rectangle, c color.NRGBA) {
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	canvas.SetNRGBA(x, y, c)
}
