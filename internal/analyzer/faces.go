package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go-photo-insight/internal/vision"
	"go-photo-insight/pkg/models"
)

// Face position thresholds as fractions of the surface width. The lower
// bound is inclusive: a center sitting exactly on 1/3 still reads as left.
const (
	leftBoundary  = 0.33
	rightBoundary = 0.66
)

// minEmotionConfidence is the floor below which the legacy emotion summary
// is considered inconclusive and left empty
const minEmotionConfidence = 0.1

// facePosition classifies a box purely by its center relative to the
// surface width
func facePosition(box models.BoundingBox, surfaceWidth float64) models.FacePosition {
	if surfaceWidth <= 0 {
		return models.PositionCenter
	}
	ratio := box.CenterX() / surfaceWidth
	switch {
	case ratio <= leftBoundary:
		return models.PositionLeft
	case ratio > rightBoundary:
		return models.PositionRight
	default:
		return models.PositionCenter
	}
}

// topEmotion picks the single highest-probability class from an expression
// distribution. Ties resolve to whichever class sorts first in the
// descending order; no further tie-breaking is applied.
func topEmotion(expressions map[string]float64) (string, float64) {
	if len(expressions) == 0 {
		return models.EmotionNeutral, 0
	}

	type scored struct {
		label string
		score float64
	}
	ranked := make([]scored, 0, len(expressions))
	for label, score := range expressions {
		ranked = append(ranked, scored{label: label, score: score})
	}
	// Key order first so the descending sort is deterministic for tied
	// scores regardless of map iteration order
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].label < ranked[j].label })
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	return ranked[0].label, ranked[0].score
}

// buildFaces normalizes raw detections into the face sequence contract:
// position from box center, emotion as the top expression class, age rounded
// to the nearest integer, sorted by ascending box x
func buildFaces(rawFaces []vision.RawFace, surfaceWidth float64) []models.FaceDetail {
	faces := make([]models.FaceDetail, 0, len(rawFaces))
	for _, raw := range rawFaces {
		box := models.BoundingBox{
			X:      raw.Box.X,
			Y:      raw.Box.Y,
			Width:  raw.Box.Width,
			Height: raw.Box.Height,
		}
		emotion, score := topEmotion(raw.Expressions)

		age := int(math.Round(raw.Age))
		if age < 0 {
			age = 0
		}

		faces = append(faces, models.FaceDetail{
			Age:               age,
			Gender:            strings.ToLower(raw.Gender),
			GenderProbability: clamp01(raw.GenderProbability),
			Emotion:           emotion,
			EmotionScore:      clamp01(score),
			Position:          facePosition(box, surfaceWidth),
			Box:               box,
		})
	}

	sort.SliceStable(faces, func(i, j int) bool { return faces[i].Box.X < faces[j].Box.X })
	return faces
}

// legacySummaries derives the backward-compatible scalar fields from the
// face sequence. Both are empty when no faces were found. The age estimate
// averages every face; gender and emotion come from the leftmost face, and
// the emotion summary is included only above the confidence floor.
func legacySummaries(language Language, faces []models.FaceDetail) (ageEstimate, emotionEstimate string) {
	if len(faces) == 0 {
		return "", ""
	}

	total := 0
	for _, face := range faces {
		total += face.Age
	}
	avgAge := int(math.Round(float64(total) / float64(len(faces))))

	first := faces[0]
	gender := translateGender(language, first.Gender)

	switch language {
	case LanguagePolish:
		ageEstimate = fmt.Sprintf("%s, około %d lat", gender, avgAge)
	default:
		ageEstimate = fmt.Sprintf("%s, around %d years old", gender, avgAge)
	}

	if first.EmotionScore > minEmotionConfidence {
		emotionEstimate = translateEmotion(language, first.Emotion)
	}
	return ageEstimate, emotionEstimate
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
