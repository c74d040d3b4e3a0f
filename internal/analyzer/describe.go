package analyzer

import (
	"fmt"
	"strings"

	"go-photo-insight/pkg/models"
)

// buildDescription synthesizes the free-text description. Segment order is
// a contract of the output: scene sentence, then the deduplicated object
// sentence (omitted when empty), then per-face clauses joined with "; "
// (omitted when no faces).
func buildDescription(language Language, scene string, objects []string, faces []models.FaceDetail) string {
	var segments []string

	if scene != "" {
		switch language {
		case LanguagePolish:
			segments = append(segments, fmt.Sprintf("Sceneria wygląda jak %s.", scene))
		default:
			segments = append(segments, fmt.Sprintf("The scene looks like %s.", scene))
		}
	}

	if len(objects) > 0 {
		switch language {
		case LanguagePolish:
			segments = append(segments, fmt.Sprintf("Wykryte obiekty: %s.", strings.Join(objects, ", ")))
		default:
			segments = append(segments, fmt.Sprintf("Objects detected: %s.", strings.Join(objects, ", ")))
		}
	}

	if len(faces) > 0 {
		clauses := make([]string, 0, len(faces))
		for _, face := range faces {
			clauses = append(clauses, fmt.Sprintf("%s (%s, %s)",
				translateGender(language, face.Gender),
				translatePosition(language, face.Position),
				translateEmotion(language, face.Emotion)))
		}
		segments = append(segments, strings.Join(clauses, "; ")+".")
	}

	return strings.Join(segments, " ")
}
