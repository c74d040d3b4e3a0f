package analyzer

import (
	"strings"

	"go-photo-insight/pkg/models"
)

// Language selects translated labels, the OCR hint and description wording
type Language string

const (
	LanguageEnglish Language = "en"
	LanguagePolish  Language = "pl"
)

// The translation tables are fixed and closed: raw provider labels they do
// not know pass through unchanged, they are never dropped.

var objectLabelsPL = map[string]string{
	"dog":     "pies",
	"cat":     "kot",
	"person":  "osoba",
	"bicycle": "rower",
	"car":     "samochód",
	"tree":    "drzewo",
	"bird":    "ptak",
	"horse":   "koń",
	"bottle":  "butelka",
	"chair":   "krzesło",
	"book":    "książka",
	"flower":  "kwiat",
}

var sceneLabelsPL = map[string]string{
	"park":     "park",
	"beach":    "plaża",
	"city":     "miasto",
	"forest":   "las",
	"indoor":   "wnętrze",
	"mountain": "góry",
	"street":   "ulica",
	"lake":     "jezioro",
	"office":   "biuro",
}

var genderLabels = map[Language]map[string]string{
	LanguageEnglish: {"male": "man", "female": "woman"},
	LanguagePolish:  {"male": "mężczyzna", "female": "kobieta"},
}

var emotionLabels = map[Language]map[string]string{
	LanguageEnglish: {
		models.EmotionNeutral:   "neutral",
		models.EmotionHappy:     "happy",
		models.EmotionSad:       "sad",
		models.EmotionAngry:     "angry",
		models.EmotionFearful:   "fearful",
		models.EmotionDisgusted: "disgusted",
		models.EmotionSurprised: "surprised",
	},
	LanguagePolish: {
		models.EmotionNeutral:   "neutralny",
		models.EmotionHappy:     "szczęśliwy",
		models.EmotionSad:       "smutny",
		models.EmotionAngry:     "zły",
		models.EmotionFearful:   "przestraszony",
		models.EmotionDisgusted: "zniesmaczony",
		models.EmotionSurprised: "zaskoczony",
	},
}

var positionLabels = map[Language]map[models.FacePosition]string{
	LanguageEnglish: {
		models.PositionLeft:   "left",
		models.PositionCenter: "center",
		models.PositionRight:  "right",
	},
	LanguagePolish: {
		models.PositionLeft:   "po lewej",
		models.PositionCenter: "na środku",
		models.PositionRight:  "po prawej",
	},
}

// translateObject maps a raw object category onto its display word for the
// selected language; unknown categories pass through unchanged
func translateObject(language Language, raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if language == LanguagePolish {
		if translated, ok := objectLabelsPL[raw]; ok {
			return translated
		}
	}
	return raw
}

// translateScene maps a raw scene label onto its display word
func translateScene(language Language, raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if language == LanguagePolish {
		if translated, ok := sceneLabelsPL[raw]; ok {
			return translated
		}
	}
	return raw
}

// translateGender maps a raw gender label ("male"/"female") onto a display
// word, passing unknown labels through unchanged
func translateGender(language Language, raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if translated, ok := genderLabels[language][raw]; ok {
		return translated
	}
	return raw
}

// translateEmotion maps a closed-set emotion label onto a display word
func translateEmotion(language Language, raw string) string {
	if translated, ok := emotionLabels[language][raw]; ok {
		return translated
	}
	return raw
}

// translatePosition maps a face position onto a display phrase
func translatePosition(language Language, position models.FacePosition) string {
	if translated, ok := positionLabels[language][position]; ok {
		return translated
	}
	return string(position)
}

// titleCase capitalizes the first rune of a display label
func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
