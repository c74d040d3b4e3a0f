package analyzer

import (
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"

	"go-photo-insight/pkg/models"
)

// scoreTextMatch compares recognized text against the expected text supplied
// with a submission: a levenshtein-based similarity in [0,1] plus the word
// error rate over whitespace tokens.
func scoreTextMatch(expected, extracted string) *models.OCRResult {
	result := &models.OCRResult{
		ExtractedText: extracted,
		ExpectedText:  expected,
	}

	normalizedExpected := normalizeForMatch(expected)
	normalizedExtracted := normalizeForMatch(extracted)

	if normalizedExpected == "" {
		return result
	}

	distance := levenshtein.Distance(normalizedExpected, normalizedExtracted)
	longest := len([]rune(normalizedExpected))
	if l := len([]rune(normalizedExtracted)); l > longest {
		longest = l
	}
	if longest > 0 {
		result.MatchScore = 1 - float64(distance)/float64(longest)
		if result.MatchScore < 0 {
			result.MatchScore = 0
		}
	}

	refTokens := strings.Fields(normalizedExpected)
	hypTokens := strings.Fields(normalizedExtracted)
	rate, _ := wer.WER(refTokens, hypTokens)
	result.WER = rate

	return result
}

// normalizeForMatch lower-cases and collapses whitespace so formatting
// differences do not count as OCR errors
func normalizeForMatch(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
