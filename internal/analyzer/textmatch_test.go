package analyzer

import (
	"math"
	"testing"
)

func TestScoreTextMatch_ExactMatch(t *testing.T) {
	result := scoreTextMatch("hello world", "hello world")

	if result.MatchScore != 1.0 {
		t.Errorf("Expected match score 1.0, got %v", result.MatchScore)
	}
	if result.WER != 0 {
		t.Errorf("Expected WER 0, got %v", result.WER)
	}
}

func TestScoreTextMatch_CaseAndWhitespaceInsensitive(t *testing.T) {
	result := scoreTextMatch("Hello World", "  hello\t\nworld ")

	if result.MatchScore != 1.0 {
		t.Errorf("Expected normalized texts to match exactly, got %v", result.MatchScore)
	}
	if result.WER != 0 {
		t.Errorf("Expected WER 0, got %v", result.WER)
	}
}

func TestScoreTextMatch_PartialMatch(t *testing.T) {
	result := scoreTextMatch("kitten", "sitting")

	// levenshtein distance 3 over the longer length 7
	expected := 1 - 3.0/7.0
	if math.Abs(result.MatchScore-expected) > 1e-9 {
		t.Errorf("Expected match score %v, got %v", expected, result.MatchScore)
	}
}

func TestScoreTextMatch_NoExtractedText(t *testing.T) {
	result := scoreTextMatch("expected text", "")

	if result.MatchScore != 0 {
		t.Errorf("Expected zero score for missing text, got %v", result.MatchScore)
	}
	if result.ExpectedText != "expected text" {
		t.Errorf("Expected text preserved in result, got %q", result.ExpectedText)
	}
}

func TestScoreTextMatch_EmptyExpected(t *testing.T) {
	result := scoreTextMatch("   ", "some text")

	if result.MatchScore != 0 || result.WER != 0 {
		t.Errorf("Expected zero scores for empty expected text, got score=%v wer=%v",
			result.MatchScore, result.WER)
	}
	if result.ExtractedText != "some text" {
		t.Errorf("Expected extracted text preserved, got %q", result.ExtractedText)
	}
}

func TestScoreTextMatch_WordErrorRate(t *testing.T) {
	// One substituted word out of three
	result := scoreTextMatch("the quick fox", "the slow fox")

	if math.Abs(result.WER-1.0/3.0) > 1e-9 {
		t.Errorf("Expected WER 1/3, got %v", result.WER)
	}
}

func TestScoreTextMatch_SingleSubstitution(t *testing.T) {
	// One substituted word out of two
	result := scoreTextMatch("hello world", "hello word")

	if math.Abs(result.WER-0.5) > 1e-9 {
		t.Errorf("Expected WER 0.5, got %v", result.WER)
	}
	if result.MatchScore <= 0 || result.MatchScore >= 1 {
		t.Errorf("Expected partial match score in (0,1), got %v", result.MatchScore)
	}
}

func TestNormalizeForMatch(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello world"},
		{"  spaced   out  ", "spaced out"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeForMatch(tt.input); got != tt.expected {
			t.Errorf("normalizeForMatch(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
