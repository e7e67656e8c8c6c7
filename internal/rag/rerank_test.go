package rag

import (
	"math"
	"strings"
	"testing"
)

func TestLexicalScoreBasicMatch(t *testing.T) {
	query := "phishing kits"
	chunk := "The campaign distributed phishing kits through compromised hosts. The kits rotated domains daily."
	score := lexicalScore(query, chunk, "New Phishing Kits Observed in the Wild")

	if score <= 0 {
		t.Fatalf("expected score to be positive, got %f", score)
	}
	if score > maxLexicalScore {
		t.Fatalf("score should be clamped to maxLexicalScore, got %f", score)
	}
}

func TestLexicalScoreTitleBonus(t *testing.T) {
	query := "ransomware"
	chunk := "General context without the keyword."
	score := lexicalScore(query, chunk, "Ransomware Trends 2026")

	if math.Abs(float64(score-titleMatchBonus)) > 0.0001 {
		t.Fatalf("expected title bonus only (%f), got %f", titleMatchBonus, score)
	}
}

func TestLexicalScoreStopwordsRemoved(t *testing.T) {
	query := "the and of"
	chunk := "the and of"
	score := lexicalScore(query, chunk, "")

	if score != 0 {
		t.Fatalf("expected score 0 when query tokens are only stopwords, got %f", score)
	}
}

func TestLexicalScoreNormalization(t *testing.T) {
	query := "malware"
	// Repeat keyword many times to ensure normalization kicks in
	chunk := "malware " + strings.Repeat(" filler", 200)
	score := lexicalScore(query, chunk, "")

	if score <= 0 {
		t.Fatalf("expected normalized score to stay positive, got %f", score)
	}
	if score > maxLexicalScore {
		t.Fatalf("expected score to be clamped to %f, got %f", maxLexicalScore, score)
	}
}
