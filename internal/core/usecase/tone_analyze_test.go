package usecase

import (
	"context"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

func TestToneAnalyzeParsesProfile(t *testing.T) {
	llm := &llmFake{response: `{"tone": "enthusiastic", "register": "tutoiement", "audience": "jeunes actifs", "traits": ["dynamique"], "sample_vocabulary": ["génial"]}`}
	analyzer := NewToneAnalyzer(llm, &promptStoreFake{})

	profile, err := analyzer.Analyze(context.Background(), "Découvre notre nouvelle batterie, elle est géniale !")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if profile.Tone != "enthusiastic" || len(profile.Traits) != 1 {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestToneAnalyzeRejectsEmptySample(t *testing.T) {
	analyzer := NewToneAnalyzer(&llmFake{}, &promptStoreFake{})
	_, err := analyzer.Analyze(context.Background(), "   ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestToneAnalyzeUnparseableResponseIsParseError(t *testing.T) {
	analyzer := NewToneAnalyzer(&llmFake{response: "pas de JSON"}, &promptStoreFake{})
	_, err := analyzer.Analyze(context.Background(), "Un texte d'exemple.")
	if !domain.IsKind(err, domain.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
}
