package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

// scriptedLLM answers successive calls from a fixed script, shared
// between Generate and GenerateJSON.
type scriptedLLM struct {
	responses []string
	errs      []error
	prompts   []string
}

func (f *scriptedLLM) next(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	idx := len(f.prompts) - 1
	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	var response string
	if idx < len(f.responses) {
		response = f.responses[idx]
	}
	return response, err
}

func (f *scriptedLLM) Generate(_ context.Context, prompt string) (string, error) {
	return f.next(prompt)
}

func (f *scriptedLLM) GenerateJSON(_ context.Context, prompt string) (string, error) {
	return f.next(prompt)
}

func TestChainRunEvaluatesImprovesAndVerifies(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		`{"technical_accuracy": 7, "tone_style": 6, "seo_optimization": 5, "structure": 8, "persuasion": 6, "differentiation": 4, "improvement_points": ["Ajouter un appel à l'action"]}`,
		"Version améliorée de la description.",
		"Conforme, aucune régression détectée.",
	}}

	chain := NewSelfImprovingChain(llm, &promptStoreFake{})
	result, err := chain.Run(context.Background(), "Brouillon initial.", domain.ProductInfo{Name: "Batterie"}, domain.ToneStyle{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.OriginalDescription != "Brouillon initial." {
		t.Fatalf("original description lost: %q", result.OriginalDescription)
	}
	if result.Evaluation.Degraded {
		t.Fatalf("evaluation unexpectedly degraded: %+v", result.Evaluation)
	}
	if result.Evaluation.Structure != 8 {
		t.Fatalf("unexpected evaluation %+v", result.Evaluation)
	}
	if result.ImprovedDescription != "Version améliorée de la description." {
		t.Fatalf("unexpected improved description %q", result.ImprovedDescription)
	}
	if result.VerificationNotes == "" {
		t.Fatalf("expected verification notes")
	}
	if !strings.Contains(llm.prompts[1], "Ajouter un appel à l'action") {
		t.Fatalf("improvement points missing from prompt:\n%s", llm.prompts[1])
	}
}

func TestChainDegradesOnUnparseableEvaluation(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"pas un objet JSON",
		"Version améliorée.",
		"Notes.",
	}}

	chain := NewSelfImprovingChain(llm, &promptStoreFake{})
	result, err := chain.Run(context.Background(), "Brouillon.", domain.ProductInfo{Name: "Batterie"}, domain.ToneStyle{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Evaluation.Degraded {
		t.Fatalf("expected degraded evaluation, got %+v", result.Evaluation)
	}
	if len(result.Evaluation.ImprovementPoints) != 3 || result.Evaluation.ImprovementPoints[0] != "Améliorer la structure" {
		t.Fatalf("unexpected fallback points %+v", result.Evaluation.ImprovementPoints)
	}
	if result.ImprovedDescription != "Version améliorée." {
		t.Fatalf("improvement should still run, got %q", result.ImprovedDescription)
	}
}

func TestChainImprovementFailureAborts(t *testing.T) {
	llm := &scriptedLLM{
		responses: []string{`{"improvement_points": ["p"]}`, ""},
		errs:      []error{nil, errors.New("model down")},
	}

	chain := NewSelfImprovingChain(llm, &promptStoreFake{})
	_, err := chain.Run(context.Background(), "Brouillon.", domain.ProductInfo{Name: "Batterie"}, domain.ToneStyle{})
	if !domain.IsKind(err, domain.ErrImprovement) {
		t.Fatalf("expected improvement error, got %v", err)
	}
}

func TestChainVerificationFailureIsNonFatal(t *testing.T) {
	llm := &scriptedLLM{
		responses: []string{`{"improvement_points": ["p"]}`, "Version améliorée.", ""},
		errs:      []error{nil, nil, errors.New("model down")},
	}

	chain := NewSelfImprovingChain(llm, &promptStoreFake{})
	result, err := chain.Run(context.Background(), "Brouillon.", domain.ProductInfo{Name: "Batterie"}, domain.ToneStyle{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.VerificationNotes != "" {
		t.Fatalf("expected empty notes, got %q", result.VerificationNotes)
	}
	if result.ImprovedDescription != "Version améliorée." {
		t.Fatalf("unexpected improved description %q", result.ImprovedDescription)
	}
}

func TestChainGeneratesDraftWhenDescriptionEmpty(t *testing.T) {
	llm := &scriptedLLM{responses: []string{
		"Brouillon généré.",
		`{"improvement_points": ["p"]}`,
		"Version améliorée.",
		"Notes.",
	}}

	chain := NewSelfImprovingChain(llm, &promptStoreFake{})
	result, err := chain.Run(context.Background(), "", domain.ProductInfo{Name: "Batterie"}, domain.ToneStyle{Tone: "casual"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.OriginalDescription != "Brouillon généré." {
		t.Fatalf("expected generated draft as original, got %q", result.OriginalDescription)
	}
	if len(llm.prompts) != 4 {
		t.Fatalf("expected 4 model calls, got %d", len(llm.prompts))
	}
}
