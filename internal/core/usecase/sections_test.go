package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

type retrieverFake struct {
	queries []string
	block   string
	err     error
}

func (f *retrieverFake) ContextBlock(_ context.Context, query string, _ domain.SearchFilter) (string, error) {
	f.queries = append(f.queries, query)
	return f.block, f.err
}

func newStructuredUC(llm *llmFake, retriever contextRetriever) *StructuredGenerateUseCase {
	return NewStructuredGenerateUseCase(llm, &toneLibraryFake{}, &registryFake{}, retriever)
}

func TestStructuredDefaultSelectionIsOrderedAndAssembled(t *testing.T) {
	llm := &llmFake{response: "Contenu de section."}
	uc := newStructuredUC(llm, nil)

	result, err := uc.Generate(context.Background(), StructuredRequest{
		Product: domain.ProductInfo{Name: "Batterie externe"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	wantOrder := []string{"introduction", "benefits", "technical_specs", "use_cases", "conclusion"}
	if len(result.Sections) != len(wantOrder) {
		t.Fatalf("unexpected section count %d: %+v", len(result.Sections), result.Sections)
	}
	for i, want := range wantOrder {
		if result.Sections[i].SectionID != want {
			t.Fatalf("section %d = %q, want %q", i, result.Sections[i].SectionID, want)
		}
	}
	if !strings.Contains(result.Assembly, "## Introduction") || !strings.Contains(result.Assembly, "## Conclusion") {
		t.Fatalf("assembly missing headings:\n%s", result.Assembly)
	}
}

func TestStructuredBundleSelection(t *testing.T) {
	uc := newStructuredUC(&llmFake{response: "Contenu."}, nil)

	result, err := uc.Generate(context.Background(), StructuredRequest{
		Product:  domain.ProductInfo{Name: "Perceuse"},
		BundleID: "technical",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	ids := make([]string, 0, len(result.Sections))
	for _, section := range result.Sections {
		ids = append(ids, section.SectionID)
	}
	want := []string{"introduction", "technical_specs", "installation", "maintenance", "warranty", "conclusion"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected sections %v", ids)
	}
}

func TestStructuredRequiredSectionsAlwaysIncluded(t *testing.T) {
	uc := newStructuredUC(&llmFake{response: "Contenu."}, nil)

	result, err := uc.Generate(context.Background(), StructuredRequest{
		Product:    domain.ProductInfo{Name: "Perceuse"},
		SectionIDs: []string{"benefits"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	ids := make([]string, 0, len(result.Sections))
	for _, section := range result.Sections {
		ids = append(ids, section.SectionID)
	}
	if strings.Join(ids, ",") != "introduction,benefits,conclusion" {
		t.Fatalf("required sections missing: %v", ids)
	}
}

func TestStructuredUnknownSectionRejected(t *testing.T) {
	uc := newStructuredUC(&llmFake{response: "Contenu."}, nil)
	_, err := uc.Generate(context.Background(), StructuredRequest{
		Product:    domain.ProductInfo{Name: "Perceuse"},
		SectionIDs: []string{"nope"},
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestStructuredSectionRAGQueriesUseProductName(t *testing.T) {
	retriever := &retrieverFake{block: "Contexte documentaire."}
	uc := newStructuredUC(&llmFake{response: "Contenu."}, retriever)

	_, err := uc.Generate(context.Background(), StructuredRequest{
		Product:    domain.ProductInfo{Name: "Perceuse"},
		SectionIDs: []string{"benefits"},
		Options:    domain.GenerationOptions{UseRAG: true, ClientID: "client-1"},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	// Introduction and conclusion carry no RAG query template.
	if len(retriever.queries) != 1 || retriever.queries[0] != "avantages bénéfices Perceuse" {
		t.Fatalf("unexpected RAG queries %v", retriever.queries)
	}
}
