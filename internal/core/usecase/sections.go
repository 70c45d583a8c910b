package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

// defaultSections lists every section the structured generator knows
// how to write. Order drives the assembled document.
func defaultSections() []domain.Section {
	return []domain.Section{
		{
			ID:             "introduction",
			Name:           "Introduction",
			Description:    "Accroche et présentation du produit",
			Required:       true,
			DefaultEnabled: true,
			Order:          1,
			PromptTemplate: "Rédige l'introduction d'une fiche produit pour :\n{product_context}\n{tone_instructions}\n{rag_context}\nDeux à trois phrases, accrocheuses, sans titre.",
		},
		{
			ID:               "benefits",
			Name:             "Bénéfices",
			Description:      "Bénéfices client concrets",
			DefaultEnabled:   true,
			Order:            2,
			RAGQueryTemplate: "avantages bénéfices {product_name}",
			PromptTemplate:   "Liste les bénéfices concrets du produit suivant pour l'acheteur :\n{product_context}\n{tone_instructions}\n{rag_context}\nTrois à cinq puces, orientées usage.",
		},
		{
			ID:               "technical_specs",
			Name:             "Caractéristiques techniques",
			Description:      "Tableau des spécifications",
			DefaultEnabled:   true,
			Order:            3,
			RAGQueryTemplate: "caractéristiques techniques {product_name}",
			PromptTemplate:   "Présente les caractéristiques techniques du produit suivant sous forme de liste :\n{product_context}\n{rag_context}\nUne caractéristique par ligne, format « Nom : valeur ».",
		},
		{
			ID:               "use_cases",
			Name:             "Cas d'usage",
			Description:      "Situations d'utilisation typiques",
			DefaultEnabled:   true,
			Order:            4,
			RAGQueryTemplate: "utilisation cas d'usage {product_name}",
			PromptTemplate:   "Décris deux ou trois situations concrètes où le produit suivant est utile :\n{product_context}\n{tone_instructions}\n{rag_context}",
		},
		{
			ID:               "installation",
			Name:             "Installation",
			Description:      "Mise en service et prise en main",
			Order:            5,
			RAGQueryTemplate: "installation mise en service {product_name}",
			PromptTemplate:   "Explique la mise en service du produit suivant en étapes simples :\n{product_context}\n{rag_context}",
		},
		{
			ID:               "maintenance",
			Name:             "Entretien",
			Description:      "Conseils d'entretien",
			Order:            6,
			RAGQueryTemplate: "entretien maintenance {product_name}",
			PromptTemplate:   "Donne les conseils d'entretien du produit suivant :\n{product_context}\n{rag_context}\nReste factuel et concis.",
		},
		{
			ID:               "warranty",
			Name:             "Garantie",
			Description:      "Garantie et service après-vente",
			Order:            7,
			RAGQueryTemplate: "garantie service après-vente {product_name}",
			PromptTemplate:   "Rédige un court paragraphe sur la garantie et le service après-vente du produit suivant :\n{product_context}\n{rag_context}",
		},
		{
			ID:             "customer_reviews",
			Name:           "Avis clients",
			Description:    "Synthèse de la satisfaction client",
			Order:          8,
			PromptTemplate: "Rédige un paragraphe de réassurance sur la satisfaction des clients pour :\n{product_context}\n{tone_instructions}\nSans inventer de chiffres précis.",
		},
		{
			ID:               "comparison",
			Name:             "Comparaison",
			Description:      "Positionnement face aux alternatives",
			Order:            9,
			RAGQueryTemplate: "comparaison alternatives {product_name}",
			PromptTemplate:   "Positionne le produit suivant face aux alternatives du marché :\n{product_context}\n{rag_context}\nDeux à trois arguments différenciants.",
		},
		{
			ID:             "conclusion",
			Name:           "Conclusion",
			Description:    "Appel à l'action final",
			Required:       true,
			DefaultEnabled: true,
			Order:          10,
			PromptTemplate: "Conclus la fiche produit suivante par un appel à l'action :\n{product_context}\n{tone_instructions}\nUne à deux phrases.",
		},
	}
}

func defaultBundles() []domain.TemplateBundle {
	return []domain.TemplateBundle{
		{
			ID:          "standard",
			Name:        "Standard",
			Description: "Fiche produit généraliste",
			SectionIDs:  []string{"introduction", "benefits", "technical_specs", "use_cases", "conclusion"},
		},
		{
			ID:          "technical",
			Name:        "Technique",
			Description: "Fiche détaillée pour produits techniques",
			SectionIDs:  []string{"introduction", "technical_specs", "installation", "maintenance", "warranty", "conclusion"},
		},
		{
			ID:          "commercial",
			Name:        "Commercial",
			Description: "Fiche orientée conversion",
			SectionIDs:  []string{"introduction", "benefits", "customer_reviews", "comparison", "conclusion"},
		},
	}
}

// StructuredRequest selects sections either explicitly, through a
// bundle, or by falling back to the default-enabled set.
type StructuredRequest struct {
	Product    domain.ProductInfo
	Tone       domain.ToneStyle
	Options    domain.GenerationOptions
	SectionIDs []string
	BundleID   string
}

// StructuredGenerateUseCase writes a description section by section and
// assembles the result into one document.
type StructuredGenerateUseCase struct {
	llm       ports.TextGenerator
	tones     ports.ToneLibrary
	registry  ports.ProviderRegistry
	retriever contextRetriever

	sections map[string]domain.Section
	bundles  map[string]domain.TemplateBundle
}

func NewStructuredGenerateUseCase(
	llm ports.TextGenerator,
	tones ports.ToneLibrary,
	registry ports.ProviderRegistry,
	retriever contextRetriever,
) *StructuredGenerateUseCase {
	sections := make(map[string]domain.Section)
	for _, section := range defaultSections() {
		sections[section.ID] = section
	}
	bundles := make(map[string]domain.TemplateBundle)
	for _, bundle := range defaultBundles() {
		bundles[bundle.ID] = bundle
	}
	return &StructuredGenerateUseCase{
		llm:       llm,
		tones:     tones,
		registry:  registry,
		retriever: retriever,
		sections:  sections,
		bundles:   bundles,
	}
}

func (uc *StructuredGenerateUseCase) Sections() []domain.Section {
	out := make([]domain.Section, 0, len(uc.sections))
	for _, section := range uc.sections {
		out = append(out, section)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (uc *StructuredGenerateUseCase) Bundles() []domain.TemplateBundle {
	out := make([]domain.TemplateBundle, 0, len(uc.bundles))
	for _, bundle := range uc.bundles {
		out = append(out, bundle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (uc *StructuredGenerateUseCase) Generate(ctx context.Context, req StructuredRequest) (domain.StructuredDescription, error) {
	if strings.TrimSpace(req.Product.Name) == "" {
		return domain.StructuredDescription{}, domain.WrapError(domain.ErrInvalidInput, "structured generation", errors.New("product name is required"))
	}

	providerInfo, err := uc.registry.Resolve(req.Options.Provider, req.Options.Model)
	if err != nil {
		return domain.StructuredDescription{}, err
	}

	selected, err := uc.selectSections(req)
	if err != nil {
		return domain.StructuredDescription{}, err
	}

	productContext := formatProductContext(req.Product)
	toneInstructions := toneInstructionsFor(uc.tones, req.Tone)

	contents := make([]domain.SectionContent, 0, len(selected))
	var assembly strings.Builder
	for _, section := range selected {
		ragContext := uc.sectionRAGContext(ctx, section, req)
		prompt := domain.PromptTemplate{Body: section.PromptTemplate}.Render(map[string]string{
			"product_context":   productContext,
			"tone_instructions": toneInstructions,
			"rag_context":       ragContext,
			"product_name":      req.Product.Name,
		})

		content, err := uc.llm.Generate(ctx, prompt)
		if err != nil {
			return domain.StructuredDescription{}, domain.WrapError(domain.ErrGeneration, "structured generation: "+section.ID, err)
		}
		content = strings.TrimSpace(content)
		if content == "" {
			return domain.StructuredDescription{}, domain.WrapError(domain.ErrGeneration, "structured generation: "+section.ID, errors.New("empty model response"))
		}

		contents = append(contents, domain.SectionContent{
			SectionID: section.ID,
			Name:      section.Name,
			Content:   content,
		})
		fmt.Fprintf(&assembly, "## %s\n\n%s\n\n", section.Name, content)
	}

	return domain.StructuredDescription{
		Sections: contents,
		Assembly: strings.TrimSpace(assembly.String()),
		Provider: providerInfo,
	}, nil
}

// selectSections resolves the requested section set and always includes
// required sections, ordered by display order.
func (uc *StructuredGenerateUseCase) selectSections(req StructuredRequest) ([]domain.Section, error) {
	ids := req.SectionIDs
	if len(ids) == 0 && req.BundleID != "" {
		bundle, ok := uc.bundles[req.BundleID]
		if !ok {
			return nil, domain.WrapError(domain.ErrInvalidInput, "structured generation", fmt.Errorf("unknown template bundle %q", req.BundleID))
		}
		ids = bundle.SectionIDs
	}

	selected := make(map[string]domain.Section)
	if len(ids) == 0 {
		for id, section := range uc.sections {
			if section.DefaultEnabled {
				selected[id] = section
			}
		}
	} else {
		for _, id := range ids {
			section, ok := uc.sections[id]
			if !ok {
				return nil, domain.WrapError(domain.ErrInvalidInput, "structured generation", fmt.Errorf("unknown section %q", id))
			}
			selected[id] = section
		}
	}
	for id, section := range uc.sections {
		if section.Required {
			selected[id] = section
		}
	}

	out := make([]domain.Section, 0, len(selected))
	for _, section := range selected {
		out = append(out, section)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (uc *StructuredGenerateUseCase) sectionRAGContext(ctx context.Context, section domain.Section, req StructuredRequest) string {
	if !req.Options.UseRAG || uc.retriever == nil || req.Options.ClientID == "" || section.RAGQueryTemplate == "" {
		return ""
	}
	query := domain.PromptTemplate{Body: section.RAGQueryTemplate}.Render(map[string]string{
		"product_name": req.Product.Name,
	})
	block, err := uc.retriever.ContextBlock(ctx, query, domain.SearchFilter{
		ClientID:    req.Options.ClientID,
		DocumentIDs: req.Options.DocumentIDs,
	})
	if err != nil {
		slog.Warn("section_rag_context_unavailable", "section", section.ID, "error", err)
		return ""
	}
	return block
}
