package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

// suggestionMarkers delimit the SEO suggestion block appended by the
// model at the end of a description. Both accented and plain spellings
// show up in practice.
var suggestionMarkers = []string{"AMÉLIORATIONS SEO", "AMELIORATIONS SEO"}

type competitorAnalyzer interface {
	Analyze(ctx context.Context, productName, category, searchQuery string) (domain.CompetitorInsights, error)
}

type seoGuideService interface {
	Guide(ctx context.Context, keywords string) (domain.SeoInsights, error)
}

type contextRetriever interface {
	ContextBlock(ctx context.Context, query string, filter domain.SearchFilter) (string, error)
}

// GenerateRequest is one description generation job.
type GenerateRequest struct {
	Product            domain.ProductInfo
	Tone               domain.ToneStyle
	Options            domain.GenerationOptions
	CompetitorInsights *domain.CompetitorInsights
}

// GenerateDescriptionUseCase builds the product description prompt from
// product data, tone instructions and optional enrichment sources, and
// runs it against the LLM.
type GenerateDescriptionUseCase struct {
	llm         ports.TextGenerator
	prompts     ports.PromptStore
	tones       ports.ToneLibrary
	registry    ports.ProviderRegistry
	seoGuide    seoGuideService
	competitors competitorAnalyzer
	retriever   contextRetriever
}

func NewGenerateDescriptionUseCase(
	llm ports.TextGenerator,
	prompts ports.PromptStore,
	tones ports.ToneLibrary,
	registry ports.ProviderRegistry,
	seoGuide seoGuideService,
	competitors competitorAnalyzer,
	retriever contextRetriever,
) *GenerateDescriptionUseCase {
	return &GenerateDescriptionUseCase{
		llm:         llm,
		prompts:     prompts,
		tones:       tones,
		registry:    registry,
		seoGuide:    seoGuide,
		competitors: competitors,
		retriever:   retriever,
	}
}

func (uc *GenerateDescriptionUseCase) Generate(ctx context.Context, req GenerateRequest) (domain.GenerationResult, error) {
	if strings.TrimSpace(req.Product.Name) == "" {
		return domain.GenerationResult{}, domain.WrapError(domain.ErrInvalidInput, "generate description", errors.New("product name is required"))
	}

	providerInfo, err := uc.registry.Resolve(req.Options.Provider, req.Options.Model)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	insights, err := uc.competitorInsights(ctx, req)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	seoGuide, err := uc.seoGuideBlock(ctx, req)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	ragContext, err := uc.ragContext(ctx, req)
	if err != nil {
		return domain.GenerationResult{}, err
	}

	tpl, err := uc.prompts.Get(domain.PromptProductDescription)
	if err != nil {
		return domain.GenerationResult{}, err
	}
	prompt := tpl.Render(uc.promptVars(req, insights, seoGuide, ragContext))

	response, err := uc.generator(providerInfo).Generate(ctx, prompt)
	if err != nil {
		return domain.GenerationResult{}, domain.WrapError(domain.ErrGeneration, "generate description", err)
	}
	if strings.TrimSpace(response) == "" {
		return domain.GenerationResult{}, domain.WrapError(domain.ErrGeneration, "generate description", errors.New("empty model response"))
	}

	description, suggestions := splitSeoSuggestions(response)
	if !req.Options.SeoOptimization {
		suggestions = nil
	}

	return domain.GenerationResult{
		ProductDescription: description,
		SeoSuggestions:     suggestions,
		CompetitorInsights: insights,
		Provider:           providerInfo,
	}, nil
}

// generator honors a per-request model when the underlying generator
// supports rebinding, otherwise the configured default is used.
func (uc *GenerateDescriptionUseCase) generator(info domain.ProviderInfo) ports.TextGenerator {
	if selector, ok := uc.llm.(ports.ModelSelector); ok {
		return selector.ForModel(info.Model)
	}
	return uc.llm
}

func (uc *GenerateDescriptionUseCase) competitorInsights(ctx context.Context, req GenerateRequest) (*domain.CompetitorInsights, error) {
	if req.CompetitorInsights != nil {
		return req.CompetitorInsights, nil
	}
	if !req.Options.CompetitorAnalysis || uc.competitors == nil {
		return nil, nil
	}
	insights, err := uc.competitors.Analyze(ctx, req.Product.Name, req.Product.Category, "")
	if err != nil {
		return nil, err
	}
	return &insights, nil
}

func (uc *GenerateDescriptionUseCase) seoGuideBlock(ctx context.Context, req GenerateRequest) (string, error) {
	if !req.Options.UseSeoGuide || uc.seoGuide == nil {
		return "", nil
	}
	keywords := strings.TrimSpace(req.Options.SeoGuideKeywords)
	if keywords == "" {
		keywords = strings.Join(req.Product.Keywords, ", ")
	}
	if strings.TrimSpace(keywords) == "" {
		keywords = req.Product.Name
	}
	insights, err := uc.seoGuide.Guide(ctx, keywords)
	if err != nil {
		return "", err
	}
	return formatSeoGuide(insights), nil
}

func (uc *GenerateDescriptionUseCase) ragContext(ctx context.Context, req GenerateRequest) (string, error) {
	if !req.Options.UseRAG || uc.retriever == nil || req.Options.ClientID == "" {
		return "", nil
	}
	query := req.Product.Name
	if len(req.Product.Keywords) > 0 {
		query += " " + strings.Join(req.Product.Keywords, " ")
	}
	block, err := uc.retriever.ContextBlock(ctx, query, domain.SearchFilter{
		ClientID:    req.Options.ClientID,
		DocumentIDs: req.Options.DocumentIDs,
	})
	if err != nil {
		// Retrieval is an enrichment, a degraded run without client
		// context beats no description at all.
		slog.Warn("rag_context_unavailable", "client_id", req.Options.ClientID, "error", err)
		return "", nil
	}
	return block, nil
}

func (uc *GenerateDescriptionUseCase) promptVars(
	req GenerateRequest,
	insights *domain.CompetitorInsights,
	seoGuide, ragContext string,
) map[string]string {
	vars := map[string]string{
		"product_name":         req.Product.Name,
		"product_category":     req.Product.Category,
		"product_description":  req.Product.Description,
		"technical_specs":      formatSpecs(req.Product.TechnicalSpecs),
		"keywords":             strings.Join(req.Product.Keywords, ", "),
		"tone_instructions":    toneInstructionsFor(uc.tones, req.Tone),
		"persona_instructions": personaInstructions(req.Tone),
		"seo_guide":            seoGuide,
		"competitor_insights":  formatCompetitorInsights(insights),
		"rag_context":          ragContext,
	}
	if req.Options.SeoOptimization {
		vars["seo_suggestions_instruction"] = "Termine ta réponse par une section « AMÉLIORATIONS SEO » listant 3 à 5 suggestions concrètes, une par ligne, chacune précédée d'un tiret."
	} else {
		vars["seo_suggestions_instruction"] = ""
	}
	return vars
}

func toneInstructionsFor(tones ports.ToneLibrary, tone domain.ToneStyle) string {
	if def, ok := tones.Instructions(tone.Tone); ok {
		return def.Instructions
	}

	// Unknown tone identifiers fall back to whatever free-form style
	// material the caller supplied.
	parts := make([]string, 0, 3)
	if tone.Style != "" {
		parts = append(parts, "Style demandé : "+tone.Style)
	}
	if tone.ToneExample != "" {
		parts = append(parts, "Exemple de ton à imiter :\n"+tone.ToneExample)
	}
	if tone.BrandName != "" {
		parts = append(parts, "Marque : "+tone.BrandName)
	}
	if len(parts) == 0 {
		return "Adopte un ton professionnel et vendeur."
	}
	return strings.Join(parts, "\n")
}

func personaInstructions(tone domain.ToneStyle) string {
	if strings.TrimSpace(tone.PersonaTarget) == "" {
		return ""
	}
	return "Public cible : " + tone.PersonaTarget + ". Adapte le vocabulaire et les arguments à ce public."
}

func formatSpecs(specs []domain.Spec) string {
	if len(specs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(specs))
	for _, spec := range specs {
		lines = append(lines, fmt.Sprintf("- %s : %s", spec.Name, spec.Value))
	}
	return strings.Join(lines, "\n")
}

func formatSeoGuide(insights domain.SeoInsights) string {
	var sb strings.Builder

	if len(insights.RequiredKeywords) > 0 {
		sb.WriteString("Mots-clés obligatoires :\n")
		for _, kw := range insights.RequiredKeywords {
			fmt.Fprintf(&sb, "- %s (au moins %d fois)\n", kw.Keyword, kw.MinOccurrences)
		}
	}
	if len(insights.ComplementaryKeywords) > 0 {
		sb.WriteString("Mots-clés complémentaires : " + strings.Join(insights.ComplementaryKeywords, ", ") + "\n")
	}
	if len(insights.Expressions) > 0 {
		sb.WriteString("Expressions à placer : " + strings.Join(insights.Expressions, " ; ") + "\n")
	}
	if len(insights.Questions) > 0 {
		sb.WriteString("Questions à couvrir :\n")
		for _, q := range insights.Questions {
			sb.WriteString("- " + q + "\n")
		}
	}
	if insights.TargetWordCount > 0 {
		fmt.Fprintf(&sb, "Longueur cible : environ %d mots\n", insights.TargetWordCount)
	}
	if insights.TargetScore > 0 {
		fmt.Fprintf(&sb, "Score d'optimisation visé : %.0f (sans dépasser %.0f de suroptimisation)\n", insights.TargetScore, insights.MaxOveroptimization)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatCompetitorInsights(insights *domain.CompetitorInsights) string {
	if insights == nil {
		return ""
	}
	var sb strings.Builder
	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(title + " :\n")
		for _, item := range items {
			sb.WriteString("- " + item + "\n")
		}
	}
	writeList("Caractéristiques mises en avant par la concurrence", insights.KeyFeatures)
	writeList("Arguments différenciants observés", insights.UniqueSellingPoints)
	writeList("Spécifications récurrentes", insights.CommonSpecifications)
	if insights.ContentStructure != "" {
		sb.WriteString("Structure de contenu dominante : " + insights.ContentStructure + "\n")
	}
	writeList("Mots-clés SEO concurrents", insights.SeoKeywords)
	return strings.TrimRight(sb.String(), "\n")
}

// splitSeoSuggestions separates the description body from the trailing
// suggestion block, when the model produced one.
func splitSeoSuggestions(response string) (string, []string) {
	idx := -1
	for _, marker := range suggestionMarkers {
		if i := indexFold(response, marker); i >= 0 && (idx < 0 || i < idx) {
			idx = i
		}
	}
	if idx < 0 {
		return strings.TrimSpace(response), nil
	}

	description := strings.TrimSpace(strings.TrimRight(response[:idx], " \n\t#*-:"))
	suggestions := make([]string, 0, 5)
	block := response[idx:]
	if nl := strings.Index(block, "\n"); nl >= 0 {
		block = block[nl+1:]
	} else {
		block = ""
	}
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•0123456789. "))
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	return description, suggestions
}

// indexFold returns the byte offset of the first case-insensitive
// occurrence of substr in s. The offset indexes s itself, so it stays
// valid for runes whose case mapping changes byte length.
func indexFold(s, substr string) int {
	want := []rune(substr)
	for i := 0; i < len(s); {
		if matchFoldAt(s, i, want) {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1
}

func matchFoldAt(s string, start int, want []rune) bool {
	j := start
	for _, wr := range want {
		r, size := utf8.DecodeRuneInString(s[j:])
		if size == 0 {
			return false
		}
		if unicode.ToUpper(r) != unicode.ToUpper(wr) {
			return false
		}
		j += size
	}
	return true
}
