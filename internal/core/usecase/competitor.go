package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

const competitorPageCount = 3

// CompetitorAnalysisUseCase gathers competitor page text for a product
// and asks the LLM to summarize it into structured insights.
type CompetitorAnalysisUseCase struct {
	search  ports.SearchProvider
	fetcher ports.PageFetcher
	llm     ports.TextGenerator
	prompts ports.PromptStore
}

func NewCompetitorAnalysisUseCase(
	search ports.SearchProvider,
	fetcher ports.PageFetcher,
	llm ports.TextGenerator,
	prompts ports.PromptStore,
) *CompetitorAnalysisUseCase {
	return &CompetitorAnalysisUseCase{
		search:  search,
		fetcher: fetcher,
		llm:     llm,
		prompts: prompts,
	}
}

func (uc *CompetitorAnalysisUseCase) Analyze(
	ctx context.Context,
	productName, category, searchQuery string,
) (domain.CompetitorInsights, error) {
	if strings.TrimSpace(productName) == "" {
		return domain.CompetitorInsights{}, domain.WrapError(domain.ErrInvalidInput, "competitor analysis", errors.New("product name is required"))
	}
	query := strings.TrimSpace(searchQuery)
	if query == "" {
		query = strings.TrimSpace(productName + " " + category)
	}

	urls, err := uc.search.Search(ctx, query, competitorPageCount)
	if err != nil {
		return domain.CompetitorInsights{}, err
	}

	contents := uc.fetchPages(ctx, urls)
	if len(contents) == 0 {
		return domain.CompetitorInsights{}, domain.WrapError(
			domain.ErrInsufficientData,
			"competitor analysis",
			fmt.Errorf("no usable competitor page among %d results", len(urls)),
		)
	}

	return uc.summarize(ctx, productName, category, contents)
}

// fetchPages tolerates individual page failures, a dead page is
// skipped rather than failing the whole analysis.
func (uc *CompetitorAnalysisUseCase) fetchPages(ctx context.Context, urls []string) []string {
	contents := make([]string, 0, len(urls))
	for _, pageURL := range urls {
		text, err := uc.fetcher.FetchText(ctx, pageURL)
		if err != nil {
			slog.Warn("competitor_page_skipped", "url", pageURL, "error", err)
			continue
		}
		contents = append(contents, fmt.Sprintf("Source : %s\n%s", pageURL, text))
	}
	return contents
}

func (uc *CompetitorAnalysisUseCase) summarize(
	ctx context.Context,
	productName, category string,
	contents []string,
) (domain.CompetitorInsights, error) {
	tpl, err := uc.prompts.Get(domain.PromptCompetitorAnalysis)
	if err != nil {
		return domain.CompetitorInsights{}, err
	}

	prompt := tpl.Render(map[string]string{
		"product_name":       productName,
		"product_category":   category,
		"competitor_content": strings.Join(contents, "\n\n---\n\n"),
	})

	raw, err := uc.llm.GenerateJSON(ctx, prompt)
	if err != nil {
		return domain.CompetitorInsights{}, domain.WrapError(domain.ErrExternalService, "competitor summarization", err)
	}

	var payload competitorInsightsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.CompetitorInsights{}, domain.WrapError(domain.ErrParse, "competitor summarization", err)
	}
	return payload.toInsights(), nil
}

type competitorInsightsPayload struct {
	KeyFeatures          flexList `json:"key_features"`
	UniqueSellingPoints  flexList `json:"unique_selling_points"`
	CommonSpecifications flexList `json:"common_specifications"`
	ContentStructure     string   `json:"content_structure"`
	SeoKeywords          flexList `json:"seo_keywords"`
}

func (p competitorInsightsPayload) toInsights() domain.CompetitorInsights {
	return domain.CompetitorInsights{
		KeyFeatures:          p.KeyFeatures,
		UniqueSellingPoints:  p.UniqueSellingPoints,
		CommonSpecifications: p.CommonSpecifications,
		ContentStructure:     p.ContentStructure,
		SeoKeywords:          p.SeoKeywords,
	}
}

// flexList accepts both JSON arrays and a single string with
// dash-prefixed lines, models frequently return either shape.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	var asSlice []string
	if err := json.Unmarshal(data, &asSlice); err == nil {
		*l = asSlice
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return err
	}

	items := make([]string, 0, 4)
	for _, line := range strings.Split(asString, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		if line != "" {
			items = append(items, line)
		}
	}
	*l = items
	return nil
}
