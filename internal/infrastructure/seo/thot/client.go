package thot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/infrastructure/resilience"
)

const (
	defaultBaseURL = "https://api.thot-seo.fr"

	maxRequiredKeywords        = 15
	maxComplementaryKeywords   = 10
	maxExpressions             = 15
	maxQuestions               = 10
	maxCompetitionEntries      = 3
	defaultMaxOveroptimization = 5
)

// Client fetches SEO writing guides from the THOT API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey string, executor *resilience.Executor) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		executor:   executor,
	}
}

func (c *Client) FetchGuide(ctx context.Context, keywords string) (domain.SeoInsights, error) {
	if c.apiKey == "" {
		return domain.SeoInsights{}, domain.WrapError(
			domain.ErrConfiguration,
			"fetch seo guide",
			errors.New("THOT_API_KEY is not set"),
		)
	}

	var payload guidePayload
	call := func(callCtx context.Context) error {
		return c.fetch(callCtx, keywords, &payload)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "thot.guide", call, classifyGuideError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if domain.IsKind(err, domain.ErrExternalService) || domain.IsKind(err, domain.ErrParse) {
			return domain.SeoInsights{}, err
		}
		return domain.SeoInsights{}, domain.WrapError(domain.ErrExternalService, "fetch seo guide", err)
	}

	return payload.toInsights(), nil
}

func (c *Client) fetch(ctx context.Context, keywords string, out *guidePayload) error {
	query := url.Values{}
	query.Set("keywords", keywords)
	query.Set("apikey", c.apiKey)

	endpoint := c.baseURL + "/commande-api?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create guide request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("thot guide request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return domain.WrapError(domain.ErrExternalService, "fetch seo guide", fmt.Errorf("thot status %d: %s", resp.StatusCode, msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.WrapError(domain.ErrExternalService, "fetch seo guide", fmt.Errorf("decode guide payload: %w", err))
	}
	return nil
}

func classifyGuideError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

type guidePayload struct {
	RequiredKeywords      []keywordEntry   `json:"KW_obligatoires"`
	ComplementaryKeywords []keywordEntry   `json:"KW_complementaires"`
	Ngrams                string           `json:"ngrams"`
	Questions             string           `json:"questions"`
	RequiredWords         int              `json:"mots_requis"`
	TargetScore           float64          `json:"score_target"`
	MaxOveroptimization   float64          `json:"max_suroptimisation"`
	Competition           []concurrenceRow `json:"concurrence"`
}

type concurrenceRow struct {
	Title     string  `json:"title"`
	H1        string  `json:"h1"`
	H2        string  `json:"h2"`
	Score     float64 `json:"score"`
	WordCount int     `json:"word_count"`
	URL       string  `json:"url"`
}

// keywordEntry tolerates both ["mot", occurrences, score] arrays and
// {"keyword": ...} objects, the API has shipped both shapes.
type keywordEntry struct {
	Keyword        string
	MinOccurrences int
	Score          float64
}

func (k *keywordEntry) UnmarshalJSON(data []byte) error {
	var asArray []json.RawMessage
	if err := json.Unmarshal(data, &asArray); err == nil {
		if len(asArray) > 0 {
			_ = json.Unmarshal(asArray[0], &k.Keyword)
		}
		if len(asArray) > 1 {
			var n float64
			_ = json.Unmarshal(asArray[1], &n)
			k.MinOccurrences = int(n)
		}
		if len(asArray) > 2 {
			_ = json.Unmarshal(asArray[2], &k.Score)
		}
		return nil
	}

	var asObject struct {
		Keyword        string  `json:"keyword"`
		MinOccurrences int     `json:"min_occurrences"`
		Score          float64 `json:"score"`
	}
	if err := json.Unmarshal(data, &asObject); err != nil {
		return err
	}
	k.Keyword = asObject.Keyword
	k.MinOccurrences = asObject.MinOccurrences
	k.Score = asObject.Score
	return nil
}

func (p guidePayload) toInsights() domain.SeoInsights {
	insights := domain.SeoInsights{
		TargetWordCount:     p.RequiredWords,
		TargetScore:         p.TargetScore,
		MaxOveroptimization: p.MaxOveroptimization,
	}
	if insights.MaxOveroptimization <= 0 {
		insights.MaxOveroptimization = defaultMaxOveroptimization
	}

	for _, entry := range limitEntries(p.RequiredKeywords, maxRequiredKeywords) {
		if entry.Keyword == "" {
			continue
		}
		insights.RequiredKeywords = append(insights.RequiredKeywords, domain.RequiredKeyword{
			Keyword:        entry.Keyword,
			MinOccurrences: entry.MinOccurrences,
			Score:          entry.Score,
		})
	}
	for _, entry := range limitEntries(p.ComplementaryKeywords, maxComplementaryKeywords) {
		if entry.Keyword == "" {
			continue
		}
		insights.ComplementaryKeywords = append(insights.ComplementaryKeywords, entry.Keyword)
	}

	insights.Expressions = splitList(p.Ngrams, maxExpressions)
	insights.Questions = splitList(p.Questions, maxQuestions)

	for i, row := range p.Competition {
		if i >= maxCompetitionEntries {
			break
		}
		insights.Competition = append(insights.Competition, domain.CompetitorPage{
			Title:     row.Title,
			H1:        row.H1,
			H2:        row.H2,
			Score:     row.Score,
			WordCount: row.WordCount,
			URL:       row.URL,
		})
	}
	return insights
}

func limitEntries(entries []keywordEntry, max int) []keywordEntry {
	if len(entries) > max {
		return entries[:max]
	}
	return entries
}

func splitList(raw string, max int) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == max {
			break
		}
	}
	return out
}
