package valueserp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://api.valueserp.com"

// Marketplaces dominate French SERPs for most product queries but
// their pages are useless as copywriting references.
var excludedDomains = []string{"amazon.fr", "ebay.fr", "leboncoin.fr", "rakuten.fr"}

// Client performs organic searches through the ValueSERP API,
// localized for the French market.
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

func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if c.apiKey == "" {
		return nil, domain.WrapError(
			domain.ErrConfiguration,
			"competitor search",
			errors.New("VALUESERP_API_KEY is not set"),
		)
	}
	if limit <= 0 {
		limit = 3
	}

	var urls []string
	call := func(callCtx context.Context) error {
		found, err := c.search(callCtx, query, limit)
		if err != nil {
			return err
		}
		urls = found
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "valueserp.search", call, classifySearchError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if domain.IsKind(err, domain.ErrExternalService) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrExternalService, "competitor search", err)
	}
	return urls, nil
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("q", query)
	params.Set("location", "France")
	params.Set("google_domain", "google.fr")
	params.Set("gl", "fr")
	params.Set("hl", "fr")
	// Ask for extra results so marketplace filtering still leaves
	// enough pages.
	params.Set("num", strconv.Itoa(limit+2))

	endpoint := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("valueserp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, domain.WrapError(domain.ErrExternalService, "competitor search", fmt.Errorf("valueserp status %d: %s", resp.StatusCode, msg))
	}

	var payload struct {
		OrganicResults []struct {
			Link string `json:"link"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, domain.WrapError(domain.ErrExternalService, "competitor search", fmt.Errorf("decode search payload: %w", err))
	}

	urls := make([]string, 0, limit)
	for _, result := range payload.OrganicResults {
		if result.Link == "" || isExcluded(result.Link) {
			continue
		}
		urls = append(urls, result.Link)
		if len(urls) == limit {
			break
		}
	}
	return urls, nil
}

func isExcluded(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return true
	}
	host := strings.ToLower(parsed.Hostname())
	for _, excluded := range excludedDomains {
		if host == excluded || strings.HasSuffix(host, "."+excluded) {
			return true
		}
	}
	return false
}

func classifySearchError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
