package webpage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	fetchTimeout = 10 * time.Second

	// Content shorter than this is navigation noise, longer content
	// is truncated before being fed to the summarization prompt.
	minContentChars = 200
	maxContentChars = 10000
)

// Fetcher downloads competitor pages and extracts their visible text.
type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create page request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch page status: %s", resp.Status)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page html: %w", err)
	}

	text := ExtractText(root)
	if utf8.RuneCountInString(text) < minContentChars {
		return "", fmt.Errorf("page content too short: %s", url)
	}
	return truncateRunes(text, maxContentChars), nil
}

// ExtractText walks the DOM, drops chrome elements and prefers the
// main content containers when they carry enough text.
func ExtractText(root *html.Node) string {
	if mainText := longestContainerText(root); utf8.RuneCountInString(mainText) >= minContentChars {
		return mainText
	}
	return collectText(root)
}

var droppedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"iframe":   true,
	"form":     true,
}

var contentElements = map[string]bool{
	"main":    true,
	"article": true,
	"section": true,
}

func longestContainerText(node *html.Node) string {
	var best string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if droppedElements[n.Data] {
				return
			}
			if contentElements[n.Data] {
				if text := collectText(n); len(text) > len(best) {
					best = text
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return best
}

func collectText(node *html.Node) string {
	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && droppedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				builder.WriteString(text)
				builder.WriteString(" ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return strings.TrimSpace(normalizeSpaces(builder.String()))
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
