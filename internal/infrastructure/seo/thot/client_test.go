package thot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

const samplePayload = `{
	"KW_obligatoires": [["batterie externe", 3, 92.5], ["charge rapide", 2, 80], {"keyword": "usb-c", "min_occurrences": 1, "score": 74}],
	"KW_complementaires": [["powerbank", 1, 60]],
	"ngrams": "batterie externe 10000mah; charge rapide usb-c; ; compacte et legere",
	"questions": "quelle capacite choisir ?;combien de recharges ?",
	"mots_requis": 650,
	"score_target": 85,
	"max_suroptimisation": 0,
	"concurrence": [
		{"title": "Top batteries", "h1": "Batteries externes", "h2": "Comparatif", "score": 91, "word_count": 1200, "url": "https://example.fr/a"},
		{"title": "B", "score": 80, "word_count": 900, "url": "https://example.fr/b"},
		{"title": "C", "score": 75, "word_count": 800, "url": "https://example.fr/c"},
		{"title": "D", "score": 70, "word_count": 700, "url": "https://example.fr/d"}
	]
}`

func TestFetchGuideReducesPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/commande-api" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("keywords") != "batterie externe" {
			t.Fatalf("unexpected keywords %q", r.URL.Query().Get("keywords"))
		}
		if r.URL.Query().Get("apikey") != "secret" {
			t.Fatalf("missing api key")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer server.Close()

	client := New(server.URL, "secret", nil)
	insights, err := client.FetchGuide(context.Background(), "batterie externe")
	if err != nil {
		t.Fatalf("FetchGuide() error = %v", err)
	}

	if len(insights.RequiredKeywords) != 3 {
		t.Fatalf("expected 3 required keywords, got %d", len(insights.RequiredKeywords))
	}
	first := insights.RequiredKeywords[0]
	if first.Keyword != "batterie externe" || first.MinOccurrences != 3 || first.Score != 92.5 {
		t.Fatalf("unexpected first keyword: %+v", first)
	}
	if insights.RequiredKeywords[2].Keyword != "usb-c" {
		t.Fatalf("object-shaped keyword entry not parsed: %+v", insights.RequiredKeywords[2])
	}
	if len(insights.Expressions) != 3 {
		t.Fatalf("expected empty ngram segments dropped, got %v", insights.Expressions)
	}
	if len(insights.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %v", insights.Questions)
	}
	if insights.TargetWordCount != 650 || insights.TargetScore != 85 {
		t.Fatalf("unexpected targets: %+v", insights)
	}
	if insights.MaxOveroptimization != 5 {
		t.Fatalf("expected default max overoptimization 5, got %v", insights.MaxOveroptimization)
	}
	if len(insights.Competition) != 3 {
		t.Fatalf("expected competition capped at 3, got %d", len(insights.Competition))
	}
}

func TestFetchGuideWithoutKeyIsConfigurationError(t *testing.T) {
	client := New("", "", nil)
	_, err := client.FetchGuide(context.Background(), "batterie externe")
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFetchGuideNon2xxIsExternalServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := New(server.URL, "secret", nil)
	_, err := client.FetchGuide(context.Background(), "batterie externe")
	if !domain.IsKind(err, domain.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

func TestFetchGuideMalformedPayloadIsExternalServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := New(server.URL, "secret", nil)
	_, err := client.FetchGuide(context.Background(), "batterie externe")
	if !domain.IsKind(err, domain.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}
