package valueserp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

func TestSearchFiltersMarketplacesAndCapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("google_domain"); got != "google.fr" {
			t.Fatalf("expected google.fr, got %q", got)
		}
		if got := r.URL.Query().Get("num"); got != "5" {
			t.Fatalf("expected num=5 for limit 3, got %q", got)
		}
		payload := map[string]any{
			"organic_results": []map[string]string{
				{"link": "https://www.amazon.fr/dp/B0TEST"},
				{"link": "https://boutique-a.fr/batterie"},
				{"link": "https://www.ebay.fr/itm/1"},
				{"link": "https://boutique-b.fr/powerbank"},
				{"link": "https://blog-c.fr/guide"},
				{"link": "https://boutique-d.fr/autre"},
			},
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := New(server.URL, "key", nil)
	urls, err := client.Search(context.Background(), "batterie externe", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []string{"https://boutique-a.fr/batterie", "https://boutique-b.fr/powerbank", "https://blog-c.fr/guide"}
	if len(urls) != len(want) {
		t.Fatalf("expected %d urls, got %v", len(want), urls)
	}
	for i, u := range want {
		if urls[i] != u {
			t.Fatalf("url[%d] = %q, want %q", i, urls[i], u)
		}
	}
}

func TestSearchWithoutKeyIsConfigurationError(t *testing.T) {
	client := New("", "", nil)
	_, err := client.Search(context.Background(), "x", 3)
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearchNon2xxIsExternalServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "key", nil)
	_, err := client.Search(context.Background(), "x", 3)
	if !domain.IsKind(err, domain.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}
