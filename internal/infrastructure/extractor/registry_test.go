package extractor

import (
	"context"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

type staticExtractor struct {
	text string
}

func (s *staticExtractor) Extract(context.Context, *domain.ClientDocument) (string, error) {
	return s.text, nil
}

func TestRegistryRoutesByMime(t *testing.T) {
	registry := NewRegistry(&staticExtractor{text: "fallback"})
	registry.Register("application/pdf", &staticExtractor{text: "pdf"})

	doc := &domain.ClientDocument{MimeType: "application/pdf"}
	text, err := registry.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "pdf" {
		t.Fatalf("wrong extractor: %q", text)
	}
}

func TestRegistryIgnoresMimeParameters(t *testing.T) {
	registry := NewRegistry(&staticExtractor{text: "fallback"})
	registry.Register("text/plain", &staticExtractor{text: "plain"})

	doc := &domain.ClientDocument{MimeType: "Text/Plain; charset=utf-8"}
	text, _ := registry.Extract(context.Background(), doc)
	if text != "plain" {
		t.Fatalf("mime parameters broke routing: %q", text)
	}
}

func TestRegistryFallsBack(t *testing.T) {
	registry := NewRegistry(&staticExtractor{text: "fallback"})
	doc := &domain.ClientDocument{MimeType: "application/octet-stream"}
	text, _ := registry.Extract(context.Background(), doc)
	if text != "fallback" {
		t.Fatalf("expected fallback, got %q", text)
	}
}
