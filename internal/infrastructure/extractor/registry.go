package extractor

import (
	"context"
	"strings"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

// Registry routes a document to the extractor matching its MIME type.
// Unknown types fall back to the plain-text extractor, which rejects
// binary payloads itself.
type Registry struct {
	byMime   map[string]ports.TextExtractor
	fallback ports.TextExtractor
}

func NewRegistry(fallback ports.TextExtractor) *Registry {
	return &Registry{
		byMime:   make(map[string]ports.TextExtractor),
		fallback: fallback,
	}
}

func (r *Registry) Register(mimeType string, extractor ports.TextExtractor) {
	r.byMime[normalizeMime(mimeType)] = extractor
}

func (r *Registry) Extract(ctx context.Context, doc *domain.ClientDocument) (string, error) {
	if extractor, ok := r.byMime[normalizeMime(doc.MimeType)]; ok {
		return extractor.Extract(ctx, doc)
	}
	return r.fallback.Extract(ctx, doc)
}

func normalizeMime(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	// Parameters like "; charset=utf-8" never matter for routing.
	if idx := strings.Index(mimeType, ";"); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return mimeType
}
