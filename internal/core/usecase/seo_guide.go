package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

// SeoGuideUseCase caches fetched guides by normalized keyword set for
// the process lifetime, identical keyword sets inside one batch run
// hit the external API once.
type SeoGuideUseCase struct {
	provider ports.SeoGuideProvider

	mu    sync.RWMutex
	cache map[string]domain.SeoInsights
}

func NewSeoGuideUseCase(provider ports.SeoGuideProvider) *SeoGuideUseCase {
	return &SeoGuideUseCase{
		provider: provider,
		cache:    make(map[string]domain.SeoInsights),
	}
}

func (uc *SeoGuideUseCase) Guide(ctx context.Context, keywords string) (domain.SeoInsights, error) {
	key := normalizeKeywords(keywords)
	if key == "" {
		return domain.SeoInsights{}, domain.WrapError(domain.ErrInvalidInput, "seo guide", errors.New("keywords are required"))
	}

	uc.mu.RLock()
	cached, ok := uc.cache[key]
	uc.mu.RUnlock()
	if ok {
		return cached, nil
	}

	insights, err := uc.provider.FetchGuide(ctx, keywords)
	if err != nil {
		return domain.SeoInsights{}, err
	}

	// Concurrent writers racing on the same key compute the same
	// value, last write wins.
	uc.mu.Lock()
	uc.cache[key] = insights
	uc.mu.Unlock()
	return insights, nil
}

func normalizeKeywords(keywords string) string {
	fields := strings.FieldsFunc(strings.ToLower(keywords), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return ""
	}
	sort.Strings(fields)
	return strings.Join(fields, " ")
}
