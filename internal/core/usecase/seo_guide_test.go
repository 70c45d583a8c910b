package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

type guideProviderFake struct {
	calls int
	err   error
}

func (f *guideProviderFake) FetchGuide(_ context.Context, _ string) (domain.SeoInsights, error) {
	f.calls++
	if f.err != nil {
		return domain.SeoInsights{}, f.err
	}
	return domain.SeoInsights{TargetWordCount: 650}, nil
}

func TestGuideCachesNormalizedKeywordSets(t *testing.T) {
	provider := &guideProviderFake{}
	uc := NewSeoGuideUseCase(provider)

	if _, err := uc.Guide(context.Background(), "batterie externe, usb-c"); err != nil {
		t.Fatalf("Guide() error = %v", err)
	}
	// Same keyword set with different casing, ordering and separators.
	if _, err := uc.Guide(context.Background(), "USB-C  Batterie,externe"); err != nil {
		t.Fatalf("Guide() error = %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.calls)
	}
}

func TestGuideDoesNotCacheFailures(t *testing.T) {
	provider := &guideProviderFake{err: errors.New("down")}
	uc := NewSeoGuideUseCase(provider)

	if _, err := uc.Guide(context.Background(), "batterie"); err == nil {
		t.Fatalf("expected error")
	}
	provider.err = nil
	if _, err := uc.Guide(context.Background(), "batterie"); err != nil {
		t.Fatalf("expected success after provider recovery, got %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("expected 2 provider calls, got %d", provider.calls)
	}
}

func TestGuideRejectsEmptyKeywords(t *testing.T) {
	uc := NewSeoGuideUseCase(&guideProviderFake{})
	_, err := uc.Guide(context.Background(), "  ,  ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
