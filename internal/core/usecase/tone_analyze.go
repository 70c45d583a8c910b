package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

// ToneAnalyzer profiles a sample text so a brand's voice can be
// reproduced in generated descriptions.
type ToneAnalyzer struct {
	llm     ports.TextGenerator
	prompts ports.PromptStore
}

func NewToneAnalyzer(llm ports.TextGenerator, prompts ports.PromptStore) *ToneAnalyzer {
	return &ToneAnalyzer{llm: llm, prompts: prompts}
}

func (a *ToneAnalyzer) Analyze(ctx context.Context, sampleText string) (domain.ToneProfile, error) {
	if strings.TrimSpace(sampleText) == "" {
		return domain.ToneProfile{}, domain.WrapError(domain.ErrInvalidInput, "tone analysis", errors.New("sample text is required"))
	}

	tpl, err := a.prompts.Get(domain.PromptToneAnalysis)
	if err != nil {
		return domain.ToneProfile{}, err
	}
	prompt := tpl.Render(map[string]string{"sample_text": sampleText})

	raw, err := a.llm.GenerateJSON(ctx, prompt)
	if err != nil {
		return domain.ToneProfile{}, domain.WrapError(domain.ErrExternalService, "tone analysis", err)
	}

	var profile domain.ToneProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return domain.ToneProfile{}, domain.WrapError(domain.ErrParse, "tone analysis", err)
	}
	return profile, nil
}
