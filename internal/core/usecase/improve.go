package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

// fallbackImprovementPoints drive the improvement step when the
// evaluation response could not be parsed into a rubric.
var fallbackImprovementPoints = []string{
	"Améliorer la structure",
	"Intégrer plus de mots-clés",
	"Renforcer l'argumentation",
}

// SelfImprovingChain runs a draft through evaluation, rewriting and a
// final verification pass. A broken evaluation degrades to generic
// improvement points instead of aborting, a broken verification only
// loses its notes.
type SelfImprovingChain struct {
	llm     ports.TextGenerator
	prompts ports.PromptStore
}

func NewSelfImprovingChain(llm ports.TextGenerator, prompts ports.PromptStore) *SelfImprovingChain {
	return &SelfImprovingChain{llm: llm, prompts: prompts}
}

// Run improves description. When description is empty a draft is
// generated first from the product data.
func (c *SelfImprovingChain) Run(
	ctx context.Context,
	description string,
	product domain.ProductInfo,
	tone domain.ToneStyle,
) (domain.ImprovementResult, error) {
	productContext := formatProductContext(product)

	if strings.TrimSpace(description) == "" {
		draft, err := c.draft(ctx, productContext, tone)
		if err != nil {
			return domain.ImprovementResult{}, err
		}
		description = draft
	}

	evaluation := c.evaluate(ctx, description, productContext)

	improved, err := c.improve(ctx, description, productContext, evaluation)
	if err != nil {
		return domain.ImprovementResult{}, err
	}

	result := domain.ImprovementResult{
		OriginalDescription: description,
		Evaluation:          evaluation,
		ImprovedDescription: improved,
	}
	result.VerificationNotes = c.verify(ctx, improved, productContext)
	return result, nil
}

func (c *SelfImprovingChain) draft(ctx context.Context, productContext string, tone domain.ToneStyle) (string, error) {
	tpl, err := c.prompts.Get(domain.PromptChainGeneration)
	if err != nil {
		return "", err
	}
	prompt := tpl.Render(map[string]string{
		"product_context": productContext,
		"tone":            tone.Tone,
	})
	draft, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "chain draft", err)
	}
	if strings.TrimSpace(draft) == "" {
		return "", domain.WrapError(domain.ErrGeneration, "chain draft", errors.New("empty model response"))
	}
	return strings.TrimSpace(draft), nil
}

// evaluate never fails, an unusable rubric is replaced by a degraded
// evaluation carrying generic improvement points.
func (c *SelfImprovingChain) evaluate(ctx context.Context, description, productContext string) domain.Evaluation {
	tpl, err := c.prompts.Get(domain.PromptChainEvaluation)
	if err != nil {
		slog.Warn("chain_evaluation_degraded", "error", err)
		return degradedEvaluation()
	}
	prompt := tpl.Render(map[string]string{
		"description":     description,
		"product_context": productContext,
	})

	raw, err := c.llm.GenerateJSON(ctx, prompt)
	if err != nil {
		slog.Warn("chain_evaluation_degraded", "error", err)
		return degradedEvaluation()
	}

	var evaluation domain.Evaluation
	if err := json.Unmarshal([]byte(raw), &evaluation); err != nil {
		slog.Warn("chain_evaluation_degraded", "error", err)
		return degradedEvaluation()
	}
	if len(evaluation.ImprovementPoints) == 0 {
		evaluation.ImprovementPoints = fallbackImprovementPoints
	}
	return evaluation
}

func (c *SelfImprovingChain) improve(
	ctx context.Context,
	description, productContext string,
	evaluation domain.Evaluation,
) (string, error) {
	tpl, err := c.prompts.Get(domain.PromptChainImprovement)
	if err != nil {
		return "", err
	}
	prompt := tpl.Render(map[string]string{
		"description":        description,
		"product_context":    productContext,
		"improvement_points": "- " + strings.Join(evaluation.ImprovementPoints, "\n- "),
	})

	improved, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		return "", domain.WrapError(domain.ErrImprovement, "chain improvement", err)
	}
	if strings.TrimSpace(improved) == "" {
		return "", domain.WrapError(domain.ErrImprovement, "chain improvement", errors.New("empty model response"))
	}
	return strings.TrimSpace(improved), nil
}

// verify is best effort, a failed verification loses its notes but
// never the improved description.
func (c *SelfImprovingChain) verify(ctx context.Context, improved, productContext string) string {
	tpl, err := c.prompts.Get(domain.PromptChainVerification)
	if err != nil {
		slog.Warn("chain_verification_skipped", "error", err)
		return ""
	}
	prompt := tpl.Render(map[string]string{
		"description":     improved,
		"product_context": productContext,
	})

	notes, err := c.llm.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("chain_verification_skipped", "error", err)
		return ""
	}
	return strings.TrimSpace(notes)
}

func degradedEvaluation() domain.Evaluation {
	return domain.Evaluation{
		ImprovementPoints: fallbackImprovementPoints,
		Degraded:          true,
	}
}

func formatProductContext(product domain.ProductInfo) string {
	var sb strings.Builder
	sb.WriteString("Produit : " + product.Name)
	if product.Category != "" {
		sb.WriteString("\nCatégorie : " + product.Category)
	}
	if product.Description != "" {
		sb.WriteString("\nDescription fournie : " + product.Description)
	}
	if specs := formatSpecs(product.TechnicalSpecs); specs != "" {
		sb.WriteString("\nSpécifications :\n" + specs)
	}
	if len(product.Keywords) > 0 {
		sb.WriteString("\nMots-clés : " + strings.Join(product.Keywords, ", "))
	}
	return sb.String()
}
