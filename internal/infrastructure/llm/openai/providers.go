package openai

import (
	"errors"
	"strings"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

// Known provider/model identifiers with published pricing per 1K
// tokens. Unrecognized identifiers are rejected at the boundary.
var knownProviders = []domain.ProviderInfo{
	{Provider: "openai", Model: "gpt-4o", InputPricePer1K: 0.005, OutputPricePer1K: 0.015},
	{Provider: "openai", Model: "gpt-4", InputPricePer1K: 0.03, OutputPricePer1K: 0.06},
	{Provider: "openai", Model: "gpt-3.5-turbo", InputPricePer1K: 0.0005, OutputPricePer1K: 0.0015},
}

// Registry is the ports.ProviderRegistry backed by the compiled-in
// provider table, with the deployment's default model.
type Registry struct {
	defaultModel string
}

func NewRegistry(defaultModel string) *Registry {
	return &Registry{defaultModel: defaultModel}
}

func (r *Registry) Resolve(provider, model string) (domain.ProviderInfo, error) {
	return ResolveProvider(provider, model, r.defaultModel)
}

func (r *Registry) List() []domain.ProviderInfo {
	out := make([]domain.ProviderInfo, len(knownProviders))
	copy(out, knownProviders)
	return out
}

// ResolveProvider validates an optional provider/model request. Empty
// values fall back to the configured default model.
func ResolveProvider(provider, model, defaultModel string) (domain.ProviderInfo, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	model = strings.TrimSpace(model)

	if provider == "" {
		provider = "openai"
	}
	if model == "" {
		model = defaultModel
	}

	for _, known := range knownProviders {
		if known.Provider == provider && known.Model == model {
			return known, nil
		}
	}
	return domain.ProviderInfo{}, domain.WrapError(
		domain.ErrConfiguration,
		"resolve ai provider",
		errors.New("unknown provider/model: "+provider+"/"+model),
	)
}
