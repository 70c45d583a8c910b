package domain

import "strings"

// PromptTemplate is a named prompt body with {placeholder} variables.
// Bodies are rendered by literal substitution; unresolved placeholders
// stay verbatim in the rendered text.
type PromptTemplate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Body string `json:"template"`
}

// Render substitutes {name} placeholders. Placeholders without a
// matching variable are left untouched.
func (t PromptTemplate) Render(vars map[string]string) string {
	out := t.Body
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

const (
	PromptProductDescription = "product_description"
	PromptCompetitorAnalysis = "competitor_analysis"
	PromptToneAnalysis       = "tone_analysis"
	PromptChainGeneration    = "self_improvement_generation"
	PromptChainEvaluation    = "self_improvement_evaluation"
	PromptChainImprovement   = "self_improvement_improvement"
	PromptChainVerification  = "self_improvement_verification"
)
