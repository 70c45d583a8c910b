package domain

// Spec is one technical specification pair. Order matters for display,
// so specs are kept as a slice rather than a map.
type Spec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ProductInfo struct {
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Category       string   `json:"category,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	TechnicalSpecs []Spec   `json:"technical_specs,omitempty"`
}

type ToneStyle struct {
	Tone          string `json:"tone"`
	Style         string `json:"style,omitempty"`
	BrandName     string `json:"brand_name,omitempty"`
	PersonaTarget string `json:"persona_target,omitempty"`
	ToneExample   string `json:"tone_example,omitempty"`
}

type RequiredKeyword struct {
	Keyword        string  `json:"keyword"`
	MinOccurrences int     `json:"min_occurrences"`
	Score          float64 `json:"score"`
}

type CompetitorPage struct {
	Title     string  `json:"title"`
	H1        string  `json:"h1,omitempty"`
	H2        string  `json:"h2,omitempty"`
	Score     float64 `json:"score"`
	WordCount int     `json:"word_count"`
	URL       string  `json:"url"`
}

type SeoInsights struct {
	RequiredKeywords      []RequiredKeyword `json:"required_keywords"`
	ComplementaryKeywords []string          `json:"complementary_keywords"`
	Expressions           []string          `json:"expressions"`
	Questions             []string          `json:"questions"`
	TargetWordCount       int               `json:"target_word_count"`
	TargetScore           float64           `json:"target_score"`
	MaxOveroptimization   float64           `json:"max_overoptimization"`
	Competition           []CompetitorPage  `json:"competition"`
}

type CompetitorInsights struct {
	KeyFeatures          []string `json:"key_features"`
	UniqueSellingPoints  []string `json:"unique_selling_points"`
	CommonSpecifications []string `json:"common_specifications"`
	ContentStructure     string   `json:"content_structure"`
	SeoKeywords          []string `json:"seo_keywords"`
}

// ProviderInfo records which provider/model produced a result and its
// published pricing per 1K tokens.
type ProviderInfo struct {
	Provider         string  `json:"provider"`
	Model            string  `json:"model"`
	InputPricePer1K  float64 `json:"input_price_per_1k"`
	OutputPricePer1K float64 `json:"output_price_per_1k"`
}

type GenerationResult struct {
	ProductDescription string              `json:"product_description"`
	SeoSuggestions     []string            `json:"seo_suggestions"`
	CompetitorInsights *CompetitorInsights `json:"competitor_insights,omitempty"`
	Provider           ProviderInfo        `json:"ai_provider_info"`
}

// Evaluation is the six-criterion rubric applied to a draft, each
// criterion scored out of 10.
type Evaluation struct {
	TechnicalAccuracy float64           `json:"technical_accuracy"`
	ToneStyle         float64           `json:"tone_style"`
	SeoOptimization   float64           `json:"seo_optimization"`
	Structure         float64           `json:"structure"`
	Persuasion        float64           `json:"persuasion"`
	Differentiation   float64           `json:"differentiation"`
	Justifications    map[string]string `json:"justifications,omitempty"`
	ImprovementPoints []string          `json:"improvement_points"`
	Degraded          bool              `json:"degraded,omitempty"`
}

type ImprovementResult struct {
	OriginalDescription string     `json:"original_description"`
	Evaluation          Evaluation `json:"evaluation_summary"`
	ImprovedDescription string     `json:"improved_description"`
	VerificationNotes   string     `json:"verification_notes,omitempty"`
}

type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// BatchItem holds one product's terminal outcome. Exactly one of
// Result and Error is set once the status is terminal.
type BatchItem struct {
	ID          string             `json:"id"`
	ProductName string             `json:"product_name"`
	Status      BatchStatus        `json:"status"`
	Result      *GenerationResult  `json:"result,omitempty"`
	Improvement *ImprovementResult `json:"improvement,omitempty"`
	Error       string             `json:"error,omitempty"`
}

type GenerationOptions struct {
	SeoOptimization    bool     `json:"seo_optimization"`
	CompetitorAnalysis bool     `json:"competitor_analysis"`
	UseSeoGuide        bool     `json:"use_seo_guide"`
	SeoGuideKeywords   string   `json:"seo_guide_keywords,omitempty"`
	AutoImprove        bool     `json:"auto_improve"`
	Provider           string   `json:"ai_provider,omitempty"`
	Model              string   `json:"model,omitempty"`
	UseRAG             bool     `json:"use_rag,omitempty"`
	ClientID           string   `json:"client_id,omitempty"`
	DocumentIDs        []string `json:"document_ids,omitempty"`
}
