package domain

// Section is one named block of a structured product description.
type Section struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Required         bool   `json:"required"`
	DefaultEnabled   bool   `json:"default_enabled"`
	Order            int    `json:"order"`
	RAGQueryTemplate string `json:"rag_query_template,omitempty"`
	PromptTemplate   string `json:"prompt_template"`
}

// TemplateBundle names a preselected set of sections.
type TemplateBundle struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SectionIDs  []string `json:"section_ids"`
}

type SectionContent struct {
	SectionID string `json:"section_id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
}

type StructuredDescription struct {
	Sections []SectionContent `json:"sections"`
	Assembly string           `json:"assembled_description"`
	Provider ProviderInfo     `json:"ai_provider_info"`
}
