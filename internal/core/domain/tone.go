package domain

// ToneDefinition maps a tone identifier to the writing instructions
// injected into generation prompts.
type ToneDefinition struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Instructions string `json:"instructions"`
}

// ToneProfile is the result of analyzing a sample text.
type ToneProfile struct {
	Tone             string   `json:"tone"`
	Register         string   `json:"register"`
	Audience         string   `json:"audience"`
	Traits           []string `json:"traits"`
	SampleVocabulary []string `json:"sample_vocabulary,omitempty"`
}
