package domain

type SearchFilter struct {
	ClientID    string
	DocumentIDs []string
}

type RetrievedChunk struct {
	DocumentID string  `json:"document_id"`
	ClientID   string  `json:"client_id"`
	Filename   string  `json:"filename"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}
