package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded DocumentStatus = "uploaded"
	StatusIndexing DocumentStatus = "indexing"
	StatusIndexed  DocumentStatus = "indexed"
	StatusFailed   DocumentStatus = "failed"
)

// ClientDocument is a client-supplied reference document used to
// enrich generation prompts via retrieval.
type ClientDocument struct {
	ID          string         `json:"id"`
	ClientID    string         `json:"client_id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
