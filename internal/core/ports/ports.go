package ports

import (
	"context"
	"io"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

// TextGenerator runs one completion against the configured LLM provider.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// ModelSelector derives a TextGenerator bound to another known model.
type ModelSelector interface {
	ForModel(model string) TextGenerator
}

// ProviderRegistry validates provider/model identifiers at the boundary.
type ProviderRegistry interface {
	Resolve(provider, model string) (domain.ProviderInfo, error)
	List() []domain.ProviderInfo
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// PromptStore serves named prompt templates.
type PromptStore interface {
	Get(id string) (domain.PromptTemplate, error)
	GetAll() []domain.PromptTemplate
	Update(id, name, body string) (domain.PromptTemplate, error)
	Reset(id string) error
	ResetAll() error
}

// SeoGuideProvider fetches raw SEO guidance for a keyword set.
type SeoGuideProvider interface {
	FetchGuide(ctx context.Context, keywords string) (domain.SeoInsights, error)
}

// SearchProvider returns organic result URLs for a query.
type SearchProvider interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// PageFetcher downloads one page and extracts its visible text.
type PageFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// ToneLibrary resolves tone identifiers to writing instructions.
type ToneLibrary interface {
	Instructions(tone string) (domain.ToneDefinition, bool)
	All() []domain.ToneDefinition
}

// DocumentRepository persists client-document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.ClientDocument) error
	GetByID(ctx context.Context, id string) (*domain.ClientDocument, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.ClientDocument, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores raw client-document payloads.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes document indexing events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.ClientDocument) (string, error)
}

// Chunker splits text into indexable chunks.
type Chunker interface {
	Split(text string) []string
}

// VectorStore indexes chunks and performs semantic search.
type VectorStore interface {
	IndexChunks(ctx context.Context, doc *domain.ClientDocument, chunks []string, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}
