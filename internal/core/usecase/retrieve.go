package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

// chunkContextRunes caps how much of one retrieved chunk makes it into
// a prompt.
const chunkContextRunes = 500

// RetrieveContextUseCase turns a free-text query into client document
// excerpts ready to inject into a generation prompt.
type RetrieveContextUseCase struct {
	embedder ports.Embedder
	vectors  ports.VectorStore
	topK     int
}

func NewRetrieveContextUseCase(embedder ports.Embedder, vectors ports.VectorStore, topK int) *RetrieveContextUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &RetrieveContextUseCase{embedder: embedder, vectors: vectors, topK: topK}
}

func (uc *RetrieveContextUseCase) Search(ctx context.Context, query string, filter domain.SearchFilter) ([]domain.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "context retrieval", errors.New("query is required"))
	}
	if strings.TrimSpace(filter.ClientID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "context retrieval", errors.New("client id is required"))
	}

	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	chunks, err := uc.vectors.Search(ctx, vector, uc.topK, filter)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		chunks[i].Text = truncateChunk(chunks[i].Text)
	}
	return chunks, nil
}

// ContextBlock renders retrieved chunks as one prompt-ready block. No
// matching chunk yields an empty block, not an error.
func (uc *RetrieveContextUseCase) ContextBlock(ctx context.Context, query string, filter domain.SearchFilter) (string, error) {
	chunks, err := uc.Search(ctx, query, filter)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("Informations issues des documents du client :\n")
	for _, chunk := range chunks {
		sb.WriteString("\n[" + chunk.Filename + "]\n" + chunk.Text + "\n")
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func truncateChunk(text string) string {
	runes := []rune(text)
	if len(runes) <= chunkContextRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:chunkContextRunes])) + "…"
}
