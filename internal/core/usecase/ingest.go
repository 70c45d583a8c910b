package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

// IngestDocumentUseCase accepts client reference documents, stores the
// raw payload and hands indexing off to the worker through the queue.
type IngestDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	vectors ports.VectorStore
	queue   ports.MessageQueue
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	vectors ports.VectorStore,
	queue ports.MessageQueue,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:    repo,
		storage: storage,
		vectors: vectors,
		queue:   queue,
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	clientID, filename, mimeType string,
	body io.Reader,
) (*domain.ClientDocument, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload client document", errors.New("client id is required"))
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc := &domain.ClientDocument{
		ID:          id,
		ClientID:    clientID,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish upload event: %w", err)
	}

	return doc, nil
}

// UploadText wraps raw pasted text as a plain-text document.
func (uc *IngestDocumentUseCase) UploadText(
	ctx context.Context,
	clientID, title, text string,
) (*domain.ClientDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload client text", errors.New("text is required"))
	}
	filename := sanitizeFilename(title)
	if !strings.HasSuffix(filename, ".txt") {
		filename += ".txt"
	}
	return uc.Upload(ctx, clientID, filename, "text/plain", strings.NewReader(text))
}

func (uc *IngestDocumentUseCase) ListByClient(ctx context.Context, clientID string) ([]domain.ClientDocument, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list client documents", errors.New("client id is required"))
	}
	return uc.repo.ListByClient(ctx, clientID)
}

// Delete removes a document everywhere it lives: vector index, object
// storage, then metadata. A missing stored payload is tolerated so a
// half-deleted document can still be cleaned up.
func (uc *IngestDocumentUseCase) Delete(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	if err := uc.vectors.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document vectors: %w", err)
	}
	if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil && !domain.IsKind(err, domain.ErrNotFound) {
		return fmt.Errorf("delete stored payload: %w", err)
	}
	if err := uc.repo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
