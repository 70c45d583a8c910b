package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.ClientDocument) (string, error) {
	return f.text, f.err
}

type chunkerFake struct {
	size int
}

func (f *chunkerFake) Split(text string) []string {
	if f.size <= 0 {
		f.size = 10
	}
	var chunks []string
	runes := []rune(text)
	for start := 0; start < len(runes); start += f.size {
		end := start + f.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func indexedRepo(t *testing.T) *documentRepoFake {
	t.Helper()
	repo := newDocumentRepoFake()
	repo.docs["doc-1"] = &domain.ClientDocument{
		ID:          "doc-1",
		ClientID:    "client-1",
		Filename:    "notice.txt",
		MimeType:    "text/plain",
		StoragePath: "doc-1_notice.txt",
		Status:      domain.StatusUploaded,
	}
	return repo
}

func TestIndexByIDHappyPath(t *testing.T) {
	repo := indexedRepo(t)
	vectors := &vectorStoreFake{}
	uc := NewIndexDocumentUseCase(repo, &extractorFake{text: strings.Repeat("contenu ", 5)}, &chunkerFake{}, &embedderFake{}, vectors)

	if err := uc.IndexByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("IndexByID() error = %v", err)
	}
	if repo.docs["doc-1"].Status != domain.StatusIndexed {
		t.Fatalf("unexpected terminal status %q", repo.docs["doc-1"].Status)
	}
	if len(repo.statuses) != 2 || repo.statuses[0] != domain.StatusIndexing {
		t.Fatalf("unexpected status transitions %v", repo.statuses)
	}
	if vectors.indexedDoc == nil || vectors.indexedDoc.ID != "doc-1" || len(vectors.indexedChunks) == 0 {
		t.Fatalf("chunks not indexed: %+v", vectors.indexedDoc)
	}
}

func TestIndexByIDMarksFailedOnExtractionError(t *testing.T) {
	repo := indexedRepo(t)
	uc := NewIndexDocumentUseCase(repo, &extractorFake{err: errors.New("corrupt file")}, &chunkerFake{}, &embedderFake{}, &vectorStoreFake{})

	if err := uc.IndexByID(context.Background(), "doc-1"); err == nil {
		t.Fatalf("expected error")
	}
	if repo.docs["doc-1"].Status != domain.StatusFailed {
		t.Fatalf("unexpected terminal status %q", repo.docs["doc-1"].Status)
	}
	if !strings.Contains(repo.lastErr, "corrupt file") {
		t.Fatalf("failure cause not recorded: %q", repo.lastErr)
	}
}

func TestIndexByIDMarksFailedOnEmptyText(t *testing.T) {
	repo := indexedRepo(t)
	uc := NewIndexDocumentUseCase(repo, &extractorFake{text: ""}, &chunkerFake{}, &embedderFake{}, &vectorStoreFake{})

	err := uc.IndexByID(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if repo.docs["doc-1"].Status != domain.StatusFailed {
		t.Fatalf("unexpected terminal status %q", repo.docs["doc-1"].Status)
	}
}

func TestIndexByIDMarksFailedOnIndexError(t *testing.T) {
	repo := indexedRepo(t)
	vectors := &vectorStoreFake{indexErr: errors.New("qdrant down")}
	uc := NewIndexDocumentUseCase(repo, &extractorFake{text: "contenu suffisant"}, &chunkerFake{}, &embedderFake{}, vectors)

	if err := uc.IndexByID(context.Background(), "doc-1"); err == nil {
		t.Fatalf("expected error")
	}
	if repo.docs["doc-1"].Status != domain.StatusFailed {
		t.Fatalf("unexpected terminal status %q", repo.docs["doc-1"].Status)
	}
}

func TestIndexByIDUnknownDocument(t *testing.T) {
	uc := NewIndexDocumentUseCase(newDocumentRepoFake(), &extractorFake{text: "x"}, &chunkerFake{}, &embedderFake{}, &vectorStoreFake{})
	err := uc.IndexByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
}
