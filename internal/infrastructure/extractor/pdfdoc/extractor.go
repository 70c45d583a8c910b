package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/fichepro/internal/core/domain"
	"github.com/kirillkom/fichepro/internal/core/ports"
)

// Extractor pulls plain text out of PDF client documents.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.ClientDocument) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", domain.WrapError(domain.ErrParse, "parse pdf", err)
	}

	textReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", domain.WrapError(domain.ErrParse, "extract pdf text", err)
	}
	text, err := io.ReadAll(textReader)
	if err != nil {
		return "", domain.WrapError(domain.ErrParse, "extract pdf text", err)
	}

	return strings.TrimSpace(string(text)), nil
}
