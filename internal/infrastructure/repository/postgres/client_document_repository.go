package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/fichepro/internal/core/domain"
)

type ClientDocumentRepository struct {
	db *sql.DB
}

func NewClientDocumentRepository(db *sql.DB) *ClientDocumentRepository {
	return &ClientDocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ClientDocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS client_documents (
	id TEXT PRIMARY KEY,
	client_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	status TEXT NOT NULL,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_client_documents_client_id ON client_documents(client_id);
CREATE INDEX IF NOT EXISTS idx_client_documents_status ON client_documents(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ClientDocumentRepository) Create(ctx context.Context, doc *domain.ClientDocument) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO client_documents (
	id, client_id, filename, mime_type, storage_path, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		doc.ID, doc.ClientID, doc.Filename, doc.MimeType, doc.StoragePath,
		string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client document: %w", err)
	}
	return nil
}

func (r *ClientDocumentRepository) GetByID(ctx context.Context, id string) (*domain.ClientDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, client_id, filename, mime_type, storage_path, status, error_message, created_at, updated_at
FROM client_documents
WHERE id = $1
`, id)

	doc, err := scanClientDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get client document", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan client document: %w", err)
	}
	return doc, nil
}

func (r *ClientDocumentRepository) ListByClient(ctx context.Context, clientID string) ([]domain.ClientDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, client_id, filename, mime_type, storage_path, status, error_message, created_at, updated_at
FROM client_documents
WHERE client_id = $1
ORDER BY created_at DESC
`, clientID)
	if err != nil {
		return nil, fmt.Errorf("query client documents: %w", err)
	}
	defer rows.Close()

	var out []domain.ClientDocument
	for rows.Next() {
		doc, err := scanClientDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client document: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client documents: %w", err)
	}
	return out, nil
}

func (r *ClientDocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE client_documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update client document status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update client document status", fmt.Errorf("id %s", id))
	}
	return nil
}

func (r *ClientDocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM client_documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client document: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete client document", fmt.Errorf("id %s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClientDocument(row rowScanner) (*domain.ClientDocument, error) {
	var doc domain.ClientDocument
	var status string

	err := row.Scan(
		&doc.ID, &doc.ClientID, &doc.Filename, &doc.MimeType, &doc.StoragePath,
		&status, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}
