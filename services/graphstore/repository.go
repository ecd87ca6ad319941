package graphstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nodeflow/services/graph"
)

// Repository handles graph document persistence in PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// InitSchema creates the documents table if it does not exist.
func (r *Repository) InitSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL DEFAULT '',
			doc        JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Get retrieves a document by ID. Returns nil, nil if not found.
func (r *Repository) Get(ctx context.Context, id string) (*graph.Document, error) {
	var docJSON []byte
	err := r.db.QueryRow(ctx, `
		SELECT doc FROM documents WHERE id = $1
	`, id).Scan(&docJSON)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	var doc graph.Document
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, nil
}

// Save upserts a document under its own id.
func (r *Repository) Save(ctx context.Context, doc *graph.Document) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO documents (id, name, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = $2, doc = $3, updated_at = NOW()
	`, doc.ID, doc.Name, docJSON)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Summary is one row of the document listing.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// List returns summaries for all stored documents, most recently updated
// first.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, updated_at FROM documents ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a document by id. Deleting an unknown id is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// InitDB creates the schema. Called from main on startup.
func InitDB(ctx context.Context, pool *pgxpool.Pool) error {
	return NewRepository(pool).InitSchema(ctx)
}
