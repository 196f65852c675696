package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
)

// DocumentRepository keeps every collection in one JSONB table keyed by
// (collection, id).
type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

const documentColumns = `id, collection, body, created_at, updated_at`

func scanDocument(row pgx.Row) (*entity.Document, error) {
	d := &entity.Document{}
	if err := row.Scan(&d.ID, &d.Collection, &d.Body, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if d.Body == nil {
		d.Body = map[string]any{}
	}
	return d, nil
}

// InsertMany inserts all bodies in one transaction; either all land or none.
func (r *DocumentRepository) InsertMany(ctx context.Context, collection string, bodies []map[string]any) ([]*entity.Document, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out := make([]*entity.Document, 0, len(bodies))
	for _, b := range bodies {
		d, err := scanDocument(tx.QueryRow(ctx, `
			INSERT INTO documents (collection, body)
			VALUES ($1, $2)
			RETURNING `+documentColumns,
			collection, entity.SanitizeBody(b)))
		if err != nil {
			return nil, fmt.Errorf("insert document: %w", err)
		}
		out = append(out, d)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) FindAll(ctx context.Context, collection string) ([]*entity.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE collection = $1
		ORDER BY created_at, id
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DocumentRepository) FindByID(ctx context.Context, collection, id string) (*entity.Document, error) {
	d, err := scanDocument(r.pool.QueryRow(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id))
	if err != nil {
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return nil, mapped
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	return d, nil
}

func (r *DocumentRepository) UpdateByID(ctx context.Context, collection, id string, patch map[string]any) (*entity.Document, error) {
	d, err := scanDocument(r.pool.QueryRow(ctx, `
		UPDATE documents
		SET body = body || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
		RETURNING `+documentColumns,
		collection, id, entity.SanitizeBody(patch)))
	if err != nil {
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return nil, mapped
		}
		return nil, fmt.Errorf("update document: %w", err)
	}
	return d, nil
}

func (r *DocumentRepository) DeleteByID(ctx context.Context, collection, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		if mapped := mapError(err); mapped == repository.ErrNotFound {
			return mapped
		}
		return fmt.Errorf("delete document: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) DeleteAll(ctx context.Context, collection string) (int64, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1`, collection)
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return res.RowsAffected(), nil
}

var _ repository.DocumentRepository = (*DocumentRepository)(nil)
