package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
)

// DocumentRepository stores free-form documents grouped by collection.
type DocumentRepository interface {
	InsertMany(ctx context.Context, collection string, bodies []map[string]any) ([]*entity.Document, error)
	FindAll(ctx context.Context, collection string) ([]*entity.Document, error)
	FindByID(ctx context.Context, collection, id string) (*entity.Document, error)
	// UpdateByID merges patch into the stored body (top-level keys overwrite).
	UpdateByID(ctx context.Context, collection, id string, patch map[string]any) (*entity.Document, error)
	DeleteByID(ctx context.Context, collection, id string) error
	DeleteAll(ctx context.Context, collection string) (int64, error)
}

// SearchIndex mirrors documents into a full-text index.
type SearchIndex interface {
	Index(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, collection, id string) error
	DeleteAll(ctx context.Context, collection string) error
	Search(ctx context.Context, collection, query string, size int) ([]map[string]any, error)
}
