package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
)

// ImageUploader is satisfied by helpers.GCSUploader.
type ImageUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// DocumentService passes catalog operations through to the document store
// and keeps the optional search index in step.
type DocumentService struct {
	Store  repo.DocumentRepository
	Search repo.SearchIndex // optional
	Images ImageUploader    // optional
	Logger *logrus.Logger
}

func NewDocumentService(store repo.DocumentRepository, search repo.SearchIndex, images ImageUploader, logger *logrus.Logger) *DocumentService {
	return &DocumentService{Store: store, Search: search, Images: images, Logger: logger}
}

func storeError(op string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrDocumentNotFound
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

func (s *DocumentService) Create(ctx context.Context, collection string, bodies []map[string]any) ([]*entity.Document, error) {
	if len(bodies) == 0 {
		return nil, ErrInvalidDocument
	}
	docs, err := s.Store.InsertMany(ctx, collection, bodies)
	if err != nil {
		return nil, storeError("insert", err)
	}
	for _, d := range docs {
		s.index(ctx, d)
	}
	return docs, nil
}

func (s *DocumentService) List(ctx context.Context, collection string) ([]*entity.Document, error) {
	docs, err := s.Store.FindAll(ctx, collection)
	if err != nil {
		return nil, storeError("find all", err)
	}
	return docs, nil
}

func (s *DocumentService) Get(ctx context.Context, collection, id string) (*entity.Document, error) {
	d, err := s.Store.FindByID(ctx, collection, id)
	if err != nil {
		return nil, storeError("find", err)
	}
	return d, nil
}

func (s *DocumentService) Update(ctx context.Context, collection, id string, patch map[string]any) (*entity.Document, error) {
	if len(entity.SanitizeBody(patch)) == 0 {
		return nil, ErrInvalidDocument
	}
	d, err := s.Store.UpdateByID(ctx, collection, id, patch)
	if err != nil {
		return nil, storeError("update", err)
	}
	s.index(ctx, d)
	return d, nil
}

func (s *DocumentService) Delete(ctx context.Context, collection, id string) error {
	if err := s.Store.DeleteByID(ctx, collection, id); err != nil {
		return storeError("delete", err)
	}
	if s.Search != nil {
		if err := s.Search.Delete(ctx, collection, id); err != nil {
			s.warn(err, collection, id, "search delete failed")
		}
	}
	return nil
}

func (s *DocumentService) DeleteAll(ctx context.Context, collection string) (int64, error) {
	n, err := s.Store.DeleteAll(ctx, collection)
	if err != nil {
		return 0, storeError("delete all", err)
	}
	if s.Search != nil {
		if err := s.Search.DeleteAll(ctx, collection); err != nil {
			s.warn(err, collection, "", "search delete all failed")
		}
	}
	return n, nil
}

// SearchDocuments returns an empty result when no index is configured.
func (s *DocumentService) SearchDocuments(ctx context.Context, collection, q string, size int) ([]map[string]any, error) {
	if s.Search == nil || strings.TrimSpace(q) == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	return s.Search.Search(ctx, collection, q, size)
}

// UploadImage stores the image and records its URL as image_url on the document.
func (s *DocumentService) UploadImage(ctx context.Context, collection, id string, r io.Reader, filename, contentType string) (*entity.Document, error) {
	if s.Images == nil {
		return nil, ErrFeatureDisabled
	}
	if _, err := s.Store.FindByID(ctx, collection, id); err != nil {
		return nil, storeError("find", err)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join(collection, id, uuid.NewString()+ext))
	url, err := s.Images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	return s.Update(ctx, collection, id, map[string]any{"image_url": url})
}

func (s *DocumentService) index(ctx context.Context, d *entity.Document) {
	if s.Search == nil {
		return
	}
	if err := s.Search.Index(ctx, d); err != nil {
		s.warn(err, d.Collection, d.ID, "search index failed")
	}
}

func (s *DocumentService) warn(err error, collection, id, msg string) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(logrus.Fields{"collection": collection, "id": id}).Warn(msg)
}
