package application_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-catalog-api/internal/application"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
	"github.com/oksasatya/go-ddd-catalog-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-catalog-api/pkg/helpers"
)

type fakeSearch struct {
	mu      sync.Mutex
	indexed map[string]*entity.Document
	err     error
}

func newFakeSearch() *fakeSearch {
	return &fakeSearch{indexed: map[string]*entity.Document{}}
}

func (f *fakeSearch) Index(_ context.Context, d *entity.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[d.Collection+"/"+d.ID] = d
	return f.err
}

func (f *fakeSearch) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, collection+"/"+id)
	return f.err
}

func (f *fakeSearch) DeleteAll(_ context.Context, collection string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k := range f.indexed {
		if strings.HasPrefix(k, collection+"/") {
			delete(f.indexed, k)
		}
	}
	return f.err
}

func (f *fakeSearch) Search(_ context.Context, collection, q string, size int) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []map[string]any{}
	for _, d := range f.indexed {
		if d.Collection == collection && strings.Contains(d.Body["name"].(string), q) && len(out) < size {
			out = append(out, d.View())
		}
	}
	return out, f.err
}

type fakeUploader struct {
	path, contentType, content string
	err                        error
}

func (u *fakeUploader) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, _ := io.ReadAll(r)
	u.path, u.contentType, u.content = objectPath, contentType, string(b)
	return "https://cdn.test/" + objectPath, nil
}

func newDocService(search *fakeSearch, up application.ImageUploader) *application.DocumentService {
	var idx repository.SearchIndex
	if search != nil {
		idx = search
	}
	return application.NewDocumentService(memory.NewDocumentRepository(), idx, up, helpers.NewDiscardLogger())
}

func TestDocumentService_PassThroughCRUD(t *testing.T) {
	ctx := context.Background()
	search := newFakeSearch()
	svc := newDocService(search, nil)

	docs, err := svc.Create(ctx, "products", []map[string]any{{"name": "apple"}, {"name": "pear"}})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Len(t, search.indexed, 2)

	list, err := svc.List(ctx, "products")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := svc.Get(ctx, "products", docs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Body["name"])

	upd, err := svc.Update(ctx, "products", docs[0].ID, map[string]any{"name": "green apple"})
	require.NoError(t, err)
	assert.Equal(t, "green apple", upd.Body["name"])
	assert.Equal(t, "green apple", search.indexed["products/"+docs[0].ID].Body["name"])

	require.NoError(t, svc.Delete(ctx, "products", docs[0].ID))
	assert.NotContains(t, search.indexed, "products/"+docs[0].ID)

	_, err = svc.Get(ctx, "products", docs[0].ID)
	assert.ErrorIs(t, err, application.ErrDocumentNotFound)

	n, err := svc.DeleteAll(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Empty(t, search.indexed)
}

func TestDocumentService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newDocService(nil, nil)

	_, err := svc.Create(ctx, "offers", nil)
	assert.ErrorIs(t, err, application.ErrInvalidDocument)

	docs, err := svc.Create(ctx, "offers", []map[string]any{{"title": "x"}})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "offers", docs[0].ID, map[string]any{"_id": "hijack"})
	assert.ErrorIs(t, err, application.ErrInvalidDocument)

	_, err = svc.Update(ctx, "offers", "missing", map[string]any{"title": "y"})
	assert.ErrorIs(t, err, application.ErrDocumentNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, "offers", "missing"), application.ErrDocumentNotFound)
}

func TestDocumentService_IndexFailureIsNotFatal(t *testing.T) {
	search := newFakeSearch()
	search.err = errors.New("es down")
	svc := newDocService(search, nil)

	docs, err := svc.Create(context.Background(), "products", []map[string]any{{"name": "apple"}})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDocumentService_Search(t *testing.T) {
	ctx := context.Background()

	disabled := newDocService(nil, nil)
	hits, err := disabled.SearchDocuments(ctx, "products", "apple", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	svc := newDocService(newFakeSearch(), nil)
	_, err = svc.Create(ctx, "products", []map[string]any{{"name": "apple"}, {"name": "apple pie"}, {"name": "pear"}})
	require.NoError(t, err)

	hits, err = svc.SearchDocuments(ctx, "products", "apple", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = svc.SearchDocuments(ctx, "products", "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDocumentService_UploadImage(t *testing.T) {
	ctx := context.Background()

	_, err := newDocService(nil, nil).UploadImage(ctx, "products", "x", strings.NewReader("img"), "a.png", "image/png")
	assert.ErrorIs(t, err, application.ErrFeatureDisabled)

	up := &fakeUploader{}
	svc := newDocService(nil, up)
	docs, err := svc.Create(ctx, "products", []map[string]any{{"name": "apple"}})
	require.NoError(t, err)
	id := docs[0].ID

	_, err = svc.UploadImage(ctx, "products", "missing", strings.NewReader("img"), "a.png", "image/png")
	assert.ErrorIs(t, err, application.ErrDocumentNotFound)

	d, err := svc.UploadImage(ctx, "products", id, strings.NewReader("img"), "Photo.PNG", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.path, "products/"+id+"/"))
	assert.True(t, strings.HasSuffix(up.path, ".png"))
	assert.Equal(t, "img", up.content)
	assert.Equal(t, "https://cdn.test/"+up.path, d.Body["image_url"])

	up.err = errors.New("gcs down")
	_, err = svc.UploadImage(ctx, "products", id, strings.NewReader("img"), "a.png", "image/png")
	assert.Error(t, err)
}
