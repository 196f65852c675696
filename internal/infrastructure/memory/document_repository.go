package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepository)(nil)

type DocumentRepository struct {
	lock        sync.RWMutex
	collections map[string]map[string]*entity.Document
	seq         map[string]int64 // insertion order for stable listing
	next        int64
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		collections: make(map[string]map[string]*entity.Document),
		seq:         make(map[string]int64),
	}
}

func (r *DocumentRepository) InsertMany(_ context.Context, collection string, bodies []map[string]any) ([]*entity.Document, error) {
	// deep-copy first so a bad body leaves the collection untouched
	copies := make([]map[string]any, 0, len(bodies))
	for _, b := range bodies {
		c, err := cloneBody(entity.SanitizeBody(b))
		if err != nil {
			return nil, err
		}
		copies = append(copies, c)
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	coll := r.collection(collection)
	now := time.Now().UTC()
	out := make([]*entity.Document, 0, len(copies))
	for _, body := range copies {
		d := &entity.Document{ID: uuid.NewString(), Collection: collection, Body: body, CreatedAt: now, UpdatedAt: now}
		coll[d.ID] = d
		r.next++
		r.seq[d.ID] = r.next
		out = append(out, snapshot(d))
	}
	return out, nil
}

func (r *DocumentRepository) FindAll(_ context.Context, collection string) ([]*entity.Document, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	coll := r.collections[collection]
	out := make([]*entity.Document, 0, len(coll))
	for _, d := range coll {
		out = append(out, snapshot(d))
	}
	sort.Slice(out, func(i, j int) bool { return r.seq[out[i].ID] < r.seq[out[j].ID] })
	return out, nil
}

func (r *DocumentRepository) FindByID(_ context.Context, collection, id string) (*entity.Document, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	d, ok := r.collections[collection][id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return snapshot(d), nil
}

func (r *DocumentRepository) UpdateByID(_ context.Context, collection, id string, patch map[string]any) (*entity.Document, error) {
	p, err := cloneBody(entity.SanitizeBody(patch))
	if err != nil {
		return nil, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	d, ok := r.collections[collection][id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for k, v := range p {
		d.Body[k] = v
	}
	d.UpdatedAt = time.Now().UTC()
	return snapshot(d), nil
}

func (r *DocumentRepository) DeleteByID(_ context.Context, collection, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	coll := r.collections[collection]
	if _, ok := coll[id]; !ok {
		return repository.ErrNotFound
	}
	delete(coll, id)
	delete(r.seq, id)
	return nil
}

func (r *DocumentRepository) DeleteAll(_ context.Context, collection string) (int64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	coll := r.collections[collection]
	n := int64(len(coll))
	for id := range coll {
		delete(r.seq, id)
	}
	delete(r.collections, collection)
	return n, nil
}

func (r *DocumentRepository) collection(name string) map[string]*entity.Document {
	coll, ok := r.collections[name]
	if !ok {
		coll = make(map[string]*entity.Document)
		r.collections[name] = coll
	}
	return coll
}

// cloneBody round-trips through JSON so stored bodies look exactly like
// what a JSONB column would hand back (numbers become float64).
func cloneBody(body map[string]any) (map[string]any, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func snapshot(d *entity.Document) *entity.Document {
	body := make(map[string]any, len(d.Body))
	for k, v := range d.Body {
		body[k] = v
	}
	c := *d
	c.Body = body
	return &c
}
