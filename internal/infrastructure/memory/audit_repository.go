package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepository)(nil)

type AuditRepository struct {
	lock    sync.Mutex
	entries []entity.AuditEntry
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Insert(_ context.Context, e entity.AuditEntry) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *AuditRepository) Entries() []entity.AuditEntry {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]entity.AuditEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
