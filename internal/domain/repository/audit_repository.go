package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
)

type AuditRepository interface {
	Insert(ctx context.Context, e entity.AuditEntry) error
}
