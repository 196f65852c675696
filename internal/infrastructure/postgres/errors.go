package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
)

const (
	uniqueViolation      = "23505"
	invalidTextRepresent = "22P02" // e.g. malformed uuid in WHERE id = $1
)

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return repository.ErrDuplicateKey
		case invalidTextRepresent:
			return repository.ErrNotFound
		}
	}
	return err
}
