package repository

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError memetakan error driver (pgx / lib/pq / gorm) ke sentinel repository.
func translateError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(ErrNotFound, op)
	}
	switch pgCode(err) {
	case pgUniqueViolation:
		return errors.Wrap(ErrDuplicate, op)
	case pgForeignKeyViolation:
		return errors.Wrapf(err, "%s: referenced record missing", op)
	}
	return errors.Wrap(err, op)
}

func pgCode(err error) string {
	// pgx
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	// lib/pq
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
