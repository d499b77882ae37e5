package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/rksledger/internal/model"
)

// translate classifies a driver error. Constraint failures keep the driver
// message verbatim.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return model.WrapError(model.ErrCodeConstraintViolation, err, "%s", op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// notFound translates sql.ErrNoRows into a NOT_FOUND ledger error.
func notFound(err error, what string, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.WrapError(model.ErrCodeNotFound, err, "%s %d not found", what, id).
			WithDetail(what+"_id", id)
	}
	return translate("read "+what, err)
}

// insert executes an INSERT and returns the new row id.
func (s *Store) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	result, err := s.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translate(op, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	return id, nil
}

// exec executes a statement and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	result, err := s.conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translate(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n, nil
}

// nullString stores "" as NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
