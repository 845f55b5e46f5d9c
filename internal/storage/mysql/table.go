package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hotel_booking/internal/domain"
)

type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Table is the generic CRUD half of every repository (domain.Store). Entity
// repositories embed one and add only their own queries.
type Table[T any] struct {
	db      *sql.DB
	name    string // table name
	entity  string // used in not-found errors
	columns string
	scan    func(scanner) (T, error)
}

func (t Table[T]) Get(ctx context.Context, id int64) (T, error) {
	return t.get(ctx, t.db, id, "")
}

func (t Table[T]) List(ctx context.Context) ([]T, error) {
	return t.where(ctx, t.db, "", nil)
}

// Delete locks, reads and removes the row in one transaction and returns what was removed.
func (t Table[T]) Delete(ctx context.Context, id int64) (T, error) {
	var out T
	err := withTx(ctx, t.db, nil, func(tx *sql.Tx) error {
		v, err := t.get(ctx, tx, id, " FOR UPDATE")
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE id = ?", id); err != nil {
			return mapErr(err)
		}
		out = v
		return nil
	})
	return out, err
}

// get reads one row; suffix is appended verbatim (e.g. " FOR UPDATE").
func (t Table[T]) get(ctx context.Context, q querier, id int64, suffix string) (T, error) {
	row := q.QueryRowContext(ctx, "SELECT "+t.columns+" FROM "+t.name+" WHERE id = ?"+suffix, id)
	v, err := t.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, domain.NotFound(t.entity, id)
	}
	if err != nil {
		var zero T
		return zero, mapErr(err)
	}
	return v, nil
}

func (t Table[T]) one(ctx context.Context, q querier, cond string, args ...any) (T, error) {
	row := q.QueryRowContext(ctx, "SELECT "+t.columns+" FROM "+t.name+" WHERE "+cond, args...)
	v, err := t.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, fmt.Errorf("%s: %w", t.entity, domain.ErrNotFound)
	}
	if err != nil {
		var zero T
		return zero, mapErr(err)
	}
	return v, nil
}

// where lists rows matching cond (all rows when cond is empty), ordered by id.
func (t Table[T]) where(ctx context.Context, q querier, cond string, args []any) ([]T, error) {
	query := "SELECT " + t.columns + " FROM " + t.name
	if cond != "" {
		query += " WHERE " + cond
	}
	query += " ORDER BY id"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := t.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

// insert runs an INSERT and reads the new row back (generated columns included).
func (t Table[T]) insert(ctx context.Context, q querier, query string, args ...any) (T, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		var zero T
		return zero, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		var zero T
		return zero, err
	}
	return t.get(ctx, q, id, "")
}

// update runs an UPDATE on id and reads the row back.
func (t Table[T]) update(ctx context.Context, q querier, id int64, query string, args ...any) (T, error) {
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		var zero T
		return zero, mapErr(err)
	}
	return t.get(ctx, q, id, "")
}
