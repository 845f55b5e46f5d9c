package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	mysqldrv "github.com/go-sql-driver/mysql"

	"hotel_booking/internal/domain"
)

// MySQL server error numbers the repository translates.
const (
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
	erDupEntry        = 1062
	erNoReferencedRow = 1452
	erCheckViolated   = 3819
)

func mapErr(err error) error {
	var me *mysqldrv.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case erLockDeadlock, erLockWaitTimeout:
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	case erDupEntry:
		return fmt.Errorf("%w: %v", domain.ErrAlreadyExists, err)
	case erNoReferencedRow:
		return fmt.Errorf("referenced row: %w", domain.ErrNotFound)
	case erCheckViolated:
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return err
}

// withTx runs fn in a transaction; anything but a nil return rolls back.
func withTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return mapErr(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapErr(err)
	}
	return nil
}

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(v []string) any {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func scanJSON(b []byte) []string {
	out := []string{}
	if len(b) > 0 {
		_ = json.Unmarshal(b, &out)
	}
	return out
}

func ptrInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func ptrStr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}
