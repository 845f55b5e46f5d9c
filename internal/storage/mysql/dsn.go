package mysql

import (
	"fmt"
	"strconv"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
)

// SessionDSN normalizes dsn for this store: DATETIME and DATE columns scan into UTC
// time.Time, and lockTimeout (0 keeps the server default) becomes a connection
// attribute, so every pooled connection carries the same innodb_lock_wait_timeout.
func SessionDSN(dsn string, lockTimeout time.Duration) (string, error) {
	cfg, err := mysqldrv.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if lockTimeout > 0 {
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		cfg.Params["innodb_lock_wait_timeout"] = strconv.Itoa(max(int(lockTimeout.Seconds()), 1))
	}
	return cfg.FormatDSN(), nil
}
