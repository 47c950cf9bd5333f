// File path: internal/store/dialect.go
package store

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// dialect isolates the few statements whose syntax differs between SQLite
// and MySQL. Everything else is written in the common subset and uses "?"
// placeholders, which both drivers accept.
type dialect struct {
	name   string
	schema []string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return dialect{name: DriverSQLite, schema: sqliteSchema}, nil
	case DriverMySQL:
		return dialect{name: DriverMySQL, schema: mysqlSchema}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// dataSourceName builds the driver DSN. SQLite takes immediate write locks so
// concurrent submissions queue on the busy timeout instead of failing on a
// lock upgrade; MySQL always parses DATETIME columns into time.Time.
func dataSourceName(cfg Config) (string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		abs, err := filepath.Abs(cfg.Path)
		if err != nil {
			return "", fmt.Errorf("resolve sqlite path: %w", err)
		}
		busy := int(cfg.BusyTimeout / time.Millisecond)
		if busy <= 0 {
			busy = 5000
		}
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_txlock=immediate", abs, busy), nil
	case DriverMySQL:
		parsed, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		parsed.ParseTime = true
		parsed.Loc = time.UTC
		if cfg.BusyTimeout > 0 && parsed.Timeout == 0 {
			parsed.Timeout = cfg.BusyTimeout
		}
		return parsed.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// insertIgnore returns the clause that turns an INSERT into a no-op when a
// row with the same unique key already exists.
func (d dialect) insertIgnore(conflict ...string) string {
	if d.name == DriverMySQL {
		return fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s = %s", conflict[0], conflict[0])
	}
	return fmt.Sprintf(" ON CONFLICT(%s) DO NOTHING", strings.Join(conflict, ", "))
}

// upsert returns the clause that overwrites the listed columns when a row
// with the same unique key already exists.
func (d dialect) upsert(conflict []string, columns ...string) string {
	sets := make([]string, 0, len(columns))
	if d.name == DriverMySQL {
		for _, col := range columns {
			sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", col, col))
		}
		return " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	for _, col := range columns {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", col, col))
	}
	return fmt.Sprintf(" ON CONFLICT(%s) DO UPDATE SET %s", strings.Join(conflict, ", "), strings.Join(sets, ", "))
}

const sqliteCounterUpsert = `INSERT INTO numbering_counters(scope, category_key, category_id, next_value, updated_at)
        VALUES(?, ?, ?, 1, CURRENT_TIMESTAMP)
        ON CONFLICT(scope, category_key) DO UPDATE SET
                next_value = next_value + 1,
                updated_at = CURRENT_TIMESTAMP
        RETURNING next_value`

// MySQL has no RETURNING; LAST_INSERT_ID(expr) stores the new value on the
// connection so the follow-up SELECT in the same transaction reads it back.
const mysqlCounterUpsert = `INSERT INTO numbering_counters(scope, category_key, category_id, next_value, updated_at)
        VALUES(?, ?, ?, LAST_INSERT_ID(1), CURRENT_TIMESTAMP)
        ON DUPLICATE KEY UPDATE
                next_value = LAST_INSERT_ID(next_value + 1),
                updated_at = CURRENT_TIMESTAMP`
