// File path: internal/store/counters.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/animalert/animalert/internal/common"
	"github.com/animalert/animalert/internal/common/telemetry"
)

// Scope names a numbering sequence.
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeCategory Scope = "category"
)

var (
	ErrCategoryRequired = errors.New("category scope requires a category id")
	ErrUnknownScope     = errors.New("unknown counter scope")
)

// IncrementCounter atomically advances the counter for scope and returns
// its new value. The row is created with value 1 on first use. The
// increment commits on its own, so a value handed out is never handed out
// again even if the caller later fails.
func (s *Store) IncrementCounter(ctx context.Context, scope Scope, categoryID *int64) (int64, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	if err := checkScope(scope, categoryID); err != nil {
		return 0, err
	}
	var value int64
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		value, err = s.incrementCounter(ctx, tx, scope, categoryID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return value, nil
}

// ReserveCounters reserves the next per-category number and the next
// global number in one transaction.
func (s *Store) ReserveCounters(ctx context.Context, categoryID int64) (objNo, totalNo int64, err error) {
	if err := s.ensureReady(); err != nil {
		return 0, 0, err
	}
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		if objNo, err = s.incrementCounter(ctx, tx, ScopeCategory, &categoryID); err != nil {
			return err
		}
		totalNo, err = s.incrementCounter(ctx, tx, ScopeGlobal, nil)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	common.Component("store").Debug("store: counters reserved", "category_id", categoryID, "obj_no", objNo, "total_no", totalNo)
	return objNo, totalNo, nil
}

func checkScope(scope Scope, categoryID *int64) error {
	switch scope {
	case ScopeGlobal:
		return nil
	case ScopeCategory:
		if categoryID == nil {
			return ErrCategoryRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
}

func (s *Store) incrementCounter(ctx context.Context, tx *sqlx.Tx, scope Scope, categoryID *int64) (int64, error) {
	if err := checkScope(scope, categoryID); err != nil {
		return 0, err
	}
	var key int64
	var category interface{}
	if scope == ScopeCategory {
		key = *categoryID
		category = *categoryID
	}

	var value int64
	switch s.dialect.name {
	case DriverMySQL:
		if _, err := tx.ExecContext(ctx, mysqlCounterUpsert, string(scope), key, category); err != nil {
			return 0, fmt.Errorf("increment %s counter: %w", scope, err)
		}
		if err := tx.GetContext(ctx, &value, `SELECT LAST_INSERT_ID()`); err != nil {
			return 0, fmt.Errorf("read %s counter: %w", scope, err)
		}
	default:
		if err := tx.GetContext(ctx, &value, sqliteCounterUpsert, string(scope), key, category); err != nil {
			return 0, fmt.Errorf("increment %s counter: %w", scope, err)
		}
	}
	telemetry.RecordCounterReserved(string(scope))
	return value, nil
}
