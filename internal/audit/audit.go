// Package audit implements the supplementary SQLite-backed audit log
// (C12, SPEC_FULL.md §4.12) of committed per-tick routes. Purely
// additive: nothing in this module reads the log back to reconstruct
// registry or oracle state, which remain in-memory and rebuilt from
// the tabular feeds on every run, per spec.md §6's "no persisted
// state" rule.
//
// Grounded on the teacher's internal/database/db.go embedded-schema
// migration pattern.
package audit

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"darp-dispatch/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Log is the audit sink. A nil *Log is valid and every method becomes
// a no-op, so callers can unconditionally pass it through when
// --audit-db is empty.
type Log struct {
	db *sql.DB
}

// Open runs the embedded schema migration against path and returns a
// ready Log. Passing an empty path is a programmer error; callers
// should use NewDisabled instead.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open audit db")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping audit db")
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, errors.Wrap(err, "migrate audit db")
	}
	return &Log{db: db}, nil
}

// NewDisabled returns a Log whose methods are no-ops.
func NewDisabled() *Log { return nil }

// NewTickID generates a fresh tick identifier for correlating audit
// rows within one tick.
func NewTickID() string { return uuid.NewString() }

// RecordRoute persists one vehicle's committed route as ordered rows.
func (l *Log) RecordRoute(ctx context.Context, tickID string, v *models.Vehicle) error {
	if l == nil {
		return nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin audit tx")
	}
	defer tx.Rollback()

	for order, leg := range v.Route {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO audit_routes (tick_id, vehicle_id, stop_order, location_id, owner_kind, cumulative_seconds)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			tickID, v.ID, order, int64(leg.Loc), leg.Owner.Kind.String(), leg.CumulativeSecs,
		)
		if err != nil {
			return errors.Wrap(err, "insert audit row")
		}
	}

	return tx.Commit()
}

// Close releases the underlying database handle.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}
