// Package tracedb persists a simulation run's committed modifications and
// dumps to a relational database, selected by DSN scheme
// (mysql/pgsql/sqlite).
package tracedb

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/AaronC81/hiloz/model"
)

// DB is a trace sink backed by a standard database/sql connection. It has
// no prepared-statement or result-set surface to expose; it only ever
// writes rows.
type DB struct {
	sql    *sql.DB
	driver string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id VARCHAR(64) PRIMARY KEY,
	started_at TEXT NOT NULL,
	source_path TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS modifications (
	run_id VARCHAR(64) NOT NULL,
	step INTEGER NOT NULL,
	time_elapsed INTEGER NOT NULL,
	component_idx INTEGER NOT NULL,
	kind TEXT NOT NULL,
	idx INTEGER NOT NULL,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS dumps (
	run_id VARCHAR(64) NOT NULL,
	step INTEGER NOT NULL,
	time_elapsed INTEGER NOT NULL,
	component_idx INTEGER NOT NULL,
	value TEXT NOT NULL
);
`

// driverName maps a DSN scheme (the part before the first ':') to the
// database/sql driver name registered by that driver's blank import.
var driverName = map[string]string{
	"sqlite":   "sqlite",
	"mysql":    "mysql",
	"postgres": "postgres",
	"pgsql":    "postgres",
}

// Open parses dsn as "<scheme>:<rest>", opens a connection with the driver
// registered for that scheme, and ensures the trace schema exists.
func Open(dsn string) (*DB, error) {
	scheme, rest, ok := strings.Cut(dsn, ":")
	if !ok {
		return nil, fmt.Errorf("tracedb: invalid DSN %q, expected \"<scheme>:<rest>\"", dsn)
	}
	driver, ok := driverName[scheme]
	if !ok {
		return nil, fmt.Errorf("tracedb: unknown DSN scheme %q", scheme)
	}

	sqlDB, err := sql.Open(driver, rest)
	if err != nil {
		return nil, fmt.Errorf("tracedb: opening %s: %w", scheme, err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("tracedb: connecting to %s: %w", scheme, err)
	}

	db := &DB{sql: sqlDB, driver: driver}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// bind rewrites ? placeholders into the $1..$n form postgres requires.
// The sqlite and mysql drivers take ? as-is.
func (db *DB) bind(query string) string {
	if db.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}

func (db *DB) migrate() error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.sql.Exec(stmt); err != nil {
			return fmt.Errorf("tracedb: migrating schema: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.sql.Close() }

// RecordRun inserts the header row identifying one simulation run.
func (db *DB) RecordRun(runID string, startedAt time.Time, sourcePath string) error {
	_, err := db.sql.Exec(
		db.bind(`INSERT INTO runs (id, started_at, source_path) VALUES (?, ?, ?)`),
		runID, startedAt.UTC().Format(time.RFC3339Nano), sourcePath,
	)
	return err
}

// RecordStep persists every modification emitted by one scheduler step,
// splitting dumps into their own table since they carry no pin/variable
// index.
func (db *DB) RecordStep(runID string, step int, timeElapsed uint64, mods []model.ComponentStateModification) error {
	for _, m := range mods {
		if m.Kind == model.ModifyDump {
			_, err := db.sql.Exec(
				db.bind(`INSERT INTO dumps (run_id, step, time_elapsed, component_idx, value) VALUES (?, ?, ?, ?, ?)`),
				runID, step, timeElapsed, m.ComponentIdx, m.Value.String(),
			)
			if err != nil {
				return fmt.Errorf("tracedb: recording dump: %w", err)
			}
			continue
		}

		kind, value := "variable", m.Value.String()
		if m.Kind == model.ModifyPin {
			kind, value = "pin", m.LogicValue.String()
		}
		_, err := db.sql.Exec(
			db.bind(`INSERT INTO modifications (run_id, step, time_elapsed, component_idx, kind, idx, value) VALUES (?, ?, ?, ?, ?, ?, ?)`),
			runID, step, timeElapsed, m.ComponentIdx, kind, m.Idx, value,
		)
		if err != nil {
			return fmt.Errorf("tracedb: recording modification: %w", err)
		}
	}
	return nil
}
