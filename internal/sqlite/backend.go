// Package sqlite implements the trajectory store on SQLite. JSONL files in
// DataDir are the source of truth; the database is rebuilt from them on
// Attach and used as the query engine while attached.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

// dbFile is the SQLite cache inside DataDir.
const dbFile = "linkage.db"

// Backend implements types.Store.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
}

// NewBackend creates a detached backend. Call Attach before use.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach creates DataDir if needed, recreates the database and loads the
// JSONL files into it. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale database: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// One connection serialises writers and keeps the pragma in effect.
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}
	if err := ensureJSONL(dataDir); err != nil {
		db.Close()
		return err
	}
	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.attached = true
	return nil
}

// Detach writes the JSONL files and closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.persistLocked(); err != nil {
		return fmt.Errorf("persist on detach: %w", err)
	}
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	b.db = nil
	b.attached = false
	return nil
}

func createSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// persistLocked rewrites every JSONL file from the database. The caller
// must hold b.mu.
func (b *Backend) persistLocked() error {
	if err := b.persistRuns(); err != nil {
		return err
	}
	return b.persistPositions()
}

func (b *Backend) persistRuns() error {
	runs, err := b.queryRuns("ORDER BY created_at, run_id")
	if err != nil {
		return err
	}
	records := make([]json.RawMessage, 0, len(runs))
	for _, r := range runs {
		rec, err := dehydrateRun(r)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	return writeJSONL(filepath.Join(b.dataDir, runsJSONL), records)
}

func (b *Backend) persistPositions() error {
	rows, err := b.db.Query(`SELECT run_id, step, ordinal, joint, x, y, angle FROM positions
		ORDER BY run_id, step, ordinal`)
	if err != nil {
		return fmt.Errorf("read positions for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var (
			p     positionJSON
			angle sql.NullFloat64
		)
		if err := rows.Scan(&p.RunID, &p.Step, &p.Ordinal, &p.Joint, &p.X, &p.Y, &angle); err != nil {
			return fmt.Errorf("scan position for JSONL: %w", err)
		}
		if angle.Valid {
			p.Angle = &angle.Float64
		}
		rec, err := dehydratePosition(p)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.dataDir, positionsJSONL), records)
}

// generateUUID returns a time-ordered UUID v7 for run IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
