// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records refine runs in a SQLite database: which files were
// processed, with what outcome, and the note and responsibility tags each
// infraction record ended up with.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/refine-normas/internal/refine"
	"github.com/pdiddy/refine-normas/pkg/types"
)

const defaultMaxResults = 50

// Ledger manages the run ledger database.
type Ledger struct {
	db         *sql.DB
	path       string
	maxResults int
}

// Open opens or creates the ledger database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.LedgerConfig) (*Ledger, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("ledger path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	l := &Ledger{db: db, path: cfg.Path, maxResults: maxResults}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			policy TEXT NOT NULL,
			dry_run INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			path TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			records INTEGER NOT NULL,
			extracted INTEGER NOT NULL,
			changed INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_path ON files(path)`,
		`CREATE TABLE IF NOT EXISTS annotations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_id INTEGER NOT NULL REFERENCES files(id),
			idx INTEGER NOT NULL,
			articulo TEXT,
			apartado TEXT,
			nota TEXT NOT NULL,
			responsables TEXT NOT NULL,
			extracted INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_annotations_file_id ON annotations(file_id)`,
	}

	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RunInfo describes a refine run.
type RunInfo struct {
	// Mode is "file" or "dir".
	Mode   string
	Policy types.Policy
	DryRun bool
}

// Run records the files of one refine run. It implements refine.Recorder.
type Run struct {
	l  *Ledger
	id int64
}

var _ refine.Recorder = (*Run)(nil)

// BeginRun inserts a run row and returns a recorder for its files.
func (l *Ledger) BeginRun(ctx context.Context, info RunInfo) (*Run, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, mode, policy, dry_run) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), info.Mode, string(info.Policy), info.DryRun,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading run id: %w", err)
	}
	return &Run{l: l, id: id}, nil
}

// ID returns the run's row id.
func (r *Run) ID() int64 {
	return r.id
}

// RecordFile stores one file outcome and its record annotations in a
// single transaction.
func (r *Run) RecordFile(ctx context.Context, res refine.FileResult) error {
	tx, err := r.l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	fileRes, err := tx.ExecContext(ctx,
		`INSERT INTO files (run_id, path, name, status, records, extracted, changed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.id, res.Path, filepath.Base(res.Path), string(res.Status),
		res.Records, res.Extracted, res.Changed,
	)
	if err != nil {
		return fmt.Errorf("inserting file: %w", err)
	}
	fileID, err := fileRes.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading file id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO annotations (file_id, idx, articulo, apartado, nota, responsables, extracted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range res.Annotations {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tags := a.Responsables
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("encoding responsables: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			fileID, a.Index, a.Article, a.Section, a.Note, string(tagsJSON), a.Extracted,
		); err != nil {
			return fmt.Errorf("inserting annotation %d: %w", a.Index, err)
		}
	}

	return tx.Commit()
}
