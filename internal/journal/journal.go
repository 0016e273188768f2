/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package journal keeps a small on-disk record of writes that are scheduled
// but not yet acknowledged by the backend. If the editor crashes mid-session
// the next start replays the journal into the reconciler, so a debounced
// edit survives the crash. Backed by an embedded SQLite database.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"pagedesigner/internal/domain"
	applog "pagedesigner/internal/log"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	FileName = "journal.sqlite"

	// schemaVersion tracks the journal schema. Bump on breaking changes.
	schemaVersion = 1
)

// Journal is the durable pending-write record. Safe for use from the UI
// thread and timer callbacks; the single connection serializes access.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database under dir.
func Open(dir string) (*Journal, error) {
	l := applog.WithOperation(applog.WithComponent("journal"), "open").With(
		slog.String("dir", dir),
	)
	if dir == "" {
		return nil, errors.New("journal dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create journal dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("journal ready", slog.String("path", path))
	return &Journal{db: db}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pending_elements (
			element_id INTEGER PRIMARY KEY,
			patch TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pending_styles (
			page INTEGER NOT NULL,
			label TEXT NOT NULL,
			patch TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (page, label)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("journal schema: %w", err)
		}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO meta(key, value) VALUES('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value;`,
		fmt.Sprintf("%d", schemaVersion))
	if err != nil {
		return fmt.Errorf("journal schema version: %w", err)
	}
	return nil
}

// RecordElement upserts the pending patch for an element, merging it over
// anything already journaled for the same id.
func (j *Journal) RecordElement(ctx context.Context, id int64, patch domain.ElementPatch) error {
	existing, ok, err := j.element(ctx, id)
	if err != nil {
		return err
	}
	if ok {
		patch = existing.Merge(patch)
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO pending_elements(element_id, patch, updated_at) VALUES(?, ?, ?)
		 ON CONFLICT(element_id) DO UPDATE SET patch=excluded.patch, updated_at=excluded.updated_at;`,
		id, string(body), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record element %d: %w", id, err)
	}
	return nil
}

func (j *Journal) element(ctx context.Context, id int64) (domain.ElementPatch, bool, error) {
	var body string
	err := j.db.QueryRowContext(ctx,
		`SELECT patch FROM pending_elements WHERE element_id = ?;`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ElementPatch{}, false, nil
	}
	if err != nil {
		return domain.ElementPatch{}, false, fmt.Errorf("read element %d: %w", id, err)
	}
	var p domain.ElementPatch
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return domain.ElementPatch{}, false, fmt.Errorf("decode patch %d: %w", id, err)
	}
	return p, true, nil
}

// AckElement removes an element's journal entry after a confirmed write.
func (j *Journal) AckElement(ctx context.Context, id int64) error {
	if _, err := j.db.ExecContext(ctx,
		`DELETE FROM pending_elements WHERE element_id = ?;`, id); err != nil {
		return fmt.Errorf("ack element %d: %w", id, err)
	}
	return nil
}

// PendingElements returns every journaled element patch, keyed by id.
func (j *Journal) PendingElements(ctx context.Context) (map[int64]domain.ElementPatch, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT element_id, patch FROM pending_elements;`)
	if err != nil {
		return nil, fmt.Errorf("list pending elements: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]domain.ElementPatch)
	for rows.Next() {
		var id int64
		var body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan pending element: %w", err)
		}
		var p domain.ElementPatch
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("decode pending element %d: %w", id, err)
		}
		out[id] = p
	}
	return out, rows.Err()
}

// RecordStyle upserts the pending patch for one (page, label) override.
func (j *Journal) RecordStyle(ctx context.Context, page int, label domain.LabelType, patch domain.StylePatch) error {
	var body string
	err := j.db.QueryRowContext(ctx,
		`SELECT patch FROM pending_styles WHERE page = ? AND label = ?;`, page, string(label)).Scan(&body)
	if err == nil {
		var existing domain.StylePatch
		if err := json.Unmarshal([]byte(body), &existing); err == nil {
			patch = existing.Merge(patch)
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read style %d/%s: %w", page, label, err)
	}
	enc, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encode style patch: %w", err)
	}
	_, err = j.db.ExecContext(ctx,
		`INSERT INTO pending_styles(page, label, patch, updated_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT(page, label) DO UPDATE SET patch=excluded.patch, updated_at=excluded.updated_at;`,
		page, string(label), string(enc), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record style %d/%s: %w", page, label, err)
	}
	return nil
}

// AckStyle removes a style journal entry after a confirmed write.
func (j *Journal) AckStyle(ctx context.Context, page int, label domain.LabelType) error {
	if _, err := j.db.ExecContext(ctx,
		`DELETE FROM pending_styles WHERE page = ? AND label = ?;`, page, string(label)); err != nil {
		return fmt.Errorf("ack style %d/%s: %w", page, label, err)
	}
	return nil
}

// PendingStyles returns every journaled style patch.
func (j *Journal) PendingStyles(ctx context.Context) (map[int]map[domain.LabelType]domain.StylePatch, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT page, label, patch FROM pending_styles;`)
	if err != nil {
		return nil, fmt.Errorf("list pending styles: %w", err)
	}
	defer rows.Close()
	out := make(map[int]map[domain.LabelType]domain.StylePatch)
	for rows.Next() {
		var page int
		var label, body string
		if err := rows.Scan(&page, &label, &body); err != nil {
			return nil, fmt.Errorf("scan pending style: %w", err)
		}
		var p domain.StylePatch
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("decode pending style %d/%s: %w", page, label, err)
		}
		if out[page] == nil {
			out[page] = make(map[domain.LabelType]domain.StylePatch)
		}
		out[page][domain.LabelType(label)] = p
	}
	return out, rows.Err()
}

// Clear drops every journal entry, used after a full successful flush.
func (j *Journal) Clear(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM pending_elements;`); err != nil {
		return fmt.Errorf("clear elements: %w", err)
	}
	if _, err := j.db.ExecContext(ctx, `DELETE FROM pending_styles;`); err != nil {
		return fmt.Errorf("clear styles: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (j *Journal) Close() error { return j.db.Close() }
