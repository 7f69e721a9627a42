package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	appErrors "gantry/internal/errors"
	"gantry/internal/task"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	position   INTEGER PRIMARY KEY,
	id         TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	start_date TEXT NOT NULL DEFAULT '',
	end_date   TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_id ON tasks (id);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS changes (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	kind     TEXT NOT NULL,
	task_id  TEXT NOT NULL DEFAULT '',
	other_id TEXT NOT NULL DEFAULT '',
	idx      INTEGER NOT NULL DEFAULT 0,
	size     REAL NOT NULL DEFAULT 0,
	task     TEXT,
	at       TEXT NOT NULL
);
`

const (
	metaViewMode  = "view_mode"
	metaSwimlanes = "swimlanes"
)

// SQLite keeps the document in a SQLite database, one row per task
// instance in display order, plus a change history.
type SQLite struct {
	path string
	db   *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, appErrors.New(appErrors.CodeInvalidOption, "sqlite store needs a path", nil)
	}
	//nolint:gosec // G301: database lives next to the user's project
	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, failed("create sqlite directory", err)
	}
	db, err := sql.Open("sqlite", buildSQLiteDSN(trimmed))
	if err != nil {
		return nil, failed("open sqlite db", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, failed("ping sqlite db", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, failed("migrate sqlite db", err)
	}
	log.Logf("opened sqlite store %s", trimmed)
	return &SQLite{path: trimmed, db: db}, nil
}

// buildSQLiteDSN creates a WAL DSN for the given path.
func buildSQLiteDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(3000)")
	q.Add("_pragma", "foreign_keys(1)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Load reads every task in display order.
func (s *SQLite) Load(ctx context.Context) (Document, error) {
	var doc Document
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM tasks ORDER BY position`)
	if err != nil {
		return doc, failed("query tasks", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return doc, failed("scan task", err)
		}
		var t task.Task
		if err := json.Unmarshal([]byte(body), &t); err != nil {
			return doc, appErrors.New(appErrors.CodeParseFailed, "decode stored task", err)
		}
		doc.Tasks = append(doc.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return doc, failed("read tasks", err)
	}

	meta, err := s.meta(ctx)
	if err != nil {
		return doc, err
	}
	if err := applyMeta(&doc, meta); err != nil {
		return doc, err
	}
	return doc, nil
}

func (s *SQLite) meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return nil, failed("query meta", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, failed("scan meta", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Save replaces the stored tasks and settings in one transaction.
func (s *SQLite) Save(ctx context.Context, doc Document) error {
	bodies, err := encodeTasks(doc.Tasks)
	if err != nil {
		return err
	}
	meta, err := encodeMeta(doc)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return failed("begin sqlite transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return failed("clear tasks", err)
	}
	for i, t := range doc.Tasks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (position, id, name, start_date, end_date, body) VALUES (?, ?, ?, ?, ?, ?)`,
			i, t.ID, t.Name, t.Start, t.End, bodies[i],
		); err != nil {
			return failed(fmt.Sprintf("insert task %s", t.ID), err)
		}
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return failed("write meta", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return failed("commit sqlite transaction", err)
	}
	return nil
}

// Append adds changes to the history.
func (s *SQLite) Append(ctx context.Context, changes []Change) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return failed("begin sqlite transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	for _, c := range changes {
		body, err := encodeChangeTask(c)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO changes (kind, task_id, other_id, idx, size, task, at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(c.Kind), c.TaskID, c.OtherID, c.Index, c.Size, body, c.At.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return failed("insert change", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return failed("commit sqlite transaction", err)
	}
	return nil
}

// History returns the most recent changes, oldest first. A limit of zero
// or less returns everything.
func (s *SQLite) History(ctx context.Context, limit int) ([]Change, error) {
	query := `SELECT kind, task_id, other_id, idx, size, task, at FROM changes ORDER BY seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, failed("query changes", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Change
	for rows.Next() {
		var (
			c    Change
			kind string
			body sql.NullString
			at   string
		)
		if err := rows.Scan(&kind, &c.TaskID, &c.OtherID, &c.Index, &c.Size, &body, &at); err != nil {
			return nil, failed("scan change", err)
		}
		c.Kind = ChangeKind(kind)
		if c.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, appErrors.New(appErrors.CodeParseFailed, "decode change time", err)
		}
		if body.Valid {
			var t task.Task
			if err := json.Unmarshal([]byte(body.String), &t); err != nil {
				return nil, appErrors.New(appErrors.CodeParseFailed, "decode change task", err)
			}
			c.Task = &t
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, failed("read changes", err)
	}
	slices.Reverse(out)
	return out, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func encodeTasks(tasks []task.Task) ([]string, error) {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return nil, failed(fmt.Sprintf("encode task %s", t.ID), err)
		}
		out[i] = string(data)
	}
	return out, nil
}

func encodeMeta(doc Document) (map[string]string, error) {
	lanes, err := json.Marshal(doc.Swimlanes)
	if err != nil {
		return nil, failed("encode swimlanes", err)
	}
	return map[string]string{
		metaViewMode:  doc.ViewMode,
		metaSwimlanes: string(lanes),
	}, nil
}

func applyMeta(doc *Document, meta map[string]string) error {
	doc.ViewMode = meta[metaViewMode]
	if raw := meta[metaSwimlanes]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &doc.Swimlanes); err != nil {
			return appErrors.New(appErrors.CodeParseFailed, "decode stored swimlanes", err)
		}
	}
	return nil
}

func encodeChangeTask(c Change) (*string, error) {
	if c.Task == nil {
		return nil, nil
	}
	data, err := json.Marshal(c.Task)
	if err != nil {
		return nil, failed("encode change task", err)
	}
	s := string(data)
	return &s, nil
}
