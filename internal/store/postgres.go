package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appErrors "gantry/internal/errors"
	"gantry/internal/task"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS gantry_tasks (
	position   INTEGER PRIMARY KEY,
	id         TEXT NOT NULL,
	name       TEXT NOT NULL DEFAULT '',
	start_date TEXT NOT NULL DEFAULT '',
	end_date   TEXT NOT NULL DEFAULT '',
	body       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS gantry_tasks_id ON gantry_tasks (id);
CREATE TABLE IF NOT EXISTS gantry_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS gantry_changes (
	seq      BIGSERIAL PRIMARY KEY,
	kind     TEXT NOT NULL,
	task_id  TEXT NOT NULL DEFAULT '',
	other_id TEXT NOT NULL DEFAULT '',
	idx      INTEGER NOT NULL DEFAULT 0,
	size     DOUBLE PRECISION NOT NULL DEFAULT 0,
	task     JSONB,
	at       TIMESTAMPTZ NOT NULL
);
`

// Postgres keeps the document in a shared PostgreSQL database so several
// people can plan against the same chart.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects with dsn, pings the server and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, appErrors.New(appErrors.CodeInvalidOption, "postgres store needs a dsn", nil)
	}
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeInvalidOption, "parse postgres dsn", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, failed("create postgres pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, failed("ping postgres", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, failed("migrate postgres", err)
	}
	log.Logf("opened postgres store %s@%s", config.ConnConfig.User, config.ConnConfig.Host)
	return &Postgres{pool: pool}, nil
}

// Load reads every task in display order.
func (p *Postgres) Load(ctx context.Context) (Document, error) {
	var doc Document
	rows, err := p.pool.Query(ctx, `SELECT body FROM gantry_tasks ORDER BY position`)
	if err != nil {
		return doc, failed("query tasks", err)
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (task.Task, error) {
		var body []byte
		var t task.Task
		if err := row.Scan(&body); err != nil {
			return t, err
		}
		err := json.Unmarshal(body, &t)
		return t, err
	})
	if err != nil {
		return doc, failed("read tasks", err)
	}
	doc.Tasks = tasks

	rows, err = p.pool.Query(ctx, `SELECT key, value FROM gantry_meta`)
	if err != nil {
		return doc, failed("query meta", err)
	}
	meta := make(map[string]string)
	var k, v string
	if _, err := pgx.ForEachRow(rows, []any{&k, &v}, func() error {
		meta[k] = v
		return nil
	}); err != nil {
		return doc, failed("read meta", err)
	}
	if err := applyMeta(&doc, meta); err != nil {
		return doc, err
	}
	return doc, nil
}

// Save replaces the stored tasks and settings in one transaction.
func (p *Postgres) Save(ctx context.Context, doc Document) error {
	bodies, err := encodeTasks(doc.Tasks)
	if err != nil {
		return err
	}
	meta, err := encodeMeta(doc)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return failed("begin postgres transaction", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM gantry_tasks`); err != nil {
		return failed("clear tasks", err)
	}
	batch := &pgx.Batch{}
	for i, t := range doc.Tasks {
		batch.Queue(
			`INSERT INTO gantry_tasks (position, id, name, start_date, end_date, body) VALUES ($1, $2, $3, $4, $5, $6)`,
			i, t.ID, t.Name, t.Start, t.End, bodies[i],
		)
	}
	for k, v := range meta {
		batch.Queue(
			`INSERT INTO gantry_meta (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
			k, v,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return failed(fmt.Sprintf("write %d tasks", len(doc.Tasks)), err)
	}
	if err := tx.Commit(ctx); err != nil {
		return failed("commit postgres transaction", err)
	}
	return nil
}

// Append adds changes to the history.
func (p *Postgres) Append(ctx context.Context, changes []Change) error {
	batch := &pgx.Batch{}
	for _, c := range changes {
		body, err := encodeChangeTask(c)
		if err != nil {
			return err
		}
		batch.Queue(
			`INSERT INTO gantry_changes (kind, task_id, other_id, idx, size, task, at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(c.Kind), c.TaskID, c.OtherID, c.Index, c.Size, body, c.At,
		)
	}
	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return failed("insert changes", err)
	}
	return nil
}

// History returns the most recent changes, oldest first. A limit of zero
// or less returns everything.
func (p *Postgres) History(ctx context.Context, limit int) ([]Change, error) {
	query := `SELECT kind, task_id, other_id, idx, size, task, at FROM gantry_changes ORDER BY seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, failed("query changes", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Change, error) {
		var (
			c    Change
			kind string
			body []byte
		)
		if err := row.Scan(&kind, &c.TaskID, &c.OtherID, &c.Index, &c.Size, &body, &c.At); err != nil {
			return c, err
		}
		c.Kind = ChangeKind(kind)
		if body != nil {
			var t task.Task
			if err := json.Unmarshal(body, &t); err != nil {
				return c, err
			}
			c.Task = &t
		}
		return c, nil
	})
	if err != nil {
		return nil, failed("read changes", err)
	}
	slices.Reverse(out)
	return out, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
