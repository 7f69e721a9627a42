// Package store loads and saves the tasks a chart shows. A store holds one
// Document: the task list plus the chart settings that travel with it.
// Stores are used from tea.Cmds and never touch chart state directly.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	appErrors "gantry/internal/errors"
	"gantry/internal/debug"
	"gantry/internal/swimlane"
	"gantry/internal/task"
)

var log = debug.For("store")

// Document is everything a store persists.
type Document struct {
	ViewMode  string          `json:"viewMode,omitempty" yaml:"viewMode,omitempty"`
	Swimlanes []swimlane.Info `json:"swimlanes,omitempty" yaml:"swimlanes,omitempty"`
	Tasks     []task.Task     `json:"tasks" yaml:"tasks"`
}

// Store reads and writes a whole document.
type Store interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
	Close() error
}

// ChangeLog is implemented by stores that keep a history of edits.
type ChangeLog interface {
	Append(ctx context.Context, changes []Change) error
	History(ctx context.Context, limit int) ([]Change, error)
}

// Kind selects a store implementation.
type Kind string

const (
	KindFile     Kind = "file"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// Config picks and locates a store.
type Config struct {
	Kind Kind
	// Path is the task file or the SQLite database.
	Path string
	// DSN is the Postgres connection string.
	DSN string
}

// ParseKind accepts the names used in config files and flags.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "file", "yaml", "json":
		return KindFile, nil
	case "sqlite", "sqlite3":
		return KindSQLite, nil
	case "postgres", "postgresql", "pg":
		return KindPostgres, nil
	}
	return "", appErrors.New(appErrors.CodeInvalidOption, fmt.Sprintf("unknown store kind %q", s), nil)
}

// Open connects to the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Kind {
	case KindFile, "":
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, appErrors.New(appErrors.CodeInvalidOption, "file store needs a path", nil)
		}
		return NewFile(cfg.Path), nil
	case KindSQLite:
		return OpenSQLite(ctx, cfg.Path)
	case KindPostgres:
		return OpenPostgres(ctx, cfg.DSN)
	}
	return nil, appErrors.New(appErrors.CodeInvalidOption, fmt.Sprintf("unknown store kind %q", cfg.Kind), nil)
}

// Sync saves doc and, when the store keeps a history, appends changes.
func Sync(ctx context.Context, s Store, doc Document, changes []Change) error {
	start := time.Now()
	if err := s.Save(ctx, doc); err != nil {
		return err
	}
	if l, ok := s.(ChangeLog); ok && len(changes) > 0 {
		if err := l.Append(ctx, changes); err != nil {
			return err
		}
	}
	log.Since(fmt.Sprintf("sync %d tasks, %d changes", len(doc.Tasks), len(changes)), start)
	return nil
}

func failed(msg string, err error) error {
	return appErrors.New(appErrors.CodeStoreFailed, msg, err)
}
