// Package tabdb embeds the database engine: databases are directories, tables
// are tab-separated files, and every command is loaded, applied and written
// back before Exec returns.
//
// A DB does no locking. Callers running commands from several goroutines
// must serialise them, as the wire server does.
package tabdb

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/tuannm99/tabdb/internal/sql/executor"
	"github.com/tuannm99/tabdb/internal/storage"
)

// Session holds the database selected with USE.
type Session = executor.Session

type DB struct {
	ex *executor.Executor
}

// Open returns a DB stored under root, creating the directory if needed.
func Open(root string, log *slog.Logger) (*DB, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("tabdb: create root %s: %w", root, err)
	}
	return &DB{ex: executor.NewExecutor(storage.NewOS(root, log), log)}, nil
}

// OpenFs returns a DB on an arbitrary filesystem, e.g. afero.NewMemMapFs().
func OpenFs(fsys afero.Fs, log *slog.Logger) *DB {
	return &DB{ex: executor.NewExecutor(storage.New(fsys, log), log)}
}

func (db *DB) NewSession() *Session { return executor.NewSession() }

// Exec runs one command and returns its rendered response.
func (db *DB) Exec(ctx context.Context, sess *Session, query string) string {
	return db.ex.Handle(ctx, sess, query)
}
