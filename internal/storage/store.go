// Package storage persists databases as directories of tab-separated table
// files below one root. Every write replaces a whole file through a temporary
// sibling and a rename, so a crash never leaves a truncated file. There is no
// locking: two processes writing the same database can overwrite each other's
// changes, and callers are expected to serialize access themselves.
package storage

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/tuannm99/tabdb/internal/dberr"
	"github.com/tuannm99/tabdb/internal/table"
)

// Store reads and writes databases on an afero filesystem whose root is the
// storage root.
type Store struct {
	fs  afero.Fs
	log *slog.Logger
}

func New(fsys afero.Fs, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{fs: fsys, log: log}
}

// NewOS returns a store rooted at dir on the local disk. dir must exist.
func NewOS(dir string, log *slog.Logger) *Store {
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir), log)
}

// Fs exposes the underlying filesystem.
func (s *Store) Fs() afero.Fs { return s.fs }

// DatabaseExists reports whether db exists. An invalid name never exists.
func (s *Store) DatabaseExists(db string) (bool, error) {
	if !validName(db) {
		return false, nil
	}
	ok, err := afero.DirExists(s.fs, fileSet(db).Dir())
	if err != nil {
		return false, dberr.Wrap(dberr.IOFailure, err, "Failed to access database %s", db)
	}
	return ok, nil
}

func (s *Store) requireDatabase(db string) error {
	ok, err := s.DatabaseExists(db)
	if err != nil {
		return err
	}
	if !ok {
		return dberr.NoSuchDatabase(db)
	}
	return nil
}

// CreateDatabase makes the database directory with an empty metadata file.
func (s *Store) CreateDatabase(db string) error {
	if !validName(db) {
		return dberr.BadIdentifier(db)
	}
	ok, err := s.DatabaseExists(db)
	if err != nil {
		return err
	}
	if ok {
		return dberr.New(dberr.AlreadyExists,
			"Sorry, this database already exists. You cannot create another database with the same name.")
	}

	files := fileSet(db)
	if err := s.fs.MkdirAll(files.Dir(), 0o755); err != nil {
		return dberr.Wrap(dberr.IOFailure, err, "Failed to create database %s", db)
	}
	if err := s.WriteMetadata(db, map[string]int64{}); err != nil {
		return err
	}
	s.log.Debug("storage: database created", "db", files.DB)
	return nil
}

// DropDatabase removes every file of the database and then its directory.
// Removal is best effort: a failure on one file does not stop the others,
// and all failures are reported together. The directory may be left partly
// deleted.
func (s *Store) DropDatabase(db string) error {
	if err := s.requireDatabase(db); err != nil {
		return err
	}

	files := fileSet(db)
	entries, err := afero.ReadDir(s.fs, files.Dir())
	if err != nil {
		return dberr.Wrap(dberr.IOFailure, err, "Failed to list database %s", db)
	}

	var errs error
	for _, e := range entries {
		p := filepath.Join(files.Dir(), e.Name())
		if e.IsDir() {
			errs = multierr.Append(errs, s.fs.RemoveAll(p))
			continue
		}
		errs = multierr.Append(errs, s.fs.Remove(p))
	}
	if errs == nil {
		errs = s.fs.Remove(files.Dir())
	}
	if errs != nil {
		s.log.Warn("storage: drop database incomplete", "db", files.DB, "failures", len(multierr.Errors(errs)))
		return dberr.Wrap(dberr.IOFailure, errs, "Failed to drop database %s completely", db)
	}
	return nil
}

// TableExists reports whether the table exists in db. Invalid and reserved
// names never exist.
func (s *Store) TableExists(db, name string) (bool, error) {
	if !validName(db) || checkTableName(name) != nil {
		return false, nil
	}
	ok, err := afero.Exists(s.fs, fileSet(db).Table(name))
	if err != nil {
		return false, dberr.Wrap(dberr.IOFailure, err, "Failed to access table %s", name)
	}
	return ok, nil
}

func (s *Store) requireTable(db, name string) error {
	if err := s.requireDatabase(db); err != nil {
		return err
	}
	ok, err := s.TableExists(db, name)
	if err != nil {
		return err
	}
	if !ok {
		return dberr.NoSuchTable(name)
	}
	return nil
}

// CreateTable writes a new table file and registers its id counter.
func (s *Store) CreateTable(db string, t *table.Table) error {
	if err := s.requireDatabase(db); err != nil {
		return err
	}
	if err := checkTableName(t.Name); err != nil {
		return err
	}
	ok, err := s.TableExists(db, t.Name)
	if err != nil {
		return err
	}
	if ok {
		return dberr.New(dberr.AlreadyExists,
			"This table already exists! Please choose a different name for your new table.")
	}
	return s.SaveTable(db, t)
}

// DropTable removes the table file and its metadata entry.
func (s *Store) DropTable(db, name string) error {
	if err := s.requireTable(db, name); err != nil {
		return err
	}
	meta, err := s.ReadMetadata(db)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(fileSet(db).Table(name)); err != nil {
		return dberr.Wrap(dberr.IOFailure, err, "Failed to delete table %s", name)
	}
	delete(meta, fileSet(db).tableKey(name))
	return s.WriteMetadata(db, meta)
}

// LoadTable reads a table and its id counter. A table missing from the
// metadata file gets a counter one past its largest id.
func (s *Store) LoadTable(db, name string) (*table.Table, error) {
	if err := s.requireTable(db, name); err != nil {
		return nil, err
	}
	files := fileSet(db)

	data, err := afero.ReadFile(s.fs, files.Table(name))
	if err != nil {
		return nil, dberr.Wrap(dberr.IOFailure, err, "Failed to read table %s", name)
	}
	t, err := DecodeTable(files.tableKey(name), bytes.NewReader(data))
	if err != nil {
		return nil, dberr.Wrap(dberr.IOFailure, err, "Failed to read table %s", name)
	}

	meta, err := s.ReadMetadata(db)
	if err != nil {
		return nil, err
	}
	counter, ok := meta[t.Name]
	if !ok {
		counter = t.MaxID() + 1
		s.log.Warn("storage: id counter missing, recovered from rows", "db", files.DB, "table", t.Name, "next_id", counter)
	}
	t.IDCounter = counter
	return t, nil
}

// SaveTable overwrites the table file and records its id counter.
func (s *Store) SaveTable(db string, t *table.Table) error {
	if err := checkTableName(t.Name); err != nil {
		return err
	}
	if !validName(db) {
		return dberr.NoSuchDatabase(db)
	}
	files := fileSet(db)

	var buf bytes.Buffer
	if err := EncodeTable(&buf, t); err != nil {
		return dberr.Wrap(dberr.IOFailure, err, "Failed to write table %s to file", t.Name)
	}
	meta, err := s.ReadMetadata(db)
	if err != nil {
		return err
	}
	if err := s.writeFile(files.Table(t.Name), buf.Bytes()); err != nil {
		return dberr.Wrap(dberr.IOFailure, err, "Failed to write table %s to file", t.Name)
	}
	meta[files.tableKey(t.Name)] = t.IDCounter
	return s.WriteMetadata(db, meta)
}

// ReadMetadata returns the id counters of a database. A missing metadata
// file reads as empty.
func (s *Store) ReadMetadata(db string) (map[string]int64, error) {
	data, err := afero.ReadFile(s.fs, fileSet(db).Metadata())
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]int64{}, nil
	}
	if err != nil {
		return nil, dberr.Wrap(dberr.IOFailure, err, "Failed to read metadata of database %s", db)
	}
	meta, err := DecodeMetadata(bytes.NewReader(data))
	if err != nil {
		return nil, dberr.Wrap(dberr.IOFailure, err, "Failed to read metadata of database %s", db)
	}
	return meta, nil
}

func (s *Store) WriteMetadata(db string, meta map[string]int64) error {
	var buf bytes.Buffer
	if err := EncodeMetadata(&buf, meta); err != nil {
		return dberr.Wrap(dberr.IOFailure, err, "Failed to write metadata to file")
	}
	if err := s.writeFile(fileSet(db).Metadata(), buf.Bytes()); err != nil {
		return dberr.Wrap(dberr.IOFailure, err, "Failed to write metadata to file")
	}
	return nil
}

// ListTables returns the table names of a database, sorted.
func (s *Store) ListTables(db string) ([]string, error) {
	if err := s.requireDatabase(db); err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(s.fs, fileSet(db).Dir())
	if err != nil {
		return nil, dberr.Wrap(dberr.IOFailure, err, "Failed to list database %s", db)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := tableName(e.Name()); ok {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names, nil
}

// writeFile replaces path atomically.
func (s *Store) writeFile(path string, data []byte) error {
	tmp := path + tmpSuffix
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	return nil
}
