package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tuannm99/tabdb/internal/dberr"
	"github.com/tuannm99/tabdb/internal/sql/parser"
	"github.com/tuannm99/tabdb/internal/storage"
	"github.com/tuannm99/tabdb/internal/table"
)

// catalog is a small seam for unit-testing Executor without a real store.
type catalog interface {
	DatabaseExists(db string) (bool, error)
	CreateDatabase(db string) error
	DropDatabase(db string) error

	CreateTable(db string, t *table.Table) error
	DropTable(db, name string) error
	LoadTable(db, name string) (*table.Table, error)
	SaveTable(db string, t *table.Table) error
}

var _ catalog = (*storage.Store)(nil)

// Executor runs statements against a store. Every command loads the tables
// it needs, changes them in memory and writes them back before returning.
// Executor keeps no state between commands; the selected database lives in
// the Session.
type Executor struct {
	store catalog
	log   *slog.Logger
}

func NewExecutor(store *storage.Store, log *slog.Logger) *Executor {
	return newExecutor(store, log)
}

func newExecutor(c catalog, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{store: c, log: log}
}

// Handle executes one command and renders the response line(s). Nothing
// escapes as an error: failures become "[ERROR]: <message>".
func (e *Executor) Handle(ctx context.Context, sess *Session, query string) string {
	res, err := e.Exec(ctx, sess, query)
	if err != nil {
		lvl := slog.LevelDebug
		if k := dberr.KindOf(err); k == dberr.IOFailure || k == dberr.Unknown {
			lvl = slog.LevelError
		}
		e.log.Log(ctx, lvl, "executor: command failed",
			"session", sess.ID, "db", sess.Database(), "err", err)
		return dberr.Render(err)
	}
	return res.Render()
}

// Exec is the top-level entry: SQL string -> Result.
func (e *Executor) Exec(ctx context.Context, sess *Session, query string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}
	return e.execCommand(ctx, sess, cmd)
}

func (e *Executor) execCommand(ctx context.Context, sess *Session, c parser.Command) (*Result, error) {
	switch cmd := c.(type) {
	case *parser.UseCmd:
		return e.execUse(sess, cmd)
	case *parser.CreateCmd:
		if cmd.Target == parser.TargetDatabase {
			return e.execCreateDatabase(sess, cmd)
		}
		return e.execCreateTable(sess, cmd)
	case *parser.DropCmd:
		if cmd.Target == parser.TargetDatabase {
			return e.execDropDatabase(ctx, sess, cmd)
		}
		return e.execDropTable(sess, cmd)
	case *parser.AlterCmd:
		return e.execAlter(sess, cmd)
	case *parser.InsertCmd:
		return e.execInsert(sess, cmd)
	case *parser.SelectCmd:
		return e.execSelect(sess, cmd)
	case *parser.UpdateCmd:
		return e.execUpdate(sess, cmd)
	case *parser.DeleteCmd:
		return e.execDelete(sess, cmd)
	case *parser.JoinCmd:
		return e.execJoin(sess, cmd)
	default:
		return nil, fmt.Errorf("executor: unsupported command type %T", c)
	}
}

// current returns the selected database.
func current(sess *Session) (string, error) {
	if sess.Database() == "" {
		return "", dberr.New(dberr.DatabaseNotFound, "No database selected. Please run USE <database>; first.")
	}
	return sess.Database(), nil
}

func isID(name string) bool { return strings.EqualFold(name, table.IDColumn) }

func (e *Executor) execUse(sess *Session, cmd *parser.UseCmd) (*Result, error) {
	prev := sess.switchTo(cmd.Database)
	ok, err := e.store.DatabaseExists(cmd.Database)
	if err == nil && !ok {
		err = dberr.NoSuchDatabase(cmd.Database)
	}
	if err != nil {
		sess.switchTo(prev)
		return nil, err
	}
	return &Result{}, nil
}

func (e *Executor) execCreateDatabase(sess *Session, cmd *parser.CreateCmd) (*Result, error) {
	if err := e.store.CreateDatabase(cmd.Name); err != nil {
		return nil, err
	}
	sess.switchTo(cmd.Name)
	return &Result{}, nil
}

func (e *Executor) execDropDatabase(ctx context.Context, sess *Session, cmd *parser.DropCmd) (*Result, error) {
	if err := e.store.DropDatabase(cmd.Name); err != nil {
		var de *dberr.Error
		if errors.As(err, &de) && de.Kind == dberr.IOFailure {
			e.log.WarnContext(ctx, "executor: database left partially deleted", "db", cmd.Name, "err", err)
		}
		return nil, err
	}
	sess.switchTo(cmd.Name)
	return &Result{}, nil
}

func (e *Executor) execCreateTable(sess *Session, cmd *parser.CreateCmd) (*Result, error) {
	db, err := current(sess)
	if err != nil {
		return nil, err
	}

	t := table.New(cmd.Name)
	for _, attr := range cmd.Attributes {
		// the id column is always created; naming it again is allowed
		if isID(attr) {
			continue
		}
		if err := t.AddColumn(attr); err != nil {
			return nil, err
		}
	}
	if err := e.store.CreateTable(db, t); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

func (e *Executor) execDropTable(sess *Session, cmd *parser.DropCmd) (*Result, error) {
	db, err := current(sess)
	if err != nil {
		return nil, err
	}
	if err := e.store.DropTable(db, cmd.Name); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

// load returns a fresh snapshot of a table in the selected database.
func (e *Executor) load(sess *Session, name string) (string, *table.Table, error) {
	db, err := current(sess)
	if err != nil {
		return "", nil, err
	}
	t, err := e.store.LoadTable(db, name)
	if err != nil {
		return "", nil, err
	}
	return db, t, nil
}

func (e *Executor) execAlter(sess *Session, cmd *parser.AlterCmd) (*Result, error) {
	if isID(cmd.Attribute) {
		return nil, dberr.ForbiddenID()
	}
	db, t, err := e.load(sess, cmd.Table)
	if err != nil {
		return nil, err
	}

	switch cmd.Kind {
	case parser.AlterAdd:
		err = t.AddColumn(cmd.Attribute)
	case parser.AlterDrop:
		err = t.DropColumn(cmd.Attribute)
	}
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveTable(db, t); err != nil {
		return nil, err
	}
	return &Result{}, nil
}

func cellOf(tok parser.Token) table.Cell {
	if tok.Kind == parser.KindNull {
		return table.Null
	}
	return table.Text(tok.Value)
}

func (e *Executor) execInsert(sess *Session, cmd *parser.InsertCmd) (*Result, error) {
	db, t, err := e.load(sess, cmd.Table)
	if err != nil {
		return nil, err
	}

	values := make([]table.Cell, len(cmd.Values))
	for i, v := range cmd.Values {
		values[i] = cellOf(v)
	}
	if err := t.InsertRow(values); err != nil {
		return nil, err
	}
	if err := e.store.SaveTable(db, t); err != nil {
		return nil, err
	}
	return &Result{AffectedRows: 1}, nil
}

func (e *Executor) execSelect(sess *Session, cmd *parser.SelectCmd) (*Result, error) {
	_, t, err := e.load(sess, cmd.Table)
	if err != nil {
		return nil, err
	}

	if cmd.Where != nil {
		if err := t.FilterTable(cmd.Where); err != nil {
			return nil, err
		}
	}

	if !cmd.Wildcard {
		// unknown columns are skipped; only an all-unknown list fails
		var indices []int
		for _, attr := range cmd.Attributes {
			if i, err := t.ColumnIndex(attr); err == nil {
				indices = append(indices, i)
			}
		}
		if len(indices) == 0 {
			return nil, dberr.New(dberr.ColumnNotFound, "None of the selected columns exist in this table.")
		}
		t.FilterColumnsByIndex(indices)
	}

	res := resultFromTable(t)
	res.AffectedRows = int64(len(res.Rows))
	return res, nil
}

func (e *Executor) execUpdate(sess *Session, cmd *parser.UpdateCmd) (*Result, error) {
	for _, a := range cmd.Assignments {
		if isID(a.Column) {
			return nil, dberr.ForbiddenID()
		}
	}
	db, t, err := e.load(sess, cmd.Table)
	if err != nil {
		return nil, err
	}

	ids, err := t.FilterRows(cmd.Where)
	if err != nil {
		return nil, err
	}
	for _, a := range cmd.Assignments {
		col, err := t.ColumnIndex(a.Column)
		if err != nil {
			return nil, dberr.New(dberr.ColumnNotFound, "Column name %s does not exist within this table", a.Column)
		}
		if err := t.Set(ids, col, cellOf(a.Value)); err != nil {
			return nil, err
		}
	}
	if err := e.store.SaveTable(db, t); err != nil {
		return nil, err
	}
	return &Result{AffectedRows: int64(len(ids))}, nil
}

func (e *Executor) execDelete(sess *Session, cmd *parser.DeleteCmd) (*Result, error) {
	db, t, err := e.load(sess, cmd.Table)
	if err != nil {
		return nil, err
	}

	ids, err := t.FilterRows(cmd.Where)
	if err != nil {
		return nil, err
	}
	n, err := t.Delete(ids)
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveTable(db, t); err != nil {
		return nil, err
	}
	return &Result{AffectedRows: int64(n)}, nil
}

func (e *Executor) execJoin(sess *Session, cmd *parser.JoinCmd) (*Result, error) {
	_, left, err := e.load(sess, cmd.Left)
	if err != nil {
		return nil, err
	}
	_, right, err := e.load(sess, cmd.Right)
	if err != nil {
		return nil, err
	}

	joined, err := left.Join(right, cmd.LeftAttr, cmd.RightAttr)
	if err != nil {
		return nil, err
	}
	res := resultFromTable(joined)
	res.AffectedRows = int64(len(res.Rows))
	return res, nil
}
