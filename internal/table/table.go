// Package table holds the in-memory model of one table: ordered headers,
// rows of nullable text cells and the auto-increment id counter. It is
// loaded from and flushed to disk by the storage package for every command.
package table

import (
	"slices"
	"strconv"
	"strings"

	"github.com/tuannm99/tabdb/internal/dberr"
)

// IDColumn is the first column of every table. Its values are assigned by
// InsertRow and never written by users.
const IDColumn = "id"

// Cell is a nullable text value.
type Cell struct {
	Value string
	Valid bool
}

// Null is the empty cell.
var Null = Cell{}

// Text returns a cell holding s. An empty s is null: the file format cannot
// tell them apart.
func Text(s string) Cell {
	if s == "" {
		return Null
	}
	return Cell{Value: s, Valid: true}
}

// String renders the cell; null renders as "".
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Value
}

type Row []Cell

// Table is one table snapshot.
type Table struct {
	Name      string
	Headers   []string
	Rows      []Row
	IDCounter int64
}

// New returns an empty table with only the id column.
func New(name string) *Table {
	return &Table{Name: name, Headers: []string{IDColumn}, IDCounter: 1}
}

func (t *Table) ColumnCount() int { return len(t.Headers) }

func (t *Table) RowCount() int { return len(t.Rows) }

// ColumnIndex resolves a column name case-insensitively.
func (t *Table) ColumnIndex(name string) (int, error) {
	if i := t.lookup(name); i >= 0 {
		return i, nil
	}
	return -1, dberr.New(dberr.ColumnNotFound, "Column %s does not exist in this table.", name)
}

func (t *Table) HasColumn(name string) bool { return t.lookup(name) >= 0 }

func (t *Table) lookup(name string) int {
	return slices.IndexFunc(t.Headers, func(h string) bool { return strings.EqualFold(h, name) })
}

// AddColumn appends a column and backfills existing rows with null.
func (t *Table) AddColumn(name string) error {
	if t.HasColumn(name) {
		return dberr.New(dberr.AlreadyExists, "Column %s already exists in this table.", name)
	}
	t.Headers = append(t.Headers, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], Null)
	}
	return nil
}

// DropColumn removes a column and its cell from every row. Refusing to drop
// the id column is left to the caller.
func (t *Table) DropColumn(name string) error {
	idx := t.lookup(name)
	if idx < 0 {
		return dberr.New(dberr.ColumnNotFound, "This column does not exist in this table.")
	}
	t.Headers = slices.Delete(t.Headers, idx, idx+1)
	for i, row := range t.Rows {
		t.Rows[i] = slices.Delete(row, idx, idx+1)
	}
	return nil
}

// EditColumnName renames a column, matching oldName case-insensitively.
func (t *Table) EditColumnName(oldName, newName string) error {
	idx := t.lookup(oldName)
	if idx < 0 {
		return dberr.New(dberr.ColumnNotFound, "Column %s does not exist in this table.", oldName)
	}
	t.Headers[idx] = newName
	return nil
}

// InsertRow appends a row holding values in the non-id columns, in order. The
// row gets the current id counter, which is then advanced.
func (t *Table) InsertRow(values []Cell) error {
	if len(values) != t.ColumnCount()-1 {
		return dberr.New(dberr.MalformedQuery,
			"The number of columns in the table does not match the number of values to be entered into the table.")
	}
	idIdx, err := t.idIndex()
	if err != nil {
		return err
	}

	row := make(Row, 0, t.ColumnCount())
	row = append(row, values[:idIdx]...)
	row = append(row, Text(strconv.FormatInt(t.IDCounter, 10)))
	row = append(row, values[idIdx:]...)
	t.Rows = append(t.Rows, row)
	t.IDCounter++
	return nil
}

// FilterColumnsByIndex projects headers and rows onto the given column
// indices, in the given order.
func (t *Table) FilterColumnsByIndex(indices []int) {
	headers := make([]string, len(indices))
	for i, idx := range indices {
		headers[i] = t.Headers[idx]
	}
	for r, row := range t.Rows {
		out := make(Row, len(indices))
		for i, idx := range indices {
			out[i] = row[idx]
		}
		t.Rows[r] = out
	}
	t.Headers = headers
}

// Set writes value into column col of every row whose id is in ids.
func (t *Table) Set(ids []string, col int, value Cell) error {
	idIdx, err := t.idIndex()
	if err != nil {
		return err
	}
	for _, row := range t.Rows {
		if slices.Contains(ids, row[idIdx].Value) {
			row[col] = value
		}
	}
	return nil
}

// Delete removes every row whose id is in ids and returns how many went.
func (t *Table) Delete(ids []string) (int, error) {
	idIdx, err := t.idIndex()
	if err != nil {
		return 0, err
	}
	before := len(t.Rows)
	t.Rows = slices.DeleteFunc(t.Rows, func(row Row) bool {
		return slices.Contains(ids, row[idIdx].Value)
	})
	return before - len(t.Rows), nil
}

// MaxID returns the largest numeric id stored in the table, or 0.
func (t *Table) MaxID() int64 {
	idIdx := t.lookup(IDColumn)
	if idIdx < 0 {
		return 0
	}
	var top int64
	for _, row := range t.Rows {
		if n, err := strconv.ParseInt(row[idIdx].Value, 10, 64); err == nil && n > top {
			top = n
		}
	}
	return top
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{
		Name:      t.Name,
		Headers:   slices.Clone(t.Headers),
		Rows:      make([]Row, len(t.Rows)),
		IDCounter: t.IDCounter,
	}
	for i, row := range t.Rows {
		c.Rows[i] = slices.Clone(row)
	}
	return c
}

func (t *Table) idIndex() (int, error) {
	if i := t.lookup(IDColumn); i >= 0 {
		return i, nil
	}
	return -1, dberr.New(dberr.ColumnNotFound, "An id column was not found in table %s.", t.Name)
}
