package table

import (
	"strconv"

	"golang.org/x/text/cases"

	"github.com/tuannm99/tabdb/internal/dberr"
)

// Join returns the inner join of t and other on t.col1 == other.col2,
// compared case-insensitively. Every matching row pair yields one row.
//
// Columns of both sides are prefixed with their table name; the join columns
// and both original id columns are dropped, and the result gets a fresh id
// column numbered 1..N. Neither input is modified.
func (t *Table) Join(other *Table, col1, col2 string) (*Table, error) {
	i1, err := joinColumn(t, col1)
	if err != nil {
		return nil, err
	}
	i2, err := joinColumn(other, col2)
	if err != nil {
		return nil, err
	}

	type pair struct{ left, right int }
	fold := cases.Fold()
	var matches []pair
	for l, lrow := range t.Rows {
		if !lrow[i1].Valid {
			continue
		}
		key := fold.String(lrow[i1].Value)
		for r, rrow := range other.Rows {
			if rrow[i2].Valid && fold.String(rrow[i2].Value) == key {
				matches = append(matches, pair{l, r})
			}
		}
	}

	left, err := prepareJoinSide(t, col1)
	if err != nil {
		return nil, err
	}
	right, err := prepareJoinSide(other, col2)
	if err != nil {
		return nil, err
	}

	out := &Table{
		Name:    t.Name + "." + other.Name,
		Headers: make([]string, 0, 1+len(left.Headers)+len(right.Headers)),
		Rows:    make([]Row, 0, len(matches)),
	}
	out.Headers = append(out.Headers, IDColumn)
	out.Headers = append(out.Headers, left.Headers...)
	out.Headers = append(out.Headers, right.Headers...)

	for n, m := range matches {
		row := make(Row, 0, len(out.Headers))
		row = append(row, Text(strconv.Itoa(n+1)))
		row = append(row, left.Rows[m.left]...)
		row = append(row, right.Rows[m.right]...)
		out.Rows = append(out.Rows, row)
	}
	out.IDCounter = int64(len(matches)) + 1
	return out, nil
}

func joinColumn(t *Table, name string) (int, error) {
	i := t.lookup(name)
	if i < 0 {
		return -1, dberr.New(dberr.ColumnNotFound,
			"Something went wrong while joining. The joining column %s does not exist in the table.", name)
	}
	return i, nil
}

// prepareJoinSide clones t, prefixes every column with the table name and
// drops the join column and the id column.
func prepareJoinSide(t *Table, joinCol string) (*Table, error) {
	c := t.Clone()
	for _, h := range t.Headers {
		if err := c.EditColumnName(h, t.Name+"."+h); err != nil {
			return nil, err
		}
	}

	idCol := t.Name + "." + IDColumn
	if !c.HasColumn(idCol) {
		return nil, dberr.New(dberr.ColumnNotFound, "An id column was not found in one of the tables.")
	}
	joined := t.Name + "." + joinCol
	if err := c.DropColumn(joined); err != nil {
		return nil, err
	}
	if !c.HasColumn(idCol) {
		return c, nil
	}
	if err := c.DropColumn(idCol); err != nil {
		return nil, err
	}
	return c, nil
}
