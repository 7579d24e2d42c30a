package table

import (
	"github.com/tuannm99/tabdb/internal/dberr"
	"github.com/tuannm99/tabdb/internal/sql/parser"
)

func (t *Table) matchingRows(cond parser.Condition) ([]Row, error) {
	ev := newEvaluator(t)
	var out []Row
	for _, row := range t.Rows {
		ok, err := ev.match(cond, row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// FilterRows returns the ids of the rows matching cond. Matching nothing is
// an error: UPDATE and DELETE treat it as a failed command.
func (t *Table) FilterRows(cond parser.Condition) ([]string, error) {
	idIdx, err := t.idIndex()
	if err != nil {
		return nil, err
	}
	rows, err := t.matchingRows(cond)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, dberr.NoRows()
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row[idIdx].Value
	}
	return ids, nil
}

// FilterTable keeps only the rows matching cond. An empty result is fine.
func (t *Table) FilterTable(cond parser.Condition) error {
	rows, err := t.matchingRows(cond)
	if err != nil {
		return err
	}
	t.Rows = rows
	return nil
}
