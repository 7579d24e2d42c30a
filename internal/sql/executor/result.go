package executor

import (
	"strings"

	"github.com/tuannm99/tabdb/internal/table"
)

const okTag = "[OK]"

// Result is the generic query result returned to the caller.
type Result struct {
	Columns []string
	Rows    [][]string

	// For DML:
	AffectedRows int64
}

func resultFromTable(t *table.Table) *Result {
	res := &Result{
		Columns: append([]string(nil), t.Headers...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = c.String()
		}
		res.Rows[i] = cells
	}
	return res
}

// Render formats the result for the response protocol: "[OK]" alone, or
// followed by the header line and one line per row, cells tab-separated.
func (r *Result) Render() string {
	if r == nil || r.Columns == nil {
		return okTag
	}
	var b strings.Builder
	b.WriteString(okTag)
	b.WriteByte('\n')
	b.WriteString(strings.Join(r.Columns, "\t"))
	b.WriteByte('\n')
	for _, row := range r.Rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
