package storage

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/tuannm99/tabdb/internal/table"
)

const sep = "\t"

// EncodeTable writes the header line followed by one line per row. Null
// cells are written as empty strings; tabs and newlines are not escaped.
func EncodeTable(w io.Writer, t *table.Table) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(t.Headers, sep) + "\n"); err != nil {
		return err
	}
	cells := make([]string, 0, len(t.Headers))
	for _, row := range t.Rows {
		cells = cells[:0]
		for _, c := range row {
			cells = append(cells, c.String())
		}
		if _, err := bw.WriteString(strings.Join(cells, sep) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeTable reads a table file. Short rows are padded with nulls; rows
// longer than the header are rejected.
func DecodeTable(name string, r io.Reader) (*table.Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	t := &table.Table{Name: name}
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if line == 1 {
			t.Headers = strings.Split(text, sep)
			continue
		}
		if text == "" {
			continue
		}
		fields := strings.Split(text, sep)
		if len(fields) > len(t.Headers) {
			return nil, fmt.Errorf("table %s line %d: %d cells for %d columns", name, line, len(fields), len(t.Headers))
		}
		row := make(table.Row, len(t.Headers))
		for i, f := range fields {
			row[i] = table.Text(f)
		}
		t.Rows = append(t.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if line == 0 {
		return nil, fmt.Errorf("table %s: missing header line", name)
	}
	return t, nil
}

// EncodeMetadata writes one "<table>\t<nextId>" line per table, sorted by
// name.
func EncodeMetadata(w io.Writer, meta map[string]int64) error {
	names := make([]string, 0, len(meta))
	for n := range meta {
		names = append(names, n)
	}
	slices.Sort(names)

	bw := bufio.NewWriter(w)
	for _, n := range names {
		if _, err := fmt.Fprintf(bw, "%s%s%d\n", n, sep, meta[n]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func DecodeMetadata(r io.Reader) (map[string]int64, error) {
	meta := map[string]int64{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		name, counter, ok := strings.Cut(text, sep)
		if !ok {
			return nil, fmt.Errorf("metadata line %d: missing id counter", line)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(counter), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("metadata line %d: %w", line, err)
		}
		meta[strings.ToLower(name)] = n
	}
	return meta, sc.Err()
}
