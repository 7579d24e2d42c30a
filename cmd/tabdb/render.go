package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// statementComplete reports whether buf holds a ';' outside single quotes.
func statementComplete(buf string) bool {
	inQuote := false
	for _, r := range buf {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return true
		}
	}
	return false
}

// printResponse writes a server response. Tables are drawn with aligned
// columns; raw prints the response as received.
func printResponse(w io.Writer, resp string, raw bool) {
	body, ok := strings.CutPrefix(resp, "[OK]\n")
	if raw || !ok {
		fmt.Fprintln(w, strings.TrimRight(resp, "\n"))
		return
	}

	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	rows := make([][]string, len(lines))
	var widths []int
	for i, line := range lines {
		rows[i] = strings.Split(line, "\t")
		for j, cell := range rows[i] {
			if j >= len(widths) {
				widths = append(widths, 0)
			}
			widths[j] = max(widths[j], utf8.RuneCountInString(cell))
		}
	}

	printRow := func(cells []string) {
		for j, cell := range cells {
			if j > 0 {
				fmt.Fprint(w, " | ")
			}
			fmt.Fprint(w, padRight(cell, widths[j]))
		}
		fmt.Fprintln(w)
	}

	printRow(rows[0])
	for j, wd := range widths {
		if j > 0 {
			fmt.Fprint(w, "-+-")
		}
		fmt.Fprint(w, strings.Repeat("-", wd))
	}
	fmt.Fprintln(w)
	for _, r := range rows[1:] {
		printRow(r)
	}
	fmt.Fprintf(w, "(%d rows)\n", len(rows)-1)
}

func padRight(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
