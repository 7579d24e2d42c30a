package table

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/tuannm99/tabdb/internal/dberr"
	"github.com/tuannm99/tabdb/internal/sql/parser"
)

// nullText is what a null cell compares as.
const nullText = "null"

// evaluator tests rows of one table against a condition tree. It is built
// per filter call: cases.Caser is not safe for concurrent use.
type evaluator struct {
	t        *Table
	fold     cases.Caser
	patterns map[string]*regexp.Regexp
}

func newEvaluator(t *Table) *evaluator {
	return &evaluator{t: t, fold: cases.Fold(), patterns: map[string]*regexp.Regexp{}}
}

func (e *evaluator) match(c parser.Condition, row Row) (bool, error) {
	switch c := c.(type) {
	case *parser.Terminal:
		return e.terminal(c, row)

	case *parser.Binary:
		left, err := e.match(c.Left, row)
		if err != nil {
			return false, err
		}
		right, err := e.match(c.Right, row)
		if err != nil {
			return false, err
		}
		if c.Op == parser.And {
			return left && right, nil
		}
		return left || right, nil

	default:
		return false, dberr.BadCondition()
	}
}

func (e *evaluator) terminal(c *parser.Terminal, row Row) (bool, error) {
	col, err := e.t.ColumnIndex(c.Attribute)
	if err != nil {
		return false, err
	}
	stored := nullText
	if row[col].Valid {
		stored = e.fold.String(row[col].Value)
	}

	if c.Comparator == parser.Like {
		re, err := e.pattern(c.Value)
		if err != nil {
			return false, err
		}
		return re.MatchString(stored), nil
	}

	a, aNum := asInt(stored)
	b, bNum := asInt(c.Value)
	switch {
	case aNum && bNum:
		return compareInts(a, c.Comparator, b), nil
	case aNum || bNum:
		return false, nil
	}
	return compareStrings(stored, c.Comparator, e.fold.String(c.Value)), nil
}

func (e *evaluator) pattern(expr string) (*regexp.Regexp, error) {
	if re, ok := e.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, dberr.Wrap(dberr.MalformedCondition, err, "Malformed condition. Invalid LIKE pattern %s", expr)
	}
	e.patterns[expr] = re
	return re, nil
}

func asInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func compareInts(a int64, cmp parser.Comparator, b int64) bool {
	switch cmp {
	case parser.Eq:
		return a == b
	case parser.Ne:
		return a != b
	case parser.Gt:
		return a > b
	case parser.Lt:
		return a < b
	case parser.Ge:
		return a >= b
	case parser.Le:
		return a <= b
	}
	return false
}

func compareStrings(a string, cmp parser.Comparator, b string) bool {
	switch cmp {
	case parser.Eq:
		return a == b
	case parser.Ne:
		return a != b
	}
	c := strings.Compare(a, b)
	switch cmp {
	case parser.Gt:
		return c > 0
	case parser.Lt:
		return c < 0
	case parser.Ge:
		return c >= 0
	case parser.Le:
		return c <= 0
	}
	return false
}
