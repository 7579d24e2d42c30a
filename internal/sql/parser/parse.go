package parser

import (
	"strings"

	"github.com/tuannm99/tabdb/internal/dberr"
)

// Parse tokenizes and parses a single statement. The statement must end with
// ';'. Either a fully populated Command or an error is returned.
func Parse(sql string) (Command, error) {
	toks, err := Tokenize(sql)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses an already tokenized statement. toks is normalized in
// place.
func ParseTokens(toks []Token) (Command, error) {
	if len(toks) == 0 {
		return nil, dberr.Malformed()
	}
	if toks[0].Kind != KindKeyword {
		return nil, dberr.BadKeyword(toks[0].Value)
	}
	normalize(toks)

	switch toks[0].Value {
	case "use":
		return parseUse(toks)
	case "create":
		return parseCreate(toks)
	case "drop":
		return parseDrop(toks)
	case "alter":
		return parseAlter(toks)
	case "insert":
		return parseInsert(toks)
	case "select":
		return parseSelect(toks)
	case "update":
		return parseUpdate(toks)
	case "delete":
		return parseDelete(toks)
	case "join":
		return parseJoin(toks)
	default:
		return nil, dberr.New(dberr.InvalidKeyword, "Invalid type of command %s. Please input a valid query.", strings.ToUpper(toks[0].Value))
	}
}

// ident returns the identifier at toks[i].
func ident(toks []Token, i int) (string, error) {
	if i >= len(toks) {
		return "", dberr.Malformed()
	}
	if !toks[i].isIdentifier() {
		return "", dberr.BadIdentifier(toks[i].Value)
	}
	return toks[i].Value, nil
}

// expect checks that toks[i] carries the given value.
func expect(toks []Token, i int, value string) error {
	if i >= len(toks) || !toks[i].is(value) {
		return dberr.Malformed()
	}
	return nil
}

func expectLen(toks []Token, n int) error {
	if len(toks) != n {
		return dberr.Malformed()
	}
	return nil
}

// findKeyword returns the index of the first keyword token with the given
// value, or -1.
func findKeyword(toks []Token, value string) int {
	for i, t := range toks {
		if t.Kind == KindKeyword && t.Value == value {
			return i
		}
	}
	return -1
}

// splitList splits toks on top-level ',' symbols. An empty element or a
// trailing comma is malformed.
func splitList(toks []Token) ([][]Token, error) {
	if len(toks) == 0 {
		return nil, dberr.Malformed()
	}
	var out [][]Token
	start := 0
	for i, t := range toks {
		if !t.isSymbol(",") {
			continue
		}
		if i == start {
			return nil, dberr.Malformed()
		}
		out = append(out, toks[start:i])
		start = i + 1
	}
	if start == len(toks) {
		return nil, dberr.Malformed()
	}
	return append(out, toks[start:]), nil
}

// identList parses "a, b, c".
func identList(toks []Token) ([]string, error) {
	items, err := splitList(toks)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		if len(item) != 1 {
			return nil, dberr.Malformed()
		}
		name, err := ident(item, 0)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// USE db;
func parseUse(toks []Token) (Command, error) {
	if err := expectLen(toks, 3); err != nil {
		return nil, err
	}
	name, err := ident(toks, 1)
	if err != nil {
		return nil, err
	}
	return &UseCmd{Database: name}, nil
}

// CREATE DATABASE db;  |  CREATE TABLE t [(a, b)];
func parseCreate(toks []Token) (Command, error) {
	if len(toks) < 4 || toks[1].Kind != KindKeyword {
		return nil, dberr.Malformed()
	}
	name, err := ident(toks, 2)
	if err != nil {
		return nil, err
	}

	switch toks[1].Value {
	case "database":
		if err := expectLen(toks, 4); err != nil {
			return nil, err
		}
		return &CreateCmd{Target: TargetDatabase, Name: name}, nil

	case "table":
		cmd := &CreateCmd{Target: TargetTable, Name: name}
		if toks[3].isSymbol(";") {
			return cmd, nil
		}
		last := len(toks) - 2
		if !toks[3].isSymbol("(") || last <= 3 || !toks[last].isSymbol(")") {
			return nil, dberr.Malformed()
		}
		attrs, err := identList(toks[4:last])
		if err != nil {
			return nil, err
		}
		cmd.Attributes = attrs
		return cmd, nil

	default:
		return nil, dberr.Malformedf("The second word of a CREATE query should be either DATABASE or TABLE.")
	}
}

// DROP DATABASE db;  |  DROP TABLE t;
func parseDrop(toks []Token) (Command, error) {
	if err := expectLen(toks, 4); err != nil {
		return nil, err
	}
	name, err := ident(toks, 2)
	if err != nil {
		return nil, err
	}

	switch toks[1].Value {
	case "database":
		return &DropCmd{Target: TargetDatabase, Name: name}, nil
	case "table":
		return &DropCmd{Target: TargetTable, Name: name}, nil
	default:
		return nil, dberr.Malformedf("The second word of a DROP query should be either DATABASE or TABLE, but you input %s", toks[1].Value)
	}
}

// ALTER TABLE t ADD|DROP attr;
func parseAlter(toks []Token) (Command, error) {
	if err := expectLen(toks, 6); err != nil {
		return nil, err
	}
	if toks[1].Kind != KindKeyword {
		return nil, dberr.Malformed()
	}
	if err := expect(toks, 1, "table"); err != nil {
		return nil, err
	}
	table, err := ident(toks, 2)
	if err != nil {
		return nil, err
	}
	attr, err := ident(toks, 4)
	if err != nil {
		return nil, err
	}

	var kind AlterKind
	switch toks[3].Value {
	case "add":
		kind = AlterAdd
	case "drop":
		kind = AlterDrop
	default:
		return nil, dberr.Malformedf("The third word of an ALTER query should be either ADD or DROP, but you input %s", toks[3].Value)
	}
	return &AlterCmd{Table: table, Kind: kind, Attribute: attr}, nil
}

// INSERT INTO t VALUES (v1, v2);
func parseInsert(toks []Token) (Command, error) {
	last := len(toks) - 2
	if len(toks) < 8 {
		return nil, dberr.Malformed()
	}
	for _, c := range []struct {
		i int
		v string
	}{{1, "into"}, {3, "values"}, {4, "("}, {last, ")"}} {
		if err := expect(toks, c.i, c.v); err != nil {
			return nil, err
		}
	}
	table, err := ident(toks, 2)
	if err != nil {
		return nil, err
	}

	items, err := splitList(toks[5:last])
	if err != nil {
		return nil, err
	}
	values := make([]Token, 0, len(items))
	for _, item := range items {
		if len(item) != 1 || item[0].Kind == KindSymbol {
			return nil, dberr.Malformed()
		}
		values = append(values, item[0])
	}
	return &InsertCmd{Table: table, Values: values}, nil
}

// SELECT * | a, b FROM t [WHERE cond];
func parseSelect(toks []Token) (Command, error) {
	from := findKeyword(toks, "from")
	if from == -1 {
		return nil, dberr.Malformed()
	}
	if from == 1 {
		return nil, dberr.Malformedf("No columns were selected. Please select * or a list of columns.")
	}
	table, err := ident(toks, from+1)
	if err != nil {
		return nil, err
	}
	cmd := &SelectCmd{Table: table}

	if attrs := toks[1:from]; len(attrs) == 1 && attrs[0].isSymbol("*") {
		cmd.Wildcard = true
	} else if cmd.Attributes, err = identList(attrs); err != nil {
		return nil, err
	}

	rest := toks[from+2:]
	switch {
	case len(rest) == 1:
		return cmd, nil
	case len(rest) > 1 && rest[0].Kind == KindKeyword && rest[0].is("where"):
		if cmd.Where, err = ParseCondition(rest[1 : len(rest)-1]); err != nil {
			return nil, err
		}
		return cmd, nil
	default:
		return nil, dberr.Malformed()
	}
}

// UPDATE t SET a = v, b = w WHERE cond;
func parseUpdate(toks []Token) (Command, error) {
	table, err := ident(toks, 1)
	if err != nil {
		return nil, err
	}
	if err := expect(toks, 2, "set"); err != nil {
		return nil, err
	}
	where := findKeyword(toks, "where")
	if where <= 3 {
		return nil, dberr.Malformed()
	}

	pairs, err := splitList(toks[3:where])
	if err != nil {
		return nil, err
	}
	cmd := &UpdateCmd{Table: table, Assignments: make([]Assignment, 0, len(pairs))}
	for _, pair := range pairs {
		a, err := parseAssignment(pair)
		if err != nil {
			return nil, err
		}
		cmd.Assignments = append(cmd.Assignments, a)
	}

	if cmd.Where, err = ParseCondition(toks[where+1 : len(toks)-1]); err != nil {
		return nil, err
	}
	return cmd, nil
}

// parseAssignment parses "name = value".
func parseAssignment(pair []Token) (Assignment, error) {
	if len(pair) < 3 {
		return Assignment{}, dberr.New(dberr.MalformedQuery, "Malformed name value pair.")
	}
	if len(pair) != 3 || !pair[1].isSymbol("=") || !pair[2].isValue() {
		return Assignment{}, dberr.Malformed()
	}
	col, err := ident(pair, 0)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{Column: col, Value: pair[2]}, nil
}

// DELETE FROM t WHERE cond;
func parseDelete(toks []Token) (Command, error) {
	if len(toks) < 5 {
		return nil, dberr.Malformed()
	}
	if err := expect(toks, 1, "from"); err != nil {
		return nil, err
	}
	if err := expect(toks, 3, "where"); err != nil {
		return nil, err
	}
	table, err := ident(toks, 2)
	if err != nil {
		return nil, err
	}
	where, err := ParseCondition(toks[4 : len(toks)-1])
	if err != nil {
		return nil, err
	}
	return &DeleteCmd{Table: table, Where: where}, nil
}

// JOIN t1 AND t2 ON a1 AND a2;
func parseJoin(toks []Token) (Command, error) {
	if err := expectLen(toks, 9); err != nil {
		return nil, err
	}
	for _, c := range []struct {
		i int
		v string
	}{{2, "and"}, {4, "on"}, {6, "and"}} {
		if err := expect(toks, c.i, c.v); err != nil {
			return nil, err
		}
	}

	var names [4]string
	for n, i := range []int{1, 3, 5, 7} {
		name, err := ident(toks, i)
		if err != nil {
			return nil, err
		}
		names[n] = name
	}
	return &JoinCmd{Left: names[0], Right: names[1], LeftAttr: names[2], RightAttr: names[3]}, nil
}
