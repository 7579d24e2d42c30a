package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the lexical class of a token.
type Kind uint8

const (
	KindKeyword Kind = iota
	KindAlterationType
	KindSymbol
	KindBooleanOperator
	KindComparator
	KindIntegerLiteral
	KindFloatLiteral
	KindBooleanLiteral
	KindCharLiteral
	KindStringLiteral
	KindNull
	KindPlainText
)

var kindNames = [...]string{
	KindKeyword:         "keyword",
	KindAlterationType:  "alteration type",
	KindSymbol:          "symbol",
	KindBooleanOperator: "boolean operator",
	KindComparator:      "comparator",
	KindIntegerLiteral:  "integer literal",
	KindFloatLiteral:    "float literal",
	KindBooleanLiteral:  "boolean literal",
	KindCharLiteral:     "char literal",
	KindStringLiteral:   "string literal",
	KindNull:            "null",
	KindPlainText:       "plain text",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is a classified lexeme. Value has the enclosing quotes of a string
// literal removed.
type Token struct {
	Kind  Kind
	Value string
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var (
	keywords = set("use", "create", "drop", "alter", "insert", "select", "update", "delete", "join",
		"database", "table", "into", "values", "from", "where", "set", "on")
	alterationTypes  = set("add", "drop")
	symbols          = set("!", "#", "$", "%", "&", "(", ")", "*", "+", ",", "-", ".", "/", ":", ";", ">", "=", "<", "?", "@", "[", "\\", "]", "^", "_", "`", "{", "}", "~")
	booleanOperators = set("and", "or")
	comparators      = set("==", ">", "<", ">=", "<=", "!=", "like")
	booleanLiterals  = set("true", "false")

	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatPattern   = regexp.MustCompile(`^[+-]?[0-9]+\.[0-9]+$`)
)

func in(m map[string]struct{}, s string) bool {
	_, ok := m[s]
	return ok
}

// Classify returns the kind of a raw lexeme. Matching is case-insensitive and
// follows a fixed precedence: the first matching class wins.
func Classify(lexeme string) Kind {
	l := strings.ToLower(lexeme)
	switch {
	case in(keywords, l):
		return KindKeyword
	case in(alterationTypes, l):
		return KindAlterationType
	case in(symbols, l):
		return KindSymbol
	case in(booleanOperators, l):
		return KindBooleanOperator
	case in(comparators, l):
		return KindComparator
	case floatPattern.MatchString(l):
		return KindFloatLiteral
	case integerPattern.MatchString(l):
		return KindIntegerLiteral
	case in(booleanLiterals, l):
		return KindBooleanLiteral
	case isCharLiteral(l):
		return KindCharLiteral
	case isQuoted(l):
		return KindStringLiteral
	case l == "null":
		return KindNull
	default:
		return KindPlainText
	}
}

func isCharLiteral(s string) bool {
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r) || unicode.IsSpace(r)
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\''
}

// NewToken classifies lexeme and builds its token.
func NewToken(lexeme string) Token {
	k := Classify(lexeme)
	v := lexeme
	if k == KindStringLiteral {
		v = lexeme[1 : len(lexeme)-1]
	}
	return Token{Kind: k, Value: v}
}

func (t Token) is(value string) bool { return t.Value == value }

func (t Token) isSymbol(value string) bool {
	return t.Kind == KindSymbol && t.Value == value
}

// isIdentifier reports whether t can name a database, table or column.
// One-letter names classify as char literals and are accepted.
func (t Token) isIdentifier() bool {
	switch t.Kind {
	case KindStringLiteral, KindPlainText, KindCharLiteral, KindNull:
	default:
		return false
	}
	if t.Value == "" {
		return false
	}
	for _, r := range t.Value {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// isValue reports whether t can be assigned to a cell in UPDATE.
func (t Token) isValue() bool {
	switch t.Kind {
	case KindStringLiteral, KindBooleanLiteral, KindFloatLiteral, KindIntegerLiteral, KindNull:
		return true
	}
	return false
}
