package parser

import (
	"strings"

	"github.com/tuannm99/tabdb/internal/dberr"
)

const minTokens = 3

var structural = strings.NewReplacer("(", " ( ", ")", " ) ", ",", " , ", ";", " ; ")

// Tokenize splits a query into classified tokens. Text between single quotes
// is kept as one string literal; everything else is split on whitespace after
// padding the structural symbols ( ) , ;.
func Tokenize(query string) ([]Token, error) {
	parts := strings.Split(query, "'")
	var toks []Token
	for i, part := range parts {
		if i%2 == 1 {
			toks = append(toks, NewToken("'"+part+"'"))
			continue
		}
		for _, lex := range strings.Fields(structural.Replace(part)) {
			toks = append(toks, NewToken(lex))
		}
	}

	if len(toks) < minTokens {
		return nil, dberr.New(dberr.MalformedQuery, "Query is malformed. A query must contain at least %d tokens.", minTokens)
	}
	if !toks[len(toks)-1].isSymbol(";") {
		return nil, dberr.New(dberr.MalformedQuery, "Query is malformed. Queries must end with ';'.")
	}
	return toks, nil
}
