package parser

import "strings"

// normalize lowercases the token values of a statement in place. Keywords and
// names are case-insensitive; column names given at creation time and user
// data keep their case.
func normalize(toks []Token) {
	keep := func(int) bool { return false }

	switch strings.ToLower(toks[0].Value) {
	case "alter":
		attr := len(toks) - 2
		keep = func(i int) bool { return i == attr }
	case "create":
		if len(toks) > 3 {
			keep = func(i int) bool { return i > 2 }
		}
	case "insert":
		keep = func(i int) bool { return i > 3 }
	case "update":
		keep = func(i int) bool { return i > 2 && toks[i-1].isSymbol("=") }
	}

	for i := range toks {
		if !keep(i) {
			toks[i].Value = strings.ToLower(toks[i].Value)
		}
	}
}
