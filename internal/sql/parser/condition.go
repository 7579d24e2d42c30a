package parser

import (
	"strings"

	"github.com/tuannm99/tabdb/internal/dberr"
)

// embedded comparators, longest first so ">=" is not read as ">".
var embeddedComparators = []string{"==", ">=", "<=", "!=", ">", "<"}

// ParseCondition builds a condition tree from the tokens following WHERE
// (without the trailing ';').
//
// The split point of a span is the first AND/OR at the shallowest bracket
// depth inside it, so operators within a bracket pair bind tighter than
// those outside. Brackets are dropped once a span has no operator left.
func ParseCondition(toks []Token) (Condition, error) {
	toks = splitComparators(toks)
	if len(toks) == 0 {
		return nil, dberr.BadCondition()
	}

	depth := make([]int, len(toks))
	d := 0
	for i, t := range toks {
		if t.isSymbol(")") {
			d--
			if d < 0 {
				return nil, dberr.BadCondition()
			}
		}
		depth[i] = d
		if t.isSymbol("(") {
			d++
		}
	}
	if d != 0 {
		return nil, dberr.BadCondition()
	}

	b := condBuilder{toks: toks, depth: depth}
	return b.build(0, len(toks))
}

type condBuilder struct {
	toks  []Token
	depth []int
}

func (b *condBuilder) build(lo, hi int) (Condition, error) {
	split := -1
	for i := lo; i < hi; i++ {
		if b.toks[i].Kind != KindBooleanOperator {
			continue
		}
		if split == -1 || b.depth[i] < b.depth[split] {
			split = i
		}
	}
	if split == -1 {
		return b.terminal(lo, hi)
	}

	left, err := b.build(lo, split)
	if err != nil {
		return nil, err
	}
	right, err := b.build(split+1, hi)
	if err != nil {
		return nil, err
	}
	return &Binary{Left: left, Op: BoolOp(b.toks[split].Value), Right: right}, nil
}

func (b *condBuilder) terminal(lo, hi int) (Condition, error) {
	parts := make([]Token, 0, 3)
	for _, t := range b.toks[lo:hi] {
		if t.isSymbol("(") || t.isSymbol(")") {
			continue
		}
		parts = append(parts, t)
	}
	if len(parts) != 3 || !isComparator(parts[1]) {
		return nil, dberr.BadCondition()
	}
	return &Terminal{
		Attribute:  parts[0].Value,
		Comparator: Comparator(parts[1].Value),
		Value:      parts[2].Value,
	}, nil
}

// isComparator matches by value: '>' and '<' classify as symbols.
func isComparator(t Token) bool {
	if t.Kind == KindStringLiteral {
		return false
	}
	switch Comparator(t.Value) {
	case Eq, Gt, Lt, Ge, Le, Ne, Like:
		return true
	}
	return false
}

// splitComparators rewrites lexemes such as "age<40" into three tokens.
func splitComparators(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == KindStringLiteral || isComparator(t) {
			out = append(out, t)
			continue
		}
		cmp, i := "", -1
		for _, c := range embeddedComparators {
			if i = strings.Index(t.Value, c); i >= 0 {
				cmp = c
				break
			}
		}
		if i < 0 {
			out = append(out, t)
			continue
		}
		if lhs := t.Value[:i]; lhs != "" {
			out = append(out, NewToken(lhs))
		}
		out = append(out, Token{Kind: KindComparator, Value: cmp})
		if rhs := t.Value[i+len(cmp):]; rhs != "" {
			out = append(out, NewToken(rhs))
		}
	}
	return out
}
