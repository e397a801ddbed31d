package ast

// Pattern expressions are the data model behind `create pattern ...`
// bodies and inline pattern literals (spec §3 "Pattern AST"). They are
// ordinary Expression nodes so they can sit in PatternDefinition.Pattern
// or be matched directly by a PatternMatchExpr/PatternFindExpr/etc, but
// internal/pattern — not this package — is what compiles them to
// bytecode and runs them.

// QuantKind is the repetition kind on a PatternQuantified node.
type QuantKind int

const (
	QuantOneOrMore QuantKind = iota
	QuantZeroOrMore
	QuantOptional
	QuantExactly
	QuantBetween
)

// PatternLiteral matches an exact run of text.
type PatternLiteral struct {
	Base
	Text string
}

func (*PatternLiteral) expressionNode() {}

// PatternCharClass matches one character of a built-in class: "digit",
// "letter", "whitespace", or a named Unicode property.
type PatternCharClass struct {
	Base
	Class string
}

func (*PatternCharClass) expressionNode() {}

// PatternSequence matches each item in order.
type PatternSequence struct {
	Base
	Items []Expression
}

func (*PatternSequence) expressionNode() {}

// PatternAlternative matches the first option that succeeds.
type PatternAlternative struct {
	Base
	Options []Expression
}

func (*PatternAlternative) expressionNode() {}

// PatternQuantified applies a repetition quantifier to Inner. Min/Max
// are only meaningful for QuantExactly (Min) and QuantBetween (Min,Max).
type PatternQuantified struct {
	Base
	Inner Expression
	Kind  QuantKind
	Min   int
	Max   int
}

func (*PatternQuantified) expressionNode() {}

// PatternNegativeLookahead matches the empty string only when Inner
// does NOT match at the current position.
type PatternNegativeLookahead struct {
	Base
	Inner Expression
}

func (*PatternNegativeLookahead) expressionNode() {}

// PatternListRef resolves, at compile time, to an alternative of the
// string literals held in the named list variable.
type PatternListRef struct {
	Base
	Name string
}

func (*PatternListRef) expressionNode() {}

// PatternStartAnchor matches only at the start of the input.
type PatternStartAnchor struct{ Base }

func (*PatternStartAnchor) expressionNode() {}

// PatternEndAnchor matches only at the end of the input.
type PatternEndAnchor struct{ Base }

func (*PatternEndAnchor) expressionNode() {}
