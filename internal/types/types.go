// Package types implements the static type checker described in spec
// §4.4: it assigns a static Kind to every binding and expression and
// rejects operator misuse and incompatible re-bindings before
// execution begins.
//
// No pack repo carries a standalone type-checker package either (the
// teacher's GMX is dynamically typed at the script layer and only
// type-checks the generated Go/SQL side via gorm tags). This package is
// grounded on _examples/original_source/src/interpreter, where the
// WFL Rust implementation folds type compatibility checks inline into
// evaluation; SPEC_FULL splits that concern out into its own
// pre-execution phase per spec §2's component table, using the same
// scope-chain shape as internal/analyzer.
package types

import (
	"github.com/wflang/wfl/internal/ast"
	"github.com/wflang/wfl/internal/diag"
)

// Kind is a static type drawn from spec §4.4's closed set.
type Kind int

const (
	Unknown Kind = iota
	Number
	Text
	Boolean
	Nothing
	List
	Map
	Pattern
	FileHandle
	Action
	Container
	Custom
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "Number"
	case Text:
		return "Text"
	case Boolean:
		return "Boolean"
	case Nothing:
		return "Nothing"
	case List:
		return "List"
	case Map:
		return "Map"
	case Pattern:
		return "Pattern"
	case FileHandle:
		return "FileHandle"
	case Action:
		return "Action"
	case Container:
		return "Container"
	case Custom:
		return "Custom"
	default:
		return "Unknown"
	}
}

type scope struct {
	parent *scope
	vars   map[string]Kind
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]Kind)}
}

func (s *scope) define(name string, k Kind) { s.vars[name] = k }

func (s *scope) lookup(name string) (Kind, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if k, ok := cur.vars[name]; ok {
			return k, true
		}
	}
	return Unknown, false
}

// Checker walks a Program assigning and validating static types.
type Checker struct {
	file string
	rep  *diag.Reporter
}

// New constructs a Checker that reports against rep, attributing
// diagnostics to file.
func New(file string, rep *diag.Reporter) *Checker {
	return &Checker{file: file, rep: rep}
}

// Check runs the type-checking pass over prog (spec §4.4).
func (c *Checker) Check(prog *ast.Program) {
	c.checkBlock(prog.Statements, newScope(nil))
}

func (c *Checker) errAt(n ast.Node, code, format string, args ...interface{}) {
	p := n.Pos()
	c.rep.Errorf(c.file, p.Line, p.Column, p.Offset, code, format, args...)
}

func (c *Checker) checkBlock(stmts []ast.Statement, sc *scope) {
	for _, s := range stmts {
		c.checkStatement(s, sc)
	}
}

func (c *Checker) checkStatement(s ast.Statement, sc *scope) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		vk := c.exprKind(n.Value, sc)
		if prior, ok := sc.lookup(n.Name); ok && !n.IsConstant {
			if !compatible(prior, vk) {
				c.errAt(n, "TYPE-INCOMPATIBLE-REBIND",
					"cannot re-declare %q as %s; it was previously bound to %s", n.Name, vk, prior)
			}
		}
		sc.define(n.Name, vk)
	case *ast.Assignment:
		vk := c.exprKind(n.Value, sc)
		if prior, ok := sc.lookup(n.Name); ok {
			if !compatible(prior, vk) {
				c.errAt(n, "TYPE-INCOMPATIBLE-REBIND",
					"cannot assign a %s value to %q, previously bound to %s", vk, n.Name, prior)
			}
		}
		sc.define(n.Name, vk)
	case *ast.DisplayStatement:
		c.exprKind(n.Value, sc)
	case *ast.IfStatement:
		c.checkCondition(n.Condition, sc)
		c.checkBlock(n.Consequence, newScope(sc))
		c.checkBlock(n.Alternative, newScope(sc))
		if n.OtherwiseIf != nil {
			c.checkStatement(n.OtherwiseIf, sc)
		}
	case *ast.SingleLineIf:
		c.checkCondition(n.Condition, sc)
		c.checkStatement(n.Then, newScope(sc))
		if n.Else != nil {
			c.checkStatement(n.Else, newScope(sc))
		}
	case *ast.CountLoop:
		c.requireKind(n.From, Number, sc, "count ... from")
		c.requireKind(n.To, Number, sc, "count ... to")
		if n.By != nil {
			c.requireKind(n.By, Number, sc, "count ... by")
		}
		inner := newScope(sc)
		if n.Variable != "" {
			inner.define(n.Variable, Number)
		} else {
			inner.define("count", Number)
		}
		c.checkBlock(n.Body, inner)
	case *ast.ForEachLoop:
		c.exprKind(n.Collection, sc)
		inner := newScope(sc)
		inner.define(n.Variable, Unknown)
		c.checkBlock(n.Body, inner)
	case *ast.RepeatWhileLoop:
		c.checkCondition(n.Condition, sc)
		c.checkBlock(n.Body, newScope(sc))
	case *ast.RepeatUntilLoop:
		c.checkCondition(n.Condition, sc)
		c.checkBlock(n.Body, newScope(sc))
	case *ast.ForeverLoop:
		c.checkBlock(n.Body, newScope(sc))
	case *ast.MainLoop:
		c.checkBlock(n.Body, newScope(sc))
	case *ast.ActionDefinition:
		inner := newScope(sc)
		for _, p := range n.Params {
			k := Unknown
			if p.Default != nil {
				k = c.exprKind(p.Default, sc)
			}
			inner.define(p.Name, k)
		}
		sc.define(n.Name, Action)
		c.checkBlock(n.Body, inner)
	case *ast.ReturnStatement:
		if n.Value != nil {
			c.exprKind(n.Value, sc)
		}
	case *ast.TryStatement:
		c.checkBlock(n.Body, newScope(sc))
		for _, cl := range n.Clauses {
			inner := newScope(sc)
			if cl.Condition != nil {
				c.checkCondition(cl.Condition, inner)
			}
			c.checkBlock(cl.Body, inner)
		}
		c.checkBlock(n.Otherwise, newScope(sc))
	case *ast.CreateListStatement:
		for _, e := range n.Elements {
			c.exprKind(e, sc)
		}
		sc.define(n.Name, List)
	case *ast.CreateMapStatement:
		for _, e := range n.Entries {
			c.exprKind(e.Value, sc)
		}
		sc.define(n.Name, Map)
	case *ast.PatternDefinition:
		sc.define(n.Name, Pattern)
	case *ast.OpenFileStatement:
		c.exprKind(n.Path, sc)
		sc.define(n.Name, FileHandle)
	case *ast.ReadFileStatement:
		c.exprKind(n.Source, sc)
		sc.define(n.Name, Text)
	case *ast.WriteFileStatement:
		c.exprKind(n.File, sc)
		c.exprKind(n.Content, sc)
	case *ast.ContainerDefinition:
		sc.define(n.Name, Container)
		for _, m := range n.Actions {
			c.checkStatement(m, sc)
		}
	case *ast.ExpressionStatement:
		c.exprKind(n.Expr, sc)
	}
}

func (c *Checker) checkCondition(e ast.Expression, sc *scope) {
	k := c.exprKind(e, sc)
	if k != Unknown && k != Boolean {
		c.errAt(e, "TYPE-MISMATCH", "condition must be a Boolean, got %s", k)
	}
}

func (c *Checker) requireKind(e ast.Expression, want Kind, sc *scope, where string) {
	if e == nil {
		return
	}
	k := c.exprKind(e, sc)
	if k != Unknown && k != want {
		c.errAt(e, "TYPE-MISMATCH", "%s must be a %s, got %s", where, want, k)
	}
}

// compatible reports whether b may be (re-)bound where a was
// previously bound, per spec §4.4: Unknown is permissive on either
// side (an inferred-at-runtime container/custom value), otherwise the
// kinds must match exactly.
func compatible(a, b Kind) bool {
	if a == Unknown || b == Unknown {
		return true
	}
	return a == b
}

// exprKind infers the static Kind of e, reporting operator-misuse
// diagnostics along the way (spec §4.4).
func (c *Checker) exprKind(e ast.Expression, sc *scope) Kind {
	if e == nil {
		return Unknown
	}
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Value.(type) {
		case int64, float64:
			return Number
		case string:
			return Text
		case bool:
			return Boolean
		case nil:
			return Nothing
		}
		return Unknown
	case *ast.ListLiteral:
		for _, el := range n.Elements {
			c.exprKind(el, sc)
		}
		return List
	case *ast.MapLiteral:
		for _, en := range n.Entries {
			c.exprKind(en.Value, sc)
		}
		return Map
	case *ast.Identifier:
		if k, ok := sc.lookup(n.Name); ok {
			return k
		}
		return Unknown
	case *ast.BinaryOperation:
		return c.binaryKind(n, sc)
	case *ast.UnaryOperation:
		k := c.exprKind(n.Operand, sc)
		if n.Operator == "not" {
			if k != Unknown && k != Boolean {
				c.errAt(n, "TYPE-MISMATCH", "'not' requires a Boolean operand, got %s", k)
			}
			return Boolean
		}
		if k != Unknown && k != Number {
			c.errAt(n, "TYPE-MISMATCH", "unary minus requires a Number operand, got %s", k)
		}
		return Number
	case *ast.Concatenation:
		for _, p := range n.Parts {
			c.exprKind(p, sc)
		}
		return Text
	case *ast.ActionCall:
		for _, a := range n.Args {
			c.exprKind(a, sc)
		}
		return Unknown
	case *ast.MethodCall:
		c.exprKind(n.Receiver, sc)
		for _, a := range n.Args {
			c.exprKind(a, sc)
		}
		return Unknown
	case *ast.PropertyAccess:
		c.exprKind(n.Receiver, sc)
		return Unknown
	case *ast.IndexAccess:
		c.exprKind(n.Collection, sc)
		c.exprKind(n.Index, sc)
		return Unknown
	case *ast.ContainerInstantiation:
		for _, a := range n.Args {
			c.exprKind(a, sc)
		}
		return Container
	case *ast.ParentMethodCall:
		for _, a := range n.Args {
			c.exprKind(a, sc)
		}
		return Unknown
	case *ast.PatternMatchExpr:
		c.exprKind(n.Text, sc)
		c.exprKind(n.Pattern, sc)
		return Boolean
	case *ast.PatternFindExpr:
		c.exprKind(n.Pattern, sc)
		c.exprKind(n.Text, sc)
		return Unknown
	case *ast.PatternReplaceExpr:
		c.exprKind(n.Pattern, sc)
		c.exprKind(n.Replacement, sc)
		c.exprKind(n.Text, sc)
		return Text
	case *ast.PatternSplitExpr:
		c.exprKind(n.Text, sc)
		c.exprKind(n.Pattern, sc)
		return List
	case *ast.StringSplitExpr:
		c.exprKind(n.Text, sc)
		c.exprKind(n.Delimiter, sc)
		return List
	case *ast.FileExistsExpr:
		c.exprKind(n.Path, sc)
		return Boolean
	case *ast.DirectoryExistsExpr:
		c.exprKind(n.Path, sc)
		return Boolean
	case *ast.ListFilesExpr:
		c.exprKind(n.Directory, sc)
		return List
	case *ast.ReadContentExpr:
		c.exprKind(n.Source, sc)
		return Text
	case *ast.HeaderAccessExpr:
		c.exprKind(n.Target, sc)
		return Text
	case *ast.CurrentTimeExpr:
		if n.Milliseconds {
			return Number
		}
		return Text
	case *ast.ProcessRunningExpr:
		c.exprKind(n.Process, sc)
		return Boolean
	case *ast.AwaitExpression:
		return c.exprKind(n.Value, sc)
	case *ast.SpawnProcessExpr:
		c.exprKind(n.Command, sc)
		return Unknown
	}
	return Unknown
}

// binaryKind validates operand kinds for one BinaryOperation and
// returns its result kind (spec §4.4): arithmetic requires Number,
// and/or requires Boolean, comparisons require ordered-compatible
// operands, contains/matches are boolean-valued.
func (c *Checker) binaryKind(n *ast.BinaryOperation, sc *scope) Kind {
	l := c.exprKind(n.Left, sc)
	r := c.exprKind(n.Right, sc)
	switch n.Operator {
	case "plus", "minus", "times", "divided by", "modulo", "%":
		if l != Unknown && l != Number {
			c.errAt(n.Left, "TYPE-MISMATCH", "arithmetic operand must be a Number, got %s", l)
		}
		if r != Unknown && r != Number {
			c.errAt(n.Right, "TYPE-MISMATCH", "arithmetic operand must be a Number, got %s", r)
		}
		return Number
	case "and", "or":
		if l != Unknown && l != Boolean {
			c.errAt(n.Left, "TYPE-MISMATCH", "'%s' requires a Boolean operand, got %s", n.Operator, l)
		}
		if r != Unknown && r != Boolean {
			c.errAt(n.Right, "TYPE-MISMATCH", "'%s' requires a Boolean operand, got %s", n.Operator, r)
		}
		return Boolean
	case "contains":
		return Boolean
	default:
		// "is equal to" / "is not equal to" / "is [not] greater/less
		// than [or equal to]".
		if l != Unknown && r != Unknown && l != r {
			c.errAt(n, "TYPE-MISMATCH", "comparing incompatible types %s and %s", l, r)
		}
		return Boolean
	}
}
