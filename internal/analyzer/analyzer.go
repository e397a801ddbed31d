// Package analyzer performs the static checks that run after parsing
// and before type-checking: unused-variable, unreachable-code,
// shadowing, inconsistent-return, and undefined/not-an-action/arity
// checks over actions called with `call ... with ...`.
//
// No pack repo ships a standalone static analyzer of this shape (the
// teacher folds its equivalent checks into code generation instead), so
// this package is grounded on the pass structure of
// _examples/original_source/src/analyzer/tests.rs — the four
// check_* entry points and the Analyzer/Scope shape it exercises — with
// the actual algorithms written fresh against spec §4.3.
package analyzer

import (
	"fmt"

	"github.com/wflang/wfl/internal/ast"
	"github.com/wflang/wfl/internal/diag"
)

// builtinActions is the fixed allow-list of built-in callable names the
// undefined-action check never flags (spec §4.2 "Call syntax").
var builtinActions = map[string]bool{
	"random": true, "length": true, "round": true, "floor": true,
	"ceiling": true, "absolute": true, "uppercase": true, "lowercase": true,
	"trim": true, "now": true, "typeof": true,
}

// scope tracks declared names in one lexical block for the unused and
// shadowing passes.
type scope struct {
	parent *scope
	names  map[string]*binding
}

type binding struct {
	declNode ast.Node
	used     bool
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]*binding)}
}

func (s *scope) declare(name string, node ast.Node) *binding {
	b := &binding{declNode: node}
	s.names[name] = b
	return b
}

// resolve walks the parent chain, returning the nearest binding for
// name, or nil if undeclared.
func (s *scope) resolve(name string) *binding {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.names[name]; ok {
			return b
		}
	}
	return nil
}

// Analyzer runs the static-analysis passes over a parsed Program and
// reports findings through a shared diag.Reporter.
type Analyzer struct {
	file string
	rep  *diag.Reporter

	actions map[string]*ast.ActionDefinition
}

// New constructs an Analyzer reporting against rep for diagnostics
// attributed to file.
func New(file string, rep *diag.Reporter) *Analyzer {
	return &Analyzer{file: file, rep: rep, actions: make(map[string]*ast.ActionDefinition)}
}

// Analyze runs every static-analysis pass over prog (spec §4.3):
// unused variables, unreachable code, shadowing, inconsistent returns,
// and undefined/arity/not-an-action checks on action calls.
func (a *Analyzer) Analyze(prog *ast.Program) {
	a.collectActions(prog.Statements)
	a.checkUnused(prog.Statements, newScope(nil))
	a.checkUnreachable(prog.Statements)
	a.checkShadowing(prog.Statements, newScope(nil))
	a.checkReturns(prog.Statements)
	a.checkCalls(prog.Statements, newScope(nil))
}

// collectActions prepasses every action definition in the program
// (including nested ones) so forward references resolve, per spec
// §4.3 "Forward references are permitted".
func (a *Analyzer) collectActions(stmts []ast.Statement) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.ActionDefinition:
			a.actions[n.Name] = n
			a.collectActions(n.Body)
		case *ast.ContainerDefinition:
			for _, m := range n.Actions {
				a.actions[m.Name] = m
				a.collectActions(m.Body)
			}
		case *ast.IfStatement:
			a.collectActions(n.Consequence)
			a.collectActions(n.Alternative)
			if n.OtherwiseIf != nil {
				a.collectActions([]ast.Statement{n.OtherwiseIf})
			}
		case *ast.CountLoop:
			a.collectActions(n.Body)
		case *ast.ForEachLoop:
			a.collectActions(n.Body)
		case *ast.RepeatWhileLoop:
			a.collectActions(n.Body)
		case *ast.RepeatUntilLoop:
			a.collectActions(n.Body)
		case *ast.ForeverLoop:
			a.collectActions(n.Body)
		case *ast.MainLoop:
			a.collectActions(n.Body)
		case *ast.TryStatement:
			a.collectActions(n.Body)
			for _, c := range n.Clauses {
				a.collectActions(c.Body)
			}
			a.collectActions(n.Otherwise)
		}
	}
}

func (a *Analyzer) errAt(pos ast.Node, code, format string, args ...interface{}) {
	p := pos.Pos()
	a.rep.Errorf(a.file, p.Line, p.Column, p.Offset, code, format, args...)
}

func (a *Analyzer) warnAt(pos ast.Node, code, format string, args ...interface{}) {
	p := pos.Pos()
	a.rep.Warnf(a.file, p.Line, p.Column, p.Offset, code, format, args...)
}

// ============ unused variables ============

// checkUnused walks stmts in a child scope of parent, declaring
// VariableDeclaration/CreateListStatement/CreateMapStatement bindings
// and marking them used on any Identifier reference, then reports one
// ANALYZE-UNUSED warning per binding never referenced (spec §4.3).
func (a *Analyzer) checkUnused(stmts []ast.Statement, parent *scope) {
	sc := newScope(parent)
	a.walkUnusedBlock(stmts, sc)
	for name, b := range sc.names {
		if !b.used {
			a.warnAt(b.declNode, "ANALYZE-UNUSED", "variable %q is declared but never used", name)
		}
	}
}

func (a *Analyzer) walkUnusedBlock(stmts []ast.Statement, sc *scope) {
	for _, s := range stmts {
		a.declareUnused(s, sc)
		a.markUsedInStatement(s, sc)
		a.recurseUnused(s, sc)
	}
}

func (a *Analyzer) declareUnused(s ast.Statement, sc *scope) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		sc.declare(n.Name, n)
	case *ast.CreateListStatement:
		sc.declare(n.Name, n)
	case *ast.CreateMapStatement:
		sc.declare(n.Name, n)
	case *ast.PatternDefinition:
		sc.declare(n.Name, n)
	case *ast.OpenFileStatement:
		sc.declare(n.Name, n)
	case *ast.ReadFileStatement:
		sc.declare(n.Name, n)
	case *ast.ListenStatement:
		sc.declare(n.Name, n)
	}
}

// recurseUnused opens a fresh nested scope (chained to sc) for every
// block-bearing statement, matching spec §4.3's "scope and children"
// unused rule: a binding counts as used if referenced anywhere in its
// scope or a descendant.
func (a *Analyzer) recurseUnused(s ast.Statement, sc *scope) {
	switch n := s.(type) {
	case *ast.IfStatement:
		a.checkUnused(n.Consequence, sc)
		a.checkUnused(n.Alternative, sc)
		if n.OtherwiseIf != nil {
			a.recurseUnused(n.OtherwiseIf, sc)
		}
	case *ast.CountLoop:
		inner := newScope(sc)
		inner.declare(n.Variable, n)
		a.walkUnusedBlock(n.Body, inner)
		for name, b := range inner.names {
			if !b.used && name != n.Variable {
				a.warnAt(b.declNode, "ANALYZE-UNUSED", "variable %q is declared but never used", name)
			}
		}
	case *ast.ForEachLoop:
		inner := newScope(sc)
		inner.declare(n.Variable, n)
		a.walkUnusedBlock(n.Body, inner)
		for name, b := range inner.names {
			if !b.used && name != n.Variable {
				a.warnAt(b.declNode, "ANALYZE-UNUSED", "variable %q is declared but never used", name)
			}
		}
	case *ast.RepeatWhileLoop:
		a.checkUnused(n.Body, sc)
	case *ast.RepeatUntilLoop:
		a.checkUnused(n.Body, sc)
	case *ast.ForeverLoop:
		a.checkUnused(n.Body, sc)
	case *ast.MainLoop:
		a.checkUnused(n.Body, sc)
	case *ast.ActionDefinition:
		inner := newScope(sc)
		params := make(map[string]bool, len(n.Params))
		for _, prm := range n.Params {
			inner.declare(prm.Name, n)
			params[prm.Name] = true
		}
		a.walkUnusedBlock(n.Body, inner)
		for name, b := range inner.names {
			if !b.used && !params[name] {
				a.warnAt(b.declNode, "ANALYZE-UNUSED", "variable %q is declared but never used", name)
			}
		}
	case *ast.TryStatement:
		a.checkUnused(n.Body, sc)
		for _, c := range n.Clauses {
			a.checkUnused(c.Body, sc)
		}
		a.checkUnused(n.Otherwise, sc)
	case *ast.ContainerDefinition:
		for _, m := range n.Actions {
			a.recurseUnused(m, sc)
		}
	case *ast.SingleLineIf:
		if n.Then != nil {
			a.declareUnused(n.Then, sc)
			a.markUsedInStatement(n.Then, sc)
			a.recurseUnused(n.Then, sc)
		}
		if n.Else != nil {
			a.declareUnused(n.Else, sc)
			a.markUsedInStatement(n.Else, sc)
			a.recurseUnused(n.Else, sc)
		}
	}
}

// markUsedInStatement walks every expression reachable from s,
// resolving identifiers in sc to mark them used.
func (a *Analyzer) markUsedInStatement(s ast.Statement, sc *scope) {
	for _, e := range subexpressions(s) {
		a.markUsedInExpr(e, sc)
	}
}

func (a *Analyzer) markUsedInExpr(e ast.Expression, sc *scope) {
	if e == nil {
		return
	}
	if id, ok := e.(*ast.Identifier); ok {
		if b := sc.resolve(id.Name); b != nil {
			b.used = true
		}
	}
	for _, child := range childExpressions(e) {
		a.markUsedInExpr(child, sc)
	}
}

// ============ unreachable code ============

// checkUnreachable flags every statement that follows an unconditional
// terminator within the same block (spec §4.3 ANALYZE-UNREACHABLE),
// recursing into every nested block.
func (a *Analyzer) checkUnreachable(stmts []ast.Statement) {
	terminated := false
	for _, s := range stmts {
		if terminated {
			a.warnAt(s, "ANALYZE-UNREACHABLE", "unreachable code: statement follows an unconditional return, break, continue, or exit")
		}
		a.recurseUnreachable(s)
		if terminates(s) {
			terminated = true
		}
	}
}

func (a *Analyzer) recurseUnreachable(s ast.Statement) {
	switch n := s.(type) {
	case *ast.IfStatement:
		a.checkUnreachable(n.Consequence)
		a.checkUnreachable(n.Alternative)
		if n.OtherwiseIf != nil {
			a.recurseUnreachable(n.OtherwiseIf)
		}
	case *ast.CountLoop:
		a.checkUnreachable(n.Body)
	case *ast.ForEachLoop:
		a.checkUnreachable(n.Body)
	case *ast.RepeatWhileLoop:
		a.checkUnreachable(n.Body)
	case *ast.RepeatUntilLoop:
		a.checkUnreachable(n.Body)
	case *ast.ForeverLoop:
		a.checkUnreachable(n.Body)
	case *ast.MainLoop:
		a.checkUnreachable(n.Body)
	case *ast.ActionDefinition:
		a.checkUnreachable(n.Body)
	case *ast.TryStatement:
		a.checkUnreachable(n.Body)
		for _, c := range n.Clauses {
			a.checkUnreachable(c.Body)
		}
		a.checkUnreachable(n.Otherwise)
	case *ast.ContainerDefinition:
		for _, m := range n.Actions {
			a.checkUnreachable(m.Body)
		}
	case *ast.SingleLineIf:
		if n.Then != nil {
			a.recurseUnreachable(n.Then)
		}
		if n.Else != nil {
			a.recurseUnreachable(n.Else)
		}
	}
}

// terminates reports whether s unconditionally transfers control out
// of its block: a bare return/break/continue/exit, or an if-statement
// whose every branch terminates (spec §4.3 "Control flow through if
// considers both branches").
func terminates(s ast.Statement) bool {
	switch n := s.(type) {
	case *ast.ReturnStatement, *ast.BreakStatement, *ast.ContinueStatement, *ast.ExitStatement:
		return true
	case *ast.IfStatement:
		if len(n.Consequence) == 0 || !terminates(n.Consequence[len(n.Consequence)-1]) {
			return false
		}
		if n.OtherwiseIf != nil {
			return terminates(n.OtherwiseIf)
		}
		if len(n.Alternative) == 0 {
			return false
		}
		return terminates(n.Alternative[len(n.Alternative)-1])
	default:
		return false
	}
}

// ============ shadowing ============

// checkShadowing flags any declaration whose name already resolves in
// an enclosing scope (spec §4.3 ANALYZE-SHADOW).
func (a *Analyzer) checkShadowing(stmts []ast.Statement, parent *scope) {
	sc := newScope(parent)
	for _, s := range stmts {
		a.declareShadow(s, sc, parent)
		a.recurseShadow(s, sc)
	}
}

func (a *Analyzer) declareShadow(s ast.Statement, sc, parent *scope) {
	var name string
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		name = n.Name
	case *ast.CreateListStatement:
		name = n.Name
	case *ast.CreateMapStatement:
		name = n.Name
	default:
		return
	}
	if parent != nil {
		if outer := parent.resolve(name); outer != nil {
			a.warnAt(s, "ANALYZE-SHADOW", "declaration of %q shadows an outer-scope binding", name)
		}
	}
	sc.declare(name, s)
}

func (a *Analyzer) recurseShadow(s ast.Statement, sc *scope) {
	switch n := s.(type) {
	case *ast.IfStatement:
		a.checkShadowing(n.Consequence, sc)
		a.checkShadowing(n.Alternative, sc)
		if n.OtherwiseIf != nil {
			a.recurseShadow(n.OtherwiseIf, sc)
		}
	case *ast.CountLoop:
		inner := newScope(sc)
		inner.declare(n.Variable, n)
		a.checkShadowing(n.Body, inner)
	case *ast.ForEachLoop:
		inner := newScope(sc)
		inner.declare(n.Variable, n)
		a.checkShadowing(n.Body, inner)
	case *ast.RepeatWhileLoop:
		a.checkShadowing(n.Body, sc)
	case *ast.RepeatUntilLoop:
		a.checkShadowing(n.Body, sc)
	case *ast.ForeverLoop:
		a.checkShadowing(n.Body, sc)
	case *ast.MainLoop:
		a.checkShadowing(n.Body, sc)
	case *ast.ActionDefinition:
		inner := newScope(sc)
		for _, prm := range n.Params {
			inner.declare(prm.Name, n)
		}
		a.checkShadowing(n.Body, inner)
	case *ast.TryStatement:
		a.checkShadowing(n.Body, sc)
		for _, c := range n.Clauses {
			a.checkShadowing(c.Body, sc)
		}
		a.checkShadowing(n.Otherwise, sc)
	case *ast.ContainerDefinition:
		for _, m := range n.Actions {
			a.recurseShadow(m, sc)
		}
	case *ast.SingleLineIf:
		if n.Then != nil {
			a.declareShadow(n.Then, sc, sc)
			a.recurseShadow(n.Then, sc)
		}
		if n.Else != nil {
			a.declareShadow(n.Else, sc, sc)
			a.recurseShadow(n.Else, sc)
		}
	}
}

// ============ inconsistent returns ============

// checkReturns flags every action declared with a return type whose
// body has at least one control-flow path that does not end in a
// `give back` (spec §4.3 ANALYZE-RETURN).
func (a *Analyzer) checkReturns(stmts []ast.Statement) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.ActionDefinition:
			if n.ReturnTypeDeclared() && !allPathsReturn(n.Body) {
				a.warnAt(n, "ANALYZE-RETURN", "action %q has an inconsistent return: not every path gives back a value", n.Name)
			}
			a.checkReturns(n.Body)
		case *ast.ContainerDefinition:
			for _, m := range n.Actions {
				if m.ReturnTypeDeclared() && !allPathsReturn(m.Body) {
					a.warnAt(m, "ANALYZE-RETURN", "action %q has an inconsistent return: not every path gives back a value", m.Name)
				}
				a.checkReturns(m.Body)
			}
		case *ast.IfStatement:
			a.checkReturns(n.Consequence)
			a.checkReturns(n.Alternative)
		case *ast.CountLoop:
			a.checkReturns(n.Body)
		case *ast.ForEachLoop:
			a.checkReturns(n.Body)
		case *ast.RepeatWhileLoop:
			a.checkReturns(n.Body)
		case *ast.RepeatUntilLoop:
			a.checkReturns(n.Body)
		case *ast.ForeverLoop:
			a.checkReturns(n.Body)
		case *ast.MainLoop:
			a.checkReturns(n.Body)
		case *ast.TryStatement:
			a.checkReturns(n.Body)
			for _, c := range n.Clauses {
				a.checkReturns(c.Body)
			}
			a.checkReturns(n.Otherwise)
		}
	}
}

// allPathsReturn reports whether every control-flow path through stmts
// ends in a ReturnStatement carrying a value.
func allPathsReturn(stmts []ast.Statement) bool {
	if len(stmts) == 0 {
		return false
	}
	last := stmts[len(stmts)-1]
	switch n := last.(type) {
	case *ast.ReturnStatement:
		return n.Value != nil
	case *ast.IfStatement:
		if !allPathsReturn(n.Consequence) {
			return false
		}
		if n.OtherwiseIf != nil {
			return allPathsReturn([]ast.Statement{n.OtherwiseIf})
		}
		return allPathsReturn(n.Alternative)
	case *ast.SingleLineIf:
		if n.Else == nil {
			return false
		}
		return allPathsReturn([]ast.Statement{n.Then}) && allPathsReturn([]ast.Statement{n.Else})
	case *ast.ForeverLoop:
		// A `repeat forever` with no break is itself non-terminating,
		// but the analyzer treats it conservatively as not a return.
		return false
	default:
		return false
	}
}

// ============ undefined / arity / not-an-action ============

func (a *Analyzer) checkCalls(stmts []ast.Statement, parent *scope) {
	sc := newScope(parent)
	for _, s := range stmts {
		a.declareUnused(s, sc) // reuse the same declaration rule
		for _, e := range subexpressions(s) {
			a.checkCallsInExpr(e, sc)
		}
		a.recurseCalls(s, sc)
	}
}

func (a *Analyzer) recurseCalls(s ast.Statement, sc *scope) {
	switch n := s.(type) {
	case *ast.IfStatement:
		a.checkCalls(n.Consequence, sc)
		a.checkCalls(n.Alternative, sc)
		if n.OtherwiseIf != nil {
			a.recurseCalls(n.OtherwiseIf, sc)
		}
	case *ast.CountLoop:
		a.checkCalls(n.Body, sc)
	case *ast.ForEachLoop:
		a.checkCalls(n.Body, sc)
	case *ast.RepeatWhileLoop:
		a.checkCalls(n.Body, sc)
	case *ast.RepeatUntilLoop:
		a.checkCalls(n.Body, sc)
	case *ast.ForeverLoop:
		a.checkCalls(n.Body, sc)
	case *ast.MainLoop:
		a.checkCalls(n.Body, sc)
	case *ast.ActionDefinition:
		a.checkCalls(n.Body, sc)
	case *ast.TryStatement:
		a.checkCalls(n.Body, sc)
		for _, c := range n.Clauses {
			a.checkCalls(c.Body, sc)
		}
		a.checkCalls(n.Otherwise, sc)
	case *ast.ContainerDefinition:
		for _, m := range n.Actions {
			a.recurseCalls(m, sc)
		}
	case *ast.SingleLineIf:
		if n.Then != nil {
			for _, e := range subexpressions(n.Then) {
				a.checkCallsInExpr(e, sc)
			}
			a.recurseCalls(n.Then, sc)
		}
		if n.Else != nil {
			for _, e := range subexpressions(n.Else) {
				a.checkCallsInExpr(e, sc)
			}
			a.recurseCalls(n.Else, sc)
		}
	}
}

func (a *Analyzer) checkCallsInExpr(e ast.Expression, sc *scope) {
	if e == nil {
		return
	}
	if call, ok := e.(*ast.ActionCall); ok {
		a.checkOneCall(call, sc)
	}
	for _, child := range childExpressions(e) {
		a.checkCallsInExpr(child, sc)
	}
}

func (a *Analyzer) checkOneCall(call *ast.ActionCall, sc *scope) {
	if builtinActions[call.Name] {
		return
	}
	def, isAction := a.actions[call.Name]
	if !isAction {
		if b := sc.resolve(call.Name); b != nil {
			a.errAt(call, "ANALYZE-NOT-AN-ACTION", "%q is not an action", call.Name)
			return
		}
		a.errAt(call, "ANALYZE-UNDEFINED-ACTION", "Undefined action %q", call.Name)
		return
	}
	required := 0
	for _, p := range def.Params {
		if p.Default == nil {
			required++
		}
	}
	if len(call.Args) < required || len(call.Args) > len(def.Params) {
		a.errAt(call, "ANALYZE-ARITY", "action %q called with %d argument(s), expects %s",
			call.Name, len(call.Args), arityDescription(required, len(def.Params)))
	}
}

func arityDescription(min, max int) string {
	if min == max {
		return fmt.Sprintf("%d", min)
	}
	return fmt.Sprintf("%d to %d", min, max)
}
