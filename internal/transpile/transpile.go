// Package transpile converts a parsed, analyzed AST into equivalent
// JavaScript source text (spec §6 "Transpiler output").
//
// Grounded on btouchard-gmx/internal/compiler/script/transpiler.go: the
// Transpiler struct (strings.Builder buffer + indent counter + a
// SourceMap of generated-line -> original-line entries) and its
// emit/emitIndent/emitLineComment helpers are carried over almost
// unchanged in shape; every per-node-type transpileX method is new,
// aimed at WFL's statement/expression set instead of GMX's
// model/service/struct-literal surface. The `with`-concatenation ->
// `(String(a) + String(b))` convention and the `WFL` runtime-helper
// namespace are specified directly by spec §6; there is no pack
// precedent for a namespaced runtime, so that part is original to this
// package.
package transpile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wflang/wfl/internal/ast"
)

// SourceMapEntry maps one line of generated JavaScript back to the WFL
// source line that produced it.
type SourceMapEntry struct {
	JSLine  int
	WflLine int
}

// SourceMap is an ordered list of line correspondences, mirroring the
// teacher's GoLine/GmxLine pairing.
type SourceMap struct {
	Entries []SourceMapEntry
}

// Options controls the emitted wrapper and prelude (spec §6).
type Options struct {
	// IIFE wraps the whole output in an immediately-invoked function
	// expression; turned off when ESModule is selected.
	IIFE bool
	// ESModule leaves the output at top level instead of wrapping it in
	// an IIFE; no `export` statements are emitted.
	ESModule bool
	// EmitPrelude inlines the WFL runtime helper object; when false the
	// caller is expected to supply it (e.g. a shared <script> include).
	EmitPrelude bool
}

// Result holds the transpiled output and its source map.
type Result struct {
	JS        string
	SourceMap *SourceMap
}

// Transpiler walks an *ast.Program and emits JavaScript.
type Transpiler struct {
	buf        strings.Builder
	sourceMap  *SourceMap
	jsLine     int
	indent     int
	opts       Options
	usesAsync  bool
	containers map[string]*ast.ContainerDefinition
}

// New constructs a Transpiler with the given output options.
func New(opts Options) *Transpiler {
	return &Transpiler{
		sourceMap:  &SourceMap{},
		opts:       opts,
		containers: map[string]*ast.ContainerDefinition{},
	}
}

// Transpile emits JavaScript for prog under opts.
func Transpile(prog *ast.Program, opts Options) *Result {
	t := New(opts)
	t.collectContainers(prog.Statements)
	t.usesAsync = containsAwait(prog.Statements)

	if opts.EmitPrelude {
		t.emitPrelude()
	}

	if opts.IIFE && !opts.ESModule {
		t.emit("(%s function () {\n", iifeHead(t.usesAsync))
		t.indent++
	}
	for _, s := range prog.Statements {
		t.transpileStmt(s)
	}
	t.emitMainInvocation(prog.Statements)
	if opts.IIFE && !opts.ESModule {
		t.indent--
		t.emit("})();\n")
	}

	return &Result{JS: t.buf.String(), SourceMap: t.sourceMap}
}

func iifeHead(async bool) string {
	if async {
		return "async"
	}
	return ""
}

func (t *Transpiler) collectContainers(stmts []ast.Statement) {
	for _, s := range stmts {
		if c, ok := s.(*ast.ContainerDefinition); ok {
			t.containers[c.Name] = c
		}
	}
}

// containsAwait reports whether any statement in stmts (recursively,
// including nested blocks, try clauses, and container method bodies)
// will transpile to a statement that emits `await`, which determines
// whether the enclosing function/IIFE must be declared `async` (spec
// §6). Every statement case in transpileStmt that unconditionally
// emits "await ..." has a matching case here — the two must be kept in
// sync, since an `await` inside a non-async function is a JS syntax
// error.
func containsAwait(stmts []ast.Statement) bool {
	for _, s := range stmts {
		if stmtContainsAwait(s) {
			return true
		}
	}
	return false
}

func stmtContainsAwait(s ast.Statement) bool {
	switch n := s.(type) {
	case *ast.WaitForStatement, *ast.OpenFileStatement, *ast.ReadFileStatement,
		*ast.WriteFileStatement, *ast.CloseFileStatement, *ast.CreateDirectoryStatement,
		*ast.DeleteFileStatement, *ast.DeleteDirectoryStatement, *ast.ListenStatement,
		*ast.RespondStatement, *ast.StopAcceptingStatement, *ast.WaitForRequestStatement:
		return true
	case *ast.VariableDeclaration:
		return exprContainsAwait(n.Value)
	case *ast.Assignment:
		return exprContainsAwait(n.Value)
	case *ast.ExpressionStatement:
		return exprContainsAwait(n.Expr)
	case *ast.ReturnStatement:
		return exprContainsAwait(n.Value)
	case *ast.PushStatement:
		return exprContainsAwait(n.Value)
	case *ast.CreateListStatement:
		for _, el := range n.Elements {
			if exprContainsAwait(el) {
				return true
			}
		}
		return false
	case *ast.CreateMapStatement:
		for _, en := range n.Entries {
			if exprContainsAwait(en.Value) {
				return true
			}
		}
		return false
	case *ast.IfStatement:
		if containsAwait(n.Consequence) || containsAwait(n.Alternative) {
			return true
		}
		return n.OtherwiseIf != nil && stmtContainsAwait(n.OtherwiseIf)
	case *ast.SingleLineIf:
		if stmtContainsAwait(n.Then) {
			return true
		}
		return n.Else != nil && stmtContainsAwait(n.Else)
	case *ast.ActionDefinition:
		return containsAwait(n.Body)
	case *ast.CountLoop:
		return containsAwait(n.Body)
	case *ast.ForEachLoop:
		return containsAwait(n.Body)
	case *ast.RepeatWhileLoop:
		return containsAwait(n.Body)
	case *ast.RepeatUntilLoop:
		return containsAwait(n.Body)
	case *ast.ForeverLoop:
		return containsAwait(n.Body)
	case *ast.MainLoop:
		return containsAwait(n.Body)
	case *ast.TryStatement:
		if containsAwait(n.Body) || containsAwait(n.Otherwise) {
			return true
		}
		for _, c := range n.Clauses {
			if containsAwait(c.Body) {
				return true
			}
		}
		return false
	case *ast.ContainerDefinition:
		for _, a := range n.Actions {
			if containsAwait(a.Body) {
				return true
			}
		}
		return false
	}
	return false
}

func exprContainsAwait(e ast.Expression) bool {
	switch n := e.(type) {
	case nil:
		return false
	case *ast.AwaitExpression, *ast.ReadContentExpr, *ast.SpawnProcessExpr:
		return true
	case *ast.BinaryOperation:
		return exprContainsAwait(n.Left) || exprContainsAwait(n.Right)
	case *ast.UnaryOperation:
		return exprContainsAwait(n.Operand)
	case *ast.Concatenation:
		for _, p := range n.Parts {
			if exprContainsAwait(p) {
				return true
			}
		}
		return false
	case *ast.ActionCall:
		for _, a := range n.Args {
			if exprContainsAwait(a) {
				return true
			}
		}
		return false
	case *ast.MethodCall:
		if exprContainsAwait(n.Receiver) {
			return true
		}
		for _, a := range n.Args {
			if exprContainsAwait(a) {
				return true
			}
		}
		return false
	}
	return false
}

func (t *Transpiler) emitMainInvocation(stmts []ast.Statement) {
	hasMain := false
	for _, s := range stmts {
		if def, ok := s.(*ast.ActionDefinition); ok && def.Name == "main" {
			hasMain = true
		}
	}
	if !hasMain {
		return
	}
	t.emitIndent()
	if t.usesAsync {
		t.emit("(async () => { await main(); })();\n")
	} else {
		t.emit("main();\n")
	}
}

// ---- statements ----

func (t *Transpiler) transpileStmt(s ast.Statement) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		t.emitIndent()
		t.emitLineComment(n.Pos().Line)
		t.emit("let %s = %s;\n", jsName(n.Name), t.expr(n.Value))
	case *ast.Assignment:
		t.emitIndent()
		t.emitLineComment(n.Pos().Line)
		t.emit("%s = %s;\n", jsName(n.Name), t.expr(n.Value))
	case *ast.DisplayStatement:
		t.emitIndent()
		t.emit("WFL.display(%s);\n", t.expr(n.Value))
	case *ast.IfStatement:
		t.transpileIf(n)
	case *ast.SingleLineIf:
		t.emitIndent()
		t.emit("if (%s) ", t.expr(n.Condition))
		t.buf.WriteString("{ ")
		t.transpileStmtInline(n.Then)
		t.buf.WriteString(" }")
		if n.Else != nil {
			t.buf.WriteString(" else { ")
			t.transpileStmtInline(n.Else)
			t.buf.WriteString(" }")
		}
		t.buf.WriteString("\n")
	case *ast.CountLoop:
		t.transpileCountLoop(n)
	case *ast.ForEachLoop:
		t.transpileForEach(n)
	case *ast.RepeatWhileLoop:
		t.emitIndent()
		t.emit("while (%s) {\n", t.expr(n.Condition))
		t.indent++
		for _, b := range n.Body {
			t.transpileStmt(b)
		}
		t.indent--
		t.emitIndent()
		t.emit("}\n")
	case *ast.RepeatUntilLoop:
		t.emitIndent()
		t.emit("while (!(%s)) {\n", t.expr(n.Condition))
		t.indent++
		for _, b := range n.Body {
			t.transpileStmt(b)
		}
		t.indent--
		t.emitIndent()
		t.emit("}\n")
	case *ast.ForeverLoop:
		t.emitIndent()
		t.emit("while (true) {\n")
		t.indent++
		for _, b := range n.Body {
			t.transpileStmt(b)
		}
		t.indent--
		t.emitIndent()
		t.emit("}\n")
	case *ast.MainLoop:
		t.emitIndent()
		t.emit("while (true) {\n")
		t.indent++
		for _, b := range n.Body {
			t.transpileStmt(b)
		}
		t.indent--
		t.emitIndent()
		t.emit("}\n")
	case *ast.ActionDefinition:
		t.transpileAction(n)
	case *ast.ReturnStatement:
		t.emitIndent()
		if n.Value == nil {
			t.emit("return;\n")
		} else {
			t.emit("return %s;\n", t.expr(n.Value))
		}
	case *ast.BreakStatement:
		t.emitIndent()
		t.emit("break;\n")
	case *ast.ContinueStatement:
		t.emitIndent()
		t.emit("continue;\n")
	case *ast.ExitStatement:
		t.emitIndent()
		if n.Code != nil {
			t.emit("process.exit(%s);\n", t.expr(n.Code))
		} else {
			t.emit("process.exit(0);\n")
		}
	case *ast.TryStatement:
		t.transpileTry(n)
	case *ast.PushStatement:
		t.emitIndent()
		t.emit("%s.push(%s);\n", t.expr(n.List), t.expr(n.Value))
	case *ast.CreateListStatement:
		t.emitIndent()
		elems := make([]string, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = t.expr(e)
		}
		t.emit("let %s = [%s];\n", jsName(n.Name), strings.Join(elems, ", "))
	case *ast.CreateMapStatement:
		t.emitIndent()
		entries := make([]string, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = fmt.Sprintf("%q: %s", e.Key, t.expr(e.Value))
		}
		t.emit("let %s = {%s};\n", jsName(n.Name), strings.Join(entries, ", "))
	case *ast.RemoveFromListStatement:
		t.emitIndent()
		t.emit("WFL.removeFromList(%s, %s);\n", t.expr(n.List), t.expr(n.Value))
	case *ast.ClearListStatement:
		t.emitIndent()
		t.emit("%s.length = 0;\n", t.expr(n.List))
	case *ast.OpenFileStatement:
		t.emitIndent()
		t.emit("let %s = await WFL.openFile(%s);\n", jsName(n.Name), t.expr(n.Path))
	case *ast.ReadFileStatement:
		t.emitIndent()
		t.emit("let %s = await WFL.readContent(%s);\n", jsName(n.Name), t.expr(n.Source))
	case *ast.WriteFileStatement:
		t.emitIndent()
		mode := "\"overwrite\""
		if n.Append {
			mode = "\"append\""
		}
		t.emit("await WFL.writeFile(%s, %s, %s);\n", t.expr(n.File), t.expr(n.Content), mode)
	case *ast.CloseFileStatement:
		t.emitIndent()
		t.emit("await WFL.closeFile(%s);\n", t.expr(n.File))
	case *ast.CreateDirectoryStatement:
		t.emitIndent()
		t.emit("await WFL.createDirectory(%s);\n", t.expr(n.Path))
	case *ast.DeleteFileStatement:
		t.emitIndent()
		t.emit("await WFL.deleteFile(%s);\n", t.expr(n.Path))
	case *ast.DeleteDirectoryStatement:
		t.emitIndent()
		t.emit("await WFL.deleteDirectory(%s);\n", t.expr(n.Path))
	case *ast.WaitForStatement:
		t.emitIndent()
		if n.Name != "" {
			t.emit("let %s = await %s;\n", jsName(n.Name), t.expr(n.Value))
		} else {
			t.emit("await %s;\n", t.expr(n.Value))
		}
	case *ast.PatternDefinition:
		t.emitIndent()
		t.emit("const %s = WFL.Pattern.compile(%s);\n", jsName(n.Name), t.expr(n.Pattern))
	case *ast.ContainerDefinition:
		t.transpileContainer(n)
	case *ast.InterfaceDefinition:
		t.emitIndent()
		t.emit("// interface %s (structural, not emitted)\n", n.Name)
	case *ast.EventDefinition:
		// Declared inside a container; nothing to emit on its own.
	case *ast.TriggerStatement:
		t.emitIndent()
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = t.expr(a)
		}
		t.emit("this.emit(%q%s);\n", n.Event, prependComma(args))
	case *ast.HandlerDefinition:
		t.emitIndent()
		t.emit("// on %s of %s (handler not emitted)\n", n.Event, n.Container)
	case *ast.ListenStatement:
		t.emitIndent()
		t.emit("let %s = await WFL.Server.listen(%s);\n", jsName(n.Name), t.expr(n.Port))
	case *ast.RespondStatement:
		t.emitIndent()
		status := "200"
		if n.Status != nil {
			status = t.expr(n.Status)
		}
		t.emit("await WFL.Server.respond(%s, %s, %s);\n", t.expr(n.Request), t.expr(n.Body), status)
	case *ast.WaitForRequestStatement:
		t.emitIndent()
		t.emit("let %s = await WFL.Server.waitForRequest(%s);\n", jsName(n.Name), t.expr(n.Server))
	case *ast.RegisterHandlerStatement:
		t.emitIndent()
		t.emit("WFL.Server.onRequest(%s, async (%s) => {\n", t.expr(n.Server), jsName(n.Request))
		t.indent++
		for _, b := range n.Body {
			t.transpileStmt(b)
		}
		t.indent--
		t.emitIndent()
		t.emit("});\n")
	case *ast.StopAcceptingStatement:
		t.emitIndent()
		t.emit("await WFL.Server.stop(%s);\n", t.expr(n.Server))
	case *ast.KillProcessStatement:
		t.emitIndent()
		t.emit("WFL.Process.kill(%s);\n", t.expr(n.Process))
	case *ast.LoadModuleStatement:
		t.emitIndent()
		t.emit("// load module from %q (inlined at parse time)\n", n.Path)
	case *ast.ExpressionStatement:
		t.emitIndent()
		t.emit("%s;\n", t.expr(n.Expr))
	default:
		t.emitIndent()
		t.emit("// unsupported statement: %T\n", s)
	}
}

// transpileStmtInline renders a statement without its own indentation,
// for single-line `if ... then ...` forms.
func (t *Transpiler) transpileStmtInline(s ast.Statement) {
	sub := &Transpiler{sourceMap: t.sourceMap, opts: t.opts, containers: t.containers, usesAsync: t.usesAsync}
	sub.transpileStmt(s)
	t.buf.WriteString(strings.TrimRight(sub.buf.String(), "\n"))
}

func prependComma(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, ", ")
}

func (t *Transpiler) transpileIf(n *ast.IfStatement) {
	t.emitIndent()
	t.emit("if (%s) {\n", t.expr(n.Condition))
	t.indent++
	for _, b := range n.Consequence {
		t.transpileStmt(b)
	}
	t.indent--
	t.emitElseChain(n)
}

// emitElseChain renders the `otherwise`/`otherwise check if` tail of an
// IfStatement, keeping an "otherwise check if" desugared chain on a
// single `} else if (...) {` line per link rather than nesting braces.
func (t *Transpiler) emitElseChain(n *ast.IfStatement) {
	if n.OtherwiseIf != nil {
		t.emitIndent()
		t.emit("} else if (%s) {\n", t.expr(n.OtherwiseIf.Condition))
		t.indent++
		for _, b := range n.OtherwiseIf.Consequence {
			t.transpileStmt(b)
		}
		t.indent--
		t.emitElseChain(n.OtherwiseIf)
		return
	}
	if n.Alternative != nil {
		t.emitIndent()
		t.emit("} else {\n")
		t.indent++
		for _, b := range n.Alternative {
			t.transpileStmt(b)
		}
		t.indent--
	}
	t.emitIndent()
	t.emit("}\n")
}

func (t *Transpiler) transpileCountLoop(n *ast.CountLoop) {
	name := n.Variable
	if name == "" {
		name = "count"
	}
	name = jsName(name)
	t.emitIndent()
	step := "1"
	if n.By != nil {
		step = t.expr(n.By)
	}
	if n.Reversed {
		t.emit("for (let %s = %s; %s >= %s; %s -= %s) {\n", name, t.expr(n.From), name, t.expr(n.To), name, step)
	} else {
		t.emit("for (let %s = %s; %s <= %s; %s += %s) {\n", name, t.expr(n.From), name, t.expr(n.To), name, step)
	}
	t.indent++
	for _, b := range n.Body {
		t.transpileStmt(b)
	}
	t.indent--
	t.emitIndent()
	t.emit("}\n")
}

func (t *Transpiler) transpileForEach(n *ast.ForEachLoop) {
	t.emitIndent()
	t.emit("for (const %s of %s) {\n", jsName(n.Variable), t.expr(n.Collection))
	t.indent++
	for _, b := range n.Body {
		t.transpileStmt(b)
	}
	t.indent--
	t.emitIndent()
	t.emit("}\n")
}

func (t *Transpiler) transpileAction(n *ast.ActionDefinition) {
	t.emitIndent()
	async := ""
	if t.usesAsync {
		async = "async "
	}
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		if p.Default != nil {
			params[i] = fmt.Sprintf("%s = %s", jsName(p.Name), t.expr(p.Default))
		} else {
			params[i] = jsName(p.Name)
		}
	}
	t.emit("%sfunction %s(%s) {\n", async, jsName(n.Name), strings.Join(params, ", "))
	t.indent++
	for _, b := range n.Body {
		t.transpileStmt(b)
	}
	t.indent--
	t.emitIndent()
	t.emit("}\n")
}

func (t *Transpiler) transpileTry(n *ast.TryStatement) {
	t.emitIndent()
	t.emit("try {\n")
	t.indent++
	for _, b := range n.Body {
		t.transpileStmt(b)
	}
	t.indent--
	t.emitIndent()
	t.emit("} catch (error) {\n")
	t.indent++
	for i, clause := range n.Clauses {
		t.emitIndent()
		if clause.Condition != nil {
			prefix := "if"
			if i > 0 {
				prefix = "} else if"
			}
			t.emit("%s (%s) {\n", prefix, t.expr(clause.Condition))
		} else {
			prefix := "if (true)"
			if i > 0 {
				prefix = "} else"
			}
			t.emit("%s {\n", prefix)
		}
		t.indent++
		for _, b := range clause.Body {
			t.transpileStmt(b)
		}
		t.indent--
	}
	if len(n.Clauses) > 0 {
		t.emitIndent()
		t.emit("}\n")
	}
	if n.Otherwise != nil {
		for _, b := range n.Otherwise {
			t.transpileStmt(b)
		}
	}
	t.indent--
	t.emitIndent()
	t.emit("}\n")
}

func (t *Transpiler) transpileContainer(n *ast.ContainerDefinition) {
	t.emitIndent()
	extends := ""
	if n.Extends != "" {
		extends = " extends " + jsName(n.Extends)
	}
	t.emit("class %s%s {\n", jsName(n.Name), extends)
	t.indent++

	t.emitIndent()
	t.emit("constructor(%s) {\n", propNames(n.Properties))
	t.indent++
	if n.Extends != "" {
		t.emitIndent()
		t.emit("super();\n")
	}
	for _, p := range n.Properties {
		t.emitIndent()
		if p.Default != nil {
			t.emit("this.%s = %s !== undefined ? %s : %s;\n", jsName(p.Name), jsName(p.Name), jsName(p.Name), t.expr(p.Default))
		} else {
			t.emit("this.%s = %s;\n", jsName(p.Name), jsName(p.Name))
		}
	}
	t.indent--
	t.emitIndent()
	t.emit("}\n")

	for _, action := range n.Actions {
		t.emitIndent()
		async := ""
		if t.usesAsync {
			async = "async "
		}
		params := make([]string, len(action.Params))
		for i, p := range action.Params {
			params[i] = jsName(p.Name)
		}
		t.emit("%s%s(%s) {\n", async, jsName(action.Name), strings.Join(params, ", "))
		t.indent++
		for _, b := range action.Body {
			t.transpileStmt(b)
		}
		t.indent--
		t.emitIndent()
		t.emit("}\n")
	}
	for _, stat := range n.Statics {
		t.emitIndent()
		if stat.Default != nil {
			t.emit("static %s = %s;\n", jsName(stat.Name), t.expr(stat.Default))
		} else {
			t.emit("static %s;\n", jsName(stat.Name))
		}
	}
	t.indent--
	t.emitIndent()
	t.emit("}\n")
}

func propNames(props []ast.Property) string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = jsName(p.Name)
	}
	return strings.Join(names, ", ")
}

// ---- expressions ----

func (t *Transpiler) expr(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.Literal:
		return literalJS(n.Value)
	case *ast.Identifier:
		return jsName(n.Name)
	case *ast.BinaryOperation:
		return t.binary(n)
	case *ast.UnaryOperation:
		return t.unary(n)
	case *ast.Concatenation:
		parts := make([]string, len(n.Parts))
		for i, p := range n.Parts {
			parts[i] = fmt.Sprintf("String(%s)", t.expr(p))
		}
		return "(" + strings.Join(parts, " + ") + ")"
	case *ast.ActionCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = t.expr(a)
		}
		call := fmt.Sprintf("%s(%s)", jsName(n.Name), strings.Join(args, ", "))
		if t.usesAsync {
			return "(await " + call + ")"
		}
		return call
	case *ast.MethodCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = t.expr(a)
		}
		return fmt.Sprintf("%s.%s(%s)", t.expr(n.Receiver), jsName(n.Method), strings.Join(args, ", "))
	case *ast.PropertyAccess:
		return fmt.Sprintf("%s.%s", t.expr(n.Receiver), jsName(n.Property))
	case *ast.StaticMemberAccess:
		return fmt.Sprintf("%s.%s", jsName(n.Container), jsName(n.Member))
	case *ast.IndexAccess:
		if n.Bracket {
			return fmt.Sprintf("%s[%s]", t.expr(n.Collection), t.expr(n.Index))
		}
		// Bare ordinal index access is 1-based in WFL surface syntax.
		return fmt.Sprintf("%s[(%s) - 1]", t.expr(n.Collection), t.expr(n.Index))
	case *ast.ListLiteral:
		elems := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = t.expr(el)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *ast.MapLiteral:
		entries := make([]string, len(n.Entries))
		for i, en := range n.Entries {
			entries[i] = fmt.Sprintf("%q: %s", en.Key, t.expr(en.Value))
		}
		return "{" + strings.Join(entries, ", ") + "}"
	case *ast.ContainerInstantiation:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = t.expr(a)
		}
		return fmt.Sprintf("new %s(%s)", jsName(n.Container), strings.Join(args, ", "))
	case *ast.ParentMethodCall:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = t.expr(a)
		}
		return fmt.Sprintf("super.%s(%s)", jsName(n.Method), strings.Join(args, ", "))
	case *ast.PatternMatchExpr:
		return fmt.Sprintf("%s.test(%s)", t.expr(n.Pattern), t.expr(n.Text))
	case *ast.PatternFindExpr:
		if n.All {
			return fmt.Sprintf("%s.findAll(%s)", t.expr(n.Pattern), t.expr(n.Text))
		}
		return fmt.Sprintf("%s.find(%s)", t.expr(n.Pattern), t.expr(n.Text))
	case *ast.PatternReplaceExpr:
		method := "replace"
		if n.All {
			method = "replaceAll"
		}
		return fmt.Sprintf("%s.%s(%s, %s)", t.expr(n.Pattern), method, t.expr(n.Text), t.expr(n.Replacement))
	case *ast.PatternSplitExpr:
		return fmt.Sprintf("%s.split(%s)", t.expr(n.Pattern), t.expr(n.Text))
	case *ast.StringSplitExpr:
		return fmt.Sprintf("%s.split(%s)", t.expr(n.Text), t.expr(n.Delimiter))
	case *ast.FileExistsExpr:
		return fmt.Sprintf("WFL.fileExists(%s)", t.expr(n.Path))
	case *ast.DirectoryExistsExpr:
		return fmt.Sprintf("WFL.directoryExists(%s)", t.expr(n.Path))
	case *ast.ListFilesExpr:
		ext := "null"
		if n.Extension != nil {
			ext = t.expr(n.Extension)
		}
		return fmt.Sprintf("WFL.listFiles(%s, %t, %s)", t.expr(n.Directory), n.Recursive, ext)
	case *ast.ReadContentExpr:
		return fmt.Sprintf("(await WFL.readContent(%s))", t.expr(n.Source))
	case *ast.HeaderAccessExpr:
		return fmt.Sprintf("WFL.header(%s, %s)", t.expr(n.Target), t.expr(n.Name))
	case *ast.CurrentTimeExpr:
		if n.Milliseconds {
			return "Date.now()"
		}
		if n.Format != nil {
			return fmt.Sprintf("WFL.formatTime(Date.now(), %s)", t.expr(n.Format))
		}
		return "Date.now()"
	case *ast.ProcessRunningExpr:
		return fmt.Sprintf("WFL.Process.isRunning(%s)", t.expr(n.Process))
	case *ast.AwaitExpression:
		return fmt.Sprintf("(await %s)", t.expr(n.Value))
	case *ast.SpawnProcessExpr:
		args := "null"
		if n.Arguments != nil {
			args = t.expr(n.Arguments)
		}
		return fmt.Sprintf("(await WFL.Process.spawn(%s, %s))", t.expr(n.Command), args)
	default:
		return fmt.Sprintf("/* unsupported expr: %T */", e)
	}
}

func (t *Transpiler) binary(n *ast.BinaryOperation) string {
	left, right := t.expr(n.Left), t.expr(n.Right)
	switch n.Operator {
	case "plus":
		return fmt.Sprintf("(%s + %s)", left, right)
	case "minus":
		return fmt.Sprintf("(%s - %s)", left, right)
	case "times":
		return fmt.Sprintf("(%s * %s)", left, right)
	case "divided by":
		return fmt.Sprintf("(%s / %s)", left, right)
	case "%":
		return fmt.Sprintf("(%s %% %s)", left, right)
	case "and":
		return fmt.Sprintf("(%s && %s)", left, right)
	case "or":
		return fmt.Sprintf("(%s || %s)", left, right)
	case "contains":
		return fmt.Sprintf("WFL.contains(%s, %s)", left, right)
	case "matches":
		return fmt.Sprintf("%s.test(%s)", right, left)
	}
	if strings.HasPrefix(n.Operator, "is ") {
		return t.comparison(strings.TrimPrefix(n.Operator, "is "), left, right)
	}
	return fmt.Sprintf("(%s /* %s */ %s)", left, n.Operator, right)
}

func (t *Transpiler) comparison(kind, left, right string) string {
	negate := false
	if strings.HasPrefix(kind, "not ") {
		negate = true
		kind = strings.TrimPrefix(kind, "not ")
	}
	var js string
	switch kind {
	case "equal to":
		js = fmt.Sprintf("WFL.equals(%s, %s)", left, right)
	case "greater than":
		js = fmt.Sprintf("(%s > %s)", left, right)
	case "greater than or equal to":
		js = fmt.Sprintf("(%s >= %s)", left, right)
	case "less than":
		js = fmt.Sprintf("(%s < %s)", left, right)
	case "less than or equal to":
		js = fmt.Sprintf("(%s <= %s)", left, right)
	default:
		js = fmt.Sprintf("(%s == %s)", left, right)
	}
	if negate {
		return "!" + js
	}
	return js
}

func (t *Transpiler) unary(n *ast.UnaryOperation) string {
	switch n.Operator {
	case "not":
		return fmt.Sprintf("!(%s)", t.expr(n.Operand))
	case "minus":
		return fmt.Sprintf("(-%s)", t.expr(n.Operand))
	default:
		return fmt.Sprintf("(%s%s)", n.Operator, t.expr(n.Operand))
	}
}

func literalJS(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case string:
		return strconv.Quote(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// jsName maps a (possibly multi-word) WFL identifier onto a valid JS
// identifier by replacing spaces with underscores (spec §6).
func jsName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

func (t *Transpiler) emit(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	t.buf.WriteString(s)
	t.jsLine += strings.Count(s, "\n")
}

func (t *Transpiler) emitIndent() {
	t.buf.WriteString(strings.Repeat("  ", t.indent))
}

func (t *Transpiler) emitLineComment(wflLine int) {
	t.sourceMap.Entries = append(t.sourceMap.Entries, SourceMapEntry{JSLine: t.jsLine + 1, WflLine: wflLine})
}

// emitPrelude inlines the WFL runtime helper namespace referenced by
// the emitted code (spec §6 "runtime helpers namespaced under a global
// WFL"). Kept intentionally small: enough surface for the primitives
// this package actually emits calls to.
func (t *Transpiler) emitPrelude() {
	t.buf.WriteString(preludeJS)
	t.jsLine += strings.Count(preludeJS, "\n")
}

const preludeJS = `const WFL = {
  display(v) { console.log(WFL.toDisplay(v)); },
  toDisplay(v) {
    if (v === null || v === undefined) return "nothing";
    if (Array.isArray(v)) return "[" + v.map(WFL.toDisplay).join(", ") + "]";
    return String(v);
  },
  equals(a, b) { return a === b; },
  contains(a, b) {
    if (Array.isArray(a)) return a.some(x => WFL.equals(x, b));
    if (typeof a === "string") return a.includes(String(b));
    return false;
  },
  removeFromList(list, value) {
    const i = list.findIndex(x => WFL.equals(x, value));
    if (i >= 0) list.splice(i, 1);
  },
  async openFile(path) { throw new Error("WFL.openFile requires a host runtime"); },
  async readContent(source) { throw new Error("WFL.readContent requires a host runtime"); },
  async writeFile(file, content, mode) { throw new Error("WFL.writeFile requires a host runtime"); },
  async closeFile(file) { throw new Error("WFL.closeFile requires a host runtime"); },
  async createDirectory(path) { throw new Error("WFL.createDirectory requires a host runtime"); },
  async deleteFile(path) { throw new Error("WFL.deleteFile requires a host runtime"); },
  async deleteDirectory(path) { throw new Error("WFL.deleteDirectory requires a host runtime"); },
  fileExists(path) { return false; },
  directoryExists(path) { return false; },
  listFiles(dir, recursive, ext) { return []; },
  header(target, name) { return target && target.headers ? target.headers[name] : null; },
  formatTime(ms, fmt) { return new Date(ms).toISOString(); },
  Pattern: {
    compile(src) { return new RegExp(src); },
  },
  Server: {
    async listen(port) { throw new Error("WFL.Server.listen requires a host runtime"); },
    async respond(req, body, status) { throw new Error("WFL.Server.respond requires a host runtime"); },
    onRequest(server, handler) { throw new Error("WFL.Server.onRequest requires a host runtime"); },
    async stop(server) { throw new Error("WFL.Server.stop requires a host runtime"); },
    async waitForRequest(server) { throw new Error("WFL.Server.waitForRequest requires a host runtime"); },
  },
  Process: {
    async spawn(cmd, args) { throw new Error("WFL.Process.spawn requires a host runtime"); },
    kill(proc) { throw new Error("WFL.Process.kill requires a host runtime"); },
    isRunning(proc) { return false; },
  },
};

`
