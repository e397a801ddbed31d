package interp

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/wflang/wfl/internal/ast"
)

// Interpreter tree-walks a parsed, analyzed, type-checked program.
// Scheduling is single-threaded and cooperative (spec §5): the only
// suspension points are wait-for/I/O primitives and the boundaries
// between loop iterations and action-body statements, each of which
// calls checkDeadline.
type Interpreter struct {
	file      string
	out       io.Writer
	globals   *Environment
	resources *resourceTable
	actions   map[string]*ActionValue
	patterns  map[string]*PatternValue

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds an interpreter. A zero timeout means no deadline.
func New(file string, out io.Writer, timeout time.Duration) *Interpreter {
	ctx := context.Background()
	cancel := func() {}
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	return &Interpreter{
		file:      file,
		out:       out,
		globals:   NewEnvironment(nil),
		resources: newResourceTable(),
		actions:   map[string]*ActionValue{},
		patterns:  map[string]*PatternValue{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Close releases the timeout context and any still-open resources.
func (in *Interpreter) Close() {
	in.cancel()
	in.resources.closeAll()
}

// Run executes the top-level program: statements in source order, then
// an implicit call to `main` if defined (spec §6 "Execution entry").
func (in *Interpreter) Run(prog *ast.Program) error {
	defer in.Close()
	in.collectActions(prog.Statements)

	sig, err := in.execBlock(prog.Statements, in.globals)
	if err != nil {
		return err
	}
	if sig.kind == signalExit {
		return nil
	}

	if action, ok := in.actions["main"]; ok {
		if _, err := in.callAction(action, nil, prog.Pos()); err != nil {
			return err
		}
	}
	return nil
}

// collectActions pre-registers every top-level action so forward
// references (an action calling one defined later in the file) resolve.
func (in *Interpreter) collectActions(stmts []ast.Statement) {
	for _, s := range stmts {
		if def, ok := s.(*ast.ActionDefinition); ok {
			in.actions[def.Name] = &ActionValue{
				Name: def.Name, Params: def.Params, ReturnType: def.ReturnType,
				Body: def.Body, Env: in.globals,
			}
		}
	}
}

func (in *Interpreter) checkDeadline(pos ast.Node) error {
	select {
	case <-in.ctx.Done():
		return in.runtimeErr(pos, "Execution exceeded timeout")
	default:
		return nil
	}
}

func (in *Interpreter) runtimeErr(pos ast.Node, format string, args ...interface{}) *RuntimeError {
	p := pos.Pos()
	return &RuntimeError{Message: fmt.Sprintf(format, args...), Line: p.Line, Column: p.Column}
}

// execBlock runs stmts in a fresh child scope of parent, checking the
// deadline between statements (spec §5, §9 "Cancellation discipline").
func (in *Interpreter) execBlock(stmts []ast.Statement, parent *Environment) (signal, error) {
	env := NewEnvironment(parent)
	for _, s := range stmts {
		if err := in.checkDeadline(s); err != nil {
			return noSignal, err
		}
		sig, err := in.execStmt(s, env)
		if err != nil {
			return noSignal, err
		}
		if sig.kind != signalNone {
			return sig, nil
		}
	}
	return noSignal, nil
}

// execStmtsIn runs stmts directly in env without opening a new scope —
// used where the caller already set up the right scope (loop bodies
// that bind a loop variable, action bodies that bind parameters).
func (in *Interpreter) execStmtsIn(stmts []ast.Statement, env *Environment) (signal, error) {
	for _, s := range stmts {
		if err := in.checkDeadline(s); err != nil {
			return noSignal, err
		}
		sig, err := in.execStmt(s, env)
		if err != nil {
			return noSignal, err
		}
		if sig.kind != signalNone {
			return sig, nil
		}
	}
	return noSignal, nil
}

func (in *Interpreter) execStmt(s ast.Statement, env *Environment) (signal, error) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		v, err := in.eval(n.Value, env)
		if err != nil {
			return noSignal, err
		}
		env.Define(n.Name, v, n.IsConstant)
		return noSignal, nil

	case *ast.Assignment:
		v, err := in.eval(n.Value, env)
		if err != nil {
			return noSignal, err
		}
		if env.IsConstant(n.Name) {
			return noSignal, in.runtimeErr(n, "cannot assign to constant %q", n.Name)
		}
		if !env.Assign(n.Name, v) {
			env.Define(n.Name, v, false)
		}
		return noSignal, nil

	case *ast.DisplayStatement:
		v, err := in.eval(n.Value, env)
		if err != nil {
			return noSignal, err
		}
		fmt.Fprintln(in.out, v.String())
		return noSignal, nil

	case *ast.IfStatement:
		return in.execIf(n, env)

	case *ast.SingleLineIf:
		cond, err := in.eval(n.Condition, env)
		if err != nil {
			return noSignal, err
		}
		if cond.IsTruthy() {
			return in.execStmt(n.Then, env)
		}
		if n.Else != nil {
			return in.execStmt(n.Else, env)
		}
		return noSignal, nil

	case *ast.CountLoop:
		return in.execCountLoop(n, env)

	case *ast.ForEachLoop:
		return in.execForEach(n, env)

	case *ast.RepeatWhileLoop:
		return in.execRepeatWhile(n, env, true)

	case *ast.RepeatUntilLoop:
		return in.execRepeatWhile(n, env, false)

	case *ast.ForeverLoop:
		for {
			if err := in.checkDeadline(n); err != nil {
				return noSignal, err
			}
			in.dispatchServerRequests()
			loopEnv := NewEnvironment(env)
			sig, err := in.execStmtsIn(n.Body, loopEnv)
			if err != nil {
				return noSignal, err
			}
			switch sig.kind {
			case signalBreak:
				return noSignal, nil
			case signalReturn, signalExit:
				return sig, nil
			}
		}

	case *ast.MainLoop:
		for {
			if err := in.checkDeadline(n); err != nil {
				return noSignal, err
			}
			in.dispatchServerRequests()
			loopEnv := NewEnvironment(env)
			sig, err := in.execStmtsIn(n.Body, loopEnv)
			if err != nil {
				return noSignal, err
			}
			switch sig.kind {
			case signalBreak:
				return noSignal, nil
			case signalReturn, signalExit:
				return sig, nil
			}
		}

	case *ast.ActionDefinition:
		in.actions[n.Name] = &ActionValue{Name: n.Name, Params: n.Params, ReturnType: n.ReturnType, Body: n.Body, Env: env}
		return noSignal, nil

	case *ast.ReturnStatement:
		if n.Value == nil {
			return signal{kind: signalReturn, value: Null()}, nil
		}
		v, err := in.eval(n.Value, env)
		if err != nil {
			return noSignal, err
		}
		return signal{kind: signalReturn, value: v}, nil

	case *ast.BreakStatement:
		return signal{kind: signalBreak}, nil

	case *ast.ContinueStatement:
		return signal{kind: signalContinue}, nil

	case *ast.ExitStatement:
		code := Number(0)
		if n.Code != nil {
			v, err := in.eval(n.Code, env)
			if err != nil {
				return noSignal, err
			}
			code = v
		}
		return signal{kind: signalExit, value: code}, nil

	case *ast.TryStatement:
		return in.execTry(n, env)

	case *ast.PushStatement:
		return noSignal, in.execPush(n, env)

	case *ast.CreateListStatement:
		elems := make([]Value, len(n.Elements))
		for i, e := range n.Elements {
			v, err := in.eval(e, env)
			if err != nil {
				return noSignal, err
			}
			elems[i] = v
		}
		env.Define(n.Name, List(elems), false)
		return noSignal, nil

	case *ast.CreateMapStatement:
		m := Map()
		for _, entry := range n.Entries {
			v, err := in.eval(entry.Value, env)
			if err != nil {
				return noSignal, err
			}
			m.Map.Set(entry.Key, v)
		}
		env.Define(n.Name, m, false)
		return noSignal, nil

	case *ast.RemoveFromListStatement:
		return noSignal, in.execRemoveFromList(n, env)

	case *ast.ClearListStatement:
		v, err := in.eval(n.List, env)
		if err != nil {
			return noSignal, err
		}
		if v.Kind != KindList {
			return noSignal, in.runtimeErr(n, "cannot clear a %s", v.KindName())
		}
		v.List.Elements = nil
		return noSignal, nil

	case *ast.OpenFileStatement:
		return noSignal, in.execOpenFile(n, env)

	case *ast.ReadFileStatement:
		return noSignal, in.execReadFile(n, env)

	case *ast.WriteFileStatement:
		return noSignal, in.execWriteFile(n, env)

	case *ast.CloseFileStatement:
		v, err := in.eval(n.File, env)
		if err != nil {
			return noSignal, err
		}
		if v.Kind != KindFileHandle {
			return noSignal, in.runtimeErr(n, "not a file handle")
		}
		if err := in.resources.closeFile(v.Handle); err != nil {
			return noSignal, in.runtimeErr(n, "%s", err)
		}
		return noSignal, nil

	case *ast.CreateDirectoryStatement:
		path, err := in.evalText(n.Path, env)
		if err != nil {
			return noSignal, err
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return noSignal, in.runtimeErr(n, "%s", err)
		}
		return noSignal, nil

	case *ast.DeleteFileStatement:
		path, err := in.evalText(n.Path, env)
		if err != nil {
			return noSignal, err
		}
		if err := os.Remove(path); err != nil {
			return noSignal, in.runtimeErr(n, "%s", err)
		}
		return noSignal, nil

	case *ast.DeleteDirectoryStatement:
		path, err := in.evalText(n.Path, env)
		if err != nil {
			return noSignal, err
		}
		if err := os.RemoveAll(path); err != nil {
			return noSignal, in.runtimeErr(n, "%s", err)
		}
		return noSignal, nil

	case *ast.WaitForStatement:
		v, err := in.eval(n.Value, env)
		if err != nil {
			return noSignal, err
		}
		if err := in.checkDeadline(n); err != nil {
			return noSignal, err
		}
		if n.Name != "" {
			env.Define(n.Name, v, false)
		}
		return noSignal, nil

	case *ast.PatternDefinition:
		pv, err := in.compilePattern(n, env)
		if err != nil {
			return noSignal, err
		}
		in.patterns[n.Name] = pv
		env.Define(n.Name, Value{Kind: KindPattern, Pattern: pv}, false)
		return noSignal, nil

	case *ast.ContainerDefinition:
		env.Define(n.Name, Value{Kind: KindContainer, Container: &ContainerValue{TypeName: n.Name, Def: n}}, false)
		return noSignal, nil

	case *ast.InterfaceDefinition:
		return noSignal, nil

	case *ast.EventDefinition:
		return noSignal, nil

	case *ast.TriggerStatement:
		return noSignal, in.execTrigger(n, env)

	case *ast.HandlerDefinition:
		return noSignal, nil

	case *ast.ListenStatement:
		return noSignal, in.execListen(n, env)

	case *ast.RespondStatement:
		return noSignal, in.execRespond(n, env)

	case *ast.RegisterHandlerStatement:
		return noSignal, in.execRegisterHandler(n, env)

	case *ast.WaitForRequestStatement:
		return noSignal, in.execWaitForRequest(n, env)

	case *ast.StopAcceptingStatement:
		v, err := in.eval(n.Server, env)
		if err != nil {
			return noSignal, err
		}
		if v.Kind != KindServerHandle {
			return noSignal, in.runtimeErr(n, "not a server handle")
		}
		sr, err := in.resources.server(v.Handle)
		if err != nil {
			return noSignal, in.runtimeErr(n, "%s", err)
		}
		sr.closed = true
		close(sr.stop)
		return noSignal, nil

	case *ast.KillProcessStatement:
		v, err := in.eval(n.Process, env)
		if err != nil {
			return noSignal, err
		}
		if v.Kind != KindProcessHandle {
			return noSignal, in.runtimeErr(n, "not a process handle")
		}
		pr, err := in.resources.process(v.Handle)
		if err != nil {
			return noSignal, in.runtimeErr(n, "%s", err)
		}
		if pr.cmd.Process != nil {
			pr.cmd.Process.Kill()
		}
		return noSignal, nil

	case *ast.LoadModuleStatement:
		// Replaced by internal/imports after parsing; a surviving node is
		// a no-op at runtime.
		return noSignal, nil

	case *ast.ExpressionStatement:
		_, err := in.eval(n.Expr, env)
		return noSignal, err

	default:
		return noSignal, in.runtimeErr(s, "cannot execute statement of type %T", s)
	}
}

func (in *Interpreter) execIf(n *ast.IfStatement, env *Environment) (signal, error) {
	cond, err := in.eval(n.Condition, env)
	if err != nil {
		return noSignal, err
	}
	if cond.IsTruthy() {
		return in.execBlock(n.Consequence, env)
	}
	if n.OtherwiseIf != nil {
		return in.execIf(n.OtherwiseIf, env)
	}
	if n.Alternative != nil {
		return in.execBlock(n.Alternative, env)
	}
	return noSignal, nil
}

func (in *Interpreter) execCountLoop(n *ast.CountLoop, env *Environment) (signal, error) {
	from, err := in.evalNumber(n.From, env)
	if err != nil {
		return noSignal, err
	}
	to, err := in.evalNumber(n.To, env)
	if err != nil {
		return noSignal, err
	}
	step := 1.0
	if n.By != nil {
		step, err = in.evalNumber(n.By, env)
		if err != nil {
			return noSignal, err
		}
	}
	if step == 0 {
		return noSignal, in.runtimeErr(n, "count loop step cannot be zero")
	}
	if n.Reversed {
		step = -math.Abs(step)
	} else {
		step = math.Abs(step)
	}

	name := n.Variable
	if name == "" {
		name = "count"
	}

	for i := from; (step > 0 && i <= to) || (step < 0 && i >= to); i += step {
		if err := in.checkDeadline(n); err != nil {
			return noSignal, err
		}
		loopEnv := NewEnvironment(env)
		loopEnv.Define(name, Number(i), false)
		sig, err := in.execStmtsIn(n.Body, loopEnv)
		if err != nil {
			return noSignal, err
		}
		switch sig.kind {
		case signalBreak:
			return noSignal, nil
		case signalReturn, signalExit:
			return sig, nil
		}
	}
	return noSignal, nil
}

func (in *Interpreter) execForEach(n *ast.ForEachLoop, env *Environment) (signal, error) {
	coll, err := in.eval(n.Collection, env)
	if err != nil {
		return noSignal, err
	}
	if coll.Kind != KindList {
		return noSignal, in.runtimeErr(n, "cannot iterate a %s", coll.KindName())
	}
	for _, item := range coll.List.Elements {
		if err := in.checkDeadline(n); err != nil {
			return noSignal, err
		}
		loopEnv := NewEnvironment(env)
		loopEnv.Define(n.Variable, item, false)
		sig, err := in.execStmtsIn(n.Body, loopEnv)
		if err != nil {
			return noSignal, err
		}
		switch sig.kind {
		case signalBreak:
			return noSignal, nil
		case signalReturn, signalExit:
			return sig, nil
		}
	}
	return noSignal, nil
}

func (in *Interpreter) execRepeatWhile(n ast.Statement, env *Environment, whileTrue bool) (signal, error) {
	var cond ast.Expression
	var body []ast.Statement
	switch r := n.(type) {
	case *ast.RepeatWhileLoop:
		cond, body = r.Condition, r.Body
	case *ast.RepeatUntilLoop:
		cond, body = r.Condition, r.Body
	}
	for {
		if err := in.checkDeadline(n); err != nil {
			return noSignal, err
		}
		c, err := in.eval(cond, env)
		if err != nil {
			return noSignal, err
		}
		if whileTrue && !c.IsTruthy() {
			return noSignal, nil
		}
		if !whileTrue && c.IsTruthy() {
			return noSignal, nil
		}
		loopEnv := NewEnvironment(env)
		sig, err := in.execStmtsIn(body, loopEnv)
		if err != nil {
			return noSignal, err
		}
		switch sig.kind {
		case signalBreak:
			return noSignal, nil
		case signalReturn, signalExit:
			return sig, nil
		}
	}
}

func (in *Interpreter) execTry(n *ast.TryStatement, env *Environment) (signal, error) {
	sig, err := in.execBlock(n.Body, env)
	if err == nil {
		return sig, nil
	}
	msg := err.Error()
	if re, ok := err.(*RuntimeError); ok {
		msg = re.Message
	}
	for _, clause := range n.Clauses {
		clauseEnv := NewEnvironment(env)
		clauseEnv.Define("error", Text(msg), false)
		if clause.Condition != nil {
			matched, cerr := in.eval(clause.Condition, clauseEnv)
			if cerr != nil {
				return noSignal, cerr
			}
			if !matched.IsTruthy() {
				continue
			}
		}
		return in.execStmtsIn(clause.Body, clauseEnv)
	}
	if n.Otherwise != nil {
		otherEnv := NewEnvironment(env)
		otherEnv.Define("error", Text(msg), false)
		return in.execStmtsIn(n.Otherwise, otherEnv)
	}
	return noSignal, nil
}

func (in *Interpreter) execPush(n *ast.PushStatement, env *Environment) error {
	v, err := in.eval(n.Value, env)
	if err != nil {
		return err
	}
	listVal, err := in.eval(n.List, env)
	if err != nil {
		return err
	}
	if listVal.Kind != KindList {
		return in.runtimeErr(n, "cannot push onto a %s", listVal.KindName())
	}
	listVal.List.Elements = append(listVal.List.Elements, v)
	return nil
}

func (in *Interpreter) execRemoveFromList(n *ast.RemoveFromListStatement, env *Environment) error {
	v, err := in.eval(n.Value, env)
	if err != nil {
		return err
	}
	listVal, err := in.eval(n.List, env)
	if err != nil {
		return err
	}
	if listVal.Kind != KindList {
		return in.runtimeErr(n, "cannot remove from a %s", listVal.KindName())
	}
	out := listVal.List.Elements[:0]
	removed := false
	for _, e := range listVal.List.Elements {
		if !removed && e.Equal(v) {
			removed = true
			continue
		}
		out = append(out, e)
	}
	listVal.List.Elements = out
	return nil
}

func (in *Interpreter) execTrigger(n *ast.TriggerStatement, env *Environment) error {
	// Event dispatch is cooperative and synchronous: a trigger calls the
	// action whose name equals the event's, the way `call <name>` would,
	// and does nothing when there is none. HandlerDefinition bodies are
	// not registered at runtime, so a trigger never runs them.
	action, ok := in.actions[n.Event]
	if !ok {
		return nil
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := in.eval(a, env)
		if err != nil {
			return err
		}
		args[i] = v
	}
	_, err := in.callAction(action, args, n)
	return err
}

// evalText evaluates e and returns it as text, stringifying a non-Text
// result.
func (in *Interpreter) evalText(e ast.Expression, env *Environment) (string, error) {
	v, err := in.eval(e, env)
	if err != nil {
		return "", err
	}
	if v.Kind != KindText {
		return v.String(), nil
	}
	return v.Text, nil
}

func (in *Interpreter) evalNumber(e ast.Expression, env *Environment) (float64, error) {
	v, err := in.eval(e, env)
	if err != nil {
		return 0, err
	}
	if v.Kind != KindNumber {
		return 0, in.runtimeErr(e, "expected a number, got %s", v.KindName())
	}
	return v.Number, nil
}

func (in *Interpreter) callAction(action *ActionValue, args []Value, where ast.Node) (Value, error) {
	env := NewEnvironment(action.Env)
	for i, p := range action.Params {
		if i < len(args) {
			env.Define(p.Name, args[i], false)
			continue
		}
		if p.Default != nil {
			v, err := in.eval(p.Default, env)
			if err != nil {
				return Value{}, err
			}
			env.Define(p.Name, v, false)
			continue
		}
		return Value{}, in.runtimeErr(where, "missing argument %q to action %q", p.Name, action.Name)
	}
	sig, err := in.execStmtsIn(action.Body, env)
	if err != nil {
		return Value{}, err
	}
	if sig.kind == signalReturn {
		return sig.value, nil
	}
	return Null(), nil
}
