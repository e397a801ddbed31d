package interp

import (
	"math/rand"
	"strings"
	"time"

	"github.com/wflang/wfl/internal/ast"
)

func (in *Interpreter) eval(e ast.Expression, env *Environment) (Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return literalValue(n.Value), nil

	case *ast.Identifier:
		if v, ok := env.Get(n.Name); ok {
			return v, nil
		}
		if action, ok := in.actions[n.Name]; ok {
			return Value{Kind: KindAction, Action: action}, nil
		}
		return Value{}, in.runtimeErr(n, "undefined name %q", n.Name)

	case *ast.BinaryOperation:
		return in.evalBinary(n, env)

	case *ast.UnaryOperation:
		return in.evalUnary(n, env)

	case *ast.Concatenation:
		var sb strings.Builder
		for _, part := range n.Parts {
			v, err := in.eval(part, env)
			if err != nil {
				return Value{}, err
			}
			sb.WriteString(v.String())
		}
		return Text(sb.String()), nil

	case *ast.ActionCall:
		return in.evalActionCall(n, env)

	case *ast.MethodCall:
		return in.evalMethodCall(n, env)

	case *ast.PropertyAccess:
		return in.evalPropertyAccess(n, env)

	case *ast.StaticMemberAccess:
		return Value{}, in.runtimeErr(n, "static member access is not supported on %q", n.Container)

	case *ast.IndexAccess:
		return in.evalIndexAccess(n, env)

	case *ast.ListLiteral:
		elems := make([]Value, len(n.Elements))
		for i, el := range n.Elements {
			v, err := in.eval(el, env)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return List(elems), nil

	case *ast.MapLiteral:
		m := Map()
		for _, entry := range n.Entries {
			v, err := in.eval(entry.Value, env)
			if err != nil {
				return Value{}, err
			}
			m.Map.Set(entry.Key, v)
		}
		return m, nil

	case *ast.ContainerInstantiation:
		return in.evalContainerInstantiation(n, env)

	case *ast.ParentMethodCall:
		return in.evalParentMethodCall(n, env)

	case *ast.PatternMatchExpr:
		return in.evalPatternMatch(n, env)

	case *ast.PatternFindExpr:
		return in.evalPatternFind(n, env)

	case *ast.PatternReplaceExpr:
		return in.evalPatternReplace(n, env)

	case *ast.PatternSplitExpr:
		return in.evalPatternSplit(n, env)

	case *ast.StringSplitExpr:
		text, err := in.evalText(n.Text, env)
		if err != nil {
			return Value{}, err
		}
		delim, err := in.evalText(n.Delimiter, env)
		if err != nil {
			return Value{}, err
		}
		parts := strings.Split(text, delim)
		elems := make([]Value, len(parts))
		for i, p := range parts {
			elems[i] = Text(p)
		}
		return List(elems), nil

	case *ast.FileExistsExpr:
		path, err := in.evalText(n.Path, env)
		if err != nil {
			return Value{}, err
		}
		return Bool(fileExists(path)), nil

	case *ast.DirectoryExistsExpr:
		path, err := in.evalText(n.Path, env)
		if err != nil {
			return Value{}, err
		}
		return Bool(dirExists(path)), nil

	case *ast.ListFilesExpr:
		return in.evalListFiles(n, env)

	case *ast.ReadContentExpr:
		return in.evalReadContent(n, env)

	case *ast.HeaderAccessExpr:
		return in.evalHeaderAccess(n, env)

	case *ast.CurrentTimeExpr:
		return in.evalCurrentTime(n, env)

	case *ast.ProcessRunningExpr:
		return in.evalProcessRunning(n, env)

	case *ast.AwaitExpression:
		return in.eval(n.Value, env)

	case *ast.SpawnProcessExpr:
		return in.evalSpawnProcess(n, env)

	default:
		return Value{}, in.runtimeErr(e, "cannot evaluate expression of type %T", e)
	}
}

func literalValue(raw interface{}) Value {
	switch v := raw.(type) {
	case int64:
		return Number(float64(v))
	case float64:
		return Number(v)
	case string:
		return Text(v)
	case bool:
		return Bool(v)
	case nil:
		return Null()
	default:
		return Null()
	}
}

func (in *Interpreter) evalUnary(n *ast.UnaryOperation, env *Environment) (Value, error) {
	v, err := in.eval(n.Operand, env)
	if err != nil {
		return Value{}, err
	}
	switch n.Operator {
	case "not":
		return Bool(!v.IsTruthy()), nil
	case "minus", "-":
		if v.Kind != KindNumber {
			return Value{}, in.runtimeErr(n, "cannot negate a %s", v.KindName())
		}
		return Number(-v.Number), nil
	default:
		return Value{}, in.runtimeErr(n, "unknown unary operator %q", n.Operator)
	}
}

func (in *Interpreter) evalBinary(n *ast.BinaryOperation, env *Environment) (Value, error) {
	op := n.Operator

	// Short-circuit logical operators (spec §5 "short-circuit and/or do
	// not evaluate the right operand when the left settles the result").
	if op == "and" || op == "or" {
		left, err := in.eval(n.Left, env)
		if err != nil {
			return Value{}, err
		}
		if op == "and" && !left.IsTruthy() {
			return Bool(false), nil
		}
		if op == "or" && left.IsTruthy() {
			return Bool(true), nil
		}
		right, err := in.eval(n.Right, env)
		if err != nil {
			return Value{}, err
		}
		return Bool(right.IsTruthy()), nil
	}

	left, err := in.eval(n.Left, env)
	if err != nil {
		return Value{}, err
	}
	right, err := in.eval(n.Right, env)
	if err != nil {
		return Value{}, err
	}

	switch op {
	case "plus":
		if left.Kind != KindNumber || right.Kind != KindNumber {
			return Value{}, in.runtimeErr(n, "'plus' requires numbers, got %s and %s", left.KindName(), right.KindName())
		}
		return Number(left.Number + right.Number), nil
	case "minus":
		if left.Kind != KindNumber || right.Kind != KindNumber {
			return Value{}, in.runtimeErr(n, "'minus' requires numbers, got %s and %s", left.KindName(), right.KindName())
		}
		return Number(left.Number - right.Number), nil
	case "times":
		if left.Kind != KindNumber || right.Kind != KindNumber {
			return Value{}, in.runtimeErr(n, "'times' requires numbers, got %s and %s", left.KindName(), right.KindName())
		}
		return Number(left.Number * right.Number), nil
	case "divided by":
		if left.Kind != KindNumber || right.Kind != KindNumber {
			return Value{}, in.runtimeErr(n, "'divided by' requires numbers, got %s and %s", left.KindName(), right.KindName())
		}
		if right.Number == 0 {
			return Value{}, in.runtimeErr(n, "division by zero")
		}
		return Number(left.Number / right.Number), nil
	case "%":
		if left.Kind != KindNumber || right.Kind != KindNumber {
			return Value{}, in.runtimeErr(n, "'%%' requires numbers, got %s and %s", left.KindName(), right.KindName())
		}
		if right.Number == 0 {
			return Value{}, in.runtimeErr(n, "modulo by zero")
		}
		// Sign follows the dividend, matching Go's %.
		return Number(dividendSignedMod(left.Number, right.Number)), nil
	case "contains":
		return in.evalContains(left, right, n)
	case "matches":
		return in.matchValue(right, left, n)
	default:
		if strings.HasPrefix(op, "is ") {
			return in.evalComparison(strings.TrimPrefix(op, "is "), left, right, n)
		}
		return Value{}, in.runtimeErr(n, "unknown operator %q", op)
	}
}

func dividendSignedMod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

func (in *Interpreter) evalContains(left, right Value, n ast.Node) (Value, error) {
	switch left.Kind {
	case KindText:
		return Bool(strings.Contains(left.Text, right.String())), nil
	case KindList:
		for _, e := range left.List.Elements {
			if e.Equal(right) {
				return Bool(true), nil
			}
		}
		return Bool(false), nil
	case KindMap:
		_, ok := left.Map.Entries[right.String()]
		return Bool(ok), nil
	default:
		return Value{}, in.runtimeErr(n, "'contains' is not supported on %s", left.KindName())
	}
}

func (in *Interpreter) evalComparison(kind string, left, right Value, n ast.Node) (Value, error) {
	negate := false
	if strings.HasPrefix(kind, "not ") {
		negate = true
		kind = strings.TrimPrefix(kind, "not ")
	}
	var result bool
	switch kind {
	case "equal to":
		result = left.Equal(right)
	case "greater than":
		cmp, err := in.numericCompare(left, right, n)
		if err != nil {
			return Value{}, err
		}
		result = cmp > 0
	case "greater than or equal to":
		cmp, err := in.numericCompare(left, right, n)
		if err != nil {
			return Value{}, err
		}
		result = cmp >= 0
	case "less than":
		cmp, err := in.numericCompare(left, right, n)
		if err != nil {
			return Value{}, err
		}
		result = cmp < 0
	case "less than or equal to":
		cmp, err := in.numericCompare(left, right, n)
		if err != nil {
			return Value{}, err
		}
		result = cmp <= 0
	default:
		return Value{}, in.runtimeErr(n, "unknown comparison %q", kind)
	}
	if negate {
		result = !result
	}
	return Bool(result), nil
}

func (in *Interpreter) numericCompare(left, right Value, n ast.Node) (int, error) {
	if left.Kind == KindNumber && right.Kind == KindNumber {
		switch {
		case left.Number < right.Number:
			return -1, nil
		case left.Number > right.Number:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if left.Kind == KindText && right.Kind == KindText {
		return strings.Compare(left.Text, right.Text), nil
	}
	return 0, in.runtimeErr(n, "cannot compare %s and %s", left.KindName(), right.KindName())
}

func (in *Interpreter) evalActionCall(n *ast.ActionCall, env *Environment) (Value, error) {
	if v, ok := builtinActions[n.Name]; ok {
		args := make([]Value, len(n.Args))
		for i, a := range n.Args {
			val, err := in.eval(a, env)
			if err != nil {
				return Value{}, err
			}
			args[i] = val
		}
		return v(in, args, n)
	}

	action, ok := in.actions[n.Name]
	if !ok {
		if v, ok := env.Get(n.Name); ok && v.Kind == KindAction {
			action = v.Action
		} else {
			return Value{}, in.runtimeErr(n, "Undefined action %q", n.Name)
		}
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		val, err := in.eval(a, env)
		if err != nil {
			return Value{}, err
		}
		args[i] = val
	}
	return in.callAction(action, args, n)
}

func (in *Interpreter) evalParentMethodCall(n *ast.ParentMethodCall, env *Environment) (Value, error) {
	self, ok := env.Get("self")
	if !ok || self.Kind != KindContainer || self.Container.Def.Extends == "" {
		return Value{}, in.runtimeErr(n, "'parent' is only valid inside an action on a container that extends another")
	}
	parentDefVal, ok := env.Get(self.Container.Def.Extends)
	if !ok || parentDefVal.Kind != KindContainer {
		return Value{}, in.runtimeErr(n, "undefined parent container %q", self.Container.Def.Extends)
	}
	return in.invokeContainerMethod(parentDefVal.Container.Def, self, n.Method, n.Args, env, n)
}

// builtin random source; grounded on the spec's `random()` → [0,1) contract.
var rngSource = rand.New(rand.NewSource(time.Now().UnixNano()))

func (in *Interpreter) evalCurrentTime(n *ast.CurrentTimeExpr, env *Environment) (Value, error) {
	now := time.Now()
	if n.Milliseconds {
		return Number(float64(now.UnixMilli())), nil
	}
	format := "2006-01-02 15:04:05"
	if n.Format != nil {
		f, err := in.evalText(n.Format, env)
		if err != nil {
			return Value{}, err
		}
		format = translateTimeFormat(f)
	}
	return Text(now.Format(format)), nil
}

// translateTimeFormat maps a handful of common strftime-ish tokens onto
// Go's reference-time layout, enough to cover simple `formatted as`
// patterns without pulling in a full format parser.
func translateTimeFormat(f string) string {
	replacer := strings.NewReplacer(
		"YYYY", "2006", "MM", "01", "DD", "02",
		"HH", "15", "mm", "04", "ss", "05",
	)
	return replacer.Replace(f)
}

func (in *Interpreter) evalProcessRunning(n *ast.ProcessRunningExpr, env *Environment) (Value, error) {
	v, err := in.eval(n.Process, env)
	if err != nil {
		return Value{}, err
	}
	if v.Kind != KindProcessHandle {
		return Value{}, in.runtimeErr(n, "not a process handle")
	}
	pr, err := in.resources.process(v.Handle)
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	if pr.cmd.ProcessState == nil {
		return Bool(true), nil
	}
	return Bool(!pr.cmd.ProcessState.Exited()), nil
}
