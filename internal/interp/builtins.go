package interp

import (
	"math"
	"strings"

	"github.com/wflang/wfl/internal/ast"
)

// builtinFn implements one of the built-in actions recognized by both
// the analyzer (analyzer.builtinActions) and the interpreter.
type builtinFn func(in *Interpreter, args []Value, where ast.Node) (Value, error)

var builtinActions = map[string]builtinFn{
	"random": func(in *Interpreter, args []Value, where ast.Node) (Value, error) {
		return Number(rngSource.Float64()), nil
	},
	"length": func(in *Interpreter, args []Value, where ast.Node) (Value, error) {
		if len(args) != 1 {
			return Value{}, in.runtimeErr(where, "length expects 1 argument, got %d", len(args))
		}
		switch args[0].Kind {
		case KindList:
			return Number(float64(len(args[0].List.Elements))), nil
		case KindText:
			return Number(float64(len([]rune(args[0].Text)))), nil
		default:
			return Value{}, in.runtimeErr(where, "length is not defined for %s", args[0].KindName())
		}
	},
	"round": numericBuiltin(math.Round),
	"floor": numericBuiltin(math.Floor),
	"ceiling": numericBuiltin(math.Ceil),
	"absolute": numericBuiltin(math.Abs),
	"uppercase": func(in *Interpreter, args []Value, where ast.Node) (Value, error) {
		s, err := requireText(in, args, where, "uppercase")
		if err != nil {
			return Value{}, err
		}
		return Text(strings.ToUpper(s)), nil
	},
	"lowercase": func(in *Interpreter, args []Value, where ast.Node) (Value, error) {
		s, err := requireText(in, args, where, "lowercase")
		if err != nil {
			return Value{}, err
		}
		return Text(strings.ToLower(s)), nil
	},
	"trim": func(in *Interpreter, args []Value, where ast.Node) (Value, error) {
		s, err := requireText(in, args, where, "trim")
		if err != nil {
			return Value{}, err
		}
		return Text(strings.TrimSpace(s)), nil
	},
	"now": func(in *Interpreter, args []Value, where ast.Node) (Value, error) {
		return in.evalCurrentTime(&ast.CurrentTimeExpr{Milliseconds: true}, in.globals)
	},
	"typeof": func(in *Interpreter, args []Value, where ast.Node) (Value, error) {
		if len(args) != 1 {
			return Value{}, in.runtimeErr(where, "typeof expects 1 argument, got %d", len(args))
		}
		return Text(args[0].KindName()), nil
	},
}

func numericBuiltin(f func(float64) float64) builtinFn {
	return func(in *Interpreter, args []Value, where ast.Node) (Value, error) {
		if len(args) != 1 || args[0].Kind != KindNumber {
			return Value{}, in.runtimeErr(where, "expected a single number argument")
		}
		return Number(f(args[0].Number)), nil
	}
}

func requireText(in *Interpreter, args []Value, where ast.Node, name string) (string, error) {
	if len(args) != 1 || args[0].Kind != KindText {
		return "", in.runtimeErr(where, "%s expects a single text argument", name)
	}
	return args[0].Text, nil
}

// evalListMethod handles `<list>'s <method> [with <args>]` dispatch for
// the handful of built-in list operations exposed as methods rather
// than free actions.
func (in *Interpreter) evalListMethod(recv Value, n *ast.MethodCall, env *Environment) (Value, error) {
	switch n.Method {
	case "length":
		return Number(float64(len(recv.List.Elements))), nil
	default:
		return Value{}, in.runtimeErr(n, "list has no method %q", n.Method)
	}
}

// evalTextMethod handles `<text>'s <method>` for uppercase/lowercase/trim.
func (in *Interpreter) evalTextMethod(recv Value, n *ast.MethodCall, env *Environment) (Value, error) {
	switch n.Method {
	case "uppercase":
		return Text(strings.ToUpper(recv.Text)), nil
	case "lowercase":
		return Text(strings.ToLower(recv.Text)), nil
	case "trim":
		return Text(strings.TrimSpace(recv.Text)), nil
	case "length":
		return Number(float64(len([]rune(recv.Text)))), nil
	default:
		return Value{}, in.runtimeErr(n, "text has no method %q", n.Method)
	}
}
