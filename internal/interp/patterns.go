package interp

import (
	"strings"

	"github.com/wflang/wfl/internal/ast"
	"github.com/wflang/wfl/internal/pattern"
)

var patternVM = pattern.New()

// compilePattern compiles a PatternDefinition's body at its defining
// site (spec §4.5 "Patterns are compiled once at their defining
// site"), resolving any PatternListRef against lists already bound in
// env at that point.
func (in *Interpreter) compilePattern(n *ast.PatternDefinition, env *Environment) (*PatternValue, error) {
	resolve := func(name string) ([]string, bool) {
		v, ok := env.Get(name)
		if !ok || v.Kind != KindList {
			return nil, false
		}
		texts := make([]string, len(v.List.Elements))
		for i, e := range v.List.Elements {
			texts[i] = e.String()
		}
		return texts, true
	}
	prog, err := pattern.Compile(n.Pattern, resolve)
	if err != nil {
		return nil, in.runtimeErr(n, "%s", err)
	}
	return &PatternValue{Name: n.Name, Compiled: prog}, nil
}

// resolvePattern evaluates a pattern-valued expression. A bare
// Identifier naming a previously defined pattern resolves to its
// compiled program directly; any other expression is compiled inline
// against env (an ad hoc pattern literal used where a named one would
// normally go).
func (in *Interpreter) resolvePattern(e ast.Expression, env *Environment) (*pattern.Program, error) {
	if ident, ok := e.(*ast.Identifier); ok {
		if pv, ok := in.patterns[ident.Name]; ok {
			return pv.Compiled.(*pattern.Program), nil
		}
		if v, ok := env.Get(ident.Name); ok && v.Kind == KindPattern {
			return v.Pattern.Compiled.(*pattern.Program), nil
		}
	}
	resolve := func(name string) ([]string, bool) {
		v, ok := env.Get(name)
		if !ok || v.Kind != KindList {
			return nil, false
		}
		texts := make([]string, len(v.List.Elements))
		for i, el := range v.List.Elements {
			texts[i] = el.String()
		}
		return texts, true
	}
	return pattern.Compile(e, resolve)
}

// matchValue implements the `matches` binary operator: both sides have
// already been evaluated, so patVal must already be a compiled
// PatternValue (the usual case: the pattern side is an Identifier
// naming a `create pattern` definition).
func (in *Interpreter) matchValue(patVal Value, textVal Value, where ast.Node) (Value, error) {
	if patVal.Kind != KindPattern {
		return Value{}, in.runtimeErr(where, "'matches' requires a pattern, got %s", patVal.KindName())
	}
	prog, ok := patVal.Pattern.Compiled.(*pattern.Program)
	if !ok {
		return Value{}, in.runtimeErr(where, "pattern %q was not compiled", patVal.Pattern.Name)
	}
	ok2, err := patternVM.Matches(prog, textVal.String())
	if err != nil {
		return Value{}, in.runtimeErr(where, "%s", err)
	}
	return Bool(ok2), nil
}

func (in *Interpreter) evalPatternMatch(n *ast.PatternMatchExpr, env *Environment) (Value, error) {
	text, err := in.evalText(n.Text, env)
	if err != nil {
		return Value{}, err
	}
	prog, err := in.resolvePattern(n.Pattern, env)
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	ok, err := patternVM.Matches(prog, text)
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	return Bool(ok), nil
}

func (in *Interpreter) evalPatternFind(n *ast.PatternFindExpr, env *Environment) (Value, error) {
	text, err := in.evalText(n.Text, env)
	if err != nil {
		return Value{}, err
	}
	prog, err := in.resolvePattern(n.Pattern, env)
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	if n.All {
		matches, err := patternVM.FindAll(prog, text)
		if err != nil {
			return Value{}, in.runtimeErr(n, "%s", err)
		}
		elems := make([]Value, len(matches))
		for i, m := range matches {
			elems[i] = Text(m.Text)
		}
		return List(elems), nil
	}
	m, err := patternVM.Find(prog, text)
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	if m == nil {
		return Null(), nil
	}
	return Text(m.Text), nil
}

func (in *Interpreter) evalPatternReplace(n *ast.PatternReplaceExpr, env *Environment) (Value, error) {
	text, err := in.evalText(n.Text, env)
	if err != nil {
		return Value{}, err
	}
	repl, err := in.evalText(n.Replacement, env)
	if err != nil {
		return Value{}, err
	}
	prog, err := in.resolvePattern(n.Pattern, env)
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}

	matches, err := patternVM.FindAll(prog, text)
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	if len(matches) == 0 {
		return Text(text), nil
	}
	if !n.All {
		matches = matches[:1]
	}

	var sb strings.Builder
	prev := 0
	runes := []rune(text)
	for _, m := range matches {
		sb.WriteString(string(runes[prev:m.Start]))
		sb.WriteString(repl)
		prev = m.End
	}
	sb.WriteString(string(runes[prev:]))
	return Text(sb.String()), nil
}

func (in *Interpreter) evalPatternSplit(n *ast.PatternSplitExpr, env *Environment) (Value, error) {
	text, err := in.evalText(n.Text, env)
	if err != nil {
		return Value{}, err
	}
	prog, err := in.resolvePattern(n.Pattern, env)
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	matches, err := patternVM.FindAll(prog, text)
	if err != nil {
		return Value{}, in.runtimeErr(n, "%s", err)
	}
	runes := []rune(text)
	var parts []Value
	prev := 0
	for _, m := range matches {
		parts = append(parts, Text(string(runes[prev:m.Start])))
		prev = m.End
	}
	parts = append(parts, Text(string(runes[prev:])))
	return List(parts), nil
}
