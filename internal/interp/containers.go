package interp

import "github.com/wflang/wfl/internal/ast"

func (in *Interpreter) evalContainerInstantiation(n *ast.ContainerInstantiation, env *Environment) (Value, error) {
	defVal, ok := env.Get(n.Container)
	if !ok || defVal.Kind != KindContainer || defVal.Container.Def == nil {
		return Value{}, in.runtimeErr(n, "undefined container %q", n.Container)
	}
	def := defVal.Container.Def

	inst := &ContainerValue{TypeName: n.Container, Def: def, Fields: map[string]Value{}}
	for _, prop := range def.Properties {
		if prop.Default != nil {
			v, err := in.eval(prop.Default, env)
			if err != nil {
				return Value{}, err
			}
			inst.Fields[prop.Name] = v
		} else {
			inst.Fields[prop.Name] = Null()
		}
	}

	result := Value{Kind: KindContainer, Container: inst}

	if ctor := findAction(def, "constructor"); ctor != nil {
		args := make([]Value, len(n.Args))
		for i, a := range n.Args {
			v, err := in.eval(a, env)
			if err != nil {
				return Value{}, err
			}
			args[i] = v
		}
		if _, err := in.callBoundAction(ctor, result, args, n); err != nil {
			return Value{}, err
		}
	}
	return result, nil
}

func findAction(def *ast.ContainerDefinition, name string) *ast.ActionDefinition {
	for _, a := range def.Actions {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// callBoundAction invokes action with `self` bound to receiver in its
// parameter scope, the mechanism behind container methods and the
// implicit constructor.
func (in *Interpreter) callBoundAction(action *ast.ActionDefinition, receiver Value, args []Value, where ast.Node) (Value, error) {
	env := NewEnvironment(in.globals)
	env.Define("self", receiver, false)
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

func (in *Interpreter) invokeContainerMethod(def *ast.ContainerDefinition, receiver Value, method string, argExprs []ast.Expression, env *Environment, where ast.Node) (Value, error) {
	action := findAction(def, method)
	if action == nil {
		return Value{}, in.runtimeErr(where, "container %q has no action %q", def.Name, method)
	}
	args := make([]Value, len(argExprs))
	for i, a := range argExprs {
		v, err := in.eval(a, env)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	return in.callBoundAction(action, receiver, args, where)
}

func (in *Interpreter) evalMethodCall(n *ast.MethodCall, env *Environment) (Value, error) {
	recv, err := in.eval(n.Receiver, env)
	if err != nil {
		return Value{}, err
	}
	switch recv.Kind {
	case KindContainer:
		return in.invokeContainerMethod(recv.Container.Def, recv, n.Method, n.Args, env, n)
	case KindList:
		return in.evalListMethod(recv, n, env)
	case KindText:
		return in.evalTextMethod(recv, n, env)
	default:
		return Value{}, in.runtimeErr(n, "cannot call method %q on %s", n.Method, recv.KindName())
	}
}

func (in *Interpreter) evalPropertyAccess(n *ast.PropertyAccess, env *Environment) (Value, error) {
	recv, err := in.eval(n.Receiver, env)
	if err != nil {
		return Value{}, err
	}
	switch recv.Kind {
	case KindContainer:
		if v, ok := recv.Container.Fields[n.Property]; ok {
			return v, nil
		}
		return Value{}, in.runtimeErr(n, "container %q has no property %q", recv.Container.TypeName, n.Property)
	case KindList:
		if n.Property == "length" {
			return Number(float64(len(recv.List.Elements))), nil
		}
	case KindText:
		if n.Property == "length" {
			return Number(float64(len([]rune(recv.Text)))), nil
		}
	case KindMap:
		if v, ok := recv.Map.Entries[n.Property]; ok {
			return v, nil
		}
		return Null(), nil
	}
	return Value{}, in.runtimeErr(n, "cannot access property %q on %s", n.Property, recv.KindName())
}

func (in *Interpreter) evalIndexAccess(n *ast.IndexAccess, env *Environment) (Value, error) {
	coll, err := in.eval(n.Collection, env)
	if err != nil {
		return Value{}, err
	}
	idxVal, err := in.eval(n.Index, env)
	if err != nil {
		return Value{}, err
	}
	if idxVal.Kind != KindNumber {
		return Value{}, in.runtimeErr(n, "index must be a number")
	}
	idx := int(idxVal.Number)
	if !n.Bracket {
		// Bare-ordinal form is 1-based (spec Open Question: both kept).
		idx--
	}
	switch coll.Kind {
	case KindList:
		if idx < 0 || idx >= len(coll.List.Elements) {
			return Value{}, in.runtimeErr(n, "index out of range")
		}
		return coll.List.Elements[idx], nil
	case KindText:
		runes := []rune(coll.Text)
		if idx < 0 || idx >= len(runes) {
			return Value{}, in.runtimeErr(n, "index out of range")
		}
		return Text(string(runes[idx])), nil
	default:
		return Value{}, in.runtimeErr(n, "cannot index a %s", coll.KindName())
	}
}
