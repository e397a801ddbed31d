package interp

// Environment is a linked scope chain (spec §9 "Environments: implement
// scopes as a linked chain"). A closure captures its defining
// Environment by pointer, so later mutations of outer bindings are
// visible to the closure, matching spec §5's "closures hold the
// environment of their defining site".
type Environment struct {
	parent    *Environment
	vars      map[string]Value
	constants map[string]bool
}

func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		parent:    parent,
		vars:      map[string]Value{},
		constants: map[string]bool{},
	}
}

// Define introduces name in this scope, shadowing any outer binding.
func (e *Environment) Define(name string, v Value, constant bool) {
	e.vars[name] = v
	if constant {
		e.constants[name] = true
	} else {
		delete(e.constants, name)
	}
}

// Get resolves name by walking outward through parent scopes.
func (e *Environment) Get(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return Value{}, false
}

// IsConstant reports whether name resolves to a constant binding.
func (e *Environment) IsConstant(name string) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			return env.constants[name]
		}
	}
	return false
}

// Assign updates the nearest existing binding of name in place. It
// reports false if name is not yet defined anywhere in the chain, in
// which case the caller should Define it in the current scope instead
// (WFL has no separate "declare" keyword for change-target names that
// escaped static analysis).
func (e *Environment) Assign(name string, v Value) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = v
			return true
		}
	}
	return false
}
