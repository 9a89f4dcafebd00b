package interp

import "github.com/dolthub/swiss"

// Environment is a single lexical scope: a mapping of names to values,
// chained to the scope it was created inside of. The global scope has a
// nil Enclosing.
type Environment struct {
	Enclosing *Environment
	values    *swiss.Map[string, Value]
}

// NewEnvironment creates a scope enclosed by parent. Pass nil to create
// the global scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{Enclosing: parent, values: swiss.NewMap[string, Value](8)}
}

// Define binds name to value in this scope, shadowing any binding of the
// same name in an enclosing scope. Redefining a name already bound in
// this same scope (legal at the top level, e.g. REPL re-declaration) just
// replaces it.
func (e *Environment) Define(name string, value Value) {
	e.values.Put(name, value)
}

// Get reads name starting in this scope and walking outward. ok is false
// if name is not bound anywhere in the chain.
func (e *Environment) Get(name string) (Value, bool) {
	if v, ok := e.values.Get(name); ok {
		return v, true
	}
	if e.Enclosing != nil {
		return e.Enclosing.Get(name)
	}
	return nil, false
}

// GetAt reads name from the scope distance hops outward from this one.
// The resolver guarantees the name exists there, so a miss is a bug
// rather than something callers need to handle.
func (e *Environment) GetAt(distance int, name string) Value {
	v, _ := e.ancestor(distance).values.Get(name)
	return v
}

// AssignAt overwrites name in the scope distance hops outward from this
// one.
func (e *Environment) AssignAt(distance int, name string, value Value) {
	e.ancestor(distance).values.Put(name, value)
}

// Assign overwrites the nearest existing binding of name, starting in
// this scope and walking outward. ok is false if name is not bound
// anywhere in the chain, in which case nothing is modified.
func (e *Environment) Assign(name string, value Value) bool {
	if e.values.Has(name) {
		e.values.Put(name, value)
		return true
	}
	if e.Enclosing != nil {
		return e.Enclosing.Assign(name, value)
	}
	return false
}

func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.Enclosing
	}
	return env
}
